package avatar

import (
	"context"
	"errors"

	"dymm/internal/tag"

	"gorm.io/gorm"
)

var ErrProfileTagNotFound = errors.New("profile tag not found")

// Profile returns the avatar with its profile tags. The avatar must have
// confirmed its email.
func (s *Service) Profile(ctx context.Context, avatarID uint64) (Profile, error) {
	a, err := s.Get(ctx, avatarID)
	if err != nil {
		return Profile{}, err
	}
	if !a.IsConfirmed {
		return Profile{Avatar: a}, ErrMailNotConfirmed
	}

	views := []ProfileTagView{}
	err = s.DB.WithContext(ctx).Table("profile_tags").
		Select("profile_tags.id, profile_tags.super_tag_id, profile_tags.sub_tag_id, profile_tags.is_selected, "+
			"profile_tags.priority, tags.eng_name, tags.kor_name, tags.jpn_name").
		Joins("JOIN tags ON tags.id = profile_tags.sub_tag_id").
		Where("profile_tags.avatar_id = ? AND profile_tags.is_active = ?", avatarID, true).
		Order("profile_tags.priority, profile_tags.id").
		Scan(&views).Error
	if err != nil {
		return Profile{}, err
	}
	return Profile{Avatar: a, ProfileTags: views}, nil
}

// SetProfileTag picks tagID inside the profile tag's category. Options
// under the "unselected" tag clear the selection.
func (s *Service) SetProfileTag(ctx context.Context, avatarID, profileTagID, tagID uint64) error {
	var pt ProfileTag
	err := s.DB.WithContext(ctx).
		Where("id = ? AND avatar_id = ? AND is_active = ?", profileTagID, avatarID, true).
		First(&pt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrProfileTagNotFound
	}
	if err != nil {
		return err
	}

	tags := &tag.Store{DB: s.DB}
	ok, err := tags.HasChild(ctx, pt.SuperTagID, tagID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidValue
	}
	unselected, err := tags.HasChild(ctx, tag.IDUnselected, tagID)
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&ProfileTag{}).Where("id = ?", pt.ID).Updates(map[string]any{
		"sub_tag_id":  tagID,
		"is_selected": !unselected,
		"updated_at":  s.now(),
	}).Error
}
