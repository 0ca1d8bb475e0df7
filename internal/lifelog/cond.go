package lifelog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dymm/internal/tag"

	"gorm.io/gorm"
)

var ErrCondNotFound = errors.New("condition not found")
var ErrInvalidDates = errors.New("end date before start date")

type CondInput struct {
	AvatarID  uint64
	TagID     uint64
	StartDate *time.Time
	EndDate   *time.Time
}

// AddCond records a condition the avatar has. Only condition tags qualify.
func (s *Service) AddCond(ctx context.Context, in CondInput) (uint64, error) {
	start, end := datePtr(in.StartDate), datePtr(in.EndDate)
	if start != nil && end != nil && end.Before(*start) {
		return 0, ErrInvalidDates
	}

	var t tag.Tag
	err := s.DB.WithContext(ctx).Where("id=? AND is_active=?", in.TagID, true).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrTagNotFound
	}
	if err != nil {
		return 0, err
	}
	if t.TagType != tag.TypeCondition {
		return 0, ErrNotLoggable
	}

	c := AvatarCond{AvatarID: in.AvatarID, TagID: t.ID, StartDate: start, EndDate: end, IsActive: true}
	if err := s.DB.WithContext(ctx).Create(&c).Error; err != nil {
		return 0, fmt.Errorf("add condition: %w", err)
	}
	return c.ID, nil
}

// Conds lists the avatar's active conditions, most recent first.
func (s *Service) Conds(ctx context.Context, avatarID uint64) ([]TagRef, error) {
	out := []TagRef{}
	err := s.DB.WithContext(ctx).Table("avatar_conds").
		Select("avatar_conds.id AS ref_id, avatar_conds.tag_id, avatar_conds.start_date, avatar_conds.end_date, "+
			"tags.tag_type, tags.eng_name, tags.kor_name, tags.jpn_name").
		Joins("JOIN tags ON tags.id = avatar_conds.tag_id").
		Where("avatar_conds.avatar_id=? AND avatar_conds.is_active=?", avatarID, true).
		Order("avatar_conds.id desc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("conditions for %d: %w", avatarID, err)
	}
	return out, nil
}

// RemoveCond deactivates one of the avatar's conditions.
func (s *Service) RemoveCond(ctx context.Context, avatarID, condID uint64) error {
	res := s.DB.WithContext(ctx).Model(&AvatarCond{}).
		Where("id=? AND avatar_id=? AND is_active=?", condID, avatarID, true).
		Updates(map[string]any{"is_active": false, "updated_at": s.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCondNotFound
	}
	return nil
}

func datePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}
