// Package bookmark keeps each avatar's favourite tags, filed under the
// bookmark super tag of the tag's type. Bookmarks are toggled, never
// deleted.
package bookmark

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dymm/internal/tag"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("bookmark not found")
var ErrTagNotFound = errors.New("tag not found")
var ErrNotBookmarkable = errors.New("tag type cannot be bookmarked")

type Bookmark struct {
	ID         uint64 `gorm:"primaryKey"`
	AvatarID   uint64 `gorm:"index;not null"`
	SuperTagID uint64 `gorm:"index;not null"`
	SubTagID   uint64 `gorm:"index;not null"`
	IsActive   bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Entry is an active bookmark with its tag's names.
type Entry struct {
	BookmarkID uint64   `json:"bookmark_id"`
	ID         uint64   `json:"id"`
	TagType    tag.Type `json:"tag_type"`
	EngName    string   `json:"eng_name"`
	KorName    string   `json:"kor_name"`
	JpnName    string   `json:"jpn_name"`
}

type Service struct {
	DB *gorm.DB
}

// Toggle flips the avatar's bookmark on tagID, creating it active on first
// use. It returns the bookmark and the tag's new bookmark total.
func (s *Service) Toggle(ctx context.Context, avatarID, tagID uint64) (Bookmark, int64, error) {
	var b Bookmark
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("avatar_id = ? AND sub_tag_id = ?", avatarID, tagID).Order("id").First(&b).Error
		if err == nil {
			return flip(tx, &b)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var t tag.Tag
		if err := tx.Where("id = ? AND is_active = ?", tagID, true).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTagNotFound
			}
			return err
		}
		superID, ok := tag.BookmarkSuper(t.TagType)
		if !ok {
			return ErrNotBookmarkable
		}
		b = Bookmark{AvatarID: avatarID, SuperTagID: superID, SubTagID: t.ID, IsActive: true}
		return tx.Create(&b).Error
	})
	if err != nil {
		return Bookmark{}, 0, err
	}
	total, err := s.Total(ctx, tagID)
	return b, total, err
}

// ToggleByID flips one of the avatar's bookmarks by id.
func (s *Service) ToggleByID(ctx context.Context, avatarID, bookmarkID uint64) (Bookmark, int64, error) {
	var b Bookmark
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND avatar_id = ?", bookmarkID, avatarID).First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return flip(tx, &b)
	})
	if err != nil {
		return Bookmark{}, 0, err
	}
	total, err := s.Total(ctx, b.SubTagID)
	return b, total, err
}

func flip(tx *gorm.DB, b *Bookmark) error {
	b.IsActive = !b.IsActive
	return tx.Model(&Bookmark{}).Where("id = ?", b.ID).
		Updates(map[string]any{"is_active": b.IsActive, "updated_at": time.Now()}).Error
}

// Total counts active bookmarks on tagID across all avatars.
func (s *Service) Total(ctx context.Context, tagID uint64) (int64, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Bookmark{}).
		Where("sub_tag_id = ? AND is_active = ?", tagID, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("bookmark total for %d: %w", tagID, err)
	}
	return n, nil
}

// Find returns the avatar's active bookmark on tagID.
func (s *Service) Find(ctx context.Context, avatarID, tagID uint64) (Bookmark, error) {
	var b Bookmark
	err := s.DB.WithContext(ctx).
		Where("avatar_id = ? AND sub_tag_id = ? AND is_active = ?", avatarID, tagID, true).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b, ErrNotFound
	}
	return b, err
}

// List returns the avatar's active bookmarks filed under superID.
func (s *Service) List(ctx context.Context, avatarID, superID uint64) ([]Entry, error) {
	out := []Entry{}
	err := s.DB.WithContext(ctx).Table("bookmarks").
		Select("bookmarks.id AS bookmark_id, tags.id, tags.tag_type, tags.eng_name, tags.kor_name, tags.jpn_name").
		Joins("JOIN tags ON tags.id = bookmarks.sub_tag_id").
		Where("bookmarks.avatar_id = ? AND bookmarks.super_tag_id = ? AND bookmarks.is_active = ?", avatarID, superID, true).
		Order("bookmarks.updated_at desc, bookmarks.id desc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("bookmarks of %d: %w", avatarID, err)
	}
	return out, nil
}
