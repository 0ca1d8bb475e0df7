package banner

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Banner is a promo card on the home screen.
type Banner struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	ImgName     string `gorm:"not null;default:''" json:"img_name"`
	BgColor     string `gorm:"size:16;not null;default:''" json:"bg_color"`
	TxtColor    string `gorm:"size:16;not null;default:''" json:"txt_color"`
	EngTitle    string `gorm:"not null;default:''" json:"eng_title"`
	KorTitle    string `gorm:"not null;default:''" json:"kor_title"`
	JpnTitle    string `gorm:"not null;default:''" json:"jpn_title"`
	EngSubtitle string `gorm:"not null;default:''" json:"eng_subtitle"`
	KorSubtitle string `gorm:"not null;default:''" json:"kor_subtitle"`
	JpnSubtitle string `gorm:"not null;default:''" json:"jpn_subtitle"`
	Priority    int    `gorm:"not null;default:0" json:"-"`
	IsActive    bool   `gorm:"not null" json:"-"`

	CreatedAt time.Time `json:"-"`
}

type Service struct {
	DB *gorm.DB
}

// List returns active banners, highest priority first.
func (s *Service) List(ctx context.Context) ([]Banner, error) {
	out := []Banner{}
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("priority desc, id").
		Find(&out).Error
	return out, err
}
