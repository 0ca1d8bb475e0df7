package avatar

import "time"

type Avatar struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"size:255;index;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"size:100;not null;default:''" json:"first_name"`
	LastName     string     `gorm:"size:100;not null;default:''" json:"last_name"`
	PhNumber     *string    `gorm:"size:30" json:"ph_number"`
	Introduction *string    `gorm:"type:text" json:"introduction"`
	ColorCode    int        `gorm:"not null;default:1" json:"color_code"`
	PhotoName    *string    `json:"photo_name"`
	DateOfBirth  *time.Time `gorm:"type:date" json:"date_of_birth"`
	// FullLifespan is the last computed estimate in days; ranking reads it.
	FullLifespan *int64 `json:"full_lifespan"`
	IsActive     bool   `gorm:"not null" json:"is_active"`
	IsBlocked    bool   `gorm:"not null" json:"is_blocked"`
	IsConfirmed  bool   `gorm:"not null" json:"is_confirmed"`
	IsAdmin      bool   `gorm:"not null" json:"is_admin"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileTag is an avatar's choice within one profile category such as
// language or theme.
type ProfileTag struct {
	ID         uint64 `gorm:"primaryKey"`
	AvatarID   uint64 `gorm:"index;not null"`
	SuperTagID uint64 `gorm:"not null"`
	SubTagID   uint64 `gorm:"not null"`
	IsSelected bool   `gorm:"not null"`
	Priority   int    `gorm:"not null;default:0"`
	IsActive   bool   `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProfileTagView struct {
	ID         uint64 `json:"id"`
	SuperTagID uint64 `json:"super_tag_id"`
	SubTagID   uint64 `json:"sub_tag_id"`
	IsSelected bool   `json:"is_selected"`
	Priority   int    `json:"priority"`
	EngName    string `json:"eng_name"`
	KorName    string `json:"kor_name"`
	JpnName    string `json:"jpn_name"`
}

type Profile struct {
	Avatar      Avatar           `json:"avatar"`
	ProfileTags []ProfileTagView `json:"profile_tags"`
}
