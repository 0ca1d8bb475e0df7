package jobs

import "time"

const (
	TypeMailConfirm    = "MAIL_CONFIRM"
	TypeMailVerifyCode = "MAIL_VERIFY_CODE"
)

const (
	StatusPending = "PENDING"
	StatusRunning = "RUNNING"
	StatusDone    = "DONE"
	StatusFailed  = "FAILED"
)

type Job struct {
	ID       uint64 `gorm:"primaryKey"`
	AvatarID uint64 `gorm:"index;not null"`

	Type    string `gorm:"type:text;not null"` // MAIL_CONFIRM / MAIL_VERIFY_CODE
	Payload []byte `gorm:"type:jsonb;not null"`

	RunAt  time.Time `gorm:"index;not null"`
	Status string    `gorm:"index;not null;default:'PENDING'"` // PENDING/RUNNING/DONE/FAILED

	Attempts    int `gorm:"not null;default:0"`
	MaxAttempts int `gorm:"not null;default:8"`

	LockedBy *string    `gorm:"type:text"`
	LockedAt *time.Time `gorm:"type:timestamptz"`

	LastError *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// MailPayload addresses a mail job. Code is set for verification codes.
type MailPayload struct {
	AvatarID uint64 `json:"avatar_id,omitempty"`
	Email    string `json:"email"`
	Code     string `json:"code,omitempty"`
}
