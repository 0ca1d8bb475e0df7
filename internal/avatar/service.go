// Package avatar manages accounts: signup, sign-in, profile data and the
// lifespan estimate cached on each avatar.
package avatar

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"dymm/internal/auth"
	"dymm/internal/jobs"
	"dymm/internal/lifelog"
	"dymm/internal/tag"

	"gorm.io/gorm"
)

var (
	ErrAvatarNotFound   = errors.New("avatar not found")
	ErrDuplicateEmail   = errors.New("email already used")
	ErrInvalidEmail     = errors.New("unknown email")
	ErrInvalidPassword  = errors.New("wrong password")
	ErrBlocked          = errors.New("avatar blocked")
	ErrMailNotConfirmed = errors.New("email not confirmed")
	ErrInvalidTarget    = errors.New("invalid update target")
	ErrInvalidValue     = errors.New("invalid value")
	ErrInvalidLanguage  = errors.New("invalid language")
)

const maxColorCode = 15

type Service struct {
	DB   *gorm.DB
	Logs *lifelog.Service
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type CreateInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	LanguageID uint64
}

// Create signs an avatar up, gives it default profile tags and queues the
// confirmation mail, all in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (Avatar, error) {
	email := NormalizeEmail(in.Email)
	if in.LanguageID == 0 {
		in.LanguageID = tag.IDEnglish
	}

	tags := &tag.Store{DB: s.DB}
	ok, err := tags.HasChild(ctx, tag.IDLanguage, in.LanguageID)
	if err != nil {
		return Avatar{}, err
	}
	if !ok {
		return Avatar{}, ErrInvalidLanguage
	}

	dup, err := s.EmailExists(ctx, email)
	if err != nil {
		return Avatar{}, err
	}
	if dup {
		return Avatar{}, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Avatar{}, err
	}

	a := Avatar{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		ColorCode:    rand.Intn(maxColorCode) + 1,
		IsActive:     true,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&a).Error; err != nil {
			return err
		}
		if err := s.createDefaultProfileTags(ctx, tx, a.ID, in.LanguageID); err != nil {
			return err
		}
		return jobs.Enqueue(tx, a.ID, jobs.TypeMailConfirm, jobs.MailPayload{AvatarID: a.ID, Email: a.Email}, s.now())
	})
	if err != nil {
		return Avatar{}, fmt.Errorf("create avatar: %w", err)
	}
	return a, nil
}

// createDefaultProfileTags selects the chosen language and the light theme
// and leaves every other profile category unselected.
func (s *Service) createDefaultProfileTags(ctx context.Context, tx *gorm.DB, avatarID, languageID uint64) error {
	categories, err := (&tag.Store{DB: tx}).Children(ctx, tag.IDProfile, tag.SortPriority, 0)
	if err != nil {
		return err
	}
	for i, c := range categories {
		pt := ProfileTag{AvatarID: avatarID, SuperTagID: c.ID, SubTagID: c.ID, Priority: i, IsActive: true}
		switch c.ID {
		case tag.IDLanguage:
			pt.SubTagID, pt.IsSelected = languageID, true
		case tag.IDTheme:
			pt.SubTagID, pt.IsSelected = tag.IDLight, true
		}
		if err := tx.Create(&pt).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&Avatar{}).
		Where("email = ? AND is_active = ?", NormalizeEmail(email), true).
		Count(&n).Error
	return n > 0, err
}

func (s *Service) Get(ctx context.Context, id uint64) (Avatar, error) {
	var a Avatar
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, ErrAvatarNotFound
	}
	return a, err
}

// Authenticate checks credentials and returns the avatar with its selected
// language tag id.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Avatar, uint64, error) {
	var a Avatar
	err := s.DB.WithContext(ctx).
		Where("email = ? AND is_active = ?", NormalizeEmail(email), true).
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return a, 0, ErrInvalidEmail
	}
	if err != nil {
		return a, 0, err
	}
	if !auth.ComparePassword(a.PasswordHash, password) {
		return a, 0, ErrInvalidPassword
	}
	if a.IsBlocked {
		return a, 0, ErrBlocked
	}

	var pt ProfileTag
	err = s.DB.WithContext(ctx).
		Where("avatar_id = ? AND super_tag_id = ? AND is_active = ?", a.ID, tag.IDLanguage, true).
		First(&pt).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return a, tag.IDEnglish, nil
	case err != nil:
		return a, 0, err
	}
	return a, pt.SubTagID, nil
}

// Update targets accepted by UpdateInfo.
const (
	TargetFirstName   = "first_name"
	TargetLastName    = "last_name"
	TargetIntro       = "intro"
	TargetEmail       = "email"
	TargetColorCode   = "color_code"
	TargetPhNumber    = "ph_number"
	TargetDateOfBirth = "date_of_birth"
	TargetPassword    = "password"
)

// UpdateInfo changes one field. Changing the email clears the confirmation
// and queues a new confirmation mail; changing the password requires the
// old one.
func (s *Service) UpdateInfo(ctx context.Context, avatarID uint64, target, value, oldPassword string) error {
	a, err := s.Get(ctx, avatarID)
	if err != nil {
		return err
	}

	fields := map[string]any{}
	switch target {
	case TargetFirstName, TargetLastName:
		v := strings.TrimSpace(value)
		if v == "" {
			return ErrInvalidValue
		}
		fields[target] = v
	case TargetIntro:
		fields["introduction"] = optional(value)
	case TargetPhNumber:
		fields["ph_number"] = optional(value)
	case TargetColorCode:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 1 || n > maxColorCode {
			return ErrInvalidValue
		}
		fields["color_code"] = n
	case TargetDateOfBirth:
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(value))
		if err != nil || d.After(s.now()) {
			return ErrInvalidValue
		}
		fields["date_of_birth"] = d
	case TargetPassword:
		if !auth.ComparePassword(a.PasswordHash, oldPassword) {
			return ErrInvalidPassword
		}
		if len(value) < 8 {
			return ErrInvalidValue
		}
		hash, err := auth.HashPassword(value)
		if err != nil {
			return err
		}
		fields["password_hash"] = hash
	case TargetEmail:
		return s.changeEmail(ctx, a, value)
	default:
		return ErrInvalidTarget
	}

	fields["updated_at"] = s.now()
	return s.DB.WithContext(ctx).Model(&Avatar{}).Where("id = ?", a.ID).Updates(fields).Error
}

func (s *Service) changeEmail(ctx context.Context, a Avatar, value string) error {
	email := NormalizeEmail(value)
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidValue
	}
	if email == a.Email {
		return nil
	}
	dup, err := s.EmailExists(ctx, email)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateEmail
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Avatar{}).Where("id = ?", a.ID).Updates(map[string]any{
			"email":        email,
			"is_confirmed": false,
			"updated_at":   s.now(),
		}).Error; err != nil {
			return err
		}
		return jobs.Enqueue(tx, a.ID, jobs.TypeMailConfirm, jobs.MailPayload{AvatarID: a.ID, Email: email}, s.now())
	})
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// ConfirmMail marks the avatar's address confirmed when it still matches
// the address the link was sent to. It reports whether the avatar was
// already confirmed.
func (s *Service) ConfirmMail(ctx context.Context, avatarID uint64, email string) (bool, error) {
	a, err := s.Get(ctx, avatarID)
	if err != nil {
		return false, err
	}
	if a.Email != NormalizeEmail(email) {
		return false, ErrInvalidEmail
	}
	if a.IsConfirmed {
		return true, nil
	}
	err = s.DB.WithContext(ctx).Model(&Avatar{}).Where("id = ?", a.ID).
		Updates(map[string]any{"is_confirmed": true, "updated_at": s.now()}).Error
	return false, err
}

// ResendConfirm queues another confirmation mail.
func (s *Service) ResendConfirm(ctx context.Context, avatarID uint64) error {
	a, err := s.Get(ctx, avatarID)
	if err != nil {
		return err
	}
	return jobs.Enqueue(s.DB.WithContext(ctx), a.ID, jobs.TypeMailConfirm, jobs.MailPayload{AvatarID: a.ID, Email: a.Email}, s.now())
}

// SetPhoto records the avatar's photo object key.
func (s *Service) SetPhoto(ctx context.Context, avatarID uint64, key string) error {
	res := s.DB.WithContext(ctx).Model(&Avatar{}).
		Where("id = ? AND is_active = ?", avatarID, true).
		Updates(map[string]any{"photo_name": key, "updated_at": s.now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAvatarNotFound
	}
	return nil
}
