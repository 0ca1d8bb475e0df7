package avatar

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"dymm/internal/auth"
	"dymm/internal/db/dbtest"
	"dymm/internal/jobs"
	"dymm/internal/lifelog"
	"dymm/internal/tag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	tagGenderUnspecified uint64 = 30
	tagGenderFemale      uint64 = 31
)

var testNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := dbtest.Open(t,
		&tag.Tag{}, &tag.TagSet{},
		&Avatar{}, &ProfileTag{}, &jobs.Job{},
		&lifelog.LogGroup{}, &lifelog.TagLog{}, &lifelog.LogHistory{},
	)

	tags := []tag.Tag{
		{ID: tag.IDUnselected, TagType: tag.TypeCategory, EngName: "Unselected", IsActive: true},
		{ID: tag.IDProfile, TagType: tag.TypeCategory, EngName: "Profile", IsActive: true},
		{ID: tag.IDLanguage, TagType: tag.TypeCategory, EngName: "Language", IsActive: true},
		{ID: tag.IDTheme, TagType: tag.TypeCategory, EngName: "Theme", IsActive: true},
		{ID: tag.IDGender, TagType: tag.TypeCategory, EngName: "Gender", IsActive: true},
		{ID: tag.IDEnglish, TagType: tag.TypeCharacter, EngName: "English", IsActive: true},
		{ID: tag.IDKorean, TagType: tag.TypeCharacter, EngName: "Korean", KorName: "한국어", IsActive: true},
		{ID: tag.IDLight, TagType: tag.TypeCharacter, EngName: "Light", IsActive: true},
		{ID: tag.IDDark, TagType: tag.TypeCharacter, EngName: "Dark", IsActive: true},
		{ID: tagGenderUnspecified, TagType: tag.TypeCharacter, EngName: "Unspecified", IsActive: true},
		{ID: tagGenderFemale, TagType: tag.TypeCharacter, EngName: "Female", IsActive: true},
	}
	require.NoError(t, gdb.Create(&tags).Error)
	edges := []tag.TagSet{
		{SuperID: tag.IDProfile, SubID: tag.IDLanguage, Priority: 3, IsActive: true},
		{SuperID: tag.IDProfile, SubID: tag.IDTheme, Priority: 2, IsActive: true},
		{SuperID: tag.IDProfile, SubID: tag.IDGender, Priority: 1, IsActive: true},
		{SuperID: tag.IDLanguage, SubID: tag.IDEnglish, Priority: 2, IsActive: true},
		{SuperID: tag.IDLanguage, SubID: tag.IDKorean, Priority: 1, IsActive: true},
		{SuperID: tag.IDTheme, SubID: tag.IDLight, Priority: 2, IsActive: true},
		{SuperID: tag.IDTheme, SubID: tag.IDDark, Priority: 1, IsActive: true},
		{SuperID: tag.IDGender, SubID: tagGenderUnspecified, Priority: 2, IsActive: true},
		{SuperID: tag.IDGender, SubID: tagGenderFemale, Priority: 1, IsActive: true},
		{SuperID: tag.IDUnselected, SubID: tagGenderUnspecified, Priority: 1, IsActive: true},
	}
	require.NoError(t, gdb.Create(&edges).Error)

	now := func() time.Time { return testNow }
	return &Service{DB: gdb, Logs: &lifelog.Service{DB: gdb, Now: now}, Now: now}, gdb
}

func signUp(t *testing.T, s *Service, email string) Avatar {
	t.Helper()
	a, err := s.Create(context.Background(), CreateInput{
		Email: email, Password: "password1", FirstName: "Eun", LastName: "Lee", LanguageID: tag.IDKorean,
	})
	require.NoError(t, err)
	return a
}

func TestCreate(t *testing.T) {
	s, gdb := newService(t)
	ctx := context.Background()

	a := signUp(t, s, "  New@Dymm.App ")
	assert.Equal(t, "new@dymm.app", a.Email)
	assert.GreaterOrEqual(t, a.ColorCode, 1)
	assert.LessOrEqual(t, a.ColorCode, 15)
	assert.True(t, a.IsActive)
	assert.False(t, a.IsConfirmed)

	_, err := s.Create(ctx, CreateInput{Email: "new@dymm.app", Password: "password1"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = s.Create(ctx, CreateInput{Email: "x@dymm.app", Password: "password1", LanguageID: tag.IDDark})
	assert.ErrorIs(t, err, ErrInvalidLanguage)

	var pts []ProfileTag
	require.NoError(t, gdb.Where("avatar_id = ?", a.ID).Order("priority").Find(&pts).Error)
	require.Len(t, pts, 3)
	assert.Equal(t, ProfileTag{SuperTagID: tag.IDLanguage, SubTagID: tag.IDKorean, IsSelected: true},
		ProfileTag{SuperTagID: pts[0].SuperTagID, SubTagID: pts[0].SubTagID, IsSelected: pts[0].IsSelected})
	assert.Equal(t, tag.IDLight, pts[1].SubTagID)
	assert.Equal(t, tag.IDGender, pts[2].SubTagID)
	assert.False(t, pts[2].IsSelected)

	var queued []jobs.Job
	require.NoError(t, gdb.Find(&queued).Error)
	require.Len(t, queued, 1)
	assert.Equal(t, jobs.TypeMailConfirm, queued[0].Type)
	var p jobs.MailPayload
	require.NoError(t, json.Unmarshal(queued[0].Payload, &p))
	assert.Equal(t, a.ID, p.AvatarID)
	assert.Equal(t, "new@dymm.app", p.Email)
}

func TestAuthenticate(t *testing.T) {
	s, gdb := newService(t)
	ctx := context.Background()
	a := signUp(t, s, "me@dymm.app")

	got, lang, err := s.Authenticate(ctx, "ME@dymm.app", "password1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, tag.IDKorean, lang)

	_, _, err = s.Authenticate(ctx, "nobody@dymm.app", "password1")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, _, err = s.Authenticate(ctx, "me@dymm.app", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	require.NoError(t, gdb.Model(&Avatar{}).Where("id = ?", a.ID).Update("is_blocked", true).Error)
	_, _, err = s.Authenticate(ctx, "me@dymm.app", "password1")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestUpdateInfo(t *testing.T) {
	s, gdb := newService(t)
	ctx := context.Background()
	a := signUp(t, s, "me@dymm.app")
	signUp(t, s, "taken@dymm.app")

	require.NoError(t, s.UpdateInfo(ctx, a.ID, TargetFirstName, " Jane ", ""))
	require.NoError(t, s.UpdateInfo(ctx, a.ID, TargetColorCode, "7", ""))
	require.NoError(t, s.UpdateInfo(ctx, a.ID, TargetDateOfBirth, "1990-01-01", ""))
	require.NoError(t, s.UpdateInfo(ctx, a.ID, TargetIntro, "hello", ""))

	assert.ErrorIs(t, s.UpdateInfo(ctx, a.ID, TargetColorCode, "16", ""), ErrInvalidValue)
	assert.ErrorIs(t, s.UpdateInfo(ctx, a.ID, TargetDateOfBirth, "2999-01-01", ""), ErrInvalidValue)
	assert.ErrorIs(t, s.UpdateInfo(ctx, a.ID, "nickname", "x", ""), ErrInvalidTarget)
	assert.ErrorIs(t, s.UpdateInfo(ctx, a.ID, TargetPassword, "newpassword", "bad"), ErrInvalidPassword)
	assert.ErrorIs(t, s.UpdateInfo(ctx, a.ID, TargetEmail, "taken@dymm.app", ""), ErrDuplicateEmail)
	assert.ErrorIs(t, s.UpdateInfo(ctx, 999, TargetFirstName, "x", ""), ErrAvatarNotFound)

	require.NoError(t, s.UpdateInfo(ctx, a.ID, TargetPassword, "newpassword", "password1"))
	_, _, err := s.Authenticate(ctx, "me@dymm.app", "newpassword")
	require.NoError(t, err)

	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, 7, got.ColorCode)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, 1990, got.DateOfBirth.Year())
	require.NotNil(t, got.Introduction)
	assert.Equal(t, "hello", *got.Introduction)

	require.NoError(t, gdb.Model(&Avatar{}).Where("id = ?", a.ID).Update("is_confirmed", true).Error)
	require.NoError(t, s.UpdateInfo(ctx, a.ID, TargetEmail, "Moved@dymm.app", ""))
	got, err = s.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "moved@dymm.app", got.Email)
	assert.False(t, got.IsConfirmed)

	var n int64
	require.NoError(t, gdb.Model(&jobs.Job{}).Where("avatar_id = ?", a.ID).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestConfirmMailAndProfile(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	a := signUp(t, s, "me@dymm.app")

	_, err := s.Profile(ctx, a.ID)
	assert.ErrorIs(t, err, ErrMailNotConfirmed)

	_, err = s.ConfirmMail(ctx, a.ID, "old@dymm.app")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	already, err := s.ConfirmMail(ctx, a.ID, "me@dymm.app")
	require.NoError(t, err)
	assert.False(t, already)
	already, err = s.ConfirmMail(ctx, a.ID, "me@dymm.app")
	require.NoError(t, err)
	assert.True(t, already)

	p, err := s.Profile(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, p.ProfileTags, 3)
	assert.Equal(t, "Korean", p.ProfileTags[0].EngName)
	assert.Equal(t, "Gender", p.ProfileTags[2].EngName)
}

func TestSetProfileTag(t *testing.T) {
	s, gdb := newService(t)
	ctx := context.Background()
	a := signUp(t, s, "me@dymm.app")

	var gender ProfileTag
	require.NoError(t, gdb.Where("avatar_id = ? AND super_tag_id = ?", a.ID, tag.IDGender).First(&gender).Error)

	require.NoError(t, s.SetProfileTag(ctx, a.ID, gender.ID, tagGenderFemale))
	require.NoError(t, gdb.First(&gender, gender.ID).Error)
	assert.Equal(t, tagGenderFemale, gender.SubTagID)
	assert.True(t, gender.IsSelected)

	require.NoError(t, s.SetProfileTag(ctx, a.ID, gender.ID, tagGenderUnspecified))
	require.NoError(t, gdb.First(&gender, gender.ID).Error)
	assert.False(t, gender.IsSelected)

	assert.ErrorIs(t, s.SetProfileTag(ctx, a.ID, gender.ID, tag.IDDark), ErrInvalidValue)
	assert.ErrorIs(t, s.SetProfileTag(ctx, a.ID+1, gender.ID, tagGenderFemale), ErrProfileTagNotFound)
}

func TestSetPhoto(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	a := signUp(t, s, "me@dymm.app")

	require.NoError(t, s.SetPhoto(ctx, a.ID, "avatars/1/x.png"))
	got, err := s.Get(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PhotoName)
	assert.Equal(t, "avatars/1/x.png", *got.PhotoName)

	assert.ErrorIs(t, s.SetPhoto(ctx, 999, "k"), ErrAvatarNotFound)
}

func TestPasswordHashNotSerialized(t *testing.T) {
	h, err := auth.HashPassword("password1")
	require.NoError(t, err)
	b, err := json.Marshal(Avatar{ID: 1, PasswordHash: h})
	require.NoError(t, err)
	assert.NotContains(t, string(b), h)
}
