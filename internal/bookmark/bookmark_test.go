package bookmark

import (
	"context"
	"testing"

	"dymm/internal/db/dbtest"
	"dymm/internal/tag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	gdb := dbtest.Open(t, &tag.Tag{}, &Bookmark{})
	tags := []tag.Tag{
		{ID: 300, TagType: tag.TypeFood, EngName: "Apple", IsActive: true},
		{ID: 301, TagType: tag.TypeDrug, EngName: "Aspirin", IsActive: true},
		{ID: 302, TagType: tag.TypeCategory, EngName: "Fruits", IsActive: true},
	}
	require.NoError(t, gdb.Create(&tags).Error)
	return &Service{DB: gdb}
}

func TestToggle(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	b, total, err := s.Toggle(ctx, 1, 300)
	require.NoError(t, err)
	assert.True(t, b.IsActive)
	assert.Equal(t, tag.IDBookmarkFood, b.SuperTagID)
	assert.Equal(t, int64(1), total)

	_, total, err = s.Toggle(ctx, 2, 300)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	again, total, err := s.Toggle(ctx, 1, 300)
	require.NoError(t, err)
	assert.Equal(t, b.ID, again.ID)
	assert.False(t, again.IsActive)
	assert.Equal(t, int64(1), total)

	_, err = s.Find(ctx, 1, 300)
	assert.ErrorIs(t, err, ErrNotFound)

	back, total, err := s.ToggleByID(ctx, 1, b.ID)
	require.NoError(t, err)
	assert.True(t, back.IsActive)
	assert.Equal(t, int64(2), total)

	_, _, err = s.ToggleByID(ctx, 2, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleRejects(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, _, err := s.Toggle(ctx, 1, 999)
	assert.ErrorIs(t, err, ErrTagNotFound)
	_, _, err = s.Toggle(ctx, 1, 302)
	assert.ErrorIs(t, err, ErrNotBookmarkable)
}

func TestList(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, _, err := s.Toggle(ctx, 1, 300)
	require.NoError(t, err)
	_, _, err = s.Toggle(ctx, 1, 301)
	require.NoError(t, err)

	foods, err := s.List(ctx, 1, tag.IDBookmarkFood)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, uint64(300), foods[0].ID)
	assert.Equal(t, "Apple", foods[0].EngName)
	assert.NotZero(t, foods[0].BookmarkID)

	drugs, err := s.List(ctx, 1, tag.IDBookmarkDrug)
	require.NoError(t, err)
	assert.Len(t, drugs, 1)

	none, err := s.List(ctx, 2, tag.IDBookmarkFood)
	require.NoError(t, err)
	assert.Empty(t, none)
}
