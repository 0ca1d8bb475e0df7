package db

import (
	"context"
	"testing"

	"dymm/internal/db/dbtest"
	"dymm/internal/tag"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateSeedsReferenceTags(t *testing.T) {
	gdb := dbtest.Open(t, Models()...)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	require.NoError(t, Migrate(sqlDB, "sqlite3"))

	var root tag.Tag
	require.NoError(t, gdb.First(&root, tag.IDFood).Error)
	assert.Equal(t, tag.ClassFood, root.Class1)
	assert.True(t, root.IsActive)

	store := &tag.Store{DB: gdb}
	langs, err := store.Children(context.Background(), tag.IDLanguage, tag.SortPriority, 0)
	require.NoError(t, err)
	require.Len(t, langs, 3)
	assert.Equal(t, tag.IDEnglish, langs[0].ID)

	ok, err := store.HasChild(context.Background(), tag.IDUnselected, 29)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMigrateIsIdempotent(t *testing.T) {
	gdb := dbtest.Open(t, Models()...)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	require.NoError(t, Migrate(sqlDB, "sqlite3"))
	require.NoError(t, Migrate(sqlDB, "sqlite3"))

	var n int64
	require.NoError(t, gdb.Model(&tag.TagSet{}).Where("super_id = ?", tag.IDBookmark).Count(&n).Error)
	assert.EqualValues(t, 4, n)
}

func TestActiveEmailIsUnique(t *testing.T) {
	gdb := dbtest.Open(t, Models()...)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, Migrate(sqlDB, "sqlite3"))

	_, err = sqlDB.Exec(`insert into avatars (email, password_hash, is_active, is_blocked, is_confirmed, is_admin, created_at, updated_at)
		values ('a@x.io', 'h', true, false, false, false, current_timestamp, current_timestamp)`)
	require.NoError(t, err)
	_, err = sqlDB.Exec(`insert into avatars (email, password_hash, is_active, is_blocked, is_confirmed, is_admin, created_at, updated_at)
		values ('a@x.io', 'h', true, false, false, false, current_timestamp, current_timestamp)`)
	assert.Error(t, err)
}
