package banner

import (
	"context"
	"testing"

	"dymm/internal/db/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	gdb := dbtest.Open(t, &Banner{})
	rows := []Banner{
		{ID: 1, EngTitle: "low", Priority: 1, IsActive: true},
		{ID: 2, EngTitle: "high", Priority: 9, IsActive: true},
		{ID: 3, EngTitle: "off", Priority: 99, IsActive: false},
	}
	require.NoError(t, gdb.Create(&rows).Error)

	got, err := (&Service{DB: gdb}).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "high", got[0].EngTitle)
	assert.Equal(t, "low", got[1].EngTitle)
}
