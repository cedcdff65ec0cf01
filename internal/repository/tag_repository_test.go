package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/model"
)

func TestTagRepository_FirstOrCreate(t *testing.T) {
	gormDB := newTestDB(t)
	repo := NewTagRepository(gormDB)
	ctx := context.Background()

	first, err := repo.FirstOrCreate(ctx, []string{"go", "Go", "go"})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "go", first[0].Name)
	assert.Equal(t, "Go", first[1].Name)

	again, err := repo.FirstOrCreate(ctx, []string{"Go", "rust"})
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, first[1].ID, again[0].ID)

	var n int64
	require.NoError(t, gormDB.Model(&model.Tag{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}
