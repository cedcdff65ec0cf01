package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"postboard/internal/db"
	"postboard/internal/model"
)

// newTestDB returns a migrated in-memory SQLite database private to t.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.New("sqlite", "file::memory:", "silent")
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func createUser(t *testing.T, gormDB *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Name: email, Email: email, PasswordHash: "x"}
	require.NoError(t, NewUserRepository(gormDB).Create(context.Background(), user))
	return user
}

func ptr(s string) *string { return &s }
