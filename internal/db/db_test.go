package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postboard/internal/model"
)

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New("oracle", "dsn", "silent")
	assert.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	gormDB, err := New("sqlite", "file::memory:", "silent")
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(gormDB))

	for _, table := range []string{"users", "access_tokens", "tags", "posts", "post_tag", "comments"} {
		assert.True(t, gormDB.Migrator().HasTable(table), table)
	}
	assert.True(t, gormDB.Migrator().HasIndex(&model.Tag{}, "Name"))
}

func TestDialectMigrations(t *testing.T) {
	tests := []struct {
		dialect string
		want    int
	}{
		{dialect: "mysql", want: 1},
		{dialect: "postgres", want: 0},
		{dialect: "sqlite", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			stmts := dialectMigrations(tt.dialect)
			assert.Len(t, stmts, tt.want)
			for _, stmt := range stmts {
				assert.Contains(t, stmt, "utf8mb4_bin")
			}
		})
	}
}
