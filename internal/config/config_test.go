package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DB_DRIVER", "DB_DSN", "LOGIN_MAX_ATTEMPTS", "LOGIN_DECAY_SECONDS", "CORS_ALLOWED_ORIGINS", "RESET_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Contains(t, cfg.DBDSN, "tcp(localhost:3306)")
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 60, cfg.LoginDecaySeconds)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.ResetDB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_DSN", "")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("LOGIN_DECAY_SECONDS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("RESET_DB", "true")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Contains(t, cfg.DBDSN, "dbname=postboard")
	assert.Equal(t, 3, cfg.LoginMaxAttempts)
	assert.Equal(t, 60, cfg.LoginDecaySeconds)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.ResetDB)
}
