package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("AUTH_DISABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 120, cfg.Server.RequestsPerMin)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Hour, cfg.Redis.WizardTTL)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.True(t, cfg.Firebase.Disabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("PORT", "9000")
	t.Setenv("WIZARD_SESSION_TTL", "30m")
	t.Setenv("RATE_LIMIT_PER_MIN", "60")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Redis.WizardTTL)
	assert.Equal(t, 60, cfg.Server.RequestsPerMin)
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")
	t.Setenv("AUTH_DISABLED", "true")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN")
}

func TestLoadRequiresFirebaseUnlessDisabled(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("AUTH_DISABLED", "")
	t.Setenv("FIREBASE_CREDENTIALS_PATH", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FIREBASE_CREDENTIALS_PATH")
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/test")
	t.Setenv("AUTH_DISABLED", "true")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 120, cfg.Server.RequestsPerMin)
}
