package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, AuthModeLocal, cfg.Auth.Mode)
	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow)
	assert.Equal(t, time.Hour, cfg.Auth.IdleTimeout)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.Statsd.Enabled)
	assert.Equal(t, "enerdesk", cfg.Statsd.Prefix)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("AUTH_MODE", "oidc")
	t.Setenv("AUTH_MAX_LOGIN_ATTEMPTS", "3")
	t.Setenv("AUTH_LOCKOUT_WINDOW", "5m")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("REDIS_URI", "redis://cache.internal:6380")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, AuthModeOIDC, cfg.Auth.Mode)
	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Auth.LockoutWindow)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "redis://cache.internal:6380", cfg.Redis.URI)
}

func TestInvalidAuthModeRejected(t *testing.T) {
	t.Setenv("AUTH_MODE", "saml")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid AuthMode")
}

func TestSanitizeClampsNonsenseValues(t *testing.T) {
	cfg := AppConfig{}
	cfg.Auth.MaxLoginAttempts = -1
	cfg.Auth.LockoutWindow = -time.Minute
	cfg.Sanitize()

	assert.Equal(t, 5, cfg.Auth.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow)
	assert.Equal(t, time.Hour, cfg.Auth.IdleTimeout)
}

func TestDetectDevModeFromAppEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
