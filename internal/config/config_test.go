package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentials(t *testing.T) {
	creds, err := ParseCredentials(" admin:admin123 , user:p:w ,")
	require.NoError(t, err)
	assert.Equal(t, []Credential{
		{Username: "admin", Password: "admin123"},
		{Username: "user", Password: "p:w"},
	}, creds)

	_, err = ParseCredentials("nopassword")
	assert.Error(t, err)

	_, err = ParseCredentials("a:1,a:2")
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("AUTH_USERS", "")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Len(t, cfg.Auth.Users, 2)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")
	_, err := Load()
	assert.Error(t, err)
}
