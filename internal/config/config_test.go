package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "user-service", cfg.App.Name)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	require.Equal(t, "dev-secret", cfg.Auth.JWTSecret)
	require.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	require.False(t, cfg.Auth.EnforcePasswords)
	require.True(t, cfg.Postgres.RunMigrations)
	require.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_JWT_SECRET", "prod-secret")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "5")
	t.Setenv("AUTH_ENFORCE_PASSWORDS", "true")
	t.Setenv("POSTGRES_DSN", "postgres://example/db")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.App.Port)
	require.Equal(t, "prod-secret", cfg.Auth.JWTSecret)
	require.Equal(t, 5*time.Minute, cfg.Auth.AccessTokenTTL())
	require.True(t, cfg.Auth.EnforcePasswords)
	require.Equal(t, "postgres://example/db", cfg.Postgres.DSN)
	require.False(t, cfg.Postgres.RunMigrations)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MalformedIntFallsBack(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "sixty")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
}
