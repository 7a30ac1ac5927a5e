package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// getEnv treats empty as unset, so this isolates from the host env.
	for _, key := range []string{"PORT", "JWT_ACCESS_EXPIRY", "ENGINE_RUN_HOUR", "ENGINE_RUN_ON_START", "ENGINE_FETCH_RETRIES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, 24*time.Hour, cfg.JWTAccessExpiry)
	require.Equal(t, 4, cfg.EngineRunHour)
	require.False(t, cfg.EngineRunOnStart)
	require.Equal(t, 3, cfg.EngineFetchRetries)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_ACCESS_EXPIRY", "15m")
	t.Setenv("ENGINE_RUN_HOUR", "2")
	t.Setenv("ENGINE_RUN_ON_START", "true")
	t.Setenv("ENGINE_FETCH_RETRIES", "5")

	cfg := Load()

	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	require.Equal(t, 2, cfg.EngineRunHour)
	require.True(t, cfg.EngineRunOnStart)
	require.Equal(t, 5, cfg.EngineFetchRetries)
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "not-a-duration")
	t.Setenv("ENGINE_RUN_HOUR", "noon")
	t.Setenv("ENGINE_RUN_ON_START", "maybe")

	cfg := Load()

	require.Equal(t, 24*time.Hour, cfg.JWTAccessExpiry)
	require.Equal(t, 4, cfg.EngineRunHour)
	require.False(t, cfg.EngineRunOnStart)
}
