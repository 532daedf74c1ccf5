package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("missing signing secret refuses to boot", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "")

		_, err := LoadConfig()
		require.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "unit-test-secret")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, "tally-auth", cfg.Issuer)
		require.Equal(t, "tally-api", cfg.Audience)
		require.Equal(t, time.Minute, cfg.AccessTokenTTL)
		require.Equal(t, 24*time.Hour, cfg.RefreshTokenTTL)
		require.Equal(t, 8080, cfg.Port)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AUTH_JWT_SECRET", "unit-test-secret")
		t.Setenv("AUTH_ACCESS_TOKEN_TTL", "5m")
		t.Setenv("AUTH_REFRESH_TOKEN_TTL", "72h")
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_FORMAT", "text")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
		require.Equal(t, 72*time.Hour, cfg.RefreshTokenTTL)
		require.Equal(t, 9090, cfg.Port)
		require.Equal(t, "text", cfg.LogFormat)
	})
}
