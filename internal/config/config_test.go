package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMA_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, ":8081", cfg.Web.HTTPAddress())
	require.Equal(t, time.Second, cfg.Web.ReloadDelay)
	require.Equal(t, 2*time.Minute, cfg.AssignmentsCacheTTL)
	require.Equal(t, "http://localhost:8080", cfg.Web.APIBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GEMA_DATABASE_DRIVER", "SQLite")
	t.Setenv("GEMA_WEB_RELOAD_DELAY", "250ms")
	t.Setenv("GEMA_WEB_API_BASE_URL", "http://api.internal/")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 250*time.Millisecond, cfg.Web.ReloadDelay)
	require.Equal(t, "http://api.internal", cfg.Web.APIBaseURL)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("GEMA_DATABASE_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	t.Setenv("GEMA_WEB_RELOAD_DELAY", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "web.reload_delay")
}

func TestValidate(t *testing.T) {
	require.Error(t, Config{}.Validate())
	require.Error(t, Config{JWTSecret: "s"}.Validate())
	require.NoError(t, Config{JWTSecret: "s", DatabaseURL: "file::memory:"}.Validate())
}
