package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"JOSH_SPACE_CONFIG_PATH", "JOSH_SPACE_SERVER_HOST", "PORT", "JOSH_SPACE_SERVER_PORT",
		"GIN_MODE", "JOSH_SPACE_VARIANT", "JOSH_SPACE_PROJECTS_PATH", "JOSH_SPACE_SESSION_TTL",
		"JOSH_SPACE_DB_PATH", "JOSH_SPACE_TRACKING", "ADMIN_USERNAME", "ADMIN_PASSWORD",
		"JOSH_SPACE_LOG_LEVEL", "JOSH_SPACE_MAX_SESSIONS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.True(t, cfg.DefaultAdminCredentials())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  port: 9000
site:
  variant: lens
  session_ttl: 5m
db:
  path: /tmp/site.db
tracking:
  enabled: false
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("JOSH_SPACE_CONFIG_PATH", path)
	t.Setenv("JOSH_SPACE_SERVER_PORT", "9100")
	t.Setenv("JOSH_SPACE_LOG_LEVEL", "debug")
	t.Setenv("ADMIN_PASSWORD", "s3cret")
	t.Setenv("JOSH_SPACE_MAX_SESSIONS", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "lens", cfg.Site.Variant)
	assert.Equal(t, 5*time.Minute, cfg.Site.SessionTTL)
	assert.Equal(t, 50, cfg.Site.MaxSessions)
	assert.Equal(t, "/tmp/site.db", cfg.DB.Path)
	assert.False(t, cfg.Tracking.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.DefaultAdminCredentials())
}

func TestPortPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)

	t.Setenv("JOSH_SPACE_SERVER_PORT", "4000")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
}

func TestLoadErrors(t *testing.T) {
	for key, value := range map[string]string{
		"PORT":                    "eighty",
		"JOSH_SPACE_SESSION_TTL":  "forever",
		"JOSH_SPACE_TRACKING":     "maybe",
		"JOSH_SPACE_MAX_SESSIONS": "lots",
		"JOSH_SPACE_CONFIG_PATH":  filepath.Join(t.TempDir(), "missing.yaml"),
	} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
