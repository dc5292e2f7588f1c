package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8099, cfg.Server.Port)
	assert.Equal(t, "./data", cfg.Server.DataDir)
	assert.Equal(t, "hearth-admin", cfg.Auth.BootstrapPassword)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenLifetime)
	assert.Equal(t, 5, cfg.Auth.RateLimitMaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Auth.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.WS.ClockInterval)
	assert.Empty(t, cfg.Upstream.WeatherURL)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9001
auth:
  rate_limit_max_attempts: 3
upstream:
  weather_url: http://weather.local/api
`), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Auth.RateLimitMaxAttempts)
	assert.Equal(t, "http://weather.local/api", cfg.Upstream.WeatherURL)
	// Untouched keys keep their defaults.
	assert.Equal(t, "./data", cfg.Server.DataDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9001\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HEARTH_SERVER_PORT", "9002")
	t.Setenv("HEARTH_AUTH_TOKEN_LIFETIME", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9002, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenLifetime)
}

func TestLoad_ValidationRejectsBadPort(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("HEARTH_SERVER_PORT", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HEARTH_SERVER_PORT", "server.port"},
		{"HEARTH_SERVER_DATA_DIR", "server.data_dir"},
		{"HEARTH_AUTH_TOKEN_LIFETIME", "auth.token_lifetime"},
		{"HEARTH_AUTH_RATE_LIMIT_MAX_ATTEMPTS", "auth.rate_limit_max_attempts"},
		{"HEARTH_UPSTREAM_WEATHER_URL", "upstream.weather_url"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, envTransform(tt.in), tt.in)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config { return defaultConfig() }

	t.Run("defaults pass", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})
	t.Run("empty data dir", func(t *testing.T) {
		c := base()
		c.Server.DataDir = ""
		assert.Error(t, c.Validate())
	})
	t.Run("empty bootstrap password", func(t *testing.T) {
		c := base()
		c.Auth.BootstrapPassword = ""
		assert.Error(t, c.Validate())
	})
	t.Run("non-positive window", func(t *testing.T) {
		c := base()
		c.Auth.RateLimitWindow = 0
		assert.Error(t, c.Validate())
	})
}
