// Package config loads layered configuration: built-in defaults, an
// optional YAML file, then HEARTH_* environment variables on top.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search path.
const ConfigPathEnvVar = "HEARTH_CONFIG"

// DefaultConfigPaths lists where a config file is searched, first hit wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/hearthd/config.yaml",
}

// Config is the full hearthd configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Upstream UpstreamConfig `koanf:"upstream"`
	WS       WSConfig       `koanf:"ws"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port    int    `koanf:"port"`
	DataDir string `koanf:"data_dir"`
}

// AuthConfig holds the security-core knobs. The bootstrap password is the
// documented default for the first-run admin account; operators are
// expected to change it after first login.
type AuthConfig struct {
	BootstrapPassword    string        `koanf:"bootstrap_password"`
	TokenLifetime        time.Duration `koanf:"token_lifetime"`
	RateLimitMaxAttempts int           `koanf:"rate_limit_max_attempts"`
	RateLimitWindow      time.Duration `koanf:"rate_limit_window"`
}

// UpstreamConfig points at the dashboard's collaborator services. Empty
// URLs leave the corresponding endpoints unconfigured.
type UpstreamConfig struct {
	WeatherURL string `koanf:"weather_url"`
	InfraURL   string `koanf:"infra_url"`
}

// WSConfig holds push-channel settings.
type WSConfig struct {
	ClockInterval time.Duration `koanf:"clock_interval"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8099,
			DataDir: "./data",
		},
		Auth: AuthConfig{
			BootstrapPassword:    "hearth-admin",
			TokenLifetime:        7 * 24 * time.Hour,
			RateLimitMaxAttempts: 5,
			RateLimitWindow:      5 * time.Minute,
		},
		Upstream: UpstreamConfig{},
		WS: WSConfig{
			ClockInterval: 10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// HEARTH_* environment variables (highest priority). Variable names map
// to nested keys: HEARTH_AUTH_TOKEN_LIFETIME -> auth.token_lifetime.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("HEARTH_", ".", envTransform)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	return cfg, nil
}

// envTransform maps HEARTH_SERVER_PORT to server.port, and so on. Only
// the first underscore becomes a section separator; the remainder is the
// key, so HEARTH_AUTH_TOKEN_LIFETIME maps to auth.token_lifetime.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, "HEARTH_"))
	parts := strings.SplitN(s, "_", 2)
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + parts[1]
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		return ""
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Validate rejects configurations that cannot produce a working server.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.DataDir == "" {
		return fmt.Errorf("server.data_dir must not be empty")
	}
	if c.Auth.BootstrapPassword == "" {
		return fmt.Errorf("auth.bootstrap_password must not be empty")
	}
	if c.Auth.TokenLifetime <= 0 {
		return fmt.Errorf("auth.token_lifetime must be positive")
	}
	if c.Auth.RateLimitMaxAttempts < 1 {
		return fmt.Errorf("auth.rate_limit_max_attempts must be at least 1")
	}
	if c.Auth.RateLimitWindow <= 0 {
		return fmt.Errorf("auth.rate_limit_window must be positive")
	}
	return nil
}
