package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Site     SiteConfig     `yaml:"site"`
	DB       DBConfig       `yaml:"db"`
	Tracking TrackingConfig `yaml:"tracking"`
	Admin    AdminConfig    `yaml:"admin"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// SiteConfig controls the page itself.
type SiteConfig struct {
	// Variant is one of lens, arm or password.
	Variant      string        `yaml:"variant"`
	ProjectsPath string        `yaml:"projects_path"`
	SessionTTL   time.Duration `yaml:"session_ttl"`
	// MaxSessions caps live sessions; the longest idle is dropped first.
	MaxSessions  int           `yaml:"max_sessions"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type TrackingConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Retention time.Duration `yaml:"retention"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "release",
		},
		Site: SiteConfig{
			Variant:     "password",
			SessionTTL:  30 * time.Minute,
			MaxSessions: 10000,
		},
		DB: DBConfig{
			Path: "josh-space.db",
		},
		Tracking: TrackingConfig{
			Enabled:   true,
			Retention: 365 * 24 * time.Hour,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("JOSH_SPACE_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("JOSH_SPACE_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	// PORT is what most hosts inject; the prefixed form wins when both are set.
	for _, key := range []string{"PORT", "JOSH_SPACE_SERVER_PORT"} {
		if portStr := os.Getenv(key); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, fmt.Errorf("invalid %s: %w", key, err)
			}
			cfg.Server.Port = port
		}
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		cfg.Server.GinMode = mode
	}
	if variant := os.Getenv("JOSH_SPACE_VARIANT"); variant != "" {
		cfg.Site.Variant = variant
	}
	if path := os.Getenv("JOSH_SPACE_PROJECTS_PATH"); path != "" {
		cfg.Site.ProjectsPath = path
	}
	if ttl := os.Getenv("JOSH_SPACE_SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JOSH_SPACE_SESSION_TTL: %w", err)
		}
		cfg.Site.SessionTTL = d
	}
	if maxStr := os.Getenv("JOSH_SPACE_MAX_SESSIONS"); maxStr != "" {
		n, err := strconv.Atoi(maxStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JOSH_SPACE_MAX_SESSIONS: %w", err)
		}
		cfg.Site.MaxSessions = n
	}
	if dbPath := os.Getenv("JOSH_SPACE_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if enabled := os.Getenv("JOSH_SPACE_TRACKING"); enabled != "" {
		on, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JOSH_SPACE_TRACKING: %w", err)
		}
		cfg.Tracking.Enabled = on
	}
	if user := os.Getenv("ADMIN_USERNAME"); user != "" {
		cfg.Admin.Username = user
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		cfg.Admin.Password = pass
	}
	if level := os.Getenv("JOSH_SPACE_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// DefaultAdminCredentials reports whether the admin login still uses the
// built-in development credentials.
func (c Config) DefaultAdminCredentials() bool {
	d := Defaults().Admin
	return c.Admin.Username == d.Username && c.Admin.Password == d.Password
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
