// Package config loads the server configuration from YAML with sensible
// defaults for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	CORS     CORSConfig     `yaml:"cors"`
	Log      LogConfig      `yaml:"log"`
	Audit    AuditConfig    `yaml:"audit"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit"`
	RateBurst       int           `yaml:"rate_burst"`
}

// DatabaseConfig controls persistence. An empty URL selects the in-memory
// store.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// AuthConfig controls token issuance.
type AuthConfig struct {
	Secret   string        `yaml:"secret"`
	TokenTTL time.Duration `yaml:"token_ttl"`
}

// CORSConfig lists the allowed origins; "*" allows all.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LogConfig controls the logging backend.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	Limit int    `yaml:"limit"`
	File  string `yaml:"file"`
}

// Load reads the configuration from config/hbnb.yaml.
func Load() (*Config, error) {
	return LoadFromPath(filepath.Join("config", "hbnb.yaml"))
}

// LoadFromPath reads the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("auth.secret is required")
	}

	return cfg, nil
}

// LoadOrDefault loads the configuration or returns the defaults when the
// file does not exist.
func LoadOrDefault(path string) *Config {
	cfg, err := LoadFromPath(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns the development defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       50,
			RateBurst:       100,
		},
		Auth: AuthConfig{
			Secret:   "dev-secret-change-me",
			TokenTTL: time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Audit: AuditConfig{
			Limit: 200,
		},
	}
}
