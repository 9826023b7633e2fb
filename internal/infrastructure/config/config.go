package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Sandbox   SandboxConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// SandboxConfig holds the filesystem sandbox configuration.
type SandboxConfig struct {
	Dir          string `envconfig:"SANDBOX_DIR" default:"test_folder"`
	MaxReadBytes int64  `envconfig:"SANDBOX_MAX_READ_BYTES" default:"200000"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	AllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile reads a dotenv file into the process environment and then
// loads the configuration. Variables already set in the environment win. A
// missing file is not an error.
func LoadEnvFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
		}
	}
	return Load()
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Sandbox.Dir) == "" {
		return fmt.Errorf("SANDBOX_DIR cannot be empty")
	}
	if c.Sandbox.MaxReadBytes <= 0 {
		return fmt.Errorf("SANDBOX_MAX_READ_BYTES must be positive, got %d", c.Sandbox.MaxReadBytes)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive when rate limiting is enabled")
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Sandbox: SandboxConfig{
			Dir:          "test_folder",
			MaxReadBytes: 200_000,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowOrigins: []string{"*"},
		},
	}
}
