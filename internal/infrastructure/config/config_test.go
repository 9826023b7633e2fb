package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())

	// Sandbox config
	assert.Equal(t, "test_folder", cfg.Sandbox.Dir)
	assert.Equal(t, int64(200000), cfg.Sandbox.MaxReadBytes)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                   "9000",
		"HOST":                   "127.0.0.1",
		"SANDBOX_DIR":            "/srv/sandbox",
		"SANDBOX_MAX_READ_BYTES": "1024",
		"LOG_LEVEL":              "debug",
		"LOG_DEV":                "true",
		"RATE_LIMIT_RPS":         "500",
		"RATE_LIMIT_BURST":       "1000",
		"RATE_LIMIT_ENABLED":     "false",
		"CORS_ALLOW_ORIGINS":     "http://a.test,http://b.test",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, "/srv/sandbox", cfg.Sandbox.Dir)
	assert.Equal(t, int64(1024), cfg.Sandbox.MaxReadBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non-numeric read limit", "SANDBOX_MAX_READ_BYTES", "lots"},
		{"zero read limit", "SANDBOX_MAX_READ_BYTES", "0"},
		{"zero rate", "RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back instead of failing
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SANDBOX_DIR=from_file\nPORT=7000\n"), 0o644))

	// Unset afterwards; godotenv writes straight into the process environment.
	t.Setenv("SANDBOX_DIR", "")
	t.Setenv("PORT", "")
	os.Unsetenv("SANDBOX_DIR")
	os.Unsetenv("PORT")

	cfg, err := LoadEnvFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.Sandbox.Dir)
	assert.Equal(t, "7000", cfg.Server.Port)
}

func TestLoadEnvFileEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("SANDBOX_DIR=from_file\n"), 0o644))
	t.Setenv("SANDBOX_DIR", "from_env")

	cfg, err := LoadEnvFile(envFile)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.Sandbox.Dir)
}

func TestLoadEnvFileMissing(t *testing.T) {
	cfg, err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "test_folder", cfg.Sandbox.Dir)
}
