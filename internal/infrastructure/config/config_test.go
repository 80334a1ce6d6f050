package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "workspace.db", cfg.Storage.DSN)
	assert.Equal(t, "web", cfg.Seed.Dir)
	assert.Empty(t, cfg.Seed.BaseURL)
	assert.Equal(t, "exports", cfg.Export.Dir)
	assert.Equal(t, 60*time.Second, cfg.Model.Timeout)
	assert.Equal(t, "und", cfg.Locale.Language)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"STORAGE_DSN":        ":memory:",
		"SEED_BASE_URL":      "http://localhost:5173",
		"SEED_DIR":           "/srv/web",
		"EXPORT_DIR":         "/tmp/exports",
		"MODEL_ENDPOINT":     "http://model.local/v1/chat/completions",
		"MODEL_TIMEOUT":      "5s",
		"MODEL_RPS":          "0.5",
		"LOCALE":             "ru",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "http://localhost:5173", cfg.Seed.BaseURL)
	assert.Equal(t, "/srv/web", cfg.Seed.Dir)
	assert.Equal(t, "/tmp/exports", cfg.Export.Dir)
	assert.Equal(t, "http://model.local/v1/chat/completions", cfg.Model.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Model.Timeout)
	assert.InDelta(t, 0.5, cfg.Model.RequestsPerSecond, 1e-9)
	assert.Equal(t, "ru", cfg.Locale.Language)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadInvalidValue(t *testing.T) {
	t.Setenv("MODEL_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.Equal(t, Default(), cfg)
}
