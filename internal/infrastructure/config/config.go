package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Seed      SeedConfig
	Export    ExportConfig
	Model     ModelConfig
	Locale    LocaleConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// StorageConfig holds entry store configuration.
type StorageConfig struct {
	DSN string `envconfig:"STORAGE_DSN" default:"workspace.db"`
}

// SeedConfig selects the source of seeded client files.
// BaseURL wins when both are set.
type SeedConfig struct {
	BaseURL string `envconfig:"SEED_BASE_URL" default:""`
	Dir     string `envconfig:"SEED_DIR" default:"web"`
}

// ExportConfig holds export configuration.
type ExportConfig struct {
	Dir string `envconfig:"EXPORT_DIR" default:"exports"`
}

// ModelConfig holds chat-completions client configuration.
type ModelConfig struct {
	Endpoint          string        `envconfig:"MODEL_ENDPOINT" default:"https://api.vsegpt.ru/v1/chat/completions"`
	Timeout           time.Duration `envconfig:"MODEL_TIMEOUT" default:"60s"`
	RequestsPerSecond float64       `envconfig:"MODEL_RPS" default:"2"`
}

// LocaleConfig holds the collation language for tree ordering.
type LocaleConfig struct {
	Language string `envconfig:"LOCALE" default:"und"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			DSN: "workspace.db",
		},
		Seed: SeedConfig{
			Dir: "web",
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Model: ModelConfig{
			Endpoint:          "https://api.vsegpt.ru/v1/chat/completions",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 2,
		},
		Locale: LocaleConfig{
			Language: "und",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
