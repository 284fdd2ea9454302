package config

import (
	"fmt"

	pkgconfig "github.com/WasepSKT/sls-b2b-commerce-hub-sub002/pkg/config"
)

// Store backend names accepted by STATE_STORE_BACKEND.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config holds all configuration for the client shell.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	// Session tokens
	JWTSecret       string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"24"`

	// Durable state store
	StoreBackend string `env:"STATE_STORE_BACKEND" envDefault:"file"`
	StoreDir     string `env:"STATE_STORE_DIR" envDefault:".clienthub"`
	StateTTLDays int    `env:"STATE_TTL_DAYS" envDefault:"30"`

	// Redis (used when STATE_STORE_BACKEND=redis)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load client config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StoreBackend {
	case StoreMemory, StoreFile, StoreRedis:
	default:
		return fmt.Errorf("unknown state store backend: %q", c.StoreBackend)
	}
	if c.SessionTTLHours < 1 {
		return fmt.Errorf("session TTL must be at least 1 hour, got %d", c.SessionTTLHours)
	}
	return nil
}
