package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct. The struct
// declares its mappings with `env` tags; typed validation beyond parsing
// (backend enums, port ranges) stays with the caller.
//
// Example:
//
//	type Config struct {
//	    StoreBackend string `env:"STATE_STORE_BACKEND" envDefault:"file"`
//	    JWTSecret    string `env:"JWT_SECRET"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
