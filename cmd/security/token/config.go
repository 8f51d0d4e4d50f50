package token

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls token signing.
type Config struct {
	// Secret is the HMAC key. Required.
	Secret string `env:"SHELF_JWT_KEY"`

	// ExpirationHours is the lifetime of issued claims.
	ExpirationHours int64 `env:"SHELF_JWT_EXPIRATION" envDefault:"24"`
}

// TTL returns the configured claim lifetime.
func (c Config) TTL() time.Duration {
	return time.Duration(c.ExpirationHours) * time.Hour
}

// Validate reports ErrConfig for an empty secret or a non-positive lifetime.
func (c Config) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("%w: jwt secret is empty", ErrConfig)
	}
	if c.ExpirationHours <= 0 {
		return fmt.Errorf("%w: jwt expiration must be positive", ErrConfig)
	}
	return nil
}

// LoadConfigFromEnv loads token configuration.
//
// Required: SHELF_JWT_KEY. Optional: SHELF_JWT_EXPIRATION (hours, default 24).
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
