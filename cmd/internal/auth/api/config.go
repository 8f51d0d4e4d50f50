package authapi

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ErrConfig is returned for invalid configuration.
var ErrConfig = errors.New("invalid auth api config")

// Config controls auth API request handling.
type Config struct {
	// TrustProxy makes clientIP honour X-Forwarded-For / X-Real-IP.
	TrustProxy bool `env:"SHELF_TRUST_PROXY" envDefault:"false"`

	MaxBodyBytes int64 `env:"SHELF_AUTH_MAX_BODY_BYTES" envDefault:"1048576"`
}

// DefaultConfig returns direct-connection defaults with a 1 MiB body limit.
func DefaultConfig() Config {
	return Config{MaxBodyBytes: 1 << 20}
}

func (c Config) Validate() error {
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: max body bytes must be positive", ErrConfig)
	}
	return nil
}

// LoadConfigFromEnv loads auth config from environment variables with safe defaults.
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
