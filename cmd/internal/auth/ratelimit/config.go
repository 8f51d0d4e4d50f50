package ratelimit

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrConfig is returned for invalid configuration.
var ErrConfig = errors.New("invalid config")

// Config is the fixed-window shape: at most Max admissions per Window per key.
type Config struct {
	Window time.Duration `env:"SHELF_RATE_LIMIT_WINDOW" envDefault:"30s"`
	Max    int64         `env:"SHELF_RATE_LIMIT_MAX" envDefault:"200"`
}

// DefaultConfig returns 200 admissions per 30 seconds.
func DefaultConfig() Config {
	return Config{Window: 30 * time.Second, Max: 200}
}

func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("%w: rate limit window must be positive", ErrConfig)
	}
	if c.Max <= 0 {
		return fmt.Errorf("%w: rate limit max must be positive", ErrConfig)
	}
	return nil
}

// LoadConfigFromEnv loads SHELF_RATE_LIMIT_WINDOW and SHELF_RATE_LIMIT_MAX.
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
