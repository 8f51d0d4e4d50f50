package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendBolt     = "bolt"
)

// Config selects and tunes the shared store.
type Config struct {
	// Backend is one of memory, postgres or bolt.
	Backend string `env:"SHELF_SESSION_BACKEND" envDefault:"memory"`

	// BoltPath is the database file used by the bolt backend.
	BoltPath string `env:"SHELF_SESSION_BOLT_PATH" envDefault:"shelf-sessions.db"`

	// TimeoutMinutes is the session TTL, kept in minutes as configured and
	// converted with TTL() where a duration is needed.
	TimeoutMinutes int64 `env:"SHELF_SESSION_TIMEOUT" envDefault:"20"`

	// OpTimeout bounds every store call.
	OpTimeout time.Duration `env:"SHELF_SESSION_OP_TIMEOUT" envDefault:"2s"`

	// PurgeInterval controls how often expired records are removed.
	PurgeInterval time.Duration `env:"SHELF_SESSION_PURGE_INTERVAL" envDefault:"1m"`
}

// DefaultConfig returns an in-memory configuration with a 20 minute TTL.
func DefaultConfig() Config {
	return Config{
		Backend:        BackendMemory,
		BoltPath:       "shelf-sessions.db",
		TimeoutMinutes: 20,
		OpTimeout:      2 * time.Second,
		PurgeInterval:  time.Minute,
	}
}

// TTL converts the configured minutes to a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// BackendName is Backend trimmed and lower-cased, the form callers switch on.
func (c Config) BackendName() string {
	return strings.ToLower(strings.TrimSpace(c.Backend))
}

// Validate returns ErrConfig for unusable settings.
func (c Config) Validate() error {
	switch c.BackendName() {
	case BackendMemory, BackendPostgres:
	case BackendBolt:
		if strings.TrimSpace(c.BoltPath) == "" {
			return fmt.Errorf("%w: bolt backend requires a path", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown session backend %q", ErrConfig, c.Backend)
	}
	if c.TimeoutMinutes <= 0 {
		return fmt.Errorf("%w: session timeout must be positive", ErrConfig)
	}
	if c.OpTimeout <= 0 || c.PurgeInterval <= 0 {
		return fmt.Errorf("%w: store timeouts must be positive", ErrConfig)
	}
	return nil
}

// LoadConfigFromEnv loads store configuration.
//
// Optional:
//   - SHELF_SESSION_BACKEND (memory|postgres|bolt)
//   - SHELF_SESSION_BOLT_PATH
//   - SHELF_SESSION_TIMEOUT (minutes)
//   - SHELF_SESSION_OP_TIMEOUT, SHELF_SESSION_PURGE_INTERVAL (Go durations)
//
// Returns ErrConfig if configuration is invalid.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	cfg.Backend = cfg.BackendName()
	return cfg, nil
}
