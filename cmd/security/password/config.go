package password

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Params controls Argon2i cost. MemoryKiB is in KiB as required by argon2.Key.
type Params struct {
	Iterations  uint32 `env:"SHELF_ARGON2_ITERATIONS" envDefault:"3"`
	MemoryKiB   uint32 `env:"SHELF_ARGON2_MEMORY_KIB" envDefault:"4096"`
	Parallelism uint8  `env:"SHELF_ARGON2_PARALLELISM" envDefault:"1"`
	KeyLength   uint32 `env:"SHELF_ARGON2_KEY_LEN" envDefault:"32"`
}

// Policy controls password validation and anti-DoS boundaries.
type Policy struct {
	MinLength int `env:"SHELF_PASSWORD_MIN_LEN" envDefault:"6"`
	MaxLength int `env:"SHELF_PASSWORD_MAX_LEN" envDefault:"256"`
	// If true, enable an extra, minimal weak-pattern rejection.
	RejectVeryWeak bool `env:"SHELF_PASSWORD_REJECT_VERY_WEAK" envDefault:"false"`
}

// Config is the single configuration surface for this package.
type Config struct {
	// AuthSalt is the process-wide secondary salt mixed into every per-user salt.
	AuthSalt string `env:"SHELF_AUTH_SALT"`

	// Workers bounds concurrent hash computations. Zero means one per CPU.
	Workers int `env:"SHELF_HASH_WORKERS" envDefault:"0"`

	Params Params
	Policy Policy
}

// DefaultParams mirrors the parameters existing hashes were produced with:
// Argon2i, 3 passes, 4 MiB, a single lane and a 32-byte digest.
func DefaultParams() Params {
	return Params{
		Iterations:  3,
		MemoryKiB:   4096,
		Parallelism: 1,
		KeyLength:   32,
	}
}

// DefaultConfig returns defaults without an auth salt; callers must supply one.
func DefaultConfig() Config {
	return Config{
		Params: DefaultParams(),
		Policy: Policy{
			MinLength: 6,
			MaxLength: 256,
		},
	}
}

// LoadConfigFromEnv loads config from environment variables.
//
// Env surface:
// - SHELF_AUTH_SALT (required, non-empty)
// - SHELF_HASH_WORKERS
// - SHELF_PASSWORD_MIN_LEN, SHELF_PASSWORD_MAX_LEN, SHELF_PASSWORD_REJECT_VERY_WEAK
// - SHELF_ARGON2_ITERATIONS, SHELF_ARGON2_MEMORY_KIB, SHELF_ARGON2_PARALLELISM, SHELF_ARGON2_KEY_LEN
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

// Validate reports ErrConfig for unusable settings.
func (c Config) Validate() error {
	if c.AuthSalt == "" {
		return fmt.Errorf("%w: auth salt is empty", ErrConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: negative hash workers", ErrConfig)
	}
	if c.Params.Iterations < 1 || c.Params.Iterations > 20 {
		return fmt.Errorf("%w: argon2 iterations out of range [1..20]", ErrConfig)
	}
	if c.Params.MemoryKiB < 8 || c.Params.MemoryKiB > 1024*1024 {
		return fmt.Errorf("%w: argon2 memory out of range", ErrConfig)
	}
	if c.Params.Parallelism < 1 {
		return fmt.Errorf("%w: argon2 parallelism must be >= 1", ErrConfig)
	}
	if c.Params.KeyLength < 16 || c.Params.KeyLength > 64 {
		return fmt.Errorf("%w: argon2 key length out of range [16..64]", ErrConfig)
	}
	if c.Policy.MinLength < 0 || c.Policy.MinLength > c.Policy.MaxLength {
		return fmt.Errorf(
			"%w: password policy min_len(%d) > max_len(%d)",
			ErrConfig,
			c.Policy.MinLength,
			c.Policy.MaxLength,
		)
	}
	return nil
}
