package idpolicy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrConfig is returned for invalid configuration.
var ErrConfig = errors.New("invalid identity policy config")

// Variant names accepted by Config.Variant.
const (
	VariantCookie  = "cookie"
	VariantSession = "session"
)

// MinSessionKeyLen is the shortest accepted SHELF_SESSION_KEY, in bytes.
const MinSessionKeyLen = 32

type Config struct {
	// SessionKey is the master secret cookie keys are derived from.
	SessionKey string `env:"SHELF_SESSION_KEY"`

	// SessionName names the session-id cookie; the cookie variant uses "id-" + SessionName.
	SessionName string `env:"SHELF_SESSION_NAME" envDefault:"shelf-session"`

	TimeoutMinutes int64 `env:"SHELF_SESSION_TIMEOUT" envDefault:"20"`

	Secure bool `env:"SHELF_SESSION_SECURE" envDefault:"true"`

	// SameSite is matched case-insensitively against STRICT and NONE; anything else is LAX.
	SameSite string `env:"SHELF_SESSION_SAMESITE" envDefault:"lax"`

	Variant string `env:"SHELF_IDENTITY_POLICY" envDefault:"cookie"`
}

// DefaultConfig returns defaults without a session key; callers must supply one.
func DefaultConfig() Config {
	return Config{
		SessionName:    "shelf-session",
		TimeoutMinutes: 20,
		Secure:         true,
		SameSite:       "lax",
		Variant:        VariantCookie,
	}
}

// TTL converts the configured minutes to a duration.
func (c Config) TTL() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// MaxAge is the cookie Max-Age in seconds.
func (c Config) MaxAge() int {
	return int(c.TimeoutMinutes * 60)
}

func (c Config) Validate() error {
	if len(c.SessionKey) < MinSessionKeyLen {
		return fmt.Errorf("%w: session key must be at least %d bytes", ErrConfig, MinSessionKeyLen)
	}
	if strings.TrimSpace(c.SessionName) == "" {
		return fmt.Errorf("%w: session name is empty", ErrConfig)
	}
	if c.TimeoutMinutes <= 0 {
		return fmt.Errorf("%w: session timeout must be positive", ErrConfig)
	}
	switch strings.ToLower(strings.TrimSpace(c.Variant)) {
	case VariantCookie, VariantSession:
	default:
		return fmt.Errorf("%w: unknown identity policy %q", ErrConfig, c.Variant)
	}
	return nil
}

// LoadConfigFromEnv loads identity policy configuration.
//
// Required: SHELF_SESSION_KEY.
// Optional: SHELF_SESSION_NAME, SHELF_SESSION_TIMEOUT (minutes), SHELF_SESSION_SECURE,
// SHELF_SESSION_SAMESITE, SHELF_IDENTITY_POLICY (cookie|session).
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

// ParseSameSite maps "strict" and "none" (any case) to their modes and
// everything else, including "", to Lax.
func ParseSameSite(s string) http.SameSite {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STRICT":
		return http.SameSiteStrictMode
	case "NONE":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
