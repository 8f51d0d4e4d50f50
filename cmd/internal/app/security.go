package app

import (
	"errors"
	"fmt"
	"strings"

	"shelf/cmd/internal/auth/idpolicy"
)

// ErrConfig is returned when startup configuration is unusable.
var ErrConfig = errors.New("invalid configuration")

// ValidateSecurityConfig fails startup when a secret is missing: the JWT key,
// the process-wide auth salt and the session key (at least 32 bytes, measured
// in bytes since it is used as raw key material).
func ValidateSecurityConfig(cfg Config) error {
	var errs []error

	if strings.TrimSpace(cfg.Token.Secret) == "" {
		errs = append(errs, errors.New("SHELF_JWT_KEY is not set"))
	}
	if cfg.Password.AuthSalt == "" {
		errs = append(errs, errors.New("SHELF_AUTH_SALT is not set"))
	}
	switch key := cfg.Policy.SessionKey; {
	case key == "":
		errs = append(errs, errors.New("SHELF_SESSION_KEY is not set"))
	case len(key) < idpolicy.MinSessionKeyLen:
		errs = append(errs, fmt.Errorf("SHELF_SESSION_KEY is too short (min %d bytes)", idpolicy.MinSessionKeyLen))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: security policy: %w", ErrConfig, errors.Join(errs...))
	}
	return nil
}
