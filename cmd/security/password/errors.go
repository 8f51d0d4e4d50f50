package password

import (
	"errors"
	"fmt"
)

var (
	// Policy violations; Validate wraps them in a *PolicyError.
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
	ErrWeakPassword     = errors.New("weak password")

	// ErrInvalidHash is returned by Verify for a stored hash that is not hex.
	ErrInvalidHash = errors.New("invalid password hash")

	// ErrConfig is returned when the hasher is misconfigured (for example an empty auth salt).
	ErrConfig = errors.New("invalid password config")
)

// PolicyError describes the rule a password broke. Its message is safe to
// return to the client that sent the password.
type PolicyError struct {
	Rule  error
	Limit int
}

func (e *PolicyError) Error() string {
	switch e.Rule {
	case ErrPasswordTooShort:
		return fmt.Sprintf("password must be at least %d characters", e.Limit)
	case ErrPasswordTooLong:
		return fmt.Sprintf("password must be at most %d characters", e.Limit)
	default:
		return "password is too easy to guess"
	}
}

func (e *PolicyError) Unwrap() error { return e.Rule }
