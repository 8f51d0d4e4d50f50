package token

import (
	"errors"
	"fmt"
)

// Public, stable errors for callers.
var (
	// ErrConfig is returned when the signing secret or lifetime is unusable.
	ErrConfig = errors.New("invalid token config")

	// ErrEncode is returned when a claim cannot be serialized or signed.
	ErrEncode = errors.New("token encode failed")

	// ErrDecode is the parent of every verification failure.
	ErrDecode = errors.New("token decode failed")

	// ErrMalformed, ErrSignatureInvalid and ErrExpired all match ErrDecode.
	// Only ErrExpired is meant to be acted upon differently (prompt re-login).
	ErrMalformed        = fmt.Errorf("%w: malformed", ErrDecode)
	ErrSignatureInvalid = fmt.Errorf("%w: signature invalid", ErrDecode)
	ErrExpired          = fmt.Errorf("%w: expired", ErrDecode)
)

// Reason returns a short, log-safe label for a verification error.
func Reason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "error"
	}
}
