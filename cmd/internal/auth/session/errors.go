package session

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned by Renew when the record is missing or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrStoreUnavailable matches every infrastructure failure, including deadlines.
	ErrStoreUnavailable = errors.New("session store unavailable")

	// ErrConfig is returned for invalid configuration.
	ErrConfig = errors.New("invalid config")
)

// UnavailableError carries the failing operation and its cause.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, ErrStoreUnavailable.Error())
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStoreUnavailable.Error(), e.Err)
}

// Unwrap exposes both ErrStoreUnavailable and the cause to errors.Is / errors.As.
func (e *UnavailableError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrStoreUnavailable}
	}
	return []error{ErrStoreUnavailable, e.Err}
}

// unavailable wraps err unless it is nil or already a domain result.
func unavailable(op string, err error) error {
	if err == nil || errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return &UnavailableError{Op: op, Err: err}
}

// IsTimeout reports whether err was caused by a deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
