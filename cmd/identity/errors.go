package identity

import (
	"errors"
	"fmt"
)

// Error kinds. Every error this package returns for a caller mistake or a
// lookup miss matches exactly one of them with errors.Is; anything else is
// an infrastructure failure.
var (
	ErrInvalidInput       = errors.New("invalid_input")
	ErrNotFound           = errors.New("not_found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid_credentials")
)

// OpError tags an operation with a kind. Msg is safe to show to operators.
type OpError struct {
	Op   string
	Kind error
	Msg  string
}

func (e OpError) Error() string {
	s := e.Op + ": " + e.Kind.Error()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e OpError) Unwrap() error { return e.Kind }

// ConflictError names the unique field a write collided on ("email" or "id").
type ConflictError struct {
	Op    string
	Field string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s: %s already registered", e.Op, e.Field)
}

func (e ConflictError) Unwrap() error { return ErrConflict }

// NotFoundError reports that no user matched a lookup.
type NotFoundError struct {
	Op string
}

func (e NotFoundError) Error() string { return e.Op + ": user not found" }

func (e NotFoundError) Unwrap() error { return ErrNotFound }

func IsConflict(err error) bool           { return errors.Is(err, ErrConflict) }
func IsNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsInvalidInput(err error) bool       { return errors.Is(err, ErrInvalidInput) }
func IsInvalidCredentials(err error) bool { return errors.Is(err, ErrInvalidCredentials) }
