package identity

import (
	"context"
	"fmt"
	"testing"
)

func TestKindHelpers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"op error", OpError{Op: "x", Kind: ErrInvalidInput}, IsInvalidInput},
		{"wrapped conflict", fmt.Errorf("create: %w", ConflictError{Op: "x", Field: "email"}), IsConflict},
		{"not found", NotFoundError{Op: "x"}, IsNotFound},
		{"credentials", OpError{Op: "x", Kind: ErrInvalidCredentials}, IsInvalidCredentials},
	}
	all := []func(error) bool{IsInvalidInput, IsConflict, IsNotFound, IsInvalidCredentials}
	for _, tc := range cases {
		if !tc.is(tc.err) {
			t.Errorf("%s: expected its kind to match", tc.name)
		}
		matched := 0
		for _, is := range all {
			if is(tc.err) {
				matched++
			}
		}
		if matched != 1 {
			t.Errorf("%s: matched %d kinds, want 1", tc.name, matched)
		}
	}
	for _, err := range []error{nil, context.DeadlineExceeded} {
		for _, is := range all {
			if is(err) {
				t.Errorf("infrastructure error %v matched a kind", err)
			}
		}
	}
}

func TestErrorMessages(t *testing.T) {
	if got := (ConflictError{Op: "identity.CreateUser", Field: "email"}).Error(); got != "identity.CreateUser: email already registered" {
		t.Fatalf("conflict message %q", got)
	}
	if got := (OpError{Op: "identity.Register", Kind: ErrInvalidInput, Msg: "bad email"}).Error(); got != "identity.Register: invalid_input: bad email" {
		t.Fatalf("op message %q", got)
	}
}
