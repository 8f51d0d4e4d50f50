package identity

import (
	"net/mail"
	"strings"
)

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateEmail accepts a single bare address ("a@b.com"), rejecting display
// names, lists and anything net/mail cannot parse.
func ValidateEmail(s string) error {
	const op = "identity.ValidateEmail"

	s = strings.TrimSpace(s)
	if s == "" {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "email is required"}
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name != "" || addr.Address != s {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid email"}
	}
	at := strings.LastIndexByte(addr.Address, '@')
	if at <= 0 || at == len(addr.Address)-1 {
		return OpError{Op: op, Kind: ErrInvalidInput, Msg: "invalid email"}
	}
	return nil
}
