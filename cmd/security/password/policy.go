package password

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Validate checks length in characters (runes) and, when enabled, rejects a
// few trivially guessable passwords. Violations are *PolicyError.
func (p Policy) Validate(password string) error {
	switch n := utf8.RuneCountInString(password); {
	case n < p.MinLength:
		return &PolicyError{Rule: ErrPasswordTooShort, Limit: p.MinLength}
	case n > p.MaxLength:
		return &PolicyError{Rule: ErrPasswordTooLong, Limit: p.MaxLength}
	}
	if p.RejectVeryWeak && trivial(password) {
		return &PolicyError{Rule: ErrWeakPassword}
	}
	return nil
}

// ValidateLogin applies only the minimum length. Stored passwords may predate
// the current maximum or weak-password rules and must still authenticate.
func (p Policy) ValidateLogin(password string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return &PolicyError{Rule: ErrPasswordTooShort, Limit: p.MinLength}
	}
	return nil
}

var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {},
	"qwerty": {}, "qwerty123": {}, "letmein": {},
	"changeme": {}, "welcome": {}, "iloveyou": {},
}

// trivial reports one repeated character, short all-digit strings and a small
// list of common passwords. It is not a strength estimator.
func trivial(pw string) bool {
	s := strings.TrimSpace(pw)
	if s == "" {
		return true
	}
	if _, ok := commonPasswords[strings.ToLower(s)]; ok {
		return true
	}

	first, _ := utf8.DecodeRuneInString(s)
	repeated := strings.TrimLeft(s, string(first)) == ""
	digits := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) }) < 0
	return repeated || (digits && utf8.RuneCountInString(s) < 12)
}
