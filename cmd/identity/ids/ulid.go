// Package ids mints and checks the opaque session ids carried by the
// session-id cookie.
package ids

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewSessionID returns a ULID timestamped at now (or the current time when
// now is zero) with 80 bits of crypto/rand entropy.
func NewSessionID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ParseSessionID returns the canonical (upper-case) form of s, or ok=false
// when s is not a well-formed ULID.
func ParseSessionID(s string) (string, bool) {
	id, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
