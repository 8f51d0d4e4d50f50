package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func testService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Config{Secret: "test-jwt-secret", ExpirationHours: 24})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return s
}

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	s := testService(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := s.NewClaim(uuid.New(), "test@test.com", now)
	if c.ExpiresAt != now.Add(24*time.Hour).Unix() {
		t.Fatalf("unexpected expiry %d", c.ExpiresAt)
	}

	tok, err := s.Issue(c)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if strings.Count(tok, ".") != 2 {
		t.Fatalf("expected three segments, got %q", tok)
	}

	for _, at := range []time.Time{now, now.Add(23 * time.Hour), time.Unix(c.ExpiresAt, 0).Add(-time.Second)} {
		got, err := s.Verify(tok, at)
		if err != nil {
			t.Fatalf("Verify at %v: %v", at, err)
		}
		if diff := cmp.Diff(c, got); diff != "" {
			t.Fatalf("claim mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestVerify_Expired(t *testing.T) {
	s := testService(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c := s.NewClaim(uuid.New(), "a@b.com", now)
	tok, err := s.Issue(c)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	exp := time.Unix(c.ExpiresAt, 0)
	for _, at := range []time.Time{exp, exp.Add(500 * time.Millisecond), exp.Add(time.Hour)} {
		_, err := s.Verify(tok, at)
		if !errors.Is(err, ErrExpired) {
			t.Fatalf("Verify at %v: expected ErrExpired, got %v", at, err)
		}
		if !errors.Is(err, ErrDecode) {
			t.Fatalf("expected ErrExpired to match ErrDecode")
		}
	}
}

func TestVerify_TamperedByteIsSignatureInvalid(t *testing.T) {
	s := testService(t)
	now := time.Now()

	tok, err := s.Issue(s.NewClaim(uuid.New(), "a@b.com", now))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		b[i] ^= 0x01
		_, err := s.Verify(string(b), now)
		if !errors.Is(err, ErrSignatureInvalid) {
			t.Fatalf("byte %d (%q): expected ErrSignatureInvalid, got %v", i, tok[i], err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	s := testService(t)
	other, err := NewService(Config{Secret: "other-secret", ExpirationHours: 1})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	now := time.Now()
	tok, err := other.Issue(other.NewClaim(uuid.New(), "a@b.com", now))
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := s.Verify(tok, now); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	s := testService(t)

	for _, tok := range []string{"", "no-dots-at-all", "garbage"} {
		if _, err := s.Verify(tok, time.Now()); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Verify(%q): expected ErrMalformed, got %v", tok, err)
		}
	}
}

func TestVerify_AuthenticatedButMalformedPayload(t *testing.T) {
	s := testService(t)

	// Correctly signed, but the payload is not a claim.
	signing := "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.bm90LWpzb24"
	sig, err := s.method.Sign(signing, s.key)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	tok := signing + "." + encodeSegment(sig)

	if _, err := s.Verify(tok, time.Now()); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestNewService_Config(t *testing.T) {
	if _, err := NewService(Config{Secret: "", ExpirationHours: 1}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for empty secret, got %v", err)
	}
	if _, err := NewService(Config{Secret: "x", ExpirationHours: 0}); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for zero expiration, got %v", err)
	}
}

func TestReason(t *testing.T) {
	cases := map[error]string{
		nil:                 "ok",
		ErrExpired:          "expired",
		ErrSignatureInvalid: "signature_invalid",
		ErrMalformed:        "malformed",
		errors.New("x"):     "error",
	}
	for err, want := range cases {
		if got := Reason(err); got != want {
			t.Fatalf("Reason(%v)=%q want=%q", err, got, want)
		}
	}
}
