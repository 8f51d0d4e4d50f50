package ids

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestNewSessionID(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	a, err := NewSessionID(now)
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}
	b, err := NewSessionID(now)
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}
	if len(a) != 26 {
		t.Fatalf("unexpected length %d for %q", len(a), a)
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if at := ulid.Time(ulid.MustParse(a).Time()); !at.Equal(now) {
		t.Fatalf("timestamp of %q = %v, want %v", a, at, now)
	}
}

func TestNewSessionID_ZeroTime(t *testing.T) {
	id, err := NewSessionID(time.Time{})
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}
	at := ulid.Time(ulid.MustParse(id).Time())
	if time.Since(at) > time.Minute {
		t.Fatalf("expected a current timestamp, got %v", at)
	}
}

func TestParseSessionID(t *testing.T) {
	id, err := NewSessionID(time.Now())
	if err != nil {
		t.Fatalf("NewSessionID: %v", err)
	}

	got, ok := ParseSessionID(strings.ToLower(id))
	if !ok || got != id {
		t.Fatalf("ParseSessionID(lower) = %q, %v; want %q", got, ok, id)
	}

	for _, s := range []string{"", "not-a-ulid", "01ARZ3NDEKTSV4RRFFQ69G5FA", "01ARZ3NDEKTSV4RRFFQ69G5FAVU"} {
		if _, ok := ParseSessionID(s); ok {
			t.Errorf("ParseSessionID(%q) accepted", s)
		}
	}
}
