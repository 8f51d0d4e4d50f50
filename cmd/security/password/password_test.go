package password

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	cfg := DefaultConfig()
	cfg.AuthSalt = "mask52632"
	h, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	return h
}

func TestHash_Deterministic(t *testing.T) {
	h := testHasher(t)
	salt := "salt1salt1salt1salt1salt1salt1sa"

	a, err := h.Hash("password", salt)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("password", salt)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical digests, got %q and %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == "password" {
		t.Fatalf("digest equals plaintext")
	}
}

func TestHash_DiffersBySaltAndAuthSalt(t *testing.T) {
	h := testHasher(t)

	a, _ := h.Hash("password", "salt-a")
	b, _ := h.Hash("password", "salt-b")
	if a == b {
		t.Fatalf("expected different digests for different per-user salts")
	}

	cfg := DefaultConfig()
	cfg.AuthSalt = "another-auth-salt"
	other, err := NewHasher(cfg)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	c, _ := other.Hash("password", "salt-a")
	if a == c {
		t.Fatalf("expected different digests for different auth salts")
	}
}

func TestHash_EmptyPasswordAccepted(t *testing.T) {
	h := testHasher(t)
	d, err := h.Hash("", "some-salt-value")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if d == "" {
		t.Fatalf("expected digest for empty password")
	}
}

func TestVerify(t *testing.T) {
	h := testHasher(t)
	salt := "per-user-salt-0123456789abcdefgh"
	d, err := h.Hash("validpass", salt)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := h.Verify("validpass", salt, d)
	if err != nil || !ok {
		t.Fatalf("expected match, ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("wrongpass", salt, d)
	if err != nil || ok {
		t.Fatalf("expected mismatch, ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("validpass", salt, "not-hex")
	if !errors.Is(err, ErrInvalidHash) || ok {
		t.Fatalf("expected ErrInvalidHash, ok=%v err=%v", ok, err)
	}

	ok, err = h.Verify("validpass", salt, strings.Repeat("ab", 8))
	if !errors.Is(err, ErrInvalidHash) || ok {
		t.Fatalf("expected ErrInvalidHash for short digest, ok=%v err=%v", ok, err)
	}
}

func TestMaskSalt(t *testing.T) {
	cases := []struct {
		name      string
		primary   string
		secondary string
		want      []byte
	}{
		{name: "simple", primary: "aaa", secondary: "\x01", want: []byte("bbb")},
		{name: "wraps mod 128", primary: "\x7f", secondary: "\x01", want: []byte{0}},
		{name: "byte overflow", primary: "\xff", secondary: "\x02", want: []byte{1}},
		{name: "empty primary", primary: "", secondary: "mask", want: []byte{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := MaskSalt(tc.primary, tc.secondary)
			if err != nil {
				t.Fatalf("MaskSalt error: %v", err)
			}
			if string(got) != string(tc.want) {
				t.Fatalf("MaskSalt(%q,%q)=%v want=%v", tc.primary, tc.secondary, got, tc.want)
			}
		})
	}
}

func TestMaskSalt_LengthAndPeriod(t *testing.T) {
	primary := strings.Repeat("x", 30)
	secondary := "abc"

	masked, err := MaskSalt(primary, secondary)
	if err != nil {
		t.Fatalf("MaskSalt error: %v", err)
	}
	if len(masked) != len(primary) {
		t.Fatalf("len=%d want=%d", len(masked), len(primary))
	}
	for i := len(secondary); i < len(masked); i++ {
		if masked[i] != masked[i-len(secondary)] {
			t.Fatalf("masked not periodic at %d", i)
		}
	}
	for _, b := range masked {
		if b >= 128 {
			t.Fatalf("masked byte %d outside ASCII", b)
		}
	}
}

func TestMaskSalt_EmptySecondary(t *testing.T) {
	if _, err := MaskSalt("salt", ""); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewHasher_RequiresAuthSalt(t *testing.T) {
	if _, err := NewHasher(DefaultConfig()); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestNewSalt(t *testing.T) {
	a, err := NewSalt(0)
	if err != nil {
		t.Fatalf("NewSalt: %v", err)
	}
	if len(a) != DefaultSaltLength {
		t.Fatalf("len=%d want=%d", len(a), DefaultSaltLength)
	}
	for _, r := range a {
		if !strings.ContainsRune(saltAlphabet, r) {
			t.Fatalf("unexpected salt character %q", r)
		}
	}
	b, _ := NewSalt(0)
	if a == b {
		t.Fatalf("expected distinct salts")
	}
}

func TestPool_HashMatchesHasher(t *testing.T) {
	h := testHasher(t)
	p := NewPool(h, 2)

	want, _ := h.Hash("validpass", "salty")
	got, err := p.Hash(context.Background(), "validpass", "salty")
	if err != nil {
		t.Fatalf("Pool.Hash: %v", err)
	}
	if got != want {
		t.Fatalf("pool digest differs from direct digest")
	}

	ok, err := p.Verify(context.Background(), "validpass", "salty", got)
	if err != nil || !ok {
		t.Fatalf("Pool.Verify: ok=%v err=%v", ok, err)
	}
}

func TestPool_CanceledContext(t *testing.T) {
	p := NewPool(testHasher(t), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Hash(ctx, "validpass", "salty"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestPool_WaitsForSlot(t *testing.T) {
	p := NewPool(testHasher(t), 1)

	// Hold the only slot.
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	defer p.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Hash(ctx, "validpass", "salty"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
