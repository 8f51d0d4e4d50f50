package password

import (
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// MaskSalt folds the secondary salt into the primary one byte by byte:
// masked[i] = (primary[i] + secondary[i mod len(secondary)]) mod 128.
// The result always has len(primary) bytes.
func MaskSalt(primary, secondary string) ([]byte, error) {
	if len(secondary) == 0 {
		return nil, ErrConfig
	}

	masked := []byte(primary)
	for i := range masked {
		masked[i] = (masked[i] + secondary[i%len(secondary)]) % 128
	}
	return masked, nil
}

// Hasher derives password digests from a per-user salt and the process-wide auth salt.
type Hasher struct {
	authSalt string
	params   Params
}

// NewHasher validates cfg and returns a Hasher.
func NewHasher(cfg Config) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Hasher{authSalt: cfg.AuthSalt, params: cfg.Params}, nil
}

// Hash returns the hex-encoded digest of password salted with salt.
// It is a pure function of (password, salt, auth salt, params).
func (h *Hasher) Hash(password, salt string) (string, error) {
	key, err := h.derive(password, salt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}

// Verify reports whether password matches the stored hex digest.
// Returns (false, ErrInvalidHash) when encoded is not a digest this hasher could produce.
func (h *Hasher) Verify(password, salt, encoded string) (bool, error) {
	expected, err := hex.DecodeString(encoded)
	if err != nil || len(expected) != int(h.params.KeyLength) {
		return false, ErrInvalidHash
	}

	key, err := h.derive(password, salt)
	if err != nil {
		return false, err
	}

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

func (h *Hasher) derive(password, salt string) ([]byte, error) {
	masked, err := MaskSalt(salt, h.authSalt)
	if err != nil {
		return nil, err
	}

	return argon2.Key(
		[]byte(password),
		masked,
		h.params.Iterations,
		h.params.MemoryKiB,
		h.params.Parallelism,
		h.params.KeyLength,
	), nil
}
