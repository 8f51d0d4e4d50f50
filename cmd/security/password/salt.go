package password

import (
	"crypto/rand"
	"math/big"
)

const saltAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultSaltLength is the length of generated per-user salts.
const DefaultSaltLength = 32

// NewSalt returns a random alphanumeric per-user salt of n characters.
func NewSalt(n int) (string, error) {
	if n <= 0 {
		n = DefaultSaltLength
	}

	max := big.NewInt(int64(len(saltAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = saltAlphabet[idx.Int64()]
	}
	return string(b), nil
}
