package idpolicy

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// keyPair holds the HMAC and AES keys a cookie codec needs.
type keyPair struct {
	hash  []byte
	block []byte
}

// deriveKeys expands the master session key into independent hash and
// block keys, one pair per purpose so the two cookie kinds never share keys.
func deriveKeys(master, purpose string) (keyPair, error) {
	r := hkdf.New(sha256.New, []byte(master), []byte("shelf/idpolicy"), []byte(purpose))
	kp := keyPair{hash: make([]byte, 64), block: make([]byte, 32)}
	if _, err := io.ReadFull(r, kp.hash); err != nil {
		return keyPair{}, fmt.Errorf("derive %s hash key: %w", purpose, err)
	}
	if _, err := io.ReadFull(r, kp.block); err != nil {
		return keyPair{}, fmt.Errorf("derive %s block key: %w", purpose, err)
	}
	return kp, nil
}
