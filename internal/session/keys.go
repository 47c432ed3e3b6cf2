package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const minSecretLen = 32

// deriveKey expands secret into a 32 byte key bound to purpose, so the session
// and CSRF keys never coincide.
func deriveKey(secret, purpose string) ([]byte, error) {
	if len(secret) < minSecretLen {
		return nil, errors.New("session: secret must be at least 32 characters")
	}
	key := make([]byte, 32)
	r := hkdf.New(sha256.New, []byte(secret), []byte("sprints"), []byte(purpose))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("session: deriving %s key: %w", purpose, err)
	}
	return key, nil
}
