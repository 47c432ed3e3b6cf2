package session

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// CSRF issues double-submit tokens. The cookie carries "token|mac" and the
// form posts the bare token back.
type CSRF struct {
	key []byte
}

// NewCSRF returns a CSRF issuer keyed from secret.
func NewCSRF(secret string) (*CSRF, error) {
	key, err := deriveKey(secret, "csrf-token")
	if err != nil {
		return nil, err
	}
	return &CSRF{key: key}, nil
}

// Issue returns a fresh token and the value to store in the CSRF cookie.
func (c *CSRF) Issue() (token, cookieValue string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("session: generating csrf token: %w", err)
	}
	token = hex.EncodeToString(b)
	return token, token + "|" + c.mac(token), nil
}

// Token extracts the token from a cookie value, or "" when the cookie was not
// issued by us.
func (c *CSRF) Token(cookieValue string) string {
	token, mac, ok := strings.Cut(cookieValue, "|")
	if !ok || token == "" {
		return ""
	}
	if !hmac.Equal([]byte(mac), []byte(c.mac(token))) {
		return ""
	}
	return token
}

// Verify reports whether submitted matches the token carried by cookieValue.
func (c *CSRF) Verify(cookieValue, submitted string) bool {
	token := c.Token(cookieValue)
	if token == "" || submitted == "" {
		return false
	}
	return hmac.Equal([]byte(token), []byte(submitted))
}

func (c *CSRF) mac(token string) string {
	h := hmac.New(sha256.New, c.key)
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}
