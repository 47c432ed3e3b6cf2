package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level stamped into a session at mint time.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

var (
	ErrInvalid = errors.New("session: invalid token")
	ErrExpired = errors.New("session: token expired")
)

// Identity is what a session is minted from.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Role    Role
}

// Claims is the signed payload of a session token. It is self-contained:
// nothing is looked up server-side when a request presents it.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  Role   `json:"role"`
}

// Identity returns the identity the claims were minted from.
func (c *Claims) Identity() Identity {
	return Identity{Subject: c.Subject, Email: c.Email, Name: c.Name, Role: c.Role}
}

// HasRole reports whether the session carries role r. A nil session has no role.
func (c *Claims) HasRole(r Role) bool {
	return c != nil && c.Role == r
}

// Config controls session lifetimes.
type Config struct {
	// MaxAge is the lifetime of a freshly minted token. Default: 30 days.
	MaxAge time.Duration

	// UpdateAge is how old a token must be before Refresh re-issues it.
	// Default: 24 hours.
	UpdateAge time.Duration

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// Minter issues and checks stateless session tokens.
type Minter interface {
	// Mint signs a new token for id. An empty role is stored as RoleUser.
	Mint(id Identity) (string, error)

	// Verify checks the signature and expiry and returns the claims.
	Verify(token string) (*Claims, error)

	// Refresh re-issues c when it is older than UpdateAge. The role is carried
	// forward unchanged. refreshed is false when c is still fresh.
	Refresh(c *Claims) (token string, refreshed bool, err error)
}

// NewMinter returns an HS256 Minter whose key is derived from secret.
// Implemented in jwt.go.
func NewMinter(secret string, cfg Config) (Minter, error) {
	return newJWTMinter(secret, cfg)
}
