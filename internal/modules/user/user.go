package user

import (
	"time"

	"github.com/delordemm1/go-sprints-api/internal/session"
)

// User represents a user in the system.
// Rows are created and updated only by identity resolution; nothing here deletes them.
type User struct {
	ID          string       `db:"id"`
	Email       string       `db:"email"`
	Name        string       `db:"name"`
	Image       *string      `db:"image"`
	Role        session.Role `db:"role"`
	IsActive    bool         `db:"is_active"`
	LastLoginAt *time.Time   `db:"last_login_at"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

// Identity is the part of a user carried in the session token.
func (u *User) Identity() session.Identity {
	return session.Identity{Subject: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

// VerificationToken is a single-use magic-link credential. Only the hash of
// the secret is stored.
type VerificationToken struct {
	Identifier string    `db:"identifier"`
	TokenHash  string    `db:"token_hash"`
	ExpiresAt  time.Time `db:"expires_at"`
	CreatedAt  time.Time `db:"created_at"`
}

// OAuthState binds a provider redirect to its PKCE verifier and return target.
type OAuthState struct {
	State       string    `db:"state"`
	Provider    string    `db:"provider"`
	Verifier    string    `db:"verifier"`
	CallbackURL string    `db:"callback_url"`
	ExpiresAt   time.Time `db:"expires_at"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// ActivityLog is one login event.
type ActivityLog struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Action    string    `db:"action"`
	Provider  string    `db:"provider"`
	CreatedAt time.Time `db:"created_at"`
}

const actionLogin = "login"

// ProfileHints are the optional profile fields offered at sign-in. Explicit
// values win over what the provider reported.
type ProfileHints struct {
	Name           string
	Image          string
	ProfileName    string
	ProfilePicture string
}

// BestEffort is the outcome of a secondary write that must not fail the
// primary flow. A nil Err means it succeeded.
type BestEffort struct {
	Err error
}

// OK reports whether the write succeeded.
func (b BestEffort) OK() bool { return b.Err == nil }

// Resolution is the result of resolving an identity.
type Resolution struct {
	User     *User
	Activity BestEffort
}

// SignInRequest asks for a magic link to be sent to Email.
type SignInRequest struct {
	Email       string
	CallbackURL string
	// Origin is the externally visible origin the link should point at.
	Origin string
}

// SignInResult is what a completed sign-in hands back to the transport layer.
type SignInResult struct {
	Token       string
	Identity    session.Identity
	CallbackURL string
}
