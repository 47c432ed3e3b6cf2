package contextx

import (
	"context"

	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Key is a private type to avoid collisions in request context keys.
type Key string

// SessionKey is the context key used to store the verified *session.Claims.
const SessionKey Key = "session"

// OriginKey is the context key used to store the resolved site origin (string).
const OriginKey Key = "origin"

// WithSession returns ctx carrying claims.
func WithSession(ctx context.Context, claims *session.Claims) context.Context {
	return context.WithValue(ctx, SessionKey, claims)
}

// Session returns the claims stored in ctx, or nil for anonymous requests.
func Session(ctx context.Context) *session.Claims {
	c, _ := ctx.Value(SessionKey).(*session.Claims)
	return c
}

// WithOrigin returns ctx carrying the site origin.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, OriginKey, origin)
}

// Origin returns the origin stored in ctx, or "".
func Origin(ctx context.Context) string {
	o, _ := ctx.Value(OriginKey).(string)
	return o
}
