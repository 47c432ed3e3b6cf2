// Package authz decides whether a request may reach a gated route.
package authz

import (
	"net/url"
	"strings"

	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Request is the part of an HTTP request the decision depends on.
type Request struct {
	Path     string
	RawQuery string
	Session  *session.Claims
}

// Decision is either Allowed or a redirect to sign-in.
type Decision struct {
	Allowed  bool
	Redirect string
}

// Authorizer gates everything under one administrative prefix.
type Authorizer struct {
	prefix     string
	signInPage string
}

// New returns an Authorizer gating prefix and sending anonymous visitors to signInPage.
func New(prefix, signInPage string) *Authorizer {
	return &Authorizer{
		prefix:     "/" + strings.Trim(prefix, "/"),
		signInPage: signInPage,
	}
}

// Gated reports whether path equals the prefix or sits beneath it.
// "/administrator" is not under "/admin".
func (a *Authorizer) Gated(path string) bool {
	return path == a.prefix || strings.HasPrefix(path, a.prefix+"/")
}

// Authorize allows any path outside the prefix regardless of session. Under
// the prefix a session is required; without one the decision redirects to the
// sign-in page with callbackUrl set to the original path and query.
func (a *Authorizer) Authorize(req Request) Decision {
	if !a.Gated(req.Path) || req.Session != nil {
		return Decision{Allowed: true}
	}

	callback := req.Path
	if req.RawQuery != "" {
		callback += "?" + req.RawQuery
	}
	q := url.Values{}
	q.Set("callbackUrl", callback)
	return Decision{Redirect: a.signInPage + "?" + q.Encode()}
}
