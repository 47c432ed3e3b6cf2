package session

import (
	"net/http"
	"time"
)

const (
	SessionCookie  = "sprints.session-token"
	CallbackCookie = "sprints.callback-url"
	CSRFCookie     = "sprints.csrf-token"
)

// CookiePolicy builds the three cookies the auth flows rely on.
type CookiePolicy struct {
	Secure        bool
	SessionMaxAge time.Duration
	ShortMaxAge   time.Duration
}

// Session carries the session token for SessionMaxAge.
func (p CookiePolicy) Session(token string) *http.Cookie {
	return p.cookie(SessionCookie, token, p.SessionMaxAge, true)
}

// Callback remembers where to land after sign-in.
func (p CookiePolicy) Callback(target string) *http.Cookie {
	return p.cookie(CallbackCookie, target, p.ShortMaxAge, false)
}

// CSRF carries the double-submit token.
func (p CookiePolicy) CSRF(value string) *http.Cookie {
	return p.cookie(CSRFCookie, value, p.ShortMaxAge, true)
}

// Clear expires the named cookie.
func (p CookiePolicy) Clear(name string) *http.Cookie {
	c := p.cookie(name, "", 0, true)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

func (p CookiePolicy) cookie(name, value string, maxAge time.Duration, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: httpOnly,
		Secure:   p.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
