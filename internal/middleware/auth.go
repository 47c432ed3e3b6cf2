package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Sessions verifies the session token carried by the session cookie or an
// Authorization bearer header and stores the claims in the request context.
// A missing or invalid token leaves the request anonymous. Cookie sessions
// older than the update age are re-issued on the way through.
func Sessions(minter session.Minter, cookies session.CookiePolicy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. A bearer header wins over the cookie. Other schemes (Basic from
			// a proxy) are ignored.
			tokenString, fromCookie := bearerToken(r), false
			if tokenString == "" {
				if c, err := r.Cookie(session.SessionCookie); err == nil && c.Value != "" {
					tokenString, fromCookie = c.Value, true
				}
			}

			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			// 2. Verify.
			claims, err := minter.Verify(tokenString)
			if err != nil {
				if !errors.Is(err, session.ErrExpired) {
					logger.Warn("invalid session token", "error", err)
				}
				if fromCookie {
					http.SetCookie(w, cookies.Clear(session.SessionCookie))
				}
				next.ServeHTTP(w, r)
				return
			}

			// 3. Slide cookie sessions forward.
			if fromCookie {
				if fresh, refreshed, err := minter.Refresh(claims); err != nil {
					logger.Error("failed to refresh session", "error", err, "subject", claims.Subject)
				} else if refreshed {
					http.SetCookie(w, cookies.Session(fresh))
				}
			}

			next.ServeHTTP(w, r.WithContext(contextx.WithSession(r.Context(), claims)))
		})
	}
}

func bearerToken(r *http.Request) string {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
