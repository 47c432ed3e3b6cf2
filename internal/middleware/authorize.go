package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/delordemm1/go-sprints-api/internal/authz"
	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/metrics"
)

// DefaultMatcher lists the path prefixes whose requests are handed to the
// authorizer. Anything else never reaches it.
var DefaultMatcher = []string{"/admin", "/auth", "/dashboard"}

// Authorize intercepts requests under matcher and redirects the ones the
// authorizer denies. It must be mounted after Sessions.
func Authorize(a *authz.Authorizer, matcher []string, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !matches(matcher, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			d := a.Authorize(authz.Request{
				Path:     r.URL.Path,
				RawQuery: r.URL.RawQuery,
				Session:  contextx.Session(r.Context()),
			})
			if d.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			m.Denied()
			logger.Info("redirecting anonymous request to sign-in", "path", r.URL.Path)
			http.Redirect(w, r, d.Redirect, http.StatusTemporaryRedirect)
		})
	}
}

func matches(prefixes []string, path string) bool {
	for _, p := range prefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
