package middleware

import (
	"net/http"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/siteurl"
)

// Origin stores the site origin in the request context: the configured public
// URL when there is one, otherwise the origin the request arrived on.
func Origin(publicURL string, trustHost bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := siteurl.Origin(publicURL, r, trustHost)
			next.ServeHTTP(w, r.WithContext(contextx.WithOrigin(r.Context(), origin)))
		})
	}
}
