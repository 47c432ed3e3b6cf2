package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/metrics"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestRouter(t *testing.T) (http.Handler, session.Minter) {
	t.Helper()
	cfg := &config.Config{Auth: config.AuthConfig{
		Secret:            testSecret,
		SessionMaxAge:     30 * 24 * time.Hour,
		SessionUpdateAge:  24 * time.Hour,
		ShortCookieMaxAge: 15 * time.Minute,
		SignInPage:        "/auth/login",
		ErrorPage:         "/auth/error",
		DefaultCallback:   "/dashboard",
		AdminPrefix:       "/admin",
	}}

	minter, err := session.NewMinter(testSecret, session.Config{})
	require.NoError(t, err)
	csrf, err := session.NewCSRF(testSecret)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := New(cfg, logger, Deps{
		Minter:  minter,
		CSRF:    csrf,
		Metrics: metrics.New(prometheus.NewRegistry()),
	})
	return router, minter
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAnonymousAdminRedirectsToSignIn(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/settings?tab=smtp", nil))

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/login", loc.Path)
	assert.Equal(t, "/admin/settings?tab=smtp", loc.Query().Get("callbackUrl"))
}

func TestAdminLookalikePathIsNotGated(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/administrator", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRequiresAdminRole(t *testing.T) {
	router, minter := newTestRouter(t)
	token, err := minter.Mint(session.Identity{Subject: "u-1", Email: "ada@example.com", Role: session.RoleUser})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	req.AddCookie(&http.Cookie{Name: session.SessionCookie, Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "_http_requests_total")
}
