package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/delordemm1/go-sprints-api/internal/authz"
	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/httpx"
	"github.com/delordemm1/go-sprints-api/internal/metrics"
	"github.com/delordemm1/go-sprints-api/internal/middleware"
	"github.com/delordemm1/go-sprints-api/internal/modules/content"
	"github.com/delordemm1/go-sprints-api/internal/modules/settings"
	"github.com/delordemm1/go-sprints-api/internal/modules/user"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Deps are the wired services the HTTP surface is built from.
type Deps struct {
	Users    user.Service
	Content  content.Service
	Settings settings.Service
	Minter   session.Minter
	CSRF     *session.CSRF
	Metrics  *metrics.Metrics
}

// New creates the router with the middleware chain and every module's routes.
func New(cfg *config.Config, log *slog.Logger, deps Deps) chi.Router {
	cookies := session.CookiePolicy{
		Secure:        cfg.Auth.SecureCookies,
		SessionMaxAge: cfg.Auth.SessionMaxAge,
		ShortMaxAge:   cfg.Auth.ShortCookieMaxAge,
	}

	router := chi.NewMux()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Logger)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(deps.Metrics.Instrument)
	router.Use(middleware.Origin(cfg.Auth.PublicURL, cfg.Auth.TrustHost))
	router.Use(middleware.Sessions(deps.Minter, cookies, log))
	router.Use(middleware.Authorize(
		authz.New(cfg.Auth.AdminPrefix, cfg.Auth.SignInPage),
		middleware.DefaultMatcher,
		deps.Metrics,
		log,
	))

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	httpx.UseProblems()
	apiConfig := huma.DefaultConfig("Sprints API", "1.0.0")
	apiConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"session": {
			Type: "apiKey",
			In:   "cookie",
			Name: session.SessionCookie,
		},
	}
	api := humachi.New(router, apiConfig)

	user.NewHandler(deps.Users, deps.CSRF, cookies, user.Pages{
		SignIn:          cfg.Auth.SignInPage,
		Error:           cfg.Auth.ErrorPage,
		DefaultCallback: cfg.Auth.DefaultCallback,
	}, log).RegisterRoutes(api)
	content.NewHandler(deps.Content, log).RegisterRoutes(api)
	settings.NewHandler(deps.Settings, log).RegisterRoutes(api)

	huma.Register(api, huma.Operation{
		OperationID: "get-health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health Check",
		Description: "Responds with the server's health status.",
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		resp := &HealthResponse{}
		resp.Body.Status = "ok"
		return resp, nil
	})

	return router
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Body struct {
		Status string `json:"status"`
	}
}
