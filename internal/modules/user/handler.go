package user

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/delordemm1/go-sprints-api/internal/middleware"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Pages are the paths the auth flows redirect to.
type Pages struct {
	SignIn          string
	Error           string
	DefaultCallback string
}

// Handler holds the dependencies for the user module's HTTP handlers.
type Handler struct {
	service Service
	csrf    *session.CSRF
	cookies session.CookiePolicy
	pages   Pages
	logger  *slog.Logger
}

// NewHandler creates a new handler for the user module.
func NewHandler(service Service, csrf *session.CSRF, cookies session.CookiePolicy, pages Pages, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		csrf:    csrf,
		cookies: cookies,
		pages:   pages,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routing for the user module.
func (h *Handler) RegisterRoutes(api huma.API) {
	// --- Discovery ---
	huma.Register(api, huma.Operation{
		OperationID: "list-providers",
		Method:      http.MethodGet,
		Path:        "/auth/providers",
		Summary:     "List enabled sign-in providers",
		Tags:        []string{"Auth"},
	}, h.ProvidersHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-csrf-token",
		Method:      http.MethodGet,
		Path:        "/auth/csrf",
		Summary:     "Issue an anti-forgery token",
		Tags:        []string{"Auth"},
	}, h.CSRFHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-login-page",
		Method:      http.MethodGet,
		Path:        "/auth/login",
		Summary:     "Sign-in page data",
		Tags:        []string{"Auth"},
	}, h.LoginPageHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-error-page",
		Method:      http.MethodGet,
		Path:        "/auth/error",
		Summary:     "Sign-in error page data",
		Tags:        []string{"Auth"},
	}, h.ErrorPageHandler)

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/auth/session",
		Summary:     "The current session, if any",
		Tags:        []string{"Auth"},
	}, h.SessionHandler)

	// --- Email magic link ---
	huma.Register(api, huma.Operation{
		OperationID: "signin-email",
		Method:      http.MethodPost,
		Path:        "/auth/signin/email",
		Summary:     "Email a sign-in link",
		Tags:        []string{"Auth"},
	}, h.EmailSignInHandler)

	huma.Register(api, huma.Operation{
		OperationID: "callback-email",
		Method:      http.MethodGet,
		Path:        "/auth/callback/email",
		Summary:     "Redeem a sign-in link",
		Tags:        []string{"Auth"},
	}, h.EmailCallbackHandler)

	// --- OAuth ---
	huma.Register(api, huma.Operation{
		OperationID: "signin-oauth",
		Method:      http.MethodGet,
		Path:        "/auth/signin/{provider}",
		Summary:     "Redirect to an OAuth provider",
		Tags:        []string{"Auth"},
	}, h.OAuthSignInHandler)

	huma.Register(api, huma.Operation{
		OperationID: "callback-oauth",
		Method:      http.MethodGet,
		Path:        "/auth/callback/{provider}",
		Summary:     "Handle an OAuth provider callback",
		Tags:        []string{"Auth"},
	}, h.OAuthCallbackHandler)

	huma.Register(api, huma.Operation{
		OperationID: "signout",
		Method:      http.MethodPost,
		Path:        "/auth/signout",
		Summary:     "Sign out",
		Tags:        []string{"Auth"},
	}, h.SignOutHandler)

	// --- Profile ---
	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/users/profile",
		Summary:     "Get the current user's profile",
		Tags:        []string{"Users"},
		Middlewares: huma.Middlewares{middleware.RequireSession()},
	}, h.GetProfileHandler)
}

// RedirectResponse answers with a 302 and optional cookies.
type RedirectResponse struct {
	Status    int
	Location  string        `header:"Location"`
	SetCookie []http.Cookie `header:"Set-Cookie"`
}

func (h *Handler) redirect(location string, cookies ...*http.Cookie) *RedirectResponse {
	resp := &RedirectResponse{Status: http.StatusFound, Location: location}
	for _, c := range cookies {
		resp.SetCookie = append(resp.SetCookie, *c)
	}
	return resp
}

// errorRedirect sends the browser to the error page with a NextAuth-style code.
func (h *Handler) errorRedirect(code string, cookies ...*http.Cookie) *RedirectResponse {
	return h.redirect(h.pages.Error+"?error="+code, cookies...)
}
