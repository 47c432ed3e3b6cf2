package user

import (
	"context"
	"net/http"
	"time"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/httpx"
	"github.com/delordemm1/go-sprints-api/internal/session"
	"github.com/delordemm1/go-sprints-api/internal/siteurl"
	"github.com/delordemm1/go-sprints-api/internal/validation"
)

// --- DTOs ---

type ProviderDTO struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        ProviderType `json:"type"`
	SignInURL   string       `json:"signinUrl"`
	CallbackURL string       `json:"callbackUrl"`
}

type ProvidersResponse struct {
	Body map[string]ProviderDTO
}

type CSRFRequest struct {
	CSRFCookie string `cookie:"sprints.csrf-token"`
}

type CSRFResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		CSRFToken string `json:"csrfToken"`
	}
}

type LoginPageRequest struct {
	CallbackURL string `query:"callbackUrl"`
	Error       string `query:"error"`
}

type LoginPageResponse struct {
	Body struct {
		CallbackURL string        `json:"callbackUrl"`
		Error       string        `json:"error,omitempty"`
		Providers   []ProviderDTO `json:"providers"`
	}
}

type ErrorPageRequest struct {
	Error string `query:"error"`
}

type ErrorPageResponse struct {
	Body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
}

type SessionUser struct {
	ID    string       `json:"id"`
	Email string       `json:"email"`
	Name  string       `json:"name"`
	Role  session.Role `json:"role"`
}

type SessionResponse struct {
	Body struct {
		User    *SessionUser `json:"user,omitempty"`
		Expires *time.Time   `json:"expires,omitempty"`
	}
}

type EmailSignInRequest struct {
	CSRFCookie string `cookie:"sprints.csrf-token"`
	Body       struct {
		Email       string `json:"email,omitempty" validate:"required,email"`
		CSRFToken   string `json:"csrfToken,omitempty"`
		CallbackURL string `json:"callbackUrl,omitempty"`
	}
}

type EmailSignInResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		OK      bool   `json:"ok"`
		Message string `json:"message"`
	}
}

type EmailCallbackRequest struct {
	Token          string `query:"token"`
	Email          string `query:"email"`
	CallbackURL    string `query:"callbackUrl"`
	CallbackCookie string `cookie:"sprints.callback-url"`
}

type SignOutRequest struct {
	CSRFCookie string `cookie:"sprints.csrf-token"`
	Body       struct {
		CSRFToken string `json:"csrfToken,omitempty"`
	}
}

type SignOutResponse struct {
	SetCookie []http.Cookie `header:"Set-Cookie"`
	Body      struct {
		URL string `json:"url"`
	}
}

// errorMessages are the only explanations the error page gives.
var errorMessages = map[string]string{
	"Configuration": "There is a problem with the server configuration.",
	"AccessDenied":  "You do not have permission to sign in.",
	"Verification":  "The sign in link is no longer valid. It may have been used already or it may have expired.",
	"OAuthCallback": "Sign in with this provider failed. Please try again.",
	"Default":       "Unable to sign in.",
}

// --- Handlers ---

func (h *Handler) providerDTOs(ctx context.Context) []ProviderDTO {
	origin := contextx.Origin(ctx)
	var out []ProviderDTO
	for _, p := range h.service.Providers() {
		out = append(out, ProviderDTO{
			ID:          p.ID(),
			Name:        p.Name(),
			Type:        p.Type(),
			SignInURL:   origin + "/auth/signin/" + p.ID(),
			CallbackURL: origin + OAuthCallbackPath(p.ID()),
		})
	}
	return out
}

func (h *Handler) ProvidersHandler(ctx context.Context, _ *struct{}) (*ProvidersResponse, error) {
	resp := &ProvidersResponse{Body: map[string]ProviderDTO{}}
	for _, p := range h.providerDTOs(ctx) {
		resp.Body[p.ID] = p
	}
	return resp, nil
}

// CSRFHandler returns the token bound to the existing cookie, or issues a new pair.
func (h *Handler) CSRFHandler(ctx context.Context, input *CSRFRequest) (*CSRFResponse, error) {
	resp := &CSRFResponse{}
	if token := h.csrf.Token(input.CSRFCookie); token != "" {
		resp.Body.CSRFToken = token
		return resp, nil
	}

	token, cookieValue, err := h.csrf.Issue()
	if err != nil {
		h.logger.Error("failed to issue csrf token", "error", err)
		return nil, httpx.ToProblem(ctx, ErrInternal.WithCause(err))
	}
	resp.SetCookie = []http.Cookie{*h.cookies.CSRF(cookieValue)}
	resp.Body.CSRFToken = token
	return resp, nil
}

func (h *Handler) LoginPageHandler(ctx context.Context, input *LoginPageRequest) (*LoginPageResponse, error) {
	resp := &LoginPageResponse{}
	resp.Body.CallbackURL = siteurl.SafeCallback(input.CallbackURL, contextx.Origin(ctx), h.pages.DefaultCallback)
	resp.Body.Error = input.Error
	resp.Body.Providers = h.providerDTOs(ctx)
	return resp, nil
}

func (h *Handler) ErrorPageHandler(ctx context.Context, input *ErrorPageRequest) (*ErrorPageResponse, error) {
	code := input.Error
	msg, ok := errorMessages[code]
	if !ok {
		code, msg = "Default", errorMessages["Default"]
	}
	resp := &ErrorPageResponse{}
	resp.Body.Error = code
	resp.Body.Message = msg
	return resp, nil
}

func (h *Handler) SessionHandler(ctx context.Context, _ *struct{}) (*SessionResponse, error) {
	resp := &SessionResponse{}
	claims := contextx.Session(ctx)
	if claims == nil {
		return resp, nil
	}
	resp.Body.User = &SessionUser{ID: claims.Subject, Email: claims.Email, Name: claims.Name, Role: claims.Role}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		resp.Body.Expires = &exp
	}
	return resp, nil
}

// EmailSignInHandler checks the double-submit token before anything else, so
// a forged form never reaches the issuer.
func (h *Handler) EmailSignInHandler(ctx context.Context, input *EmailSignInRequest) (*EmailSignInResponse, error) {
	if !h.csrf.Verify(input.CSRFCookie, input.Body.CSRFToken) {
		return nil, httpx.ToProblem(ctx, ErrMissingCSRF)
	}
	if verr := validation.ValidateStruct(&input.Body); verr != nil {
		return nil, httpx.ToProblem(ctx, verr)
	}

	origin := contextx.Origin(ctx)
	callback := siteurl.SafeCallback(input.Body.CallbackURL, origin, h.pages.DefaultCallback)
	err := h.service.RequestSignIn(ctx, SignInRequest{
		Email:       input.Body.Email,
		CallbackURL: callback,
		Origin:      origin,
	})
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}

	resp := &EmailSignInResponse{}
	resp.SetCookie = []http.Cookie{*h.cookies.Callback(callback)}
	resp.Body.OK = true
	resp.Body.Message = "Check your email for a sign-in link."
	return resp, nil
}

// EmailCallbackHandler redeems the link. Every failure lands on the same
// error page so valid and expired tokens are indistinguishable.
func (h *Handler) EmailCallbackHandler(ctx context.Context, input *EmailCallbackRequest) (*RedirectResponse, error) {
	clearCallback := h.cookies.Clear(session.CallbackCookie)

	res, err := h.service.RedeemMagicLink(ctx, input.Email, input.Token)
	if err != nil {
		h.logger.Warn("magic link redemption failed", "error", err)
		return h.errorRedirect("Verification", clearCallback), nil
	}

	raw := input.CallbackURL
	if raw == "" {
		raw = input.CallbackCookie
	}
	target := siteurl.SafeCallback(raw, contextx.Origin(ctx), h.pages.DefaultCallback)
	return h.redirect(target, h.cookies.Session(res.Token), clearCallback), nil
}

func (h *Handler) SignOutHandler(ctx context.Context, input *SignOutRequest) (*SignOutResponse, error) {
	if !h.csrf.Verify(input.CSRFCookie, input.Body.CSRFToken) {
		return nil, httpx.ToProblem(ctx, ErrMissingCSRF)
	}
	if claims := contextx.Session(ctx); claims != nil {
		h.logger.Info("user signed out", "user_id", claims.Subject)
	}

	resp := &SignOutResponse{}
	resp.SetCookie = []http.Cookie{*h.cookies.Clear(session.SessionCookie)}
	resp.Body.URL = h.pages.SignIn
	return resp, nil
}
