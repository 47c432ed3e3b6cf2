package user

import (
	"context"

	"github.com/delordemm1/go-sprints-api/internal/contextx"
	"github.com/delordemm1/go-sprints-api/internal/httpx"
	"github.com/delordemm1/go-sprints-api/internal/session"
	"github.com/delordemm1/go-sprints-api/internal/siteurl"
)

// --- DTOs ---

// OAuthSignInRequest names the provider and where to land afterwards.
type OAuthSignInRequest struct {
	Provider    string `path:"provider"`
	CallbackURL string `query:"callbackUrl"`
}

// OAuthCallbackRequest holds the query parameters sent back by the provider.
type OAuthCallbackRequest struct {
	Provider string `path:"provider"`
	Code     string `query:"code"`
	State    string `query:"state"`
	Error    string `query:"error"`
}

// --- Handlers ---

// OAuthSignInHandler redirects the browser to the provider consent page.
func (h *Handler) OAuthSignInHandler(ctx context.Context, input *OAuthSignInRequest) (*RedirectResponse, error) {
	h.logger.Info("initiating oauth login", "provider", input.Provider)

	origin := contextx.Origin(ctx)
	callback := siteurl.SafeCallback(input.CallbackURL, origin, h.pages.DefaultCallback)
	authURL, err := h.service.InitiateOAuth(ctx, input.Provider, origin, callback)
	if err != nil {
		return nil, httpx.ToProblem(ctx, err)
	}
	return h.redirect(authURL), nil
}

// OAuthCallbackHandler completes the flow and sets the session cookie. Any
// failure sends the browser to the error page.
func (h *Handler) OAuthCallbackHandler(ctx context.Context, input *OAuthCallbackRequest) (*RedirectResponse, error) {
	if input.Error != "" {
		h.logger.Warn("oauth provider returned an error", "provider", input.Provider, "error", input.Error)
		return h.errorRedirect("AccessDenied"), nil
	}

	res, err := h.service.CompleteOAuth(ctx, input.Provider, contextx.Origin(ctx), input.State, input.Code)
	if err != nil {
		h.logger.Error("oauth callback processing failed", "provider", input.Provider, "error", err)
		return h.errorRedirect("OAuthCallback"), nil
	}

	target := siteurl.SafeCallback(res.CallbackURL, contextx.Origin(ctx), h.pages.DefaultCallback)
	return h.redirect(target, h.cookies.Session(res.Token), h.cookies.Clear(session.CallbackCookie)), nil
}
