package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const oauthStateTTL = 10 * time.Minute

// OAuthCallbackPath is where a provider sends the browser back to.
func OAuthCallbackPath(provider string) string {
	return "/auth/callback/" + provider
}

// InitiateOAuth generates the state and PKCE verifier, stores them with the
// return target and hands back the consent URL. The redirect URL is derived
// from origin so previews and production share one deployment.
func (s *service) InitiateOAuth(ctx context.Context, providerID, origin, callbackURL string) (string, error) {
	p, err := s.oauthProvider(providerID)
	if err != nil {
		return "", err
	}

	state, err := generateSecureToken(32)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	verifier := oauth2.GenerateVerifier()

	if err := s.repo.InsertOAuthState(ctx, &OAuthState{
		State:       state,
		Provider:    p.ID(),
		Verifier:    verifier,
		CallbackURL: callbackURL,
		ExpiresAt:   s.now().Add(oauthStateTTL),
	}); err != nil {
		s.logger.Error("failed to store oauth state", "provider", p.ID(), "error", err)
		return "", ErrInternal.WithCause(err)
	}

	s.metrics.SignIn(p.ID(), "redirected")
	return p.Initiate(state, verifier, redirectURL(origin, p.ID())), nil
}

// CompleteOAuth consumes the state, exchanges the code with the stored
// verifier and signs the user in by the provider's verified email.
func (s *service) CompleteOAuth(ctx context.Context, providerID, origin, state, code string) (*SignInResult, error) {
	p, err := s.oauthProvider(providerID)
	if err != nil {
		return nil, err
	}
	if state == "" || code == "" {
		return nil, ErrOAuthStateInvalid
	}

	st, err := s.repo.ConsumeOAuthState(ctx, state)
	if err != nil {
		s.metrics.SignIn(p.ID(), "failed")
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("oauth state not found", "provider", p.ID())
			return nil, ErrOAuthStateInvalid
		}
		s.logger.Error("error consuming oauth state", "error", err)
		return nil, ErrInternal.WithCause(err)
	}
	if st.Provider != p.ID() {
		s.metrics.SignIn(p.ID(), "failed")
		return nil, ErrOAuthStateInvalid
	}
	if !s.now().Before(st.ExpiresAt) {
		s.metrics.SignIn(p.ID(), "failed")
		return nil, ErrOAuthStateExpired
	}

	profile, err := p.Exchange(ctx, code, st.Verifier, redirectURL(origin, p.ID()))
	if err != nil {
		s.logger.Error("oauth exchange failed", "provider", p.ID(), "error", err)
		s.metrics.SignIn(p.ID(), "failed")
		return nil, ErrOAuthExchangeFailed.WithCause(err)
	}
	if profile.Email == "" || !profile.EmailVerified {
		s.metrics.SignIn(p.ID(), "failed")
		return nil, ErrOAuthEmailMissing
	}

	res, err := s.completeSignIn(ctx, p.ID(), profile.Email, ProfileHints{
		ProfileName:    profile.Name,
		ProfilePicture: profile.Picture,
	})
	if err != nil {
		return nil, err
	}
	res.CallbackURL = st.CallbackURL
	return res, nil
}

func redirectURL(origin, provider string) string {
	return strings.TrimRight(origin, "/") + OAuthCallbackPath(provider)
}
