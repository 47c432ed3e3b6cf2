package user

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/delordemm1/go-sprints-api/internal/config"
)

// ProviderType tags the two kinds of sign-in provider.
type ProviderType string

const (
	ProviderTypeOAuth ProviderType = "oauth"
	ProviderTypeEmail ProviderType = "email"
)

const (
	ProviderGoogle = "google"
	ProviderEmail  = "email"
)

// Provider is one configured way to sign in.
type Provider interface {
	ID() string
	Name() string
	Type() ProviderType
}

// OAuthProfile is what a provider tells us about the signed-in account.
type OAuthProfile struct {
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// OAuthProvider starts a redirect flow and exchanges its authorization code.
// The redirect URL is passed per call because it follows the request origin.
type OAuthProvider interface {
	Provider
	Initiate(state, verifier, redirectURL string) string
	Exchange(ctx context.Context, code, verifier, redirectURL string) (*OAuthProfile, error)
}

// LinkProvider signs users in by delivering a one-time link.
type LinkProvider interface {
	Provider
	IssueAndDeliver(ctx context.Context, req SignInRequest) error
}

// --- Google ---

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type googleProvider struct {
	config      oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns the Google provider, or nil when no credentials
// are configured.
func NewGoogleProvider(cfg config.GoogleConfig) OAuthProvider {
	if !cfg.Enabled() {
		return nil
	}
	return newGoogleProvider(cfg, google.Endpoint, googleUserInfoURL)
}

func newGoogleProvider(cfg config.GoogleConfig, endpoint oauth2.Endpoint, userInfoURL string) *googleProvider {
	return &googleProvider{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
		},
		userInfoURL: userInfoURL,
	}
}

func (g *googleProvider) ID() string         { return ProviderGoogle }
func (g *googleProvider) Name() string       { return "Google" }
func (g *googleProvider) Type() ProviderType { return ProviderTypeOAuth }

func (g *googleProvider) withRedirect(redirectURL string) *oauth2.Config {
	cfg := g.config
	cfg.RedirectURL = redirectURL
	return &cfg
}

// Initiate builds the consent URL with a PKCE S256 challenge. Offline access
// and a forced consent prompt make Google return a refresh token every time.
func (g *googleProvider) Initiate(state, verifier, redirectURL string) string {
	return g.withRedirect(redirectURL).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("response_type", "code"),
	)
}

func (g *googleProvider) Exchange(ctx context.Context, code, verifier, redirectURL string) (*OAuthProfile, error) {
	cfg := g.withRedirect(redirectURL)
	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange oauth code for token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info from google: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google user info returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read user info response body: %w", err)
	}

	var info struct {
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}

	return &OAuthProfile{
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

// --- Email ---

type emailProvider struct {
	s *service
}

func (e emailProvider) ID() string         { return ProviderEmail }
func (e emailProvider) Name() string       { return "Email" }
func (e emailProvider) Type() ProviderType { return ProviderTypeEmail }

func (e emailProvider) IssueAndDeliver(ctx context.Context, req SignInRequest) error {
	return e.s.RequestSignIn(ctx, req)
}
