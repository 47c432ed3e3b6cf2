package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/delordemm1/go-sprints-api/internal/config"
	"github.com/delordemm1/go-sprints-api/internal/metrics"
	"github.com/delordemm1/go-sprints-api/internal/notification"
	"github.com/delordemm1/go-sprints-api/internal/session"
)

// Service defines the interface for the auth flows of the user module.
type Service interface {
	// Providers lists the enabled sign-in providers, OAuth first.
	Providers() []Provider

	// RequestSignIn issues a magic-link token for req.Email and emails it.
	RequestSignIn(ctx context.Context, req SignInRequest) error
	// RedeemMagicLink consumes a token and signs the owner in.
	RedeemMagicLink(ctx context.Context, email, token string) (*SignInResult, error)

	// InitiateOAuth stores a PKCE state and returns the provider consent URL.
	InitiateOAuth(ctx context.Context, provider, origin, callbackURL string) (string, error)
	// CompleteOAuth finishes a provider redirect and signs the user in.
	CompleteOAuth(ctx context.Context, provider, origin, state, code string) (*SignInResult, error)

	// ResolveIdentity upserts the user owning email and records the login.
	ResolveIdentity(ctx context.Context, email, provider string, hints ProfileHints) (*Resolution, error)

	GetProfile(ctx context.Context, userID string) (*User, error)

	// SweepExpired removes expired magic-link tokens and OAuth states.
	SweepExpired(ctx context.Context) (tokens, states int64, err error)
}

// TransportSource resolves the outbound mail transport for one dispatch.
// settings.Service satisfies it.
type TransportSource interface {
	Transport(ctx context.Context) notification.TransportConfig
}

// Cooldown throttles magic-link requests per email. cache.Cooldown satisfies it.
type Cooldown interface {
	Acquire(ctx context.Context, key string) (bool, error)
}

// service implements the Service interface.
type service struct {
	repo      Repository
	minter    session.Minter
	notifier  notification.Service
	transport TransportSource
	cooldown  Cooldown
	google    OAuthProvider
	metrics   *metrics.Metrics
	logger    *slog.Logger
	config    *config.Config
	now       func() time.Time
}

// Config holds the dependencies for the user service.
type Config struct {
	Repo      Repository
	Minter    session.Minter
	Notifier  notification.Service
	Transport TransportSource
	// Cooldown is optional; nil disables throttling.
	Cooldown Cooldown
	// Google is optional; nil disables Google sign-in.
	Google  OAuthProvider
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Config  *config.Config
	Now     func() time.Time
}

// NewService creates a new user service with the given dependencies.
func NewService(cfg *Config) Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      cfg.Repo,
		minter:    cfg.Minter,
		notifier:  cfg.Notifier,
		transport: cfg.Transport,
		cooldown:  cfg.Cooldown,
		google:    cfg.Google,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		config:    cfg.Config,
		now:       now,
	}
}

func (s *service) Providers() []Provider {
	var out []Provider
	if s.google != nil {
		out = append(out, s.google)
	}
	return append(out, emailProvider{s: s})
}

func (s *service) oauthProvider(id string) (OAuthProvider, error) {
	for _, p := range s.Providers() {
		if op, ok := p.(OAuthProvider); ok && p.ID() == id {
			return op, nil
		}
	}
	return nil, ErrUnsupportedProvider.WithDetail("unsupported sign-in provider: " + id)
}

func (s *service) SweepExpired(ctx context.Context) (int64, int64, error) {
	now := s.now()
	tokens, err := s.repo.DeleteExpiredVerificationTokens(ctx, now)
	if err != nil {
		return 0, 0, ErrPersistence.WithCause(err)
	}
	states, err := s.repo.DeleteExpiredOAuthStates(ctx, now)
	if err != nil {
		return tokens, 0, ErrPersistence.WithCause(err)
	}
	return tokens, states, nil
}

// generateSecureToken returns n random bytes, hex encoded.
func generateSecureToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// hashToken is the stored form of a magic-link secret, keyed by AUTH_SECRET.
func hashToken(token, secret string) string {
	sum := sha256.Sum256([]byte(token + secret))
	return hex.EncodeToString(sum[:])
}
