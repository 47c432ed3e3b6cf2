package user

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/delordemm1/go-sprints-api/internal/domainerr"
	"github.com/delordemm1/go-sprints-api/internal/notification/templates"
	"github.com/delordemm1/go-sprints-api/internal/siteurl"
	"github.com/delordemm1/go-sprints-api/internal/validation"
)

const magicLinkCallbackPath = "/auth/callback/email"

// RequestSignIn validates the email, stores a fresh token and emails the
// redemption link. The user row is not touched until redemption.
func (s *service) RequestSignIn(ctx context.Context, req SignInRequest) error {
	email := normalizeEmail(req.Email)
	if err := validation.Var("email", email, "required,email"); err != nil {
		s.metrics.SignIn(ProviderEmail, "invalid")
		return err
	}

	if s.cooldown != nil {
		ok, err := s.cooldown.Acquire(ctx, email)
		switch {
		case err != nil:
			s.logger.Warn("sign-in cooldown unavailable, continuing", "error", err)
		case !ok:
			s.metrics.SignIn(ProviderEmail, "throttled")
			return ErrResendTooSoon
		}
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return ErrInternal.WithCause(err)
	}
	maxAge := s.config.Auth.VerificationMaxAge
	now := s.now()
	if err := s.repo.CreateVerificationToken(ctx, &VerificationToken{
		Identifier: email,
		TokenHash:  hashToken(token, s.config.Auth.Secret),
		ExpiresAt:  now.Add(maxAge),
		CreatedAt:  now,
	}); err != nil {
		s.logger.Error("failed to store verification token", "error", err)
		return ErrPersistence.WithCause(err)
	}

	link := s.redemptionURL(req.Origin, email, token, req.CallbackURL)
	host, err := siteurl.Host(link)
	if err != nil {
		host = req.Origin
	}

	tc := s.transport.Transport(ctx)
	_, err = s.notifier.SendTemplate(ctx, tc, []string{email}, templates.MagicLink.ID(), templates.MagicLinkData{
		Host:      host,
		URL:       link,
		Email:     email,
		ExpiresIn: humanDuration(maxAge),
	})
	if err != nil {
		s.logger.Error("failed to deliver sign-in email", "smtp", tc.Addr(), "error", err)
		s.metrics.Delivery(templates.MagicLink.ID(), "failed")
		s.metrics.SignIn(ProviderEmail, "delivery_failed")
		return deliveryError(err)
	}

	s.metrics.Delivery(templates.MagicLink.ID(), "sent")
	s.metrics.SignIn(ProviderEmail, "sent")
	s.logger.Info("sign-in email sent", "host", host)
	return nil
}

// redemptionURL builds the link that lands on the email callback. In
// production a loopback origin is swapped for the first external candidate.
func (s *service) redemptionURL(origin, email, token, callbackURL string) string {
	q := url.Values{}
	if callbackURL != "" {
		q.Set("callbackUrl", callbackURL)
	}
	q.Set("token", token)
	q.Set("email", email)
	link := strings.TrimRight(origin, "/") + magicLinkCallbackPath + "?" + q.Encode()

	if !s.config.Server.IsProduction() {
		return link
	}
	fixed, outcome := siteurl.FixLoopbackURL(link, s.config.Auth.ExternalURLCandidates)
	switch outcome {
	case siteurl.Rewritten:
		s.logger.Info("rewrote loopback origin in sign-in link", "origin", origin)
	case siteurl.NoCandidate:
		s.logger.Warn("sign-in link points at a loopback origin and no external URL is configured",
			"origin", origin, "candidates", "AUTH_URL, PUBLIC_URL, APP_URL, SITE_URL")
	}
	return fixed
}

// RedeemMagicLink consumes the token for email. Unknown, reused and expired
// tokens all fail with the same ErrInvalidToken.
func (s *service) RedeemMagicLink(ctx context.Context, email, token string) (*SignInResult, error) {
	email = normalizeEmail(email)
	if email == "" || token == "" {
		return nil, ErrInvalidToken
	}

	vt, err := s.repo.ConsumeVerificationToken(ctx, email, hashToken(token, s.config.Auth.Secret))
	if err != nil {
		s.metrics.SignIn(ProviderEmail, "invalid_token")
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("failed to consume verification token", "error", err)
		return nil, ErrInvalidToken.WithCause(err)
	}
	if !s.now().Before(vt.ExpiresAt) {
		s.metrics.SignIn(ProviderEmail, "invalid_token")
		return nil, ErrInvalidToken
	}

	return s.completeSignIn(ctx, ProviderEmail, email, ProfileHints{})
}

// deliveryError keeps the failed recipients but replaces whatever the
// transport said with a generic message.
func deliveryError(err error) error {
	var de *domainerr.DomainError
	if errors.As(err, &de) && errors.Is(de, ErrDelivery) {
		return de.WithDetail(deliveryDetail)
	}
	return ErrDelivery.WithCause(err).WithDetail(deliveryDetail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		if n := int(d / (24 * time.Hour)); n > 1 {
			return strconv.Itoa(n) + " days"
		}
		return "24 hours"
	case d >= time.Hour && d%time.Hour == 0:
		if n := int(d / time.Hour); n > 1 {
			return strconv.Itoa(n) + " hours"
		}
		return "1 hour"
	default:
		return d.String()
	}
}
