package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/delordemm1/go-sprints-api/internal/session"
)

// ResolveIdentity upserts the user keyed by email. Every provider resolves to
// the same row for the same address, which is how accounts get linked. The
// login activity write is best effort and reported in the Resolution.
// Without a name hint an existing user keeps the stored name.
func (s *service) ResolveIdentity(ctx context.Context, email, provider string, hints ProfileHints) (*Resolution, error) {
	email = normalizeEmail(email)
	id, err := uuid.NewV7()
	if err != nil {
		return nil, ErrInternal.WithCause(err)
	}

	name := displayName(email, hints)
	if !hints.named() {
		if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing.Name != "" {
			name = existing.Name
		}
	}

	now := s.now()
	u, err := s.repo.UpsertByEmail(ctx, &User{
		ID:          id.String(),
		Email:       email,
		Name:        name,
		Image:       avatar(hints),
		Role:        session.RoleUser,
		IsActive:    true,
		LastLoginAt: &now,
	})
	if err != nil {
		return nil, ErrPersistence.WithCause(err)
	}

	return &Resolution{User: u, Activity: s.logActivity(ctx, u.ID, provider)}, nil
}

func (s *service) logActivity(ctx context.Context, userID, provider string) BestEffort {
	id, err := uuid.NewV7()
	if err == nil {
		err = s.repo.InsertActivity(ctx, &ActivityLog{
			ID:        id.String(),
			UserID:    userID,
			Action:    actionLogin,
			Provider:  provider,
			CreatedAt: s.now(),
		})
	}
	if err != nil {
		s.logger.Warn("failed to record login activity", "user_id", userID, "error", err)
	}
	return BestEffort{Err: err}
}

// completeSignIn resolves the identity and mints a session. A failed upsert
// is logged and the session is minted from whatever identity is available.
func (s *service) completeSignIn(ctx context.Context, provider, email string, hints ProfileHints) (*SignInResult, error) {
	var identity session.Identity
	res, err := s.ResolveIdentity(ctx, email, provider, hints)
	if err != nil {
		s.logger.Error("identity upsert failed, issuing session anyway", "provider", provider, "error", err)
		identity = s.fallbackIdentity(ctx, email, hints)
	} else {
		identity = res.User.Identity()
	}

	token, err := s.minter.Mint(identity)
	if err != nil {
		s.logger.Error("failed to mint session", "provider", provider, "error", err)
		s.metrics.SignIn(provider, "failed")
		return nil, ErrInternal.WithCause(err)
	}

	s.metrics.SessionMinted(provider)
	s.metrics.SignIn(provider, "success")
	s.logger.Info("user signed in", "provider", provider, "user_id", identity.Subject)
	return &SignInResult{Token: token, Identity: identity}, nil
}

func (s *service) fallbackIdentity(ctx context.Context, email string, hints ProfileHints) session.Identity {
	email = normalizeEmail(email)
	if u, err := s.repo.FindByEmail(ctx, email); err == nil {
		return u.Identity()
	}
	return session.Identity{
		Subject: email,
		Email:   email,
		Name:    displayName(email, hints),
		Role:    session.RoleUser,
	}
}

func (s *service) GetProfile(ctx context.Context, userID string) (*User, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get user profile from repository", "error", err, "user_id", userID)
		return nil, ErrInternal.WithCause(err)
	}
	return u, nil
}

// displayName falls back from the explicit name to the provider name and
// finally to the local part of the email.
func displayName(email string, hints ProfileHints) string {
	if n := strings.TrimSpace(hints.Name); n != "" {
		return n
	}
	if n := strings.TrimSpace(hints.ProfileName); n != "" {
		return n
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}

func (h ProfileHints) named() bool {
	return strings.TrimSpace(h.Name) != "" || strings.TrimSpace(h.ProfileName) != ""
}

func avatar(hints ProfileHints) *string {
	for _, v := range []string{hints.Image, hints.ProfilePicture} {
		if v = strings.TrimSpace(v); v != "" {
			return &v
		}
	}
	return nil
}
