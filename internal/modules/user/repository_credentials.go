package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// Single-use credentials. Consuming one is a DELETE ... RETURNING, so two
// concurrent redemptions can never both see the row. Expired rows are
// consumed like live ones; callers compare ExpiresAt themselves.

const (
	tableVerificationTokens = "verification_tokens"
	tableOAuthStates        = "oauth_states"
)

var (
	verificationColumns = []string{"identifier", "token_hash", "expires_at", "created_at"}
	oauthStateColumns   = []string{"state", "provider", "verifier", "callback_url", "expires_at", "created_at", "updated_at"}
)

// CreateVerificationToken stores a new magic-link token. Earlier unconsumed
// tokens for the same identifier stay valid.
func (r *repository) CreateVerificationToken(ctx context.Context, t *VerificationToken) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	return r.insert(ctx, r.psql.Insert(tableVerificationTokens).
		Columns(verificationColumns...).
		Values(t.Identifier, t.TokenHash, t.ExpiresAt, t.CreatedAt))
}

func (r *repository) ConsumeVerificationToken(ctx context.Context, identifier, tokenHash string) (*VerificationToken, error) {
	return consume[VerificationToken](ctx, r, tableVerificationTokens, verificationColumns,
		squirrel.Eq{"identifier": identifier, "token_hash": tokenHash})
}

func (r *repository) DeleteExpiredVerificationTokens(ctx context.Context, before time.Time) (int64, error) {
	return r.deleteBefore(ctx, tableVerificationTokens, before)
}

// InsertOAuthState records the state and PKCE verifier of a pending consent.
func (r *repository) InsertOAuthState(ctx context.Context, s *OAuthState) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = s.CreatedAt
	return r.insert(ctx, r.psql.Insert(tableOAuthStates).
		Columns(oauthStateColumns...).
		Values(s.State, s.Provider, s.Verifier, s.CallbackURL, s.ExpiresAt, s.CreatedAt, s.UpdatedAt))
}

func (r *repository) ConsumeOAuthState(ctx context.Context, state string) (*OAuthState, error) {
	return consume[OAuthState](ctx, r, tableOAuthStates, oauthStateColumns, squirrel.Eq{"state": state})
}

func (r *repository) DeleteExpiredOAuthStates(ctx context.Context, before time.Time) (int64, error) {
	return r.deleteBefore(ctx, tableOAuthStates, before)
}

func (r *repository) insert(ctx context.Context, b squirrel.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}

func consume[T any](ctx context.Context, r *repository, table string, columns []string, where squirrel.Eq) (*T, error) {
	query, args, err := r.psql.Delete(table).
		Where(where).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row T
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &row, nil
}

// deleteBefore removes rows whose expires_at is earlier than before. Nothing
// to delete is the normal case.
func (r *repository) deleteBefore(ctx context.Context, table string, before time.Time) (int64, error) {
	query, args, err := r.psql.Delete(table).
		Where(squirrel.Lt{"expires_at": before}).
		ToSql()
	if err != nil {
		return 0, err
	}
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
