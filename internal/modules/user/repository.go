package user

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/delordemm1/go-sprints-api/internal/database"
)

// Repository is the Postgres surface of the user module: identities, the
// single-use sign-in credentials and the activity log.
type Repository interface {
	// Users
	UpsertByEmail(ctx context.Context, u *User) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)

	// Magic-link tokens
	CreateVerificationToken(ctx context.Context, t *VerificationToken) error
	ConsumeVerificationToken(ctx context.Context, identifier, tokenHash string) (*VerificationToken, error)
	DeleteExpiredVerificationTokens(ctx context.Context, before time.Time) (int64, error)

	// OAuth consent state and PKCE verifier
	InsertOAuthState(ctx context.Context, state *OAuthState) error
	ConsumeOAuthState(ctx context.Context, state string) (*OAuthState, error)
	DeleteExpiredOAuthStates(ctx context.Context, before time.Time) (int64, error)

	// Activity
	InsertActivity(ctx context.Context, a *ActivityLog) error
}

// repository implements the Repository interface using pgx and squirrel.
type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a new user repository with the given database connection.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}
