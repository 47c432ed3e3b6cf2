package user

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

var userColumns = []string{
	"id", "email", "name", "image", "role", "is_active", "last_login_at", "created_at", "updated_at",
}

// UpsertByEmail inserts u or, when the email already exists, refreshes the
// name, image and last login of the existing row. The stored row is returned,
// so the id of an existing user never changes. A nil image keeps the old one.
func (r *repository) UpsertByEmail(ctx context.Context, u *User) (*User, error) {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	query, args, err := r.psql.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Email, u.Name, u.Image, u.Role, u.IsActive, u.LastLoginAt, u.CreatedAt, u.UpdatedAt).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			image = COALESCE(EXCLUDED.image, users.image),
			last_login_at = EXCLUDED.last_login_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id, email, name, image, role, is_active, last_login_at, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, err
	}

	var out User
	if err := pgxscan.Get(ctx, r.db, &out, query, args...); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByEmail retrieves a user by their email address.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": email})
}

// FindByID retrieves a user by their unique ID.
// It returns ErrNotFound if no user is found.
func (r *repository) FindByID(ctx context.Context, id string) (*User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": id})
}

func (r *repository) findOne(ctx context.Context, cond squirrel.Sqlizer) (*User, error) {
	query, args, err := r.psql.Select(userColumns...).
		From("users").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u User
	if err := pgxscan.Get(ctx, r.db, &u, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound.WithCause(err)
		}
		return nil, err
	}
	return &u, nil
}

// InsertActivity records a login event.
func (r *repository) InsertActivity(ctx context.Context, a *ActivityLog) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	query, args, err := r.psql.Insert("activity_logs").
		Columns("id", "user_id", "action", "provider", "created_at").
		Values(a.ID, a.UserID, a.Action, a.Provider, a.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, query, args...)
	return err
}
