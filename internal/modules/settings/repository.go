package settings

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/delordemm1/go-sprints-api/internal/database"
)

// Repository persists settings rows.
type Repository interface {
	List(ctx context.Context) ([]Setting, error)
	Upsert(ctx context.Context, key, value string) (*Setting, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a settings repository over db.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *repository) List(ctx context.Context) ([]Setting, error) {
	query, args, err := r.psql.Select("key", "value", "updated_at").
		From("admin_settings").
		OrderBy("key").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []Setting
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Upsert(ctx context.Context, key, value string) (*Setting, error) {
	query, args, err := r.psql.Insert("admin_settings").
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at RETURNING key, value, updated_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	var s Setting
	if err := pgxscan.Get(ctx, r.db, &s, query, args...); err != nil {
		return nil, err
	}
	return &s, nil
}
