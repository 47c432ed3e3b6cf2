package content

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/delordemm1/go-sprints-api/internal/database"
)

// Repository reads the curriculum tree.
type Repository interface {
	ListActiveClasses(ctx context.Context, orderBy string) ([]Class, error)
	GetClass(ctx context.Context, id int) (*Class, error)
	ListSubjects(ctx context.Context, classIDs []int) ([]Subject, error)
	ListChapters(ctx context.Context, subjectIDs []string) ([]Chapter, error)
	ListTopics(ctx context.Context, chapterIDs []string) ([]Topic, error)
}

type repository struct {
	db   database.DBTX
	psql squirrel.StatementBuilderType
}

// NewRepository creates a content repository over db.
func NewRepository(db database.DBTX) Repository {
	return &repository{
		db:   db,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var classColumns = []string{"id", "name", "coalesce(description, '') AS description", "price", "is_active"}

func (r *repository) ListActiveClasses(ctx context.Context, orderBy string) ([]Class, error) {
	if orderBy != "name" {
		orderBy = "id"
	}
	query, args, err := r.psql.Select(classColumns...).
		From("classes").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy(orderBy + " ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var classes []Class
	if err := pgxscan.Select(ctx, r.db, &classes, query, args...); err != nil {
		return nil, err
	}
	return classes, nil
}

func (r *repository) GetClass(ctx context.Context, id int) (*Class, error) {
	query, args, err := r.psql.Select(classColumns...).
		From("classes").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var c Class
	if err := pgxscan.Get(ctx, r.db, &c, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound.WithCause(err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) ListSubjects(ctx context.Context, classIDs []int) ([]Subject, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	query, args, err := r.psql.Select("id", "class_id", "name", "coalesce(icon, '') AS icon", "coalesce(color, '') AS color",
		"order_index", "price", "coalesce(currency, '') AS currency").
		From("subjects").
		Where(squirrel.Eq{"class_id": classIDs}).
		OrderBy("order_index ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var subjects []Subject
	if err := pgxscan.Select(ctx, r.db, &subjects, query, args...); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *repository) ListChapters(ctx context.Context, subjectIDs []string) ([]Chapter, error) {
	if len(subjectIDs) == 0 {
		return nil, nil
	}
	query, args, err := r.psql.Select("id", "subject_id", "name", "order_index").
		From("chapters").
		Where(squirrel.Eq{"subject_id": subjectIDs}).
		OrderBy("order_index ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var chapters []Chapter
	if err := pgxscan.Select(ctx, r.db, &chapters, query, args...); err != nil {
		return nil, err
	}
	return chapters, nil
}

func (r *repository) ListTopics(ctx context.Context, chapterIDs []string) ([]Topic, error) {
	if len(chapterIDs) == 0 {
		return nil, nil
	}
	query, args, err := r.psql.Select("id", "chapter_id", "name", "type", "duration",
		"coalesce(description, '') AS description", "coalesce(difficulty, '') AS difficulty", "order_index").
		From("topics").
		Where(squirrel.Eq{"chapter_id": chapterIDs}).
		OrderBy("order_index ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var topics []Topic
	if err := pgxscan.Select(ctx, r.db, &topics, query, args...); err != nil {
		return nil, err
	}
	return topics, nil
}
