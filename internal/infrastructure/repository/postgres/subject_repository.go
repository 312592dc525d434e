package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/talentkick/fixturesync/internal/domain/subject"
	qb "github.com/talentkick/fixturesync/internal/platform/querybuilder"
)

type SubjectRepository struct {
	db *sqlx.DB
}

func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListWithProfileURL returns the subjects a sync run visits: every
// non-deleted subject whose profile URL is set.
func (r *SubjectRepository) ListWithProfileURL(ctx context.Context) ([]subject.Subject, error) {
	query, args, err := qb.Select("*").From("subjects").
		Where(
			qb.Expr("profile_url <> ''"),
			qb.IsNull("deleted_at"),
		).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select subjects query: %w", err)
	}

	var rows []subjectTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select subjects with profile url: %w", err)
	}

	out := make([]subject.Subject, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
