package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/talentkick/fixturesync/internal/domain/fixture"
	qb "github.com/talentkick/fixturesync/internal/platform/querybuilder"
)

// fixtureUpsertSuffix keys on the natural identity of a match row. A
// re-synced row refreshes every display field but never touches the
// selection flag, so a marked fixture stays marked across syncs.
// (xmax = 0) is true only for freshly inserted tuples, which tells
// added and updated apart in one round trip.
const fixtureUpsertSuffix = `ON CONFLICT (subject_id, match_date, home_team, away_team) DO UPDATE SET
	subject_name = EXCLUDED.subject_name,
	match_time = EXCLUDED.match_time,
	location = EXCLUDED.location,
	competition = EXCLUDED.competition,
	matchday = EXCLUDED.matchday,
	result = EXCLUDED.result,
	source_url = EXCLUDED.source_url,
	updated_at = NOW()
RETURNING (xmax = 0) AS created`

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) Upsert(ctx context.Context, row fixture.Fixture) (bool, error) {
	if !row.Valid() {
		return false, fmt.Errorf("fixture is missing key fields")
	}

	key := row.Key()
	model := fixtureInsertModel{
		ID:          uuid.NewString(),
		SubjectID:   key.SubjectID,
		SubjectName: row.SubjectName,
		MatchDate:   key.MatchDate,
		MatchTime:   row.MatchTime,
		HomeTeam:    key.HomeTeam,
		AwayTeam:    key.AwayTeam,
		Location:    row.Location,
		Competition: row.Competition,
		Matchday:    row.Matchday,
		Result:      row.Result,
		SourceURL:   row.SourceURL,
	}

	query, args, err := qb.InsertModel("fixtures", model, fixtureUpsertSuffix)
	if err != nil {
		return false, fmt.Errorf("build upsert fixture query: %w", err)
	}

	var created bool
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return false, fmt.Errorf("upsert fixture: %w", err)
	}
	return created, nil
}

func (r *FixtureRepository) ListByDateWindow(ctx context.Context, from, to string) ([]fixture.Fixture, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(
			qb.Gte("match_date", from),
			qb.Lte("match_date", to),
		).
		OrderBy("match_date", "match_time", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures by window query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures %s..%s: %w", from, to, err)
	}

	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FixtureRepository) GetByKey(ctx context.Context, key fixture.Key) (fixture.Fixture, bool, error) {
	query, args, err := qb.Select("*").From("fixtures").
		Where(
			qb.Eq("subject_id", key.SubjectID),
			qb.Eq("match_date", key.MatchDate),
			qb.Eq("home_team", key.HomeTeam),
			qb.Eq("away_team", key.AwayTeam),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return fixture.Fixture{}, false, fmt.Errorf("build get fixture by key query: %w", err)
	}

	var row fixtureTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fixture.Fixture{}, false, nil
		}
		return fixture.Fixture{}, false, fmt.Errorf("get fixture by key: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *FixtureRepository) UpdateSelected(ctx context.Context, ids []string, selected bool) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}

	query, args, err := qb.Update("fixtures").
		Set("selected", selected).
		SetExpr("updated_at", "NOW()").
		Where(qb.In("id", values)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update fixture selection query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update fixture selection: %w", err)
	}
	return nil
}

func (r *FixtureRepository) DeleteBefore(ctx context.Context, date string) (int, error) {
	query, args, err := qb.DeleteFrom("fixtures").
		Where(qb.Lt("match_date", date)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete past fixtures query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete fixtures before %s: %w", date, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted fixtures: %w", err)
	}
	return int(affected), nil
}
