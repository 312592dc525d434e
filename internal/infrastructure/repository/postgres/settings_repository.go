package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	qb "github.com/talentkick/fixturesync/internal/platform/querybuilder"
)

const settingsUpsertSuffix = `ON CONFLICT (key) DO UPDATE SET
	value = EXCLUDED.value,
	updated_at = NOW()`

type SettingsRepository struct {
	db *sqlx.DB
}

func NewSettingsRepository(db *sqlx.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := qb.Select("value").From("settings").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return "", false, fmt.Errorf("build get setting query: %w", err)
	}

	var value string
	if err := r.db.GetContext(ctx, &value, query, args...); err != nil {
		if isNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get setting %s: %w", key, err)
	}
	return value, true, nil
}

func (r *SettingsRepository) Put(ctx context.Context, key, value string) error {
	query, args, err := qb.InsertInto("settings").
		Columns("key", "value").
		Values(key, value).
		Suffix(settingsUpsertSuffix).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build put setting query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put setting %s: %w", key, err)
	}
	return nil
}
