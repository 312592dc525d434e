package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/talentkick/fixturesync/internal/domain/fixture"
)

// FixtureRepository is the in-process store used when STORE_DRIVER is
// memory. It mirrors the postgres upsert semantics: the natural key
// identifies a row and the selection flag survives re-syncs.
type FixtureRepository struct {
	mu    sync.RWMutex
	items map[fixture.Key]fixture.Fixture
}

func NewFixtureRepository() *FixtureRepository {
	return &FixtureRepository{items: make(map[fixture.Key]fixture.Fixture)}
}

func (r *FixtureRepository) Upsert(_ context.Context, row fixture.Fixture) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := row.Key()
	existing, ok := r.items[key]
	if ok {
		row.ID = existing.ID
		row.Selected = existing.Selected
	} else {
		row.ID = uuid.NewString()
	}
	row.SubjectID = key.SubjectID
	row.MatchDate = key.MatchDate
	row.HomeTeam = key.HomeTeam
	row.AwayTeam = key.AwayTeam
	row.UpdatedAt = time.Now()

	r.items[key] = row
	return !ok, nil
}

func (r *FixtureRepository) ListByDateWindow(_ context.Context, from, to string) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.items))
	for _, row := range r.items {
		if row.MatchDate >= from && row.MatchDate <= to {
			out = append(out, row)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MatchDate != out[j].MatchDate {
			return out[i].MatchDate < out[j].MatchDate
		}
		if out[i].MatchTime != out[j].MatchTime {
			return out[i].MatchTime < out[j].MatchTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *FixtureRepository) GetByKey(_ context.Context, key fixture.Key) (fixture.Fixture, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.items[key]
	return row, ok, nil
}

func (r *FixtureRepository) UpdateSelected(_ context.Context, ids []string, selected bool) error {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for key, row := range r.items {
		if _, ok := wanted[row.ID]; ok {
			row.Selected = selected
			row.UpdatedAt = time.Now()
			r.items[key] = row
		}
	}
	return nil
}

func (r *FixtureRepository) DeleteBefore(_ context.Context, date string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, row := range r.items {
		if row.MatchDate < date {
			delete(r.items, key)
			removed++
		}
	}
	return removed, nil
}
