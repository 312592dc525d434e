package fixture

import "context"

// Repository persists fixture rows keyed by their upsert identity.
type Repository interface {
	// Upsert writes a fixture by its Key and reports whether a new row
	// was created. Re-applying the same fixture must not create a
	// duplicate row; the stored Selected flag survives updates.
	Upsert(ctx context.Context, row Fixture) (created bool, err error)
	// ListByDateWindow returns rows with from <= MatchDate <= to, both
	// canonical ISO dates inclusive.
	ListByDateWindow(ctx context.Context, from, to string) ([]Fixture, error)
	GetByKey(ctx context.Context, key Key) (Fixture, bool, error)
	// UpdateSelected flips the export-intent flag on the given rows.
	UpdateSelected(ctx context.Context, ids []string, selected bool) error
	// DeleteBefore removes rows whose MatchDate precedes the given
	// canonical ISO date and returns the removed count.
	DeleteBefore(ctx context.Context, date string) (int, error)
}
