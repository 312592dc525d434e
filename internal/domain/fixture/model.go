package fixture

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used across the store.
const DateLayout = "2006-01-02"

// Fixture represents one scheduled match as fetched for one subject.
// The same real-world match may exist as several rows, one per subject
// whose team plays it; the read path merges them.
type Fixture struct {
	ID          string
	SubjectID   string
	SubjectName string
	// MatchDate is a canonical ISO calendar date (YYYY-MM-DD).
	MatchDate string
	// MatchTime is an optional provider-local clock time (HH:MM), no
	// timezone guarantee.
	MatchTime   string
	HomeTeam    string
	AwayTeam    string
	Location    string
	Competition string
	Matchday    string
	Result      string
	SourceURL   string
	Selected    bool
	UpdatedAt   time.Time
}

// Key is the identity a fixture row is upserted by. The store enforces
// uniqueness on this tuple, not on ID.
type Key struct {
	SubjectID string
	MatchDate string
	HomeTeam  string
	AwayTeam  string
}

func (f Fixture) Key() Key {
	return Key{
		SubjectID: strings.TrimSpace(f.SubjectID),
		MatchDate: strings.TrimSpace(f.MatchDate),
		HomeTeam:  strings.TrimSpace(f.HomeTeam),
		AwayTeam:  strings.TrimSpace(f.AwayTeam),
	}
}

// Valid reports whether the row satisfies the storage preconditions. A
// fixture without a parseable date or without its upsert identity is
// not storable.
func (f Fixture) Valid() bool {
	key := f.Key()
	if key.SubjectID == "" || key.HomeTeam == "" || key.AwayTeam == "" {
		return false
	}
	_, err := time.Parse(DateLayout, key.MatchDate)
	return err == nil
}
