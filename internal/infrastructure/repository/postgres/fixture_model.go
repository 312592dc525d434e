package postgres

import (
	"time"

	"github.com/talentkick/fixturesync/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID          string    `db:"id"`
	SubjectID   string    `db:"subject_id"`
	SubjectName string    `db:"subject_name"`
	MatchDate   time.Time `db:"match_date"`
	MatchTime   string    `db:"match_time"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	Location    string    `db:"location"`
	Competition string    `db:"competition"`
	Matchday    string    `db:"matchday"`
	Result      string    `db:"result"`
	SourceURL   string    `db:"source_url"`
	Selected    bool      `db:"selected"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (m fixtureTableModel) toDomain() fixture.Fixture {
	return fixture.Fixture{
		ID:          m.ID,
		SubjectID:   m.SubjectID,
		SubjectName: m.SubjectName,
		MatchDate:   m.MatchDate.Format(fixture.DateLayout),
		MatchTime:   m.MatchTime,
		HomeTeam:    m.HomeTeam,
		AwayTeam:    m.AwayTeam,
		Location:    m.Location,
		Competition: m.Competition,
		Matchday:    m.Matchday,
		Result:      m.Result,
		SourceURL:   m.SourceURL,
		Selected:    m.Selected,
		UpdatedAt:   m.UpdatedAt,
	}
}

// fixtureInsertModel carries only the writable columns; created_at and
// updated_at come from column defaults.
type fixtureInsertModel struct {
	ID          string `db:"id"`
	SubjectID   string `db:"subject_id"`
	SubjectName string `db:"subject_name"`
	MatchDate   string `db:"match_date"`
	MatchTime   string `db:"match_time"`
	HomeTeam    string `db:"home_team"`
	AwayTeam    string `db:"away_team"`
	Location    string `db:"location"`
	Competition string `db:"competition"`
	Matchday    string `db:"matchday"`
	Result      string `db:"result"`
	SourceURL   string `db:"source_url"`
}
