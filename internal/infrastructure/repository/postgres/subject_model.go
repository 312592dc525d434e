package postgres

import (
	"time"

	"github.com/talentkick/fixturesync/internal/domain/subject"
)

type subjectTableModel struct {
	ID                   string     `db:"id"`
	Name                 string     `db:"name"`
	ProfileURL           string     `db:"profile_url"`
	AgeCategory          string     `db:"age_category"`
	AreaOfResponsibility string     `db:"area_of_responsibility"`
	CreatedAt            time.Time  `db:"created_at"`
	UpdatedAt            time.Time  `db:"updated_at"`
	DeletedAt            *time.Time `db:"deleted_at"`
}

func (m subjectTableModel) toDomain() subject.Subject {
	return subject.Subject{
		ID:                   m.ID,
		Name:                 m.Name,
		ProfileURL:           m.ProfileURL,
		AgeCategory:          m.AgeCategory,
		AreaOfResponsibility: m.AreaOfResponsibility,
	}
}
