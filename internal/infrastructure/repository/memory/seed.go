package memory

import "github.com/talentkick/fixturesync/internal/domain/subject"

// SeedSubjects provides a small demo roster for the memory driver so a
// freshly started instance has something to sync against.
func SeedSubjects() []subject.Subject {
	return []subject.Subject{
		{
			ID:                   "sub-001",
			Name:                 "Max Mustermann",
			ProfileURL:           "https://www.fussball.de/verein/demo/-/team-id/011MIBV0O4000000VTVG0001VTR8C1K7",
			AgeCategory:          "U17",
			AreaOfResponsibility: "Nord",
		},
		{
			ID:                   "sub-002",
			Name:                 "Erika Beispiel",
			ProfileURL:           "https://www.fussball.de/verein/demo/-/team-id/011MIBV0O4000000VTVG0001VTR8C2Q9",
			AgeCategory:          "U19",
			AreaOfResponsibility: "West & Süd",
		},
		{
			ID:          "sub-003",
			Name:        "Jonas Probst",
			AgeCategory: "Herren",
			// No profile URL on purpose; the sync pass skips this one.
		},
	}
}
