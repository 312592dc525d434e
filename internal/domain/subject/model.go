package subject

import "strings"

// Subject is a represented individual whose fixtures are tracked. Rows
// are owned by the player-record collaborator and read-only here.
type Subject struct {
	ID   string
	Name string
	// ProfileURL is the external provider profile reference; may be
	// empty, in which case the subject is skipped by the sync pass.
	ProfileURL string
	// AgeCategory is a league/age label such as "U17" or "Herren".
	AgeCategory string
	// AreaOfResponsibility is a free-text attribute joined with commas
	// or ampersands, e.g. "Nord, West & Süd".
	AreaOfResponsibility string
}

// SplitAreas decomposes a delimiter-joined responsibility attribute
// into discrete trimmed values. Delimiters are comma and ampersand.
func SplitAreas(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || r == '&'
	})

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
