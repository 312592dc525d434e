package usecase

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/talentkick/fixturesync/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
)

const (
	// Fixtures without a published kickoff still need a DTSTART, so
	// they land at noon as a visible placeholder.
	placeholderKickoff = "12:00"

	matchDuration = 2 * time.Hour

	icsDateTimeLayout = "20060102T150405"
)

// ExportService renders the selected aggregated fixtures as an
// iCalendar document.
type ExportService struct {
	aggregation *AggregationService
	logger      *logging.Logger
	now         func() time.Time
}

func NewExportService(aggregation *AggregationService, logger *logging.Logger) *ExportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ExportService{
		aggregation: aggregation,
		logger:      logger,
		now:         time.Now,
	}
}

// ExportSelected builds the calendar for every aggregated fixture
// currently marked for export. Returns the document, a download
// filename, and ErrNothingSelected when the selection is empty.
func (s *ExportService) ExportSelected(ctx context.Context, filter AggregationFilter) ([]byte, string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ExportService.ExportSelected")
	defer span.End()

	items, err := s.aggregation.Aggregate(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	selected := items[:0]
	for _, item := range items {
		if item.Selected {
			selected = append(selected, item)
		}
	}
	if len(selected) == 0 {
		return nil, "", fmt.Errorf("%w: mark at least one fixture before exporting", ErrNothingSelected)
	}

	now := s.now().UTC()
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	writeICSLine(buf, "BEGIN:VCALENDAR")
	writeICSLine(buf, "VERSION:2.0")
	writeICSLine(buf, "PRODID:-//talentkick//fixturesync//DE")
	writeICSLine(buf, "CALSCALE:GREGORIAN")
	writeICSLine(buf, "METHOD:PUBLISH")

	for _, item := range selected {
		start, end, ok := eventInterval(item)
		if !ok {
			s.logger.WarnContext(ctx, "skip export of fixture with unparseable date",
				"match_date", item.MatchDate, "home", item.HomeTeam, "away", item.AwayTeam)
			continue
		}

		writeICSLine(buf, "BEGIN:VEVENT")
		writeICSLine(buf, "UID:"+eventUID(item))
		writeICSLine(buf, "DTSTAMP:"+now.Format(icsDateTimeLayout)+"Z")
		writeICSLine(buf, "DTSTART:"+start.Format(icsDateTimeLayout))
		writeICSLine(buf, "DTEND:"+end.Format(icsDateTimeLayout))
		writeICSLine(buf, "SUMMARY:"+escapeICSText(EventTitle(item)))
		if item.Location != "" {
			writeICSLine(buf, "LOCATION:"+escapeICSText(item.Location))
		}
		if description := eventDescription(item); description != "" {
			writeICSLine(buf, "DESCRIPTION:"+escapeICSText(description))
		}
		writeICSLine(buf, "END:VEVENT")
	}

	writeICSLine(buf, "END:VCALENDAR")

	out := make([]byte, len(buf.B))
	copy(out, buf.B)
	filename := "spielplan-" + now.Format("20060102") + ".ics"
	return out, filename, nil
}

func eventInterval(item AggregatedFixture) (time.Time, time.Time, bool) {
	kickoff := item.MatchTime
	if kickoff == "" {
		kickoff = placeholderKickoff
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", item.MatchDate+" "+kickoff, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, start.Add(matchDuration), true
}

func eventUID(item AggregatedFixture) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(item.MatchDate + "|" + item.MatchTime + "|" + item.HomeTeam + "|" + item.AwayTeam))
	return fmt.Sprintf("%016x@fixturesync", h.Sum64())
}

func eventDescription(item AggregatedFixture) string {
	parts := make([]string, 0, 3)
	if len(item.SubjectNames) > 0 {
		parts = append(parts, "Spieler: "+strings.Join(item.SubjectNames, ", "))
	}
	if item.Competition != "" {
		parts = append(parts, item.Competition)
	}
	if item.Matchday != "" {
		parts = append(parts, item.Matchday)
	}
	return strings.Join(parts, "\n")
}

// writeICSLine terminates with CRLF as RFC 5545 requires.
func writeICSLine(buf *bytebufferpool.ByteBuffer, line string) {
	_, _ = buf.WriteString(line)
	_, _ = buf.WriteString("\r\n")
}

func escapeICSText(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
	)
	return replacer.Replace(value)
}

// EventTitle renders the compact calendar summary, for example
// "U17 Liga: Hoffenheim - Bayern München U23".
func EventTitle(item AggregatedFixture) string {
	prefix := item.AgeCategory
	if prefix == "" {
		prefix = "Herren"
	}

	home := displayTeamName(item.HomeTeam)
	away := displayTeamName(item.AwayTeam)

	return fmt.Sprintf("%s %s: %s - %s", prefix, matchTypeLabel(item.Competition), home, away)
}

func displayTeamName(raw string) string {
	clean, reserve := CleanClubName(raw)
	if reserve {
		return clean + " U23"
	}
	return clean
}

func matchTypeLabel(competition string) string {
	value := strings.ToLower(competition)
	switch {
	case strings.Contains(value, "pokal") || strings.Contains(value, "cup"):
		return "Pokal"
	case strings.Contains(value, "freundschaft") || strings.Contains(value, "test"):
		return "Test"
	default:
		return "Liga"
	}
}

// Legal-form and association prefixes that club names drag along but
// calendars do not need.
var clubPrefixTokens = map[string]struct{}{
	"fc": {}, "sc": {}, "sv": {}, "tsv": {}, "tsg": {}, "vfb": {}, "vfl": {},
	"bsc": {}, "spvgg": {}, "sg": {}, "fsv": {}, "ssv": {}, "djk": {}, "tus": {},
	"eintracht": {}, "1.": {}, "e.v.": {},
}

var reserveMarkerTokens = map[string]struct{}{
	"2": {}, "ii": {},
}

// CleanClubName strips legal-form prefixes, founding years, and age
// tokens from a scraped team name, reporting whether the name marked
// a reserve side ("FC Bayern München U17 2" cleans to "Bayern München"
// with reserve=true). A name that would clean to nothing is returned
// unchanged rather than empty.
func CleanClubName(raw string) (string, bool) {
	tokens := strings.Fields(strings.TrimSpace(raw))
	if len(tokens) == 0 {
		return "", false
	}

	// Age tokens go first so a trailing reserve marker behind them
	// stays visible. "U23" itself names the reserve side, not an age
	// group, so it flags instead of just vanishing.
	reserve := false
	withoutAge := tokens[:0:0]
	for _, token := range tokens {
		if strings.EqualFold(token, "u23") {
			reserve = true
			continue
		}
		if ageCategoryRegex.MatchString(token) {
			continue
		}
		withoutAge = append(withoutAge, token)
	}

	if len(withoutAge) > 0 {
		last := strings.ToLower(withoutAge[len(withoutAge)-1])
		if _, ok := reserveMarkerTokens[last]; ok {
			reserve = true
			withoutAge = withoutAge[:len(withoutAge)-1]
		}
	}

	kept := make([]string, 0, len(withoutAge))
	for _, token := range withoutAge {
		if _, ok := clubPrefixTokens[strings.ToLower(token)]; ok {
			continue
		}
		if isAllDigits(token) {
			continue
		}
		kept = append(kept, token)
	}

	if len(kept) == 0 {
		if len(withoutAge) > 0 {
			return strings.Join(withoutAge, " "), reserve
		}
		return strings.TrimSpace(raw), reserve
	}
	return strings.Join(kept, " "), reserve
}

func isAllDigits(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
