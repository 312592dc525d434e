package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/talentkick/fixturesync/internal/domain/fixture"
)

func newTestExportService(repo fixture.Repository) *ExportService {
	aggregation := newTestAggregationService(repo, nil, AggregationConfig{})
	service := NewExportService(aggregation, nil)
	service.now = fixedNow
	return service
}

func TestExportServiceExportSelected_RefusesEmptySelection(t *testing.T) {
	t.Parallel()

	repo := newStubFixtureRepo()
	seedFixtures(t, repo, []fixture.Fixture{
		{SubjectID: "sub-1", MatchDate: "2026-09-05", HomeTeam: "A", AwayTeam: "B"},
	})

	service := newTestExportService(repo)
	_, _, err := service.ExportSelected(context.Background(), AggregationFilter{})
	if !errors.Is(err, ErrNothingSelected) {
		t.Fatalf("expected ErrNothingSelected, got %v", err)
	}
}

func TestExportServiceExportSelected_BuildsCalendar(t *testing.T) {
	t.Parallel()

	repo := newStubFixtureRepo()
	seedFixtures(t, repo, []fixture.Fixture{
		{
			SubjectID:   "sub-1",
			SubjectName: "Max Mustermann",
			MatchDate:   "2026-09-05",
			MatchTime:   "15:00",
			HomeTeam:    "TSG 1899 Hoffenheim U17",
			AwayTeam:    "FC Bayern München U17 2",
			Location:    "Dietmar-Hopp-Stadion",
			Competition: "B-Junioren Bundesliga",
			Selected:    true,
		},
		{
			SubjectID: "sub-2",
			MatchDate: "2026-09-06",
			HomeTeam:  "Unselected",
			AwayTeam:  "Row",
		},
	})

	service := newTestExportService(repo)
	payload, filename, err := service.ExportSelected(context.Background(), AggregationFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if filename != "spielplan-20260901.ics" {
		t.Fatalf("unexpected filename: %s", filename)
	}

	text := string(payload)
	if !strings.HasPrefix(text, "BEGIN:VCALENDAR\r\n") {
		t.Fatalf("calendar must start with BEGIN:VCALENDAR, got %q", text[:40])
	}
	if !strings.Contains(text, "\r\n") || strings.Contains(strings.ReplaceAll(text, "\r\n", ""), "\n") {
		t.Fatal("calendar lines must be CRLF-terminated")
	}
	if got := strings.Count(text, "BEGIN:VEVENT"); got != 1 {
		t.Fatalf("expected exactly 1 event, got %d", got)
	}
	if !strings.Contains(text, "DTSTART:20260905T150000") {
		t.Fatalf("missing kickoff DTSTART, calendar:\n%s", text)
	}
	if !strings.Contains(text, "DTEND:20260905T170000") {
		t.Fatal("expected two-hour event duration")
	}
	if !strings.Contains(text, "SUMMARY:U17 Liga: Hoffenheim - Bayern München U23") {
		t.Fatalf("unexpected summary, calendar:\n%s", text)
	}
	if !strings.Contains(text, "Max Mustermann") {
		t.Fatal("description must carry the subject names")
	}
	if !strings.Contains(text, "LOCATION:Dietmar-Hopp-Stadion") {
		t.Fatal("missing location")
	}
}

func TestExportServiceExportSelected_TimelessFixtureGetsNoonPlaceholder(t *testing.T) {
	t.Parallel()

	repo := newStubFixtureRepo()
	seedFixtures(t, repo, []fixture.Fixture{
		{SubjectID: "sub-1", MatchDate: "2026-09-05", HomeTeam: "A", AwayTeam: "B", Selected: true},
	})

	service := newTestExportService(repo)
	payload, _, err := service.ExportSelected(context.Background(), AggregationFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	text := string(payload)
	if !strings.Contains(text, "DTSTART:20260905T120000") {
		t.Fatalf("expected noon placeholder start, calendar:\n%s", text)
	}
	if !strings.Contains(text, "DTEND:20260905T140000") {
		t.Fatal("expected placeholder end two hours later")
	}
}

func TestEventInterval_PlaceholderAndParsing(t *testing.T) {
	t.Parallel()

	start, end, ok := eventInterval(AggregatedFixture{MatchDate: "2026-09-05", MatchTime: "15:30"})
	if !ok {
		t.Fatal("expected parseable interval")
	}
	if start.Hour() != 15 || start.Minute() != 30 {
		t.Fatalf("unexpected start: %v", start)
	}
	if end.Sub(start) != 2*time.Hour {
		t.Fatalf("unexpected duration: %v", end.Sub(start))
	}

	if _, _, ok := eventInterval(AggregatedFixture{MatchDate: "not-a-date"}); ok {
		t.Fatal("expected unparseable date to be rejected")
	}
}

func TestCleanClubName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in          string
		want        string
		wantReserve bool
	}{
		{in: "TSG 1899 Hoffenheim U17", want: "Hoffenheim"},
		{in: "FC Bayern München U17 2", want: "Bayern München", wantReserve: true},
		{in: "SV Werder Bremen II", want: "Werder Bremen", wantReserve: true},
		{in: "Borussia Dortmund U23", want: "Borussia Dortmund", wantReserve: true},
		{in: "1. FC Köln", want: "Köln"},
		{in: "Hamburger SV", want: "Hamburger"},
		{in: "FC 1899", want: "FC 1899"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got, reserve := CleanClubName(tc.in)
		if got != tc.want || reserve != tc.wantReserve {
			t.Fatalf("CleanClubName(%q)=(%q,%v) want=(%q,%v)", tc.in, got, reserve, tc.want, tc.wantReserve)
		}
	}
}

func TestMatchTypeLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "Kreispokal Heidelberg", want: "Pokal"},
		{in: "DFB-Cup", want: "Pokal"},
		{in: "Freundschaftsspiel", want: "Test"},
		{in: "Testspiel", want: "Test"},
		{in: "B-Junioren Bundesliga", want: "Liga"},
		{in: "", want: "Liga"},
	}

	for _, tc := range cases {
		if got := matchTypeLabel(tc.in); got != tc.want {
			t.Fatalf("matchTypeLabel(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestEventTitle_SeniorFixture(t *testing.T) {
	t.Parallel()

	title := EventTitle(AggregatedFixture{
		HomeTeam:    "1. FC Köln",
		AwayTeam:    "Hamburger SV",
		Competition: "Regionalliga West",
	})
	if title != "Herren Liga: Köln - Hamburger" {
		t.Fatalf("unexpected title: %s", title)
	}
}
