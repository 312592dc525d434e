package usecase

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/talentkick/fixturesync/internal/domain/fixture"
	"github.com/talentkick/fixturesync/internal/domain/subject"
	"github.com/talentkick/fixturesync/internal/platform/logging"
)

// AggregatedFixture is one match seen across all subjects: several
// players in the same squad produce several stored fixture rows that
// collapse into a single entry here.
type AggregatedFixture struct {
	MatchDate    string   `json:"match_date"`
	MatchTime    string   `json:"match_time,omitempty"`
	HomeTeam     string   `json:"home_team"`
	AwayTeam     string   `json:"away_team"`
	Location     string   `json:"location,omitempty"`
	Competition  string   `json:"competition,omitempty"`
	Matchday     string   `json:"matchday,omitempty"`
	Result       string   `json:"result,omitempty"`
	SourceURL    string   `json:"source_url,omitempty"`
	AgeCategory  string   `json:"age_category,omitempty"`
	SubjectIDs   []string `json:"subject_ids"`
	SubjectNames []string `json:"subject_names"`
	FixtureIDs   []string `json:"fixture_ids"`
	Selected     bool     `json:"selected"`
}

type AggregationConfig struct {
	// WindowDays bounds the read window starting today.
	WindowDays int
	// KeepAgeCategories keeps U17/U19 squads of the same club apart
	// when grouping. Off by default: a scraped page sometimes labels
	// only one side of the same match with the age token, and merging
	// across tokens deduplicates those.
	KeepAgeCategories bool
}

const defaultAggregationWindowDays = 35

type AggregationFilter struct {
	Search     string
	SubjectIDs []string
	Areas      []string
}

// AggregationService folds stored per-subject fixture rows into the
// deduplicated upcoming-matches view.
type AggregationService struct {
	fixtures fixture.Repository
	subjects subject.Repository
	cfg      AggregationConfig
	logger   *logging.Logger
	now      func() time.Time
}

func NewAggregationService(
	fixtures fixture.Repository,
	subjects subject.Repository,
	cfg AggregationConfig,
	logger *logging.Logger,
) *AggregationService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = defaultAggregationWindowDays
	}
	return &AggregationService{
		fixtures: fixtures,
		subjects: subjects,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

var ageCategoryRegex = regexp.MustCompile(`(?i)\bU\s?(\d{1,2})\b`)

// Aggregate returns the deduplicated fixture list for the configured
// window, filtered and sorted. Two stored rows describe the same
// match when their normalized team pair, date, and time agree; the
// home/away orientation does not matter because different team pages
// occasionally disagree about which side is listed first.
func (s *AggregationService) Aggregate(ctx context.Context, filter AggregationFilter) ([]AggregatedFixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.Aggregate")
	defer span.End()

	from := s.now().Format(fixture.DateLayout)
	to := s.now().AddDate(0, 0, s.cfg.WindowDays).Format(fixture.DateLayout)

	rows, err := s.fixtures.ListByDateWindow(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list fixtures %s..%s: %w", from, to, err)
	}

	buckets := make(map[string]*fixtureBucket, len(rows))
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		key := s.bucketKey(row)
		bucket, ok := buckets[key]
		if !ok {
			bucket = newFixtureBucket(row)
			buckets[key] = bucket
			order = append(order, key)
		}
		bucket.absorb(row)
	}

	out := make([]AggregatedFixture, 0, len(order))
	for _, key := range order {
		out = append(out, buckets[key].build())
	}

	out, err = s.applyFilter(ctx, out, filter)
	if err != nil {
		return nil, err
	}

	sortAggregated(out)
	return out, nil
}

// SetSelection marks or unmarks stored fixture rows for calendar
// export. Callers pass the FixtureIDs of an aggregated entry so every
// underlying row flips together.
func (s *AggregationService) SetSelection(ctx context.Context, fixtureIDs []string, selected bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AggregationService.SetSelection")
	defer span.End()

	ids := make([]string, 0, len(fixtureIDs))
	for _, id := range fixtureIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one fixture id is required", ErrInvalidInput)
	}

	if err := s.fixtures.UpdateSelected(ctx, ids, selected); err != nil {
		return fmt.Errorf("update fixture selection: %w", err)
	}
	return nil
}

func (s *AggregationService) bucketKey(row fixture.Fixture) string {
	home := s.normalizeTeamKey(row.HomeTeam)
	away := s.normalizeTeamKey(row.AwayTeam)
	// Orientation-free pairing: sorted sides make A-vs-B and B-vs-A
	// land in the same bucket.
	if home > away {
		home, away = away, home
	}
	return row.MatchDate + "|" + row.MatchTime + "|" + home + "|" + away
}

func (s *AggregationService) normalizeTeamKey(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return ""
	}
	if !s.cfg.KeepAgeCategories {
		value = ageCategoryRegex.ReplaceAllString(value, " ")
	}
	return strings.Join(strings.Fields(value), " ")
}

func (s *AggregationService) applyFilter(ctx context.Context, items []AggregatedFixture, filter AggregationFilter) ([]AggregatedFixture, error) {
	subjectFilter := toStringSet(filter.SubjectIDs)
	areaFilter := toLowerSet(filter.Areas)

	var areasBySubject map[string][]string
	if len(areaFilter) > 0 {
		all, err := s.subjects.ListWithProfileURL(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subjects for area filter: %w", err)
		}
		areasBySubject = make(map[string][]string, len(all))
		for _, item := range all {
			areasBySubject[item.ID] = subject.SplitAreas(item.AreaOfResponsibility)
		}
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))

	out := items[:0]
	for _, item := range items {
		if len(subjectFilter) > 0 && !anyInSet(item.SubjectIDs, subjectFilter) {
			continue
		}
		if len(areaFilter) > 0 && !anyAreaMatches(item.SubjectIDs, areasBySubject, areaFilter) {
			continue
		}
		if search != "" && !matchesSearch(item, search) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func matchesSearch(item AggregatedFixture, search string) bool {
	haystacks := []string{item.HomeTeam, item.AwayTeam, item.Location, item.Competition}
	haystacks = append(haystacks, item.SubjectNames...)
	for _, value := range haystacks {
		if strings.Contains(strings.ToLower(value), search) {
			return true
		}
	}
	return false
}

func anyInSet(values []string, set map[string]struct{}) bool {
	for _, value := range values {
		if _, ok := set[value]; ok {
			return true
		}
	}
	return false
}

func anyAreaMatches(subjectIDs []string, areasBySubject map[string][]string, areaFilter map[string]struct{}) bool {
	for _, subjectID := range subjectIDs {
		for _, area := range areasBySubject[subjectID] {
			if _, ok := areaFilter[strings.ToLower(area)]; ok {
				return true
			}
		}
	}
	return false
}

func toStringSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out[value] = struct{}{}
	}
	return out
}

func toLowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		out[value] = struct{}{}
	}
	return out
}

// sortAggregated orders by date, then matches with a kickoff time
// before timeless ones, then seniors before youth squads with higher
// age categories first, then home team for a stable tail.
func sortAggregated(items []AggregatedFixture) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i], items[j]
		if left.MatchDate != right.MatchDate {
			return left.MatchDate < right.MatchDate
		}
		if (left.MatchTime == "") != (right.MatchTime == "") {
			return left.MatchTime != ""
		}
		if left.MatchTime != right.MatchTime {
			return left.MatchTime < right.MatchTime
		}
		leftRank := ageCategoryRank(left.AgeCategory)
		rightRank := ageCategoryRank(right.AgeCategory)
		if leftRank != rightRank {
			return leftRank < rightRank
		}
		return left.HomeTeam < right.HomeTeam
	})
}

// ageCategoryRank maps "" (senior) to the lowest rank and higher age
// categories before lower ones (U19 before U17).
func ageCategoryRank(category string) int {
	match := ageCategoryRegex.FindStringSubmatch(category)
	if match == nil {
		return 0
	}
	number, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return 100 - number
}

type fixtureBucket struct {
	first        fixture.Fixture
	fixtureIDs   []string
	subjectIDs   []string
	subjectNames map[string]struct{}
	seenSubjects map[string]struct{}
	selected     bool
}

func newFixtureBucket(row fixture.Fixture) *fixtureBucket {
	return &fixtureBucket{
		first:        row,
		fixtureIDs:   make([]string, 0, 2),
		subjectIDs:   make([]string, 0, 2),
		subjectNames: make(map[string]struct{}, 2),
		seenSubjects: make(map[string]struct{}, 2),
	}
}

func (b *fixtureBucket) absorb(row fixture.Fixture) {
	b.fixtureIDs = append(b.fixtureIDs, row.ID)
	if _, ok := b.seenSubjects[row.SubjectID]; !ok {
		b.seenSubjects[row.SubjectID] = struct{}{}
		b.subjectIDs = append(b.subjectIDs, row.SubjectID)
	}
	if name := strings.TrimSpace(row.SubjectName); name != "" {
		b.subjectNames[name] = struct{}{}
	}
	if row.Selected {
		b.selected = true
	}

	// Prefer the richer row for display fields; the first row wins
	// ties so output stays deterministic.
	if b.first.Location == "" && row.Location != "" {
		b.first.Location = row.Location
	}
	if b.first.Competition == "" && row.Competition != "" {
		b.first.Competition = row.Competition
	}
	if b.first.Matchday == "" && row.Matchday != "" {
		b.first.Matchday = row.Matchday
	}
	if b.first.Result == "" && row.Result != "" {
		b.first.Result = row.Result
	}
	if b.first.SourceURL == "" && row.SourceURL != "" {
		b.first.SourceURL = row.SourceURL
	}
}

func (b *fixtureBucket) build() AggregatedFixture {
	names := make([]string, 0, len(b.subjectNames))
	for name := range b.subjectNames {
		names = append(names, name)
	}
	sort.Strings(names)
	sort.Strings(b.fixtureIDs)
	sort.Strings(b.subjectIDs)

	return AggregatedFixture{
		MatchDate:    b.first.MatchDate,
		MatchTime:    b.first.MatchTime,
		HomeTeam:     b.first.HomeTeam,
		AwayTeam:     b.first.AwayTeam,
		Location:     b.first.Location,
		Competition:  b.first.Competition,
		Matchday:     b.first.Matchday,
		Result:       b.first.Result,
		SourceURL:    b.first.SourceURL,
		AgeCategory:  detectAgeCategory(b.first.HomeTeam, b.first.AwayTeam),
		SubjectIDs:   b.subjectIDs,
		SubjectNames: names,
		FixtureIDs:   b.fixtureIDs,
		Selected:     b.selected,
	}
}

// detectAgeCategory reads the age token out of the display team names.
// When the two sides disagree the higher category wins.
func detectAgeCategory(teams ...string) string {
	best := 0
	for _, team := range teams {
		match := ageCategoryRegex.FindStringSubmatch(team)
		if match == nil {
			continue
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		if number > best {
			best = number
		}
	}
	if best == 0 {
		return ""
	}
	return fmt.Sprintf("U%d", best)
}
