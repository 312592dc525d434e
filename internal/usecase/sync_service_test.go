package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/talentkick/fixturesync/internal/domain/fixture"
	"github.com/talentkick/fixturesync/internal/domain/settings"
	"github.com/talentkick/fixturesync/internal/domain/subject"
	"github.com/talentkick/fixturesync/internal/platform/cache"
	"github.com/talentkick/fixturesync/internal/platform/pacing"
)

type stubSubjectRepo struct {
	items   []subject.Subject
	listErr error
}

func (s *stubSubjectRepo) ListWithProfileURL(_ context.Context) ([]subject.Subject, error) {
	return s.items, s.listErr
}

type stubSettingsRepo struct {
	values map[string]string
}

func (s *stubSettingsRepo) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *stubSettingsRepo) Put(_ context.Context, key, value string) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	s.values[key] = value
	return nil
}

type stubFixtureRepo struct {
	mu       sync.Mutex
	byKey    map[fixture.Key]fixture.Fixture
	upserts  int
	upsertEr error
}

func newStubFixtureRepo() *stubFixtureRepo {
	return &stubFixtureRepo{byKey: make(map[fixture.Key]fixture.Fixture)}
}

func (s *stubFixtureRepo) Upsert(_ context.Context, row fixture.Fixture) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertEr != nil {
		return false, s.upsertEr
	}
	s.upserts++
	key := row.Key()
	_, exists := s.byKey[key]
	if !exists {
		row.ID = fmt.Sprintf("fx-%03d", len(s.byKey)+1)
	}
	s.byKey[key] = row
	return !exists, nil
}

func (s *stubFixtureRepo) ListByDateWindow(_ context.Context, from, to string) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]fixture.Fixture, 0, len(s.byKey))
	for _, row := range s.byKey {
		if row.MatchDate >= from && row.MatchDate <= to {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubFixtureRepo) GetByKey(_ context.Context, key fixture.Key) (fixture.Fixture, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.byKey[key]
	return row, ok, nil
}

func (s *stubFixtureRepo) UpdateSelected(_ context.Context, ids []string, selected bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, row := range s.byKey {
		for _, id := range ids {
			if row.ID == id {
				row.Selected = selected
				s.byKey[key] = row
			}
		}
	}
	return nil
}

func (s *stubFixtureRepo) DeleteBefore(_ context.Context, date string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, row := range s.byKey {
		if row.MatchDate < date {
			delete(s.byKey, key)
			removed++
		}
	}
	return removed, nil
}

type stubProvider struct {
	fixturesByTeam map[string][]ExternalFixture
	fetchErrByTeam map[string]error
}

func (s *stubProvider) ExtractTeamIdentifier(profileURL string) (string, bool) {
	const marker = "/team-id/"
	idx := len(profileURL)
	for i := 0; i+len(marker) <= len(profileURL); i++ {
		if profileURL[i:i+len(marker)] == marker {
			idx = i + len(marker)
			break
		}
	}
	if idx >= len(profileURL) {
		return "", false
	}
	return profileURL[idx:], true
}

func (s *stubProvider) FetchUpcomingFixtures(_ context.Context, teamID, _ string) ([]ExternalFixture, error) {
	if err := s.fetchErrByTeam[teamID]; err != nil {
		return nil, err
	}
	return s.fixturesByTeam[teamID], nil
}

func newTestSyncService(subjects []subject.Subject, provider FixtureProvider, fixtures fixture.Repository, values map[string]string) *SyncService {
	return NewSyncService(
		&stubSubjectRepo{items: subjects},
		fixtures,
		&stubSettingsRepo{values: values},
		provider,
		pacing.NewPacer(time.Millisecond),
		cache.NewStore(time.Minute),
		nil,
	)
}

func tokenValues() map[string]string {
	return map[string]string{settings.KeyProviderToken: "token-abc"}
}

func TestSyncServiceRun_MissingTokenFailsBeforeAnyFetch(t *testing.T) {
	t.Parallel()

	service := newTestSyncService(
		[]subject.Subject{{ID: "sub-1", Name: "Max", ProfileURL: "https://example.test/team-id/T1"}},
		&stubProvider{},
		newStubFixtureRepo(),
		map[string]string{},
	)

	_, err := service.Run(context.Background(), SyncInput{})
	if !errors.Is(err, ErrTokenNotConfigured) {
		t.Fatalf("expected ErrTokenNotConfigured, got %v", err)
	}
}

func TestSyncServiceRun_CollectsWarningsWithoutFailingBatch(t *testing.T) {
	t.Parallel()

	subjects := []subject.Subject{
		{ID: "sub-1", Name: "Max", ProfileURL: "https://example.test/team-id/T1"},
		{ID: "sub-2", Name: "Jonas", ProfileURL: "https://example.test/profil-ohne-kennung"},
		{ID: "sub-3", Name: "Luca", ProfileURL: "https://example.test/team-id/T3"},
	}
	provider := &stubProvider{
		fixturesByTeam: map[string][]ExternalFixture{
			"T1": {
				{MatchDate: "2026-09-05", MatchTime: "15:00", HomeTeam: "TSG Hoffenheim U17", AwayTeam: "KSC U17"},
			},
			"T3": {},
		},
	}
	repo := newStubFixtureRepo()
	service := newTestSyncService(subjects, provider, repo, tokenValues())

	var mu sync.Mutex
	var progress []int
	result, err := service.Run(context.Background(), SyncInput{
		Progress: func(completed, total int, _ string) {
			mu.Lock()
			defer mu.Unlock()
			if total != 3 {
				t.Errorf("total changed mid-run: %d", total)
			}
			progress = append(progress, completed)
		},
	})
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}

	if result.SubjectCount != 3 {
		t.Fatalf("unexpected subject count: %d", result.SubjectCount)
	}
	if result.SyncedSubjects != 2 {
		t.Fatalf("unexpected synced subjects: %d", result.SyncedSubjects)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("unexpected warning count: %d", len(result.Warnings))
	}
	if result.Warnings[0].SubjectID != "sub-2" {
		t.Fatalf("unexpected warning subject: %s", result.Warnings[0].SubjectID)
	}
	if result.Added != 1 || result.Updated != 0 {
		t.Fatalf("unexpected counts added=%d updated=%d", result.Added, result.Updated)
	}
	if result.RunID == "" {
		t.Fatal("expected a run id")
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress went backwards: %v", progress)
		}
	}
}

func TestSyncServiceRun_SecondRunReportsUpdatesNotAdds(t *testing.T) {
	t.Parallel()

	subjects := []subject.Subject{{ID: "sub-1", Name: "Max", ProfileURL: "https://example.test/team-id/T1"}}
	provider := &stubProvider{
		fixturesByTeam: map[string][]ExternalFixture{
			"T1": {{MatchDate: "2026-09-05", HomeTeam: "TSG Hoffenheim U17", AwayTeam: "KSC U17"}},
		},
	}
	repo := newStubFixtureRepo()
	service := newTestSyncService(subjects, provider, repo, tokenValues())

	first, err := service.Run(context.Background(), SyncInput{})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Added != 1 || first.Updated != 0 {
		t.Fatalf("first run counts added=%d updated=%d", first.Added, first.Updated)
	}

	second, err := service.Run(context.Background(), SyncInput{})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Added != 0 || second.Updated != 1 {
		t.Fatalf("second run counts added=%d updated=%d", second.Added, second.Updated)
	}
	if len(repo.byKey) != 1 {
		t.Fatalf("expected a single stored fixture, got %d", len(repo.byKey))
	}
}

func TestSyncServiceRun_PooledWorkersProcessEverySubject(t *testing.T) {
	t.Parallel()

	subjects := make([]subject.Subject, 0, 8)
	fixturesByTeam := make(map[string][]ExternalFixture, 8)
	for i := 0; i < 8; i++ {
		teamID := fmt.Sprintf("T%d", i)
		subjects = append(subjects, subject.Subject{
			ID:         fmt.Sprintf("sub-%d", i),
			Name:       fmt.Sprintf("Spieler %d", i),
			ProfileURL: "https://example.test/team-id/" + teamID,
		})
		fixturesByTeam[teamID] = []ExternalFixture{{
			MatchDate: "2026-09-05",
			HomeTeam:  fmt.Sprintf("Heim %d", i),
			AwayTeam:  fmt.Sprintf("Gast %d", i),
		}}
	}

	repo := newStubFixtureRepo()
	service := newTestSyncService(subjects, &stubProvider{fixturesByTeam: fixturesByTeam}, repo, tokenValues())

	result, err := service.Run(context.Background(), SyncInput{MaxWorkers: 4})
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}
	if result.WorkerCount != 4 {
		t.Fatalf("unexpected worker count: %d", result.WorkerCount)
	}
	if result.SyncedSubjects != 8 || result.Added != 8 {
		t.Fatalf("unexpected result synced=%d added=%d", result.SyncedSubjects, result.Added)
	}
}

func TestSyncServiceRun_FetchErrorBecomesWarning(t *testing.T) {
	t.Parallel()

	subjects := []subject.Subject{
		{ID: "sub-1", Name: "Max", ProfileURL: "https://example.test/team-id/T1"},
		{ID: "sub-2", Name: "Jonas", ProfileURL: "https://example.test/team-id/T2"},
	}
	provider := &stubProvider{
		fixturesByTeam: map[string][]ExternalFixture{
			"T2": {{MatchDate: "2026-09-05", HomeTeam: "Heim", AwayTeam: "Gast"}},
		},
		fetchErrByTeam: map[string]error{
			"T1": errors.New("fetch team T1: status 500"),
		},
	}
	repo := newStubFixtureRepo()
	service := newTestSyncService(subjects, provider, repo, tokenValues())

	result, err := service.Run(context.Background(), SyncInput{})
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}
	if result.SyncedSubjects != 1 {
		t.Fatalf("failed fetch must not count as synced: synced=%d", result.SyncedSubjects)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].SubjectID != "sub-1" {
		t.Fatalf("expected one warning for sub-1, got %+v", result.Warnings)
	}
	if result.Added != 1 {
		t.Fatalf("healthy subject must still sync: added=%d", result.Added)
	}
}

func TestSyncServiceRun_OpenBreakerAbortsPooledBatch(t *testing.T) {
	t.Parallel()

	subjects := make([]subject.Subject, 0, 4)
	fetchErrByTeam := make(map[string]error, 4)
	for i := 0; i < 4; i++ {
		teamID := fmt.Sprintf("T%d", i)
		subjects = append(subjects, subject.Subject{
			ID:         fmt.Sprintf("sub-%d", i),
			Name:       fmt.Sprintf("Spieler %d", i),
			ProfileURL: "https://example.test/team-id/" + teamID,
		})
		fetchErrByTeam[teamID] = ErrDependencyUnavailable
	}
	service := newTestSyncService(subjects, &stubProvider{fetchErrByTeam: fetchErrByTeam}, newStubFixtureRepo(), tokenValues())

	_, err := service.Run(context.Background(), SyncInput{MaxWorkers: 2})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestSyncServiceRun_CanceledContextStopsBatch(t *testing.T) {
	t.Parallel()

	subjects := []subject.Subject{
		{ID: "sub-1", Name: "Max", ProfileURL: "https://example.test/team-id/T1"},
		{ID: "sub-2", Name: "Jonas", ProfileURL: "https://example.test/team-id/T2"},
	}
	service := newTestSyncService(subjects, &stubProvider{}, newStubFixtureRepo(), tokenValues())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Run(ctx, SyncInput{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSyncServiceGetRun(t *testing.T) {
	t.Parallel()

	subjects := []subject.Subject{{ID: "sub-1", Name: "Max", ProfileURL: "https://example.test/team-id/T1"}}
	provider := &stubProvider{fixturesByTeam: map[string][]ExternalFixture{"T1": {}}}
	service := newTestSyncService(subjects, provider, newStubFixtureRepo(), tokenValues())

	result, err := service.Run(context.Background(), SyncInput{})
	if err != nil {
		t.Fatalf("run sync: %v", err)
	}

	stored, err := service.GetRun(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if stored.RunID != result.RunID {
		t.Fatalf("unexpected run id: %s", stored.RunID)
	}

	if _, err := service.GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncServiceCleanupPast(t *testing.T) {
	t.Parallel()

	repo := newStubFixtureRepo()
	service := newTestSyncService(nil, &stubProvider{}, repo, tokenValues())
	service.now = func() time.Time { return time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC) }

	seed := []fixture.Fixture{
		{SubjectID: "sub-1", MatchDate: "2026-09-01", HomeTeam: "A", AwayTeam: "B"},
		{SubjectID: "sub-1", MatchDate: "2026-09-10", HomeTeam: "C", AwayTeam: "D"},
		{SubjectID: "sub-1", MatchDate: "2026-09-20", HomeTeam: "E", AwayTeam: "F"},
	}
	for _, row := range seed {
		if _, err := repo.Upsert(context.Background(), row); err != nil {
			t.Fatalf("seed fixture: %v", err)
		}
	}

	removed, err := service.CleanupPast(context.Background())
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed fixture, got %d", removed)
	}
	if len(repo.byKey) != 2 {
		t.Fatalf("expected 2 remaining fixtures, got %d", len(repo.byKey))
	}
}
