package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/talentkick/fixturesync/internal/domain/fixture"
	"github.com/talentkick/fixturesync/internal/domain/settings"
	"github.com/talentkick/fixturesync/internal/domain/subject"
	"github.com/talentkick/fixturesync/internal/platform/cache"
	"github.com/talentkick/fixturesync/internal/platform/logging"
	"github.com/talentkick/fixturesync/internal/platform/pacing"
)

// ExternalFixture is one upcoming match as reported by the fixture
// provider, before it is attached to a subject.
type ExternalFixture struct {
	MatchDate   string
	MatchTime   string
	HomeTeam    string
	AwayTeam    string
	Location    string
	Competition string
	Matchday    string
	Result      string
	SourceURL   string
}

// FixtureProvider is the outbound port to the fixture source.
type FixtureProvider interface {
	ExtractTeamIdentifier(profileURL string) (string, bool)
	FetchUpcomingFixtures(ctx context.Context, teamID, token string) ([]ExternalFixture, error)
}

// ProgressFunc receives monotonic batch progress: completed never
// decreases and total never changes within one run.
type ProgressFunc func(completed, total int, subjectName string)

type SyncInput struct {
	MaxWorkers int
	Progress   ProgressFunc
}

type SyncWarning struct {
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
	Reason      string `json:"reason"`
}

type SyncResult struct {
	RunID          string        `json:"run_id"`
	SubjectCount   int           `json:"subject_count"`
	SyncedSubjects int           `json:"synced_subjects"`
	Added          int           `json:"added"`
	Updated        int           `json:"updated"`
	Warnings       []SyncWarning `json:"warnings"`
	WorkerCount    int           `json:"worker_count"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	DurationMs     int64         `json:"duration_ms"`
}

const (
	defaultSyncWorkers = 1
	maxSyncWorkers     = 4

	syncRunKeyPrefix = "sync-run:"
)

// SyncRunTTL is how long a finished run result stays retrievable.
const SyncRunTTL = 24 * time.Hour

// SyncService walks every subject that carries a provider profile URL,
// fetches that team's upcoming matches, and upserts them. A subject
// that cannot be synced produces a warning on the run result; it never
// fails the batch.
type SyncService struct {
	subjects subject.Repository
	fixtures fixture.Repository
	settings settings.Repository
	provider FixtureProvider
	pacer    *pacing.Pacer
	runs     *cache.Store
	logger   *logging.Logger
	now      func() time.Time
}

func NewSyncService(
	subjects subject.Repository,
	fixtures fixture.Repository,
	settingsRepo settings.Repository,
	provider FixtureProvider,
	pacer *pacing.Pacer,
	runs *cache.Store,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if pacer == nil {
		pacer = pacing.NewPacer(pacing.DefaultInterval)
	}
	return &SyncService{
		subjects: subjects,
		fixtures: fixtures,
		settings: settingsRepo,
		provider: provider,
		pacer:    pacer,
		runs:     runs,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes one full synchronization batch. The batch succeeds as
// long as it reaches the end, even when individual subjects produced
// warnings; only a missing token, a repository failure on the subject
// list, or cancellation abort it.
func (s *SyncService) Run(ctx context.Context, input SyncInput) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Run")
	defer span.End()

	if s.provider == nil || s.subjects == nil || s.fixtures == nil || s.settings == nil {
		return SyncResult{}, fmt.Errorf("%w: fixture sync is not fully configured", ErrDependencyUnavailable)
	}

	token, ok, err := s.settings.Get(ctx, settings.KeyProviderToken)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load provider token: %w", err)
	}
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return SyncResult{}, fmt.Errorf("%w: store %q before starting a sync", ErrTokenNotConfigured, settings.KeyProviderToken)
	}

	items, err := s.subjects.ListWithProfileURL(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("list subjects with profile url: %w", err)
	}

	startedAt := s.now()
	workerCount := normalizeSyncWorkerCount(input.MaxWorkers, len(items))
	result := SyncResult{
		RunID:        uuid.NewString(),
		SubjectCount: len(items),
		WorkerCount:  workerCount,
		Warnings:     make([]SyncWarning, 0, 4),
		StartedAt:    startedAt,
	}

	collector := &syncCollector{result: &result, progress: input.Progress, total: len(items)}

	if len(items) > 0 {
		if workerCount <= 1 {
			err = s.runSequential(ctx, items, token, collector)
		} else {
			err = s.runPooled(ctx, items, token, workerCount, collector)
		}
	}

	result.FinishedAt = s.now()
	result.DurationMs = result.FinishedAt.Sub(startedAt).Milliseconds()

	if err != nil {
		return result, err
	}

	s.storeRun(ctx, result)
	s.logger.InfoContext(ctx, "fixture sync finished",
		"run_id", result.RunID,
		"subjects", result.SubjectCount,
		"added", result.Added,
		"updated", result.Updated,
		"warnings", len(result.Warnings),
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

func (s *SyncService) runSequential(ctx context.Context, items []subject.Subject, token string, collector *syncCollector) error {
	for _, item := range items {
		// Cancellation is honored between subjects so a long batch can
		// be stopped without waiting for the remaining fetches.
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.syncSubject(ctx, item, token, collector); err != nil {
			return err
		}
		collector.finishSubject(item.Name)
	}
	return nil
}

func (s *SyncService) runPooled(ctx context.Context, items []subject.Subject, token string, workerCount int, collector *syncCollector) error {
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return fmt.Errorf("create sync worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	var errOnce sync.Once
	var firstErr error
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		item := item
		workers.Add(1)
		if submitErr := pool.Submit(func() {
			defer workers.Done()
			if err := s.syncSubject(ctx, item, token, collector); err != nil {
				// Only cancellation or an open breaker reaches here;
				// per-subject failures were already recorded as
				// warnings.
				errOnce.Do(func() { firstErr = err })
				return
			}
			collector.finishSubject(item.Name)
		}); submitErr != nil {
			workers.Done()
			workers.Wait()
			return fmt.Errorf("submit subject to worker pool: %w", submitErr)
		}
	}
	workers.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return firstErr
}

func (s *SyncService) syncSubject(ctx context.Context, item subject.Subject, token string, collector *syncCollector) error {
	teamID, ok := s.provider.ExtractTeamIdentifier(item.ProfileURL)
	if !ok {
		collector.warn(item, "profile url carries no recognizable team identifier")
		return nil
	}

	// One shared pacer bounds the aggregate request rate no matter how
	// many workers are active.
	if err := s.pacer.Wait(ctx); err != nil {
		return err
	}

	rows, err := s.provider.FetchUpcomingFixtures(ctx, teamID, token)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// An open circuit breaker would fail every remaining subject
		// the same way; abort instead of flooding the run with the
		// identical warning.
		if errors.Is(err, ErrDependencyUnavailable) {
			return err
		}
		collector.warn(item, sanitizeWarnReason("fetch fixtures: "+err.Error()))
		return nil
	}
	if len(rows) == 0 {
		s.logger.DebugContext(ctx, "subject has no upcoming fixtures", "subject_id", item.ID, "team_id", teamID)
		collector.synced()
		return nil
	}

	persistFailures := 0
	for _, row := range rows {
		candidate := fixture.Fixture{
			SubjectID:   item.ID,
			SubjectName: item.Name,
			MatchDate:   row.MatchDate,
			MatchTime:   row.MatchTime,
			HomeTeam:    row.HomeTeam,
			AwayTeam:    row.AwayTeam,
			Location:    row.Location,
			Competition: row.Competition,
			Matchday:    row.Matchday,
			Result:      row.Result,
			SourceURL:   row.SourceURL,
		}
		if !candidate.Valid() {
			continue
		}

		created, err := s.fixtures.Upsert(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			persistFailures++
			continue
		}
		if created {
			collector.added()
		} else {
			collector.updated()
		}
	}

	if persistFailures > 0 {
		collector.warn(item, fmt.Sprintf("failed to persist %d of %d fixtures", persistFailures, len(rows)))
		return nil
	}

	collector.synced()
	return nil
}

// GetRun returns a recently finished sync result by its run id.
func (s *SyncService) GetRun(ctx context.Context, runID string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.GetRun")
	defer span.End()

	runID = strings.TrimSpace(runID)
	if runID == "" {
		return SyncResult{}, fmt.Errorf("%w: run id is required", ErrInvalidInput)
	}
	if s.runs == nil {
		return SyncResult{}, fmt.Errorf("%w: sync run %s", ErrNotFound, runID)
	}

	value, ok := s.runs.Get(ctx, syncRunKeyPrefix+runID)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: sync run %s", ErrNotFound, runID)
	}
	result, ok := value.(SyncResult)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: sync run %s", ErrNotFound, runID)
	}
	return result, nil
}

// CleanupPast removes fixtures whose match date lies strictly before
// today. Returns the number of deleted rows.
func (s *SyncService) CleanupPast(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.CleanupPast")
	defer span.End()

	today := s.now().Format(fixture.DateLayout)
	removed, err := s.fixtures.DeleteBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("delete fixtures before %s: %w", today, err)
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "removed past fixtures", "before", today, "count", removed)
	}
	return removed, nil
}

func (s *SyncService) storeRun(ctx context.Context, result SyncResult) {
	if s.runs == nil {
		return
	}
	s.runs.Set(ctx, syncRunKeyPrefix+result.RunID, result)
}

// syncCollector serializes result mutation and progress reporting
// across workers. Progress is emitted while the lock is held so
// completed counts can never be observed out of order.
type syncCollector struct {
	mu        sync.Mutex
	result    *SyncResult
	progress  ProgressFunc
	total     int
	completed int
}

func (c *syncCollector) warn(item subject.Subject, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Warnings = append(c.result.Warnings, SyncWarning{
		SubjectID:   item.ID,
		SubjectName: item.Name,
		Reason:      reason,
	})
}

func (c *syncCollector) finishSubject(subjectName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed++
	if c.progress != nil {
		c.progress(c.completed, c.total, subjectName)
	}
}

func (c *syncCollector) synced() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.SyncedSubjects++
}

func (c *syncCollector) added() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Added++
}

func (c *syncCollector) updated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result.Updated++
}

func normalizeSyncWorkerCount(value int, subjectCount int) int {
	if subjectCount <= 0 {
		return defaultSyncWorkers
	}
	if value <= 0 {
		value = defaultSyncWorkers
	}
	if value > maxSyncWorkers {
		value = maxSyncWorkers
	}
	if value > subjectCount {
		value = subjectCount
	}
	return value
}

func sanitizeWarnReason(reason string) string {
	reason = strings.TrimSpace(reason)
	const limit = 300
	if len(reason) > limit {
		return reason[:limit] + "..."
	}
	return reason
}
