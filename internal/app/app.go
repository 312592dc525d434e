package app

import (
	"fmt"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/talentkick/fixturesync/external/fussballde"
	"github.com/talentkick/fixturesync/internal/config"
	"github.com/talentkick/fixturesync/internal/domain/fixture"
	"github.com/talentkick/fixturesync/internal/domain/settings"
	"github.com/talentkick/fixturesync/internal/domain/subject"
	"github.com/talentkick/fixturesync/internal/infrastructure/repository/memory"
	"github.com/talentkick/fixturesync/internal/infrastructure/repository/postgres"
	"github.com/talentkick/fixturesync/internal/interfaces/httpapi"
	"github.com/talentkick/fixturesync/internal/platform/cache"
	"github.com/talentkick/fixturesync/internal/platform/logging"
	"github.com/talentkick/fixturesync/internal/platform/pacing"
	"github.com/talentkick/fixturesync/internal/platform/resilience"
	"github.com/talentkick/fixturesync/internal/usecase"
)

// NewHTTPServer wires repositories, services, and the HTTP router. The
// returned cleanup releases the store handle when one was opened.
func NewHTTPServer(cfg config.Config, logger *slog.Logger, platformLogger *logging.Logger) (*http.Server, func() error, error) {
	if platformLogger == nil {
		platformLogger = logging.Default()
	}

	var (
		fixtureRepo  fixture.Repository
		subjectRepo  subject.Repository
		settingsRepo settings.Repository
	)
	closeStore := func() error { return nil }

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		fixtureRepo = memory.NewFixtureRepository()
		subjectRepo = memory.NewSubjectRepository(memory.SeedSubjects())
		settingsRepo = memory.NewSettingsRepository()
	default:
		db, err := otelsqlx.Connect("postgres",
			normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
			otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		fixtureRepo = postgres.NewFixtureRepository(db)
		subjectRepo = postgres.NewSubjectRepository(db)
		settingsRepo = postgres.NewSettingsRepository(db)
		closeStore = db.Close
	}

	provider := fussballde.NewClient(fussballde.ClientConfig{
		BaseURL:    cfg.RelayBaseURL,
		Timeout:    cfg.RelayTimeout,
		MaxRetries: cfg.RelayMaxRetries,
		Logger:     platformLogger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.RelayCircuitEnabled,
			FailureThreshold: cfg.RelayCircuitFailureCount,
			OpenTimeout:      cfg.RelayCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.RelayCircuitHalfOpenMaxReq,
		},
	})

	pacer := pacing.NewPacer(cfg.RelayPacingInterval)
	runs := cache.NewStore(usecase.SyncRunTTL)

	syncSvc := usecase.NewSyncService(subjectRepo, fixtureRepo, settingsRepo, provider, pacer, runs, platformLogger)
	aggregationSvc := usecase.NewAggregationService(fixtureRepo, subjectRepo, usecase.AggregationConfig{
		WindowDays:        cfg.AggregationWindowDays,
		KeepAgeCategories: cfg.KeepAgeCategories,
	}, platformLogger)
	exportSvc := usecase.NewExportService(aggregationSvc, platformLogger)
	settingsSvc := usecase.NewSettingsService(settingsRepo, platformLogger)

	handler := httpapi.NewHandler(syncSvc, aggregationSvc, exportSvc, settingsSvc, cfg.SyncMaxWorkers, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		closeErr := closeStore()
		if closeErr != nil {
			platformLogger.Warn("close store", "error", closeErr)
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeStore, nil
}
