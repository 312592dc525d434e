package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/talentkick/fixturesync/internal/usecase"
)

type Handler struct {
	syncService        *usecase.SyncService
	aggregationService *usecase.AggregationService
	exportService      *usecase.ExportService
	settingsService    *usecase.SettingsService
	defaultSyncWorkers int
	logger             *slog.Logger
	validator          *validator.Validate
}

func NewHandler(
	syncService *usecase.SyncService,
	aggregationService *usecase.AggregationService,
	exportService *usecase.ExportService,
	settingsService *usecase.SettingsService,
	defaultSyncWorkers int,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		syncService:        syncService,
		aggregationService: aggregationService,
		exportService:      exportService,
		settingsService:    settingsService,
		defaultSyncWorkers: defaultSyncWorkers,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody unmarshals and validates a JSON request body into target.
func (h *Handler) decodeBody(r *http.Request, target any) error {
	if err := jsoniter.NewDecoder(r.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validator.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// aggregationFilterFromQuery reads the shared list/export filter
// parameters. Repeated subject_id and area parameters are additive.
func aggregationFilterFromQuery(r *http.Request) usecase.AggregationFilter {
	query := r.URL.Query()
	return usecase.AggregationFilter{
		Search:     strings.TrimSpace(query.Get("search")),
		SubjectIDs: query["subject_id"],
		Areas:      query["area"],
	}
}
