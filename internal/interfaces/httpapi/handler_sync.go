package httpapi

import (
	"net/http"

	"github.com/talentkick/fixturesync/internal/usecase"
)

type runSyncRequest struct {
	MaxWorkers int `json:"max_workers" validate:"gte=0,lte=16"`
}

// RunSync executes a full synchronization batch and blocks until it
// finishes. Progress between subjects is logged so an operator tailing
// the logs can follow a long batch.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSync")
	defer span.End()

	var req runSyncRequest
	if r.ContentLength > 0 {
		if err := h.decodeBody(r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	maxWorkers := req.MaxWorkers
	if maxWorkers == 0 {
		maxWorkers = h.defaultSyncWorkers
	}

	result, err := h.syncService.Run(ctx, usecase.SyncInput{
		MaxWorkers: maxWorkers,
		Progress: func(completed, total int, subjectName string) {
			h.logger.InfoContext(ctx, "sync progress",
				"completed", completed,
				"total", total,
				"subject", subjectName,
			)
		},
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "sync run failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetSyncRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSyncRun")
	defer span.End()

	runID := r.PathValue("runID")
	result, err := h.syncService.GetRun(ctx, runID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// RunCleanupJob drops fixtures whose match date already passed. Wired
// behind the internal job token for schedulers.
func (h *Handler) RunCleanupJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCleanupJob")
	defer span.End()

	removed, err := h.syncService.CleanupPast(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "cleanup job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"removed": removed})
}
