package httpapi

import (
	"net/http"
)

func (h *Handler) ListAggregatedFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAggregatedFixtures")
	defer span.End()

	items, err := h.aggregationService.Aggregate(ctx, aggregationFilterFromQuery(r))
	if err != nil {
		h.logger.ErrorContext(ctx, "list aggregated fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

type updateSelectionRequest struct {
	FixtureIDs []string `json:"fixture_ids" validate:"required,min=1,dive,required"`
	Selected   bool     `json:"selected"`
}

func (h *Handler) UpdateFixtureSelection(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateFixtureSelection")
	defer span.End()

	var req updateSelectionRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.aggregationService.SetSelection(ctx, req.FixtureIDs, req.Selected); err != nil {
		h.logger.WarnContext(ctx, "update fixture selection failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"fixture_ids": req.FixtureIDs,
		"selected":    req.Selected,
	})
}
