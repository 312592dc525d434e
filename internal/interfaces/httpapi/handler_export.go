package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
)

// ExportCalendar streams the selected fixtures as an iCalendar
// download. The list filters apply here too, so a client can export
// exactly the view it is looking at.
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportCalendar")
	defer span.End()

	payload, filename, err := h.exportService.ExportSelected(ctx, aggregationFilterFromQuery(r))
	if err != nil {
		h.logger.WarnContext(ctx, "calendar export failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
