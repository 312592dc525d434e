package httpapi

import (
	"net/http"
)

func (h *Handler) GetProviderTokenStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetProviderTokenStatus")
	defer span.End()

	configured, err := h.settingsService.ProviderTokenStatus(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "provider token status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	// The token value itself never leaves the server.
	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"configured": configured})
}

type setProviderTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *Handler) SetProviderToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetProviderToken")
	defer span.End()

	var req setProviderTokenRequest
	if err := h.decodeBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.settingsService.SetProviderToken(ctx, req.Token); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"configured": true})
}
