package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/fixtures", handler.ListAggregatedFixtures)
	mux.HandleFunc("PUT /v1/fixtures/selection", handler.UpdateFixtureSelection)
	mux.HandleFunc("GET /v1/export/calendar.ics", handler.ExportCalendar)

	mux.HandleFunc("POST /v1/sync", handler.RunSync)
	mux.HandleFunc("GET /v1/sync/runs/{runID}", handler.GetSyncRun)

	mux.HandleFunc("GET /v1/settings/provider-token", handler.GetProviderTokenStatus)
	mux.HandleFunc("PUT /v1/settings/provider-token", handler.SetProviderToken)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSync)))
	mux.Handle("POST /v1/internal/jobs/cleanup", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCleanupJob)))
}
