package httpapi

import (
	"net/http"

	"github.com/riskibarqy/live-sports-hub/internal/platform/metrics"
)

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.Handle("GET /metrics", m.Handler())
}

func registerLiveRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics) {
	handle(mux, m, "GET /v1/status", handler.GetStatus)
	handle(mux, m, "GET /v1/snapshot", handler.GetSnapshot)
	handle(mux, m, "GET /v1/board", handler.GetBoard)
	handle(mux, m, "PUT /v1/session", handler.PutSession)
	handle(mux, m, "POST /v1/refresh", handler.PostRefresh)
}

func registerFavoriteRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics) {
	handle(mux, m, "GET /v1/favorites", handler.ListFavorites)
	handle(mux, m, "POST /v1/favorites", handler.AddFavorite)
	handle(mux, m, "DELETE /v1/favorites/{eventID}", handler.RemoveFavorite)
	handle(mux, m, "POST /v1/favorites/{eventID}/toggle", handler.ToggleFavorite)
}

func registerSettingRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics) {
	handle(mux, m, "GET /v1/settings", handler.ListSettings)
	handle(mux, m, "GET /v1/settings/{key}", handler.GetSetting)
	handle(mux, m, "PUT /v1/settings/{key}", handler.PutSetting)
}

func registerTransferRoutes(mux *http.ServeMux, handler *Handler, m *metrics.Metrics) {
	handle(mux, m, "GET /v1/export", handler.ExportSnapshot)
	handle(mux, m, "POST /v1/import", handler.ImportSnapshot)
}

// handle labels request metrics with the route pattern, not the raw path.
func handle(mux *http.ServeMux, m *metrics.Metrics, pattern string, fn http.HandlerFunc) {
	mux.Handle(pattern, m.WrapHandler(pattern, fn))
}
