package metricshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"perf360/internal/domain/auth"
	"perf360/internal/platform/metrics"
	"perf360/internal/transport/http/api"
	"perf360/internal/transport/http/middleware"
)

type Handler struct {
	Collector *metrics.Collector
}

func NewHandler(collector *metrics.Collector) *Handler {
	return &Handler{Collector: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequireOperation(auth.OpMetricsRead)).Get("/metrics", h.handleSnapshot)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if h.Collector == nil {
		api.Fail(w, http.StatusNotFound, "metrics_disabled", "metrics collection is disabled", requestID)
		return
	}
	api.Success(w, h.Collector.Snapshot(), requestID)
}
