package dashboardhandler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perf360/internal/domain/auth"
	"perf360/internal/domain/dashboard"
	"perf360/internal/transport/http/api"
	"perf360/internal/transport/http/middleware"
)

type Handler struct {
	Service *dashboard.Service
}

func NewHandler(service *dashboard.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.With(middleware.RequireOperation(auth.OpDashboardRead)).Get("/", h.handleSummary)
		r.With(middleware.RequireOperation(auth.OpDashboardReadOrg)).Get("/org", h.handleOrgSummary)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	summary, err := h.Service.UserSummary(r.Context(), user)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func (h *Handler) handleOrgSummary(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	summary, err := h.Service.OrgSummary(r.Context(), user)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func failFromError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, dashboard.ErrForbidden) {
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
		return
	}
	slog.Error("dashboard request failed", "err", err)
	api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
}
