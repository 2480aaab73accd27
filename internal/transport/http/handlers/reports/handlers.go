package reportshandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"perf360/internal/domain/auth"
	"perf360/internal/domain/evaluation"
	"perf360/internal/domain/reports"
	"perf360/internal/transport/http/api"
	"perf360/internal/transport/http/middleware"
)

type Handler struct {
	Service     *reports.Service
	Evaluations *evaluation.Service
}

func NewHandler(service *reports.Service, evaluations *evaluation.Service) *Handler {
	return &Handler{Service: service, Evaluations: evaluations}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireOperation(auth.OpReportExport))
		r.Get("/evaluations.csv", h.handleCSVExport)
		r.Post("/evaluations/{evaluationID}/pdf", h.handlePDFExport)
	})
}

func (h *Handler) handleCSVExport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	filter := evaluation.Filter{
		Status:     r.URL.Query().Get("status"),
		EmployeeID: r.URL.Query().Get("employeeId"),
	}
	evals, err := h.Evaluations.List(r.Context(), user, filter)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to export evaluations", requestID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluations.csv"`)
	if err := h.Service.EvaluationsCSV(w, evals); err != nil {
		// Headers are already written; nothing sane to send.
		return
	}
}

func (h *Handler) handlePDFExport(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	eval, err := h.Evaluations.Get(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestID)
		return
	}

	path, err := h.Service.EvaluationSummaryPDF(r.Context(), eval)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to generate report", requestID)
		return
	}
	api.Success(w, map[string]string{"path": path}, requestID)
}
