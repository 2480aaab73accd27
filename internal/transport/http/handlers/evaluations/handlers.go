package evaluationshandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perf360/internal/domain/audit"
	"perf360/internal/domain/auth"
	"perf360/internal/domain/evaluation"
	"perf360/internal/domain/scoring"
	"perf360/internal/transport/http/api"
	"perf360/internal/transport/http/middleware"
	"perf360/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluation.Service
	Audit   *audit.Service
}

func NewHandler(service *evaluation.Service, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequireOperation(auth.OpEvaluationRead)).Get("/", h.handleList)
		r.With(middleware.RequireOperation(auth.OpEvaluationCreate)).Post("/", h.handleCreate)
		r.With(middleware.RequireOperation(auth.OpEvaluationRead)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequireOperation(auth.OpEvaluationUpdate)).Put("/{evaluationID}", h.handleUpdate)
		r.With(middleware.RequireOperation(auth.OpEvaluationDelete)).Delete("/{evaluationID}", h.handleDelete)
		r.With(middleware.RequireOperation(auth.OpEvaluationStart)).Post("/{evaluationID}/start", h.handleStart)
		r.With(middleware.RequireOperation(auth.OpEvaluationSubmit)).Post("/{evaluationID}/feedback", h.handleSubmitFeedback)
		r.With(middleware.RequireOperation(auth.OpEvaluationComplete)).Post("/{evaluationID}/complete", h.handleComplete)
		r.With(middleware.RequireOperation(auth.OpEvaluationRead)).Get("/{evaluationID}/scores", h.handleScores)
	})
}

type periodPayload struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type evaluatorPayload struct {
	UserID       string `json:"userId"`
	Relationship string `json:"relationship"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload struct {
		EmployeeID     string                `json:"employeeId"`
		EvaluationType string                `json:"evaluationType"`
		Period         periodPayload         `json:"period"`
		Categories     []evaluation.Category `json:"categories"`
		Evaluators     []evaluatorPayload    `json:"evaluators"`
		Template       string                `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("employeeId", payload.EmployeeID, "employee id is required")
	validator.Required("evaluationType", payload.EvaluationType, "evaluation type is required")
	start, startOK := validator.Date("period.startDate", payload.Period.StartDate)
	end, endOK := validator.Date("period.endDate", payload.Period.EndDate)
	if startOK && endOK {
		validator.DateOrder("period.startDate", start, "period.endDate", end)
	}
	if validator.Reject(w, requestID) {
		return
	}

	in := evaluation.CreateInput{
		EmployeeID:     payload.EmployeeID,
		EvaluationType: payload.EvaluationType,
		Period:         evaluation.Period{StartDate: start, EndDate: end},
		Categories:     payload.Categories,
		Evaluators:     toEvaluators(payload.Evaluators),
		Template:       payload.Template,
	}

	eval, err := h.Service.Create(r.Context(), user, in)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}

	h.record(r, user.UserID, "evaluation.create", eval.ID, nil, eval)
	api.Created(w, eval, requestID)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	pagination := shared.ParsePagination(r, 50, 200)

	filter := evaluation.Filter{
		Status:          r.URL.Query().Get("status"),
		EmployeeID:      r.URL.Query().Get("employeeId"),
		EvaluatorUserID: r.URL.Query().Get("evaluatorId"),
		CreatedBy:       r.URL.Query().Get("createdBy"),
		Limit:           pagination.Limit,
		Offset:          pagination.Offset,
	}
	if filter.Status != "" && !evaluation.ValidStatus(filter.Status) {
		api.Fail(w, http.StatusBadRequest, "validation_error", "unknown status filter", requestID)
		return
	}

	evals, err := h.Service.List(r.Context(), user, filter)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	if evals == nil {
		evals = []evaluation.Evaluation{}
	}
	api.Success(w, evals, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	eval, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	api.Success(w, eval, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "evaluationID")

	var payload struct {
		EvaluationType *string               `json:"evaluationType"`
		Period         *periodPayload        `json:"period"`
		Categories     []evaluation.Category `json:"categories"`
		Evaluators     []evaluatorPayload    `json:"evaluators"`
		Status         *string               `json:"status"`
		Template       *string               `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	in := evaluation.UpdateInput{
		EvaluationType: payload.EvaluationType,
		Categories:     payload.Categories,
		Status:         payload.Status,
		Template:       payload.Template,
	}
	if payload.Evaluators != nil {
		in.Evaluators = toEvaluators(payload.Evaluators)
	}
	if payload.Period != nil {
		validator := shared.NewValidator()
		start, startOK := validator.Date("period.startDate", payload.Period.StartDate)
		end, endOK := validator.Date("period.endDate", payload.Period.EndDate)
		if startOK && endOK {
			validator.DateOrder("period.startDate", start, "period.endDate", end)
		}
		if validator.Reject(w, requestID) {
			return
		}
		in.Period = &evaluation.Period{StartDate: start, EndDate: end}
	}

	before, _ := h.Service.Get(r.Context(), user, id)
	eval, err := h.Service.Update(r.Context(), user, id, in)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}

	h.record(r, user.UserID, "evaluation.update", eval.ID, before, eval)
	api.Success(w, eval, requestID)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "evaluationID")

	if err := h.Service.Delete(r.Context(), user, id); err != nil {
		failFromError(w, err, requestID)
		return
	}

	h.record(r, user.UserID, "evaluation.delete", id, nil, nil)
	api.Success(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	eval, err := h.Service.Start(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}

	h.record(r, user.UserID, "evaluation.start", eval.ID, nil, map[string]string{"status": eval.Status})
	api.Success(w, eval, requestID)
}

func (h *Handler) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	id := chi.URLParam(r, "evaluationID")

	var payload struct {
		Feedback []evaluation.FeedbackResponse `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	eval, err := h.Service.SubmitFeedback(r.Context(), user, id, payload.Feedback)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}

	h.record(r, user.UserID, "evaluation.feedback", eval.ID, nil, map[string]any{
		"evaluator": user.UserID,
		"status":    eval.Status,
	})
	api.Success(w, eval, requestID)
}

func (h *Handler) handleComplete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	eval, err := h.Service.Complete(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}

	h.record(r, user.UserID, "evaluation.complete", eval.ID, nil, map[string]string{"status": eval.Status})
	api.Success(w, eval, requestID)
}

func (h *Handler) handleScores(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	eval, err := h.Service.Get(r.Context(), user, chi.URLParam(r, "evaluationID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}

	scores := scoring.CategoryScores(&eval)
	overall := scoring.OverallScore(scores)
	api.Success(w, map[string]any{
		"evaluationId": eval.ID,
		"status":       eval.Status,
		"progress":     eval.Progress(),
		"categories":   scores,
		"overall":      overall,
		"band":         scoring.Band(overall),
	}, requestID)
}

func (h *Handler) record(r *http.Request, actorID, action, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), actorID, action, "evaluation", entityID,
		middleware.GetRequestID(r.Context()), r.RemoteAddr, before, after)
	if err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

func toEvaluators(payloads []evaluatorPayload) []evaluation.Evaluator {
	evaluators := make([]evaluation.Evaluator, len(payloads))
	for i, payload := range payloads {
		evaluators[i] = evaluation.Evaluator{
			UserID:       payload.UserID,
			Relationship: payload.Relationship,
		}
	}
	return evaluators
}

func failFromError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, evaluation.ErrValidation):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrInvalidReference):
		api.Fail(w, http.StatusBadRequest, "invalid_reference", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", requestID)
	case errors.Is(err, evaluation.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrAlreadyCompleted):
		api.Fail(w, http.StatusConflict, "already_completed", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrIncomplete):
		api.Fail(w, http.StatusConflict, "incomplete", err.Error(), requestID)
	case errors.Is(err, evaluation.ErrVersionConflict):
		api.Fail(w, http.StatusConflict, "conflict", "concurrent update, retry the request", requestID)
	default:
		slog.Error("evaluation request failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}
