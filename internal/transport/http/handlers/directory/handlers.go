package directoryhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"perf360/internal/domain/auth"
	"perf360/internal/domain/directory"
	"perf360/internal/transport/http/api"
	"perf360/internal/transport/http/middleware"
	"perf360/internal/transport/http/shared"
)

type Handler struct {
	Service *directory.Service
}

func NewHandler(service *directory.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.With(middleware.RequireOperation(auth.OpDirectoryRead)).Get("/", h.handleList)
		r.With(middleware.RequireOperation(auth.OpDirectoryWrite)).Post("/", h.handleCreate)
		r.With(middleware.RequireOperation(auth.OpDirectoryRead)).Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireOperation(auth.OpDirectoryWrite)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireOperation(auth.OpDirectoryRead)).Get("/{employeeID}/reports", h.handleDirectReports)
		r.With(middleware.RequireOperation(auth.OpDirectoryRead)).Get("/{employeeID}/chain", h.handleReportingChain)
	})
}

type employeePayload struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Title     string `json:"title"`
	ManagerID string `json:"managerId"`
	Status    string `json:"status"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	pagination := shared.ParsePagination(r, 50, 200)

	employees, err := h.Service.List(r.Context(), r.URL.Query().Get("status"), pagination.Limit, pagination.Offset)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	if employees == nil {
		employees = []directory.Employee{}
	}
	api.Success(w, employees, requestID)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	validator := shared.NewValidator()
	validator.Required("firstName", payload.FirstName, "first name is required")
	validator.Required("lastName", payload.LastName, "last name is required")
	validator.Required("email", payload.Email, "email is required")
	validator.Enum("status", payload.Status,
		[]string{directory.EmployeeStatusActive, directory.EmployeeStatusInactive}, "unknown status")
	if validator.Reject(w, requestID) {
		return
	}

	employee := directory.Employee{
		UserID:    payload.UserID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Title:     payload.Title,
		ManagerID: payload.ManagerID,
		Status:    payload.Status,
	}
	id, err := h.Service.Create(r.Context(), employee)
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	employee.ID = id
	api.Created(w, employee, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	employee, err := h.Service.FindEmployeeByID(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	var payload employeePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	employee := directory.Employee{
		ID:        chi.URLParam(r, "employeeID"),
		UserID:    payload.UserID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Title:     payload.Title,
		ManagerID: payload.ManagerID,
		Status:    payload.Status,
	}
	if err := h.Service.Update(r.Context(), employee); err != nil {
		failFromError(w, err, requestID)
		return
	}
	api.Success(w, employee, requestID)
}

func (h *Handler) handleDirectReports(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	reports, err := h.Service.DirectReports(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	if reports == nil {
		reports = []directory.Employee{}
	}
	api.Success(w, reports, requestID)
}

func (h *Handler) handleReportingChain(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	chain, err := h.Service.ReportingChain(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		failFromError(w, err, requestID)
		return
	}
	if chain == nil {
		chain = []directory.Employee{}
	}
	api.Success(w, chain, requestID)
}

func failFromError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, directory.ErrEmployeeNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
		return
	}
	if errors.Is(err, directory.ErrSelfManagement) {
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
		return
	}
	slog.Error("directory request failed", "err", err)
	api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
}
