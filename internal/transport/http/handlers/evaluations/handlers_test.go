package evaluationshandler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"perf360/internal/domain/auth"
	"perf360/internal/domain/directory"
	"perf360/internal/domain/evaluation"
	"perf360/internal/platform/cache"
	"perf360/internal/transport/http/middleware"
)

type memStore struct {
	evals  map[string]evaluation.Evaluation
	nextID int
}

func (m *memStore) clone(eval evaluation.Evaluation) evaluation.Evaluation {
	raw, _ := json.Marshal(eval)
	var out evaluation.Evaluation
	_ = json.Unmarshal(raw, &out)
	return out
}

func (m *memStore) Insert(_ context.Context, eval *evaluation.Evaluation) (string, error) {
	m.nextID++
	eval.ID = fmt.Sprintf("eval-%d", m.nextID)
	eval.Version = 1
	m.evals[eval.ID] = m.clone(*eval)
	return eval.ID, nil
}

func (m *memStore) Get(_ context.Context, id string) (evaluation.Evaluation, error) {
	eval, ok := m.evals[id]
	if !ok {
		return evaluation.Evaluation{}, fmt.Errorf("%w: %s", evaluation.ErrNotFound, id)
	}
	return m.clone(eval), nil
}

func (m *memStore) List(_ context.Context, _ evaluation.Filter) ([]evaluation.Evaluation, error) {
	var out []evaluation.Evaluation
	for _, eval := range m.evals {
		out = append(out, m.clone(eval))
	}
	return out, nil
}

func (m *memStore) UpdateVersioned(_ context.Context, eval *evaluation.Evaluation) error {
	stored, ok := m.evals[eval.ID]
	if !ok {
		return fmt.Errorf("%w: %s", evaluation.ErrNotFound, eval.ID)
	}
	if stored.Version != eval.Version {
		return fmt.Errorf("%w: %s", evaluation.ErrVersionConflict, eval.ID)
	}
	eval.Version++
	m.evals[eval.ID] = m.clone(*eval)
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.evals, id)
	return nil
}

func (m *memStore) RecentlyUpdated(context.Context, string, time.Time) ([]evaluation.Evaluation, error) {
	return nil, nil
}

func (m *memStore) CountByStatus(context.Context, string) (map[string]int, error) {
	return map[string]int{}, nil
}

func (m *memStore) CountPendingForEvaluator(context.Context, string) (int, error) {
	return 0, nil
}

type memDirectory struct{}

func (memDirectory) FindEmployeeByID(_ context.Context, id string) (directory.Employee, error) {
	if id != "emp-1" {
		return directory.Employee{}, directory.ErrEmployeeNotFound
	}
	return directory.Employee{ID: "emp-1", UserID: "u-subject"}, nil
}

func (memDirectory) FindEmployeeByUser(_ context.Context, userID string) (directory.Employee, error) {
	if userID != "u-subject" {
		return directory.Employee{}, directory.ErrEmployeeNotFound
	}
	return directory.Employee{ID: "emp-1", UserID: "u-subject"}, nil
}

const testSecret = "handler-test-secret"

func newRouter() (*chi.Mux, *memStore) {
	store := &memStore{evals: map[string]evaluation.Evaluation{}}
	svc := evaluation.NewService(store, memDirectory{}, cache.NewMemory(), nil, time.Minute, time.Minute)
	handler := NewHandler(svc, nil)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Auth(testSecret))
	handler.RegisterRoutes(router)
	return router, store
}

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, auth.Claims{UserID: userID, Role: role}, time.Minute)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(t *testing.T, router http.Handler, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createBody() map[string]any {
	return map[string]any{
		"employeeId":     "emp-1",
		"evaluationType": "360",
		"period": map[string]string{
			"startDate": "2026-01-01",
			"endDate":   "2026-06-30",
		},
		"categories": []map[string]any{
			{"name": "Technical Skills", "weight": 60, "criteria": []map[string]any{
				{"description": "Code quality", "weight": 100},
			}},
			{"name": "Communication", "weight": 40, "criteria": []map[string]any{
				{"description": "Written clarity", "weight": 100},
			}},
		},
		"evaluators": []map[string]string{
			{"userId": "u-peer", "relationship": "peer"},
		},
	}
}

func decodeEvaluation(t *testing.T, rec *httptest.ResponseRecorder) evaluation.Evaluation {
	t.Helper()
	var envelope struct {
		Success bool                  `json:"success"`
		Data    evaluation.Evaluation `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v body=%s", err, rec.Body.String())
	}
	return envelope.Data
}

func TestCreateEvaluationEndpoint(t *testing.T) {
	router, _ := newRouter()
	manager := bearer(t, "u-mgr", auth.RoleManager)

	rec := doJSON(t, router, http.MethodPost, "/evaluations", manager, createBody())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	eval := decodeEvaluation(t, rec)
	if eval.Status != evaluation.StatusDraft {
		t.Fatalf("status = %s", eval.Status)
	}
	if eval.ID == "" {
		t.Fatal("no id assigned")
	}
}

func TestCreateRejectsEmployeeRole(t *testing.T) {
	router, _ := newRouter()
	employee := bearer(t, "u-subject", auth.RoleEmployee)

	rec := doJSON(t, router, http.MethodPost, "/evaluations", employee, createBody())
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestCreateRejectsAnonymous(t *testing.T) {
	router, _ := newRouter()

	rec := doJSON(t, router, http.MethodPost, "/evaluations", "", createBody())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateUnknownEmployeeIs404(t *testing.T) {
	router, _ := newRouter()
	manager := bearer(t, "u-mgr", auth.RoleManager)

	body := createBody()
	body["employeeId"] = "emp-missing"
	rec := doJSON(t, router, http.MethodPost, "/evaluations", manager, body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404, body = %s", rec.Code, rec.Body.String())
	}
}

func TestCreateRejectsBadWeights(t *testing.T) {
	router, _ := newRouter()
	manager := bearer(t, "u-mgr", auth.RoleManager)

	body := createBody()
	body["categories"] = []map[string]any{
		{"name": "Only", "weight": 90, "criteria": []map[string]any{
			{"description": "x", "weight": 100},
		}},
	}
	rec := doJSON(t, router, http.MethodPost, "/evaluations", manager, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body = %s", rec.Code, rec.Body.String())
	}
}

func TestLifecycleOverHTTP(t *testing.T) {
	router, _ := newRouter()
	manager := bearer(t, "u-mgr", auth.RoleManager)
	peer := bearer(t, "u-peer", auth.RoleEmployee)

	created := decodeEvaluation(t, doJSON(t, router, http.MethodPost, "/evaluations", manager, createBody()))

	rec := doJSON(t, router, http.MethodPost, "/evaluations/"+created.ID+"/start", manager, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body = %s", rec.Code, rec.Body.String())
	}
	started := decodeEvaluation(t, rec)
	if started.Status != evaluation.StatusInProgress {
		t.Fatalf("status = %s", started.Status)
	}

	// Starting again is a state conflict.
	rec = doJSON(t, router, http.MethodPost, "/evaluations/"+created.ID+"/start", manager, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second start status = %d, want 409", rec.Code)
	}

	var feedback []map[string]any
	for _, category := range started.Categories {
		for _, criterion := range category.Criteria {
			feedback = append(feedback, map[string]any{
				"categoryId": category.ID,
				"criteriaId": criterion.ID,
				"rating":     5,
			})
		}
	}
	rec = doJSON(t, router, http.MethodPost, "/evaluations/"+created.ID+"/feedback", peer, map[string]any{"feedback": feedback})
	if rec.Code != http.StatusOK {
		t.Fatalf("feedback status = %d, body = %s", rec.Code, rec.Body.String())
	}
	submitted := decodeEvaluation(t, rec)
	if submitted.Status != evaluation.StatusCompleted {
		t.Fatalf("status = %s, want completed with single evaluator done", submitted.Status)
	}

	// Resubmission maps to 409.
	rec = doJSON(t, router, http.MethodPost, "/evaluations/"+created.ID+"/feedback", peer, map[string]any{"feedback": feedback})
	if rec.Code != http.StatusConflict {
		t.Fatalf("resubmit status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/evaluations/"+created.ID+"/scores", manager, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("scores status = %d", rec.Code)
	}
	var scoresEnvelope struct {
		Data struct {
			Overall  float64 `json:"overall"`
			Band     string  `json:"band"`
			Progress float64 `json:"progress"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &scoresEnvelope); err != nil {
		t.Fatalf("decode scores: %v", err)
	}
	if scoresEnvelope.Data.Overall != 5 || scoresEnvelope.Data.Band != "excellent" {
		t.Fatalf("scores = %+v", scoresEnvelope.Data)
	}
	if scoresEnvelope.Data.Progress != 100 {
		t.Fatalf("progress = %v", scoresEnvelope.Data.Progress)
	}
}

func TestGetUnknownEvaluationIs404(t *testing.T) {
	router, _ := newRouter()
	manager := bearer(t, "u-mgr", auth.RoleManager)

	rec := doJSON(t, router, http.MethodGet, "/evaluations/eval-missing", manager, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSubjectCanReadOwnEvaluation(t *testing.T) {
	router, _ := newRouter()
	manager := bearer(t, "u-mgr", auth.RoleManager)
	subject := bearer(t, "u-subject", auth.RoleEmployee)

	created := decodeEvaluation(t, doJSON(t, router, http.MethodPost, "/evaluations", manager, createBody()))

	rec := doJSON(t, router, http.MethodGet, "/evaluations/"+created.ID, subject, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("subject read status = %d", rec.Code)
	}

	outsider := bearer(t, "u-stranger", auth.RoleEmployee)
	rec = doJSON(t, router, http.MethodGet, "/evaluations/"+created.ID, outsider, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("outsider read status = %d, want 403", rec.Code)
	}
}
