package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const evaluationColumns = "id, employee_id, evaluation_type, status, period_start, period_end, categories, evaluators, metadata, version, created_at, updated_at"

func (s *Store) Insert(ctx context.Context, eval *Evaluation) (string, error) {
	categories, evaluators, metadata, err := marshalDocument(eval)
	if err != nil {
		return "", err
	}

	var id string
	err = s.DB.QueryRow(ctx, `
    INSERT INTO evaluations (employee_id, evaluation_type, status, period_start, period_end, categories, evaluators, metadata, version)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
    RETURNING id
  `, eval.EmployeeID, eval.EvaluationType, eval.Status, eval.Period.StartDate, eval.Period.EndDate, categories, evaluators, metadata).Scan(&id)
	if err != nil {
		return "", err
	}
	eval.ID = id
	eval.Version = 1
	return id, nil
}

func (s *Store) Get(ctx context.Context, id string) (Evaluation, error) {
	row := s.DB.QueryRow(ctx, "SELECT "+evaluationColumns+" FROM evaluations WHERE id = $1", id)
	eval, err := scanEvaluation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrNotFound, id)
	}
	return eval, err
}

func (s *Store) List(ctx context.Context, filter Filter) ([]Evaluation, error) {
	query := "SELECT " + evaluationColumns + " FROM evaluations WHERE 1=1"
	args := []any{}

	addArg := func(clause string, value any) {
		args = append(args, value)
		query += fmt.Sprintf(clause, len(args))
	}

	if filter.Status != "" {
		addArg(" AND status = $%d", filter.Status)
	}
	if filter.EmployeeID != "" {
		addArg(" AND employee_id = $%d", filter.EmployeeID)
	}
	if filter.CreatedBy != "" {
		addArg(" AND metadata->>'createdBy' = $%d", filter.CreatedBy)
	}
	if filter.EvaluatorUserID != "" {
		addArg(" AND evaluators @> $%d", evaluatorMatch(filter.EvaluatorUserID, ""))
	}
	if filter.VisibleTo != nil {
		args = append(args, filter.VisibleTo.EmployeeID, evaluatorMatch(filter.VisibleTo.UserID, ""))
		query += fmt.Sprintf(" AND (employee_id = $%d OR evaluators @> $%d)", len(args)-1, len(args))
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}

func (s *Store) UpdateVersioned(ctx context.Context, eval *Evaluation) error {
	categories, evaluators, metadata, err := marshalDocument(eval)
	if err != nil {
		return err
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE evaluations
    SET employee_id = $1, evaluation_type = $2, status = $3, period_start = $4, period_end = $5,
        categories = $6, evaluators = $7, metadata = $8, version = version + 1, updated_at = now()
    WHERE id = $9 AND version = $10
  `, eval.EmployeeID, eval.EvaluationType, eval.Status, eval.Period.StartDate, eval.Period.EndDate,
		categories, evaluators, metadata, eval.ID, eval.Version)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists int
		if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM evaluations WHERE id = $1", eval.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%w: evaluation %s", ErrNotFound, eval.ID)
		}
		return fmt.Errorf("%w: evaluation %s version %d", ErrVersionConflict, eval.ID, eval.Version)
	}
	eval.Version++
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM evaluations WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: evaluation %s", ErrNotFound, id)
	}
	return nil
}

func (s *Store) RecentlyUpdated(ctx context.Context, employeeID string, since time.Time) ([]Evaluation, error) {
	query := "SELECT " + evaluationColumns + " FROM evaluations WHERE updated_at >= $1"
	args := []any{since}
	if employeeID != "" {
		args = append(args, employeeID)
		query += fmt.Sprintf(" AND employee_id = $%d", len(args))
	}
	query += " ORDER BY updated_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var evals []Evaluation
	for rows.Next() {
		eval, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		evals = append(evals, eval)
	}
	return evals, rows.Err()
}

func (s *Store) CountByStatus(ctx context.Context, employeeID string) (map[string]int, error) {
	query := "SELECT status, COUNT(1) FROM evaluations"
	args := []any{}
	if employeeID != "" {
		query += " WHERE employee_id = $1"
		args = append(args, employeeID)
	}
	query += " GROUP BY status"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (s *Store) CountPendingForEvaluator(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM evaluations
    WHERE status = $1 AND evaluators @> $2
  `, StatusInProgress, evaluatorMatch(userID, EvaluatorStatusPending)).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// evaluatorMatch builds a jsonb containment document matching one element of
// the evaluators array.
func evaluatorMatch(userID, status string) string {
	entry := map[string]string{"userId": userID}
	if status != "" {
		entry["status"] = status
	}
	raw, _ := json.Marshal([]map[string]string{entry})
	return string(raw)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(row rowScanner) (Evaluation, error) {
	var eval Evaluation
	var categories, evaluators, metadata []byte
	err := row.Scan(&eval.ID, &eval.EmployeeID, &eval.EvaluationType, &eval.Status,
		&eval.Period.StartDate, &eval.Period.EndDate, &categories, &evaluators, &metadata,
		&eval.Version, &eval.CreatedAt, &eval.UpdatedAt)
	if err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal(categories, &eval.Categories); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal(evaluators, &eval.Evaluators); err != nil {
		return Evaluation{}, err
	}
	if err := json.Unmarshal(metadata, &eval.Metadata); err != nil {
		return Evaluation{}, err
	}
	return eval, nil
}

func marshalDocument(eval *Evaluation) (categories, evaluators, metadata []byte, err error) {
	if categories, err = json.Marshal(eval.Categories); err != nil {
		return nil, nil, nil, err
	}
	if evaluators, err = json.Marshal(eval.Evaluators); err != nil {
		return nil, nil, nil, err
	}
	if metadata, err = json.Marshal(eval.Metadata); err != nil {
		return nil, nil, nil, err
	}
	return categories, evaluators, metadata, nil
}
