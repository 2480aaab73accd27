package evaluation

import (
	"context"
	"strconv"
	"time"
)

// Visibility restricts a list to evaluations the given user may see as
// subject or assigned evaluator.
type Visibility struct {
	UserID     string
	EmployeeID string
}

type Filter struct {
	Status          string
	EmployeeID      string
	EvaluatorUserID string
	CreatedBy       string
	VisibleTo       *Visibility
	Limit           int
	Offset          int
}

// CacheFields serializes the filter for list-cache key generation.
func (f Filter) CacheFields() map[string]string {
	fields := map[string]string{
		"status":    f.Status,
		"employee":  f.EmployeeID,
		"evaluator": f.EvaluatorUserID,
		"createdBy": f.CreatedBy,
	}
	if f.VisibleTo != nil {
		fields["visibleUser"] = f.VisibleTo.UserID
		fields["visibleEmployee"] = f.VisibleTo.EmployeeID
	}
	if f.Limit > 0 {
		fields["limit"] = strconv.Itoa(f.Limit)
		fields["offset"] = strconv.Itoa(f.Offset)
	}
	return fields
}

type StoreAPI interface {
	Insert(ctx context.Context, eval *Evaluation) (string, error)
	Get(ctx context.Context, id string) (Evaluation, error)
	List(ctx context.Context, filter Filter) ([]Evaluation, error)
	// UpdateVersioned persists the document only if the stored version still
	// matches eval.Version, then bumps it. Returns ErrVersionConflict when a
	// concurrent writer got there first.
	UpdateVersioned(ctx context.Context, eval *Evaluation) error
	Delete(ctx context.Context, id string) error
	// RecentlyUpdated returns evaluations touched at or after since,
	// optionally restricted to one employee. Feeds the trend and
	// distribution aggregations.
	RecentlyUpdated(ctx context.Context, employeeID string, since time.Time) ([]Evaluation, error)
	CountByStatus(ctx context.Context, employeeID string) (map[string]int, error)
	CountPendingForEvaluator(ctx context.Context, userID string) (int, error)
}
