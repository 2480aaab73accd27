package dashboard

import (
	"context"
	"fmt"
	"time"

	"perf360/internal/domain/auth"
	"perf360/internal/domain/directory"
	"perf360/internal/domain/evaluation"
	"perf360/internal/domain/scoring"
	"perf360/internal/platform/cache"
)

// trendMonths is the trailing window shown on every dashboard, current
// month included.
const trendMonths = 6

var ErrForbidden = evaluation.ErrForbidden

type DirectoryAPI interface {
	FindEmployeeByUser(ctx context.Context, userID string) (directory.Employee, error)
}

// Summary is one rendered dashboard. All aggregates cover the trailing
// trend window, not all time.
type Summary struct {
	PendingEvaluations int                  `json:"pendingEvaluations"`
	StatusCounts       map[string]int       `json:"statusCounts"`
	Distribution       map[string]int       `json:"distribution"`
	Trend              []scoring.TrendPoint `json:"trend"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

type Service struct {
	evaluations evaluation.StoreAPI
	directory   DirectoryAPI
	cache       cache.Store
	ttl         time.Duration
	now         func() time.Time
}

func NewService(evaluations evaluation.StoreAPI, dir DirectoryAPI, cacheStore cache.Store, ttl time.Duration) *Service {
	return &Service{
		evaluations: evaluations,
		directory:   dir,
		cache:       cacheStore,
		ttl:         ttl,
		now:         time.Now,
	}
}

// UserSummary builds the dashboard for one user: their pending evaluator
// assignments plus aggregates over evaluations where they are the subject.
// Users without an employee record get assignment counts only.
func (s *Service) UserSummary(ctx context.Context, actor auth.UserContext) (Summary, error) {
	if !auth.Allowed(auth.OpDashboardRead, actor.Role) {
		return Summary{}, fmt.Errorf("%w: dashboard", ErrForbidden)
	}

	key := cache.Key(cache.PrefixDashboard, actor.UserID)
	var summary Summary
	if s.cache.GetJSON(ctx, key, &summary) {
		return summary, nil
	}

	employeeID := ""
	if employee, err := s.directory.FindEmployeeByUser(ctx, actor.UserID); err == nil {
		employeeID = employee.ID
	}

	summary, err := s.build(ctx, actor.UserID, employeeID, false)
	if err != nil {
		return Summary{}, err
	}
	s.cache.SetJSON(ctx, key, summary, s.ttl)
	return summary, nil
}

// OrgSummary aggregates over every evaluation in the organization.
func (s *Service) OrgSummary(ctx context.Context, actor auth.UserContext) (Summary, error) {
	if !auth.Allowed(auth.OpDashboardReadOrg, actor.Role) {
		return Summary{}, fmt.Errorf("%w: org dashboard", ErrForbidden)
	}

	key := cache.Key(cache.PrefixDashboard, "org")
	var summary Summary
	if s.cache.GetJSON(ctx, key, &summary) {
		return summary, nil
	}

	summary, err := s.build(ctx, "", "", true)
	if err != nil {
		return Summary{}, err
	}
	s.cache.SetJSON(ctx, key, summary, s.ttl)
	return summary, nil
}

func (s *Service) build(ctx context.Context, userID, employeeID string, orgWide bool) (Summary, error) {
	now := s.now().UTC()
	summary := Summary{
		GeneratedAt:  now,
		StatusCounts: map[string]int{},
		Distribution: map[string]int{},
	}

	if userID != "" {
		pending, err := s.evaluations.CountPendingForEvaluator(ctx, userID)
		if err != nil {
			return Summary{}, err
		}
		summary.PendingEvaluations = pending
	}

	// Without an employee record there is no subject scope to aggregate;
	// an empty employee filter would sweep the whole organization.
	if !orgWide && employeeID == "" {
		summary.Distribution = scoring.Distribution(nil)
		summary.Trend = scoring.MonthlyTrend(nil, now, trendMonths)
		return summary, nil
	}

	counts, err := s.evaluations.CountByStatus(ctx, employeeID)
	if err != nil {
		return Summary{}, err
	}
	summary.StatusCounts = counts

	// windowStart is the first day of the oldest trend month. Anything
	// updated since then is a superset of the ratings in the window; the
	// trend bucketing drops the rest by completion month.
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)
	recent, err := s.evaluations.RecentlyUpdated(ctx, employeeID, windowStart)
	if err != nil {
		return Summary{}, err
	}

	ratings := scoring.CollectRatings(recent)
	summary.Distribution = scoring.Distribution(ratings)
	summary.Trend = scoring.MonthlyTrend(ratings, now, trendMonths)
	return summary, nil
}
