package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"perf360/internal/domain/auth"
	"perf360/internal/domain/directory"
	"perf360/internal/platform/cache"
)

// maxSubmitAttempts bounds the optimistic-lock retry loop for feedback
// submission. Conflicts past the last attempt surface to the caller.
const maxSubmitAttempts = 3

// DirectoryAPI is the slice of the directory service the evaluation domain
// needs: resolving subjects and mapping actors to their employee records.
type DirectoryAPI interface {
	FindEmployeeByID(ctx context.Context, employeeID string) (directory.Employee, error)
	FindEmployeeByUser(ctx context.Context, userID string) (directory.Employee, error)
}

// Notifier receives lifecycle events. Implementations must not block the
// calling request path on delivery.
type Notifier interface {
	EvaluationAssigned(ctx context.Context, userID, evaluationID string)
	EvaluationSubmitted(ctx context.Context, userID, evaluationID string)
	EvaluationCompleted(ctx context.Context, userID, evaluationID string)
}

type Service struct {
	store     StoreAPI
	directory DirectoryAPI
	cache     cache.Store
	notifier  Notifier
	listTTL   time.Duration
	entityTTL time.Duration
	now       func() time.Time
}

func NewService(store StoreAPI, dir DirectoryAPI, cacheStore cache.Store, notifier Notifier, listTTL, entityTTL time.Duration) *Service {
	return &Service{
		store:     store,
		directory: dir,
		cache:     cacheStore,
		notifier:  notifier,
		listTTL:   listTTL,
		entityTTL: entityTTL,
		now:       time.Now,
	}
}

type CreateInput struct {
	EmployeeID     string
	EvaluationType string
	Period         Period
	Categories     []Category
	Evaluators     []Evaluator
	Template       string
}

type UpdateInput struct {
	EvaluationType *string
	Period         *Period
	Categories     []Category
	Evaluators     []Evaluator
	Status         *string
	Template       *string
}

func (s *Service) Create(ctx context.Context, actor auth.UserContext, in CreateInput) (Evaluation, error) {
	if !auth.Allowed(auth.OpEvaluationCreate, actor.Role) {
		return Evaluation{}, fmt.Errorf("%w: role %s may not create evaluations", ErrForbidden, actor.Role)
	}
	if !ValidType(in.EvaluationType) {
		return Evaluation{}, fmt.Errorf("%w: unknown evaluation type %q", ErrValidation, in.EvaluationType)
	}
	if err := validatePeriod(in.Period); err != nil {
		return Evaluation{}, err
	}
	if err := ValidateRubric(in.Categories); err != nil {
		return Evaluation{}, err
	}
	if err := validateEvaluators(in.Evaluators); err != nil {
		return Evaluation{}, err
	}
	if _, err := s.directory.FindEmployeeByID(ctx, in.EmployeeID); err != nil {
		if errors.Is(err, directory.ErrEmployeeNotFound) {
			return Evaluation{}, fmt.Errorf("%w: employee %s", ErrNotFound, in.EmployeeID)
		}
		return Evaluation{}, err
	}

	AssignRubricIDs(in.Categories)
	evaluators := make([]Evaluator, len(in.Evaluators))
	for i, evaluator := range in.Evaluators {
		evaluators[i] = Evaluator{
			UserID:       evaluator.UserID,
			Relationship: evaluator.Relationship,
			Status:       EvaluatorStatusPending,
		}
	}

	eval := Evaluation{
		EmployeeID:     in.EmployeeID,
		EvaluationType: in.EvaluationType,
		Period:         in.Period,
		Status:         StatusDraft,
		Categories:     in.Categories,
		Evaluators:     evaluators,
		Metadata: Metadata{
			CreatedBy:      actor.UserID,
			LastModifiedBy: actor.UserID,
			Template:       in.Template,
		},
	}
	if _, err := s.store.Insert(ctx, &eval); err != nil {
		return Evaluation{}, err
	}
	s.invalidate(ctx, eval.ID)
	return eval, nil
}

func (s *Service) Get(ctx context.Context, actor auth.UserContext, id string) (Evaluation, error) {
	var eval Evaluation
	key := cache.Key(cache.PrefixEvaluation, id)
	if !s.cache.GetJSON(ctx, key, &eval) {
		loaded, err := s.store.Get(ctx, id)
		if err != nil {
			return Evaluation{}, err
		}
		eval = loaded
		// Only settled records are entity-cached; active ones change too
		// often to be worth the invalidation traffic.
		if eval.Status == StatusCompleted {
			s.cache.SetJSON(ctx, key, eval, s.entityTTL)
		}
	}

	if !auth.Allowed(auth.OpEvaluationRead, actor.Role, s.relationships(ctx, actor, &eval)...) {
		return Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrForbidden, id)
	}
	return eval, nil
}

func (s *Service) List(ctx context.Context, actor auth.UserContext, filter Filter) ([]Evaluation, error) {
	if actor.Role == auth.RoleEmployee {
		visibility := Visibility{UserID: actor.UserID}
		if employee, err := s.directory.FindEmployeeByUser(ctx, actor.UserID); err == nil {
			visibility.EmployeeID = employee.ID
		}
		filter.VisibleTo = &visibility
	}

	key := cache.ListKey(cache.PrefixEvaluation, filter.CacheFields())
	var evals []Evaluation
	if s.cache.GetJSON(ctx, key, &evals) {
		return evals, nil
	}
	evals, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.cache.SetJSON(ctx, key, evals, s.listTTL)
	return evals, nil
}

func (s *Service) Update(ctx context.Context, actor auth.UserContext, id string, in UpdateInput) (Evaluation, error) {
	eval, err := s.store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if !auth.Allowed(auth.OpEvaluationUpdate, actor.Role, s.relationships(ctx, actor, &eval)...) {
		return Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrForbidden, id)
	}
	if actor.Role != auth.RoleAdmin && eval.Status != StatusDraft {
		return Evaluation{}, fmt.Errorf("%w: only draft evaluations can be edited", ErrInvalidState)
	}

	if in.EvaluationType != nil {
		if !ValidType(*in.EvaluationType) {
			return Evaluation{}, fmt.Errorf("%w: unknown evaluation type %q", ErrValidation, *in.EvaluationType)
		}
		eval.EvaluationType = *in.EvaluationType
	}
	if in.Period != nil {
		if err := validatePeriod(*in.Period); err != nil {
			return Evaluation{}, err
		}
		eval.Period = *in.Period
	}
	if in.Categories != nil {
		if err := ValidateRubric(in.Categories); err != nil {
			return Evaluation{}, err
		}
		AssignRubricIDs(in.Categories)
		eval.Categories = in.Categories
	}
	if in.Evaluators != nil {
		if err := validateEvaluators(in.Evaluators); err != nil {
			return Evaluation{}, err
		}
		replaced := make([]Evaluator, len(in.Evaluators))
		for i, evaluator := range in.Evaluators {
			replaced[i] = Evaluator{
				UserID:       evaluator.UserID,
				Relationship: evaluator.Relationship,
				Status:       EvaluatorStatusPending,
			}
			// Carry over submitted feedback for evaluators that survive
			// the replacement so an edit cannot silently discard it.
			if existing := eval.FindEvaluator(evaluator.UserID); existing != nil && existing.Status == EvaluatorStatusCompleted {
				replaced[i].Status = existing.Status
				replaced[i].CompletedAt = existing.CompletedAt
				replaced[i].Feedback = existing.Feedback
			}
		}
		eval.Evaluators = replaced
	}
	if in.Status != nil {
		if actor.Role != auth.RoleAdmin {
			return Evaluation{}, fmt.Errorf("%w: only admins may set status directly", ErrForbidden)
		}
		if !ValidStatus(*in.Status) {
			return Evaluation{}, fmt.Errorf("%w: unknown status %q", ErrValidation, *in.Status)
		}
		eval.Status = *in.Status
	}
	if in.Template != nil {
		eval.Metadata.Template = *in.Template
	}

	eval.Metadata.LastModifiedBy = actor.UserID
	if err := s.store.UpdateVersioned(ctx, &eval); err != nil {
		return Evaluation{}, err
	}
	s.invalidate(ctx, id)
	return eval, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.UserContext, id string) error {
	eval, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !auth.Allowed(auth.OpEvaluationDelete, actor.Role, s.relationships(ctx, actor, &eval)...) {
		return fmt.Errorf("%w: evaluation %s", ErrForbidden, id)
	}
	if actor.Role != auth.RoleAdmin && eval.Status != StatusDraft {
		return fmt.Errorf("%w: only draft evaluations can be deleted", ErrInvalidState)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Start moves a draft into active feedback collection and notifies every
// assigned evaluator.
func (s *Service) Start(ctx context.Context, actor auth.UserContext, id string) (Evaluation, error) {
	eval, err := s.store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if !auth.Allowed(auth.OpEvaluationStart, actor.Role, s.relationships(ctx, actor, &eval)...) {
		return Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrForbidden, id)
	}
	if eval.Status != StatusDraft {
		return Evaluation{}, fmt.Errorf("%w: cannot start from %s", ErrInvalidState, eval.Status)
	}

	eval.Status = StatusInProgress
	eval.Metadata.LastModifiedBy = actor.UserID
	if err := s.store.UpdateVersioned(ctx, &eval); err != nil {
		return Evaluation{}, err
	}
	s.invalidate(ctx, id)
	if s.notifier != nil {
		for _, evaluator := range eval.Evaluators {
			s.notifier.EvaluationAssigned(ctx, evaluator.UserID, eval.ID)
		}
	}
	return eval, nil
}

// SubmitFeedback records one evaluator's complete response set. The write is
// guarded by the record version: a conflicting concurrent submission causes
// a reload and re-apply rather than a lost update, and the transition to
// completed when the last evaluator submits happens in the same write.
func (s *Service) SubmitFeedback(ctx context.Context, actor auth.UserContext, id string, responses []FeedbackResponse) (Evaluation, error) {
	var lastErr error
	for attempt := 0; attempt < maxSubmitAttempts; attempt++ {
		eval, err := s.store.Get(ctx, id)
		if err != nil {
			return Evaluation{}, err
		}

		entry := eval.FindEvaluator(actor.UserID)
		if entry == nil {
			return Evaluation{}, fmt.Errorf("%w: no evaluator entry for user %s on evaluation %s", ErrNotFound, actor.UserID, id)
		}
		if !auth.Allowed(auth.OpEvaluationSubmit, actor.Role, auth.RelEvaluator) {
			return Evaluation{}, fmt.Errorf("%w: role %s may not submit feedback", ErrForbidden, actor.Role)
		}
		if eval.Status != StatusInProgress {
			return Evaluation{}, fmt.Errorf("%w: evaluation is %s, feedback requires in_progress", ErrInvalidState, eval.Status)
		}
		if entry.Status == EvaluatorStatusCompleted {
			return Evaluation{}, fmt.Errorf("%w: evaluator %s", ErrAlreadyCompleted, actor.UserID)
		}
		if err := validateResponses(&eval, responses); err != nil {
			return Evaluation{}, err
		}

		submittedAt := s.now().UTC()
		entry.Feedback = responses
		entry.Status = EvaluatorStatusCompleted
		entry.CompletedAt = &submittedAt
		eval.Metadata.LastModifiedBy = actor.UserID

		allDone := eval.AllEvaluatorsCompleted()
		if allDone {
			eval.Status = StatusCompleted
		}

		if err := s.store.UpdateVersioned(ctx, &eval); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				lastErr = err
				continue
			}
			return Evaluation{}, err
		}

		s.invalidate(ctx, id)
		s.notifySubmission(ctx, &eval, actor.UserID, allDone)
		return eval, nil
	}
	return Evaluation{}, lastErr
}

// Complete finalizes an evaluation once every evaluator has submitted.
func (s *Service) Complete(ctx context.Context, actor auth.UserContext, id string) (Evaluation, error) {
	eval, err := s.store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}
	if !auth.Allowed(auth.OpEvaluationComplete, actor.Role, s.relationships(ctx, actor, &eval)...) {
		return Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrForbidden, id)
	}
	if eval.Status != StatusInProgress && eval.Status != StatusPendingReview {
		return Evaluation{}, fmt.Errorf("%w: cannot complete from %s", ErrInvalidState, eval.Status)
	}
	if !eval.AllEvaluatorsCompleted() {
		return Evaluation{}, fmt.Errorf("%w: evaluation %s", ErrIncomplete, id)
	}

	eval.Status = StatusCompleted
	eval.Metadata.LastModifiedBy = actor.UserID
	if err := s.store.UpdateVersioned(ctx, &eval); err != nil {
		return Evaluation{}, err
	}
	s.invalidate(ctx, id)
	s.notifyCompleted(ctx, &eval)
	return eval, nil
}

// relationships resolves the actor's standing toward the evaluation. The
// subject lookup hits the directory only when creator and evaluator standing
// are both absent, since those cover most requests.
func (s *Service) relationships(ctx context.Context, actor auth.UserContext, eval *Evaluation) []auth.Relationship {
	var held []auth.Relationship
	if eval.Metadata.CreatedBy == actor.UserID {
		held = append(held, auth.RelCreator)
	}
	if eval.HasEvaluator(actor.UserID) {
		held = append(held, auth.RelEvaluator)
	}
	if len(held) == 0 || actor.Role == auth.RoleEmployee {
		if employee, err := s.directory.FindEmployeeByUser(ctx, actor.UserID); err == nil && employee.ID == eval.EmployeeID {
			held = append(held, auth.RelSubject)
		}
	}
	return held
}

func (s *Service) invalidate(ctx context.Context, id string) {
	s.cache.Delete(ctx, cache.Key(cache.PrefixEvaluation, id))
	s.cache.DeletePrefix(ctx, cache.ListPrefix(cache.PrefixEvaluation))
	s.cache.DeletePrefix(ctx, cache.PrefixDashboard+":")
}

func (s *Service) notifySubmission(ctx context.Context, eval *Evaluation, evaluatorUserID string, completed bool) {
	if s.notifier == nil {
		return
	}
	if eval.Metadata.CreatedBy != "" && eval.Metadata.CreatedBy != evaluatorUserID {
		s.notifier.EvaluationSubmitted(ctx, eval.Metadata.CreatedBy, eval.ID)
	}
	if completed {
		s.notifyCompleted(ctx, eval)
	}
}

func (s *Service) notifyCompleted(ctx context.Context, eval *Evaluation) {
	if s.notifier == nil {
		return
	}
	if eval.Metadata.CreatedBy != "" {
		s.notifier.EvaluationCompleted(ctx, eval.Metadata.CreatedBy, eval.ID)
	}
	if employee, err := s.directory.FindEmployeeByID(ctx, eval.EmployeeID); err == nil && employee.UserID != "" {
		s.notifier.EvaluationCompleted(ctx, employee.UserID, eval.ID)
	}
}

func validatePeriod(period Period) error {
	if period.StartDate.IsZero() || period.EndDate.IsZero() {
		return fmt.Errorf("%w: period start and end dates are required", ErrValidation)
	}
	if !period.StartDate.Before(period.EndDate) {
		return fmt.Errorf("%w: period start must be before end", ErrValidation)
	}
	return nil
}

func validateEvaluators(evaluators []Evaluator) error {
	if len(evaluators) == 0 {
		return fmt.Errorf("%w: at least one evaluator is required", ErrValidation)
	}
	seen := map[string]bool{}
	for _, evaluator := range evaluators {
		if evaluator.UserID == "" {
			return fmt.Errorf("%w: evaluator userId is required", ErrValidation)
		}
		if seen[evaluator.UserID] {
			return fmt.Errorf("%w: duplicate evaluator %s", ErrValidation, evaluator.UserID)
		}
		seen[evaluator.UserID] = true
		if !ValidRelationship(evaluator.Relationship) {
			return fmt.Errorf("%w: unknown relationship %q for evaluator %s", ErrValidation, evaluator.Relationship, evaluator.UserID)
		}
	}
	return nil
}

func validateResponses(eval *Evaluation, responses []FeedbackResponse) error {
	if len(responses) == 0 {
		return fmt.Errorf("%w: feedback must contain at least one response", ErrValidation)
	}
	seen := map[string]bool{}
	for _, response := range responses {
		if response.Rating < RatingMin || response.Rating > RatingMax {
			return fmt.Errorf("%w: rating %d outside %d..%d", ErrValidation, response.Rating, RatingMin, RatingMax)
		}
		if !eval.HasCriterion(response.CategoryID, response.CriteriaID) {
			return fmt.Errorf("%w: category %s criterion %s", ErrInvalidReference, response.CategoryID, response.CriteriaID)
		}
		pair := response.CategoryID + "/" + response.CriteriaID
		if seen[pair] {
			return fmt.Errorf("%w: duplicate response for criterion %s", ErrValidation, response.CriteriaID)
		}
		seen[pair] = true
	}
	return nil
}
