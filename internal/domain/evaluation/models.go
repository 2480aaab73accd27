package evaluation

import "time"

type Period struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

type Criterion struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
}

type Category struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Weight   int         `json:"weight"`
	Criteria []Criterion `json:"criteria"`
}

type FeedbackResponse struct {
	CategoryID string `json:"categoryId"`
	CriteriaID string `json:"criteriaId"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment,omitempty"`
}

type Evaluator struct {
	UserID       string             `json:"userId"`
	Relationship string             `json:"relationship"`
	Status       string             `json:"status"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty"`
	Feedback     []FeedbackResponse `json:"feedback,omitempty"`
}

type Metadata struct {
	CreatedBy      string `json:"createdBy"`
	LastModifiedBy string `json:"lastModifiedBy"`
	Template       string `json:"template,omitempty"`
}

// Evaluation is one scored-review cycle for one employee. The record owns
// its embedded rubric and evaluator entries outright; employees and users
// are referenced by id only.
type Evaluation struct {
	ID             string      `json:"id"`
	EmployeeID     string      `json:"employeeId"`
	EvaluationType string      `json:"evaluationType"`
	Period         Period      `json:"period"`
	Status         string      `json:"status"`
	Categories     []Category  `json:"categories"`
	Evaluators     []Evaluator `json:"evaluators"`
	Metadata       Metadata    `json:"metadata"`
	Version        int         `json:"version"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// FindEvaluator returns a pointer into Evaluators so callers can mutate the
// entry in place before saving.
func (e *Evaluation) FindEvaluator(userID string) *Evaluator {
	for i := range e.Evaluators {
		if e.Evaluators[i].UserID == userID {
			return &e.Evaluators[i]
		}
	}
	return nil
}

func (e *Evaluation) HasEvaluator(userID string) bool {
	return e.FindEvaluator(userID) != nil
}

func (e *Evaluation) AllEvaluatorsCompleted() bool {
	if len(e.Evaluators) == 0 {
		return false
	}
	for _, evaluator := range e.Evaluators {
		if evaluator.Status != EvaluatorStatusCompleted {
			return false
		}
	}
	return true
}

// Progress reports percent of evaluators that have completed, 0..100.
func (e *Evaluation) Progress() float64 {
	if len(e.Evaluators) == 0 {
		return 0
	}
	completed := 0
	for _, evaluator := range e.Evaluators {
		if evaluator.Status == EvaluatorStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(e.Evaluators)) * 100
}

// HasCriterion reports whether the rubric currently contains the given
// category/criterion pair.
func (e *Evaluation) HasCriterion(categoryID, criteriaID string) bool {
	for _, category := range e.Categories {
		if category.ID != categoryID {
			continue
		}
		for _, criterion := range category.Criteria {
			if criterion.ID == criteriaID {
				return true
			}
		}
	}
	return false
}
