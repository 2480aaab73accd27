package notifications

import "time"

const (
	KindEvaluationAssigned  = "evaluation_assigned"
	KindEvaluationSubmitted = "evaluation_submitted"
	KindEvaluationCompleted = "evaluation_completed"
	KindPasswordReset       = "password_reset"
)

type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Kind      string     `json:"kind"`
	Message   string     `json:"message"`
	RefID     string     `json:"refId,omitempty"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
