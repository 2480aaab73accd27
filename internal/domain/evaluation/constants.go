package evaluation

const (
	StatusDraft         = "draft"
	StatusInProgress    = "in_progress"
	StatusPendingReview = "pending_review"
	StatusCompleted     = "completed"

	EvaluatorStatusPending   = "pending"
	EvaluatorStatusCompleted = "completed"

	TypeSelf    = "self"
	TypePeer    = "peer"
	TypeManager = "manager"
	Type360     = "360"

	RelationshipSelf        = "self"
	RelationshipPeer        = "peer"
	RelationshipManager     = "manager"
	RelationshipSubordinate = "subordinate"

	RatingMin = 1
	RatingMax = 5

	// Category weights must sum to exactly this value.
	WeightTotal = 100
)

func ValidType(evaluationType string) bool {
	switch evaluationType {
	case TypeSelf, TypePeer, TypeManager, Type360:
		return true
	}
	return false
}

func ValidRelationship(relationship string) bool {
	switch relationship {
	case RelationshipSelf, RelationshipPeer, RelationshipManager, RelationshipSubordinate:
		return true
	}
	return false
}

func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusInProgress, StatusPendingReview, StatusCompleted:
		return true
	}
	return false
}
