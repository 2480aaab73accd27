package evaluation

import "errors"

// Every error returned from the service wraps one of these sentinels so the
// HTTP layer can map them to status codes with errors.Is. None of them are
// retried internally; they describe caller-correctable conditions.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidState     = errors.New("invalid lifecycle transition")
	ErrAlreadyCompleted = errors.New("evaluator already submitted feedback")
	ErrInvalidReference = errors.New("feedback references unknown rubric entry")
	ErrIncomplete       = errors.New("not all evaluators have completed")
	ErrVersionConflict  = errors.New("concurrent update conflict")
)
