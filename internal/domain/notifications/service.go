package notifications

import (
	"context"
	"log/slog"
)

// Mailer sends the email copy of a notification. The in-app record is the
// source of truth; mail failures are logged and swallowed.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// AddressLookup resolves a user id to an email address for the mail copy.
type AddressLookup interface {
	EmailForUser(ctx context.Context, userID string) (string, error)
}

type Service struct {
	store     StoreAPI
	mailer    Mailer
	addresses AddressLookup
}

func NewService(store StoreAPI, mailer Mailer, addresses AddressLookup) *Service {
	return &Service{store: store, mailer: mailer, addresses: addresses}
}

func (s *Service) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]Notification, error) {
	return s.store.ListForUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.store.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.store.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.store.MarkAllRead(ctx, userID)
}

// EvaluationAssigned, EvaluationSubmitted and EvaluationCompleted satisfy
// the evaluation service's notifier. Delivery failures never propagate into
// the lifecycle operation that triggered them.

func (s *Service) EvaluationAssigned(ctx context.Context, userID, evaluationID string) {
	s.record(ctx, userID, KindEvaluationAssigned,
		"You have been assigned as an evaluator on a performance evaluation.", evaluationID)
}

func (s *Service) EvaluationSubmitted(ctx context.Context, userID, evaluationID string) {
	s.record(ctx, userID, KindEvaluationSubmitted,
		"An evaluator has submitted feedback on an evaluation you created.", evaluationID)
}

func (s *Service) EvaluationCompleted(ctx context.Context, userID, evaluationID string) {
	s.record(ctx, userID, KindEvaluationCompleted,
		"A performance evaluation you are involved in has been completed.", evaluationID)
}

func (s *Service) record(ctx context.Context, userID, kind, message, refID string) {
	n := Notification{UserID: userID, Kind: kind, Message: message, RefID: refID}
	if _, err := s.store.Insert(ctx, &n); err != nil {
		slog.Warn("notification insert failed", "kind", kind, "user", userID, "error", err)
		return
	}
	s.mail(ctx, userID, kind, message)
}

func (s *Service) mail(ctx context.Context, userID, subject, body string) {
	if s.mailer == nil || s.addresses == nil {
		return
	}
	address, err := s.addresses.EmailForUser(ctx, userID)
	if err != nil || address == "" {
		return
	}
	if err := s.mailer.Send(ctx, address, subject, body); err != nil {
		slog.Warn("notification email failed", "user", userID, "error", err)
	}
}
