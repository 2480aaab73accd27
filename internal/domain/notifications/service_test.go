package notifications

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type fakeStore struct {
	items     []Notification
	insertErr error
	nextID    int
}

func (f *fakeStore) Insert(_ context.Context, n *Notification) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextID++
	n.ID = fmt.Sprintf("n-%d", f.nextID)
	n.CreatedAt = time.Now()
	f.items = append(f.items, *n)
	return n.ID, nil
}

func (f *fakeStore) ListForUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]Notification, error) {
	var out []Notification
	for _, n := range f.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeStore) UnreadCount(_ context.Context, userID string) (int, error) {
	count := 0
	for _, n := range f.items {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) MarkRead(_ context.Context, userID, id string) error {
	now := time.Now()
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UserID == userID {
			f.items[i].ReadAt = &now
		}
	}
	return nil
}

func (f *fakeStore) MarkAllRead(_ context.Context, userID string) error {
	now := time.Now()
	for i := range f.items {
		if f.items[i].UserID == userID && f.items[i].ReadAt == nil {
			f.items[i].ReadAt = &now
		}
	}
	return nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to+":"+subject)
	return nil
}

type fakeAddresses map[string]string

func (f fakeAddresses) EmailForUser(_ context.Context, userID string) (string, error) {
	address, ok := f[userID]
	if !ok {
		return "", errors.New("no such user")
	}
	return address, nil
}

func TestAssignedRecordsAndMails(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	svc := NewService(store, mailer, fakeAddresses{"u-1": "u1@example.com"})
	ctx := context.Background()

	svc.EvaluationAssigned(ctx, "u-1", "eval-1")

	if len(store.items) != 1 {
		t.Fatalf("items = %d, want 1", len(store.items))
	}
	n := store.items[0]
	if n.Kind != KindEvaluationAssigned || n.RefID != "eval-1" {
		t.Fatalf("notification = %+v", n)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("mails = %v", mailer.sent)
	}
}

func TestMailFailureDoesNotLoseNotification(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{err: errors.New("smtp down")}
	svc := NewService(store, mailer, fakeAddresses{"u-1": "u1@example.com"})

	svc.EvaluationCompleted(context.Background(), "u-1", "eval-1")

	if len(store.items) != 1 {
		t.Fatal("in-app notification lost when mail failed")
	}
}

func TestUnknownAddressSkipsMail(t *testing.T) {
	store := &fakeStore{}
	mailer := &fakeMailer{}
	svc := NewService(store, mailer, fakeAddresses{})

	svc.EvaluationSubmitted(context.Background(), "u-ghost", "eval-1")

	if len(store.items) != 1 {
		t.Fatal("notification not recorded")
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("mail sent to unknown user: %v", mailer.sent)
	}
}

func TestMarkReadFlow(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	svc.EvaluationAssigned(ctx, "u-1", "eval-1")
	svc.EvaluationAssigned(ctx, "u-1", "eval-2")

	count, err := svc.UnreadCount(ctx, "u-1")
	if err != nil || count != 2 {
		t.Fatalf("unread = %d (%v), want 2", count, err)
	}

	if err := svc.MarkRead(ctx, "u-1", store.items[0].ID); err != nil {
		t.Fatalf("markRead: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, "u-1")
	if count != 1 {
		t.Fatalf("unread after markRead = %d, want 1", count)
	}

	unread, err := svc.ListForUser(ctx, "u-1", true, 0, 0)
	if err != nil || len(unread) != 1 {
		t.Fatalf("unread list = %v (%v)", unread, err)
	}

	if err := svc.MarkAllRead(ctx, "u-1"); err != nil {
		t.Fatalf("markAllRead: %v", err)
	}
	count, _ = svc.UnreadCount(ctx, "u-1")
	if count != 0 {
		t.Fatalf("unread after markAllRead = %d, want 0", count)
	}
}
