package cache

import (
	"context"
	"testing"
	"time"
)

func TestKeyAndListKey(t *testing.T) {
	if got := Key(PrefixEvaluation, "abc"); got != "evaluation:abc" {
		t.Fatalf("unexpected entity key: %s", got)
	}

	key := ListKey(PrefixEvaluation, map[string]string{"status": "draft", "employee": "e1"})
	if key != "evaluation:list:employee=e1&status=draft" {
		t.Fatalf("unexpected list key: %s", key)
	}

	// Same filters, any insertion order, same key.
	again := ListKey(PrefixEvaluation, map[string]string{"employee": "e1", "status": "draft"})
	if key != again {
		t.Fatalf("list key not deterministic: %s vs %s", key, again)
	}

	if got := ListKey(PrefixEvaluation, nil); got != "evaluation:list:all" {
		t.Fatalf("unexpected empty-filter key: %s", got)
	}

	if got := ListKey(PrefixEvaluation, map[string]string{"status": ""}); got != "evaluation:list:all" {
		t.Fatalf("empty filter values must not contribute to the key, got %s", got)
	}
}

func TestListKeysNeverCollideAcrossFilters(t *testing.T) {
	a := ListKey(PrefixEvaluation, map[string]string{"status": "draft"})
	b := ListKey(PrefixEvaluation, map[string]string{"status": "completed"})
	c := ListKey(PrefixEmployee, map[string]string{"status": "draft"})
	if a == b || a == c {
		t.Fatalf("list keys collided: %s %s %s", a, b, c)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	type payload struct {
		Name string `json:"name"`
	}

	if hit := store.GetJSON(ctx, "k", &payload{}); hit {
		t.Fatal("expected miss on empty store")
	}

	if ok := store.SetJSON(ctx, "k", payload{Name: "v"}, time.Minute); !ok {
		t.Fatal("expected set to succeed")
	}

	var out payload
	if hit := store.GetJSON(ctx, "k", &out); !hit {
		t.Fatal("expected hit after set")
	}
	if out.Name != "v" {
		t.Fatalf("expected cached value, got %+v", out)
	}

	store.Delete(ctx, "k")
	if hit := store.GetJSON(ctx, "k", &out); hit {
		t.Fatal("expected miss after delete")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	store.SetJSON(ctx, "k", "v", 30*time.Second)

	var out string
	if hit := store.GetJSON(ctx, "k", &out); !hit {
		t.Fatal("expected hit before expiry")
	}

	current = current.Add(31 * time.Second)
	if hit := store.GetJSON(ctx, "k", &out); hit {
		t.Fatal("expected miss after ttl elapsed")
	}
}

func TestMemoryZeroTTLRejected(t *testing.T) {
	if ok := NewMemory().SetJSON(context.Background(), "k", "v", 0); ok {
		t.Fatal("expected zero ttl set to be rejected")
	}
}

func TestMemoryDeletePrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	store.SetJSON(ctx, ListKey(PrefixEvaluation, nil), "a", time.Minute)
	store.SetJSON(ctx, ListKey(PrefixEvaluation, map[string]string{"status": "draft"}), "b", time.Minute)
	store.SetJSON(ctx, Key(PrefixEvaluation, "id1"), "c", time.Minute)

	store.DeletePrefix(ctx, ListPrefix(PrefixEvaluation))

	var out string
	if hit := store.GetJSON(ctx, ListKey(PrefixEvaluation, nil), &out); hit {
		t.Fatal("expected list keys swept")
	}
	if hit := store.GetJSON(ctx, Key(PrefixEvaluation, "id1"), &out); !hit {
		t.Fatal("entity key must survive a list sweep")
	}
}

func TestRedisBypassesWhenUnconfigured(t *testing.T) {
	ctx := context.Background()
	store := NewRedis("", "", nil)

	var out string
	if hit := store.GetJSON(ctx, "k", &out); hit {
		t.Fatal("expected miss from bypassing client")
	}
	if ok := store.SetJSON(ctx, "k", "v", time.Minute); ok {
		t.Fatal("expected set to report failure when bypassing")
	}
	if ok := store.Delete(ctx, "k"); ok {
		t.Fatal("expected delete to report failure when bypassing")
	}
	if ok := store.DeletePrefix(ctx, "k:"); ok {
		t.Fatal("expected prefix delete to report failure when bypassing")
	}
}
