package cache

import (
	"context"
	"time"
)

// Store is the cache-aside contract. Every implementation is fail-soft:
// a miss and an outage look the same to callers, and writes report success
// with a boolean instead of an error. The backing store stays authoritative;
// nothing here is load-bearing for correctness or authorization.
type Store interface {
	// GetJSON unmarshals the cached value into out and reports a hit.
	GetJSON(ctx context.Context, key string, out any) bool
	// SetJSON caches value under key for ttl.
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool
	// Delete removes one key.
	Delete(ctx context.Context, key string) bool
	// DeletePrefix removes every key sharing the prefix. Used to sweep
	// filtered-list entries after a mutation.
	DeletePrefix(ctx context.Context, prefix string) bool
}
