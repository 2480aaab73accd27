package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"perf360/internal/platform/metrics"
)

// Redis is the production Store. A missing or unreachable server degrades to
// pass-through: every Get is a miss and every write reports failure without
// surfacing an error to the request path.
type Redis struct {
	client  *redis.Client
	metrics *metrics.Collector

	warnedUnavailable atomic.Bool
}

func NewRedis(addr, password string, collector *metrics.Collector) *Redis {
	if addr == "" {
		return &Redis{metrics: collector}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, cache disabled", "addr", addr, "err", err)
		_ = client.Close()
		return &Redis{metrics: collector}
	}

	return &Redis{client: client, metrics: collector}
}

func (r *Redis) Close() {
	if r != nil && r.client != nil {
		_ = r.client.Close()
	}
}

func (r *Redis) bypassing() bool {
	return r == nil || r.client == nil
}

func (r *Redis) warnUnavailableOnce(err error) {
	if r == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		slog.Warn("redis unavailable, bypassing cache", "err", err)
	}
}

func (r *Redis) GetJSON(ctx context.Context, key string, out any) bool {
	if r.bypassing() {
		r.recordBypass()
		return false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warnUnavailableOnce(err)
		}
		r.recordMiss()
		return false
	}
	if len(raw) == 0 {
		r.recordMiss()
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("cache entry unmarshal failed, treating as miss", "key", key, "err", err)
		r.recordMiss()
		return false
	}
	r.recordHit()
	return true
}

func (r *Redis) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if r.bypassing() || ttl <= 0 {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache entry marshal failed", "key", key, "err", err)
		return false
	}
	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return false
	}
	return true
}

func (r *Redis) Delete(ctx context.Context, key string) bool {
	if r.bypassing() {
		return false
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.warnUnavailableOnce(err)
		return false
	}
	return true
}

func (r *Redis) DeletePrefix(ctx context.Context, prefix string) bool {
	if r.bypassing() || prefix == "" {
		return false
	}
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	ok := true
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			slog.Warn("cache prefix delete failed", "key", iter.Val(), "err", err)
			ok = false
		}
	}
	if err := iter.Err(); err != nil {
		r.warnUnavailableOnce(err)
		return false
	}
	return ok
}

func (r *Redis) recordHit() {
	if r.metrics != nil {
		r.metrics.RecordCacheHit()
	}
}

func (r *Redis) recordMiss() {
	if r.metrics != nil {
		r.metrics.RecordCacheMiss()
	}
}

func (r *Redis) recordBypass() {
	if r.metrics != nil {
		r.metrics.RecordCacheBypass()
	}
}
