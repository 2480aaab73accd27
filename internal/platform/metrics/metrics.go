package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64
	cacheHits       uint64
	cacheMisses     uint64
	cacheBypasses   uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordCacheHit() {
	atomic.AddUint64(&c.cacheHits, 1)
}

func (c *Collector) RecordCacheMiss() {
	atomic.AddUint64(&c.cacheMisses, 1)
}

func (c *Collector) RecordCacheBypass() {
	atomic.AddUint64(&c.cacheBypasses, 1)
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	hits := atomic.LoadUint64(&c.cacheHits)
	misses := atomic.LoadUint64(&c.cacheMisses)
	bypasses := atomic.LoadUint64(&c.cacheBypasses)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}
	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      errs,
		"rateLimitedTotal": limited,
		"avgDurationMs":    avg,
		"totalDurationMs":  totalMs,
		"cacheHits":        hits,
		"cacheMisses":      misses,
		"cacheBypasses":    bypasses,
		"cacheHitRate":     hitRate,
	}
}
