// Package ratelimit implements fixed-window admission control keyed by an
// (identity, operation) composite string. Buckets live in process memory;
// horizontally scaled deployments need a shared counter behind the same
// Limiter interface.
package ratelimit

import (
	"sync"
	"time"
)

// Config names the limit for one operation: at most Limit admissions per
// Window for a given key.
type Config struct {
	Limit  int
	Window time.Duration
}

// Result is the admission decision for one call.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is the admission gate consulted before every external-facing
// action. Implementations must make the check-and-increment atomic with
// respect to concurrent callers sharing a key.
type Limiter interface {
	Check(key string, cfg Config) Result
}

// bucket remembers the config it was opened under, so expiry and admission
// are judged against the window that created it even when other keys check
// in with different configs.
type bucket struct {
	windowStart time.Time
	limit       int
	window      time.Duration
	count       int
}

func (b *bucket) expired(now time.Time) bool {
	return now.Sub(b.windowStart) >= b.window
}

// MemoryLimiter keeps one counter window per key, guarded by a mutex.
// Expired buckets are swept opportunistically so the map stays bounded.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	sweepN  int

	now func() time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Check(key string, cfg Config) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepN++
	if l.sweepN >= 5000 {
		for k, b := range l.buckets {
			if b.expired(now) {
				delete(l.buckets, k)
			}
		}
		l.sweepN = 0
	}

	b, ok := l.buckets[key]
	if !ok || b.expired(now) {
		// Fresh window: this call is the first admission, and the bucket
		// adopts the caller's config for the window's lifetime.
		b = &bucket{windowStart: now, limit: cfg.Limit, window: cfg.Window, count: 1}
		l.buckets[key] = b
		return Result{
			Allowed:   true,
			Remaining: cfg.Limit - 1,
			ResetAt:   now.Add(cfg.Window),
		}
	}

	b.count++
	remaining := b.limit - b.count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   b.count <= b.limit,
		Remaining: remaining,
		ResetAt:   b.windowStart.Add(b.window),
	}
}
