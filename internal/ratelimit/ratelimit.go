// Package ratelimit provides per-key request throttling for the HTTP API.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
// When allowed is false, retryAfterSec may be set for the Retry-After
// response header (0 = omit).
type Limiter interface {
	Allow(key string) (allowed bool, retryAfterSec int)
}

// Noop allows every request. Used when rate limiting is disabled.
type Noop struct{}

func (Noop) Allow(string) (bool, int) { return true, 0 }

// InMemory is a sliding-window limiter keyed by caller identity
// (client IP in practice). Single-instance only; a multi-node
// deployment would need a shared backend.
type InMemory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	nowFunc func() time.Time
}

type bucket struct {
	hits []time.Time
}

// NewInMemory allows up to limit requests per key within window.
func NewInMemory(limit int, window time.Duration) *InMemory {
	return &InMemory{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		nowFunc: time.Now,
	}
}

func (l *InMemory) Allow(key string) (allowed bool, retryAfterSec int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	cutoff := now.Add(-l.window)

	b := l.buckets[key]
	if b == nil {
		b = &bucket{}
		l.buckets[key] = b
	}
	b.prune(cutoff)

	if len(b.hits) >= l.limit {
		oldest := b.hits[0]
		wait := oldest.Add(l.window).Sub(now)
		if wait > 0 {
			retryAfterSec = int(wait.Seconds())
			if retryAfterSec < 1 {
				retryAfterSec = 1
			}
		}
		return false, retryAfterSec
	}

	b.hits = append(b.hits, now)
	return true, 0
}

// prune drops hits at or before cutoff, keeping the slice ordered.
func (b *bucket) prune(cutoff time.Time) {
	i := 0
	for _, t := range b.hits {
		if t.After(cutoff) {
			b.hits[i] = t
			i++
		}
	}
	b.hits = b.hits[:i]
}
