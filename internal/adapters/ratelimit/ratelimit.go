// Package ratelimit bounds per-submitter ingestion throughput with a
// fixed-window counter keyed by a hashed network identity.
package ratelimit

import (
	"hash/fnv"
	"sync"
	"time"
)

// Default limiter configuration constants.
const (
	defaultLimit         = 120
	defaultWindow        = time.Minute
	defaultPruneInterval = time.Minute
)

// windowEntry is one submitter's current fixed window.
type windowEntry struct {
	start time.Time
	count int
}

// Limiter allows exactly N submissions per window per hashed identity.
// Raw identities are never stored; only their FNV-1a hash.
type Limiter struct {
	mu      sync.Mutex
	windows map[uint64]*windowEntry
	limit   int
	window  time.Duration

	stopPrune chan struct{}
	pruneOnce sync.Once
}

// Option applies a configuration option to the Limiter.
type Option func(*Limiter)

// WithLimit sets the allowed submissions per window.
func WithLimit(n int) Option {
	return func(l *Limiter) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithWindow sets the fixed window length.
func WithWindow(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.window = d
		}
	}
}

// New creates a limiter with the given options.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		windows:   make(map[uint64]*windowEntry),
		limit:     defaultLimit,
		window:    defaultWindow,
		stopPrune: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// hashIdentity hashes a network identity so raw addresses never sit in
// limiter state.
func hashIdentity(identity string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(identity))
	return h.Sum64()
}

// Allow records one submission attempt for identity at now. When the
// window is exhausted it returns false plus the duration the caller
// should wait, computed from the window's remaining time; a rejected
// attempt does not consume quota.
func (l *Limiter) Allow(identity string, now time.Time) (bool, time.Duration) {
	key := hashIdentity(identity)

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.windows[key]
	if !ok || now.Sub(e.start) >= l.window {
		e = &windowEntry{start: now}
		l.windows[key] = e
	}

	if e.count < l.limit {
		e.count++
		return true, 0
	}

	retryAfter := e.start.Add(l.window).Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return false, retryAfter
}

// Prune evicts window entries older than twice the window length and
// returns how many remain.
func (l *Limiter) Prune(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-2 * l.window)
	for key, e := range l.windows {
		if e.start.Before(cutoff) {
			delete(l.windows, key)
		}
	}
	return len(l.windows)
}

// Keys returns the number of tracked submitter keys.
func (l *Limiter) Keys() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// StartPruning runs periodic eviction until Stop is called.
func (l *Limiter) StartPruning(interval time.Duration) {
	if interval <= 0 {
		interval = defaultPruneInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Prune(time.Now())
			case <-l.stopPrune:
				return
			}
		}
	}()
}

// Stop stops the pruning goroutine.
func (l *Limiter) Stop() {
	l.pruneOnce.Do(func() { close(l.stopPrune) })
}
