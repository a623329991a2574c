// Package aggregate maintains per-key running engagement counters.
//
// The same fold is used for lifetime entity aggregates, for flash-window
// entity tallies, and for flash-window actor tallies: a map of per-type
// counts plus watch time, event count, and the newest event timestamp.
package aggregate

import (
	"time"

	"github.com/veloce/artrank/internal/domain/model"
)

// Aggregate holds the running counters for one key (an entity or, in
// windowed computations, an actor). Counters are monotonically
// non-decreasing absent compaction; LastEventAt never regresses even
// when events arrive out of time order.
type Aggregate struct {
	ID           string                    `json:"id"`
	Counters     map[model.EventType]int64 `json:"counters"`
	TotalWatchMs int64                     `json:"total_watch_ms"`
	LastEventAt  time.Time                 `json:"last_event_at"`
	EventCount   int64                     `json:"event_count"`
}

// New creates an empty aggregate for the given key.
func New(id string) *Aggregate {
	return &Aggregate{
		ID:       id,
		Counters: make(map[model.EventType]int64),
	}
}

// Apply folds one event into the aggregate. Increments are monotonic;
// nothing here ever decrements.
func (a *Aggregate) Apply(e model.Event) {
	a.Counters[e.Type]++
	a.EventCount++
	a.TotalWatchMs += e.WatchMs
	if e.OccurredAt.After(a.LastEventAt) {
		a.LastEventAt = e.OccurredAt
	}
}

// Count returns the counter for one event type.
func (a *Aggregate) Count(t model.EventType) int64 {
	return a.Counters[t]
}

// Clone returns a deep copy safe to read while the original keeps
// receiving events.
func (a *Aggregate) Clone() *Aggregate {
	c := &Aggregate{
		ID:           a.ID,
		Counters:     make(map[model.EventType]int64, len(a.Counters)),
		TotalWatchMs: a.TotalWatchMs,
		LastEventAt:  a.LastEventAt,
		EventCount:   a.EventCount,
	}
	for t, n := range a.Counters {
		c.Counters[t] = n
	}
	return c
}

// Equal reports whether two aggregates carry the same counters. Zero
// counters and absent counters compare equal.
func (a *Aggregate) Equal(b *Aggregate) bool {
	if a.ID != b.ID || a.TotalWatchMs != b.TotalWatchMs ||
		a.EventCount != b.EventCount || !a.LastEventAt.Equal(b.LastEventAt) {
		return false
	}
	for t, n := range a.Counters {
		if b.Counters[t] != n {
			return false
		}
	}
	for t, n := range b.Counters {
		if a.Counters[t] != n {
			return false
		}
	}
	return true
}
