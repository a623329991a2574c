package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/veloce/artrank/internal/domain/aggregate"
	"github.com/veloce/artrank/internal/domain/model"
)

// Default store configuration constants.
const (
	defaultRingSize = 32
)

// MemStore is the in-memory Store implementation. A single mutex
// serializes all aggregate mutation; reads for ranking take a
// copy-on-read snapshot so nothing iterates a map under mutation.
type MemStore struct {
	mu       sync.RWMutex
	aggs     map[string]*aggregate.Aggregate
	rings    map[string]*aggregate.RecentRing
	ringSize int
}

// Option applies a configuration option to the MemStore.
type Option func(*MemStore)

// WithRingSize sets the per-entity recent-sample ring capacity.
func WithRingSize(size int) Option {
	return func(s *MemStore) {
		if size > 0 {
			s.ringSize = size
		}
	}
}

// NewMemStore creates an empty in-memory aggregate store.
func NewMemStore(opts ...Option) *MemStore {
	s := &MemStore{
		aggs:     make(map[string]*aggregate.Aggregate),
		rings:    make(map[string]*aggregate.RecentRing),
		ringSize: defaultRingSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemStore) get(entityID string) *aggregate.Aggregate {
	a, ok := s.aggs[entityID]
	if !ok {
		a = aggregate.New(entityID)
		s.aggs[entityID] = a
	}
	return a
}

// Apply folds one event into its entity aggregate and records the
// timestamp in the entity's recent-sample ring.
func (s *MemStore) Apply(ctx context.Context, e model.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.get(e.EntityID).Apply(e)

	ring, ok := s.rings[e.EntityID]
	if !ok {
		ring = aggregate.NewRecentRing(s.ringSize)
		s.rings[e.EntityID] = ring
	}
	ring.Observe(e.OccurredAt)
}

// Register seeds an empty aggregate so a known-but-inactive profile is
// scored at zero rather than unranked.
func (s *MemStore) Register(ctx context.Context, entityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.get(entityID)
}

// Get returns a copy of one aggregate.
func (s *MemStore) Get(ctx context.Context, entityID string) (*aggregate.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.aggs[entityID]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

// All returns a consistent point-in-time copy of every aggregate.
func (s *MemStore) All(ctx context.Context) []*aggregate.Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*aggregate.Aggregate, 0, len(s.aggs))
	for _, a := range s.aggs {
		out = append(out, a.Clone())
	}
	return out
}

// RecentRate returns the recent events-per-hour sample for an entity.
func (s *MemStore) RecentRate(ctx context.Context, entityID string, now time.Time, window time.Duration) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ring, ok := s.rings[entityID]
	if !ok {
		return 0, false
	}
	return ring.RatePerHour(now, window)
}

// Compact retains only the limit highest-event-count aggregates,
// dropping the lowest-activity tail along with its recent rings. The
// event log is never touched.
func (s *MemStore) Compact(ctx context.Context, limit int) int {
	if limit <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.aggs) <= limit {
		return 0
	}

	ids := make([]string, 0, len(s.aggs))
	for id := range s.aggs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.aggs[ids[i]], s.aggs[ids[j]]
		if a.EventCount != b.EventCount {
			return a.EventCount > b.EventCount
		}
		return a.ID < b.ID
	})

	dropped := 0
	for _, id := range ids[limit:] {
		delete(s.aggs, id)
		delete(s.rings, id)
		dropped++
	}
	return dropped
}

// Count returns the number of tracked aggregates.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.aggs)
}

// Reset drops all aggregates and rings.
func (s *MemStore) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggs = make(map[string]*aggregate.Aggregate)
	s.rings = make(map[string]*aggregate.RecentRing)
}
