// Package repository maintains the authoritative running aggregates.
package repository

import (
	"context"
	"time"

	"github.com/veloce/artrank/internal/domain/aggregate"
	"github.com/veloce/artrank/internal/domain/model"
)

// Store provides serialized write and consistent read access to the
// per-entity aggregate state.
type Store interface {
	// Apply folds one event into the matching aggregate, creating it
	// lazily on first sight.
	Apply(ctx context.Context, e model.Event)

	// Register seeds an empty aggregate for a known profile so it is
	// scored (at zero) instead of being unranked.
	Register(ctx context.Context, entityID string)

	// Get returns a copy of one aggregate.
	// Returns ErrNotFound when the entity is untracked.
	Get(ctx context.Context, entityID string) (*aggregate.Aggregate, error)

	// All returns a consistent point-in-time copy of every aggregate.
	All(ctx context.Context) []*aggregate.Aggregate

	// RecentRate returns the recent events-per-hour sample for an
	// entity; false when no sample is available.
	RecentRate(ctx context.Context, entityID string, now time.Time, window time.Duration) (float64, bool)

	// Compact retains only the limit highest-event-count aggregates
	// and reports how many were dropped.
	Compact(ctx context.Context, limit int) int

	// Count returns the number of tracked aggregates.
	Count(ctx context.Context) int

	// Reset drops all aggregates. Callers must invalidate any derived
	// caches afterwards.
	Reset(ctx context.Context)
}
