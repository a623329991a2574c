// Package rankcache serves the rank/tier index from a time-boxed cache.
//
// The full rebuild (read aggregates, score everything, sort, assign
// ranks) is expensive relative to per-request latency, so it runs
// lazily: reads inside the TTL share one snapshot, a stale snapshot is
// served while a single collapsed rebuild runs in the background, and
// only the very first read blocks on a build.
package rankcache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/veloce/artrank/internal/domain/rank"
	"github.com/veloce/artrank/pkg/logger"
	"github.com/veloce/artrank/pkg/metrics"
)

// defaultTTL bounds how stale a served ranking may be.
const defaultTTL = 30 * time.Second

// Builder produces a complete ranking from current aggregate state.
type Builder func(ctx context.Context) ([]rank.Scored, error)

// Cache is the TTL-cached rank/tier index.
type Cache struct {
	build  Builder
	ttl    time.Duration
	logger logger.Logger

	mu       sync.RWMutex
	snapshot []rank.Scored
	byID     map[string]rank.Scored
	builtAt  time.Time
	built    bool

	group singleflight.Group
}

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL sets the snapshot time-to-live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets a custom logger for the cache.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cache around the given builder.
func New(build Builder, opts ...Option) *Cache {
	c := &Cache{build: build, ttl: defaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("rankcache")
	}
	return c
}

// Snapshot returns the current ranking, rebuilding when the TTL has
// expired. A rebuild in progress never blocks readers of the previous
// snapshot; concurrent expiry collapses into one in-flight rebuild.
func (c *Cache) Snapshot(ctx context.Context) ([]rank.Scored, error) {
	c.mu.RLock()
	built, fresh := c.built, time.Since(c.builtAt) < c.ttl
	snap := c.snapshot
	c.mu.RUnlock()

	if built && fresh {
		return snap, nil
	}
	if built {
		// Stale-while-revalidate: kick a collapsed background rebuild
		// and serve the previous complete snapshot. A failed rebuild
		// keeps serving the stale snapshot, so the error must surface
		// somewhere.
		ch := c.group.DoChan("rebuild", func() (any, error) {
			return nil, c.rebuild(context.WithoutCancel(ctx))
		})
		go func() {
			if res := <-ch; res.Err != nil {
				c.logger.Warn(context.Background(), "rank rebuild failed, serving stale snapshot",
					logger.Error(res.Err),
				)
			}
		}()
		return snap, nil
	}

	// First build: nothing to serve yet, block for a complete index.
	_, err, _ := c.group.Do("rebuild", func() (any, error) {
		return nil, c.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, nil
}

// Lookup returns one entity's position in the current ranking.
// The boolean is false when the entity is not in the scored set.
func (c *Cache) Lookup(ctx context.Context, entityID string) (rank.Scored, bool, error) {
	if _, err := c.Snapshot(ctx); err != nil {
		return rank.Scored{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.byID[entityID]
	return s, ok, nil
}

// Invalidate forces the next read to rebuild, used after a bulk
// aggregate reset.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.built = false
	c.snapshot = nil
	c.byID = nil
}

func (c *Cache) rebuild(ctx context.Context) error {
	start := time.Now()
	built, err := c.build(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]rank.Scored, len(built))
	for _, s := range built {
		byID[s.EntityID] = s
	}

	c.mu.Lock()
	c.snapshot = built
	c.byID = byID
	c.builtAt = time.Now()
	c.built = true
	c.mu.Unlock()

	metrics.RecordRankRebuild(float64(time.Since(start).Milliseconds()))
	return nil
}
