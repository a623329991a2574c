package rankcache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veloce/artrank/internal/adapters/rankcache"
	"github.com/veloce/artrank/internal/domain/rank"
	"github.com/veloce/artrank/pkg/logger"

	. "github.com/smartystreets/goconvey/convey"
)

// capturingLogger records warn messages for assertion.
type capturingLogger struct {
	mu    sync.Mutex
	warns []string
}

func (c *capturingLogger) Debug(_ context.Context, _ string, _ ...logger.Field) {}
func (c *capturingLogger) Info(_ context.Context, _ string, _ ...logger.Field)  {}
func (c *capturingLogger) Error(_ context.Context, _ string, _ ...logger.Field) {}

func (c *capturingLogger) Warn(_ context.Context, msg string, _ ...logger.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warns = append(c.warns, msg)
}

func (c *capturingLogger) Named(string) logger.Logger { return c }

func (c *capturingLogger) warnCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.warns)
}

func TestSnapshot(t *testing.T) {
	Convey("Given a cache over a counting builder", t, func() {
		var builds int64
		builder := func(ctx context.Context) ([]rank.Scored, error) {
			n := atomic.AddInt64(&builds, 1)
			return []rank.Scored{
				{EntityID: "a", Score: float64(n), Rank: 1, TotalRanked: 1, Tier: rank.TierGold},
			}, nil
		}
		cache := rankcache.New(builder, rankcache.WithTTL(time.Hour))
		ctx := context.Background()

		Convey("When read for the first time", func() {
			snap, err := cache.Snapshot(ctx)

			Convey("Then the first read should block for a complete build", func() {
				So(err, ShouldBeNil)
				So(len(snap), ShouldEqual, 1)
				So(atomic.LoadInt64(&builds), ShouldEqual, 1)
			})

			Convey("And reads inside the TTL should share the snapshot", func() {
				for i := 0; i < 5; i++ {
					again, err := cache.Snapshot(ctx)
					So(err, ShouldBeNil)
					So(again[0].Score, ShouldEqual, snap[0].Score)
				}
				So(atomic.LoadInt64(&builds), ShouldEqual, 1)
			})
		})

		Convey("When looked up by entity id", func() {
			s, ok, err := cache.Lookup(ctx, "a")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(s.Tier, ShouldEqual, rank.TierGold)

			_, ok, err = cache.Lookup(ctx, "missing")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When invalidated", func() {
			_, err := cache.Snapshot(ctx)
			So(err, ShouldBeNil)
			cache.Invalidate()

			_, err = cache.Snapshot(ctx)
			So(err, ShouldBeNil)

			Convey("Then the next read should have rebuilt", func() {
				So(atomic.LoadInt64(&builds), ShouldEqual, 2)
			})
		})

		Convey("When many first reads race", func() {
			fresh := rankcache.New(builder, rankcache.WithTTL(time.Hour))

			var wg sync.WaitGroup
			start := atomic.LoadInt64(&builds)
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _ = fresh.Snapshot(ctx)
				}()
			}
			wg.Wait()

			Convey("Then concurrent builds should collapse to one", func() {
				So(atomic.LoadInt64(&builds), ShouldEqual, start+1)
			})
		})
	})
}

func TestSnapshotStaleWhileRevalidate(t *testing.T) {
	Convey("Given a cache whose TTL has expired", t, func() {
		release := make(chan struct{})
		var builds int64
		counting := func(ctx context.Context) ([]rank.Scored, error) {
			n := atomic.AddInt64(&builds, 1)
			if n > 1 {
				<-release
			}
			return []rank.Scored{{EntityID: "a", Score: float64(n * 10)}}, nil
		}
		cache := rankcache.New(counting, rankcache.WithTTL(time.Millisecond))
		ctx := context.Background()

		first, err := cache.Snapshot(ctx)
		So(err, ShouldBeNil)
		time.Sleep(5 * time.Millisecond)

		Convey("When read again while the rebuild is held open", func() {
			stale, err := cache.Snapshot(ctx)

			Convey("Then the stale snapshot should be served immediately", func() {
				So(err, ShouldBeNil)
				So(stale[0].Score, ShouldEqual, first[0].Score)
			})

			Convey("And once the rebuild completes the fresh index appears", func() {
				close(release)
				So(func() bool {
					deadline := time.Now().Add(2 * time.Second)
					for time.Now().Before(deadline) {
						snap, err := cache.Snapshot(ctx)
						if err == nil && len(snap) == 1 && snap[0].Score > first[0].Score {
							return true
						}
						time.Sleep(5 * time.Millisecond)
					}
					return false
				}(), ShouldBeTrue)
			})
		})
	})
}

func TestSnapshotBackgroundRebuildFailure(t *testing.T) {
	Convey("Given an expired cache whose rebuild now fails", t, func() {
		var builds int64
		flaky := func(ctx context.Context) ([]rank.Scored, error) {
			if atomic.AddInt64(&builds, 1) > 1 {
				return nil, errors.New("aggregate read failed")
			}
			return []rank.Scored{{EntityID: "a", Score: 10}}, nil
		}
		log := &capturingLogger{}
		cache := rankcache.New(flaky,
			rankcache.WithTTL(time.Millisecond),
			rankcache.WithLogger(log),
		)
		ctx := context.Background()

		first, err := cache.Snapshot(ctx)
		So(err, ShouldBeNil)
		time.Sleep(5 * time.Millisecond)

		Convey("When read after expiry", func() {
			stale, err := cache.Snapshot(ctx)

			Convey("Then the stale snapshot should still serve", func() {
				So(err, ShouldBeNil)
				So(stale[0].Score, ShouldEqual, first[0].Score)
			})

			Convey("And the rebuild failure should be logged", func() {
				So(func() bool {
					deadline := time.Now().Add(2 * time.Second)
					for time.Now().Before(deadline) {
						if log.warnCount() > 0 {
							return true
						}
						time.Sleep(5 * time.Millisecond)
					}
					return false
				}(), ShouldBeTrue)
			})
		})
	})
}

func TestSnapshotBuilderFailure(t *testing.T) {
	Convey("Given a builder that fails", t, func() {
		boom := errors.New("aggregate read failed")
		cache := rankcache.New(func(ctx context.Context) ([]rank.Scored, error) {
			return nil, boom
		})

		Convey("Then the first read should surface the failure", func() {
			_, err := cache.Snapshot(context.Background())
			So(errors.Is(err, boom), ShouldBeTrue)
		})
	})
}
