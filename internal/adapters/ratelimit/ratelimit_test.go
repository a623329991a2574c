package ratelimit_test

import (
	"testing"
	"time"

	"github.com/veloce/artrank/internal/adapters/ratelimit"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAllow(t *testing.T) {
	Convey("Given a limiter allowing 3 per minute", t, func() {
		l := ratelimit.New(ratelimit.WithLimit(3), ratelimit.WithWindow(time.Minute))
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When one identity submits within the window", func() {
			for i := 0; i < 3; i++ {
				ok, _ := l.Allow("10.0.0.1", now.Add(time.Duration(i)*time.Second))
				So(ok, ShouldBeTrue)
			}

			Convey("Then the fourth attempt should be rejected with a retry hint", func() {
				ok, retryAfter := l.Allow("10.0.0.1", now.Add(10*time.Second))
				So(ok, ShouldBeFalse)
				So(retryAfter, ShouldEqual, 50*time.Second)
			})

			Convey("Then rejected attempts should not consume quota", func() {
				for i := 0; i < 5; i++ {
					ok, _ := l.Allow("10.0.0.1", now.Add(10*time.Second))
					So(ok, ShouldBeFalse)
				}
				// Quota comes back intact once the window rolls over.
				ok, _ := l.Allow("10.0.0.1", now.Add(61*time.Second))
				So(ok, ShouldBeTrue)
			})

			Convey("Then a different identity should be unaffected", func() {
				ok, _ := l.Allow("10.0.0.2", now.Add(10*time.Second))
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When the window elapses", func() {
			for i := 0; i < 3; i++ {
				_, _ = l.Allow("10.0.0.1", now)
			}
			ok, _ := l.Allow("10.0.0.1", now.Add(time.Minute))

			Convey("Then the counter should reset to a fresh window", func() {
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestPrune(t *testing.T) {
	Convey("Given a limiter with tracked identities", t, func() {
		l := ratelimit.New(ratelimit.WithWindow(time.Minute))
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		l.Allow("old-1", now.Add(-10*time.Minute))
		l.Allow("old-2", now.Add(-5*time.Minute))
		l.Allow("recent", now.Add(-30*time.Second))
		So(l.Keys(), ShouldEqual, 3)

		Convey("When pruned", func() {
			remaining := l.Prune(now)

			Convey("Then entries older than twice the window should be evicted", func() {
				So(remaining, ShouldEqual, 1)
				So(l.Keys(), ShouldEqual, 1)
			})
		})
	})
}
