package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"

	"github.com/veloce/artrank/pkg/metrics"
)

func TestManager(t *testing.T) {
	convey.Convey("Given the metrics package", t, func() {
		convey.Convey("Then the global registry should be available", func() {
			convey.So(metrics.GetRegistry(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then a manager should be creatable on its own registry", func() {
			m := metrics.NewManager(
				metrics.WithNamespace("artrank_test"),
				metrics.WithRegistry(prometheus.NewRegistry()),
			)
			convey.So(m, convey.ShouldNotBeNil)
		})

		convey.Convey("Then recording helpers should not panic", func() {
			convey.So(func() {
				metrics.RecordEventAccepted()
				metrics.RecordEventRejected("validation")
				metrics.RecordEventRejected("rate_limited")
				metrics.RecordLogAppend("durable")
				metrics.RecordLogAppend("degraded")
				metrics.UpdateJournalDepth(3)
				metrics.UpdateTrackedEntities(42)
				metrics.RecordCompactionDropped(7)
				metrics.RecordSnapshot(12.5, 1_750_000_000)
				metrics.RecordRankRebuild(3.2)
				metrics.RecordFlashScan(1.1, 2)
				metrics.RecordRateLimited()
				metrics.UpdateRateLimitKeys(9)
				metrics.RecordHTTPRequest("events", "POST", "202")
				metrics.RecordHTTPRequestDuration("events", "POST", 4.2)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(12)
			}, convey.ShouldNotPanic)
		})

		convey.Convey("Then recorded series should be gatherable", func() {
			metrics.RecordEventAccepted()

			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			convey.So(names["artrank_engine_events_accepted_total"], convey.ShouldBeTrue)
		})
	})
}
