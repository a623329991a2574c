package flash_test

import (
	"context"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/veloce/artrank/internal/domain/flash"
	"github.com/veloce/artrank/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

// memTail serves a fixed byte slice as the log tail.
type memTail struct {
	data []byte
	err  error
}

func (m *memTail) ReadTail(_ context.Context, _ int64) ([]byte, error) {
	return m.data, m.err
}

func encodeEvents(events []model.Event) []byte {
	var b strings.Builder
	for _, e := range events {
		line, _ := json.Marshal(e)
		b.Write(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func repeatEvents(t model.EventType, entityID, actorID string, at time.Time, n int) []model.Event {
	out := make([]model.Event, n)
	for i := range out {
		out[i] = model.Event{Type: t, EntityID: entityID, ActorID: actorID, OccurredAt: at}
	}
	return out
}

func TestWinnersWindowing(t *testing.T) {
	Convey("Given a log with events on both sides of the window edge", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		var events []model.Event
		events = append(events, repeatEvents(model.EventShare, "fresh", "", now.Add(-time.Hour), 12)...)
		events = append(events, repeatEvents(model.EventShare, "stale", "", now.Add(-25*time.Hour), 12)...)
		engine := flash.New(&memTail{data: encodeEvents(events)})

		Convey("When scanning a 24 hour window", func() {
			res, err := engine.Winners(context.Background(), now, 24*time.Hour, 0)
			So(err, ShouldBeNil)

			Convey("Then only in-window activity should award medals", func() {
				So(len(res.Entities), ShouldEqual, 1)
				So(res.Entities[0].EntityID, ShouldEqual, "fresh")
				So(res.Entities[0].Medal, ShouldEqual, flash.MedalViral)
				So(res.Entities[0].Shares, ShouldEqual, 12)
			})
		})

		Convey("When scanning a wider window that covers both", func() {
			res, err := engine.Winners(context.Background(), now, 48*time.Hour, 0)
			So(err, ShouldBeNil)
			So(len(res.Entities), ShouldEqual, 2)
		})

		Convey("When the requested window exceeds the configured maximum", func() {
			engine := flash.New(&memTail{data: encodeEvents(events)}, flash.WithMaxWindow(24*time.Hour))
			res, err := engine.Winners(context.Background(), now, 500*time.Hour, 0)
			So(err, ShouldBeNil)

			Convey("Then the window should be clamped", func() {
				So(res.Window, ShouldEqual, 24*time.Hour)
				So(len(res.Entities), ShouldEqual, 1)
			})
		})

		Convey("When no window is given", func() {
			res, err := engine.Winners(context.Background(), now, 0, 0)
			So(err, ShouldBeNil)

			Convey("Then the default 24 hour window applies", func() {
				So(res.Window, ShouldEqual, 24*time.Hour)
			})
		})
	})
}

func TestWinnersMedals(t *testing.T) {
	Convey("Given in-window engagement at varied levels", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		at := now.Add(-time.Hour)

		Convey("An entity clearing both thresholds should take viral", func() {
			var events []model.Event
			events = append(events, repeatEvents(model.EventShare, "both", "", at, 10)...)
			events = append(events, repeatEvents(model.EventVote, "both", "", at, 20)...)
			engine := flash.New(&memTail{data: encodeEvents(events)})

			res, err := engine.Winners(context.Background(), now, 0, 0)
			So(err, ShouldBeNil)
			So(len(res.Entities), ShouldEqual, 1)
			So(res.Entities[0].Medal, ShouldEqual, flash.MedalViral)
		})

		Convey("An entity just below a threshold should win nothing", func() {
			events := repeatEvents(model.EventShare, "almost", "", at, 9)
			engine := flash.New(&memTail{data: encodeEvents(events)})

			res, err := engine.Winners(context.Background(), now, 0, 0)
			So(err, ShouldBeNil)
			So(len(res.Entities), ShouldEqual, 0)
		})

		Convey("Votes alone at the breakout threshold should award breakout", func() {
			events := repeatEvents(model.EventVote, "riser", "", at, 15)
			engine := flash.New(&memTail{data: encodeEvents(events)})

			res, err := engine.Winners(context.Background(), now, 0, 0)
			So(err, ShouldBeNil)
			So(len(res.Entities), ShouldEqual, 1)
			So(res.Entities[0].Medal, ShouldEqual, flash.MedalBreakout)
		})

		Convey("A fan clearing all three actor thresholds should be a power voter", func() {
			var events []model.Event
			events = append(events, repeatEvents(model.EventVote, "e", "superfan", at, 5)...)
			events = append(events, repeatEvents(model.EventLike, "e", "superfan", at, 5)...)
			events = append(events, repeatEvents(model.EventShare, "e", "superfan", at, 2)...)
			// One dimension short.
			events = append(events, repeatEvents(model.EventVote, "e", "casual", at, 5)...)
			events = append(events, repeatEvents(model.EventLike, "e", "casual", at, 5)...)
			engine := flash.New(&memTail{data: encodeEvents(events)})

			res, err := engine.Winners(context.Background(), now, 0, 0)
			So(err, ShouldBeNil)
			So(len(res.Actors), ShouldEqual, 1)
			So(res.Actors[0].ActorID, ShouldEqual, "superfan")
			So(res.Actors[0].Medal, ShouldEqual, flash.MedalPowerVoter)
		})

		Convey("Winner lists should respect the limit after sorting", func() {
			var events []model.Event
			events = append(events, repeatEvents(model.EventShare, "busy", "", at, 20)...)
			events = append(events, repeatEvents(model.EventShare, "quiet", "", at, 10)...)
			engine := flash.New(&memTail{data: encodeEvents(events)})

			res, err := engine.Winners(context.Background(), now, 0, 1)
			So(err, ShouldBeNil)
			So(len(res.Entities), ShouldEqual, 1)
			So(res.Entities[0].EntityID, ShouldEqual, "busy")
		})
	})
}

func TestWinnersMalformedLines(t *testing.T) {
	Convey("Given a log tail with damaged lines mixed in", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		good := encodeEvents(repeatEvents(model.EventShare, "ok", "", now.Add(-time.Hour), 10))
		raw := append([]byte("{\"truncat\n"), good...)
		raw = append(raw, []byte("not json at all\n{\"type\":\"clap\",\"entity_id\":\"x\"}\n")...)
		engine := flash.New(&memTail{data: raw})

		Convey("When scanned", func() {
			res, err := engine.Winners(context.Background(), now, 0, 0)
			So(err, ShouldBeNil)

			Convey("Then damaged lines should be skipped, not fatal", func() {
				So(res.Skipped, ShouldEqual, 3)
				So(res.Scanned, ShouldEqual, 13)
				So(len(res.Entities), ShouldEqual, 1)
				So(res.Entities[0].EntityID, ShouldEqual, "ok")
			})
		})
	})

	Convey("Given a tail reader that fails", t, func() {
		engine := flash.New(&memTail{err: context.DeadlineExceeded})

		Convey("Then the scan should surface the error", func() {
			_, err := engine.Winners(context.Background(), time.Now(), 0, 0)
			So(err, ShouldNotBeNil)
		})
	})
}
