package eventlog_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/veloce/artrank/internal/adapters/eventlog"
	"github.com/veloce/artrank/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAppendAndReadTail(t *testing.T) {
	Convey("Given an open event log", t, func() {
		path := filepath.Join(t.TempDir(), "events.log")
		log, err := eventlog.Open(path)
		So(err, ShouldBeNil)
		defer log.Close()

		ctx := context.Background()
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		Convey("When events are appended", func() {
			for i := 0; i < 5; i++ {
				d, err := log.Append(ctx, model.Event{
					ID:         "evt-" + string(rune('a'+i)),
					Type:       model.EventView,
					EntityID:   "artist-1",
					OccurredAt: now,
				})
				So(err, ShouldBeNil)
				So(d, ShouldEqual, eventlog.Durable)
			}

			Convey("Then the tail should hold one JSON line per event", func() {
				raw, err := log.ReadTail(ctx, 1<<20)
				So(err, ShouldBeNil)

				lines := bytes.Split(bytes.TrimSpace(raw), []byte{'\n'})
				So(len(lines), ShouldEqual, 5)

				var ev model.Event
				So(json.Unmarshal(lines[0], &ev), ShouldBeNil)
				So(ev.ID, ShouldEqual, "evt-a")
				So(ev.Type, ShouldEqual, model.EventView)
				So(ev.EntityID, ShouldEqual, "artist-1")
			})

			Convey("Then a bounded tail read should drop the partial first line", func() {
				full, err := log.ReadTail(ctx, 1<<20)
				So(err, ShouldBeNil)

				// Read a byte count that lands mid-line.
				raw, err := log.ReadTail(ctx, int64(len(full))-10)
				So(err, ShouldBeNil)

				lines := bytes.Split(bytes.TrimSpace(raw), []byte{'\n'})
				So(len(lines), ShouldEqual, 4)
				for _, line := range lines {
					var ev model.Event
					So(json.Unmarshal(line, &ev), ShouldBeNil)
				}
			})
		})

		Convey("When the log directory does not exist yet", func() {
			nested := filepath.Join(t.TempDir(), "deep", "dir", "events.log")
			l, err := eventlog.Open(nested)

			Convey("Then Open should create it", func() {
				So(err, ShouldBeNil)
				So(l.Path(), ShouldEqual, nested)
				So(l.Close(), ShouldBeNil)
			})
		})

		Convey("When reading the tail of an empty log", func() {
			raw, err := log.ReadTail(ctx, 1<<20)
			So(err, ShouldBeNil)
			So(len(raw), ShouldEqual, 0)
		})
	})
}

func TestAppendAfterClose(t *testing.T) {
	Convey("Given a closed event log", t, func() {
		path := filepath.Join(t.TempDir(), "events.log")
		log, err := eventlog.Open(path)
		So(err, ShouldBeNil)
		So(log.Close(), ShouldBeNil)

		Convey("When appending", func() {
			d, err := log.Append(context.Background(), model.Event{ID: "x", Type: model.EventView, EntityID: "e"})

			Convey("Then the append should degrade with ErrLogClosed", func() {
				So(d, ShouldEqual, eventlog.Degraded)
				So(err, ShouldEqual, eventlog.ErrLogClosed)
			})
		})

		Convey("Then a second Close should be a no-op", func() {
			So(log.Close(), ShouldBeNil)
		})
	})
}
