package model_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/veloce/artrank/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestEventTypeValid(t *testing.T) {
	Convey("Given the closed set of event types", t, func() {
		Convey("Then every enumerated type should be valid", func() {
			for _, et := range model.EventTypes() {
				So(et.Valid(), ShouldBeTrue)
			}
		})

		Convey("Then unknown strings should be invalid", func() {
			So(model.EventType("").Valid(), ShouldBeFalse)
			So(model.EventType("clap").Valid(), ShouldBeFalse)
			So(model.EventType("VIEW ").Valid(), ShouldBeFalse)
		})
	})
}

func TestSubmissionNormalize(t *testing.T) {
	Convey("Given a well-formed submission", t, func() {
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		sub := model.Submission{
			Type:     "like",
			EntityID: "artist-42",
			ActorID:  "fan_7",
			WatchMs:  1500,
		}

		Convey("When normalized", func() {
			e, err := sub.Normalize("evt-1", now)

			Convey("Then it should mint a complete event", func() {
				So(err, ShouldBeNil)
				So(e.ID, ShouldEqual, "evt-1")
				So(e.Type, ShouldEqual, model.EventLike)
				So(e.EntityID, ShouldEqual, "artist-42")
				So(e.ActorID, ShouldEqual, "fan_7")
				So(e.OccurredAt.Equal(now), ShouldBeTrue)
				So(e.WatchMs, ShouldEqual, 1500)
			})
		})

		Convey("When the type carries whitespace and uppercase", func() {
			sub.Type = "  VOTE  "
			e, err := sub.Normalize("evt-2", now)

			Convey("Then it should still normalize", func() {
				So(err, ShouldBeNil)
				So(e.Type, ShouldEqual, model.EventVote)
			})
		})
	})

	Convey("Given malformed submissions", t, func() {
		now := time.Now()

		Convey("An unknown type should be rejected", func() {
			_, err := model.Submission{Type: "clap", EntityID: "a"}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrUnknownEventType)
		})

		Convey("A missing entity id should be rejected", func() {
			_, err := model.Submission{Type: "view"}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrMissingEntityID)
		})

		Convey("An entity id outside the charset should be rejected", func() {
			_, err := model.Submission{Type: "view", EntityID: "has space"}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrInvalidEntityID)

			_, err = model.Submission{Type: "view", EntityID: strings.Repeat("x", model.MaxIDLength+1)}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrInvalidEntityID)
		})

		Convey("A bad actor id should be rejected", func() {
			_, err := model.Submission{Type: "view", EntityID: "ok", ActorID: "bad!id"}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrInvalidActorID)
		})

		Convey("A negative watch duration should be rejected", func() {
			_, err := model.Submission{Type: "view", EntityID: "ok", WatchMs: -1}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrNegativeWatchMs)
		})
	})

	Convey("Given clamping rules", t, func() {
		now := time.Now()

		Convey("Watch duration above the cap should be clamped, not rejected", func() {
			e, err := model.Submission{Type: "view", EntityID: "a", WatchMs: model.MaxWatchMs + 500}.Normalize("id", now)
			So(err, ShouldBeNil)
			So(e.WatchMs, ShouldEqual, model.MaxWatchMs)
		})

		Convey("Metadata with too many keys should be rejected", func() {
			meta := make(map[string]any)
			for i := 0; i < model.MaxMetadataKeys+1; i++ {
				meta[strings.Repeat("k", i+1)] = "v"
			}
			_, err := model.Submission{Type: "view", EntityID: "a", Metadata: meta}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrMetadataTooLarge)
		})

		Convey("Oversized metadata strings should be truncated", func() {
			meta := map[string]any{"source": strings.Repeat("s", model.MaxMetadataString+10)}
			e, err := model.Submission{Type: "view", EntityID: "a", Metadata: meta}.Normalize("id", now)
			So(err, ShouldBeNil)
			So(len(e.Metadata["source"].(string)), ShouldEqual, model.MaxMetadataString)
		})

		Convey("Truncation should never split a multi-byte rune", func() {
			// 100 three-byte runes: the byte cap lands mid-rune, so the
			// cut backs up to the previous rune boundary.
			meta := map[string]any{"title": strings.Repeat("日", 100)}
			e, err := model.Submission{Type: "view", EntityID: "a", Metadata: meta}.Normalize("id", now)
			So(err, ShouldBeNil)
			got := e.Metadata["title"].(string)
			So(len(got), ShouldEqual, 255)
			So(utf8.ValidString(got), ShouldBeTrue)
		})

		Convey("Numeric and boolean metadata values should be kept", func() {
			meta := map[string]any{"count": 3, "flag": true}
			e, err := model.Submission{Type: "view", EntityID: "a", Metadata: meta}.Normalize("id", now)
			So(err, ShouldBeNil)
			So(e.Metadata["count"], ShouldEqual, 3.0)
			So(e.Metadata["flag"], ShouldEqual, true)
		})

		Convey("Structured metadata values should be rejected", func() {
			meta := map[string]any{"nested": map[string]any{"a": 1}}
			_, err := model.Submission{Type: "view", EntityID: "a", Metadata: meta}.Normalize("id", now)
			So(err, ShouldEqual, model.ErrMetadataValueKind)
		})
	})
}
