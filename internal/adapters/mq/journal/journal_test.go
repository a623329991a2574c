package journal_test

import (
	"context"
	"testing"

	"github.com/veloce/artrank/internal/adapters/mq/journal"
	"github.com/veloce/artrank/internal/domain/model"

	"github.com/smartystreets/goconvey/convey"
)

func TestInMemoryQueue(t *testing.T) {
	convey.Convey("Given a bounded journal", t, func() {
		ctx := context.Background()
		q := journal.NewInMemoryQueue(journal.WithCapacity(2))

		convey.Convey("When events are enqueued within capacity", func() {
			ok := q.Enqueue(ctx, model.Event{ID: "1", Type: model.EventView, EntityID: "a"})
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(q.Len(ctx), convey.ShouldEqual, 1)
		})

		convey.Convey("When the journal is full", func() {
			convey.So(q.Enqueue(ctx, model.Event{ID: "1"}), convey.ShouldBeTrue)
			convey.So(q.Enqueue(ctx, model.Event{ID: "2"}), convey.ShouldBeTrue)

			convey.Convey("Then further enqueues should fail without blocking", func() {
				convey.So(q.Enqueue(ctx, model.Event{ID: "3"}), convey.ShouldBeFalse)
				convey.So(q.Len(ctx), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When events are dequeued", func() {
			q.Enqueue(ctx, model.Event{ID: "1"})
			q.Enqueue(ctx, model.Event{ID: "2"})

			first := <-q.Dequeue(ctx)
			second := <-q.Dequeue(ctx)

			convey.Convey("Then arrival order should be preserved", func() {
				convey.So(first.ID, convey.ShouldEqual, "1")
				convey.So(second.ID, convey.ShouldEqual, "2")
			})
		})

		convey.Convey("When the journal is closed", func() {
			q.Enqueue(ctx, model.Event{ID: "1"})
			convey.So(q.Close(), convey.ShouldBeNil)

			convey.Convey("Then it should reject new events", func() {
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
				convey.So(q.Enqueue(ctx, model.Event{ID: "2"}), convey.ShouldBeFalse)
			})

			convey.Convey("Then buffered events should still drain", func() {
				e, ok := <-q.Dequeue(ctx)
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(e.ID, convey.ShouldEqual, "1")

				_, ok = <-q.Dequeue(ctx)
				convey.So(ok, convey.ShouldBeFalse)
			})

			convey.Convey("Then a second close should be a no-op", func() {
				convey.So(q.Close(), convey.ShouldBeNil)
			})
		})
	})
}
