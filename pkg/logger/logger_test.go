package logger_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/veloce/artrank/pkg/logger"
)

func TestLogger(t *testing.T) {
	convey.Convey("Given the logging package", t, func() {
		ctx := context.Background()

		convey.Convey("When initialized", func() {
			convey.So(logger.Init(), convey.ShouldBeNil)
			l := logger.Get()
			convey.So(l, convey.ShouldNotBeNil)

			convey.Convey("Then all levels should log without panicking", func() {
				convey.So(func() {
					l.Debug(ctx, "debug message", logger.String("k", "v"))
					l.Info(ctx, "info message", logger.Int("n", 1))
					l.Warn(ctx, "warn message", logger.Duration("d", time.Second))
					l.Error(ctx, "error message", logger.Error(errors.New("boom")))
				}, convey.ShouldNotPanic)
			})

			convey.Convey("Then named loggers should be derivable", func() {
				named := l.Named("component")
				convey.So(named, convey.ShouldNotBeNil)
				convey.So(func() { named.Info(ctx, "scoped") }, convey.ShouldNotPanic)

				convey.So(logger.Named("other"), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When JSON output is selected", func() {
			convey.So(logger.Init(logger.WithJSON()), convey.ShouldBeNil)
			convey.So(func() { logger.Get().Info(ctx, "json message") }, convey.ShouldNotPanic)
		})

		convey.Convey("When changing the level", func() {
			convey.So(logger.SetLevelString("debug"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("WARN"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("warning"), convey.ShouldBeNil)
			convey.So(logger.SetLevelString(""), convey.ShouldBeNil)
			convey.So(logger.SetLevelString("loud"), convey.ShouldNotBeNil)
		})

		convey.Convey("When Init was never called", func() {
			// Get installs a default logger on demand.
			convey.So(logger.Get(), convey.ShouldNotBeNil)
		})
	})
}

func TestFieldConstructors(t *testing.T) {
	convey.Convey("Given the field constructors", t, func() {
		now := time.Now()

		convey.Convey("Then each should carry its key and value", func() {
			convey.So(logger.String("s", "v").Key, convey.ShouldEqual, "s")
			convey.So(logger.Int("i", 3).Value, convey.ShouldEqual, 3)
			convey.So(logger.Int64("i64", int64(9)).Value, convey.ShouldEqual, int64(9))
			convey.So(logger.Float64("f", 1.5).Value, convey.ShouldEqual, 1.5)
			convey.So(logger.Duration("d", time.Minute).Value, convey.ShouldEqual, time.Minute)
			convey.So(logger.Time("t", now).Key, convey.ShouldEqual, "t")
			convey.So(logger.Any("a", []int{1}).Key, convey.ShouldEqual, "a")
			convey.So(logger.Error(errors.New("x")).Key, convey.ShouldEqual, "error")
		})
	})
}
