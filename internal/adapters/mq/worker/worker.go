// Package worker drains the append journal into the event log.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/veloce/artrank/internal/adapters/eventlog"
	"github.com/veloce/artrank/internal/domain/model"
	"github.com/veloce/artrank/pkg/logger"
	"github.com/veloce/artrank/pkg/metrics"
)

// shutdownTimeout caps how long Shutdown waits for the drain loop.
const shutdownTimeout = 5 * time.Second

// Appender is the durable sink the writer appends to.
type Appender interface {
	Append(ctx context.Context, e model.Event) (eventlog.Durability, error)
}

// Queue defines how the writer receives journaled events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Event
	Len(ctx context.Context) int
}

// LogWriter is the single writer appending journaled events to the
// log. Append failures are logged and swallowed; in-memory state has
// already moved on.
type LogWriter struct {
	queue    Queue
	appender Appender

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the LogWriter.
type Option func(*LogWriter)

// WithLogger sets a custom logger for the writer.
func WithLogger(l logger.Logger) Option {
	return func(w *LogWriter) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewLogWriter creates the writer for the given journal and sink.
func NewLogWriter(queue Queue, appender Appender, opts ...Option) *LogWriter {
	w := &LogWriter{
		queue:    queue,
		appender: appender,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("log-writer")
	}
	return w
}

// Run drains the journal until the channel closes or ctx is canceled.
func (w *LogWriter) Run(ctx context.Context) {
	defer close(w.done)

	events := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			w.drain(ctx, events)
			return
		case <-w.shutdown:
			w.drain(ctx, events)
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			w.append(ctx, e)
			metrics.UpdateJournalDepth(w.queue.Len(ctx))
		}
	}
}

// drain flushes events already buffered in the journal so a clean stop
// never discards an event acked as durable. It returns at the first
// empty read; events enqueued after the stop signal are not waited for.
func (w *LogWriter) drain(ctx context.Context, events <-chan model.Event) {
	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			w.append(ctx, e)
		default:
			metrics.UpdateJournalDepth(w.queue.Len(ctx))
			return
		}
	}
}

func (w *LogWriter) append(ctx context.Context, e model.Event) {
	outcome, err := w.appender.Append(ctx, e)
	metrics.RecordLogAppend(string(outcome))
	if err != nil {
		w.logger.Warn(ctx, "event log append degraded",
			logger.String("event_id", e.ID),
			logger.Error(err),
		)
	}
}

// Shutdown stops the writer, waiting briefly for the drain loop.
func (w *LogWriter) Shutdown(ctx context.Context) error {
	close(w.shutdown)
	select {
	case <-w.done:
		return nil
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("log writer shutdown timed out")
	case <-ctx.Done():
		return fmt.Errorf("log writer shutdown: %w", ctx.Err())
	}
}
