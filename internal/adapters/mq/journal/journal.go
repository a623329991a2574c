// Package journal decouples event ingestion from event log disk I/O.
//
// Ingestion applies the in-memory aggregate transition and enqueues the
// event here; a single writer drains the journal into the append-only
// log. The queue is bounded: when it is full the event is dropped from
// the durable path (a degraded, logged outcome), never blocking the
// request.
package journal

import (
	"context"
	"sync"

	"github.com/veloce/artrank/internal/domain/model"
	"github.com/veloce/artrank/pkg/metrics"
)

// defaultCapacity bounds the in-memory journal.
const defaultCapacity = 65536

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds an event to the journal.
	// Returns false when the journal is full or closed.
	Enqueue(ctx context.Context, e model.Event) bool

	// Dequeue returns the channel the writer drains. It is closed when
	// the journal is closed.
	Dequeue(ctx context.Context) <-chan model.Event

	// Len returns the number of journaled events not yet written.
	Len(ctx context.Context) int

	// Close stops accepting events and closes the dequeue channel.
	Close() error

	// IsClosed reports whether the journal has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	events chan model.Event
	cap    int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the journal size.
func WithCapacity(n int) Option {
	return func(q *InMemoryQueue) {
		if n > 0 {
			q.cap = n
		}
	}
}

// NewInMemoryQueue creates a bounded in-memory journal.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{cap: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.events = make(chan model.Event, q.cap)
	metrics.UpdateJournalDepth(0)
	return q
}

// Enqueue adds an event to the journal without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e model.Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}
	select {
	case q.events <- e:
		metrics.UpdateJournalDepth(len(q.events))
		return true
	default:
		return false
	}
}

// Dequeue returns the channel the writer drains.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Event {
	return q.events
}

// Len returns the number of journaled events not yet written.
func (q *InMemoryQueue) Len(ctx context.Context) int {
	return len(q.events)
}

// Close stops accepting events and closes the dequeue channel.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.events)
	q.closed = true
	return nil
}

// IsClosed reports whether the journal has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
