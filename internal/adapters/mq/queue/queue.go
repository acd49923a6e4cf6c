// Package queue holds accepted valentine notes until a worker delivers them.
package queue

import (
	"context"
	"sync"

	"github.com/okian/magicboard/internal/domain/model"
	"github.com/okian/magicboard/pkg/metrics"
)

const defaultCapacity = 10_000

// Note is the payload flowing through the queue.
type Note = model.Valentine

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a note without blocking.
	// Returns ErrFull when at capacity and ErrClosed after Close.
	Enqueue(ctx context.Context, n Note) error

	// Dequeue returns a channel that receives notes in FIFO order.
	// The channel is closed once the queue is closed and drained, or ctx ends.
	Dequeue(ctx context.Context) <-chan Note

	// Len returns the current number of queued notes.
	Len() int

	// Close stops accepting notes. Queued notes remain readable.
	Close() error
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	notes    chan Note
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.notes = make(chan Note, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds a note to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Note) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueRejected("closed")
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		metrics.RecordQueueRejected("context_cancelled")
		return err
	}

	select {
	case q.notes <- n:
		metrics.UpdateQueueSize(len(q.notes))
		return nil
	default:
		metrics.RecordQueueRejected("queue_full")
		return ErrFull
	}
}

// Dequeue returns a channel that will receive notes as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Note {
	out := make(chan Note)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-q.notes:
				if !ok {
					return
				}
				select {
				case out <- n:
					metrics.UpdateQueueSize(len(q.notes))
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued notes.
func (q *InMemoryQueue) Len() int {
	return len(q.notes)
}

// Capacity returns the configured bound.
func (q *InMemoryQueue) Capacity() int {
	return q.capacity
}

// Close stops accepting notes. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.notes)
	q.closed = true
	return nil
}
