// Package queue buffers created-document notifications between request
// handlers and the publishing workers.
//
// Enqueue never blocks: a full or closed queue rejects the notification and
// the caller carries on.
package queue

import (
	"context"
	"sync"

	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds n to the queue.
	// Returns false if the queue is full or closed and n was dropped.
	Enqueue(ctx context.Context, n model.Notification) bool

	// Dequeue returns a channel that receives notifications as they become
	// available. The channel is closed once the queue is closed and drained.
	Dequeue(ctx context.Context) <-chan model.Notification

	// Len returns the current number of queued notifications.
	Len(ctx context.Context) int

	// Close stops accepting notifications. Queued ones remain readable.
	Close() error

	// IsClosed returns true if the queue has been closed.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan model.Notification
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan model.Notification, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0)

	return q
}

// Enqueue adds a notification to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n model.Notification) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "closed")
		return false
	}
	if ctx.Err() != nil {
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "context_cancelled")
		return false
	}

	select {
	case q.items <- n:
		metrics.RecordQueueEnqueue()
		q.updateSize()
		return true
	default:
		metrics.RecordQueueEnqueueError()
		metrics.RecordErrorByComponent("queue", "queue_full")
		return false
	}
}

// Dequeue returns a channel that will receive notifications as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.Notification {
	out := make(chan model.Notification)
	go func() {
		defer close(out)
		for n := range q.items {
			select {
			case out <- n:
				metrics.RecordQueueDequeue()
				q.updateSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued notifications.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.updateSize()
}

func (q *InMemoryQueue) updateSize() int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
