// Package worker drains the notification queue into a publisher.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/logger"
	"github.com/okian/eventquote/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 2
	defaultPublishTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Publisher delivers a notification downstream.
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
}

// Queue defines how workers receive notifications.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Notification
}

// Worker publishes notifications read from a queue.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker without waiting for the queue to drain.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue          Queue
	publisher      Publisher
	name           string
	publishTimeout time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, publisher Publisher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:          queue,
		publisher:      publisher,
		name:           "worker",
		publishTimeout: defaultPublishTimeout,
		shutdown:       make(chan struct{}),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	ch := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if err := w.publish(ctx, n); err != nil {
				w.logger.Error(ctx, "publish failed",
					logger.String("collection", n.Collection),
					logger.String("id", n.ID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} {
	return w.done
}

func (w *InMemoryWorker) publish(ctx context.Context, n model.Notification) (err error) { //nolint:gocritic // hugeParam: passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordPublish(float64(time.Since(start).Microseconds())/1000, err != nil)
		if err != nil {
			metrics.RecordErrorByComponent("worker", "publish_error")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.publishTimeout)
	defer cancel()

	if err := w.publisher.Publish(ctx, n); err != nil {
		return fmt.Errorf("publish %s/%s: %w", n.Collection, n.ID, err)
	}
	return nil
}

// Pool manages multiple workers sharing one queue and publisher.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool of workerCount workers.
func NewPool(workerCount int, queue Queue, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   queue,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(queue, publisher, wopts...)
	}
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
}

// Shutdown closes the queue and waits for the workers to publish what is
// left. Workers still busy when ctx (or the pool timeout) expires are stopped.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.Done():
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker drain timed out", logger.Int("worker_id", i))
		}
	}
	if timedOut {
		stopCtx, stop := context.WithTimeout(context.Background(), time.Second)
		defer stop()
		for _, w := range p.workers {
			_ = w.Shutdown(stopCtx)
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	return nil
}
