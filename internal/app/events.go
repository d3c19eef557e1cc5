// Package service wires the stores, market data providers and notification
// pipeline behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/eventquote/internal/adapters/mq/publisher"
	"github.com/okian/eventquote/internal/adapters/mq/queue"
	"github.com/okian/eventquote/internal/adapters/mq/worker"
	"github.com/okian/eventquote/internal/adapters/repository"
	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/logger"
	"github.com/okian/eventquote/pkg/metrics"
)

const stopTimeout = 10 * time.Second

// EventService implements the event and RSVP operations.
type EventService struct {
	mu sync.RWMutex

	// Components
	store     repository.Store
	publisher publisher.Publisher
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	// Configuration
	storeCfg        config.Store
	eventCollection string
	rsvpCollection  string
	queueSize       int
	workerCount     int
	publishTimeout  time.Duration
	now             func() time.Time

	started bool
	logger  logger.Logger
}

// EventOption applies a configuration option to the EventService.
type EventOption func(*EventService)

// WithStore injects an already opened store; Start then skips opening one.
func WithStore(s repository.Store) EventOption {
	return func(e *EventService) { e.store = s }
}

// WithStoreConfig selects the store opened by Start.
func WithStoreConfig(cfg config.Store) EventOption {
	return func(e *EventService) {
		e.storeCfg = cfg
		if cfg.EventCollection != "" {
			e.eventCollection = cfg.EventCollection
		}
		if cfg.RSVPCollection != "" {
			e.rsvpCollection = cfg.RSVPCollection
		}
	}
}

// WithPublisher sets where created-document notifications go.
func WithPublisher(p publisher.Publisher) EventOption {
	return func(e *EventService) { e.publisher = p }
}

// WithNotifierConfig sizes the notification queue and worker pool.
func WithNotifierConfig(cfg config.Notifier) EventOption {
	return func(e *EventService) {
		if cfg.QueueSize > 0 {
			e.queueSize = cfg.QueueSize
		}
		if cfg.Workers > 0 {
			e.workerCount = cfg.Workers
		}
		if cfg.WriteTimeout > 0 {
			e.publishTimeout = cfg.WriteTimeout
		}
	}
}

// WithEventLogger sets a custom logger for the service.
func WithEventLogger(l logger.Logger) EventOption {
	return func(e *EventService) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEventClock sets the time source for notification timestamps.
func WithEventClock(now func() time.Time) EventOption {
	return func(e *EventService) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEventService constructs an EventService. Nothing is opened until Start.
func NewEventService(opts ...EventOption) *EventService {
	defaults := config.New()
	s := &EventService{
		storeCfg:        defaults.Events.Store,
		eventCollection: defaults.Events.Store.EventCollection,
		rsvpCollection:  defaults.Events.Store.RSVPCollection,
		queueSize:       defaults.Notifier.QueueSize,
		workerCount:     defaults.Notifier.Workers,
		publishTimeout:  defaults.Notifier.WriteTimeout,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store, creates both collections and starts the
// notification workers.
func (s *EventService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("events")
	}

	s.logger.Info(ctx, "starting event service", logger.String("driver", s.storeCfg.Driver))

	if s.store == nil {
		store, err := repository.Open(ctx, s.storeCfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		s.store = store
	}
	for _, c := range []string{s.eventCollection, s.rsvpCollection} {
		if err := s.store.EnsureCollection(ctx, c); err != nil {
			_ = s.store.Close()
			return fmt.Errorf("ensure collection %s: %w", c, err)
		}
	}

	if s.publisher == nil {
		s.publisher = publisher.NopPublisher{}
	}
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.publisher,
		worker.WithPublishTimeout(s.publishTimeout))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "event service started",
		logger.String("events", s.eventCollection),
		logger.String("rsvps", s.rsvpCollection),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains pending notifications and closes the publisher and store.
func (s *EventService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping event service")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn(ctx, "closing publisher", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "event service stopped")
}

func (s *EventService) running() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// CreateEvent validates body and stores it as a new event.
func (s *EventService) CreateEvent(ctx context.Context, body []byte) (model.Document, error) {
	return s.create(ctx, s.eventCollection, body, model.ParseEvent)
}

// ListEvents returns every stored event.
func (s *EventService) ListEvents(ctx context.Context) ([]model.Document, error) {
	store, err := s.running()
	if err != nil {
		return nil, err
	}
	docs, err := store.List(ctx, s.eventCollection)
	if err != nil {
		return nil, err
	}
	metrics.RecordDocumentsListed(s.eventCollection, len(docs))
	return docs, nil
}

// CreateRSVP validates body and stores it as a new RSVP. The referenced
// event is not looked up.
func (s *EventService) CreateRSVP(ctx context.Context, body []byte) (model.Document, error) {
	return s.create(ctx, s.rsvpCollection, body, model.ParseRSVP)
}

// ListRSVPs returns the RSVPs whose event_id equals eventID.
func (s *EventService) ListRSVPs(ctx context.Context, eventID string) ([]model.Document, error) {
	store, err := s.running()
	if err != nil {
		return nil, err
	}
	docs, err := repository.Filter(ctx, store, s.rsvpCollection, "event_id", eventID)
	if err != nil {
		return nil, err
	}
	metrics.RecordDocumentsListed(s.rsvpCollection, len(docs))
	return docs, nil
}

func (s *EventService) create(ctx context.Context, collection string, body []byte, parse func([]byte) (model.Document, error)) (model.Document, error) {
	store, err := s.running()
	if err != nil {
		return nil, err
	}

	doc, err := parse(body)
	if err != nil {
		metrics.RecordValidationFailure(collection)
		return nil, err
	}

	created, err := store.Create(ctx, collection, doc)
	if err != nil {
		return nil, err
	}
	metrics.RecordDocumentCreated(collection)
	s.notify(ctx, collection, created)
	return created, nil
}

// notify enqueues a notification without blocking; a full queue drops it.
func (s *EventService) notify(ctx context.Context, collection string, doc model.Document) {
	n := model.Notification{
		Collection: collection,
		ID:         doc.ID(),
		Document:   doc,
		CreatedAt:  s.now().UTC(),
	}
	if !s.queue.Enqueue(context.WithoutCancel(ctx), n) {
		s.logger.Warn(ctx, "notification dropped",
			logger.String("collection", collection),
			logger.String("id", n.ID),
		)
	}
}
