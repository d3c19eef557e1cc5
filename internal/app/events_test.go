package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/eventquote/internal/adapters/repository"
	service "github.com/okian/eventquote/internal/app"
	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	notes  []model.Notification
	closed bool
}

func (p *recordingPublisher) Publish(_ context.Context, n model.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = append(p.notes, n)
	return nil
}

func (p *recordingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *recordingPublisher) collections() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.notes))
	for _, n := range p.notes {
		out = append(out, n.Collection)
	}
	return out
}

// failingStore fails every call after EnsureCollection.
type failingStore struct {
	err    error
	closed bool
}

func (s *failingStore) EnsureCollection(context.Context, string) error { return nil }
func (s *failingStore) Create(context.Context, string, model.Document) (model.Document, error) {
	return nil, s.err
}
func (s *failingStore) List(context.Context, string) ([]model.Document, error) { return nil, s.err }
func (s *failingStore) Close() error                                          { s.closed = true; return nil }

func TestEventService_Lifecycle(t *testing.T) {
	Convey("Given an event service that has not been started", t, func() {
		svc := service.NewEventService(service.WithStore(repository.NewMemoryStore()))
		ctx := context.Background()

		Convey("When calling an operation", func() {
			_, err := svc.ListEvents(ctx)

			Convey("Then it should report that the service is not started", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When starting twice and stopping twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()
			svc.Stop()

			Convey("Then operations should fail again", func() {
				_, err := svc.ListEvents(ctx)
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
			})
		})

		Convey("When the configured store cannot be opened", func() {
			bad := service.NewEventService(service.WithStoreConfig(config.Store{Driver: "sqlite", EventCollection: "events", RSVPCollection: "rsvps"}))
			err := bad.Start(ctx)

			Convey("Then Start should fail with a store error", func() {
				So(errors.Is(err, repository.ErrStore), ShouldBeTrue)
			})
		})

		Convey("When the store is opened from configuration", func() {
			cfg := config.New().Events.Store
			cfg.Driver = config.DriverPebble
			cfg.Path = t.TempDir()
			svc := service.NewEventService(service.WithStoreConfig(cfg))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			Convey("Then both collections should be usable", func() {
				events, err := svc.ListEvents(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldBeEmpty)
				rsvps, err := svc.ListRSVPs(ctx, "e1")
				So(err, ShouldBeNil)
				So(rsvps, ShouldBeEmpty)
			})
		})
	})
}

func TestEventService_Operations(t *testing.T) {
	Convey("Given a started event service over a memory store", t, func() {
		pub := &recordingPublisher{}
		fixed := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
		svc := service.NewEventService(
			service.WithStore(repository.NewMemoryStore()),
			service.WithPublisher(pub),
			service.WithNotifierConfig(config.Notifier{QueueSize: 16, Workers: 1, WriteTimeout: time.Second}),
			service.WithEventClock(func() time.Time { return fixed }),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("When creating a valid event", func() {
			doc, err := svc.CreateEvent(ctx, []byte(`{"title":"Launch","date":"2024-05-01","description":"Party","extra":true}`))

			Convey("Then the stored document should carry every field and an id", func() {
				So(err, ShouldBeNil)
				So(doc.ID(), ShouldNotBeEmpty)
				So(doc["title"], ShouldEqual, "Launch")
				So(doc["extra"], ShouldEqual, true)

				events, err := svc.ListEvents(ctx)
				So(err, ShouldBeNil)
				So(events, ShouldHaveLength, 1)
				So(events[0].ID(), ShouldEqual, doc.ID())
			})

			Convey("Then a notification should be published once the service stops", func() {
				svc.Stop()
				So(pub.collections(), ShouldResemble, []string{"events"})
				So(pub.notes[0].ID, ShouldEqual, doc.ID())
				So(pub.notes[0].CreatedAt.Equal(fixed), ShouldBeTrue)
				So(pub.closed, ShouldBeTrue)
			})
		})

		Convey("When the submitted event carries its own id", func() {
			doc, err := svc.CreateEvent(ctx, []byte(`{"title":"t","date":"d","description":"x","id":"client-ref-42"}`))

			Convey("Then the client id should be kept beside the store id", func() {
				So(err, ShouldBeNil)
				So(doc["id"], ShouldEqual, "client-ref-42")
				So(doc.ID(), ShouldNotBeEmpty)
				So(doc.ID(), ShouldNotEqual, "client-ref-42")

				events, err := svc.ListEvents(ctx)
				So(err, ShouldBeNil)
				So(events[0]["id"], ShouldEqual, "client-ref-42")
			})
		})

		Convey("When creating an event with a missing field", func() {
			_, err := svc.CreateEvent(ctx, []byte(`{"title":"Launch","date":"2024-05-01"}`))

			Convey("Then it should fail validation and store nothing", func() {
				So(errors.Is(err, model.ErrMissingFields), ShouldBeTrue)
				events, _ := svc.ListEvents(ctx)
				So(events, ShouldBeEmpty)
			})
		})

		Convey("When RSVPs reference several events", func() {
			for _, body := range []string{
				`{"event_id":"e1","name":"Ada","email":"ada@example.com"}`,
				`{"event_id":"e2","name":"Bob","email":"bob@example.com"}`,
				`{"event_id":"e1","name":"Cy","email":"cy@example.com"}`,
			} {
				_, err := svc.CreateRSVP(ctx, []byte(body))
				So(err, ShouldBeNil)
			}

			Convey("Then listing by event id should return only matching RSVPs in creation order", func() {
				rsvps, err := svc.ListRSVPs(ctx, "e1")
				So(err, ShouldBeNil)
				So(rsvps, ShouldHaveLength, 2)
				So(rsvps[0]["name"], ShouldEqual, "Ada")
				So(rsvps[1]["name"], ShouldEqual, "Cy")

				none, err := svc.ListRSVPs(ctx, "e9")
				So(err, ShouldBeNil)
				So(none, ShouldNotBeNil)
				So(none, ShouldBeEmpty)
			})
		})

		Convey("When an RSVP references an event that does not exist", func() {
			doc, err := svc.CreateRSVP(ctx, []byte(`{"event_id":"no-such-event","name":"Ada","email":"a@example.com"}`))

			Convey("Then it should still be created", func() {
				So(err, ShouldBeNil)
				So(doc["event_id"], ShouldEqual, "no-such-event")
			})
		})
	})
}

func TestEventService_StoreFailures(t *testing.T) {
	Convey("Given a started event service whose store fails", t, func() {
		storeErr := errors.New("connection refused")
		store := &failingStore{err: storeErr}
		svc := service.NewEventService(service.WithStore(store))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		Convey("Then every operation should surface the store error", func() {
			_, err := svc.CreateEvent(ctx, []byte(`{"title":"t","date":"d","description":"x"}`))
			So(errors.Is(err, storeErr), ShouldBeTrue)
			_, err = svc.ListEvents(ctx)
			So(errors.Is(err, storeErr), ShouldBeTrue)
			_, err = svc.CreateRSVP(ctx, []byte(`{"event_id":"e","name":"n","email":"m"}`))
			So(errors.Is(err, storeErr), ShouldBeTrue)
			_, err = svc.ListRSVPs(ctx, "e")
			So(errors.Is(err, storeErr), ShouldBeTrue)
		})

		Convey("Then validation should still run before the store is touched", func() {
			_, err := svc.CreateRSVP(ctx, []byte(`{}`))
			So(errors.Is(err, model.ErrMissingFields), ShouldBeTrue)
		})
	})
}
