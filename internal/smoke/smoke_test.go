package smoke_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/internal/adapters/http/api"
	"github.com/okian/eventquote/internal/adapters/repository"
	service "github.com/okian/eventquote/internal/app"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/internal/smoke"
	"github.com/okian/eventquote/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

// leakyEvents returns every RSVP regardless of the requested event.
type leakyEvents struct {
	*service.EventService
	store repository.Store
}

func (l leakyEvents) ListRSVPs(ctx context.Context, _ string) ([]model.Document, error) {
	return l.store.List(ctx, "rsvps")
}

func startEvents(t *testing.T, wrap func(*service.EventService, repository.Store) api.EventsDependencies) *httptest.Server {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := service.NewEventService(service.WithStore(store))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start event service: %v", err)
	}
	r := chi.NewRouter()
	api.NewEventsServer(wrap(svc, store)).Register(context.Background(), r)
	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		svc.Stop()
	})
	return srv
}

func healthy(s *service.EventService, _ repository.Store) api.EventsDependencies { return s }

func newMarket(searchBody string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/search/"):
			_, _ = io.WriteString(w, searchBody)
		case strings.HasPrefix(r.URL.Path, "/api/stock/"):
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":"market data unavailable"}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestRun(t *testing.T) {
	Convey("Given a healthy event service", t, func() {
		srv := startEvents(t, healthy)
		cfg := &smoke.Config{
			EventsURL:     srv.URL,
			NumEvents:     6,
			RSVPsPerEvent: 4,
			Workers:       4,
			Timeout:       5 * time.Second,
		}

		Convey("When running the smoke checks", func() {
			stats, err := smoke.Run(context.Background(), cfg)

			Convey("Then every listing should match what was created", func() {
				So(err, ShouldBeNil)
				So(stats.EventsCreated, ShouldEqual, 6)
				So(stats.RSVPsCreated, ShouldEqual, 24)
				So(stats.Mismatches, ShouldEqual, 0)
			})
		})
	})

	Convey("Given an event service that leaks RSVPs across events", t, func() {
		srv := startEvents(t, func(s *service.EventService, st repository.Store) api.EventsDependencies {
			return leakyEvents{EventService: s, store: st}
		})
		cfg := &smoke.Config{
			EventsURL:     srv.URL,
			NumEvents:     2,
			RSVPsPerEvent: 1,
			Workers:       2,
			Timeout:       5 * time.Second,
		}

		Convey("When running the smoke checks", func() {
			stats, err := smoke.Run(context.Background(), cfg)

			Convey("Then the mismatch should be reported", func() {
				So(errors.Is(err, smoke.ErrMismatch), ShouldBeTrue)
				So(stats.Mismatches, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an unreachable event service", t, func() {
		cfg := &smoke.Config{
			EventsURL: "http://127.0.0.1:1",
			NumEvents: 1,
			Workers:   1,
			Timeout:   time.Second,
		}

		Convey("When running the smoke checks", func() {
			_, err := smoke.Run(context.Background(), cfg)

			Convey("Then it should fail before creating anything", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "event service unavailable")
			})
		})
	})
}

func TestRunMarketCheck(t *testing.T) {
	Convey("Given both services", t, func() {
		events := startEvents(t, healthy)
		cfg := &smoke.Config{
			EventsURL:     events.URL,
			NumEvents:     1,
			RSVPsPerEvent: 1,
			Workers:       1,
			Timeout:       5 * time.Second,
			Symbol:        "AAPL",
		}

		Convey("When the upstream quote is unavailable", func() {
			market := newMarket(`[{"symbol":"AAPL","name":"Apple Inc."}]`)
			Reset(market.Close)
			cfg.MarketURL = market.URL
			_, err := smoke.Run(context.Background(), cfg)

			Convey("Then the run should still pass on the catalog search", func() {
				So(err, ShouldBeNil)
			})
		})

		Convey("When the symbol is not in the catalog", func() {
			market := newMarket(`[]`)
			Reset(market.Close)
			cfg.MarketURL = market.URL
			cfg.Symbol = "ZZZZ"
			_, err := smoke.Run(context.Background(), cfg)

			Convey("Then the market check should fail", func() {
				So(errors.Is(err, smoke.ErrMismatch), ShouldBeTrue)
			})
		})
	})
}
