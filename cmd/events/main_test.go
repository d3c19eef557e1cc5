package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestNewServer(t *testing.T) {
	convey.Convey("Given the events binary wired with a pebble store", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.Events.Store.Driver = config.DriverPebble
		cfg.Events.Store.Path = t.TempDir()

		srv, cleanup, err := newServer(ctx, cfg, logger.Named("test"))
		convey.So(err, convey.ShouldBeNil)
		convey.Reset(cleanup)
		h := srv.Handler()

		call := func(method, path, body string) *httptest.ResponseRecorder {
			var r io.Reader = http.NoBody
			if body != "" {
				r = strings.NewReader(body)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(method, path, r))
			return w
		}

		convey.Convey("When the front-end and docs are requested", func() {
			convey.Convey("Then every static route should be served", func() {
				for _, path := range []string{"/", "/style.css", "/openapi.yaml", "/swagger/index.html", "/healthz"} {
					convey.So(call(http.MethodGet, path, "").Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})

		convey.Convey("When an event and RSVPs go through the full stack", func() {
			w := call(http.MethodPost, "/events", `{"title":"Launch","date":"2024-05-01","description":"Party"}`)
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			var event map[string]any
			convey.So(json.Unmarshal(w.Body.Bytes(), &event), convey.ShouldBeNil)
			id, _ := event["_id"].(string)

			for i := range 3 {
				body := fmt.Sprintf(`{"event_id":%q,"name":"guest-%d","email":"g%d@example.com"}`, id, i, i)
				convey.So(call(http.MethodPost, "/rsvp", body).Code, convey.ShouldEqual, http.StatusCreated)
			}
			convey.So(call(http.MethodPost, "/rsvp", `{"event_id":"other","name":"x","email":"y"}`).Code,
				convey.ShouldEqual, http.StatusCreated)

			convey.Convey("Then the RSVPs of the event should be listed in creation order", func() {
				w := call(http.MethodGet, "/rsvp/"+id, "")
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var rsvps []map[string]any
				convey.So(json.Unmarshal(w.Body.Bytes(), &rsvps), convey.ShouldBeNil)
				convey.So(len(rsvps), convey.ShouldEqual, 3)
				for i, r := range rsvps {
					convey.So(r["name"], convey.ShouldEqual, fmt.Sprintf("guest-%d", i))
				}
			})

			convey.Convey("And the market routes should not exist here", func() {
				convey.So(call(http.MethodGet, "/api/search/a", "").Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestNewServerStoreFailure(t *testing.T) {
	convey.Convey("Given a postgres store that cannot be reached", t, func() {
		cfg := config.New()
		cfg.Events.Store.Driver = config.DriverPostgres
		cfg.Events.Store.DSN = "postgres://u:p@127.0.0.1:1/eq?connect_timeout=1"
		cfg.Events.Store.Timeout = time.Second

		convey.Convey("When building the server", func() {
			srv, cleanup, err := newServer(context.Background(), cfg, logger.Named("test"))

			convey.Convey("Then startup should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(srv, convey.ShouldBeNil)
				convey.So(cleanup, convey.ShouldBeNil)
			})
		})
	})
}
