package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
}

func TestNewServer(t *testing.T) {
	convey.Convey("Given the market binary pointed at a failing upstream", t, func() {
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
		}))
		convey.Reset(upstream.Close)

		cfg := config.New()
		cfg.Market.BaseURL = upstream.URL

		srv, err := newServer(context.Background(), cfg, logger.Named("test"))
		convey.So(err, convey.ShouldBeNil)
		h := srv.Handler()

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("When searching the catalog", func() {
			w := get("/api/search/corp")

			convey.Convey("Then it should succeed without the upstream", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				var results []model.SearchResult
				convey.So(json.Unmarshal(w.Body.Bytes(), &results), convey.ShouldBeNil)
				convey.So(results, convey.ShouldResemble, []model.SearchResult{
					{Symbol: "MSFT", Name: "Microsoft Corporation"},
					{Symbol: "NVDA", Name: "NVIDIA Corporation"},
				})
			})
		})

		convey.Convey("When requesting a quote and news", func() {
			convey.Convey("Then both should map the upstream failure to 400", func() {
				for _, path := range []string{"/api/stock/AAPL", "/api/news/AAPL"} {
					w := get(path)
					convey.So(w.Code, convey.ShouldEqual, http.StatusBadRequest)
					convey.So(w.Body.String(), convey.ShouldContainSubstring, "market data unavailable")
				}
			})
		})

		convey.Convey("When the docs and health routes are requested", func() {
			convey.Convey("Then they should be served", func() {
				convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
				convey.So(get("/").Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestNewServerUnknownProvider(t *testing.T) {
	convey.Convey("Given an unknown provider", t, func() {
		cfg := config.New()
		cfg.Market.Provider = "bloomberg"

		convey.Convey("When building the server", func() {
			srv, err := newServer(context.Background(), cfg, logger.Named("test"))

			convey.Convey("Then it should fail", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(srv, convey.ShouldBeNil)
			})
		})
	})
}
