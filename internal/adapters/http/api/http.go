// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/pkg/logger"
)

// maxBodyBytes bounds creation request bodies.
const maxBodyBytes = 1 << 20

// EventsDependencies is the event/RSVP service as seen by the HTTP layer.
type EventsDependencies interface {
	EventDependencies
	RSVPDependencies
}

// MarketDependencies is the market data service as seen by the HTTP layer.
type MarketDependencies interface {
	QuoteDependencies
	NewsDependencies
	SearchDependencies
}

// Option configures a server.
type Option func(*responder)

// WithVerboseErrors passes store and upstream error messages through to clients.
func WithVerboseErrors(v bool) Option {
	return func(r *responder) { r.verbose = v }
}

// WithLogger sets the logger used for handler failures.
func WithLogger(l logger.Logger) Option {
	return func(r *responder) {
		if l != nil {
			r.log = l
		}
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value of the market API.
// An empty origin disables CORS headers.
func WithCORSOrigin(origin string) Option {
	return func(r *responder) { r.corsOrigin = origin }
}

func newResponder(opts []Option) *responder {
	r := &responder{corsOrigin: "*"}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logger.Get().Named("api")
	}
	return r
}

// EventsServer wires HTTP routes for the event/RSVP service.
type EventsServer struct {
	healthHandler *HealthHandler
	eventsHandler *EventsHandler
	rsvpHandler   *RSVPHandler
}

// NewEventsServer creates the event/RSVP API with all handlers.
func NewEventsServer(deps EventsDependencies, opts ...Option) *EventsServer {
	out := newResponder(opts)
	return &EventsServer{
		healthHandler: NewHealthHandler(),
		eventsHandler: NewEventsHandler(deps, out),
		rsvpHandler:   NewRSVPHandler(deps, out),
	}
}

// Register attaches the event/RSVP routes to r.
func (s *EventsServer) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	s.healthHandler.register(r)
	r.Post("/events", MetricsMiddleware(s.eventsHandler.HandleCreate, "events"))
	r.Get("/events", MetricsMiddleware(s.eventsHandler.HandleList, "events"))
	r.Post("/rsvp", MetricsMiddleware(s.rsvpHandler.HandleCreate, "rsvp"))
	r.Get("/rsvp/{event_id}", MetricsMiddleware(s.rsvpHandler.HandleListByEvent, "rsvp"))
}

// MarketServer wires HTTP routes for the market data service.
type MarketServer struct {
	corsOrigin    string
	healthHandler *HealthHandler
	stockHandler  *StockHandler
	newsHandler   *NewsHandler
	searchHandler *SearchHandler
}

// NewMarketServer creates the market data API with all handlers.
func NewMarketServer(deps MarketDependencies, opts ...Option) *MarketServer {
	out := newResponder(opts)
	return &MarketServer{
		corsOrigin:    out.corsOrigin,
		healthHandler: NewHealthHandler(),
		stockHandler:  NewStockHandler(deps, out),
		newsHandler:   NewNewsHandler(deps, out),
		searchHandler: NewSearchHandler(deps),
	}
}

// Register attaches the market routes under /api to r.
func (s *MarketServer) Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	s.healthHandler.register(r)
	r.Route("/api", func(r chi.Router) {
		r.Use(CORS(s.corsOrigin))
		r.Get("/stock/{symbol}", MetricsMiddleware(s.stockHandler.HandleGetQuote, "stock"))
		r.Get("/news/{symbol}", MetricsMiddleware(s.newsHandler.HandleGetNews, "news"))
		r.Get("/search/{query}", MetricsMiddleware(s.searchHandler.HandleSearch, "search"))
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

// documents keeps empty results encoded as [] rather than null.
func documents(docs []model.Document) []model.Document {
	if docs == nil {
		return []model.Document{}
	}
	return docs
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// responder turns handler failures into logged, classified error payloads.
type responder struct {
	verbose    bool
	corsOrigin string
	log        logger.Logger
}

func (o *responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind, status, msg := resolve(err, o.verbose)
	fields := []logger.Field{
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.String("kind", kind.Error()),
		logger.Int("status", status),
		logger.Error(err),
	}
	if status >= http.StatusInternalServerError {
		o.log.Error(r.Context(), "request failed", fields...)
	} else {
		o.log.Warn(r.Context(), "request rejected", fields...)
	}
	writeError(w, status, msg)
}
