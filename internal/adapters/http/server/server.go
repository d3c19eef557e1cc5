// Package server runs a chi router behind an http.Server with graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/okian/eventquote/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Server is one HTTP listener serving a chi router.
type Server struct {
	name            string
	addr            string
	router          chi.Router
	shutdownTimeout time.Duration
	logger          logger.Logger
	srv             *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.shutdownTimeout = d
		}
	}
}

// NewRouter returns a chi router with request ids, real client addresses
// and panic recovery installed.
func NewRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	return r
}

// New creates a Server named name listening on addr. Routes are added to
// Router before Run is called.
func New(name, addr string, opts ...Option) *Server {
	s := &Server{
		name:            name,
		addr:            addr,
		router:          NewRouter(),
		shutdownTimeout: shutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named(name)
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Router returns the router served by s.
func (s *Server) Router() chi.Router {
	return s.router
}

// Handler returns the root handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Run listens on the configured address and serves until ctx is done, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting HTTP server", logger.String("addr", ln.Addr().String()))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve %s: %w", s.name, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error(ctx, "server shutdown failed", logger.Error(err))
		return fmt.Errorf("shutdown %s: %w", s.name, err)
	}
	s.logger.Info(ctx, "server stopped")
	return nil
}
