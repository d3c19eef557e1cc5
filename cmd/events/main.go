// Command events serves the event and RSVP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/eventquote/internal/adapters/http/api"
	"github.com/okian/eventquote/internal/adapters/http/server"
	"github.com/okian/eventquote/internal/adapters/http/site"
	"github.com/okian/eventquote/internal/adapters/http/swagger"
	"github.com/okian/eventquote/internal/adapters/mq/publisher"
	service "github.com/okian/eventquote/internal/app"
	"github.com/okian/eventquote/internal/config"
	"github.com/okian/eventquote/pkg/logger"
	"github.com/okian/eventquote/pkg/metrics"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "events service failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Missing document store credentials fail here, before anything is served.
	cfg, err := config.Load(ctx, config.ScopeEvents)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	log := logger.Named("events")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, cleanup, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	go metrics.RunSystemUpdater(ctx)
	return srv.Run(ctx)
}

// newServer starts the event service and mounts every route on a new server.
// cleanup stops the service.
func newServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*server.Server, func(), error) {
	pub := publisher.Open(cfg.Notifier)
	svc := service.NewEventService(
		service.WithStoreConfig(cfg.Events.Store),
		service.WithPublisher(pub),
		service.WithNotifierConfig(cfg.Notifier),
		service.WithEventLogger(log),
	)
	if err := svc.Start(ctx); err != nil {
		_ = pub.Close()
		return nil, nil, err
	}

	srv := server.New("events", cfg.Events.Addr, server.WithLogger(log))
	site.Register(ctx, srv.Router())
	swagger.Register(ctx, srv.Router())
	api.NewEventsServer(svc,
		api.WithVerboseErrors(cfg.VerboseErrors),
		api.WithLogger(log.Named("api")),
	).Register(ctx, srv.Router())

	return srv, svc.Stop, nil
}
