// Command market serves the stock quote, news and ticker search API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/eventquote/internal/adapters/http/api"
	"github.com/okian/eventquote/internal/adapters/http/server"
	"github.com/okian/eventquote/internal/adapters/http/swagger"
	"github.com/okian/eventquote/internal/adapters/marketdata"
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
		logger.Get().Error(ctx, "market service failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx, config.ScopeMarket)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	log := logger.Named("market")
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}

	go metrics.RunSystemUpdater(ctx)
	return srv.Run(ctx)
}

// newServer builds the market service over the configured provider and
// mounts every route on a new server.
func newServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*server.Server, error) {
	provider, err := marketdata.Open(cfg.Market)
	if err != nil {
		return nil, err
	}
	svc := service.NewMarketService(provider,
		service.WithNewsLimit(cfg.Market.NewsLimit),
		service.WithMarketLogger(log),
	)
	log.Info(ctx, "market data provider ready", logger.String("provider", svc.Provider()))

	srv := server.New("market", cfg.Market.Addr, server.WithLogger(log))
	swagger.Register(ctx, srv.Router())
	api.NewMarketServer(svc,
		api.WithVerboseErrors(cfg.VerboseErrors),
		api.WithCORSOrigin(cfg.Market.CORSOrigin),
		api.WithLogger(log.Named("api")),
	).Register(ctx, srv.Router())

	return srv, nil
}
