// Command smoke checks a running event service end to end.
package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/eventquote/internal/smoke"
	"github.com/okian/eventquote/pkg/logger"
)

// Default configuration constants.
const (
	defaultEvents      = 20
	defaultRSVPs       = 5
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 10 * time.Second
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		eventsURL = flag.String("events-url", "http://localhost:5000", "Base URL of the event service")
		marketURL = flag.String("market-url", "", "Base URL of the market service; empty skips the market check")
		numEvents = flag.Int("events", defaultEvents, "Number of events to create")
		rsvps     = flag.Int("rsvps", defaultRSVPs, "Number of RSVPs per event")
		workers   = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		symbol    = flag.String("symbol", "AAPL", "Symbol used by the market check")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		format    = flag.String("log-format", logger.FormatText, "Log format: text or json")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	cfg := &smoke.Config{
		EventsURL:     *eventsURL,
		MarketURL:     *marketURL,
		NumEvents:     *numEvents,
		RSVPsPerEvent: *rsvps,
		Workers:       *workers,
		Timeout:       *timeout,
		Symbol:        *symbol,
	}

	if _, err := smoke.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "smoke run failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
