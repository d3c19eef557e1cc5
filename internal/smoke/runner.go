package smoke

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/eventquote/pkg/logger"
)

// ErrMismatch reports that a listing disagreed with what was created.
var ErrMismatch = errors.New("smoke check mismatch")

// Run creates events and RSVPs concurrently, then verifies the listings.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("smoke")
	events := newClient(cfg.EventsURL, cfg.Timeout)
	runID := uuid.NewString()

	log.Info(ctx, "starting smoke run",
		logger.String("eventsURL", cfg.EventsURL),
		logger.String("run", runID),
		logger.Int("events", cfg.NumEvents),
		logger.Int("rsvpsPerEvent", cfg.RSVPsPerEvent),
		logger.Int("workers", cfg.Workers),
	)

	if err := events.getJSON(ctx, "/events", nil); err != nil {
		return stats, fmt.Errorf("event service unavailable: %w", err)
	}

	eventIDs, err := createEvents(ctx, events, cfg, runID, stats)
	if err != nil {
		return stats, err
	}

	// Every event gets its RSVPs submitted in one shuffled stream so creation
	// order interleaves across events.
	want, err := createRSVPs(ctx, events, cfg, eventIDs, stats)
	if err != nil {
		return stats, err
	}

	if err := verifyEvents(ctx, events, eventIDs, stats); err != nil {
		return stats, err
	}
	if err := verifyRSVPs(ctx, events, want, stats); err != nil {
		return stats, err
	}

	if cfg.MarketURL != "" {
		if err := checkMarket(ctx, newClient(cfg.MarketURL, cfg.Timeout), cfg.Symbol); err != nil {
			return stats, err
		}
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "smoke run passed",
		logger.Int("eventsCreated", stats.EventsCreated),
		logger.Int("rsvpsCreated", stats.RSVPsCreated),
		logger.Duration("duration", stats.Duration),
	)
	return stats, nil
}

// parallel runs fn for every index in [0, n) on cfg.Workers goroutines and
// returns the first error.
func parallel(ctx context.Context, workers, n int, fn func(ctx context.Context, i int) error) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for range max(workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := fn(ctx, i); err != nil {
					cancel(err)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range n {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()

	if err := context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return ctx.Err()
}

func createEvents(ctx context.Context, c *client, cfg *Config, runID string, stats *Stats) ([]string, error) {
	ids := make([]string, cfg.NumEvents)
	err := parallel(ctx, cfg.Workers, cfg.NumEvents, func(ctx context.Context, i int) error {
		var doc document
		body := event{
			Title:       fmt.Sprintf("smoke %s #%d", runID, i),
			Date:        time.Now().AddDate(0, 0, i).Format(time.DateOnly),
			Description: "created by the smoke checker",
		}
		if err := c.postJSON(ctx, "/events", body, &doc); err != nil {
			return fmt.Errorf("create event %d: %w", i, err)
		}
		if doc.ID == "" {
			return fmt.Errorf("%w: event %d returned without an id", ErrMismatch, i)
		}
		ids[i] = doc.ID
		return nil
	})
	if err != nil {
		stats.Failed++
		return nil, err
	}
	stats.EventsCreated = len(ids)
	return ids, nil
}

// planRSVPs builds perEvent RSVPs for every event, reordered by shuffle so
// submissions interleave across events.
func planRSVPs(eventIDs []string, perEvent int, shuffle func(n int, swap func(i, j int))) []rsvp {
	bodies := make([]rsvp, 0, len(eventIDs)*perEvent)
	for e, id := range eventIDs {
		for n := range perEvent {
			bodies = append(bodies, rsvp{
				EventID: id,
				Name:    fmt.Sprintf("guest %d of event %d", n, e),
				Email:   fmt.Sprintf("guest-%d-%d-%s@example.com", e, n, uuid.NewString()[:8]),
			})
		}
	}
	shuffle(len(bodies), func(i, j int) { bodies[i], bodies[j] = bodies[j], bodies[i] })
	return bodies
}

func createRSVPs(ctx context.Context, c *client, cfg *Config, eventIDs []string, stats *Stats) (map[string][]string, error) {
	bodies := planRSVPs(eventIDs, cfg.RSVPsPerEvent, rand.Shuffle)
	total := len(bodies)

	err := parallel(ctx, cfg.Workers, total, func(ctx context.Context, i int) error {
		if err := c.postJSON(ctx, "/rsvp", bodies[i], nil); err != nil {
			return fmt.Errorf("create rsvp %d: %w", i, err)
		}
		return nil
	})
	if err != nil {
		stats.Failed++
		return nil, err
	}
	stats.RSVPsCreated = total

	want := make(map[string][]string, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = []string{}
	}
	for _, b := range bodies {
		want[b.EventID] = append(want[b.EventID], b.Email)
	}
	return want, nil
}

func verifyEvents(ctx context.Context, c *client, ids []string, stats *Stats) error {
	var docs []document
	if err := c.getJSON(ctx, "/events", &docs); err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		seen[d.ID] = true
	}
	for _, id := range ids {
		if !seen[id] {
			stats.Mismatches++
			return fmt.Errorf("%w: event %s missing from GET /events", ErrMismatch, id)
		}
	}
	return nil
}

// verifyRSVPs checks that GET /rsvp/{id} returns exactly the RSVPs created
// for id, in any order.
func verifyRSVPs(ctx context.Context, c *client, want map[string][]string, stats *Stats) error {
	for id, emails := range want {
		var docs []document
		if err := c.getJSON(ctx, "/rsvp/"+url.PathEscape(id), &docs); err != nil {
			return fmt.Errorf("list rsvps of %s: %w", id, err)
		}
		got := make([]string, 0, len(docs))
		for _, d := range docs {
			if d.EventID != id {
				stats.Mismatches++
				return fmt.Errorf("%w: rsvp %s of event %s listed under %s", ErrMismatch, d.ID, d.EventID, id)
			}
			got = append(got, d.Email)
		}
		slices.Sort(got)
		expected := slices.Clone(emails)
		slices.Sort(expected)
		if !slices.Equal(got, expected) {
			stats.Mismatches++
			return fmt.Errorf("%w: event %s: got %d rsvps, want %d", ErrMismatch, id, len(got), len(expected))
		}
	}
	return nil
}

// checkMarket checks the catalog search and, when reachable, a live quote.
func checkMarket(ctx context.Context, c *client, symbol string) error {
	var results []struct {
		Symbol string `json:"symbol"`
	}
	if err := c.getJSON(ctx, "/api/search/"+url.PathEscape(symbol), &results); err != nil {
		return fmt.Errorf("market search: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("%w: search %q returned nothing", ErrMismatch, symbol)
	}

	var quote struct {
		Symbol string `json:"symbol"`
	}
	if err := c.getJSON(ctx, "/api/stock/"+url.PathEscape(symbol), &quote); err != nil {
		// Upstream availability is outside the service's control.
		logger.Named("smoke").Warn(ctx, "market quote unavailable", logger.Error(err))
		return nil
	}
	if quote.Symbol != symbol {
		return fmt.Errorf("%w: quote echoed %q for %q", ErrMismatch, quote.Symbol, symbol)
	}
	return nil
}
