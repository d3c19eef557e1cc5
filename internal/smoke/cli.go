package smoke

import "os"

// ShowHelp prints usage information for the smoke checker.
func ShowHelp() {
	os.Stdout.WriteString(`eventquote smoke checker
========================

Creates events and RSVPs concurrently against a running event service and
verifies that GET /rsvp/{event_id} returns exactly the RSVPs created for
each event.

Usage:
  go run ./cmd/smoke [options]

Options:
  -events-url string
        Base URL of the event service (default "http://localhost:5000")
  -market-url string
        Base URL of the market service; empty skips the market check
  -events int
        Number of events to create (default 20)
  -rsvps int
        Number of RSVPs per event (default 5)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -symbol string
        Symbol used by the market check (default "AAPL")
  -timeout duration
        HTTP request timeout (default 10s)
  -help
        Show this help message
`)
}
