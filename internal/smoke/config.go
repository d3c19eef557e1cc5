// Package smoke exercises a running event service end to end and checks
// that RSVP listings match exactly what was created.
package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	EventsURL     string        // Base URL of the event service
	MarketURL     string        // Base URL of the market service; empty skips the market check
	NumEvents     int           // Number of events to create
	RSVPsPerEvent int           // Number of RSVPs to create per event
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	Symbol        string        // Symbol used by the market check
}

// Stats holds run statistics.
type Stats struct {
	EventsCreated int
	RSVPsCreated  int
	Failed        int
	Mismatches    int
	StartTime     time.Time
	Duration      time.Duration
}

// event is the body posted to /events.
type event struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// rsvp is the body posted to /rsvp.
type rsvp struct {
	EventID string `json:"event_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// document is the subset of a stored document the checks need.
type document struct {
	ID      string `json:"_id"`
	EventID string `json:"event_id"`
	Email   string `json:"email"`
}
