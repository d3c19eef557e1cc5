// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() builds a Config with defaults; Load layers file and env on top.
// - Validate reports every problem wrapped in ErrInvalidConfig.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store drivers understood by the event service.
const (
	DriverMemory   = "memory"
	DriverPebble   = "pebble"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverCouchDB  = "couchdb"
)

// CouchDB authentication modes. IAM trades the API key for a bearer token
// (IBM Cloudant); basic sends username and API key as credentials.
const (
	CouchAuthIAM   = "iam"
	CouchAuthBasic = "basic"
)

// Scope names the configuration sections one binary depends on.
type Scope string

// Validation scopes.
const (
	ScopeEvents Scope = "events"
	ScopeMarket Scope = "market"
)

// Market data providers understood by the market service.
const (
	ProviderYahoo   = "yahoo"
	ProviderFinnhub = "finnhub"
)

// maxNewsItems caps GET /api/news regardless of configuration.
const maxNewsItems = 10

// Config contains process configuration shared by both binaries.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// VerboseErrors passes store and upstream error messages through to clients.
	VerboseErrors bool `koanf:"verbose_errors"`

	Events   Events   `koanf:"events"`
	Market   Market   `koanf:"market"`
	Notifier Notifier `koanf:"notifier"`
}

// Events configures the event/RSVP service.
type Events struct {
	// Addr configures the HTTP listen address, e.g. ":5000".
	Addr  string `koanf:"addr"`
	Store Store  `koanf:"store"`
}

// Store configures the document store client.
type Store struct {
	Driver string `koanf:"driver"`

	// Path is the pebble data directory.
	Path string `koanf:"path"`

	// DSN is the postgres connection string.
	DSN string `koanf:"dsn"`

	// URL is the CouchDB/Cloudant account URL or the MongoDB URI.
	URL      string `koanf:"url"`
	Username string `koanf:"username"`
	APIKey   string `koanf:"api_key"`

	// Auth is the couchdb authentication mode; IAMURL overrides the IBM
	// Cloud token endpoint.
	Auth   string `koanf:"auth"`
	IAMURL string `koanf:"iam_url"`

	// Database names the MongoDB database holding both collections.
	Database string `koanf:"database"`

	EventCollection string        `koanf:"event_collection"`
	RSVPCollection  string        `koanf:"rsvp_collection"`
	Timeout         time.Duration `koanf:"timeout"`
}

// Market configures the market data service.
type Market struct {
	Addr       string        `koanf:"addr"`
	Provider   string        `koanf:"provider"`
	BaseURL    string        `koanf:"base_url"`
	CookieURL  string        `koanf:"cookie_url"`
	APIKey     string        `koanf:"api_key"`
	Timeout    time.Duration `koanf:"timeout"`
	UserAgent  string        `koanf:"user_agent"`
	NewsLimit  int           `koanf:"news_limit"`
	CORSOrigin string        `koanf:"cors_origin"`
}

// Notifier configures created-document notifications.
type Notifier struct {
	Enabled      bool          `koanf:"enabled"`
	Brokers      []string      `koanf:"brokers"`
	Topic        string        `koanf:"topic"`
	QueueSize    int           `koanf:"queue_size"`
	Workers      int           `koanf:"workers"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Events: Events{
			Addr: ":5000",
			Store: Store{
				Driver:          DriverMemory,
				Path:            "data/pebble",
				Database:        "eventquote",
				Auth:            CouchAuthIAM,
				EventCollection: "events",
				RSVPCollection:  "rsvps",
				Timeout:         10 * time.Second,
			},
		},
		Market: Market{
			Addr:       ":5001",
			Provider:   ProviderYahoo,
			Timeout:    10 * time.Second,
			UserAgent:  "eventquote/1.0",
			NewsLimit:  maxNewsItems,
			CORSOrigin: "*",
		},
		Notifier: Notifier{
			Topic:        "eventquote.documents",
			QueueSize:    1024,
			Workers:      2,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Validate checks the sections named by scopes, or every section when none
// is given, and reports every problem found.
func (c *Config) Validate(scopes ...Scope) error {
	events, market := len(scopes) == 0, len(scopes) == 0
	for _, s := range scopes {
		switch s {
		case ScopeEvents:
			events = true
		case ScopeMarket:
			market = true
		}
	}

	var errs []error
	if events {
		errs = append(errs, c.validateEvents()...)
	}
	if market {
		errs = append(errs, c.validateMarket()...)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (c *Config) validateEvents() []error {
	var errs []error
	if strings.TrimSpace(c.Events.Addr) == "" {
		errs = append(errs, errors.New("events.addr must not be empty"))
	}
	errs = append(errs, c.Events.Store.validate()...)

	if c.Notifier.Enabled {
		if len(c.Notifier.Brokers) == 0 {
			errs = append(errs, errors.New("notifier.brokers must not be empty when enabled"))
		}
		if c.Notifier.Topic == "" {
			errs = append(errs, errors.New("notifier.topic must not be empty when enabled"))
		}
	}
	return errs
}

func (c *Config) validateMarket() []error {
	var errs []error
	if strings.TrimSpace(c.Market.Addr) == "" {
		errs = append(errs, errors.New("market.addr must not be empty"))
	}

	switch c.Market.Provider {
	case ProviderYahoo:
	case ProviderFinnhub:
		if c.Market.APIKey == "" {
			errs = append(errs, errors.New("market.api_key is required for finnhub"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown market.provider %q", c.Market.Provider))
	}
	if c.Market.NewsLimit < 1 || c.Market.NewsLimit > maxNewsItems {
		errs = append(errs, fmt.Errorf("market.news_limit must be between 1 and %d", maxNewsItems))
	}
	return errs
}

func (s Store) validate() []error {
	var errs []error
	if s.EventCollection == "" || s.RSVPCollection == "" {
		errs = append(errs, errors.New("events.store collections must not be empty"))
	}
	switch s.Driver {
	case DriverMemory:
	case DriverPebble:
		if s.Path == "" {
			errs = append(errs, errors.New("events.store.path is required for pebble"))
		}
	case DriverPostgres:
		if s.DSN == "" {
			errs = append(errs, errors.New("events.store.dsn is required for postgres"))
		}
	case DriverMongo:
		if s.URL == "" {
			errs = append(errs, errors.New("events.store.url is required for mongo"))
		}
	case DriverCouchDB:
		switch s.Auth {
		case CouchAuthIAM:
			// The account name only matters when it has to form the URL.
			if s.APIKey == "" || (s.Username == "" && s.URL == "") {
				errs = append(errs, ErrMissingCredentials)
			}
		case CouchAuthBasic:
			if s.Username == "" || s.APIKey == "" {
				errs = append(errs, ErrMissingCredentials)
			}
		default:
			errs = append(errs, fmt.Errorf("unknown events.store.auth %q", s.Auth))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.store.driver %q", s.Driver))
	}
	return errs
}
