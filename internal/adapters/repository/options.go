package repository

import (
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Option configures the network-backed stores.
type Option func(*options)

type options struct {
	timeout    time.Duration
	httpClient *http.Client
}

func defaultOptions() options {
	return options{timeout: defaultTimeout}
}

// WithTimeout bounds connection setup and each store call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client CouchStore uses for both the
// database and the IAM token endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}
