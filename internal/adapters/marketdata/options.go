package marketdata

import (
	"net/http"
	"time"
)

const defaultTimeout = 10 * time.Second

// Option configures a Provider.
type Option func(*options)

type options struct {
	baseURL    string
	cookieURL  string
	apiKey     string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func defaultOptions() options {
	return options{timeout: defaultTimeout, now: time.Now}
}

// WithBaseURL overrides the provider's API root.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithCookieURL sets the page that issues the Yahoo session cookie. When
// empty, the base URL is used if one was given, else https://fc.yahoo.com.
func WithCookieURL(u string) Option {
	return func(o *options) { o.cookieURL = u }
}

// WithAPIKey sets the provider credential.
func WithAPIKey(key string) Option {
	return func(o *options) { o.apiKey = key }
}

// WithUserAgent sets the User-Agent header sent upstream.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// WithTimeout bounds each upstream request.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithHTTPClient replaces the HTTP client; the timeout option is then ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithClock sets the time source used to compute news date ranges.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
