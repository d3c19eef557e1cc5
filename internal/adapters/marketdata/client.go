package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/okian/eventquote/pkg/metrics"
)

// apiClient is the HTTP transport shared by the providers. Its client always
// carries a cookie jar so session cookies survive between calls.
type apiClient struct {
	provider  string
	baseURL   string
	userAgent string
	headers   http.Header
	client    *http.Client
}

func newAPIClient(provider, defaultBase string, o options) *apiClient {
	base := o.baseURL
	if base == "" {
		base = defaultBase
	}
	client := o.httpClient
	if client == nil {
		tr := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 60 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 5 * time.Second,
		}
		client = &http.Client{Timeout: o.timeout, Transport: tr}
	}
	if client.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c := *client
		c.Jar = jar
		client = &c
	}
	return &apiClient{
		provider:  provider,
		baseURL:   strings.TrimRight(base, "/"),
		userAgent: o.userAgent,
		headers:   make(http.Header),
		client:    client,
	}
}

// getJSON issues GET baseURL+path?q and decodes the body into out.
func (c *apiClient) getJSON(ctx context.Context, op, path string, q url.Values, out any) (err error) {
	defer c.observe(op, time.Now(), &err)

	resp, err := c.get(ctx, op, path, q, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.wrap(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// getText issues GET baseURL+path?q and returns the trimmed body.
func (c *apiClient) getText(ctx context.Context, op, path string, q url.Values) (_ string, err error) {
	defer c.observe(op, time.Now(), &err)

	resp, err := c.get(ctx, op, path, q, "text/plain")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", c.wrap(op, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// visit fetches rawURL for the cookies it sets. The status is not checked;
// cookie pages commonly answer 404.
func (c *apiClient) visit(ctx context.Context, op, rawURL string) (err error) {
	defer c.observe(op, time.Now(), &err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return c.wrap(op, err)
	}
	c.decorate(req, "text/html")
	resp, err := c.client.Do(req)
	if err != nil {
		return c.wrap(op, err)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return resp.Body.Close()
}

// get returns the response for a 2xx status; the caller closes the body.
func (c *apiClient) get(ctx context.Context, op, path string, q url.Values, accept string) (*http.Response, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	c.decorate(req, accept)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.wrap(op, err)
	}
	if resp.StatusCode/100 == 2 {
		return resp, nil
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, c.wrap(op, fmt.Errorf("%w (%d)", ErrRateLimited, resp.StatusCode))
	case http.StatusUnauthorized:
		return nil, c.wrap(op, fmt.Errorf("%w (%d)", ErrUnauthorized, resp.StatusCode))
	case http.StatusNotFound:
		return nil, c.wrap(op, ErrSymbolNotFound)
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return nil, c.wrap(op, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))))
}

func (c *apiClient) decorate(req *http.Request, accept string) {
	req.Header.Set("Accept", accept)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		req.Header[k] = v
	}
}

func (c *apiClient) observe(op string, start time.Time, err *error) {
	ms := float64(time.Since(start).Microseconds()) / 1000
	metrics.RecordUpstreamRequest(c.provider, op, ms, *err != nil)
}

func (c *apiClient) wrap(op string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrUpstream, c.provider, op, err)
}
