package marketdata

import (
	"fmt"

	"github.com/okian/eventquote/internal/config"
)

// Open builds the Provider selected by cfg.Provider.
func Open(cfg config.Market, opts ...Option) (Provider, error) {
	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithCookieURL(cfg.CookieURL),
		WithAPIKey(cfg.APIKey),
		WithUserAgent(cfg.UserAgent),
		WithTimeout(cfg.Timeout),
	}
	opts = append(base, opts...)

	switch cfg.Provider {
	case config.ProviderYahoo, "":
		return NewYahoo(opts...), nil
	case config.ProviderFinnhub:
		return NewFinnhub(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %w: %q", ErrUpstream, ErrUnknownProvider, cfg.Provider)
	}
}
