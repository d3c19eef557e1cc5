// Package marketdata fetches quotes and news from upstream market data APIs.
package marketdata

import (
	"context"

	"github.com/okian/eventquote/internal/domain/quote"
)

// Provider is an upstream market data source. Implementations are safe for
// concurrent use and hold their HTTP connections for the process lifetime.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Info returns the quote fields for symbol. Fields the upstream omits are zero.
	Info(ctx context.Context, symbol string) (quote.TickerInfo, error)

	// News returns up to limit recent articles about symbol, newest first.
	News(ctx context.Context, symbol string, limit int) ([]quote.Article, error)
}
