package service

import (
	"context"
	"time"

	"github.com/okian/eventquote/internal/adapters/marketdata"
	"github.com/okian/eventquote/internal/domain/catalog"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/okian/eventquote/internal/domain/quote"
	"github.com/okian/eventquote/pkg/logger"
	"github.com/okian/eventquote/pkg/metrics"
)

// MarketService shapes upstream market data into API responses. Nothing is
// cached: every call goes to the provider.
type MarketService struct {
	provider  marketdata.Provider
	newsLimit int
	now       func() time.Time
	logger    logger.Logger
}

// MarketOption applies a configuration option to the MarketService.
type MarketOption func(*MarketService)

// WithNewsLimit caps the number of news items; values above quote.MaxNews are clamped.
func WithNewsLimit(n int) MarketOption {
	return func(m *MarketService) {
		if n > 0 && n <= quote.MaxNews {
			m.newsLimit = n
		}
	}
}

// WithMarketClock sets the time source for relative publish dates.
func WithMarketClock(now func() time.Time) MarketOption {
	return func(m *MarketService) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMarketLogger sets a custom logger for the service.
func WithMarketLogger(l logger.Logger) MarketOption {
	return func(m *MarketService) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMarketService constructs a MarketService over provider.
func NewMarketService(provider marketdata.Provider, opts ...MarketOption) *MarketService {
	m := &MarketService{
		provider:  provider,
		newsLimit: quote.MaxNews,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.Get().Named("market")
	}
	return m
}

// Quote returns the current quote for symbol, echoing symbol as given.
func (m *MarketService) Quote(ctx context.Context, symbol string) (model.StockQuote, error) {
	info, err := m.provider.Info(ctx, symbol)
	if err != nil {
		return model.StockQuote{}, err
	}
	return quote.ShapeQuote(symbol, info), nil
}

// News returns up to the configured limit of recent news items for symbol.
func (m *MarketService) News(ctx context.Context, symbol string) ([]model.NewsItem, error) {
	articles, err := m.provider.News(ctx, symbol, m.newsLimit)
	if err != nil {
		return nil, err
	}
	return quote.ShapeNews(articles, m.now(), m.newsLimit), nil
}

// Search matches query against the static catalog. It never fails.
func (m *MarketService) Search(_ context.Context, query string) []model.SearchResult {
	results := catalog.Search(query)
	metrics.RecordSearch(len(results))
	return results
}

// Provider returns the name of the upstream provider.
func (m *MarketService) Provider() string {
	return m.provider.Name()
}
