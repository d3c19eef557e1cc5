package marketdata

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/eventquote/internal/domain/quote"
)

// Finnhub endpoints (token in X-Finnhub-Token):
//
//	GET /quote?symbol=
//	GET /stock/profile2?symbol=
//	GET /stock/metric?symbol=&metric=all
//	GET /company-news?symbol=&from=YYYY-MM-DD&to=YYYY-MM-DD

const (
	finnhubName    = "finnhub"
	finnhubBaseURL = "https://finnhub.io/api/v1"

	// finnhubNewsWindow is how far back company news is requested.
	finnhubNewsWindow = 30 * 24 * time.Hour
)

// Finnhub reads quotes and news from finnhub.io.
type Finnhub struct {
	api *apiClient
	now func() time.Time
}

// NewFinnhub builds a Finnhub provider; WithAPIKey is required by the upstream.
func NewFinnhub(opts ...Option) *Finnhub {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	api := newAPIClient(finnhubName, finnhubBaseURL, o)
	if o.apiKey != "" {
		api.headers.Set("X-Finnhub-Token", o.apiKey)
	}
	return &Finnhub{api: api, now: o.now}
}

// Name implements Provider.
func (f *Finnhub) Name() string { return finnhubName }

type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type finnhubProfile struct {
	Name      string  `json:"name"`
	Ticker    string  `json:"ticker"`
	MarketCap float64 `json:"marketCapitalization"` // millions
}

type finnhubMetrics struct {
	Metric struct {
		YearHigh       float64 `json:"52WeekHigh"`
		YearLow        float64 `json:"52WeekLow"`
		AvgVolume10Day float64 `json:"10DayAverageTradingVolume"` // millions
		PE             float64 `json:"peTTM"`
		DividendYield  float64 `json:"dividendYieldIndicatedAnnual"` // percent
		DividendRate   float64 `json:"dividendPerShareAnnual"`
		EPS            float64 `json:"epsTTM"`
	} `json:"metric"`
}

// Info implements Provider. The upstream quote has no volume, so Volume stays zero.
func (f *Finnhub) Info(ctx context.Context, symbol string) (quote.TickerInfo, error) {
	q := url.Values{"symbol": {symbol}}

	var qt finnhubQuote
	if err := f.api.getJSON(ctx, "quote", "/quote", q, &qt); err != nil {
		return quote.TickerInfo{}, err
	}
	// Finnhub answers unknown symbols with an all-zero quote.
	if qt.Timestamp == 0 && qt.Current == 0 {
		return quote.TickerInfo{}, f.api.wrap("quote", ErrSymbolNotFound)
	}

	var prof finnhubProfile
	if err := f.api.getJSON(ctx, "profile", "/stock/profile2", q, &prof); err != nil {
		return quote.TickerInfo{}, err
	}

	var m finnhubMetrics
	mq := url.Values{"symbol": {symbol}, "metric": {"all"}}
	if err := f.api.getJSON(ctx, "metric", "/stock/metric", mq, &m); err != nil {
		return quote.TickerInfo{}, err
	}

	return quote.TickerInfo{
		LongName:                   prof.Name,
		CurrentPrice:               qt.Current,
		RegularMarketChange:        qt.Change,
		RegularMarketChangePercent: qt.ChangePercent,
		MarketCap:                  prof.MarketCap * 1e6,
		RegularMarketOpen:          qt.Open,
		RegularMarketPreviousClose: qt.PreviousClose,
		DayHigh:                    qt.High,
		DayLow:                     qt.Low,
		FiftyTwoWeekHigh:           m.Metric.YearHigh,
		FiftyTwoWeekLow:            m.Metric.YearLow,
		AverageVolume:              int64(m.Metric.AvgVolume10Day * 1e6),
		TrailingPE:                 m.Metric.PE,
		DividendYield:              m.Metric.DividendYield / 100,
		DividendRate:               m.Metric.DividendRate,
		TrailingEPS:                m.Metric.EPS,
	}, nil
}

type finnhubArticle struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
	Datetime int64  `json:"datetime"`
	Source   string `json:"source"`
	Image    string `json:"image"`
}

// News implements Provider.
func (f *Finnhub) News(ctx context.Context, symbol string, limit int) ([]quote.Article, error) {
	now := f.now().UTC()
	q := url.Values{
		"symbol": {symbol},
		"from":   {now.Add(-finnhubNewsWindow).Format(time.DateOnly)},
		"to":     {now.Format(time.DateOnly)},
	}
	var articles []finnhubArticle
	if err := f.api.getJSON(ctx, "news", "/company-news", q, &articles); err != nil {
		return nil, err
	}

	if limit > 0 && len(articles) > limit {
		articles = articles[:limit]
	}
	out := make([]quote.Article, 0, len(articles))
	for _, a := range articles {
		art := quote.Article{
			UUID:        strconv.FormatInt(a.ID, 10),
			Title:       a.Headline,
			Summary:     a.Summary,
			Link:        a.URL,
			Publisher:   a.Source,
			PublishTime: a.Datetime,
		}
		if a.Image != "" {
			art.Thumbnails = []string{a.Image}
		}
		out = append(out, art)
	}
	return out, nil
}
