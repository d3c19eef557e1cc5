package marketdata

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/okian/eventquote/internal/domain/quote"
)

// Yahoo Finance public endpoints (no key):
//
//	GET /v1/test/getcrumb (session cookie required)
//	GET /v7/finance/quote?symbols=<symbol>&crumb=<crumb>
//	GET /v1/finance/search?q=<symbol>&newsCount=<n>&quotesCount=0
//
// The session cookie is issued by any response from the cookie page.

const (
	yahooName      = "yahoo"
	yahooBaseURL   = "https://query1.finance.yahoo.com"
	yahooCookieURL = "https://fc.yahoo.com"
)

// Yahoo reads quotes and news from Yahoo Finance.
type Yahoo struct {
	api       *apiClient
	cookieURL string

	mu    sync.Mutex
	crumb string
}

// NewYahoo builds a Yahoo provider.
func NewYahoo(opts ...Option) *Yahoo {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	cookieURL := o.cookieURL
	if cookieURL == "" {
		cookieURL = yahooCookieURL
		if o.baseURL != "" {
			cookieURL = o.baseURL
		}
	}
	return &Yahoo{api: newAPIClient(yahooName, yahooBaseURL, o), cookieURL: cookieURL}
}

// session returns the cached crumb, running the cookie and crumb handshake
// when there is none.
func (y *Yahoo) session(ctx context.Context) (string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	if y.crumb != "" {
		return y.crumb, nil
	}

	if err := y.api.visit(ctx, "cookie", y.cookieURL); err != nil {
		return "", err
	}
	crumb, err := y.api.getText(ctx, "crumb", "/v1/test/getcrumb", nil)
	if err != nil {
		return "", err
	}
	if crumb == "" {
		return "", y.api.wrap("crumb", errors.New("empty crumb"))
	}
	y.crumb = crumb
	return crumb, nil
}

// dropSession forgets crumb if it is still the cached one.
func (y *Yahoo) dropSession(crumb string) {
	y.mu.Lock()
	if y.crumb == crumb {
		y.crumb = ""
	}
	y.mu.Unlock()
}

// quote fetches symbol with a session crumb, renewing the session once when
// the upstream rejects it.
func (y *Yahoo) quote(ctx context.Context, symbol string, out *yahooQuoteResp) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		var crumb string
		crumb, err = y.session(ctx)
		if err != nil {
			return err
		}
		q := url.Values{"symbols": {symbol}, "crumb": {crumb}}
		err = y.api.getJSON(ctx, "quote", "/v7/finance/quote", q, out)
		if !errors.Is(err, ErrUnauthorized) {
			return err
		}
		y.dropSession(crumb)
	}
	return err
}

// Name implements Provider.
func (y *Yahoo) Name() string { return yahooName }

type yahooQuoteResp struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteResponse"`
}

type yahooQuote struct {
	Symbol                      string  `json:"symbol"`
	LongName                    string  `json:"longName"`
	ShortName                   string  `json:"shortName"`
	RegularMarketPrice          float64 `json:"regularMarketPrice"`
	RegularMarketChange         float64 `json:"regularMarketChange"`
	RegularMarketChangePercent  float64 `json:"regularMarketChangePercent"`
	RegularMarketVolume         float64 `json:"regularMarketVolume"`
	MarketCap                   float64 `json:"marketCap"`
	RegularMarketOpen           float64 `json:"regularMarketOpen"`
	RegularMarketPreviousClose  float64 `json:"regularMarketPreviousClose"`
	RegularMarketDayHigh        float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow         float64 `json:"regularMarketDayLow"`
	FiftyTwoWeekHigh            float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow             float64 `json:"fiftyTwoWeekLow"`
	AverageDailyVolume3Month    float64 `json:"averageDailyVolume3Month"`
	TrailingPE                  float64 `json:"trailingPE"`
	TrailingAnnualDividendYield float64 `json:"trailingAnnualDividendYield"`
	TrailingAnnualDividendRate  float64 `json:"trailingAnnualDividendRate"`
	EpsTrailingTwelveMonths     float64 `json:"epsTrailingTwelveMonths"`
}

// Info implements Provider.
func (y *Yahoo) Info(ctx context.Context, symbol string) (quote.TickerInfo, error) {
	var resp yahooQuoteResp
	if err := y.quote(ctx, symbol, &resp); err != nil {
		return quote.TickerInfo{}, err
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return quote.TickerInfo{}, y.api.wrap("quote", errors.New(e.Code+": "+e.Description))
	}

	var r *yahooQuote
	for i := range resp.QuoteResponse.Result {
		if strings.EqualFold(resp.QuoteResponse.Result[i].Symbol, symbol) {
			r = &resp.QuoteResponse.Result[i]
			break
		}
	}
	if r == nil {
		return quote.TickerInfo{}, y.api.wrap("quote", ErrSymbolNotFound)
	}

	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	return quote.TickerInfo{
		LongName:                   name,
		CurrentPrice:               r.RegularMarketPrice,
		RegularMarketChange:        r.RegularMarketChange,
		RegularMarketChangePercent: r.RegularMarketChangePercent,
		Volume:                     int64(r.RegularMarketVolume),
		MarketCap:                  r.MarketCap,
		RegularMarketOpen:          r.RegularMarketOpen,
		RegularMarketPreviousClose: r.RegularMarketPreviousClose,
		DayHigh:                    r.RegularMarketDayHigh,
		DayLow:                     r.RegularMarketDayLow,
		FiftyTwoWeekHigh:           r.FiftyTwoWeekHigh,
		FiftyTwoWeekLow:            r.FiftyTwoWeekLow,
		AverageVolume:              int64(r.AverageDailyVolume3Month),
		TrailingPE:                 r.TrailingPE,
		DividendYield:              r.TrailingAnnualDividendYield,
		DividendRate:               r.TrailingAnnualDividendRate,
		TrailingEPS:                r.EpsTrailingTwelveMonths,
	}, nil
}

type yahooSearchResp struct {
	News []struct {
		UUID                string `json:"uuid"`
		Title               string `json:"title"`
		Summary             string `json:"summary"`
		Publisher           string `json:"publisher"`
		Link                string `json:"link"`
		ProviderPublishTime int64  `json:"providerPublishTime"`
		Thumbnail           *struct {
			Resolutions []struct {
				URL string `json:"url"`
			} `json:"resolutions"`
		} `json:"thumbnail"`
	} `json:"news"`
}

// News implements Provider.
func (y *Yahoo) News(ctx context.Context, symbol string, limit int) ([]quote.Article, error) {
	var resp yahooSearchResp
	q := url.Values{
		"q":           {symbol},
		"newsCount":   {strconv.Itoa(limit)},
		"quotesCount": {"0"},
	}
	if err := y.api.getJSON(ctx, "news", "/v1/finance/search", q, &resp); err != nil {
		return nil, err
	}

	out := make([]quote.Article, 0, len(resp.News))
	for _, n := range resp.News {
		a := quote.Article{
			UUID:        n.UUID,
			Title:       n.Title,
			Summary:     n.Summary,
			Link:        n.Link,
			Publisher:   n.Publisher,
			PublishTime: n.ProviderPublishTime,
		}
		if n.Thumbnail != nil {
			for _, r := range n.Thumbnail.Resolutions {
				a.Thumbnails = append(a.Thumbnails, r.URL)
			}
		}
		out = append(out, a)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
