package quote

import (
	"time"

	"github.com/okian/eventquote/internal/domain/model"
)

// MaxNews caps the number of news items returned per symbol.
const MaxNews = 10

// lastUpdatedLabel is reported instead of a staleness timestamp; quotes are
// fetched on every request.
const lastUpdatedLabel = "Just now"

// TickerInfo is the provider-neutral view of an upstream quote. Fields the
// provider does not report stay zero.
type TickerInfo struct {
	LongName                   string
	CurrentPrice               float64
	RegularMarketChange        float64
	RegularMarketChangePercent float64
	Volume                     int64
	MarketCap                  float64
	RegularMarketOpen          float64
	RegularMarketPreviousClose float64
	DayHigh                    float64
	DayLow                     float64
	FiftyTwoWeekHigh           float64
	FiftyTwoWeekLow            float64
	AverageVolume              int64
	TrailingPE                 float64
	// DividendYield is a fraction, e.g. 0.0045 for 0.45%.
	DividendYield float64
	DividendRate  float64
	TrailingEPS   float64
}

// Article is the provider-neutral view of an upstream news item.
type Article struct {
	UUID        string
	Title       string
	Summary     string
	Link        string
	Publisher   string
	PublishTime int64
	// Thumbnails lists image URLs from the preferred resolution down.
	Thumbnails []string
}

// ShapeQuote builds the public quote for symbol from upstream data.
func ShapeQuote(symbol string, info TickerInfo) model.StockQuote {
	return model.StockQuote{
		Symbol:        symbol,
		Name:          info.LongName,
		Price:         info.CurrentPrice,
		Change:        info.RegularMarketChange,
		ChangePercent: info.RegularMarketChangePercent,
		Volume:        info.Volume,
		MarketCap:     FormatMarketCap(info.MarketCap),
		LastUpdated:   lastUpdatedLabel,
		Open:          info.RegularMarketOpen,
		PreviousClose: info.RegularMarketPreviousClose,
		DayHigh:       info.DayHigh,
		DayLow:        info.DayLow,
		YearHigh:      info.FiftyTwoWeekHigh,
		YearLow:       info.FiftyTwoWeekLow,
		AvgVolume:     info.AverageVolume,
		PE:            info.TrailingPE,
		Dividend: model.Dividend{
			Yield:  info.DividendYield * 100,
			Amount: info.DividendRate,
		},
		EPS: info.TrailingEPS,
	}
}

// ShapeNews converts at most limit articles, capped at MaxNews, in upstream order.
func ShapeNews(articles []Article, now time.Time, limit int) []model.NewsItem {
	if limit <= 0 || limit > MaxNews {
		limit = MaxNews
	}
	if len(articles) > limit {
		articles = articles[:limit]
	}

	items := make([]model.NewsItem, 0, len(articles))
	for _, a := range articles {
		image := ""
		if len(a.Thumbnails) > 0 {
			image = a.Thumbnails[0]
		}
		items = append(items, model.NewsItem{
			ID:            a.UUID,
			Title:         a.Title,
			Summary:       a.Summary,
			URL:           a.Link,
			PublishedDate: FormatPublished(a.PublishTime, now),
			Source:        a.Publisher,
			ImageURL:      image,
		})
	}
	return items
}
