package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/eventquote/internal/adapters/marketdata"
	service "github.com/okian/eventquote/internal/app"
	"github.com/okian/eventquote/internal/domain/quote"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeProvider struct {
	info      quote.TickerInfo
	articles  []quote.Article
	err       error
	lastLimit int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Info(context.Context, string) (quote.TickerInfo, error) {
	return f.info, f.err
}

func (f *fakeProvider) News(_ context.Context, _ string, limit int) ([]quote.Article, error) {
	f.lastLimit = limit
	return f.articles, f.err
}

func TestMarketService(t *testing.T) {
	Convey("Given a market service over a fake provider", t, func() {
		now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
		p := &fakeProvider{
			info: quote.TickerInfo{LongName: "Apple Inc.", CurrentPrice: 190, MarketCap: 2.3e9, DividendYield: 0.01},
		}
		for i := range 12 {
			p.articles = append(p.articles, quote.Article{
				UUID:        fmt.Sprint(i),
				PublishTime: now.Add(-time.Duration(i) * 24 * time.Hour).Unix(),
			})
		}
		svc := service.NewMarketService(p, service.WithMarketClock(func() time.Time { return now }))
		ctx := context.Background()

		So(svc.Provider(), ShouldEqual, "fake")

		Convey("When requesting a quote", func() {
			q, err := svc.Quote(ctx, "aapl")

			Convey("Then it should be shaped and echo the symbol", func() {
				So(err, ShouldBeNil)
				So(q.Symbol, ShouldEqual, "aapl")
				So(q.Name, ShouldEqual, "Apple Inc.")
				So(q.MarketCap, ShouldEqual, "$2.30B")
				So(q.Dividend.Yield, ShouldEqual, 1.0)
				So(q.LastUpdated, ShouldEqual, "Just now")
			})
		})

		Convey("When requesting news", func() {
			items, err := svc.News(ctx, "AAPL")

			Convey("Then at most ten items should be returned with relative dates", func() {
				So(err, ShouldBeNil)
				So(p.lastLimit, ShouldEqual, 10)
				So(items, ShouldHaveLength, 10)
				So(items[0].PublishedDate, ShouldEqual, "0 mins ago")
				So(items[3].PublishedDate, ShouldEqual, "3 days ago")
				So(items[8].PublishedDate, ShouldEqual, "Mar 12, 2024")
			})
		})

		Convey("When the news limit is lowered", func() {
			svc := service.NewMarketService(p, service.WithNewsLimit(4), service.WithMarketClock(func() time.Time { return now }))
			items, err := svc.News(ctx, "AAPL")

			Convey("Then the lower limit should apply", func() {
				So(err, ShouldBeNil)
				So(p.lastLimit, ShouldEqual, 4)
				So(items, ShouldHaveLength, 4)
			})
		})

		Convey("When the provider fails", func() {
			p.err = fmt.Errorf("%w: boom", marketdata.ErrUpstream)

			Convey("Then quote and news should surface the upstream error", func() {
				_, err := svc.Quote(ctx, "AAPL")
				So(errors.Is(err, marketdata.ErrUpstream), ShouldBeTrue)
				_, err = svc.News(ctx, "AAPL")
				So(errors.Is(err, marketdata.ErrUpstream), ShouldBeTrue)
			})

			Convey("Then search should still work", func() {
				So(svc.Search(ctx, "corp"), ShouldHaveLength, 2)
			})
		})
	})
}
