package model

// StockQuote is the response of GET /api/stock/{symbol}.
type StockQuote struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"`
	Volume        int64    `json:"volume"`
	MarketCap     string   `json:"marketCap"`
	LastUpdated   string   `json:"lastUpdated"`
	Open          float64  `json:"open"`
	PreviousClose float64  `json:"previousClose"`
	DayHigh       float64  `json:"dayHigh"`
	DayLow        float64  `json:"dayLow"`
	YearHigh      float64  `json:"yearHigh"`
	YearLow       float64  `json:"yearLow"`
	AvgVolume     int64    `json:"avgVolume"`
	PE            float64  `json:"pe"`
	Dividend      Dividend `json:"dividend"`
	EPS           float64  `json:"eps"`
}

// Dividend carries the yield as a percentage and the annual amount.
type Dividend struct {
	Yield  float64 `json:"yield"`
	Amount float64 `json:"amount"`
}

// NewsItem is one element of GET /api/news/{symbol}.
type NewsItem struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	URL           string `json:"url"`
	PublishedDate string `json:"publishedDate"`
	Source        string `json:"source"`
	ImageURL      string `json:"imageUrl"`
}

// SearchResult is one element of GET /api/search/{query}.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
