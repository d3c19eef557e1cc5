// Package catalog holds the fixed list of searchable companies.
package catalog

import (
	"strings"

	"github.com/okian/eventquote/internal/domain/model"
)

var entries = []model.SearchResult{
	{Symbol: "AAPL", Name: "Apple Inc."},
	{Symbol: "MSFT", Name: "Microsoft Corporation"},
	{Symbol: "GOOGL", Name: "Alphabet Inc."},
	{Symbol: "AMZN", Name: "Amazon.com Inc."},
	{Symbol: "META", Name: "Meta Platforms Inc."},
	{Symbol: "TSLA", Name: "Tesla Inc."},
	{Symbol: "NVDA", Name: "NVIDIA Corporation"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co."},
}

// All returns a copy of the catalog in its fixed order.
func All() []model.SearchResult {
	out := make([]model.SearchResult, len(entries))
	copy(out, entries)
	return out
}

// Search returns the entries whose symbol or name contains query,
// case-insensitively, in catalog order. An empty query matches everything.
func Search(query string) []model.SearchResult {
	q := strings.ToLower(query)
	out := make([]model.SearchResult, 0, len(entries))
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Symbol), q) || strings.Contains(strings.ToLower(e.Name), q) {
			out = append(out, e)
		}
	}
	return out
}
