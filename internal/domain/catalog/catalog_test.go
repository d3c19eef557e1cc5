package catalog_test

import (
	"testing"

	"github.com/okian/eventquote/internal/domain/catalog"
	"github.com/okian/eventquote/internal/domain/model"
	"github.com/stretchr/testify/assert"
)

func symbols(rs []model.SearchResult) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Symbol)
	}
	return out
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"aapl", []string{"AAPL"}},
		{"AAPL", []string{"AAPL"}},
		{"corp", []string{"MSFT", "NVDA"}},
		{"inc", []string{"AAPL", "GOOGL", "AMZN", "META", "TSLA"}},
		{"chase &", []string{"JPM"}},
		{"xyz", []string{}},
		{"", []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "TSLA", "NVDA", "JPM"}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, symbols(catalog.Search(tt.query)))
		})
	}
}

func TestSearch_ResultsAreSubsetOfCatalog(t *testing.T) {
	all := catalog.All()
	for _, q := range []string{"a", "m", "t", "co", "."} {
		for _, r := range catalog.Search(q) {
			assert.Contains(t, all, r)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := catalog.All()
	a[0].Name = "changed"
	assert.Equal(t, "Apple Inc.", catalog.All()[0].Name)
}
