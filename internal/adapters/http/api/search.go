package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/internal/domain/model"
)

// SearchDependencies defines the catalog search used by SearchHandler.
type SearchDependencies interface {
	Search(ctx context.Context, query string) []model.SearchResult
}

// SearchHandler handles ticker search requests.
type SearchHandler struct {
	deps SearchDependencies
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(deps SearchDependencies) *SearchHandler {
	return &SearchHandler{deps: deps}
}

// HandleSearch handles GET /api/search/{query} requests. It always succeeds.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	results := h.deps.Search(r.Context(), chi.URLParam(r, "query"))
	if results == nil {
		results = []model.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}
