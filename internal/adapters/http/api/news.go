package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/internal/domain/model"
)

// NewsDependencies defines the news lookup used by NewsHandler.
type NewsDependencies interface {
	News(ctx context.Context, symbol string) ([]model.NewsItem, error)
}

// NewsHandler handles news requests.
type NewsHandler struct {
	deps NewsDependencies
	out  *responder
}

// NewNewsHandler creates a new news handler.
func NewNewsHandler(deps NewsDependencies, out *responder) *NewsHandler {
	return &NewsHandler{deps: deps, out: out}
}

// HandleGetNews handles GET /api/news/{symbol} requests.
func (h *NewsHandler) HandleGetNews(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_news"
	items, err := h.deps.News(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.out.fail(w, r, Wrap(op, err))
		return
	}
	if items == nil {
		items = []model.NewsItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
