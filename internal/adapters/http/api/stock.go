package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/internal/domain/model"
)

// QuoteDependencies defines the quote lookup used by StockHandler.
type QuoteDependencies interface {
	Quote(ctx context.Context, symbol string) (model.StockQuote, error)
}

// StockHandler handles stock quote requests.
type StockHandler struct {
	deps QuoteDependencies
	out  *responder
}

// NewStockHandler creates a new stock handler.
func NewStockHandler(deps QuoteDependencies, out *responder) *StockHandler {
	return &StockHandler{deps: deps, out: out}
}

// HandleGetQuote handles GET /api/stock/{symbol} requests.
func (h *StockHandler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_quote"
	q, err := h.deps.Quote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.out.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, q)
}
