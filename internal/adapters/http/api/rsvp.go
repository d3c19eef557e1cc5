package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/okian/eventquote/internal/domain/model"
)

// RSVPDependencies defines the RSVP operations used by RSVPHandler.
type RSVPDependencies interface {
	CreateRSVP(ctx context.Context, body []byte) (model.Document, error)
	ListRSVPs(ctx context.Context, eventID string) ([]model.Document, error)
}

// RSVPHandler handles RSVP requests.
type RSVPHandler struct {
	deps RSVPDependencies
	out  *responder
}

// NewRSVPHandler creates a new RSVP handler.
func NewRSVPHandler(deps RSVPDependencies, out *responder) *RSVPHandler {
	return &RSVPHandler{deps: deps, out: out}
}

// HandleCreate handles POST /rsvp requests. The referenced event is not checked.
func (h *RSVPHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_rsvp"
	body, err := readBody(w, r)
	if err != nil {
		h.out.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	doc, err := h.deps.CreateRSVP(r.Context(), body)
	if err != nil {
		h.out.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// HandleListByEvent handles GET /rsvp/{event_id} requests.
func (h *RSVPHandler) HandleListByEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_rsvps"
	docs, err := h.deps.ListRSVPs(r.Context(), chi.URLParam(r, "event_id"))
	if err != nil {
		h.out.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, documents(docs))
}
