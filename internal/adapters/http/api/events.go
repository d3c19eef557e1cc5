package api

import (
	"context"
	"io"
	"net/http"

	"github.com/okian/eventquote/internal/domain/model"
)

// EventDependencies defines the event operations used by EventsHandler.
type EventDependencies interface {
	CreateEvent(ctx context.Context, body []byte) (model.Document, error)
	ListEvents(ctx context.Context) ([]model.Document, error)
}

// EventsHandler handles event requests.
type EventsHandler struct {
	deps EventDependencies
	out  *responder
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps EventDependencies, out *responder) *EventsHandler {
	return &EventsHandler{deps: deps, out: out}
}

// HandleCreate handles POST /events requests.
func (h *EventsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_event"
	body, err := readBody(w, r)
	if err != nil {
		h.out.fail(w, r, WrapKind(op, ErrBadRequest, err))
		return
	}
	doc, err := h.deps.CreateEvent(r.Context(), body)
	if err != nil {
		h.out.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// HandleList handles GET /events requests.
func (h *EventsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_events"
	docs, err := h.deps.ListEvents(r.Context())
	if err != nil {
		h.out.fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, documents(docs))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}
