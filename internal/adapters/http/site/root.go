// Package site serves the embedded front-end of the event service.
package site

import (
	"context"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Asset names served by the event service.
const (
	indexFile = "index.html"
	styleFile = "style.css"
)

// Register attaches GET / and GET /style.css to r.
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	h := NewRootHandler()
	r.Get("/", h.HandleRoot)
	r.Get("/"+styleFile, h.HandleStyle)
}

// RootHandler serves the embedded index page and stylesheet.
type RootHandler struct {
	files fs.FS
}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{files: FS()}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.files, indexFile)
}

// HandleStyle handles GET /style.css requests.
func (h *RootHandler) HandleStyle(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, h.files, styleFile)
}
