// Package swagger serves the embedded OpenAPI document and Swagger UI.
package swagger

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SpecPath is where the OpenAPI document is served.
const SpecPath = "/openapi.yaml"

// Register attaches Swagger UI and the OpenAPI document routes to r.
// Routes:
//
//	GET /openapi.yaml  -> embedded OpenAPI document
//	GET /swagger/*     -> Swagger UI loading /openapi.yaml
func Register(_ context.Context, r chi.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Get(SpecPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})

	r.Get("/swagger", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/swagger/index.html", http.StatusMovedPermanently)
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(SpecPath)))
}
