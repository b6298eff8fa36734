package api

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter builds the /api router.
func NewRouter(a *API) chi.Router {
	r := chi.NewRouter()
	r.Post("/generate", a.PostGenerate)
	r.Get("/health", a.GetHealth)
	r.Get("/models", a.GetModels)
	r.Route("/docs", func(dr chi.Router) {
		dr.Get("/openapi.json", OpenAPIHandler())
		dr.Get("/", SwaggerHandler())
	})
	return r
}
