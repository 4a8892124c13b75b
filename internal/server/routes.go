package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/inspect", s.handleInspect)
		r.Post("/upgrade", s.handleUpgrade)
		r.Get("/schema", s.handleSchema)

		r.Get("/assets", s.handleListAssets)
		r.Get("/assets/*", s.handleGetAsset)
		r.Put("/assets/*", s.handlePutAsset)
		r.Delete("/assets/*", s.handleDeleteAsset)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "NOT_FOUND", Message: "no route for " + r.URL.Path})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Code: "UNSUPPORTED", Message: r.Method + " not allowed on " + r.URL.Path})
	})
	return r
}
