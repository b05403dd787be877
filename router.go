package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	httpSwagger "github.com/swaggo/http-swagger"
)

// routes wires middlewares and endpoints. Adjust CORS for your frontend hosts.
func (a *App) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", a.handleHealth)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=60")
		w.Write(openapiYAML)
	})

	r.Mount("/swagger", httpSwagger.Handler(
		httpSwagger.URL("/api/openapi.yaml"),
	))

	r.Route("/api", func(api chi.Router) {
		api.Get("/soil-data/location", a.handleSoilLocation)

		api.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)

			pr.Route("/crop-rotation", func(cr chi.Router) {
				cr.Get("/", a.handleListRotations)
				cr.Post("/", a.handleCreateRotation)
				cr.Get("/field/{fieldId}", a.handleGetRotationByField)
				cr.Get("/{id}", a.handleGetRotation)
				cr.Get("/{id}/analysis", a.handleRotationAnalysis)
				cr.Put("/{id}/add-crop", a.handleAddCrop)
				cr.Post("/{id}/add-crop", a.handleAddCrop)
				cr.Put("/{id}/soil-health", a.handleUpdateSoilHealth)
				cr.Put("/{id}", a.handleUpdateRotationField)
				cr.Delete("/{id}", a.handleDeleteRotation)
			})
		})
	})

	return r
}
