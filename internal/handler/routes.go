package handler

import (
	"github.com/go-chi/chi/v5"

	"gallery/internal/middleware"
)

func (h *Handler) RegisterRoutes(r chi.Router) {
	// Health check
	r.Get("/health", h.HealthCheck)

	r.Route("/images", func(r chi.Router) {
		r.Get("/", h.ListImages)
		r.Get("/{id}", h.GetImage)
		r.Get("/{id}/history", h.ImageHistory)
		r.Get("/{id}/{variant}", h.ServeVariant)

		// Mutating routes decode and re-encode images, so they are
		// authenticated and rate limited.
		r.Group(func(r chi.Router) {
			r.Use(h.limiter.Middleware())
			r.Use(middleware.RequireAPIKey(h.config.APIKeyHash))

			r.Post("/", h.UploadImage)
			r.Delete("/{id}", h.DeleteImage)
			r.Post("/{id}/operations", h.ApplyOperation)
			r.Post("/{id}/revert", h.RevertImage)
		})
	})
}
