package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Route("/ui", func(r chi.Router) {
			r.Get("/", h.HandleGetUI)
			r.Put("/theme", h.HandleSetTheme)
			r.Post("/theme/toggle", h.HandleToggleTheme)
			r.Put("/sidebar", h.HandleSetSidebar)
			r.Post("/sidebar/toggle", h.HandleToggleSidebar)
			r.Put("/notifications", h.HandleUpdateNotifications)
			r.Put("/layout", h.HandleUpdateLayout)
		})

		r.Route("/app", func(r chi.Router) {
			r.Get("/", h.HandleGetApp)
			r.Put("/preferences", h.HandleUpdatePreferences)
			r.Post("/preferences/reset", h.HandleResetPreferences)
			r.Put("/features", h.HandleSetFeatures)
			r.Post("/features/{flag}/toggle", h.HandleToggleFeature)
			r.Get("/status", h.HandleGetStatus) // Runtime sync state, not persisted
		})
	})
}
