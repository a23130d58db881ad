package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all menu routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.HandleGetMenu)           // Full tree
		r.Get("/routes", h.HandleGetRoutes)   // Flattened route table
		r.Get("/paths", h.HandleGetPaths)     // Every declared path
		r.Get("/resolve", h.HandleResolve)    // Path -> view, with fallback
		r.Get("/parent", h.HandleGetParent)   // Top-level parent of a path
		r.Get("/section", h.HandleGetSection) // Header highlight key
		r.Get("/submenu", h.HandleGetSubMenu) // Children of a top-level key
	})
}
