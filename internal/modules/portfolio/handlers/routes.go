package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleCreate)
		r.Get("/current", h.HandleGetCurrent)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.HandleGet)
			r.Put("/", h.HandleUpdate)
			r.Delete("/", h.HandleDelete)
			r.Post("/select", h.HandleSelect)
			r.Get("/valuation", h.HandleGetValuation)   // Totals derived from current positions
			r.Get("/allocation", h.HandleGetAllocation) // Weights and concentration

			r.Post("/stocks", h.HandleAddStock)
			r.Put("/stocks/{stockID}", h.HandleUpdateStockQuantity)
			r.Delete("/stocks/{stockID}", h.HandleRemoveStock)
		})
	})
}
