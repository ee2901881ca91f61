package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all portfolio routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio/{holder}", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio) // Positions, fixed income and total value

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", h.HandleGetPositions)
			r.Put("/", h.HandleReplacePositions) // Full sync from the broker side
			r.Put("/{symbol}", h.HandleUpsertPosition)
			r.Put("/{symbol}/price", h.HandleUpdatePrice)
			r.Delete("/{symbol}", h.HandleDeletePosition)
		})

		r.Route("/fixed-income", func(r chi.Router) {
			r.Get("/", h.HandleGetFixedIncome)
			r.Put("/", h.HandleReplaceFixedIncome)
			r.Delete("/{id}", h.HandleDeleteFixedIncome)
		})
	})
}
