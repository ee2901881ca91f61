package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all target allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/targets", func(r chi.Router) {
		r.Get("/profiles", h.HandleGetProfiles)

		r.Route("/{holder}", func(r chi.Router) {
			r.Get("/tree", h.HandleGetTree)
			r.Get("/state", h.HandleGetState)

			r.Put("/class", h.HandleEditClassTarget)
			r.Put("/cap", h.HandleEditCapTarget)
			r.Put("/sector", h.HandleEditSectorTarget)
			r.Put("/ticker", h.HandleEditTickerTarget)

			r.Post("/profile", h.HandleApplyProfile)
			r.Post("/instruments", h.HandleAddInstrument)
			r.Post("/suggestions", h.HandleSuggest)
		})
	})
}
