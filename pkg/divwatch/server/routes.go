package server

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the dashboard API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/summary", h.HandleSummary)
		r.Post("/refresh", h.HandleRefresh)
		r.Get("/quotes/{ticker}", h.HandleQuotes)
		r.Get("/dividends/{ticker}", h.HandleDividends)
	})
}
