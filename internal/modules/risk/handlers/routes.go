package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all trend and risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/trends/{entity}/{kpi}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetTrend(w, r, chi.URLParam(r, "entity"), chi.URLParam(r, "kpi"))
	})

	r.Route("/risk", func(r chi.Router) {
		r.Get("/heatmap/{period}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetHeatmap(w, r, chi.URLParam(r, "period"))
		})
		r.Get("/{entity}/{kpi}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetAssessment(w, r, chi.URLParam(r, "entity"), chi.URLParam(r, "kpi"))
		})
	})
}
