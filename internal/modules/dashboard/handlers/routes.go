package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all dashboard routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/observations", h.HandleIngest)
	r.Get("/periods", h.HandleGetPeriods)
	r.Get("/catalog", h.HandleGetCatalog)

	r.Route("/scores/{period}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetScoreboard(w, r, chi.URLParam(r, "period"))
		})
		r.Get("/{entity}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetEntityScore(w, r, chi.URLParam(r, "period"), chi.URLParam(r, "entity"))
		})
	})

	r.Get("/rankings/{period}/{kpi}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetLeaderboard(w, r, chi.URLParam(r, "period"), chi.URLParam(r, "kpi"))
	})

	r.Get("/recommendations/{kpi}/{tier}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetRecommendation(w, r, chi.URLParam(r, "kpi"), chi.URLParam(r, "tier"))
	})

	r.Get("/summary/{period}", func(w http.ResponseWriter, r *http.Request) {
		h.HandleGetSummary(w, r, chi.URLParam(r, "period"))
	})
}
