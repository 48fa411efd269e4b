// Package handlers provides HTTP handlers for trend and risk operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/internal/modules/dashboard"
	"github.com/aristath/pulse/internal/modules/history"
)

// Handler handles trend and risk HTTP requests
type Handler struct {
	service *dashboard.Service
	log     zerolog.Logger
}

// NewHandler creates a new risk handler
func NewHandler(service *dashboard.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

// HandleGetTrend handles GET /api/trends/{entity}/{kpi}
func (h *Handler) HandleGetTrend(w http.ResponseWriter, r *http.Request, entityID, kpiID string) {
	trend, err := h.service.Trend(r.Context(), entityID, kpiID)
	if err != nil {
		h.fail(w, err, "Failed to analyze trend")
		return
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"entity_id": entityID,
			"kpi_id":    kpiID,
			"trend":     trend,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetAssessment handles GET /api/risk/{entity}/{kpi}
func (h *Handler) HandleGetAssessment(w http.ResponseWriter, r *http.Request, entityID, kpiID string) {
	assessment, err := h.service.Assess(r.Context(), entityID, kpiID)
	if err != nil {
		h.fail(w, err, "Failed to assess risk")
		return
	}

	response := map[string]interface{}{
		"data": assessment,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetHeatmap handles GET /api/risk/heatmap/{period}
func (h *Handler) HandleGetHeatmap(w http.ResponseWriter, r *http.Request, period string) {
	heatmap, err := h.service.Heatmap(r.Context(), period)
	if err != nil {
		h.fail(w, err, "Failed to compute heatmap")
		return
	}

	response := map[string]interface{}{
		"data": heatmap,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	h.writeJSON(w, http.StatusOK, response)
}

func (h *Handler) fail(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrUnknownKPI), errors.Is(err, history.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg(message)
		h.writeError(w, http.StatusInternalServerError, message)
	}
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
