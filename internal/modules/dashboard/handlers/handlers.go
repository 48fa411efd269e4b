// Package handlers provides HTTP handlers for scoring and dashboard operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/internal/modules/dashboard"
	"github.com/aristath/pulse/internal/modules/history"
)

const defaultLeaderboardSize = 5

// Handler handles dashboard HTTP requests
type Handler struct {
	service *dashboard.Service
	log     zerolog.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(service *dashboard.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "dashboard").Logger(),
	}
}

type ingestRequest struct {
	Records []domain.Record `json:"records"`
}

// HandleIngest handles POST /api/observations
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Records) == 0 {
		h.writeError(w, http.StatusBadRequest, "No records provided")
		return
	}

	result, err := h.service.Ingest(r.Context(), req.Records)
	if err != nil {
		h.fail(w, err, "Failed to ingest observations")
		return
	}

	h.writeJSON(w, http.StatusCreated, envelope(result))
}

// HandleGetScoreboard handles GET /api/scores/{period}
func (h *Handler) HandleGetScoreboard(w http.ResponseWriter, r *http.Request, period string) {
	board, err := h.service.Scoreboard(r.Context(), period)
	if err != nil {
		h.fail(w, err, "Failed to compute scoreboard")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(board))
}

// HandleGetEntityScore handles GET /api/scores/{period}/{entity}
func (h *Handler) HandleGetEntityScore(w http.ResponseWriter, r *http.Request, period, entityID string) {
	score, err := h.service.EntityScore(r.Context(), period, entityID)
	if err != nil {
		h.fail(w, err, "Failed to compute entity score")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(score))
}

// HandleGetLeaderboard handles GET /api/rankings/{period}/{kpi}?n=&order=
func (h *Handler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request, period, kpiID string) {
	n := defaultLeaderboardSize
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid n parameter")
			return
		}
		n = parsed
	}
	order := dashboard.Order(strings.ToLower(r.URL.Query().Get("order")))

	board, err := h.service.Leaderboard(r.Context(), period, kpiID, n, order)
	if err != nil {
		h.fail(w, err, "Failed to compute leaderboard")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(board))
}

// HandleGetRecommendation handles GET /api/recommendations/{kpi}/{tier}.
// KPIs without an entry answer with the fallback action.
func (h *Handler) HandleGetRecommendation(w http.ResponseWriter, r *http.Request, kpiID, tier string) {
	riskTier := domain.RiskTier(strings.ToUpper(tier))
	switch riskTier {
	case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
	default:
		h.writeError(w, http.StatusBadRequest, "Tier must be LOW, MEDIUM or HIGH")
		return
	}

	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"kpi_id":         kpiID,
		"tier":           riskTier,
		"recommendation": h.service.Engine().Selector.Recommend(kpiID, riskTier),
	}))
}

// HandleGetCatalog handles GET /api/catalog
func (h *Handler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.service.Engine().Catalog
	h.writeJSON(w, http.StatusOK, envelope(map[string]interface{}{
		"kpis":     c.Definitions(),
		"settings": c.Settings(),
	}))
}

// HandleGetSummary handles GET /api/summary/{period}
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request, period string) {
	summary, err := h.service.TeamSummary(r.Context(), period)
	if err != nil {
		h.fail(w, err, "Failed to compute team summary")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(summary))
}

// HandleGetPeriods handles GET /api/periods
func (h *Handler) HandleGetPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.service.Periods(r.Context())
	if err != nil {
		h.fail(w, err, "Failed to list periods")
		return
	}
	h.writeJSON(w, http.StatusOK, envelope(periods))
}

func envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
}

// fail maps service errors to HTTP status codes
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

// writeError writes an error response
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
