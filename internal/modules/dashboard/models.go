package dashboard

import (
	"time"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/scoring"
)

// IngestResult summarizes one ingestion call
type IngestResult struct {
	Periods  []string `json:"periods"`
	Records  int      `json:"records"`
	Received int      `json:"received"`
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"` // readings of unknown KPIs
}

// Scoreboard is the ranked score table of one period
type Scoreboard struct {
	GeneratedAt  time.Time                `json:"generated_at"`
	Period       string                   `json:"period"`
	Entities     []domain.ScoreResult     `json:"entities"`
	TierCounts   map[domain.ScoreTier]int `json:"tier_counts"`
	AverageScore float64                  `json:"average_score"`
}

// Find returns the result of one entity
func (s *Scoreboard) Find(entityID string) (domain.ScoreResult, bool) {
	for _, r := range s.Entities {
		if r.EntityID == entityID {
			return r, true
		}
	}
	return domain.ScoreResult{}, false
}

// EntityScore is one entity's score with its per-KPI breakdown
type EntityScore struct {
	domain.ScoreResult
	Breakdown []scoring.Contribution `json:"breakdown"`
	Penalty   float64                `json:"penalty"`
}

// Order selects the end of a leaderboard
type Order string

const (
	OrderTop    Order = "top"
	OrderBottom Order = "bottom"
)

// Leaderboard is the top or bottom of a single-KPI ranking
type Leaderboard struct {
	Period  string               `json:"period"`
	KPIID   string               `json:"kpi_id"`
	Order   Order                `json:"order"`
	Entries []domain.ScoreResult `json:"entries"`
}

// Assessment is the trend and forward risk of one entity and KPI
type Assessment struct {
	EntityID string  `json:"entity_id"`
	KPIID    string  `json:"kpi_id"`
	Current  float64 `json:"current"`
	Target   float64 `json:"target"`

	Trend domain.TrendResult `json:"trend"`

	// Momentum is the distance plus period-over-period momentum strategy
	Momentum domain.RiskAssessment `json:"momentum"`
	// Forecast is the regression and weighted moving average strategy
	Forecast domain.RiskAssessment `json:"forecast"`
	// Projection is the momentum strategy driven by the fitted trend
	Projection domain.RiskAssessment `json:"projection"`
}

// HeatmapCell is the momentum risk of one entity and KPI
type HeatmapCell struct {
	KPIID    string                `json:"kpi_id"`
	Value    float64               `json:"value"`
	Previous *float64              `json:"previous,omitempty"`
	Status   domain.Status         `json:"status"`
	Risk     domain.RiskAssessment `json:"risk"`
}

// HeatmapRow holds the cells of one entity, in catalog order
type HeatmapRow struct {
	EntityID string        `json:"entity_id"`
	Cells    []HeatmapCell `json:"cells"`
}

// Heatmap is the entity by KPI momentum risk grid of a period
type Heatmap struct {
	Period         string       `json:"period"`
	PreviousPeriod string       `json:"previous_period"`
	KPIs           []string     `json:"kpis"`
	Rows           []HeatmapRow `json:"rows"`
}

// KPISummary is the team-wide aggregate of one KPI
type KPISummary struct {
	KPIID       string        `json:"kpi_id"`
	Label       string        `json:"label"`
	Average     float64       `json:"average"`
	Target      float64       `json:"target"`
	Status      domain.Status `json:"status"`
	MeetsTarget bool          `json:"meets_target"`
	NearTarget  bool          `json:"near_target"`
	Reporting   int           `json:"reporting"` // entities with a reading
	BelowTarget int           `json:"below_target"`
}

// TeamSummary aggregates a period across all entities
type TeamSummary struct {
	Period       string                   `json:"period"`
	Entities     int                      `json:"entities"`
	AverageScore float64                  `json:"average_score"`
	TierCounts   map[domain.ScoreTier]int `json:"tier_counts"`
	KPIs         []KPISummary             `json:"kpis"`
}
