package domain

import "time"

// AlertSeverity is the severity of an active KPI alert
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Alert is an active alert raised for one entity and KPI
type Alert struct {
	EntityID string        `json:"entity_id"`
	KPIID    string        `json:"kpi_id"`
	Severity AlertSeverity `json:"severity"`
	Value    float64       `json:"value"`
}

// Status is the traffic-light status of a single KPI reading
type Status string

const (
	StatusGreen  Status = "green"
	StatusYellow Status = "yellow"
	StatusRed    Status = "red"
)

// ScoreTier is the classification of a composite score
type ScoreTier string

const (
	TierOptimal ScoreTier = "OPTIMAL"
	TierControl ScoreTier = "CONTROL"
	TierRisk    ScoreTier = "RISK"
)

// Quartile is a rank-based quarter of a population, Q1 being the best
type Quartile string

const (
	Q1 Quartile = "Q1"
	Q2 Quartile = "Q2"
	Q3 Quartile = "Q3"
	Q4 Quartile = "Q4"
)

// ScoreResult is the derived score of one entity for one period
type ScoreResult struct {
	EntityID       string             `json:"entity_id"`
	Period         string             `json:"period"`
	Tier           ScoreTier          `json:"tier"`
	ColorHint      string             `json:"color_hint"`
	Quartile       Quartile           `json:"quartile,omitempty"`
	Values         map[string]float64 `json:"values"`
	Alerts         []Alert            `json:"alerts"`
	CompositeScore float64            `json:"composite_score"`
	Rank           int                `json:"rank,omitempty"`
}

// TrendDirection is the interpreted direction of a KPI series
type TrendDirection string

const (
	TrendImproving        TrendDirection = "improving"
	TrendWorsening        TrendDirection = "worsening"
	TrendStable           TrendDirection = "stable"
	TrendInsufficientData TrendDirection = "insufficient_data"
)

// Window describes the slice of a series that was actually analyzed
type Window struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Points int       `json:"points"`
}

// TrendResult is the trend of one entity and KPI over the analysis window.
// Confidence is a dispersion-based proxy (100 minus the coefficient of variation),
// not a statistical significance measure.
type TrendResult struct {
	AnalyzedWindow Window         `json:"analyzed_window"`
	Direction      TrendDirection `json:"direction"`
	PercentChange  float64        `json:"percent_change"`
	Slope          float64        `json:"slope"`
	Intercept      float64        `json:"intercept"`
	Confidence     float64        `json:"confidence"`
}

// Sufficient reports whether the trend was computed from at least two points
func (t TrendResult) Sufficient() bool {
	return t.Direction != TrendInsufficientData
}

// RiskTier is the classification of a projected risk
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// RiskStrategy names the prediction strategy that produced an assessment
type RiskStrategy string

const (
	// StrategyMomentum combines distance to target with period-over-period momentum
	StrategyMomentum RiskStrategy = "momentum"
	// StrategyForecast blends a regression projection with a weighted moving average
	StrategyForecast RiskStrategy = "forecast"
)

// RiskAssessment is the forward risk of one entity and KPI
type RiskAssessment struct {
	EntityID          string       `json:"entity_id,omitempty"`
	KPIID             string       `json:"kpi_id,omitempty"`
	Strategy          RiskStrategy `json:"strategy"`
	Tier              RiskTier     `json:"tier"`
	Recommendation    string       `json:"recommendation,omitempty"`
	RiskScore         float64      `json:"risk_score"`
	ProjectedValue    float64      `json:"projected_value"`
	ProjectionHorizon int          `json:"projection_horizon"` // periods ahead
	WillMeetTarget    bool         `json:"will_meet_target"`
}
