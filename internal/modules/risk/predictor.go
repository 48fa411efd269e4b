// Package risk projects the near-term risk of missing a KPI target.
//
// Two strategies coexist and are intentionally kept apart. The momentum strategy
// scores distance to target plus period-over-period movement and feeds the heatmap.
// The forecast strategy blends a regression projection with a weighted moving
// average and feeds the single-KPI forward estimate. They produce different scores
// for the same input.
package risk

import (
	"math"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/pkg/formulas"
)

const (
	maxDistanceScore = 50.0
	maxTrendScore    = 50.0
	distanceFactor   = 5.0
	trendFactor      = 15.0
	goodTrendDamping = 0.7
)

// Config holds the risk tier cut points, both inclusive on their lower bound
type Config struct {
	HighFrom   float64
	MediumFrom float64
}

// DefaultConfig returns the stock risk tier cut points
func DefaultConfig() Config {
	return Config{HighFrom: 70, MediumFrom: 40}
}

// ConfigFromSettings converts catalog risk settings to a predictor config
func ConfigFromSettings(s catalog.RiskSettings) Config {
	return Config{HighFrom: s.Tiers.High, MediumFrom: s.Tiers.Medium}
}

// Predictor evaluates both risk strategies. It holds configuration only.
type Predictor struct {
	cfg Config
}

// NewPredictor creates a predictor
func NewPredictor(cfg Config) *Predictor {
	return &Predictor{cfg: cfg}
}

// NewFromCatalog creates a predictor from the catalog risk settings
func NewFromCatalog(c *catalog.Catalog) *Predictor {
	return NewPredictor(ConfigFromSettings(c.Settings().Risk))
}

// ClassifyRisk maps a 0-100 risk score to its tier
func (p *Predictor) ClassifyRisk(score float64) domain.RiskTier {
	switch {
	case score >= p.cfg.HighFrom:
		return domain.RiskHigh
	case score >= p.cfg.MediumFrom:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// MomentumScore combines the distance to target with the latest movement.
//
// Formula:
//
//	distanceScore = clamp(0, 50, distance*5)
//	bad trend:  trendScore = min(50, |delta|*15)
//	good trend: distanceScore *= 0.7, trendScore = 0
//	score = min(100, distanceScore + trendScore)
func MomentumScore(current, previous, target float64, direction domain.Direction) float64 {
	current, previous = formulas.Finite(current), formulas.Finite(previous)

	distance := target - current
	if direction == domain.LowerIsBetter {
		distance = current - target
	}
	distanceScore := formulas.Clamp(distance*distanceFactor, 0, maxDistanceScore)

	delta := current - previous
	bad := delta < 0
	if direction == domain.LowerIsBetter {
		bad = delta > 0
	}

	var trendScore float64
	if bad {
		trendScore = math.Min(maxTrendScore, math.Abs(delta)*trendFactor)
	} else {
		distanceScore *= goodTrendDamping
	}

	return formulas.Finite(math.Min(100, distanceScore+trendScore))
}

// Momentum assesses risk from the current and previous period readings. The projection
// extends the latest movement one period ahead.
func (p *Predictor) Momentum(current, previous, target float64, direction domain.Direction) domain.RiskAssessment {
	score := MomentumScore(current, previous, target, direction)
	projected := formulas.Finite(current + (current - previous))

	return domain.RiskAssessment{
		Strategy:          domain.StrategyMomentum,
		RiskScore:         score,
		Tier:              p.ClassifyRisk(score),
		ProjectedValue:    projected,
		ProjectionHorizon: 1,
		WillMeetTarget:    domain.MeetsTarget(projected, target, direction),
	}
}

// MomentumFromSeries runs the momentum strategy on the last two values of a series.
// A single value is compared with itself, so only its distance counts.
func (p *Predictor) MomentumFromSeries(values []float64, target float64, direction domain.Direction) domain.RiskAssessment {
	switch len(values) {
	case 0:
		return p.Momentum(0, 0, target, direction)
	case 1:
		return p.Momentum(values[0], values[0], target, direction)
	}
	return p.Momentum(values[len(values)-1], values[len(values)-2], target, direction)
}

// PredictRisk runs the momentum strategy using a computed trend as the momentum signal:
// the trend slope stands in for the period-over-period delta and the projection follows
// the trend's regression line one period past the analyzed window.
func (p *Predictor) PredictRisk(current float64, trend domain.TrendResult, target float64, direction domain.Direction) domain.RiskAssessment {
	slope := 0.0
	if trend.Sufficient() {
		slope = trend.Slope
	}

	score := MomentumScore(current, current-slope, target, direction)

	projected := current
	if trend.Sufficient() {
		projected = trend.Intercept + trend.Slope*float64(trend.AnalyzedWindow.Points)
	}
	projected = formulas.Finite(projected)

	return domain.RiskAssessment{
		Strategy:          domain.StrategyMomentum,
		RiskScore:         score,
		Tier:              p.ClassifyRisk(score),
		ProjectedValue:    projected,
		ProjectionHorizon: 1,
		WillMeetTarget:    domain.MeetsTarget(projected, target, direction),
	}
}

// Estimate returns the forecast strategy's next-period estimate: the mean of the least
// squares prediction at index n and the linearly weighted moving average.
func Estimate(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	slope, intercept := formulas.LinearRegression(values)
	linear := intercept + slope*float64(len(values))
	wma := formulas.WeightedMovingAverage(values)
	return formulas.Finite((linear + wma) / 2)
}

// Forecast assesses risk with the regression and moving-average blend.
//
// The tier compares the estimate with the target: at or better than target is LOW,
// short of it by no more than the KPI's forecast tolerance is MEDIUM, beyond is HIGH.
// The score places the gap inside the matching tier band so that ClassifyRisk(score)
// agrees with the tier. WillMeetTarget is a direct target comparison of the estimate.
// An empty series yields a zero-horizon LOW assessment.
func (p *Predictor) Forecast(values []float64, def domain.KPIDefinition) domain.RiskAssessment {
	if len(values) == 0 {
		return domain.RiskAssessment{
			KPIID:    def.ID,
			Strategy: domain.StrategyForecast,
			Tier:     domain.RiskLow,
		}
	}

	estimate := Estimate(values)
	gap := domain.Gap(estimate, def.Target, def.Direction)
	tolerance := def.ForecastTolerance.Width(def.Target)
	score := p.forecastScore(gap, tolerance)

	return domain.RiskAssessment{
		KPIID:             def.ID,
		Strategy:          domain.StrategyForecast,
		RiskScore:         score,
		Tier:              p.ClassifyRisk(score),
		ProjectedValue:    estimate,
		ProjectionHorizon: 1,
		WillMeetTarget:    domain.MeetsTarget(estimate, def.Target, def.Direction),
	}
}

func (p *Predictor) forecastScore(gap, tolerance float64) float64 {
	if gap <= 0 {
		return 0
	}
	if tolerance <= 0 {
		return 100
	}

	mediumSpan := p.cfg.HighFrom - p.cfg.MediumFrom - 1
	if gap <= tolerance {
		return formulas.Finite(p.cfg.MediumFrom + mediumSpan*gap/tolerance)
	}

	highSpan := 100 - p.cfg.HighFrom
	return formulas.Finite(math.Min(100, p.cfg.HighFrom+highSpan*(gap-tolerance)/tolerance))
}
