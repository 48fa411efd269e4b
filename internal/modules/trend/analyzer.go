// Package trend classifies the direction of a KPI series over a recency window.
package trend

import (
	"math"
	"time"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/pkg/formulas"
)

// Window bounds the part of a series that is analyzed
type Window struct {
	Lookback  time.Duration // zero disables the time filter
	MaxPoints int           // zero keeps every point inside the lookback
}

// Analyzer computes trend results. It holds configuration only and is safe for
// concurrent use.
type Analyzer struct {
	Window          Window
	StableThreshold float64 // absolute percent change below which a series is stable
}

// NewAnalyzer creates an analyzer
func NewAnalyzer(window Window, stableThreshold float64) *Analyzer {
	return &Analyzer{Window: window, StableThreshold: stableThreshold}
}

// NewFromSettings creates an analyzer from catalog trend settings
func NewFromSettings(s catalog.TrendSettings) *Analyzer {
	return NewAnalyzer(Window{
		Lookback:  time.Duration(s.LookbackDays) * 24 * time.Hour,
		MaxPoints: s.MaxPoints,
	}, s.StableThreshold)
}

// Filter returns the points inside the window ending at asOf. A zero asOf anchors the
// window on the last point. The series must be in chronological order.
func (a *Analyzer) Filter(series []domain.Point, asOf time.Time) []domain.Point {
	if len(series) == 0 {
		return nil
	}
	if asOf.IsZero() {
		asOf = series[len(series)-1].Timestamp
	}

	filtered := make([]domain.Point, 0, len(series))
	for _, p := range series {
		if p.Timestamp.After(asOf) {
			continue
		}
		if a.Window.Lookback > 0 && p.Timestamp.Before(asOf.Add(-a.Window.Lookback)) {
			continue
		}
		filtered = append(filtered, p)
	}

	if a.Window.MaxPoints > 0 && len(filtered) > a.Window.MaxPoints {
		filtered = filtered[len(filtered)-a.Window.MaxPoints:]
	}
	return filtered
}

// Analyze computes the trend of a chronologically ordered series.
//
// Fewer than two points inside the window yield TrendInsufficientData with zero
// confidence. Otherwise slope and intercept come from an index-based least squares
// fit, the direction from the first-to-last percent change, and the confidence from
// the series dispersion as 100 minus the coefficient of variation.
func (a *Analyzer) Analyze(series []domain.Point, direction domain.Direction, asOf time.Time) domain.TrendResult {
	points := a.Filter(series, asOf)

	result := domain.TrendResult{
		Direction: domain.TrendInsufficientData,
		AnalyzedWindow: domain.Window{
			Points: len(points),
		},
	}
	if len(points) > 0 {
		result.AnalyzedWindow.Start = points[0].Timestamp
		result.AnalyzedWindow.End = points[len(points)-1].Timestamp
	}
	if len(points) < 2 {
		return result
	}

	values := domain.Values(points)
	result.Slope, result.Intercept = formulas.LinearRegression(values)
	result.PercentChange = formulas.PercentChange(values[0], values[len(values)-1])
	result.Direction = a.classify(result.PercentChange, direction)
	result.Confidence = Confidence(values)
	return result
}

// AnalyzeValues analyzes a bare value series with no time filtering
func (a *Analyzer) AnalyzeValues(values []float64, direction domain.Direction) domain.TrendResult {
	points := make([]domain.Point, len(values))
	for i, v := range values {
		points[i] = domain.Point{Value: v}
	}
	noWindow := Analyzer{Window: Window{MaxPoints: a.Window.MaxPoints}, StableThreshold: a.StableThreshold}
	return noWindow.Analyze(points, direction, time.Time{})
}

func (a *Analyzer) classify(percentChange float64, direction domain.Direction) domain.TrendDirection {
	if percentChange == 0 || math.Abs(percentChange) < a.StableThreshold {
		return domain.TrendStable
	}

	rising := percentChange > 0
	if direction == domain.LowerIsBetter {
		rising = !rising
	}
	if rising {
		return domain.TrendImproving
	}
	return domain.TrendWorsening
}

// Confidence returns clamp(0, 100, 100 - CV). A zero mean yields zero.
func Confidence(values []float64) float64 {
	cv, ok := formulas.CoefficientOfVariation(values)
	if !ok {
		return 0
	}
	return formulas.Clamp(100-cv, 0, 100)
}
