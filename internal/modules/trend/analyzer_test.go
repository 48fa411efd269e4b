package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
)

func monthly(values ...float64) []domain.Point {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	points := make([]domain.Point, len(values))
	for i, v := range values {
		points[i] = domain.Point{Timestamp: start.AddDate(0, i, 0), Value: v}
	}
	return points
}

func newDefault() *Analyzer {
	return NewFromSettings(catalog.Default().Settings().Trend)
}

func TestAnalyze_SignInversion(t *testing.T) {
	a := newDefault()
	series := monthly(6, 5, 4)

	lower := a.Analyze(series, domain.LowerIsBetter, time.Time{})
	higher := a.Analyze(series, domain.HigherIsBetter, time.Time{})

	assert.Equal(t, domain.TrendImproving, lower.Direction)
	assert.Equal(t, domain.TrendWorsening, higher.Direction)
	assert.Equal(t, lower.PercentChange, higher.PercentChange)
	assert.InDelta(t, -33.333, lower.PercentChange, 0.001)
	assert.InDelta(t, -1.0, lower.Slope, 1e-9)
	assert.InDelta(t, 6.0, lower.Intercept, 1e-9)
}

func TestAnalyze_InsufficientData(t *testing.T) {
	a := newDefault()

	tests := []struct {
		name   string
		series []domain.Point
	}{
		{name: "empty", series: nil},
		{name: "single point", series: monthly(10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Analyze(tt.series, domain.HigherIsBetter, time.Time{})
			assert.Equal(t, domain.TrendInsufficientData, got.Direction)
			assert.Zero(t, got.Confidence)
			assert.False(t, got.Sufficient())
		})
	}
}

func TestAnalyze_Stable(t *testing.T) {
	a := newDefault()

	got := a.Analyze(monthly(90, 91, 92), domain.HigherIsBetter, time.Time{})

	assert.Equal(t, domain.TrendStable, got.Direction)
	assert.True(t, got.Sufficient())
	assert.Greater(t, got.Confidence, 95.0)
}

func TestAnalyze_ThresholdIsInclusiveForMovement(t *testing.T) {
	a := NewAnalyzer(Window{}, 5)

	got := a.Analyze(monthly(100, 105), domain.HigherIsBetter, time.Time{})

	assert.Equal(t, domain.TrendImproving, got.Direction)
}

func TestAnalyze_FlatSeriesWithZeroThreshold(t *testing.T) {
	a := NewAnalyzer(Window{}, 0)

	for _, direction := range []domain.Direction{domain.HigherIsBetter, domain.LowerIsBetter} {
		got := a.Analyze(monthly(5, 5, 5), direction, time.Time{})
		assert.Equal(t, domain.TrendStable, got.Direction, direction)
	}

	assert.Equal(t, domain.TrendImproving, a.Analyze(monthly(5, 5.1), domain.HigherIsBetter, time.Time{}).Direction)
}

func TestAnalyze_ZeroFirstValue(t *testing.T) {
	a := newDefault()

	got := a.Analyze(monthly(0, 50), domain.HigherIsBetter, time.Time{})

	assert.Zero(t, got.PercentChange)
	assert.Equal(t, domain.TrendStable, got.Direction)
}

func TestAnalyze_ZeroMeanConfidence(t *testing.T) {
	a := NewAnalyzer(Window{}, 5)

	got := a.Analyze(monthly(-2, 2), domain.HigherIsBetter, time.Time{})

	assert.Zero(t, got.Confidence)
}

func TestAnalyze_ConfidenceIsBounded(t *testing.T) {
	a := NewAnalyzer(Window{}, 5)

	got := a.Analyze(monthly(1, 100, 1, 100), domain.HigherIsBetter, time.Time{})

	assert.GreaterOrEqual(t, got.Confidence, 0.0)
	assert.LessOrEqual(t, got.Confidence, 100.0)
}

func TestFilter_Window(t *testing.T) {
	series := monthly(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	t.Run("lookback", func(t *testing.T) {
		a := NewAnalyzer(Window{Lookback: 92 * 24 * time.Hour}, 5)
		got := a.Filter(series, time.Time{})
		require.Len(t, got, 4)
		assert.Equal(t, 7.0, got[0].Value)
	})

	t.Run("max points", func(t *testing.T) {
		a := NewAnalyzer(Window{MaxPoints: 3}, 5)
		got := a.Filter(series, time.Time{})
		assert.Equal(t, []float64{8, 9, 10}, domain.Values(got))
	})

	t.Run("as of excludes later points", func(t *testing.T) {
		a := NewAnalyzer(Window{}, 5)
		got := a.Filter(series, series[4].Timestamp)
		assert.Len(t, got, 5)
	})
}

func TestAnalyze_ReportsWindow(t *testing.T) {
	a := NewAnalyzer(Window{MaxPoints: 3}, 5)
	series := monthly(1, 2, 3, 4, 5)

	got := a.Analyze(series, domain.HigherIsBetter, time.Time{})

	assert.Equal(t, 3, got.AnalyzedWindow.Points)
	assert.Equal(t, series[2].Timestamp, got.AnalyzedWindow.Start)
	assert.Equal(t, series[4].Timestamp, got.AnalyzedWindow.End)
}

func TestAnalyzeValues(t *testing.T) {
	a := newDefault()

	got := a.AnalyzeValues([]float64{4.5, 5, 5.8}, domain.LowerIsBetter)

	assert.Equal(t, domain.TrendWorsening, got.Direction)
	assert.InDelta(t, 0.65, got.Slope, 1e-9)
}
