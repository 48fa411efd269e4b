package formulas

import (
	"github.com/markcheno/go-talib"
)

// WeightedMovingAverage returns the linearly weighted average of the whole series,
// weighting position i with i+1 so the most recent value counts the most.
//
// Formula:
//
//	WMA = Σ v[i]*(i+1) / (n*(n+1)/2)
func WeightedMovingAverage(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	// go-talib computes a rolling WMA; with the period equal to the series length the
	// last element covers the entire series.
	wma := talib.Wma(values, n)
	return Finite(wma[n-1])
}
