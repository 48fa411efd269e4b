// Package formulas holds the numeric building blocks shared by the scoring, trend and
// risk engines. Every function guards its degenerate inputs and never returns NaN or Inf.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return Finite(stat.Mean(data, nil))
}

// PopStdDev calculates the population standard deviation (N denominator)
func PopStdDev(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return Finite(std)
}

// CoefficientOfVariation returns stdDev/|mean|*100 using the population standard deviation.
// The absolute mean keeps the ratio non-negative for series centred below zero, such as
// NPS; for positive means it equals stdDev/mean*100. The second return value is false
// when the mean is zero and the ratio is undefined.
func CoefficientOfVariation(data []float64) (float64, bool) {
	if len(data) == 0 {
		return 0, false
	}
	mean, std := stat.PopMeanStdDev(data, nil)
	if mean == 0 || math.IsNaN(mean) || math.IsNaN(std) {
		return 0, false
	}
	return Finite(std / math.Abs(mean) * 100), true
}

// LinearRegression fits value = intercept + slope*index by ordinary least squares,
// using the position in the slice as the regressor so equally spaced periods weigh
// the same. Fewer than two points yield a flat line through the only value (or zero).
func LinearRegression(values []float64) (slope, intercept float64) {
	switch len(values) {
	case 0:
		return 0, 0
	case 1:
		return 0, Finite(values[0])
	}

	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i)
	}

	alpha, beta := stat.LinearRegression(x, values, nil, false)
	return Finite(beta), Finite(alpha)
}

// PercentChange returns (last-first)/first*100, or 0 when first is zero
func PercentChange(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return Finite((last - first) / first * 100)
}

// Clamp bounds value to [min, max]
func Clamp(value, min, max float64) float64 {
	if math.IsNaN(value) {
		return min
	}
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// Finite replaces NaN and ±Inf with zero
func Finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// RoundTo rounds value to the given number of decimals
func RoundTo(value float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return Finite(math.Round(value*p) / p)
}
