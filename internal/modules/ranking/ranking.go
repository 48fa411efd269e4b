// Package ranking orders scored entities and partitions them into quartiles.
// Every function returns new slices; inputs are never reordered or modified.
package ranking

import (
	"sort"

	"github.com/aristath/pulse/internal/domain"
)

// Rank orders results by composite score, best first, and sets their 1-based rank.
// Ties keep their input order.
func Rank(results []domain.ScoreResult) []domain.ScoreResult {
	ranked := clone(results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CompositeScore > ranked[j].CompositeScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// RankByKPI orders results by a single KPI reading, best first according to the KPI's
// direction. Results without a reading for the KPI are excluded.
func RankByKPI(results []domain.ScoreResult, def domain.KPIDefinition) []domain.ScoreResult {
	ranked := make([]domain.ScoreResult, 0, len(results))
	for _, r := range results {
		if _, ok := r.Values[def.ID]; ok {
			ranked = append(ranked, copyResult(r))
		}
	}

	higher := def.HigherIsBetter()
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].Values[def.ID], ranked[j].Values[def.ID]
		if higher {
			return a > b
		}
		return a < b
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// QuartileFor returns the quartile of the entity at 0-based position i out of n
func QuartileFor(i, n int) domain.Quartile {
	if n <= 0 {
		return domain.Q4
	}
	pct := float64(i+1) / float64(n)
	switch {
	case pct <= 0.25:
		return domain.Q1
	case pct <= 0.50:
		return domain.Q2
	case pct <= 0.75:
		return domain.Q3
	default:
		return domain.Q4
	}
}

// AssignQuartiles sets the quartile of every entity in an already ranked slice
func AssignQuartiles(ranked []domain.ScoreResult) []domain.ScoreResult {
	out := clone(ranked)
	for i := range out {
		out[i].Quartile = QuartileFor(i, len(out))
	}
	return out
}

// TopN returns the n best entities for a KPI
func TopN(results []domain.ScoreResult, def domain.KPIDefinition, n int) []domain.ScoreResult {
	ranked := RankByKPI(results, def)
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// BottomN returns the n worst entities for a KPI, worst first
func BottomN(results []domain.ScoreResult, def domain.KPIDefinition, n int) []domain.ScoreResult {
	ranked := RankByKPI(results, def)
	if n < 0 {
		n = 0
	}
	if n < len(ranked) {
		ranked = ranked[len(ranked)-n:]
	}
	bottom := make([]domain.ScoreResult, len(ranked))
	for i := range ranked {
		bottom[len(ranked)-1-i] = ranked[i]
	}
	return bottom
}

func clone(results []domain.ScoreResult) []domain.ScoreResult {
	out := make([]domain.ScoreResult, len(results))
	for i, r := range results {
		out[i] = copyResult(r)
	}
	return out
}

// copyResult copies a result including its map and slice fields
func copyResult(r domain.ScoreResult) domain.ScoreResult {
	if r.Values != nil {
		values := make(map[string]float64, len(r.Values))
		for k, v := range r.Values {
			values[k] = v
		}
		r.Values = values
	}
	if r.Alerts != nil {
		r.Alerts = append([]domain.Alert(nil), r.Alerts...)
	}
	return r
}
