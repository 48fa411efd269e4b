package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pulse/internal/domain"
)

var (
	satEP = domain.KPIDefinition{ID: "satEP", Direction: domain.HigherIsBetter, Target: 90}
	tmo   = domain.KPIDefinition{ID: "tmo", Direction: domain.LowerIsBetter, Target: 5}
)

func result(id string, score float64, values map[string]float64) domain.ScoreResult {
	return domain.ScoreResult{EntityID: id, CompositeScore: score, Values: values}
}

func ids(results []domain.ScoreResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.EntityID
	}
	return out
}

func TestRank(t *testing.T) {
	input := []domain.ScoreResult{
		result("a", 70, nil),
		result("b", 95, nil),
		result("c", 70, nil),
		result("d", 88, nil),
	}

	ranked := Rank(input)

	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(ranked), "ties keep input order")
	assert.Equal(t, []int{1, 2, 3, 4}, []int{ranked[0].Rank, ranked[1].Rank, ranked[2].Rank, ranked[3].Rank})
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(input), "input must not be reordered")
	assert.Zero(t, input[0].Rank)
}

func TestRankByKPI_Direction(t *testing.T) {
	input := []domain.ScoreResult{
		result("a", 0, map[string]float64{"satEP": 80, "tmo": 6}),
		result("b", 0, map[string]float64{"satEP": 95, "tmo": 4}),
		result("c", 0, map[string]float64{"tmo": 5}),
	}

	assert.Equal(t, []string{"b", "a"}, ids(RankByKPI(input, satEP)), "missing KPI is excluded")
	assert.Equal(t, []string{"b", "c", "a"}, ids(RankByKPI(input, tmo)), "lower is better ranks ascending")
}

func TestRankByKPI_DoesNotShareMaps(t *testing.T) {
	input := []domain.ScoreResult{result("a", 0, map[string]float64{"satEP": 80})}

	ranked := RankByKPI(input, satEP)
	ranked[0].Values["satEP"] = 1

	assert.Equal(t, 80.0, input[0].Values["satEP"])
}

func TestAssignQuartiles(t *testing.T) {
	tests := []struct {
		n        int
		expected []domain.Quartile
	}{
		{n: 1, expected: []domain.Quartile{domain.Q4}},
		{n: 2, expected: []domain.Quartile{domain.Q2, domain.Q4}},
		{n: 4, expected: []domain.Quartile{domain.Q1, domain.Q2, domain.Q3, domain.Q4}},
		{n: 5, expected: []domain.Quartile{domain.Q1, domain.Q2, domain.Q3, domain.Q4, domain.Q4}},
		{n: 8, expected: []domain.Quartile{domain.Q1, domain.Q1, domain.Q2, domain.Q2, domain.Q3, domain.Q3, domain.Q4, domain.Q4}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			ranked := make([]domain.ScoreResult, tt.n)
			for i := range ranked {
				ranked[i] = result(fmt.Sprintf("e%d", i), float64(100-i), nil)
			}

			got := AssignQuartiles(Rank(ranked))
			quartiles := make([]domain.Quartile, len(got))
			for i, r := range got {
				quartiles[i] = r.Quartile
			}
			assert.Equal(t, tt.expected, quartiles)
		})
	}
}

func TestAssignQuartiles_PartitionsPopulation(t *testing.T) {
	for n := 1; n <= 40; n++ {
		ranked := make([]domain.ScoreResult, n)
		for i := range ranked {
			ranked[i] = result(fmt.Sprintf("e%d", i), float64(i%7), nil)
		}

		got := AssignQuartiles(Rank(ranked))
		require.Len(t, got, n)

		counts := map[domain.Quartile]int{}
		prev := domain.Q1
		for _, r := range got {
			require.NotEmpty(t, r.Quartile)
			require.GreaterOrEqual(t, string(r.Quartile), string(prev), "quartiles are monotonic in rank")
			prev = r.Quartile
			counts[r.Quartile]++
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		assert.Equal(t, n, total)
	}
}

func TestTopAndBottomN(t *testing.T) {
	input := []domain.ScoreResult{
		result("a", 0, map[string]float64{"tmo": 6}),
		result("b", 0, map[string]float64{"tmo": 4}),
		result("c", 0, map[string]float64{"tmo": 5}),
		result("d", 0, map[string]float64{"tmo": 7}),
	}

	assert.Equal(t, []string{"b", "c"}, ids(TopN(input, tmo, 2)))
	assert.Equal(t, []string{"d", "a"}, ids(BottomN(input, tmo, 2)), "worst first")
	assert.Len(t, TopN(input, tmo, 10), 4)
	assert.Equal(t, []string{"d", "a", "c", "b"}, ids(BottomN(input, tmo, 10)))
	assert.Empty(t, TopN(input, tmo, 0))
	assert.Empty(t, BottomN(nil, tmo, 3))
}
