package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeetsTarget(t *testing.T) {
	assert.True(t, MeetsTarget(92, 90, HigherIsBetter))
	assert.True(t, MeetsTarget(90, 90, HigherIsBetter))
	assert.False(t, MeetsTarget(89.9, 90, HigherIsBetter))

	assert.True(t, MeetsTarget(4.8, 5, LowerIsBetter))
	assert.True(t, MeetsTarget(5, 5, LowerIsBetter))
	assert.False(t, MeetsTarget(5.1, 5, LowerIsBetter))
}

func TestGap(t *testing.T) {
	assert.InDelta(t, 2.0, Gap(88, 90, HigherIsBetter), 1e-9)
	assert.InDelta(t, -2.0, Gap(92, 90, HigherIsBetter), 1e-9)
	assert.InDelta(t, 0.8, Gap(5.8, 5, LowerIsBetter), 1e-9)
	assert.InDelta(t, -0.5, Gap(4.5, 5, LowerIsBetter), 1e-9)
}

func TestToleranceWidth(t *testing.T) {
	assert.Equal(t, 5.0, Tolerance{Value: 5}.Width(90))
	assert.InDelta(t, 0.25, Tolerance{Value: 0.05, Relative: true}.Width(5), 1e-9)
	assert.InDelta(t, 0.25, Tolerance{Value: 0.05, Relative: true}.Width(-5), 1e-9)
}

func TestDirectionValid(t *testing.T) {
	assert.True(t, HigherIsBetter.Valid())
	assert.True(t, LowerIsBetter.Valid())
	assert.False(t, Direction("").Valid())
}

func TestRecordValue(t *testing.T) {
	r := Record{Values: map[string]float64{"tmo": 4.2}}
	v, ok := r.Value("tmo")
	assert.True(t, ok)
	assert.Equal(t, 4.2, v)

	_, ok = r.Value("satEP")
	assert.False(t, ok)
}

func TestPointsAndValues(t *testing.T) {
	obs := []Observation{{KPIID: "tmo", Value: 4.5}, {KPIID: "tmo", Value: 5}}
	assert.Equal(t, []float64{4.5, 5}, Values(Points(obs)))
}
