// Package domain provides the core KPI domain models shared by the engine packages.
package domain

import "time"

// Direction tells whether larger KPI values are better or worse
type Direction string

const (
	// HigherIsBetter applies to ratio KPIs such as satisfaction or resolution
	HigherIsBetter Direction = "higher_is_better"
	// LowerIsBetter applies to time KPIs such as average handle time
	LowerIsBetter Direction = "lower_is_better"
)

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	return d == HigherIsBetter || d == LowerIsBetter
}

// Unit is the natural unit of a KPI after normalization
type Unit string

const (
	UnitPercent Unit = "percent"
	UnitMinutes Unit = "minutes"
)

// Thresholds are the traffic-light boundaries of a KPI, expressed in the KPI's unit.
// For higher-is-better KPIs a value at or above Green is green and at or above Yellow
// is yellow; lower-is-better KPIs mirror the comparison.
type Thresholds struct {
	Green  float64 `json:"green" yaml:"green"`
	Yellow float64 `json:"yellow" yaml:"yellow"`
}

// Tolerance is a band around a target. Relative tolerances are a fraction of the target.
type Tolerance struct {
	Value    float64 `json:"value" yaml:"value"`
	Relative bool    `json:"relative" yaml:"relative"`
}

// Width returns the absolute width of the band for the given target
func (t Tolerance) Width(target float64) float64 {
	if t.Relative {
		if target < 0 {
			target = -target
		}
		return t.Value * target
	}
	return t.Value
}

// KPIDefinition is the static descriptor of one KPI. Definitions are loaded once at
// startup and never mutated afterwards.
type KPIDefinition struct {
	ID                string     `json:"id" yaml:"id"`
	Label             string     `json:"label" yaml:"label"`
	Unit              Unit       `json:"unit" yaml:"unit"`
	Direction         Direction  `json:"direction" yaml:"direction"`
	Thresholds        Thresholds `json:"thresholds" yaml:"thresholds"`
	ForecastTolerance Tolerance  `json:"forecast_tolerance" yaml:"forecast_tolerance"`
	Target            float64    `json:"target" yaml:"target"`
	Weight            float64    `json:"weight" yaml:"weight"`
	NearMiss          float64    `json:"near_miss" yaml:"near_miss"`
}

// HigherIsBetter is a convenience accessor used by the scoring formulas
func (d KPIDefinition) HigherIsBetter() bool {
	return d.Direction != LowerIsBetter
}

// Observation is one measured value for one entity, one KPI and one period
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	EntityID  string    `json:"entity_id"`
	KPIID     string    `json:"kpi_id"`
	Period    string    `json:"period"` // YYYY-MM
	Value     float64   `json:"value"`
}

// Point is a single (timestamp, value) sample of a historized series
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Points extracts the time series of a chronologically sorted observation slice
func Points(observations []Observation) []Point {
	points := make([]Point, len(observations))
	for i, o := range observations {
		points[i] = Point{Timestamp: o.Timestamp, Value: o.Value}
	}
	return points
}

// Values extracts the plain values of a series
func Values(points []Point) []float64 {
	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Value
	}
	return values
}

// Record is the shape supplied by the ingestion collaborator: all KPI values of one
// entity for one period. A KPI missing from Values is a defined "no reading" case.
type Record struct {
	Values   map[string]float64 `json:"values" yaml:"values"`
	EntityID string             `json:"entity_id" yaml:"entity_id"`
	Period   string             `json:"period" yaml:"period"`
}

// Value returns the reading of a KPI and whether it is present
func (r Record) Value(kpiID string) (float64, bool) {
	v, ok := r.Values[kpiID]
	return v, ok
}

// MeetsTarget reports whether value reaches target in the KPI's direction
func MeetsTarget(value, target float64, direction Direction) bool {
	if direction == LowerIsBetter {
		return value <= target
	}
	return value >= target
}

// Gap returns how far value falls short of target in the KPI's direction.
// A zero or negative gap means the target is met.
func Gap(value, target float64, direction Direction) float64 {
	if direction == LowerIsBetter {
		return value - target
	}
	return target - value
}
