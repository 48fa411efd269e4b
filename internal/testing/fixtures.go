package testing

import (
	"github.com/aristath/pulse/internal/domain"
)

// FixturePeriods are consecutive monthly periods used by the fixtures
var FixturePeriods = []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}

// TargetValues returns readings that meet every target of the default catalog exactly
// or better, scoring 100
func TargetValues() map[string]float64 {
	return map[string]float64{
		"tmo":            5,
		"satEP":          95,
		"resEP":          90,
		"satSNL":         95,
		"resSNL":         90,
		"transfEPA":      85,
		"tipificaciones": 95,
	}
}

// NewRecord builds a record, copying values
func NewRecord(entityID, period string, values map[string]float64) domain.Record {
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return domain.Record{EntityID: entityID, Period: period, Values: copied}
}

// SeriesRecords spreads one KPI series over consecutive periods starting at 2024-01
func SeriesRecords(entityID, kpiID string, values ...float64) []domain.Record {
	if len(values) > len(FixturePeriods) {
		values = values[:len(FixturePeriods)]
	}
	records := make([]domain.Record, len(values))
	for i, v := range values {
		records[i] = NewRecord(entityID, FixturePeriods[i], map[string]float64{kpiID: v})
	}
	return records
}
