package scoring

import (
	"math"

	"github.com/aristath/pulse/internal/domain"
)

// Status maps a reading through the KPI's green/yellow thresholds
func (s *Scorer) Status(kpiID string, value float64) (domain.Status, bool) {
	def, ok := s.definition(kpiID)
	if !ok {
		return "", false
	}
	return status(def, value), true
}

func status(def domain.KPIDefinition, value float64) domain.Status {
	if def.Direction == domain.LowerIsBetter {
		switch {
		case value <= def.Thresholds.Green:
			return domain.StatusGreen
		case value <= def.Thresholds.Yellow:
			return domain.StatusYellow
		default:
			return domain.StatusRed
		}
	}

	switch {
	case value >= def.Thresholds.Green:
		return domain.StatusGreen
	case value >= def.Thresholds.Yellow:
		return domain.StatusYellow
	default:
		return domain.StatusRed
	}
}

// DeriveAlerts raises a warning for every yellow reading and a critical alert for every
// red one, in catalog order. Readings of unknown KPIs raise nothing.
func (s *Scorer) DeriveAlerts(entityID string, values map[string]float64) []domain.Alert {
	alerts := make([]domain.Alert, 0)
	for _, def := range s.defs {
		value, ok := values[def.ID]
		if !ok {
			continue
		}
		var severity domain.AlertSeverity
		switch status(def, value) {
		case domain.StatusYellow:
			severity = domain.AlertWarning
		case domain.StatusRed:
			severity = domain.AlertCritical
		default:
			continue
		}
		alerts = append(alerts, domain.Alert{
			EntityID: entityID,
			KPIID:    def.ID,
			Severity: severity,
			Value:    value,
		})
	}
	return alerts
}

// MeetsTarget reports whether a reading reaches its KPI target
func (s *Scorer) MeetsTarget(kpiID string, value float64) bool {
	def, ok := s.definition(kpiID)
	if !ok {
		return false
	}
	return domain.MeetsTarget(value, def.Target, def.Direction)
}

// NearTarget reports whether a reading misses its target by no more than the KPI's
// near-miss tolerance. Tolerances are per KPI (e.g. half a minute for handle time,
// two points for percentages); there is no universal rule.
func (s *Scorer) NearTarget(kpiID string, value float64) bool {
	def, ok := s.definition(kpiID)
	if !ok {
		return false
	}
	if domain.MeetsTarget(value, def.Target, def.Direction) {
		return false
	}
	return math.Abs(value-def.Target) <= def.NearMiss
}
