// Package scoring computes the composite quality score of an entity from its KPI
// readings and active alerts, and classifies the result into score tiers.
package scoring

import (
	"math"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/pkg/formulas"
)

// Config holds the composite score constants
type Config struct {
	WarningPenalty  float64
	CriticalPenalty float64
	OptimalFrom     float64 // inclusive lower bound of OPTIMAL
	ControlFrom     float64 // inclusive lower bound of CONTROL
}

// DefaultConfig returns the stock penalties and tier cut points
func DefaultConfig() Config {
	return Config{
		WarningPenalty:  5,
		CriticalPenalty: 10,
		OptimalFrom:     90,
		ControlFrom:     75,
	}
}

// ConfigFromSettings converts catalog settings to a scorer config
func ConfigFromSettings(s catalog.ScoringSettings) Config {
	return Config{
		WarningPenalty:  s.AlertPenalties.Warning,
		CriticalPenalty: s.AlertPenalties.Critical,
		OptimalFrom:     s.Tiers.Optimal,
		ControlFrom:     s.Tiers.Control,
	}
}

// Classification is a score tier plus a presentation hint
type Classification struct {
	Tier      domain.ScoreTier `json:"tier"`
	ColorHint string           `json:"color_hint"`
}

// Contribution is the share of a single KPI in a composite score
type Contribution struct {
	KPIID       string  `json:"kpi_id"`
	Value       float64 `json:"value"`
	Achievement float64 `json:"achievement"`
	Weight      float64 `json:"weight"`
	Points      float64 `json:"points"`
}

// Scorer is a pure composite scorer over an immutable set of KPI definitions
type Scorer struct {
	defs  []domain.KPIDefinition
	index map[string]int
	cfg   Config
}

// NewScorer creates a scorer from KPI definitions
func NewScorer(defs []domain.KPIDefinition, cfg Config) *Scorer {
	s := &Scorer{
		defs:  make([]domain.KPIDefinition, len(defs)),
		index: make(map[string]int, len(defs)),
		cfg:   cfg,
	}
	copy(s.defs, defs)
	for i, def := range s.defs {
		s.index[def.ID] = i
	}
	return s
}

// NewFromCatalog creates a scorer from the KPI catalog
func NewFromCatalog(c *catalog.Catalog) *Scorer {
	return NewScorer(c.Definitions(), ConfigFromSettings(c.Settings().Scoring))
}

func (s *Scorer) definition(kpiID string) (domain.KPIDefinition, bool) {
	i, ok := s.index[kpiID]
	if !ok {
		return domain.KPIDefinition{}, false
	}
	return s.defs[i], true
}

// Achievement returns the 0-100 achievement ratio of a reading relative to its target.
// The second return value is false for KPIs the scorer does not know.
func (s *Scorer) Achievement(kpiID string, value float64) (float64, bool) {
	def, ok := s.definition(kpiID)
	if !ok {
		return 0, false
	}
	return achievement(def, value), true
}

func achievement(def domain.KPIDefinition, value float64) float64 {
	value = formulas.Finite(value)

	if def.Direction == domain.LowerIsBetter {
		// A zero reading or a zero target is treated as fully achieved
		if value == 0 || def.Target == 0 {
			return 100
		}
		return formulas.Clamp(def.Target/value*100, 0, 100)
	}

	if def.Target == 0 {
		return 0
	}
	return formulas.Clamp(value/def.Target*100, 0, 100)
}

// Breakdown returns the per-KPI contributions in catalog order. KPIs without a reading
// are omitted since they contribute nothing.
func (s *Scorer) Breakdown(values map[string]float64) []Contribution {
	contributions := make([]Contribution, 0, len(values))
	for _, def := range s.defs {
		value, ok := values[def.ID]
		if !ok {
			continue
		}
		ach := achievement(def, value)
		contributions = append(contributions, Contribution{
			KPIID:       def.ID,
			Value:       formulas.Finite(value),
			Achievement: ach,
			Weight:      def.Weight,
			Points:      ach * def.Weight,
		})
	}
	return contributions
}

// Penalty returns the total points subtracted for the given alerts
func (s *Scorer) Penalty(alerts []domain.Alert) float64 {
	var penalty float64
	for _, alert := range alerts {
		switch alert.Severity {
		case domain.AlertCritical:
			penalty += s.cfg.CriticalPenalty
		case domain.AlertWarning:
			penalty += s.cfg.WarningPenalty
		}
	}
	return penalty
}

// Score computes max(0, round(Σ achievement*weight - penalties)).
//
// The result is floored at zero but deliberately not capped after the penalty is
// subtracted: each achievement is capped at 100 and weights conventionally total 1, so
// the weighted sum cannot exceed 100 unless the weight table itself sums above 1.
func (s *Scorer) Score(values map[string]float64, alerts []domain.Alert) float64 {
	var weighted float64
	for _, c := range s.Breakdown(values) {
		weighted += c.Points
	}
	return math.Max(0, math.Round(formulas.Finite(weighted-s.Penalty(alerts))))
}

// Classify maps a score to its tier. Bands are inclusive on their lower bound.
func (s *Scorer) Classify(score float64) Classification {
	switch {
	case score >= s.cfg.OptimalFrom:
		return Classification{Tier: domain.TierOptimal, ColorHint: "green"}
	case score >= s.cfg.ControlFrom:
		return Classification{Tier: domain.TierControl, ColorHint: "amber"}
	default:
		return Classification{Tier: domain.TierRisk, ColorHint: "red"}
	}
}

// ScoreRecord derives the record's alerts and returns its scored, classified result.
// Quartile and rank are left empty; they are assigned by the ranking engine.
func (s *Scorer) ScoreRecord(record domain.Record) domain.ScoreResult {
	alerts := s.DeriveAlerts(record.EntityID, record.Values)
	score := s.Score(record.Values, alerts)
	class := s.Classify(score)

	values := make(map[string]float64, len(record.Values))
	for k, v := range record.Values {
		values[k] = v
	}

	return domain.ScoreResult{
		EntityID:       record.EntityID,
		Period:         record.Period,
		CompositeScore: score,
		Tier:           class.Tier,
		ColorHint:      class.ColorHint,
		Values:         values,
		Alerts:         alerts,
	}
}
