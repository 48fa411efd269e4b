// Package normalization converts raw KPI readings into the canonical scale used by the
// scoring engine: percentages on 0-100 and handle times in minutes.
package normalization

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/aristath/pulse/internal/domain"
)

// KPILookup is the subset of the catalog the normalizer needs
type KPILookup interface {
	Get(id string) (domain.KPIDefinition, bool)
}

// Fraction applies the fraction-to-percent heuristic: values in (0, 1] are treated as
// ratios and multiplied by 100, everything else passes through unchanged. There is no
// clamping; downstream consumers clamp where they need to.
func Fraction(raw float64) float64 {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0
	}
	if raw > 0 && raw <= 1.0 {
		return raw * 100
	}
	return raw
}

// Normalizer applies the heuristic to catalog KPIs
type Normalizer struct {
	kpis KPILookup
}

// New creates a normalizer bound to a KPI catalog
func New(kpis KPILookup) *Normalizer {
	return &Normalizer{kpis: kpis}
}

// Normalize converts a raw reading of a KPI. Unknown KPI ids are a no-op so that
// caller-side data issues never abort a scoring pass.
func (n *Normalizer) Normalize(kpiID string, raw float64) float64 {
	if _, ok := n.kpis.Get(kpiID); !ok {
		if math.IsNaN(raw) || math.IsInf(raw, 0) {
			return 0
		}
		return raw
	}
	return Fraction(raw)
}

// NormalizeRecord returns a copy of the record with every value normalized
func (n *Normalizer) NormalizeRecord(record domain.Record) domain.Record {
	out := domain.Record{
		EntityID: record.EntityID,
		Period:   record.Period,
		Values:   make(map[string]float64, len(record.Values)),
	}
	for kpiID, raw := range record.Values {
		out.Values[kpiID] = n.Normalize(kpiID, raw)
	}
	return out
}

// ParseCell parses a spreadsheet cell and normalizes it. Accepted forms include
// "95", "95%", "0.95", "9.5E-1" and "4,5" (decimal comma). A trailing percent sign
// marks the value as already being a percentage, so the fraction heuristic is skipped.
func (n *Normalizer) ParseCell(kpiID, cell string) (float64, error) {
	value, isPercent, err := ParseValue(cell)
	if err != nil {
		return 0, err
	}
	if isPercent {
		return value, nil
	}
	return n.Normalize(kpiID, value), nil
}

// ParseValue parses a numeric cell without normalizing it
func ParseValue(cell string) (value float64, isPercent bool, err error) {
	s := strings.TrimSpace(cell)
	if strings.HasSuffix(s, "%") {
		isPercent = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	}
	if s == "" {
		return 0, false, fmt.Errorf("empty value")
	}

	// A lone comma is a decimal separator; with both separators present the comma
	// groups thousands.
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}

	value, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid numeric value %q: %w", cell, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, fmt.Errorf("invalid numeric value %q", cell)
	}
	return value, isPercent, nil
}
