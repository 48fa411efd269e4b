// Package recommendation maps a KPI and risk tier to a recommended action.
package recommendation

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aristath/pulse/internal/domain"
)

//go:embed default.yaml
var defaultTableYAML []byte

// Table maps KPI id, then risk tier, to an action text
type Table map[string]map[domain.RiskTier]string

type document struct {
	Fallback string `yaml:"fallback"`
	Actions  Table  `yaml:"actions"`
}

// Selector looks up recommendations in an immutable table
type Selector struct {
	table    Table
	fallback string
}

// NewSelector creates a selector over a copy of table
func NewSelector(table Table, fallback string) *Selector {
	return &Selector{table: table.clone(), fallback: fallback}
}

// Recommend returns the action for a KPI and tier, or the fallback text when the
// table has no entry for them
func (s *Selector) Recommend(kpiID string, tier domain.RiskTier) string {
	if actions, ok := s.table[kpiID]; ok {
		if text, ok := actions[tier]; ok && text != "" {
			return text
		}
	}
	return s.fallback
}

// Fallback returns the generic action text
func (s *Selector) Fallback() string {
	return s.fallback
}

// Table returns a copy of the lookup table
func (s *Selector) Table() Table {
	return s.table.clone()
}

// LoadTable parses a YAML recommendation table
func LoadTable(data []byte) (*Selector, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse recommendation table: %w", err)
	}
	for kpiID, actions := range doc.Actions {
		for tier := range actions {
			switch tier {
			case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
			default:
				return nil, fmt.Errorf("kpi %s: unknown risk tier %q", kpiID, tier)
			}
		}
	}
	return NewSelector(doc.Actions, doc.Fallback), nil
}

// LoadTableFile reads and parses a YAML recommendation table file
func LoadTableFile(path string) (*Selector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recommendation table: %w", err)
	}
	return LoadTable(data)
}

// Default returns the selector over the built-in table
func Default() *Selector {
	s, err := LoadTable(defaultTableYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded recommendation table is invalid: %v", err))
	}
	return s
}

// DefaultTable returns a copy of the built-in table
func DefaultTable() Table {
	return Default().Table()
}

func (t Table) clone() Table {
	out := make(Table, len(t))
	for kpiID, actions := range t {
		inner := make(map[domain.RiskTier]string, len(actions))
		for tier, text := range actions {
			inner[tier] = text
		}
		out[kpiID] = inner
	}
	return out
}
