// Package catalog provides the immutable KPI configuration catalog: KPI definitions
// plus the scoring, risk and trend constants the engine packages are built from.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aristath/pulse/internal/domain"
)

//go:embed default.yaml
var defaultCatalogYAML []byte

// ErrUnknownKPI is returned by Lookup for ids that are not in the catalog
var ErrUnknownKPI = errors.New("unknown kpi")

// AlertPenalties are the flat points subtracted from a composite score per active alert
type AlertPenalties struct {
	Warning  float64 `yaml:"warning" json:"warning"`
	Critical float64 `yaml:"critical" json:"critical"`
}

// ScoreTiers are the lower bounds (inclusive) of the composite score bands
type ScoreTiers struct {
	Optimal float64 `yaml:"optimal" json:"optimal"`
	Control float64 `yaml:"control" json:"control"`
}

// RiskTiers are the lower bounds (inclusive) of the risk score bands
type RiskTiers struct {
	High   float64 `yaml:"high" json:"high"`
	Medium float64 `yaml:"medium" json:"medium"`
}

// ScoringSettings groups composite score constants
type ScoringSettings struct {
	AlertPenalties AlertPenalties `yaml:"alert_penalties" json:"alert_penalties"`
	Tiers          ScoreTiers     `yaml:"tiers" json:"tiers"`
}

// RiskSettings groups risk classification constants
type RiskSettings struct {
	Tiers RiskTiers `yaml:"tiers" json:"tiers"`
}

// TrendSettings groups trend analysis constants
type TrendSettings struct {
	StableThreshold float64 `yaml:"stable_threshold" json:"stable_threshold"` // percent
	LookbackDays    int     `yaml:"lookback_days" json:"lookback_days"`
	MaxPoints       int     `yaml:"max_points" json:"max_points"`
}

// Settings holds every configuration constant that is not a KPI definition
type Settings struct {
	Scoring ScoringSettings `yaml:"scoring" json:"scoring"`
	Risk    RiskSettings    `yaml:"risk" json:"risk"`
	Trend   TrendSettings   `yaml:"trend" json:"trend"`
}

type document struct {
	Settings `yaml:",inline"`
	KPIs     []domain.KPIDefinition `yaml:"kpis"`
}

// Catalog is the read-only KPI catalog. It is safe for concurrent use because it is
// never mutated after construction and every accessor returns copies.
type Catalog struct {
	defs     []domain.KPIDefinition
	index    map[string]int
	settings Settings
}

// New validates the definitions and builds a catalog
func New(defs []domain.KPIDefinition, settings Settings) (*Catalog, error) {
	c := &Catalog{
		defs:     make([]domain.KPIDefinition, 0, len(defs)),
		index:    make(map[string]int, len(defs)),
		settings: settings,
	}

	for _, def := range defs {
		if err := validateDefinition(def); err != nil {
			return nil, err
		}
		if _, exists := c.index[def.ID]; exists {
			return nil, fmt.Errorf("duplicate kpi id %q", def.ID)
		}
		c.index[def.ID] = len(c.defs)
		c.defs = append(c.defs, def)
	}

	if err := validateSettings(settings); err != nil {
		return nil, err
	}

	return c, nil
}

// Load parses a YAML catalog document
func Load(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.KPIs) == 0 {
		return nil, fmt.Errorf("catalog defines no kpis")
	}
	return New(doc.KPIs, doc.Settings)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the catalog embedded in the binary
func Default() *Catalog {
	c, err := Load(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Get returns the definition of a KPI
func (c *Catalog) Get(id string) (domain.KPIDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return domain.KPIDefinition{}, false
	}
	return c.defs[i], true
}

// Lookup is Get with an ErrUnknownKPI error for callers that propagate errors
func (c *Catalog) Lookup(id string) (domain.KPIDefinition, error) {
	def, ok := c.Get(id)
	if !ok {
		return domain.KPIDefinition{}, fmt.Errorf("%w: %s", ErrUnknownKPI, id)
	}
	return def, nil
}

// IDs returns KPI ids in declaration order
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.defs))
	for i, def := range c.defs {
		ids[i] = def.ID
	}
	return ids
}

// Definitions returns a copy of all definitions in declaration order
func (c *Catalog) Definitions() []domain.KPIDefinition {
	defs := make([]domain.KPIDefinition, len(c.defs))
	copy(defs, c.defs)
	return defs
}

// Weights returns the weight table keyed by KPI id
func (c *Catalog) Weights() map[string]float64 {
	weights := make(map[string]float64, len(c.defs))
	for _, def := range c.defs {
		weights[def.ID] = def.Weight
	}
	return weights
}

// Settings returns the non-KPI constants
func (c *Catalog) Settings() Settings {
	return c.settings
}

func validateDefinition(def domain.KPIDefinition) error {
	if strings.TrimSpace(def.ID) == "" {
		return fmt.Errorf("kpi id is required")
	}
	if !def.Direction.Valid() {
		return fmt.Errorf("kpi %s: invalid direction %q", def.ID, def.Direction)
	}
	switch def.Unit {
	case domain.UnitPercent, domain.UnitMinutes:
	default:
		return fmt.Errorf("kpi %s: invalid unit %q", def.ID, def.Unit)
	}
	if def.Weight < 0 {
		return fmt.Errorf("kpi %s: weight must not be negative", def.ID)
	}
	if def.Direction == domain.HigherIsBetter && def.Target <= 0 {
		return fmt.Errorf("kpi %s: target must be positive", def.ID)
	}
	if def.Target < 0 || def.NearMiss < 0 || def.ForecastTolerance.Value < 0 {
		return fmt.Errorf("kpi %s: target and tolerances must not be negative", def.ID)
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.Scoring.Tiers.Optimal < s.Scoring.Tiers.Control {
		return fmt.Errorf("optimal tier bound %.1f is below control bound %.1f", s.Scoring.Tiers.Optimal, s.Scoring.Tiers.Control)
	}
	if s.Risk.Tiers.High < s.Risk.Tiers.Medium {
		return fmt.Errorf("high risk bound %.1f is below medium bound %.1f", s.Risk.Tiers.High, s.Risk.Tiers.Medium)
	}
	if s.Scoring.AlertPenalties.Warning < 0 || s.Scoring.AlertPenalties.Critical < 0 {
		return fmt.Errorf("alert penalties must not be negative")
	}
	if s.Trend.StableThreshold < 0 || s.Trend.LookbackDays < 0 || s.Trend.MaxPoints < 0 {
		return fmt.Errorf("trend settings must not be negative")
	}
	return nil
}
