// Package dashboard orchestrates the scoring engine over the observation history:
// ingestion, scoreboards, leaderboards, trend and risk assessments, the risk heatmap
// and team summaries.
package dashboard

import (
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/internal/modules/normalization"
	"github.com/aristath/pulse/internal/modules/recommendation"
	"github.com/aristath/pulse/internal/modules/risk"
	"github.com/aristath/pulse/internal/modules/scoring"
	"github.com/aristath/pulse/internal/modules/trend"
)

// Engine bundles the pure engine components built from one catalog.
// It has no storage and is shared by the service and the CLI.
type Engine struct {
	Catalog    *catalog.Catalog
	Normalizer *normalization.Normalizer
	Scorer     *scoring.Scorer
	Analyzer   *trend.Analyzer
	Predictor  *risk.Predictor
	Selector   *recommendation.Selector
}

// NewEngine builds every engine component from the catalog and recommendation table
func NewEngine(c *catalog.Catalog, selector *recommendation.Selector) *Engine {
	settings := c.Settings()
	return &Engine{
		Catalog:    c,
		Normalizer: normalization.New(c),
		Scorer:     scoring.NewFromCatalog(c),
		Analyzer:   trend.NewFromSettings(settings.Trend),
		Predictor:  risk.NewFromCatalog(c),
		Selector:   selector,
	}
}

// DefaultEngine builds an engine from the embedded catalog and recommendation table
func DefaultEngine() *Engine {
	return NewEngine(catalog.Default(), recommendation.Default())
}
