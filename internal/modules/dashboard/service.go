package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/metrics"
	"github.com/aristath/pulse/internal/modules/history"
	"github.com/aristath/pulse/internal/modules/ranking"
	"github.com/aristath/pulse/pkg/formulas"
)

const module = "dashboard"

// ErrInvalidInput marks requests the caller has to fix
var ErrInvalidInput = errors.New("invalid input")

// EventEmitter is the subset of the event manager the service publishes to
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// Service runs the engine over the observation history
type Service struct {
	engine  *Engine
	history history.Repository
	events  EventEmitter
	metrics *metrics.Recorder
	now     func() time.Time
	log     zerolog.Logger
}

// NewService creates a new dashboard service. emitter and recorder may be nil.
func NewService(
	engine *Engine,
	historyRepo history.Repository,
	emitter EventEmitter,
	recorder *metrics.Recorder,
	log zerolog.Logger,
) *Service {
	return &Service{
		engine:  engine,
		history: historyRepo,
		events:  emitter,
		metrics: recorder,
		now:     time.Now,
		log:     log.With().Str("service", "dashboard").Logger(),
	}
}

// Engine returns the engine the service computes with
func (s *Service) Engine() *Engine {
	return s.engine
}

func (s *Service) emit(data events.EventData) {
	if s.events != nil {
		s.events.Emit(module, data)
	}
}

// Ingest normalizes records and appends them to the history log. Each reading is
// timestamped at the start of its period, so re-ingesting an unchanged sheet is a
// no-op. Readings of KPIs outside the catalog are skipped.
func (s *Service) Ingest(ctx context.Context, records []domain.Record) (*IngestResult, error) {
	result := &IngestResult{Periods: []string{}}
	periods := make(map[string]bool)
	var observations []domain.Observation

	for _, record := range records {
		if record.EntityID == "" {
			return nil, fmt.Errorf("%w: record without entity id", ErrInvalidInput)
		}
		start, err := ParsePeriod(record.Period)
		if err != nil {
			return nil, err
		}

		normalized := s.engine.Normalizer.NormalizeRecord(record)
		for _, kpiID := range sortedKeys(normalized.Values) {
			result.Received++
			if _, ok := s.engine.Catalog.Get(kpiID); !ok {
				result.Skipped++
				s.log.Warn().Str("entity", record.EntityID).Str("kpi", kpiID).Msg("Skipping reading of unknown KPI")
				continue
			}
			observations = append(observations, domain.Observation{
				Timestamp: start,
				EntityID:  record.EntityID,
				KPIID:     kpiID,
				Period:    record.Period,
				Value:     normalized.Values[kpiID],
			})
		}

		if !periods[record.Period] {
			periods[record.Period] = true
			result.Periods = append(result.Periods, record.Period)
		}
		result.Records++
	}

	if len(observations) > 0 {
		inserted, err := s.history.AppendBatch(ctx, observations)
		if err != nil {
			return nil, fmt.Errorf("failed to store observations: %w", err)
		}
		result.Inserted = inserted
	}
	sort.Strings(result.Periods)

	s.metrics.ObservationsIngested(result.Inserted, len(observations))
	s.emit(&events.ObservationsIngestedData{
		Periods:  result.Periods,
		Records:  result.Records,
		Received: result.Received,
		Inserted: result.Inserted,
	})

	s.log.Info().
		Int("records", result.Records).
		Int("inserted", result.Inserted).
		Int("skipped", result.Skipped).
		Msg("Ingested observations")

	return result, nil
}

// Scoreboard scores every entity of a period, ranks them and assigns quartiles.
// Stored observations are already in canonical units.
func (s *Service) Scoreboard(ctx context.Context, period string) (*Scoreboard, error) {
	if _, err := ParsePeriod(period); err != nil {
		return nil, err
	}

	started := time.Now()
	records, err := s.history.Records(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	results := make([]domain.ScoreResult, 0, len(records))
	for _, record := range records {
		results = append(results, s.engine.Scorer.ScoreRecord(record))
	}
	ranked := ranking.AssignQuartiles(ranking.Rank(results))

	board := &Scoreboard{
		GeneratedAt: s.now().UTC(),
		Period:      period,
		Entities:    ranked,
		TierCounts:  tierCounts(ranked),
	}
	board.AverageScore = averageScore(ranked)

	s.metrics.ScoringPass(period, board.AverageScore, time.Since(started))
	s.emit(&events.ScoreboardComputedData{
		Period:       period,
		Entities:     len(ranked),
		AverageScore: board.AverageScore,
		AtRisk:       board.TierCounts[domain.TierRisk],
	})

	return board, nil
}

// EntityScore returns one entity's ranked score with its breakdown
func (s *Service) EntityScore(ctx context.Context, period, entityID string) (*EntityScore, error) {
	board, err := s.Scoreboard(ctx, period)
	if err != nil {
		return nil, err
	}
	result, ok := board.Find(entityID)
	if !ok {
		return nil, fmt.Errorf("entity %s in period %s: %w", entityID, period, history.ErrNotFound)
	}
	return &EntityScore{
		ScoreResult: result,
		Breakdown:   s.engine.Scorer.Breakdown(result.Values),
		Penalty:     s.engine.Scorer.Penalty(result.Alerts),
	}, nil
}

// Leaderboard returns the best or worst n entities of a period for one KPI
func (s *Service) Leaderboard(ctx context.Context, period, kpiID string, n int, order Order) (*Leaderboard, error) {
	def, err := s.engine.Catalog.Lookup(kpiID)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive", ErrInvalidInput)
	}
	if order == "" {
		order = OrderTop
	}
	if order != OrderTop && order != OrderBottom {
		return nil, fmt.Errorf("%w: order must be top or bottom", ErrInvalidInput)
	}

	board, err := s.Scoreboard(ctx, period)
	if err != nil {
		return nil, err
	}

	var entries []domain.ScoreResult
	if order == OrderTop {
		entries = ranking.TopN(board.Entities, def, n)
	} else {
		entries = ranking.BottomN(board.Entities, def, n)
	}

	return &Leaderboard{Period: period, KPIID: kpiID, Order: order, Entries: entries}, nil
}

// Trend analyzes the history of one entity and KPI
func (s *Service) Trend(ctx context.Context, entityID, kpiID string) (domain.TrendResult, error) {
	def, err := s.engine.Catalog.Lookup(kpiID)
	if err != nil {
		return domain.TrendResult{}, err
	}
	observations, err := s.history.GetHistory(ctx, entityID, kpiID)
	if err != nil {
		return domain.TrendResult{}, fmt.Errorf("failed to load history: %w", err)
	}
	return s.engine.Analyzer.Analyze(domain.Points(observations), def.Direction, time.Time{}), nil
}

// Assess returns the trend of one entity and KPI together with both risk strategies
// and the trend-driven projection, each with its recommendation
func (s *Service) Assess(ctx context.Context, entityID, kpiID string) (*Assessment, error) {
	def, err := s.engine.Catalog.Lookup(kpiID)
	if err != nil {
		return nil, err
	}
	observations, err := s.history.GetHistory(ctx, entityID, kpiID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("history of %s/%s: %w", entityID, kpiID, history.ErrNotFound)
	}

	points := s.engine.Analyzer.Filter(domain.Points(observations), time.Time{})
	values := domain.Values(points)
	current := values[len(values)-1]

	tr := s.engine.Analyzer.Analyze(domain.Points(observations), def.Direction, time.Time{})

	a := &Assessment{
		EntityID:   entityID,
		KPIID:      kpiID,
		Current:    current,
		Target:     def.Target,
		Trend:      tr,
		Momentum:   s.engine.Predictor.MomentumFromSeries(values, def.Target, def.Direction),
		Forecast:   s.engine.Predictor.Forecast(values, def),
		Projection: s.engine.Predictor.PredictRisk(current, tr, def.Target, def.Direction),
	}
	for _, r := range []*domain.RiskAssessment{&a.Momentum, &a.Forecast, &a.Projection} {
		s.finishAssessment(r, entityID, kpiID)
	}

	return a, nil
}

func (s *Service) finishAssessment(r *domain.RiskAssessment, entityID, kpiID string) {
	r.EntityID = entityID
	r.KPIID = kpiID
	r.Recommendation = s.engine.Selector.Recommend(kpiID, r.Tier)
	s.metrics.Assessment(*r)

	if r.Tier == domain.RiskHigh {
		s.emit(&events.RiskEscalatedData{
			EntityID:       entityID,
			KPIID:          kpiID,
			Strategy:       string(r.Strategy),
			RiskScore:      r.RiskScore,
			Recommendation: r.Recommendation,
		})
	}
}

// Heatmap computes the momentum risk of every entity and KPI of a period against the
// previous period. Readings without a previous value are compared with themselves.
func (s *Service) Heatmap(ctx context.Context, period string) (*Heatmap, error) {
	prevPeriod, err := PreviousPeriod(period)
	if err != nil {
		return nil, err
	}

	records, err := s.history.Records(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	previous := make(map[string]domain.Record)
	prevRecords, err := s.history.Records(ctx, prevPeriod)
	switch {
	case err == nil:
		for _, r := range prevRecords {
			previous[r.EntityID] = r
		}
	case errors.Is(err, history.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load previous records: %w", err)
	}

	ids := s.engine.Catalog.IDs()
	heatmap := &Heatmap{
		Period:         period,
		PreviousPeriod: prevPeriod,
		KPIs:           ids,
		Rows:           make([]HeatmapRow, 0, len(records)),
	}

	for _, record := range records {
		row := HeatmapRow{EntityID: record.EntityID, Cells: []HeatmapCell{}}
		for _, def := range s.engine.Catalog.Definitions() {
			value, ok := record.Values[def.ID]
			if !ok {
				continue
			}

			cell := HeatmapCell{KPIID: def.ID, Value: value}
			prevValue := value
			if prev, ok := previous[record.EntityID].Values[def.ID]; ok {
				prevValue = prev
				cell.Previous = &prev
			}
			cell.Status, _ = s.engine.Scorer.Status(def.ID, value)
			cell.Risk = s.engine.Predictor.Momentum(value, prevValue, def.Target, def.Direction)
			cell.Risk.EntityID = record.EntityID
			cell.Risk.KPIID = def.ID
			cell.Risk.Recommendation = s.engine.Selector.Recommend(def.ID, cell.Risk.Tier)
			s.metrics.Assessment(cell.Risk)

			row.Cells = append(row.Cells, cell)
		}
		heatmap.Rows = append(heatmap.Rows, row)
	}

	return heatmap, nil
}

// TeamSummary averages every KPI across the entities of a period
func (s *Service) TeamSummary(ctx context.Context, period string) (*TeamSummary, error) {
	board, err := s.Scoreboard(ctx, period)
	if err != nil {
		return nil, err
	}

	summary := &TeamSummary{
		Period:       period,
		Entities:     len(board.Entities),
		AverageScore: board.AverageScore,
		TierCounts:   board.TierCounts,
		KPIs:         make([]KPISummary, 0),
	}

	for _, def := range s.engine.Catalog.Definitions() {
		var values []float64
		below := 0
		for _, r := range board.Entities {
			v, ok := r.Values[def.ID]
			if !ok {
				continue
			}
			values = append(values, v)
			if !domain.MeetsTarget(v, def.Target, def.Direction) {
				below++
			}
		}
		if len(values) == 0 {
			continue
		}

		avg := formulas.RoundTo(formulas.Mean(values), 2)
		status, _ := s.engine.Scorer.Status(def.ID, avg)
		summary.KPIs = append(summary.KPIs, KPISummary{
			KPIID:       def.ID,
			Label:       def.Label,
			Average:     avg,
			Target:      def.Target,
			Status:      status,
			MeetsTarget: s.engine.Scorer.MeetsTarget(def.ID, avg),
			NearTarget:  s.engine.Scorer.NearTarget(def.ID, avg),
			Reporting:   len(values),
			BelowTarget: below,
		})
	}

	return summary, nil
}

// Periods lists every period with observations
func (s *Service) Periods(ctx context.Context) ([]string, error) {
	return s.history.Periods(ctx)
}

// LatestPeriod returns the most recent period with observations
func (s *Service) LatestPeriod(ctx context.Context) (string, error) {
	periods, err := s.history.Periods(ctx)
	if err != nil {
		return "", err
	}
	if len(periods) == 0 {
		return "", history.ErrNotFound
	}
	return periods[len(periods)-1], nil
}

func tierCounts(results []domain.ScoreResult) map[domain.ScoreTier]int {
	counts := map[domain.ScoreTier]int{
		domain.TierOptimal: 0,
		domain.TierControl: 0,
		domain.TierRisk:    0,
	}
	for _, r := range results {
		counts[r.Tier]++
	}
	return counts
}

func averageScore(results []domain.ScoreResult) float64 {
	if len(results) == 0 {
		return 0
	}
	scores := make([]float64, len(results))
	for i, r := range results {
		scores[i] = r.CompositeScore
	}
	return formulas.RoundTo(formulas.Mean(scores), 2)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
