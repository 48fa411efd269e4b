package snapshots

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/modules/dashboard"
)

const module = "snapshots"

// ScoreboardSource computes the scoreboard of a period
type ScoreboardSource interface {
	Scoreboard(ctx context.Context, period string) (*dashboard.Scoreboard, error)
}

// Service creates and reads scoreboard snapshots
type Service struct {
	source ScoreboardSource
	repo   *Repository
	events dashboard.EventEmitter
	now    func() time.Time
	log    zerolog.Logger
}

// NewService creates a new snapshot service. emitter may be nil.
func NewService(source ScoreboardSource, repo *Repository, emitter dashboard.EventEmitter, log zerolog.Logger) *Service {
	return &Service{
		source: source,
		repo:   repo,
		events: emitter,
		now:    time.Now,
		log:    log.With().Str("service", "snapshots").Logger(),
	}
}

// Create scores a period and stores the result under a new id
func (s *Service) Create(ctx context.Context, period string) (*Snapshot, error) {
	board, err := s.source.Scoreboard(ctx, period)
	if err != nil {
		return nil, err
	}

	payload, err := encodeScoreboard(board)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		ID:          uuid.New().String(),
		Period:      period,
		CreatedAt:   s.now().UTC().Truncate(time.Second),
		EntityCount: len(board.Entities),
		SizeBytes:   len(payload),
		Scoreboard:  board,
	}
	if err := s.repo.Save(ctx, *snapshot, payload); err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Emit(module, &events.SnapshotCreatedData{
			ID:       snapshot.ID,
			Period:   period,
			Entities: snapshot.EntityCount,
		})
	}

	s.log.Info().
		Str("id", snapshot.ID).
		Str("period", period).
		Int("entities", snapshot.EntityCount).
		Int("bytes", snapshot.SizeBytes).
		Msg("Created scoreboard snapshot")

	return snapshot, nil
}

// Get returns a stored snapshot with its decoded scoreboard
func (s *Service) Get(ctx context.Context, id string) (*Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	snapshot, payload, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	board, err := decodeScoreboard(payload)
	if err != nil {
		return nil, err
	}
	snapshot.Scoreboard = board
	return &snapshot, nil
}

// List returns snapshot headers newest first, optionally for one period
func (s *Service) List(ctx context.Context, period string) ([]Snapshot, error) {
	return s.repo.List(ctx, period)
}

// Prune removes snapshots older than the retention window
func (s *Service) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	deleted, err := s.repo.DeleteBefore(ctx, s.now().Add(-retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("Pruned snapshots")
	}
	return deleted, nil
}
