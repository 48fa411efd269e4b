// Package history provides the append-only KPI observation log.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/aristath/pulse/internal/domain"
)

// ErrNotFound is returned when a period has no observations
var ErrNotFound = errors.New("no observations found")

// Store is the narrow interface the engine reads and appends history through.
// Histories are returned in chronological order.
type Store interface {
	GetHistory(ctx context.Context, entityID, kpiID string) ([]domain.Observation, error)
	AppendObservation(ctx context.Context, obs domain.Observation) error
	Entities(ctx context.Context, period string) ([]string, error)
	Periods(ctx context.Context) ([]string, error)
}

// Repository is the full observation log used by the service layer
type Repository interface {
	Store
	AppendBatch(ctx context.Context, observations []domain.Observation) (int, error)
	Records(ctx context.Context, period string) ([]domain.Record, error)
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}
