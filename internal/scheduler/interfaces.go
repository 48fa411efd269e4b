package scheduler

import (
	"context"
	"time"

	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/modules/snapshots"
	"github.com/aristath/pulse/internal/reliability"
)

// EventEmitter defines the contract for event emission
type EventEmitter interface {
	Emit(module string, data events.EventData)
}

// PeriodSource resolves the most recent period with observations
type PeriodSource interface {
	LatestPeriod(ctx context.Context) (string, error)
}

// SnapshotCreator persists the scoreboard of a period
type SnapshotCreator interface {
	Create(ctx context.Context, period string) (*snapshots.Snapshot, error)
}

// SnapshotPruner removes snapshots beyond a retention window
type SnapshotPruner interface {
	Prune(ctx context.Context, retention time.Duration) (int64, error)
}

// HistoryPruner removes observations older than a cutoff
type HistoryPruner interface {
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

// Backuper archives the databases and rotates remote copies
type Backuper interface {
	CreateAndUpload(ctx context.Context) (*reliability.BackupResult, error)
	RotateOldBackups(ctx context.Context, retentionDays int) (int, error)
}
