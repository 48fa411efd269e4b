package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/modules/history"
)

const defaultJobTimeout = 10 * time.Minute

// SnapshotJob stores a snapshot of the latest period's scoreboard
type SnapshotJob struct {
	periods   PeriodSource
	snapshots SnapshotCreator
	timeout   time.Duration
	log       zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job
func NewSnapshotJob(periods PeriodSource, snapshots SnapshotCreator, log zerolog.Logger) *SnapshotJob {
	return &SnapshotJob{
		periods:   periods,
		snapshots: snapshots,
		timeout:   defaultJobTimeout,
		log:       log.With().Str("job", "snapshot_latest_period").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "snapshot_latest_period"
}

// Run snapshots the latest period. An empty history is not an error.
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	period, err := j.periods.LatestPeriod(ctx)
	if errors.Is(err, history.ErrNotFound) {
		j.log.Info().Msg("No observations yet, skipping snapshot")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve latest period: %w", err)
	}

	snapshot, err := j.snapshots.Create(ctx, period)
	if err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", period, err)
	}

	j.log.Info().Str("id", snapshot.ID).Str("period", period).Msg("Snapshot stored")
	return nil
}

// PruneJob enforces the retention window on observations and snapshots
type PruneJob struct {
	history   HistoryPruner
	snapshots SnapshotPruner
	events    EventEmitter
	now       func() time.Time
	retention time.Duration
	timeout   time.Duration
	log       zerolog.Logger
}

// NewPruneJob creates a new prune job. snapshots and emitter may be nil.
func NewPruneJob(
	historyPruner HistoryPruner,
	snapshotPruner SnapshotPruner,
	retentionDays int,
	emitter EventEmitter,
	log zerolog.Logger,
) *PruneJob {
	return &PruneJob{
		history:   historyPruner,
		snapshots: snapshotPruner,
		events:    emitter,
		now:       time.Now,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		timeout:   defaultJobTimeout,
		log:       log.With().Str("job", "prune_history").Logger(),
	}
}

// Name returns the job name
func (j *PruneJob) Name() string {
	return "prune_history"
}

// Run deletes data older than the retention window. Zero retention keeps everything.
func (j *PruneJob) Run() error {
	if j.retention <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	cutoff := j.now().Add(-j.retention)
	deleted, err := j.history.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}

	var snapshotsDeleted int64
	if j.snapshots != nil {
		snapshotsDeleted, err = j.snapshots.Prune(ctx, j.retention)
		if err != nil {
			return fmt.Errorf("failed to prune snapshots: %w", err)
		}
	}

	if j.events != nil {
		j.events.Emit("scheduler", &events.HistoryPrunedData{Deleted: deleted, OlderThan: cutoff})
	}

	j.log.Info().
		Int64("observations", deleted).
		Int64("snapshots", snapshotsDeleted).
		Time("older_than", cutoff).
		Msg("Pruned data beyond retention")
	return nil
}

// BackupJob uploads a database backup and rotates old ones
type BackupJob struct {
	backups       Backuper
	retentionDays int
	timeout       time.Duration
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(backups Backuper, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		backups:       backups,
		retentionDays: retentionDays,
		timeout:       30 * time.Minute,
		log:           log.With().Str("job", "backup_databases").Logger(),
	}
}

// Name returns the job name
func (j *BackupJob) Name() string {
	return "backup_databases"
}

// Run uploads a backup. Rotation failures are logged, not returned.
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.backups.CreateAndUpload(ctx)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if _, err := j.backups.RotateOldBackups(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}

	j.log.Info().Str("key", result.Key).Msg("Backup uploaded")
	return nil
}
