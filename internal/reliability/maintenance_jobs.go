package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/pulse/internal/database"
)

const (
	criticalFreeBytes = 500 << 20
	lowFreeBytes      = 5 << 30
)

// DiskUsageFunc reports free bytes on the filesystem holding a path
type DiskUsageFunc func(path string) (uint64, error)

func freeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}

// DailyMaintenanceJob checks database integrity, truncates WAL files and checks the
// free disk space of the data directory
type DailyMaintenanceJob struct {
	databases []*database.DB
	diskUsage DiskUsageFunc
	dataDir   string
	timeout   time.Duration
	log       zerolog.Logger
}

// NewDailyMaintenanceJob creates a new daily maintenance job
func NewDailyMaintenanceJob(databases []*database.DB, dataDir string, log zerolog.Logger) *DailyMaintenanceJob {
	return &DailyMaintenanceJob{
		databases: databases,
		diskUsage: freeBytes,
		dataDir:   dataDir,
		timeout:   5 * time.Minute,
		log:       log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *DailyMaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the daily maintenance job
func (j *DailyMaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	j.log.Info().Msg("Starting daily maintenance")
	started := time.Now()

	for _, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("Integrity check failed")
			return err
		}
		// Checkpoint failures are not fatal; the next run retries
		if err := db.WALCheckpoint(ctx, "TRUNCATE"); err != nil {
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("WAL checkpoint failed")
		}
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	j.log.Info().
		Dur("duration_ms", time.Since(started)).
		Int("databases", len(j.databases)).
		Msg("Daily maintenance completed")
	return nil
}

func (j *DailyMaintenanceJob) checkDiskSpace() error {
	free, err := j.diskUsage(j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to read disk usage: %w", err)
	}

	switch {
	case free < criticalFreeBytes:
		j.log.Error().Uint64("free_bytes", free).Msg("Insufficient disk space")
		return fmt.Errorf("only %d MB free in %s", free>>20, j.dataDir)
	case free < lowFreeBytes:
		j.log.Warn().Uint64("free_bytes", free).Msg("Disk space running low")
	default:
		j.log.Debug().Uint64("free_bytes", free).Msg("Disk space check")
	}
	return nil
}

// WeeklyMaintenanceJob reclaims space in the cache database after snapshot pruning
type WeeklyMaintenanceJob struct {
	databases []*database.DB
	log       zerolog.Logger
}

// NewWeeklyMaintenanceJob creates a new weekly maintenance job
func NewWeeklyMaintenanceJob(databases []*database.DB, log zerolog.Logger) *WeeklyMaintenanceJob {
	return &WeeklyMaintenanceJob{
		databases: databases,
		log:       log.With().Str("job", "weekly_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *WeeklyMaintenanceJob) Name() string {
	return "weekly_maintenance"
}

// Run vacuums every configured database. Failures are logged and skipped.
func (j *WeeklyMaintenanceJob) Run() error {
	for _, db := range j.databases {
		if err := j.vacuum(db); err != nil {
			j.log.Error().Err(err).Str("database", db.Name()).Msg("VACUUM failed")
		}
	}
	return nil
}

func (j *WeeklyMaintenanceJob) vacuum(db *database.DB) error {
	ctx := context.Background()
	before, err := db.GetStats(ctx)
	if err != nil {
		return err
	}
	if _, err := db.Conn().ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("vacuum failed: %w", err)
	}
	after, err := db.GetStats(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("database", db.Name()).
		Int64("size_before", before.SizeBytes).
		Int64("size_after", after.SizeBytes).
		Msg("VACUUM completed")
	return nil
}
