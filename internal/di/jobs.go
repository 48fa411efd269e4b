package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/config"
	"github.com/aristath/pulse/internal/reliability"
	"github.com/aristath/pulse/internal/scheduler"
)

const (
	dailyMaintenanceSchedule  = "0 0 2 * * *"
	weeklyMaintenanceSchedule = "0 0 4 * * 0"

	// backupRetentionDays is how long remote backups are kept beyond the newest three
	backupRetentionDays = 30
)

// RegisterJobs creates the background jobs and registers them with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container.Scheduler == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	jobs := &JobInstances{
		Snapshot: scheduler.NewSnapshotJob(container.DashboardService, container.SnapshotService, log),
		Prune: scheduler.NewPruneJob(
			container.HistoryRepo,
			container.SnapshotService,
			cfg.RetentionDays,
			container.EventManager,
			log,
		),
		DailyMaintenance:  reliability.NewDailyMaintenanceJob(container.Databases(), cfg.DataDir, log),
		WeeklyMaintenance: reliability.NewWeeklyMaintenanceJob(container.Databases(), log),
	}
	if container.BackupService != nil {
		jobs.Backup = scheduler.NewBackupJob(container.BackupService, backupRetentionDays, log)
	}

	schedules := []struct {
		job      scheduler.Job
		schedule string
	}{
		{jobs.Snapshot, cfg.SnapshotSchedule},
		{jobs.Prune, cfg.PruneSchedule},
		{jobs.DailyMaintenance, dailyMaintenanceSchedule},
		{jobs.WeeklyMaintenance, weeklyMaintenanceSchedule},
	}
	if jobs.Backup != nil {
		schedules = append(schedules, struct {
			job      scheduler.Job
			schedule string
		}{jobs.Backup, cfg.BackupSchedule})
	}

	for _, s := range schedules {
		if err := container.Scheduler.AddJob(s.schedule, s.job); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", s.job.Name(), err)
		}
	}

	return jobs, nil
}
