/**
 * Package di provides dependency injection type definitions.
 *
 * This package defines the Container type which holds all application dependencies.
 * The Container is the single source of truth for all service instances and is
 * passed to the server and the scheduler.
 */
package di

import (
	"github.com/aristath/pulse/internal/database"
	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/metrics"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/internal/modules/dashboard"
	"github.com/aristath/pulse/internal/modules/history"
	"github.com/aristath/pulse/internal/modules/recommendation"
	"github.com/aristath/pulse/internal/modules/snapshots"
	"github.com/aristath/pulse/internal/reliability"
	"github.com/aristath/pulse/internal/scheduler"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Databases: history (append-only observation log) and cache (scoreboard snapshots)
 * - Repositories: observation log and snapshot storage
 * - Engine: catalog-driven scoring, trend, risk and recommendation components
 * - Services: dashboard orchestration, snapshots, backups
 * - Infrastructure: event manager, metrics recorder, cron scheduler
 */
type Container struct {
	// Databases
	HistoryDB *database.DB
	CacheDB   *database.DB

	// Repositories
	HistoryRepo  *history.SQLiteRepository
	SnapshotRepo *snapshots.Repository

	// Engine
	Catalog  *catalog.Catalog
	Selector *recommendation.Selector
	Engine   *dashboard.Engine

	// Services
	DashboardService *dashboard.Service
	SnapshotService  *snapshots.Service
	BackupService    *reliability.BackupService // nil when backups are not configured

	// Infrastructure
	EventManager *events.Manager
	Metrics      *metrics.Recorder
	Scheduler    *scheduler.Scheduler
}

// Databases returns every open database
func (c *Container) Databases() []*database.DB {
	var dbs []*database.DB
	for _, db := range []*database.DB{c.HistoryDB, c.CacheDB} {
		if db != nil {
			dbs = append(dbs, db)
		}
	}
	return dbs
}

// Close closes every database. It is safe to call on a partially built container.
func (c *Container) Close() error {
	var firstErr error
	for _, db := range c.Databases() {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// JobInstances holds the scheduled jobs so they can be triggered manually
type JobInstances struct {
	Snapshot          scheduler.Job
	Prune             scheduler.Job
	Backup            scheduler.Job // nil when backups are not configured
	DailyMaintenance  scheduler.Job
	WeeklyMaintenance scheduler.Job
}

// All returns the configured jobs keyed by name
func (j *JobInstances) All() map[string]scheduler.Job {
	jobs := make(map[string]scheduler.Job)
	for _, job := range []scheduler.Job{j.Snapshot, j.Prune, j.Backup, j.DailyMaintenance, j.WeeklyMaintenance} {
		if job != nil {
			jobs[job.Name()] = job
		}
	}
	return jobs
}
