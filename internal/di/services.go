package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/config"
	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/metrics"
	"github.com/aristath/pulse/internal/modules/catalog"
	"github.com/aristath/pulse/internal/modules/dashboard"
	"github.com/aristath/pulse/internal/modules/recommendation"
	"github.com/aristath/pulse/internal/modules/snapshots"
	"github.com/aristath/pulse/internal/reliability"
	"github.com/aristath/pulse/internal/scheduler"
)

// InitializeServices builds the engine, services and infrastructure
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	c, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	selector, err := loadSelector(cfg.RecommendationsPath)
	if err != nil {
		return err
	}

	container.Catalog = c
	container.Selector = selector
	container.Engine = dashboard.NewEngine(c, selector)

	container.EventManager = events.NewManager(log)
	container.Metrics = metrics.NewRecorder()

	container.DashboardService = dashboard.NewService(
		container.Engine,
		container.HistoryRepo,
		container.EventManager,
		container.Metrics,
		log,
	)
	container.SnapshotService = snapshots.NewService(
		container.DashboardService,
		container.SnapshotRepo,
		container.EventManager,
		log,
	)

	if cfg.Backup.Enabled() {
		store, err := reliability.NewS3Store(context.Background(), cfg.Backup)
		if err != nil {
			return fmt.Errorf("failed to initialize backup store: %w", err)
		}
		container.BackupService = reliability.NewBackupService(
			store,
			container.Databases(),
			cfg.Backup.Prefix,
			cfg.DataDir,
			container.EventManager,
			log,
		)
	} else {
		log.Info().Msg("Backups disabled, no bucket configured")
	}

	container.Scheduler = scheduler.New(container.Metrics, container.EventManager, log)

	log.Info().
		Int("kpis", len(c.IDs())).
		Bool("backups", container.BackupService != nil).
		Msg("Services initialized")
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return c, nil
}

func loadSelector(path string) (*recommendation.Selector, error) {
	if path == "" {
		return recommendation.Default(), nil
	}
	s, err := recommendation.LoadTableFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load recommendations: %w", err)
	}
	return s, nil
}
