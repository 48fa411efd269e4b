package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/modules/history"
	"github.com/aristath/pulse/internal/modules/snapshots"
)

// InitializeRepositories creates the repositories over the open databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container.HistoryDB == nil || container.CacheDB == nil {
		return fmt.Errorf("databases must be initialized before repositories")
	}

	container.HistoryRepo = history.NewSQLiteRepository(container.HistoryDB.Conn(), log)
	container.SnapshotRepo = snapshots.NewRepository(container.CacheDB.Conn(), log)
	return nil
}
