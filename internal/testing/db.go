// Package testing provides testing utilities and helpers for the pulse project.
package testing

import (
	"fmt"
	"os"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/database"
	"github.com/aristath/pulse/internal/modules/history"
)

// NewTestDB creates a file-backed SQLite database in the temp dir with the named
// schema applied ("history" or "cache"). The returned cleanup function is idempotent.
func NewTestDB(t *testing.T, name string) (*database.DB, func()) {
	t.Helper()

	// A file per test keeps WAL databases isolated
	tmpFile, err := os.CreateTemp("", fmt.Sprintf("test_%s_*.db", name))
	if err != nil {
		t.Fatalf("Failed to create temporary database file: %v", err)
	}
	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()

	db, err := database.New(database.Config{
		Path:    tmpPath,
		Profile: database.ProfileStandard,
		Name:    name,
	})
	if err != nil {
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to create test database %s: %v", name, err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		_ = os.Remove(tmpPath)
		t.Fatalf("Failed to migrate test database %s: %v", name, err)
	}

	closed := false
	return db, func() {
		if closed {
			return
		}
		closed = true
		if err := db.Close(); err != nil {
			t.Logf("Warning: Failed to close test database %s: %v", name, err)
		}
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(tmpPath + suffix)
		}
	}
}

// NewHistoryRepository returns a history repository over a fresh test database that
// is removed when the test finishes
func NewHistoryRepository(t *testing.T) *history.SQLiteRepository {
	t.Helper()
	db, cleanup := NewTestDB(t, database.NameHistory)
	t.Cleanup(cleanup)
	return history.NewSQLiteRepository(db.Conn(), zerolog.Nop())
}
