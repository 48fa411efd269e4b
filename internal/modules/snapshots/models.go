// Package snapshots persists computed scoreboards so a period can be reviewed as it
// was scored at a point in time.
package snapshots

import (
	"errors"
	"time"

	"github.com/aristath/pulse/internal/modules/dashboard"
)

// ErrNotFound is returned when no snapshot matches
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is a stored scoreboard
type Snapshot struct {
	CreatedAt   time.Time             `json:"created_at"`
	Scoreboard  *dashboard.Scoreboard `json:"scoreboard,omitempty"`
	ID          string                `json:"id"`
	Period      string                `json:"period"`
	EntityCount int                   `json:"entity_count"`
	SizeBytes   int                   `json:"size_bytes"`
}
