// Package events provides typed system events and an in-process fan-out manager
// feeding the live WebSocket feed.
package events

// EventType represents different event types
type EventType string

const (
	ObservationsIngested EventType = "OBSERVATIONS_INGESTED"
	ScoreboardComputed   EventType = "SCOREBOARD_COMPUTED"
	RiskEscalated        EventType = "RISK_ESCALATED"
	SnapshotCreated      EventType = "SNAPSHOT_CREATED"
	HistoryPruned        EventType = "HISTORY_PRUNED"
	BackupCompleted      EventType = "BACKUP_COMPLETED"
	ErrorOccurred        EventType = "ERROR_OCCURRED"

	JobStarted   EventType = "JOB_STARTED"
	JobCompleted EventType = "JOB_COMPLETED"
	JobFailed    EventType = "JOB_FAILED"
)
