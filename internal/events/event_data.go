package events

import (
	"encoding/json"
	"time"
)

// EventData is implemented by every typed event payload
type EventData interface {
	EventType() EventType
}

// ObservationsIngestedData contains data for ObservationsIngested events
type ObservationsIngestedData struct {
	Periods  []string `json:"periods"`
	Records  int      `json:"records"`
	Received int      `json:"received"`
	Inserted int      `json:"inserted"`
}

// EventType returns the event type for ObservationsIngestedData
func (d *ObservationsIngestedData) EventType() EventType {
	return ObservationsIngested
}

// ScoreboardComputedData contains data for ScoreboardComputed events
type ScoreboardComputedData struct {
	Period       string  `json:"period"`
	Entities     int     `json:"entities"`
	AverageScore float64 `json:"average_score"`
	AtRisk       int     `json:"at_risk"`
}

// EventType returns the event type for ScoreboardComputedData
func (d *ScoreboardComputedData) EventType() EventType {
	return ScoreboardComputed
}

// RiskEscalatedData is emitted when an assessment lands in the HIGH tier
type RiskEscalatedData struct {
	EntityID       string  `json:"entity_id"`
	KPIID          string  `json:"kpi_id"`
	Strategy       string  `json:"strategy"`
	RiskScore      float64 `json:"risk_score"`
	Recommendation string  `json:"recommendation"`
}

// EventType returns the event type for RiskEscalatedData
func (d *RiskEscalatedData) EventType() EventType {
	return RiskEscalated
}

// SnapshotCreatedData contains data for SnapshotCreated events
type SnapshotCreatedData struct {
	ID       string `json:"id"`
	Period   string `json:"period"`
	Entities int    `json:"entities"`
}

// EventType returns the event type for SnapshotCreatedData
func (d *SnapshotCreatedData) EventType() EventType {
	return SnapshotCreated
}

// HistoryPrunedData contains data for HistoryPruned events
type HistoryPrunedData struct {
	Deleted   int64     `json:"deleted"`
	OlderThan time.Time `json:"older_than"`
}

// EventType returns the event type for HistoryPrunedData
func (d *HistoryPrunedData) EventType() EventType {
	return HistoryPruned
}

// BackupCompletedData contains data for BackupCompleted events
type BackupCompletedData struct {
	Key       string  `json:"key"`
	SizeBytes int64   `json:"size_bytes"`
	Checksum  string  `json:"checksum"`
	Duration  float64 `json:"duration"`
}

// EventType returns the event type for BackupCompletedData
func (d *BackupCompletedData) EventType() EventType {
	return BackupCompleted
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}

// JobStatusData contains data for job lifecycle events
type JobStatusData struct {
	JobName   string    `json:"job_name"`
	Status    string    `json:"status"` // "started", "completed", "failed"
	Error     string    `json:"error,omitempty"`
	Duration  float64   `json:"duration,omitempty"` // seconds
	Timestamp time.Time `json:"timestamp"`
}

// EventType returns the event type for JobStatusData.
// The actual event type is determined by the Status field.
func (d *JobStatusData) EventType() EventType {
	switch d.Status {
	case "completed":
		return JobCompleted
	case "failed":
		return JobFailed
	default:
		return JobStarted
	}
}

// Event is an emitted event with its typed payload
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data"`
}

// UnmarshalJSON decodes the payload into the typed data of the event type
func (e *Event) UnmarshalJSON(data []byte) error {
	type Alias Event
	aux := &struct {
		Data json.RawMessage `json:"data"`
		*Alias
	}{
		Alias: (*Alias)(e),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if len(aux.Data) == 0 || string(aux.Data) == "null" {
		e.Data = nil
		return nil
	}

	var eventData EventData
	switch aux.Type {
	case ObservationsIngested:
		eventData = &ObservationsIngestedData{}
	case ScoreboardComputed:
		eventData = &ScoreboardComputedData{}
	case RiskEscalated:
		eventData = &RiskEscalatedData{}
	case SnapshotCreated:
		eventData = &SnapshotCreatedData{}
	case HistoryPruned:
		eventData = &HistoryPrunedData{}
	case BackupCompleted:
		eventData = &BackupCompletedData{}
	case ErrorOccurred:
		eventData = &ErrorEventData{}
	case JobStarted, JobCompleted, JobFailed:
		eventData = &JobStatusData{}
	default:
		eventData = &GenericEventData{Type: aux.Type}
	}

	if err := json.Unmarshal(aux.Data, eventData); err != nil {
		return err
	}
	e.Data = eventData
	return nil
}

// GenericEventData is a fallback for events that don't have a specific type
type GenericEventData struct {
	Type EventType              `json:"-"`
	Data map[string]interface{} `json:"-"`
}

// EventType returns the event type for GenericEventData
func (d *GenericEventData) EventType() EventType {
	return d.Type
}

// MarshalJSON serializes the raw payload
func (d *GenericEventData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// UnmarshalJSON deserializes the raw payload
func (d *GenericEventData) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &d.Data)
}
