package testing

import (
	"sync"

	"github.com/aristath/pulse/internal/events"
)

// RecordingEmitter captures emitted events for assertions
type RecordingEmitter struct {
	mu     sync.Mutex
	events []events.EventData
}

// NewRecordingEmitter creates an empty emitter
func NewRecordingEmitter() *RecordingEmitter {
	return &RecordingEmitter{}
}

// Emit records the event
func (m *RecordingEmitter) Emit(module string, data events.EventData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
}

// OfType returns the recorded events of one type in emission order
func (m *RecordingEmitter) OfType(t events.EventType) []events.EventData {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []events.EventData
	for _, e := range m.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of recorded events
func (m *RecordingEmitter) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
