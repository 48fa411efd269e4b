package events

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestEmit_FansOut(t *testing.T) {
	m := newTestManager()
	a, unsubA := m.Subscribe(4)
	b, unsubB := m.Subscribe(4)
	defer unsubA()
	defer unsubB()

	m.Emit("dashboard", &SnapshotCreatedData{ID: "s1", Period: "2024-05", Entities: 3})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, SnapshotCreated, ev.Type)
			assert.Equal(t, "dashboard", ev.Module)
			data, ok := ev.Data.(*SnapshotCreatedData)
			require.True(t, ok)
			assert.Equal(t, "s1", data.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestEmit_FullSubscriberDoesNotBlock(t *testing.T) {
	m := newTestManager()
	ch, unsub := m.Subscribe(1)
	defer unsub()

	m.Emit("test", &HistoryPrunedData{Deleted: 1})
	m.Emit("test", &HistoryPrunedData{Deleted: 2})

	assert.Equal(t, uint64(1), m.Dropped())
	ev := <-ch
	assert.Equal(t, int64(1), ev.Data.(*HistoryPrunedData).Deleted)
}

func TestSubscribe_Unsubscribe(t *testing.T) {
	m := newTestManager()
	ch, unsub := m.Subscribe(0)
	assert.Equal(t, 1, m.Subscribers())

	unsub()
	unsub()

	assert.Equal(t, 0, m.Subscribers())
	_, open := <-ch
	assert.False(t, open)

	m.Emit("test", &HistoryPrunedData{})
}

func TestEmit_Concurrent(t *testing.T) {
	m := newTestManager()
	ch, unsub := m.Subscribe(1000)
	defer unsub()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				m.Emit("test", &JobStatusData{JobName: "x", Status: "completed"})
			}
		}()
	}
	wg.Wait()

	assert.Len(t, ch, 500)
}

func TestEmitError(t *testing.T) {
	m := newTestManager()
	ch, unsub := m.Subscribe(1)
	defer unsub()

	m.EmitError("scheduler", errors.New("boom"), map[string]interface{}{"job": "backup"})

	ev := <-ch
	assert.Equal(t, ErrorOccurred, ev.Type)
	assert.Equal(t, "boom", ev.Data.(*ErrorEventData).Error)
}

func TestJobStatusData_EventType(t *testing.T) {
	assert.Equal(t, JobStarted, (&JobStatusData{Status: "started"}).EventType())
	assert.Equal(t, JobCompleted, (&JobStatusData{Status: "completed"}).EventType())
	assert.Equal(t, JobFailed, (&JobStatusData{Status: "failed"}).EventType())
}

func TestEvent_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		check func(t *testing.T, data EventData)
	}{
		{
			name:  "typed payload",
			event: Event{Type: RiskEscalated, Module: "dashboard", Data: &RiskEscalatedData{EntityID: "ana", KPIID: "tmo", RiskScore: 82}},
			check: func(t *testing.T, data EventData) {
				d, ok := data.(*RiskEscalatedData)
				require.True(t, ok)
				assert.Equal(t, "ana", d.EntityID)
				assert.Equal(t, 82.0, d.RiskScore)
			},
		},
		{
			name:  "job status",
			event: Event{Type: JobFailed, Data: &JobStatusData{JobName: "backup", Status: "failed", Error: "timeout"}},
			check: func(t *testing.T, data EventData) {
				d, ok := data.(*JobStatusData)
				require.True(t, ok)
				assert.Equal(t, JobFailed, d.EventType())
			},
		},
		{
			name:  "unknown type",
			event: Event{Type: "CUSTOM", Data: &GenericEventData{Type: "CUSTOM", Data: map[string]interface{}{"k": "v"}}},
			check: func(t *testing.T, data EventData) {
				d, ok := data.(*GenericEventData)
				require.True(t, ok)
				assert.Equal(t, EventType("CUSTOM"), d.EventType())
				assert.Equal(t, "v", d.Data["k"])
			},
		},
		{
			name:  "no payload",
			event: Event{Type: ScoreboardComputed},
			check: func(t *testing.T, data EventData) {
				assert.Nil(t, data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.event)
			require.NoError(t, err)

			var decoded Event
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, tt.event.Type, decoded.Type)
			tt.check(t, decoded.Data)
		})
	}
}
