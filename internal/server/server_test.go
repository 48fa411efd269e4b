package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/aristath/pulse/internal/config"
	"github.com/aristath/pulse/internal/di"
	"github.com/aristath/pulse/internal/events"
)

func setupServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()
	cfg := &config.Config{
		DataDir:          t.TempDir(),
		SnapshotSchedule: "0 5 0 1 * *",
		PruneSchedule:    "0 30 1 * * *",
		RetentionDays:    365,
	}
	log := zerolog.New(nil).Level(zerolog.Disabled)

	container, jobs, err := di.Wire(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Close() })

	s := New(Config{Log: log, Container: container, Jobs: jobs, Port: 0, DevMode: true})
	s.systemHandlers.stats = func() (float64, float64) { return 12.5, 40 }
	return s, container
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "pulse", body["service"])
}

func TestAPI_IngestAndScore(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodPost, "/api/observations",
		`{"records":[{"entity_id":"ana","period":"2024-05","values":{"tmo":5,"satEP":92}}]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/scores/2024-05", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ana"`)

	w = do(t, s, http.MethodGet, "/api/scores/2023-01", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := setupServer(t)

	do(t, s, http.MethodGet, "/api/catalog", "")

	w := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pulse_http_request_duration_seconds")
	assert.Contains(t, w.Body.String(), `route="/api/catalog"`)
}

func TestSystemStatus(t *testing.T) {
	s, _ := setupServer(t)

	w := do(t, s, http.MethodGet, "/api/system/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, 12.5, status.CPUPercent)
	assert.Equal(t, 40.0, status.MemoryPercent)
	assert.Len(t, status.Databases, 2)
	assert.False(t, status.Backups)
}

func TestSystemJobs(t *testing.T) {
	s, container := setupServer(t)

	w := do(t, s, http.MethodGet, "/api/system/jobs", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Jobs []string `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, []string{"daily_maintenance", "prune_history", "snapshot_latest_period", "weekly_maintenance"}, list.Jobs)

	w = do(t, s, http.MethodPost, "/api/system/jobs/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	stream, unsubscribe := container.EventManager.Subscribe(16)
	defer unsubscribe()

	w = do(t, s, http.MethodPost, "/api/system/jobs/prune_history", "")
	require.Equal(t, http.StatusAccepted, w.Code)

	timeout := time.After(5 * time.Second)
	for {
		select {
		case event := <-stream:
			if event.Type == events.JobCompleted {
				return
			}
			require.NotEqual(t, events.JobFailed, event.Type)
		case <-timeout:
			t.Fatal("prune job did not complete")
		}
	}
}

func TestEventsWebSocket(t *testing.T) {
	s, container := setupServer(t)

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events/ws?types=snapshot_created"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	assert.Equal(t, 1, container.EventManager.Subscribers())

	// filtered out
	container.EventManager.Emit("test", &events.HistoryPrunedData{Deleted: 3})
	container.EventManager.Emit("test", &events.SnapshotCreatedData{ID: "abc", Period: "2024-05", Entities: 2})

	msgType, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, msgType)

	var event events.Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, events.SnapshotCreated, event.Type)
	assert.Equal(t, "test", event.Module)

	created, ok := event.Data.(*events.SnapshotCreatedData)
	require.True(t, ok)
	assert.Equal(t, "2024-05", created.Period)
	assert.Equal(t, 2, created.Entities)
}

func TestParseTypes(t *testing.T) {
	assert.Nil(t, parseTypes(""))
	allowed := parseTypes("risk_escalated, SNAPSHOT_CREATED,,")
	assert.Len(t, allowed, 2)
	assert.True(t, allowed[events.RiskEscalated])
	assert.True(t, allowed[events.SnapshotCreated])
}
