package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pulse/internal/domain"
	"github.com/aristath/pulse/internal/modules/dashboard"
	"github.com/aristath/pulse/internal/modules/history"
)

const recordsJSON = `[
  {"entity_id": "ana", "period": "2024-03", "values": {"tmo": 4.5, "satEP": 95}},
  {"entity_id": "ana", "period": "2024-04", "values": {"tmo": 5.0, "satEP": 95}},
  {"entity_id": "ana", "period": "2024-05", "values": {"tmo": 5.8, "satEP": 95}},
  {"entity_id": "bea", "period": "2024-03", "values": {"tmo": 6.0, "satEP": 80}},
  {"entity_id": "bea", "period": "2024-04", "values": {"tmo": 5.5, "satEP": 80}},
  {"entity_id": "bea", "period": "2024-05", "values": {"tmo": 5.0, "satEP": 80}}
]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScore_JSON(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "score", "2024-05", "-i", input, "-f", "json")
	require.NoError(t, err)

	var board dashboard.Scoreboard
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	assert.Equal(t, "2024-05", board.Period)
	require.Len(t, board.Entities, 2)
	assert.Equal(t, 1, board.Entities[0].Rank)
	assert.Equal(t, 2, board.Entities[1].Rank)
}

func TestScore_DefaultsToLatestPeriod(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "score", "-i", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Scoreboard 2024-05")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "bea")
}

func TestScore_Entity(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "score", "2024-05", "-i", input, "--entity", "bea", "-f", "json")
	require.NoError(t, err)

	var score dashboard.EntityScore
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.Equal(t, "bea", score.EntityID)
	assert.NotEmpty(t, score.Breakdown)
}

func TestScore_UnknownPeriod(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	_, err := run(t, "score", "2023-01", "-i", input)
	require.Error(t, err)

	var notFound *notFoundError
	assert.True(t, errors.As(err, &notFound))
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestScore_NoInput(t *testing.T) {
	_, err := run(t, "score")
	var notFound *notFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestLeaderboard(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "leaderboard", "tmo", "2024-05", "-i", input, "-n", "1", "-f", "json")
	require.NoError(t, err)
	var top dashboard.Leaderboard
	require.NoError(t, json.Unmarshal([]byte(out), &top))
	require.Len(t, top.Entries, 1)
	assert.Equal(t, "bea", top.Entries[0].EntityID)

	out, err = run(t, "leaderboard", "tmo", "-i", input, "-n", "1", "--bottom", "-f", "json")
	require.NoError(t, err)
	var bottom dashboard.Leaderboard
	require.NoError(t, json.Unmarshal([]byte(out), &bottom))
	require.Len(t, bottom.Entries, 1)
	assert.Equal(t, "ana", bottom.Entries[0].EntityID)
	assert.Equal(t, dashboard.OrderBottom, bottom.Order)
}

func TestLeaderboard_UnknownKPI(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	_, err := run(t, "leaderboard", "nps", "-i", input)
	var notFound *notFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestTrendAndRisk(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "trend", "ana", "tmo", "-i", input, "-f", "json")
	require.NoError(t, err)
	var trend domain.TrendResult
	require.NoError(t, json.Unmarshal([]byte(out), &trend))
	assert.Equal(t, domain.TrendWorsening, trend.Direction)
	assert.Equal(t, 3, trend.AnalyzedWindow.Points)

	out, err = run(t, "risk", "ana", "tmo", "-i", input, "-f", "json")
	require.NoError(t, err)
	var assessment dashboard.Assessment
	require.NoError(t, json.Unmarshal([]byte(out), &assessment))
	assert.Equal(t, 5.8, assessment.Current)
	assert.Equal(t, domain.RiskHigh, assessment.Forecast.Tier)
	assert.NotEmpty(t, assessment.Forecast.Recommendation)

	out, err = run(t, "risk", "ana", "tmo", "-i", input)
	require.NoError(t, err)
	assert.Contains(t, out, "momentum")
	assert.Contains(t, out, "forecast")
}

func TestHeatmapAndSummary(t *testing.T) {
	input := writeFile(t, "records.json", recordsJSON)

	out, err := run(t, "heatmap", "2024-05", "-i", input, "-f", "json")
	require.NoError(t, err)
	var heatmap dashboard.Heatmap
	require.NoError(t, json.Unmarshal([]byte(out), &heatmap))
	assert.Equal(t, "2024-04", heatmap.PreviousPeriod)
	assert.Len(t, heatmap.Rows, 2)

	out, err = run(t, "summary", "-i", input)
	require.NoError(t, err)
	assert.Contains(t, out, "Team 2024-05: 2 entities")
}

func TestIngest_Persistent(t *testing.T) {
	input := writeFile(t, "records.yaml", `
records:
  - entity_id: ana
    period: "2024-05"
    values: {tmo: 5.0, satEP: 92}
`)
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := run(t, "ingest", "-i", input)
	assert.Error(t, err, "ingest without --db")

	out, err := run(t, "ingest", "-i", input, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2024-05")

	// a later run reads the persisted log without any input
	out, err = run(t, "score", "--db", db, "-f", "json")
	require.NoError(t, err)
	var board dashboard.Scoreboard
	require.NoError(t, json.Unmarshal([]byte(out), &board))
	require.Len(t, board.Entities, 1)
	assert.Equal(t, "ana", board.Entities[0].EntityID)
}

func TestCatalog(t *testing.T) {
	out, err := run(t, "catalog", "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"tmo"`)
	assert.Contains(t, out, `"settings"`)

	_, err = run(t, "catalog", "-f", "xml")
	assert.Error(t, err)
}

func TestReadRecords(t *testing.T) {
	wrapped := writeFile(t, "wrapped.json", `{"records": [{"entity_id": "ana", "period": "2024-05", "values": {"tmo": 5}}]}`)
	records, err := readRecords(wrapped)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 5.0, records[0].Values["tmo"])

	list := writeFile(t, "list.yml", "- entity_id: bea\n  period: \"2024-04\"\n  values: {satEP: 88}\n")
	records, err = readRecords(list)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bea", records[0].EntityID)

	empty := writeFile(t, "empty.json", `[]`)
	_, err = readRecords(empty)
	assert.Error(t, err)

	_, err = readRecords(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
