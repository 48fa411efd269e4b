package history

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pulse/internal/database"
	"github.com/aristath/pulse/internal/domain"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// every pooled connection would get its own in-memory database
	db.SetMaxOpenConns(1)

	schema, err := database.Schema(database.NameHistory)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newRepo(t *testing.T) *SQLiteRepository {
	return NewSQLiteRepository(setupTestDB(t), zerolog.New(nil).Level(zerolog.Disabled))
}

func obs(entity, kpi, period string, day int, value float64) domain.Observation {
	ts, _ := time.Parse("2006-01", period)
	return domain.Observation{
		EntityID:  entity,
		KPIID:     kpi,
		Period:    period,
		Value:     value,
		Timestamp: ts.AddDate(0, 0, day),
	}
}

func TestAppendAndGetHistory(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-03", 0, 5.8)))
	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-01", 0, 4.5)))
	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-02", 0, 5.0)))
	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "satEP", "2024-02", 0, 91)))

	history, err := repo.GetHistory(ctx, "ana", "tmo")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []float64{4.5, 5.0, 5.8}, domain.Values(domain.Points(history)), "chronological order")
	assert.Equal(t, "2024-01", history[0].Period)
	assert.Equal(t, time.UTC, history[0].Timestamp.Location())

	empty, err := repo.GetHistory(ctx, "ana", "resEP")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAppendObservation_IdempotentOnExactDuplicates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	o := obs("ana", "tmo", "2024-01", 0, 4.5)

	require.NoError(t, repo.AppendObservation(ctx, o))
	require.NoError(t, repo.AppendObservation(ctx, o))

	corrected := o
	corrected.Value = 4.7
	require.NoError(t, repo.AppendObservation(ctx, corrected))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "same timestamp with a different value is a new entry")
}

func TestGetHistory_LatestCorrectionWins(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-01", 0, 5)))
	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-02", 0, 6)))
	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-02", 0, 5.5)))
	require.NoError(t, repo.AppendObservation(ctx, obs("ana", "tmo", "2024-02", 10, 5.2)))

	history, err := repo.GetHistory(ctx, "ana", "tmo")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5.5, 5.2}, domain.Values(domain.Points(history)))

	records, err := repo.Records(ctx, "2024-02")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, history[len(history)-1].Value, records[0].Values["tmo"])
}

func TestAppendObservation_Validation(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		obs  domain.Observation
	}{
		{name: "missing entity", obs: obs("", "tmo", "2024-01", 0, 1)},
		{name: "missing kpi", obs: obs("ana", "", "2024-01", 0, 1)},
		{name: "missing period", obs: domain.Observation{EntityID: "ana", KPIID: "tmo", Value: 1}},
		{name: "nan", obs: obs("ana", "tmo", "2024-01", 0, math.NaN())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, repo.AppendObservation(ctx, tt.obs))
		})
	}
}

func TestAppendBatch(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	batch := []domain.Observation{
		obs("ana", "tmo", "2024-01", 0, 4.5),
		obs("ana", "tmo", "2024-01", 0, 4.5),
		obs("bea", "tmo", "2024-01", 0, 5.5),
	}

	inserted, err := repo.AppendBatch(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	inserted, err = repo.AppendBatch(ctx, batch)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	_, err = repo.AppendBatch(ctx, []domain.Observation{obs("", "tmo", "2024-01", 0, 1)})
	assert.Error(t, err)
}

func TestEntitiesAndPeriods(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.AppendBatch(ctx, []domain.Observation{
		obs("carla", "tmo", "2024-02", 0, 5),
		obs("ana", "tmo", "2024-02", 0, 5),
		obs("ana", "tmo", "2024-01", 0, 5),
	})
	require.NoError(t, err)

	entities, err := repo.Entities(ctx, "2024-02")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "carla"}, entities)

	periods, err := repo.Periods(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01", "2024-02"}, periods)
}

func TestRecords(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.AppendBatch(ctx, []domain.Observation{
		obs("ana", "tmo", "2024-02", 1, 5.2),
		obs("ana", "tmo", "2024-02", 10, 4.9),
		obs("ana", "satEP", "2024-02", 1, 92),
		obs("bea", "satEP", "2024-02", 1, 85),
		obs("bea", "satEP", "2024-01", 1, 70),
	})
	require.NoError(t, err)

	records, err := repo.Records(ctx, "2024-02")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "ana", records[0].EntityID)
	assert.Equal(t, "2024-02", records[0].Period)
	assert.Equal(t, map[string]float64{"tmo": 4.9, "satEP": 92}, records[0].Values, "latest observation wins")
	assert.Equal(t, map[string]float64{"satEP": 85}, records[1].Values)

	_, err = repo.Records(ctx, "2023-12")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestPrune(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.AppendBatch(ctx, []domain.Observation{
		obs("ana", "tmo", "2023-01", 0, 5),
		obs("ana", "tmo", "2023-06", 0, 5),
		obs("ana", "tmo", "2024-01", 0, 5),
	})
	require.NoError(t, err)

	deleted, err := repo.Prune(ctx, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
