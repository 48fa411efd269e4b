package history

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/pulse/internal/database"
	"github.com/aristath/pulse/internal/domain"
)

// SQLiteRepository stores observations in the history database
type SQLiteRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSQLiteRepository creates a new observation repository
func NewSQLiteRepository(db *sql.DB, log zerolog.Logger) *SQLiteRepository {
	return &SQLiteRepository{
		db:  db,
		log: log.With().Str("component", "history_repository").Logger(),
	}
}

const insertObservation = `
	INSERT OR IGNORE INTO observations (entity_id, kpi_id, period, value, observed_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
`

func validate(obs domain.Observation) error {
	if obs.EntityID == "" || obs.KPIID == "" {
		return fmt.Errorf("observation requires entity and kpi ids")
	}
	if obs.Period == "" {
		return fmt.Errorf("observation %s/%s has no period", obs.EntityID, obs.KPIID)
	}
	if math.IsNaN(obs.Value) || math.IsInf(obs.Value, 0) {
		return fmt.Errorf("observation %s/%s has a non-finite value", obs.EntityID, obs.KPIID)
	}
	return nil
}

// AppendObservation appends one observation. Exact duplicates are ignored.
func (r *SQLiteRepository) AppendObservation(ctx context.Context, obs domain.Observation) error {
	if err := validate(obs); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, insertObservation,
		obs.EntityID, obs.KPIID, obs.Period, obs.Value, obs.Timestamp.Unix(), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to append observation: %w", err)
	}
	return nil
}

// AppendBatch appends observations in a single transaction and returns how many were
// new. Duplicates are ignored and do not count.
func (r *SQLiteRepository) AppendBatch(ctx context.Context, observations []domain.Observation) (int, error) {
	for _, obs := range observations {
		if err := validate(obs); err != nil {
			return 0, err
		}
	}

	inserted := 0
	now := time.Now().Unix()
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertObservation)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, obs := range observations {
			res, err := stmt.ExecContext(ctx,
				obs.EntityID, obs.KPIID, obs.Period, obs.Value, obs.Timestamp.Unix(), now)
			if err != nil {
				return fmt.Errorf("failed to append observation %s/%s: %w", obs.EntityID, obs.KPIID, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.log.Debug().Int("received", len(observations)).Int("inserted", inserted).Msg("Appended observations")
	return inserted, nil
}

// GetHistory returns the observations of one entity and KPI in chronological order.
// Of several observations sharing a timestamp only the latest appended is returned,
// matching the latest-wins rule of Records.
func (r *SQLiteRepository) GetHistory(ctx context.Context, entityID, kpiID string) ([]domain.Observation, error) {
	query := `
		SELECT entity_id, kpi_id, period, value, observed_at
		FROM observations
		WHERE entity_id = ? AND kpi_id = ?
		ORDER BY observed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, entityID, kpiID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	observations := make([]domain.Observation, 0)
	for rows.Next() {
		var obs domain.Observation
		var observedAt int64
		if err := rows.Scan(&obs.EntityID, &obs.KPIID, &obs.Period, &obs.Value, &observedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		obs.Timestamp = time.Unix(observedAt, 0).UTC()
		if n := len(observations); n > 0 && observations[n-1].Timestamp.Equal(obs.Timestamp) {
			observations[n-1] = obs
			continue
		}
		observations = append(observations, obs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return observations, nil
}

// Entities returns the ids of the entities observed in a period, sorted
func (r *SQLiteRepository) Entities(ctx context.Context, period string) ([]string, error) {
	return r.queryStrings(ctx,
		"SELECT DISTINCT entity_id FROM observations WHERE period = ? ORDER BY entity_id", period)
}

// Periods returns every period with observations, oldest first
func (r *SQLiteRepository) Periods(ctx context.Context) ([]string, error) {
	return r.queryStrings(ctx, "SELECT DISTINCT period FROM observations ORDER BY period")
}

func (r *SQLiteRepository) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// Records rebuilds the per-entity KPI records of a period. When an entity has several
// observations of a KPI in the period the latest one wins. Returns ErrNotFound when the
// period has no observations.
func (r *SQLiteRepository) Records(ctx context.Context, period string) ([]domain.Record, error) {
	query := `
		SELECT entity_id, kpi_id, value
		FROM observations
		WHERE period = ?
		ORDER BY entity_id ASC, observed_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []domain.Record
	index := make(map[string]int)
	for rows.Next() {
		var entityID, kpiID string
		var value float64
		if err := rows.Scan(&entityID, &kpiID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan record value: %w", err)
		}

		i, ok := index[entityID]
		if !ok {
			i = len(records)
			index[entityID] = i
			records = append(records, domain.Record{
				EntityID: entityID,
				Period:   period,
				Values:   make(map[string]float64),
			})
		}
		records[i].Values[kpiID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("period %s: %w", period, ErrNotFound)
	}
	return records, nil
}

// Prune deletes observations taken before olderThan and returns how many were removed
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM observations WHERE observed_at < ?", olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune observations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned observations: %w", err)
	}

	r.log.Info().Int64("deleted", n).Time("older_than", olderThan).Msg("Pruned observations")
	return n, nil
}

// Count returns the number of stored observations
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM observations").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count observations: %w", err)
	}
	return n, nil
}
