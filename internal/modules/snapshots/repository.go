package snapshots

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Repository stores snapshots in the cache database
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new snapshot repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("component", "snapshot_repository").Logger(),
	}
}

// Save stores a snapshot with its encoded payload
func (r *Repository) Save(ctx context.Context, s Snapshot, payload []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, period, entity_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.Period, s.EntityCount, payload, s.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", s.ID, err)
	}
	return nil
}

// Get returns a snapshot header and its payload
func (r *Repository) Get(ctx context.Context, id string) (Snapshot, []byte, error) {
	var (
		s         Snapshot
		payload   []byte
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, period, entity_count, payload, created_at FROM snapshots WHERE id = ?
	`, id).Scan(&s.ID, &s.Period, &s.EntityCount, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}

	s.CreatedAt = time.Unix(createdAt, 0).UTC()
	s.SizeBytes = len(payload)
	return s, payload, nil
}

// List returns snapshot headers newest first. An empty period lists every period.
func (r *Repository) List(ctx context.Context, period string) ([]Snapshot, error) {
	query := `SELECT id, period, entity_count, length(payload), created_at FROM snapshots`
	var args []interface{}
	if period != "" {
		query += ` WHERE period = ?`
		args = append(args, period)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var (
			s         Snapshot
			createdAt int64
		)
		if err := rows.Scan(&s.ID, &s.Period, &s.EntityCount, &s.SizeBytes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		s.CreatedAt = time.Unix(createdAt, 0).UTC()
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// DeleteBefore removes snapshots created before the cutoff
func (r *Repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete snapshots: %w", err)
	}
	return result.RowsAffected()
}
