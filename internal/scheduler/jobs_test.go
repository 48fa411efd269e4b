package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/pulse/internal/events"
	"github.com/aristath/pulse/internal/modules/history"
	"github.com/aristath/pulse/internal/modules/snapshots"
	"github.com/aristath/pulse/internal/reliability"
	testutil "github.com/aristath/pulse/internal/testing"
)

type mockPeriods struct {
	period string
	err    error
}

func (m *mockPeriods) LatestPeriod(ctx context.Context) (string, error) {
	return m.period, m.err
}

type mockSnapshots struct {
	created   []string
	retention time.Duration
	err       error
}

func (m *mockSnapshots) Create(ctx context.Context, period string) (*snapshots.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, period)
	return &snapshots.Snapshot{ID: "snap-1", Period: period}, nil
}

func (m *mockSnapshots) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	m.retention = retention
	return 2, m.err
}

type mockHistory struct {
	cutoff time.Time
	calls  int
}

func (m *mockHistory) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	m.calls++
	m.cutoff = olderThan
	return 7, nil
}

type mockBackups struct {
	createErr error
	rotateErr error
	rotated   int
}

func (m *mockBackups) CreateAndUpload(ctx context.Context) (*reliability.BackupResult, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	return &reliability.BackupResult{Key: "pulse-backups/pulse-backup-2024-06-01-030000.tar.gz"}, nil
}

func (m *mockBackups) RotateOldBackups(ctx context.Context, retentionDays int) (int, error) {
	m.rotated = retentionDays
	return 0, m.rotateErr
}

func TestSnapshotJob(t *testing.T) {
	t.Run("snapshots latest period", func(t *testing.T) {
		snaps := &mockSnapshots{}
		job := NewSnapshotJob(&mockPeriods{period: "2024-05"}, snaps, zerolog.Nop())

		assert.Equal(t, "snapshot_latest_period", job.Name())
		require.NoError(t, job.Run())
		assert.Equal(t, []string{"2024-05"}, snaps.created)
	})

	t.Run("empty history is skipped", func(t *testing.T) {
		snaps := &mockSnapshots{}
		job := NewSnapshotJob(&mockPeriods{err: history.ErrNotFound}, snaps, zerolog.Nop())

		require.NoError(t, job.Run())
		assert.Empty(t, snaps.created)
	})

	t.Run("create failure propagates", func(t *testing.T) {
		job := NewSnapshotJob(&mockPeriods{period: "2024-05"}, &mockSnapshots{err: errors.New("disk full")}, zerolog.Nop())
		assert.Error(t, job.Run())
	})
}

func TestPruneJob(t *testing.T) {
	hist := &mockHistory{}
	snaps := &mockSnapshots{}
	emitter := testutil.NewRecordingEmitter()
	job := NewPruneJob(hist, snaps, 30, emitter, zerolog.Nop())

	now := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	assert.Equal(t, "prune_history", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, now.Add(-30*24*time.Hour), hist.cutoff)
	assert.Equal(t, 30*24*time.Hour, snaps.retention)

	pruned := emitter.OfType(events.HistoryPruned)
	require.Len(t, pruned, 1)
	assert.Equal(t, int64(7), pruned[0].(*events.HistoryPrunedData).Deleted)
}

func TestPruneJob_ZeroRetention(t *testing.T) {
	hist := &mockHistory{}
	job := NewPruneJob(hist, nil, 0, nil, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Zero(t, hist.calls)
}

func TestBackupJob(t *testing.T) {
	backups := &mockBackups{rotateErr: errors.New("list denied")}
	job := NewBackupJob(backups, 14, zerolog.Nop())

	assert.Equal(t, "backup_databases", job.Name())
	require.NoError(t, job.Run(), "rotation failures do not fail the backup")
	assert.Equal(t, 14, backups.rotated)

	failing := NewBackupJob(&mockBackups{createErr: errors.New("no bucket")}, 14, zerolog.Nop())
	assert.Error(t, failing.Run())
}
