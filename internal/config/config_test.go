package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("PULSE_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, 730, cfg.RetentionDays)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, filepath.Join(dir, "history.db"), cfg.HistoryDBPath())
	assert.Equal(t, filepath.Join(dir, "cache.db"), cfg.CacheDBPath())
	assert.DirExists(t, dir)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PULSE_DATA_DIR", t.TempDir())
	t.Setenv("PULSE_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("PULSE_RETENTION_DAYS", "30")
	t.Setenv("PULSE_SNAPSHOT_SCHEDULE", "@hourly")
	t.Setenv("PULSE_S3_BUCKET", "backups")
	t.Setenv("PULSE_S3_ACCESS_KEY", "key")
	t.Setenv("PULSE_S3_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, "@hourly", cfg.SnapshotSchedule)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "auto", cfg.Backup.Region)
}

func TestLoad_IgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("PULSE_DATA_DIR", t.TempDir())
	t.Setenv("PULSE_PORT", "not-a-port")
	t.Setenv("DEV_MODE", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8001, cfg.Port)
	assert.False(t, cfg.DevMode)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:             8001,
			SnapshotSchedule: "0 0 1 * * *",
			PruneSchedule:    "",
			BackupSchedule:   "@daily",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero port", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "negative retention", mutate: func(c *Config) { c.RetentionDays = -1 }, wantErr: true},
		{name: "bad cron", mutate: func(c *Config) { c.SnapshotSchedule = "every day" }, wantErr: true},
		{name: "five field cron", mutate: func(c *Config) { c.BackupSchedule = "0 3 * * *" }, wantErr: true},
		{
			name: "backup key without secret",
			mutate: func(c *Config) {
				c.Backup = BackupConfig{Bucket: "b", AccessKey: "k"}
			},
			wantErr: true,
		},
		{
			name: "backup with ambient credentials",
			mutate: func(c *Config) {
				c.Backup = BackupConfig{Bucket: "b"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
