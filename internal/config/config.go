// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DataDir             string // Base directory for all databases, always absolute
	LogLevel            string
	CatalogPath         string // optional KPI catalog override
	RecommendationsPath string // optional recommendation table override
	SnapshotSchedule    string // cron spec with seconds
	PruneSchedule       string
	BackupSchedule      string
	Port                int
	RetentionDays       int // 0 keeps history forever
	DevMode             bool
	Backup              BackupConfig
}

// BackupConfig holds S3-compatible backup settings. Backups are disabled without a bucket.
type BackupConfig struct {
	Bucket    string
	Endpoint  string // empty for AWS, set for R2/MinIO
	Region    string
	AccessKey string
	SecretKey string
	Prefix    string
}

// Enabled reports whether backups are configured
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// HistoryDBPath returns the observation log database path
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// CacheDBPath returns the snapshot database path
func (c *Config) CacheDBPath() string {
	return filepath.Join(c.DataDir, "cache.db")
}

// Load reads configuration from a .env file, if present, and environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("PULSE_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:             absDataDir,
		Port:                getEnvAsInt("PULSE_PORT", 8001),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DevMode:             getEnvAsBool("DEV_MODE", false),
		CatalogPath:         getEnv("PULSE_CATALOG_PATH", ""),
		RecommendationsPath: getEnv("PULSE_RECOMMENDATIONS_PATH", ""),
		SnapshotSchedule:    getEnv("PULSE_SNAPSHOT_SCHEDULE", "0 0 1 * * *"),
		PruneSchedule:       getEnv("PULSE_PRUNE_SCHEDULE", "0 30 2 * * *"),
		BackupSchedule:      getEnv("PULSE_BACKUP_SCHEDULE", "0 0 3 * * *"),
		RetentionDays:       getEnvAsInt("PULSE_RETENTION_DAYS", 730),
		Backup: BackupConfig{
			Bucket:    getEnv("PULSE_S3_BUCKET", ""),
			Endpoint:  getEnv("PULSE_S3_ENDPOINT", ""),
			Region:    getEnv("PULSE_S3_REGION", "auto"),
			AccessKey: getEnv("PULSE_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("PULSE_S3_SECRET_KEY", ""),
			Prefix:    getEnv("PULSE_S3_PREFIX", "pulse-backups"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Validate checks the configuration for values the server cannot start with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention days must not be negative, got %d", c.RetentionDays)
	}

	schedules := map[string]string{
		"PULSE_SNAPSHOT_SCHEDULE": c.SnapshotSchedule,
		"PULSE_PRUNE_SCHEDULE":    c.PruneSchedule,
		"PULSE_BACKUP_SCHEDULE":   c.BackupSchedule,
	}
	for key, spec := range schedules {
		if spec == "" {
			continue // job disabled
		}
		if _, err := scheduleParser.Parse(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, spec, err)
		}
	}

	if c.Backup.Enabled() && (c.Backup.AccessKey == "") != (c.Backup.SecretKey == "") {
		return fmt.Errorf("backup access key and secret key must be set together")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
