// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage codecs accepted by STORAGE_CODEC
const (
	CodecJSON    = "json"
	CodecMsgpack = "msgpack"
)

// Config holds application configuration
type Config struct {
	DataDir        string        // Base directory for the state database (always absolute)
	MenuConfigPath string        // Optional YAML menu file replacing the built-in menu
	StorageCodec   string        // json or msgpack
	LogLevel       string
	LogPretty      bool
	Port           int
	DevMode        bool
	LedgerLatency  time.Duration // Simulated remote-call delay before ledger mutations
	SyncSchedule   string        // Cron expression for the data sync heartbeat
	Backup         *BackupConfig
}

// BackupConfig holds S3-compatible (R2) backup configuration.
// Backups are disabled unless Endpoint and Bucket are both set.
type BackupConfig struct {
	Endpoint        string
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Schedule        string // Cron expression, seconds field included
	Prefix          string
	RetentionDays   int // 0 keeps every backup
}

// Enabled reports whether enough configuration is present to run backups.
func (b *BackupConfig) Enabled() bool {
	return b != nil && b.Endpoint != "" && b.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("STOCKBOARD_DATA_DIR", "./data")
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:        absDataDir,
		MenuConfigPath: getEnv("MENU_CONFIG", ""),
		StorageCodec:   strings.ToLower(getEnv("STORAGE_CODEC", CodecJSON)),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvAsBool("LOG_PRETTY", true),
		Port:           getEnvAsInt("GO_PORT", 8001),
		DevMode:        getEnvAsBool("DEV_MODE", false),
		LedgerLatency:  getEnvAsDuration("LEDGER_LATENCY", 0),
		SyncSchedule:   getEnv("SYNC_SCHEDULE", "@every 30s"),
		Backup:         loadBackupConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	switch c.StorageCodec {
	case CodecJSON, CodecMsgpack:
	default:
		return fmt.Errorf("unsupported STORAGE_CODEC %q (want %s or %s)", c.StorageCodec, CodecJSON, CodecMsgpack)
	}

	if c.LedgerLatency < 0 {
		return fmt.Errorf("LEDGER_LATENCY must not be negative, got %s", c.LedgerLatency)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT out of range: %d", c.Port)
	}

	if c.Backup.Enabled() && (c.Backup.AccessKeyID == "" || c.Backup.SecretAccessKey == "") {
		return fmt.Errorf("backup endpoint configured without BACKUP_ACCESS_KEY_ID/BACKUP_SECRET_ACCESS_KEY")
	}

	if c.Backup != nil && c.Backup.RetentionDays < 0 {
		return fmt.Errorf("BACKUP_RETENTION_DAYS must not be negative, got %d", c.Backup.RetentionDays)
	}

	return nil
}

// DatabasePath returns the path of the state database inside DataDir
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "state.db")
}

func loadBackupConfig() *BackupConfig {
	return &BackupConfig{
		Endpoint:        getEnv("BACKUP_ENDPOINT", ""),
		Bucket:          getEnv("BACKUP_BUCKET", ""),
		Region:          getEnv("BACKUP_REGION", "auto"),
		AccessKeyID:     getEnv("BACKUP_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("BACKUP_SECRET_ACCESS_KEY", ""),
		Schedule:        getEnv("BACKUP_SCHEDULE", "0 0 3 * * *"), // 03:00 daily
		Prefix:          getEnv("BACKUP_PREFIX", "stockboard"),
		RetentionDays:   getEnvAsInt("BACKUP_RETENTION_DAYS", 30),
	}
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
