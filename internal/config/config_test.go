package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STOCKBOARD_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, CodecJSON, cfg.StorageCodec)
	assert.Equal(t, time.Duration(0), cfg.LedgerLatency)
	assert.Equal(t, "@every 30s", cfg.SyncSchedule)
	assert.False(t, cfg.Backup.Enabled())
	assert.Equal(t, 30, cfg.Backup.RetentionDays)
	assert.Equal(t, "stockboard", cfg.Backup.Prefix)
	assert.Equal(t, filepath.Join(dir, "state.db"), cfg.DatabasePath())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STOCKBOARD_DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_CODEC", "MSGPACK")
	t.Setenv("LEDGER_LATENCY", "500ms")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("MENU_CONFIG", "/etc/stockboard/menu.yaml")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, CodecMsgpack, cfg.StorageCodec)
	assert.Equal(t, 500*time.Millisecond, cfg.LedgerLatency)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, "/etc/stockboard/menu.yaml", cfg.MenuConfigPath)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("STOCKBOARD_DATA_DIR", t.TempDir())
	t.Setenv("GO_PORT", "not-a-number")
	t.Setenv("LEDGER_LATENCY", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, time.Duration(0), cfg.LedgerLatency)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{StorageCodec: CodecJSON, Port: 8001, Backup: &BackupConfig{}}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("unknown codec", func(t *testing.T) {
		cfg := valid()
		cfg.StorageCodec = "xml"
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative latency", func(t *testing.T) {
		cfg := valid()
		cfg.LedgerLatency = -time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("port out of range", func(t *testing.T) {
		cfg := valid()
		cfg.Port = 70000
		assert.Error(t, cfg.Validate())
	})

	t.Run("backup without credentials", func(t *testing.T) {
		cfg := valid()
		cfg.Backup = &BackupConfig{Endpoint: "https://r2.example.com", Bucket: "backups"}
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative retention", func(t *testing.T) {
		cfg := valid()
		cfg.Backup.RetentionDays = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("backup with credentials", func(t *testing.T) {
		cfg := valid()
		cfg.Backup = &BackupConfig{
			Endpoint:        "https://r2.example.com",
			Bucket:          "backups",
			AccessKeyID:     "key",
			SecretAccessKey: "secret",
		}
		assert.NoError(t, cfg.Validate())
		assert.True(t, cfg.Backup.Enabled())
	})
}

func TestBackupConfig_NilIsDisabled(t *testing.T) {
	var b *BackupConfig
	assert.False(t, b.Enabled())
}
