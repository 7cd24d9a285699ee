package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "mysql:\n  dsn: root@tcp(localhost:3306)/stratools\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Bulk.BatchSize)
	assert.Equal(t, 1000, cfg.Bulk.MaxItems)
	assert.Equal(t, "@every 5m", cfg.Jobs.DuplicateDetection.Schedule)
	assert.Equal(t, 10*time.Minute, cfg.Jobs.DuplicateDetection.LockTTL)
	assert.True(t, cfg.Auth.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9000\"\nmysql:\n  dsn: file\n")
	t.Setenv("STRATOOLS_SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	path := writeConfig(t, "app:\n  name: test\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.EqualError(t, cfg.Validate(), "mysql.dsn is required")

	cfg.MySQL.DSN = "dsn"
	cfg.Lmstfy.TriggerQueue = "jobs"
	assert.Error(t, cfg.Validate())

	cfg.Lmstfy.Host = "localhost"
	require.NoError(t, cfg.Validate())
	assert.EqualError(t, cfg.ValidateWorker(), "redis.addr is required for the worker")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "..", DefaultPath))
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateWorker())
	assert.Equal(t, "stratools-job-trigger", cfg.Lmstfy.TriggerQueue)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.False(t, cfg.Server.EmbedScheduler)
}
