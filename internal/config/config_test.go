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
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 5, cfg.Notifications.Cap)
	assert.Equal(t, 100, cfg.Notifications.BaseID)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.Interval.Duration)
	assert.Equal(t, "choresd.db", filepath.Base(cfg.DBPath))
	require.NoError(t, cfg.Validate())
}

func TestLoadFileOverlaysBase(t *testing.T) {
	path := writeConfig(t, `
db_path = "/tmp/chores.db"
log_level = "debug"

[notifications]
cap = 3

[scheduler]
interval = "6h"
base_retry_delay = "5s"
`)
	cfg, err := LoadFile(path, Default())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/chores.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3, cfg.Notifications.Cap)
	assert.Equal(t, 100, cfg.Notifications.BaseID, "absent keys keep defaults")
	assert.Equal(t, 6*time.Hour, cfg.Scheduler.Interval.Duration)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.BaseRetryDelay.Duration)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.MaxRetryDelay.Duration)
}

func TestLoadFileRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "[scheduler]\ninterval = \"daily\"\n")
	_, err := LoadFile(path, Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily")
}

func TestResolvePrecedence(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := writeConfig(t, `
db_path = "/from/file.db"

[notifications]
cap = 3
desktop = true
`)
	t.Setenv("CHORESD_DB_PATH", "/from/env.db")
	t.Setenv("CHORESD_DESKTOP_NOTIFICATIONS", "no")
	t.Setenv("CHORESD_INTERVAL", "1h")

	cfg, err := Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.DBPath)
	assert.Equal(t, 3, cfg.Notifications.Cap)
	assert.False(t, cfg.Notifications.Desktop)
	assert.Equal(t, time.Hour, cfg.Scheduler.Interval.Duration)
}

func TestResolveMissingFiles(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Resolve("")
	require.NoError(t, err, "default path is optional")
	assert.Equal(t, Default().DBPath, cfg.DBPath)

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorIs(t, err, os.ErrNotExist, "explicit path must exist")
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("CHORESD_NOTIFY_CAP", "many")
	t.Setenv("CHORESD_MAX_RETRIES", "-2")
	t.Setenv("CHORESD_DESKTOP_NOTIFICATIONS", "perhaps")

	cfg := FromEnv(Default())
	assert.Equal(t, Default(), cfg)
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.DBPath = " "
	cfg.LogLevel = "loud"
	cfg.Notifications.Cap = 0
	cfg.Scheduler.MaxRetryDelay = Duration{time.Second}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"db_path", "log_level", "notifications.cap", "max_retry_delay"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Encode(Default())
	require.NoError(t, err)
	assert.Contains(t, string(data), "24h0m0s")

	path := writeConfig(t, string(data))
	cfg, err := LoadFile(path, Config{})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
