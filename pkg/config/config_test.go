package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boris.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Log.JSON)
	assert.Equal(t, "127.0.0.1:8090", cfg.Listen.Admin)
	assert.Equal(t, 100*time.Millisecond, cfg.Scheduler.Tick)
	assert.Equal(t, 30*time.Second, cfg.Reconciler.Interval)
}

func TestLoadFullFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  json: true
listen:
  admin: "0.0.0.0:9090"
scheduler:
  tick: 50ms
reconciler:
  interval: 1m
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
	assert.Equal(t, "0.0.0.0:9090", cfg.Listen.Admin)
	assert.Equal(t, 50*time.Millisecond, cfg.Scheduler.Tick)
	assert.Equal(t, time.Minute, cfg.Reconciler.Interval)
}

func TestLoadPartialFileKeepsRemainingDefaults(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:8090", cfg.Listen.Admin)
	assert.Equal(t, 30*time.Second, cfg.Reconciler.Interval)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformedYAMLReturnsError(t *testing.T) {
	path := writeConfig(t, "log: [this is not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadUnknownTopLevelKeyIsNotAnError(t *testing.T) {
	path := writeConfig(t, `
log:
  level: warn
experimental:
  some_future_field: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:8090", cfg.Listen.Admin)
}
