package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, time.Second, cfg.Sweep.Settle)
	assert.Equal(t, 1, cfg.Scope.Channel)
	assert.Equal(t, "DC", cfg.Scope.Coupling)
	assert.InDelta(t, 0.1, cfg.Scope.Scale, 1e-9)
	assert.InDelta(t, 0.001, cfg.Scope.TimeScale, 1e-9)
	assert.Equal(t, 10*time.Second, cfg.Scope.Timeout)
	assert.InDelta(t, 0.0, cfg.Meter.Offset, 1e-9)
	assert.Equal(t, "sweeps", cfg.Output.Dir)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	profile := `
serial:
  baud: 115200
sweep:
  settle: 2500ms
scope:
  channel: 3
meter:
  offset: 42.8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "powersweep.yaml"), []byte(profile), 0o644))
	chdir(t, dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.Equal(t, 2500*time.Millisecond, cfg.Sweep.Settle)
	assert.Equal(t, 3, cfg.Scope.Channel)
	assert.InDelta(t, 42.8, cfg.Meter.Offset, 1e-9)

	// Unset keys keep their defaults.
	assert.InDelta(t, 0.1, cfg.Scope.Scale, 1e-9)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POWERSWEEP_SERIAL_BAUD", "57600")
	t.Setenv("POWERSWEEP_OUTPUT_DIR", "/tmp/bench")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 57600, cfg.Serial.Baud)
	assert.Equal(t, "/tmp/bench", cfg.Output.Dir)
}

// chdir switches the working directory for one test.
func chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
