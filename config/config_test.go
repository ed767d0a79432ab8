package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `device: "pack-a"
seed: 42
dt_seconds: 1
sim_time_s: 3600
initial_soc: 0.9
pack:
  series: 96
  parallel: 74
cell:
  capacity_ah: 3.35
  series_ohm: 0.05
  rc_ohm: 0.02
  rc_farad: 500
stop_limits:
  discharge_mean: 0.2
  charge_mean: 0.95
profile:
  use_wltp: false
  pulse:
    len_min_steps: 2
    len_max_steps: 10
    c_min: -4.0
    c_max: 1.0
    c_mean: -2.5
sinks:
  - type: "csv"
    path: "out/pack-a.csv"
  - type: "nop"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "pack-a", cfg.Device)
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, 96, cfg.Pack.Series)
	require.Equal(t, 74, cfg.Pack.Parallel)
	require.Equal(t, 3.35, cfg.Cell.CapacityAh)
	require.Equal(t, 0.2, cfg.Limits.DischargeMean)
	require.Equal(t, -2.5, cfg.Profile.Pulse.CMean)
	require.Len(t, cfg.Sinks, 2)

	// Defaults fill the rest.
	require.NotEmpty(t, cfg.Cell.OCV)
	require.Equal(t, int64(5), cfg.Logging.Lvl1Steps)
	require.Equal(t, int64(60), cfg.Logging.Lvl2Steps)
	require.Equal(t, int64(120), cfg.Logging.Lvl3Steps)
	require.Equal(t, int64(1000), cfg.Logging.DumpSteps)
	require.Equal(t, "status", cfg.Logging.CheckpointDir)
	require.Equal(t, 20.0, cfg.AmbientC)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsContradictoryLimits(t *testing.T) {
	path := writeConfig(t, `device: "pack-a"
stop_limits:
  discharge_mean: 0.6
  charge_mean: 0.6
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNegativeCycleStart(t *testing.T) {
	path := writeConfig(t, `device: "pack-a"
cell:
  cycle_start: -1
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadSink(t *testing.T) {
	path := writeConfig(t, `device: "pack-a"
sinks:
  - type: "carrierpigeon"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadWLTPNeedsTrace(t *testing.T) {
	path := writeConfig(t, `device: "pack-a"
profile:
  use_wltp: true
  wltp_class: 3
`)
	// The default trace path is derived from the class.
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "driving_protocols/wltp_class3.csv", cfg.Profile.TracePath)

	path = writeConfig(t, `device: "pack-a"
profile:
  use_wltp: true
  wltp_class: 7
`)
	_, err = Load(path)
	require.Error(t, err)
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, `device: "pack-a"
`)
	t.Setenv("BATTSIM_DEVICE", "pack-b")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "pack-b", cfg.Device)
}
