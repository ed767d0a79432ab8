// Package config loads and validates the simulator configuration from a
// YAML or JSON file, with environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/core/profile"
)

// Config is the immutable configuration object consumed by the core. It is
// read once at startup; nothing mutates it afterwards.
type Config struct {
	Device     string  `json:"device"`
	Seed       uint64  `json:"seed"`
	DTSeconds  float64 `json:"dt_seconds"`
	SimTimeS   float64 `json:"sim_time_s"`
	InitialSoC float64 `json:"initial_soc"`
	AmbientC   float64 `json:"ambient_c"`

	Cell    CellConfig       `json:"cell"`
	Pack    model.PackConfig `json:"pack"`
	Limits  profile.Limits   `json:"stop_limits"`
	Profile ProfileConfig    `json:"profile"`
	Fade    FadeConfig       `json:"fade"`
	Pause   PauseConfig      `json:"pause"`
	Logging LoggingConfig    `json:"logging"`
	Sinks   []SinkConfig     `json:"sinks"`
}

// CellConfig carries the cell template plus the optional temperature
// resistance factor curve.
type CellConfig struct {
	CapacityAh  float64            `json:"capacity_ah"`
	SeriesOhm   float64            `json:"series_ohm"`
	RCOhm       float64            `json:"rc_ohm"`
	RCFarad     float64            `json:"rc_farad"`
	ThermalMass float64            `json:"thermal_mass_jk"`
	SurfaceM2   float64            `json:"surface_m2"`
	HeatTransW  float64            `json:"heat_trans_w_m2k"`
	NominalAmp  float64            `json:"nominal_amp"`
	ChargeAmp   float64            `json:"charge_amp"`
	CycleStart  float64            `json:"cycle_start"`
	OCV         []model.CurvePoint `json:"ocv"`
	// TempOhm optionally scales the series resistance with temperature.
	TempOhm []model.CurvePoint `json:"temp_ohm,omitempty"`
}

// Params converts the config into the immutable cell template.
func (c CellConfig) Params() model.CellParams {
	return model.CellParams{
		CapacityAh:  c.CapacityAh,
		SeriesOhm:   c.SeriesOhm,
		RCOhm:       c.RCOhm,
		RCFarad:     c.RCFarad,
		OCV:         c.OCV,
		ThermalMass: c.ThermalMass,
		SurfaceM2:   c.SurfaceM2,
		HeatTransW:  c.HeatTransW,
		NominalAmp:  c.NominalAmp,
		ChargeAmp:   c.ChargeAmp,
		CycleStart:  c.CycleStart,
	}
}

// ProfileConfig selects and parametrizes the current profile.
type ProfileConfig struct {
	UseWLTP   bool                  `json:"use_wltp"`
	WLTPClass int                   `json:"wltp_class"`
	TracePath string                `json:"trace_path"`
	Vehicle   profile.VehicleParams `json:"vehicle"`
	Pulse     profile.PulseConfig   `json:"pulse"`
}

// FadeConfig parametrizes the default linear fade curve.
type FadeConfig struct {
	CapPerCycle float64 `json:"cap_per_cycle"`
	ResPerCycle float64 `json:"res_per_cycle"`
	TempRefC    float64 `json:"temp_ref_c"`
	TempAlpha   float64 `json:"temp_alpha"`
}

// PauseConfig bounds the rest phases between half cycles. MaxS = 0
// disables pausing.
type PauseConfig struct {
	MinS float64 `json:"min_s"`
	MaxS float64 `json:"max_s"`
}

// LoggingConfig sets the record cadences and the checkpoint location.
type LoggingConfig struct {
	Lvl1Steps     int64  `json:"lvl1_steps"`
	Lvl2Steps     int64  `json:"lvl2_steps"`
	Lvl3Steps     int64  `json:"lvl3_steps"`
	DumpSteps     int64  `json:"dump_steps"`
	CheckpointDir string `json:"checkpoint_dir"`
}

// SinkConfig selects one record sink. Type is one of csv, jsonl, influx,
// prometheus, mqtt, nop.
type SinkConfig struct {
	Type     string           `json:"type"`
	Path     string           `json:"path"`      // csv, jsonl
	PromAddr string           `json:"prom_addr"` // prometheus /metrics listen address
	Influx   InfluxSinkConfig `json:"influx"`
	MQTT     MQTTSinkConfig   `json:"mqtt"`
}

// InfluxSinkConfig mirrors the InfluxDB client settings.
type InfluxSinkConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// MQTTSinkConfig mirrors the MQTT publisher settings.
type MQTTSinkConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// Load reads the configuration file, applies environment overrides with
// the BATTSIM_ prefix, fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("BATTSIM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "battsim_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
