// Package app assembles the simulator from configuration: models, profile,
// sinks and checkpoint store.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/voltlab/battsim/config"
	"github.com/voltlab/battsim/core/engine"
	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/core/profile"
	"github.com/voltlab/battsim/core/sim"
	"github.com/voltlab/battsim/infra/checkpoint"
	"github.com/voltlab/battsim/infra/logger"
	"github.com/voltlab/battsim/infra/sink"
)

// Service owns a fully wired simulation run.
type Service struct {
	engine   *engine.Engine
	sinks    *sink.MultiSink
	store    *checkpoint.Store
	log      logger.Logger
	promAddr string
}

// New creates a Service from the configuration. Checkpoint resume happens
// here: an existing state for the configured device seeds the engine, an
// incompatible one aborts startup.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	cell := cfg.Cell.Params()
	sampler := sim.NewSampler(cfg.Seed)

	ocv, err := sim.NewCurve(cell.OCV)
	if err != nil {
		return nil, fmt.Errorf("ocv curve: %w", err)
	}
	var tempOhm *sim.Curve
	if len(cfg.Cell.TempOhm) > 0 {
		tempOhm, err = sim.NewCurve(cfg.Cell.TempOhm)
		if err != nil {
			return nil, fmt.Errorf("temperature resistance curve: %w", err)
		}
	}

	ecm := sim.NewECM(cell, ocv, tempOhm)
	thermal := sim.NewThermal(cell, cfg.AmbientC)
	degrade := sim.NewDegradation(sim.LinearFade{
		CapPerCycle: cfg.Fade.CapPerCycle,
		ResPerCycle: cfg.Fade.ResPerCycle,
		TempRefC:    cfg.Fade.TempRefC,
		TempAlpha:   cfg.Fade.TempAlpha,
	})

	prof, err := buildProfile(cfg, cell, sampler)
	if err != nil {
		return nil, err
	}
	// Charging uses constant current scaled to the full pack.
	chargeAmp := cell.ChargeAmp * float64(cfg.Pack.Parallel)
	governor, err := profile.NewGovernor(prof, sampler, cfg.Limits, chargeAmp)
	if err != nil {
		return nil, err
	}

	sinks, promAddr, err := buildSinks(cfg)
	if err != nil {
		return nil, err
	}

	store, err := checkpoint.NewStore(cfg.Logging.CheckpointDir)
	if err != nil {
		return nil, err
	}
	resume, err := store.Load(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrCheckpoint, err)
	}
	if resume == nil {
		logg.Infof("no checkpoint for device %s, starting fresh", cfg.Device)
	}

	eng, err := engine.New(engine.Config{
		DTSeconds:  cfg.DTSeconds,
		SimTimeS:   cfg.SimTimeS,
		Device:     cfg.Device,
		InitialSoC: cfg.InitialSoC,
		Lvl1Steps:  cfg.Logging.Lvl1Steps,
		Lvl2Steps:  cfg.Logging.Lvl2Steps,
		Lvl3Steps:  cfg.Logging.Lvl3Steps,
		DumpSteps:  cfg.Logging.DumpSteps,
		PauseMinS:  cfg.Pause.MinS,
		PauseMaxS:  cfg.Pause.MaxS,
	}, cfg.Pack, cell, ecm, thermal, degrade, governor, sampler, sinks, logger.New("engine"), resume)
	if err != nil {
		return nil, err
	}

	return &Service{engine: eng, sinks: sinks, store: store, log: logg, promAddr: promAddr}, nil
}

func buildProfile(cfg *config.Config, cell model.CellParams, sampler *sim.Sampler) (profile.Profile, error) {
	if cfg.Profile.UseWLTP {
		trace, err := profile.LoadTrace(cfg.Profile.TracePath)
		if err != nil {
			return nil, err
		}
		vehicle := cfg.Profile.Vehicle
		if vehicle.NominalVoltV == 0 {
			// Default the conversion voltage to the pack at mid charge.
			vehicle.NominalVoltV = 3.6 * float64(cfg.Pack.Series)
		}
		return profile.NewWLTP(trace, vehicle)
	}
	packCapAh := cfg.Pack.CapacityAh(cell.CapacityAh)
	return profile.NewPulse(cfg.Profile.Pulse, sampler, packCapAh)
}

func buildSinks(cfg *config.Config) (*sink.MultiSink, string, error) {
	var sinks []sink.RecordSink
	promAddr := ""
	for i, sc := range cfg.Sinks {
		switch sc.Type {
		case "csv":
			if err := os.MkdirAll(filepath.Dir(sc.Path), 0o755); err != nil {
				return nil, "", fmt.Errorf("sink %d: %w", i, err)
			}
			s, err := sink.NewCSVSink(sc.Path)
			if err != nil {
				return nil, "", fmt.Errorf("sink %d: %w", i, err)
			}
			sinks = append(sinks, s)
		case "jsonl":
			if err := os.MkdirAll(filepath.Dir(sc.Path), 0o755); err != nil {
				return nil, "", fmt.Errorf("sink %d: %w", i, err)
			}
			s, err := sink.NewJSONLSink(sc.Path)
			if err != nil {
				return nil, "", fmt.Errorf("sink %d: %w", i, err)
			}
			sinks = append(sinks, s)
		case "influx":
			sinks = append(sinks, sink.NewInfluxSinkWithFallback(sink.InfluxConfig{
				URL:    sc.Influx.URL,
				Token:  sc.Influx.Token,
				Org:    sc.Influx.Org,
				Bucket: sc.Influx.Bucket,
			}))
		case "prometheus":
			s, err := sink.NewPromSink(nil)
			if err != nil {
				return nil, "", fmt.Errorf("sink %d: %w", i, err)
			}
			sinks = append(sinks, s)
			promAddr = sc.PromAddr
		case "mqtt":
			s, err := sink.NewMQTTSink(sink.MQTTConfig{
				Broker:   sc.MQTT.Broker,
				ClientID: sc.MQTT.ClientID,
				Username: sc.MQTT.Username,
				Password: sc.MQTT.Password,
				Topic:    sc.MQTT.Topic,
				QoS:      sc.MQTT.QoS,
			}, cfg.Device)
			if err != nil {
				return nil, "", fmt.Errorf("sink %d: %w", i, err)
			}
			sinks = append(sinks, s)
		case "nop":
			sinks = append(sinks, sink.NopSink{})
		}
	}
	return sink.NewMultiSink(sinks...), promAddr, nil
}

// Run executes the simulation and persists the final state. The checkpoint
// is written only after a clean finish, so a failed run never overwrites
// the previous good state.
func (s *Service) Run(ctx context.Context) error {
	if s.promAddr != "" {
		go func() {
			if err := sink.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	err := s.engine.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	state := s.engine.State()
	if err := s.store.Save(state); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	s.log.Infof("checkpoint saved for device %s at t=%gs", state.Device, state.TimeS)
	return nil
}

// Close releases sink resources.
func (s *Service) Close() error {
	return s.sinks.Close()
}
