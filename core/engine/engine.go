// Package engine drives the fixed-time-step simulation loop: it pulls the
// commanded current from the profile governor, steps the electrical and
// thermal models, aggregates to pack level, applies degradation at cycle
// boundaries and emits state records to the configured sinks.
package engine

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/core/profile"
	"github.com/voltlab/battsim/core/sim"
	"github.com/voltlab/battsim/infra/logger"
)

// RecordSink consumes the per-step state records. Implementations live in
// infra/sink; the engine only calls Write and Flush.
type RecordSink interface {
	Write(model.StateRecord) error
	Flush() error
}

// Config holds the loop constants.
type Config struct {
	DTSeconds  float64 // step size [s]
	SimTimeS   float64 // total simulated time [s]
	Device     string  // device name, keys the checkpoint
	InitialSoC float64 // starting state of charge for fresh runs

	// Logging tiers: a record of the given tier is emitted every N steps.
	// Zero disables the tier.
	Lvl1Steps int64
	Lvl2Steps int64
	Lvl3Steps int64
	DumpSteps int64 // sink flush interval in steps

	// Pause phases between half cycles, sampled uniformly in seconds.
	// PauseMaxS == 0 disables pausing.
	PauseMinS float64
	PauseMaxS float64
}

// Validate checks the loop constants.
func (c Config) Validate() error {
	if c.DTSeconds <= 0 {
		return fmt.Errorf("%w: DT must be positive, got %g", sim.ErrConfiguration, c.DTSeconds)
	}
	if c.SimTimeS < c.DTSeconds {
		return fmt.Errorf("%w: simulation time %gs shorter than one step", sim.ErrConfiguration, c.SimTimeS)
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("%w: initial SoC %g outside [0,1]", sim.ErrConfiguration, c.InitialSoC)
	}
	if c.PauseMaxS < c.PauseMinS {
		return fmt.Errorf("%w: pause bounds [%g, %g] invalid", sim.ErrConfiguration, c.PauseMinS, c.PauseMaxS)
	}
	return nil
}

// Engine owns the simulation state and advances it until SimTime.
type Engine struct {
	cfg      Config
	pack     model.PackConfig
	cell     model.CellParams
	ecm      *sim.ECM
	thermal  *sim.Thermal
	degrade  *sim.Degradation
	governor *profile.Governor
	sampler  *sim.Sampler
	sink     RecordSink
	log      logger.Logger

	state         model.SimulationState
	phaseStartSoC float64
	pauseLeft     float64
	nextMode      model.Mode
}

// New assembles an engine. resume may be nil for a fresh start; a non-nil
// state must be compatible with the configured pack.
func New(
	cfg Config,
	pack model.PackConfig,
	cell model.CellParams,
	ecm *sim.ECM,
	thermal *sim.Thermal,
	degrade *sim.Degradation,
	governor *profile.Governor,
	sampler *sim.Sampler,
	sink RecordSink,
	log logger.Logger,
	resume *model.SimulationState,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := pack.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfiguration, err)
	}
	if err := cell.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", sim.ErrConfiguration, err)
	}

	e := &Engine{
		cfg:      cfg,
		pack:     pack,
		cell:     cell,
		ecm:      ecm,
		thermal:  thermal,
		degrade:  degrade,
		governor: governor,
		sampler:  sampler,
		sink:     sink,
		log:      log,
	}

	if resume != nil {
		if err := resume.CompatibleWith(pack, cell); err != nil {
			return nil, fmt.Errorf("%w: %v", sim.ErrCheckpoint, err)
		}
		e.state = *resume
		if e.state.Mode == model.ModeFinished || e.state.Mode == model.ModePause {
			e.state.Mode = model.ModeDischarging
		}
		e.log.Infof("resuming device %s at t=%gs, cycle %.2f", cfg.Device, e.state.TimeS, e.state.Cell.Cycles)
	} else {
		e.state = model.SimulationState{
			Device:    cfg.Device,
			RunID:     uuid.NewString(),
			Mode:      model.ModeDischarging,
			Cell:      model.NewCellState(cell, cfg.InitialSoC, thermal.Ambient()),
			Series:    pack.Series,
			Parallel:  pack.Parallel,
			NominalAh: cell.CapacityAh,
		}
	}
	e.phaseStartSoC = e.state.Cell.SoC
	return e, nil
}

// State returns a copy of the current simulation state, used for
// checkpoint persistence after Run returns.
func (e *Engine) State() model.SimulationState {
	return e.state
}

// Run advances the loop until SimTime or until the context is cancelled.
// Mid-run numeric or lookup failures abort the run after flushing, so the
// last emitted record stays intact.
func (e *Engine) Run(ctx context.Context) error {
	defer func() {
		if err := e.sink.Flush(); err != nil {
			e.log.Errorf("final sink flush: %v", err)
		}
	}()

	for e.state.TimeS < e.cfg.SimTimeS {
		select {
		case <-ctx.Done():
			e.log.Warnf("device %s interrupted at t=%gs", e.cfg.Device, e.state.TimeS)
			return ctx.Err()
		default:
		}
		if err := e.tick(); err != nil {
			return err
		}
	}
	e.state.Mode = model.ModeFinished
	e.log.Infof("device %s finished at t=%gs after %.2f cycles",
		e.cfg.Device, e.state.TimeS, e.state.Cell.Cycles)
	return nil
}

func (e *Engine) tick() error {
	if e.state.Mode == model.ModePause {
		return e.tickPause()
	}

	dt := e.cfg.DTSeconds
	packAmp, boundary, err := e.governor.Command(
		e.state.Mode, e.state.TimeS, e.state.Cell.SoC, e.state.Cell.CapacityAh, dt, e.pack.Parallel)
	if err != nil {
		return err
	}

	cellAmp := e.pack.CellCurrent(packAmp)
	if _, err := e.ecm.Step(&e.state.Cell, cellAmp, dt); err != nil {
		return err
	}
	if err := e.thermal.Step(&e.state.Cell, cellAmp, dt); err != nil {
		return err
	}

	e.state.PackAmp = packAmp
	e.state.PackVolt = e.pack.Voltage(e.state.Cell.Volt)
	if packAmp < 0 {
		e.state.EnergyDisWs += -packAmp * e.state.PackVolt * dt
	} else {
		e.state.EnergyChgWs += packAmp * e.state.PackVolt * dt
	}

	e.advance(dt)
	if err := e.emit(); err != nil {
		return err
	}

	if boundary {
		return e.onBoundary()
	}
	return nil
}

// tickPause steps only the thermal model with zero current, modeling a
// parked vehicle between half cycles.
func (e *Engine) tickPause() error {
	dt := e.cfg.DTSeconds
	if err := e.thermal.Step(&e.state.Cell, 0, dt); err != nil {
		return err
	}
	e.state.PackAmp = 0
	e.state.PackVolt = e.pack.Voltage(e.state.Cell.Volt)
	e.advance(dt)
	if err := e.emit(); err != nil {
		return err
	}
	e.pauseLeft -= dt
	if e.pauseLeft <= 0 {
		e.state.Mode = e.nextMode
		e.phaseStartSoC = e.state.Cell.SoC
	}
	return nil
}

func (e *Engine) advance(dt float64) {
	e.state.Step++
	e.state.TimeS += dt
}

// onBoundary applies degradation, flips the direction, resamples the stop
// limits and optionally enters a pause phase.
func (e *Engine) onBoundary() error {
	depth := e.state.Cell.SoC - e.phaseStartSoC
	if err := e.degrade.OnBoundary(&e.state.Cell, depth); err != nil {
		return err
	}
	if err := e.governor.Resample(); err != nil {
		return err
	}

	next := model.ModeCharging
	if e.state.Mode == model.ModeCharging {
		next = model.ModeDischarging
	}
	ds, cs := e.governor.Stops()
	e.log.Debugw("cycle boundary", map[string]any{
		"device":    e.cfg.Device,
		"mode":      string(e.state.Mode),
		"soc":       e.state.Cell.SoC,
		"cycles":    e.state.Cell.Cycles,
		"next_stop": map[string]float64{"discharge": ds, "charge": cs},
	})

	if e.cfg.PauseMaxS > 0 {
		e.pauseLeft = e.sampler.Uniform(e.cfg.PauseMinS, e.cfg.PauseMaxS)
		e.nextMode = next
		e.state.Mode = model.ModePause
	} else {
		e.state.Mode = next
		e.phaseStartSoC = e.state.Cell.SoC
	}
	return nil
}

// emit writes the tier records due at the current step and flushes at the
// dump interval.
func (e *Engine) emit() error {
	step := e.state.Step
	if e.cfg.Lvl1Steps > 0 && step%e.cfg.Lvl1Steps == 0 {
		if err := e.sink.Write(e.state.Snapshot(model.Tier1)); err != nil {
			return err
		}
	}
	if e.cfg.Lvl2Steps > 0 && step%e.cfg.Lvl2Steps == 0 {
		if err := e.sink.Write(e.state.Snapshot(model.Tier2)); err != nil {
			return err
		}
	}
	if e.cfg.Lvl3Steps > 0 && step%e.cfg.Lvl3Steps == 0 {
		if err := e.sink.Write(e.state.Snapshot(model.Tier3)); err != nil {
			return err
		}
	}
	if e.cfg.DumpSteps > 0 && step%e.cfg.DumpSteps == 0 {
		return e.sink.Flush()
	}
	return nil
}
