// Package profile generates the commanded pack current for each simulation
// step, either by replaying a WLTP driving trace or by synthesizing
// randomized pulses, and enforces the per-cycle stop limits.
package profile

import (
	"fmt"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/core/sim"
)

// Profile yields the requested pack current for a point in simulated time.
// Negative current discharges the pack, positive charges it.
type Profile interface {
	NextCurrent(elapsedS float64) (float64, error)
}

// Limits holds the configured stop-limit means. The actual per-cycle
// thresholds are resampled from triangular distributions with fixed
// cutoffs around these means.
type Limits struct {
	DischargeMean float64 `json:"discharge_mean"` // mean SoC at which discharging stops
	ChargeMean    float64 `json:"charge_mean"`    // mean SoC at which charging stops
}

// Triangular cutoffs for the per-cycle stop thresholds.
const (
	dischargeLower = 0.05
	dischargeUpper = 0.60
	chargeLower    = 0.60
	chargeUpper    = 0.98
)

// Validate checks the means against their sampling cutoffs.
func (l Limits) Validate() error {
	if l.DischargeMean < dischargeLower || l.DischargeMean > dischargeUpper {
		return fmt.Errorf("%w: discharge stop mean %g outside [%g, %g]",
			sim.ErrConfiguration, l.DischargeMean, dischargeLower, dischargeUpper)
	}
	if l.ChargeMean < chargeLower || l.ChargeMean > chargeUpper {
		return fmt.Errorf("%w: charge stop mean %g outside [%g, %g]",
			sim.ErrConfiguration, l.ChargeMean, chargeLower, chargeUpper)
	}
	if l.DischargeMean >= l.ChargeMean {
		return fmt.Errorf("%w: discharge stop %g >= charge stop %g",
			sim.ErrConfiguration, l.DischargeMean, l.ChargeMean)
	}
	return nil
}

// Governor wraps a Profile with the stop-limit logic. During discharge the
// underlying profile drives the pack; during charge a constant current is
// applied. When the commanded current would push the state of charge past
// the active threshold, the governor clips it to the value that exactly
// reaches the threshold at end of step and signals the cycle boundary.
type Governor struct {
	profile   Profile
	sampler   *sim.Sampler
	limits    Limits
	chargeAmp float64 // constant-current charge magnitude at pack level [A]

	dischargeStop float64
	chargeStop    float64
}

// NewGovernor builds a governor and samples the initial thresholds.
func NewGovernor(p Profile, sampler *sim.Sampler, limits Limits, chargeAmp float64) (*Governor, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if chargeAmp <= 0 {
		return nil, fmt.Errorf("%w: charge current must be positive, got %g", sim.ErrConfiguration, chargeAmp)
	}
	g := &Governor{profile: p, sampler: sampler, limits: limits, chargeAmp: chargeAmp}
	if err := g.Resample(); err != nil {
		return nil, err
	}
	return g, nil
}

// Resample draws fresh stop thresholds, called once per cycle boundary.
func (g *Governor) Resample() error {
	d, err := g.sampler.Triangular(g.limits.DischargeMean, dischargeLower, dischargeUpper)
	if err != nil {
		return err
	}
	c, err := g.sampler.Triangular(g.limits.ChargeMean, chargeLower, chargeUpper)
	if err != nil {
		return err
	}
	g.dischargeStop = d
	g.chargeStop = c
	return nil
}

// Stops returns the active thresholds, mainly for logging and tests.
func (g *Governor) Stops() (discharge, charge float64) {
	return g.dischargeStop, g.chargeStop
}

// Command returns the pack current for the next step. soc and cellCapAh
// describe the representative cell, parallel the branch count used to map
// pack current onto the cell. boundary reports that the returned (possibly
// clipped) current completes the active half cycle.
func (g *Governor) Command(mode model.Mode, elapsedS, soc, cellCapAh, dtS float64, parallel int) (packAmp float64, boundary bool, err error) {
	switch mode {
	case model.ModeDischarging:
		packAmp, err = g.profile.NextCurrent(elapsedS)
		if err != nil {
			return 0, false, err
		}
	case model.ModeCharging:
		packAmp = g.chargeAmp
	default:
		return 0, false, fmt.Errorf("%w: governor queried in mode %q", sim.ErrConfiguration, mode)
	}

	// Predicted end-of-step SoC for the representative cell.
	cellAmp := packAmp / float64(parallel)
	next := soc + cellAmp*dtS/(3600*cellCapAh)

	switch mode {
	case model.ModeDischarging:
		if next <= g.dischargeStop {
			packAmp = (g.dischargeStop - soc) * 3600 * cellCapAh / dtS * float64(parallel)
			boundary = true
		}
	case model.ModeCharging:
		if next >= g.chargeStop {
			packAmp = (g.chargeStop - soc) * 3600 * cellCapAh / dtS * float64(parallel)
			boundary = true
		}
	}
	return packAmp, boundary, nil
}
