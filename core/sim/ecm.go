package sim

import (
	"fmt"
	"math"

	"github.com/voltlab/battsim/core/model"
)

// ECM advances one representative cell through the single-RC equivalent
// circuit. The RC branch uses the exact exponential step, which is stable
// for any DT, so the model never diverges from the discretization itself.
//
// Sign convention: negative current discharges the cell, positive charges
// it. Terminal voltage sags below OCV under discharge through both the
// series resistance and the RC branch.
type ECM struct {
	params model.CellParams
	ocv    *Curve
	// TempOhm optionally scales series resistance with temperature.
	// Nil means resistance is temperature independent.
	tempOhm *Curve
}

// NewECM builds the electrical model from a cell template. tempOhm may be
// nil.
func NewECM(params model.CellParams, ocv, tempOhm *Curve) *ECM {
	return &ECM{params: params, ocv: ocv, tempOhm: tempOhm}
}

// OCV looks up the open-circuit voltage for a state of charge. The input
// is clamped to [0,1] before lookup; a failure past clamping means the
// configured curve does not cover the SoC domain.
func (m *ECM) OCV(soc float64) (float64, error) {
	return m.ocv.At(clamp01(soc))
}

// seriesOhm resolves the effective series resistance for the step.
func (m *ECM) seriesOhm(state *model.CellState) (float64, error) {
	r := state.SeriesOhm
	if m.tempOhm == nil {
		return r, nil
	}
	f, err := m.tempOhm.At(state.TempC)
	if err != nil {
		return 0, err
	}
	return r * f, nil
}

// Step advances the cell state by dt seconds under the given cell current.
// It returns the terminal voltage and mutates SoC and the RC-branch
// voltage in place.
func (m *ECM) Step(state *model.CellState, cellAmp, dt float64) (float64, error) {
	tau := m.params.RCOhm * m.params.RCFarad
	decay := math.Exp(-dt / tau)
	state.VoltRC = state.VoltRC*decay + cellAmp*m.params.RCOhm*(1-decay)

	rs, err := m.seriesOhm(state)
	if err != nil {
		return 0, err
	}

	ocv, err := m.OCV(state.SoC)
	if err != nil {
		return 0, err
	}
	volt := ocv + cellAmp*rs + state.VoltRC

	state.SoC = clamp01(state.SoC + cellAmp*dt/(3600*state.CapacityAh))
	state.Volt = volt

	if !isFinite(volt) || !isFinite(state.VoltRC) || !isFinite(state.SoC) {
		return 0, fmt.Errorf("%w: non-finite cell state at soc=%g amp=%g", ErrNumericInstability, state.SoC, cellAmp)
	}
	return volt, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
