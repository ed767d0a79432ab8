package sim

import (
	"fmt"

	"github.com/voltlab/battsim/core/model"
)

// Thermal is the lumped single-node temperature model. Heat comes from
// resistive losses in the series resistance and the RC branch; cooling is
// convective against ambient. The node never cools below ambient.
type Thermal struct {
	params   model.CellParams
	ambientC float64
}

// NewThermal builds the thermal model.
func NewThermal(params model.CellParams, ambientC float64) *Thermal {
	return &Thermal{params: params, ambientC: ambientC}
}

// Step advances the node temperature by dt seconds for the given cell
// current, and feeds the degradation temperature accumulator.
func (t *Thermal) Step(state *model.CellState, cellAmp, dt float64) error {
	heat := cellAmp*cellAmp*state.SeriesOhm + state.VoltRC*state.VoltRC/t.params.RCOhm
	cooling := t.params.HeatTransW * t.params.SurfaceM2 * (state.TempC - t.ambientC)
	state.TempC += dt * (heat - cooling) / t.params.ThermalMass
	if state.TempC < t.ambientC {
		state.TempC = t.ambientC
	}
	if !isFinite(state.TempC) {
		return fmt.Errorf("%w: non-finite temperature", ErrNumericInstability)
	}
	state.TempAccum += state.TempC
	state.TempSamples++
	return nil
}

// Ambient returns the ambient floor temperature.
func (t *Thermal) Ambient() float64 { return t.ambientC }
