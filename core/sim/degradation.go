package sim

import (
	"fmt"

	"github.com/voltlab/battsim/core/model"
)

// FadeModel computes the per-boundary aging increments. Implementations
// must be monotonic: capacity fade and resistance growth fractions are
// never negative, so capacity never recovers and resistance never shrinks.
type FadeModel interface {
	// Fade returns the fractional capacity loss and resistance growth
	// for one equivalent full cycle at the given average temperature.
	Fade(cycles, avgTempC float64) (capLoss, resGrowth float64)
}

// LinearFade is the default fade curve: a constant per-cycle fraction,
// accelerated linearly above a reference temperature. The defaults match a
// pack losing ~5% capacity over 140 cycles at reference temperature.
type LinearFade struct {
	CapPerCycle float64 // fractional capacity loss per full cycle
	ResPerCycle float64 // fractional resistance growth per full cycle
	TempRefC    float64 // reference temperature [degC]
	TempAlpha   float64 // acceleration per degC above reference
}

// Fade implements FadeModel.
func (f LinearFade) Fade(_, avgTempC float64) (float64, float64) {
	accel := 1.0
	if avgTempC > f.TempRefC {
		accel += f.TempAlpha * (avgTempC - f.TempRefC)
	}
	capLoss := f.CapPerCycle * accel
	resGrowth := f.ResPerCycle * accel
	if capLoss < 0 {
		capLoss = 0
	}
	if resGrowth < 0 {
		resGrowth = 0
	}
	return capLoss, resGrowth
}

// Degradation applies the fade model at cycle boundaries. It is the only
// path that mutates the runtime capacity and series resistance derived
// from the cell template.
type Degradation struct {
	fade FadeModel
}

// NewDegradation builds the degradation model around a fade curve.
func NewDegradation(fade FadeModel) *Degradation {
	return &Degradation{fade: fade}
}

// OnBoundary applies one boundary worth of aging. depth is the SoC
// excursion of the completed half cycle in [0,1]; a full discharge plus a
// full charge therefore add one equivalent cycle. Returns an error if the
// fade model violates monotonicity.
func (d *Degradation) OnBoundary(state *model.CellState, depth float64) error {
	if depth < 0 {
		depth = -depth
	}
	if depth > 1 {
		depth = 1
	}
	increment := depth / 2

	capLoss, resGrowth := d.fade.Fade(state.Cycles, state.AvgTemp())
	if capLoss < 0 || resGrowth < 0 {
		return fmt.Errorf("%w: fade model returned negative increments", ErrConfiguration)
	}

	state.Cycles += increment
	state.CapacityAh *= 1 - capLoss*increment
	state.SeriesOhm *= 1 + resGrowth*increment
	state.ResetTempWindow()
	return nil
}
