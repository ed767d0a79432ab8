package model

import "fmt"

// CellParams is the immutable template describing one cell of the pack.
// Runtime values that drift with aging (capacity, series resistance) live in
// CellState; the template itself is never mutated after startup.
type CellParams struct {
	CapacityAh  float64 // nominal capacity [Ah]
	SeriesOhm   float64 // series resistance R0 [Ohm]
	RCOhm       float64 // RC-branch resistance [Ohm]
	RCFarad     float64 // RC-branch capacitance [F]
	OCV         []CurvePoint
	ThermalMass float64 // m*c, heat capacity of the lumped node [J/K]
	SurfaceM2   float64 // convective surface area [m^2]
	HeatTransW  float64 // convective heat transfer coefficient [W/(m^2 K)]
	NominalAmp  float64 // nominal discharge current [A], scales C-rate profiles
	ChargeAmp   float64 // constant-current charge magnitude [A]
	CycleStart  float64 // initial cycle count, >0 simulates a worn cell
}

// CurvePoint is one sample of a monotonic lookup curve.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Validate checks the template for physically meaningful values.
func (p CellParams) Validate() error {
	if p.CapacityAh <= 0 {
		return fmt.Errorf("cell capacity must be positive, got %g", p.CapacityAh)
	}
	if p.SeriesOhm <= 0 || p.RCOhm <= 0 || p.RCFarad <= 0 {
		return fmt.Errorf("cell resistances and capacitance must be positive")
	}
	if p.ThermalMass <= 0 {
		return fmt.Errorf("cell thermal mass must be positive")
	}
	if len(p.OCV) < 2 {
		return fmt.Errorf("OCV curve needs at least two points, got %d", len(p.OCV))
	}
	for i := 1; i < len(p.OCV); i++ {
		if p.OCV[i].X <= p.OCV[i-1].X {
			return fmt.Errorf("OCV curve abscissae must be strictly increasing at index %d", i)
		}
	}
	if p.CycleStart < 0 {
		return fmt.Errorf("cycle start must not be negative, got %g", p.CycleStart)
	}
	return nil
}

// CellState is the mutable per-series-position state advanced each step.
// Capacity and series resistance start from the template and are only
// changed through the degradation path.
type CellState struct {
	SoC         float64 // state of charge [0,1]
	VoltRC      float64 // RC-branch voltage [V]
	Volt        float64 // terminal voltage [V]
	TempC       float64 // lumped node temperature [degC]
	CapacityAh  float64 // current capacity after fade
	SeriesOhm   float64 // current series resistance after growth
	Cycles      float64 // cumulative cycle count
	TempAccum   float64 // temperature integral since last boundary
	TempSamples int     // sample count backing TempAccum
}

// NewCellState derives the initial runtime state from a template.
func NewCellState(p CellParams, initialSoC, ambientC float64) CellState {
	return CellState{
		SoC:        initialSoC,
		TempC:      ambientC,
		CapacityAh: p.CapacityAh,
		SeriesOhm:  p.SeriesOhm,
		Cycles:     p.CycleStart,
	}
}

// AvgTemp returns the mean node temperature accumulated since the last
// cycle boundary, falling back to the current temperature when no samples
// were recorded yet.
func (s *CellState) AvgTemp() float64 {
	if s.TempSamples == 0 {
		return s.TempC
	}
	return s.TempAccum / float64(s.TempSamples)
}

// ResetTempWindow clears the temperature accumulator after a boundary.
func (s *CellState) ResetTempWindow() {
	s.TempAccum = 0
	s.TempSamples = 0
}
