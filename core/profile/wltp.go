package profile

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/voltlab/battsim/core/sim"
)

// Sample is one point of a driving trace.
type Sample struct {
	TimeS    float64
	SpeedKmh float64
	AccelMS2 float64
	SlopeDeg float64
}

// Trace is an ordered driving trace, sampled at a fixed 1 s cadence in the
// standard WLTP files.
type Trace []Sample

// VehicleParams holds the mechanical constants that turn a driving trace
// into tractive power. Defaults approximate a large electric sedan.
type VehicleParams struct {
	MassKg        float64 `json:"mass_kg"`         // empty vehicle mass
	LoadKg        float64 `json:"load_kg"`         // passengers and cargo
	RollCoeff     float64 `json:"roll_coeff"`      // rolling resistance coefficient
	DragCoeff     float64 `json:"drag_coeff"`      // aerodynamic drag coefficient
	FrontalM2     float64 `json:"frontal_m2"`      // frontal cross-section
	AirDensity    float64 `json:"air_density"`     // [kg/m^3]
	AirSpeedMS    float64 `json:"air_speed_ms"`    // headwind
	InertiaCoeff  float64 `json:"inertia_coeff"`   // rotational mass factor
	DriveEff      float64 `json:"drive_eff"`       // mech <-> elec efficiency
	AuxPowerW     float64 `json:"aux_power_w"`     // constant auxiliary drain
	NominalVoltV  float64 `json:"nominal_volt_v"`  // pack voltage used for P -> I
}

const gravity = 9.81

// SetDefaults fills zero fields with the reference vehicle.
func (v *VehicleParams) SetDefaults() {
	if v.MassKg == 0 {
		v.MassKg = 2175
	}
	if v.LoadKg == 0 {
		v.LoadKg = 495
	}
	if v.RollCoeff == 0 {
		v.RollCoeff = 0.015
	}
	if v.DragCoeff == 0 {
		v.DragCoeff = 0.24
	}
	if v.FrontalM2 == 0 {
		v.FrontalM2 = 2.34
	}
	if v.AirDensity == 0 {
		v.AirDensity = 1.2041
	}
	if v.InertiaCoeff == 0 {
		v.InertiaCoeff = 1.07
	}
	if v.DriveEff == 0 {
		v.DriveEff = 0.6
	}
	if v.AuxPowerW == 0 {
		v.AuxPowerW = 1500
	}
}

// Validate checks the constants that must not stay zero.
func (v VehicleParams) Validate() error {
	if v.NominalVoltV <= 0 {
		return fmt.Errorf("%w: nominal pack voltage must be positive, got %g", sim.ErrConfiguration, v.NominalVoltV)
	}
	if v.DriveEff <= 0 || v.DriveEff > 1 {
		return fmt.Errorf("%w: drive efficiency must be in (0,1], got %g", sim.ErrConfiguration, v.DriveEff)
	}
	return nil
}

// Power computes the electrical battery power for a trace point via the
// force balance: rolling, aerodynamic, climbing and inertial resistance.
// Negative power drains the pack, positive power (recuperation) charges it.
func (v VehicleParams) Power(s Sample) float64 {
	mass := v.MassKg + v.LoadKg
	slopeRad := s.SlopeDeg / 180 * math.Pi
	speedMS := s.SpeedKmh / 3.6

	force := mass*gravity*v.RollCoeff*math.Cos(slopeRad) +
		0.5*v.AirDensity*v.DragCoeff*v.FrontalM2*math.Pow(speedMS+v.AirSpeedMS, 2) +
		mass*gravity*math.Sin(slopeRad) +
		mass*s.AccelMS2*v.InertiaCoeff

	mech := force * speedMS
	// Efficiency multiplies drains and divides gains.
	return -(mech*math.Pow(v.DriveEff, sign(-mech)) + v.AuxPowerW)
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// WLTP replays a driving trace as a pack current demand. The trace loops
// indefinitely; elapsed times past one pass wrap around. Between trace
// samples the speed and acceleration are linearly interpolated so the
// profile stays continuous for DT < 1 s.
type WLTP struct {
	trace   Trace
	vehicle VehicleParams
}

// NewWLTP builds the WLTP variant.
func NewWLTP(trace Trace, vehicle VehicleParams) (*WLTP, error) {
	if len(trace) < 2 {
		return nil, fmt.Errorf("%w: driving trace needs at least two samples, got %d", sim.ErrConfiguration, len(trace))
	}
	vehicle.SetDefaults()
	if err := vehicle.Validate(); err != nil {
		return nil, err
	}
	return &WLTP{trace: trace, vehicle: vehicle}, nil
}

// NextCurrent implements Profile.
func (w *WLTP) NextCurrent(elapsedS float64) (float64, error) {
	span := w.trace[len(w.trace)-1].TimeS - w.trace[0].TimeS
	t := w.trace[0].TimeS + math.Mod(elapsedS, span)

	// Locate the surrounding samples and interpolate.
	i := 0
	for i < len(w.trace)-2 && w.trace[i+1].TimeS <= t {
		i++
	}
	a, b := w.trace[i], w.trace[i+1]
	frac := 0.0
	if b.TimeS > a.TimeS {
		frac = (t - a.TimeS) / (b.TimeS - a.TimeS)
	}
	s := Sample{
		TimeS:    t,
		SpeedKmh: a.SpeedKmh + frac*(b.SpeedKmh-a.SpeedKmh),
		AccelMS2: a.AccelMS2 + frac*(b.AccelMS2-a.AccelMS2),
		SlopeDeg: a.SlopeDeg,
	}
	p := w.vehicle.Power(s)
	amp := p / w.vehicle.NominalVoltV
	if !finite(amp) {
		return 0, fmt.Errorf("%w: non-finite trace current at t=%gs", sim.ErrNumericInstability, elapsedS)
	}
	return amp, nil
}

// LoadTrace reads a driving trace in the WLTP CSV dialect: semicolon
// separated, decimal comma, columns time;speed;acceleration;slope with one
// header line.
func LoadTrace(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open trace: %v", sim.ErrConfiguration, err)
	}
	defer f.Close()
	return ParseTrace(f)
}

// ParseTrace parses the WLTP CSV dialect from a reader.
func ParseTrace(r io.Reader) (Trace, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	var trace Trace
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: trace line %d: %v", sim.ErrConfiguration, line, err)
		}
		line++
		if line == 1 {
			// header
			continue
		}
		if len(rec) < 4 {
			return nil, fmt.Errorf("%w: trace line %d has %d fields, want 4", sim.ErrConfiguration, line, len(rec))
		}
		vals := make([]float64, 4)
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(rec[i]), ",", "."), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: trace line %d field %d: %v", sim.ErrConfiguration, line, i, err)
			}
			vals[i] = v
		}
		trace = append(trace, Sample{TimeS: vals[0], SpeedKmh: vals[1], AccelMS2: vals[2], SlopeDeg: vals[3]})
	}
	if len(trace) < 2 {
		return nil, fmt.Errorf("%w: driving trace needs at least two samples, got %d", sim.ErrConfiguration, len(trace))
	}
	return trace, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
