package profile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testVehicle() VehicleParams {
	v := VehicleParams{NominalVoltV: 350}
	v.SetDefaults()
	return v
}

func TestParseTraceDecimalComma(t *testing.T) {
	raw := "t;v;a;slope\n0;0,0;0,0;0,0\n1;12,5;1,2;0,0\n2;25,0;0,0;2,5\n"
	trace, err := ParseTrace(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, trace, 3)
	require.Equal(t, 12.5, trace[1].SpeedKmh)
	require.Equal(t, 1.2, trace[1].AccelMS2)
	require.Equal(t, 2.5, trace[2].SlopeDeg)
}

func TestParseTraceRejectsGarbage(t *testing.T) {
	_, err := ParseTrace(strings.NewReader("t;v;a;slope\n0;abc;0;0\n"))
	require.Error(t, err)

	_, err = ParseTrace(strings.NewReader("t;v;a;slope\n"))
	require.Error(t, err)
}

func TestStandstillDrainsAuxiliaryOnly(t *testing.T) {
	v := testVehicle()
	p := v.Power(Sample{SpeedKmh: 0, AccelMS2: 0, SlopeDeg: 0})
	// At standstill only the constant auxiliary load drains the pack.
	require.InDelta(t, -v.AuxPowerW, p, 1e-9)
}

func TestHardBrakingRecuperates(t *testing.T) {
	v := testVehicle()
	p := v.Power(Sample{SpeedKmh: 80, AccelMS2: -3, SlopeDeg: 0})
	require.Greater(t, p, 0.0, "strong deceleration must feed power back")
}

func TestAccelerationDrains(t *testing.T) {
	v := testVehicle()
	p := v.Power(Sample{SpeedKmh: 50, AccelMS2: 2, SlopeDeg: 0})
	require.Less(t, p, 0.0)
}

func TestWLTPLoopsTrace(t *testing.T) {
	trace := Trace{
		{TimeS: 0, SpeedKmh: 0},
		{TimeS: 1, SpeedKmh: 36},
		{TimeS: 2, SpeedKmh: 0},
	}
	w, err := NewWLTP(trace, testVehicle())
	require.NoError(t, err)

	first, err := w.NextCurrent(0.5)
	require.NoError(t, err)
	// One full pass later the demand repeats.
	wrapped, err := w.NextCurrent(2.5)
	require.NoError(t, err)
	require.InDelta(t, first, wrapped, 1e-9)
}

func TestWLTPInterpolatesBetweenSamples(t *testing.T) {
	trace := Trace{
		{TimeS: 0, SpeedKmh: 0},
		{TimeS: 1, SpeedKmh: 72},
	}
	w, err := NewWLTP(trace, testVehicle())
	require.NoError(t, err)

	lo, err := w.NextCurrent(0.1)
	require.NoError(t, err)
	hi, err := w.NextCurrent(0.9)
	require.NoError(t, err)
	// Faster means more drain: both negative, the later one larger in
	// magnitude.
	require.Less(t, hi, lo)
}

func TestWLTPNeedsNominalVoltage(t *testing.T) {
	trace := Trace{{TimeS: 0}, {TimeS: 1}}
	_, err := NewWLTP(trace, VehicleParams{})
	require.Error(t, err)
}
