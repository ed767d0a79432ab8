package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltlab/battsim/core/model"
)

func TestDegradationMonotonic(t *testing.T) {
	d := NewDegradation(LinearFade{
		CapPerCycle: 0.05 / 140,
		ResPerCycle: 0.03 / 140,
		TempRefC:    25,
		TempAlpha:   0.02,
	})
	state := model.NewCellState(testCellParams(), 0.5, 20)

	capPrev := state.CapacityAh
	resPrev := state.SeriesOhm
	cyclesPrev := state.Cycles
	for i := 0; i < 500; i++ {
		require.NoError(t, d.OnBoundary(&state, 0.75))
		require.Less(t, state.CapacityAh, capPrev)
		require.Greater(t, state.SeriesOhm, resPrev)
		require.Greater(t, state.Cycles, cyclesPrev)
		capPrev = state.CapacityAh
		resPrev = state.SeriesOhm
		cyclesPrev = state.Cycles
	}
}

func TestDegradationDepthWeighting(t *testing.T) {
	d := NewDegradation(LinearFade{CapPerCycle: 0.001})
	state := model.NewCellState(testCellParams(), 0.5, 20)

	// One full discharge plus one full charge add one equivalent cycle.
	require.NoError(t, d.OnBoundary(&state, -1))
	require.NoError(t, d.OnBoundary(&state, 1))
	require.InDelta(t, 1.0, state.Cycles, 1e-12)

	// A shallow excursion counts fractionally.
	require.NoError(t, d.OnBoundary(&state, 0.2))
	require.InDelta(t, 1.1, state.Cycles, 1e-12)
}

func TestDegradationTemperatureAcceleration(t *testing.T) {
	fade := LinearFade{CapPerCycle: 0.001, ResPerCycle: 0.001, TempRefC: 25, TempAlpha: 0.05}

	capCool, _ := fade.Fade(0, 25)
	capHot, _ := fade.Fade(0, 45)
	require.Greater(t, capHot, capCool)

	// Below reference the fade never drops under the base rate's floor.
	capCold, resCold := fade.Fade(0, -10)
	require.Equal(t, capCool, capCold)
	require.GreaterOrEqual(t, resCold, 0.0)
}

func TestDegradationDepthClamped(t *testing.T) {
	d := NewDegradation(LinearFade{CapPerCycle: 0.001})
	state := model.NewCellState(testCellParams(), 0.5, 20)

	require.NoError(t, d.OnBoundary(&state, 5)) // clamped to 1
	require.InDelta(t, 0.5, state.Cycles, 1e-12)
}

func TestDegradationStartsFromWornCell(t *testing.T) {
	params := testCellParams()
	params.CycleStart = 120
	state := model.NewCellState(params, 0.5, 20)
	require.Equal(t, 120.0, state.Cycles)

	d := NewDegradation(LinearFade{CapPerCycle: 0.001})
	require.NoError(t, d.OnBoundary(&state, 1))
	require.InDelta(t, 120.5, state.Cycles, 1e-12)
}
