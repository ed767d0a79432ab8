package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltlab/battsim/core/model"
)

func TestThermalHeatsUnderLoad(t *testing.T) {
	params := testCellParams()
	th := NewThermal(params, 20)
	state := model.NewCellState(params, 0.5, 20)

	for i := 0; i < 60; i++ {
		require.NoError(t, th.Step(&state, -5, 1))
	}
	require.Greater(t, state.TempC, 20.0)
}

func TestThermalCoolsTowardAmbient(t *testing.T) {
	params := testCellParams()
	th := NewThermal(params, 20)
	state := model.NewCellState(params, 0.5, 20)
	state.TempC = 40

	prev := state.TempC
	for i := 0; i < 600; i++ {
		require.NoError(t, th.Step(&state, 0, 1))
		require.LessOrEqual(t, state.TempC, prev)
		prev = state.TempC
	}
	require.Less(t, state.TempC, 25.0)
	require.GreaterOrEqual(t, state.TempC, 20.0)
}

func TestThermalNeverBelowAmbient(t *testing.T) {
	params := testCellParams()
	th := NewThermal(params, 20)
	state := model.NewCellState(params, 0.5, 20)

	for i := 0; i < 1000; i++ {
		require.NoError(t, th.Step(&state, 0, 10))
		require.GreaterOrEqual(t, state.TempC, 20.0)
	}
}

func TestThermalFeedsAverageWindow(t *testing.T) {
	params := testCellParams()
	th := NewThermal(params, 20)
	state := model.NewCellState(params, 0.5, 20)

	require.NoError(t, th.Step(&state, -5, 1))
	require.Equal(t, 1, state.TempSamples)
	require.InDelta(t, state.TempC, state.AvgTemp(), 1e-12)

	state.ResetTempWindow()
	require.Equal(t, 0, state.TempSamples)
	require.Equal(t, state.TempC, state.AvgTemp())
}
