package profile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltlab/battsim/core/sim"
)

func pulseTestConfig() PulseConfig {
	return PulseConfig{
		LenMinSteps: 5,
		LenMaxSteps: 10,
		CMin:        1,
		CMax:        5,
		CMean:       3,
	}
}

func TestPulseReproducibleUnderFixedSeed(t *testing.T) {
	a, err := NewPulse(pulseTestConfig(), sim.NewSampler(99), 1)
	require.NoError(t, err)
	b, err := NewPulse(pulseTestConfig(), sim.NewSampler(99), 1)
	require.NoError(t, err)

	for i := 0; i < 500; i++ {
		va, err := a.NextCurrent(float64(i))
		require.NoError(t, err)
		vb, err := b.NextCurrent(float64(i))
		require.NoError(t, err)
		require.Equal(t, va, vb, "step %d", i)
	}
}

func TestPulseAmplitudeBounds(t *testing.T) {
	p, err := NewPulse(pulseTestConfig(), sim.NewSampler(4), 2)
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		v, err := p.NextCurrent(float64(i))
		require.NoError(t, err)
		// C-rate bounds [1,5] scaled by 2 Ah pack capacity.
		require.GreaterOrEqual(t, v, 2.0)
		require.LessOrEqual(t, v, 10.0)
	}
}

func TestPulseLengthBounds(t *testing.T) {
	p, err := NewPulse(pulseTestConfig(), sim.NewSampler(11), 1)
	require.NoError(t, err)

	prev, err := p.NextCurrent(0)
	require.NoError(t, err)
	run := 1
	var runs []int
	for i := 1; i < 2000; i++ {
		v, err := p.NextCurrent(float64(i))
		require.NoError(t, err)
		if v == prev {
			run++
			continue
		}
		runs = append(runs, run)
		run = 1
		prev = v
	}
	require.NotEmpty(t, runs)
	for _, r := range runs {
		require.GreaterOrEqual(t, r, 5)
		require.LessOrEqual(t, r, 10)
	}
}

func TestPulseConfigValidation(t *testing.T) {
	cases := []PulseConfig{
		{LenMinSteps: 0, LenMaxSteps: 5, CMin: 1, CMax: 2, CMean: 1.5},
		{LenMinSteps: 5, LenMaxSteps: 2, CMin: 1, CMax: 2, CMean: 1.5},
		{LenMinSteps: 2, LenMaxSteps: 5, CMin: 2, CMax: 1, CMean: 1.5},
		{LenMinSteps: 2, LenMaxSteps: 5, CMin: 1, CMax: 2, CMean: 3},
	}
	for i, cfg := range cases {
		err := cfg.Validate()
		require.Error(t, err, "case %d", i)
		require.True(t, errors.Is(err, sim.ErrConfiguration), "case %d", i)
	}
}
