package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriangularStaysWithinCutoffs(t *testing.T) {
	s := NewSampler(42)
	for i := 0; i < 10000; i++ {
		v, err := s.Triangular(0.2, 0.05, 0.6)
		require.NoError(t, err)
		require.GreaterOrEqual(t, v, 0.05)
		require.LessOrEqual(t, v, 0.6)
	}
}

func TestTriangularInvalidParameters(t *testing.T) {
	s := NewSampler(1)
	cases := []struct {
		name               string
		mode, lower, upper float64
	}{
		{"inverted cutoffs", 0.5, 0.9, 0.1},
		{"equal cutoffs", 0.5, 0.5, 0.5},
		{"mode below lower", 0.01, 0.05, 0.6},
		{"mode above upper", 0.7, 0.05, 0.6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Triangular(tc.mode, tc.lower, tc.upper)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrInvalidDistribution))
		})
	}
}

func TestSamplerDeterminism(t *testing.T) {
	a := NewSampler(7)
	b := NewSampler(7)
	for i := 0; i < 100; i++ {
		va, err := a.Triangular(0.95, 0.6, 0.98)
		require.NoError(t, err)
		vb, err := b.Triangular(0.95, 0.6, 0.98)
		require.NoError(t, err)
		require.Equal(t, va, vb)
		require.Equal(t, a.UniformInt(2, 10), b.UniformInt(2, 10))
		require.Equal(t, a.Uniform(0, 1), b.Uniform(0, 1))
	}
}

func TestUniformIntBounds(t *testing.T) {
	s := NewSampler(3)
	for i := 0; i < 1000; i++ {
		v := s.UniformInt(5, 10)
		if v < 5 || v > 10 {
			t.Fatalf("draw %d outside [5,10]", v)
		}
	}
	if got := s.UniformInt(4, 4); got != 4 {
		t.Fatalf("degenerate interval should return lo, got %d", got)
	}
}
