package sim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws bounded random values from a single seeded source. All
// stochastic quantities of a run (stop limits, pulse lengths and
// amplitudes, pause durations) go through one Sampler so that a fixed seed
// reproduces the full record sequence byte for byte.
type Sampler struct {
	src *rand.Rand
}

// NewSampler creates a sampler seeded with the given value. Seed 0 derives
// the stream from entropy, giving a different run every time.
func NewSampler(seed uint64) *Sampler {
	if seed == 0 {
		return &Sampler{src: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Sampler{src: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Triangular draws one value from a triangular distribution with the given
// mode, clipped to [lower, upper]. The draw never falls outside the
// cutoffs.
func (s *Sampler) Triangular(mode, lower, upper float64) (float64, error) {
	if lower >= upper {
		return 0, fmt.Errorf("%w: lower cutoff %g >= upper cutoff %g", ErrInvalidDistribution, lower, upper)
	}
	if mode < lower || mode > upper {
		return 0, fmt.Errorf("%w: mode %g outside [%g, %g]", ErrInvalidDistribution, mode, lower, upper)
	}
	tri := distuv.NewTriangle(lower, upper, mode, s.src)
	v := tri.Rand()
	// distuv keeps the support, clamp only against float rounding at the edges.
	if v < lower {
		v = lower
	}
	if v > upper {
		v = upper
	}
	return v, nil
}

// Uniform draws a float uniformly from [lo, hi).
func (s *Sampler) Uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.src.Float64()
}

// UniformInt draws an integer uniformly from [lo, hi] inclusive.
func (s *Sampler) UniformInt(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.src.IntN(hi-lo+1)
}
