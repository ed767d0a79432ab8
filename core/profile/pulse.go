package profile

import (
	"fmt"

	"github.com/voltlab/battsim/core/sim"
)

// PulseConfig parametrizes the randomized pulse profile. Amplitudes are
// expressed as C-rates relative to the nominal pack capacity; negative
// values discharge. Setting CMax positive while CMin is negative mixes in
// recuperation pulses.
type PulseConfig struct {
	LenMinSteps int     `json:"len_min_steps"`
	LenMaxSteps int     `json:"len_max_steps"`
	CMin        float64 `json:"c_min"`
	CMax        float64 `json:"c_max"`
	CMean       float64 `json:"c_mean"`
}

// Validate checks the pulse bounds.
func (c PulseConfig) Validate() error {
	if c.LenMinSteps < 1 || c.LenMaxSteps < c.LenMinSteps {
		return fmt.Errorf("%w: pulse length bounds [%d, %d] invalid", sim.ErrConfiguration, c.LenMinSteps, c.LenMaxSteps)
	}
	if c.CMin >= c.CMax {
		return fmt.Errorf("%w: pulse current bounds [%g, %g] invalid", sim.ErrConfiguration, c.CMin, c.CMax)
	}
	if c.CMean < c.CMin || c.CMean > c.CMax {
		return fmt.Errorf("%w: pulse current mean %g outside [%g, %g]", sim.ErrConfiguration, c.CMean, c.CMin, c.CMax)
	}
	return nil
}

// Pulse synthesizes a randomized discharge/charge current: it holds a
// sampled amplitude for a sampled number of steps, then draws a fresh
// pulse. All draws come from the injected Sampler, so a fixed seed
// reproduces the pulse train exactly.
type Pulse struct {
	cfg       PulseConfig
	sampler   *sim.Sampler
	packCapAh float64 // C-rate reference

	remaining int
	heldAmp   float64
}

// NewPulse builds the randomized variant. packCapAh is the nominal pack
// capacity that converts C-rates into amperes.
func NewPulse(cfg PulseConfig, sampler *sim.Sampler, packCapAh float64) (*Pulse, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if packCapAh <= 0 {
		return nil, fmt.Errorf("%w: pack capacity must be positive, got %g", sim.ErrConfiguration, packCapAh)
	}
	return &Pulse{cfg: cfg, sampler: sampler, packCapAh: packCapAh}, nil
}

// NextCurrent implements Profile. The elapsed time is unused; the pulse
// train advances one step per call.
func (p *Pulse) NextCurrent(_ float64) (float64, error) {
	if p.remaining <= 0 {
		c, err := p.sampler.Triangular(p.cfg.CMean, p.cfg.CMin, p.cfg.CMax)
		if err != nil {
			return 0, err
		}
		p.heldAmp = c * p.packCapAh
		p.remaining = p.sampler.UniformInt(p.cfg.LenMinSteps, p.cfg.LenMaxSteps)
	}
	p.remaining--
	return p.heldAmp, nil
}
