package sim

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"github.com/voltlab/battsim/core/model"
)

// Curve is a monotonic piecewise-linear interpolator over an ordered set of
// (x, y) samples. Lookups outside the fitted domain fail instead of
// extrapolating.
type Curve struct {
	pl   interp.PiecewiseLinear
	xMin float64
	xMax float64
}

// NewCurve fits a curve to the given points. Abscissae must be strictly
// increasing.
func NewCurve(points []model.CurvePoint) (*Curve, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: curve needs at least two points, got %d", ErrConfiguration, len(points))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		if i > 0 && p.X <= points[i-1].X {
			return nil, fmt.Errorf("%w: curve abscissae not strictly increasing at index %d", ErrConfiguration, i)
		}
		xs[i] = p.X
		ys[i] = p.Y
	}
	c := &Curve{xMin: xs[0], xMax: xs[len(xs)-1]}
	if err := c.pl.Fit(xs, ys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return c, nil
}

// At evaluates the curve at x.
func (c *Curve) At(x float64) (float64, error) {
	if x < c.xMin || x > c.xMax {
		return 0, fmt.Errorf("%w: x=%g outside [%g, %g]", ErrCurveLookup, x, c.xMin, c.xMax)
	}
	return c.pl.Predict(x), nil
}

// Domain returns the fitted interval.
func (c *Curve) Domain() (lo, hi float64) {
	return c.xMin, c.xMax
}
