package sim

import "errors"

// Error taxonomy. Configuration and checkpoint errors are fatal at startup;
// numeric and curve errors abort a running simulation but leave the last
// emitted record and checkpoint untouched.
var (
	// ErrConfiguration marks malformed or contradictory parameters.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInvalidDistribution marks triangular sampler parameters where
	// the mode falls outside the cutoffs or the cutoffs are inverted.
	ErrInvalidDistribution = errors.New("invalid distribution parameters")
	// ErrNumericInstability marks a discrete update that produced a
	// non-finite or out-of-physical-range value.
	ErrNumericInstability = errors.New("numeric instability")
	// ErrCurveLookup marks a lookup outside the interpolation domain
	// after defensive clamping.
	ErrCurveLookup = errors.New("curve lookup out of domain")
	// ErrCheckpoint marks resume data incompatible with the current
	// configuration.
	ErrCheckpoint = errors.New("incompatible checkpoint")
)
