package model

import "fmt"

// PackConfig describes the wiring of identical cells into a pack:
// Series cells in a string, Parallel strings sharing the load. Cells in the
// same parallel group are assumed balanced, so a single representative cell
// state per series position is simulated and scaled.
type PackConfig struct {
	Series   int `json:"series"`
	Parallel int `json:"parallel"`
}

// Validate checks the topology.
func (c PackConfig) Validate() error {
	if c.Series < 1 || c.Parallel < 1 {
		return fmt.Errorf("pack topology must have at least 1S1P, got %dS%dP", c.Series, c.Parallel)
	}
	return nil
}

// CapacityAh returns total pack capacity for the given per-cell capacity.
func (c PackConfig) CapacityAh(cellAh float64) float64 {
	return float64(c.Parallel) * cellAh
}

// Voltage returns pack voltage for the given per-cell terminal voltage.
func (c PackConfig) Voltage(cellVolt float64) float64 {
	return float64(c.Series) * cellVolt
}

// CellCurrent splits the externally commanded pack current evenly across
// the parallel branches.
func (c PackConfig) CellCurrent(packAmp float64) float64 {
	return packAmp / float64(c.Parallel)
}

// String renders the usual "96S1P" notation.
func (c PackConfig) String() string {
	return fmt.Sprintf("%dS%dP", c.Series, c.Parallel)
}
