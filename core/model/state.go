package model

import "fmt"

// Mode is the orchestrator phase.
type Mode string

const (
	ModeDischarging Mode = "discharging"
	ModeCharging    Mode = "charging"
	ModePause       Mode = "pause"
	ModeFinished    Mode = "finished"
)

// SimulationState is the single mutable state owned by the orchestrator.
// It is also the checkpoint payload: resuming a run restores exactly this
// value, provided the topology fingerprint matches.
type SimulationState struct {
	Device      string    `json:"device"`
	RunID       string    `json:"run_id"`
	Step        int64     `json:"step"`
	TimeS       float64   `json:"time_s"`
	Mode        Mode      `json:"mode"`
	Cell        CellState `json:"cell"`
	PackAmp     float64   `json:"pack_current_a"`
	PackVolt    float64   `json:"pack_voltage_v"`
	EnergyChgWs float64   `json:"energy_charging_ws"`
	EnergyDisWs float64   `json:"energy_discharging_ws"`

	// Fingerprint guards checkpoint/configuration compatibility.
	Series     int     `json:"series"`
	Parallel   int     `json:"parallel"`
	NominalAh  float64 `json:"nominal_ah"`
}

// CompatibleWith reports whether a resumed state matches the configured
// pack. A mismatch means the checkpoint belongs to a different topology
// and must not seed this run.
func (s SimulationState) CompatibleWith(pack PackConfig, cell CellParams) error {
	if s.Series != pack.Series || s.Parallel != pack.Parallel {
		return fmt.Errorf("checkpoint topology %dS%dP does not match configured %s",
			s.Series, s.Parallel, pack)
	}
	if s.NominalAh != cell.CapacityAh {
		return fmt.Errorf("checkpoint nominal capacity %gAh does not match configured %gAh",
			s.NominalAh, cell.CapacityAh)
	}
	return nil
}

// Snapshot renders the state as a record for the given tier.
func (s SimulationState) Snapshot(tier Tier) StateRecord {
	return StateRecord{
		RunID:       s.RunID,
		Device:      s.Device,
		Tier:        tier,
		Step:        s.Step,
		TimeS:       s.TimeS,
		PackAmp:     s.PackAmp,
		PackVolt:    s.PackVolt,
		SoC:         s.Cell.SoC,
		CapacityAh:  s.Cell.CapacityAh,
		TempC:       s.Cell.TempC,
		Cycles:      s.Cell.Cycles,
		Mode:        string(s.Mode),
		EnergyChgWs: s.EnergyChgWs,
		EnergyDisWs: s.EnergyDisWs,
	}
}
