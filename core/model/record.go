package model

// Tier marks which logging cadence produced a record. Tier1 fires most
// often and carries the electrical signals, Tier2 adds state of charge and
// thermal values, Tier3 adds slow counters. A record always contains the
// full snapshot; the tier tells sinks which cadence it belongs to.
type Tier int

const (
	Tier1 Tier = iota + 1
	Tier2
	Tier3
)

// StateRecord is one read-only snapshot emitted to the record sinks.
type StateRecord struct {
	RunID        string  `json:"run_id"`
	Device       string  `json:"device"`
	Tier         Tier    `json:"tier"`
	Step         int64   `json:"step"`
	TimeS        float64 `json:"time_s"`
	PackAmp      float64 `json:"pack_current_a"`
	PackVolt     float64 `json:"pack_voltage_v"`
	SoC          float64 `json:"soc"`
	CapacityAh   float64 `json:"capacity_ah"`
	TempC        float64 `json:"temp_c"`
	Cycles       float64 `json:"cycles"`
	Mode         string  `json:"mode"`
	EnergyChgWs  float64 `json:"energy_charging_ws"`
	EnergyDisWs  float64 `json:"energy_discharging_ws"`
}
