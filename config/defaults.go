package config

import (
	"fmt"

	"github.com/voltlab/battsim/core/model"
)

// SetDefaults fills unset fields with the reference configuration: a pack
// of NCR18650B-class cells cycled between 20% and 95% state of charge.
func (c *Config) SetDefaults() {
	if c.Device == "" {
		c.Device = "test"
	}
	if c.DTSeconds == 0 {
		c.DTSeconds = 1
	}
	if c.SimTimeS == 0 {
		c.SimTimeS = 10 * 24 * 3600
	}
	if c.InitialSoC == 0 {
		c.InitialSoC = 0.95
	}
	if c.AmbientC == 0 {
		c.AmbientC = 20
	}
	if c.Limits.DischargeMean == 0 {
		c.Limits.DischargeMean = 0.2
	}
	if c.Limits.ChargeMean == 0 {
		c.Limits.ChargeMean = 0.95
	}
	if c.Pack.Series == 0 {
		c.Pack.Series = 96
	}
	if c.Pack.Parallel == 0 {
		c.Pack.Parallel = 74
	}
	c.Cell.setDefaults()
	c.Fade.setDefaults()
	c.Profile.setDefaults()
	c.Logging.setDefaults()
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "csv", Path: "output/" + c.Device + ".csv"}}
	}
}

func (c *CellConfig) setDefaults() {
	if c.CapacityAh == 0 {
		c.CapacityAh = 3.35
	}
	if c.SeriesOhm == 0 {
		c.SeriesOhm = 0.05
	}
	if c.RCOhm == 0 {
		c.RCOhm = 0.02
	}
	if c.RCFarad == 0 {
		c.RCFarad = 500
	}
	if c.ThermalMass == 0 {
		c.ThermalMass = 42 // ~46g of 18650 cell at 900 J/(kg K)
	}
	if c.SurfaceM2 == 0 {
		c.SurfaceM2 = 0.0042
	}
	if c.HeatTransW == 0 {
		c.HeatTransW = 50
	}
	if c.NominalAmp == 0 {
		c.NominalAmp = 1.625
	}
	if c.ChargeAmp == 0 {
		c.ChargeAmp = 1.625
	}
	if len(c.OCV) == 0 {
		// Panasonic NCR18650B discharge curve, coarse sampling.
		c.OCV = []model.CurvePoint{
			{X: 0.00, Y: 2.50},
			{X: 0.05, Y: 3.00},
			{X: 0.10, Y: 3.25},
			{X: 0.25, Y: 3.45},
			{X: 0.50, Y: 3.60},
			{X: 0.75, Y: 3.85},
			{X: 0.90, Y: 4.05},
			{X: 1.00, Y: 4.20},
		}
	}
}

func (f *FadeConfig) setDefaults() {
	if f.CapPerCycle == 0 {
		f.CapPerCycle = 0.05 / 140
	}
	if f.ResPerCycle == 0 {
		f.ResPerCycle = 0.03 / 140
	}
	if f.TempRefC == 0 {
		f.TempRefC = 25
	}
	if f.TempAlpha == 0 {
		f.TempAlpha = 0.02
	}
}

func (p *ProfileConfig) setDefaults() {
	if p.WLTPClass == 0 {
		p.WLTPClass = 3
	}
	if p.UseWLTP && p.TracePath == "" {
		p.TracePath = fmt.Sprintf("driving_protocols/wltp_class%d.csv", p.WLTPClass)
	}
	if p.Pulse.LenMinSteps == 0 {
		p.Pulse.LenMinSteps = 2
	}
	if p.Pulse.LenMaxSteps == 0 {
		p.Pulse.LenMaxSteps = 10
	}
	if p.Pulse.CMin == 0 && p.Pulse.CMax == 0 {
		p.Pulse.CMin = -4.0
		p.Pulse.CMax = 1.0
		p.Pulse.CMean = -2.5
	}
}

func (l *LoggingConfig) setDefaults() {
	if l.Lvl1Steps == 0 {
		l.Lvl1Steps = 5
	}
	if l.Lvl2Steps == 0 {
		l.Lvl2Steps = 12 * l.Lvl1Steps
	}
	if l.Lvl3Steps == 0 {
		l.Lvl3Steps = 24 * l.Lvl1Steps
	}
	if l.DumpSteps == 0 {
		l.DumpSteps = 1000
	}
	if l.CheckpointDir == "" {
		l.CheckpointDir = "status"
	}
}
