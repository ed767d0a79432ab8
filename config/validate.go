package config

import "fmt"

// Validate checks the assembled configuration. All violations are fatal at
// startup: a run never begins on contradictory parameters.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device name is required")
	}
	if c.DTSeconds <= 0 {
		return fmt.Errorf("dt_seconds must be positive, got %g", c.DTSeconds)
	}
	if c.SimTimeS < c.DTSeconds {
		return fmt.Errorf("sim_time_s %g shorter than one step", c.SimTimeS)
	}
	if c.InitialSoC < 0 || c.InitialSoC > 1 {
		return fmt.Errorf("initial_soc %g outside [0,1]", c.InitialSoC)
	}
	if c.Cell.CycleStart < 0 {
		return fmt.Errorf("cycle_start must not be negative, got %g", c.Cell.CycleStart)
	}
	if err := c.Pack.Validate(); err != nil {
		return err
	}
	if err := c.Cell.Params().Validate(); err != nil {
		return err
	}
	if err := c.Limits.Validate(); err != nil {
		return err
	}
	if c.Fade.CapPerCycle < 0 || c.Fade.ResPerCycle < 0 {
		return fmt.Errorf("fade fractions must not be negative")
	}
	if c.Pause.MaxS < c.Pause.MinS {
		return fmt.Errorf("pause bounds [%g, %g] invalid", c.Pause.MinS, c.Pause.MaxS)
	}
	if c.Profile.UseWLTP {
		if c.Profile.WLTPClass < 1 || c.Profile.WLTPClass > 3 {
			return fmt.Errorf("wltp_class must be 1..3, got %d", c.Profile.WLTPClass)
		}
		if c.Profile.TracePath == "" {
			return fmt.Errorf("trace_path is required for the WLTP profile")
		}
	} else {
		if err := c.Profile.Pulse.Validate(); err != nil {
			return err
		}
	}
	for i, s := range c.Sinks {
		switch s.Type {
		case "csv", "jsonl":
			if s.Path == "" {
				return fmt.Errorf("sink %d: %s sink needs a path", i, s.Type)
			}
		case "influx":
			if s.Influx.URL == "" {
				return fmt.Errorf("sink %d: influx sink needs a url", i)
			}
		case "mqtt":
			if s.MQTT.Broker == "" {
				return fmt.Errorf("sink %d: mqtt sink needs a broker", i)
			}
		case "prometheus", "nop":
		default:
			return fmt.Errorf("sink %d: unknown type %q", i, s.Type)
		}
	}
	return nil
}
