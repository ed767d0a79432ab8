package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voltlab/battsim/config"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration and print the resolved summary",
	RunE:  check,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func check(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	variant := "pulse"
	if cfg.Profile.UseWLTP {
		variant = fmt.Sprintf("wltp class %d (%s)", cfg.Profile.WLTPClass, cfg.Profile.TracePath)
	}
	fmt.Printf("device:    %s\n", cfg.Device)
	fmt.Printf("pack:      %s, %.2f Ah nominal\n", cfg.Pack, cfg.Pack.CapacityAh(cfg.Cell.CapacityAh))
	fmt.Printf("steps:     dt=%gs, sim_time=%gs\n", cfg.DTSeconds, cfg.SimTimeS)
	fmt.Printf("profile:   %s\n", variant)
	fmt.Printf("stops:     discharge mean %.2f, charge mean %.2f\n",
		cfg.Limits.DischargeMean, cfg.Limits.ChargeMean)
	fmt.Printf("sinks:     %d configured\n", len(cfg.Sinks))
	return nil
}
