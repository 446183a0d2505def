package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fiberbus/fiberbus/internal/config"
	"github.com/fiberbus/fiberbus/internal/scenario"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show fiberbus configuration and the default scenario",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s fiberbus Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:   %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	fmt.Printf("Defaults: capacity=%d\n", cfg.Bus.DefaultCapacity)
	if cfg.Monitor.Enabled {
		fmt.Printf("Monitor:  %s\n", cfg.Monitor.Schedule)
	} else {
		fmt.Println("Monitor:  disabled")
	}

	scnPath := cfg.Scenario.Path
	scn, err := scenario.Load(scnPath)
	if err != nil {
		fmt.Printf("Scenario: %s ✗ (%v)\n", scnPath, err)
		return nil
	}

	fmt.Printf("Scenario: %s ✓\n\n", scnPath)
	fmt.Printf("%-12s %s\n", "Channel", "Capacity")
	for _, c := range scn.Channels {
		if c.Capacity != nil {
			fmt.Printf("%-12s %d\n", c.Name, *c.Capacity)
		} else {
			fmt.Printf("%-12s default (%d)\n", c.Name, cfg.Bus.DefaultCapacity)
		}
	}
	fmt.Printf("\n%-12s %-10s %-10s %s\n", "Fiber", "Role", "Channel", "Count")
	for _, f := range scn.Fibers {
		ch := f.Channel
		if ch == "" {
			ch = "*"
		}
		fmt.Printf("%-12s %-10s %-10s %d\n", f.Name, f.Role, ch, f.Count)
	}
	return nil
}
