package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/fiberbus/fiberbus/internal/config"
	"github.com/fiberbus/fiberbus/internal/dependency"
	"github.com/fiberbus/fiberbus/internal/scenario"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run [scenario.yaml ...]",
	Short: "Run one or more scenarios on the bus",
	Long: `Run executes scenario scripts. Each scenario gets its own scheduler and
bus; several scenarios run in parallel, each on its own logical thread.
With no arguments the configured default scenario is run.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Config file path")
}

func runRun(_ *cobra.Command, args []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	paths := args
	if len(paths) == 0 {
		paths = []string{cfg.Scenario.Path}
	}

	reports := make([]*scenario.Report, len(paths))

	// One container per scenario: buses are single-logical-thread objects,
	// so parallelism happens across independent scheduler/bus pairs only.
	var g errgroup.Group
	for i, path := range paths {
		c, err := dependency.New(cfg, dependency.ScenarioPath(path))
		if err != nil {
			return err
		}
		i, path := i, path
		g.Go(func() error {
			if m := c.Monitor(); m != nil {
				m.Start()
				defer m.Stop()
			}
			rep, err := c.Runner().Run()
			reports[i] = rep
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}
	waitErr := g.Wait()

	for i, rep := range reports {
		if rep == nil {
			continue
		}
		printReport(paths[i], rep)
	}
	return waitErr
}

func printReport(path string, rep *scenario.Report) {
	fmt.Printf("\n%s %s\n", logo, path)
	fmt.Printf("  sent:        %d\n", rep.Sent)
	fmt.Printf("  received:    %d\n", rep.Received)
	fmt.Printf("  broadcasts:  %d\n", rep.Broadcasts)
	if rep.Interrupted > 0 {
		fmt.Printf("  interrupted: %d\n", rep.Interrupted)
	}
	if rep.Leftover > 0 {
		fmt.Printf("  leftover:    %d\n", rep.Leftover)
	}
}
