// Package cmd implements the fiberbus CLI using cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"
const logo = "🚌"

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "fiberbus",
	Short: logo + " fiberbus — bounded message bus for cooperative fibers",
	Long:  logo + " fiberbus — a bounded, multi-channel message bus for cooperatively scheduled fibers",
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}
