// Package cli provides the command-line interface for ChargeScan.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chargescan/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "chargescan",
		Short: "Analyze EV charger log bundles for outages and faults",
		Long: `ChargeScan reconstructs a reliable timeline from charger log bundles and
classifies what happened to each device.

Charger logs carry year-less timestamps and the controller clock resets to a
firmware default date on every power-on. ChargeScan re-anchors the timeline
using clock correction messages, detects logging gaps, and classifies each
one:

  - Power loss (unexpected outage)
  - Firmware update (controlled restart)
  - System log failure (device was up but stopped logging)

It also scans for known fault signatures and tracks firmware versions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewAnalyzeCommand())
	rootCmd.AddCommand(commands.NewTimelineCommand())
	rootCmd.AddCommand(commands.NewExtractCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
