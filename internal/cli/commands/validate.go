package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"chargescan/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a ChargeScan configuration file without running analysis.

Checks:
  - YAML syntax
  - Regex pattern validity (correction pattern, signatures)
  - Reset timestamp date formats
  - Threshold consistency (min/max gap, long gap)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  System stream:   %s (dirs: %v)\n", cfg.Streams.System.Name, cfg.Streams.System.Dirs)
	fmt.Printf("  Protocol stream: %s\n", cfg.Streams.Protocol.Name)
	fmt.Printf("  Gap window:      %s to %s\n", cfg.Timeline.MinGap, cfg.Timeline.MaxGap)
	fmt.Printf("  Reset dates:     %d\n", len(cfg.Timeline.ResetDates()))
	fmt.Printf("  Signatures:      %d\n", len(cfg.Signatures))

	if len(cfg.Signatures) > 0 {
		fmt.Printf("\nSignatures:\n")
		for i, sig := range cfg.Signatures {
			fmt.Printf("  %d. [%s] %s (threshold %d, %s)\n", i+1, sig.Stream, sig.Name, sig.Threshold, sig.Severity)
			if sig.Description != "" {
				fmt.Printf("     %s\n", sig.Description)
			}
		}
	}

	return nil
}
