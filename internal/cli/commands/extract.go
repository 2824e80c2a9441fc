package commands

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chargescan/pkg/bundle"
)

// ExtractOptions holds command-line options for the extract command.
type ExtractOptions struct {
	Archive bool
	Quiet   bool
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <zip-dir>",
		Short: "Extract password-protected device archives",
		Long: `Extract every device log archive in the given directory.

Passwords are derived from the device serial embedded in each archive
name. Archives whose name carries no serial are skipped and reported.

Exit codes:
  0 - All archives extracted
  1 - One or more archives failed
  2 - Runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "Move extracted zips into the '"+bundle.ArchiveDir+"' folder")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no per-archive details")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	dir := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(false, opts.Quiet)

	results, err := bundle.ExtractAll(ctx, dir)
	if err != nil {
		return fmt.Errorf("extracting archives: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no zip archives found in %s", dir)
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Warn("Extraction failed",
				logger.Args("archive", res.Archive, "error", res.Err))
			continue
		}

		logger.Info("Extracted",
			logger.Args("archive", res.Archive, "serial", res.Serial, "dest", res.Dest))

		if opts.Archive {
			if err := bundle.ArchiveProcessed(res.Archive); err != nil {
				logger.Warn("Could not move processed archive",
					logger.Args("archive", res.Archive, "error", err))
			}
		}
	}

	pterm.Printf("Extracted %d of %d archive(s)\n", len(results)-failed, len(results))

	if failed > 0 {
		ExitCode = 1
	}
	return nil
}
