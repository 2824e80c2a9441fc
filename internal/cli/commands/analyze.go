package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"chargescan/internal/history"
	"chargescan/pkg/analyzer"
	"chargescan/pkg/config"
	"chargescan/pkg/output"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// AnalyzeOptions holds command-line options for the analyze command.
type AnalyzeOptions struct {
	Config    string
	Output    string
	HistoryDB string
	Verbose   bool
	Quiet     bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand() *cobra.Command {
	opts := &AnalyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <bundle-dir>",
		Short: "Analyze extracted log bundles",
		Long: `Analyze every extracted device bundle under the given directory, or the
directory itself if it is a single bundle.

For each device, reconstructs the log timeline, classifies outages, scans
for known fault signatures, and tracks firmware versions.

Exit codes:
  0 - All devices clean
  1 - Issues detected on at least one device
  2 - Configuration or runtime error`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, opts)
		},
	}

	// Flags
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file (defaults apply when omitted)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json|csv)")
	cmd.Flags().StringVar(&opts.HistoryDB, "history-db", "", "SQLite database to record runs in")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show evidence lines and parse statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, opts *AnalyzeOptions) error {
	root := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger(opts.Verbose, opts.Quiet)

	cfg, err := config.Load(ctx, opts.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Debug("Configuration loaded",
		logger.Args("signatures", len(cfg.Signatures), "parallelism", cfg.Analysis.Parallelism))

	report, err := analyzer.New(cfg).Run(ctx, root)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	report.Metadata.ConfigFile = opts.Config

	if report.Summary.Devices == 0 {
		return fmt.Errorf("no device bundles found under %s", root)
	}

	logger.Info("Analysis complete",
		logger.Args(
			"devices", report.Summary.Devices,
			"issues", report.Summary.DevicesIssue,
			"events", report.Summary.TotalEvents,
			"duration", report.Metadata.Duration.Round(time.Millisecond),
		))

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	// Record the run; a broken history database warns but never fails
	// the analysis.
	if opts.HistoryDB != "" {
		if err := saveHistory(opts.HistoryDB, report); err != nil {
			logger.Warn("Failed to record run in history database", logger.Args("error", err))
		}
	}

	if report.HasIssues() {
		ExitCode = 1
	}

	return nil
}

func saveHistory(path string, report *output.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveReport(report)
}

// newLogger builds the stderr progress logger so report output on stdout
// stays machine-readable.
func newLogger(verbose, quiet bool) *pterm.Logger {
	level := pterm.LogLevelInfo
	if verbose {
		level = pterm.LogLevelDebug
	}
	if quiet {
		level = pterm.LogLevelWarn
	}
	logger := pterm.DefaultLogger.WithLevel(level).WithWriter(os.Stderr)
	return logger
}
