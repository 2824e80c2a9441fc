package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"chargescan/pkg/bundle"
	"chargescan/pkg/config"
	"chargescan/pkg/parser"
	"chargescan/pkg/timeline"
)

// TimelineOptions holds command-line options for the timeline command.
type TimelineOptions struct {
	Config string
	Output string
	Gaps   bool
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand() *cobra.Command {
	opts := &TimelineOptions{}

	cmd := &cobra.Command{
		Use:   "timeline <bundle-dir>",
		Short: "Show the reconstructed timeline for one bundle",
		Long: `Reconstruct and print the corrected event timeline of a single device
bundle, without signature scanning.

Useful for verifying how year inference and clock corrections were applied
before trusting the analyze output for a device.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Configuration file (defaults apply when omitted)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVar(&opts.Gaps, "gaps", false, "Print detected gaps instead of classified events")

	return cmd
}

func runTimeline(cmd *cobra.Command, args []string, opts *TimelineOptions) error {
	dir := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(ctx, opts.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	b, ok := bundle.FromDir(dir)
	if !ok {
		// Accept any directory; the serial is only cosmetic here.
		b = bundle.Bundle{Dir: dir}
	}

	engine := timeline.NewEngine(&cfg.Timeline)

	system, err := parser.LoadStream(ctx, b.Dir, cfg.Streams.System.Name, cfg.Streams.System.Dirs)
	if err != nil {
		return fmt.Errorf("loading %s: %w", cfg.Streams.System.Name, err)
	}
	if system.Empty() {
		return fmt.Errorf("no %s entries found under %s", cfg.Streams.System.Name, dir)
	}

	ordered := engine.Reconstruct(system)
	if len(ordered) == 0 {
		return fmt.Errorf("no entries in %s could be placed on the timeline (no clock corrections found)", cfg.Streams.System.Name)
	}

	if opts.Gaps {
		return printGaps(engine.DetectGaps(system.Name, ordered), opts.Output)
	}

	corr := timeline.NewCorroborator(engine, b.Dir, cfg.Streams.Protocol)
	events := engine.Events(system.Name, ordered, corr.Func(ctx))

	return printEvents(events, ordered, system, opts.Output)
}

func printGaps(gaps []timeline.Gap, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(gaps)
	}

	if len(gaps) == 0 {
		fmt.Println("No gaps detected")
		return nil
	}
	for _, g := range gaps {
		fmt.Printf("%s  %s -> %s\n",
			g.Duration.Round(time.Second),
			g.Start.Corrected.Format("2006-01-02 15:04:05"),
			g.End.Corrected.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func printEvents(events []timeline.Event, ordered []parser.Entry, system *parser.Stream, format string) error {
	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	fmt.Printf("Timeline: %d entries across %d file(s), %s to %s\n",
		len(ordered), len(system.Files),
		ordered[0].Corrected.Format("2006-01-02 15:04:05"),
		ordered[len(ordered)-1].Corrected.Format("2006-01-02 15:04:05"))

	if len(events) == 0 {
		fmt.Println("No events detected")
		return nil
	}
	for _, ev := range events {
		fmt.Printf("\n[%s] %s, from %s to %s\n",
			ev.Kind, ev.Duration.Round(time.Second),
			ev.Start.Format("2006-01-02 15:04:05"),
			ev.End.Format("2006-01-02 15:04:05"))
		for _, line := range ev.Evidence {
			fmt.Printf("  %s\n", line)
		}
	}
	return nil
}
