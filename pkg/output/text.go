package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"chargescan/pkg/detector"
	"chargescan/pkg/timeline"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "ChargeScan: %d devices analyzed, %d clean, %d with issues, %d errors\n",
		report.Summary.Devices,
		report.Summary.DevicesClean,
		report.Summary.DevicesIssue,
		report.Summary.TotalErrors)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== ChargeScan Analysis Report ===")
	fmt.Fprintln(w)

	for _, dev := range report.Devices {
		if err := f.formatDevice(dev, w); err != nil {
			return err
		}
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d devices analyzed, %d clean, %d with issues, %d errors, %d total events\n",
		report.Summary.Devices,
		report.Summary.DevicesClean,
		report.Summary.DevicesIssue,
		report.Summary.TotalErrors,
		report.Summary.TotalEvents)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatDevice(dev *DeviceReport, w io.Writer) error {
	fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(dev.Status)), dev.Bundle)

	if dev.Error != "" {
		fmt.Fprintf(w, "  Analysis failed: %s\n", dev.Error)
		fmt.Fprintln(w)
		return nil
	}

	if dev.Firmware.Current != "" {
		f.formatFirmware(&dev.Firmware, w)
	}

	if len(dev.Events) == 0 {
		fmt.Fprintln(w, "  No timeline events detected")
	}
	for i := range dev.Events {
		f.formatEvent(&dev.Events[i], w)
	}

	for i := range dev.Findings {
		f.formatFinding(&dev.Findings[i], w)
	}

	if f.opts.Verbose {
		for _, st := range dev.Streams {
			fmt.Fprintf(w, "  Stream %s: %d files, %d lines, %d parsed, %d skipped, %d in chronology\n",
				st.Stream, st.Files, st.Lines, st.Parsed, st.Skipped, st.Chronicle)
		}
	}

	fmt.Fprintln(w)
	return nil
}

func (f *TextFormatter) formatFirmware(fw *detector.FirmwareInfo, w io.Writer) {
	if fw.Previous != "" && fw.Previous != fw.Current {
		fmt.Fprintf(w, "  Firmware: %s (previously %s, %d update(s) seen)\n",
			fw.Current, fw.Previous, fw.UpdateCount)
		return
	}
	fmt.Fprintf(w, "  Firmware: %s\n", fw.Current)
}

func (f *TextFormatter) formatEvent(ev *timeline.Event, w io.Writer) {
	fmt.Fprintf(w, "  - %s: %s for %s, from %s to %s\n",
		kindLabel(ev.Kind),
		ev.Stream,
		ev.Duration.Round(1e9),
		ev.Start.Format("2006-01-02 15:04:05"),
		ev.End.Format("2006-01-02 15:04:05"))

	if f.opts.Verbose {
		for _, line := range ev.Evidence {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

func (f *TextFormatter) formatFinding(fd *detector.Finding, w io.Writer) {
	if !fd.Breached() {
		return
	}
	fmt.Fprintf(w, "  - SIGNATURE %s [%s]: %d occurrence(s), threshold %d\n",
		fd.Name, fd.Severity, fd.Count, fd.Threshold)
	if fd.Description != "" {
		fmt.Fprintf(w, "    %s\n", fd.Description)
	}
	if f.opts.Verbose {
		for _, ex := range fd.Examples {
			fmt.Fprintf(w, "    %s\n", ex)
		}
	}
}

func kindLabel(kind timeline.EventKind) string {
	switch kind {
	case timeline.KindPowerLoss:
		return "POWER LOSS"
	case timeline.KindFirmwareUpdate:
		return "FIRMWARE UPDATE"
	case timeline.KindSystemLogFailure:
		return "SYSTEM LOG FAILURE"
	default:
		return "UNKNOWN GAP"
	}
}
