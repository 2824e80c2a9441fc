package output

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSVFormatter emits one row per timeline event plus one row per breached
// signature, suitable for spreadsheet triage across a fleet.
type CSVFormatter struct{}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Name returns the format name.
func (f *CSVFormatter) Name() string {
	return "csv"
}

var csvHeader = []string{
	"serial", "bundle", "status", "type", "detail",
	"start", "end", "duration", "count", "threshold", "severity",
}

// Format renders the report as CSV.
func (f *CSVFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, dev := range report.Devices {
		if err := f.writeDevice(cw, dev); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func (f *CSVFormatter) writeDevice(cw *csv.Writer, dev *DeviceReport) error {
	if dev.Error != "" {
		return cw.Write([]string{
			dev.Serial, dev.Bundle, string(dev.Status),
			"error", dev.Error, "", "", "", "", "", "",
		})
	}

	for _, ev := range dev.Events {
		row := []string{
			dev.Serial, dev.Bundle, string(dev.Status),
			string(ev.Kind), strings.Join(ev.Evidence, "; "),
			ev.Start.Format(time.RFC3339),
			ev.End.Format(time.RFC3339),
			ev.Duration.Round(time.Second).String(),
			"", "", "",
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, fd := range dev.BreachedFindings() {
		row := []string{
			dev.Serial, dev.Bundle, string(dev.Status),
			"signature:" + fd.Name, fd.Description,
			"", "", "",
			strconv.Itoa(fd.Count), strconv.Itoa(fd.Threshold), fd.Severity,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	if len(dev.Events) == 0 && len(dev.BreachedFindings()) == 0 {
		return cw.Write([]string{
			dev.Serial, dev.Bundle, string(dev.Status),
			"none", "", "", "", "", "", "", "",
		})
	}
	return nil
}
