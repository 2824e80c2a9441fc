// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"chargescan/pkg/detector"
	"chargescan/pkg/parser"
	"chargescan/pkg/timeline"
)

// Status summarizes the health of one analyzed device.
type Status string

const (
	// StatusClean means no events or breached signatures were found.
	StatusClean Status = "clean"

	// StatusWarning means only unclassified gaps were found.
	StatusWarning Status = "warning"

	// StatusIssue means outages, log failures, or breached signatures were found.
	StatusIssue Status = "issue"

	// StatusError means the device could not be analyzed.
	StatusError Status = "error"
)

// StreamStats carries parse statistics for one log stream.
type StreamStats struct {
	Stream    string `json:"stream"`
	Files     int    `json:"files"`
	Lines     int    `json:"lines"`
	Parsed    int    `json:"parsed"`
	Skipped   int    `json:"skipped"`
	Chronicle int    `json:"chronicle"`
}

// DeviceReport is the analysis result for a single device bundle.
type DeviceReport struct {
	Bundle   string                `json:"bundle"`
	Serial   string                `json:"serial,omitempty"`
	Status   Status                `json:"status"`
	Events   []timeline.Event      `json:"events,omitempty"`
	Findings []detector.Finding    `json:"findings,omitempty"`
	Firmware detector.FirmwareInfo `json:"firmware"`
	Streams  []StreamStats         `json:"streams,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// BreachedFindings returns the signature findings at or above threshold.
func (d *DeviceReport) BreachedFindings() []detector.Finding {
	var out []detector.Finding
	for _, f := range d.Findings {
		if f.Breached() {
			out = append(out, f)
		}
	}
	return out
}

// Resolve derives the device status from its events and findings.
func (d *DeviceReport) Resolve() {
	if d.Error != "" {
		d.Status = StatusError
		return
	}

	d.Status = StatusClean
	for _, ev := range d.Events {
		switch ev.Kind {
		case timeline.KindPowerLoss, timeline.KindSystemLogFailure:
			d.Status = StatusIssue
		case timeline.KindUnknown:
			if d.Status == StatusClean {
				d.Status = StatusWarning
			}
		}
		// Firmware updates are routine and never flag a device.
	}
	if len(d.BreachedFindings()) > 0 {
		d.Status = StatusIssue
	}
}

// Summary provides aggregate statistics across all devices.
type Summary struct {
	Devices      int `json:"devices"`
	DevicesClean int `json:"devices_clean"`
	DevicesIssue int `json:"devices_issue"`
	TotalEvents  int `json:"total_events"`
	TotalErrors  int `json:"total_errors"`
}

// Metadata provides context about the analysis run.
type Metadata struct {
	Root       string        `json:"root"`
	ConfigFile string        `json:"config_file,omitempty"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Duration   time.Duration `json:"duration"`
}

// Report is the complete analysis output.
type Report struct {
	Devices  []*DeviceReport `json:"devices"`
	Summary  Summary         `json:"summary"`
	Metadata Metadata        `json:"metadata"`
}

// NewReport builds a Report from per-device results, resolving statuses
// and aggregate counts.
func NewReport(devices []*DeviceReport, meta Metadata) *Report {
	r := &Report{Devices: devices, Metadata: meta}
	r.Summary.Devices = len(devices)
	for _, d := range devices {
		d.Resolve()
		r.Summary.TotalEvents += len(d.Events)
		switch d.Status {
		case StatusClean:
			r.Summary.DevicesClean++
		case StatusError:
			r.Summary.TotalErrors++
		default:
			r.Summary.DevicesIssue++
		}
	}
	return r
}

// HasIssues reports whether any device needs attention.
func (r *Report) HasIssues() bool {
	return r.Summary.DevicesIssue > 0 || r.Summary.TotalErrors > 0
}

// StatsFromStream converts parser stream stats, recording how many
// entries survived into the ordered chronology.
func StatsFromStream(s *parser.Stream, chronicle int) StreamStats {
	return StreamStats{
		Stream:    s.Name,
		Files:     len(s.Files),
		Lines:     s.Stats.Lines,
		Parsed:    s.Stats.Parsed,
		Skipped:   s.Stats.Skipped,
		Chronicle: chronicle,
	}
}
