// Package config provides configuration loading and validation for chargescan.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Streams    StreamsConfig     `yaml:"streams"`
	Timeline   TimelineConfig    `yaml:"timeline"`
	Signatures []SignatureConfig `yaml:"signatures"`
	Analysis   AnalysisConfig    `yaml:"analysis"`
}

// StreamsConfig names the two logical log streams of a device bundle.
type StreamsConfig struct {
	// System is the primary controller log (gap detection runs here).
	System StreamConfig `yaml:"system"`

	// Protocol is the secondary protocol log used for corroboration.
	Protocol StreamConfig `yaml:"protocol"`
}

// StreamConfig locates one logical stream inside a bundle.
type StreamConfig struct {
	// Name is the live file name; rotations are Name.0, Name.1, ...
	Name string `yaml:"name"`

	// Dirs are candidate subdirectories tried in order when resolving the
	// stream inside a bundle. The first directory containing the live file
	// or any rotation wins.
	Dirs []string `yaml:"dirs"`
}

// TimelineConfig holds the tunables of the timeline reconstruction engine.
// The duration thresholds are empirically tuned from field data, not
// protocol-mandated; changing them does not affect correctness guarantees.
type TimelineConfig struct {
	// MinGap is the smallest silence reported as a gap.
	MinGap time.Duration `yaml:"min_gap"`

	// MaxGap is the largest silence reported as a gap. Larger deltas are
	// treated as residual year-inference error and discarded.
	MaxGap time.Duration `yaml:"max_gap"`

	// ControlledRestartMax is the longest outage still attributable to a
	// controlled firmware-update reboot.
	ControlledRestartMax time.Duration `yaml:"controlled_restart_max"`

	// LongGap is the duration above which the protocol stream is consulted
	// to distinguish power loss from a logging-subsystem failure.
	LongGap time.Duration `yaml:"long_gap"`

	// ResetLookaheadLines is how many entries past a clock-reset marker are
	// searched for a clock correction message.
	ResetLookaheadLines int `yaml:"reset_lookahead_lines"`

	// ResetTimestamps lists firmware power-on default dates as "Jan 2"
	// strings. An entry whose raw stamp matches one of these dates is a
	// reset marker.
	ResetTimestamps []string `yaml:"reset_timestamps"`

	// CorrectionPattern matches the clock correction message and must
	// capture year, month, day, hour, minute, second in that order.
	CorrectionPattern string `yaml:"correction_pattern"`

	// CorrectionYearMin/Max bound plausible correction years; a correction
	// outside the range means the RTC was not actually synced.
	CorrectionYearMin int `yaml:"correction_year_min"`
	CorrectionYearMax int `yaml:"correction_year_max"`

	// RestartMarkers are substrings that mark a controlled firmware or
	// image update reboot when found immediately before a gap.
	RestartMarkers []string `yaml:"restart_markers"`

	compiledCorrection *regexp.Regexp
	resetDates         []ResetDate
}

// ResetDate is a parsed firmware power-on default date.
type ResetDate struct {
	Month time.Month
	Day   int
}

// CompiledCorrection returns the pre-compiled correction pattern.
func (t *TimelineConfig) CompiledCorrection() *regexp.Regexp {
	return t.compiledCorrection
}

// ResetDates returns the parsed reset marker dates.
func (t *TimelineConfig) ResetDates() []ResetDate {
	return t.resetDates
}

// SignatureConfig defines one static fault-signature rule.
type SignatureConfig struct {
	Name string `yaml:"name"`

	// Stream selects which stream to scan: "system" or "protocol".
	Stream string `yaml:"stream"`

	// Pattern is the regex matched against each raw line.
	Pattern string `yaml:"pattern"`

	// Threshold is the match count at or above which the signature is
	// reported as an issue. Zero means any match is an issue.
	Threshold int `yaml:"threshold"`

	Description string `yaml:"description,omitempty"`

	// Severity labels breached findings in reports: "warning" or
	// "critical". Defaults to "warning".
	Severity string `yaml:"severity,omitempty"`

	// MaxExamples caps the sample lines retained for the report.
	MaxExamples int `yaml:"max_examples,omitempty"`

	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled signature pattern.
func (s *SignatureConfig) CompiledPattern() *regexp.Regexp {
	return s.compiledPattern
}

// AnalysisConfig holds batch execution settings.
type AnalysisConfig struct {
	// Parallelism is the number of device bundles analyzed concurrently.
	// Streams within one bundle are always processed sequentially.
	Parallelism int `yaml:"parallelism"`

	// DeviceTimeout bounds the analysis of a single bundle. Zero disables
	// the timeout.
	DeviceTimeout time.Duration `yaml:"device_timeout"`
}
