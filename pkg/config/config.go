package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads and validates a configuration file. An empty path returns the
// validated default configuration.
func Load(_ context.Context, path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors, compiles regex patterns and
// parses reset dates.
func Validate(cfg *Config) error {
	if err := validateStream(&cfg.Streams.System); err != nil {
		return fmt.Errorf("streams.system: %w", err)
	}
	if err := validateStream(&cfg.Streams.Protocol); err != nil {
		return fmt.Errorf("streams.protocol: %w", err)
	}

	if err := validateTimeline(&cfg.Timeline); err != nil {
		return fmt.Errorf("timeline: %w", err)
	}

	for i := range cfg.Signatures {
		if err := validateSignature(&cfg.Signatures[i]); err != nil {
			return fmt.Errorf("signatures[%d] (%s): %w", i, cfg.Signatures[i].Name, err)
		}
	}

	if cfg.Analysis.Parallelism < 1 {
		cfg.Analysis.Parallelism = DefaultParallelism
	}
	if cfg.Analysis.DeviceTimeout < 0 {
		return errors.New("analysis: device_timeout must not be negative")
	}

	return nil
}

func validateStream(sc *StreamConfig) error {
	if sc.Name == "" {
		return errors.New("name is required")
	}
	if len(sc.Dirs) == 0 {
		sc.Dirs = []string{"."}
	}
	return nil
}

func validateTimeline(tc *TimelineConfig) error {
	if tc.MinGap <= 0 {
		tc.MinGap = DefaultMinGap
	}
	if tc.MaxGap <= 0 {
		tc.MaxGap = DefaultMaxGap
	}
	if tc.MaxGap <= tc.MinGap {
		return fmt.Errorf("max_gap (%s) must be greater than min_gap (%s)", tc.MaxGap, tc.MinGap)
	}
	if tc.ControlledRestartMax <= 0 {
		tc.ControlledRestartMax = DefaultControlledRestartMax
	}
	if tc.LongGap <= 0 {
		tc.LongGap = DefaultLongGap
	}
	if tc.LongGap < tc.MinGap {
		return fmt.Errorf("long_gap (%s) must not be below min_gap (%s)", tc.LongGap, tc.MinGap)
	}
	if tc.ResetLookaheadLines <= 0 {
		tc.ResetLookaheadLines = DefaultResetLookaheadLines
	}

	if tc.CorrectionPattern == "" {
		tc.CorrectionPattern = DefaultCorrectionPattern
	}
	re, err := regexp.Compile(tc.CorrectionPattern)
	if err != nil {
		return fmt.Errorf("invalid correction_pattern: %w", err)
	}
	if re.NumSubexp() < 6 {
		return errors.New("correction_pattern must capture year, month, day, hour, minute, second")
	}
	tc.compiledCorrection = re

	if tc.CorrectionYearMin <= 0 {
		tc.CorrectionYearMin = DefaultCorrectionYearMin
	}
	if tc.CorrectionYearMax <= 0 {
		tc.CorrectionYearMax = DefaultCorrectionYearMax
	}
	if tc.CorrectionYearMax < tc.CorrectionYearMin {
		return errors.New("correction_year_max must not be below correction_year_min")
	}

	if len(tc.ResetTimestamps) == 0 {
		return errors.New("at least one reset timestamp is required")
	}
	tc.resetDates = tc.resetDates[:0]
	for _, s := range tc.ResetTimestamps {
		rd, err := parseResetDate(s)
		if err != nil {
			return fmt.Errorf("invalid reset timestamp %q: %w", s, err)
		}
		tc.resetDates = append(tc.resetDates, rd)
	}

	return nil
}

// parseResetDate parses a "Jan 2" month-day string.
func parseResetDate(s string) (ResetDate, error) {
	t, err := time.Parse("Jan 2", s)
	if err != nil {
		return ResetDate{}, err
	}
	return ResetDate{Month: t.Month(), Day: t.Day()}, nil
}

func validateSignature(sig *SignatureConfig) error {
	if sig.Name == "" {
		return errors.New("name is required")
	}

	switch sig.Stream {
	case "system", "protocol":
	case "":
		sig.Stream = "system"
	default:
		return fmt.Errorf("invalid stream %q (must be system or protocol)", sig.Stream)
	}

	if sig.Pattern == "" {
		return errors.New("pattern is required")
	}
	re, err := regexp.Compile(sig.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern: %w", err)
	}
	sig.compiledPattern = re

	if sig.Threshold < 0 {
		return errors.New("threshold must not be negative")
	}
	switch sig.Severity {
	case "warning", "critical":
	case "":
		sig.Severity = "warning"
	default:
		return fmt.Errorf("invalid severity %q (must be warning or critical)", sig.Severity)
	}
	if sig.MaxExamples <= 0 {
		sig.MaxExamples = DefaultMaxExamples
	}

	return nil
}
