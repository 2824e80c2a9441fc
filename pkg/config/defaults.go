package config

import (
	"os"
	"strconv"
	"time"
)

// Default values for configuration.
const (
	DefaultMinGap               = 2 * time.Hour
	DefaultMaxGap               = 30 * 24 * time.Hour
	DefaultControlledRestartMax = 6 * time.Minute
	DefaultLongGap              = 24 * time.Hour
	DefaultResetLookaheadLines  = 20
	DefaultCorrectionPattern    = `Get RTC Info:\s*(\d{4})\.(\d{2})\.(\d{2})-(\d{2}):(\d{2}):(\d{2})`
	DefaultCorrectionYearMin    = 2020
	DefaultCorrectionYearMax    = 2030
	DefaultMaxExamples          = 5
	DefaultParallelism          = 4
	DefaultDeviceTimeout        = 5 * time.Minute
)

// Environment variable names.
const (
	EnvParallelism   = "CHARGESCAN_PARALLELISM"
	EnvDeviceTimeout = "CHARGESCAN_DEVICE_TIMEOUT"
)

// DefaultConfig returns a configuration with sensible defaults for Delta AC
// MAX style bundles. All values can be overridden from YAML.
func DefaultConfig() *Config {
	return &Config{
		Streams: StreamsConfig{
			System: StreamConfig{
				Name: "SystemLog",
				Dirs: []string{"Storage/SystemLog", "SystemLog", "."},
			},
			Protocol: StreamConfig{
				Name: "OCPP16J_Log.csv",
				Dirs: []string{"Storage/SystemLog", "SystemLog", "."},
			},
		},
		Timeline: TimelineConfig{
			MinGap:               DefaultMinGap,
			MaxGap:               DefaultMaxGap,
			ControlledRestartMax: DefaultControlledRestartMax,
			LongGap:              DefaultLongGap,
			ResetLookaheadLines:  DefaultResetLookaheadLines,
			// Firmware power-on RTC defaults observed in the field. The
			// clock boots near midnight on one of these dates until the
			// first sync succeeds.
			ResetTimestamps:   []string{"Jan 1", "Jul 2", "Oct 12"},
			CorrectionPattern: DefaultCorrectionPattern,
			CorrectionYearMin: DefaultCorrectionYearMin,
			CorrectionYearMax: DefaultCorrectionYearMax,
			RestartMarkers: []string{
				"Update system done, reboot system now",
				"reboot system now",
			},
		},
		Signatures: DefaultSignatures(),
		Analysis: AnalysisConfig{
			Parallelism:   DefaultParallelism,
			DeviceTimeout: DefaultDeviceTimeout,
		},
	}
}

// DefaultSignatures returns the built-in fault-signature rules.
func DefaultSignatures() []SignatureConfig {
	return []SignatureConfig{
		{
			Name:        "rfid-module-failure",
			Stream:      "system",
			Pattern:     `RYRR20I.*(?i:fail|time out)`,
			Threshold:   100,
			Severity:    "critical",
			Description: "Persistent RFID reader module errors indicate failing hardware",
		},
		{
			Name:        "load-mgmt-comm-errors",
			Stream:      "system",
			Pattern:     `Load_Mgmt_Comm.*(?i:timeout|time out|fail|error)`,
			Threshold:   5,
			Severity:    "warning",
			Description: "Load management Modbus communication failures",
		},
		{
			Name:        "backend-disconnects",
			Stream:      "system",
			Pattern:     `Backend connection fail`,
			Threshold:   10,
			Severity:    "warning",
			Description: "Backend connection drops",
		},
		{
			Name:        "mcu-command-failures",
			Stream:      "system",
			Pattern:     `Send Command 0x[0-9A-F]+ to MCU False`,
			Threshold:   1,
			Severity:    "critical",
			Description: "Controller to MCU command failures",
		},
		{
			Name:        "ng-flags",
			Stream:      "system",
			Pattern:     `\bNG\b|result:\s*NG|\[NG\]`,
			Threshold:   50,
			Severity:    "warning",
			Description: "Message processing NG flags",
		},
		{
			Name:        "charging-profile-timeouts",
			Stream:      "protocol",
			Pattern:     `SetChargingProfileConf process time out`,
			Threshold:   1,
			Severity:    "critical",
			Description: "SetChargingProfile confirmations timing out (known firmware bug)",
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvParallelism); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Analysis.Parallelism = n
		}
	}
	if v := os.Getenv(EnvDeviceTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			c.Analysis.DeviceTimeout = d
		}
	}
}
