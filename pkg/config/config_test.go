package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}

	if cfg.Streams.System.Name != "SystemLog" {
		t.Errorf("System stream = %q", cfg.Streams.System.Name)
	}
	if cfg.Timeline.MinGap != DefaultMinGap || cfg.Timeline.MaxGap != DefaultMaxGap {
		t.Errorf("Gap bounds = %s/%s", cfg.Timeline.MinGap, cfg.Timeline.MaxGap)
	}
	if cfg.Timeline.CompiledCorrection() == nil {
		t.Error("Correction pattern not compiled")
	}
	if len(cfg.Timeline.ResetDates()) != 3 {
		t.Errorf("Expected 3 reset dates, got %d", len(cfg.Timeline.ResetDates()))
	}
	if len(cfg.Signatures) == 0 {
		t.Error("Expected built-in signatures")
	}
	for _, sig := range cfg.Signatures {
		if sig.CompiledPattern() == nil {
			t.Errorf("Signature %s pattern not compiled", sig.Name)
		}
	}
}

func TestLoad_YAMLOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
timeline:
  min_gap: 1h
  max_gap: 240h
  reset_timestamps: ["Jan 1"]

signatures:
  - name: custom
    pattern: 'CUSTOM ERROR'
    threshold: 3

analysis:
  parallelism: 2
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(context.Background(), configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Timeline.MinGap != time.Hour {
		t.Errorf("MinGap = %s, want 1h", cfg.Timeline.MinGap)
	}
	if len(cfg.Timeline.ResetDates()) != 1 {
		t.Errorf("Expected 1 reset date, got %d", len(cfg.Timeline.ResetDates()))
	}
	if len(cfg.Signatures) != 1 || cfg.Signatures[0].Name != "custom" {
		t.Errorf("Signatures = %+v", cfg.Signatures)
	}
	if cfg.Signatures[0].MaxExamples != DefaultMaxExamples {
		t.Errorf("MaxExamples default not applied: %d", cfg.Signatures[0].MaxExamples)
	}
	if cfg.Signatures[0].Severity != "warning" {
		t.Errorf("Severity default not applied: %q", cfg.Signatures[0].Severity)
	}
	if cfg.Analysis.Parallelism != 2 {
		t.Errorf("Parallelism = %d", cfg.Analysis.Parallelism)
	}
	// Untouched sections keep their defaults.
	if cfg.Streams.System.Name != "SystemLog" {
		t.Errorf("System stream = %q", cfg.Streams.System.Name)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "invalid yaml",
			content: "timeline: [not a map",
			wantErr: "parsing config",
		},
		{
			name: "max gap below min gap",
			content: `
timeline:
  min_gap: 10h
  max_gap: 5h
`,
			wantErr: "max_gap",
		},
		{
			name: "long gap below min gap",
			content: `
timeline:
  min_gap: 4h
  long_gap: 3h
`,
			wantErr: "long_gap",
		},
		{
			name: "bad correction pattern",
			content: `
timeline:
  correction_pattern: '([unclosed'
`,
			wantErr: "correction_pattern",
		},
		{
			name: "correction pattern without captures",
			content: `
timeline:
  correction_pattern: 'Get RTC Info'
`,
			wantErr: "must capture",
		},
		{
			name: "bad reset timestamp",
			content: `
timeline:
  reset_timestamps: ["Foo 99"]
`,
			wantErr: "reset timestamp",
		},
		{
			name: "bad signature stream",
			content: `
signatures:
  - name: x
    stream: network
    pattern: 'y'
`,
			wantErr: "invalid stream",
		},
		{
			name: "signature without pattern",
			content: `
signatures:
  - name: x
`,
			wantErr: "pattern is required",
		},
		{
			name: "bad signature severity",
			content: `
signatures:
  - name: x
    pattern: 'y'
    severity: fatal
`,
			wantErr: "invalid severity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("Failed to write config: %v", err)
			}

			_, err := Load(context.Background(), configPath)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(context.Background(), "/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvParallelism, "16")
	t.Setenv(EnvDeviceTimeout, "90s")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.Parallelism != 16 {
		t.Errorf("Parallelism = %d, want 16", cfg.Analysis.Parallelism)
	}
	if cfg.Analysis.DeviceTimeout != 90*time.Second {
		t.Errorf("DeviceTimeout = %s, want 90s", cfg.Analysis.DeviceTimeout)
	}
}

func TestEnvironmentOverrides_Invalid(t *testing.T) {
	t.Setenv(EnvParallelism, "banana")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Analysis.Parallelism != DefaultParallelism {
		t.Errorf("Invalid env value must keep default, got %d", cfg.Analysis.Parallelism)
	}
}

func TestParseResetDate(t *testing.T) {
	rd, err := parseResetDate("Oct 12")
	if err != nil {
		t.Fatalf("parseResetDate failed: %v", err)
	}
	if rd.Month != time.October || rd.Day != 12 {
		t.Errorf("Parsed %+v", rd)
	}
}
