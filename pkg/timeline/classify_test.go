package timeline

import (
	"strings"
	"testing"
	"time"

	"chargescan/pkg/parser"
)

func mkGap(start, end parser.Entry) Gap {
	return Gap{
		StreamName: "SystemLog",
		Start:      start,
		End:        end,
		Duration:   end.Corrected.Sub(start.Corrected),
	}
}

func TestClassifyGap(t *testing.T) {
	engine := testEngine(t)
	base := ts(2025, time.March, 10, 12, 0, 0)

	activity := func(w MonthWindow) CorroborationResult {
		return CorroborationResult{ActivityFound: true, SampleCount: 42, Window: w}
	}
	silence := func(w MonthWindow) CorroborationResult {
		return CorroborationResult{Window: w}
	}

	tests := []struct {
		name         string
		start        parser.Entry
		end          parser.Entry
		corroborate  CorroborateFunc
		wantKind     EventKind
		wantEvidence string
	}{
		{
			name:         "controlled restart",
			start:        parser.Entry{Raw: "marker", Body: "Update system done, reboot system now", Corrected: base},
			end:          parser.Entry{Raw: "up", Corrected: base.Add(5 * time.Minute)},
			wantKind:     KindFirmwareUpdate,
			wantEvidence: "controlled update marker",
		},
		{
			name:         "reset at gap end",
			start:        parser.Entry{Raw: "last", Corrected: base},
			end:          parser.Entry{Raw: "CSU Boot-up!!", Corrected: base.Add(3 * time.Hour), Reset: true},
			wantKind:     KindPowerLoss,
			wantEvidence: "power-on default clock",
		},
		{
			name:         "long gap with protocol activity",
			start:        parser.Entry{Raw: "last", Corrected: base},
			end:          parser.Entry{Raw: "up", Corrected: base.Add(48 * time.Hour)},
			corroborate:  activity,
			wantKind:     KindSystemLogFailure,
			wantEvidence: "42 entries",
		},
		{
			name:         "long gap without protocol activity",
			start:        parser.Entry{Raw: "last", Corrected: base},
			end:          parser.Entry{Raw: "up", Corrected: base.Add(48 * time.Hour)},
			corroborate:  silence,
			wantKind:     KindPowerLoss,
			wantEvidence: "no protocol stream activity",
		},
		{
			name:         "long gap with nil corroborator defaults to power loss",
			start:        parser.Entry{Raw: "last", Corrected: base},
			end:          parser.Entry{Raw: "up", Corrected: base.Add(48 * time.Hour)},
			wantKind:     KindPowerLoss,
			wantEvidence: "no protocol stream activity",
		},
		{
			name:         "short unexplained gap",
			start:        parser.Entry{Raw: "last", Corrected: base},
			end:          parser.Entry{Raw: "up", Corrected: base.Add(3 * time.Hour)},
			wantKind:     KindUnknown,
			wantEvidence: "cause undetermined",
		},
		{
			name:         "restart marker but gap too long for controlled restart",
			start:        parser.Entry{Raw: "marker", Body: "reboot system now", Corrected: base},
			end:          parser.Entry{Raw: "up", Corrected: base.Add(3 * time.Hour)},
			wantKind:     KindUnknown,
			wantEvidence: "not short enough",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mkGap(tt.start, tt.end)
			restart := FindRestartMark(g, engine.cfg.RestartMarkers)

			ev := engine.ClassifyGap(g, restart, tt.corroborate)
			if ev.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", ev.Kind, tt.wantKind)
			}
			if ev.Duration != g.Duration {
				t.Errorf("Duration = %s, want %s", ev.Duration, g.Duration)
			}
			if len(ev.Evidence) < 2 {
				t.Fatalf("Expected at least 2 evidence lines, got %d", len(ev.Evidence))
			}
			joined := strings.Join(ev.Evidence, "\n")
			if !strings.Contains(joined, "silence of") {
				t.Error("Evidence must describe the silence")
			}
			if !strings.Contains(joined, tt.wantEvidence) {
				t.Errorf("Evidence missing %q:\n%s", tt.wantEvidence, joined)
			}
		})
	}
}

func TestClassifyGap_Idempotent(t *testing.T) {
	engine := testEngine(t)
	base := ts(2025, time.March, 10, 12, 0, 0)
	g := mkGap(
		parser.Entry{Raw: "last", Corrected: base},
		parser.Entry{Raw: "up", Corrected: base.Add(48 * time.Hour)},
	)

	calls := 0
	counting := func(w MonthWindow) CorroborationResult {
		calls++
		return CorroborationResult{ActivityFound: true, SampleCount: 1, Window: w}
	}

	first := engine.ClassifyGap(g, RestartMark{}, counting)
	second := engine.ClassifyGap(g, RestartMark{}, counting)

	if first.Kind != second.Kind || len(first.Evidence) != len(second.Evidence) {
		t.Error("Classification must be deterministic")
	}
	if calls != 2 {
		t.Errorf("Corroborator called %d times, want once per classification", calls)
	}
}

func TestFindRestartMark(t *testing.T) {
	markers := []string{"Update system done, reboot system now", "reboot system now"}

	tests := []struct {
		body string
		want bool
	}{
		{"Update system done, reboot system now", true},
		{"prefix reboot system now suffix", true},
		{"Charging session active", false},
		{"", false},
	}

	for _, tt := range tests {
		g := Gap{Start: parser.Entry{Body: tt.body}}
		if got := FindRestartMark(g, markers).Found; got != tt.want {
			t.Errorf("FindRestartMark(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}

func TestEvents_EndToEnd(t *testing.T) {
	engine := testEngine(t)
	s := mkStream(t, []string{
		"Mar 10 02:00:00 Get RTC Info: 2025.03.10-02:00:00",
		"Mar 10 02:00:05 last message before outage",
		"Jan  1 00:00:19 CSU Boot-up!!",
		"Mar 10 09:30:00 Get RTC Info: 2025.03.10-09:30:00",
	})

	ordered := engine.Reconstruct(s)
	events := engine.Events("SystemLog", ordered, nil)

	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].Kind != KindPowerLoss {
		t.Errorf("Kind = %s, want %s", events[0].Kind, KindPowerLoss)
	}
	wantDur := 7*time.Hour + 29*time.Minute + 55*time.Second
	if events[0].Duration != wantDur {
		t.Errorf("Duration = %s, want %s", events[0].Duration, wantDur)
	}
}

func TestEvents_ControlledRestart(t *testing.T) {
	engine := testEngine(t)
	s := mkStream(t, []string{
		"Mar 10 02:00:00 Get RTC Info: 2025.03.10-02:00:00",
		"Mar 10 02:00:05 Charging session active",
		"Mar 10 02:30:00 Update system done, reboot system now",
		"Mar 10 02:31:12 Get RTC Info: 2025.03.10-02:31:12",
		"Mar 10 02:31:14 Ready",
	})

	ordered := engine.Reconstruct(s)
	events := engine.Events("SystemLog", ordered, nil)

	// The 72-second silence is far below the gap threshold, so only the
	// restart sweep can surface it.
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d: %+v", len(events), events)
	}
	ev := events[0]
	if ev.Kind != KindFirmwareUpdate {
		t.Errorf("Kind = %s, want %s", ev.Kind, KindFirmwareUpdate)
	}
	if ev.Duration != 72*time.Second {
		t.Errorf("Duration = %s, want 72s", ev.Duration)
	}
	if !ev.Start.Equal(ts(2025, time.March, 10, 2, 30, 0)) {
		t.Errorf("Start = %s", ev.Start)
	}
}

func TestEvents_RestartBeforeLongSilenceIsNotAnUpdate(t *testing.T) {
	engine := testEngine(t)
	s := mkStream(t, []string{
		"Mar 10 02:00:00 Get RTC Info: 2025.03.10-02:00:00",
		"Mar 10 02:30:00 Update system done, reboot system now",
		"Mar 10 06:00:00 Get RTC Info: 2025.03.10-06:00:00",
	})

	ordered := engine.Reconstruct(s)
	events := engine.Events("SystemLog", ordered, nil)

	// A marker followed by hours of silence goes through gap
	// classification, which refuses the firmware-update label.
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d: %+v", len(events), events)
	}
	if events[0].Kind == KindFirmwareUpdate {
		t.Errorf("Kind = %s, a 3h30m outage is not a controlled restart", events[0].Kind)
	}
}

func TestTruncate(t *testing.T) {
	short := "short line"
	if got := truncate(short); got != short {
		t.Errorf("truncate(%q) = %q", short, got)
	}
	long := strings.Repeat("x", 200)
	got := truncate(long)
	if len(got) != 123 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate of long string = %d chars", len(got))
	}
}
