package parser

import (
	"testing"
	"time"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		want     RawStamp
		wantBody string
		wantOK   bool
	}{
		{
			name:     "plain line",
			line:     "Mar 10 14:02:11 CSU Boot-up!!",
			want:     RawStamp{Month: time.March, Day: 10, Hour: 14, Minute: 2, Second: 11},
			wantBody: "CSU Boot-up!!",
			wantOK:   true,
		},
		{
			name:     "fractional seconds",
			line:     "Jan  1 00:00:19.123 Init RTC",
			want:     RawStamp{Month: time.January, Day: 1, Second: 19, Nanos: 123000000},
			wantBody: "Init RTC",
			wantOK:   true,
		},
		{
			name:     "space padded day",
			line:     "Jul  2 08:15:00 power on",
			want:     RawStamp{Month: time.July, Day: 2, Hour: 8, Minute: 15},
			wantBody: "power on",
			wantOK:   true,
		},
		{
			name:     "leading whitespace",
			line:     "  Dec 23 07:12:05 msg",
			want:     RawStamp{Month: time.December, Day: 23, Hour: 7, Minute: 12, Second: 5},
			wantBody: "msg",
			wantOK:   true,
		},
		{
			name:     "clock correction body",
			line:     "Mar 10 14:03:27 Get RTC Info: 2025.03.10-14:03:27",
			want:     RawStamp{Month: time.March, Day: 10, Hour: 14, Minute: 3, Second: 27},
			wantBody: "Get RTC Info: 2025.03.10-14:03:27",
			wantOK:   true,
		},
		{
			name:     "leap second tolerated",
			line:     "Jun 30 23:59:60 leap",
			want:     RawStamp{Month: time.June, Day: 30, Hour: 23, Minute: 59, Second: 60},
			wantBody: "leap",
			wantOK:   true,
		},
		{
			name:     "empty body",
			line:     "Mar 10 14:02:11",
			want:     RawStamp{Month: time.March, Day: 10, Hour: 14, Minute: 2, Second: 11},
			wantBody: "",
			wantOK:   true,
		},
		{name: "no timestamp", line: "stack trace continuation", wantOK: false},
		{name: "empty line", line: "", wantOK: false},
		{name: "unknown month", line: "Xyz 10 14:02:11 msg", wantOK: false},
		{name: "day out of range", line: "Mar 32 14:02:11 msg", wantOK: false},
		{name: "hour out of range", line: "Mar 10 24:02:11 msg", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line, "SystemLog", LiveRotation, 1)
			if ok != tt.wantOK {
				t.Fatalf("ParseLine(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if !tt.wantOK {
				return
			}
			if got.Stamp != tt.want {
				t.Errorf("Stamp = %+v, want %+v", got.Stamp, tt.want)
			}
			if got.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", got.Body, tt.wantBody)
			}
			if got.Raw != tt.line {
				t.Errorf("Raw = %q, want %q", got.Raw, tt.line)
			}
		})
	}
}

func TestParseLine_Provenance(t *testing.T) {
	e, ok := ParseLine("Mar 10 14:02:11 msg", "/some/SystemLog.2", 2, 42)
	if !ok {
		t.Fatal("Expected line to parse")
	}
	if e.Source != "/some/SystemLog.2" || e.Rotation != 2 || e.Line != 42 {
		t.Errorf("Unexpected provenance: %+v", e)
	}
	if e.Correctable() {
		t.Error("Freshly parsed entry must not be correctable yet")
	}
}

func TestRawStamp_At(t *testing.T) {
	stamp := RawStamp{Month: time.December, Day: 23, Hour: 7, Minute: 12, Second: 5}
	got := stamp.At(2024)
	want := time.Date(2024, time.December, 23, 7, 12, 5, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At(2024) = %v, want %v", got, want)
	}
}

func TestFractionNanos(t *testing.T) {
	tests := []struct {
		frac string
		want int
	}{
		{"1", 100000000},
		{"123", 123000000},
		{"123456789", 123456789},
		{"1234567891", 123456789}, // over-long fractions truncate
	}
	for _, tt := range tests {
		if got := fractionNanos(tt.frac); got != tt.want {
			t.Errorf("fractionNanos(%q) = %d, want %d", tt.frac, got, tt.want)
		}
	}
}
