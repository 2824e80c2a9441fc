// Package timeline reconstructs a trustworthy chronology from year-less,
// independently rotated controller log streams and classifies the silences
// it finds. It repairs spurious clock-reset artifacts, infers calendar
// years, merges rotations into a single ordered sequence, detects gaps and
// attributes each gap to a power loss, a firmware update, a logging
// failure, or an unknown cause, using a second protocol stream as
// corroborating evidence.
package timeline

import (
	"fmt"
	"time"

	"chargescan/pkg/parser"
)

// Gap is a silence between two chronologically adjacent correctable entries
// of one stream. Duration is always computed from corrected timestamps.
type Gap struct {
	StreamName string
	Start      parser.Entry
	End        parser.Entry
	Duration   time.Duration
}

// EventKind classifies a gap.
type EventKind string

const (
	// KindPowerLoss means the device lost power for the gap's duration.
	KindPowerLoss EventKind = "power_loss"

	// KindFirmwareUpdate means a controlled firmware or image update
	// reboot caused a short outage.
	KindFirmwareUpdate EventKind = "firmware_update"

	// KindSystemLogFailure means the device stayed powered and the
	// protocol stream stayed active; only the system log stopped.
	KindSystemLogFailure EventKind = "system_log_failure"

	// KindUnknown means the evidence was insufficient or conflicting.
	// Ambiguous gaps are never guessed into a more specific category.
	KindUnknown EventKind = "unknown"
)

// Event is a classified Gap. Created once by classification; immutable.
// The full Event list for a device is the deliverable output of the engine.
type Event struct {
	Kind     EventKind     `json:"kind"`
	Stream   string        `json:"stream"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`

	// Evidence is an ordered list of human-readable justification strings
	// sufficient to defend the classification to a reviewer.
	Evidence []string `json:"evidence"`
}

// YearMonth is a calendar month with its year, the granularity at which
// cross-stream matching is reliable.
type YearMonth struct {
	Year  int
	Month time.Month
}

func yearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

func (ym YearMonth) before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}

// MonthWindow is an inclusive range of calendar months searched during
// corroboration. Gap boundaries are widened to whole months because the
// protocol stream is also year-less and only month/day-granular matching
// holds up across streams.
type MonthWindow struct {
	From YearMonth
	To   YearMonth
}

// WindowOf returns the month window spanned by a gap.
func WindowOf(g Gap) MonthWindow {
	return MonthWindow{
		From: yearMonthOf(g.Start.Corrected),
		To:   yearMonthOf(g.End.Corrected),
	}
}

// Contains reports whether t falls inside the window's month range.
func (w MonthWindow) Contains(t time.Time) bool {
	ym := yearMonthOf(t)
	return !ym.before(w.From) && !w.To.before(ym)
}

func (w MonthWindow) String() string {
	if w.From == w.To {
		return w.From.String()
	}
	return w.From.String() + ".." + w.To.String()
}

// CorroborationResult answers whether a secondary stream was active during
// a month window. Computed on demand, not persisted.
type CorroborationResult struct {
	ActivityFound bool
	SampleCount   int
	Window        MonthWindow
}

// RestartMark describes an explicit restart marker found in the entry
// immediately preceding a gap.
type RestartMark struct {
	Found bool
	Text  string
}
