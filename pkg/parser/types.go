// Package parser provides log line parsing and rotation file handling for
// year-less controller log streams.
package parser

import "time"

// RawStamp is the year-less timestamp carried by every log line:
// month, day and time-of-day with optional sub-second precision.
type RawStamp struct {
	Month  time.Month
	Day    int
	Hour   int
	Minute int
	Second int
	Nanos  int
}

// At materializes the stamp as an absolute time in the given year.
func (r RawStamp) At(year int) time.Time {
	return time.Date(year, r.Month, r.Day, r.Hour, r.Minute, r.Second, r.Nanos, time.UTC)
}

// Entry is one parsed log line. It is created once at parse time and is
// immutable except for Corrected and Reset, which are populated during
// timeline reconstruction and never changed afterward.
type Entry struct {
	// Raw is the original line content.
	Raw string

	// Stamp is the year-less timestamp parsed from the line.
	Stamp RawStamp

	// Corrected is the absolute timestamp assigned during year inference.
	// The zero value means the entry is uncorrectable and must be excluded
	// from chronology.
	Corrected time.Time

	// Body is the message text after the timestamp.
	Body string

	// Source is the file path this line came from.
	Source string

	// Rotation is the rotation suffix of the source file; LiveRotation for
	// the live file. Lower values are newer content.
	Rotation int

	// Line is the 1-based line number in the source file.
	Line int

	// Reset is true if Stamp matches a firmware power-on default date.
	Reset bool
}

// LiveRotation is the rotation index of the live (unsuffixed) file. It is
// below every numeric suffix so that lower index always means newer.
const LiveRotation = -1

// Correctable reports whether the entry has an absolute timestamp and may
// anchor chronology.
func (e *Entry) Correctable() bool {
	return !e.Corrected.IsZero()
}

// Stats counts parse outcomes for diagnostics. Malformed lines are dropped,
// never fatal.
type Stats struct {
	// Lines is the total number of raw lines read.
	Lines int

	// Parsed is the number of lines with a recognized timestamp prefix.
	Parsed int

	// Skipped counts continuation noise and malformed lines.
	Skipped int
}

func (s *Stats) add(o Stats) {
	s.Lines += o.Lines
	s.Parsed += o.Parsed
	s.Skipped += o.Skipped
}
