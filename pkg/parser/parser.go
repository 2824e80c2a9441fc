package parser

import (
	"regexp"
	"strconv"
	"time"
)

// linePattern matches the stream line grammar:
// <Mon> <Day> <HH:MM:SS>[.<fractional-seconds>] <free text>.
// Day may be space padded; whitespace between fields is tolerated.
var linePattern = regexp.MustCompile(
	`^\s*([A-Z][a-z]{2})\s+(\d{1,2})\s+(\d{1,2}):(\d{2}):(\d{2})(?:\.(\d+))?\s?(.*)$`)

var months = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// ParseLine parses one raw text line into an Entry. The second return value
// is false for lines with no recognizable timestamp prefix (continuation
// noise); such lines are dropped by callers, never treated as errors.
// ParseLine is a pure function of the line plus provenance.
func ParseLine(line, source string, rotation, lineNum int) (Entry, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}

	month, ok := months[m[1]]
	if !ok {
		return Entry{}, false
	}

	day, _ := strconv.Atoi(m[2])
	hour, _ := strconv.Atoi(m[3])
	minute, _ := strconv.Atoi(m[4])
	second, _ := strconv.Atoi(m[5])

	if day < 1 || day > 31 || hour > 23 || minute > 59 || second > 60 {
		return Entry{}, false
	}

	nanos := 0
	if m[6] != "" {
		nanos = fractionNanos(m[6])
	}

	return Entry{
		Raw: line,
		Stamp: RawStamp{
			Month:  month,
			Day:    day,
			Hour:   hour,
			Minute: minute,
			Second: second,
			Nanos:  nanos,
		},
		Body:     m[7],
		Source:   source,
		Rotation: rotation,
		Line:     lineNum,
	}, true
}

// fractionNanos converts a fractional-seconds digit string to nanoseconds.
func fractionNanos(frac string) int {
	if len(frac) > 9 {
		frac = frac[:9]
	}
	n, err := strconv.Atoi(frac)
	if err != nil {
		return 0
	}
	for i := len(frac); i < 9; i++ {
		n *= 10
	}
	return n
}
