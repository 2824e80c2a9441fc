package timeline

import (
	"sort"
	"strconv"
	"time"

	"chargescan/pkg/config"
	"chargescan/pkg/parser"
)

// Engine runs timeline reconstruction for one device bundle. It is not safe
// for concurrent use; year and clock-reset state must be threaded
// sequentially through file order, so a stream is always reconstructed on a
// single goroutine. Independent bundles get independent engines.
type Engine struct {
	cfg *config.TimelineConfig
}

// NewEngine creates a reconstruction engine from validated configuration.
func NewEngine(cfg *config.TimelineConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Reconstruct repairs clock resets and infers years across the stream's
// concatenated file-order entries, then returns the correctable entries
// ordered by corrected timestamp. Entries without a corrected timestamp are
// excluded from the ordered view; they must never anchor chronology.
//
// Ordering ties are broken by (rotation recency, line number): the input
// list is in file order and the sort is stable, so equal timestamps keep
// the oldest-rotation-first sequence.
func (e *Engine) Reconstruct(s *parser.Stream) []parser.Entry {
	e.assignTimestamps(s)

	ordered := make([]parser.Entry, 0, len(s.Entries))
	for _, ent := range s.Entries {
		if ent.Correctable() {
			ordered = append(ordered, ent)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Corrected.Before(ordered[j].Corrected)
	})

	return ordered
}

// assignTimestamps walks the file-order entry list once, carrying the
// running year and clock-sync state forward. A clock correction message
// re-anchors the year; a reset marker suspends chronology until a
// correction is found within the lookahead window. The lookahead runs over
// the concatenated list, so it crosses rotation boundaries.
func (e *Engine) assignTimestamps(s *parser.Stream) {
	entries := s.Entries

	for i := range entries {
		entries[i].Reset = e.isReset(entries[i].Stamp)
	}

	year, synced := e.seedYear(s)
	var prevMonth time.Month
	havePrev := false

	for i := 0; i < len(entries); i++ {
		ent := &entries[i]

		if ct, ok := e.correctionTime(ent.Body); ok {
			ent.Corrected = ct
			year, synced = ct.Year(), true
			prevMonth, havePrev = ct.Month(), true
			continue
		}

		if ent.Reset {
			j, ct, ok := e.lookahead(entries, i)
			if !ok {
				// No correction in reach: the marker and everything
				// depending on it stays out of the chronology. Falling
				// back to the literal default date would manufacture
				// large false gaps.
				synced = false
				continue
			}
			// The marker and the entries logged on the fake clock all
			// collapse onto the correction instant; file order preserves
			// their relative sequence.
			for k := i; k <= j; k++ {
				entries[k].Corrected = ct
			}
			year, synced = ct.Year(), true
			prevMonth, havePrev = ct.Month(), true
			i = j
			continue
		}

		if !synced {
			continue
		}

		if havePrev && monthRollover(prevMonth, ent.Stamp.Month) {
			year++
		}
		ent.Corrected = ent.Stamp.At(year)
		prevMonth, havePrev = ent.Stamp.Month, true
	}
}

// seedYear determines the running year before the first entry. The first
// clock correction in the stream is authoritative: the seed is inferred
// backwards from it across calendar rollovers. Without any correction the
// oldest rotation file's modification time is the only context available.
// The second return value is false when no seed can be established.
func (e *Engine) seedYear(s *parser.Stream) (int, bool) {
	entries := s.Entries

	firstCorr := -1
	var corrTime time.Time
	for i := range entries {
		if ct, ok := e.correctionTime(entries[i].Body); ok {
			firstCorr, corrTime = i, ct
			break
		}
	}

	if firstCorr >= 0 {
		// Entries between a reset marker and its correction carry fake
		// power-on stamps; start the backward walk before that span.
		start := firstCorr
		for k := firstCorr - 1; k >= 0 && firstCorr-k <= e.cfg.ResetLookaheadLines; k-- {
			if entries[k].Reset {
				start = k
				break
			}
		}

		year := corrTime.Year()
		month := corrTime.Month()
		for i := start - 1; i >= 0; i-- {
			if entries[i].Reset {
				continue
			}
			m := entries[i].Stamp.Month
			if monthRollover(m, month) {
				year--
			}
			month = m
		}
		return year, true
	}

	if s.OldestModTime.IsZero() {
		return 0, false
	}

	year := s.OldestModTime.Year()
	// A stream written across a year boundary has its oldest content dated
	// later in the calendar than the file's modification month.
	for i := range entries {
		if entries[i].Reset {
			continue
		}
		if entries[i].Stamp.Month > s.OldestModTime.Month() {
			year--
		}
		break
	}
	return year, true
}

// lookahead scans forward from a reset marker for a clock correction
// message, up to the configured entry count.
func (e *Engine) lookahead(entries []parser.Entry, i int) (int, time.Time, bool) {
	limit := i + e.cfg.ResetLookaheadLines
	for j := i + 1; j <= limit && j < len(entries); j++ {
		if ct, ok := e.correctionTime(entries[j].Body); ok {
			return j, ct, true
		}
	}
	return 0, time.Time{}, false
}

// isReset reports whether a raw stamp matches one of the firmware power-on
// default dates. The match is date-only.
func (e *Engine) isReset(stamp parser.RawStamp) bool {
	for _, rd := range e.cfg.ResetDates() {
		if stamp.Month == rd.Month && stamp.Day == rd.Day {
			return true
		}
	}
	return false
}

// correctionTime extracts the absolute timestamp embedded in a clock
// correction message. Corrections with implausible years mean the RTC was
// not actually synced and are ignored.
func (e *Engine) correctionTime(body string) (time.Time, bool) {
	m := e.cfg.CompiledCorrection().FindStringSubmatch(body)
	if m == nil {
		return time.Time{}, false
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])
	second, _ := strconv.Atoi(m[6])

	if year < e.cfg.CorrectionYearMin || year > e.cfg.CorrectionYearMax {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), true
}

// monthRollover reports whether moving from prev to next crosses a calendar
// year boundary: next is earlier in the calendar than prev by more than one
// month. A single month of backward drift is tolerated as clock adjustment.
func monthRollover(prev, next time.Month) bool {
	return next < prev && int(prev)-int(next) > 1
}
