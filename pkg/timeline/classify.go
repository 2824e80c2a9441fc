package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"chargescan/pkg/parser"
)

// CorroborateFunc answers whether the secondary stream was active during a
// month window. A nil func is treated as "no activity found", the
// conservative default that biases toward power loss when uncertain.
type CorroborateFunc func(MonthWindow) CorroborationResult

// Events detects and classifies all gaps in a reconstructed stream. The
// corroborate func is only consulted for gaps that reach the long-gap
// branch of the decision table.
func (e *Engine) Events(streamName string, ordered []parser.Entry, corroborate CorroborateFunc) []Event {
	gaps := e.DetectGaps(streamName, ordered)

	events := make([]Event, 0, len(gaps))
	for _, g := range gaps {
		restart := FindRestartMark(g, e.cfg.RestartMarkers)
		events = append(events, e.ClassifyGap(g, restart, corroborate))
	}

	events = append(events, e.controlledRestarts(streamName, ordered)...)

	sort.Slice(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// controlledRestarts finds update reboots too brief to register as gaps.
// A controlled restart silences logging for a few minutes at most, well
// below the minimum gap duration, so it needs its own sweep over the
// restart markers.
func (e *Engine) controlledRestarts(streamName string, ordered []parser.Entry) []Event {
	var events []Event

	for i := 0; i+1 < len(ordered); i++ {
		restart := FindRestartMark(Gap{Start: ordered[i]}, e.cfg.RestartMarkers)
		if !restart.Found {
			continue
		}

		delta := ordered[i+1].Corrected.Sub(ordered[i].Corrected)
		if delta <= 0 || delta >= e.cfg.ControlledRestartMax || delta > e.cfg.MinGap {
			// Longer silences surface through gap detection instead.
			continue
		}

		events = append(events, Event{
			Kind:     KindFirmwareUpdate,
			Stream:   streamName,
			Start:    ordered[i].Corrected,
			End:      ordered[i+1].Corrected,
			Duration: delta,
			Evidence: []string{
				fmt.Sprintf("controlled update marker %q followed by a %s silence",
					restart.Text, formatDuration(delta)),
				fmt.Sprintf("outage of %s is below the controlled-restart threshold of %s",
					formatDuration(delta), formatDuration(e.cfg.ControlledRestartMax)),
			},
		})
	}

	return events
}

// FindRestartMark checks the entry immediately preceding a gap for an
// explicit controlled-restart marker.
func FindRestartMark(g Gap, markers []string) RestartMark {
	for _, m := range markers {
		if strings.Contains(g.Start.Body, m) {
			return RestartMark{Found: true, Text: m}
		}
	}
	return RestartMark{}
}

// ClassifyGap assigns a classification and an evidence trail to one gap.
// It is a pure function of its inputs (the corroborate func is only called
// when the decision reaches the long-gap branch) and is idempotent. First
// match wins:
//
//  1. controlled-update marker right before a very short gap: firmware update
//  2. gap end produced via clock-reset correction: power loss
//  3. long gap: protocol activity decides logging failure vs power loss
//  4. otherwise: unknown, never guessed into a more specific category
func (e *Engine) ClassifyGap(g Gap, restart RestartMark, corroborate CorroborateFunc) Event {
	ev := Event{
		Stream:   g.StreamName,
		Start:    g.Start.Corrected,
		End:      g.End.Corrected,
		Duration: g.Duration,
	}

	ev.Evidence = append(ev.Evidence, fmt.Sprintf("silence of %s between %q and %q",
		formatDuration(g.Duration), truncate(g.Start.Raw), truncate(g.End.Raw)))

	switch {
	case restart.Found && g.Duration < e.cfg.ControlledRestartMax:
		ev.Kind = KindFirmwareUpdate
		ev.Evidence = append(ev.Evidence,
			fmt.Sprintf("controlled update marker %q immediately before the gap", restart.Text),
			fmt.Sprintf("outage of %s is below the controlled-restart threshold of %s",
				formatDuration(g.Duration), formatDuration(e.cfg.ControlledRestartMax)))

	case g.End.Reset:
		ev.Kind = KindPowerLoss
		ev.Evidence = append(ev.Evidence,
			"logging resumed on the firmware power-on default clock, re-anchored by a clock correction",
			fmt.Sprintf("corrected restart time %s", g.End.Corrected.Format("2006-01-02 15:04:05")))

	case g.Duration > e.cfg.LongGap:
		res := CorroborationResult{Window: WindowOf(g)}
		if corroborate != nil {
			res = corroborate(WindowOf(g))
		}
		ev.Evidence = append(ev.Evidence,
			fmt.Sprintf("gap exceeds the long-gap threshold of %s", formatDuration(e.cfg.LongGap)))

		if res.ActivityFound {
			ev.Kind = KindSystemLogFailure
			ev.Evidence = append(ev.Evidence,
				fmt.Sprintf("protocol stream shows %d entries in window %s", res.SampleCount, res.Window),
				"device was powered and communicating; only this stream went silent")
		} else {
			ev.Kind = KindPowerLoss
			ev.Evidence = append(ev.Evidence,
				fmt.Sprintf("no protocol stream activity in window %s", res.Window))
		}

	default:
		ev.Kind = KindUnknown
		if restart.Found {
			ev.Evidence = append(ev.Evidence,
				fmt.Sprintf("restart marker %q found but gap is not short enough for a controlled restart", restart.Text))
		}
		ev.Evidence = append(ev.Evidence,
			"no reset marker at the gap boundary and no corroborating signal; cause undetermined")
	}

	return ev
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// truncate caps verbatim boundary entries carried in evidence strings.
func truncate(s string) string {
	const max = 120
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
