package timeline

import "chargescan/pkg/parser"

// DetectGaps walks a reconstructed, time-ordered entry list and emits a Gap
// wherever the delta between adjacent entries exceeds the minimum gap and
// does not exceed the maximum. Deltas above the maximum are residual
// year-inference error and are discarded, not reported.
func (e *Engine) DetectGaps(streamName string, ordered []parser.Entry) []Gap {
	var gaps []Gap

	for i := 1; i < len(ordered); i++ {
		prev := ordered[i-1]
		curr := ordered[i]

		delta := curr.Corrected.Sub(prev.Corrected)
		if delta <= e.cfg.MinGap || delta > e.cfg.MaxGap {
			continue
		}

		gaps = append(gaps, Gap{
			StreamName: streamName,
			Start:      prev,
			End:        curr,
			Duration:   delta,
		})
	}

	return gaps
}
