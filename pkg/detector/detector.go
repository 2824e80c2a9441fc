// Package detector provides static fault-signature scanning over parsed
// log streams. Signatures are fixed pattern/threshold rules; everything
// time-related lives in the timeline package.
package detector

import (
	"chargescan/pkg/config"
	"chargescan/pkg/parser"
)

// Finding is the result of evaluating one signature rule against a stream.
type Finding struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Stream      string   `json:"stream"`
	Severity    string   `json:"severity"`
	Count       int      `json:"count"`
	Threshold   int      `json:"threshold"`
	Examples    []string `json:"examples,omitempty"`
}

// Breached reports whether the finding crosses its threshold and should be
// surfaced as an issue.
func (f *Finding) Breached() bool {
	if f.Count == 0 {
		return false
	}
	return f.Count >= f.Threshold || f.Threshold <= 1
}

// Scan evaluates every signature rule against the stream it targets.
// Findings are returned in rule order, one per rule, including clean ones.
func Scan(sigs []config.SignatureConfig, system, protocol *parser.Stream) []Finding {
	findings := make([]Finding, 0, len(sigs))

	for i := range sigs {
		sig := &sigs[i]

		stream := system
		if sig.Stream == "protocol" {
			stream = protocol
		}

		f := Finding{
			Name:        sig.Name,
			Description: sig.Description,
			Stream:      sig.Stream,
			Severity:    sig.Severity,
			Threshold:   sig.Threshold,
		}

		if stream != nil {
			pattern := sig.CompiledPattern()
			for j := range stream.Entries {
				if !pattern.MatchString(stream.Entries[j].Raw) {
					continue
				}
				f.Count++
				if len(f.Examples) < sig.MaxExamples {
					f.Examples = append(f.Examples, stream.Entries[j].Raw)
				}
			}
		}

		findings = append(findings, f)
	}

	return findings
}
