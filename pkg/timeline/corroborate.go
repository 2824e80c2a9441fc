package timeline

import (
	"context"

	"chargescan/pkg/config"
	"chargescan/pkg/parser"
)

// Corroborator answers "was the secondary stream active during this
// window?" by scanning that stream's rotations for entries whose corrected
// timestamps fall inside the window's month range. The stream is resolved
// by trying candidate subdirectories in turn; an entirely absent stream
// yields activityFound=false, never an error, so a missing protocol log
// can never fail the whole analysis.
type Corroborator struct {
	engine *Engine
	root   string
	stream config.StreamConfig

	loaded  bool
	ordered []parser.Entry
}

// NewCorroborator creates a corroborator for the secondary stream of one
// bundle. The stream is loaded lazily on first use and cached; like the
// engine it is bound to a single goroutine.
func NewCorroborator(engine *Engine, root string, stream config.StreamConfig) *Corroborator {
	return &Corroborator{engine: engine, root: root, stream: stream}
}

// NewCorroboratorFromEntries creates a corroborator over an already
// reconstructed chronology, for callers that parsed the secondary stream
// themselves.
func NewCorroboratorFromEntries(ordered []parser.Entry) *Corroborator {
	return &Corroborator{loaded: true, ordered: ordered}
}

// Check scans the secondary stream for activity inside the window.
func (c *Corroborator) Check(ctx context.Context, w MonthWindow) CorroborationResult {
	res := CorroborationResult{Window: w}

	if !c.loaded {
		c.loaded = true
		s, err := parser.LoadStream(ctx, c.root, c.stream.Name, c.stream.Dirs)
		if err != nil {
			// Unreadable is treated the same as absent.
			return res
		}
		c.ordered = c.engine.Reconstruct(s)
	}

	for _, ent := range c.ordered {
		if w.Contains(ent.Corrected) {
			res.SampleCount++
		}
	}
	res.ActivityFound = res.SampleCount > 0

	return res
}

// Func adapts the corroborator to the classifier's callback shape, binding
// the context.
func (c *Corroborator) Func(ctx context.Context) CorroborateFunc {
	return func(w MonthWindow) CorroborationResult {
		return c.Check(ctx, w)
	}
}
