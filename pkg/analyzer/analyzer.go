// Package analyzer orchestrates the analysis of device log bundles: stream
// loading, timeline reconstruction, gap classification, and signature
// scanning, fanned out across bundles.
package analyzer

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"chargescan/pkg/bundle"
	"chargescan/pkg/config"
	"chargescan/pkg/detector"
	"chargescan/pkg/output"
	"chargescan/pkg/parser"
	"chargescan/pkg/timeline"
)

// Analyzer runs the full pipeline for device bundles.
type Analyzer struct {
	cfg *config.Config
}

// New creates an analyzer from a validated configuration.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// AnalyzeBundle analyzes one device bundle. Failures are captured in the
// report's Error field so one broken bundle never aborts a batch.
func (a *Analyzer) AnalyzeBundle(ctx context.Context, b bundle.Bundle) *output.DeviceReport {
	report := &output.DeviceReport{Bundle: b.Name(), Serial: b.Serial}

	if a.cfg.Analysis.DeviceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Analysis.DeviceTimeout)
		defer cancel()
	}

	engine := timeline.NewEngine(&a.cfg.Timeline)

	system, err := parser.LoadStream(ctx, b.Dir, a.cfg.Streams.System.Name, a.cfg.Streams.System.Dirs)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	ordered := engine.Reconstruct(system)

	protocol, err := parser.LoadStream(ctx, b.Dir, a.cfg.Streams.Protocol.Name, a.cfg.Streams.Protocol.Dirs)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	protoOrdered := engine.Reconstruct(protocol)

	corr := timeline.NewCorroboratorFromEntries(protoOrdered)
	report.Events = engine.Events(system.Name, ordered, corr.Func(ctx))
	report.Findings = detector.Scan(a.cfg.Signatures, system, protocol)
	report.Firmware = detector.TrackFirmware(system)
	report.Streams = []output.StreamStats{
		output.StatsFromStream(system, len(ordered)),
		output.StatsFromStream(protocol, len(protoOrdered)),
	}

	if err := ctx.Err(); err != nil {
		report.Error = err.Error()
	}
	return report
}

// AnalyzeAll analyzes bundles concurrently, bounded by the configured
// parallelism. Each bundle's streams are still processed sequentially.
// Report order matches bundle order regardless of completion order.
func (a *Analyzer) AnalyzeAll(ctx context.Context, bundles []bundle.Bundle) ([]*output.DeviceReport, error) {
	reports := make([]*output.DeviceReport, len(bundles))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Analysis.Parallelism)

	for i, b := range bundles {
		i, b := i, b
		g.Go(func() error {
			reports[i] = a.AnalyzeBundle(gctx, b)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Run discovers bundles under root, analyzes them, and assembles the
// final report.
func (a *Analyzer) Run(ctx context.Context, root string) (*output.Report, error) {
	start := time.Now()

	bundles, err := bundle.Discover(root)
	if err != nil {
		return nil, err
	}
	if len(bundles) == 0 {
		// root may itself be a single extracted bundle.
		if b, ok := bundle.FromDir(root); ok {
			bundles = append(bundles, b)
		}
	}

	reports, err := a.AnalyzeAll(ctx, bundles)
	if err != nil {
		return nil, err
	}

	return output.NewReport(reports, output.Metadata{
		Root:       root,
		AnalyzedAt: start,
		Duration:   time.Since(start),
	}), nil
}
