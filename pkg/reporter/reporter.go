// Package reporter writes replay results in the formats the CLI offers.
package reporter

import (
	"context"
	"fmt"

	"github.com/yaklabco/mdstream/pkg/analysis"
	"github.com/yaklabco/mdstream/pkg/runner"
)

// Compile-time interface check for reporterFacade.
var _ Reporter = (*reporterFacade)(nil)

// Reporter formats and writes replay results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of files that failed or diverged and any write
	// errors.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// Renderer writes an analyzed report. Renderers hold no state between calls.
type Renderer interface {
	Render(ctx context.Context, report *analysis.Report) error
}

// reporterFacade bridges the Reporter interface to Renderer implementations.
type reporterFacade struct {
	renderer     Renderer
	analysisOpts analysis.Options
}

// Report implements Reporter by analyzing the result and rendering it.
func (f *reporterFacade) Report(ctx context.Context, result *runner.Result) (int, error) {
	report := analysis.Analyze(result, f.analysisOpts)
	if err := f.renderer.Render(ctx, report); err != nil {
		return 0, fmt.Errorf("render: %w", err)
	}
	return report.Totals.Failures(), nil
}

// newRendererFacade creates a facade wrapping a Renderer.
func newRendererFacade(renderer Renderer, opts Options) *reporterFacade {
	return &reporterFacade{
		renderer:     renderer,
		analysisOpts: opts.analysisOptions(),
	}
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	switch format {
	case FormatJSON:
		return newRendererFacade(NewJSONRenderer(opts), opts), nil
	case FormatYAML:
		return newRendererFacade(NewYAMLRenderer(opts), opts), nil
	case FormatTable:
		return NewTableReporter(opts), nil
	case FormatSummary:
		return newRendererFacade(NewSummaryRenderer(opts), opts), nil
	default:
		return NewTextReporter(opts), nil
	}
}
