package reporter

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/analysis"
	"github.com/yaklabco/mdstream/pkg/runner"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. Files that replayed cleanly are only listed
// in verbose mode.
func (r *TextReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil || len(result.Files) == 0 {
		if r.opts.ShowSummary {
			fmt.Fprintln(r.bw, r.styles.Success.Render("No files to replay."))
		}
		return 0, nil
	}

	report := analysis.Analyze(result, r.opts.analysisOptions())

	for _, file := range report.Files {
		if !r.opts.Verbose && file.Status == analysis.StatusOK {
			continue
		}

		fmt.Fprint(r.bw, r.styles.FormatFileLine(file))
		for _, m := range file.Divergences {
			fmt.Fprint(r.bw, r.styles.FormatMismatch(m))
		}
		if n := file.Mismatches - len(file.Divergences); r.opts.ShowMismatches && n > 0 {
			fmt.Fprintln(r.bw, r.styles.Dim.Render(fmt.Sprintf("    ... %d more divergent steps", n)))
		}
	}

	if r.opts.ShowSummary {
		if r.opts.Verbose {
			fmt.Fprint(r.bw, r.styles.FormatSummary(result.Stats))
		} else {
			fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats))
		}
	}

	return report.Totals.Failures(), nil
}
