package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/analysis"
)

// Table layout constants for summary output.
// Both tables use the same width for visual consistency.
const (
	tableWidth        = 72 // Width of table separators (same for both tables).
	nameColWidth      = 40 // Width of the strategy or reason column.
	numColWidth       = 10 // Width of numeric columns.
	maxFilesListed    = 3  // Files named per skip reason before eliding.
	maxReasonNameSize = 38 // Maximum characters for a reason before truncation.
)

// padRight pads a string to the given width with spaces on the right.
// This must be called BEFORE applying ANSI styles.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// padLeft pads a string to the given width with spaces on the left.
// This must be called BEFORE applying ANSI styles.
func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

// SummaryRenderer formats results as aggregated summary tables.
type SummaryRenderer struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewSummaryRenderer creates a new summary renderer.
func NewSummaryRenderer(opts Options) *SummaryRenderer {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &SummaryRenderer{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Render implements Renderer.
func (r *SummaryRenderer) Render(_ context.Context, report *analysis.Report) error {
	if report.Totals.Steps == 0 {
		fmt.Fprintln(r.out, r.styles.Success.Render("Nothing was replayed"))
		return nil
	}

	r.renderStrategyTable(report.ByStrategy)
	if len(report.BySkipReason) > 0 {
		fmt.Fprintln(r.out)
		r.renderSkipTable(report.BySkipReason)
	}

	fmt.Fprintln(r.out)
	r.renderTotals(report.Totals)

	return nil
}

func (r *SummaryRenderer) renderStrategyTable(strategies []analysis.StrategyAnalysis) {
	fmt.Fprintln(r.out, r.styles.Bold.Render("Strategies"))
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	// Header - pad first, then style
	fmt.Fprintf(r.out, "%s %s %s\n",
		r.styles.TableHeader.Render(padRight("Strategy", nameColWidth)),
		r.styles.TableHeader.Render(padLeft("Appends", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Share", numColWidth)),
	)
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	for _, s := range strategies {
		fmt.Fprintf(r.out, "%s %s %s\n",
			padRight(s.Strategy, nameColWidth),
			padLeft(pretty.Count(s.Steps), numColWidth),
			padLeft(pretty.Percent(s.Share), numColWidth),
		)
	}
}

func (r *SummaryRenderer) renderSkipTable(reasons []analysis.SkipAnalysis) {
	fmt.Fprintln(r.out, r.styles.Bold.Render("Full Parse Reasons"))
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	fmt.Fprintf(r.out, "%s %s %s\n",
		r.styles.TableHeader.Render(padRight("Reason", nameColWidth)),
		r.styles.TableHeader.Render(padLeft("Count", numColWidth)),
		r.styles.TableHeader.Render(padLeft("Files", numColWidth)),
	)
	fmt.Fprintln(r.out, r.styles.TableSeparator.Render(strings.Repeat("─", tableWidth)))

	for _, reason := range reasons {
		name := reason.Reason
		if len(name) > maxReasonNameSize {
			name = name[:maxReasonNameSize] + "…"
		}

		fmt.Fprintf(r.out, "%s %s %s\n",
			padRight(name, nameColWidth),
			padLeft(pretty.Count(reason.Count), numColWidth),
			padLeft(pretty.Count(len(reason.Files)), numColWidth),
		)

		if r.opts.Verbose {
			listed := reason.Files[:min(len(reason.Files), maxFilesListed)]
			line := "  " + strings.Join(listed, ", ")
			if extra := len(reason.Files) - len(listed); extra > 0 {
				line += fmt.Sprintf(" and %d more", extra)
			}
			fmt.Fprintln(r.out, r.styles.Dim.Render(line))
		}
	}
}

func (r *SummaryRenderer) renderTotals(totals analysis.Totals) {
	parts := []string{
		fmt.Sprintf("%s appends over %d files", pretty.Count(totals.Steps), totals.FilesReplayed),
		pretty.Percent(totals.Incremental) + " incremental",
	}

	if totals.FilesDiverged > 0 {
		parts = append(parts, r.styles.Failure.Render(fmt.Sprintf("%d diverged", totals.FilesDiverged)))
	}
	if totals.FilesErrored > 0 {
		parts = append(parts, r.styles.Error.Render(fmt.Sprintf("%d failed", totals.FilesErrored)))
	}

	fmt.Fprintln(r.out, r.styles.Bold.Render("Total: ")+strings.Join(parts, ", "))
}
