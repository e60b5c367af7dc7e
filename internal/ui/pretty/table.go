package pretty

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdstream/pkg/analysis"
)

// Table formatting constants.
const (
	tablePadding     = 2
	numberColumns    = 6 // BYTES, STEPS, FAST, INCR, FULL, RATIO
	numberWidth      = 7
	statusWidth      = 8
	minFileWidth     = 20
	heavySeparator   = "="
	lightSeparator   = "-"
	defaultTermWidth = 100
)

// TableFormatter formats per-file replay figures as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// FormatTable formats the files of a report as a styled table.
func (t *TableFormatter) FormatTable(files []analysis.FileAnalysis) string {
	if len(files) == 0 {
		return ""
	}

	fileWidth := t.fileWidth(files)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(fileWidth))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(fileWidth, heavySeparator))
	builder.WriteString("\n")

	for _, file := range files {
		builder.WriteString(t.formatRow(file, fileWidth))
		builder.WriteString("\n")
		if file.Error != "" {
			builder.WriteString(t.styles.Dim.Render("   " + truncateString(file.Error, t.totalWidth(fileWidth)-3)))
			builder.WriteString("\n")
		}
	}

	builder.WriteString(t.formatSeparator(fileWidth, heavySeparator))
	builder.WriteString("\n")

	builder.WriteString(t.formatLegend())
	builder.WriteString("\n")

	return builder.String()
}

// fileWidth sizes the FILE column to the longest path, within the terminal.
func (t *TableFormatter) fileWidth(files []analysis.FileAnalysis) int {
	width := minFileWidth
	for _, file := range files {
		width = max(width, len(file.Path))
	}

	if total := t.totalWidth(width); total > t.termWidth {
		width = max(minFileWidth, width-(total-t.termWidth))
	}
	return width
}

func (t *TableFormatter) totalWidth(fileWidth int) int {
	return fileWidth + statusWidth + numberColumns*numberWidth + (numberColumns+2)*tablePadding
}

// formatHeader formats the table header row.
func (t *TableFormatter) formatHeader(fileWidth int) string {
	header := fmt.Sprintf(" %-*s  %-*s  %*s  %*s  %*s  %*s  %*s  %*s",
		fileWidth, "FILE",
		statusWidth, "STATUS",
		numberWidth, "BYTES",
		numberWidth, "STEPS",
		numberWidth, "FAST",
		numberWidth, "INCR",
		numberWidth, "FULL",
		numberWidth, "RATIO",
	)
	return t.styles.TableHeader.Render(header)
}

// formatSeparator formats a separator line.
func (t *TableFormatter) formatSeparator(fileWidth int, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, t.totalWidth(fileWidth)))
}

// formatRow formats a single table row with status-based styling.
func (t *TableFormatter) formatRow(file analysis.FileAnalysis, fileWidth int) string {
	content := fmt.Sprintf(" %-*s  %-*s  %*s  %*s  %*s  %*s  %*s  %*s",
		fileWidth, truncateFilePath(file.Path, fileWidth),
		statusWidth, file.Status,
		numberWidth, Bytes(file.Bytes),
		numberWidth, Count(file.Steps),
		numberWidth, Count(file.FastPath),
		numberWidth, Count(file.Incremental),
		numberWidth, Count(file.Full),
		numberWidth, Percent(file.Ratio),
	)
	return t.getRowStyle(file.Status).Render(content)
}

// getRowStyle returns the appropriate style for a file status.
func (t *TableFormatter) getRowStyle(status string) lipgloss.Style {
	switch status {
	case analysis.StatusError:
		return t.styles.TableErrorRow
	case analysis.StatusDiverged:
		return t.styles.TableDivergedRow
	case analysis.StatusChanged:
		return t.styles.TableChangedRow
	default:
		return lipgloss.NewStyle()
	}
}

// formatLegend formats the legend explaining the table columns and colors.
func (t *TableFormatter) formatLegend() string {
	if !t.colorEnabled {
		return t.styles.TableLegend.Render(" Legend: RATIO = appends served without a full parse")
	}

	return t.styles.TableLegend.Render(
		fmt.Sprintf(" Legend: %s  %s  %s  RATIO = appends served without a full parse",
			t.styles.TableErrorRow.Render(analysis.StatusError),
			t.styles.TableDivergedRow.Render(analysis.StatusDiverged),
			t.styles.TableChangedRow.Render(analysis.StatusChanged)),
	)
}

// FormatTableSummary formats a summary line for table output.
func (t *TableFormatter) FormatTableSummary(totals analysis.Totals) string {
	parts := []string{
		fmt.Sprintf("%d files replayed", totals.FilesReplayed),
		fmt.Sprintf("%s appends", Count(totals.Steps)),
		Percent(totals.Incremental) + " incremental",
	}

	if totals.FilesDiverged > 0 {
		parts = append(parts, t.styles.Failure.Render(fmt.Sprintf("%d diverged", totals.FilesDiverged)))
	}
	if totals.FilesErrored > 0 {
		parts = append(parts, t.styles.Error.Render(fmt.Sprintf("%d failed", totals.FilesErrored)))
	}
	if totals.FilesChanged > 0 {
		parts = append(parts, t.styles.Warning.Render(fmt.Sprintf("%d changed", totals.FilesChanged)))
	}

	parts = append(parts, t.styles.Dim.Render(fmt.Sprintf("%.1fms", totals.DurationMS)))

	return " " + strings.Join(parts, " | ")
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

// truncateFilePath truncates a file path, preserving the end (filename) rather than beginning.
func truncateFilePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[len(path)-maxLen:]
	}
	return "..." + path[len(path)-maxLen+3:]
}
