package pretty

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/yaklabco/mdstream/pkg/runner"
	"github.com/yaklabco/mdstream/pkg/stream"
)

const (
	summaryDividerWidth = 40
	wordFile            = "file"
	wordFiles           = "files"
)

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Percent formats a ratio in [0, 1] as a whole percentage.
func Percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

// Bytes formats a byte count for humans, such as "12 kB".
func Bytes(n int) string {
	return humanize.Bytes(uint64(max(n, 0)))
}

// Count formats n with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Duration rounds d for display.
func Duration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.String()
	}
}

// FormatSummaryOneLine formats run statistics as a single line.
// Example: "3 files replayed, 1,204 appends (97% incremental), 18 kB in 42ms".
func (s *Styles) FormatSummaryOneLine(stats runner.Stats) string {
	if stats.FilesDiscovered == 0 {
		return s.Dim.Render("No files to replay") + "\n"
	}

	parts := []string{
		fmt.Sprintf("%d %s replayed", stats.FilesProcessed, plural(stats.FilesProcessed, wordFile, wordFiles)),
		fmt.Sprintf("%s %s (%s incremental)",
			Count(stats.Steps), plural(stats.Steps, "append", "appends"), Percent(stats.Incremental())),
		fmt.Sprintf("%s in %s", Bytes(stats.Bytes), Duration(stats.Duration)),
	}

	if stats.FilesDiverged > 0 {
		parts = append(parts, s.Failure.Render(fmt.Sprintf("%d diverged", stats.FilesDiverged)))
	}
	if stats.FilesErrored > 0 {
		parts = append(parts, s.Error.Render(fmt.Sprintf("%d failed", stats.FilesErrored)))
	}
	if stats.FilesSkipped > 0 {
		parts = append(parts, s.Warning.Render(fmt.Sprintf("%d changed during replay", stats.FilesSkipped)))
	}

	return strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats run statistics as a summary block.
func (s *Styles) FormatSummary(stats runner.Stats) string {
	var builder strings.Builder

	line := func(label, value string) {
		builder.WriteString(fmt.Sprintf("  %-20s %s\n", label+":", value))
	}

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	line("Files replayed", s.SummaryValue.Render(Count(stats.FilesProcessed)))
	if stats.FilesErrored > 0 {
		line("Files failed", s.Error.Render(Count(stats.FilesErrored)))
	}
	if stats.FilesDiverged > 0 {
		line("Files diverged", s.Failure.Render(Count(stats.FilesDiverged)))
	}
	if stats.FilesSkipped > 0 {
		line("Files changed", s.Warning.Render(Count(stats.FilesSkipped)))
	}
	line("Bytes streamed", s.SummaryValue.Render(Bytes(stats.Bytes)))

	builder.WriteString("\n")

	line("Appends", s.SummaryValue.Render(Count(stats.Steps)))
	line("  Fast path", s.FastPath.Render(Count(stats.Strategies[stream.StrategyFastPath])))
	line("  Incremental", s.Incremental.Render(Count(stats.Strategies[stream.StrategyIncremental])))
	line("  Full parse", s.Full.Render(Count(stats.Strategies[stream.StrategyFull])))
	if n := stats.Strategies[stream.StrategyNone]; n > 0 {
		line("  Unchanged", s.Unchanged.Render(Count(n)))
	}
	line("Blocks kept", s.BlockKeep.Render(Count(stats.Changes.Kept)))
	line("Blocks rebuilt", s.BlockRebuild.Render(Count(stats.Changes.Rebuilt)))
	if stats.Changes.Removed > 0 {
		line("Blocks removed", s.BlockRemove.Render(Count(stats.Changes.Removed)))
	}
	if stats.Tokenized > 0 {
		line("Code blocks lexed", s.SummaryValue.Render(Count(stats.Tokenized)))
	}
	line("Time appending", s.SummaryValue.Render(Duration(stats.Duration)))

	builder.WriteString("\n")

	switch {
	case stats.FilesDiverged > 0:
		builder.WriteString(s.Failure.Render("Streamed parse diverged from full parse"))
	case stats.FilesErrored > 0:
		builder.WriteString(s.Failure.Render("Replay finished with errors"))
	default:
		builder.WriteString(s.Success.Render("Replay matched full parse"))
	}
	builder.WriteString("\n")

	return builder.String()
}
