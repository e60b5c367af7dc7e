package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdstream/pkg/analysis"
	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/replay"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// FormatStrategy returns a styled strategy name.
func (s *Styles) FormatStrategy(strategy stream.Strategy) string {
	switch strategy {
	case stream.StrategyFastPath:
		return s.FastPath.Render(strategy.String())
	case stream.StrategyIncremental:
		return s.Incremental.Render(strategy.String())
	case stream.StrategyFull:
		return s.Full.Render(strategy.String())
	default:
		return s.Unchanged.Render(strategy.String())
	}
}

// FormatStatus returns a styled file status.
func (s *Styles) FormatStatus(status string) string {
	switch status {
	case analysis.StatusError:
		return s.Error.Render(status)
	case analysis.StatusDiverged:
		return s.Failure.Render(status)
	case analysis.StatusChanged:
		return s.Warning.Render(status)
	default:
		return s.Success.Render(status)
	}
}

// FormatFileLine formats one replayed file as a single line.
func (s *Styles) FormatFileLine(file analysis.FileAnalysis) string {
	if file.Error != "" {
		return fmt.Sprintf("%s  %s  %s\n",
			s.FilePath.Render(file.Path), s.FormatStatus(file.Status), s.Dim.Render(file.Error))
	}

	detail := fmt.Sprintf("%s, %s appends (%s fast, %s incremental, %s full), %s incremental",
		Bytes(file.Bytes),
		Count(file.Steps),
		s.FastPath.Render(Count(file.FastPath)),
		s.Incremental.Render(Count(file.Incremental)),
		s.Full.Render(Count(file.Full)),
		Percent(file.Ratio),
	)
	return fmt.Sprintf("%s  %s  %s\n", s.FilePath.Render(file.Path), s.FormatStatus(file.Status), detail)
}

// FormatMismatch formats one divergent step with its diff.
func (s *Styles) FormatMismatch(m analysis.MismatchEntry) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("    %s %s\n",
		s.Location.Render(fmt.Sprintf("step %d at byte %d", m.Step, m.Offset)),
		s.Dim.Render("("+m.Strategy+")")))
	builder.WriteString(s.FormatDiff(m.Diff, "      "))

	return builder.String()
}

// FormatDiff colors the lines of a diff: "-" lines are removals and "+"
// lines additions. Every line is prefixed with indent.
func (s *Styles) FormatDiff(diff, indent string) string {
	var builder strings.Builder

	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case strings.HasPrefix(trimmed, "-"):
			line = s.DiffRemove.Render(line)
		case strings.HasPrefix(trimmed, "+"):
			line = s.DiffAdd.Render(line)
		case strings.HasSuffix(trimmed, ":"):
			line = s.DiffHunk.Render(line)
		default:
			line = s.DiffContext.Render(line)
		}
		builder.WriteString(indent + line + "\n")
	}

	return builder.String()
}

// FormatChange formats one block diff operation. label describes the block
// the change refers to.
func (s *Styles) FormatChange(c blockdiff.Change, label string) string {
	switch c.Op {
	case blockdiff.OpKeep:
		return fmt.Sprintf("  %s %s  %s\n",
			s.BlockKeep.Render(fmt.Sprintf("%-8s", "keep")),
			s.Location.Render(fmt.Sprintf("%3d -> %-3d", c.OldIndex, c.NewIndex)),
			s.Dim.Render(label))
	case blockdiff.OpRebuild:
		return fmt.Sprintf("  %s %s  %s\n",
			s.BlockRebuild.Render(fmt.Sprintf("%-8s", "rebuild")),
			s.Location.Render(fmt.Sprintf("%3s -> %-3d", "", c.NewIndex)),
			label)
	default:
		return fmt.Sprintf("  %s %s  %s\n",
			s.BlockRemove.Render(fmt.Sprintf("%-8s", "remove")),
			s.Location.Render(fmt.Sprintf("%3d    %3s", c.OldIndex, "")),
			s.Dim.Render(label))
	}
}

// FormatChangeSummary formats the totals of a block diff.
func (s *Styles) FormatChangeSummary(summary blockdiff.Summary) string {
	return fmt.Sprintf("%s kept, %s rebuilt, %s removed\n",
		s.BlockKeep.Render(Count(summary.Kept)),
		s.BlockRebuild.Render(Count(summary.Rebuilt)),
		s.BlockRemove.Render(Count(summary.Removed)))
}

// strategyWidth is the width of the longest strategy name.
const strategyWidth = len("incremental")

// FormatStep formats one append of a replay.
func (s *Styles) FormatStep(step replay.Step) string {
	name := step.Strategy.String()
	line := fmt.Sprintf("  %s %s  %s%s  %s kept, %s rebuilt, %s removed, %s %s",
		s.Location.Render(fmt.Sprintf("%5d", step.Index)),
		s.Dim.Render(fmt.Sprintf("@%-7d", step.Offset)),
		s.FormatStrategy(step.Strategy),
		strings.Repeat(" ", max(0, strategyWidth-len(name))),
		s.BlockKeep.Render(Count(step.Changes.Kept)),
		s.BlockRebuild.Render(Count(step.Changes.Rebuilt)),
		s.BlockRemove.Render(Count(step.Changes.Removed)),
		Count(step.Blocks), plural(step.Blocks, "block", "blocks"))
	if step.Strategy == stream.StrategyFull && step.SkipReason != incremental.SkipNone {
		line += s.Dim.Render(" (" + step.SkipReason.String() + ")")
	}
	if step.Diverged {
		line += " " + s.Failure.Render("diverged")
	}
	return line + "\n"
}
