package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

type rangesFlags struct {
	format string
	at     string
}

// rangeView is one root block range with line and column positions.
type rangeView struct {
	Index        int    `json:"index" yaml:"index"`
	Kind         string `json:"kind" yaml:"kind"`
	StartOffset  int    `json:"startOffset" yaml:"startOffset"`
	EndOffset    int    `json:"endOffset" yaml:"endOffset"`
	StartLine    int    `json:"startLine" yaml:"startLine"`
	StartColumn  int    `json:"startColumn" yaml:"startColumn"`
	EndLine      int    `json:"endLine" yaml:"endLine"`
	EndColumn    int    `json:"endColumn" yaml:"endColumn"`
	OutputBlocks int    `json:"outputBlocks" yaml:"outputBlocks"`
	References   bool   `json:"definesReferences" yaml:"definesReferences"`
}

func newRangesCommand(global *globalFlags) *cobra.Command {
	flags := &rangesFlags{}

	cmd := &cobra.Command{
		Use:   "ranges FILE",
		Short: "Print the source span of every top-level block",
		Long: `Print the root block ranges of a Markdown file: for every top-level
block the grammar produced, its byte span in the source, its line and
column span, and the number of tree blocks it was converted into.

These are the ranges incremental parsing splits the document on. Blocks
made only of link reference definitions produce no tree blocks and are
marked "refs"; while any block defines references the document is always
parsed in full.

With --at LINE:COL only the block containing that position is printed, or
the block before it when the position falls between blocks.

Use "-" to read from standard input.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRanges(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")
	cmd.Flags().StringVar(&flags.at, "at", "", "print only the block at `LINE:COL` (1-based)")

	return cmd
}

func runRanges(cmd *cobra.Command, global *globalFlags, flags *rangesFlags, path string) error {
	format, err := parseOutputFormat(flags.format)
	if err != nil {
		return err
	}

	var line, col int
	if flags.at != "" {
		if line, col, err = parseLineColumn(flags.at); err != nil {
			return err
		}
	}

	set, err := loadSettings(cmd, global, nil)
	if err != nil {
		return err
	}

	text, _, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	views := rangeViews(text, set.parser().ParseBlockRange(text))
	if flags.at != "" {
		views = viewAt(views, mdast.NewLineIndex(text).Offset(line, col))
	}

	out := cmd.OutOrStdout()
	if format != config.FormatText {
		return writeStructured(out, format, views)
	}
	return writeText(out, formatRanges(stylesFor(global, out), views))
}

func rangeViews(text string, ranges []mdast.RootBlockRange) []rangeView {
	index := mdast.NewLineIndex(text)
	views := make([]rangeView, 0, len(ranges))
	for i, r := range ranges {
		start := index.Position(r.Range.StartOffset)
		end := index.Position(r.Range.EndOffset)
		views = append(views, rangeView{
			Index:        i,
			Kind:         r.Kind,
			StartOffset:  r.Range.StartOffset,
			EndOffset:    r.Range.EndOffset,
			StartLine:    start.Line,
			StartColumn:  start.Column,
			EndLine:      end.Line,
			EndColumn:    end.Column,
			OutputBlocks: r.OutputBlockCount,
			References:   r.DefinesReferences,
		})
	}
	return views
}

// parseLineColumn parses a 1-based "LINE:COL" position. The column may be
// omitted.
func parseLineColumn(s string) (int, int, error) {
	lineText, colText, hasCol := strings.Cut(s, ":")
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return 0, 0, usageErrorf("invalid --at %q: want LINE:COL", s)
	}
	if !hasCol {
		return line, 1, nil
	}
	col, err := strconv.Atoi(colText)
	if err != nil || col < 1 {
		return 0, 0, usageErrorf("invalid --at %q: want LINE:COL", s)
	}
	return line, col, nil
}

// viewAt keeps the last view starting at or before offset.
func viewAt(views []rangeView, offset int) []rangeView {
	for i := len(views) - 1; i >= 0; i-- {
		if views[i].StartOffset <= offset {
			return views[i : i+1]
		}
	}
	return views[:0]
}

func formatRanges(styles *pretty.Styles, views []rangeView) string {
	if len(views) == 0 {
		return "No blocks\n"
	}

	kindWidth := len("KIND")
	for _, v := range views {
		kindWidth = max(kindWidth, len(v.Kind))
	}

	var builder strings.Builder
	builder.WriteString(styles.TableHeader.Render(fmt.Sprintf("%3s  %-*s  %-13s  %-13s  %s",
		"#", kindWidth, "KIND", "BYTES", "LINES", "BLOCKS")))
	builder.WriteString("\n")
	for _, v := range views {
		builder.WriteString(fmt.Sprintf("%3d  %s  %s  %s  %d",
			v.Index,
			styles.Bold.Render(fmt.Sprintf("%-*s", kindWidth, v.Kind)),
			styles.Location.Render(fmt.Sprintf("%-13s", fmt.Sprintf("%d-%d", v.StartOffset, v.EndOffset))),
			styles.Dim.Render(fmt.Sprintf("%-13s", fmt.Sprintf("%d:%d-%d:%d", v.StartLine, v.StartColumn, v.EndLine, v.EndColumn))),
			v.OutputBlocks))
		if v.References {
			builder.WriteString(" " + styles.Warning.Render("refs"))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}
