package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// labelWidth bounds the block preview printed next to each change.
const labelWidth = 48

// ErrDocumentsDiffer is returned by diff --exit-code when a block changed.
var ErrDocumentsDiffer = errors.New("documents differ")

type diffFlags struct {
	format   string
	exitCode bool
}

// changeView is one block diff operation with the blocks it refers to.
type changeView struct {
	Op       string `json:"op" yaml:"op"`
	OldIndex *int   `json:"oldIndex,omitempty" yaml:"oldIndex,omitempty"`
	NewIndex *int   `json:"newIndex,omitempty" yaml:"newIndex,omitempty"`
	Kind     string `json:"kind" yaml:"kind"`
	Preview  string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

type diffView struct {
	Old     string       `json:"old" yaml:"old"`
	New     string       `json:"new" yaml:"new"`
	Changes []changeView `json:"changes" yaml:"changes"`
	Kept    int          `json:"kept" yaml:"kept"`
	Rebuilt int          `json:"rebuilt" yaml:"rebuilt"`
	Removed int          `json:"removed" yaml:"removed"`
}

func newDiffCommand(global *globalFlags) *cobra.Command {
	flags := &diffFlags{}

	cmd := &cobra.Command{
		Use:   "diff OLD NEW",
		Short: "Compare two Markdown documents block by block",
		Long: `Parse two Markdown files and print the keep/rebuild/remove operations
that turn the blocks of OLD into the blocks of NEW. This is the diff a
streaming renderer receives with every update.

Either file may be "-" to read from standard input.

Examples:
  mdstream diff draft.md final.md
  mdstream diff --exit-code before.md after.md`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, global, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")
	cmd.Flags().BoolVar(&flags.exitCode, "exit-code", false, "exit with status 1 when any block changed")

	return cmd
}

func runDiff(cmd *cobra.Command, global *globalFlags, flags *diffFlags, oldPath, newPath string) error {
	format, err := parseOutputFormat(flags.format)
	if err != nil {
		return err
	}
	if oldPath == stdinPath && newPath == stdinPath {
		return usageErrorf("only one of OLD and NEW can be read from stdin")
	}

	set, err := loadSettings(cmd, global, nil)
	if err != nil {
		return err
	}

	oldText, oldName, err := readInput(cmd, oldPath)
	if err != nil {
		return err
	}
	newText, newName, err := readInput(cmd, newPath)
	if err != nil {
		return err
	}

	parser := set.parser()
	oldDoc := parser.Parse(oldText).Document
	newDoc := parser.Parse(newText).Document

	changes := blockdiff.Diff(oldDoc, newDoc)
	summary := blockdiff.Summarize(changes)

	out := cmd.OutOrStdout()
	if format != config.FormatText {
		view := diffView{
			Old:     oldName,
			New:     newName,
			Changes: changeViews(changes, oldDoc, newDoc),
			Kept:    summary.Kept,
			Rebuilt: summary.Rebuilt,
			Removed: summary.Removed,
		}
		err = writeStructured(out, format, view)
	} else {
		styles := stylesFor(global, out)
		var builder strings.Builder
		builder.WriteString(styles.DiffHeader.Render("--- "+oldName) + "\n")
		builder.WriteString(styles.DiffHeader.Render("+++ "+newName) + "\n")
		for _, c := range changes {
			builder.WriteString(styles.FormatChange(c, changeLabel(c, oldDoc, newDoc)))
		}
		builder.WriteString(styles.FormatChangeSummary(summary))
		err = writeText(out, builder.String())
	}
	if err != nil {
		return err
	}

	if flags.exitCode && !summary.Unchanged() {
		return withExitCode(ExitFailures, ErrDocumentsDiffer)
	}
	return nil
}

// changedBlock returns the block a change describes: the new block for keep
// and rebuild, the old block for remove.
func changedBlock(c blockdiff.Change, oldDoc, newDoc []mdast.Block) mdast.Block {
	if c.Op == blockdiff.OpRemove {
		return oldDoc[c.OldIndex]
	}
	return newDoc[c.NewIndex]
}

func changeViews(changes []blockdiff.Change, oldDoc, newDoc []mdast.Block) []changeView {
	views := make([]changeView, 0, len(changes))
	for _, c := range changes {
		b := changedBlock(c, oldDoc, newDoc)
		view := changeView{Op: c.Op.String(), Kind: b.Kind.String(), Preview: blockPreview(b)}
		if c.OldIndex >= 0 {
			view.OldIndex = &c.OldIndex
		}
		if c.NewIndex >= 0 {
			view.NewIndex = &c.NewIndex
		}
		views = append(views, view)
	}
	return views
}

func changeLabel(c blockdiff.Change, oldDoc, newDoc []mdast.Block) string {
	b := changedBlock(c, oldDoc, newDoc)
	preview := blockPreview(b)
	if preview == "" {
		return b.Kind.String()
	}
	return b.Kind.String() + " " + preview
}

// blockPreview returns the first line of text of a block, shortened to
// labelWidth runes.
func blockPreview(b mdast.Block) string {
	var text string
	mdast.Walk(b, func(n mdast.Node) bool {
		if text != "" {
			return false
		}
		switch node := n.(type) {
		case mdast.Block:
			if node.Kind == mdast.BlockCode {
				text = node.Code
			} else if len(node.Inlines) > 0 {
				text = mdast.PlainText(node.Inlines)
			}
		case mdast.TableCell:
			text = mdast.PlainText(node.Inlines)
		}
		return text == ""
	})

	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if runes := []rune(text); len(runes) > labelWidth {
		text = string(runes[:labelWidth-1]) + "…"
	}
	return text
}
