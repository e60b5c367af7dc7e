package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/pkg/config"
)

type parseFlags struct {
	format string
}

func newParseCommand(global *globalFlags) *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Print the block tree of a Markdown file",
		Long: `Parse a Markdown file in one pass and print its block tree together
with the math context, the table that maps each math identifier to its
LaTeX source.

Use "-" to read from standard input.

Examples:
  mdstream parse README.md
  mdstream parse --format json README.md
  echo '# Hi $x$' | mdstream parse -`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, global, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, yaml")

	return cmd
}

func runParse(cmd *cobra.Command, global *globalFlags, flags *parseFlags, path string) error {
	format, err := parseOutputFormat(flags.format)
	if err != nil {
		return err
	}

	set, err := loadSettings(cmd, global, nil)
	if err != nil {
		return err
	}

	text, name, err := readInput(cmd, path)
	if err != nil {
		return err
	}

	parser := set.parser()
	view := newDocumentView(name, parser.Flavor(), parser.Parse(text))

	out := cmd.OutOrStdout()
	if format != config.FormatText {
		return writeStructured(out, format, view)
	}
	return writeText(out, renderTree(stylesFor(global, out), view))
}

func writeText(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
