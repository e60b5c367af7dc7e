// Package cli provides the Cobra command structure for mdstream.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	debug      bool
	configPath string
	color      string
	logLevel   string
	flavor     string
}

// NewRootCommand creates the root mdstream command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "mdstream",
		Short: "Incremental Markdown parsing for streamed text",
		Long: `mdstream parses Markdown that arrives a piece at a time, such as the
output of a language model, without reparsing the whole document on
every append.

Each append is served by the cheapest correct strategy: a plain-text
fast path, an incremental reparse of the trailing blocks, or a full
parse. Every update comes with a keep/rebuild/remove block diff so a
renderer can reuse its previous output.

The subcommands expose the parser on files: parse and ranges show the
block tree and its source spans, diff compares two documents block by
block, and replay streams files through a session and checks the
result against a full parse.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := flags.logLevel
			if flags.debug {
				level = "debug"
			}
			if level != "" {
				if !logging.IsValidLevel(level) {
					return usageErrorf("invalid log level %q; must be one of: debug, info, warn, error", level)
				}
				logging.SetLevel(level)
			}
			cmd.SetContext(logging.WithLogger(cmd.Context(), logging.Default()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "",
		"log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flags.color, "color", "auto",
		"colorize output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&flags.flavor, "flavor", "",
		"Markdown flavor: commonmark, gfm (default from config)")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withExitCode(ExitInvalidUsage, err)
	})

	// Add subcommands.
	rootCmd.AddCommand(newParseCommand(flags))
	rootCmd.AddCommand(newRangesCommand(flags))
	rootCmd.AddCommand(newDiffCommand(flags))
	rootCmd.AddCommand(newReplayCommand(flags))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newConfigCommand(flags))
	rootCmd.AddCommand(newVersionCommand(info))

	installHelp(rootCmd, flags)

	return rootCmd
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return withExitCode(ExitInvalidUsage, validate(cmd, args))
	}
}
