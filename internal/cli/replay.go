package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/analysis"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/replay"
	"github.com/yaklabco/mdstream/pkg/reporter"
	"github.com/yaklabco/mdstream/pkg/runner"
)

type replayFlags struct {
	format         string
	chunk          int
	verify         bool
	jobs           int
	include        []string
	exclude        []string
	followSymlinks bool
	steps          bool
	verbose        bool
	compact        bool
	sortBy         string
	sortDesc       bool
	noIncremental  bool
	noFastPath     bool
}

func newReplayCommand(global *globalFlags) *cobra.Command {
	flags := &replayFlags{}

	cmd := &cobra.Command{
		Use:   "replay [paths...]",
		Short: "Stream Markdown files through a parse session",
		Long:  replayLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args, global, flags)
		},
	}

	addReplayFlags(cmd, flags)

	return cmd
}

const replayLongDescription = `Replay Markdown files as if they arrived a chunk at a time.

Every file is appended to a fresh session in chunks of --chunk bytes,
and each append is served by the fast path, an incremental reparse or a
full parse. The report shows how often each strategy was used and why
full parses were needed. With --verify every step is compared with a
full parse of the same text, and any divergence fails the run.

By default, replays all .md and .markdown files in the current directory
and subdirectories. Use "-" to replay standard input.

Examples:
  mdstream replay                        # Replay current directory
  mdstream replay --verify docs/         # Check every step against a full parse
  mdstream replay --chunk 16 README.md   # Append 16 bytes at a time
  mdstream replay --steps README.md      # Print every append
  mdstream replay --format summary       # Strategy and fallback tables
  cat notes.md | mdstream replay -       # Replay standard input`

func addReplayFlags(cmd *cobra.Command, flags *replayFlags) {
	cmd.Flags().StringVar(&flags.format, "format", "text",
		"output format: "+strings.Join(reporter.Formats(), ", "))
	cmd.Flags().IntVar(&flags.chunk, "chunk", 0, "bytes appended per step (default from config, 1)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "compare every step with a full parse")
	cmd.Flags().IntVar(&flags.jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringSliceVar(&flags.include, "include", nil, "glob patterns of files to replay")
	cmd.Flags().StringSliceVar(&flags.exclude, "exclude", nil, "glob patterns to skip")
	cmd.Flags().BoolVar(&flags.followSymlinks, "follow-symlinks", false, "follow directory symlinks")
	cmd.Flags().BoolVar(&flags.steps, "steps", false, "print every append (single input only)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "list every file, not only failures")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().StringVar(&flags.sortBy, "sort", string(analysis.SortByPath),
		"order files by: path, ratio, size, duration")
	cmd.Flags().BoolVar(&flags.sortDesc, "desc", false, "reverse the --sort order")
	cmd.Flags().BoolVar(&flags.noIncremental, "no-incremental", false, "disable incremental reparsing")
	cmd.Flags().BoolVar(&flags.noFastPath, "no-fast-path", false, "disable the plain-text fast path")
}

func runReplay(cmd *cobra.Command, args []string, global *globalFlags, flags *replayFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := reporter.ParseFormat(flags.format)
	if err != nil {
		return withExitCode(ExitInvalidUsage, fmt.Errorf("invalid format: %w", err))
	}
	sortBy := analysis.SortField(flags.sortBy)
	if !sortBy.IsValid() {
		return usageErrorf("invalid sort field %q; must be one of: path, ratio, size, duration", flags.sortBy)
	}
	stdin := len(args) == 1 && args[0] == stdinPath
	if flags.steps {
		if len(args) != 1 {
			return usageErrorf("--steps needs exactly one file or -")
		}
		if format.Structured() || format == reporter.FormatSummary {
			return usageErrorf("--steps cannot be combined with --format %s", format)
		}
	}
	if !stdin && len(args) > 1 {
		for _, arg := range args {
			if arg == stdinPath {
				return usageErrorf("- cannot be combined with other paths")
			}
		}
	}

	// Only set values that were explicitly provided via CLI flags.
	overrides := &config.Config{Chunk: flags.chunk, Jobs: flags.jobs, Verify: flags.verify}
	if flags.noIncremental {
		overrides.Incremental.Enabled = config.Bool(false)
	}
	if flags.noFastPath {
		overrides.FastPath.Enabled = config.Bool(false)
	}

	set, err := loadSettings(cmd, global, overrides)
	if err != nil {
		return err
	}
	cfg := set.cfg
	logger := logging.FromContext(ctx)

	highlighter := set.highlighter()
	replayOpts := replay.Options{
		Chunk:       cfg.Chunk,
		Verify:      cfg.Verify,
		Session:     set.sessionOptions(ctx),
		Highlighter: highlighter,
	}

	out := cmd.OutOrStdout()
	if flags.steps {
		styles := stylesFor(global, out)
		replayOpts.OnStep = func(step replay.Step) {
			fmt.Fprint(out, styles.FormatStep(step))
		}
	}

	replayRunner := runner.New(set.parser())

	logger.Debug("starting replay",
		logging.FieldPaths, args,
		logging.FieldWorkingDir, set.workDir,
		logging.FieldChunk, cfg.Chunk,
		logging.FieldJobs, cfg.Jobs,
	)

	var result *runner.Result
	switch {
	case stdin:
		result, err = replayStdin(cmd, replayRunner, replayOpts)
	case flags.steps:
		result, err = replaySingle(ctx, replayRunner, args[0], replayOpts)
	default:
		result, err = replayRunner.Run(ctx, runner.Options{
			Paths:          args,
			WorkingDir:     set.workDir,
			Extensions:     runner.DefaultExtensions(),
			IncludeGlobs:   flags.include,
			ExcludeGlobs:   flags.exclude,
			FollowSymlinks: flags.followSymlinks,
			Jobs:           cfg.Jobs,
			Replay:         replayOpts,
		})
	}
	if err != nil {
		return fmt.Errorf("replay run failed: %w", err)
	}

	stats := highlighter.Cache().Stats()
	logger.Debug("highlight cache",
		logging.FieldCacheHits, stats.Hits,
		logging.FieldCacheSize, highlighter.Cache().Len(),
	)

	rep, err := reporter.New(reporter.Options{
		Writer:         out,
		ErrorWriter:    cmd.ErrOrStderr(),
		Format:         format,
		Color:          global.color,
		ShowSummary:    true,
		ShowMismatches: true,
		Verbose:        flags.verbose || flags.steps,
		Compact:        flags.compact,
		SortBy:         sortBy,
		SortDesc:       flags.sortDesc,
		WorkingDir:     set.workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrReplayFailed
	}
	return nil
}

// replayStdin replays standard input as a single document.
func replayStdin(cmd *cobra.Command, replayRunner *runner.Runner, opts replay.Options) (*runner.Result, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	text, name, err := readInput(cmd, stdinPath)
	if err != nil {
		return nil, err
	}

	outcome := runner.FileOutcome{Path: name}
	outcome.Report, outcome.Error = replay.Run(ctx, replayRunner.Parser, text, opts)
	if outcome.Error != nil {
		outcome.Report = nil
	}

	result := runner.NewResult()
	result.Add(outcome)
	return result, ctx.Err()
}

// replaySingle replays one file without discovery, so its steps are printed
// in order.
func replaySingle(ctx context.Context, replayRunner *runner.Runner, path string, opts replay.Options) (*runner.Result, error) {
	info, err := os.Stat(path)
	if err == nil && info.IsDir() {
		return nil, usageErrorf("--steps needs a file, %s is a directory", path)
	}

	result := runner.NewResult()
	result.Add(replayRunner.ReplayFile(ctx, path, opts))
	return result, ctx.Err()
}
