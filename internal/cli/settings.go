package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/mdstream/internal/configloader"
	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/config"
	"github.com/yaklabco/mdstream/pkg/fsutil"
	"github.com/yaklabco/mdstream/pkg/highlight"
	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/parser/goldmark"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// stdinPath names standard input on the command line.
const stdinPath = "-"

// stdinName names standard input in output and errors.
const stdinName = "<stdin>"

// ErrNoInput is returned when "-" is given but standard input is a terminal.
var ErrNoInput = errors.New("no input on stdin")

// settings is the resolved configuration of one command invocation.
type settings struct {
	cfg     *config.Config
	workDir string
	loaded  *configloader.LoadResult
}

// loadSettings resolves the configuration for cmd. overrides carries values
// from command-specific flags; the global --flavor flag is applied on top.
func loadSettings(cmd *cobra.Command, flags *globalFlags, overrides *config.Config) (*settings, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.FromContext(ctx)

	if overrides == nil {
		overrides = &config.Config{}
	}
	if flags.flavor != "" {
		overrides.Flavor = config.Flavor(flags.flavor)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loaded, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: flags.configPath,
		CLIConfig:    overrides,
	})
	if err != nil {
		return nil, configError(err)
	}

	for _, warning := range loaded.Warnings {
		logger.Warn(warning)
	}
	if len(loaded.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", logging.FieldFiles, loaded.LoadedFrom)
	}

	cfg := loaded.Config
	if !flags.debug && flags.logLevel == "" && cfg.LogLevel != "" {
		logger.SetLevel(logging.ParseLevel(cfg.LogLevel))
	}

	logger.Debug("configuration loaded",
		logging.FieldFlavor, cfg.Flavor,
		"incremental", cfg.IncrementalEnabled(),
		"fast_path", cfg.FastPathEnabled(),
	)

	return &settings{cfg: cfg, workDir: workDir, loaded: loaded}, nil
}

// parser returns the full parser for the configured flavor.
func (s *settings) parser() *goldmark.Parser {
	return goldmark.New(string(s.cfg.Flavor))
}

// sessionOptions translates the configuration into session options.
func (s *settings) sessionOptions(ctx context.Context) stream.Options {
	inc := s.cfg.Incremental
	return stream.Options{
		Incremental: incremental.Options{
			BaseWindow:          inc.BaseWindow,
			ComplexWindow:       inc.ComplexWindow,
			OpenConstructWindow: inc.OpenConstructWindow,
			SuffixScanBytes:     inc.SuffixScanBytes,
		},
		DisableIncremental: !s.cfg.IncrementalEnabled(),
		DisableFastPath:    !s.cfg.FastPathEnabled(),
		MaxBytes:           s.cfg.MaxBytes,
		Logger:             logging.FromContext(ctx),
	}
}

// highlighter returns a highlighter with a cache of the configured size.
func (s *settings) highlighter() *highlight.Highlighter {
	return highlight.New(highlight.NewCache(s.cfg.Highlight.CacheSize), s.cfg.DetectLanguage())
}

// readInput reads a Markdown file, or standard input when path is "-".
// It returns the name to show for the input.
func readInput(cmd *cobra.Command, path string) (text, name string, err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if path != stdinPath {
		text, _, err = fsutil.ReadText(ctx, path)
		return text, path, err
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", stdinName, withExitCode(ExitInvalidUsage, ErrNoInput)
	}
	text, err = fsutil.ReadTextFrom(ctx, in, stdinName)
	return text, stdinName, err
}
