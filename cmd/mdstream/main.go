// Package main is the entry point for the mdstream CLI.
package main

import (
	"errors"
	"os"

	"github.com/yaklabco/mdstream/internal/cli"
	"github.com/yaklabco/mdstream/internal/logging"
)

// Build-time variables set by GoReleaser via ldflags.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	if err := rootCmd.Execute(); err != nil {
		// Failures found by a replay or diff have already been reported.
		if !errors.Is(err, cli.ErrReplayFailed) && !errors.Is(err, cli.ErrDocumentsDiffer) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCode(err)
	}

	return cli.ExitSuccess
}
