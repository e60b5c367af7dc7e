package cli

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdstream/pkg/fsutil"
	"github.com/yaklabco/mdstream/pkg/runner"
)

// Exit codes for mdstream.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitFailures indicates a replay diverged from a full parse or a file
	// could not be replayed.
	ExitFailures = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrReplayFailed is returned when a replay found failures. The failures have
// already been reported, so callers only need the exit code.
var ErrReplayFailed = errors.New("replay failed")

// exitError attaches an exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

func usageErrorf(format string, args ...any) error {
	return withExitCode(ExitInvalidUsage, fmt.Errorf(format, args...))
}

func configError(err error) error {
	return withExitCode(ExitConfigError, fmt.Errorf("load configuration: %w", err))
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var coded *exitError
	switch {
	case errors.As(err, &coded):
		return coded.code
	case errors.Is(err, ErrReplayFailed):
		return ExitFailures
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrNotText):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// ExitCodeFromResult determines the exit code of a replay run.
func ExitCodeFromResult(result *runner.Result) int {
	if result.HasFailures() {
		return ExitFailures
	}
	return ExitSuccess
}
