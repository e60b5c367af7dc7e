package reporter

import (
	"io"
	"os"

	"github.com/yaklabco/mdstream/pkg/analysis"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter is the destination for errors (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// ShowMismatches prints the diff of every recorded divergent step.
	ShowMismatches bool

	// Verbose lists every file, not only the ones that failed.
	Verbose bool

	// Compact uses compact/minified output where applicable.
	Compact bool

	// SortBy orders the per-file output.
	SortBy analysis.SortField

	// SortDesc reverses SortBy.
	SortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:         os.Stdout,
		ErrorWriter:    os.Stderr,
		Format:         FormatText,
		Color:          "auto",
		ShowSummary:    true,
		ShowMismatches: true,
		SortBy:         analysis.SortByPath,
	}
}

func (o Options) analysisOptions() analysis.Options {
	sortBy := o.SortBy
	if sortBy == "" {
		sortBy = analysis.SortByPath
	}
	return analysis.Options{
		IncludeFiles:      true,
		IncludeMismatches: o.ShowMismatches,
		SortBy:            sortBy,
		SortDesc:          o.SortDesc,
		WorkingDir:        o.WorkingDir,
	}
}
