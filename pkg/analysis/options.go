package analysis

// SortField specifies how to sort the per-file analysis.
type SortField string

const (
	// SortByPath sorts alphabetically by path.
	SortByPath SortField = "path"
	// SortByRatio sorts by the share of appends served without a full parse.
	SortByRatio SortField = "ratio"
	// SortBySize sorts by document size.
	SortBySize SortField = "size"
	// SortByDuration sorts by time spent appending.
	SortByDuration SortField = "duration"
)

// IsValid returns true if the sort field is valid.
func (s SortField) IsValid() bool {
	switch s {
	case SortByPath, SortByRatio, SortBySize, SortByDuration:
		return true
	default:
		return false
	}
}

// Options configures the Analyze function.
type Options struct {
	// IncludeFiles includes the per-file analysis.
	IncludeFiles bool

	// IncludeMismatches attaches the recorded mismatches to each file.
	IncludeMismatches bool

	// SortBy specifies how to sort Files.
	SortBy SortField

	// SortDesc sorts in descending order (highest first).
	SortDesc bool

	// WorkingDir is the directory to make paths relative to.
	// If empty, paths are kept as-is (typically absolute).
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		IncludeFiles:      true,
		IncludeMismatches: true,
		SortBy:            SortByPath,
	}
}
