package analysis

import "time"

// Status values of a FileAnalysis.
const (
	StatusOK       = "ok"
	StatusDiverged = "diverged"
	StatusChanged  = "changed"
	StatusError    = "error"
)

// Report contains pre-computed views of replay results.
// Computed once by Analyze(), used by all renderers.
type Report struct {
	// Files holds one entry per replayed file.
	Files []FileAnalysis `json:"files,omitempty" yaml:"files,omitempty"`

	// ByStrategy counts appends per strategy, in strategy order.
	ByStrategy []StrategyAnalysis `json:"byStrategy,omitempty" yaml:"byStrategy,omitempty"`

	// BySkipReason counts full-parse fallbacks per reason, most frequent first.
	BySkipReason []SkipAnalysis `json:"bySkipReason,omitempty" yaml:"bySkipReason,omitempty"`

	// Totals contains aggregate statistics.
	Totals Totals `json:"summary" yaml:"summary"`

	// Version is the report format version.
	Version string `json:"version" yaml:"version"`

	// Timestamp is when the analysis was performed.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Totals contains aggregate statistics for the report.
type Totals struct {
	Files         int     `json:"files" yaml:"files"`
	FilesReplayed int     `json:"filesReplayed" yaml:"filesReplayed"`
	FilesChanged  int     `json:"filesChanged" yaml:"filesChanged"`
	FilesErrored  int     `json:"filesErrored" yaml:"filesErrored"`
	FilesDiverged int     `json:"filesDiverged" yaml:"filesDiverged"`
	Bytes         int     `json:"bytes" yaml:"bytes"`
	Steps         int     `json:"steps" yaml:"steps"`
	Incremental   float64 `json:"incrementalRatio" yaml:"incrementalRatio"`
	Kept          int     `json:"blocksKept" yaml:"blocksKept"`
	Rebuilt       int     `json:"blocksRebuilt" yaml:"blocksRebuilt"`
	Removed       int     `json:"blocksRemoved" yaml:"blocksRemoved"`
	Mismatches    int     `json:"mismatches" yaml:"mismatches"`
	Tokenized     int     `json:"tokenized" yaml:"tokenized"`
	DurationMS    float64 `json:"durationMs" yaml:"durationMs"`
}

// HasFailures returns true if any file errored or diverged.
func (t Totals) HasFailures() bool {
	return t.FilesErrored > 0 || t.FilesDiverged > 0
}

// Failures returns the number of files that errored or diverged.
func (t Totals) Failures() int {
	return t.FilesErrored + t.FilesDiverged
}

// FileAnalysis contains the replay figures of a single file.
type FileAnalysis struct {
	Path        string          `json:"path" yaml:"path"`
	Status      string          `json:"status" yaml:"status"`
	Error       string          `json:"error,omitempty" yaml:"error,omitempty"`
	Bytes       int             `json:"bytes" yaml:"bytes"`
	Steps       int             `json:"steps" yaml:"steps"`
	FastPath    int             `json:"fastPath" yaml:"fastPath"`
	Incremental int             `json:"incremental" yaml:"incremental"`
	Full        int             `json:"full" yaml:"full"`
	Unchanged   int             `json:"unchanged" yaml:"unchanged"`
	Ratio       float64         `json:"incrementalRatio" yaml:"incrementalRatio"`
	Mismatches  int             `json:"mismatches" yaml:"mismatches"`
	DurationMS  float64         `json:"durationMs" yaml:"durationMs"`
	Divergences []MismatchEntry `json:"divergences,omitempty" yaml:"divergences,omitempty"`
}

// MismatchEntry is one step whose parse differed from a full parse.
type MismatchEntry struct {
	Step     int    `json:"step" yaml:"step"`
	Offset   int    `json:"offset" yaml:"offset"`
	Strategy string `json:"strategy" yaml:"strategy"`
	Diff     string `json:"diff" yaml:"diff"`
}

// StrategyAnalysis counts the appends one strategy served.
type StrategyAnalysis struct {
	Strategy string  `json:"strategy" yaml:"strategy"`
	Steps    int     `json:"steps" yaml:"steps"`
	Share    float64 `json:"share" yaml:"share"`
}

// SkipAnalysis counts the full parses caused by one reason.
type SkipAnalysis struct {
	Reason string   `json:"reason" yaml:"reason"`
	Count  int      `json:"count" yaml:"count"`
	Files  []string `json:"files,omitempty" yaml:"files,omitempty"`
}
