package runner

import (
	"time"

	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/replay"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// FileOutcome is the replay of one file.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Report is the replay report. Nil when Error is set.
	Report *replay.Report

	// Skipped is true when the file changed while it was replayed, so the
	// report describes content that no longer exists.
	Skipped bool

	// Error is set if the file could not be read or replayed.
	Error error
}

// Diverged reports whether the replay disagreed with a full parse.
func (o FileOutcome) Diverged() bool {
	return o.Report != nil && (o.Report.Mismatched > 0 || !o.Report.Converged)
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files replayed to the end.
	FilesProcessed int

	// FilesSkipped is the number of files modified during their replay.
	FilesSkipped int

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int

	// FilesDiverged is the number of files whose streamed parse differed
	// from a full parse.
	FilesDiverged int

	// Bytes is the total size of the replayed files.
	Bytes int

	// Steps is the total number of appends.
	Steps int

	// Strategies counts appends by the strategy that served them.
	Strategies map[stream.Strategy]int

	// Changes totals the block diff operations.
	Changes blockdiff.Summary

	// Mismatches is the number of steps that differed from a full parse.
	Mismatches int

	// Tokenized is the number of code blocks tokenized.
	Tokenized int

	// Duration is the time spent appending, summed over files.
	Duration time.Duration
}

// Result is the overall runner result.
type Result struct {
	// Files contains the outcome for each processed file.
	// Files are ordered deterministically (by path).
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasFailures reports whether any file failed or diverged.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesErrored > 0 || r.Stats.FilesDiverged > 0
}

// Incremental returns the fraction of all appends served without a full
// parse.
func (s Stats) Incremental() float64 {
	if s.Steps == 0 {
		return 0
	}
	cheap := s.Strategies[stream.StrategyFastPath] + s.Strategies[stream.StrategyIncremental]
	return float64(cheap) / float64(s.Steps)
}

// NewResult returns an empty result, for replays that do not come from Run
// such as text read from standard input.
func NewResult() *Result {
	return &Result{Stats: newStats()}
}

// Add records the outcome of one more file.
func (r *Result) Add(outcome FileOutcome) {
	r.Stats.FilesDiscovered++
	r.accumulate(outcome)
}

func newStats() Stats {
	return Stats{
		Strategies: make(map[stream.Strategy]int),
	}
}

// accumulate updates the result with a file outcome.
func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Report == nil {
		return
	}

	r.Stats.FilesProcessed++
	if outcome.Skipped {
		r.Stats.FilesSkipped++
	}
	if outcome.Diverged() {
		r.Stats.FilesDiverged++
	}

	report := outcome.Report
	r.Stats.Bytes += report.Bytes
	r.Stats.Steps += report.Steps
	for strategy, n := range report.Strategies {
		r.Stats.Strategies[strategy] += n
	}
	r.Stats.Changes.Kept += report.Changes.Kept
	r.Stats.Changes.Rebuilt += report.Changes.Rebuilt
	r.Stats.Changes.Removed += report.Changes.Removed
	r.Stats.Mismatches += report.Mismatched
	r.Stats.Tokenized += report.Tokenized
	r.Stats.Duration += report.Duration
}
