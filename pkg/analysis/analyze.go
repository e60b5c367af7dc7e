package analysis

import (
	"cmp"
	"path/filepath"
	"slices"
	"time"

	"github.com/yaklabco/mdstream/pkg/runner"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// ReportVersion is the current report format version.
const ReportVersion = "1.0.0"

// strategyOrder is the order in which ByStrategy lists strategies.
var strategyOrder = []stream.Strategy{
	stream.StrategyFastPath,
	stream.StrategyIncremental,
	stream.StrategyFull,
	stream.StrategyNone,
}

// makeRelativePath converts an absolute path to a relative path from workDir.
// If workDir is empty or conversion fails, returns the original path.
func makeRelativePath(absPath, workDir string) string {
	if workDir == "" {
		return absPath
	}
	relPath, err := filepath.Rel(workDir, absPath)
	if err != nil {
		return absPath
	}
	return relPath
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

// Analyze transforms a runner.Result into a Report.
func Analyze(result *runner.Result, opts Options) *Report {
	report := &Report{
		Version:   ReportVersion,
		Timestamp: time.Now(),
	}

	if result == nil {
		return report
	}

	stats := result.Stats
	report.Totals = Totals{
		Files:         len(result.Files),
		FilesReplayed: stats.FilesProcessed,
		FilesChanged:  stats.FilesSkipped,
		FilesErrored:  stats.FilesErrored,
		FilesDiverged: stats.FilesDiverged,
		Bytes:         stats.Bytes,
		Steps:         stats.Steps,
		Incremental:   stats.Incremental(),
		Kept:          stats.Changes.Kept,
		Rebuilt:       stats.Changes.Rebuilt,
		Removed:       stats.Changes.Removed,
		Mismatches:    stats.Mismatches,
		Tokenized:     stats.Tokenized,
		DurationMS:    milliseconds(stats.Duration),
	}

	for _, strategy := range strategyOrder {
		if n := stats.Strategies[strategy]; n > 0 {
			report.ByStrategy = append(report.ByStrategy, StrategyAnalysis{
				Strategy: strategy.String(),
				Steps:    n,
				Share:    ratio(n, stats.Steps),
			})
		}
	}

	skips := make(map[string]*SkipAnalysis)
	for _, file := range result.Files {
		displayPath := makeRelativePath(file.Path, opts.WorkingDir)

		if opts.IncludeFiles {
			report.Files = append(report.Files, analyzeFile(displayPath, file, opts))
		}

		if file.Report == nil {
			continue
		}
		for reason, n := range file.Report.SkipReasons {
			name := reason.String()
			entry, ok := skips[name]
			if !ok {
				entry = &SkipAnalysis{Reason: name}
				skips[name] = entry
			}
			entry.Count += n
			entry.Files = append(entry.Files, displayPath)
		}
	}

	for _, entry := range skips {
		slices.Sort(entry.Files)
		report.BySkipReason = append(report.BySkipReason, *entry)
	}
	slices.SortFunc(report.BySkipReason, func(left, right SkipAnalysis) int {
		if c := cmp.Compare(right.Count, left.Count); c != 0 {
			return c
		}
		return cmp.Compare(left.Reason, right.Reason)
	})

	sortFileAnalysis(report.Files, opts.SortBy, opts.SortDesc)

	return report
}

func analyzeFile(path string, file runner.FileOutcome, opts Options) FileAnalysis {
	fa := FileAnalysis{Path: path, Status: StatusOK}

	switch {
	case file.Error != nil:
		fa.Status = StatusError
		fa.Error = file.Error.Error()
	case file.Diverged():
		fa.Status = StatusDiverged
	case file.Skipped:
		fa.Status = StatusChanged
	}

	report := file.Report
	if report == nil {
		return fa
	}

	fa.Bytes = report.Bytes
	fa.Steps = report.Steps
	fa.FastPath = report.Strategies[stream.StrategyFastPath]
	fa.Incremental = report.Strategies[stream.StrategyIncremental]
	fa.Full = report.Strategies[stream.StrategyFull]
	fa.Unchanged = report.Strategies[stream.StrategyNone]
	fa.Ratio = report.Incremental()
	fa.Mismatches = report.Mismatched
	fa.DurationMS = milliseconds(report.Duration)

	if opts.IncludeMismatches {
		for _, m := range report.Mismatches {
			fa.Divergences = append(fa.Divergences, MismatchEntry{
				Step:     m.Step,
				Offset:   m.Offset,
				Strategy: m.Strategy.String(),
				Diff:     m.Diff,
			})
		}
	}

	return fa
}

func sortFileAnalysis(files []FileAnalysis, sortBy SortField, desc bool) {
	slices.SortStableFunc(files, func(left, right FileAnalysis) int {
		var result int
		switch sortBy {
		case SortByRatio:
			result = cmp.Compare(left.Ratio, right.Ratio)
		case SortBySize:
			result = cmp.Compare(left.Bytes, right.Bytes)
		case SortByDuration:
			result = cmp.Compare(left.DurationMS, right.DurationMS)
		default: // SortByPath
			// Alphabetical sorting is always ascending (A-Z)
			return cmp.Compare(left.Path, right.Path)
		}
		if desc {
			result = -result
		}
		return result
	})
}
