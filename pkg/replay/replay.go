// Package replay streams a finished document through a stream.Session in
// small chunks, the way a token-by-token producer would, and records which
// strategy served each append. With verification on, every intermediate
// parse is compared with a full parse of the same text.
package replay

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/highlight"
	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/mdast"
	"github.com/yaklabco/mdstream/pkg/stream"
)

// MaxMismatches is the number of divergent steps kept in a Report.
const MaxMismatches = 5

// Options controls a replay.
type Options struct {
	// Chunk is the number of bytes appended per step. Chunks are widened to
	// end on a rune boundary. Zero or less means one rune per step.
	Chunk int

	// Verify compares every step with a full parse.
	Verify bool

	// Session configures the session the text is streamed into.
	Session stream.Options

	// Highlighter, when set, tokenizes the code blocks each step rebuilds.
	Highlighter *highlight.Highlighter

	// OnStep, when set, is called after every append.
	OnStep func(Step)
}

// Step describes one append of a replay.
type Step struct {
	// Index is the zero-based index of the append.
	Index int

	// Offset is the length of the text after the append.
	Offset int

	// Strategy served the append.
	Strategy stream.Strategy

	// SkipReason is set when a full parse replaced an incremental one.
	SkipReason incremental.SkipReason

	// Changes counts the block diff operations of the append.
	Changes blockdiff.Summary

	// Blocks is the number of top-level blocks after the append.
	Blocks int

	// Diverged reports a mismatch with a full parse. Always false unless
	// Options.Verify is set.
	Diverged bool
}

// Mismatch records a step whose parse differs from a full parse.
type Mismatch struct {
	// Step is the zero-based index of the append.
	Step int

	// Offset is the length of the text after the append.
	Offset int

	// Strategy served the divergent append.
	Strategy stream.Strategy

	// Diff is a readable comparison; "-" lines are the full parse.
	Diff string
}

// Report summarizes one replay.
type Report struct {
	// Bytes is the length of the replayed text.
	Bytes int

	// Steps is the number of appends.
	Steps int

	// Strategies counts the appends served by each strategy.
	Strategies map[stream.Strategy]int

	// SkipReasons counts why full parses were needed.
	SkipReasons map[incremental.SkipReason]int

	// Changes totals the block diff operations of all steps.
	Changes blockdiff.Summary

	// Tokenized is the number of code blocks the highlighter had to tokenize.
	Tokenized int

	// Verified is the number of steps compared with a full parse.
	Verified int

	// Mismatched is the number of steps that differed from a full parse.
	// Only the first MaxMismatches are kept in Mismatches.
	Mismatched int
	Mismatches []Mismatch

	// Converged reports whether the final parse equals a full parse.
	Converged bool

	// Result is the final parse.
	Result mdast.ParseResult

	// Duration is the time spent appending, excluding verification.
	Duration time.Duration
}

// Incremental returns the fraction of appends served without a full parse.
func (r *Report) Incremental() float64 {
	if r == nil || r.Steps == 0 {
		return 0
	}
	cheap := r.Strategies[stream.StrategyFastPath] + r.Strategies[stream.StrategyIncremental]
	return float64(cheap) / float64(r.Steps)
}

// Run replays text through a new session backed by parser.
func Run(ctx context.Context, parser stream.Parser, text string, opts Options) (*Report, error) {
	logger := logging.FromContext(ctx)
	session := stream.NewSession(parser, opts.Session)

	report := &Report{
		Bytes:       len(text),
		Strategies:  make(map[stream.Strategy]int),
		SkipReasons: make(map[incremental.SkipReason]int),
	}

	for step, end := 0, 0; end < len(text); step++ {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("replay cancelled at byte %d: %w", end, err)
		}

		start := end
		end = chunkEnd(text, start, opts.Chunk)

		began := time.Now()
		update, err := session.Append(text[start:end])
		report.Duration += time.Since(began)
		if err != nil {
			return report, fmt.Errorf("append at byte %d: %w", start, err)
		}

		changes := report.record(update)
		if opts.Highlighter != nil {
			report.Tokenized += opts.Highlighter.Prefetch(update.Result.Document, update.Changes)
		}

		diverged := false
		if opts.Verify {
			report.Verified++
			if diff := compare(parser, text[:end], update.Result); diff != "" {
				diverged = true
				report.addMismatch(Mismatch{Step: step, Offset: end, Strategy: update.Strategy, Diff: diff})
			}
		}

		if opts.OnStep != nil {
			opts.OnStep(Step{
				Index:      step,
				Offset:     end,
				Strategy:   update.Strategy,
				SkipReason: update.SkipReason,
				Changes:    changes,
				Blocks:     len(update.Result.Document),
				Diverged:   diverged,
			})
		}
	}

	final := session.Snapshot()
	report.Result = final.Result
	report.Converged = compare(parser, text, final.Result) == ""

	logger.Debug("replay finished",
		logging.FieldBytes, report.Bytes,
		logging.FieldStep, report.Steps,
		logging.FieldBlocks, len(report.Result.Document),
	)

	return report, nil
}

func (r *Report) record(update stream.Update) blockdiff.Summary {
	r.Steps++
	r.Strategies[update.Strategy]++
	if update.Strategy == stream.StrategyFull {
		r.SkipReasons[update.SkipReason]++
	}

	s := blockdiff.Summarize(update.Changes)
	r.Changes.Kept += s.Kept
	r.Changes.Rebuilt += s.Rebuilt
	r.Changes.Removed += s.Removed
	return s
}

func (r *Report) addMismatch(m Mismatch) {
	r.Mismatched++
	if len(r.Mismatches) < MaxMismatches {
		r.Mismatches = append(r.Mismatches, m)
	}
}

// chunkEnd returns the end of the chunk starting at start, moved forward to
// the next rune boundary.
func chunkEnd(text string, start, chunk int) int {
	end := start + max(chunk, 1)
	if end >= len(text) {
		return len(text)
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return end
}

// compare returns a readable diff between got and a full parse of text, or
// "" when they are equal.
func compare(parser stream.Parser, text string, got mdast.ParseResult) string {
	want, _ := parser.ParseWithRanges(text)
	if want.Equal(got) {
		return ""
	}
	return Diff(want, got)
}

// Diff renders the difference between two parse results block by block.
func Diff(want, got mdast.ParseResult) string {
	opts := []cmp.Option{cmpopts.EquateEmpty()}

	diff := cmp.Diff(blockStrings(want.Document), blockStrings(got.Document), opts...)
	if mathDiff := cmp.Diff(want.Math, got.Math, opts...); mathDiff != "" {
		diff += "math:\n" + mathDiff
	}
	return diff
}

// blockStrings formats each block on its own so that cmp reports which
// blocks differ instead of treating the document as one value.
func blockStrings(doc []mdast.Block) []string {
	out := make([]string, len(doc))
	for i, b := range doc {
		out[i] = fmt.Sprintf("%+v", b)
	}
	return out
}
