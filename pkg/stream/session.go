// Package stream tracks one growing Markdown document.
//
// A Session holds the text seen so far together with its parse, and turns each
// appended chunk into an Update: the new blocks and the block diff a renderer
// needs to reuse its previous output. Each append is served by the cheapest
// strategy that is known to be correct: the plain-text fast path, an
// incremental reparse of the tail, or a full parse.
package stream

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdstream/internal/logging"
	"github.com/yaklabco/mdstream/pkg/blockdiff"
	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// ErrNotAppend is returned by Extend when the new text does not start with
// the session text.
var ErrNotAppend = errors.New("text does not extend the session")

// ErrTooLarge is returned when an append would grow the session past
// Options.MaxBytes.
var ErrTooLarge = errors.New("document exceeds size limit")

// Strategy names how an update was computed.
type Strategy int

const (
	// StrategyNone means nothing was parsed because nothing changed.
	StrategyNone Strategy = iota

	// StrategyFastPath means plain text was appended to the last paragraph.
	StrategyFastPath

	// StrategyIncremental means only the tail of the document was reparsed.
	StrategyIncremental

	// StrategyFull means the whole document was parsed.
	StrategyFull
)

// String returns the strategy name used in logs and CLI output.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyFastPath:
		return "fast-path"
	case StrategyIncremental:
		return "incremental"
	case StrategyFull:
		return "full"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Parser is the full parser a session falls back to.
type Parser interface {
	incremental.Parser
}

// Options configures a Session.
type Options struct {
	// Incremental carries the tail window knobs.
	Incremental incremental.Options

	// DisableIncremental forces a full parse whenever the fast path does not
	// apply.
	DisableIncremental bool

	// DisableFastPath skips the plain-text fast path.
	DisableFastPath bool

	// MaxBytes bounds the session text. Zero means unlimited.
	MaxBytes int

	// Logger receives one debug entry per update. Nil disables logging.
	Logger *log.Logger
}

// Update describes the effect of one append or replace.
type Update struct {
	// Result is the parse of the whole session text after the update.
	Result mdast.ParseResult

	// Ranges are the root block ranges of the session text.
	Ranges []mdast.RootBlockRange

	// Changes turn the previous Result.Document into this one.
	Changes []blockdiff.Change

	// Strategy is the path that produced Result.
	Strategy Strategy

	// SkipReason explains why the incremental path was not used when
	// Strategy is StrategyFull.
	SkipReason incremental.SkipReason

	// StablePrefix is the number of leading blocks reused without reparsing.
	StablePrefix int
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Text   string
	Result mdast.ParseResult
	Ranges []mdast.RootBlockRange
}

// Session is the parse state of one streamed document. All methods are safe
// for concurrent use, but updates are applied in the order the calls acquire
// the session, so callers must still serialise appends to keep the text in
// order.
type Session struct {
	mu sync.Mutex

	parser Parser
	ctrl   *incremental.Controller
	opts   Options

	text   string
	result mdast.ParseResult
	ranges []mdast.RootBlockRange
}

// NewSession returns an empty session that parses with parser.
func NewSession(parser Parser, opts Options) *Session {
	return &Session{
		parser: parser,
		ctrl:   incremental.New(parser, opts.Incremental),
		opts:   opts,
		result: mdast.ParseResult{Math: map[int]string{}},
	}
}

// Append adds chunk to the end of the document.
func (s *Session) Append(chunk string) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.extend(s.text + chunk)
}

// Extend moves the session to newText, which must start with the current
// text. Producers that resend the whole message on every token use this
// instead of Append.
func (s *Session) Extend(newText string) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !strings.HasPrefix(newText, s.text) {
		return Update{}, ErrNotAppend
	}
	return s.extend(newText)
}

// Replace parses text from scratch, for edits that are not appends.
func (s *Session) Replace(text string) (Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSize(text); err != nil {
		return Update{}, err
	}

	result, ranges := s.parser.ParseWithRanges(text)
	return s.commit(text, result, ranges, StrategyFull, incremental.SkipNone, 0), nil
}

// Snapshot returns the current text and parse.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{Text: s.text, Result: s.result, Ranges: s.ranges}
}

// Len returns the length of the session text in bytes.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.text)
}

func (s *Session) checkSize(text string) error {
	if s.opts.MaxBytes > 0 && len(text) > s.opts.MaxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(text), s.opts.MaxBytes)
	}
	return nil
}

// extend applies newText, which is known to start with s.text. The caller
// holds s.mu.
func (s *Session) extend(newText string) (Update, error) {
	if err := s.checkSize(newText); err != nil {
		return Update{}, err
	}

	if newText == s.text {
		return s.commit(newText, s.result, s.ranges, StrategyNone, incremental.SkipNotGrowing, len(s.result.Document)), nil
	}

	reason := incremental.SkipNotPlainAppend
	if !s.opts.DisableFastPath {
		var blocks []mdast.Block
		blocks, reason = incremental.AppendPlainText(s.text, newText, s.result.Document, s.ranges)
		if reason == incremental.SkipNone {
			result := mdast.ParseResult{Document: blocks, Math: s.result.Math}
			ranges := incremental.ExtendLastRange(s.ranges, len(newText))
			return s.commit(newText, result, ranges, StrategyFastPath, reason, len(blocks)-1), nil
		}
	}

	if !s.opts.DisableIncremental {
		var tail *incremental.Result
		tail, reason = s.ctrl.Parse(s.text, newText, s.result.Document, s.ranges)
		if tail != nil {
			result := tail.Merge(s.result.Document)
			return s.commit(newText, result, tail.Ranges, StrategyIncremental, reason, tail.StablePrefixBlockCount), nil
		}
	}

	result, ranges := s.parser.ParseWithRanges(newText)
	return s.commit(newText, result, ranges, StrategyFull, reason, 0), nil
}

// commit installs the new state and returns the update describing it. The
// first stable blocks are known to be unchanged.
func (s *Session) commit(
	text string,
	result mdast.ParseResult,
	ranges []mdast.RootBlockRange,
	strategy Strategy,
	reason incremental.SkipReason,
	stable int,
) Update {
	changes := blockdiff.DiffAfter(s.result.Document, result.Document, stable)

	update := Update{
		Result:       result,
		Ranges:       ranges,
		Changes:      changes,
		Strategy:     strategy,
		StablePrefix: stable,
	}
	if strategy == StrategyFull {
		update.SkipReason = reason
	}

	if s.opts.Logger != nil {
		summary := blockdiff.Summarize(changes)
		fields := []any{
			logging.FieldStrategy, strategy.String(),
			logging.FieldBytes, len(text),
			logging.FieldStableBlocks, stable,
			logging.FieldTailBlocks, len(result.Document) - stable,
			logging.FieldChanges, summary.Rebuilt + summary.Removed,
		}
		if update.SkipReason != incremental.SkipNone {
			fields = append(fields, logging.FieldReason, update.SkipReason.String())
		}
		s.opts.Logger.Debug("document updated", fields...)
	}

	s.text = text
	s.result = result
	s.ranges = ranges
	return update
}
