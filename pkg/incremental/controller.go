// Package incremental reparses a growing Markdown document without starting
// over.
//
// A streamed document mostly grows at its end, so every top-level block
// except the last few parses the same way it did before the append. The
// Controller keeps those blocks, reparses only the tail of the text and
// splices the two together. AppendPlainText handles the cheapest case, plain
// words added to a trailing paragraph, without invoking the grammar at all.
//
// Neither path ever guesses: when the preconditions for reuse do not hold the
// call reports a SkipReason and the caller falls back to a full parse.
package incremental

import (
	"maps"
	"strings"

	"github.com/yaklabco/mdstream/pkg/mathindex"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// Parser is the full parser used for the tail.
type Parser interface {
	ParseWithRanges(src string) (mdast.ParseResult, []mdast.RootBlockRange)
}

// SkipReason explains why an incremental parse was not applicable.
type SkipReason int

const (
	// SkipNone means the incremental result is valid.
	SkipNone SkipReason = iota

	// SkipEmptyPrevious means there was no previous text to build on.
	SkipEmptyPrevious

	// SkipNotGrowing means the new text is not longer than the previous text.
	SkipNotGrowing

	// SkipNoRanges means the previous text has no top-level blocks.
	SkipNoRanges

	// SkipNothingStable means the tail window covers every block.
	SkipNothingStable

	// SkipPrefixChanged means the edit touched the presumed-stable prefix.
	SkipPrefixChanged

	// SkipReferenceDefinition means a block of the previous parse or of the
	// reparsed tail defines link references, which the grammar resolves
	// across blocks.
	SkipReferenceDefinition

	// SkipMathBoundary means a math span or fenced region straddles the
	// splice point.
	SkipMathBoundary

	// SkipNotPlainAppend means the fast path found Markdown syntax in the
	// appended text or a trailing block it cannot extend.
	SkipNotPlainAppend
)

// String returns a short description of the reason.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipEmptyPrevious:
		return "empty previous text"
	case SkipNotGrowing:
		return "text did not grow"
	case SkipNoRanges:
		return "no blocks"
	case SkipNothingStable:
		return "nothing stable"
	case SkipPrefixChanged:
		return "stable prefix changed"
	case SkipReferenceDefinition:
		return "link reference definition"
	case SkipMathBoundary:
		return "math or fence across splice point"
	case SkipNotPlainAppend:
		return "not a plain-text append"
	default:
		return "unknown"
	}
}

// Result is the outcome of an incremental parse.
type Result struct {
	// StablePrefixBlockCount is the number of leading previous blocks that
	// are kept unchanged.
	StablePrefixBlockCount int

	// Tail is the parse of the text after the stable prefix. Its math
	// identifiers continue after those of the prefix.
	Tail mdast.ParseResult

	// Ranges are the root block ranges of the whole new text: the prefix
	// ranges as given, then the tail ranges moved into new-text offsets.
	Ranges []mdast.RootBlockRange

	// TailStart is the byte offset in the new text where the tail begins.
	TailStart int
}

// Merge splices the tail onto the retained prefix of previous.
func (r *Result) Merge(previous []mdast.Block) mdast.ParseResult {
	k := min(r.StablePrefixBlockCount, len(previous))

	doc := make([]mdast.Block, 0, k+len(r.Tail.Document))
	doc = append(doc, previous[:k]...)
	doc = append(doc, r.Tail.Document...)

	math := mathindex.Context(previous[:k])
	maps.Copy(math, r.Tail.Math)

	return mdast.ParseResult{Document: doc, Math: math}
}

// Controller decides how much of a grown document must be reparsed.
// A Controller holds no per-document state and is safe for concurrent use
// when its Parser is.
type Controller struct {
	parser Parser
	opts   Options
}

// New creates a controller that reparses tails with parser.
func New(parser Parser, opts Options) *Controller {
	return &Controller{parser: parser, opts: opts.withDefaults()}
}

// Options returns the effective window knobs.
func (c *Controller) Options() Options {
	return c.opts
}

// Parse reparses newText given the parse of previousText. previousRanges may
// be nil, in which case they are recomputed from previousText.
//
// The result is nil when reuse is not safe; the reason says why. A non-nil
// result merged onto previousBlocks equals a full parse of newText.
func (c *Controller) Parse(
	previousText, newText string,
	previousBlocks []mdast.Block,
	previousRanges []mdast.RootBlockRange,
) (*Result, SkipReason) {
	if previousText == "" {
		return nil, SkipEmptyPrevious
	}
	if len(newText) <= len(previousText) {
		return nil, SkipNotGrowing
	}

	ranges := previousRanges
	if len(ranges) == 0 {
		_, ranges = c.parser.ParseWithRanges(previousText)
	}
	if len(ranges) == 0 {
		return nil, SkipNoRanges
	}
	if mdast.DefinesReferences(ranges) {
		return nil, SkipReferenceDefinition
	}

	window := c.opts.window(previousText, ranges)
	stable := len(ranges) - window
	if stable <= 0 {
		return nil, SkipNothingStable
	}

	prefixBlocks := 0
	for _, r := range ranges[:stable] {
		prefixBlocks += r.OutputBlockCount
	}
	prefixBlocks = min(prefixBlocks, len(previousBlocks))

	start := min(ranges[stable].Range.StartOffset, len(previousText))
	if !strings.HasPrefix(newText, previousText[:start]) {
		return nil, SkipPrefixChanged
	}
	if mathindex.Extract(newText, 0).Crosses(start) {
		return nil, SkipMathBoundary
	}

	tail, tailRanges := c.parser.ParseWithRanges(newText[start:])
	if mdast.DefinesReferences(tailRanges) {
		// The stable prefix may use the new definitions.
		return nil, SkipReferenceDefinition
	}
	tail = mathindex.ShiftIdentifiers(tail, mathindex.MaxIdentifier(previousBlocks[:prefixBlocks])+1)

	merged := make([]mdast.RootBlockRange, 0, stable+len(tailRanges))
	merged = append(merged, ranges[:stable]...)
	merged = append(merged, mdast.ShiftRanges(tailRanges, start)...)

	return &Result{
		StablePrefixBlockCount: prefixBlocks,
		Tail:                   tail,
		Ranges:                 merged,
		TailStart:              start,
	}, SkipNone
}

// ParseIncremental runs a controller with default options and returns nil
// when incremental parsing is not applicable.
func ParseIncremental(
	parser Parser,
	previousText, newText string,
	previousBlocks []mdast.Block,
	previousRanges []mdast.RootBlockRange,
) *Result {
	result, _ := New(parser, Options{}).Parse(previousText, newText, previousBlocks, previousRanges)
	return result
}
