package mdast

// SourceRange represents a byte range in the source content.
type SourceRange struct {
	// StartOffset is the byte index where the range begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the range ends (exclusive).
	EndOffset int
}

// Len returns the length of the range in bytes.
func (r SourceRange) Len() int {
	return r.EndOffset - r.StartOffset
}

// IsEmpty returns true if the range has zero length.
func (r SourceRange) IsEmpty() bool {
	return r.StartOffset == r.EndOffset
}

// Contains returns true if the given offset is within this range.
func (r SourceRange) Contains(offset int) bool {
	return offset >= r.StartOffset && offset < r.EndOffset
}

// Position represents a 1-based line and column in a text.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has valid (positive) values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// RootBlockRange locates one top-level grammar block in the text it was
// parsed from.
type RootBlockRange struct {
	// Kind is the grammar's name for the block ("Paragraph", "List", ...).
	Kind string

	// Range is the block's [start, end) span. Trailing blank lines between
	// blocks are not part of either block.
	Range SourceRange

	// OutputBlockCount is the number of model blocks the grammar block was
	// converted into. It is 1 except where the conversion splits or drops
	// blocks, and 0 for a block made only of link reference definitions.
	OutputBlockCount int

	// DefinesReferences is set when the block, or a block nested in it,
	// holds link reference definitions. Definitions apply to the whole
	// document, so such a block cannot be parsed apart from the rest.
	DefinesReferences bool
}

// Shift returns the range moved by delta bytes.
func (r RootBlockRange) Shift(delta int) RootBlockRange {
	r.Range.StartOffset += delta
	r.Range.EndOffset += delta
	return r
}

// DefinesReferences reports whether any of ranges holds link reference
// definitions.
func DefinesReferences(ranges []RootBlockRange) bool {
	for _, r := range ranges {
		if r.DefinesReferences {
			return true
		}
	}
	return false
}

// ShiftRanges returns a copy of ranges with every offset moved by delta bytes.
func ShiftRanges(ranges []RootBlockRange, delta int) []RootBlockRange {
	out := make([]RootBlockRange, len(ranges))
	for i, r := range ranges {
		out[i] = r.Shift(delta)
	}
	return out
}
