package mdast

import "sort"

// LineInfo describes one line of a text.
type LineInfo struct {
	// StartOffset is the byte index of the first byte of the line.
	StartOffset int

	// NewlineStart is the byte index where the line terminator begins
	// (len(text) for a final line without terminator).
	NewlineStart int

	// EndOffset is the byte index just past the line terminator.
	EndOffset int
}

// LineIndex maps between byte offsets and 1-based line/column positions.
// Build it once per text with NewLineIndex when converting repeatedly.
type LineIndex struct {
	size  int
	lines []LineInfo
}

// NewLineIndex scans text once and records where each line starts.
// It handles both LF and CRLF terminators. A text ending in a newline has a
// final empty line.
func NewLineIndex(text string) LineIndex {
	idx := LineIndex{size: len(text)}
	lineStart := 0

	for i := 0; i < len(text); i++ {
		if text[i] != '\n' {
			continue
		}
		newlineStart := i
		if i > 0 && text[i-1] == '\r' {
			newlineStart = i - 1
		}
		idx.lines = append(idx.lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    i + 1,
		})
		lineStart = i + 1
	}

	idx.lines = append(idx.lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return idx
}

// LineCount returns the number of lines, always at least one.
func (idx LineIndex) LineCount() int {
	return len(idx.lines)
}

// Line returns the metadata of a 1-based line number.
func (idx LineIndex) Line(line int) (LineInfo, bool) {
	if line < 1 || line > len(idx.lines) {
		return LineInfo{}, false
	}
	return idx.lines[line-1], true
}

// Offset converts a 1-based line and column to a byte offset.
//
// Out-of-range input is clamped rather than rejected: a line before the first
// maps to 0, a line past the last maps to the end of the text, a column below
// 1 maps to the start of the line and a column past the line's content maps
// to the line's end (before its terminator).
func (idx LineIndex) Offset(line, col int) int {
	if len(idx.lines) == 0 || line < 1 {
		return 0
	}
	if line > len(idx.lines) {
		return idx.size
	}

	info := idx.lines[line-1]
	if col < 1 {
		return info.StartOffset
	}

	offset := info.StartOffset + col - 1
	if offset > info.NewlineStart {
		return info.NewlineStart
	}
	return offset
}

// Position converts a byte offset to a 1-based line and column.
// Offsets are clamped to [0, len(text)].
func (idx LineIndex) Position(offset int) Position {
	if len(idx.lines) == 0 {
		return Position{Line: 1, Column: 1}
	}
	if offset < 0 {
		offset = 0
	}
	if offset > idx.size {
		offset = idx.size
	}

	lineIdx := sort.Search(len(idx.lines), func(i int) bool {
		return idx.lines[i].EndOffset > offset
	})
	if lineIdx >= len(idx.lines) {
		lineIdx = len(idx.lines) - 1
	}

	return Position{Line: lineIdx + 1, Column: offset - idx.lines[lineIdx].StartOffset + 1}
}

// LineStart returns the byte offset of the start of the line containing offset.
func LineStart(text string, offset int) int {
	if offset > len(text) {
		offset = len(text)
	}
	for offset > 0 && text[offset-1] != '\n' {
		offset--
	}
	return offset
}
