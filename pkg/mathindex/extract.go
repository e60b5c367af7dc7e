// Package mathindex hides LaTeX spans from the Markdown grammar and puts them
// back afterwards.
//
// Extract runs before parsing and replaces every delimited math span with an
// opaque placeholder token. Resolve runs on the converted tree and turns the
// tokens back into math inlines, promoting single-dollar spans on the way.
// Renumber and ShiftIdentifiers keep identifiers unique when trees from
// separate parses are spliced together.
package mathindex

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

// EscapedDollar stands in for a backslash-escaped dollar sign while the grammar
// runs, so that single-dollar detection never pairs an escaped delimiter.
const EscapedDollar = "\uE002"

//nolint:gochecknoglobals // compiled once
var blankLine = regexp.MustCompile(`\n[ \t]*\r?\n`)

// Span is one delimited math span found in the source.
type Span struct {
	ID      int
	Latex   string
	Display bool

	// Raw is the full source text of the span, delimiters included.
	Raw    string
	Source mdast.SourceRange
}

// edit records one replacement made to the grammar input.
type edit struct {
	outStart, outEnd int
	srcStart, srcEnd int
}

// Extraction is the grammar input derived from one source text together with
// everything needed to map the grammar's output back onto that source.
// An Extraction belongs to a single parse and is not safe for concurrent use.
type Extraction struct {
	// Text is the source with math spans and escaped dollars replaced.
	Text string

	// Spans lists the delimited spans in source order.
	Spans []Span

	// OpenFence is set when the source ends inside a fenced code region.
	OpenFence bool

	// fences lists the fenced code regions copied untouched, in source
	// coordinates. An unterminated region runs to the end of the source.
	fences []mdast.SourceRange

	byID   map[int]int
	edits  []edit
	nextID int
}

// Extract scans src for $$...$$, \[...\] and \(...\) spans and replaces each
// with mdast.MathPlaceholder(id), numbering from offset. Fenced code regions
// and single-line backtick code spans are copied untouched. A span never
// contains a blank line; an unterminated or empty delimiter is left as text.
func Extract(src string, offset int) *Extraction {
	x := &Extraction{byID: make(map[int]int), nextID: offset}

	var out strings.Builder
	out.Grow(len(src))

	var fence fenceState
	fenceStart := 0
	lineStart := true
	i := 0
	for i < len(src) {
		if lineStart {
			lineStart = false
			end := lineEnd(src, i)
			line := src[i:end]
			if fence.open {
				if fence.closedBy(line) {
					fence.open = false
					x.fences = append(x.fences, mdast.SourceRange{StartOffset: fenceStart, EndOffset: end})
				}
				out.WriteString(line)
				i = end
				lineStart = true
				continue
			}
			if f, ok := openingFence(line); ok {
				fence = f
				fenceStart = i
				out.WriteString(line)
				i = end
				lineStart = true
				continue
			}
		}

		c := src[i]
		switch {
		case c == '\n':
			out.WriteByte(c)
			i++
			lineStart = true
			continue

		case c == '`':
			n := runLength(src, i, '`')
			if end := closingBackticks(src, i+n, n); end >= 0 {
				out.WriteString(src[i:end])
				i = end
				continue
			}
			out.WriteString(src[i : i+n])
			i += n
			continue

		case c == '\\' && i+1 < len(src):
			switch src[i+1] {
			case '$':
				x.replace(&out, i, i+2, EscapedDollar)
				i += 2
				continue
			case '(', '[':
				closer := `\)`
				display := src[i+1] == '['
				if display {
					closer = `\]`
				}
				if end, ok := findClose(src, i+2, closer); ok {
					x.addSpan(&out, src, i, end+len(closer), src[i+2:end], display)
					i = end + len(closer)
					continue
				}
			case '\n':
				out.WriteByte(c)
				i++
				continue
			}
			out.WriteString(src[i : i+2])
			i += 2
			continue

		case c == '$' && i+1 < len(src) && src[i+1] == '$':
			if end, ok := findClose(src, i+2, "$$"); ok {
				x.addSpan(&out, src, i, end+2, src[i+2:end], true)
				i = end + 2
				continue
			}
			out.WriteString("$$")
			i += 2
			continue
		}

		out.WriteByte(c)
		i++
	}

	x.Text = out.String()
	x.OpenFence = fence.open
	if fence.open {
		x.fences = append(x.fences, mdast.SourceRange{StartOffset: fenceStart, EndOffset: len(src)})
	}
	return x
}

// Crosses reports whether the source offset falls strictly inside a math span
// or a fenced code region. Extracting the text before and after such an
// offset separately would not reproduce this extraction.
func (x *Extraction) Crosses(offset int) bool {
	inside := func(r mdast.SourceRange) bool {
		return r.StartOffset < offset && offset < r.EndOffset
	}
	for _, span := range x.Spans {
		if inside(span.Source) {
			return true
		}
	}
	for _, r := range x.fences {
		if inside(r) {
			return true
		}
	}
	return false
}

func (x *Extraction) replace(out *strings.Builder, srcStart, srcEnd int, repl string) {
	start := out.Len()
	out.WriteString(repl)
	x.edits = append(x.edits, edit{outStart: start, outEnd: out.Len(), srcStart: srcStart, srcEnd: srcEnd})
}

func (x *Extraction) addSpan(out *strings.Builder, src string, start, end int, latex string, display bool) {
	id := x.nextID
	x.nextID++
	x.replace(out, start, end, mdast.MathPlaceholder(id))
	x.byID[id] = len(x.Spans)
	x.Spans = append(x.Spans, Span{
		ID:      id,
		Latex:   strings.TrimSpace(latex),
		Display: display,
		Raw:     src[start:end],
		Source:  mdast.SourceRange{StartOffset: start, EndOffset: end},
	})
}

// Span returns the delimited span with the given identifier.
func (x *Extraction) Span(id int) (Span, bool) {
	idx, ok := x.byID[id]
	if !ok {
		return Span{}, false
	}
	return x.Spans[idx], true
}

// SourceOffset maps a byte offset in Text to the corresponding offset in the
// source. An offset inside a placeholder maps to the start of its span.
func (x *Extraction) SourceOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	k := sort.Search(len(x.edits), func(i int) bool {
		return x.edits[i].outEnd > offset
	})
	if k < len(x.edits) && x.edits[k].outStart <= offset {
		return x.edits[k].srcStart
	}
	if k == 0 {
		return offset
	}
	prev := x.edits[k-1]
	return prev.srcEnd + offset - prev.outEnd
}

// Restore replaces placeholders and escaped-dollar markers in s with the
// source text they stood for. Use it for content the grammar keeps verbatim,
// such as code and raw HTML.
func (x *Extraction) Restore(s string) string {
	return x.expand(s, `\$`)
}

// RestoreUnescaped is Restore for content the grammar has already unescaped,
// such as link destinations: escaped dollars become a bare "$".
func (x *Extraction) RestoreUnescaped(s string) string {
	return x.expand(s, "$")
}

func (x *Extraction) expand(s, dollar string) string {
	if !strings.Contains(s, mdast.PlaceholderOpen) && !strings.Contains(s, EscapedDollar) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for len(s) > 0 {
		i := strings.IndexAny(s, mdast.PlaceholderOpen+EscapedDollar)
		if i < 0 {
			sb.WriteString(s)
			break
		}
		sb.WriteString(s[:i])
		s = s[i:]

		if rest, ok := strings.CutPrefix(s, EscapedDollar); ok {
			sb.WriteString(dollar)
			s = rest
			continue
		}
		if span, n, ok := x.token(s); ok {
			sb.WriteString(span.Raw)
			s = s[n:]
			continue
		}
		sb.WriteString(mdast.PlaceholderOpen)
		s = s[len(mdast.PlaceholderOpen):]
	}
	return sb.String()
}

// token decodes a placeholder at the start of s and returns its span and
// encoded length.
func (x *Extraction) token(s string) (Span, int, bool) {
	end := strings.Index(s, mdast.PlaceholderClose)
	if end < 0 {
		return Span{}, 0, false
	}
	n := end + len(mdast.PlaceholderClose)
	id, ok := mdast.ParseMathPlaceholder(s[:n])
	if !ok {
		return Span{}, 0, false
	}
	span, ok := x.Span(id)
	if !ok {
		return Span{}, 0, false
	}
	return span, n, true
}

// findClose returns the index of closer in src at or after from. The content
// in between must be non-blank and must not contain a blank line.
func findClose(src string, from int, closer string) (int, bool) {
	if from > len(src) {
		return 0, false
	}
	idx := strings.Index(src[from:], closer)
	if idx < 0 {
		return 0, false
	}
	content := src[from : from+idx]
	if strings.TrimSpace(content) == "" || blankLine.MatchString(content) {
		return 0, false
	}
	return from + idx, true
}

// closingBackticks returns the index just past a run of exactly n backticks
// closing a code span opened before from, or -1. The search stops at the end
// of the line: a placeholder that lands inside a longer code span is restored
// by the mapper, and scanning never looks past the block being extracted.
func closingBackticks(src string, from, n int) int {
	i := from
	for i < len(src) && src[i] != '\n' {
		if src[i] != '`' {
			i++
			continue
		}
		run := runLength(src, i, '`')
		if run == n {
			return i + run
		}
		i += run
	}
	return -1
}

func runLength(s string, i int, c byte) int {
	n := 0
	for i+n < len(s) && s[i+n] == c {
		n++
	}
	return n
}

// lineEnd returns the index just past the newline ending the line that starts
// at i, or len(s).
func lineEnd(s string, i int) int {
	if i >= len(s) {
		return len(s)
	}
	if j := strings.IndexByte(s[i:], '\n'); j >= 0 {
		return i + j + 1
	}
	return len(s)
}

type fenceState struct {
	open   bool
	char   byte
	length int
}

// openingFence reports whether line opens a fenced code block: up to three
// spaces of indentation followed by at least three backticks or tildes.
func openingFence(line string) (fenceState, bool) {
	indent := runLength(line, 0, ' ')
	if indent > 3 || indent >= len(line) {
		return fenceState{}, false
	}
	c := line[indent]
	if c != '`' && c != '~' {
		return fenceState{}, false
	}
	n := runLength(line, indent, c)
	if n < 3 {
		return fenceState{}, false
	}
	if c == '`' && strings.IndexByte(line[indent+n:], '`') >= 0 {
		return fenceState{}, false
	}
	return fenceState{open: true, char: c, length: n}, true
}

func (f fenceState) closedBy(line string) bool {
	indent := runLength(line, 0, ' ')
	if indent > 3 || indent >= len(line) {
		return false
	}
	n := runLength(line, indent, f.char)
	if n < f.length {
		return false
	}
	return strings.TrimSpace(line[indent+n:]) == ""
}
