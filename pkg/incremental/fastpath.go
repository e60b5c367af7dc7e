package incremental

import (
	"regexp"
	"slices"
	"strings"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

// significant lists the characters that can start, end or change Markdown
// syntax, plus the placeholder markers used for math.
const significant = "\n\r`*_[]()!$<>|~\\&:@;\x00\uE000\uE001\uE002"

// blockStarters are characters that can turn a line into something other than
// paragraph text once more characters follow them.
const blockStarters = "-+*#=_<>|~`[:"

//nolint:gochecknoglobals // compiled once
var listOrdinal = regexp.MustCompile(`^\d+[.)]`)

// AppendPlainText extends the trailing paragraph of previous with the text
// appended to previousText, without parsing. ranges are the root block ranges
// of previousText. It applies only when the appended text is plain words, the
// previous document ends in a paragraph of plain text, and the line being
// extended cannot change block type. On success the returned slice is a copy
// of previous with the last block replaced.
func AppendPlainText(
	previousText, newText string,
	previous []mdast.Block,
	ranges []mdast.RootBlockRange,
) ([]mdast.Block, SkipReason) {
	if previousText == "" || len(previous) == 0 {
		return nil, SkipEmptyPrevious
	}
	if len(newText) <= len(previousText) {
		return nil, SkipNotGrowing
	}
	if !strings.HasPrefix(newText, previousText) {
		return nil, SkipPrefixChanged
	}

	delta := newText[len(previousText):]
	if strings.ContainsAny(delta, significant) || !extendable(previousText) {
		return nil, SkipNotPlainAppend
	}
	if len(ranges) == 0 {
		return nil, SkipNoRanges
	}

	// Appended words cannot add a reference, but they can finish or break a
	// definition at the start of the trailing block.
	tail := ranges[len(ranges)-1]
	if tail.DefinesReferences {
		return nil, SkipReferenceDefinition
	}
	if strings.HasPrefix(strings.TrimLeft(previousText[min(tail.Range.StartOffset, len(previousText)):], " \t"), "[") {
		return nil, SkipNotPlainAppend
	}

	line := strings.TrimLeft(lastLine(previousText)+delta, " \t")
	if strings.ContainsAny(line[:1], blockStarters) || listOrdinal.MatchString(line) {
		return nil, SkipNotPlainAppend
	}

	last := previous[len(previous)-1]
	if last.Kind != mdast.BlockParagraph || !plainInlines(last.Inlines) {
		return nil, SkipNotPlainAppend
	}

	base := ""
	n := len(last.Inlines)
	if n > 0 {
		if last.Inlines[n-1].Kind != mdast.InlineText {
			return nil, SkipNotPlainAppend
		}
		base = last.Inlines[n-1].Literal
	}

	trailing := previousText[len(strings.TrimRight(previousText, " \t")):]
	literal := strings.TrimRight(base+trailing+delta, " \t")
	if literal == "" || linkLike(literal) {
		return nil, SkipNotPlainAppend
	}

	inlines := slices.Clone(last.Inlines)
	if n > 0 {
		inlines[n-1] = mdast.Text(literal)
	} else {
		inlines = append(inlines, mdast.Text(literal))
	}

	out := slices.Clone(previous)
	out[len(out)-1] = mdast.Paragraph(inlines...)
	return out, SkipNone
}

// ExtendLastRange returns a copy of ranges whose last range ends at end.
func ExtendLastRange(ranges []mdast.RootBlockRange, end int) []mdast.RootBlockRange {
	out := slices.Clone(ranges)
	if len(out) > 0 {
		out[len(out)-1].Range.EndOffset = end
	}
	return out
}

// extendable reports whether text ends mid-line on a non-blank line that is
// not a pending escape.
func extendable(text string) bool {
	if strings.HasSuffix(text, "\n") || strings.HasSuffix(text, "\r") || strings.HasSuffix(text, `\`) {
		return false
	}
	return strings.TrimSpace(lastLine(text)) != ""
}

func lastLine(text string) string {
	return text[strings.LastIndexByte(text, '\n')+1:]
}

// plainInlines reports whether inlines hold only text and line breaks.
func plainInlines(inlines []mdast.Inline) bool {
	for _, in := range inlines {
		switch in.Kind {
		case mdast.InlineText, mdast.InlineSoftBreak, mdast.InlineLineBreak:
		default:
			return false
		}
	}
	return true
}

// linkLike reports whether s could be turned into a link by GFM autolinking.
func linkLike(s string) bool {
	return strings.Contains(s, "://") || strings.Contains(s, "@") || strings.Contains(s, "www.")
}
