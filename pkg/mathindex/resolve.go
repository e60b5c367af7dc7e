package mathindex

import (
	"strings"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

// TextFunc finishes a raw text literal, typically by resolving backslash
// escapes and character references.
type TextFunc func(raw string) string

// Resolve rewrites the text nodes of doc, which still hold raw grammar text:
//   - placeholders become math inlines carrying their span's LaTeX,
//   - single-dollar spans are promoted by FinalizeDollars,
//   - the remaining text is passed through finish and escaped-dollar markers
//     become "$".
//
// Text nodes that end up empty are dropped. A nil finish leaves text as is.
func (x *Extraction) Resolve(doc []mdast.Block, finish TextFunc) []mdast.Block {
	return mdast.RewriteInlines(doc, func(n mdast.Inline) []mdast.Inline {
		if n.Kind != mdast.InlineText {
			return []mdast.Inline{n}
		}

		var out []mdast.Inline
		for _, piece := range x.splitPlaceholders(n.Literal) {
			if piece.Kind != mdast.InlineText {
				out = append(out, piece)
				continue
			}
			for _, part := range FinalizeDollars(piece.Literal, x.allocate) {
				if part.Kind == mdast.InlineText {
					part.Literal = finishText(part.Literal, finish)
					if part.Literal == "" {
						continue
					}
				}
				out = append(out, part)
			}
		}
		return out
	})
}

func (x *Extraction) allocate() int {
	id := x.nextID
	x.nextID++
	return id
}

func finishText(raw string, finish TextFunc) string {
	if finish != nil {
		raw = finish(raw)
	}
	return strings.ReplaceAll(raw, EscapedDollar, "$")
}

// splitPlaceholders cuts s at every known placeholder. Unknown tokens stay in
// the surrounding text.
func (x *Extraction) splitPlaceholders(s string) []mdast.Inline {
	if !strings.Contains(s, mdast.PlaceholderOpen) {
		return []mdast.Inline{mdast.Text(s)}
	}

	var out []mdast.Inline
	var text strings.Builder
	for len(s) > 0 {
		i := strings.Index(s, mdast.PlaceholderOpen)
		if i < 0 {
			text.WriteString(s)
			break
		}
		text.WriteString(s[:i])
		s = s[i:]

		span, n, ok := x.token(s)
		if !ok {
			text.WriteString(mdast.PlaceholderOpen)
			s = s[len(mdast.PlaceholderOpen):]
			continue
		}
		if text.Len() > 0 {
			out = append(out, mdast.Text(text.String()))
			text.Reset()
		}
		out = append(out, mdast.Math(span.Latex, span.ID, span.Display))
		s = s[n:]
	}
	if text.Len() > 0 {
		out = append(out, mdast.Text(text.String()))
	}
	return out
}

// FinalizeDollars promotes $...$ spans in one raw text run to inline math and
// returns the run split into text and math inlines. alloc supplies the
// identifier of each new span.
//
// A span is promoted only when all of these hold:
//   - the opening "$" is followed by a character that is neither whitespace
//     nor another "$";
//   - the closing "$" is preceded by a non-whitespace character and is not
//     followed by a digit or another "$";
//   - the content lies on one line.
//
// Runs of two or more dollars never open a span. Anything else stays text, so
// "$5 and $10" is left alone.
func FinalizeDollars(s string, alloc func() int) []mdast.Inline {
	if strings.IndexByte(s, '$') < 0 {
		return []mdast.Inline{mdast.Text(s)}
	}

	var out []mdast.Inline
	last := 0
	i := 0
	for i < len(s) {
		if s[i] != '$' {
			i++
			continue
		}
		if i+1 < len(s) && s[i+1] == '$' {
			i += runLength(s, i, '$')
			continue
		}
		if i+1 >= len(s) || isSpace(s[i+1]) {
			i++
			continue
		}

		j := strings.IndexByte(s[i+1:], '$')
		if j < 0 {
			break
		}
		j += i + 1

		content := s[i+1 : j]
		if strings.ContainsAny(content, "\r\n") {
			i = j
			continue
		}
		if !closesSpan(s, j) {
			i = j
			continue
		}

		if i > last {
			out = append(out, mdast.Text(s[last:i]))
		}
		latex := strings.ReplaceAll(content, EscapedDollar, `\$`)
		out = append(out, mdast.Math(latex, alloc(), false))
		i = j + 1
		last = i
	}

	if last < len(s) {
		out = append(out, mdast.Text(s[last:]))
	}
	return out
}

func closesSpan(s string, j int) bool {
	if isSpace(s[j-1]) {
		return false
	}
	if j+1 == len(s) {
		return true
	}
	next := s[j+1]
	return next != '$' && (next < '0' || next > '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}
