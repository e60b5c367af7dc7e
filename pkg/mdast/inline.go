package mdast

import (
	"strconv"
	"strings"
)

// InlineKind classifies an inline node.
type InlineKind uint8

// Inline kinds.
const (
	InlineText InlineKind = iota
	InlineSoftBreak
	InlineLineBreak
	InlineCode
	InlineHTML
	InlineEmphasis
	InlineStrong
	InlineStrikethrough
	InlineLink
	InlineImage
	InlineMath
)

var inlineKindNames = [...]string{
	InlineText:          "Text",
	InlineSoftBreak:     "SoftBreak",
	InlineLineBreak:     "LineBreak",
	InlineCode:          "Code",
	InlineHTML:          "HTML",
	InlineEmphasis:      "Emphasis",
	InlineStrong:        "Strong",
	InlineStrikethrough: "Strikethrough",
	InlineLink:          "Link",
	InlineImage:         "Image",
	InlineMath:          "Math",
}

func (k InlineKind) String() string {
	if int(k) < len(inlineKindNames) {
		return inlineKindNames[k]
	}
	return "InlineKind(?)"
}

// IsContainer reports whether nodes of this kind carry children.
func (k InlineKind) IsContainer() bool {
	switch k {
	case InlineEmphasis, InlineStrong, InlineStrikethrough, InlineLink, InlineImage:
		return true
	default:
		return false
	}
}

// Inline is an inline-level node. Kind selects the payload:
//
//	InlineText, InlineCode, InlineHTML  Literal
//	InlineEmphasis, InlineStrong,
//	InlineStrikethrough                 Content
//	InlineLink, InlineImage             Destination, Title, Content
//	InlineMath                          Literal (LaTeX), MathID, Display
type Inline struct {
	Kind InlineKind

	Literal     string
	Destination string
	Title       string
	Content     []Inline

	MathID  int
	Display bool
}

// Text returns a text node.
func Text(s string) Inline { return Inline{Kind: InlineText, Literal: s} }

// SoftBreak returns a soft line break.
func SoftBreak() Inline { return Inline{Kind: InlineSoftBreak} }

// LineBreak returns a hard line break.
func LineBreak() Inline { return Inline{Kind: InlineLineBreak} }

// Code returns a code span.
func Code(s string) Inline { return Inline{Kind: InlineCode, Literal: s} }

// HTML returns raw inline HTML.
func HTML(raw string) Inline { return Inline{Kind: InlineHTML, Literal: raw} }

// Emphasis returns an emphasis node.
func Emphasis(children ...Inline) Inline { return Inline{Kind: InlineEmphasis, Content: children} }

// Strong returns a strong emphasis node.
func Strong(children ...Inline) Inline { return Inline{Kind: InlineStrong, Content: children} }

// Strikethrough returns a strikethrough node.
func Strikethrough(children ...Inline) Inline {
	return Inline{Kind: InlineStrikethrough, Content: children}
}

// Link returns a link to destination.
func Link(destination, title string, children ...Inline) Inline {
	return Inline{Kind: InlineLink, Destination: destination, Title: title, Content: children}
}

// Image returns an image with the given source; children hold the alt text.
func Image(source, title string, children ...Inline) Inline {
	return Inline{Kind: InlineImage, Destination: source, Title: title, Content: children}
}

// Math returns a math span with identifier id.
func Math(latex string, id int, display bool) Inline {
	return Inline{Kind: InlineMath, Literal: latex, MathID: id, Display: display}
}

// Equal reports whether two inline nodes are structurally identical.
func (n Inline) Equal(other Inline) bool {
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case InlineSoftBreak, InlineLineBreak:
		return true
	case InlineText, InlineCode, InlineHTML:
		return n.Literal == other.Literal
	case InlineEmphasis, InlineStrong, InlineStrikethrough:
		return inlinesEqual(n.Content, other.Content)
	case InlineLink, InlineImage:
		return n.Destination == other.Destination && n.Title == other.Title &&
			inlinesEqual(n.Content, other.Content)
	case InlineMath:
		return n.Literal == other.Literal && n.MathID == other.MathID && n.Display == other.Display
	}
	return false
}

// Identifier returns the replacement token that stood in for this math span
// while the grammar ran. It is empty for non-math nodes.
func (n Inline) Identifier() string {
	if n.Kind != InlineMath {
		return ""
	}
	return MathPlaceholder(n.MathID)
}

// Math placeholder delimiters. Both are private-use code points, which the
// grammar treats as ordinary word characters.
const (
	PlaceholderOpen  = "\uE000"
	PlaceholderClose = "\uE001"
)

// MathPlaceholder returns the opaque token that replaces math span id in
// grammar input.
func MathPlaceholder(id int) string {
	return PlaceholderOpen + strconv.Itoa(id) + PlaceholderClose
}

// ParseMathPlaceholder extracts the identifier from a token produced by
// MathPlaceholder.
func ParseMathPlaceholder(token string) (int, bool) {
	inner, ok := strings.CutPrefix(token, PlaceholderOpen)
	if !ok {
		return 0, false
	}
	inner, ok = strings.CutSuffix(inner, PlaceholderClose)
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(inner)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// PlainText concatenates the literal text of inlines, dropping markup.
// Soft and hard breaks become a single newline.
func PlainText(inlines []Inline) string {
	var sb strings.Builder
	writePlainText(&sb, inlines)
	return sb.String()
}

func writePlainText(sb *strings.Builder, inlines []Inline) {
	for _, n := range inlines {
		switch n.Kind {
		case InlineSoftBreak, InlineLineBreak:
			sb.WriteByte('\n')
		case InlineText, InlineCode, InlineMath:
			sb.WriteString(n.Literal)
		case InlineHTML:
		default:
			writePlainText(sb, n.Content)
		}
	}
}
