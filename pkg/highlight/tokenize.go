package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/yaklabco/mdstream/pkg/langdetect"
)

// Span marks bytes [Start, End) of the code as belonging to a token class.
// Class is chroma's short CSS class name, such as "k" for keywords or "s" for
// strings.
type Span struct {
	Start int
	End   int
	Class string
}

// Tokenize splits the code of key into classified spans. Plain text and
// whitespace are not reported. Adjacent tokens of the same class are merged.
// Unknown languages fall back to a plain-text lexer, which yields no spans.
func Tokenize(key Key) []Span {
	iterator, err := lexerFor(key.Language).Tokenise(nil, key.Content)
	if err != nil {
		return nil
	}

	var spans []Span
	offset := 0
	for token := iterator(); token != chroma.EOF; token = iterator() {
		start := offset
		offset += len(token.Value)
		// Some lexers append a final newline.
		end := min(offset, len(key.Content))
		if start >= end || token.Type.InCategory(chroma.Text) {
			continue
		}

		class := className(token.Type)
		if class == "" {
			continue
		}
		if n := len(spans); n > 0 && spans[n-1].End == start && spans[n-1].Class == class {
			spans[n-1].End = end
			continue
		}
		spans = append(spans, Span{Start: start, End: end, Class: class})
	}
	return spans
}

// HasLexer reports whether language has a dedicated lexer.
func HasLexer(language string) bool {
	return language != "" && language != langdetect.Text && lexers.Get(language) != nil
}

func lexerFor(language string) chroma.Lexer {
	lexer := lexers.Fallback
	if HasLexer(language) {
		lexer = lexers.Get(language)
	}
	return chroma.Coalesce(lexer)
}

// className returns the CSS class of t, falling back to its subcategory and
// category.
func className(t chroma.TokenType) string {
	for _, candidate := range []chroma.TokenType{t, t.SubCategory(), t.Category()} {
		if class, ok := chroma.StandardTypes[candidate]; ok && class != "" {
			return class
		}
	}
	return ""
}
