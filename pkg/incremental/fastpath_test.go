package incremental_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/incremental"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

func TestAppendPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prevText string
		delta    string
	}{
		{"single word", "Hello", " world"},
		{"second paragraph", "# Title\n\nHello", " there"},
		{"after soft break", "first line\nsecond", " line"},
		{"after hard break", "first  \nsecond", " line"},
		{"trailing spaces carried", "Hello  ", "world"},
		{"whitespace only", "Hello", "   "},
		{"punctuation that is not syntax", "Hello", ", friend. Ok? Yes, 100% + 'quoted' \"and\" {braces} #tag = 5/2"},
		{"unicode", "Grüße", " aus Köln"},
		{"digits", "Version", " 10"},
		{"definition in earlier block", "[a]: /u\n\nplain words", " more"},
		{"definition syntax in code", "```python\ndef f() -> list[int]:\n```\n\nHello", " world"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			prev, ranges := parser.ParseWithRanges(testCase.prevText)
			newText := testCase.prevText + testCase.delta

			blocks, reason := incremental.AppendPlainText(testCase.prevText, newText, prev.Document, ranges)
			require.Equal(t, incremental.SkipNone, reason)

			full := parser.Parse(newText)
			if diff := cmp.Diff(full.Document, blocks, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("fast path differs from full parse (-full +fast):\n%s", diff)
			}
		})
	}
}

func TestAppendPlainText_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	prev, ranges := parser.ParseWithRanges("Alpha\n\nBravo")

	blocks, reason := incremental.AppendPlainText("Alpha\n\nBravo", "Alpha\n\nBravo Charlie", prev.Document, ranges)
	require.Equal(t, incremental.SkipNone, reason)

	assert.Equal(t, "Bravo", prev.Document[1].Inlines[0].Literal)
	assert.Equal(t, "Bravo Charlie", blocks[1].Inlines[0].Literal)
	assert.True(t, prev.Document[0].Equal(blocks[0]))
}

func TestAppendPlainText_RejectsSignificantCharacters(t *testing.T) {
	t.Parallel()

	const prevText = "Plain paragraph"
	prev, ranges := parser.ParseWithRanges(prevText)

	for _, delta := range []string{"\n", "`", "*", "_", "[", "]", "(", ")", "!", "$", "<", ">", "|", "~", "\\"} {
		t.Run(delta, func(t *testing.T) {
			t.Parallel()

			blocks, reason := incremental.AppendPlainText(prevText, prevText+" a"+delta+"b", prev.Document, ranges)
			assert.Nil(t, blocks)
			assert.Equal(t, incremental.SkipNotPlainAppend, reason)
		})
	}
}

func TestAppendPlainText_NotApplicable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		prevText string
		newText  string
		want     incremental.SkipReason
	}{
		{"empty previous", "", "abc", incremental.SkipEmptyPrevious},
		{"not growing", "abc", "abc", incremental.SkipNotGrowing},
		{"not an append", "abc", "abd and more", incremental.SkipPrefixChanged},
		{"bold paragraph", "Some **bold**", "Some **bold** text", incremental.SkipNotPlainAppend},
		{"trailing heading", "# Title", "# Title more", incremental.SkipNotPlainAppend},
		{"trailing list", "- item", "- item more", incremental.SkipNotPlainAppend},
		{"trailing code block", "```\ncode", "```\ncode more", incremental.SkipNotPlainAppend},
		{"after newline", "abc\n", "abc\ndef", incremental.SkipNotPlainAppend},
		{"after blank last line", "abc\n  ", "abc\n  def", incremental.SkipNotPlainAppend},
		{"pending escape", `abc\`, `abc\x`, incremental.SkipNotPlainAppend},
		{"setext underline", "Title\n=", "Title\n==", incremental.SkipNotPlainAppend},
		{"thematic break", "abc\n\n--", "abc\n\n---", incremental.SkipNotPlainAppend},
		{"ordered list marker", "abc\n\n1", "abc\n\n1. x", incremental.SkipNotPlainAppend},
		{"table delimiter row", "a\n:", "a\n:-", incremental.SkipNotPlainAppend},
		{"linkify www", "see www", "see www.example", incremental.SkipNotPlainAppend},
		{"linkify scheme", "see https:", "see https://x", incremental.SkipNotPlainAppend},
		{"email", "mail me", "mail me at x@y", incremental.SkipNotPlainAppend},
		{"entity", "a &amp", "a &amp;", incremental.SkipNotPlainAppend},
		{"math paragraph", "see $x$", "see $x$ now", incremental.SkipNotPlainAppend},
		{"trailing reference definition", "text\n\n[a]:\n/url", "text\n\n[a]:\n/url2", incremental.SkipReferenceDefinition},
		{"definition after paragraph lines", "[a]: /url\n\"tit", "[a]: /url\n\"title\"", incremental.SkipReferenceDefinition},
		{"definition label across lines", "[a\nb]:", "[a\nb]: /u", incremental.SkipNotPlainAppend},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			prev, ranges := parser.ParseWithRanges(testCase.prevText)
			blocks, reason := incremental.AppendPlainText(testCase.prevText, testCase.newText, prev.Document, ranges)
			assert.Nil(t, blocks)
			assert.Equal(t, testCase.want, reason)
		})
	}
}

func TestAppendPlainText_RequiresRanges(t *testing.T) {
	t.Parallel()

	prev := parser.Parse("Hello")
	blocks, reason := incremental.AppendPlainText("Hello", "Hello world", prev.Document, nil)
	assert.Nil(t, blocks)
	assert.Equal(t, incremental.SkipNoRanges, reason)
}

func TestExtendLastRange(t *testing.T) {
	t.Parallel()

	ranges := []mdast.RootBlockRange{
		{Kind: "Paragraph", Range: mdast.SourceRange{StartOffset: 0, EndOffset: 5}, OutputBlockCount: 1},
		{Kind: "Paragraph", Range: mdast.SourceRange{StartOffset: 7, EndOffset: 12}, OutputBlockCount: 1},
	}

	got := incremental.ExtendLastRange(ranges, 20)

	assert.Equal(t, 20, got[1].Range.EndOffset)
	assert.Equal(t, 12, ranges[1].Range.EndOffset, "input must not change")
	assert.Equal(t, ranges[0], got[0])
	assert.Empty(t, incremental.ExtendLastRange(nil, 3))
}
