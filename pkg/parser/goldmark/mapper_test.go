package goldmark

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

func TestFinishText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", "hello", "hello"},
		{"escaped punctuation", `\*not emphasis\*`, "*not emphasis*"},
		{"backslash before letter kept", `C:\path`, `C:\path`},
		{"trailing backslash kept", `end\`, `end\`},
		{"named entity", "a &lt; b", "a < b"},
		{"numeric entities", "&#65;&#x42;", "AB"},
		{"escaped ampersand", `\&lt;`, "&lt;"},
		{"escaped backslash then entity", `\\&amp;`, `\&`},
		{"unknown entity kept", "&nope;", "&nope;"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, finishText(testCase.raw))
		})
	}
}

func TestMergeText(t *testing.T) {
	t.Parallel()

	in := []mdast.Inline{
		mdast.Text("a"),
		mdast.Text("b"),
		mdast.Code("c"),
		mdast.Text("d"),
		mdast.Text("e"),
		mdast.Text("f"),
	}
	want := []mdast.Inline{mdast.Text("ab"), mdast.Code("c"), mdast.Text("def")}

	got := mergeText(in)
	assert.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].Equal(got[i]), "inline %d: %#v", i, got[i])
	}
	assert.Equal(t, "a", in[0].Literal, "input must not change")
}

func TestTrimTrailingBlankLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		content    string
		start, end int
		want       int
	}{
		{"no blank lines", "abc", 0, 3, 3},
		{"single newline", "abc\n", 0, 4, 3},
		{"blank lines", "abc\n\n\n", 0, 6, 3},
		{"whitespace-only lines", "abc\n  \n\t\n", 0, 9, 3},
		{"crlf", "abc\r\n\r\n", 0, 7, 3},
		{"all blank", "\n\n", 0, 2, 0},
		{"never before start", "ab\n\ncd\n", 4, 7, 6},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := trimTrailingBlankLines([]byte(testCase.content), testCase.start, testCase.end)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestLineStart(t *testing.T) {
	t.Parallel()

	src := []byte("ab\ncd\n\nef")

	assert.Equal(t, 0, lineStart(src, 0))
	assert.Equal(t, 0, lineStart(src, 2))
	assert.Equal(t, 3, lineStart(src, 3))
	assert.Equal(t, 3, lineStart(src, 5))
	assert.Equal(t, 6, lineStart(src, 6))
	assert.Equal(t, 7, lineStart(src, 8))
	assert.Equal(t, 7, lineStart(src, 100))
}
