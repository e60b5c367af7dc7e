package goldmark

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

func TestNew_Flavors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		flavor string
		want   string
	}{
		{"commonmark", FlavorCommonMark, FlavorCommonMark},
		{"gfm", FlavorGFM, FlavorGFM},
		{"empty defaults to gfm", "", FlavorGFM},
		{"invalid defaults to gfm", "markdown-extra", FlavorGFM},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			p := New(testCase.flavor)
			require.NotNil(t, p)
			assert.Equal(t, testCase.want, p.Flavor())
		})
	}
}

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)

	tests := []struct {
		name string
		src  string
		want []mdast.Block
	}{
		{
			name: "empty",
			src:  "",
			want: nil,
		},
		{
			name: "atx heading",
			src:  "## Title",
			want: []mdast.Block{mdast.Heading(2, mdast.Text("Title"))},
		},
		{
			name: "setext heading",
			src:  "Title\n=====",
			want: []mdast.Block{mdast.Heading(1, mdast.Text("Title"))},
		},
		{
			name: "emphasis strong and strike",
			src:  "*a* **b** ~~c~~",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Emphasis(mdast.Text("a")),
				mdast.Text(" "),
				mdast.Strong(mdast.Text("b")),
				mdast.Text(" "),
				mdast.Strikethrough(mdast.Text("c")),
			)},
		},
		{
			name: "code span",
			src:  "use `go test` here",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Text("use "),
				mdast.Code("go test"),
				mdast.Text(" here"),
			)},
		},
		{
			name: "soft and hard breaks",
			src:  "a\nb  \nc",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Text("a"),
				mdast.SoftBreak(),
				mdast.Text("b"),
				mdast.LineBreak(),
				mdast.Text("c"),
			)},
		},
		{
			name: "link with title",
			src:  `[docs](/guide "Guide")`,
			want: []mdast.Block{mdast.Paragraph(
				mdast.Link("/guide", "Guide", mdast.Text("docs")),
			)},
		},
		{
			name: "image",
			src:  "![alt](/i.png)",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Image("/i.png", "", mdast.Text("alt")),
			)},
		},
		{
			name: "angle autolink",
			src:  "<https://a.example>",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Link("https://a.example", "", mdast.Text("https://a.example")),
			)},
		},
		{
			name: "linkify bare url",
			src:  "see https://example.com now",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Text("see "),
				mdast.Link("https://example.com", "", mdast.Text("https://example.com")),
				mdast.Text(" now"),
			)},
		},
		{
			name: "escapes and entities",
			src:  `\*a\* &amp; &#65;`,
			want: []mdast.Block{mdast.Paragraph(mdast.Text("*a* & A"))},
		},
		{
			name: "escaped entity stays literal",
			src:  `\&amp;`,
			want: []mdast.Block{mdast.Paragraph(mdast.Text("&amp;"))},
		},
		{
			name: "thematic break",
			src:  "---",
			want: []mdast.Block{mdast.ThematicBreak()},
		},
		{
			name: "fenced code with info",
			src:  "```go\nfmt.Println()\n```",
			want: []mdast.Block{mdast.CodeBlock("go", "fmt.Println()\n")},
		},
		{
			name: "indented code",
			src:  "    code\n",
			want: []mdast.Block{mdast.CodeBlock("", "code\n")},
		},
		{
			name: "blockquote",
			src:  "> quoted",
			want: []mdast.Block{mdast.Blockquote(mdast.Paragraph(mdast.Text("quoted")))},
		},
		{
			name: "bullet list",
			src:  "- a\n- b",
			want: []mdast.Block{mdast.BulletList(
				mdast.Item(mdast.Paragraph(mdast.Text("a"))),
				mdast.Item(mdast.Paragraph(mdast.Text("b"))),
			)},
		},
		{
			name: "numbered list keeps start",
			src:  "3. a\n4. b",
			want: []mdast.Block{mdast.NumberedList(3,
				mdast.Item(mdast.Paragraph(mdast.Text("a"))),
				mdast.Item(mdast.Paragraph(mdast.Text("b"))),
			)},
		},
		{
			name: "task list",
			src:  "- [x] done\n- [ ] todo",
			want: []mdast.Block{mdast.TaskList(
				mdast.Task(true, mdast.Paragraph(mdast.Text("done"))),
				mdast.Task(false, mdast.Paragraph(mdast.Text("todo"))),
			)},
		},
		{
			name: "mixed list splits into runs",
			src:  "- [x] done\n- plain\n- [ ] todo",
			want: []mdast.Block{
				mdast.TaskList(mdast.Task(true, mdast.Paragraph(mdast.Text("done")))),
				mdast.BulletList(mdast.Item(mdast.Paragraph(mdast.Text("plain")))),
				mdast.TaskList(mdast.Task(false, mdast.Paragraph(mdast.Text("todo")))),
			},
		},
		{
			name: "numbered run after task run",
			src:  "1. [x] a\n2. b",
			want: []mdast.Block{
				mdast.TaskList(mdast.Task(true, mdast.Paragraph(mdast.Text("a")))),
				mdast.NumberedList(2, mdast.Item(mdast.Paragraph(mdast.Text("b")))),
			},
		},
		{
			name: "table with alignments",
			src:  "| a | b |\n| :-- | --: |\n| 1 | 2 |",
			want: []mdast.Block{mdast.Table(
				[]mdast.Alignment{mdast.AlignLeft, mdast.AlignRight},
				mdast.TableRow{mdast.Cell(mdast.Text("a")), mdast.Cell(mdast.Text("b"))},
				mdast.TableRow{mdast.Cell(mdast.Text("1")), mdast.Cell(mdast.Text("2"))},
			)},
		},
		{
			name: "html block",
			src:  "<div>\nhi\n</div>",
			want: []mdast.Block{mdast.Paragraph(mdast.HTML("<div>\nhi\n</div>"))},
		},
		{
			name: "inline html",
			src:  "a <b>x</b>",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Text("a "),
				mdast.HTML("<b>"),
				mdast.Text("x"),
				mdast.HTML("</b>"),
			)},
		},
		{
			name: "math spans",
			src:  "Euler $$e^{i\\pi}$$ and $x$.",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Text("Euler "),
				mdast.Math(`e^{i\pi}`, 0, true),
				mdast.Text(" and "),
				mdast.Math("x", 1, false),
				mdast.Text("."),
			)},
		},
		{
			name: "math inside code is literal",
			src:  "`$$x$$` and `$y$`",
			want: []mdast.Block{mdast.Paragraph(
				mdast.Code("$$x$$"),
				mdast.Text(" and "),
				mdast.Code("$y$"),
			)},
		},
		{
			name: "math inside fenced code is literal",
			src:  "```\n$$x$$\n```",
			want: []mdast.Block{mdast.CodeBlock("", "$$x$$\n")},
		},
		{
			name: "escaped dollars are currency",
			src:  `\$5 and \$6`,
			want: []mdast.Block{mdast.Paragraph(mdast.Text("$5 and $6"))},
		},
		{
			name: "display math block",
			src:  "$$\nx^2\n$$",
			want: []mdast.Block{mdast.Paragraph(mdast.Math("x^2", 0, true))},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got := p.Parse(testCase.src)
			assert.True(t, mdast.BlocksEqual(testCase.want, got.Document),
				"want %#v\ngot  %#v", testCase.want, got.Document)
		})
	}
}

func TestParser_ParseMathContext(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)
	got := p.Parse("# $a$\n\n> $$b$$\n\n- \\(c\\)")

	assert.Equal(t, map[int]string{0: "a", 1: "b", 2: "c"}, got.Math)
}

func TestParser_CommonMarkHasNoExtensions(t *testing.T) {
	t.Parallel()

	p := New(FlavorCommonMark)
	got := p.Parse("~~s~~ https://example.com")

	want := []mdast.Block{mdast.Paragraph(mdast.Text("~~s~~ https://example.com"))}
	assert.True(t, mdast.BlocksEqual(want, got.Document), "got %#v", got.Document)
}

func TestParser_ParseBlockRange(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)

	type span struct {
		kind       string
		start, end int
		count      int
	}

	tests := []struct {
		name string
		src  string
		want []span
	}{
		{
			name: "empty",
			src:  "",
			want: nil,
		},
		{
			name: "paragraphs",
			src:  "Alpha\n\nBravo",
			want: []span{{"Paragraph", 0, 5, 1}, {"Paragraph", 7, 12, 1}},
		},
		{
			name: "trailing newline is trimmed",
			src:  "Alpha\n\nBravo\n\n# Charlie\n",
			want: []span{{"Paragraph", 0, 5, 1}, {"Paragraph", 7, 12, 1}, {"Heading", 14, 23, 1}},
		},
		{
			name: "leading blank lines",
			src:  "\n\nx",
			want: []span{{"Paragraph", 2, 3, 1}},
		},
		{
			name: "setext heading",
			src:  "Title\n=====\n\nNext",
			want: []span{{"Heading", 0, 11, 1}, {"Paragraph", 13, 17, 1}},
		},
		{
			name: "containers",
			src:  "> q\n> r\n\n- a\n- b\n\nz",
			want: []span{{"Blockquote", 0, 7, 1}, {"List", 9, 16, 1}, {"Paragraph", 18, 19, 1}},
		},
		{
			name: "mixed list counts every run",
			src:  "- [x] a\n- b\n- [ ] c",
			want: []span{{"List", 0, 19, 3}},
		},
		{
			name: "table after paragraph lines",
			src:  "intro\n| a |\n| - |\n| b |",
			want: []span{{"Paragraph", 0, 5, 1}, {"Table", 6, 23, 1}},
		},
		{
			name: "definition-only paragraph produces no block",
			src:  "[a]: /u\n\ntext",
			want: []span{{"TextBlock", 0, 7, 0}, {"Paragraph", 9, 13, 1}},
		},
		{
			name: "definition between paragraphs",
			src:  "text\n\n[a]: /u\n\nmore [a]",
			want: []span{{"Paragraph", 0, 4, 1}, {"TextBlock", 6, 13, 0}, {"Paragraph", 15, 23, 1}},
		},
		{
			name: "paragraph starts after stripped definition",
			src:  "[a]: /u\ntext",
			want: []span{{"Paragraph", 8, 12, 1}},
		},
		{
			name: "math offsets map to source",
			src:  "$$a$$\n\nb",
			want: []span{{"Paragraph", 0, 5, 1}, {"Paragraph", 7, 8, 1}},
		},
		{
			name: "fenced code",
			src:  "```\ncode\n```\n\nafter",
			want: []span{{"FencedCodeBlock", 0, 12, 1}, {"Paragraph", 14, 19, 1}},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ranges := p.ParseBlockRange(testCase.src)
			require.Len(t, ranges, len(testCase.want))
			for i, r := range ranges {
				want := testCase.want[i]
				assert.Equal(t, want.kind, r.Kind, "range %d kind", i)
				assert.Equal(t, want.start, r.Range.StartOffset, "range %d start", i)
				assert.Equal(t, want.end, r.Range.EndOffset, "range %d end", i)
				assert.Equal(t, want.count, r.OutputBlockCount, "range %d count", i)
			}
		})
	}
}

func TestParser_DefinitionOnlyParagraph(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)
	result := p.Parse("text\n\n[a]: /u\n\nmore [a]")

	want := []mdast.Block{
		mdast.Paragraph(mdast.Text("text")),
		mdast.Paragraph(mdast.Text("more "), mdast.Link("/u", "", mdast.Text("a"))),
	}
	require.Len(t, result.Document, 2)
	assert.True(t, mdast.BlocksEqual(want, result.Document), "got %#v", result.Document)
}

func TestParser_DefinesReferences(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)

	tests := []struct {
		name string
		src  string
		want []bool
	}{
		{
			name: "definition-only paragraph",
			src:  "text\n\n[a]: /u\n\nmore [a]",
			want: []bool{false, true, false},
		},
		{
			name: "definition before paragraph text",
			src:  "[a]: /u\ntext",
			want: []bool{true},
		},
		{
			name: "definition in blockquote",
			src:  "> [a]: /u\n> q\n\nz",
			want: []bool{true, false},
		},
		{
			name: "definition in list item",
			src:  "- [a]: /u\n- b\n\nz",
			want: []bool{true, false},
		},
		{
			name: "definition syntax in fenced code",
			src:  "```python\ndef f() -> list[int]:\n    [a]: /u\n```\n\nz",
			want: []bool{false, false},
		},
		{
			name: "definition syntax mid-line",
			src:  "see [a]: /u",
			want: []bool{false},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			ranges := p.ParseBlockRange(testCase.src)
			require.Len(t, ranges, len(testCase.want))
			for i, r := range ranges {
				assert.Equal(t, testCase.want[i], r.DefinesReferences, "range %d (%s)", i, r.Kind)
			}
			assert.Equal(t, slices.Contains(testCase.want, true), mdast.DefinesReferences(ranges))
		})
	}
}

func TestParser_TailReparseMatchesSuffix(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)
	docs := []string{
		"# Title\n\nSome *text* here.\n\n- a\n- b\n\n> quote\n\n```go\nx := 1\n```\n\nend",
		"para $x$ one\n\n$$y$$\n\n| a | b |\n| - | - |\n| 1 | 2 |\n\nlast $z$",
		"Head\n----\n\n1. one\n2. two\n\n---\n\n<div>\nhtml\n</div>\n\ntail",
	}

	for _, src := range docs {
		result, ranges := p.ParseWithRanges(src)

		blockIndex := 0
		for _, r := range ranges {
			tail := p.Parse(src[r.Range.StartOffset:])
			want := result.Document[blockIndex:]
			require.Len(t, tail.Document, len(want), "tail at %d of %q", r.Range.StartOffset, src)
			for i := range want {
				assert.True(t, want[i].Equal(tail.Document[i]) || hasMath(want[i]),
					"block %d of tail at %d differs", i, r.Range.StartOffset)
			}
			blockIndex += r.OutputBlockCount
		}
	}
}

func hasMath(b mdast.Block) bool {
	found := false
	mdast.WalkInlines([]mdast.Block{b}, func(in mdast.Inline) {
		if in.Kind == mdast.InlineMath {
			found = true
		}
	})
	return found
}

func TestParser_Deterministic(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)
	src := "# A\n\n$x$ and $$y$$\n\n- [x] t\n- u\n"

	first, firstRanges := p.ParseWithRanges(src)
	second, secondRanges := p.ParseWithRanges(src)

	assert.True(t, first.Equal(second))
	assert.Equal(t, firstRanges, secondRanges)
}

func TestParser_ConcurrentUse(t *testing.T) {
	t.Parallel()

	p := New(FlavorGFM)
	src := "# A\n\n| a |\n| - |\n| b |\n\n$x$\n"
	want := p.Parse(src)

	var wg sync.WaitGroup
	results := make([]mdast.ParseResult, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Parse(src)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.True(t, want.Equal(got), "result %d differs", i)
	}
}
