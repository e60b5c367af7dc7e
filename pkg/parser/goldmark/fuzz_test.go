package goldmark

import (
	"testing"

	"github.com/yaklabco/mdstream/pkg/mathindex"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// FuzzParseWithRanges checks that parsing never panics and that the reported
// ranges stay ordered, inside the text, and account for every output block.
func FuzzParseWithRanges(f *testing.F) {
	seeds := []string{
		"",
		"Hello, world!",
		"# Heading\n\ntext",
		"- list\n- items",
		"```\ncode\n```",
		"*emphasis* and **strong**",
		"[link](url) and ![image](src)",
		"- [x] task 1\n- [ ] task 2\n- plain",
		"| a | b |\n|---|---|\n| 1 | 2 |",
		"~~strike~~ https://example.com",
		"$$x$$ and $y$ and \\(z\\) and \\[w\\]",
		"[a]: /u\ntext\n\n[b]: /v",
		"Title\n===\n\n> quote\n> $$\n> x\n> $$",
		"\n\n\n",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	p := New(FlavorGFM)

	f.Fuzz(func(t *testing.T, src string) {
		result, ranges := p.ParseWithRanges(src)

		total := 0
		prevStart := 0
		prevEnd := 0
		for i, r := range ranges {
			if r.Range.StartOffset < prevStart || r.Range.StartOffset < prevEnd {
				t.Fatalf("range %d starts at %d before previous (%d, %d)", i, r.Range.StartOffset, prevStart, prevEnd)
			}
			if r.Range.EndOffset < r.Range.StartOffset || r.Range.EndOffset > len(src) {
				t.Fatalf("range %d is invalid: %+v (len %d)", i, r.Range, len(src))
			}
			prevStart, prevEnd = r.Range.StartOffset, r.Range.EndOffset
			total += r.OutputBlockCount
		}
		if total != len(result.Document) {
			t.Fatalf("ranges account for %d blocks, document has %d", total, len(result.Document))
		}

		ids := mathindex.Identifiers(result.Document)
		for want, id := range ids {
			if id != want {
				t.Fatalf("math identifiers not in document order: %v", ids)
			}
		}
		if len(result.Math) != len(ids) {
			t.Fatalf("math context has %d entries, document has %d", len(result.Math), len(ids))
		}
		mdast.WalkInlines(result.Document, func(in mdast.Inline) {
			if in.Kind == mdast.InlineMath && result.Math[in.MathID] != in.Literal {
				t.Fatalf("math %d context mismatch", in.MathID)
			}
		})
	})
}
