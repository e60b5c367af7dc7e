package incremental_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/yaklabco/mdstream/pkg/incremental"
)

// FuzzIncrementalEquivalence checks that whenever the fast path or the
// controller accepts an append, the result equals a full parse.
func FuzzIncrementalEquivalence(f *testing.F) {
	seeds := []struct{ prev, suffix string }{
		{sixParagraphs, " extended"},
		{sixParagraphs, "\n\n```swift\nlet value = 1"},
		{sixParagraphs + "\n\n- a\n- b", "\n- c"},
		{sixParagraphs + "\n\n| a |\n| - |", "\n| b |"},
		{sixParagraphs + "\n\n> quote", "\ncontinued"},
		{sixParagraphs + "\n\nTitle", "\n====="},
		{"# A\n\n$x$\n\nB\n\nC\n\nD", " $y$ and $$z$$"},
		{"# A\n# B\n# C $$x\n# D\n# E\n# F", " $$"},
		{"A\n\nB\n\nC\n\nD\n\n<div>", "\n</div>"},
		{"A\n\nB\n\nC\n\nD\n\nE", "\n---"},
		{sixParagraphs + "\n\n[x]:", " /url"},
		{"[x]: /url\n\n" + sixParagraphs, " [x]"},
	}
	for _, seed := range seeds {
		f.Add(seed.prev, seed.suffix)
	}

	ctrl := incremental.New(parser, incremental.Options{})

	f.Fuzz(func(t *testing.T, prevText, suffix string) {
		newText := prevText + suffix
		prev, prevRanges := parser.ParseWithRanges(prevText)
		full := parser.Parse(newText)

		if blocks, reason := incremental.AppendPlainText(prevText, newText, prev.Document, prevRanges); reason == incremental.SkipNone {
			if diff := cmp.Diff(full.Document, blocks, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("fast path differs for %q + %q (-full +fast):\n%s", prevText, suffix, diff)
			}
		}

		result, reason := ctrl.Parse(prevText, newText, prev.Document, prevRanges)
		if result == nil {
			if reason == incremental.SkipNone {
				t.Fatal("nil result without a skip reason")
			}
			return
		}
		if result.StablePrefixBlockCount > len(prev.Document) {
			t.Fatalf("stable prefix %d exceeds %d previous blocks", result.StablePrefixBlockCount, len(prev.Document))
		}
		if diff := cmp.Diff(full, result.Merge(prev.Document), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("incremental parse differs for %q + %q (-full +merged):\n%s", prevText, suffix, diff)
		}
	})
}
