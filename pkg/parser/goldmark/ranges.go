package goldmark

import (
	"github.com/yuin/goldmark/ast"

	"github.com/yaklabco/mdstream/pkg/mathindex"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// topLevel is one top-level goldmark block with its converted output.
type topLevel struct {
	node       ast.Node
	start      int // offset in grammar input
	blocks     []mdast.Block
	references bool
}

// blockStart returns where node starts in the grammar input. Paragraphs start
// at their first remaining line, since leading link reference definitions
// are stripped from them. Other blocks use the tracked open position and fall
// back to the earliest segment in their subtree, then to floor.
func blockStart(t *blockTracker, node ast.Node, content []byte, floor int) int {
	if p, ok := node.(*ast.Paragraph); ok && p.Lines().Len() > 0 {
		return max(lineStart(content, p.Lines().At(0).Start), floor)
	}
	if t != nil {
		if s, ok := t.start(node); ok {
			return max(s, floor)
		}
	}
	if s, ok := minSegmentStart(node); ok {
		return max(lineStart(content, s), floor)
	}
	return floor
}

// minSegmentStart returns the smallest source offset referenced anywhere in
// the subtree of node.
func minSegmentStart(node ast.Node) (int, bool) {
	best, found := 0, false
	consider := func(s int) {
		if !found || s < best {
			best, found = s, true
		}
	}

	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Text:
			consider(v.Segment.Start)
		case *ast.RawHTML:
			if v.Segments.Len() > 0 {
				consider(v.Segments.At(0).Start)
			}
		default:
			if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
				consider(n.Lines().At(0).Start)
			}
		}
		return ast.WalkContinue, nil
	})
	return best, found
}

// rootRanges converts the top-level blocks into source ranges. Each block ends
// where the next begins, minus the blank lines in between; the last block
// ends at the end of the text. Definition-only blocks keep their range with an
// output count of 0 so that their text belongs to a block.
func rootRanges(blocks []topLevel, content []byte, math *mathindex.Extraction) []mdast.RootBlockRange {
	ranges := make([]mdast.RootBlockRange, len(blocks))
	for i, b := range blocks {
		end := len(content)
		if i+1 < len(blocks) {
			end = blocks[i+1].start
		}
		end = trimTrailingBlankLines(content, b.start, end)

		ranges[i] = mdast.RootBlockRange{
			Kind: b.node.Kind().String(),
			Range: mdast.SourceRange{
				StartOffset: math.SourceOffset(b.start),
				EndOffset:   math.SourceOffset(end),
			},
			OutputBlockCount:  len(b.blocks),
			DefinesReferences: b.references,
		}
	}
	return ranges
}

// trimTrailingBlankLines moves end back over whitespace-only lines and the
// line break that precedes them, never past start.
func trimTrailingBlankLines(content []byte, start, end int) int {
	for end > start {
		j := end
		for j > start && (content[j-1] == ' ' || content[j-1] == '\t' || content[j-1] == '\r') {
			j--
		}
		if j > start && content[j-1] == '\n' {
			end = j - 1
			if end > start && content[end-1] == '\r' {
				end--
			}
			continue
		}
		if j == start {
			end = start
		}
		break
	}
	return end
}
