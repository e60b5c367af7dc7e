package goldmark

import (
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// goldmark keeps line segments for leaf blocks only, so container blocks carry
// no position. The tracker records the start of every top-level block as the
// block parsers open it.

//nolint:gochecknoglobals // goldmark context keys are process-wide
var trackerKey = parser.NewContextKey()

// blockTracker maps top-level goldmark blocks to the byte offset of the line
// they start on, and marks the ones holding link reference definitions.
type blockTracker struct {
	starts     map[ast.Node]int
	references map[ast.Node]bool
}

func newBlockTracker() *blockTracker {
	return &blockTracker{
		starts:     make(map[ast.Node]int),
		references: make(map[ast.Node]bool),
	}
}

func trackerFrom(pc parser.Context) *blockTracker {
	t, _ := pc.Get(trackerKey).(*blockTracker)
	return t
}

// start returns the recorded start of node.
func (t *blockTracker) start(node ast.Node) (int, bool) {
	s, ok := t.starts[node]
	return s, ok
}

// definesReferences reports whether a link reference definition was removed
// from node or from a paragraph nested in it.
func (t *blockTracker) definesReferences(node ast.Node) bool {
	return t.references[node]
}

// topLevelAncestor returns the child of the document that contains node.
func topLevelAncestor(node ast.Node) ast.Node {
	for node.Parent() != nil && node.Parent().Kind() != ast.KindDocument {
		node = node.Parent()
	}
	return node
}

// trackBlockParsers wraps every block parser so that top-level opens are
// recorded. Priorities are preserved.
func trackBlockParsers(values []util.PrioritizedValue) []util.PrioritizedValue {
	out := make([]util.PrioritizedValue, len(values))
	for i, v := range values {
		bp, ok := v.Value.(parser.BlockParser)
		if !ok {
			out[i] = v
			continue
		}
		out[i] = util.Prioritized(&trackedBlockParser{BlockParser: bp}, v.Priority)
	}
	return out
}

// trackedBlockParser records where top-level blocks open.
type trackedBlockParser struct {
	parser.BlockParser
}

// Open implements parser.BlockParser.
func (b *trackedBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	_, seg := reader.Position()
	last := pc.LastOpenedBlock().Node

	node, state := b.BlockParser.Open(parent, reader, pc)
	if node == nil || parent.Kind() != ast.KindDocument {
		return node, state
	}

	t := trackerFrom(pc)
	if t == nil {
		return node, state
	}

	// A setext heading takes over the paragraph above its underline.
	if state&parser.RequireParagraph != 0 && last != nil {
		if s, ok := t.start(last); ok {
			t.starts[node] = s
			return node, state
		}
	}

	t.starts[node] = lineStart(reader.Source(), seg.Start)
	return node, state
}

// SetOption forwards options to the wrapped parser.
func (b *trackedBlockParser) SetOption(name parser.OptionName, value any) {
	if so, ok := b.BlockParser.(parser.SetOptioner); ok {
		so.SetOption(name, value)
	}
}

// trackParagraphTransformers wraps every paragraph transformer so that the
// blocks they insert are tracked. definitions marks transformers whose
// removed lines are link reference definitions.
func trackParagraphTransformers(values []util.PrioritizedValue, definitions bool) []util.PrioritizedValue {
	out := make([]util.PrioritizedValue, len(values))
	for i, v := range values {
		pt, ok := v.Value.(parser.ParagraphTransformer)
		if !ok {
			out[i] = v
			continue
		}
		out[i] = util.Prioritized(&trackedParagraphTransformer{ParagraphTransformer: pt, definitions: definitions}, v.Priority)
	}
	return out
}

// trackedParagraphTransformer records the start of blocks that a paragraph
// transformer inserts next to a top-level paragraph, such as GFM tables or
// the empty text block left by a definition-only paragraph.
type trackedParagraphTransformer struct {
	parser.ParagraphTransformer

	// definitions is set for the link reference transformer.
	definitions bool
}

// Transform implements parser.ParagraphTransformer.
func (p *trackedParagraphTransformer) Transform(node *ast.Paragraph, reader text.Reader, pc parser.Context) {
	parent := node.Parent()
	t := trackerFrom(pc)
	if parent == nil || t == nil {
		p.ParagraphTransformer.Transform(node, reader, pc)
		return
	}
	if parent.Kind() != ast.KindDocument {
		before := node.Lines().Len()
		p.ParagraphTransformer.Transform(node, reader, pc)
		if p.definitions && (node.Parent() == nil || node.Lines().Len() < before) {
			t.references[topLevelAncestor(parent)] = true
		}
		return
	}

	source := reader.Source()
	lines := node.Lines()
	lineStarts := make([]int, lines.Len())
	for i := range lineStarts {
		lineStarts[i] = lineStart(source, lines.At(i).Start)
	}
	paragraphStart, ok := t.start(node)
	if !ok && len(lineStarts) > 0 {
		paragraphStart = lineStarts[0]
	}
	prev := node.PreviousSibling()
	next := node.NextSibling()

	p.ParagraphTransformer.Transform(node, reader, pc)

	kept := 0
	if node.Parent() != nil {
		kept = node.Lines().Len()
		if p.definitions && kept < len(lineStarts) {
			t.references[node] = true
		}
	}

	first := parent.FirstChild()
	if prev != nil {
		first = prev.NextSibling()
	}
	for n := first; n != nil && n != next; n = n.NextSibling() {
		if n == node {
			continue
		}
		if _, seen := t.start(n); seen {
			continue
		}
		if p.definitions {
			t.references[n] = true
		}
		start := paragraphStart
		if kept > 0 && kept < len(lineStarts) {
			start = lineStarts[kept]
		}
		t.starts[n] = start
	}
}

// lineStart returns the offset of the first byte of the line containing pos.
func lineStart(source []byte, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	for pos > 0 && source[pos-1] != '\n' {
		pos--
	}
	return pos
}
