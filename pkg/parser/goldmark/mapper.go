package goldmark

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/mdstream/pkg/mathindex"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// mapper converts a goldmark AST into mdast blocks.
//
// Text literals are left raw (escapes and references unresolved) so that
// mathindex.Resolve can promote single-dollar spans before the text is
// finished. Verbatim content such as code and raw HTML has its math
// placeholders restored here.
type mapper struct {
	content []byte
	math    *mathindex.Extraction
}

// newMapper creates a new mapper for grammar input content.
func newMapper(content []byte, math *mathindex.Extraction) *mapper {
	return &mapper{content: content, math: math}
}

// mapBlock converts one goldmark block into zero or more mdast blocks.
func (m *mapper) mapBlock(gmNode ast.Node) []mdast.Block {
	switch gmn := gmNode.(type) {
	case *ast.Paragraph:
		return []mdast.Block{mdast.Paragraph(m.mapInlines(gmn)...)}

	case *ast.TextBlock:
		// A paragraph made only of link reference definitions leaves an
		// empty text block behind.
		if gmn.Lines().Len() == 0 && !gmn.HasChildren() {
			return nil
		}
		return []mdast.Block{mdast.Paragraph(m.mapInlines(gmn)...)}

	case *ast.Heading:
		return []mdast.Block{mdast.Heading(gmn.Level, m.mapInlines(gmn)...)}

	case *ast.ThematicBreak:
		return []mdast.Block{mdast.ThematicBreak()}

	case *ast.FencedCodeBlock:
		info := ""
		if gmn.Info != nil {
			info = strings.TrimSpace(m.math.Restore(string(gmn.Info.Segment.Value(m.content))))
		}
		return []mdast.Block{mdast.CodeBlock(info, m.lines(gmn))}

	case *ast.CodeBlock:
		return []mdast.Block{mdast.CodeBlock("", m.lines(gmn))}

	case *ast.Blockquote:
		return []mdast.Block{mdast.Blockquote(m.mapChildren(gmn)...)}

	case *ast.List:
		return m.mapList(gmn)

	case *ast.HTMLBlock:
		raw := m.lines(gmn)
		if gmn.HasClosure() {
			raw += m.math.Restore(string(gmn.ClosureLine.Value(m.content)))
		}
		return []mdast.Block{mdast.Paragraph(mdast.HTML(strings.TrimRight(raw, "\n")))}

	case *east.Table:
		return []mdast.Block{m.mapTable(gmn)}

	default:
		// Unknown containers contribute their children.
		return m.mapChildren(gmNode)
	}
}

// mapChildren converts all block children of gmParent.
func (m *mapper) mapChildren(gmParent ast.Node) []mdast.Block {
	var blocks []mdast.Block
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		blocks = append(blocks, m.mapBlock(child)...)
	}
	return blocks
}

// lines joins the raw line segments of a leaf block.
func (m *mapper) lines(gmNode ast.Node) string {
	var sb strings.Builder
	lines := gmNode.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		sb.Write(seg.Value(m.content))
	}
	return m.math.Restore(sb.String())
}

// mapList converts a goldmark list. Items with and without a task checkbox
// are split into separate runs: task runs become task lists, the others stay
// bulleted or numbered. A numbered run keeps the ordinal of its first item.
func (m *mapper) mapList(list *ast.List) []mdast.Block {
	type entry struct {
		item mdast.ListItem
		task bool
	}

	var entries []entry
	for child := list.FirstChild(); child != nil; child = child.NextSibling() {
		item, task := m.mapListItem(child)
		entries = append(entries, entry{item: item, task: task})
	}

	var blocks []mdast.Block
	for i := 0; i < len(entries); {
		j := i
		var items []mdast.ListItem
		for j < len(entries) && entries[j].task == entries[i].task {
			items = append(items, entries[j].item)
			j++
		}

		switch {
		case entries[i].task:
			blocks = append(blocks, mdast.TaskList(items...))
		case list.IsOrdered():
			blocks = append(blocks, mdast.NumberedList(list.Start+i, items...))
		default:
			blocks = append(blocks, mdast.BulletList(items...))
		}
		i = j
	}
	return blocks
}

// mapListItem converts one list item and reports whether it carries a task
// checkbox.
func (m *mapper) mapListItem(gmItem ast.Node) (mdast.ListItem, bool) {
	checkbox := findCheckBox(gmItem)
	if checkbox == nil {
		return mdast.Item(m.mapChildren(gmItem)...), false
	}

	holder := checkbox.Parent()
	following := checkbox.NextSibling()
	holder.RemoveChild(holder, checkbox)
	if t, ok := following.(*ast.Text); ok {
		value := t.Segment.Value(m.content)
		trimmed := len(value) - len(strings.TrimLeft(string(value), " \t"))
		t.Segment = t.Segment.WithStart(t.Segment.Start + trimmed)
	}

	blocks := m.mapChildren(gmItem)
	if len(blocks) > 0 && blocks[0].Kind == mdast.BlockParagraph && len(blocks[0].Inlines) == 0 {
		blocks = blocks[1:]
	}
	return mdast.Task(checkbox.IsChecked, blocks...), true
}

// findCheckBox returns the task checkbox leading the first block of a list
// item, or nil.
func findCheckBox(gmItem ast.Node) *east.TaskCheckBox {
	first := gmItem.FirstChild()
	if first == nil {
		return nil
	}
	cb, _ := first.FirstChild().(*east.TaskCheckBox)
	return cb
}

// mapTable converts a GFM table. The header row comes first.
func (m *mapper) mapTable(table *east.Table) mdast.Block {
	alignments := make([]mdast.Alignment, len(table.Alignments))
	for i, a := range table.Alignments {
		alignments[i] = mapAlignment(a)
	}

	var rows []mdast.TableRow
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells mdast.TableRow
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, mdast.Cell(m.mapInlines(cell)...))
		}
		rows = append(rows, cells)
	}
	return mdast.Table(alignments, rows...)
}

func mapAlignment(a east.Alignment) mdast.Alignment {
	switch a {
	case east.AlignLeft:
		return mdast.AlignLeft
	case east.AlignCenter:
		return mdast.AlignCenter
	case east.AlignRight:
		return mdast.AlignRight
	default:
		return mdast.AlignNone
	}
}

// mapInlines converts the inline children of gmParent, merging adjacent
// text runs.
func (m *mapper) mapInlines(gmParent ast.Node) []mdast.Inline {
	var out []mdast.Inline
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		out = m.appendInline(out, child)
	}
	return mergeText(out)
}

func (m *mapper) appendInline(out []mdast.Inline, gmNode ast.Node) []mdast.Inline {
	switch gmn := gmNode.(type) {
	case *ast.Text:
		if value := gmn.Segment.Value(m.content); len(value) > 0 {
			out = append(out, mdast.Text(string(value)))
		}
		switch {
		case gmn.HardLineBreak():
			out = append(out, mdast.LineBreak())
		case gmn.SoftLineBreak():
			out = append(out, mdast.SoftBreak())
		}
		return out

	case *ast.String:
		return append(out, mdast.Text(string(gmn.Value)))

	case *ast.CodeSpan:
		return append(out, mdast.Code(m.codeSpan(gmn)))

	case *ast.Emphasis:
		if gmn.Level == 2 {
			return append(out, mdast.Strong(m.mapInlines(gmn)...))
		}
		return append(out, mdast.Emphasis(m.mapInlines(gmn)...))

	case *ast.Link:
		return append(out, mdast.Link(
			m.math.RestoreUnescaped(string(gmn.Destination)),
			m.math.RestoreUnescaped(string(gmn.Title)),
			m.mapInlines(gmn)...,
		))

	case *ast.Image:
		return append(out, mdast.Image(
			m.math.RestoreUnescaped(string(gmn.Destination)),
			m.math.RestoreUnescaped(string(gmn.Title)),
			m.mapInlines(gmn)...,
		))

	case *ast.AutoLink:
		url := m.math.Restore(string(gmn.URL(m.content)))
		label := m.math.Restore(string(gmn.Label(m.content)))
		return append(out, mdast.Link(url, "", mdast.Text(label)))

	case *ast.RawHTML:
		var sb strings.Builder
		for i := range gmn.Segments.Len() {
			seg := gmn.Segments.At(i)
			sb.Write(seg.Value(m.content))
		}
		return append(out, mdast.HTML(m.math.Restore(sb.String())))

	case *east.Strikethrough:
		return append(out, mdast.Strikethrough(m.mapInlines(gmn)...))

	case *east.TaskCheckBox:
		return out

	default:
		for child := gmNode.FirstChild(); child != nil; child = child.NextSibling() {
			out = m.appendInline(out, child)
		}
		return out
	}
}

// codeSpan joins the segments of a code span. Line endings become spaces.
func (m *mapper) codeSpan(span *ast.CodeSpan) string {
	var sb strings.Builder
	for child := span.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(m.content))
		case *ast.String:
			sb.Write(c.Value)
		}
	}
	return strings.ReplaceAll(m.math.Restore(sb.String()), "\n", " ")
}

// mergeText joins consecutive text nodes.
func mergeText(in []mdast.Inline) []mdast.Inline {
	if len(in) < 2 {
		return in
	}
	out := in[:0:0]
	for _, n := range in {
		if n.Kind == mdast.InlineText && len(out) > 0 && out[len(out)-1].Kind == mdast.InlineText {
			out[len(out)-1].Literal += n.Literal
			continue
		}
		out = append(out, n)
	}
	return out
}

// finishText resolves backslash escapes and character references in a raw
// text literal, the way goldmark's renderer does when writing text.
func finishText(raw string) string {
	if !strings.ContainsAny(raw, `\&`) {
		return raw
	}

	src := []byte(raw)
	out := make([]byte, 0, len(src))
	start := 0
	for i := 0; i < len(src); i++ {
		if src[i] != '\\' || i+1 >= len(src) || !util.IsPunct(src[i+1]) {
			continue
		}
		out = append(out, resolveReferences(src[start:i])...)
		out = append(out, src[i+1])
		i++
		start = i + 1
	}
	out = append(out, resolveReferences(src[start:])...)
	return string(out)
}

func resolveReferences(b []byte) []byte {
	if len(b) == 0 {
		return b
	}
	return util.ResolveEntityNames(util.ResolveNumericReferences(b))
}
