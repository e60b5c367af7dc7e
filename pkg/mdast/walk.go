package mdast

// Node is the generic traversal view over blocks, list items, table cells and
// inlines. Children returns the node's direct descendants in source order;
// leaves return nil.
type Node interface {
	Children() []Node
}

// Children implements Node.
//
// Paragraphs and headings yield their inlines, lists yield their items,
// blockquotes their blocks and tables every cell row by row. Code blocks and
// thematic breaks are leaves.
func (b Block) Children() []Node {
	switch b.Kind {
	case BlockParagraph, BlockHeading:
		return inlineNodes(b.Inlines)
	case BlockBulletList, BlockNumberedList, BlockTaskList:
		nodes := make([]Node, len(b.Items))
		for i, it := range b.Items {
			nodes[i] = it
		}
		return nodes
	case BlockQuote:
		return blockNodes(b.Blocks)
	case BlockTable:
		var nodes []Node
		for _, row := range b.Rows {
			for _, cell := range row {
				nodes = append(nodes, cell)
			}
		}
		return nodes
	default:
		return nil
	}
}

// Children implements Node.
func (it ListItem) Children() []Node { return blockNodes(it.Blocks) }

// Children implements Node.
func (c TableCell) Children() []Node { return inlineNodes(c.Inlines) }

// Children implements Node.
func (n Inline) Children() []Node {
	if !n.Kind.IsContainer() {
		return nil
	}
	return inlineNodes(n.Content)
}

func blockNodes(bs []Block) []Node {
	if len(bs) == 0 {
		return nil
	}
	nodes := make([]Node, len(bs))
	for i, b := range bs {
		nodes[i] = b
	}
	return nodes
}

func inlineNodes(ns []Inline) []Node {
	if len(ns) == 0 {
		return nil
	}
	nodes := make([]Node, len(ns))
	for i, n := range ns {
		nodes[i] = n
	}
	return nodes
}

// WalkFunc is called for every node visited by Walk. Returning false skips
// the node's children.
type WalkFunc func(n Node) bool

// Walk performs a pre-order traversal of root.
func Walk(root Node, fn WalkFunc) {
	if root == nil || !fn(root) {
		return
	}
	for _, child := range root.Children() {
		Walk(child, fn)
	}
}

// WalkBlocks walks every top-level block of doc in order.
func WalkBlocks(doc []Block, fn WalkFunc) {
	for _, b := range doc {
		Walk(b, fn)
	}
}

// WalkInlines calls fn for every inline node in doc, in document order.
func WalkInlines(doc []Block, fn func(Inline)) {
	WalkBlocks(doc, func(n Node) bool {
		if in, ok := n.(Inline); ok {
			fn(in)
		}
		return true
	})
}

// RewriteFunc maps one inline node to zero or more replacements.
type RewriteFunc func(Inline) []Inline

// RewriteInlines returns a copy of doc in which every inline node has been
// passed through fn. Children are rewritten before their parent, so fn sees
// containers whose descendants are already rewritten. The input is not
// modified.
func RewriteInlines(doc []Block, fn RewriteFunc) []Block {
	if doc == nil {
		return nil
	}
	out := make([]Block, len(doc))
	for i, b := range doc {
		out[i] = rewriteBlock(b, fn)
	}
	return out
}

func rewriteBlock(b Block, fn RewriteFunc) Block {
	switch b.Kind {
	case BlockParagraph, BlockHeading:
		b.Inlines = rewriteInlines(b.Inlines, fn)
	case BlockBulletList, BlockNumberedList, BlockTaskList:
		items := make([]ListItem, len(b.Items))
		for i, it := range b.Items {
			items[i] = ListItem{Checked: it.Checked, Blocks: RewriteInlines(it.Blocks, fn)}
		}
		b.Items = items
	case BlockQuote:
		b.Blocks = RewriteInlines(b.Blocks, fn)
	case BlockTable:
		rows := make([]TableRow, len(b.Rows))
		for i, row := range b.Rows {
			cells := make(TableRow, len(row))
			for j, cell := range row {
				cells[j] = TableCell{Inlines: rewriteInlines(cell.Inlines, fn)}
			}
			rows[i] = cells
		}
		b.Rows = rows
	}
	return b
}

func rewriteInlines(ns []Inline, fn RewriteFunc) []Inline {
	if ns == nil {
		return nil
	}
	out := make([]Inline, 0, len(ns))
	for _, n := range ns {
		if n.Kind.IsContainer() {
			n.Content = rewriteInlines(n.Content, fn)
		}
		out = append(out, fn(n)...)
	}
	return out
}
