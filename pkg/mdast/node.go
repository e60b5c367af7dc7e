// Package mdast defines the block-level Markdown tree produced by the parser
// and consumed by the diff engine and by renderers.
//
// All node types are plain values. Two trees are equal when their contents are
// equal; nothing in this package compares pointers.
package mdast

import "slices"

// BlockKind classifies a block node.
type BlockKind uint8

// Block kinds.
const (
	BlockParagraph BlockKind = iota
	BlockHeading
	BlockBulletList
	BlockNumberedList
	BlockTaskList
	BlockCode
	BlockQuote
	BlockTable
	BlockThematicBreak
)

var blockKindNames = [...]string{
	BlockParagraph:     "Paragraph",
	BlockHeading:       "Heading",
	BlockBulletList:    "BulletList",
	BlockNumberedList:  "NumberedList",
	BlockTaskList:      "TaskList",
	BlockCode:          "CodeBlock",
	BlockQuote:         "Blockquote",
	BlockTable:         "Table",
	BlockThematicBreak: "ThematicBreak",
}

func (k BlockKind) String() string {
	if int(k) < len(blockKindNames) {
		return blockKindNames[k]
	}
	return "BlockKind(?)"
}

// IsList reports whether the kind is one of the three list kinds.
func (k BlockKind) IsList() bool {
	return k == BlockBulletList || k == BlockNumberedList || k == BlockTaskList
}

// Alignment is the horizontal alignment of a table column.
type Alignment uint8

// Column alignments.
const (
	AlignNone Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "none"
	}
}

// Block is a block-level node. Kind selects which payload fields are in use:
//
//	BlockParagraph     Inlines
//	BlockHeading       Level, Inlines
//	BlockBulletList    Items
//	BlockNumberedList  Start, Items
//	BlockTaskList      Items (with Checked)
//	BlockCode          Info, Code
//	BlockQuote         Blocks
//	BlockTable         Alignments, Rows (first row is the header)
//	BlockThematicBreak (none)
type Block struct {
	Kind BlockKind

	Level int
	Start int

	// Info is the fence info string of a code block, empty when absent.
	Info string
	Code string

	Inlines    []Inline
	Items      []ListItem
	Blocks     []Block
	Alignments []Alignment
	Rows       []TableRow
}

// ListItem is one entry of a list block.
type ListItem struct {
	// Checked is the completion flag of a task list item.
	Checked bool
	Blocks  []Block
}

// TableRow is a sequence of cells.
type TableRow []TableCell

// TableCell holds the inline content of one table cell.
type TableCell struct {
	Inlines []Inline
}

// Paragraph returns a paragraph block.
func Paragraph(inlines ...Inline) Block {
	return Block{Kind: BlockParagraph, Inlines: inlines}
}

// Heading returns a heading block of the given level.
func Heading(level int, inlines ...Inline) Block {
	return Block{Kind: BlockHeading, Level: level, Inlines: inlines}
}

// BulletList returns an unordered list block.
func BulletList(items ...ListItem) Block {
	return Block{Kind: BlockBulletList, Items: items}
}

// NumberedList returns an ordered list block whose first item has ordinal start.
func NumberedList(start int, items ...ListItem) Block {
	return Block{Kind: BlockNumberedList, Start: start, Items: items}
}

// TaskList returns a task list block.
func TaskList(items ...ListItem) Block {
	return Block{Kind: BlockTaskList, Items: items}
}

// CodeBlock returns a code block. info may be empty.
func CodeBlock(info, code string) Block {
	return Block{Kind: BlockCode, Info: info, Code: code}
}

// Blockquote returns a blockquote wrapping blocks.
func Blockquote(blocks ...Block) Block {
	return Block{Kind: BlockQuote, Blocks: blocks}
}

// Table returns a table block.
func Table(alignments []Alignment, rows ...TableRow) Block {
	return Block{Kind: BlockTable, Alignments: alignments, Rows: rows}
}

// ThematicBreak returns a thematic break.
func ThematicBreak() Block {
	return Block{Kind: BlockThematicBreak}
}

// Item returns a list item.
func Item(blocks ...Block) ListItem {
	return ListItem{Blocks: blocks}
}

// Task returns a task list item.
func Task(checked bool, blocks ...Block) ListItem {
	return ListItem{Checked: checked, Blocks: blocks}
}

// Cell returns a table cell.
func Cell(inlines ...Inline) TableCell {
	return TableCell{Inlines: inlines}
}

// Equal reports whether b and other are structurally identical.
func (b Block) Equal(other Block) bool {
	if b.Kind != other.Kind {
		return false
	}
	switch b.Kind {
	case BlockParagraph:
		return inlinesEqual(b.Inlines, other.Inlines)
	case BlockHeading:
		return b.Level == other.Level && inlinesEqual(b.Inlines, other.Inlines)
	case BlockBulletList, BlockTaskList:
		return slices.EqualFunc(b.Items, other.Items, ListItem.Equal)
	case BlockNumberedList:
		return b.Start == other.Start && slices.EqualFunc(b.Items, other.Items, ListItem.Equal)
	case BlockCode:
		return b.Info == other.Info && b.Code == other.Code
	case BlockQuote:
		return BlocksEqual(b.Blocks, other.Blocks)
	case BlockTable:
		return slices.Equal(b.Alignments, other.Alignments) &&
			slices.EqualFunc(b.Rows, other.Rows, TableRow.Equal)
	case BlockThematicBreak:
		return true
	}
	return false
}

// Equal reports whether two list items are structurally identical.
func (it ListItem) Equal(other ListItem) bool {
	return it.Checked == other.Checked && BlocksEqual(it.Blocks, other.Blocks)
}

// Equal reports whether two rows hold identical cells.
func (r TableRow) Equal(other TableRow) bool {
	return slices.EqualFunc(r, other, TableCell.Equal)
}

// Equal reports whether two cells hold identical inlines.
func (c TableCell) Equal(other TableCell) bool {
	return inlinesEqual(c.Inlines, other.Inlines)
}

// BlocksEqual reports whether two block sequences are identical index for index.
func BlocksEqual(a, b []Block) bool {
	return slices.EqualFunc(a, b, Block.Equal)
}

func inlinesEqual(a, b []Inline) bool {
	return slices.EqualFunc(a, b, Inline.Equal)
}

// ParseResult is the output of a full or incremental parse.
type ParseResult struct {
	// Document holds the top-level blocks in source order.
	Document []Block

	// Math maps a math identifier to its raw LaTeX source.
	Math map[int]string
}

// Equal reports whether both documents and math contexts match.
func (r ParseResult) Equal(other ParseResult) bool {
	if !BlocksEqual(r.Document, other.Document) || len(r.Math) != len(other.Math) {
		return false
	}
	for id, latex := range r.Math {
		if v, ok := other.Math[id]; !ok || v != latex {
			return false
		}
	}
	return true
}
