package mdast

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a structural hash of b. Equal blocks hash equally, so the
// value can key render caches across parses.
func (b Block) Hash() uint64 {
	h := hasher{d: xxhash.New()}
	h.block(b)
	return h.d.Sum64()
}

// Hash returns a structural hash of n.
func (n Inline) Hash() uint64 {
	h := hasher{d: xxhash.New()}
	h.inline(n)
	return h.d.Sum64()
}

// hasher writes a length-prefixed encoding of the tree so that distinct trees
// never produce the same byte stream.
type hasher struct {
	d   *xxhash.Digest
	buf [binary.MaxVarintLen64]byte
}

func (h *hasher) int(v int) {
	n := binary.PutVarint(h.buf[:], int64(v))
	_, _ = h.d.Write(h.buf[:n])
}

func (h *hasher) str(s string) {
	h.int(len(s))
	_, _ = h.d.WriteString(s)
}

func (h *hasher) bool(v bool) {
	if v {
		h.int(1)
		return
	}
	h.int(0)
}

func (h *hasher) block(b Block) {
	h.int(int(b.Kind))
	switch b.Kind {
	case BlockParagraph:
		h.inlines(b.Inlines)
	case BlockHeading:
		h.int(b.Level)
		h.inlines(b.Inlines)
	case BlockBulletList, BlockNumberedList, BlockTaskList:
		if b.Kind == BlockNumberedList {
			h.int(b.Start)
		}
		h.int(len(b.Items))
		for _, it := range b.Items {
			h.bool(it.Checked)
			h.blocks(it.Blocks)
		}
	case BlockCode:
		h.str(b.Info)
		h.str(b.Code)
	case BlockQuote:
		h.blocks(b.Blocks)
	case BlockTable:
		h.int(len(b.Alignments))
		for _, a := range b.Alignments {
			h.int(int(a))
		}
		h.int(len(b.Rows))
		for _, row := range b.Rows {
			h.int(len(row))
			for _, cell := range row {
				h.inlines(cell.Inlines)
			}
		}
	case BlockThematicBreak:
	}
}

func (h *hasher) blocks(bs []Block) {
	h.int(len(bs))
	for _, b := range bs {
		h.block(b)
	}
}

func (h *hasher) inline(n Inline) {
	h.int(int(n.Kind))
	switch n.Kind {
	case InlineText, InlineCode, InlineHTML:
		h.str(n.Literal)
	case InlineLink, InlineImage:
		h.str(n.Destination)
		h.str(n.Title)
		h.inlines(n.Content)
	case InlineEmphasis, InlineStrong, InlineStrikethrough:
		h.inlines(n.Content)
	case InlineMath:
		h.str(n.Literal)
		h.int(n.MathID)
		h.bool(n.Display)
	case InlineSoftBreak, InlineLineBreak:
	}
}

func (h *hasher) inlines(ns []Inline) {
	h.int(len(ns))
	for _, n := range ns {
		h.inline(n)
	}
}
