package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/yaklabco/mdstream/internal/ui/pretty"
	"github.com/yaklabco/mdstream/pkg/mdast"
)

// documentView is the serialized form of a parse result.
type documentView struct {
	Source string      `json:"source" yaml:"source"`
	Flavor string      `json:"flavor" yaml:"flavor"`
	Blocks []blockView `json:"blocks" yaml:"blocks"`
	Math   []mathView  `json:"math,omitempty" yaml:"math,omitempty"`
}

type blockView struct {
	Kind       string       `json:"kind" yaml:"kind"`
	Level      int          `json:"level,omitempty" yaml:"level,omitempty"`
	Start      int          `json:"start,omitempty" yaml:"start,omitempty"`
	Info       string       `json:"info,omitempty" yaml:"info,omitempty"`
	Code       string       `json:"code,omitempty" yaml:"code,omitempty"`
	Inlines    []inlineView `json:"inlines,omitempty" yaml:"inlines,omitempty"`
	Items      []itemView   `json:"items,omitempty" yaml:"items,omitempty"`
	Blocks     []blockView  `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Alignments []string     `json:"alignments,omitempty" yaml:"alignments,omitempty"`
	Rows       [][]cellView `json:"rows,omitempty" yaml:"rows,omitempty"`
}

type itemView struct {
	Checked *bool       `json:"checked,omitempty" yaml:"checked,omitempty"`
	Blocks  []blockView `json:"blocks" yaml:"blocks"`
}

type cellView struct {
	Inlines []inlineView `json:"inlines" yaml:"inlines"`
}

type inlineView struct {
	Kind        string       `json:"kind" yaml:"kind"`
	Text        string       `json:"text,omitempty" yaml:"text,omitempty"`
	Destination string       `json:"destination,omitempty" yaml:"destination,omitempty"`
	Title       string       `json:"title,omitempty" yaml:"title,omitempty"`
	MathID      *int         `json:"mathId,omitempty" yaml:"mathId,omitempty"`
	Display     bool         `json:"display,omitempty" yaml:"display,omitempty"`
	Children    []inlineView `json:"children,omitempty" yaml:"children,omitempty"`
}

type mathView struct {
	ID    int    `json:"id" yaml:"id"`
	LaTeX string `json:"latex" yaml:"latex"`
}

func newDocumentView(source, flavor string, result mdast.ParseResult) documentView {
	view := documentView{
		Source: source,
		Flavor: flavor,
		Blocks: blockViews(result.Document),
	}

	ids := make([]int, 0, len(result.Math))
	for id := range result.Math {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		view.Math = append(view.Math, mathView{ID: id, LaTeX: result.Math[id]})
	}
	return view
}

func blockViews(blocks []mdast.Block) []blockView {
	views := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		views = append(views, newBlockView(b))
	}
	return views
}

func newBlockView(b mdast.Block) blockView {
	view := blockView{
		Kind:    b.Kind.String(),
		Level:   b.Level,
		Info:    b.Info,
		Code:    b.Code,
		Inlines: inlineViews(b.Inlines),
	}
	if b.Kind == mdast.BlockNumberedList {
		view.Start = b.Start
	}
	for _, item := range b.Items {
		iv := itemView{Blocks: blockViews(item.Blocks)}
		if b.Kind == mdast.BlockTaskList {
			checked := item.Checked
			iv.Checked = &checked
		}
		view.Items = append(view.Items, iv)
	}
	if len(b.Blocks) > 0 {
		view.Blocks = blockViews(b.Blocks)
	}
	for _, a := range b.Alignments {
		view.Alignments = append(view.Alignments, a.String())
	}
	for _, row := range b.Rows {
		cells := make([]cellView, 0, len(row))
		for _, cell := range row {
			cells = append(cells, cellView{Inlines: inlineViews(cell.Inlines)})
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

func inlineViews(inlines []mdast.Inline) []inlineView {
	if len(inlines) == 0 {
		return nil
	}
	views := make([]inlineView, 0, len(inlines))
	for _, n := range inlines {
		view := inlineView{
			Kind:        n.Kind.String(),
			Text:        n.Literal,
			Destination: n.Destination,
			Title:       n.Title,
			Display:     n.Display,
			Children:    inlineViews(n.Content),
		}
		if n.Kind == mdast.InlineMath {
			id := n.MathID
			view.MathID = &id
		}
		views = append(views, view)
	}
	return views
}

// treeWriter renders a document as an indented outline.
type treeWriter struct {
	styles  *pretty.Styles
	builder strings.Builder
}

func renderTree(styles *pretty.Styles, view documentView) string {
	w := &treeWriter{styles: styles}
	for _, b := range view.Blocks {
		w.block(b, 0)
	}
	if len(view.Math) > 0 {
		w.line(0, w.styles.Bold.Render("Math"), "")
		for _, m := range view.Math {
			w.line(1, w.styles.Location.Render(strconv.Itoa(m.ID)), strconv.Quote(m.LaTeX))
		}
	}
	return w.builder.String()
}

func (w *treeWriter) line(depth int, head, detail string) {
	w.builder.WriteString(strings.Repeat("  ", depth))
	w.builder.WriteString(head)
	if detail != "" {
		w.builder.WriteString(" ")
		w.builder.WriteString(detail)
	}
	w.builder.WriteString("\n")
}

func (w *treeWriter) block(b blockView, depth int) {
	var attrs []string
	if b.Level > 0 {
		attrs = append(attrs, fmt.Sprintf("level=%d", b.Level))
	}
	if b.Start > 0 {
		attrs = append(attrs, fmt.Sprintf("start=%d", b.Start))
	}
	if b.Info != "" {
		attrs = append(attrs, "info="+strconv.Quote(b.Info))
	}
	if len(b.Alignments) > 0 {
		attrs = append(attrs, "align="+strings.Join(b.Alignments, ","))
	}
	var detail string
	if len(attrs) > 0 {
		detail = w.styles.Dim.Render(strings.Join(attrs, " "))
	}
	w.line(depth, w.styles.Bold.Render(b.Kind), detail)

	if b.Kind == mdast.BlockCode.String() {
		w.line(depth+1, strconv.Quote(b.Code), "")
	}
	w.inlines(b.Inlines, depth+1)
	for _, item := range b.Items {
		head := "Item"
		if item.Checked != nil {
			head = "[ ] Item"
			if *item.Checked {
				head = "[x] Item"
			}
		}
		w.line(depth+1, head, "")
		for _, child := range item.Blocks {
			w.block(child, depth+2)
		}
	}
	for _, child := range b.Blocks {
		w.block(child, depth+1)
	}
	for i, row := range b.Rows {
		w.line(depth+1, fmt.Sprintf("Row %d", i), "")
		for _, cell := range row {
			w.line(depth+2, "Cell", "")
			w.inlines(cell.Inlines, depth+3)
		}
	}
}

func (w *treeWriter) inlines(inlines []inlineView, depth int) {
	for _, n := range inlines {
		var detail string
		switch {
		case n.MathID != nil:
			mode := "inline"
			if n.Display {
				mode = "display"
			}
			detail = fmt.Sprintf("%s %s %s", w.styles.Location.Render("#"+strconv.Itoa(*n.MathID)),
				w.styles.Dim.Render(mode), strconv.Quote(n.Text))
		case n.Destination != "":
			detail = w.styles.Dim.Render(strconv.Quote(n.Destination))
			if n.Title != "" {
				detail += " " + w.styles.Dim.Render(strconv.Quote(n.Title))
			}
		case n.Text != "":
			detail = strconv.Quote(n.Text)
		}
		w.line(depth, n.Kind, detail)
		w.inlines(n.Children, depth+1)
	}
}
