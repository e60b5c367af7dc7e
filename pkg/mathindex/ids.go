package mathindex

import "github.com/yaklabco/mdstream/pkg/mdast"

// Renumber assigns math identifiers in document order starting at offset and
// builds the matching math context. Identifiers of the first k blocks
// therefore depend only on those blocks, which lets a reparsed tail be
// spliced onto a retained prefix.
func Renumber(doc []mdast.Block, offset int) mdast.ParseResult {
	next := offset
	math := make(map[int]string)
	out := mdast.RewriteInlines(doc, func(n mdast.Inline) []mdast.Inline {
		if n.Kind == mdast.InlineMath {
			n.MathID = next
			next++
			math[n.MathID] = n.Literal
		}
		return []mdast.Inline{n}
	})
	return mdast.ParseResult{Document: out, Math: math}
}

// ShiftIdentifiers adds by to every math identifier in r and rekeys the math
// context to match.
func ShiftIdentifiers(r mdast.ParseResult, by int) mdast.ParseResult {
	if by == 0 {
		return r
	}

	doc := mdast.RewriteInlines(r.Document, func(n mdast.Inline) []mdast.Inline {
		if n.Kind == mdast.InlineMath {
			n.MathID += by
		}
		return []mdast.Inline{n}
	})

	math := make(map[int]string, len(r.Math))
	for id, latex := range r.Math {
		math[id+by] = latex
	}
	return mdast.ParseResult{Document: doc, Math: math}
}

// MaxIdentifier returns the largest math identifier in doc, or -1 if doc has
// no math.
func MaxIdentifier(doc []mdast.Block) int {
	maxID := -1
	mdast.WalkInlines(doc, func(n mdast.Inline) {
		if n.Kind == mdast.InlineMath && n.MathID > maxID {
			maxID = n.MathID
		}
	})
	return maxID
}

// Identifiers lists the math identifiers of doc in document order.
func Identifiers(doc []mdast.Block) []int {
	var ids []int
	mdast.WalkInlines(doc, func(n mdast.Inline) {
		if n.Kind == mdast.InlineMath {
			ids = append(ids, n.MathID)
		}
	})
	return ids
}

// Context builds the identifier → LaTeX table for doc.
func Context(doc []mdast.Block) map[int]string {
	math := make(map[int]string)
	mdast.WalkInlines(doc, func(n mdast.Inline) {
		if n.Kind == mdast.InlineMath {
			math[n.MathID] = n.Literal
		}
	})
	return math
}
