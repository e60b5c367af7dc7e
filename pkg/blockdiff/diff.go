// Package blockdiff computes which rendered blocks can be reused when a
// document is reparsed.
//
// The diff matches a common prefix and a common suffix of the two block
// arrays and treats everything in between as removed and rebuilt. It does
// not detect moves. For a streamed document, where only the end changes,
// this is exact and linear.
package blockdiff

import (
	"errors"
	"fmt"

	"github.com/yaklabco/mdstream/pkg/mdast"
)

// Op is the kind of a Change.
type Op int

const (
	// OpKeep reuses the old block at OldIndex for NewIndex.
	OpKeep Op = iota

	// OpRebuild renders the new block at NewIndex from scratch.
	OpRebuild

	// OpRemove discards the old block at OldIndex.
	OpRemove
)

// String returns the lowercase name of the operation.
func (o Op) String() string {
	switch o {
	case OpKeep:
		return "keep"
	case OpRebuild:
		return "rebuild"
	case OpRemove:
		return "remove"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Change is one step of a block diff. Indices that do not apply to the
// operation are -1.
type Change struct {
	Op       Op
	OldIndex int
	NewIndex int
}

// Keep returns a change reusing old block oldIndex as new block newIndex.
func Keep(oldIndex, newIndex int) Change {
	return Change{Op: OpKeep, OldIndex: oldIndex, NewIndex: newIndex}
}

// Rebuild returns a change rendering new block newIndex.
func Rebuild(newIndex int) Change {
	return Change{Op: OpRebuild, OldIndex: -1, NewIndex: newIndex}
}

// Remove returns a change discarding old block oldIndex.
func Remove(oldIndex int) Change {
	return Change{Op: OpRemove, OldIndex: oldIndex, NewIndex: -1}
}

// String formats the change as keep(o,n), rebuild(n) or remove(o).
func (c Change) String() string {
	switch c.Op {
	case OpKeep:
		return fmt.Sprintf("keep(%d,%d)", c.OldIndex, c.NewIndex)
	case OpRebuild:
		return fmt.Sprintf("rebuild(%d)", c.NewIndex)
	case OpRemove:
		return fmt.Sprintf("remove(%d)", c.OldIndex)
	default:
		return c.Op.String()
	}
}

// Diff returns the changes that turn old into updated.
//
// Changes are ordered: kept prefix, removed old blocks, rebuilt new blocks,
// kept suffix. Every old index appears in exactly one keep or remove and
// every new index in exactly one keep or rebuild.
func Diff(old, updated []mdast.Block) []Change {
	return DiffAfter(old, updated, 0)
}

// DiffAfter is Diff for arrays whose first known blocks are already known to
// be equal, such as the stable prefix of an incremental parse. Those blocks
// are kept without being compared.
func DiffAfter(old, updated []mdast.Block, known int) []Change {
	known = max(0, min(known, len(old), len(updated)))
	p := known + commonPrefix(old[known:], updated[known:])

	// Identical, or the new array only appends.
	if p == len(old) {
		changes := make([]Change, 0, len(updated))
		for i := range p {
			changes = append(changes, Keep(i, i))
		}
		for i := p; i < len(updated); i++ {
			changes = append(changes, Rebuild(i))
		}
		return changes
	}

	s := commonSuffix(old[p:], updated[p:])
	oldMid := len(old) - s
	newMid := len(updated) - s

	changes := make([]Change, 0, len(old)+len(updated)-p-s)
	for i := range p {
		changes = append(changes, Keep(i, i))
	}
	for i := p; i < oldMid; i++ {
		changes = append(changes, Remove(i))
	}
	for i := p; i < newMid; i++ {
		changes = append(changes, Rebuild(i))
	}
	for i := range s {
		changes = append(changes, Keep(oldMid+i, newMid+i))
	}
	return changes
}

// commonPrefix returns the number of equal leading blocks.
func commonPrefix(a, b []mdast.Block) int {
	n := min(len(a), len(b))
	for i := range n {
		if !a[i].Equal(b[i]) {
			return i
		}
	}
	return n
}

// commonSuffix returns the number of equal trailing blocks.
func commonSuffix(a, b []mdast.Block) int {
	n := min(len(a), len(b))
	for i := range n {
		if !a[len(a)-1-i].Equal(b[len(b)-1-i]) {
			return i
		}
	}
	return n
}

// Summary counts the changes of a diff by operation.
type Summary struct {
	Kept    int
	Rebuilt int
	Removed int
}

// Summarize counts changes by operation.
func Summarize(changes []Change) Summary {
	var s Summary
	for _, c := range changes {
		switch c.Op {
		case OpKeep:
			s.Kept++
		case OpRebuild:
			s.Rebuilt++
		case OpRemove:
			s.Removed++
		}
	}
	return s
}

// Unchanged reports whether the summary describes an identity diff.
func (s Summary) Unchanged() bool {
	return s.Rebuilt == 0 && s.Removed == 0
}

// ErrInvalidDiff is returned by Validate for a change list that does not
// account for every block exactly once.
var ErrInvalidDiff = errors.New("invalid block diff")

// Validate checks that changes cover every old index in [0, oldLen) with one
// keep or remove and every new index in [0, newLen) with one keep or rebuild.
func Validate(changes []Change, oldLen, newLen int) error {
	oldSeen := make([]bool, oldLen)
	newSeen := make([]bool, newLen)

	mark := func(seen []bool, idx int, side string, c Change) error {
		if idx < 0 || idx >= len(seen) {
			return fmt.Errorf("%w: %s: %s index %d out of range", ErrInvalidDiff, c, side, idx)
		}
		if seen[idx] {
			return fmt.Errorf("%w: %s: %s index %d used twice", ErrInvalidDiff, c, side, idx)
		}
		seen[idx] = true
		return nil
	}

	for _, c := range changes {
		switch c.Op {
		case OpKeep:
			if err := mark(oldSeen, c.OldIndex, "old", c); err != nil {
				return err
			}
			if err := mark(newSeen, c.NewIndex, "new", c); err != nil {
				return err
			}
		case OpRemove:
			if err := mark(oldSeen, c.OldIndex, "old", c); err != nil {
				return err
			}
		case OpRebuild:
			if err := mark(newSeen, c.NewIndex, "new", c); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown operation %s", ErrInvalidDiff, c.Op)
		}
	}

	for i, seen := range oldSeen {
		if !seen {
			return fmt.Errorf("%w: old index %d not accounted for", ErrInvalidDiff, i)
		}
	}
	for i, seen := range newSeen {
		if !seen {
			return fmt.Errorf("%w: new index %d not accounted for", ErrInvalidDiff, i)
		}
	}
	return nil
}
