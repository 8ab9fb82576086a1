package canopy

import (
	"fmt"
	"iter"
)

// Tree is the parent/child hierarchy over entities. Children keep insertion
// order. The tree always contains Root and is kept acyclic: every structural
// operation validates its arguments before mutating anything.
type Tree struct {
	present  []Entity // handle stored at each index, Null when absent
	parent   []Entity
	children [][]Entity
	pos      []int // index within the parent's children
	count    int
}

// NewTree returns a tree containing only Root.
func NewTree() *Tree {
	t := &Tree{}
	t.grow(Root.index)
	t.present[Root.index] = Root
	t.count = 1
	return t
}

func (t *Tree) grow(idx uint32) {
	for int(idx) >= len(t.present) {
		t.present = append(t.present, Null)
		t.parent = append(t.parent, Null)
		t.children = append(t.children, nil)
		t.pos = append(t.pos, 0)
	}
}

// Contains reports whether e is a live member of the tree.
func (t *Tree) Contains(e Entity) bool {
	return !e.IsNull() && int(e.index) < len(t.present) && t.present[e.index] == e
}

// Len returns the number of entities in the tree, Root included.
func (t *Tree) Len() int { return t.count }

// Add appends e as the last child of parent.
func (t *Tree) Add(e, parent Entity) error {
	if !t.Contains(parent) {
		return fmt.Errorf("add %v under %v: %w", e, parent, ErrStaleEntity)
	}
	if e.IsNull() {
		return fmt.Errorf("add null entity: %w", ErrStaleEntity)
	}
	if t.Contains(e) || (int(e.index) < len(t.present) && !t.present[e.index].IsNull()) {
		return fmt.Errorf("add %v: %w", e, ErrAlreadyInTree)
	}
	t.grow(e.index)
	t.present[e.index] = e
	t.parent[e.index] = parent
	t.children[e.index] = nil
	t.attach(e, parent)
	t.count++
	return nil
}

func (t *Tree) attach(e, parent Entity) {
	t.parent[e.index] = parent
	t.pos[e.index] = len(t.children[parent.index])
	t.children[parent.index] = append(t.children[parent.index], e)
}

func (t *Tree) detach(e Entity) {
	p := t.parent[e.index]
	if p.IsNull() {
		return
	}
	siblings := t.children[p.index]
	i := t.pos[e.index]
	copy(siblings[i:], siblings[i+1:])
	siblings[len(siblings)-1] = Null
	siblings = siblings[:len(siblings)-1]
	for j := i; j < len(siblings); j++ {
		t.pos[siblings[j].index] = j
	}
	t.children[p.index] = siblings
	t.parent[e.index] = Null
}

// Reparent moves e, with its subtree, to the end of newParent's children.
// Moving an entity under itself or one of its descendants returns ErrCycle
// and leaves the tree untouched.
func (t *Tree) Reparent(e, newParent Entity) error {
	if e == Root {
		return ErrRootRemoval
	}
	if !t.Contains(e) || !t.Contains(newParent) {
		return fmt.Errorf("reparent %v under %v: %w", e, newParent, ErrStaleEntity)
	}
	if e == newParent || t.IsAncestor(e, newParent) {
		return fmt.Errorf("reparent %v under %v: %w", e, newParent, ErrCycle)
	}
	t.detach(e)
	t.attach(e, newParent)
	return nil
}

// Remove detaches e and its whole subtree and returns the removed entities in
// post-order (descendants before their parents). Removing a stale entity or
// Root is a no-op that returns nil.
func (t *Tree) Remove(e Entity) []Entity {
	if e == Root || !t.Contains(e) {
		return nil
	}
	var removed []Entity
	for n := range t.Up(e) {
		removed = append(removed, n)
	}
	t.detach(e)
	for _, n := range removed {
		t.present[n.index] = Null
		t.parent[n.index] = Null
		t.children[n.index] = nil
		t.pos[n.index] = 0
	}
	t.count -= len(removed)
	return removed
}

// Parent returns the parent of e. Root and stale entities have none.
func (t *Tree) Parent(e Entity) (Entity, bool) {
	if !t.Contains(e) || e == Root {
		return Null, false
	}
	return t.parent[e.index], true
}

// Children returns the ordered children of e. The returned slice MUST NOT be
// mutated by the caller.
func (t *Tree) Children(e Entity) []Entity {
	if !t.Contains(e) {
		return nil
	}
	return t.children[e.index]
}

// NumChildren returns the number of children of e.
func (t *Tree) NumChildren(e Entity) int { return len(t.Children(e)) }

// FirstChild returns the first child of e.
func (t *Tree) FirstChild(e Entity) (Entity, bool) {
	c := t.Children(e)
	if len(c) == 0 {
		return Null, false
	}
	return c[0], true
}

// NextSibling returns the sibling after e.
func (t *Tree) NextSibling(e Entity) (Entity, bool) {
	p, ok := t.Parent(e)
	if !ok {
		return Null, false
	}
	siblings := t.children[p.index]
	i := t.pos[e.index] + 1
	if i >= len(siblings) {
		return Null, false
	}
	return siblings[i], true
}

// PrevSibling returns the sibling before e.
func (t *Tree) PrevSibling(e Entity) (Entity, bool) {
	p, ok := t.Parent(e)
	if !ok {
		return Null, false
	}
	i := t.pos[e.index] - 1
	if i < 0 {
		return Null, false
	}
	return t.children[p.index][i], true
}

// ChildIndex returns the position of e among its siblings, or -1.
func (t *Tree) ChildIndex(e Entity) int {
	if _, ok := t.Parent(e); !ok {
		return -1
	}
	return t.pos[e.index]
}

// SetChildIndex moves e to a new index among its siblings.
func (t *Tree) SetChildIndex(e Entity, index int) error {
	p, ok := t.Parent(e)
	if !ok {
		return fmt.Errorf("set child index of %v: %w", e, ErrStaleEntity)
	}
	siblings := t.children[p.index]
	if index < 0 || index >= len(siblings) {
		return ErrIndexRange
	}
	old := t.pos[e.index]
	if old == index {
		return nil
	}
	if old < index {
		copy(siblings[old:], siblings[old+1:index+1])
	} else {
		copy(siblings[index+1:], siblings[index:old])
	}
	siblings[index] = e
	lo, hi := min(old, index), max(old, index)
	for j := lo; j <= hi; j++ {
		t.pos[siblings[j].index] = j
	}
	return nil
}

// IsAncestor reports whether a is a proper ancestor of e.
func (t *Tree) IsAncestor(a, e Entity) bool {
	if !t.Contains(a) || !t.Contains(e) {
		return false
	}
	for p, ok := t.Parent(e); ok; p, ok = t.Parent(p) {
		if p == a {
			return true
		}
	}
	return false
}

// Depth returns the number of ancestors of e (0 for Root, -1 if stale).
func (t *Tree) Depth(e Entity) int {
	if !t.Contains(e) {
		return -1
	}
	d := 0
	for p, ok := t.Parent(e); ok; p, ok = t.Parent(p) {
		d++
	}
	return d
}

// Ancestors iterates the parent chain of e, nearest first, ending at Root.
func (t *Tree) Ancestors(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for p, ok := t.Parent(e); ok; p, ok = t.Parent(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// next returns the entity after e in pre-order, never leaving the subtree of
// stop when stop is not Null.
func (t *Tree) next(e, stop Entity) (Entity, bool) {
	if c := t.children[e.index]; len(c) > 0 {
		return c[0], true
	}
	for n := e; n != stop && n != Root; {
		if s, ok := t.NextSibling(n); ok {
			return s, true
		}
		n = t.parent[n.index]
	}
	return Null, false
}

// Down iterates e and every entity after it in document (pre-)order until
// the end of the tree. Down(Root) visits the whole tree.
//
// The tree must not be mutated during iteration.
func (t *Tree) Down(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !t.Contains(e) {
			return
		}
		for n, ok := e, true; ok; n, ok = t.next(n, Null) {
			if !yield(n) {
				return
			}
		}
	}
}

// Branch iterates the subtree of e in pre-order, starting with e and stopping
// before e's next sibling.
func (t *Tree) Branch(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !t.Contains(e) {
			return
		}
		for n, ok := e, true; ok; n, ok = t.next(n, e) {
			if !yield(n) {
				return
			}
		}
	}
}

// Up iterates the subtree of e in post-order: children before parents, e last.
func (t *Tree) Up(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !t.Contains(e) {
			return
		}
		t.walkUp(e, yield)
	}
}

func (t *Tree) walkUp(e Entity, yield func(Entity) bool) bool {
	for _, c := range t.children[e.index] {
		if !t.walkUp(c, yield) {
			return false
		}
	}
	return yield(e)
}
