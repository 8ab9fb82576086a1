package canopy

import (
	"errors"
	"slices"
	"testing"
)

// buildTree creates root -> a -> (b, c), a2.
func buildTree(t *testing.T) (*Tree, *EntityAllocator, map[string]Entity) {
	t.Helper()
	tr := NewTree()
	alloc := NewEntityAllocator()
	m := map[string]Entity{}
	add := func(name string, parent Entity) {
		e := alloc.Create()
		if err := tr.Add(e, parent); err != nil {
			t.Fatalf("Add(%s): %v", name, err)
		}
		m[name] = e
	}
	add("a", Root)
	add("b", m["a"])
	add("c", m["a"])
	add("a2", Root)
	return tr, alloc, m
}

func TestEntityAllocatorRecyclesWithNewGeneration(t *testing.T) {
	a := NewEntityAllocator()
	e := a.Create()
	if !a.Alive(e) {
		t.Fatal("fresh entity should be alive")
	}
	if !a.Destroy(e) {
		t.Fatal("Destroy returned false")
	}
	if a.Alive(e) {
		t.Error("destroyed entity still alive")
	}
	e2 := a.Create()
	if e2.index != e.index {
		t.Errorf("index = %d, want recycled %d", e2.index, e.index)
	}
	if e2 == e {
		t.Error("recycled entity should carry a new generation")
	}
	if a.Alive(e) {
		t.Error("old handle must stay stale after recycling")
	}
	if a.Destroy(Root) {
		t.Error("Root must not be destroyable")
	}
	if got := a.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestTreeAddAndNavigate(t *testing.T) {
	tr, _, m := buildTree(t)

	if got := tr.Len(); got != 5 {
		t.Errorf("Len = %d, want 5", got)
	}
	if p, _ := tr.Parent(m["b"]); p != m["a"] {
		t.Errorf("Parent(b) = %v, want a", p)
	}
	if _, ok := tr.Parent(Root); ok {
		t.Error("Root should have no parent")
	}
	if got := tr.Children(m["a"]); !slices.Equal(got, []Entity{m["b"], m["c"]}) {
		t.Errorf("Children(a) = %v", got)
	}
	if s, _ := tr.NextSibling(m["b"]); s != m["c"] {
		t.Errorf("NextSibling(b) = %v, want c", s)
	}
	if s, _ := tr.PrevSibling(m["c"]); s != m["b"] {
		t.Errorf("PrevSibling(c) = %v, want b", s)
	}
	if _, ok := tr.NextSibling(m["c"]); ok {
		t.Error("c has no next sibling")
	}
	if got := tr.Depth(m["c"]); got != 2 {
		t.Errorf("Depth(c) = %d, want 2", got)
	}
	if !tr.IsAncestor(Root, m["c"]) || !tr.IsAncestor(m["a"], m["c"]) {
		t.Error("IsAncestor should hold for Root and a over c")
	}
	if tr.IsAncestor(m["c"], m["c"]) {
		t.Error("an entity is not its own ancestor")
	}
}

func TestTreeAddErrors(t *testing.T) {
	tr, alloc, m := buildTree(t)

	if err := tr.Add(m["b"], Root); !errors.Is(err, ErrAlreadyInTree) {
		t.Errorf("re-Add err = %v, want ErrAlreadyInTree", err)
	}
	stale := alloc.Create()
	if err := tr.Add(alloc.Create(), stale); !errors.Is(err, ErrStaleEntity) {
		t.Errorf("Add under stale err = %v, want ErrStaleEntity", err)
	}
}

func TestTreeReparentRejectsCycle(t *testing.T) {
	tr, _, m := buildTree(t)

	if err := tr.Reparent(m["a"], m["b"]); !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	if err := tr.Reparent(m["a"], m["a"]); !errors.Is(err, ErrCycle) {
		t.Fatalf("self reparent err = %v, want ErrCycle", err)
	}
	if p, _ := tr.Parent(m["a"]); p != Root {
		t.Error("tree must be unchanged after a rejected reparent")
	}
	if err := tr.Reparent(Root, m["a"]); !errors.Is(err, ErrRootRemoval) {
		t.Errorf("Reparent(Root) err = %v, want ErrRootRemoval", err)
	}

	if err := tr.Reparent(m["c"], m["a2"]); err != nil {
		t.Fatalf("Reparent: %v", err)
	}
	if got := tr.Children(m["a"]); !slices.Equal(got, []Entity{m["b"]}) {
		t.Errorf("Children(a) = %v, want [b]", got)
	}
	if got := tr.ChildIndex(m["c"]); got != 0 {
		t.Errorf("ChildIndex(c) = %d, want 0", got)
	}
}

func TestTreeRemoveSubtree(t *testing.T) {
	tr, _, m := buildTree(t)

	removed := tr.Remove(m["a"])
	if want := []Entity{m["b"], m["c"], m["a"]}; !slices.Equal(removed, want) {
		t.Errorf("Remove = %v, want post-order %v", removed, want)
	}
	for _, name := range []string{"a", "b", "c"} {
		if tr.Contains(m[name]) {
			t.Errorf("%s still in tree", name)
		}
	}
	if got := tr.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
	if tr.Remove(Root) != nil {
		t.Error("Remove(Root) must be a no-op")
	}
}

func TestTreeTraversalOrder(t *testing.T) {
	tr, _, m := buildTree(t)

	down := slices.Collect(tr.Down(Root))
	if want := []Entity{Root, m["a"], m["b"], m["c"], m["a2"]}; !slices.Equal(down, want) {
		t.Errorf("Down(Root) = %v, want %v", down, want)
	}
	from := slices.Collect(tr.Down(m["c"]))
	if want := []Entity{m["c"], m["a2"]}; !slices.Equal(from, want) {
		t.Errorf("Down(c) = %v, want %v", from, want)
	}
	branch := slices.Collect(tr.Branch(m["a"]))
	if want := []Entity{m["a"], m["b"], m["c"]}; !slices.Equal(branch, want) {
		t.Errorf("Branch(a) = %v, want %v", branch, want)
	}
	up := slices.Collect(tr.Up(Root))
	if want := []Entity{m["b"], m["c"], m["a"], m["a2"], Root}; !slices.Equal(up, want) {
		t.Errorf("Up(Root) = %v, want %v", up, want)
	}
	anc := slices.Collect(tr.Ancestors(m["b"]))
	if want := []Entity{m["a"], Root}; !slices.Equal(anc, want) {
		t.Errorf("Ancestors(b) = %v, want %v", anc, want)
	}
}

func TestTreeSetChildIndex(t *testing.T) {
	tr, alloc, m := buildTree(t)
	d := alloc.Create()
	if err := tr.Add(d, m["a"]); err != nil {
		t.Fatal(err)
	}

	if err := tr.SetChildIndex(d, 0); err != nil {
		t.Fatal(err)
	}
	if got := tr.Children(m["a"]); !slices.Equal(got, []Entity{d, m["b"], m["c"]}) {
		t.Errorf("after move to 0: %v", got)
	}
	if err := tr.SetChildIndex(d, 2); err != nil {
		t.Fatal(err)
	}
	if got := tr.Children(m["a"]); !slices.Equal(got, []Entity{m["b"], m["c"], d}) {
		t.Errorf("after move to 2: %v", got)
	}
	for i, c := range tr.Children(m["a"]) {
		if tr.ChildIndex(c) != i {
			t.Errorf("ChildIndex(%v) = %d, want %d", c, tr.ChildIndex(c), i)
		}
	}
	if err := tr.SetChildIndex(d, 3); !errors.Is(err, ErrIndexRange) {
		t.Errorf("err = %v, want ErrIndexRange", err)
	}
}

func TestStorageStaleEntityReadsAbsent(t *testing.T) {
	alloc := NewEntityAllocator()
	var s Storage[string]
	e := alloc.Create()
	s.Insert(e, "x")
	alloc.Destroy(e)
	e2 := alloc.Create()

	if _, ok := s.Get(e2); ok {
		t.Error("recycled index must not see the old value")
	}
	s.Insert(e2, "y")
	if got, _ := s.Get(e2); got != "y" {
		t.Errorf("Get = %q, want y", got)
	}
	if s.Contains(e) {
		t.Error("stale handle should read absent")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
	if v, ok := s.Remove(e2); !ok || v != "y" {
		t.Errorf("Remove = %q, %v", v, ok)
	}
	if s.Len() != 0 {
		t.Errorf("Len after Remove = %d, want 0", s.Len())
	}
}
