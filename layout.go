package canopy

import (
	"math"
)

// Measurer reports the content size of a leaf whose width or height is
// Auto, typically text measured by the renderer.
type Measurer interface {
	Measure(e Entity) (w, h float64)
}

// MeasureFunc adapts a function to Measurer.
type MeasureFunc func(e Entity) (w, h float64)

// Measure calls f(e).
func (f MeasureFunc) Measure(e Entity) (w, h float64) { return f(e) }

// GeometryFlags tells which parts of an entity's bounds changed.
type GeometryFlags uint8

const (
	GeometryPosX GeometryFlags = 1 << iota
	GeometryPosY
	GeometryWidth
	GeometryHeight
)

func (f GeometryFlags) String() string {
	s := ""
	for _, n := range []struct {
		flag GeometryFlags
		name string
	}{{GeometryPosX, "x"}, {GeometryPosY, "y"}, {GeometryWidth, "w"}, {GeometryHeight, "h"}} {
		if f&n.flag != 0 {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	return s
}

// GeometryChange records one entity whose bounds moved or resized.
type GeometryChange struct {
	Entity Entity
	Flags  GeometryFlags
}

type axis uint8

const (
	horizontal axis = iota
	vertical
)

func (a axis) other() axis { return 1 - a }

func (b Bounds) start(a axis) float64 {
	if a == horizontal {
		return b.X
	}
	return b.Y
}

func (b Bounds) length(a axis) float64 {
	if a == horizontal {
		return b.W
	}
	return b.H
}

func (b *Bounds) setAxis(a axis, pos, length float64) {
	if a == horizontal {
		b.X, b.W = pos, length
	} else {
		b.Y, b.H = pos, length
	}
}

// LayoutEngine computes entity bounds from the tree, the resolved style
// and the viewport. Results are cached per entity; only subtrees under
// dirty entities are recomputed.
type LayoutEngine struct {
	tree  *Tree
	style *StyleStore

	bounds    Storage[Bounds]
	measurers Storage[Measurer]
	dirty     Storage[struct{}]

	viewport Bounds
	full     bool
	changes  []GeometryChange
	visited  int
}

// NewLayoutEngine creates an engine with an empty viewport.
func NewLayoutEngine(tree *Tree, style *StyleStore) *LayoutEngine {
	return &LayoutEngine{tree: tree, style: style, full: true}
}

// SetViewport sets the window size. The next Run lays out the whole tree.
func (l *LayoutEngine) SetViewport(w, h float64) {
	if l.viewport.W == w && l.viewport.H == h {
		return
	}
	l.viewport = Bounds{W: w, H: h}
	l.full = true
}

// Viewport returns the window bounds.
func (l *LayoutEngine) Viewport() Bounds { return l.viewport }

// Bounds returns the computed bounds of e.
func (l *LayoutEngine) Bounds(e Entity) (Bounds, bool) { return l.bounds.Get(e) }

// SetMeasurer registers the content measurer of e.
func (l *LayoutEngine) SetMeasurer(e Entity, m Measurer) {
	if !l.tree.Contains(e) {
		return
	}
	l.measurers.Insert(e, m)
	l.MarkDirty(e)
}

// MarkDirty schedules the layout of e for the next Run.
func (l *LayoutEngine) MarkDirty(e Entity) {
	if l.tree.Contains(e) {
		l.dirty.Insert(e, struct{}{})
	}
}

// MarkAll schedules a full layout.
func (l *LayoutEngine) MarkAll() { l.full = true }

// NeedsLayout reports whether Run has work to do.
func (l *LayoutEngine) NeedsLayout() bool { return l.full || l.dirty.Len() > 0 }

// Remove drops the cached layout state of e.
func (l *LayoutEngine) Remove(e Entity) {
	l.bounds.Remove(e)
	l.measurers.Remove(e)
	l.dirty.Remove(e)
}

// Run recomputes the layout of every dirty subtree and returns the
// entities whose bounds changed, in the order they were laid out. The
// returned slice is reused by the next Run.
func (l *LayoutEngine) Run() []GeometryChange {
	l.changes = l.changes[:0]
	l.visited = 0
	if !l.NeedsLayout() {
		return l.changes
	}
	roots := l.layoutRoots()
	for _, r := range roots {
		if r == Root {
			l.setBounds(Root, l.viewport)
		}
		l.arrange(r)
	}
	l.dirty.Clear()
	l.full = false
	return l.changes
}

// Visited returns how many entities the last Run positioned.
func (l *LayoutEngine) Visited() int { return l.visited }

// layoutRoots escalates every dirty entity to the nearest ancestor whose
// own bounds do not depend on its content, drops roots nested in other
// roots and returns the rest in document order.
func (l *LayoutEngine) layoutRoots() []Entity {
	if l.full || l.dirty.Contains(Root) || !l.bounds.Contains(Root) {
		return []Entity{Root}
	}
	var set Storage[struct{}]
	for _, e := range l.dirty.Entities() {
		if !l.tree.Contains(e) {
			continue
		}
		r, ok := l.layoutRoot(e)
		if !ok || r == Root {
			return []Entity{Root}
		}
		set.Insert(r, struct{}{})
	}
	var roots []Entity
	for e := range l.tree.Down(Root) {
		if !set.Contains(e) {
			continue
		}
		nested := false
		for a := range l.tree.Ancestors(e) {
			if set.Contains(a) {
				nested = true
				break
			}
		}
		if !nested {
			roots = append(roots, e)
		}
	}
	return roots
}

// layoutRoot returns the ancestor of the dirty entity e whose arrange pass
// covers every bounds the change can reach.
func (l *LayoutEngine) layoutRoot(e Entity) (Entity, bool) {
	r, ok := l.tree.Parent(e)
	for ok && r != Root {
		if l.dependsOnContent(r) {
			r, ok = l.tree.Parent(r)
			continue
		}
		a, found := l.measuringAncestor(r)
		if !found {
			break
		}
		r = a
	}
	return r, ok
}

// measuringAncestor follows the chain of entities above r whose natural
// size comes from their children and returns the first ancestor on it
// whose bounds depend on content.
func (l *LayoutEngine) measuringAncestor(r Entity) (Entity, bool) {
	for !l.fixedSize(r) {
		p, ok := l.tree.Parent(r)
		if !ok || p == Root {
			return Null, false
		}
		if l.dependsOnContent(p) {
			return p, true
		}
		r = p
	}
	return Null, false
}

// fixedSize reports whether the natural size of e ignores its children.
func (l *LayoutEngine) fixedSize(e Entity) bool {
	return l.style.Width.Get(e).Kind == UnitsPixels && l.style.Height.Get(e).Kind == UnitsPixels
}

// dependsOnContent reports whether the bounds of e may change when its
// children change: it has no cached bounds, is sized by content, or sits
// in a grid whose tracks may be sized by content.
func (l *LayoutEngine) dependsOnContent(e Entity) bool {
	if !l.bounds.Contains(e) {
		return true
	}
	if l.style.Width.Get(e).IsAuto() || l.style.Height.Get(e).IsAuto() {
		return true
	}
	p, ok := l.tree.Parent(e)
	return ok && l.style.LayoutType.Get(p) == LayoutGrid
}

func (l *LayoutEngine) setBounds(e Entity, b Bounds) {
	l.visited++
	old, had := l.bounds.Get(e)
	if had && old == b {
		return
	}
	var f GeometryFlags
	if !had || old.X != b.X {
		f |= GeometryPosX
	}
	if !had || old.Y != b.Y {
		f |= GeometryPosY
	}
	if !had || old.W != b.W {
		f |= GeometryWidth
	}
	if !had || old.H != b.H {
		f |= GeometryHeight
	}
	l.bounds.Insert(e, b)
	l.changes = append(l.changes, GeometryChange{Entity: e, Flags: f})
}

// collapse gives a display:none entity and its subtree zero size at the
// parent's content origin.
func (l *LayoutEngine) collapse(e Entity, x, y float64) {
	for n := range l.tree.Branch(e) {
		l.setBounds(n, Bounds{X: x, Y: y})
	}
}

// arrange positions the children of e inside its cached bounds and
// recurses into them.
func (l *LayoutEngine) arrange(e Entity) {
	b, _ := l.bounds.Get(e)
	content := l.contentBox(e, b)
	var flow, self []Entity
	for _, c := range l.tree.Children(e) {
		switch {
		case l.style.Display.Get(c) == DisplayNone:
			l.collapse(c, content.X, content.Y)
		case l.style.PositionType.Get(c) == SelfDirected:
			self = append(self, c)
		default:
			flow = append(flow, c)
		}
	}
	switch l.style.LayoutType.Get(e) {
	case LayoutGrid:
		l.arrangeGrid(e, content, flow)
	case LayoutRow:
		l.arrangeFlex(e, content, flow, horizontal)
	default:
		l.arrangeFlex(e, content, flow, vertical)
	}
	for _, c := range self {
		var cb Bounds
		for _, a := range [...]axis{horizontal, vertical} {
			pos, length := l.place(c, a, content, false)
			cb.setAxis(a, pos, length)
		}
		l.setBounds(c, cb)
	}
	for _, c := range flow {
		l.arrange(c)
	}
	for _, c := range self {
		l.arrange(c)
	}
}

func (l *LayoutEngine) contentBox(e Entity, b Bounds) Bounds {
	left := pixelsOnly(l.style.ChildLeft.Get(e), b.W)
	right := pixelsOnly(l.style.ChildRight.Get(e), b.W)
	top := pixelsOnly(l.style.ChildTop.Get(e), b.H)
	bottom := pixelsOnly(l.style.ChildBottom.Get(e), b.H)
	return Bounds{
		X: b.X + left,
		Y: b.Y + top,
		W: math.Max(0, b.W-left-right),
		H: math.Max(0, b.H-top-bottom),
	}
}

// axisUnits returns the space before, size, space after and size limits
// of e along a.
func (l *LayoutEngine) axisUnits(e Entity, a axis) (before, size, after, lo, hi Units) {
	s := l.style
	if a == horizontal {
		return s.Left.Get(e), s.Width.Get(e), s.Right.Get(e), s.MinWidth.Get(e), s.MaxWidth.Get(e)
	}
	return s.Top.Get(e), s.Height.Get(e), s.Bottom.Get(e), s.MinHeight.Get(e), s.MaxHeight.Get(e)
}

func (l *LayoutEngine) padding(e Entity, a axis) (before, after Units) {
	if a == horizontal {
		return l.style.ChildLeft.Get(e), l.style.ChildRight.Get(e)
	}
	return l.style.ChildTop.Get(e), l.style.ChildBottom.Get(e)
}

// gap returns the spacing between children along a.
func (l *LayoutEngine) gap(e Entity, a axis) Units {
	if a == horizontal {
		return l.style.ColBetween.Get(e)
	}
	return l.style.RowBetween.Get(e)
}

// sizeSegment builds the size segment of e along a, resolving Auto to the
// natural size and the limits against length.
func (l *LayoutEngine) sizeSegment(e Entity, a axis, size, lo, hi Units, length float64) segment {
	s := segment{
		units: size,
		min:   limit(lo, length, 0),
		max:   limit(hi, length, math.Inf(1)),
	}
	if size.IsAuto() {
		s.natural = l.natural(e, a)
	}
	return s
}

// place resolves the position and length of e along a inside box, using
// e's own spaces. Auto sizes fill the box when fill is set.
func (l *LayoutEngine) place(e Entity, a axis, box Bounds, fill bool) (pos, length float64) {
	before, size, after, lo, hi := l.axisUnits(e, a)
	if fill && size.IsAuto() {
		size = Stretch(1)
	}
	segs := []segment{
		spaceSegment(spaceUnits(before)),
		l.sizeSegment(e, a, size, lo, hi, box.length(a)),
		spaceSegment(spaceUnits(after)),
	}
	distribute(segs, box.length(a))
	return box.start(a) + segs[0].size, segs[1].size
}

// natural returns the content-determined length of e along a.
func (l *LayoutEngine) natural(e Entity, a axis) float64 {
	if l.style.Display.Get(e) == DisplayNone {
		return 0
	}
	_, size, _, lo, hi := l.axisUnits(e, a)
	v := 0.0
	if size.Kind == UnitsPixels {
		v = size.Value
	} else {
		v = l.contentNatural(e, a)
	}
	return clampSize(v, limit(lo, -1, 0), limit(hi, -1, math.Inf(1)))
}

func (l *LayoutEngine) contentNatural(e Entity, a axis) float64 {
	pb, pa := l.padding(e, a)
	pad := pixelsOnly(pb, 0) + pixelsOnly(pa, 0)
	var flow []Entity
	for _, c := range l.tree.Children(e) {
		if l.style.Display.Get(c) != DisplayNone && l.style.PositionType.Get(c) != SelfDirected {
			flow = append(flow, c)
		}
	}
	if len(flow) == 0 {
		if m, ok := l.measurers.Get(e); ok {
			w, h := m.Measure(e)
			if a == horizontal {
				return pad + w
			}
			return pad + h
		}
		return pad
	}
	lt := l.style.LayoutType.Get(e)
	if lt == LayoutGrid {
		return pad + l.gridNatural(e, a, flow)
	}
	main := vertical
	if lt == LayoutRow {
		main = horizontal
	}
	total := 0.0
	for i, c := range flow {
		before, _, after, _, _ := l.axisUnits(c, a)
		outer := pixelsOnly(before, 0) + l.natural(c, a) + pixelsOnly(after, 0)
		if a != main {
			total = math.Max(total, outer)
			continue
		}
		if i > 0 {
			total += pixelsOnly(l.gap(e, a), 0)
		}
		total += outer
	}
	return pad + total
}

// spaceUnits treats an Auto space as zero.
func spaceUnits(u Units) Units {
	if u.IsAuto() {
		return Pixels(0)
	}
	return u
}

// pixelsOnly resolves fixed and percentage lengths; Auto and Stretch are 0.
// A negative parent length ignores percentages.
func pixelsOnly(u Units, parent float64) float64 {
	if u.Kind == UnitsPercentage && parent < 0 {
		return 0
	}
	return u.Resolve(parent, 0)
}

func limit(u Units, parent, def float64) float64 {
	if u.Kind == UnitsPercentage && parent < 0 {
		return def
	}
	return u.Resolve(parent, def)
}

func clampSize(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
