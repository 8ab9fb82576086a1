package canopy

import (
	"testing"
)

func boundsEq(a, b Bounds) bool {
	return near(a.X, b.X, 1e-9) && near(a.Y, b.Y, 1e-9) && near(a.W, b.W, 1e-9) && near(a.H, b.H, 1e-9)
}

func checkBounds(t *testing.T, cx *Context, name string, e Entity, want Bounds) {
	t.Helper()
	got, ok := cx.Bounds(e)
	if !ok {
		t.Errorf("%s has no bounds", name)
		return
	}
	if !boundsEq(got, want) {
		t.Errorf("%s bounds = %+v, want %+v", name, got, want)
	}
}

func TestLayoutStretchRow(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	var kids []Entity
	for range 3 {
		kids = append(kids, cx.Entity(Root).Add().Entity())
	}
	cx.Update(0)

	checkBounds(t, cx, "root", Root, Bounds{W: 300, H: 100})
	for i, e := range kids {
		checkBounds(t, cx, "child", e, Bounds{X: float64(i) * 100, W: 100, H: 100})
	}
}

func TestLayoutIsIdempotent(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	a := cx.Entity(Root).Add().Width(Pixels(40)).Entity()
	b := cx.Entity(Root).Add().Entity()
	cx.Update(0)
	ba, _ := cx.Bounds(a)
	bb, _ := cx.Bounds(b)

	stats := cx.Update(0)
	if stats.Geometry != 0 {
		t.Errorf("second cycle changed %d bounds, want 0", stats.Geometry)
	}
	checkBounds(t, cx, "a", a, ba)
	checkBounds(t, cx, "b", b, bb)

	cx.Layout().MarkAll()
	if changes := cx.Layout().Run(); len(changes) != 0 {
		t.Errorf("full relayout reported %d changes, want 0", len(changes))
	}
}

func TestLayoutPaddingAndGap(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow).ChildSpace(Pixels(10)).ColBetween(Pixels(20))
	a := cx.Entity(Root).Add().Entity()
	b := cx.Entity(Root).Add().Entity()
	cx.Update(0)

	checkBounds(t, cx, "a", a, Bounds{X: 10, Y: 10, W: 130, H: 80})
	checkBounds(t, cx, "b", b, Bounds{X: 160, Y: 10, W: 130, H: 80})
}

func TestLayoutStretchSpaces(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	// Stretch spaces either side center a fixed child.
	a := cx.Entity(Root).Add().Width(Pixels(100)).Left(Stretch(1)).Right(Stretch(1)).Entity()
	cx.Update(0)
	checkBounds(t, cx, "a", a, Bounds{X: 100, W: 100, H: 100})
}

func TestLayoutMainAlignment(t *testing.T) {
	tests := []struct {
		align  Alignment
		xa, xb float64
	}{
		{AlignStart, 0, 50},
		{AlignEnd, 200, 250},
		{AlignCenter, 100, 150},
		{AlignSpaceBetween, 0, 250},
		{AlignSpaceAround, 50, 200},
		{AlignSpaceEvenly, 200.0 / 3, 50 + 400.0/3},
	}
	for _, tt := range tests {
		t.Run(tt.align.String(), func(t *testing.T) {
			cx := New(WithViewport(300, 100))
			cx.Entity(Root).LayoutType(LayoutRow).Align(tt.align, AlignStart)
			a := cx.Entity(Root).Add().Width(Pixels(50)).Entity()
			b := cx.Entity(Root).Add().Width(Pixels(50)).Entity()
			cx.Update(0)
			checkBounds(t, cx, "a", a, Bounds{X: tt.xa, W: 50, H: 100})
			checkBounds(t, cx, "b", b, Bounds{X: tt.xb, W: 50, H: 100})
		})
	}
}

func TestLayoutCrossAlignment(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow).Align(AlignStart, AlignCenter)
	a := cx.Entity(Root).Add().Size(Pixels(50), Pixels(20)).Entity()
	b := cx.Entity(Root).Add().Width(Pixels(50)).Entity()
	cx.Update(0)

	checkBounds(t, cx, "a", a, Bounds{X: 0, Y: 40, W: 50, H: 20})
	// Stretch heights fill the cross axis regardless of alignment.
	checkBounds(t, cx, "b", b, Bounds{X: 50, Y: 0, W: 50, H: 100})
}

func TestLayoutAutoUsesMeasurer(t *testing.T) {
	cx := New(WithViewport(300, 100))
	label := cx.Entity(Root).Add().Size(Auto, Auto).
		Measure(MeasureFunc(func(Entity) (float64, float64) { return 40, 12 })).Entity()
	cx.Update(0)
	checkBounds(t, cx, "label", label, Bounds{W: 40, H: 12})
}

func TestLayoutAutoContainerSumsChildren(t *testing.T) {
	cx := New(WithViewport(300, 100))
	row := cx.Entity(Root).Add().LayoutType(LayoutRow).Width(Auto).ColBetween(Pixels(10))
	row.Add().Width(Pixels(30))
	row.Add().Width(Pixels(50))
	cx.Update(0)

	b := row.Bounds()
	if b.W != 90 {
		t.Errorf("auto row width = %v, want 90", b.W)
	}
	if b.H != 100 {
		t.Errorf("stretch height = %v, want 100", b.H)
	}
}

func TestLayoutMinMax(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	a := cx.Entity(Root).Add().MaxWidth(Pixels(50)).Entity()
	b := cx.Entity(Root).Add().Entity()
	cx.Update(0)

	// a is frozen at its limit and b takes the rest.
	checkBounds(t, cx, "a", a, Bounds{W: 50, H: 100})
	checkBounds(t, cx, "b", b, Bounds{X: 50, W: 250, H: 100})
}

func TestLayoutGrid(t *testing.T) {
	cx := New(WithViewport(300, 200))
	cx.Entity(Root).Grid(
		[]Units{Pixels(100), Stretch(1)},
		[]Units{Pixels(50), Stretch(1)},
	)
	a := cx.Entity(Root).Add().Cell(0, 0, 1, 1).Entity()
	b := cx.Entity(Root).Add().Cell(1, 1, 1, 1).Entity()
	c := cx.Entity(Root).Add().Cell(0, 0, 2, 1).Entity()
	d := cx.Entity(Root).Add().Cell(1, 0, 1, 1).Size(Pixels(20), Pixels(10)).Entity()
	cx.Update(0)

	checkBounds(t, cx, "a", a, Bounds{W: 100, H: 50})
	checkBounds(t, cx, "b", b, Bounds{X: 100, Y: 50, W: 200, H: 150})
	checkBounds(t, cx, "c", c, Bounds{W: 300, H: 50})
	checkBounds(t, cx, "d", d, Bounds{X: 100, W: 20, H: 10})
}

func TestLayoutGridGaps(t *testing.T) {
	cx := New(WithViewport(210, 100))
	cx.Entity(Root).Grid([]Units{Stretch(1), Stretch(1)}, []Units{Stretch(1)}).ColBetween(Pixels(10))
	a := cx.Entity(Root).Add().Cell(0, 0, 1, 1).Entity()
	b := cx.Entity(Root).Add().Cell(1, 0, 1, 1).Entity()
	cx.Update(0)

	checkBounds(t, cx, "a", a, Bounds{W: 100, H: 100})
	checkBounds(t, cx, "b", b, Bounds{X: 110, W: 100, H: 100})
}

func TestLayoutDisplayNone(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	a := cx.Entity(Root).Add().Entity()
	hidden := cx.Entity(Root).Add().Display(DisplayNone)
	inner := hidden.Add().Entity()
	b := cx.Entity(Root).Add().Entity()
	cx.Update(0)

	checkBounds(t, cx, "a", a, Bounds{W: 150, H: 100})
	checkBounds(t, cx, "b", b, Bounds{X: 150, W: 150, H: 100})
	checkBounds(t, cx, "hidden", hidden.Entity(), Bounds{})
	checkBounds(t, cx, "inner", inner, Bounds{})
}

func TestLayoutSelfDirected(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	flow := cx.Entity(Root).Add().Entity()
	popup := cx.Entity(Root).Add().PositionType(SelfDirected).
		Left(Pixels(10)).Top(Pixels(20)).Size(Pixels(50), Pixels(30)).Entity()
	cx.Update(0)

	checkBounds(t, cx, "flow", flow, Bounds{W: 300, H: 100})
	checkBounds(t, cx, "popup", popup, Bounds{X: 10, Y: 20, W: 50, H: 30})
}

func TestLayoutGeometryFlags(t *testing.T) {
	cx := New(WithViewport(300, 100))
	a := cx.Entity(Root).Add().Height(Pixels(50)).Entity()
	b := cx.Entity(Root).Add().Height(Pixels(50)).Entity()
	cx.Update(0)

	cx.Entity(a).Top(Pixels(10))
	cx.Style().Resolve()
	changes := cx.Layout().Run()
	want := []GeometryChange{{a, GeometryPosY}, {b, GeometryPosY}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %v, want %v", changes, want)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("changes[%d] = %v, want %v", i, changes[i], want[i])
		}
	}
	if s := (GeometryPosX | GeometryHeight).String(); s != "x|h" {
		t.Errorf("String = %q, want x|h", s)
	}
}

func TestLayoutPartialRelayout(t *testing.T) {
	cx := New(WithViewport(300, 300))
	panel := cx.Entity(Root).Add().Size(Pixels(200), Pixels(100))
	c1 := panel.Add().Entity()
	c2 := panel.Add().Entity()
	other := cx.Entity(Root).Add().Height(Pixels(50)).Entity()
	cx.Update(0)
	before, _ := cx.Bounds(other)

	cx.Entity(c1).Height(Pixels(20))
	cx.Style().Resolve()
	cx.Layout().Run()

	if got := cx.Layout().Visited(); got != 2 {
		t.Errorf("Visited = %d, want only the panel's 2 children", got)
	}
	checkBounds(t, cx, "c1", c1, Bounds{W: 200, H: 20})
	checkBounds(t, cx, "c2", c2, Bounds{Y: 20, W: 200, H: 80})
	checkBounds(t, cx, "other", other, before)
}

func TestLayoutViewportResize(t *testing.T) {
	cx := New(WithViewport(300, 100))
	a := cx.Entity(Root).Add().Entity()
	cx.Update(0)
	cx.SetViewport(600, 200)
	cx.Update(0)
	checkBounds(t, cx, "a", a, Bounds{W: 600, H: 200})
}

func TestLayoutMaxWidthZero(t *testing.T) {
	cx := New(WithViewport(300, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	a := cx.Entity(Root).Add().MaxWidth(Pixels(0)).Entity()
	b := cx.Entity(Root).Add().Left(Pixels(-10)).Entity()
	cx.Update(0)

	checkBounds(t, cx, "a", a, Bounds{W: 0, H: 100})
	checkBounds(t, cx, "b", b, Bounds{X: -10, W: 310, H: 100})
}

// TestLayoutIncrementalMatchesFull changes a leaf deep inside content-sized
// ancestors, runs one cycle, then checks that a full layout finds nothing
// left to move.
func TestLayoutIncrementalMatchesFull(t *testing.T) {
	tests := []struct {
		name  string
		build func(cx *Context) (top, leaf Entity)
		want  Bounds
	}{
		{
			name: "stretch child of auto parent",
			build: func(cx *Context) (Entity, Entity) {
				p := cx.Entity(Root).Add().Width(Auto).LayoutType(LayoutRow)
				leaf := p.Add().Width(Stretch(1)).Add().Width(Pixels(50))
				return p.Entity(), leaf.Entity()
			},
			want: Bounds{W: 80, H: 100},
		},
		{
			name: "percentage child of auto parent",
			build: func(cx *Context) (Entity, Entity) {
				p := cx.Entity(Root).Add().Width(Auto).LayoutType(LayoutRow)
				leaf := p.Add().Width(Percentage(100)).Add().Width(Pixels(50))
				return p.Entity(), leaf.Entity()
			},
			want: Bounds{W: 80, H: 100},
		},
		{
			name: "stretch chain under auto parent",
			build: func(cx *Context) (Entity, Entity) {
				p := cx.Entity(Root).Add().Width(Auto).LayoutType(LayoutRow)
				leaf := p.Add().Add().Add().Width(Pixels(50))
				return p.Entity(), leaf.Entity()
			},
			want: Bounds{W: 80, H: 100},
		},
		{
			name: "auto grid track",
			build: func(cx *Context) (Entity, Entity) {
				g := cx.Entity(Root).Add().Size(Pixels(300), Pixels(100)).
					Grid([]Units{Auto, Stretch(1)}, []Units{Stretch(1)})
				cell := g.Add().Cell(0, 0, 1, 1)
				leaf := cell.Add().Add().Width(Pixels(50))
				g.Add().Cell(1, 0, 1, 1)
				return cell.Entity(), leaf.Entity()
			},
			want: Bounds{W: 80, H: 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx := New(WithViewport(300, 100))
			cx.Entity(Root).LayoutType(LayoutRow)
			top, leaf := tt.build(cx)
			cx.Update(0)

			cx.Entity(leaf).Width(Pixels(80))
			cx.Update(0)
			checkBounds(t, cx, "top", top, tt.want)

			cx.Layout().MarkAll()
			for _, c := range cx.Layout().Run() {
				b, _ := cx.Bounds(c.Entity)
				t.Errorf("full layout moved %v (%s) to %v", c.Entity, c.Flags, b)
			}
		})
	}
}
