package canopy

// Handle is a chainable view of one entity for building and restyling
// widgets. Setters write inline style and mark the entity dirty; on a
// stale entity they do nothing.
//
//	cx.Entity(e).Class("button").Width(Pixels(120)).Height(Auto).Focusable(true)
type Handle struct {
	cx *Context
	e  Entity
}

// Entity returns a Handle for e.
func (cx *Context) Entity(e Entity) Handle { return Handle{cx: cx, e: e} }

// Entity returns the wrapped entity.
func (h Handle) Entity() Entity { return h.e }

// Alive reports whether the entity is still in the tree.
func (h Handle) Alive() bool { return h.cx.tree.Contains(h.e) }

// Add creates a child and returns its Handle. The child handle is stale
// when the entity is.
func (h Handle) Add() Handle {
	c, err := h.cx.AddChild(h.e)
	if err != nil {
		h.cx.debugLog("add child: %v", err)
	}
	return Handle{cx: h.cx, e: c}
}

// Parent returns a Handle for the parent entity.
func (h Handle) Parent() Handle {
	p, _ := h.cx.tree.Parent(h.e)
	return Handle{cx: h.cx, e: p}
}

// Bounds returns the computed bounds.
func (h Handle) Bounds() Bounds {
	b, _ := h.cx.layout.Bounds(h.e)
	return b
}

// Element sets the element name matched by type selectors.
func (h Handle) Element(name string) Handle {
	h.cx.style.SetElement(h.e, name)
	return h
}

// ID sets the id matched by #id selectors.
func (h Handle) ID(id string) Handle {
	h.cx.style.SetID(h.e, id)
	return h
}

// Class adds class names.
func (h Handle) Class(names ...string) Handle {
	for _, n := range names {
		h.cx.style.AddClass(h.e, n)
	}
	return h
}

// ToggleClass adds or removes a class name.
func (h Handle) ToggleClass(name string, on bool) Handle {
	h.cx.style.ToggleClass(h.e, name, on)
	return h
}

// Disabled sets the disabled pseudo-class. Disabled entities get no Press.
func (h Handle) Disabled(on bool) Handle {
	h.cx.style.SetPseudo(h.e, PseudoDisabled, on)
	return h
}

// Checked sets the checked pseudo-class.
func (h Handle) Checked(on bool) Handle {
	h.cx.style.SetPseudo(h.e, PseudoChecked, on)
	return h
}

// Style applies inline "name: value" declarations. Malformed text is
// reported in debug mode and ignored.
func (h Handle) Style(text string) Handle {
	if err := h.cx.style.SetInlineStyle(h.e, text); err != nil {
		h.cx.debugLog("inline style of %v: %v", h.e, err)
	}
	return h
}

// Focusable sets whether the entity takes focus on press and Tab.
func (h Handle) Focusable(on bool) Handle {
	h.cx.SetFocusable(h.e, on)
	return h
}

// Hoverable sets whether hit testing can select the entity.
func (h Handle) Hoverable(on bool) Handle {
	h.cx.SetHoverable(h.e, on)
	return h
}

// Measure registers the content measurer used for Auto sizes.
func (h Handle) Measure(m Measurer) Handle {
	h.cx.layout.SetMeasurer(h.e, m)
	return h
}

// Handler registers an event handler. Use Context.AddHandler to keep the
// CallbackHandle.
func (h Handle) Handler(eh EventHandler) Handle {
	h.cx.AddHandler(h.e, eh)
	return h
}

// --- Layout setters ---

func (h Handle) Display(d Display) Handle { h.cx.style.Display.Set(h.e, d); return h }

func (h Handle) Visibility(v Visibility) Handle { h.cx.style.Visibility.Set(h.e, v); return h }

func (h Handle) LayoutType(t LayoutType) Handle { h.cx.style.LayoutType.Set(h.e, t); return h }

func (h Handle) PositionType(t PositionType) Handle {
	h.cx.style.PositionType.Set(h.e, t)
	return h
}

func (h Handle) Width(u Units) Handle  { h.cx.style.Width.Set(h.e, u); return h }
func (h Handle) Height(u Units) Handle { h.cx.style.Height.Set(h.e, u); return h }

// Size sets width and height.
func (h Handle) Size(w, ht Units) Handle { return h.Width(w).Height(ht) }

func (h Handle) MinWidth(u Units) Handle  { h.cx.style.MinWidth.Set(h.e, u); return h }
func (h Handle) MaxWidth(u Units) Handle  { h.cx.style.MaxWidth.Set(h.e, u); return h }
func (h Handle) MinHeight(u Units) Handle { h.cx.style.MinHeight.Set(h.e, u); return h }
func (h Handle) MaxHeight(u Units) Handle { h.cx.style.MaxHeight.Set(h.e, u); return h }

func (h Handle) Left(u Units) Handle   { h.cx.style.Left.Set(h.e, u); return h }
func (h Handle) Right(u Units) Handle  { h.cx.style.Right.Set(h.e, u); return h }
func (h Handle) Top(u Units) Handle    { h.cx.style.Top.Set(h.e, u); return h }
func (h Handle) Bottom(u Units) Handle { h.cx.style.Bottom.Set(h.e, u); return h }

// Space sets the space on all four sides.
func (h Handle) Space(u Units) Handle { return h.Left(u).Right(u).Top(u).Bottom(u) }

// ChildSpace sets the padding on all four sides.
func (h Handle) ChildSpace(u Units) Handle {
	s := h.cx.style
	s.ChildLeft.Set(h.e, u)
	s.ChildRight.Set(h.e, u)
	s.ChildTop.Set(h.e, u)
	s.ChildBottom.Set(h.e, u)
	return h
}

func (h Handle) RowBetween(u Units) Handle { h.cx.style.RowBetween.Set(h.e, u); return h }
func (h Handle) ColBetween(u Units) Handle { h.cx.style.ColBetween.Set(h.e, u); return h }

// Align sets the main and cross axis alignment of the children.
func (h Handle) Align(main, cross Alignment) Handle {
	h.cx.style.MainAlignment.Set(h.e, main)
	h.cx.style.CrossAlignment.Set(h.e, cross)
	return h
}

// Grid switches to grid layout with the given track templates.
func (h Handle) Grid(cols, rows []Units) Handle {
	h.cx.style.LayoutType.Set(h.e, LayoutGrid)
	h.cx.style.GridCols.Set(h.e, cols)
	h.cx.style.GridRows.Set(h.e, rows)
	return h
}

// Cell places the entity in a grid cell spanning colSpan by rowSpan tracks.
func (h Handle) Cell(col, row, colSpan, rowSpan int) Handle {
	s := h.cx.style
	s.ColIndex.Set(h.e, col)
	s.RowIndex.Set(h.e, row)
	s.ColSpan.Set(h.e, colSpan)
	s.RowSpan.Set(h.e, rowSpan)
	return h
}

func (h Handle) ZIndex(z int) Handle { h.cx.style.ZIndex.Set(h.e, z); return h }

// --- Visual setters ---

func (h Handle) Opacity(v float64) Handle { h.cx.style.Opacity.Set(h.e, v); return h }

func (h Handle) Background(c Color) Handle { h.cx.style.BackgroundColor.Set(h.e, c); return h }

func (h Handle) Color(c Color) Handle { h.cx.style.Color.Set(h.e, c); return h }

func (h Handle) Border(width Units, c Color) Handle {
	h.cx.style.BorderWidth.Set(h.e, width)
	h.cx.style.BorderColor.Set(h.e, c)
	return h
}

// Transition sets the transition list.
func (h Handle) Transition(ts ...Transition) Handle {
	h.cx.style.Transition.Set(h.e, ts)
	return h
}
