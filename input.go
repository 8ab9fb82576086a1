package canopy

import (
	"iter"
	"slices"
)

// inputState is the pointer, keyboard and focus state of a Context.
type inputState struct {
	x, y     float64
	mods     KeyModifiers
	buttons  uint8 // bitmask by MouseButton
	hovered  Entity
	focused  Entity
	captured Entity
	pressed  Entity

	notHoverable Storage[struct{}]
	focusable    Storage[struct{}]
}

// --- Hover / focus configuration ---

// SetHoverable controls whether hit testing can select e. Entities are
// hoverable by default.
func (cx *Context) SetHoverable(e Entity, on bool) {
	if on {
		cx.input.notHoverable.Remove(e)
	} else if cx.tree.Contains(e) {
		cx.input.notHoverable.Insert(e, struct{}{})
	}
}

// SetFocusable controls whether e can take focus by press or keyboard
// navigation.
func (cx *Context) SetFocusable(e Entity, on bool) {
	if !on {
		cx.input.focusable.Remove(e)
		if cx.input.focused == e {
			cx.SetFocus(Null)
		}
		return
	}
	if cx.tree.Contains(e) {
		cx.input.focusable.Insert(e, struct{}{})
	}
}

// IsFocusable reports whether e can take focus.
func (cx *Context) IsFocusable(e Entity) bool { return cx.input.focusable.Contains(e) }

// Cursor returns the last pointer position.
func (cx *Context) Cursor() (x, y float64) { return cx.input.x, cx.input.y }

// Modifiers returns the current modifier keys.
func (cx *Context) Modifiers() KeyModifiers { return cx.input.mods }

// SetModifiers records the modifier keys held down.
func (cx *Context) SetModifiers(mods KeyModifiers) { cx.input.mods = mods }

// Hovered returns the entity under the pointer, or Null.
func (cx *Context) Hovered() Entity { return cx.input.hovered }

// Focused returns the focused entity, or Null.
func (cx *Context) Focused() Entity { return cx.input.focused }

// Captured returns the entity capturing the pointer, or Null.
func (cx *Context) Captured() Entity { return cx.input.captured }

// CapturePointer routes every pointer event to e until the next release
// or ReleasePointer.
func (cx *Context) CapturePointer(e Entity) {
	if cx.tree.Contains(e) {
		cx.input.captured = e
	}
}

// ReleasePointer stops routing pointer events to a captured entity.
func (cx *Context) ReleasePointer() { cx.input.captured = Null }

// --- Hit testing ---

// HitTest returns the topmost entity containing (x, y): later siblings and
// higher z-index are on top, and descendants are tested before their
// ancestors. Entities with display none (and their subtrees), hidden
// entities and entities marked not hoverable are skipped. Root is never
// returned.
func (cx *Context) HitTest(x, y float64) Entity {
	return cx.hitTest(Root, x, y)
}

func (cx *Context) hitTest(e Entity, x, y float64) Entity {
	if cx.style.Display.Get(e) == DisplayNone {
		return Null
	}
	children := cx.paintOrder(e)
	for i := len(children) - 1; i >= 0; i-- {
		if hit := cx.hitTest(children[i], x, y); !hit.IsNull() {
			return hit
		}
	}
	if e == Root || cx.style.Visibility.Get(e) == Hidden || cx.input.notHoverable.Contains(e) {
		return Null
	}
	if b, ok := cx.layout.Bounds(e); ok && b.Contains(x, y) {
		return e
	}
	return Null
}

// paintOrder returns the children of e ordered by z-index, keeping tree
// order among equal z-indices.
func (cx *Context) paintOrder(e Entity) []Entity {
	children := cx.tree.Children(e)
	sorted := true
	for i := 1; i < len(children); i++ {
		if cx.style.ZIndex.Get(children[i]) < cx.style.ZIndex.Get(children[i-1]) {
			sorted = false
			break
		}
	}
	if sorted {
		return children
	}
	out := slices.Clone(children)
	slices.SortStableFunc(out, func(a, b Entity) int {
		return cx.style.ZIndex.Get(a) - cx.style.ZIndex.Get(b)
	})
	return out
}

// PaintOrder returns the children of e back to front, the order a renderer
// should draw them in. The result may be modified by the caller.
func (cx *Context) PaintOrder(e Entity) []Entity {
	return slices.Clone(cx.paintOrder(e))
}

// --- Pointer state machine ---

func (cx *Context) pointerTarget() Entity {
	if cx.tree.Contains(cx.input.captured) {
		return cx.input.captured
	}
	return cx.input.hovered
}

// PointerMove records the pointer position, updates hover state and sends
// MouseMove to the hovered or captured entity.
func (cx *Context) PointerMove(x, y float64) {
	cx.input.x, cx.input.y = x, y
	cx.updateHover()
	cx.Emit(NewEvent(MouseMove{X: x, Y: y, Modifiers: cx.input.mods}).To(cx.pointerTarget()))
}

// updateHover re-runs the hit test at the cursor. MouseLeave and
// MouseEnter go directly to the old and new entity; the hover
// pseudo-class follows the new entity and its ancestors.
func (cx *Context) updateHover() {
	in := &cx.input
	next := cx.HitTest(in.x, in.y)
	prev := in.hovered
	if !cx.tree.Contains(prev) {
		prev = Null
	}
	if next == prev {
		return
	}
	in.hovered = next
	if !prev.IsNull() {
		cx.style.SetPseudo(prev, PseudoOver, false)
		for a := range cx.chain(prev) {
			if a != next && !cx.tree.IsAncestor(a, next) {
				cx.style.SetPseudo(a, PseudoHover, false)
			}
		}
		cx.Emit(NewEvent(MouseLeave{X: in.x, Y: in.y}).To(prev).Direct())
	}
	if !next.IsNull() {
		cx.style.SetPseudo(next, PseudoOver, true)
		for a := range cx.chain(next) {
			cx.style.SetPseudo(a, PseudoHover, true)
		}
		cx.Emit(NewEvent(MouseEnter{X: in.x, Y: in.y}).To(next).Direct())
	}
}

// chain iterates e and its ancestors, excluding Root.
func (cx *Context) chain(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for n, ok := e, cx.tree.Contains(e); ok && n != Root; n, ok = cx.tree.Parent(n) {
			if !yield(n) {
				return
			}
		}
	}
}

// PointerDown presses button at the current cursor position. The pressed
// entity gets the active pseudo-class and focus moves to its nearest
// focusable ancestor (or is cleared).
func (cx *Context) PointerDown(button MouseButton) {
	in := &cx.input
	in.buttons |= 1 << button
	cx.updateHover()
	target := cx.pointerTarget()
	if in.pressed.IsNull() {
		in.pressed = target
		if !target.IsNull() {
			cx.style.SetPseudo(target, PseudoActive, true)
		}
		cx.SetFocus(cx.focusableFrom(target))
	}
	cx.Emit(NewEvent(MouseDown{X: in.x, Y: in.y, Button: button, Modifiers: in.mods}).To(target))
}

// PointerUp releases button. MouseUp goes to the entity under the pointer;
// Press follows when it is the entity that received the press. Pointer
// capture ends.
func (cx *Context) PointerUp(button MouseButton) {
	in := &cx.input
	in.buttons &^= 1 << button
	cx.updateHover()
	target := cx.pointerTarget()
	cx.Emit(NewEvent(MouseUp{X: in.x, Y: in.y, Button: button, Modifiers: in.mods}).To(target))
	if in.buttons != 0 {
		return
	}
	pressed := in.pressed
	in.pressed = Null
	in.captured = Null
	if pressed.IsNull() || !cx.tree.Contains(pressed) {
		return
	}
	cx.style.SetPseudo(pressed, PseudoActive, false)
	if pressed == target && cx.style.Pseudo(pressed)&PseudoDisabled == 0 {
		cx.Emit(NewEvent(Press{X: in.x, Y: in.y, Button: button}).To(pressed))
	}
}

// Scroll sends MouseScroll to the hovered or captured entity.
func (cx *Context) Scroll(dx, dy float64) {
	in := &cx.input
	cx.Emit(NewEvent(MouseScroll{X: in.x, Y: in.y, DX: dx, DY: dy, Modifiers: in.mods}).To(cx.pointerTarget()))
}

// IsPressed reports whether button is held down.
func (cx *Context) IsPressed(button MouseButton) bool {
	return cx.input.buttons&(1<<button) != 0
}

// --- Keyboard and focus ---

func (cx *Context) keyTarget() Entity {
	if cx.tree.Contains(cx.input.focused) {
		return cx.input.focused
	}
	return Root
}

// KeyDown sends KeyDown to the focused entity. An unconsumed Tab moves
// focus to the next focusable entity (previous with Shift).
func (cx *Context) KeyDown(key Key, repeat bool) {
	cx.Emit(NewEvent(KeyDown{Key: key, Modifiers: cx.input.mods, Repeat: repeat}).To(cx.keyTarget()))
}

// KeyUp sends KeyUp to the focused entity.
func (cx *Context) KeyUp(key Key) {
	cx.Emit(NewEvent(KeyUp{Key: key, Modifiers: cx.input.mods}).To(cx.keyTarget()))
}

// CharInput sends a typed character to the focused entity.
func (cx *Context) CharInput(r rune) {
	cx.Emit(NewEvent(CharInput{Char: r}).To(cx.keyTarget()))
}

// afterDelivery runs default actions of delivered built-in events.
func (cx *Context) afterDelivery(ev *Event) {
	if ev.consumed || !cx.config.TabNavigation {
		return
	}
	if kd, ok := ev.Message.(KeyDown); ok && kd.Key == KeyTab {
		if kd.Modifiers&ModShift != 0 {
			cx.FocusPrev()
		} else {
			cx.FocusNext()
		}
	}
}

func (cx *Context) focusableFrom(e Entity) Entity {
	for n := range cx.chain(e) {
		if cx.input.focusable.Contains(n) {
			return n
		}
	}
	return Null
}

// SetFocus moves focus to e (Null clears it). FocusOut and FocusIn are
// sent directly to the old and new entity.
func (cx *Context) SetFocus(e Entity) { cx.setFocus(e, false) }

func (cx *Context) setFocus(e Entity, visible bool) {
	in := &cx.input
	if !e.IsNull() && !cx.tree.Contains(e) {
		return
	}
	if e == in.focused {
		if visible {
			cx.style.SetPseudo(e, PseudoFocusVisible, true)
		}
		return
	}
	prev := in.focused
	in.focused = e
	if cx.tree.Contains(prev) {
		cx.style.SetPseudo(prev, PseudoFocus|PseudoFocusVisible, false)
		cx.Emit(NewEvent(FocusOut{}).To(prev).Direct())
	}
	if !e.IsNull() {
		cx.style.SetPseudo(e, PseudoFocus, true)
		if visible {
			cx.style.SetPseudo(e, PseudoFocusVisible, true)
		}
		cx.Emit(NewEvent(FocusIn{Visible: visible}).To(e).Direct())
	}
}

// focusOrder lists the focusable, displayed, enabled entities in tree order.
func (cx *Context) focusOrder() []Entity {
	var out []Entity
	for e := range cx.tree.Down(Root) {
		if cx.input.focusable.Contains(e) && cx.isDisplayed(e) && cx.style.Pseudo(e)&PseudoDisabled == 0 {
			out = append(out, e)
		}
	}
	return out
}

func (cx *Context) isDisplayed(e Entity) bool {
	for n := range cx.chain(e) {
		if cx.style.Display.Get(n) == DisplayNone {
			return false
		}
	}
	return true
}

// FocusNext moves focus to the next focusable entity in tree order,
// wrapping around.
func (cx *Context) FocusNext() { cx.focusStep(1) }

// FocusPrev moves focus to the previous focusable entity in tree order,
// wrapping around.
func (cx *Context) FocusPrev() { cx.focusStep(-1) }

func (cx *Context) focusStep(dir int) {
	order := cx.focusOrder()
	if len(order) == 0 {
		return
	}
	i := slices.Index(order, cx.input.focused)
	switch {
	case i < 0 && dir > 0:
		i = 0
	case i < 0:
		i = len(order) - 1
	default:
		i = (i + dir + len(order)) % len(order)
	}
	cx.setFocus(order[i], true)
}

// dropHover clears the hover state of the surviving ancestors of e when the
// hovered entity is inside the subtree about to be removed.
func (cx *Context) dropHover(e Entity) {
	in := &cx.input
	if in.hovered != e && !cx.tree.IsAncestor(e, in.hovered) {
		return
	}
	if p, ok := cx.tree.Parent(e); ok {
		for a := range cx.chain(p) {
			cx.style.SetPseudo(a, PseudoHover, false)
		}
	}
	in.hovered = Null
}

// forgetInput clears input references to a removed entity.
func (cx *Context) forgetInput(e Entity) {
	in := &cx.input
	if in.hovered == e {
		in.hovered = Null
	}
	if in.focused == e {
		in.focused = Null
	}
	if in.captured == e {
		in.captured = Null
	}
	if in.pressed == e {
		in.pressed = Null
	}
	in.notHoverable.Remove(e)
	in.focusable.Remove(e)
}
