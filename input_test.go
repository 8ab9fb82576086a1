package canopy

import (
	"slices"
	"testing"
)

// newButtons lays out two side-by-side 100x100 entities in a 200x100 window.
func newButtons(t *testing.T) (cx *Context, a, b Entity) {
	t.Helper()
	cx = New(WithViewport(200, 100))
	cx.Entity(Root).LayoutType(LayoutRow)
	a = cx.Entity(Root).Add().Entity()
	b = cx.Entity(Root).Add().Entity()
	cx.Update(0)
	return cx, a, b
}

// msgLog records the names of built-in messages delivered at an entity.
func msgLog(cx *Context, e Entity, name string, log *[]string) {
	cx.AddHandler(e, HandlerFunc(func(cx *Context, ev *Event) {
		if ev.Current() != e {
			return
		}
		var kind string
		switch ev.Message.(type) {
		case MouseEnter:
			kind = "enter"
		case MouseLeave:
			kind = "leave"
		case MouseDown:
			kind = "down"
		case MouseUp:
			kind = "up"
		case MouseMove:
			kind = "move"
		case Press:
			kind = "press"
		case FocusIn:
			kind = "focusin"
		case FocusOut:
			kind = "focusout"
		case KeyDown:
			kind = "keydown"
		default:
			return
		}
		*log = append(*log, name+":"+kind)
	}))
}

func TestHitTest(t *testing.T) {
	cx, a, b := newButtons(t)
	if got := cx.HitTest(50, 50); got != a {
		t.Errorf("HitTest(50, 50) = %v, want a", got)
	}
	if got := cx.HitTest(150, 50); got != b {
		t.Errorf("HitTest(150, 50) = %v, want b", got)
	}
	if got := cx.HitTest(500, 50); !got.IsNull() {
		t.Errorf("HitTest outside = %v, want Null", got)
	}

	c := cx.Entity(a).Add().Entity()
	cx.Update(0)
	if got := cx.HitTest(50, 50); got != c {
		t.Errorf("descendant should be hit first, got %v", got)
	}
	cx.SetHoverable(c, false)
	if got := cx.HitTest(50, 50); got != a {
		t.Errorf("non-hoverable child: got %v, want a", got)
	}
	cx.SetHoverable(c, true)

	cx.Entity(a).Visibility(Hidden)
	cx.Update(0)
	if got := cx.HitTest(50, 50); got != c {
		t.Errorf("children of a hidden entity stay hittable, got %v", got)
	}
	cx.SetHoverable(c, false)
	if got := cx.HitTest(50, 50); !got.IsNull() {
		t.Errorf("hidden entity should not be hit, got %v", got)
	}

	cx.Entity(b).Display(DisplayNone)
	cx.Update(0)
	if got := cx.HitTest(150, 50); !got.IsNull() {
		t.Errorf("display none should not be hit, got %v", got)
	}
}

func TestHitTestZIndex(t *testing.T) {
	cx := New(WithViewport(200, 100))
	overlay := cx.Entity(Root).Add().PositionType(SelfDirected).Size(Pixels(200), Pixels(100))
	below := cx.Entity(Root).Add().Entity()
	cx.Update(0)

	if got := cx.HitTest(10, 10); got != below {
		t.Errorf("later sibling should be on top, got %v", got)
	}
	overlay.ZIndex(1)
	cx.Update(0)
	if got := cx.HitTest(10, 10); got != overlay.Entity() {
		t.Errorf("higher z-index should be on top, got %v", got)
	}
}

func TestHoverEnterLeave(t *testing.T) {
	cx, a, b := newButtons(t)
	var log []string
	msgLog(cx, a, "a", &log)
	msgLog(cx, b, "b", &log)

	cx.PointerMove(50, 50)
	if cx.Hovered() != a {
		t.Fatalf("Hovered = %v, want a", cx.Hovered())
	}
	if cx.Style().Pseudo(a)&PseudoHover == 0 {
		t.Error("a should have :hover")
	}
	cx.Update(0)

	cx.PointerMove(150, 50)
	cx.Update(0)
	if cx.Style().Pseudo(a)&PseudoHover != 0 {
		t.Error("a should lose :hover")
	}
	if cx.Style().Pseudo(b)&PseudoHover == 0 {
		t.Error("b should have :hover")
	}
	want := []string{"a:enter", "a:move", "a:leave", "b:enter", "b:move"}
	if !slices.Equal(log, want) {
		t.Errorf("events = %v, want %v", log, want)
	}
}

func TestHoverMarksAncestors(t *testing.T) {
	cx, a, _ := newButtons(t)
	c := cx.Entity(a).Add().Entity()
	cx.Update(0)

	cx.PointerMove(50, 50)
	s := cx.Style()
	if s.Pseudo(c)&(PseudoHover|PseudoOver) != PseudoHover|PseudoOver {
		t.Errorf("c pseudo = %v, want :hover:over", s.Pseudo(c))
	}
	if s.Pseudo(a)&PseudoHover == 0 || s.Pseudo(a)&PseudoOver != 0 {
		t.Errorf("a pseudo = %v, want :hover only", s.Pseudo(a))
	}
	if s.Pseudo(Root) != 0 {
		t.Errorf("Root pseudo = %v, want none", s.Pseudo(Root))
	}
}

func TestPressOnRelease(t *testing.T) {
	cx, a, b := newButtons(t)
	var log []string
	msgLog(cx, a, "a", &log)
	msgLog(cx, b, "b", &log)

	cx.PointerMove(50, 50)
	cx.PointerDown(MouseButtonLeft)
	if cx.Style().Pseudo(a)&PseudoActive == 0 {
		t.Error("a should be :active while pressed")
	}
	if !cx.IsPressed(MouseButtonLeft) {
		t.Error("left button should be pressed")
	}
	cx.PointerUp(MouseButtonLeft)
	cx.Update(0)
	if cx.Style().Pseudo(a)&PseudoActive != 0 {
		t.Error("a should lose :active")
	}
	if want := []string{"a:enter", "a:move", "a:down", "a:up", "a:press"}; !slices.Equal(log, want) {
		t.Errorf("events = %v, want %v", log, want)
	}
}

func TestNoPressWhenReleasedElsewhere(t *testing.T) {
	cx, a, b := newButtons(t)
	presses := 0
	On(cx, a, func(*Context, *Event, Press) { presses++ })
	On(cx, b, func(*Context, *Event, Press) { presses++ })
	ups := 0
	On(cx, b, func(*Context, *Event, MouseUp) { ups++ })

	cx.PointerMove(50, 50)
	cx.PointerDown(MouseButtonLeft)
	cx.PointerMove(150, 50)
	cx.PointerUp(MouseButtonLeft)
	cx.Update(0)
	if presses != 0 {
		t.Errorf("presses = %d, want 0", presses)
	}
	if ups != 1 {
		t.Errorf("MouseUp at b = %d, want 1", ups)
	}
}

func TestNoPressWhenDisabled(t *testing.T) {
	cx, a, _ := newButtons(t)
	presses := 0
	On(cx, a, func(*Context, *Event, Press) { presses++ })
	cx.Entity(a).Disabled(true)

	cx.PointerMove(50, 50)
	cx.PointerDown(MouseButtonLeft)
	cx.PointerUp(MouseButtonLeft)
	cx.Update(0)
	if presses != 0 {
		t.Errorf("disabled entity got %d presses", presses)
	}
}

func TestPressFocusesNearestFocusable(t *testing.T) {
	cx, a, b := newButtons(t)
	c := cx.Entity(a).Add().Entity()
	cx.SetFocusable(a, true)
	cx.Update(0)
	var visible []bool
	On(cx, a, func(_ *Context, _ *Event, m FocusIn) { visible = append(visible, m.Visible) })
	outs := 0
	On(cx, a, func(*Context, *Event, FocusOut) { outs++ })

	cx.PointerMove(50, 50)
	cx.PointerDown(MouseButtonLeft)
	cx.PointerUp(MouseButtonLeft)
	cx.Update(0)
	if cx.Hovered() != c {
		t.Fatalf("Hovered = %v, want c", cx.Hovered())
	}
	if cx.Focused() != a {
		t.Fatalf("Focused = %v, want a", cx.Focused())
	}
	if !slices.Equal(visible, []bool{false}) {
		t.Errorf("FocusIn.Visible = %v, want [false]", visible)
	}
	if cx.Style().Pseudo(a)&PseudoFocus == 0 {
		t.Error("a should have :focus")
	}

	// Pressing a non-focusable entity clears focus.
	cx.PointerMove(150, 50)
	cx.PointerDown(MouseButtonLeft)
	cx.PointerUp(MouseButtonLeft)
	cx.Update(0)
	if !cx.Focused().IsNull() {
		t.Errorf("Focused = %v, want Null after pressing %v", cx.Focused(), b)
	}
	if outs != 1 {
		t.Errorf("FocusOut = %d, want 1", outs)
	}
}

func TestTabNavigation(t *testing.T) {
	cx, a, b := newButtons(t)
	d := cx.Entity(Root).Add().Disabled(true).Entity()
	cx.SetFocusable(a, true)
	cx.SetFocusable(b, true)
	cx.SetFocusable(d, true)
	cx.Update(0)

	tab := func(mods KeyModifiers) Entity {
		cx.SetModifiers(mods)
		cx.KeyDown(KeyTab, false)
		cx.Update(0)
		return cx.Focused()
	}
	if got := tab(0); got != a {
		t.Fatalf("first Tab focused %v, want a", got)
	}
	if cx.Style().Pseudo(a)&PseudoFocusVisible == 0 {
		t.Error("keyboard focus should set :focus-visible")
	}
	if got := tab(0); got != b {
		t.Errorf("Tab focused %v, want b", got)
	}
	if got := tab(0); got != a {
		t.Errorf("Tab should skip the disabled entity and wrap to a, got %v", got)
	}
	if got := tab(ModShift); got != b {
		t.Errorf("Shift+Tab focused %v, want b", got)
	}
	if cx.Style().Pseudo(a)&(PseudoFocus|PseudoFocusVisible) != 0 {
		t.Error("a should lose :focus and :focus-visible")
	}
}

func TestConsumedTabKeepsFocus(t *testing.T) {
	cx, a, b := newButtons(t)
	cx.SetFocusable(a, true)
	cx.SetFocusable(b, true)
	cx.SetFocus(a)
	On(cx, a, func(_ *Context, ev *Event, _ KeyDown) { ev.Consume() })

	cx.KeyDown(KeyTab, false)
	cx.Update(0)
	if cx.Focused() != a {
		t.Errorf("Focused = %v, want a", cx.Focused())
	}
}

func TestTabNavigationDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TabNavigation = false
	cx := New(WithConfig(cfg), WithViewport(100, 100))
	cx.Entity(Root).Add().Focusable(true)
	cx.Update(0)
	cx.KeyDown(KeyTab, false)
	cx.Update(0)
	if !cx.Focused().IsNull() {
		t.Errorf("Focused = %v, want Null", cx.Focused())
	}
}

func TestKeysGoToFocusedOrRoot(t *testing.T) {
	cx, a, _ := newButtons(t)
	var log []string
	msgLog(cx, Root, "root", &log)
	msgLog(cx, a, "a", &log)

	cx.KeyDown(KeyEnter, false)
	cx.Update(0)
	cx.SetFocusable(a, true)
	cx.SetFocus(a)
	cx.KeyDown(KeyEnter, false)
	cx.Update(0)
	want := []string{"root:keydown", "a:focusin", "a:keydown", "root:keydown"}
	if !slices.Equal(log, want) {
		t.Errorf("events = %v, want %v", log, want)
	}

	var typed []rune
	On(cx, a, func(_ *Context, _ *Event, m CharInput) { typed = append(typed, m.Char) })
	cx.CharInput('h')
	cx.CharInput('i')
	cx.Update(0)
	if string(typed) != "hi" {
		t.Errorf("typed %q, want hi", string(typed))
	}
}

func TestPointerCapture(t *testing.T) {
	cx, a, b := newButtons(t)
	moves := map[Entity]int{}
	for _, e := range []Entity{a, b} {
		On(cx, e, func(_ *Context, ev *Event, _ MouseMove) {
			if ev.Current() == e {
				moves[e]++
			}
		})
	}

	cx.PointerMove(50, 50)
	cx.PointerDown(MouseButtonLeft)
	cx.CapturePointer(a)
	cx.PointerMove(150, 50)
	cx.Update(0)
	if cx.Captured() != a {
		t.Errorf("Captured = %v, want a", cx.Captured())
	}
	if moves[a] != 2 || moves[b] != 0 {
		t.Errorf("moves = a:%d b:%d, want a:2 b:0", moves[a], moves[b])
	}

	cx.PointerUp(MouseButtonLeft)
	if !cx.Captured().IsNull() {
		t.Error("release should end pointer capture")
	}
	cx.PointerMove(160, 50)
	cx.Update(0)
	if moves[b] != 1 {
		t.Errorf("moves at b = %d, want 1", moves[b])
	}
}

func TestScrollTargetsHovered(t *testing.T) {
	cx, _, b := newButtons(t)
	var got []MouseScroll
	On(cx, b, func(_ *Context, _ *Event, m MouseScroll) { got = append(got, m) })
	cx.PointerMove(150, 20)
	cx.Scroll(0, -3)
	cx.Update(0)
	if len(got) != 1 || got[0].DY != -3 || got[0].X != 150 {
		t.Errorf("scroll = %+v", got)
	}
}

func TestRemoveClearsInputState(t *testing.T) {
	cx, a, _ := newButtons(t)
	cx.SetFocusable(a, true)
	cx.PointerMove(50, 50)
	cx.PointerDown(MouseButtonLeft)
	cx.CapturePointer(a)
	if err := cx.Remove(a); err != nil {
		t.Fatal(err)
	}
	if !cx.Hovered().IsNull() || !cx.Focused().IsNull() || !cx.Captured().IsNull() {
		t.Errorf("hovered %v focused %v captured %v, want all Null",
			cx.Hovered(), cx.Focused(), cx.Captured())
	}
	cx.PointerUp(MouseButtonLeft)
	cx.Update(0)
}

func TestRemoveHoveredClearsAncestorHover(t *testing.T) {
	cx, a, b := newButtons(t)
	leaf, _ := cx.AddChild(a)
	cx.Update(0)
	cx.PointerMove(50, 50)
	if cx.Hovered() != leaf || cx.Style().Pseudo(a)&PseudoHover == 0 {
		t.Fatalf("hovered = %v, a pseudo = %v; want leaf hovered inside a", cx.Hovered(), cx.Style().Pseudo(a))
	}

	if err := cx.Remove(leaf); err != nil {
		t.Fatal(err)
	}
	if got := cx.Style().Pseudo(a); got&PseudoHover != 0 {
		t.Errorf("a pseudo after removal = %v, want no hover", got)
	}

	cx.PointerMove(150, 50)
	if cx.Hovered() != b {
		t.Errorf("hovered = %v, want b", cx.Hovered())
	}
	if got := cx.Style().Pseudo(a); got&PseudoHover != 0 {
		t.Errorf("a pseudo after moving away = %v, want no hover", got)
	}
	if got := cx.Style().Pseudo(b); got&(PseudoHover|PseudoOver) != PseudoHover|PseudoOver {
		t.Errorf("b pseudo = %v, want hover and over", got)
	}
}

func TestSetFocusableFalseClearsFocus(t *testing.T) {
	cx, a, _ := newButtons(t)
	cx.SetFocusable(a, true)
	cx.SetFocus(a)
	cx.SetFocusable(a, false)
	if !cx.Focused().IsNull() {
		t.Errorf("Focused = %v, want Null", cx.Focused())
	}
	if cx.IsFocusable(a) {
		t.Error("a should not be focusable")
	}
}
