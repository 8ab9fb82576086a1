package canopy

type injectKind uint8

const (
	injectMove injectKind = iota
	injectPress
	injectRelease
	injectKey
	injectText
	injectScroll
)

// syntheticInput is a single injected input. Coordinates are viewport
// coordinates, identical to real pointer input.
type syntheticInput struct {
	kind   injectKind
	x, y   float64
	button MouseButton
	key    Key
	mods   KeyModifiers
	text   string
}

// InjectMove queues a pointer move to (x, y). Injected inputs are consumed
// one per cycle, at the start of Update.
func (cx *Context) InjectMove(x, y float64) {
	cx.inject = append(cx.inject, syntheticInput{kind: injectMove, x: x, y: y})
}

// InjectPress queues a left button press at (x, y).
func (cx *Context) InjectPress(x, y float64) {
	cx.inject = append(cx.inject, syntheticInput{kind: injectPress, x: x, y: y, button: MouseButtonLeft})
}

// InjectRelease queues a left button release at (x, y).
func (cx *Context) InjectRelease(x, y float64) {
	cx.inject = append(cx.inject, syntheticInput{kind: injectRelease, x: x, y: y, button: MouseButtonLeft})
}

// InjectClick is a convenience that queues a press followed by a release
// at the same coordinates. Consumes two cycles.
func (cx *Context) InjectClick(x, y float64) {
	cx.InjectPress(x, y)
	cx.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 linearly
// interpolated moves and a release at (toX, toY). Minimum frames is 2.
func (cx *Context) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	cx.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		cx.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	cx.InjectRelease(toX, toY)
}

// InjectScroll queues a wheel movement at the current cursor position.
func (cx *Context) InjectScroll(dx, dy float64) {
	cx.inject = append(cx.inject, syntheticInput{kind: injectScroll, x: dx, y: dy})
}

// InjectKey queues a key press and release with the given modifiers held.
func (cx *Context) InjectKey(key Key, mods KeyModifiers) {
	cx.inject = append(cx.inject, syntheticInput{kind: injectKey, key: key, mods: mods})
}

// InjectText queues one CharInput per rune of text, all in one cycle.
func (cx *Context) InjectText(text string) {
	cx.inject = append(cx.inject, syntheticInput{kind: injectText, text: text})
}

// Injecting reports whether injected inputs are waiting.
func (cx *Context) Injecting() bool { return len(cx.inject) > 0 }

// processInjectedInput pops one input from the inject queue and feeds it
// through the pointer and keyboard state machine. Returns true if an input
// was consumed.
func (cx *Context) processInjectedInput() bool {
	if len(cx.inject) == 0 {
		return false
	}
	in := cx.inject[0]
	copy(cx.inject, cx.inject[1:])
	cx.inject = cx.inject[:len(cx.inject)-1]

	switch in.kind {
	case injectMove:
		cx.PointerMove(in.x, in.y)
	case injectPress:
		cx.PointerMove(in.x, in.y)
		cx.PointerDown(in.button)
	case injectRelease:
		cx.PointerMove(in.x, in.y)
		cx.PointerUp(in.button)
	case injectScroll:
		cx.Scroll(in.x, in.y)
	case injectKey:
		held := cx.input.mods
		cx.input.mods = in.mods
		cx.KeyDown(in.key, false)
		cx.KeyUp(in.key)
		cx.input.mods = held
	case injectText:
		for _, r := range in.text {
			cx.CharInput(r)
		}
	}
	return true
}
