package canopy

import "fmt"

// Propagation selects the path an event takes through the tree.
type Propagation uint8

const (
	Bubble  Propagation = iota // target, then each ancestor up to Root
	Capture                    // Root down to the target
	Direct                     // the target only
)

func (p Propagation) String() string {
	switch p {
	case Capture:
		return "capture"
	case Direct:
		return "direct"
	default:
		return "bubble"
	}
}

// Phase is the delivery state of an event.
type Phase uint8

const (
	PhaseQueued Phase = iota
	PhaseCapturing
	PhaseAtTarget
	PhaseBubbling
	PhaseConsumed
	PhaseDelivered
)

var phaseNames = [...]string{"queued", "capturing", "at-target", "bubbling", "consumed", "delivered"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Event carries a message of any type from an origin to a target entity.
type Event struct {
	Message     any
	Target      Entity
	Origin      Entity
	Propagation Propagation

	phase    Phase
	current  Entity
	consumed bool
}

// NewEvent creates a bubbling event targeting Root.
func NewEvent(msg any) *Event {
	return &Event{Message: msg, Target: Root}
}

// To sets the target.
func (ev *Event) To(target Entity) *Event {
	ev.Target = target
	return ev
}

// From sets the origin.
func (ev *Event) From(origin Entity) *Event {
	ev.Origin = origin
	return ev
}

// Direct delivers the event to its target only.
func (ev *Event) Direct() *Event {
	ev.Propagation = Direct
	return ev
}

// Capture delivers the event from Root down to its target.
func (ev *Event) Capture() *Event {
	ev.Propagation = Capture
	return ev
}

// Consume stops propagation after the handlers of the current entity.
func (ev *Event) Consume() { ev.consumed = true }

// Consumed reports whether a handler consumed the event.
func (ev *Event) Consumed() bool { return ev.consumed }

// Phase returns the delivery phase.
func (ev *Event) Phase() Phase { return ev.phase }

// Current returns the entity whose handlers are running.
func (ev *Event) Current() Entity { return ev.current }

// As returns the message of ev as a T.
func As[T any](ev *Event) (T, bool) {
	m, ok := ev.Message.(T)
	return m, ok
}

// MouseDown is sent to the entity under the pointer when a button is pressed.
type MouseDown struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// MouseUp is sent to the entity under the pointer when a button is released.
type MouseUp struct {
	X, Y      float64
	Button    MouseButton
	Modifiers KeyModifiers
}

// MouseMove is sent to the hovered (or captured) entity when the pointer moves.
type MouseMove struct {
	X, Y      float64
	Modifiers KeyModifiers
}

// MouseScroll is sent to the hovered (or captured) entity on wheel input.
type MouseScroll struct {
	X, Y      float64
	DX, DY    float64
	Modifiers KeyModifiers
}

// MouseEnter is sent directly to an entity when it becomes the hovered entity.
type MouseEnter struct{ X, Y float64 }

// MouseLeave is sent directly to an entity when it stops being hovered.
type MouseLeave struct{ X, Y float64 }

// Press follows a MouseUp released over the entity that received the MouseDown.
type Press struct {
	X, Y   float64
	Button MouseButton
}

// KeyDown is sent to the focused entity, or Root when nothing has focus.
type KeyDown struct {
	Key       Key
	Modifiers KeyModifiers
	Repeat    bool
}

// KeyUp is sent to the focused entity, or Root when nothing has focus.
type KeyUp struct {
	Key       Key
	Modifiers KeyModifiers
}

// CharInput carries one typed character to the focused entity.
type CharInput struct{ Char rune }

// FocusIn is sent directly to an entity that gains focus. Visible is set
// when focus moved by keyboard navigation.
type FocusIn struct{ Visible bool }

// FocusOut is sent directly to an entity that loses focus.
type FocusOut struct{}

// GeometryChanged is sent directly to an entity whose bounds changed
// during the previous cycle's layout.
type GeometryChanged struct {
	Flags  GeometryFlags
	Bounds Bounds
}

// WindowResize is sent to Root when the viewport changes.
type WindowResize struct{ Width, Height float64 }
