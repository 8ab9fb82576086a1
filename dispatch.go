package canopy

import "slices"

// EventHandler receives events delivered to an entity.
type EventHandler interface {
	HandleEvent(cx *Context, ev *Event)
}

// HandlerFunc adapts a function to EventHandler.
type HandlerFunc func(cx *Context, ev *Event)

// HandleEvent calls f(cx, ev).
func (f HandlerFunc) HandleEvent(cx *Context, ev *Event) { f(cx, ev) }

// --- Handler registry ---

type handlerEntry struct {
	id uint32
	h  EventHandler
}

type handlerRegistry struct {
	entity    Storage[[]handlerEntry]
	observers []handlerEntry
	nextID    uint32
}

// CallbackHandle removes a registered handler or observer.
type CallbackHandle struct {
	id     uint32
	reg    *handlerRegistry
	entity Entity
}

// Remove unregisters the handler. It is safe to call more than once and
// from inside the handler itself.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	if h.entity.IsNull() {
		h.reg.observers = removeHandler(h.reg.observers, h.id)
		return
	}
	if hs, ok := h.reg.entity.Get(h.entity); ok {
		h.reg.entity.Insert(h.entity, removeHandler(hs, h.id))
	}
}

func removeHandler(s []handlerEntry, id uint32) []handlerEntry {
	for i := range s {
		if s[i].id == id {
			return slices.Delete(slices.Clip(s), i, i+1)
		}
	}
	return s
}

// AddHandler registers h for events delivered to e.
func (cx *Context) AddHandler(e Entity, h EventHandler) CallbackHandle {
	if !cx.tree.Contains(e) {
		return CallbackHandle{}
	}
	cx.handlers.nextID++
	id := cx.handlers.nextID
	hs, _ := cx.handlers.entity.Get(e)
	cx.handlers.entity.Insert(e, append(slices.Clip(hs), handlerEntry{id: id, h: h}))
	return CallbackHandle{id: id, reg: &cx.handlers, entity: e}
}

// On registers fn for events delivered to e whose message is a T.
func On[T any](cx *Context, e Entity, fn func(cx *Context, ev *Event, msg T)) CallbackHandle {
	return cx.AddHandler(e, HandlerFunc(func(cx *Context, ev *Event) {
		if m, ok := ev.Message.(T); ok {
			fn(cx, ev, m)
		}
	}))
}

// Observe registers a scene-wide observer that sees every event before
// any per-entity handler.
func (cx *Context) Observe(fn HandlerFunc) CallbackHandle {
	cx.handlers.nextID++
	id := cx.handlers.nextID
	cx.handlers.observers = append(slices.Clip(cx.handlers.observers), handlerEntry{id: id, h: fn})
	return CallbackHandle{id: id, reg: &cx.handlers}
}

// --- Queue and dispatch ---

// Emit queues ev for delivery during the next event phase. A Null target
// is delivered to Root.
func (cx *Context) Emit(ev *Event) {
	ev.phase = PhaseQueued
	cx.queue = append(cx.queue, ev)
}

// EmitTo queues msg as a bubbling event from origin to target.
func (cx *Context) EmitTo(origin, target Entity, msg any) {
	cx.Emit(NewEvent(msg).From(origin).To(target))
}

// Dispatch delivers ev synchronously and returns once every handler on its
// path has run. It may be called from inside a handler.
func (cx *Context) Dispatch(ev *Event) {
	cx.deliver(ev)
}

// Pending returns the number of queued events.
func (cx *Context) Pending() int { return len(cx.queue) - cx.queueHead }

// processEvents drains the queue in FIFO order, including events emitted by
// the handlers it runs, and returns how many were delivered. At most limit
// events are delivered when limit > 0; the rest wait for the next cycle.
func (cx *Context) processEvents(limit int) int {
	n := 0
	for cx.queueHead < len(cx.queue) {
		if limit > 0 && n >= limit {
			cx.debugLog("event limit %d reached, %d events deferred", limit, cx.Pending())
			break
		}
		ev := cx.queue[cx.queueHead]
		cx.queue[cx.queueHead] = nil
		cx.queueHead++
		cx.deliver(ev)
		n++
	}
	if cx.queueHead == len(cx.queue) {
		cx.queue = cx.queue[:0]
		cx.queueHead = 0
	}
	return n
}

// path returns the entities ev visits, in visiting order.
func (cx *Context) path(ev *Event) []Entity {
	target := ev.Target
	if target.IsNull() {
		target = Root
	}
	if !cx.tree.Contains(target) {
		return nil
	}
	if ev.Propagation == Direct {
		return []Entity{target}
	}
	p := []Entity{target}
	for a := range cx.tree.Ancestors(target) {
		p = append(p, a)
	}
	if ev.Propagation == Capture {
		slices.Reverse(p)
	}
	return p
}

func (cx *Context) deliver(ev *Event) {
	if ev.Target.IsNull() {
		ev.Target = Root
	}
	ev.consumed = false
	ev.current = Null
	for _, o := range slices.Clone(cx.handlers.observers) {
		o.h.HandleEvent(cx, ev)
	}
	path := cx.path(ev)
	if path == nil {
		cx.debugLog("event %T dropped: stale target %v", ev.Message, ev.Target)
	}
	for _, n := range path {
		if ev.consumed {
			break
		}
		// handlers may remove entities on the path
		if !cx.tree.Contains(n) {
			continue
		}
		ev.current = n
		switch {
		case n == ev.Target:
			ev.phase = PhaseAtTarget
		case ev.Propagation == Capture:
			ev.phase = PhaseCapturing
		default:
			ev.phase = PhaseBubbling
		}
		hs, _ := cx.handlers.entity.Get(n)
		for _, h := range slices.Clone(hs) {
			h.h.HandleEvent(cx, ev)
		}
	}
	if ev.consumed {
		ev.phase = PhaseConsumed
	} else {
		ev.phase = PhaseDelivered
	}
	cx.stats.events++
	cx.forward(ev)
	cx.afterDelivery(ev)
}

// --- ECS bridge ---

// EventType identifies the kind of an InteractionEvent.
type EventType uint8

const (
	EventMouseDown EventType = iota
	EventMouseUp
	EventMouseMove
	EventMouseScroll
	EventMouseEnter
	EventMouseLeave
	EventPress
	EventKeyDown
	EventKeyUp
	EventFocusIn
	EventFocusOut
	EventGeometryChanged
)

// EntityStore receives a flattened copy of every built-in event after it
// has been delivered. Set one with WithEntityStore to drive an ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent is the ECS view of a delivered built-in event.
type InteractionEvent struct {
	Type      EventType
	Entity    Entity
	X, Y      float64
	DX, DY    float64
	Button    MouseButton
	Modifiers KeyModifiers
	Key       Key
	Bounds    Bounds
	Consumed  bool
}

func (cx *Context) forward(ev *Event) {
	if cx.store == nil {
		return
	}
	ie := InteractionEvent{Entity: ev.Target, Consumed: ev.consumed}
	switch m := ev.Message.(type) {
	case MouseDown:
		ie.Type, ie.X, ie.Y, ie.Button, ie.Modifiers = EventMouseDown, m.X, m.Y, m.Button, m.Modifiers
	case MouseUp:
		ie.Type, ie.X, ie.Y, ie.Button, ie.Modifiers = EventMouseUp, m.X, m.Y, m.Button, m.Modifiers
	case MouseMove:
		ie.Type, ie.X, ie.Y, ie.Modifiers = EventMouseMove, m.X, m.Y, m.Modifiers
	case MouseScroll:
		ie.Type, ie.X, ie.Y, ie.DX, ie.DY, ie.Modifiers = EventMouseScroll, m.X, m.Y, m.DX, m.DY, m.Modifiers
	case MouseEnter:
		ie.Type, ie.X, ie.Y = EventMouseEnter, m.X, m.Y
	case MouseLeave:
		ie.Type, ie.X, ie.Y = EventMouseLeave, m.X, m.Y
	case Press:
		ie.Type, ie.X, ie.Y, ie.Button = EventPress, m.X, m.Y, m.Button
	case KeyDown:
		ie.Type, ie.Key, ie.Modifiers = EventKeyDown, m.Key, m.Modifiers
	case KeyUp:
		ie.Type, ie.Key, ie.Modifiers = EventKeyUp, m.Key, m.Modifiers
	case FocusIn:
		ie.Type = EventFocusIn
	case FocusOut:
		ie.Type = EventFocusOut
	case GeometryChanged:
		ie.Type, ie.Bounds = EventGeometryChanged, m.Bounds
	default:
		return
	}
	cx.store.EmitEvent(ie)
}
