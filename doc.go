// Package canopy is a retained-mode UI state and layout engine.
//
// Canopy keeps a persistent tree of entities, resolves their visual
// properties from cascading style rules, computes flex and grid layout,
// animates property values over time, and dispatches input and window
// events through the tree with capture and bubble phases. A lens-based
// binding layer connects application data to the entities that display it.
//
// Canopy does not draw. The ebitenhost package hosts a Context in an
// Ebitengine window with a debug painter; any renderer can read the
// resolved style and geometry the same way.
//
// # Quick start
//
//	cx := canopy.New(canopy.WithViewport(640, 480))
//	cx.AddStyleSheet(`
//		button { width: 120px; height: 40px; background-color: #3c6e9e; }
//		button:hover { background-color: #4f86bb; }
//	`)
//	ok := cx.Entity(canopy.Root).Add().Element("button").ID("ok").Focusable(true)
//	canopy.On(cx, ok.Entity(), func(cx *canopy.Context, ev *canopy.Event, p canopy.Press) {
//		log.Println("pressed at", p.X, p.Y)
//	})
//
//	for {
//		cx.PointerMove(x, y) // feed input...
//		cx.Update(dt)        // ...then run one cycle
//		b, _ := cx.Bounds(ok.Entity())
//	}
//
// # Entities and the tree
//
// An [Entity] is an index plus a generation. Removing an entity removes its
// subtree and every storage entry, handler, binding and animation owned by
// it; handles kept by callers go stale and are treated as absent.
// [Context.AddChild], [Context.Reparent] and [Context.SetChildIndex] return
// [ErrStaleEntity], [ErrCycle] or [ErrRootRemoval] instead of mutating;
// [Context.Remove] of an entity that is already gone does nothing.
//
// [Context.Entity] returns a [Handle], a chainable per-entity view for
// building trees and setting inline style:
//
//	panel := cx.Entity(canopy.Root).Add().Class("panel").
//		LayoutType(canopy.LayoutRow).
//		ChildSpace(canopy.Pixels(8))
//
// # Styles
//
// Every property is a typed table on the [StyleStore] ([StyleStore.Width],
// [StyleStore.BackgroundColor], ...). A property resolves, in order, from
// the running animation or transition, the inline value, the matching rule
// with the highest specificity (later rules win ties), and the default.
// Stylesheets are parsed with douceur; @keyframes blocks register named
// animations playable with [Context.PlayAnimation].
//
// # Layout
//
// Lengths are [Units]: pixels, percentages of the parent, stretch factors
// sharing free space, or auto. Containers lay children out in a row, a
// column or a grid; self-directed children are placed against the parent
// box outside the flow. [GeometryChanged] is delivered to an entity in the
// cycle after its bounds change.
//
// # Events
//
// Any value can be an event payload. [Context.Emit] queues an [Event] for
// the next cycle; [Context.Dispatch] delivers it at once. Events bubble
// from the target to the root by default, or travel down from the root with
// [Event.Capture], or reach only the target with [Event.Direct]. Handlers
// registered with [On] receive one payload type; [Event.Consume] stops
// propagation. Built-in input events ([MouseDown], [Press], [KeyDown], ...)
// come from [Context.PointerMove], [Context.PointerDown] and friends, or
// from the synthetic input queue ([Context.InjectClick], ...).
//
// # Bindings
//
// A [Store] owns application data at an entity. [Bind] and [BindValue]
// attach a widget through a [Lens]; when posted mutations change the data,
// bound widgets are called back during [Context.FlushUpdates], which
// Update runs around event dispatch.
//
// # Processing cycle
//
// [Context.Update] runs: injected input, binding flush, event dispatch,
// binding flush, style resolution, animation tick, layout. Each phase is an
// OpenTelemetry span; [CycleStats] are returned and passed to the
// [Observer] (see the metrics package for Prometheus).
//
// # Test scripts
//
// [LoadScript] reads a JSON list of input and expectation steps that drive
// a Context through the synthetic input queue, one input per cycle:
//
//	{"steps": [
//		{"action": "click", "x": 60, "y": 20},
//		{"action": "expect", "id": "ok", "focused": true, "width": 120}
//	]}
//
// # Debug mode
//
// [WithDebug] or [Context.SetDebugMode] print per-cycle stats and warnings
// (deep trees, dropped events, unknown style properties) to stderr.
package canopy
