package canopy

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTracerName       = "github.com/phanxgames/canopy"
	defaultKeyframeDuration = time.Second
)

// Context is the top-level object that owns the entity tree, the style,
// animation and layout engines, the event queue, input state and the data
// binding stores. A Context is not safe for concurrent use.
type Context struct {
	config Config
	alloc  *EntityAllocator
	tree   *Tree
	style  *StyleStore
	anim   *AnimationEngine
	layout *LayoutEngine

	// Events
	handlers  handlerRegistry
	queue     []*Event
	queueHead int
	input     inputState
	inject    []syntheticInput
	script    *ScriptRunner
	store     EntityStore

	// Bindings
	stores  Storage[storeNode]
	bound   Storage[[]storeNode]
	updates []Update
	changed []storeNode

	// Diagnostics
	debug    bool
	tracer   trace.Tracer
	observer Observer
	cycle    uint64
	stats    cycleCounters
	last     CycleStats
}

// Option configures a Context created by New.
type Option func(*Context)

// WithConfig replaces the configuration. Options after it still apply.
func WithConfig(cfg Config) Option {
	return func(cx *Context) { cx.config = cfg }
}

// WithViewport sets the initial window size.
func WithViewport(width, height float64) Option {
	return func(cx *Context) { cx.config.Viewport = ViewportConfig{Width: width, Height: height} }
}

// WithDebug enables debug logging to stderr.
func WithDebug(on bool) Option {
	return func(cx *Context) { cx.config.Debug = on }
}

// WithTracer sets the tracer used for cycle spans. By default the tracer
// named by Config.TracerName is taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(cx *Context) { cx.tracer = t }
}

// WithObserver receives the stats of every cycle.
func WithObserver(o Observer) Option {
	return func(cx *Context) { cx.observer = o }
}

// WithEntityStore forwards built-in events to an ECS.
func WithEntityStore(s EntityStore) Option {
	return func(cx *Context) { cx.store = s }
}

// New creates a Context whose tree holds only Root.
func New(opts ...Option) *Context {
	tree := NewTree()
	style := NewStyleStore(tree)
	cx := &Context{
		config: DefaultConfig(),
		alloc:  NewEntityAllocator(),
		tree:   tree,
		style:  style,
		anim:   NewAnimationEngine(style),
		layout: NewLayoutEngine(tree, style),
	}
	for _, opt := range opts {
		opt(cx)
	}
	style.onLayout = cx.layout.MarkDirty
	style.warn = cx.debugLog
	cx.debug = cx.config.Debug
	if cx.tracer == nil {
		name := cx.config.TracerName
		if name == "" {
			name = defaultTracerName
		}
		cx.tracer = otel.Tracer(name)
	}
	cx.layout.SetViewport(cx.config.Viewport.Width, cx.config.Viewport.Height)
	style.MarkDirty(Root)
	return cx
}

// NewFromConfig validates cfg, creates a Context and loads the configured
// stylesheets in order.
func NewFromConfig(cfg Config, opts ...Option) (*Context, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cx := New(append([]Option{WithConfig(cfg)}, opts...)...)
	for _, path := range cfg.StyleSheets {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("canopy: load stylesheet: %w", err)
		}
		if _, err := cx.AddStyleSheet(string(data)); err != nil {
			return nil, fmt.Errorf("canopy: stylesheet %s: %w", path, err)
		}
	}
	return cx, nil
}

// SetDebugMode enables or disables debug logging.
func (cx *Context) SetDebugMode(on bool) { cx.debug = on }

// Config returns the configuration the Context was created with.
func (cx *Context) Config() Config { return cx.config }

// Tree returns the entity tree. Structural changes should go through the
// Context so the engines see them.
func (cx *Context) Tree() *Tree { return cx.tree }

// Style returns the style store.
func (cx *Context) Style() *StyleStore { return cx.style }

// Animations returns the animation engine.
func (cx *Context) Animations() *AnimationEngine { return cx.anim }

// Layout returns the layout engine.
func (cx *Context) Layout() *LayoutEngine { return cx.layout }

// --- Structure ---

// AddChild creates an entity as the last child of parent.
func (cx *Context) AddChild(parent Entity) (Entity, error) {
	if !cx.tree.Contains(parent) {
		return Null, fmt.Errorf("add child of %v: %w", parent, ErrStaleEntity)
	}
	e := cx.alloc.Create()
	if err := cx.tree.Add(e, parent); err != nil {
		cx.alloc.Destroy(e)
		return Null, err
	}
	cx.style.MarkDirty(e)
	cx.layout.MarkDirty(parent)
	cx.layout.MarkDirty(e)
	cx.debugCheckTreeDepth(e)
	cx.debugCheckChildCount(parent)
	return e, nil
}

// Reparent moves e with its subtree to the end of newParent's children.
func (cx *Context) Reparent(e, newParent Entity) error {
	old, _ := cx.tree.Parent(e)
	if err := cx.tree.Reparent(e, newParent); err != nil {
		return err
	}
	cx.style.markBranchDirty(e)
	cx.layout.MarkDirty(old)
	cx.layout.MarkDirty(newParent)
	cx.debugCheckTreeDepth(e)
	cx.debugCheckChildCount(newParent)
	return nil
}

// SetChildIndex moves e to a new position among its siblings.
func (cx *Context) SetChildIndex(e Entity, index int) error {
	if err := cx.tree.SetChildIndex(e, index); err != nil {
		return err
	}
	if p, ok := cx.tree.Parent(e); ok {
		cx.layout.MarkDirty(p)
	}
	return nil
}

// Remove destroys e and its subtree. Every component, handler, binding and
// animation of the removed entities is dropped and their handles go stale.
// Removing an entity that is already gone does nothing.
func (cx *Context) Remove(e Entity) error {
	if e == Root {
		return ErrRootRemoval
	}
	parent, ok := cx.tree.Parent(e)
	if !ok {
		return nil
	}
	cx.dropHover(e)
	for _, n := range cx.tree.Remove(e) {
		cx.style.Remove(n)
		cx.layout.Remove(n)
		cx.handlers.entity.Remove(n)
		cx.forgetInput(n)
		cx.forgetBindings(n)
		cx.alloc.Destroy(n)
	}
	cx.layout.MarkDirty(parent)
	return nil
}

// Alive reports whether e is a live entity of this Context.
func (cx *Context) Alive(e Entity) bool { return cx.tree.Contains(e) }

// Len returns the number of live entities, Root included.
func (cx *Context) Len() int { return cx.tree.Len() }

// Bounds returns the computed bounds of e.
func (cx *Context) Bounds(e Entity) (Bounds, bool) { return cx.layout.Bounds(e) }

// SetViewport resizes the window. The next cycle lays out the whole tree
// and delivers WindowResize to Root.
func (cx *Context) SetViewport(width, height float64) {
	if vp := cx.layout.Viewport(); vp.W == width && vp.H == height {
		return
	}
	cx.layout.SetViewport(width, height)
	cx.Emit(NewEvent(WindowResize{Width: width, Height: height}).To(Root).Direct())
}

// AddStyleSheet parses text, appends its rules to the cascade and
// registers each @keyframes block as a named animation.
func (cx *Context) AddStyleSheet(text string) (*StyleSheet, error) {
	sheet, err := cx.style.AddStyleSheet(text)
	if err != nil {
		return nil, err
	}
	for _, name := range slices.Sorted(maps.Keys(sheet.Keyframes)) {
		cx.anim.Add(AnimationDef{
			Name:      name,
			Duration:  time.Duration(cx.config.KeyframeDuration),
			Keyframes: sheet.Keyframes[name],
		})
	}
	return sheet, nil
}

// PlayAnimation starts the named animation on e.
func (cx *Context) PlayAnimation(e Entity, name string) bool {
	id, ok := cx.anim.Lookup(name)
	return ok && cx.anim.Play(e, id)
}

// --- Processing cycle ---

// Update runs one processing cycle advancing animations by dt.
func (cx *Context) Update(dt time.Duration) CycleStats {
	return cx.UpdateContext(context.Background(), dt)
}

// UpdateContext runs one processing cycle: binding flush, event dispatch,
// a second binding flush, cascade, animation, layout. Geometry changes are
// queued as GeometryChanged events for the next cycle.
func (cx *Context) UpdateContext(ctx context.Context, dt time.Duration) CycleStats {
	cx.cycle++
	ctx, span := cx.tracer.Start(ctx, "canopy.Update",
		trace.WithAttributes(attribute.Int64("canopy.cycle", int64(cx.cycle))))
	defer span.End()

	start := time.Now()
	stats := CycleStats{Cycle: cx.cycle}
	if cx.script != nil {
		cx.script.step(cx)
	}
	stats.Injected = cx.processInjectedInput()

	stats.BindingTime += cx.phase(ctx, "bindings", func() { cx.FlushUpdates() })
	stats.EventTime = cx.phase(ctx, "events", func() {
		cx.processEvents(cx.config.MaxEventsPerCycle)
		stats.Deferred = cx.Pending()
	})
	stats.BindingTime += cx.phase(ctx, "bindings", func() { cx.FlushUpdates() })
	stats.StyleTime = cx.phase(ctx, "style", func() { stats.Resolved = cx.style.Resolve() })
	stats.AnimationTime = cx.phase(ctx, "animation", func() { stats.Animating = cx.anim.Tick(dt) })
	stats.LayoutTime = cx.phase(ctx, "layout", func() {
		changes := cx.layout.Run()
		for _, c := range changes {
			b, _ := cx.layout.Bounds(c.Entity)
			cx.Emit(NewEvent(GeometryChanged{Flags: c.Flags, Bounds: b}).To(c.Entity).Direct())
		}
		stats.LaidOut = cx.layout.Visited()
		stats.Geometry = len(changes)
	})

	stats.Events = cx.stats.events
	stats.Updates = cx.stats.updates
	stats.Entities = cx.tree.Len()
	stats.TotalTime = time.Since(start)
	cx.stats = cycleCounters{}
	cx.last = stats

	span.SetAttributes(
		attribute.Int("canopy.events", stats.Events),
		attribute.Int("canopy.updates", stats.Updates),
		attribute.Int("canopy.resolved", stats.Resolved),
		attribute.Int("canopy.laid_out", stats.LaidOut),
		attribute.Int("canopy.entities", stats.Entities),
	)
	if stats.Deferred > 0 {
		span.AddEvent("event limit reached", trace.WithAttributes(attribute.Int("canopy.deferred", stats.Deferred)))
	}
	if cx.observer != nil {
		cx.observer.ObserveCycle(stats)
	}
	cx.debugCycle(stats)
	return stats
}

// LastStats returns the stats of the most recent cycle.
func (cx *Context) LastStats() CycleStats { return cx.last }

func (cx *Context) phase(ctx context.Context, name string, fn func()) time.Duration {
	_, span := cx.tracer.Start(ctx, "canopy."+name)
	start := time.Now()
	fn()
	span.End()
	return time.Since(start)
}
