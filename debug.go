package canopy

import (
	"fmt"
	"os"
	"time"
)

// CycleStats holds the timing and work counters of one Update cycle.
type CycleStats struct {
	Cycle uint64

	BindingTime   time.Duration // both binding flushes
	EventTime     time.Duration
	StyleTime     time.Duration
	AnimationTime time.Duration
	LayoutTime    time.Duration

	Events    int  // events delivered, synchronous dispatches included
	Updates   int  // binding updates applied
	Resolved  int  // entities re-resolved by the cascade
	Animating int  // property tracks still running after the tick
	LaidOut   int  // entities positioned by layout
	Geometry  int  // entities whose bounds changed
	Deferred  int  // events left queued by the per-cycle limit
	Entities  int  // live entities, Root included
	Injected  bool // an injected input was consumed

	TotalTime time.Duration
}

// Observer receives the stats of every cycle. See the metrics package for
// a Prometheus implementation.
type Observer interface {
	ObserveCycle(stats CycleStats)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(stats CycleStats)

// ObserveCycle calls f(stats).
func (f ObserverFunc) ObserveCycle(stats CycleStats) { f(stats) }

// cycleCounters accumulate between cycle boundaries.
type cycleCounters struct {
	events  int
	updates int
}

// debugLog prints a warning to stderr when debug mode is on.
func (cx *Context) debugLog(format string, args ...any) {
	if !cx.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr, "[canopy] "+format+"\n", args...)
}

// debugCycle prints timing and work stats to stderr.
func (cx *Context) debugCycle(stats CycleStats) {
	if !cx.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[canopy] cycle %d | bindings: %v | events: %v | style: %v | animation: %v | layout: %v | total: %v\n",
		stats.Cycle, stats.BindingTime, stats.EventTime, stats.StyleTime, stats.AnimationTime, stats.LayoutTime, stats.TotalTime)
	_, _ = fmt.Fprintf(os.Stderr,
		"[canopy] events: %d | updates: %d | resolved: %d | animating: %d | laid out: %d | geometry: %d\n",
		stats.Events, stats.Updates, stats.Resolved, stats.Animating, stats.LaidOut, stats.Geometry)
}

// debugCheckTreeDepth warns on stderr if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func (cx *Context) debugCheckTreeDepth(e Entity) {
	if !cx.debug {
		return
	}
	if depth := cx.tree.Depth(e); depth > debugMaxTreeDepth {
		cx.debugLog("warning: tree depth %d exceeds %d (entity %v)", depth, debugMaxTreeDepth, e)
	}
}

// debugCheckChildCount warns on stderr if an entity has more than 1000 children.
const debugMaxChildCount = 1000

func (cx *Context) debugCheckChildCount(e Entity) {
	if !cx.debug {
		return
	}
	if n := cx.tree.NumChildren(e); n > debugMaxChildCount {
		cx.debugLog("warning: entity %v has %d children (threshold %d)", e, n, debugMaxChildCount)
	}
}
