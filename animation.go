package canopy

import (
	"time"

	"github.com/tanema/gween/ease"
)

// AnimationID identifies an animation definition registered with an
// AnimationEngine. Definitions are independent of entities and can be
// played on any number of them.
type AnimationID uint32

// transitionAnimation marks property animations started by transitions.
const transitionAnimation AnimationID = 0

// Keyframe is the set of property values at progress Time in [0, 1].
type Keyframe struct {
	Time   float64
	Values []Declaration
}

// AnimationDef describes a keyframe animation. A nil Easing is linear.
type AnimationDef struct {
	Name      string
	Duration  time.Duration
	Delay     time.Duration
	Easing    ease.TweenFunc
	Keyframes []Keyframe
}

// AnimationEngine owns animation definitions and advances every running
// animation and transition. Values are written to the animated layer of
// the style properties; when an animation finishes the layer is cleared
// and the cascade result shows again.
type AnimationEngine struct {
	style *StyleStore
	defs  []AnimationDef
	names map[string]AnimationID
}

// NewAnimationEngine creates an engine writing into style.
func NewAnimationEngine(style *StyleStore) *AnimationEngine {
	return &AnimationEngine{style: style, names: map[string]AnimationID{}}
}

// Add registers def and returns its id. A named definition replaces the
// lookup entry of an earlier one with the same name.
func (a *AnimationEngine) Add(def AnimationDef) AnimationID {
	a.defs = append(a.defs, def)
	id := AnimationID(len(a.defs))
	if def.Name != "" {
		a.names[def.Name] = id
	}
	return id
}

// Lookup returns the id of the most recent definition with the given name.
func (a *AnimationEngine) Lookup(name string) (AnimationID, bool) {
	id, ok := a.names[name]
	return id, ok
}

// Def returns a pointer to the definition of id, or nil. Edits apply to
// later Play calls.
func (a *AnimationEngine) Def(id AnimationID) *AnimationDef {
	if id == transitionAnimation || int(id) > len(a.defs) {
		return nil
	}
	return &a.defs[id-1]
}

// Play starts every property track of animation id on e. A running
// animation or transition of the same property is pre-empted and the new
// one starts from the displayed value. It reports whether any track
// started.
func (a *AnimationEngine) Play(e Entity, id AnimationID) bool {
	def := a.Def(id)
	if def == nil || !a.style.tree.Contains(e) {
		return false
	}
	started := false
	for _, t := range a.style.tables {
		if t.play(e, id, def) {
			started = true
			if t.affectsLayout() && a.style.onLayout != nil {
				a.style.onLayout(e)
			}
		}
	}
	return started
}

// Stop cancels animation id on e. The cascade value shows again.
func (a *AnimationEngine) Stop(e Entity, id AnimationID) {
	for _, t := range a.style.tables {
		if t.stop(e, id) && t.affectsLayout() && a.style.onLayout != nil {
			a.style.onLayout(e)
		}
	}
}

// IsPlaying reports whether any track of animation id runs on e.
func (a *AnimationEngine) IsPlaying(e Entity, id AnimationID) bool {
	for _, t := range a.style.tables {
		if t.playing(e, id) {
			return true
		}
	}
	return false
}

// IsTransitioning reports whether a transition runs on property id of e.
func (a *AnimationEngine) IsTransitioning(e Entity, id PropertyID) bool {
	t := a.style.table(id)
	return t != nil && t.playing(e, transitionAnimation)
}

// Tick advances every running animation and transition by dt and returns
// how many property tracks are still running.
func (a *AnimationEngine) Tick(dt time.Duration) int {
	step := float32(dt.Seconds())
	noop := func(Entity) {}
	running := 0
	for _, t := range a.style.tables {
		changed := noop
		if t.affectsLayout() && a.style.onLayout != nil {
			changed = a.style.onLayout
		}
		running += t.tick(step, changed)
	}
	return running
}
