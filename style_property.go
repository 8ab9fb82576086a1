package canopy

import (
	"slices"
	"sort"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Property is the per-entity value table of one style property. Each entity
// has up to three layers: inline (set by code), resolved (cascade result
// with the inline layer on top) and animated (written by running
// animations and transitions). Get answers animated, then resolved, then
// the property default.
type Property[T any] struct {
	id     PropertyID
	def    T
	lerp   Interpolator[T]
	equal  func(a, b T) bool
	layout bool
	store  *StyleStore

	inline   Storage[T]
	resolved Storage[T]
	animated Storage[T]
	running  Storage[*propAnimation[T]]
}

type keyframe[T any] struct {
	t float64
	v T
}

type propAnimation[T any] struct {
	id     AnimationID
	frames []keyframe[T]
	delay  float32
	clock  *gween.Tween
}

func newProperty[T comparable](s *StyleStore, id PropertyID, def T, lerp Interpolator[T]) *Property[T] {
	return newPropertyFunc(s, id, def, lerp, func(a, b T) bool { return a == b })
}

func newPropertyFunc[T any](s *StyleStore, id PropertyID, def T, lerp Interpolator[T], equal func(a, b T) bool) *Property[T] {
	if lerp == nil {
		lerp = Step[T]
	}
	p := &Property[T]{id: id, def: def, lerp: lerp, equal: equal, store: s}
	s.tables[id] = p
	return p
}

func newSliceProperty[E comparable](s *StyleStore, id PropertyID) *Property[[]E] {
	return newPropertyFunc[[]E](s, id, nil, nil, slices.Equal[[]E])
}

// ID returns the property identifier.
func (p *Property[T]) ID() PropertyID { return p.id }

// Default returns the value used when nothing sets the property.
func (p *Property[T]) Default() T { return p.def }

// Get returns the displayed value of the property for e.
func (p *Property[T]) Get(e Entity) T {
	if v, ok := p.animated.Get(e); ok {
		return v
	}
	if v, ok := p.resolved.Get(e); ok {
		return v
	}
	if v, ok := p.inline.Get(e); ok {
		return v
	}
	return p.def
}

// Resolved returns the cascade result for e, ignoring running animations.
func (p *Property[T]) Resolved(e Entity) (T, bool) { return p.resolved.Get(e) }

// Inline returns the inline value set on e.
func (p *Property[T]) Inline(e Entity) (T, bool) { return p.inline.Get(e) }

// Animated returns the value written by a running animation on e.
func (p *Property[T]) Animated(e Entity) (T, bool) { return p.animated.Get(e) }

// Set writes an inline value for e and marks it for re-resolution.
func (p *Property[T]) Set(e Entity, v T) {
	if !p.store.tree.Contains(e) {
		return
	}
	p.inline.Insert(e, v)
	p.store.MarkDirty(e)
}

// Clear removes the inline value of e.
func (p *Property[T]) Clear(e Entity) {
	if _, ok := p.inline.Remove(e); ok {
		p.store.MarkDirty(e)
	}
}

// propTable is the type-erased view of a Property used by the cascade and
// the animation engine.
type propTable interface {
	ID() PropertyID
	affectsLayout() bool
	markLayout()
	setInline(e Entity, v any) bool
	resolve(e Entity, declared any, transitions []Transition) bool
	play(e Entity, id AnimationID, def *AnimationDef) bool
	stop(e Entity, id AnimationID) bool
	playing(e Entity, id AnimationID) bool
	tick(dt float32, changed func(Entity)) int
	drop(e Entity)
}

func (p *Property[T]) affectsLayout() bool { return p.layout }

func (p *Property[T]) markLayout() { p.layout = true }

func (p *Property[T]) setInline(e Entity, v any) bool {
	tv, ok := v.(T)
	if !ok {
		return false
	}
	p.Set(e, tv)
	return true
}

// resolve stores the cascade result for e and reports whether it changed.
// A change starts a transition when the entity's transition list names the
// property.
func (p *Property[T]) resolve(e Entity, declared any, transitions []Transition) bool {
	v := p.def
	if dv, ok := declared.(T); ok {
		v = dv
	}
	if iv, ok := p.inline.Get(e); ok {
		v = iv
	}
	before, had := p.resolved.Get(e)
	if had && p.equal(before, v) {
		return false
	}
	shown := p.Get(e)
	p.resolved.Insert(e, v)
	if !had {
		return true
	}
	for _, tr := range transitions {
		if tr.Property != p.id || tr.Duration <= 0 {
			continue
		}
		fn, ok := LookupEasing(tr.Easing)
		if !ok {
			fn = ease.Linear
		}
		p.start(e, &propAnimation[T]{
			id:     transitionAnimation,
			frames: []keyframe[T]{{0, shown}, {1, v}},
			delay:  float32(tr.Delay.Seconds()),
			clock:  gween.New(0, 1, float32(tr.Duration.Seconds()), fn),
		})
		break
	}
	return true
}

func (p *Property[T]) start(e Entity, a *propAnimation[T]) {
	p.running.Insert(e, a)
	p.animated.Insert(e, a.frames[0].v)
}

func (p *Property[T]) play(e Entity, id AnimationID, def *AnimationDef) bool {
	var frames []keyframe[T]
	for _, kf := range def.Keyframes {
		for _, d := range kf.Values {
			if d.Property != p.id {
				continue
			}
			if v, ok := d.Value.(T); ok {
				frames = append(frames, keyframe[T]{t: clamp01(kf.Time), v: v})
			}
		}
	}
	if len(frames) == 0 || def.Duration <= 0 {
		return false
	}
	sort.SliceStable(frames, func(i, j int) bool { return frames[i].t < frames[j].t })
	if frames[0].t > 0 {
		frames = slices.Insert(frames, 0, keyframe[T]{0, p.Get(e)})
	}
	if last := frames[len(frames)-1]; last.t < 1 {
		frames = append(frames, keyframe[T]{1, last.v})
	}
	fn := def.Easing
	if fn == nil {
		fn = ease.Linear
	}
	p.start(e, &propAnimation[T]{
		id:     id,
		frames: frames,
		delay:  float32(def.Delay.Seconds()),
		clock:  gween.New(0, 1, float32(def.Duration.Seconds()), fn),
	})
	return true
}

func (p *Property[T]) stop(e Entity, id AnimationID) bool {
	a, ok := p.running.Get(e)
	if !ok || a.id != id {
		return false
	}
	p.running.Remove(e)
	p.animated.Remove(e)
	return true
}

func (p *Property[T]) playing(e Entity, id AnimationID) bool {
	a, ok := p.running.Get(e)
	return ok && a.id == id
}

// tick advances every running animation of the property by dt seconds and
// returns how many are still running. changed is called for each entity
// whose displayed value moved.
func (p *Property[T]) tick(dt float32, changed func(Entity)) int {
	if p.running.Len() == 0 {
		return 0
	}
	var finished []Entity
	for e, a := range p.running.All() {
		step := dt
		if a.delay > 0 {
			a.delay -= step
			if a.delay > 0 {
				continue
			}
			step = -a.delay
			a.delay = 0
		}
		t, done := a.clock.Update(step)
		if done {
			finished = append(finished, e)
			continue
		}
		p.animated.Insert(e, sample(a.frames, float64(t), p.lerp))
		changed(e)
	}
	for _, e := range finished {
		p.running.Remove(e)
		p.animated.Remove(e)
		changed(e)
	}
	return p.running.Len()
}

func (p *Property[T]) drop(e Entity) {
	p.inline.Remove(e)
	p.resolved.Remove(e)
	p.animated.Remove(e)
	p.running.Remove(e)
}

// sample evaluates a keyframe track at global progress t. The bracketing
// pair is found by binary search and blended on the local fraction.
func sample[T any](frames []keyframe[T], t float64, lerp Interpolator[T]) T {
	i := sort.Search(len(frames), func(i int) bool { return frames[i].t > t })
	switch {
	case i == 0:
		return frames[0].v
	case i == len(frames):
		return frames[len(frames)-1].v
	}
	a, b := frames[i-1], frames[i]
	span := b.t - a.t
	if span <= 0 {
		return b.v
	}
	return lerp(a.v, b.v, (t-a.t)/span)
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
