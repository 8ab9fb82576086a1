package canopy

import (
	"fmt"
	"slices"
)

// Mutation is a command applied to a store's data node. Apply receives a
// pointer to the node and reports whether it accepted the node's type.
type Mutation interface {
	Apply(node any) bool
}

type mutation[T any] func(*T)

func (m mutation[T]) Apply(node any) bool {
	p, ok := node.(*T)
	if !ok {
		return false
	}
	m(p)
	return true
}

// Mutate returns a Mutation that runs fn on a *T node and skips nodes of
// any other type.
func Mutate[T any](fn func(*T)) Mutation { return mutation[T](fn) }

// Update routes a mutation to a store. A Null Target is delivered to the
// nearest store on the Origin's ancestor chain (Origin included) whose
// node accepts the mutation.
type Update struct {
	Origin   Entity
	Target   Entity
	Mutation Mutation
}

// storeNode is the type-erased view of a Store held by the Context.
type storeNode interface {
	apply(m Mutation) bool
	notify()
	unbind(widget Entity)
}

// Store owns one data node for an entity and the display bindings of
// widgets inside the entity's subtree.
type Store[T any] struct {
	cx       *Context
	owner    Entity
	data     T
	bindings []storeBinding[T]
	changed  bool
}

type storeBinding[T any] struct {
	widget Entity
	update func(cx *Context, data *T)
}

// NewStore attaches data to owner. An earlier store of owner and its
// bindings are replaced.
func NewStore[T any](cx *Context, owner Entity, data T) (*Store[T], error) {
	if !cx.tree.Contains(owner) {
		return nil, ErrStaleEntity
	}
	s := &Store[T]{cx: cx, owner: owner, data: data}
	cx.stores.Insert(owner, s)
	return s, nil
}

// Owner returns the entity the store belongs to.
func (s *Store[T]) Owner() Entity { return s.owner }

// Get returns a copy of the data node.
func (s *Store[T]) Get() T { return s.data }

// Post queues a mutation of this store's node.
func (s *Store[T]) Post(fn func(*T)) {
	s.cx.PostUpdate(Update{Origin: s.owner, Target: s.owner, Mutation: Mutate(fn)})
}

// Len returns the number of live bindings.
func (s *Store[T]) Len() int { return len(s.bindings) }

func (s *Store[T]) apply(m Mutation) bool {
	if !m.Apply(&s.data) {
		return false
	}
	if !s.changed {
		s.changed = true
		s.cx.changed = append(s.cx.changed, s)
	}
	return true
}

func (s *Store[T]) notify() {
	if !s.changed {
		return
	}
	s.changed = false
	for _, b := range slices.Clone(s.bindings) {
		if s.cx.tree.Contains(b.widget) {
			b.update(s.cx, &s.data)
		}
	}
}

func (s *Store[T]) unbind(widget Entity) {
	s.bindings = slices.DeleteFunc(s.bindings, func(b storeBinding[T]) bool { return b.widget == widget })
}

func (s *Store[T]) bind(widget Entity, update func(cx *Context, data *T)) error {
	cx := s.cx
	if cur, ok := cx.stores.Get(s.owner); !ok || cur != storeNode(s) {
		return ErrStaleEntity
	}
	if !cx.tree.Contains(widget) {
		return ErrStaleEntity
	}
	if widget != s.owner && !cx.tree.IsAncestor(s.owner, widget) {
		return fmt.Errorf("bind %v to store of %v: %w", widget, s.owner, ErrNotDescendant)
	}
	s.bindings = append(s.bindings, storeBinding[T]{widget: widget, update: update})
	bound, _ := cx.bound.Get(widget)
	if !slices.Contains(bound, storeNode(s)) {
		cx.bound.Insert(widget, append(slices.Clip(bound), storeNode(s)))
	}
	update(cx, &s.data)
	return nil
}

// Bind registers a display hook for widget. fn runs once immediately and
// again after every flush that changed the store. The widget must be the
// store's owner or one of its descendants.
func Bind[T, V any](s *Store[T], widget Entity, lens Lens[T, V], fn func(cx *Context, widget Entity, value V)) error {
	return s.bind(widget, func(cx *Context, data *T) {
		fn(cx, widget, lens.View(*data))
	})
}

// BindValue is Bind for comparable projections: fn is skipped when the
// projected value did not change since the last call.
func BindValue[T any, V comparable](s *Store[T], widget Entity, lens Lens[T, V], fn func(cx *Context, widget Entity, value V)) error {
	var last V
	seen := false
	return s.bind(widget, func(cx *Context, data *T) {
		v := lens.View(*data)
		if seen && v == last {
			return
		}
		last, seen = v, true
		fn(cx, widget, v)
	})
}

// PostUpdate queues u for the next flush.
func (cx *Context) PostUpdate(u Update) {
	if u.Mutation == nil {
		return
	}
	cx.updates = append(cx.updates, u)
}

// FlushUpdates applies every queued update in FIFO order, then notifies
// each changed store's bindings once. Updates posted by display hooks wait
// for the next flush. It returns the number of updates applied.
func (cx *Context) FlushUpdates() int {
	pending := cx.updates
	cx.updates = nil
	applied := 0
	for _, u := range pending {
		if cx.route(u) {
			applied++
		} else {
			cx.debugLog("update from %v to %v dropped: no store accepts %T", u.Origin, u.Target, u.Mutation)
		}
	}
	changed := cx.changed
	cx.changed = nil
	for _, s := range changed {
		s.notify()
	}
	cx.stats.updates += applied
	return applied
}

func (cx *Context) route(u Update) bool {
	if !u.Target.IsNull() {
		s, ok := cx.stores.Get(u.Target)
		return ok && s.apply(u.Mutation)
	}
	for n, ok := u.Origin, cx.tree.Contains(u.Origin); ok; n, ok = cx.tree.Parent(n) {
		if s, found := cx.stores.Get(n); found && s.apply(u.Mutation) {
			return true
		}
	}
	return false
}

// forgetBindings drops the store owned by e and every binding of e.
func (cx *Context) forgetBindings(e Entity) {
	cx.stores.Remove(e)
	if bound, ok := cx.bound.Remove(e); ok {
		for _, s := range bound {
			s.unbind(e)
		}
	}
}
