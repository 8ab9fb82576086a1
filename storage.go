package canopy

import "iter"

// Storage is a per-component value table keyed by entity. Values are packed
// densely for iteration while a sparse index table maps entity indices to
// slots. Lookups compare the full handle stored with the slot, so stale
// entities read as absent.
//
// The zero value is an empty, ready-to-use Storage.
type Storage[T any] struct {
	sparse []uint32 // entity index -> slot+1, 0 when absent
	owners []Entity
	data   []T
}

func (s *Storage[T]) slot(e Entity) (int, bool) {
	if e.IsNull() || int(e.index) >= len(s.sparse) {
		return 0, false
	}
	i := int(s.sparse[e.index]) - 1
	if i < 0 || i >= len(s.data) || s.owners[i] != e {
		return 0, false
	}
	return i, true
}

// Get returns the value stored for e.
func (s *Storage[T]) Get(e Entity) (T, bool) {
	if i, ok := s.slot(e); ok {
		return s.data[i], true
	}
	var zero T
	return zero, false
}

// GetMut returns a pointer to the value stored for e, or nil. The pointer is
// valid until the next Insert or Remove on this storage.
func (s *Storage[T]) GetMut(e Entity) *T {
	if i, ok := s.slot(e); ok {
		return &s.data[i]
	}
	return nil
}

// Contains reports whether a value is stored for e.
func (s *Storage[T]) Contains(e Entity) bool {
	_, ok := s.slot(e)
	return ok
}

// Insert stores v for e, replacing any previous value. A slot still owned by
// an older generation of the same index is taken over in place.
func (s *Storage[T]) Insert(e Entity, v T) {
	if e.IsNull() {
		return
	}
	for int(e.index) >= len(s.sparse) {
		s.sparse = append(s.sparse, 0)
	}
	i := int(s.sparse[e.index]) - 1
	if i >= 0 && i < len(s.data) && s.owners[i].index == e.index {
		s.owners[i] = e
		s.data[i] = v
		return
	}
	s.owners = append(s.owners, e)
	s.data = append(s.data, v)
	s.sparse[e.index] = uint32(len(s.data))
}

// Remove deletes the value stored for e and returns it. The last slot is
// moved into the hole so other entities keep valid entries.
func (s *Storage[T]) Remove(e Entity) (T, bool) {
	var zero T
	i, ok := s.slot(e)
	if !ok {
		return zero, false
	}
	v := s.data[i]
	last := len(s.data) - 1
	if i != last {
		s.data[i] = s.data[last]
		s.owners[i] = s.owners[last]
		s.sparse[s.owners[i].index] = uint32(i + 1)
	}
	s.data[last] = zero
	s.owners[last] = Null
	s.data = s.data[:last]
	s.owners = s.owners[:last]
	s.sparse[e.index] = 0
	return v, true
}

// Len returns the number of stored values.
func (s *Storage[T]) Len() int { return len(s.data) }

// All iterates over stored entries in dense order. The storage must not be
// modified during iteration.
func (s *Storage[T]) All() iter.Seq2[Entity, T] {
	return func(yield func(Entity, T) bool) {
		for i := range s.data {
			if !yield(s.owners[i], s.data[i]) {
				return
			}
		}
	}
}

// Entities returns a copy of the owning entities in dense order.
func (s *Storage[T]) Entities() []Entity {
	out := make([]Entity, len(s.owners))
	copy(out, s.owners)
	return out
}

// Clear removes every value.
func (s *Storage[T]) Clear() {
	clear(s.sparse)
	clear(s.data)
	s.data = s.data[:0]
	s.owners = s.owners[:0]
}
