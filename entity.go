package canopy

import "fmt"

// Entity identifies a node in the UI tree. It pairs a dense index with a
// generation counter; a handle whose generation no longer matches the
// allocator's is stale and treated as absent everywhere.
//
// The zero value is [Null].
type Entity struct {
	index      uint32
	generation uint32
}

var (
	// Null is the "no entity" sentinel.
	Null = Entity{}
	// Root is the entity at the top of every tree. It always exists.
	Root = Entity{index: 0, generation: 1}
)

// Index returns the dense index of the entity.
func (e Entity) Index() uint32 { return e.index }

// Generation returns the generation counter of the entity.
func (e Entity) Generation() uint32 { return e.generation }

// IsNull reports whether e is the Null sentinel.
func (e Entity) IsNull() bool { return e.generation == 0 }

func (e Entity) String() string {
	if e.IsNull() {
		return "null"
	}
	if e == Root {
		return "root"
	}
	return fmt.Sprintf("%d:%d", e.index, e.generation)
}

// EntityAllocator issues entity identifiers and recycles freed indices with
// a bumped generation.
type EntityAllocator struct {
	generations []uint32
	alive       []bool
	free        []uint32
	count       int
}

// NewEntityAllocator returns an allocator with Root already allocated.
func NewEntityAllocator() *EntityAllocator {
	return &EntityAllocator{
		generations: []uint32{Root.generation},
		alive:       []bool{true},
		count:       1,
	}
}

// Create returns a fresh live entity.
func (a *EntityAllocator) Create() Entity {
	a.count++
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.alive[idx] = true
		return Entity{index: idx, generation: a.generations[idx]}
	}
	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	a.alive = append(a.alive, true)
	return Entity{index: idx, generation: 1}
}

// Destroy frees e. It returns false for stale entities and for Root.
func (a *EntityAllocator) Destroy(e Entity) bool {
	if e == Root || !a.Alive(e) {
		return false
	}
	a.alive[e.index] = false
	a.generations[e.index]++
	if a.generations[e.index] == 0 {
		a.generations[e.index] = 1
	}
	a.free = append(a.free, e.index)
	a.count--
	return true
}

// Alive reports whether e refers to a live entity.
func (a *EntityAllocator) Alive(e Entity) bool {
	if e.IsNull() || int(e.index) >= len(a.generations) {
		return false
	}
	return a.alive[e.index] && a.generations[e.index] == e.generation
}

// Len returns the number of live entities, Root included.
func (a *EntityAllocator) Len() int { return a.count }
