package canopy

import "errors"

// Structural errors returned before the tree is mutated.
var (
	ErrStaleEntity   = errors.New("canopy: entity is not in the tree")
	ErrAlreadyInTree = errors.New("canopy: entity is already in the tree")
	ErrCycle         = errors.New("canopy: operation would create a cycle")
	ErrRootRemoval   = errors.New("canopy: the root entity cannot be removed or moved")
	ErrIndexRange    = errors.New("canopy: child index out of range")
	ErrNotDescendant = errors.New("canopy: widget is not inside the store owner's subtree")
)
