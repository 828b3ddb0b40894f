// Package octree implements a pair of dynamic octrees for indexing objects
// in 3D space: a point octree, where each object lives at a single position,
// and a loose bounds octree, where each object occupies an axis-aligned box
// and node bounds are inflated so small objects near octant boundaries do
// not end up in disproportionately large nodes. Both trees grow their root
// when an insertion lands outside it and shrink it back when removals leave
// the tree sparse.
//
// Neither tree is safe for concurrent mutation; callers serialize access.
package octree

import (
	"github.com/golang/geo/r3"
)

const (
	// numObjectsAllowed is how many objects a node holds before it splits.
	// The limit is waived when splitting would create nodes smaller than the
	// tree's minimum node size.
	numObjectsAllowed = 8

	// maxGrowAttempts bounds how many times a single insertion may double
	// the root. An object still not encapsulated after this many doublings
	// has a degenerate position (NaN or infinite coordinates) and is
	// dropped.
	maxGrowAttempts = 20
)

// childOffset returns the center offset of octant i for a node whose quarter
// side length is q. Octant indices follow bestFitChild: bit 1 set means +x,
// bit 2 set means +z, bit 4 set means -y.
func childOffset(i int, q float64) r3.Vector {
	v := r3.Vector{X: -q, Y: q, Z: -q}
	if i&1 != 0 {
		v.X = q
	}
	if i&2 != 0 {
		v.Z = q
	}
	if i&4 != 0 {
		v.Y = -q
	}
	return v
}

// growDirection maps a heading vector to the per-axis signs a growing root
// shifts its center by.
func growDirection(direction r3.Vector) (x, y, z float64) {
	x, y, z = -1, -1, -1
	if direction.X >= 0 {
		x = 1
	}
	if direction.Y >= 0 {
		y = 1
	}
	if direction.Z >= 0 {
		z = 1
	}
	return x, y, z
}

// siblingDirection enumerates the positions of the seven fresh nodes placed
// around an old root during growth. It indexes positions around the new
// center rather than points, so it is a separate encoding from bestFitChild;
// the two agree on which octant the old root occupies.
func siblingDirection(i int) (x, y, z float64) {
	x, y, z = -1, -1, -1
	if i%2 != 0 {
		x = 1
	}
	if i <= 3 {
		y = 1
	}
	if !(i < 2 || (i > 3 && i < 6)) {
		z = 1
	}
	return x, y, z
}

// bestFitOctant returns the octant index of pos relative to a node centered
// at center. Points on a dividing plane go to the low side on x and z and to
// the high side on y.
func bestFitOctant(center, pos r3.Vector) int {
	idx := 0
	if pos.X > center.X {
		idx++
	}
	if pos.Z > center.Z {
		idx += 2
	}
	if pos.Y < center.Y {
		idx += 4
	}
	return idx
}
