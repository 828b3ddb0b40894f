package octree

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/dynamic-octree/spatialmath"
)

// BoundsOctree indexes objects of type T by an axis-aligned bounding box
// each. Node bounds are inflated by a looseness factor so objects slightly
// off-center can still sink a level down; objects straddling octant
// boundaries that fit no child stay at the parent. Objects are compared by
// equality and each object is assumed to be stored at most once.
type BoundsOctree[T comparable] struct {
	logger      golog.Logger
	root        *boundsOctreeNode[T]
	size        int
	initialSize float64
	looseness   float64
}

// NewBoundsOctree creates a loose bounds octree. initialWorldSize is the
// nominal side length of the starting root node and the smallest size the
// root shrinks back to; initialWorldPos is its center. minNodeSize is the
// smallest nominal side length a node may have. looseness multiplies every
// node's containment bounds and is clamped into [1.0, 2.0].
func NewBoundsOctree[T comparable](
	initialWorldSize float64,
	initialWorldPos r3.Vector,
	minNodeSize float64,
	looseness float64,
	logger golog.Logger,
) (*BoundsOctree[T], error) {
	if initialWorldSize < 0 || math.IsNaN(initialWorldSize) {
		return nil, errors.Errorf("invalid initial world size (%.2f) for octree", initialWorldSize)
	}
	if minNodeSize > initialWorldSize {
		logger.Warnf("minimum node size (%v) larger than initial world size (%v), clamping down", minNodeSize, initialWorldSize)
		minNodeSize = initialWorldSize
	}
	looseness = math.Min(math.Max(looseness, 1), 2)
	return &BoundsOctree[T]{
		logger:      logger,
		root:        newBoundsOctreeNode[T](initialWorldSize, minNodeSize, looseness, initialWorldPos),
		initialSize: initialWorldSize,
		looseness:   looseness,
	}, nil
}

// Size returns the number of objects stored in the tree.
func (o *BoundsOctree[T]) Size() int {
	return o.size
}

// Add stores obj with the given bounds, growing the tree until the bounds
// are inside the root. Bounds that cannot be reached by doubling the root
// (NaN or infinite coordinates) are dropped with an error log and no count
// change.
func (o *BoundsOctree[T]) Add(obj T, objBounds spatialmath.AABB) {
	grown := 0
	for !o.root.add(obj, objBounds) {
		if grown++; grown > maxGrowAttempts {
			o.logger.Errorf("aborted add after growing %d times, bounds %v cannot be encapsulated", maxGrowAttempts, objBounds)
			return
		}
		o.grow(objBounds.Center.Sub(o.root.center))
	}
	o.size++
}

// Remove removes obj, scanning the whole tree for it, and reports whether it
// was found.
func (o *BoundsOctree[T]) Remove(obj T) bool {
	removed := o.root.remove(obj)
	if removed {
		o.size--
		o.shrink()
	}
	return removed
}

// RemoveAt removes obj using objBounds to walk only the octants that could
// contain it, which is considerably faster than Remove. objBounds must be
// the bounds the object was added with.
func (o *BoundsOctree[T]) RemoveAt(obj T, objBounds spatialmath.AABB) bool {
	removed := o.root.removeAt(obj, objBounds)
	if removed {
		o.size--
		o.shrink()
	}
	return removed
}

// All returns every stored object in no particular order.
func (o *BoundsOctree[T]) All() []T {
	result := make([]T, 0, o.size)
	o.root.all(&result)
	return result
}

// IsColliding reports whether any stored object's bounds intersect
// checkBounds, stopping at the first hit.
func (o *BoundsOctree[T]) IsColliding(checkBounds spatialmath.AABB) bool {
	return o.root.isColliding(checkBounds)
}

// IsCollidingWithRay reports whether ray hits any stored object's bounds
// within maxDistance, stopping at the first hit.
func (o *BoundsOctree[T]) IsCollidingWithRay(ray spatialmath.Ray, maxDistance float64) bool {
	return o.root.isCollidingWithRay(ray, maxDistance)
}

// GetColliding appends to result every object whose bounds intersect
// checkBounds.
func (o *BoundsOctree[T]) GetColliding(result *[]T, checkBounds spatialmath.AABB) {
	o.root.getColliding(checkBounds, result)
}

// GetCollidingWithRay appends to result every object whose bounds are hit by
// ray within maxDistance.
func (o *BoundsOctree[T]) GetCollidingWithRay(result *[]T, ray spatialmath.Ray, maxDistance float64) {
	o.root.getCollidingWithRay(ray, maxDistance, result)
}

// GetWithinFrustum returns the objects at least partially inside frustum.
func (o *BoundsOctree[T]) GetWithinFrustum(frustum spatialmath.Frustum) []T {
	var result []T
	o.root.withinFrustum(frustum, &result)
	return result
}

// MaxBounds returns the loose bounds of the root node.
func (o *BoundsOctree[T]) MaxBounds() spatialmath.AABB {
	return o.root.bounds
}

// grow doubles the root's nominal side length, shifting the new center
// toward direction so repeated growth converges on far-away insertions. The
// old root becomes one child of the new root unless it is empty, in which
// case it is replaced outright.
func (o *BoundsOctree[T]) grow(direction r3.Vector) {
	xDir, yDir, zDir := growDirection(direction)
	oldRoot := o.root
	half := oldRoot.baseLength / 2
	newCenter := oldRoot.center.Add(r3.Vector{X: xDir * half, Y: yDir * half, Z: zDir * half})

	newRoot := newBoundsOctreeNode[T](oldRoot.baseLength*2, oldRoot.minSize, oldRoot.looseness, newCenter)
	if oldRoot.hasAnyObjects() {
		rootPos := newRoot.bestFitChild(oldRoot.center)
		children := make([]*boundsOctreeNode[T], 8)
		for i := range children {
			if i == rootPos {
				children[i] = oldRoot
				continue
			}
			xDir, yDir, zDir = siblingDirection(i)
			children[i] = newBoundsOctreeNode[T](oldRoot.baseLength, oldRoot.minSize, oldRoot.looseness,
				newCenter.Add(r3.Vector{X: xDir * half, Y: yDir * half, Z: zDir * half}))
		}
		newRoot.children = children
	}
	o.root = newRoot
}

// shrink replaces the root with a smaller node when everything stored fits
// in a single octant. Run once after every successful removal.
func (o *BoundsOctree[T]) shrink() {
	o.root = o.root.shrinkIfPossible(o.initialSize)
}
