package octree

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/viam-labs/dynamic-octree/spatialmath"
)

// PointOctree indexes objects of type T by a single 3D position each.
// Objects are compared by equality and each object is assumed to be stored
// at most once.
type PointOctree[T comparable] struct {
	logger      golog.Logger
	root        *pointOctreeNode[T]
	size        int
	initialSize float64
}

// NewPointOctree creates a point octree. initialWorldSize is the side length
// of the starting root node and the smallest size the root shrinks back to;
// initialWorldPos is its center. minNodeSize is the smallest side length a
// node may have; nodes at that size stop splitting regardless of how many
// objects they hold.
func NewPointOctree[T comparable](
	initialWorldSize float64,
	initialWorldPos r3.Vector,
	minNodeSize float64,
	logger golog.Logger,
) (*PointOctree[T], error) {
	if initialWorldSize < 0 || math.IsNaN(initialWorldSize) {
		return nil, errors.Errorf("invalid initial world size (%.2f) for octree", initialWorldSize)
	}
	if minNodeSize > initialWorldSize {
		logger.Warnf("minimum node size (%v) larger than initial world size (%v), clamping down", minNodeSize, initialWorldSize)
		minNodeSize = initialWorldSize
	}
	return &PointOctree[T]{
		logger:      logger,
		root:        newPointOctreeNode[T](initialWorldSize, minNodeSize, initialWorldPos),
		initialSize: initialWorldSize,
	}, nil
}

// Size returns the number of objects stored in the tree.
func (o *PointOctree[T]) Size() int {
	return o.size
}

// Add stores obj at pos, growing the tree until pos is inside the root. A
// position that cannot be reached by doubling the root (NaN or infinite
// coordinates) is dropped with an error log and no count change.
func (o *PointOctree[T]) Add(obj T, pos r3.Vector) {
	grown := 0
	for !o.root.add(obj, pos) {
		if grown++; grown > maxGrowAttempts {
			o.logger.Errorf("aborted add after growing %d times, position %v cannot be encapsulated", maxGrowAttempts, pos)
			return
		}
		o.grow(pos.Sub(o.root.center))
	}
	o.size++
}

// Remove removes obj, scanning the whole tree for it, and reports whether it
// was found.
func (o *PointOctree[T]) Remove(obj T) bool {
	removed := o.root.remove(obj)
	if removed {
		o.size--
		o.shrink()
	}
	return removed
}

// RemoveAt removes obj using pos to walk only the octants that could contain
// it, which is considerably faster than Remove. pos must be the position the
// object was added with.
func (o *PointOctree[T]) RemoveAt(obj T, pos r3.Vector) bool {
	removed := o.root.removeAt(obj, pos)
	if removed {
		o.size--
		o.shrink()
	}
	return removed
}

// All returns every stored object in no particular order.
func (o *PointOctree[T]) All() []T {
	result := make([]T, 0, o.size)
	o.root.all(&result)
	return result
}

// Nearby returns the objects whose position is within maxDistance of pos.
func (o *PointOctree[T]) Nearby(pos r3.Vector, maxDistance float64) []T {
	var result []T
	o.root.nearby(pos, maxDistance, &result)
	return result
}

// NearbyAlongRay returns the objects whose position is within maxDistance of
// the line supporting ray. Only nodes the ray reaches are searched, so the
// result is exact for objects in front of the ray origin; objects behind it
// may or may not be included. The ray direction must be unit length; NewRay
// guarantees that.
func (o *PointOctree[T]) NearbyAlongRay(ray spatialmath.Ray, maxDistance float64) []T {
	var result []T
	o.root.nearbyAlongRay(ray, maxDistance, &result)
	return result
}

// MaxBounds returns the bounds of the root node.
func (o *PointOctree[T]) MaxBounds() spatialmath.AABB {
	return o.root.bounds
}

// grow doubles the root's side length, shifting the new center toward
// direction so repeated growth converges on far-away insertions. The old
// root becomes one child of the new root unless it is empty, in which case
// it is replaced outright.
func (o *PointOctree[T]) grow(direction r3.Vector) {
	xDir, yDir, zDir := growDirection(direction)
	oldRoot := o.root
	half := oldRoot.baseLength / 2
	newCenter := oldRoot.center.Add(r3.Vector{X: xDir * half, Y: yDir * half, Z: zDir * half})

	newRoot := newPointOctreeNode[T](oldRoot.baseLength*2, oldRoot.minSize, newCenter)
	if oldRoot.hasAnyObjects() {
		rootPos := newRoot.bestFitChild(oldRoot.center)
		children := make([]*pointOctreeNode[T], 8)
		for i := range children {
			if i == rootPos {
				children[i] = oldRoot
				continue
			}
			xDir, yDir, zDir = siblingDirection(i)
			children[i] = newPointOctreeNode[T](oldRoot.baseLength, oldRoot.minSize,
				newCenter.Add(r3.Vector{X: xDir * half, Y: yDir * half, Z: zDir * half}))
		}
		newRoot.children = children
	}
	o.root = newRoot
}

// shrink replaces the root with a smaller node when everything stored fits
// in a single octant. Run once after every successful removal.
func (o *PointOctree[T]) shrink() {
	o.root = o.root.shrinkIfPossible(o.initialSize)
}
