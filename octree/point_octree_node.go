package octree

import (
	"github.com/golang/geo/r3"

	"github.com/viam-labs/dynamic-octree/spatialmath"
)

// pointOctreeObject pairs a stored payload with the position it was added
// at.
type pointOctreeObject[T comparable] struct {
	obj T
	pos r3.Vector
}

// pointOctreeNode is one cube of a point octree. A node either stores
// objects directly or has exactly eight children; once split, its direct
// list stays empty until a merge folds the children back in.
type pointOctreeNode[T comparable] struct {
	center      r3.Vector
	baseLength  float64
	minSize     float64
	bounds      spatialmath.AABB
	objects     []pointOctreeObject[T]
	children    []*pointOctreeNode[T]
	childBounds [8]spatialmath.AABB
}

func newPointOctreeNode[T comparable](baseLength, minSize float64, center r3.Vector) *pointOctreeNode[T] {
	n := &pointOctreeNode[T]{}
	n.setValues(baseLength, minSize, center)
	return n
}

// setValues (re)parameterizes the node, recomputing its bounds and the
// bounds of its eight would-be children.
func (n *pointOctreeNode[T]) setValues(baseLength, minSize float64, center r3.Vector) {
	n.baseLength = baseLength
	n.minSize = minSize
	n.center = center
	n.bounds = spatialmath.NewCubeAABB(center, baseLength)

	quarter := baseLength / 4
	childLength := baseLength / 2
	for i := range n.childBounds {
		n.childBounds[i] = spatialmath.NewCubeAABB(center.Add(childOffset(i, quarter)), childLength)
	}
}

func (n *pointOctreeNode[T]) hasChildren() bool {
	return n.children != nil
}

// hasAnyObjects reports whether anything is stored in this node or below it.
func (n *pointOctreeNode[T]) hasAnyObjects() bool {
	if len(n.objects) > 0 {
		return true
	}
	for _, child := range n.children {
		if child.hasAnyObjects() {
			return true
		}
	}
	return false
}

// bestFitChild returns the octant index of the child whose region holds pos.
func (n *pointOctreeNode[T]) bestFitChild(pos r3.Vector) int {
	return bestFitOctant(n.center, pos)
}

// add stores obj at pos if pos lies inside this node's bounds, reporting
// whether it did. The caller grows the tree when it did not.
func (n *pointOctreeNode[T]) add(obj T, pos r3.Vector) bool {
	if !n.bounds.Contains(pos) {
		return false
	}
	n.subAdd(obj, pos)
	return true
}

// subAdd stores obj somewhere at or below this node, splitting when the node
// is full and still large enough to subdivide.
func (n *pointOctreeNode[T]) subAdd(obj T, pos r3.Vector) {
	if !n.hasChildren() {
		if len(n.objects) < numObjectsAllowed || n.baseLength/2 < n.minSize {
			n.objects = append(n.objects, pointOctreeObject[T]{obj: obj, pos: pos})
			return
		}
		n.split()
		for _, existing := range n.objects {
			n.children[n.bestFitChild(existing.pos)].subAdd(existing.obj, existing.pos)
		}
		n.objects = nil
	}
	n.children[n.bestFitChild(pos)].subAdd(obj, pos)
}

// split creates this node's eight children. Existing objects stay put until
// the caller redistributes them.
func (n *pointOctreeNode[T]) split() {
	quarter := n.baseLength / 4
	childLength := n.baseLength / 2
	n.children = make([]*pointOctreeNode[T], 8)
	for i := range n.children {
		n.children[i] = newPointOctreeNode[T](childLength, n.minSize, n.center.Add(childOffset(i, quarter)))
	}
}

// remove scans this node and all descendants for obj, reporting whether it
// was found and removed.
func (n *pointOctreeNode[T]) remove(obj T) bool {
	removed := false
	for i, existing := range n.objects {
		if existing.obj == obj {
			n.objects = append(n.objects[:i], n.objects[i+1:]...)
			removed = true
			break
		}
	}
	if !removed && n.hasChildren() {
		for _, child := range n.children {
			if child.remove(obj) {
				removed = true
				break
			}
		}
	}
	if removed && n.hasChildren() && n.shouldMerge() {
		n.merge()
	}
	return removed
}

// removeAt prunes the search by only descending into the octant pos belongs
// to. pos must match the position the object was added with.
func (n *pointOctreeNode[T]) removeAt(obj T, pos r3.Vector) bool {
	if !n.bounds.Contains(pos) {
		return false
	}
	return n.subRemove(obj, pos)
}

func (n *pointOctreeNode[T]) subRemove(obj T, pos r3.Vector) bool {
	removed := false
	for i, existing := range n.objects {
		if existing.obj == obj {
			n.objects = append(n.objects[:i], n.objects[i+1:]...)
			removed = true
			break
		}
	}
	if !removed && n.hasChildren() {
		removed = n.children[n.bestFitChild(pos)].subRemove(obj, pos)
	}
	if removed && n.hasChildren() && n.shouldMerge() {
		n.merge()
	}
	return removed
}

// shouldMerge reports whether this node's children can be folded back into
// it: no grandchildren, and few enough objects overall to fit in one node.
func (n *pointOctreeNode[T]) shouldMerge() bool {
	total := len(n.objects)
	for _, child := range n.children {
		if child.hasChildren() {
			return false
		}
		total += len(child.objects)
	}
	return total <= numObjectsAllowed
}

// merge folds all children's objects into this node and drops the children.
func (n *pointOctreeNode[T]) merge() {
	for _, child := range n.children {
		n.objects = append(n.objects, child.objects...)
	}
	n.children = nil
}

// shrinkIfPossible returns this node halved in place, one of its children,
// or the node unchanged, depending on whether everything stored lives in a
// single octant. minLength is the side length the root never shrinks below.
func (n *pointOctreeNode[T]) shrinkIfPossible(minLength float64) *pointOctreeNode[T] {
	if n.baseLength < 2*minLength {
		return n
	}
	if len(n.objects) == 0 && !n.hasChildren() {
		return n
	}

	bestFit := -1
	for i, existing := range n.objects {
		newBestFit := n.bestFitChild(existing.pos)
		if i == 0 || newBestFit == bestFit {
			if bestFit < 0 {
				bestFit = newBestFit
			}
		} else {
			// Objects straddle more than one octant.
			return n
		}
	}

	if n.hasChildren() {
		childHadContent := false
		for i, child := range n.children {
			if !child.hasAnyObjects() {
				continue
			}
			if childHadContent {
				return n
			}
			if bestFit >= 0 && bestFit != i {
				return n
			}
			childHadContent = true
			bestFit = i
		}
	}

	if !n.hasChildren() {
		n.setValues(n.baseLength/2, n.minSize, n.childBounds[bestFit].Center)
		return n
	}

	if bestFit == -1 {
		return n
	}
	return n.children[bestFit]
}

// nearby appends to result the objects within maxDistance of pos.
func (n *pointOctreeNode[T]) nearby(pos r3.Vector, maxDistance float64, result *[]T) {
	sqrMax := maxDistance * maxDistance
	if n.bounds.ClosestPoint(pos).Sub(pos).Norm2() > sqrMax {
		return
	}
	for _, existing := range n.objects {
		if pos.Sub(existing.pos).Norm2() <= sqrMax {
			*result = append(*result, existing.obj)
		}
	}
	for _, child := range n.children {
		child.nearby(pos, maxDistance, result)
	}
}

// nearbyAlongRay appends to result the objects within maxDistance of the
// line supporting ray. Pruning tests the ray against the node bounds expanded
// by maxDistance per side, which over-approximates; the per-object distance
// check filters the false positives. The result is exact for objects in
// front of the ray origin; an object behind the origin is included whenever
// it is close enough to the line and its node passes the pruning test.
func (n *pointOctreeNode[T]) nearbyAlongRay(ray spatialmath.Ray, maxDistance float64, result *[]T) {
	if !n.bounds.Expanded(maxDistance).IntersectsRay(ray) {
		return
	}
	sqrMax := maxDistance * maxDistance
	for _, existing := range n.objects {
		if ray.SqDistanceToPoint(existing.pos) <= sqrMax {
			*result = append(*result, existing.obj)
		}
	}
	for _, child := range n.children {
		child.nearbyAlongRay(ray, maxDistance, result)
	}
}

// all appends every object stored at or below this node to result.
func (n *pointOctreeNode[T]) all(result *[]T) {
	for _, existing := range n.objects {
		*result = append(*result, existing.obj)
	}
	for _, child := range n.children {
		child.all(result)
	}
}
