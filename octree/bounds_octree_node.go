package octree

import (
	"github.com/golang/geo/r3"

	"github.com/viam-labs/dynamic-octree/spatialmath"
)

// boundsOctreeObject pairs a stored payload with the bounding box it was
// added with.
type boundsOctreeObject[T comparable] struct {
	obj    T
	bounds spatialmath.AABB
}

// boundsOctreeNode is one cube of a loose bounds octree. Its containment
// bounds are the nominal cube inflated by the looseness factor. Unlike the
// point variant, a node with children may keep direct objects: anything
// whose box straddles octant boundaries and fits no single child's loose
// bounds stays at this level.
type boundsOctreeNode[T comparable] struct {
	center      r3.Vector
	baseLength  float64
	adjLength   float64
	minSize     float64
	looseness   float64
	bounds      spatialmath.AABB
	objects     []boundsOctreeObject[T]
	children    []*boundsOctreeNode[T]
	childBounds [8]spatialmath.AABB
}

func newBoundsOctreeNode[T comparable](baseLength, minSize, looseness float64, center r3.Vector) *boundsOctreeNode[T] {
	n := &boundsOctreeNode[T]{}
	n.setValues(baseLength, minSize, looseness, center)
	return n
}

// setValues (re)parameterizes the node, recomputing its loose bounds and the
// loose bounds of its eight would-be children.
func (n *boundsOctreeNode[T]) setValues(baseLength, minSize, looseness float64, center r3.Vector) {
	n.baseLength = baseLength
	n.minSize = minSize
	n.looseness = looseness
	n.center = center
	n.adjLength = looseness * baseLength
	n.bounds = spatialmath.NewCubeAABB(center, n.adjLength)

	quarter := baseLength / 4
	childAdjLength := looseness * (baseLength / 2)
	for i := range n.childBounds {
		n.childBounds[i] = spatialmath.NewCubeAABB(center.Add(childOffset(i, quarter)), childAdjLength)
	}
}

func (n *boundsOctreeNode[T]) hasChildren() bool {
	return n.children != nil
}

// hasAnyObjects reports whether anything is stored in this node or below it.
func (n *boundsOctreeNode[T]) hasAnyObjects() bool {
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
func (n *boundsOctreeNode[T]) bestFitChild(pos r3.Vector) int {
	return bestFitOctant(n.center, pos)
}

// add stores obj if objBounds lies entirely inside this node's loose bounds,
// reporting whether it did. The caller grows the tree when it did not.
func (n *boundsOctreeNode[T]) add(obj T, objBounds spatialmath.AABB) bool {
	if !n.bounds.Encapsulates(objBounds) {
		return false
	}
	n.subAdd(obj, objBounds)
	return true
}

// subAdd stores obj somewhere at or below this node, splitting when the node
// is full and still large enough to subdivide. Objects that fit no single
// child's loose bounds stay in this node's direct list.
func (n *boundsOctreeNode[T]) subAdd(obj T, objBounds spatialmath.AABB) {
	if !n.hasChildren() {
		if len(n.objects) < numObjectsAllowed || n.baseLength/2 < n.minSize {
			n.objects = append(n.objects, boundsOctreeObject[T]{obj: obj, bounds: objBounds})
			return
		}
		n.split()
		// Sink what fits fully inside a child down a level; the rest stays.
		kept := n.objects[:0]
		for _, existing := range n.objects {
			best := n.bestFitChild(existing.bounds.Center)
			if n.children[best].bounds.Encapsulates(existing.bounds) {
				n.children[best].subAdd(existing.obj, existing.bounds)
			} else {
				kept = append(kept, existing)
			}
		}
		n.objects = kept
	}
	best := n.bestFitChild(objBounds.Center)
	if n.children[best].bounds.Encapsulates(objBounds) {
		n.children[best].subAdd(obj, objBounds)
	} else {
		n.objects = append(n.objects, boundsOctreeObject[T]{obj: obj, bounds: objBounds})
	}
}

// split creates this node's eight children. Existing objects stay put until
// the caller redistributes them.
func (n *boundsOctreeNode[T]) split() {
	quarter := n.baseLength / 4
	childLength := n.baseLength / 2
	n.children = make([]*boundsOctreeNode[T], 8)
	for i := range n.children {
		n.children[i] = newBoundsOctreeNode[T](childLength, n.minSize, n.looseness, n.center.Add(childOffset(i, quarter)))
	}
}

// remove scans this node and all descendants for obj, reporting whether it
// was found and removed.
func (n *boundsOctreeNode[T]) remove(obj T) bool {
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

// removeAt prunes the search by only descending into the octant that
// objBounds' center belongs to. objBounds must match the bounds the object
// was added with.
func (n *boundsOctreeNode[T]) removeAt(obj T, objBounds spatialmath.AABB) bool {
	if !n.bounds.Encapsulates(objBounds) {
		return false
	}
	return n.subRemove(obj, objBounds)
}

func (n *boundsOctreeNode[T]) subRemove(obj T, objBounds spatialmath.AABB) bool {
	removed := false
	for i, existing := range n.objects {
		if existing.obj == obj {
			n.objects = append(n.objects[:i], n.objects[i+1:]...)
			removed = true
			break
		}
	}
	if !removed && n.hasChildren() {
		removed = n.children[n.bestFitChild(objBounds.Center)].subRemove(obj, objBounds)
	}
	if removed && n.hasChildren() && n.shouldMerge() {
		n.merge()
	}
	return removed
}

// shouldMerge reports whether this node's children can be folded back into
// it: no grandchildren, and few enough objects overall to fit in one node.
func (n *boundsOctreeNode[T]) shouldMerge() bool {
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
func (n *boundsOctreeNode[T]) merge() {
	for _, child := range n.children {
		n.objects = append(n.objects, child.objects...)
	}
	n.children = nil
}

// shrinkIfPossible returns this node halved in place, one of its children,
// or the node unchanged, depending on whether everything stored fits in a
// single octant's loose bounds. minLength is the side length the root never
// shrinks below.
func (n *boundsOctreeNode[T]) shrinkIfPossible(minLength float64) *boundsOctreeNode[T] {
	if n.baseLength < 2*minLength {
		return n
	}
	if len(n.objects) == 0 && !n.hasChildren() {
		return n
	}

	bestFit := -1
	for i, existing := range n.objects {
		newBestFit := n.bestFitChild(existing.bounds.Center)
		if i == 0 || newBestFit == bestFit {
			// Same octant as the others, but it must also fit completely
			// inside that octant's loose bounds.
			if !n.childBounds[newBestFit].Encapsulates(existing.bounds) {
				return n
			}
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
		n.setValues(n.baseLength/2, n.minSize, n.looseness, n.childBounds[bestFit].Center)
		return n
	}

	if bestFit == -1 {
		return n
	}
	return n.children[bestFit]
}

// isColliding reports whether any object at or below this node intersects
// checkBounds, returning on the first hit found.
func (n *boundsOctreeNode[T]) isColliding(checkBounds spatialmath.AABB) bool {
	if !n.bounds.Intersects(checkBounds) {
		return false
	}
	for _, existing := range n.objects {
		if existing.bounds.Intersects(checkBounds) {
			return true
		}
	}
	for _, child := range n.children {
		if child.isColliding(checkBounds) {
			return true
		}
	}
	return false
}

// isCollidingWithRay reports whether any object at or below this node is hit
// by ray within maxDistance, returning on the first hit found.
func (n *boundsOctreeNode[T]) isCollidingWithRay(ray spatialmath.Ray, maxDistance float64) bool {
	dist, hit := n.bounds.RayIntersection(ray)
	if !hit || dist > maxDistance {
		return false
	}
	for _, existing := range n.objects {
		if dist, hit = existing.bounds.RayIntersection(ray); hit && dist <= maxDistance {
			return true
		}
	}
	for _, child := range n.children {
		if child.isCollidingWithRay(ray, maxDistance) {
			return true
		}
	}
	return false
}

// getColliding appends to result every object at or below this node whose
// bounds intersect checkBounds.
func (n *boundsOctreeNode[T]) getColliding(checkBounds spatialmath.AABB, result *[]T) {
	if !n.bounds.Intersects(checkBounds) {
		return
	}
	for _, existing := range n.objects {
		if existing.bounds.Intersects(checkBounds) {
			*result = append(*result, existing.obj)
		}
	}
	for _, child := range n.children {
		child.getColliding(checkBounds, result)
	}
}

// getCollidingWithRay appends to result every object at or below this node
// hit by ray within maxDistance.
func (n *boundsOctreeNode[T]) getCollidingWithRay(ray spatialmath.Ray, maxDistance float64, result *[]T) {
	dist, hit := n.bounds.RayIntersection(ray)
	if !hit || dist > maxDistance {
		return
	}
	for _, existing := range n.objects {
		if dist, hit = existing.bounds.RayIntersection(ray); hit && dist <= maxDistance {
			*result = append(*result, existing.obj)
		}
	}
	for _, child := range n.children {
		child.getCollidingWithRay(ray, maxDistance, result)
	}
}

// withinFrustum appends to result every object at or below this node that is
// at least partially inside frustum.
func (n *boundsOctreeNode[T]) withinFrustum(frustum spatialmath.Frustum, result *[]T) {
	if !frustum.ContainsAABB(n.bounds) {
		return
	}
	for _, existing := range n.objects {
		if frustum.ContainsAABB(existing.bounds) {
			*result = append(*result, existing.obj)
		}
	}
	for _, child := range n.children {
		child.withinFrustum(frustum, result)
	}
}

// all appends every object stored at or below this node to result.
func (n *boundsOctreeNode[T]) all(result *[]T) {
	for _, existing := range n.objects {
		*result = append(*result, existing.obj)
	}
	for _, child := range n.children {
		child.all(result)
	}
}
