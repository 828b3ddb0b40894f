package octree

import (
	"testing"

	"go.viam.com/test"

	"github.com/viam-labs/dynamic-octree/spatialmath"
)

// validatePointOctree checks every structural invariant of a point octree:
// the count matches what is reachable, every object sits inside its node's
// bounds, every node has zero or eight children, nodes with children hold no
// direct objects, and no leaf exceeds the object threshold unless splitting
// it would go below the minimum node size.
func validatePointOctree[T comparable](t *testing.T, o *PointOctree[T]) {
	t.Helper()

	test.That(t, o.root.baseLength, test.ShouldBeGreaterThanOrEqualTo, o.initialSize)
	count := validatePointOctreeNode(t, o.root)
	test.That(t, count, test.ShouldEqual, o.Size())
}

// validatePointOctreeNode recursively checks node invariants and returns the
// number of objects reachable from n.
func validatePointOctreeNode[T comparable](t *testing.T, n *pointOctreeNode[T]) int {
	t.Helper()

	for _, existing := range n.objects {
		test.That(t, n.bounds.Contains(existing.pos), test.ShouldBeTrue)
	}

	count := len(n.objects)
	if !n.hasChildren() {
		if len(n.objects) > numObjectsAllowed {
			// Only allowed when further splitting would go below the minimum
			// node size.
			test.That(t, n.baseLength/2, test.ShouldBeLessThan, n.minSize)
		}
		return count
	}

	test.That(t, len(n.children), test.ShouldEqual, 8)
	test.That(t, n.objects, test.ShouldBeEmpty)
	for i, child := range n.children {
		test.That(t, child.baseLength, test.ShouldEqual, n.baseLength/2)
		expected := n.center.Add(childOffset(i, n.baseLength/4))
		test.That(t, child.center.Sub(expected).Norm(), test.ShouldBeLessThan, 1e-9)
		count += validatePointOctreeNode(t, child)
	}
	return count
}

// validateBoundsOctree is the loose-bounds counterpart of
// validatePointOctree. Nodes with children may hold direct objects, but only
// genuine spillover: boxes that do not fit inside their best-fit child's
// loose bounds.
func validateBoundsOctree[T comparable](t *testing.T, o *BoundsOctree[T]) {
	t.Helper()

	test.That(t, o.root.baseLength, test.ShouldBeGreaterThanOrEqualTo, o.initialSize)
	count := validateBoundsOctreeNode(t, o.root)
	test.That(t, count, test.ShouldEqual, o.Size())
}

func validateBoundsOctreeNode[T comparable](t *testing.T, n *boundsOctreeNode[T]) int {
	t.Helper()

	test.That(t, n.adjLength, test.ShouldEqual, n.looseness*n.baseLength)
	for _, existing := range n.objects {
		test.That(t, n.bounds.Encapsulates(existing.bounds), test.ShouldBeTrue)
	}

	count := len(n.objects)
	if !n.hasChildren() {
		if len(n.objects) > numObjectsAllowed {
			test.That(t, n.baseLength/2, test.ShouldBeLessThan, n.minSize)
		}
		return count
	}

	test.That(t, len(n.children), test.ShouldEqual, 8)
	for _, existing := range n.objects {
		best := n.bestFitChild(existing.bounds.Center)
		test.That(t, n.childBounds[best].Encapsulates(existing.bounds), test.ShouldBeFalse)
	}
	for i, child := range n.children {
		test.That(t, child.baseLength, test.ShouldEqual, n.baseLength/2)
		test.That(t, child.looseness, test.ShouldEqual, n.looseness)
		expected := n.center.Add(childOffset(i, n.baseLength/4))
		test.That(t, child.center.Sub(expected).Norm(), test.ShouldBeLessThan, 1e-9)
		count += validateBoundsOctreeNode(t, child)
	}
	return count
}

// checkPointMergesApplied asserts that no reachable node still satisfies the
// merge condition; removals are expected to merge eagerly.
func checkPointMergesApplied[T comparable](t *testing.T, n *pointOctreeNode[T]) {
	t.Helper()

	if !n.hasChildren() {
		return
	}
	test.That(t, n.shouldMerge(), test.ShouldBeFalse)
	for _, child := range n.children {
		checkPointMergesApplied(t, child)
	}
}

func checkBoundsMergesApplied[T comparable](t *testing.T, n *boundsOctreeNode[T]) {
	t.Helper()

	if !n.hasChildren() {
		return
	}
	test.That(t, n.shouldMerge(), test.ShouldBeFalse)
	for _, child := range n.children {
		checkBoundsMergesApplied(t, child)
	}
}

// canonicalizePointOctree renders the tree's shape and contents into a
// deterministic form for comparing two trees that should be identical.
func canonicalizePointOctree[T comparable](n *pointOctreeNode[T]) map[string]any {
	shape := map[string]any{
		"center": n.center,
		"length": n.baseLength,
	}
	positions := make([]r3sortable, 0, len(n.objects))
	for _, existing := range n.objects {
		positions = append(positions, r3sortable{existing.pos.X, existing.pos.Y, existing.pos.Z})
	}
	sortR3(positions)
	shape["objects"] = positions
	if n.hasChildren() {
		children := make([]map[string]any, 0, 8)
		for _, child := range n.children {
			children = append(children, canonicalizePointOctree(child))
		}
		shape["children"] = children
	}
	return shape
}

type r3sortable struct {
	x, y, z float64
}

func sortR3(values []r3sortable) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && lessR3(values[j], values[j-1]); j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}

func lessR3(a, b r3sortable) bool {
	if a.x != b.x {
		return a.x < b.x
	}
	if a.y != b.y {
		return a.y < b.y
	}
	return a.z < b.z
}

// boundsOf is shorthand for the cubes used throughout the bounds octree
// tests.
func boundsOf(x, y, z, side float64) spatialmath.AABB {
	return spatialmath.NewCubeAABB(r3Vec(x, y, z), side)
}
