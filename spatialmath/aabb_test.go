package spatialmath

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestAABBCorners(t *testing.T) {
	b := NewAABB(r3.Vector{X: 1, Y: 2, Z: 3}, r3.Vector{X: 2, Y: 4, Z: 6})
	test.That(t, b.Min(), test.ShouldResemble, r3.Vector{X: 0, Y: 0, Z: 0})
	test.That(t, b.Max(), test.ShouldResemble, r3.Vector{X: 2, Y: 4, Z: 6})
	test.That(t, b.Size(), test.ShouldResemble, r3.Vector{X: 2, Y: 4, Z: 6})

	cube := NewCubeAABB(r3.Vector{}, 3)
	test.That(t, cube.HalfSize, test.ShouldResemble, r3.Vector{X: 1.5, Y: 1.5, Z: 1.5})
}

func TestAABBContains(t *testing.T) {
	b := NewCubeAABB(r3.Vector{}, 2)

	cases := []struct {
		pt       r3.Vector
		expected bool
	}{
		{r3.Vector{X: 0, Y: 0, Z: 0}, true},
		{r3.Vector{X: 0.5, Y: -0.5, Z: 0.25}, true},
		// points on a face count as inside
		{r3.Vector{X: 1, Y: 0, Z: 0}, true},
		{r3.Vector{X: -1, Y: -1, Z: -1}, true},
		{r3.Vector{X: 1.01, Y: 0, Z: 0}, false},
		{r3.Vector{X: 0, Y: -1.01, Z: 0}, false},
		{r3.Vector{X: 0, Y: 0, Z: 100}, false},
	}
	for _, c := range cases {
		test.That(t, b.Contains(c.pt), test.ShouldEqual, c.expected)
	}
}

func TestAABBEncapsulates(t *testing.T) {
	outer := NewCubeAABB(r3.Vector{}, 4)

	test.That(t, outer.Encapsulates(NewCubeAABB(r3.Vector{}, 2)), test.ShouldBeTrue)
	test.That(t, outer.Encapsulates(outer), test.ShouldBeTrue)
	test.That(t, outer.Encapsulates(NewCubeAABB(r3.Vector{X: 1.5}, 1)), test.ShouldBeTrue)
	// pokes out of the +x face
	test.That(t, outer.Encapsulates(NewCubeAABB(r3.Vector{X: 1.6}, 1)), test.ShouldBeFalse)
	test.That(t, outer.Encapsulates(NewCubeAABB(r3.Vector{}, 5)), test.ShouldBeFalse)
	test.That(t, outer.Encapsulates(NewCubeAABB(r3.Vector{X: 10}, 1)), test.ShouldBeFalse)
}

func TestAABBIntersects(t *testing.T) {
	b := NewCubeAABB(r3.Vector{}, 2)

	test.That(t, b.Intersects(NewCubeAABB(r3.Vector{X: 1.5}, 2)), test.ShouldBeTrue)
	// shared face counts as overlap
	test.That(t, b.Intersects(NewCubeAABB(r3.Vector{X: 2}, 2)), test.ShouldBeTrue)
	test.That(t, b.Intersects(NewCubeAABB(r3.Vector{X: 2.01}, 2)), test.ShouldBeFalse)
	test.That(t, b.Intersects(NewCubeAABB(r3.Vector{X: 2, Y: 2, Z: 2}, 2)), test.ShouldBeTrue)
	test.That(t, b.Intersects(NewCubeAABB(r3.Vector{}, 10)), test.ShouldBeTrue)
}

func TestAABBClosestPoint(t *testing.T) {
	b := NewCubeAABB(r3.Vector{}, 2)

	inside := r3.Vector{X: 0.5, Y: -0.25, Z: 0}
	test.That(t, b.ClosestPoint(inside), test.ShouldResemble, inside)
	test.That(t, b.ClosestPoint(r3.Vector{X: 5, Y: 0, Z: 0}), test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, b.ClosestPoint(r3.Vector{X: 5, Y: -5, Z: 0.5}), test.ShouldResemble, r3.Vector{X: 1, Y: -1, Z: 0.5})
}

func TestAABBExpanded(t *testing.T) {
	b := NewCubeAABB(r3.Vector{X: 1}, 2).Expanded(0.5)
	test.That(t, b.Center, test.ShouldResemble, r3.Vector{X: 1, Y: 0, Z: 0})
	test.That(t, b.HalfSize, test.ShouldResemble, r3.Vector{X: 1.5, Y: 1.5, Z: 1.5})
	test.That(t, b.Contains(r3.Vector{X: 2.5, Y: 0, Z: 0}), test.ShouldBeTrue)
}

func TestAABBRayIntersection(t *testing.T) {
	b := NewCubeAABB(r3.Vector{}, 2)

	t.Run("hit from outside", func(t *testing.T) {
		dist, hit := b.RayIntersection(NewRay(r3.Vector{X: -5}, r3.Vector{X: 1}))
		test.That(t, hit, test.ShouldBeTrue)
		test.That(t, dist, test.ShouldAlmostEqual, 4)
	})

	t.Run("origin inside clamps to zero", func(t *testing.T) {
		dist, hit := b.RayIntersection(NewRay(r3.Vector{X: 0.5}, r3.Vector{X: 1}))
		test.That(t, hit, test.ShouldBeTrue)
		test.That(t, dist, test.ShouldEqual, 0)
	})

	t.Run("box behind origin misses", func(t *testing.T) {
		_, hit := b.RayIntersection(NewRay(r3.Vector{X: 5}, r3.Vector{X: 1}))
		test.That(t, hit, test.ShouldBeFalse)
	})

	t.Run("parallel ray inside slab", func(t *testing.T) {
		dist, hit := b.RayIntersection(NewRay(r3.Vector{X: -5, Y: 0.5, Z: 0.5}, r3.Vector{X: 1}))
		test.That(t, hit, test.ShouldBeTrue)
		test.That(t, dist, test.ShouldAlmostEqual, 4)
	})

	t.Run("parallel ray outside slab", func(t *testing.T) {
		_, hit := b.RayIntersection(NewRay(r3.Vector{X: -5, Y: 1.5}, r3.Vector{X: 1}))
		test.That(t, hit, test.ShouldBeFalse)
	})

	t.Run("diagonal hit", func(t *testing.T) {
		ray := NewRay(r3.Vector{X: -2, Y: -2, Z: -2}, r3.Vector{X: 1, Y: 1, Z: 1})
		dist, hit := b.RayIntersection(ray)
		test.That(t, hit, test.ShouldBeTrue)
		entry := ray.Point(dist)
		test.That(t, entry.X, test.ShouldAlmostEqual, -1)
		test.That(t, entry.Y, test.ShouldAlmostEqual, -1)
		test.That(t, entry.Z, test.ShouldAlmostEqual, -1)
	})

	t.Run("near miss", func(t *testing.T) {
		test.That(t, b.IntersectsRay(NewRay(r3.Vector{X: -5, Y: 2.5}, r3.Vector{X: 1})), test.ShouldBeFalse)
		test.That(t, b.IntersectsRay(NewRay(r3.Vector{X: -5, Y: 0.5}, r3.Vector{X: 1})), test.ShouldBeTrue)
	})
}
