// Package spatialmath provides the axis-aligned geometric primitives the
// octrees are built on: bounding boxes, rays, planes and frustums over r3
// vectors.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// AABB is an axis-aligned bounding box stored as a center point and the half
// extent of each side.
type AABB struct {
	Center   r3.Vector
	HalfSize r3.Vector
}

// NewAABB creates an AABB centered at center whose full side lengths are dims.
func NewAABB(center, dims r3.Vector) AABB {
	return AABB{Center: center, HalfSize: dims.Mul(0.5)}
}

// NewCubeAABB creates an AABB with the same side length on every axis.
func NewCubeAABB(center r3.Vector, side float64) AABB {
	return NewAABB(center, r3.Vector{X: side, Y: side, Z: side})
}

// Min returns the corner with the smallest coordinate on every axis.
func (b AABB) Min() r3.Vector {
	return b.Center.Sub(b.HalfSize)
}

// Max returns the corner with the largest coordinate on every axis.
func (b AABB) Max() r3.Vector {
	return b.Center.Add(b.HalfSize)
}

// Size returns the full side lengths of the box.
func (b AABB) Size() r3.Vector {
	return b.HalfSize.Mul(2)
}

// String returns a human readable string that represents the box.
func (b AABB) String() string {
	return fmt.Sprintf("Center: X:%.2f, Y:%.2f, Z:%.2f | Dims: X:%.2f, Y:%.2f, Z:%.2f",
		b.Center.X, b.Center.Y, b.Center.Z, 2*b.HalfSize.X, 2*b.HalfSize.Y, 2*b.HalfSize.Z)
}

// Contains reports whether pt lies inside the box. Points on a face count as
// inside.
func (b AABB) Contains(pt r3.Vector) bool {
	bMin, bMax := b.Min(), b.Max()
	return pt.X >= bMin.X && pt.X <= bMax.X &&
		pt.Y >= bMin.Y && pt.Y <= bMax.Y &&
		pt.Z >= bMin.Z && pt.Z <= bMax.Z
}

// Encapsulates reports whether inner lies entirely inside b.
func (b AABB) Encapsulates(inner AABB) bool {
	return b.Contains(inner.Min()) && b.Contains(inner.Max())
}

// Intersects reports whether the two boxes overlap. Shared faces count as
// overlap.
func (b AABB) Intersects(other AABB) bool {
	bMin, bMax := b.Min(), b.Max()
	oMin, oMax := other.Min(), other.Max()
	return bMax.X >= oMin.X && bMin.X <= oMax.X &&
		bMax.Y >= oMin.Y && bMin.Y <= oMax.Y &&
		bMax.Z >= oMin.Z && bMin.Z <= oMax.Z
}

// ClosestPoint returns the point inside the box closest to pt.
func (b AABB) ClosestPoint(pt r3.Vector) r3.Vector {
	bMin, bMax := b.Min(), b.Max()
	return r3.Vector{
		X: math.Min(math.Max(pt.X, bMin.X), bMax.X),
		Y: math.Min(math.Max(pt.Y, bMin.Y), bMax.Y),
		Z: math.Min(math.Max(pt.Z, bMin.Z), bMax.Z),
	}
}

// Expanded returns a copy of the box with every face pushed out by margin.
func (b AABB) Expanded(margin float64) AABB {
	return AABB{
		Center:   b.Center,
		HalfSize: b.HalfSize.Add(r3.Vector{X: margin, Y: margin, Z: margin}),
	}
}

// RayIntersection computes where ray enters the box using the slab method.
// The returned distance is measured along the ray direction and clamped to
// zero when the origin is already inside the box. A box entirely behind the
// origin is not a hit.
func (b AABB) RayIntersection(ray Ray) (float64, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)
	bMin, bMax := b.Min(), b.Max()

	for axis := 0; axis < 3; axis++ {
		var lo, hi, origin, dir float64
		switch axis {
		case 0:
			lo, hi, origin, dir = bMin.X, bMax.X, ray.Origin.X, ray.Direction.X
		case 1:
			lo, hi, origin, dir = bMin.Y, bMax.Y, ray.Origin.Y, ray.Direction.Y
		default:
			lo, hi, origin, dir = bMin.Z, bMax.Z, ray.Origin.Z, ray.Direction.Z
		}
		if dir == 0 {
			// Parallel to this slab; either always inside it or never.
			if origin < lo || origin > hi {
				return 0, false
			}
			continue
		}
		t1 := (lo - origin) / dir
		t2 := (hi - origin) / dir
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, false
		}
	}
	if tMax < 0 {
		return 0, false
	}
	if tMin < 0 {
		tMin = 0
	}
	return tMin, true
}

// IntersectsRay reports whether ray hits the box at any non-negative
// distance.
func (b AABB) IntersectsRay(ray Ray) bool {
	_, hit := b.RayIntersection(ray)
	return hit
}
