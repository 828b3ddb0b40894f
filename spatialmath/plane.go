package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Plane is the set of points satisfying Normal·p + Offset = 0. The normal
// points toward the half-space a frustum considers inside.
type Plane struct {
	Normal r3.Vector
	Offset float64
}

// NewPlane creates a plane from its normal vector and offset from the origin.
func NewPlane(normal r3.Vector, offset float64) Plane {
	return Plane{Normal: normal, Offset: offset}
}

// NewPlaneFromPoint creates the plane through pt with the given normal.
func NewPlaneFromPoint(normal, pt r3.Vector) Plane {
	return Plane{Normal: normal, Offset: -normal.Dot(pt)}
}

// DistanceToPoint returns the signed distance from pt to the plane, positive
// on the side the normal points to. Normal must be unit length for the result
// to be a true distance.
func (p Plane) DistanceToPoint(pt r3.Vector) float64 {
	return p.Normal.Dot(pt) + p.Offset
}

// Frustum is a convex volume bounded by six planes whose normals point into
// the volume, the usual encoding of a camera view frustum.
type Frustum [6]Plane

// ContainsAABB reports whether box is at least partially inside the frustum.
// For each plane the box vertex furthest along the plane normal is tested;
// the box is rejected only when it lies entirely outside one plane, so boxes
// spanning a frustum corner are conservatively kept.
func (f Frustum) ContainsAABB(box AABB) bool {
	for _, p := range f {
		v := box.Center
		if p.Normal.X >= 0 {
			v.X += box.HalfSize.X
		} else {
			v.X -= box.HalfSize.X
		}
		if p.Normal.Y >= 0 {
			v.Y += box.HalfSize.Y
		} else {
			v.Y -= box.HalfSize.Y
		}
		if p.Normal.Z >= 0 {
			v.Z += box.HalfSize.Z
		} else {
			v.Z -= box.HalfSize.Z
		}
		if p.DistanceToPoint(v) < 0 {
			return false
		}
	}
	return true
}
