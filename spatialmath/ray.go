package spatialmath

import (
	"github.com/golang/geo/r3"
)

// Ray is a half-line from Origin along a unit length Direction.
type Ray struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// NewRay creates a ray, normalizing direction. A zero direction stays zero
// rather than producing NaNs.
func NewRay(origin, direction r3.Vector) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize()}
}

// Point returns the position at distance d along the ray.
func (r Ray) Point(d float64) r3.Vector {
	return r.Origin.Add(r.Direction.Mul(d))
}

// SqDistanceToPoint returns the squared perpendicular distance from pt to the
// line supporting the ray. Direction must be unit length, which NewRay
// guarantees.
func (r Ray) SqDistanceToPoint(pt r3.Vector) float64 {
	return r.Direction.Cross(pt.Sub(r.Origin)).Norm2()
}
