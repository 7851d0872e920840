package geom

import "github.com/go-gl/mathgl/mgl64"

// Ray is a half-line, or a segment when Length is positive.
// Direction is always unit length once built through NewRay or NewSegment.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
	Length    float64
}

// NewRay creates an unbounded ray. A zero direction yields a ray that hits nothing.
func NewRay(origin, direction mgl64.Vec3) Ray {
	if direction.LenSqr() > 0 {
		direction = direction.Normalize()
	}

	return Ray{Origin: origin, Direction: direction}
}

// NewSegment creates a ray from one point to another, bounded by their distance
func NewSegment(from, to mgl64.Vec3) Ray {
	r := NewRay(from, to.Sub(from))
	r.Length = to.Sub(from).Len()

	return r
}

// At returns the point at distance t along the ray
func (r Ray) At(t float64) mgl64.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// IsDegenerate reports whether the ray has no usable direction
func (r Ray) IsDegenerate() bool {
	return r.Direction.LenSqr() < 1e-16
}

// Accepts reports whether a hit at distance t lies on the ray
func (r Ray) Accepts(t float64) bool {
	if t < 0 {
		return false
	}

	return r.Length <= 0 || t <= r.Length
}
