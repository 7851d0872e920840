package volume

import (
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Sphere scales its radius by the largest absolute scale component of its world transform.
type Sphere struct {
	base
	localCenter mgl64.Vec3
	localRadius float64

	center mgl64.Vec3
	radius float64
	points [6]mgl64.Vec3
}

func NewSphere(center mgl64.Vec3, radius float64) *Sphere {
	return &Sphere{base: newBase(), localCenter: center, localRadius: radius}
}

// NewSphereFromPoints centers the sphere on the bounds of points and grows it to reach
// the furthest one.
func NewSphereFromPoints(points []mgl64.Vec3) *Sphere {
	center := BoundsFromPoints(points).Center()
	radius := 0.0
	for _, p := range points {
		radius = math.Max(radius, p.Sub(center).Len())
	}

	return NewSphere(center, radius)
}

func (s *Sphere) Kind() Kind { return KindSphere }

func (s *Sphere) SetLocalSphere(center mgl64.Vec3, radius float64) {
	s.localCenter = center
	s.localRadius = radius
	s.transformChanged = true
}

func (s *Sphere) Update() {
	if !s.refresh() {
		return
	}

	s.center = s.worldTransform.TransformPoint(s.localCenter)
	s.radius = s.localRadius * geom.MaxAbsComponent(s.worldTransform.Scale)

	for axis := 0; axis < 3; axis++ {
		var offset mgl64.Vec3
		offset[axis] = s.radius
		s.points[2*axis] = s.center.Add(offset)
		s.points[2*axis+1] = s.center.Sub(offset)
	}
}

func (s *Sphere) WorldTransform() geom.Transform {
	s.Update()
	return s.worldTransform
}

func (s *Sphere) Center() mgl64.Vec3 {
	s.Update()
	return s.center
}

func (s *Sphere) Radius() float64 {
	s.Update()
	return s.radius
}

func (s *Sphere) Bounds() Bounds {
	s.Update()
	r := mgl64.Vec3{s.radius, s.radius, s.radius}
	return BoundsFromCenter(s.center, r)
}

// Points returns the six axis extremes of the sphere.
func (s *Sphere) Points() []mgl64.Vec3 {
	s.Update()
	return s.points[:]
}

func (s *Sphere) Support(direction mgl64.Vec3) mgl64.Vec3 {
	s.Update()
	if direction.LenSqr() < 1e-24 {
		return s.center
	}

	return s.center.Add(direction.Normalize().Mul(s.radius))
}

func (s *Sphere) IntersectPoint(point mgl64.Vec3, contact *Contact) bool {
	s.Update()
	d := point.Sub(s.center).Len()
	if d > s.radius {
		return false
	}

	contact.set(point, d)
	return true
}

// IntersectRay solves |o + t*d - c|² = r². A negative discriminant is a miss.
func (s *Sphere) IntersectRay(ray geom.Ray, contact *Contact) bool {
	if ray.IsDegenerate() {
		return false
	}

	s.Update()
	m := ray.Origin.Sub(s.center)
	b := m.Dot(ray.Direction)
	c := m.Dot(m) - s.radius*s.radius

	// outside and pointing away
	if c > 0 && b > 0 {
		return false
	}

	discriminant := b*b - c
	if discriminant < 0 {
		return false
	}

	t := -b - math.Sqrt(discriminant)
	if t < 0 {
		t = 0
	}
	if !ray.Accepts(t) {
		return false
	}

	contact.set(ray.At(t), t)
	return true
}

func (s *Sphere) Clone() Volume {
	c := *s
	c.transformChanged = true
	return &c
}
