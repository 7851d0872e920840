package volume

import (
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Frustum wraps a geom.Frustum expressed in local space.
type Frustum struct {
	base
	localFrustum geom.Frustum
	worldFrustum geom.Frustum
}

func NewFrustum(f geom.Frustum) *Frustum {
	return &Frustum{base: newBase(), localFrustum: f}
}

func (f *Frustum) Kind() Kind { return KindFrustum }

func (f *Frustum) SetLocalFrustum(fr geom.Frustum) {
	f.localFrustum = fr
	f.transformChanged = true
}

func (f *Frustum) Update() {
	if !f.refresh() {
		return
	}

	f.worldFrustum = f.localFrustum.Transformed(f.worldTransform)
}

func (f *Frustum) WorldTransform() geom.Transform {
	f.Update()
	return f.worldTransform
}

// WorldFrustum returns the planes and corners in world space
func (f *Frustum) WorldFrustum() geom.Frustum {
	f.Update()
	return f.worldFrustum
}

func (f *Frustum) Center() mgl64.Vec3 {
	return f.WorldFrustum().Center()
}

func (f *Frustum) Bounds() Bounds {
	return BoundsFromPoints(f.Points())
}

func (f *Frustum) Points() []mgl64.Vec3 {
	f.Update()
	return f.worldFrustum.Points[:]
}

func (f *Frustum) Support(direction mgl64.Vec3) mgl64.Vec3 {
	return support(f.Points(), direction)
}

func (f *Frustum) IntersectPoint(point mgl64.Vec3, contact *Contact) bool {
	fr := f.WorldFrustum()
	if !fr.Contains(point) {
		return false
	}

	contact.set(point, point.Sub(fr.Center()).Len())
	return true
}

// IntersectRay clips the ray against the six inward planes (Cyrus-Beck).
func (f *Frustum) IntersectRay(ray geom.Ray, contact *Contact) bool {
	if ray.IsDegenerate() {
		return false
	}

	fr := f.WorldFrustum()
	tMin, tMax := 0.0, math.Inf(1)
	for _, plane := range fr.Planes {
		denom := plane.Normal.Dot(ray.Direction)
		dist := plane.Distance(ray.Origin)

		if math.Abs(denom) < 1e-12 {
			if dist < 0 {
				return false
			}
			continue
		}

		t := -dist / denom
		if denom > 0 {
			tMin = math.Max(tMin, t)
		} else {
			tMax = math.Min(tMax, t)
		}
		if tMin > tMax {
			return false
		}
	}

	if !ray.Accepts(tMin) {
		return false
	}

	contact.set(ray.At(tMin), tMin)
	return true
}

func (f *Frustum) Clone() Volume {
	c := *f
	c.transformChanged = true
	return &c
}
