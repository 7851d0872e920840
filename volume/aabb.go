package volume

import (
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// AABB stays aligned with the world axes: under rotation its world bounds grow to
// enclose the rotated local box.
type AABB struct {
	base
	localBounds Bounds
	worldBounds Bounds
	points      [8]mgl64.Vec3
}

func NewAABB(b Bounds) *AABB {
	return &AABB{base: newBase(), localBounds: b}
}

// NewAABBFromPoints encloses a cloud of local space points
func NewAABBFromPoints(points []mgl64.Vec3) *AABB {
	return NewAABB(BoundsFromPoints(points))
}

func (a *AABB) Kind() Kind { return KindAABB }

func (a *AABB) LocalBounds() Bounds {
	return a.localBounds
}

func (a *AABB) SetLocalBounds(b Bounds) {
	a.localBounds = b
	a.transformChanged = true
}

func (a *AABB) Update() {
	if !a.refresh() {
		return
	}

	corners := a.localBounds.Corners()
	for i, c := range corners {
		corners[i] = a.worldTransform.TransformPoint(c)
	}
	a.worldBounds = BoundsFromPoints(corners[:])
	a.points = a.worldBounds.Corners()
}

func (a *AABB) WorldTransform() geom.Transform {
	a.Update()
	return a.worldTransform
}

func (a *AABB) Bounds() Bounds {
	a.Update()
	return a.worldBounds
}

func (a *AABB) Points() []mgl64.Vec3 {
	a.Update()
	return a.points[:]
}

func (a *AABB) Center() mgl64.Vec3 {
	return a.Bounds().Center()
}

func (a *AABB) Support(direction mgl64.Vec3) mgl64.Vec3 {
	b := a.Bounds()
	var p mgl64.Vec3
	for i := 0; i < 3; i++ {
		if direction[i] >= 0 {
			p[i] = b.Max[i]
		} else {
			p[i] = b.Min[i]
		}
	}

	return p
}

func (a *AABB) IntersectPoint(point mgl64.Vec3, contact *Contact) bool {
	b := a.Bounds()
	if !b.ContainsPoint(point) {
		return false
	}

	contact.set(point, point.Sub(b.Center()).Len())
	return true
}

// IntersectRay is the slab test; the distance is 0 when the ray starts inside.
func (a *AABB) IntersectRay(ray geom.Ray, contact *Contact) bool {
	if ray.IsDegenerate() {
		return false
	}

	b := a.Bounds()
	tMin, tMax := 0.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(ray.Direction[i]) < 1e-12 {
			if ray.Origin[i] < b.Min[i] || ray.Origin[i] > b.Max[i] {
				return false
			}
			continue
		}

		inv := 1.0 / ray.Direction[i]
		t1 := (b.Min[i] - ray.Origin[i]) * inv
		t2 := (b.Max[i] - ray.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
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

func (a *AABB) Clone() Volume {
	c := *a
	c.transformChanged = true
	return &c
}

// box exposes the AABB to the shared box routines.
func (a *AABB) box() box {
	b := a.Bounds()
	return box{
		center: b.Center(),
		axes:   [3]mgl64.Vec3{geom.AxisRight, geom.AxisUp, geom.AxisForward},
		half:   b.HalfExtents(),
		points: a.points[:],
	}
}
