package volume

import (
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// OBB is a box that follows the rotation of its owner.
type OBB struct {
	base
	localCenter mgl64.Vec3
	localHalf   mgl64.Vec3

	center mgl64.Vec3
	axes   [3]mgl64.Vec3
	half   mgl64.Vec3
	points [8]mgl64.Vec3
}

func NewOBB(center, halfExtents mgl64.Vec3) *OBB {
	return &OBB{base: newBase(), localCenter: center, localHalf: halfExtents}
}

// NewOBBFromPoints fits an OBB aligned with the local axes around points
func NewOBBFromPoints(points []mgl64.Vec3) *OBB {
	b := BoundsFromPoints(points)
	return NewOBB(b.Center(), b.HalfExtents())
}

func (o *OBB) Kind() Kind { return KindOBB }

func (o *OBB) SetLocalBox(center, halfExtents mgl64.Vec3) {
	o.localCenter = center
	o.localHalf = halfExtents
	o.transformChanged = true
}

func (o *OBB) Update() {
	if !o.refresh() {
		return
	}

	w := o.worldTransform
	o.center = w.TransformPoint(o.localCenter)
	o.axes = [3]mgl64.Vec3{w.Right(), w.Up(), w.Forward()}
	scaled := geom.MulComponents(w.Scale, o.localHalf)
	o.half = mgl64.Vec3{math.Abs(scaled[0]), math.Abs(scaled[1]), math.Abs(scaled[2])}

	for i := range o.points {
		p := o.center
		for axis := 0; axis < 3; axis++ {
			offset := o.axes[axis].Mul(o.half[axis])
			if i&(1<<axis) != 0 {
				p = p.Add(offset)
			} else {
				p = p.Sub(offset)
			}
		}
		o.points[i] = p
	}
}

func (o *OBB) WorldTransform() geom.Transform {
	o.Update()
	return o.worldTransform
}

// Axes returns the world space box axes
func (o *OBB) Axes() [3]mgl64.Vec3 {
	o.Update()
	return o.axes
}

func (o *OBB) HalfExtents() mgl64.Vec3 {
	o.Update()
	return o.half
}

func (o *OBB) Center() mgl64.Vec3 {
	o.Update()
	return o.center
}

func (o *OBB) Bounds() Bounds {
	return BoundsFromPoints(o.Points())
}

func (o *OBB) Points() []mgl64.Vec3 {
	o.Update()
	return o.points[:]
}

func (o *OBB) Support(direction mgl64.Vec3) mgl64.Vec3 {
	o.Update()
	p := o.center
	for i, axis := range o.axes {
		if axis.Dot(direction) >= 0 {
			p = p.Add(axis.Mul(o.half[i]))
		} else {
			p = p.Sub(axis.Mul(o.half[i]))
		}
	}

	return p
}

func (o *OBB) IntersectPoint(point mgl64.Vec3, contact *Contact) bool {
	o.Update()
	d := point.Sub(o.center)
	for i, axis := range o.axes {
		if math.Abs(d.Dot(axis)) > o.half[i] {
			return false
		}
	}

	contact.set(point, d.Len())
	return true
}

// IntersectRay runs the slab test along the box axes.
func (o *OBB) IntersectRay(ray geom.Ray, contact *Contact) bool {
	if ray.IsDegenerate() {
		return false
	}

	o.Update()
	p := o.center.Sub(ray.Origin)
	tMin, tMax := 0.0, math.Inf(1)
	for i, axis := range o.axes {
		e := axis.Dot(p)
		f := axis.Dot(ray.Direction)

		if math.Abs(f) < 1e-12 {
			if -e-o.half[i] > 0 || -e+o.half[i] < 0 {
				return false
			}
			continue
		}

		t1 := (e + o.half[i]) / f
		t2 := (e - o.half[i]) / f
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

func (o *OBB) Clone() Volume {
	c := *o
	c.transformChanged = true
	return &c
}

func (o *OBB) box() box {
	o.Update()
	return box{center: o.center, axes: o.axes, half: o.half, points: o.points[:]}
}
