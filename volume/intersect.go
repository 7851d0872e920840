package volume

import (
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/akmonengine/arbor/gjk"
	"github.com/go-gl/mathgl/mgl64"
)

type pairTest func(a, b Volume, contact *Contact) bool

// pairTests only holds the upper triangle: pairTests[a][b] with a <= b.
var pairTests [kindCount][kindCount]pairTest

func init() {
	register(KindAABB, KindAABB, boxBox)
	register(KindAABB, KindOBB, boxBox)
	register(KindAABB, KindSphere, boxSphere)
	register(KindAABB, KindFrustum, convexFrustum)
	register(KindOBB, KindOBB, boxBox)
	register(KindOBB, KindSphere, boxSphere)
	register(KindOBB, KindFrustum, convexFrustum)
	register(KindSphere, KindSphere, sphereSphere)
	register(KindSphere, KindFrustum, sphereFrustum)
	register(KindFrustum, KindFrustum, convexFrustum)
}

func register(a, b Kind, test pairTest) {
	if a > b {
		fatalf("pair test %s x %s registered out of order", a, b)
	}
	pairTests[a][b] = test
}

// Intersect tests two volumes against each other.
//
// Arguments are put in canonical order before dispatch: by kind, then by center for
// volumes of the same kind. Intersect(a, b) and Intersect(b, a) therefore run the exact
// same computation and always agree. The contact point and distance describe the pair,
// not one side of it.
func Intersect(a, b Volume, contact *Contact) bool {
	if a == nil || b == nil {
		fatalf("cannot intersect a nil volume")
	}

	if canonicalSwap(a, b) {
		a, b = b, a
	}

	test := pairTests[a.Kind()][b.Kind()]
	if test == nil {
		fatalf("no intersection test for %s x %s", a.Kind(), b.Kind())
	}

	return test(a, b, contact)
}

func canonicalSwap(a, b Volume) bool {
	if a.Kind() != b.Kind() {
		return a.Kind() > b.Kind()
	}

	ca, cb := a.Center(), b.Center()
	for i := 0; i < 3; i++ {
		if ca[i] != cb[i] {
			return ca[i] > cb[i]
		}
	}

	return false
}

// ============================================================================
// Boxes
// ============================================================================

// box is the common shape of AABB and OBB for separating axis tests.
type box struct {
	center mgl64.Vec3
	axes   [3]mgl64.Vec3
	half   mgl64.Vec3
	points []mgl64.Vec3
}

type boxed interface {
	box() box
}

func asBox(v Volume) box {
	b, ok := v.(boxed)
	if !ok {
		fatalf("%s volume is not a box", v.Kind())
	}

	return b.box()
}

func (b box) project(axis mgl64.Vec3) Interval {
	c := b.center.Dot(axis)
	r := 0.0
	for i, a := range b.axes {
		r += b.half[i] * math.Abs(a.Dot(axis))
	}

	return Interval{Min: c - r, Max: c + r}
}

// planes returns the six inward facing face planes
func (b box) planes() []geom.Plane {
	planes := make([]geom.Plane, 0, 6)
	for i, axis := range b.axes {
		c := b.center.Dot(axis)
		// -axis·p + (c + h) >= 0 and axis·p - (c - h) >= 0
		planes = append(planes,
			geom.Plane{Normal: axis.Mul(-1), D: c + b.half[i]},
			geom.Plane{Normal: axis, D: -(c - b.half[i])},
		)
	}

	return planes
}

func separatingAxes(a, b box) []mgl64.Vec3 {
	axes := make([]mgl64.Vec3, 0, 15)
	axes = append(axes, a.axes[:]...)
	axes = append(axes, b.axes[:]...)
	for _, ea := range a.axes {
		for _, eb := range b.axes {
			if c := ea.Cross(eb); c.LenSqr() > 1e-12 {
				axes = append(axes, c)
			}
		}
	}

	return axes
}

// boxBox is the separating axis test over both face normal sets plus the edge
// cross products.
func boxBox(a, b Volume, contact *Contact) bool {
	ba, bb := asBox(a), asBox(b)

	for _, axis := range separatingAxes(ba, bb) {
		if !ba.project(axis).Overlaps(bb.project(axis)) {
			return false
		}
	}

	contact.set(overlapCenter(a.Bounds(), b.Bounds()), ba.center.Sub(bb.center).Len())
	return true
}

func boxSphere(a, b Volume, contact *Contact) bool {
	bx := asBox(a)
	s := As[*Sphere](b)
	center, radius := s.Center(), s.Radius()

	closest := bx.center
	d := center.Sub(bx.center)
	for i, axis := range bx.axes {
		dist := mgl64.Clamp(d.Dot(axis), -bx.half[i], bx.half[i])
		closest = closest.Add(axis.Mul(dist))
	}

	if closest.Sub(center).LenSqr() > radius*radius {
		return false
	}

	contact.set(closest, d.Len())
	return true
}

// ============================================================================
// Spheres
// ============================================================================

func sphereSphere(a, b Volume, contact *Contact) bool {
	sa, sb := As[*Sphere](a), As[*Sphere](b)
	ca, cb := sa.Center(), sb.Center()
	ra, rb := sa.Radius(), sb.Radius()

	d := cb.Sub(ca)
	distance := d.Len()
	if distance > ra+rb {
		return false
	}

	point := ca
	if distance > 0 {
		n := d.Mul(1 / distance)
		// midpoint of the two surface points facing each other
		point = ca.Add(n.Mul(ra)).Add(cb.Sub(n.Mul(rb))).Mul(0.5)
	}

	contact.set(point, distance)
	return true
}

// ============================================================================
// Frustums
// ============================================================================

// outside reports whether every point lies behind plane.
func outside(plane geom.Plane, points []mgl64.Vec3) bool {
	for _, p := range points {
		if plane.Distance(p) >= 0 {
			return false
		}
	}

	return true
}

func volumePlanes(v Volume) []geom.Plane {
	if f, ok := v.(*Frustum); ok {
		fr := f.WorldFrustum()
		return fr.Planes[:]
	}

	return asBox(v).planes()
}

// convexFrustum classifies the extreme points of each side against the planes of the
// other, then confirms with GJK since plane rejection alone is conservative at edges.
func convexFrustum(a, b Volume, contact *Contact) bool {
	f := As[*Frustum](b)

	for _, plane := range volumePlanes(f) {
		if outside(plane, a.Points()) {
			return false
		}
	}
	for _, plane := range volumePlanes(a) {
		if outside(plane, f.Points()) {
			return false
		}
	}

	if !gjk.Overlaps(a, b) {
		return false
	}

	contact.set(overlapCenter(a.Bounds(), b.Bounds()), a.Center().Sub(b.Center()).Len())
	return true
}

func sphereFrustum(a, b Volume, contact *Contact) bool {
	s := As[*Sphere](a)
	f := As[*Frustum](b)
	center, radius := s.Center(), s.Radius()

	for _, plane := range f.WorldFrustum().Planes {
		if plane.Distance(center) < -radius {
			return false
		}
	}

	if !gjk.Overlaps(a, b) {
		return false
	}

	contact.set(overlapCenter(a.Bounds(), b.Bounds()), center.Sub(f.Center()).Len())
	return true
}

// overlapCenter returns the center of the intersection of two bounds, or the midpoint of
// their centers when they do not overlap.
func overlapCenter(a, b Bounds) mgl64.Vec3 {
	if !a.Overlaps(b) {
		return a.Center().Add(b.Center()).Mul(0.5)
	}

	var o Bounds
	for i := 0; i < 3; i++ {
		o.Min[i] = math.Max(a.Min[i], b.Min[i])
		o.Max[i] = math.Min(a.Max[i], b.Max[i])
	}

	return o.Center()
}
