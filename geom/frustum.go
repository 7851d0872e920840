package geom

import "github.com/go-gl/mathgl/mgl64"

// Plane is the set of points p where Normal·p + D == 0.
// Distance is positive on the side Normal points to.
type Plane struct {
	Normal mgl64.Vec3
	D      float64
}

// PlaneFromPoints builds the plane through three points, wound counter-clockwise around Normal.
// Collinear points give a zero plane.
func PlaneFromPoints(a, b, c mgl64.Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < 1e-24 {
		return Plane{}
	}
	n = n.Normalize()

	return Plane{Normal: n, D: -n.Dot(a)}
}

// Distance returns the signed distance from p to the plane
func (p Plane) Distance(point mgl64.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Flip returns the same plane facing the other way
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Mul(-1), D: -p.D}
}

const (
	PlaneNear = iota
	PlaneFar
	PlaneLeft
	PlaneRight
	PlaneBottom
	PlaneTop
)

// Frustum is a convex six-sided volume. Planes face inwards; Points holds the near quad
// then the far quad, each ordered bottom-left, bottom-right, top-right, top-left.
type Frustum struct {
	Planes [6]Plane
	Points [8]mgl64.Vec3
}

// NewFrustum builds a frustum from its near and far quads
func NewFrustum(near, far [4]mgl64.Vec3) Frustum {
	var points [8]mgl64.Vec3
	copy(points[:4], near[:])
	copy(points[4:], far[:])

	return FrustumFromPoints(points)
}

// FrustumFromPoints rebuilds the six planes from the eight corners.
func FrustumFromPoints(points [8]mgl64.Vec3) Frustum {
	f := Frustum{Points: points}
	n := points[:4]
	fa := points[4:]

	f.Planes[PlaneNear] = PlaneFromPoints(n[0], n[1], n[2])
	f.Planes[PlaneFar] = PlaneFromPoints(fa[0], fa[1], fa[2])
	f.Planes[PlaneLeft] = PlaneFromPoints(n[0], n[3], fa[0])
	f.Planes[PlaneRight] = PlaneFromPoints(n[1], n[2], fa[1])
	f.Planes[PlaneBottom] = PlaneFromPoints(n[0], n[1], fa[0])
	f.Planes[PlaneTop] = PlaneFromPoints(n[3], n[2], fa[3])

	// Orient every plane towards the centroid, whatever the winding of the input.
	center := f.Center()
	for i := range f.Planes {
		if f.Planes[i].Distance(center) < 0 {
			f.Planes[i] = f.Planes[i].Flip()
		}
	}

	return f
}

// FrustumFromMatrix builds the frustum seen through a view-projection matrix,
// by unprojecting the corners of the normalized device cube.
func FrustumFromMatrix(viewProjection mgl64.Mat4) Frustum {
	inverse := viewProjection.Inv()
	ndc := [8]mgl64.Vec3{
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	}

	var points [8]mgl64.Vec3
	for i, p := range ndc {
		points[i] = mgl64.TransformCoordinate(p, inverse)
	}

	return FrustumFromPoints(points)
}

// Transformed returns the frustum with every corner mapped through t
func (f Frustum) Transformed(t Transform) Frustum {
	var points [8]mgl64.Vec3
	for i, p := range f.Points {
		points[i] = t.TransformPoint(p)
	}

	return FrustumFromPoints(points)
}

// Center returns the centroid of the corners
func (f Frustum) Center() mgl64.Vec3 {
	var c mgl64.Vec3
	for _, p := range f.Points {
		c = c.Add(p)
	}

	return c.Mul(1.0 / 8.0)
}

// Contains checks if a point is inside or on the frustum
func (f Frustum) Contains(point mgl64.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.Distance(point) < -1e-9 {
			return false
		}
	}

	return true
}
