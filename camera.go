package arbor

import (
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Camera turns screen points into world rays and bounds what is visible.
type Camera interface {
	// RayFromScreen returns the ray under a window point, origin at the top left corner.
	// A degenerate ray is returned when the point cannot be unprojected.
	RayFromScreen(point mgl64.Vec2) geom.Ray
	// Frustum returns the world space view volume.
	Frustum() geom.Frustum
}

// PerspectiveCamera looks from Eye to Target, OpenGL style.
type PerspectiveCamera struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
	// FovY in radians
	FovY   float64
	Near   float64
	Far    float64
	Width  int
	Height int
}

func NewPerspectiveCamera(width, height int) *PerspectiveCamera {
	return &PerspectiveCamera{
		Eye:    mgl64.Vec3{0, 0, 10},
		Target: mgl64.Vec3{0, 0, 0},
		Up:     geom.AxisUp,
		FovY:   math.Pi / 3,
		Near:   0.1,
		Far:    1000,
		Width:  width,
		Height: height,
	}
}

func (c *PerspectiveCamera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

func (c *PerspectiveCamera) Projection() mgl64.Mat4 {
	aspect := 1.0
	if c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}

	return mgl64.Perspective(c.FovY, aspect, c.Near, c.Far)
}

func (c *PerspectiveCamera) RayFromScreen(point mgl64.Vec2) geom.Ray {
	if c.Width <= 0 || c.Height <= 0 {
		return geom.Ray{}
	}

	view, projection := c.View(), c.Projection()
	y := float64(c.Height) - point.Y()

	near, err := mgl64.UnProject(mgl64.Vec3{point.X(), y, 0}, view, projection, 0, 0, c.Width, c.Height)
	if err != nil {
		return geom.Ray{}
	}
	far, err := mgl64.UnProject(mgl64.Vec3{point.X(), y, 1}, view, projection, 0, 0, c.Width, c.Height)
	if err != nil {
		return geom.Ray{}
	}

	return geom.NewRay(near, far.Sub(near))
}

func (c *PerspectiveCamera) Frustum() geom.Frustum {
	return geom.FrustumFromMatrix(c.Projection().Mul4(c.View()))
}
