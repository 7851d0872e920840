package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func unitFrustum() Frustum {
	return NewFrustum(
		[4]mgl64.Vec3{{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1}},
		[4]mgl64.Vec3{{-3, -3, 5}, {3, -3, 5}, {3, 3, 5}, {-3, 3, 5}},
	)
}

func TestPlaneFromPoints(t *testing.T) {
	p := PlaneFromPoints(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})

	if !vec3Equal(p.Normal, mgl64.Vec3{0, 0, 1}, 1e-12) {
		t.Errorf("Expected normal (0,0,1), got %v", p.Normal)
	}
	if d := p.Distance(mgl64.Vec3{5, 5, 2}); math.Abs(d-2) > 1e-12 {
		t.Errorf("Expected distance 2, got %v", d)
	}

	degenerate := PlaneFromPoints(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{2, 0, 0})
	if degenerate.Normal.LenSqr() != 0 {
		t.Errorf("Expected zero plane for collinear points, got %v", degenerate)
	}
}

func TestFrustumPlanesFaceInwards(t *testing.T) {
	f := unitFrustum()
	center := f.Center()

	for i, plane := range f.Planes {
		if plane.Distance(center) <= 0 {
			t.Errorf("Expected plane %d to face the centroid, distance %v", i, plane.Distance(center))
		}
	}
}

func TestFrustumContains(t *testing.T) {
	f := unitFrustum()

	tests := []struct {
		name     string
		point    mgl64.Vec3
		expected bool
	}{
		{"center", f.Center(), true},
		{"on near corner", mgl64.Vec3{1, 1, 1}, true},
		{"in front of near", mgl64.Vec3{0, 0, 0.5}, false},
		{"behind far", mgl64.Vec3{0, 0, 6}, false},
		{"outside side wall", mgl64.Vec3{2.5, 0, 2}, false},
		{"inside wide far end", mgl64.Vec3{2.5, 0, 4.9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Contains(tt.point); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestFrustumFromMatrix(t *testing.T) {
	view := mgl64.LookAtV(mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, 0}, AxisUp)
	projection := mgl64.Perspective(mgl64.DegToRad(60), 1, 1, 100)
	f := FrustumFromMatrix(projection.Mul4(view))

	if !f.Contains(mgl64.Vec3{0, 0, 0}) {
		t.Error("Expected the look-at target inside the frustum")
	}
	if f.Contains(mgl64.Vec3{0, 0, 20}) {
		t.Error("Expected a point behind the eye outside the frustum")
	}
	if f.Contains(mgl64.Vec3{50, 0, 0}) {
		t.Error("Expected a far lateral point outside the frustum")
	}
}

func TestFrustumTransformed(t *testing.T) {
	f := unitFrustum().Transformed(Translated(mgl64.Vec3{100, 0, 0}))

	if f.Contains(mgl64.Vec3{0, 0, 3}) {
		t.Error("Expected the old center outside the moved frustum")
	}
	if !f.Contains(mgl64.Vec3{100, 0, 3}) {
		t.Error("Expected the moved center inside the moved frustum")
	}
}

func TestRay(t *testing.T) {
	r := NewRay(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 4})
	if !vec3Equal(r.Direction, AxisForward, 1e-12) {
		t.Errorf("Expected normalized direction, got %v", r.Direction)
	}
	if !vec3Equal(r.At(2), mgl64.Vec3{1, 0, 2}, 1e-12) {
		t.Errorf("Expected (1,0,2), got %v", r.At(2))
	}
	if !r.Accepts(1e9) {
		t.Error("Expected an unbounded ray to accept any positive distance")
	}

	s := NewSegment(mgl64.Vec3{}, mgl64.Vec3{0, 3, 4})
	if s.Length != 5 {
		t.Errorf("Expected length 5, got %v", s.Length)
	}
	if s.Accepts(5.1) || s.Accepts(-0.1) {
		t.Error("Expected segment to reject distances outside [0, 5]")
	}

	if !NewRay(mgl64.Vec3{}, mgl64.Vec3{}).IsDegenerate() {
		t.Error("Expected zero direction to be degenerate")
	}
}
