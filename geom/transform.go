// Package geom holds the value types shared by the scene graph and the bounding volumes:
// transforms, rays, planes and frustums. Everything here is a plain value, safe to copy.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	AxisRight   = mgl64.Vec3{1, 0, 0}
	AxisUp      = mgl64.Vec3{0, 1, 0}
	AxisForward = mgl64.Vec3{0, 0, 1}
)

// Transform represents a translation, a rotation and a non-uniform scale.
// Applied to a point it scales first, then rotates, then translates.
type Transform struct {
	Rotation    mgl64.Quat
	Translation mgl64.Vec3
	Scale       mgl64.Vec3
}

// NewTransform creates an identity transform
func NewTransform() Transform {
	return Transform{
		Rotation:    mgl64.QuatIdent(),
		Translation: mgl64.Vec3{0, 0, 0},
		Scale:       mgl64.Vec3{1, 1, 1},
	}
}

// NewTransformTRS creates a transform from its three parts
func NewTransformTRS(translation mgl64.Vec3, rotation mgl64.Quat, scale mgl64.Vec3) Transform {
	return Transform{
		Rotation:    rotation,
		Translation: translation,
		Scale:       scale,
	}
}

// Translated returns an identity transform moved to translation.
func Translated(translation mgl64.Vec3) Transform {
	t := NewTransform()
	t.Translation = translation
	return t
}

// Compose returns parent ∘ local: the transform of something expressed in local space,
// seen from the space parent is expressed in.
func Compose(parent, local Transform) Transform {
	return Transform{
		Rotation:    parent.Rotation.Mul(local.Rotation),
		Translation: parent.TransformPoint(local.Translation),
		Scale:       MulComponents(parent.Scale, local.Scale),
	}
}

// Relative is the inverse of Compose: Compose(parent, Relative(parent, world)) == world.
func Relative(parent, world Transform) Transform {
	inverse := parent.Rotation.Inverse()

	return Transform{
		Rotation:    inverse.Mul(world.Rotation),
		Translation: DivComponents(inverse.Rotate(world.Translation.Sub(parent.Translation)), parent.Scale),
		Scale:       DivComponents(world.Scale, parent.Scale),
	}
}

// TransformPoint maps a point from local space into the space of t
func (t Transform) TransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return t.Translation.Add(t.Rotation.Rotate(MulComponents(t.Scale, p)))
}

// InverseTransformPoint maps a point from the space of t back into local space
func (t Transform) InverseTransformPoint(p mgl64.Vec3) mgl64.Vec3 {
	return DivComponents(t.Rotation.Inverse().Rotate(p.Sub(t.Translation)), t.Scale)
}

// TransformDirection rotates a direction, ignoring translation and scale
func (t Transform) TransformDirection(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}

func (t Transform) Up() mgl64.Vec3      { return t.Rotation.Rotate(AxisUp) }
func (t Transform) Forward() mgl64.Vec3 { return t.Rotation.Rotate(AxisForward) }
func (t Transform) Right() mgl64.Vec3   { return t.Rotation.Rotate(AxisRight) }

// Matrix returns the homogeneous T*R*S matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// NormalMatrix returns the inverse transpose of the upper 3x3 of Matrix.
func (t Transform) NormalMatrix() mgl64.Mat3 {
	return mgl64.Mat4Normal(t.Matrix())
}

// Decompose extracts translation, rotation and scale from a T*R*S matrix.
// A negative determinant is attributed to the X axis.
func Decompose(m mgl64.Mat4) Transform {
	c0, c1, c2, c3 := m.Cols()

	scale := mgl64.Vec3{c0.Vec3().Len(), c1.Vec3().Len(), c2.Vec3().Len()}
	if m.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}

	rotation := mgl64.QuatIdent()
	if scale[0] != 0 && scale[1] != 0 && scale[2] != 0 {
		r := mgl64.Mat4FromCols(
			c0.Mul(1/scale[0]),
			c1.Mul(1/scale[1]),
			c2.Mul(1/scale[2]),
			mgl64.Vec4{0, 0, 0, 1},
		)
		rotation = mgl64.Mat4ToQuat(r).Normalize()
	}

	return Transform{
		Rotation:    rotation,
		Translation: c3.Vec3(),
		Scale:       scale,
	}
}

// IsIdentity reports whether t leaves every point unchanged
func (t Transform) IsIdentity() bool {
	return t.ApproxEqual(NewTransform(), 1e-12)
}

// ApproxEqual compares two transforms, treating q and -q as the same rotation.
func (t Transform) ApproxEqual(other Transform, epsilon float64) bool {
	if !nearVec3(t.Translation, other.Translation, epsilon) || !nearVec3(t.Scale, other.Scale, epsilon) {
		return false
	}

	return math.Abs(t.Rotation.Dot(other.Rotation)) >= 1-epsilon
}

// nearVec3 compares per component with an absolute tolerance, so values close to zero
// are not held to a relative one.
func nearVec3(a, b mgl64.Vec3, epsilon float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// MulComponents multiplies two vectors component-wise
func MulComponents(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// DivComponents divides a by b component-wise; a zero divisor yields zero.
func DivComponents(a, b mgl64.Vec3) mgl64.Vec3 {
	var r mgl64.Vec3
	for i := 0; i < 3; i++ {
		if b[i] != 0 {
			r[i] = a[i] / b[i]
		}
	}
	return r
}

// MaxAbsComponent returns the largest absolute component of v
func MaxAbsComponent(v mgl64.Vec3) float64 {
	return math.Max(math.Abs(v[0]), math.Max(math.Abs(v[1]), math.Abs(v[2])))
}
