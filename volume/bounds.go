package volume

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Bounds represents an axis-aligned box by its two extreme corners
type Bounds struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// BoundsFromPoints returns the smallest Bounds enclosing every point.
// An empty slice gives a zero Bounds at the origin.
func BoundsFromPoints(points []mgl64.Vec3) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}

	b := Bounds{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			b.Min[i] = math.Min(b.Min[i], p[i])
			b.Max[i] = math.Max(b.Max[i], p[i])
		}
	}

	return b
}

// BoundsFromCenter builds a box from its center and half extents
func BoundsFromCenter(center, halfExtents mgl64.Vec3) Bounds {
	return Bounds{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// ContainsPoint checks if a point is inside the Bounds
func (b Bounds) ContainsPoint(point mgl64.Vec3) bool {
	return point.X() >= b.Min.X() && point.X() <= b.Max.X() &&
		point.Y() >= b.Min.Y() && point.Y() <= b.Max.Y() &&
		point.Z() >= b.Min.Z() && point.Z() <= b.Max.Z()
}

// Overlaps checks if two Bounds overlap; touching faces count
func (b Bounds) Overlaps(other Bounds) bool {
	return b.Max.X() >= other.Min.X() && b.Min.X() <= other.Max.X() &&
		b.Max.Y() >= other.Min.Y() && b.Min.Y() <= other.Max.Y() &&
		b.Max.Z() >= other.Min.Z() && b.Min.Z() <= other.Max.Z()
}

func (b Bounds) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Bounds) HalfExtents() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Merge returns the Bounds enclosing both b and other
func (b Bounds) Merge(other Bounds) Bounds {
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], other.Min[i])
		b.Max[i] = math.Max(b.Max[i], other.Max[i])
	}

	return b
}

// ClosestPoint clamps p into the box
func (b Bounds) ClosestPoint(p mgl64.Vec3) mgl64.Vec3 {
	for i := 0; i < 3; i++ {
		p[i] = mgl64.Clamp(p[i], b.Min[i], b.Max[i])
	}

	return p
}

// Corners returns the 8 corners; bit 0 of the index selects Max.X, bit 1 Max.Y, bit 2 Max.Z.
func (b Bounds) Corners() [8]mgl64.Vec3 {
	var corners [8]mgl64.Vec3
	for i := range corners {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				corners[i][axis] = b.Max[axis]
			} else {
				corners[i][axis] = b.Min[axis]
			}
		}
	}

	return corners
}

// Interval is the projection of a volume onto an axis
type Interval struct {
	Min float64
	Max float64
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Max >= other.Min && other.Max >= i.Min
}
