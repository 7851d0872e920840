// Package volume implements the bounding volumes colliders are made of.
//
// The set of kinds is closed: AABB, OBB, Sphere and Frustum. Every volume keeps a local
// copy of its defining quantities plus a world copy derived from the owner's transform.
// The world copy is recomputed lazily, only when the transform changed since the last read.
package volume

import (
	"fmt"
	"math"

	"github.com/akmonengine/arbor/geom"
	"github.com/akmonengine/arbor/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Kind tags the concrete type of a Volume
type Kind uint8

const (
	KindAABB Kind = iota
	KindOBB
	KindSphere
	KindFrustum
	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindAABB:
		return "AABB"
	case KindOBB:
		return "OBB"
	case KindSphere:
		return "Sphere"
	case KindFrustum:
		return "Frustum"
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// NoDistance marks a Contact for which no distance was computed.
var NoDistance = math.Inf(1)

// Contact is the geometric part of a query result.
type Contact struct {
	Point    mgl64.Vec3
	Distance float64
}

func NewContact() Contact {
	return Contact{Distance: NoDistance}
}

func (c *Contact) set(point mgl64.Vec3, distance float64) {
	if c == nil {
		return
	}
	c.Point = point
	c.Distance = distance
}

// Volume is a bounding volume positioned by a local transform inside its owner.
// Every read refreshes the world copy first, so none of them can observe stale data.
type Volume interface {
	gjk.Convex

	Kind() Kind

	LocalTransform() geom.Transform
	SetLocalTransform(t geom.Transform)
	// OnNodeTransformChanged receives the owner's world transform.
	OnNodeTransformChanged(t geom.Transform)
	WorldTransform() geom.Transform
	// Update recomputes world geometry if the transform changed.
	Update()

	// Bounds returns the world space axis-aligned box enclosing the volume.
	Bounds() Bounds
	// Points returns the world space extreme points. The slice must not be modified.
	Points() []mgl64.Vec3

	IntersectPoint(point mgl64.Vec3, contact *Contact) bool
	IntersectRay(ray geom.Ray, contact *Contact) bool

	// Clone returns an independent copy whose world cache is marked dirty.
	Clone() Volume
}

// ExtentSource is anything that can describe itself by local space extreme points,
// typically renderable geometry.
type ExtentSource interface {
	LocalExtremes() []mgl64.Vec3
}

// base carries the transform state shared by every kind.
type base struct {
	localTransform   geom.Transform
	nodeTransform    geom.Transform
	worldTransform   geom.Transform
	transformChanged bool
}

func newBase() base {
	return base{
		localTransform:   geom.NewTransform(),
		nodeTransform:    geom.NewTransform(),
		worldTransform:   geom.NewTransform(),
		transformChanged: true,
	}
}

func (b *base) LocalTransform() geom.Transform {
	return b.localTransform
}

func (b *base) SetLocalTransform(t geom.Transform) {
	b.localTransform = t
	b.transformChanged = true
}

func (b *base) OnNodeTransformChanged(t geom.Transform) {
	b.nodeTransform = t
	b.transformChanged = true
}

// refresh recomputes the world transform; the caller must rebuild its derived geometry
// whenever it returns true.
func (b *base) refresh() bool {
	if !b.transformChanged {
		return false
	}

	b.worldTransform = geom.Compose(b.nodeTransform, b.localTransform)
	b.transformChanged = false

	return true
}

// As casts v to its concrete type, panicking when the kinds do not match.
func As[T Volume](v Volume) T {
	t, ok := v.(T)
	if !ok {
		if v == nil {
			fatalf("cannot cast nil volume to %T", t)
		}
		fatalf("cannot cast %s volume to %T", v.Kind(), t)
	}

	return t
}

func fatalf(format string, args ...interface{}) {
	panic(errors.Errorf("volume: "+format, args...))
}

func support(points []mgl64.Vec3, direction mgl64.Vec3) mgl64.Vec3 {
	best := points[0]
	bestDot := best.Dot(direction)
	for _, p := range points[1:] {
		if d := p.Dot(direction); d > bestDot {
			best, bestDot = p, d
		}
	}

	return best
}
