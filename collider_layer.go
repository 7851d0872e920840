package arbor

import (
	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// ColliderLayer groups colliders so they can be tested together, behind the box
// enclosing all of them. It does not own its members.
type ColliderLayer struct {
	name      string
	colliders orderedSet[*Collider]
}

func NewColliderLayer(name string) *ColliderLayer {
	return &ColliderLayer{name: name}
}

func (l *ColliderLayer) Name() string {
	return l.name
}

// Add returns false when c already belongs to the layer.
func (l *ColliderLayer) Add(c *Collider) bool {
	return l.colliders.add(c)
}

func (l *ColliderLayer) Remove(c *Collider) bool {
	return l.colliders.remove(c)
}

func (l *ColliderLayer) Contains(c *Collider) bool {
	return l.colliders.has(c)
}

func (l *ColliderLayer) Len() int {
	return l.colliders.len()
}

// Colliders returns the members still attached to a node, in insertion order.
func (l *ColliderLayer) Colliders() []*Collider {
	var out []*Collider
	for _, c := range l.colliders.items {
		if !c.removed {
			out = append(out, c)
		}
	}

	return out
}

// Bounds encloses every attached member; false when there is none.
func (l *ColliderLayer) Bounds() (volume.Bounds, bool) {
	members := l.Colliders()
	if len(members) == 0 {
		return volume.Bounds{}, false
	}

	b := members[0].Bounds()
	for _, c := range members[1:] {
		b = b.Merge(c.Bounds())
	}

	return b, true
}

// AABB returns a world space box around the layer, or nil when the layer is empty.
func (l *ColliderLayer) AABB() *volume.AABB {
	b, ok := l.Bounds()
	if !ok {
		return nil
	}

	return volume.NewAABB(b)
}

// Sphere returns a world space sphere around the layer, or nil when the layer is empty.
func (l *ColliderLayer) Sphere() *volume.Sphere {
	b, ok := l.Bounds()
	if !ok {
		return nil
	}

	center := b.Center()
	radius := 0.0
	for _, c := range l.Colliders() {
		for _, p := range c.Bounds().Corners() {
			radius = max(radius, p.Sub(center).Len())
		}
	}

	return volume.NewSphere(center, radius)
}

// Intersect tests c against every enabled member but c, calling fn for each overlap.
// It returns the number of overlaps.
func (l *ColliderLayer) Intersect(c *Collider, fn func(info CollisionInfo)) int {
	box := l.AABB()
	if box == nil || !volume.Intersect(box, c.volume, nil) {
		return 0
	}

	count := 0
	for _, member := range l.Colliders() {
		if member == c || !member.IsEnabled() {
			continue
		}

		info := NewCollisionInfo(c)
		if c.Intersect(member, &info) {
			count++
			if fn != nil {
				fn(info)
			}
		}
	}

	return count
}

// ContainsPoint returns the members containing point, in insertion order.
func (l *ColliderLayer) ContainsPoint(point mgl64.Vec3) []*Collider {
	var out []*Collider
	for _, member := range l.Colliders() {
		if member.IntersectPoint(point, nil) {
			out = append(out, member)
		}
	}

	return out
}
