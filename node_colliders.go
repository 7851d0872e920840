package arbor

import (
	"slices"

	"github.com/akmonengine/arbor/volume"
	"github.com/google/uuid"
)

// AddCollider attaches v to n under name. An empty name gets a generated one;
// a name already used on n is fatal.
func (n *Node) AddCollider(name string, v volume.Volume) *Collider {
	n.mustAlive("add collider")
	if v == nil {
		n.world.fatalf("cannot add a nil volume to %q", n.name)
	}
	if name == "" {
		name = uuid.NewString()
	}
	if _, ok := n.colliders[name]; ok {
		n.world.fatalf("cannot add collider %q to %q: name already used", name, n.name)
	}

	c := newCollider(n, name, v)
	v.OnNodeTransformChanged(n.worldTransform)

	if n.colliders == nil {
		n.colliders = make(map[string]*Collider)
	}
	n.colliders[name] = c
	n.colliderOrder = append(n.colliderOrder, name)
	c.sync()

	return c
}

// Collider returns nil when n has no collider named name.
func (n *Node) Collider(name string) *Collider {
	return n.colliders[name]
}

// Colliders returns the colliders of n in insertion order.
func (n *Node) Colliders() []*Collider {
	out := make([]*Collider, 0, len(n.colliderOrder))
	for _, name := range n.colliderOrder {
		out = append(out, n.colliders[name])
	}

	return out
}

// RemoveCollider unregisters the collider named name; it returns false if there is none.
// Pairs involving it end on the next sweep.
func (n *Node) RemoveCollider(name string) bool {
	c, ok := n.colliders[name]
	if !ok {
		return false
	}

	c.removed = true
	n.world.Collisions.sync(c)
	delete(n.colliders, name)
	n.colliderOrder = slices.DeleteFunc(n.colliderOrder, func(other string) bool {
		return other == name
	})
	if n.frustumCollider == c {
		n.frustumCollider = nil
	}

	return true
}

// SetFrustumCollider picks the collider IsInFrustum tests; nil clears it.
func (n *Node) SetFrustumCollider(c *Collider) {
	n.mustAlive("set frustum collider")
	if c != nil && (c.node != n || c.removed) {
		n.world.fatalf("cannot use collider %q as frustum collider of %q: it belongs to another node", c.name, n.name)
	}

	n.frustumCollider = c
}

func (n *Node) FrustumCollider() *Collider {
	return n.frustumCollider
}

// IsInFrustum tests the frustum collider against the camera frustum.
// A node without frustum collider is always considered visible.
func (n *Node) IsInFrustum(camera Camera) bool {
	if n.frustumCollider == nil {
		return true
	}

	frustum := volume.NewFrustum(camera.Frustum())
	return volume.Intersect(frustum, n.frustumCollider.volume, nil)
}
