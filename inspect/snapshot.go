package inspect

import (
	"fmt"
	"math"

	"github.com/akmonengine/arbor"
	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot is a plain copy of a world's scene graph, safe to hand to other goroutines.
type Snapshot struct {
	World string         `json:"world"`
	Step  uint64         `json:"step"`
	Roots []NodeSnapshot `json:"roots"`
}

type NodeSnapshot struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Enabled     bool               `json:"enabled"`
	Hidden      bool               `json:"hidden,omitempty"`
	Translation [3]float64         `json:"translation"`
	Rotation    [4]float64         `json:"rotation"`
	Scale       [3]float64         `json:"scale"`
	Components  []string           `json:"components,omitempty"`
	Colliders   []ColliderSnapshot `json:"colliders,omitempty"`
	Children    []NodeSnapshot     `json:"children,omitempty"`
}

type ColliderSnapshot struct {
	Name             string     `json:"name"`
	Kind             string     `json:"kind"`
	Enabled          bool       `json:"enabled"`
	Intersecting     bool       `json:"intersecting"`
	BlockScreencasts bool       `json:"block_screencasts"`
	BlockRaycasts    bool       `json:"block_raycasts"`
	ReceiveRaycasts  bool       `json:"receive_raycasts"`
	Min              [3]float64 `json:"min"`
	Max              [3]float64 `json:"max"`
	Partners         []string   `json:"partners,omitempty"`
}

// Take copies the state of w. It must run on the goroutine stepping w.
func Take(w *arbor.World) Snapshot {
	s := Snapshot{World: w.ID().String(), Step: w.Steps()}
	for _, root := range w.Roots() {
		s.Roots = append(s.Roots, nodeSnapshot(root, false))
	}

	return s
}

func nodeSnapshot(n *arbor.Node, hidden bool) NodeSnapshot {
	local := n.LocalTransform()
	q := local.Rotation

	ns := NodeSnapshot{
		ID:          n.ID().String(),
		Name:        n.Name(),
		Enabled:     n.IsEnabled(),
		Hidden:      hidden,
		Translation: vec3(local.Translation),
		Rotation:    [4]float64{q.V.X(), q.V.Y(), q.V.Z(), q.W},
		Scale:       vec3(local.Scale),
	}

	for _, c := range n.Components() {
		ns.Components = append(ns.Components, fmt.Sprintf("%T", c))
	}
	for _, c := range n.Colliders() {
		ns.Colliders = append(ns.Colliders, colliderSnapshot(c))
	}
	for _, child := range n.Children() {
		ns.Children = append(ns.Children, nodeSnapshot(child, false))
	}
	for _, child := range n.HiddenChildren() {
		ns.Children = append(ns.Children, nodeSnapshot(child, true))
	}

	return ns
}

func colliderSnapshot(c *arbor.Collider) ColliderSnapshot {
	b := c.Bounds()
	cs := ColliderSnapshot{
		Name:             c.Name(),
		Kind:             c.Volume().Kind().String(),
		Enabled:          c.IsEnabled(),
		Intersecting:     c.IsIntersecting(),
		BlockScreencasts: c.IsBlockScreencasts(),
		BlockRaycasts:    c.IsBlockRaycasts(),
		ReceiveRaycasts:  c.IsReceiveRaycasts(),
		Min:              vec3(b.Min),
		Max:              vec3(b.Max),
	}
	for _, p := range c.Partners() {
		cs.Partners = append(cs.Partners, p.Node().Name()+"/"+p.Name())
	}

	return cs
}

// Find returns the node with the given id, searching the whole tree.
func (s Snapshot) Find(id string) (NodeSnapshot, bool) {
	var walk func(nodes []NodeSnapshot) (NodeSnapshot, bool)
	walk = func(nodes []NodeSnapshot) (NodeSnapshot, bool) {
		for _, n := range nodes {
			if n.ID == id {
				return n, true
			}
			if found, ok := walk(n.Children); ok {
				return found, true
			}
		}
		return NodeSnapshot{}, false
	}

	return walk(s.Roots)
}

// Count returns the number of nodes in the snapshot.
func (s Snapshot) Count() int {
	var count func(nodes []NodeSnapshot) int
	count = func(nodes []NodeSnapshot) int {
		total := len(nodes)
		for _, n := range nodes {
			total += count(n.Children)
		}
		return total
	}

	return count(s.Roots)
}

func vec3(v mgl64.Vec3) [3]float64 {
	return [3]float64{v.X(), v.Y(), v.Z()}
}

// finite maps the infinite distances of misses to -1, JSON has no infinity.
func finite(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return -1
	}
	return f
}
