package arbor

import (
	"reflect"
	"strings"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Visibility tags a child entry. Hidden children are owned like any other child
// but are skipped by Children, ForeachChildren and Traversal.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
)

// NodeChangeKind tells what a NodeChange is about
type NodeChangeKind uint8

const (
	ChildAdded NodeChangeKind = iota
	ChildRemoved
	Renamed
	Destroyed
)

type NodeChange struct {
	Kind  NodeChangeKind
	Node  *Node
	Child *Node
}

type childEntry struct {
	node       *Node
	visibility Visibility
}

// Node is an element of the scene tree. A node exclusively owns its children,
// components and colliders; its parent is a non-owning back-reference.
type Node struct {
	id        uuid.UUID
	name      string
	world     *World
	parent    *Node
	enabled   bool
	destroyed bool

	local          geom.Transform
	worldTransform geom.Transform
	matrix         mgl64.Mat4
	normalMatrix   mgl64.Mat3
	matrixDirty    bool

	children []childEntry
	byName   map[string][]*Node

	components     map[reflect.Type][]Component
	componentTypes []reflect.Type

	colliders       map[string]*Collider
	colliderOrder   []string
	frustumCollider *Collider

	transformSubs subscribers[func(n *Node)]
	changeSubs    subscribers[func(change NodeChange)]
}

// NewNode creates an enabled root node in w, with an identity transform.
func NewNode(w *World, name string) *Node {
	if w == nil {
		panic("arbor: cannot create a node without a world")
	}
	w.mustOpen("create node")

	n := &Node{
		id:             uuid.New(),
		name:           name,
		world:          w,
		enabled:        true,
		local:          geom.NewTransform(),
		worldTransform: geom.NewTransform(),
		matrixDirty:    true,
	}
	w.roots.add(n)

	return n
}

func (n *Node) ID() uuid.UUID {
	return n.id
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) SetName(name string) {
	n.mustAlive("rename")
	if n.name == name {
		return
	}

	if n.parent != nil {
		n.parent.unindex(n)
		n.name = name
		n.parent.index(n)
	} else {
		n.name = name
	}
	n.notifyChanged(NodeChange{Kind: Renamed, Node: n})
}

func (n *Node) World() *World {
	return n.world
}

// Parent returns nil for a root node.
func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}

	return root
}

func (n *Node) IsDestroyed() bool {
	return n.destroyed
}

// IsEnabled returns the node's own flag, regardless of its ancestors.
func (n *Node) IsEnabled() bool {
	return n.enabled
}

func (n *Node) SetEnabled(enabled bool) {
	n.mustAlive("enable")
	if n.enabled == enabled {
		return
	}

	n.enabled = enabled
	n.syncEnabled()
}

// IsEnabledInHierarchy is true when the node and all its ancestors are enabled.
func (n *Node) IsEnabledInHierarchy() bool {
	for p := n; p != nil; p = p.parent {
		if !p.enabled {
			return false
		}
	}

	return true
}

// syncEnabled pushes the effective enabled state of n to its subtree registrations.
func (n *Node) syncEnabled() {
	parentEnabled := n.parent == nil || n.parent.IsEnabledInHierarchy()
	n.syncEnabledFrom(parentEnabled)
}

func (n *Node) syncEnabledFrom(parentEnabled bool) {
	effective := parentEnabled && n.enabled

	for _, t := range n.componentTypes {
		for _, c := range n.components[t] {
			b := c.componentBase()
			n.world.Components.sync(c, effective && b.enabled)
		}
	}
	for _, name := range n.colliderOrder {
		n.world.Collisions.sync(n.colliders[name])
	}
	for _, e := range n.children {
		e.node.syncEnabledFrom(effective)
	}
}

// Destroy releases the node, its subtree, components and colliders. Every component is
// finalized exactly once. Destroying twice is a no-op.
func (n *Node) Destroy() {
	if n.destroyed {
		return
	}

	if parent := n.parent; parent != nil {
		parent.detach(n)
		parent.notifyChanged(NodeChange{Kind: ChildRemoved, Node: parent, Child: n})
	} else {
		n.world.roots.remove(n)
	}

	n.destroy()
}

func (n *Node) destroy() {
	children := n.children
	n.children = nil
	n.byName = nil
	for _, e := range children {
		e.node.parent = nil
		e.node.destroy()
	}

	for len(n.componentTypes) > 0 {
		t := n.componentTypes[len(n.componentTypes)-1]
		list := n.components[t]
		n.detachComponent(list[len(list)-1])
	}

	for len(n.colliderOrder) > 0 {
		n.RemoveCollider(n.colliderOrder[len(n.colliderOrder)-1])
	}

	n.notifyChanged(NodeChange{Kind: Destroyed, Node: n})
	n.transformSubs.clear()
	n.changeSubs.clear()
	n.destroyed = true
}

func (n *Node) mustAlive(op string) {
	if n.destroyed {
		n.world.fatalf("cannot %s: node %q is destroyed", op, n.name)
	}
}

// SubscribeNodeChanged registers fn for structural changes of this node.
func (n *Node) SubscribeNodeChanged(fn func(change NodeChange)) SubscriptionID {
	n.mustAlive("subscribe")
	return n.changeSubs.add(fn)
}

func (n *Node) UnsubscribeNodeChanged(id SubscriptionID) bool {
	return n.changeSubs.remove(id)
}

func (n *Node) notifyChanged(change NodeChange) {
	n.changeSubs.each(func(fn func(NodeChange)) {
		fn(change)
	})
}

// CanClone reports whether every component of the subtree implements Cloneable.
func (n *Node) CanClone() bool {
	for _, t := range n.componentTypes {
		for _, c := range n.components[t] {
			if _, ok := c.(Cloneable); !ok {
				return false
			}
		}
	}
	for _, e := range n.children {
		if !e.node.CanClone() {
			return false
		}
	}

	return true
}

// Clone deep copies the subtree into a new root node: transforms, enabled flags,
// colliders with their flags and callbacks, components and child visibility.
func (n *Node) Clone() *Node {
	n.mustAlive("clone")
	if !n.CanClone() {
		n.world.fatalf("cannot clone node %q: it holds a component that is not Cloneable", n.name)
	}

	c := NewNode(n.world, n.name)
	c.enabled = n.enabled
	c.SetLocalTransform(n.local)

	for _, name := range n.colliderOrder {
		src := n.colliders[name]
		dst := c.AddCollider(name, src.volume.Clone())
		dst.copySettings(src)
		if n.frustumCollider == src {
			c.frustumCollider = dst
		}
	}

	for _, t := range n.componentTypes {
		for _, comp := range n.components[t] {
			b := comp.componentBase()
			copied := comp.(Cloneable).CloneComponent()
			c.attachComponent(copied, b.id, b.enabled)
		}
	}

	for _, e := range n.children {
		c.AddChild(e.node.Clone(), KeepLocalTransform(), withVisibility(e.visibility))
	}

	return c
}

// Log writes the subtree to the world logger at debug level, one line per node.
func (n *Node) Log() {
	n.log(0)
}

func (n *Node) log(depth int) {
	n.world.log.WithFields(logrus.Fields{
		"node":       n.id.String(),
		"enabled":    n.IsEnabledInHierarchy(),
		"components": n.ComponentCount(),
		"colliders":  len(n.colliderOrder),
	}).Debugf("%s%s", strings.Repeat("  ", depth), n.name)

	for _, e := range n.children {
		e.node.log(depth + 1)
	}
}
