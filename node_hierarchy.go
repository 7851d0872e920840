package arbor

import (
	"slices"

	"github.com/akmonengine/arbor/geom"
)

type childOptions struct {
	keepLocal  bool
	visibility Visibility
	name       *string
}

type ChildOption func(o *childOptions)

// KeepLocalTransform keeps the child's local transform as is, so its world pose follows
// the new parent. By default the world pose is preserved and the local one recomputed.
func KeepLocalTransform() ChildOption {
	return func(o *childOptions) {
		o.keepLocal = true
	}
}

// AsHidden adds the child as a hidden entry.
func AsHidden() ChildOption {
	return withVisibility(Hidden)
}

// WithName renames the child while adding it.
func WithName(name string) ChildOption {
	return func(o *childOptions) {
		o.name = &name
	}
}

func withVisibility(v Visibility) ChildOption {
	return func(o *childOptions) {
		o.visibility = v
	}
}

// AddChild transfers ownership of child to n, detaching it from its previous parent.
func (n *Node) AddChild(child *Node, opts ...ChildOption) {
	n.mustAlive("add child")
	if child == nil {
		n.world.fatalf("cannot add a nil child to %q", n.name)
	}
	child.mustAlive("add as child")
	if child.world != n.world {
		n.world.fatalf("cannot add %q to %q: nodes belong to different worlds", child.name, n.name)
	}
	if child == n || child.isAncestorOf(n) {
		n.world.fatalf("cannot add %q to %q: it would create a cycle", child.name, n.name)
	}

	o := childOptions{visibility: Visible}
	for _, opt := range opts {
		opt(&o)
	}

	world := child.worldTransform
	if previous := child.parent; previous != nil {
		previous.detach(child)
		if previous != n {
			previous.notifyChanged(NodeChange{Kind: ChildRemoved, Node: previous, Child: child})
		}
	} else {
		n.world.roots.remove(child)
	}

	if o.name != nil {
		child.name = *o.name
	}
	child.parent = n
	n.children = append(n.children, childEntry{node: child, visibility: o.visibility})
	n.index(child)

	if !o.keepLocal {
		child.local = geom.Relative(n.worldTransform, world)
	}
	child.updateWorld()
	child.syncEnabled()

	n.notifyChanged(NodeChange{Kind: ChildAdded, Node: n, Child: child})
}

// RemoveChild releases child as a new root node, keeping its world pose.
func (n *Node) RemoveChild(child *Node) {
	n.mustAlive("remove child")
	if child == nil || child.parent != n {
		n.world.fatalf("cannot remove child: node is not a child of %q", n.name)
	}

	world := child.worldTransform
	n.detach(child)
	n.world.roots.add(child)
	child.local = world
	child.updateWorld()
	child.syncEnabled()

	n.notifyChanged(NodeChange{Kind: ChildRemoved, Node: n, Child: child})
}

// RemoveChildrenByName releases every direct child named name and returns them.
func (n *Node) RemoveChildrenByName(name string) []*Node {
	removed := n.FindChildren(name)
	for _, child := range removed {
		n.RemoveChild(child)
	}

	return removed
}

// RemoveChildren releases every direct child, hidden ones included.
func (n *Node) RemoveChildren() []*Node {
	removed := n.entries(true)
	for _, child := range removed {
		n.RemoveChild(child)
	}

	return removed
}

func (n *Node) detach(child *Node) {
	i := slices.IndexFunc(n.children, func(e childEntry) bool {
		return e.node == child
	})
	if i < 0 {
		return
	}

	n.children = slices.Delete(n.children, i, i+1)
	n.unindex(child)
	child.parent = nil
}

func (n *Node) index(child *Node) {
	if n.byName == nil {
		n.byName = make(map[string][]*Node)
	}
	n.byName[child.name] = append(n.byName[child.name], child)
}

func (n *Node) unindex(child *Node) {
	list := n.byName[child.name]
	if i := slices.Index(list, child); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(n.byName, child.name)
		return
	}
	n.byName[child.name] = list
}

func (n *Node) isAncestorOf(other *Node) bool {
	for p := other.parent; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}

	return false
}

func (n *Node) entries(includeHidden bool) []*Node {
	nodes := make([]*Node, 0, len(n.children))
	for _, e := range n.children {
		if includeHidden || e.visibility == Visible {
			nodes = append(nodes, e.node)
		}
	}

	return nodes
}

// Children returns the visible direct children in insertion order.
func (n *Node) Children() []*Node {
	return n.entries(false)
}

func (n *Node) HiddenChildren() []*Node {
	nodes := make([]*Node, 0)
	for _, e := range n.children {
		if e.visibility == Hidden {
			nodes = append(nodes, e.node)
		}
	}

	return nodes
}

// AllChildren returns every descendant, hidden ones included, in pre-order.
func (n *Node) AllChildren() []*Node {
	var nodes []*Node
	for _, e := range n.children {
		nodes = append(nodes, e.node)
		nodes = append(nodes, e.node.AllChildren()...)
	}

	return nodes
}

// ChildCount counts direct children, hidden ones included.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// ChildVisibility returns false when child is not a direct child of n.
func (n *Node) ChildVisibility(child *Node) (Visibility, bool) {
	for _, e := range n.children {
		if e.node == child {
			return e.visibility, true
		}
	}

	return Visible, false
}

// FindChildren returns the direct children named name, hidden ones included.
func (n *Node) FindChildren(name string) []*Node {
	return slices.Clone(n.byName[name])
}

// FindChildrenRecursive searches the whole subtree, hidden entries included.
func (n *Node) FindChildrenRecursive(name string) []*Node {
	var found []*Node
	for _, e := range n.children {
		if e.node.name == name {
			found = append(found, e.node)
		}
		found = append(found, e.node.FindChildrenRecursive(name)...)
	}

	return found
}

// Child returns the first direct child named name, or nil.
func (n *Node) Child(name string) *Node {
	if list := n.byName[name]; len(list) > 0 {
		return list[0]
	}

	return nil
}

// ForeachChildren calls fn on a snapshot of the visible direct children.
func (n *Node) ForeachChildren(fn func(child *Node)) {
	for _, child := range n.Children() {
		if child.parent == n {
			fn(child)
		}
	}
}

// Traversal visits n and its visible descendants in pre-order.
func (n *Node) Traversal(fn func(node *Node)) {
	n.traverse(nil, fn, false)
}

// TraversalIf is Traversal, pruning every subtree whose root fails pred.
func (n *Node) TraversalIf(pred func(node *Node) bool, fn func(node *Node)) {
	n.traverse(pred, fn, false)
}

// TraversalAll visits hidden descendants too.
func (n *Node) TraversalAll(fn func(node *Node)) {
	n.traverse(nil, fn, true)
}

func (n *Node) traverse(pred func(*Node) bool, fn func(*Node), includeHidden bool) {
	if n.destroyed {
		return
	}
	if pred != nil && !pred(n) {
		return
	}

	fn(n)

	for _, child := range n.entries(includeHidden) {
		if child.parent == n {
			child.traverse(pred, fn, includeHidden)
		}
	}
}
