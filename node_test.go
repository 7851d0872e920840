package arbor

import (
	"math"
	"slices"
	"testing"

	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// =============================================================================
// Hierarchy
// =============================================================================

func TestAddChildPreservesWorldPose(t *testing.T) {
	w := newTestWorld(t)
	parent := NewNode(w, "parent")
	parent.SetLocalTransform(geom.NewTransformTRS(
		mgl64.Vec3{10, 0, 0},
		mgl64.QuatRotate(math.Pi/2, geom.AxisUp),
		mgl64.Vec3{2, 2, 2},
	))

	child := NewNode(w, "child")
	child.SetLocalTranslation(mgl64.Vec3{1, 2, 3})

	parent.AddChild(child)

	if !vec3Equal(child.WorldTranslation(), mgl64.Vec3{1, 2, 3}, 1e-9) {
		t.Errorf("Expected world translation (1,2,3), got %v", child.WorldTranslation())
	}
	if child.Parent() != parent {
		t.Errorf("Expected parent to be set")
	}
	if len(w.Roots()) != 1 || w.Roots()[0] != parent {
		t.Errorf("Expected parent to be the only root, got %d roots", len(w.Roots()))
	}
}

func TestAddChildKeepLocalTransform(t *testing.T) {
	w := newTestWorld(t)
	parent := NewNode(w, "parent")
	parent.SetLocalTranslation(mgl64.Vec3{10, 0, 0})

	child := NewNode(w, "child")
	child.SetLocalTranslation(mgl64.Vec3{1, 0, 0})
	parent.AddChild(child, KeepLocalTransform())

	if child.LocalTranslation() != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("Expected local translation to be kept, got %v", child.LocalTranslation())
	}
	if !vec3Equal(child.WorldTranslation(), mgl64.Vec3{11, 0, 0}, 1e-12) {
		t.Errorf("Expected world translation (11,0,0), got %v", child.WorldTranslation())
	}
}

func TestReparentMovesChild(t *testing.T) {
	w := newTestWorld(t)
	a := NewNode(w, "a")
	b := NewNode(w, "b")
	child := NewNode(w, "child")

	a.AddChild(child)
	b.AddChild(child)

	if a.ChildCount() != 0 {
		t.Errorf("Expected a to have no child, got %d", a.ChildCount())
	}
	if b.Child("child") != child {
		t.Errorf("Expected b to own child")
	}
	if a.Child("child") != nil {
		t.Errorf("Expected a's name index to be updated")
	}
}

func TestRemoveChildKeepsWorldPose(t *testing.T) {
	w := newTestWorld(t)
	parent := NewNode(w, "parent")
	parent.SetLocalTranslation(mgl64.Vec3{5, 0, 0})
	child := NewNode(w, "child")
	parent.AddChild(child, KeepLocalTransform())

	parent.RemoveChild(child)

	if child.Parent() != nil {
		t.Fatal("Expected child to be a root")
	}
	if !vec3Equal(child.LocalTranslation(), mgl64.Vec3{5, 0, 0}, 1e-12) {
		t.Errorf("Expected detached child to keep its world pose, got %v", child.LocalTranslation())
	}
	if len(w.Roots()) != 2 {
		t.Errorf("Expected 2 roots, got %d", len(w.Roots()))
	}
}

func TestHierarchyContractViolations(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	child := NewNode(w, "child")
	root.AddChild(child)

	tests := []struct {
		name     string
		contains string
		fn       func()
	}{
		{"self as child", "cycle", func() { root.AddChild(root) }},
		{"ancestor as child", "cycle", func() { child.AddChild(root) }},
		{"nil child", "nil child", func() { root.AddChild(nil) }},
		{"remove stranger", "not a child", func() { child.RemoveChild(root) }},
		{"other world", "different worlds", func() { root.AddChild(NewNode(newTestWorld(t), "x")) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectPanic(t, tt.contains, tt.fn)
		})
	}
}

func TestHiddenChildren(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	visible := NewNode(w, "visible")
	hidden := NewNode(w, "hidden")
	root.AddChild(visible)
	root.AddChild(hidden, AsHidden())

	if children := root.Children(); len(children) != 1 || children[0] != visible {
		t.Errorf("Expected only the visible child, got %v", children)
	}
	if hiddenChildren := root.HiddenChildren(); len(hiddenChildren) != 1 || hiddenChildren[0] != hidden {
		t.Errorf("Expected only the hidden child, got %v", hiddenChildren)
	}
	if root.ChildCount() != 2 {
		t.Errorf("Expected 2 owned children, got %d", root.ChildCount())
	}
	if v, ok := root.ChildVisibility(hidden); !ok || v != Hidden {
		t.Errorf("Expected Hidden, got %v (%v)", v, ok)
	}

	var visited []string
	root.Traversal(func(n *Node) { visited = append(visited, n.Name()) })
	if len(visited) != 2 {
		t.Errorf("Expected traversal to skip hidden children, got %v", visited)
	}

	visited = nil
	root.TraversalAll(func(n *Node) { visited = append(visited, n.Name()) })
	if len(visited) != 3 {
		t.Errorf("Expected TraversalAll to visit hidden children, got %v", visited)
	}
}

func TestFindChildren(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	a1 := NewNode(w, "a")
	a2 := NewNode(w, "a")
	b := NewNode(w, "b")
	deep := NewNode(w, "x")
	root.AddChild(a1)
	root.AddChild(a2)
	root.AddChild(b)
	b.AddChild(deep, WithName("a"))

	if found := root.FindChildren("a"); len(found) != 2 {
		t.Errorf("Expected 2 direct children named a, got %d", len(found))
	}
	if found := root.FindChildrenRecursive("a"); len(found) != 3 {
		t.Errorf("Expected 3 descendants named a, got %d", len(found))
	}
	if root.Child("a") != a1 {
		t.Errorf("Expected the first child named a")
	}

	b.SetName("renamed")
	if root.Child("b") != nil || root.Child("renamed") != b {
		t.Errorf("Expected the name index to follow renames")
	}

	removed := root.RemoveChildrenByName("a")
	if len(removed) != 2 || root.ChildCount() != 1 {
		t.Errorf("Expected 2 removed and 1 left, got %d and %d", len(removed), root.ChildCount())
	}
}

func TestAllChildrenPreOrder(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	a := NewNode(w, "a")
	a1 := NewNode(w, "a1")
	b := NewNode(w, "b")
	root.AddChild(a)
	a.AddChild(a1)
	root.AddChild(b, AsHidden())

	all := root.AllChildren()
	expected := []*Node{a, a1, b}
	if len(all) != len(expected) {
		t.Fatalf("Expected %d descendants, got %d", len(expected), len(all))
	}
	for i := range expected {
		if all[i] != expected[i] {
			t.Errorf("Descendant %d: expected %s, got %s", i, expected[i].Name(), all[i].Name())
		}
	}
}

func TestTraversalIfPrunes(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	skip := NewNode(w, "skip")
	under := NewNode(w, "under")
	keep := NewNode(w, "keep")
	root.AddChild(skip)
	skip.AddChild(under)
	root.AddChild(keep)

	var visited []string
	root.TraversalIf(func(n *Node) bool { return n.Name() != "skip" }, func(n *Node) {
		visited = append(visited, n.Name())
	})

	if len(visited) != 2 || visited[0] != "root" || visited[1] != "keep" {
		t.Errorf("Expected [root keep], got %v", visited)
	}
}

func TestForeachChildrenToleratesRemoval(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	for _, name := range []string{"a", "b", "c"} {
		root.AddChild(NewNode(w, name))
	}

	var visited []string
	root.ForeachChildren(func(child *Node) {
		visited = append(visited, child.Name())
		if child.Name() == "a" {
			root.Child("b").Destroy()
		}
	})

	if len(visited) != 2 || visited[1] != "c" {
		t.Errorf("Expected [a c], got %v", visited)
	}
}

func TestTraversalToleratesMutation(t *testing.T) {
	tests := []struct {
		name string
		walk func(root *Node, fn func(*Node))
	}{
		{"Traversal", func(root *Node, fn func(*Node)) { root.Traversal(fn) }},
		{"TraversalIf", func(root *Node, fn func(*Node)) {
			root.TraversalIf(func(*Node) bool { return true }, fn)
		}},
		{"TraversalAll", func(root *Node, fn func(*Node)) { root.TraversalAll(fn) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newTestWorld(t)
			root := NewNode(w, "root")
			for _, name := range []string{"a", "b", "c"} {
				root.AddChild(NewNode(w, name))
			}

			var visited []string
			tt.walk(root, func(n *Node) {
				visited = append(visited, n.Name())
				if n.Name() == "a" {
					root.Child("b").Destroy()
					n.AddChild(NewNode(w, "d"))
				}
			})

			expected := []string{"root", "a", "d", "c"}
			if !slices.Equal(visited, expected) {
				t.Errorf("Expected %v, got %v", expected, visited)
			}
			if root.ChildCount() != 2 {
				t.Errorf("Expected b to be gone, got %d children", root.ChildCount())
			}
		})
	}
}

// =============================================================================
// Transforms
// =============================================================================

func TestWorldTransformPropagates(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	child := NewNode(w, "child")
	grandchild := NewNode(w, "grandchild")
	root.AddChild(child)
	child.AddChild(grandchild)
	child.SetLocalTranslation(mgl64.Vec3{0, 1, 0})
	grandchild.SetLocalTranslation(mgl64.Vec3{0, 0, 1})

	root.SetLocalTransform(geom.NewTransformTRS(
		mgl64.Vec3{1, 0, 0},
		mgl64.QuatRotate(math.Pi/2, geom.AxisUp),
		mgl64.Vec3{1, 1, 1},
	))

	// +Z rotated 90° around Y is +X
	expected := mgl64.Vec3{2, 1, 0}
	if !vec3Equal(grandchild.WorldTranslation(), expected, 1e-9) {
		t.Errorf("Expected %v, got %v", expected, grandchild.WorldTranslation())
	}

	matrix := grandchild.WorldTransformMatrix()
	if !vec3Equal(mgl64.TransformCoordinate(mgl64.Vec3{}, matrix), expected, 1e-9) {
		t.Errorf("Expected the matrix to follow the transform")
	}
}

func TestMatrixCacheInvalidation(t *testing.T) {
	w := newTestWorld(t)
	n := NewNode(w, "n")

	first := n.WorldTransformMatrix()
	n.SetLocalTranslation(mgl64.Vec3{1, 2, 3})
	second := n.WorldTransformMatrix()

	if first == second {
		t.Fatal("Expected the matrix to be recomputed after a change")
	}
	if second.Col(3) != (mgl64.Vec4{1, 2, 3, 1}) {
		t.Errorf("Expected translation column (1,2,3,1), got %v", second.Col(3))
	}
	if !mat4Equal(n.ViewMatrix().Mul4(second), mgl64.Ident4(), 1e-12) {
		t.Errorf("Expected the view matrix to invert the world matrix")
	}
}

func TestNormalMatrixUnderNonUniformScale(t *testing.T) {
	w := newTestWorld(t)
	n := NewNode(w, "n")
	n.SetLocalScale(mgl64.Vec3{2, 1, 1})

	normal := n.NormalMatrix().Mul3x1(mgl64.Vec3{1, 1, 0})
	if !vec3Equal(normal, mgl64.Vec3{0.5, 1, 0}, 1e-12) {
		t.Errorf("Expected (0.5,1,0), got %v", normal)
	}
}

func TestSetWorldTransformUnderParent(t *testing.T) {
	w := newTestWorld(t)
	parent := NewNode(w, "parent")
	parent.SetLocalTransform(geom.NewTransformTRS(
		mgl64.Vec3{3, 0, 0},
		mgl64.QuatRotate(math.Pi/3, geom.AxisForward),
		mgl64.Vec3{2, 2, 2},
	))
	child := NewNode(w, "child")
	parent.AddChild(child)

	child.SetWorldTranslation(mgl64.Vec3{-1, 4, 2})

	if !vec3Equal(child.WorldTranslation(), mgl64.Vec3{-1, 4, 2}, 1e-9) {
		t.Errorf("Expected world translation (-1,4,2), got %v", child.WorldTranslation())
	}
}

func TestTranslateAndRotate(t *testing.T) {
	w := newTestWorld(t)
	n := NewNode(w, "n")
	n.SetLocalRotation(mgl64.QuatRotate(math.Pi/2, geom.AxisUp))

	n.TranslateLocal(mgl64.Vec3{0, 0, 1})
	if !vec3Equal(n.WorldTranslation(), mgl64.Vec3{1, 0, 0}, 1e-9) {
		t.Errorf("Expected local forward to move along +X, got %v", n.WorldTranslation())
	}

	n.TranslateWorld(mgl64.Vec3{0, 0, 1})
	if !vec3Equal(n.WorldTranslation(), mgl64.Vec3{1, 0, 1}, 1e-9) {
		t.Errorf("Expected (1,0,1), got %v", n.WorldTranslation())
	}

	n.RotateAround(mgl64.Vec3{0, 0, 1}, mgl64.QuatRotate(math.Pi, geom.AxisUp))
	if !vec3Equal(n.WorldTranslation(), mgl64.Vec3{-1, 0, 1}, 1e-9) {
		t.Errorf("Expected orbit to (-1,0,1), got %v", n.WorldTranslation())
	}
}

func TestTransformSubscribersPreOrder(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	child := NewNode(w, "child")
	root.AddChild(child)

	var order []string
	root.SubscribeTransformChanged(func(n *Node) { order = append(order, n.Name()) })
	id := child.SubscribeTransformChanged(func(n *Node) { order = append(order, n.Name()) })

	root.SetLocalTranslation(mgl64.Vec3{1, 0, 0})
	if len(order) != 2 || order[0] != "root" || order[1] != "child" {
		t.Errorf("Expected [root child], got %v", order)
	}

	order = nil
	child.UnsubscribeTransformChanged(id)
	root.SetLocalTranslation(mgl64.Vec3{2, 0, 0})
	if len(order) != 1 {
		t.Errorf("Expected only the root notification, got %v", order)
	}
}

func TestCollidersFollowNode(t *testing.T) {
	w := newTestWorld(t)
	parent := NewNode(w, "parent")
	child, c := sphereNode(w, "child", mgl64.Vec3{1, 0, 0}, 0.5)
	parent.AddChild(child, KeepLocalTransform())

	parent.SetLocalTranslation(mgl64.Vec3{0, 10, 0})

	if !vec3Equal(c.Volume().Center(), mgl64.Vec3{1, 10, 0}, 1e-12) {
		t.Errorf("Expected collider center (1,10,0), got %v", c.Volume().Center())
	}
}

// =============================================================================
// Enable, destroy, clone
// =============================================================================

func TestEnabledInHierarchy(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	child := NewNode(w, "child")
	root.AddChild(child)

	root.SetEnabled(false)
	if child.IsEnabledInHierarchy() {
		t.Error("Expected child disabled through its parent")
	}
	if !child.IsEnabled() {
		t.Error("Expected child's own flag to stay set")
	}

	root.SetEnabled(true)
	if !child.IsEnabledInHierarchy() {
		t.Error("Expected child enabled again")
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	child := NewNode(w, "child")
	root.AddChild(child)

	var changes []NodeChangeKind
	root.SubscribeNodeChanged(func(c NodeChange) { changes = append(changes, c.Kind) })

	child.Destroy()
	child.Destroy()

	if !child.IsDestroyed() {
		t.Error("Expected child destroyed")
	}
	if root.ChildCount() != 0 {
		t.Errorf("Expected root to have no child, got %d", root.ChildCount())
	}
	if len(changes) != 1 || changes[0] != ChildRemoved {
		t.Errorf("Expected a single ChildRemoved, got %v", changes)
	}

	expectPanic(t, "destroyed", func() { child.SetLocalTranslation(mgl64.Vec3{1, 0, 0}) })
}

func TestDestroyCascades(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	child, c := sphereNode(w, "child", mgl64.Vec3{}, 1)
	root.AddChild(child)
	comp := AddComponent[counter](child, nil)

	root.Destroy()

	if !child.IsDestroyed() {
		t.Error("Expected child destroyed with its parent")
	}
	if comp.finalized != 1 {
		t.Errorf("Expected component finalized once, got %d", comp.finalized)
	}
	if w.Collisions.IsActive(c) || !c.IsRemoved() {
		t.Error("Expected collider unregistered")
	}
	if len(w.Roots()) != 0 {
		t.Errorf("Expected no root left, got %d", len(w.Roots()))
	}
}

func TestClone(t *testing.T) {
	w := newTestWorld(t)
	root, c := sphereNode(w, "root", mgl64.Vec3{1, 2, 3}, 1)
	c.SetReceiveRaycasts(true)
	root.SetFrustumCollider(c)
	hidden := NewNode(w, "hidden")
	root.AddChild(hidden, AsHidden())
	comp := AddComponent[counter](root, nil)
	comp.updates = 7

	copied := root.Clone()

	if copied == root || copied.Parent() != nil {
		t.Fatal("Expected a new root node")
	}
	if copied.LocalTranslation() != root.LocalTranslation() {
		t.Errorf("Expected the transform to be copied")
	}
	if v, ok := copied.ChildVisibility(copied.HiddenChildren()[0]); !ok || v != Hidden {
		t.Errorf("Expected the hidden child to stay hidden")
	}

	cc := copied.Collider("body")
	if cc == nil || cc == c || !cc.IsReceiveRaycasts() || copied.FrustumCollider() != cc {
		t.Errorf("Expected an independent collider copy with the same flags")
	}
	if !vec3Equal(cc.Volume().Center(), mgl64.Vec3{1, 2, 3}, 1e-12) {
		t.Errorf("Expected the copied collider at (1,2,3), got %v", cc.Volume().Center())
	}

	copiedComp, ok := FirstComponent[counter](copied)
	if !ok || copiedComp == comp || copiedComp.updates != 7 || copiedComp.Owner() != copied {
		t.Errorf("Expected the component to be cloned onto the copy")
	}
}

func TestCloneRequiresCloneableComponents(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	AddComponent[lifecycle](root, nil)

	if root.CanClone() {
		t.Fatal("Expected CanClone to be false")
	}
	expectPanic(t, "not Cloneable", func() { root.Clone() })
}

func TestLog(t *testing.T) {
	w := newTestWorld(t)
	root := NewNode(w, "root")
	root.AddChild(NewNode(w, "child"))

	root.Log()
}
