package arbor

import (
	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

func (n *Node) LocalTransform() geom.Transform {
	return n.local
}

func (n *Node) LocalTranslation() mgl64.Vec3 {
	return n.local.Translation
}

func (n *Node) LocalRotation() mgl64.Quat {
	return n.local.Rotation
}

func (n *Node) LocalScale() mgl64.Vec3 {
	return n.local.Scale
}

// WorldTransform is kept up to date eagerly: every local change is pushed down the subtree.
func (n *Node) WorldTransform() geom.Transform {
	return n.worldTransform
}

func (n *Node) WorldTranslation() mgl64.Vec3 {
	return n.worldTransform.Translation
}

func (n *Node) WorldRotation() mgl64.Quat {
	return n.worldTransform.Rotation
}

func (n *Node) WorldScale() mgl64.Vec3 {
	return n.worldTransform.Scale
}

func (n *Node) Up() mgl64.Vec3 {
	return n.worldTransform.Up()
}

func (n *Node) Forward() mgl64.Vec3 {
	return n.worldTransform.Forward()
}

func (n *Node) Right() mgl64.Vec3 {
	return n.worldTransform.Right()
}

func (n *Node) SetLocalTransform(t geom.Transform) {
	n.mustAlive("set transform")
	n.local = t
	n.updateWorld()
}

func (n *Node) SetLocalTranslation(translation mgl64.Vec3) {
	t := n.local
	t.Translation = translation
	n.SetLocalTransform(t)
}

func (n *Node) SetLocalRotation(rotation mgl64.Quat) {
	t := n.local
	t.Rotation = rotation.Normalize()
	n.SetLocalTransform(t)
}

func (n *Node) SetLocalScale(scale mgl64.Vec3) {
	t := n.local
	t.Scale = scale
	n.SetLocalTransform(t)
}

// SetWorldTransform places n at t in world space, whatever its parent's pose.
func (n *Node) SetWorldTransform(t geom.Transform) {
	if n.parent == nil {
		n.SetLocalTransform(t)
		return
	}
	n.SetLocalTransform(geom.Relative(n.parent.worldTransform, t))
}

func (n *Node) SetWorldTranslation(translation mgl64.Vec3) {
	t := n.worldTransform
	t.Translation = translation
	n.SetWorldTransform(t)
}

func (n *Node) SetWorldRotation(rotation mgl64.Quat) {
	t := n.worldTransform
	t.Rotation = rotation.Normalize()
	n.SetWorldTransform(t)
}

func (n *Node) SetWorldScale(scale mgl64.Vec3) {
	t := n.worldTransform
	t.Scale = scale
	n.SetWorldTransform(t)
}

// TranslateLocal moves n along its own axes.
func (n *Node) TranslateLocal(delta mgl64.Vec3) {
	n.SetLocalTranslation(n.local.Translation.Add(n.local.Rotation.Rotate(delta)))
}

// TranslateWorld moves n along the world axes.
func (n *Node) TranslateWorld(delta mgl64.Vec3) {
	n.SetWorldTranslation(n.worldTransform.Translation.Add(delta))
}

// RotateLocal applies rotation around the node's own axes.
func (n *Node) RotateLocal(rotation mgl64.Quat) {
	n.SetLocalRotation(n.local.Rotation.Mul(rotation))
}

// RotateWorld applies rotation around the world axes, in place.
func (n *Node) RotateWorld(rotation mgl64.Quat) {
	n.SetWorldRotation(rotation.Mul(n.worldTransform.Rotation))
}

// RotateAround orbits n around a world space pivot.
func (n *Node) RotateAround(pivot mgl64.Vec3, rotation mgl64.Quat) {
	t := n.worldTransform
	t.Translation = pivot.Add(rotation.Rotate(t.Translation.Sub(pivot)))
	t.Rotation = rotation.Mul(t.Rotation).Normalize()
	n.SetWorldTransform(t)
}

// OnNodeTransformChanged pushes a world transform computed elsewhere, by an animation or
// a physics step, into n.
func (n *Node) OnNodeTransformChanged(world geom.Transform) {
	n.SetWorldTransform(world)
}

// WorldTransformMatrix returns T·R·S of the world transform, memoized until the next change.
func (n *Node) WorldTransformMatrix() mgl64.Mat4 {
	n.refreshMatrices()
	return n.matrix
}

// NormalMatrix is the inverse transpose of the upper 3x3 of WorldTransformMatrix.
func (n *Node) NormalMatrix() mgl64.Mat3 {
	n.refreshMatrices()
	return n.normalMatrix
}

// ViewMatrix is the inverse of WorldTransformMatrix, for nodes used as an eye.
func (n *Node) ViewMatrix() mgl64.Mat4 {
	return n.WorldTransformMatrix().Inv()
}

func (n *Node) refreshMatrices() {
	if !n.matrixDirty {
		return
	}

	n.matrix = n.worldTransform.Matrix()
	n.normalMatrix = n.worldTransform.NormalMatrix()
	n.matrixDirty = false
}

// SubscribeTransformChanged registers fn, called after the world transform of n changed.
func (n *Node) SubscribeTransformChanged(fn func(n *Node)) SubscriptionID {
	n.mustAlive("subscribe")
	return n.transformSubs.add(fn)
}

func (n *Node) UnsubscribeTransformChanged(id SubscriptionID) bool {
	return n.transformSubs.remove(id)
}

// updateWorld recomputes the world transform of n then of its subtree, in pre-order.
// Colliders and subscribers of a node are notified before its children are updated.
func (n *Node) updateWorld() {
	if n.parent != nil {
		n.worldTransform = geom.Compose(n.parent.worldTransform, n.local)
	} else {
		n.worldTransform = n.local
	}
	n.matrixDirty = true

	for _, name := range n.colliderOrder {
		n.colliders[name].OnNodeTransformChanged(n.worldTransform)
	}
	n.transformSubs.each(func(fn func(*Node)) {
		fn(n)
	})

	for _, child := range n.entries(true) {
		if child.parent == n {
			child.updateWorld()
		}
	}
}
