package arbor

import (
	"fmt"

	"github.com/akmonengine/arbor/geom"
	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// ScreencastEvent is the phase of a touch
type ScreencastEvent uint8

const (
	ScreencastDown ScreencastEvent = iota
	ScreencastMove
	ScreencastUp
	screencastEventCount
)

func (e ScreencastEvent) String() string {
	switch e {
	case ScreencastDown:
		return "Down"
	case ScreencastMove:
		return "Move"
	case ScreencastUp:
		return "Up"
	}

	return fmt.Sprintf("ScreencastEvent(%d)", uint8(e))
}

// CollisionInfo is the result of a query: Source is the querying collider (nil for ray
// casts), Target the collider that was hit.
type CollisionInfo struct {
	Source   *Collider
	Target   *Collider
	Point    mgl64.Vec3
	Distance float64
}

// NewCollisionInfo returns an empty result, Distance set to volume.NoDistance.
func NewCollisionInfo(source *Collider) CollisionInfo {
	return CollisionInfo{Source: source, Distance: volume.NoDistance}
}

type IntersectionCallback func(info CollisionInfo)

// CollisionState is the per partner state of the intersection state machine:
// Previous and Current tell whether the pair overlapped at the last and the current sweep.
type CollisionState struct {
	Previous bool
	Current  bool
	Info     CollisionInfo
}

// collisionTable keeps the states of a source collider by partner, in insertion order.
type collisionTable struct {
	entries map[*Collider]*CollisionState
	order   []*Collider
}

func (t *collisionTable) get(partner *Collider) *CollisionState {
	return t.entries[partner]
}

func (t *collisionTable) ensure(partner *Collider) *CollisionState {
	if st, ok := t.entries[partner]; ok {
		return st
	}
	if t.entries == nil {
		t.entries = make(map[*Collider]*CollisionState)
	}

	st := &CollisionState{}
	t.entries[partner] = st
	t.order = append(t.order, partner)

	return st
}

func (t *collisionTable) delete(partner *Collider) {
	if _, ok := t.entries[partner]; !ok {
		return
	}

	delete(t.entries, partner)
	for i, p := range t.order {
		if p == partner {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *collisionTable) partners() []*Collider {
	return append([]*Collider(nil), t.order...)
}

func (t *collisionTable) clear() {
	clear(t.entries)
	t.order = t.order[:0]
}

// Collider attaches a bounding volume to a node and carries the callbacks and flags
// the CollisionEventDispatcher works with. Its node is a non-owning back-reference.
type Collider struct {
	id     uuid.UUID
	name   string
	node   *Node
	volume volume.Volume
	table  collisionTable

	intersecting     bool
	blockScreencasts bool
	blockRaycasts    bool
	receiveRaycasts  bool

	onBegin        IntersectionCallback
	onIntersection IntersectionCallback
	onEnd          IntersectionCallback
	onRaycast      IntersectionCallback
	onScreencast   [screencastEventCount]IntersectionCallback

	removed bool
}

func newCollider(n *Node, name string, v volume.Volume) *Collider {
	defaults := n.world.config.ColliderDefaults

	return &Collider{
		id:               uuid.New(),
		name:             name,
		node:             n,
		volume:           v,
		blockScreencasts: defaults.BlockScreencasts,
		blockRaycasts:    defaults.BlockRaycasts,
		receiveRaycasts:  defaults.ReceiveRaycasts,
	}
}

func (c *Collider) ID() uuid.UUID {
	return c.id
}

func (c *Collider) Name() string {
	return c.name
}

func (c *Collider) Node() *Node {
	return c.node
}

// IsRemoved is true once the collider was removed from its node.
func (c *Collider) IsRemoved() bool {
	return c.removed
}

func (c *Collider) Volume() volume.Volume {
	return c.volume
}

// SetVolume replaces the volume. The local transform of the previous volume is carried over.
func (c *Collider) SetVolume(v volume.Volume) {
	if v == nil {
		c.node.world.fatalf("cannot set a nil volume on collider %q", c.name)
	}

	v.SetLocalTransform(c.volume.LocalTransform())
	v.OnNodeTransformChanged(c.node.worldTransform)
	c.volume = v
}

func (c *Collider) LocalTransform() geom.Transform {
	return c.volume.LocalTransform()
}

// SetLocalTransform offsets the volume from its node.
func (c *Collider) SetLocalTransform(t geom.Transform) {
	c.volume.SetLocalTransform(t)
}

func (c *Collider) WorldTransform() geom.Transform {
	return c.volume.WorldTransform()
}

// OnNodeTransformChanged forwards the node's world transform to the volume.
func (c *Collider) OnNodeTransformChanged(t geom.Transform) {
	c.volume.OnNodeTransformChanged(t)
}

func (c *Collider) Bounds() volume.Bounds {
	return c.volume.Bounds()
}

// IsEnabled follows the enabled state of the node hierarchy.
func (c *Collider) IsEnabled() bool {
	return !c.removed && c.node.IsEnabledInHierarchy()
}

func (c *Collider) IsIntersecting() bool {
	return c.intersecting
}

// SetIntersecting makes the collider a source of the intersection sweep.
func (c *Collider) SetIntersecting(intersecting bool) {
	c.intersecting = intersecting
	c.sync()
}

func (c *Collider) IsBlockScreencasts() bool {
	return c.blockScreencasts
}

// SetBlockScreencasts makes touches stop at this collider.
func (c *Collider) SetBlockScreencasts(block bool) {
	c.blockScreencasts = block
	c.sync()
}

func (c *Collider) IsBlockRaycasts() bool {
	return c.blockRaycasts
}

// SetBlockRaycasts makes ray casts stop notifying receivers behind this collider.
func (c *Collider) SetBlockRaycasts(block bool) {
	c.blockRaycasts = block
	c.sync()
}

func (c *Collider) IsReceiveRaycasts() bool {
	return c.receiveRaycasts
}

func (c *Collider) SetReceiveRaycasts(receive bool) {
	c.receiveRaycasts = receive
	c.sync()
}

// OnIntersectionBegin sets the callback of a pair starting to overlap, and makes the
// collider intersecting.
func (c *Collider) OnIntersectionBegin(fn IntersectionCallback) {
	c.onBegin = fn
	c.enableIntersection(fn)
}

// OnIntersection sets the callback of a pair that still overlaps.
func (c *Collider) OnIntersection(fn IntersectionCallback) {
	c.onIntersection = fn
	c.enableIntersection(fn)
}

// OnIntersectionEnd sets the callback of a pair that stopped overlapping.
func (c *Collider) OnIntersectionEnd(fn IntersectionCallback) {
	c.onEnd = fn
	c.enableIntersection(fn)
}

func (c *Collider) enableIntersection(fn IntersectionCallback) {
	if fn != nil {
		c.intersecting = true
	}
	c.sync()
}

// OnRaycast sets the callback of ray hits; a non nil fn also makes the collider receive them.
func (c *Collider) OnRaycast(fn IntersectionCallback) {
	c.onRaycast = fn
	c.receiveRaycasts = fn != nil
	c.sync()
}

func (c *Collider) OnScreencast(event ScreencastEvent, fn IntersectionCallback) {
	if event >= screencastEventCount {
		c.node.world.fatalf("unknown screencast event %v", event)
	}

	c.onScreencast[event] = fn
	c.sync()
}

// OnScreencastAll sets fn for every touch phase. A nil fn clears them all.
func (c *Collider) OnScreencastAll(fn IntersectionCallback) {
	for event := range c.onScreencast {
		c.onScreencast[event] = fn
	}
	c.sync()
}

func (c *Collider) hasScreencastCallback() bool {
	for _, fn := range c.onScreencast {
		if fn != nil {
			return true
		}
	}

	return false
}

// Intersect tests c against other and fills info on overlap.
func (c *Collider) Intersect(other *Collider, info *CollisionInfo) bool {
	contact := volume.NewContact()
	if !volume.Intersect(c.volume, other.volume, &contact) {
		return false
	}

	if info != nil {
		*info = CollisionInfo{Source: c, Target: other, Point: contact.Point, Distance: contact.Distance}
	}

	return true
}

// IntersectRay fills info with the entry point, info.Source is left untouched.
func (c *Collider) IntersectRay(ray geom.Ray, info *CollisionInfo) bool {
	contact := volume.NewContact()
	if !c.volume.IntersectRay(ray, &contact) {
		return false
	}

	if info != nil {
		info.Target = c
		info.Point = contact.Point
		info.Distance = contact.Distance
	}

	return true
}

func (c *Collider) IntersectPoint(point mgl64.Vec3, info *CollisionInfo) bool {
	contact := volume.NewContact()
	if !c.volume.IntersectPoint(point, &contact) {
		return false
	}

	if info != nil {
		info.Target = c
		info.Point = contact.Point
		info.Distance = contact.Distance
	}

	return true
}

// CollisionState returns the sweep state of the pair (c, partner).
func (c *Collider) CollisionState(partner *Collider) (CollisionState, bool) {
	st := c.table.get(partner)
	if st == nil {
		return CollisionState{}, false
	}

	return *st, true
}

// Partners returns the colliders c currently overlaps with, as of the last sweep.
func (c *Collider) Partners() []*Collider {
	return c.table.partners()
}

func (c *Collider) sync() {
	if c.removed {
		return
	}
	c.node.world.Collisions.sync(c)
}

func (c *Collider) copySettings(src *Collider) {
	c.intersecting = src.intersecting
	c.blockScreencasts = src.blockScreencasts
	c.blockRaycasts = src.blockRaycasts
	c.receiveRaycasts = src.receiveRaycasts
	c.onBegin = src.onBegin
	c.onIntersection = src.onIntersection
	c.onEnd = src.onEnd
	c.onRaycast = src.onRaycast
	c.onScreencast = src.onScreencast
	c.sync()
}
