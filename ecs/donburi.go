package ecs

import (
	"github.com/akmonengine/arbor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// NodeData links an entity to the arbor node it mirrors.
type NodeData struct {
	ID   uuid.UUID
	Name string
	Node *arbor.Node
}

var NodeComponent = donburi.NewComponentType[NodeData]()

// CollisionEvent is the Donburi form of an arbor event. Entities are donburi.Null for
// nodes the bridge does not track, Source is always donburi.Null for ray and screencasts.
type CollisionEvent struct {
	Type       arbor.EventType
	Screencast arbor.ScreencastEvent

	Source         donburi.Entity
	Target         donburi.Entity
	SourceCollider string
	TargetCollider string

	Point    mgl64.Vec3
	Distance float64
}

// CollisionEventType is the Donburi event type collision events are published to.
var CollisionEventType = events.NewEventType[CollisionEvent]()

type tracked struct {
	entity donburi.Entity
	sub    arbor.SubscriptionID
}

type Bridge struct {
	world    *arbor.World
	donburi  donburi.World
	entities map[*arbor.Node]tracked
	closed   bool
}

// NewBridge listens to every event of w and publishes it into dw.
func NewBridge(w *arbor.World, dw donburi.World) *Bridge {
	b := &Bridge{
		world:    w,
		donburi:  dw,
		entities: make(map[*arbor.Node]tracked),
	}
	w.Events.SubscribeAll(b.publish)

	return b
}

func (b *Bridge) Donburi() donburi.World {
	return b.donburi
}

// Track creates the entity mirroring n, or returns the existing one.
// The entity is removed when n is destroyed.
func (b *Bridge) Track(n *arbor.Node) donburi.Entity {
	if t, ok := b.entities[n]; ok {
		return t.entity
	}

	entity := b.donburi.Create(NodeComponent)
	NodeComponent.SetValue(b.donburi.Entry(entity), NodeData{ID: n.ID(), Name: n.Name(), Node: n})

	sub := n.SubscribeNodeChanged(func(change arbor.NodeChange) {
		switch change.Kind {
		case arbor.Renamed:
			if b.donburi.Valid(entity) {
				NodeComponent.Get(b.donburi.Entry(entity)).Name = n.Name()
			}
		case arbor.Destroyed:
			b.forget(n)
		}
	})
	b.entities[n] = tracked{entity: entity, sub: sub}
	b.world.Logger().WithField("node", n.Name()).Debug("ecs: node tracked")

	return entity
}

// Untrack removes the entity of n; false when n is not tracked.
func (b *Bridge) Untrack(n *arbor.Node) bool {
	t, ok := b.entities[n]
	if !ok {
		return false
	}

	if !n.IsDestroyed() {
		n.UnsubscribeNodeChanged(t.sub)
	}
	b.forget(n)

	return true
}

func (b *Bridge) forget(n *arbor.Node) {
	t, ok := b.entities[n]
	if !ok {
		return
	}

	delete(b.entities, n)
	if b.donburi.Valid(t.entity) {
		b.donburi.Remove(t.entity)
	}
}

// Entity returns the entity mirroring n.
func (b *Bridge) Entity(n *arbor.Node) (donburi.Entity, bool) {
	t, ok := b.entities[n]
	return t.entity, ok
}

func (b *Bridge) Len() int {
	return len(b.entities)
}

// Close stops publishing. Tracked entities stay in the Donburi world.
func (b *Bridge) Close() {
	b.closed = true
}

func (b *Bridge) publish(event arbor.Event) {
	if b.closed {
		return
	}

	out := CollisionEvent{Type: event.Type(), Source: donburi.Null, Target: donburi.Null}

	var info arbor.CollisionInfo
	switch e := event.(type) {
	case arbor.IntersectionBeginEvent:
		info = e.Info
	case arbor.IntersectionStayEvent:
		info = e.Info
	case arbor.IntersectionEndEvent:
		info = e.Info
	case arbor.RaycastHitEvent:
		info = e.Info
	case arbor.ScreencastHitEvent:
		info = e.Info
		out.Screencast = e.Event
	default:
		return
	}

	out.Point = info.Point
	out.Distance = info.Distance
	if info.Source != nil {
		out.SourceCollider = info.Source.Name()
		out.Source = b.lookup(info.Source.Node())
	}
	if info.Target != nil {
		out.TargetCollider = info.Target.Name()
		out.Target = b.lookup(info.Target.Node())
	}

	CollisionEventType.Publish(b.donburi, out)
}

func (b *Bridge) lookup(n *arbor.Node) donburi.Entity {
	if t, ok := b.entities[n]; ok {
		return t.entity
	}

	return donburi.Null
}
