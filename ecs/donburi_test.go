package ecs

import (
	"io"
	"testing"

	"github.com/akmonengine/arbor"
	"github.com/akmonengine/arbor/config"
	"github.com/akmonengine/arbor/geom"
	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
)

func newWorld(t *testing.T) *arbor.World {
	t.Helper()

	w := arbor.NewWorld(config.Default())
	w.Logger().Logger.SetOutput(io.Discard)
	t.Cleanup(w.Close)

	return w
}

func sphere(w *arbor.World, name string, position mgl64.Vec3) (*arbor.Node, *arbor.Collider) {
	n := arbor.NewNode(w, name)
	n.SetLocalTranslation(position)
	return n, n.AddCollider("body", volume.NewSphere(mgl64.Vec3{}, 1))
}

func collect(dw donburi.World) *[]CollisionEvent {
	var received []CollisionEvent
	CollisionEventType.Subscribe(dw, func(_ donburi.World, e CollisionEvent) {
		received = append(received, e)
	})
	return &received
}

func TestTrack(t *testing.T) {
	w := newWorld(t)
	dw := donburi.NewWorld()
	bridge := NewBridge(w, dw)

	n := arbor.NewNode(w, "player")
	entity := bridge.Track(n)
	if again := bridge.Track(n); again != entity {
		t.Error("Expected tracking twice to return the same entity")
	}

	data := NodeComponent.Get(dw.Entry(entity))
	if data.ID != n.ID() || data.Name != "player" || data.Node != n {
		t.Errorf("Unexpected node data %+v", data)
	}

	n.SetName("hero")
	if got := NodeComponent.Get(dw.Entry(entity)).Name; got != "hero" {
		t.Errorf("Expected the rename to be mirrored, got %q", got)
	}

	if count := donburi.NewQuery(filter.Contains(NodeComponent)).Count(dw); count != 1 {
		t.Errorf("Expected 1 entity, got %d", count)
	}
}

func TestDestroyRemovesEntity(t *testing.T) {
	w := newWorld(t)
	dw := donburi.NewWorld()
	bridge := NewBridge(w, dw)

	n := arbor.NewNode(w, "crate")
	entity := bridge.Track(n)
	n.Destroy()

	if dw.Valid(entity) {
		t.Error("Expected the entity removed with its node")
	}
	if _, ok := bridge.Entity(n); ok || bridge.Len() != 0 {
		t.Error("Expected the bridge to forget the node")
	}
}

func TestUntrack(t *testing.T) {
	w := newWorld(t)
	dw := donburi.NewWorld()
	bridge := NewBridge(w, dw)

	n := arbor.NewNode(w, "crate")
	entity := bridge.Track(n)

	if !bridge.Untrack(n) || bridge.Untrack(n) {
		t.Fatal("Expected the node untracked once")
	}
	if dw.Valid(entity) {
		t.Error("Expected the entity removed")
	}

	n.SetName("still alive")
	n.Destroy()
}

func TestPublishIntersections(t *testing.T) {
	w := newWorld(t)
	dw := donburi.NewWorld()
	bridge := NewBridge(w, dw)
	received := collect(dw)

	a, ca := sphere(w, "A", mgl64.Vec3{})
	b, _ := sphere(w, "B", mgl64.Vec3{1.5, 0, 0})
	ca.OnIntersectionBegin(func(arbor.CollisionInfo) {})
	ea := bridge.Track(a)
	eb := bridge.Track(b)

	w.Step(0.016)
	CollisionEventType.ProcessEvents(dw)

	if len(*received) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(*received))
	}
	e := (*received)[0]
	if e.Type != arbor.INTERSECTION_BEGIN || e.Source != ea || e.Target != eb {
		t.Errorf("Unexpected event %+v", e)
	}
	if e.SourceCollider != "body" || e.Distance != 1.5 {
		t.Errorf("Unexpected event payload %+v", e)
	}
}

func TestPublishRaycastUntracked(t *testing.T) {
	w := newWorld(t)
	dw := donburi.NewWorld()
	NewBridge(w, dw)
	received := collect(dw)

	_, c := sphere(w, "target", mgl64.Vec3{5, 0, 0})
	c.SetReceiveRaycasts(true)

	w.Collisions.Raycast(geom.NewRay(mgl64.Vec3{}, mgl64.Vec3{1, 0, 0}))
	w.Step(0.016)
	CollisionEventType.ProcessEvents(dw)

	if len(*received) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(*received))
	}
	e := (*received)[0]
	if e.Type != arbor.RAYCAST_HIT || e.Source != donburi.Null || e.Target != donburi.Null {
		t.Errorf("Expected an untracked raycast hit, got %+v", e)
	}
	if e.TargetCollider != "body" || e.Distance != 4 {
		t.Errorf("Unexpected event payload %+v", e)
	}
}

func TestCloseStopsPublishing(t *testing.T) {
	w := newWorld(t)
	dw := donburi.NewWorld()
	bridge := NewBridge(w, dw)
	received := collect(dw)

	_, ca := sphere(w, "A", mgl64.Vec3{})
	sphere(w, "B", mgl64.Vec3{1, 0, 0})
	ca.OnIntersectionBegin(func(arbor.CollisionInfo) {})

	bridge.Close()
	w.Step(0.016)
	CollisionEventType.ProcessEvents(dw)

	if len(*received) != 0 {
		t.Errorf("Expected no event after Close, got %d", len(*received))
	}
}
