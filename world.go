// Package arbor is a scene graph with a collision core: nodes own components and
// colliders, and a per-world dispatcher sweeps colliders for intersections every step,
// answers ray casts and routes touches through the active camera.
package arbor

import (
	"github.com/akmonengine/arbor/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// World is the explicit context shared by a scene: it owns the component registry,
// the collision dispatcher, the update and touch sources and the event bus.
type World struct {
	id     uuid.UUID
	config config.Config
	log    *logrus.Entry

	Components *ComponentsSystem
	Collisions *CollisionEventDispatcher
	Events     Events

	roots   orderedSet[*Node]
	camera  Camera
	updates subscribers[func(dt float64)]
	touches subscribers[func(point mgl64.Vec2, event ScreencastEvent)]
	steps   uint64
	closed  bool
}

// NewWorld creates a world from cfg, which must be valid.
func NewWorld(cfg config.Config) *World {
	if err := cfg.Validate(); err != nil {
		panic(errors.Wrap(err, "arbor: invalid world config"))
	}

	id := uuid.New()
	logger := logrus.New()
	level, _ := cfg.Level()
	logger.SetLevel(level)

	w := &World{
		id:     id,
		config: cfg,
		log:    logger.WithField("world", id.String()),
		Events: NewEvents(),
	}
	w.Components = newComponentsSystem(w)
	w.Collisions = newCollisionEventDispatcher(w)

	w.log.WithField("broad_phase", cfg.BroadPhase.Kind).Debug("world created")

	return w
}

func (w *World) ID() uuid.UUID {
	return w.id
}

func (w *World) Config() config.Config {
	return w.config
}

// Logger returns the entry every log line of this world goes through.
func (w *World) Logger() *logrus.Entry {
	return w.log
}

// Roots returns the nodes without a parent.
func (w *World) Roots() []*Node {
	return w.roots.snapshot()
}

// Steps returns how many times Step ran.
func (w *World) Steps() uint64 {
	return w.steps
}

// Step advances the world by dt: enabled updatable components run first, then the
// update subscribers (the collision sweep among them), then buffered events are flushed.
func (w *World) Step(dt float64) {
	w.mustOpen("step")

	w.Components.Update(dt)
	w.updates.each(func(fn func(float64)) {
		fn(dt)
	})
	w.steps++
	w.Events.flush()
}

// OnUpdate registers fn to run on every Step.
func (w *World) OnUpdate(fn func(dt float64)) SubscriptionID {
	return w.updates.add(fn)
}

func (w *World) RemoveUpdate(id SubscriptionID) bool {
	return w.updates.remove(id)
}

// OnTouch registers fn to receive every touch delivered by Touch.
func (w *World) OnTouch(fn func(point mgl64.Vec2, event ScreencastEvent)) SubscriptionID {
	return w.touches.add(fn)
}

func (w *World) RemoveTouch(id SubscriptionID) bool {
	return w.touches.remove(id)
}

// Touch is the entry point of the platform input layer: point is in window pixels,
// origin at the top left corner.
func (w *World) Touch(point mgl64.Vec2, event ScreencastEvent) {
	w.mustOpen("touch")

	w.touches.each(func(fn func(mgl64.Vec2, ScreencastEvent)) {
		fn(point, event)
	})
	w.Events.flush()
}

func (w *World) SetActiveCamera(camera Camera) {
	w.camera = camera
}

// ActiveCamera returns nil when no camera was set.
func (w *World) ActiveCamera() Camera {
	return w.camera
}

// Close destroys every root node and drops all subscriptions. The world cannot be used afterwards.
func (w *World) Close() {
	if w.closed {
		return
	}

	for _, root := range w.roots.snapshot() {
		root.Destroy()
	}
	w.Collisions.clear()
	w.updates.clear()
	w.touches.clear()
	w.closed = true

	w.log.Debug("world closed")
}

func (w *World) mustOpen(op string) {
	if w.closed {
		w.fatalf("cannot %s: world is closed", op)
	}
}

// fatalf logs and panics on a broken usage contract.
func (w *World) fatalf(format string, args ...interface{}) {
	err := errors.Errorf("arbor: "+format, args...)
	w.log.Error(err)
	panic(err)
}
