// Package ecs bridges arbor collision events into a [Donburi] world.
//
// A [Bridge] mirrors tracked nodes as Donburi entities carrying [NodeComponent], and
// republishes every event of the arbor world bus as a [CollisionEvent] on
// [CollisionEventType], with the entities of both nodes resolved.
//
// Usage:
//
//	bridge := ecs.NewBridge(world, donburi.NewWorld())
//	bridge.Track(player)
//	ecs.CollisionEventType.Subscribe(bridge.Donburi(), onCollision)
//	// each frame, after world.Step:
//	ecs.CollisionEventType.ProcessEvents(bridge.Donburi())
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
