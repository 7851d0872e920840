package arbor

import (
	"slices"
	"sort"

	"github.com/akmonengine/arbor/config"
	"github.com/akmonengine/arbor/geom"
	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionEventDispatcher tracks the colliders of a world in four registries, derived
// from each collider's enabled state, flags and callbacks:
//   - active: every enabled collider, the partners of the sweep
//   - intersect: enabled colliders with IsIntersecting, the sources of the sweep
//   - screencast: enabled colliders blocking or listening to touches
//   - raycast: enabled colliders receiving or blocking ray casts
//
// It only listens to the world update source while some collider intersects, and to
// the touch source while some collider takes screencasts.
type CollisionEventDispatcher struct {
	world      *World
	active     orderedSet[*Collider]
	intersect  orderedSet[*Collider]
	screencast orderedSet[*Collider]
	raycast    orderedSet[*Collider]

	updateSub SubscriptionID
	touchSub  SubscriptionID

	grid    *SpatialGrid
	workers int
}

func newCollisionEventDispatcher(w *World) *CollisionEventDispatcher {
	d := &CollisionEventDispatcher{world: w, workers: w.config.Workers}
	if bp := w.config.BroadPhase; bp.Kind == config.BroadPhaseGrid {
		d.grid = NewSpatialGrid(bp.CellSize, bp.Cells)
	}

	return d
}

// sync re-derives the registries c belongs to. Calling it twice changes nothing.
func (d *CollisionEventDispatcher) sync(c *Collider) {
	enabled := c.IsEnabled()

	setMember(&d.active, c, enabled)
	if !setMember(&d.intersect, c, enabled && c.intersecting) {
		c.table.clear()
	}
	setMember(&d.screencast, c, enabled && (c.blockScreencasts || c.hasScreencastCallback()))
	setMember(&d.raycast, c, enabled && (c.receiveRaycasts || c.blockRaycasts))

	d.updateSubscriptions()
}

// setMember adds or removes c and returns whether c is a member afterwards.
func setMember(s *orderedSet[*Collider], c *Collider, member bool) bool {
	if member {
		s.add(c)
	} else {
		s.remove(c)
	}

	return member
}

func (d *CollisionEventDispatcher) updateSubscriptions() {
	switch {
	case d.intersect.len() > 0 && d.updateSub == 0:
		d.updateSub = d.world.OnUpdate(d.update)
		d.world.log.Debug("collision sweep subscribed to updates")
	case d.intersect.len() == 0 && d.updateSub != 0:
		d.world.RemoveUpdate(d.updateSub)
		d.updateSub = 0
		d.world.log.Debug("collision sweep unsubscribed from updates")
	}

	switch {
	case d.screencast.len() > 0 && d.touchSub == 0:
		d.touchSub = d.world.OnTouch(d.onTouch)
	case d.screencast.len() == 0 && d.touchSub != 0:
		d.world.RemoveTouch(d.touchSub)
		d.touchSub = 0
	}
}

func (d *CollisionEventDispatcher) clear() {
	for _, c := range d.active.snapshot() {
		c.table.clear()
	}
	d.active.clear()
	d.intersect.clear()
	d.screencast.clear()
	d.raycast.clear()
	d.updateSubscriptions()
}

func (d *CollisionEventDispatcher) IsSubscribedToUpdate() bool {
	return d.updateSub != 0
}

func (d *CollisionEventDispatcher) IsSubscribedToTouch() bool {
	return d.touchSub != 0
}

func (d *CollisionEventDispatcher) IsActive(c *Collider) bool       { return d.active.has(c) }
func (d *CollisionEventDispatcher) IsIntersecting(c *Collider) bool { return d.intersect.has(c) }
func (d *CollisionEventDispatcher) IsScreencast(c *Collider) bool   { return d.screencast.has(c) }
func (d *CollisionEventDispatcher) IsRaycast(c *Collider) bool      { return d.raycast.has(c) }

// ActiveColliders returns the enabled colliders in registration order.
func (d *CollisionEventDispatcher) ActiveColliders() []*Collider {
	return d.active.snapshot()
}

func (d *CollisionEventDispatcher) update(float64) {
	d.Sweep()
}

// Sweep runs the intersection state machine once: every intersecting collider is tested
// against every active collider of another node, then Begin, Continue and End callbacks
// fire per source and partner, in registration order.
func (d *CollisionEventDispatcher) Sweep() {
	sources := d.intersect.snapshot()
	partners := d.active.snapshot()
	if len(sources) == 0 {
		return
	}

	// volumes refresh their world cache on read: do it once here, so the narrow phase only reads
	for _, c := range partners {
		c.volume.Update()
	}

	for _, src := range sources {
		for _, st := range src.table.entries {
			st.Current = false
		}
	}

	candidates := d.candidates(partners)
	task(d.workers, sources, func(src *Collider) {
		for _, idx := range candidates(src) {
			other := partners[idx]
			if other == src || other.node == src.node {
				continue
			}

			info := NewCollisionInfo(src)
			if src.Intersect(other, &info) {
				st := src.table.ensure(other)
				st.Current = true
				st.Info = info
			}
		}
	})

	for _, src := range sources {
		if !d.intersect.has(src) {
			continue
		}

		for _, other := range src.table.partners() {
			st := src.table.get(other)
			if st == nil {
				continue
			}
			previous, current, info := st.Previous, st.Current, st.Info
			st.Previous = current

			switch {
			case !previous && current:
				d.world.Events.emit(IntersectionBeginEvent{Info: info})
				if src.onBegin != nil {
					src.onBegin(info)
				}
			case previous && current:
				d.world.Events.emit(IntersectionStayEvent{Info: info})
				if src.onIntersection != nil {
					src.onIntersection(info)
				}
			case previous && !current:
				src.table.delete(other)
				d.world.Events.emit(IntersectionEndEvent{Info: info})
				if src.onEnd != nil {
					src.onEnd(info)
				}
			}
		}
	}
}

// candidates returns, per source, the sorted indices of the partners worth an exact test.
func (d *CollisionEventDispatcher) candidates(partners []*Collider) func(src *Collider) []int {
	all := make([]int, len(partners))
	for i := range all {
		all[i] = i
	}
	if d.grid == nil {
		return func(*Collider) []int { return all }
	}

	index := make(map[*Collider]int, len(partners))
	var fit, oversized []int
	var bounds []volume.Bounds
	for i, c := range partners {
		index[c] = i
		b := c.Bounds()
		if d.grid.Fits(b) {
			fit = append(fit, i)
			bounds = append(bounds, b)
		} else {
			oversized = append(oversized, i)
		}
	}

	near := make(map[int][]int, len(partners))
	d.grid.Build(bounds)
	for _, p := range d.grid.FindPairs(bounds) {
		a, b := fit[p.A], fit[p.B]
		near[a] = append(near[a], b)
		near[b] = append(near[b], a)
	}
	for _, o := range oversized {
		near[o] = all
	}
	for _, i := range fit {
		near[i] = append(near[i], oversized...)
		sort.Ints(near[i])
	}

	return func(src *Collider) []int {
		return near[index[src]]
	}
}

// RaycastAll returns every hit of the raycast registry, unordered. Callbacks are not called.
func (d *CollisionEventDispatcher) RaycastAll(ray geom.Ray) []CollisionInfo {
	var hits []CollisionInfo
	if ray.IsDegenerate() {
		return hits
	}

	for _, c := range d.raycast.snapshot() {
		info := NewCollisionInfo(nil)
		if c.IntersectRay(ray, &info) {
			hits = append(hits, info)
		}
	}

	return hits
}

// Raycast returns the closest hit, or an info with a nil Target and NoDistance.
// Receivers are notified nearest first, up to and including the first blocking collider.
// Their RaycastHitEvents are buffered like every other event: outside of Step they reach
// the Events subscribers at the end of the next Step or Touch.
func (d *CollisionEventDispatcher) Raycast(ray geom.Ray) CollisionInfo {
	hits := sortedHits(d.RaycastAll(ray))
	if len(hits) == 0 {
		return NewCollisionInfo(nil)
	}

	for _, hit := range hits {
		target := hit.Target
		if target.receiveRaycasts {
			d.world.Events.emit(RaycastHitEvent{Info: hit})
			if target.onRaycast != nil {
				target.onRaycast(hit)
			}
		}
		if target.blockRaycasts {
			break
		}
	}

	return hits[0]
}

// Screencast returns the hits of the ray under a window point, nearest first, stopping
// at the first collider blocking screencasts. It needs an active camera.
func (d *CollisionEventDispatcher) Screencast(point mgl64.Vec2) []CollisionInfo {
	camera := d.world.ActiveCamera()
	if camera == nil {
		return nil
	}

	ray := camera.RayFromScreen(point)
	if ray.IsDegenerate() {
		return nil
	}

	var hits []CollisionInfo
	for _, c := range d.screencast.snapshot() {
		info := NewCollisionInfo(nil)
		if c.IntersectRay(ray, &info) {
			hits = append(hits, info)
		}
	}

	hits = sortedHits(hits)
	for i, hit := range hits {
		if hit.Target.blockScreencasts {
			return hits[:i+1]
		}
	}

	return hits
}

func (d *CollisionEventDispatcher) onTouch(point mgl64.Vec2, event ScreencastEvent) {
	if d.world.ActiveCamera() == nil {
		d.world.log.WithField("event", event).Debug("touch ignored: no active camera")
		return
	}

	for _, hit := range d.Screencast(point) {
		if fn := hit.Target.onScreencast[event]; fn != nil {
			d.world.Events.emit(ScreencastHitEvent{Event: event, Info: hit})
			fn(hit)
		}
	}
}

func sortedHits(hits []CollisionInfo) []CollisionInfo {
	slices.SortStableFunc(hits, func(a, b CollisionInfo) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	})

	return hits
}
