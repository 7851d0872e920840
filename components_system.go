package arbor

import (
	"reflect"
	"slices"
)

var updatableType = reflect.TypeOf((*Updatable)(nil)).Elem()

type componentBucket struct {
	typ       reflect.Type
	updatable bool
	enabled   orderedSet[Component]
	disabled  orderedSet[Component]
}

// ComponentsSystem is the world registry of attached components. Components are
// bucketed by concrete type, in order of first registration, and within a bucket
// split between effectively enabled and disabled ones, in insertion order.
type ComponentsSystem struct {
	world   *World
	buckets map[reflect.Type]*componentBucket
	order   []*componentBucket
	// query type -> buckets whose type is assignable to it, rebuilt when a bucket appears
	hierarchy map[reflect.Type][]*componentBucket
}

func newComponentsSystem(w *World) *ComponentsSystem {
	return &ComponentsSystem{
		world:     w,
		buckets:   make(map[reflect.Type]*componentBucket),
		hierarchy: make(map[reflect.Type][]*componentBucket),
	}
}

func (s *ComponentsSystem) bucket(t reflect.Type) *componentBucket {
	b, ok := s.buckets[t]
	if !ok {
		b = &componentBucket{typ: t, updatable: t.Implements(updatableType)}
		s.buckets[t] = b
		s.order = append(s.order, b)
		clear(s.hierarchy)
	}

	return b
}

func (s *ComponentsSystem) register(c Component, enabled bool) {
	b := s.bucket(reflect.TypeOf(c))
	if enabled {
		b.enabled.add(c)
	} else {
		b.disabled.add(c)
	}
	c.componentBase().registeredEnabled = enabled
}

func (s *ComponentsSystem) unregister(c Component) {
	b, ok := s.buckets[reflect.TypeOf(c)]
	if !ok {
		return
	}
	b.enabled.remove(c)
	b.disabled.remove(c)
}

// sync moves c to the bucket matching enabled. Repeated calls with the same state do nothing.
func (s *ComponentsSystem) sync(c Component, enabled bool) {
	base := c.componentBase()
	if !base.attached || base.registeredEnabled == enabled {
		return
	}

	b := s.bucket(reflect.TypeOf(c))
	if enabled {
		b.disabled.remove(c)
		b.enabled.add(c)
	} else {
		b.enabled.remove(c)
		b.disabled.add(c)
	}
	base.registeredEnabled = enabled

	if l, ok := c.(EnableListener); ok {
		l.OnEnabledChanged(enabled)
	}
}

// Update steps every enabled Updatable component, bucket by bucket. Each bucket is
// iterated over a snapshot; components removed or disabled meanwhile are skipped, and
// components or buckets added meanwhile wait for the next tick.
func (s *ComponentsSystem) Update(dt float64) {
	for _, b := range slices.Clone(s.order) {
		if !b.updatable {
			continue
		}

		for _, c := range b.enabled.snapshot() {
			if b.enabled.has(c) {
				c.(Updatable).Update(dt)
			}
		}
	}
}

// Contains reports whether c is registered, enabled or not.
func (s *ComponentsSystem) Contains(c Component) bool {
	b, ok := s.buckets[reflect.TypeOf(c)]
	return ok && (b.enabled.has(c) || b.disabled.has(c))
}

// IsActive reports whether c is registered as effectively enabled.
func (s *ComponentsSystem) IsActive(c Component) bool {
	b, ok := s.buckets[reflect.TypeOf(c)]
	return ok && b.enabled.has(c)
}

// Count returns the number of registered components, enabled or not.
func (s *ComponentsSystem) Count() int {
	count := 0
	for _, b := range s.order {
		count += b.enabled.len() + b.disabled.len()
	}

	return count
}

func (s *ComponentsSystem) ActiveCount() int {
	count := 0
	for _, b := range s.order {
		count += b.enabled.len()
	}

	return count
}

func (s *ComponentsSystem) matching(t reflect.Type) []*componentBucket {
	if list, ok := s.hierarchy[t]; ok {
		return list
	}

	list := make([]*componentBucket, 0)
	for _, b := range s.order {
		if b.typ.AssignableTo(t) {
			list = append(list, b)
		}
	}
	s.hierarchy[t] = list

	return list
}

// QueryComponents returns the enabled components assignable to T, which can be a
// concrete pointer type or an interface.
func QueryComponents[T any](s *ComponentsSystem) []T {
	var out []T
	for _, b := range s.matching(reflect.TypeOf((*T)(nil)).Elem()) {
		for _, c := range b.enabled.items {
			out = append(out, c.(T))
		}
	}

	return out
}
