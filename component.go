package arbor

import (
	"hash/fnv"
	"reflect"
	"slices"
)

// ComponentID tells apart several components of the same type on one node.
type ComponentID uint32

// ComponentIDOf hashes a readable name into a ComponentID.
func ComponentIDOf(name string) ComponentID {
	h := fnv.New32a()
	h.Write([]byte(name))

	return ComponentID(h.Sum32())
}

// DefaultComponentID is the id used when none is given.
var DefaultComponentID = ComponentIDOf("")

// Component is implemented by embedding ComponentBase.
type Component interface {
	componentBase() *ComponentBase
}

// Initializer receives the data passed to AddComponent, once the component is attached.
type Initializer interface {
	Initialize(data any)
}

// Updatable components are stepped by the ComponentsSystem while enabled.
type Updatable interface {
	Update(dt float64)
}

// Finalizer is called exactly once, when the component is removed or its node destroyed.
type Finalizer interface {
	Finalize()
}

// EnableListener is notified when the effective enabled state changes.
type EnableListener interface {
	OnEnabledChanged(enabled bool)
}

// Cloneable components can be copied along with their node by Node.Clone.
// The copy must be detached: return a fresh value, not the receiver.
type Cloneable interface {
	Component
	CloneComponent() Component
}

// ComponentBase holds the attachment state every component shares.
type ComponentBase struct {
	self     Component
	id       ComponentID
	owner    *Node
	enabled  bool
	attached bool
	// bucket the ComponentsSystem currently files the component under
	registeredEnabled bool
}

func (b *ComponentBase) componentBase() *ComponentBase {
	return b
}

func (b *ComponentBase) ID() ComponentID {
	return b.id
}

// Owner returns the node the component was attached to; it stays set after removal.
func (b *ComponentBase) Owner() *Node {
	return b.owner
}

func (b *ComponentBase) World() *World {
	if b.owner == nil {
		return nil
	}

	return b.owner.world
}

func (b *ComponentBase) IsAttached() bool {
	return b.attached
}

// Enabled returns the component's own flag.
func (b *ComponentBase) Enabled() bool {
	return b.enabled
}

// EffectiveEnabled is true when the component and its owner's hierarchy are enabled.
func (b *ComponentBase) EffectiveEnabled() bool {
	return b.attached && b.enabled && b.owner.IsEnabledInHierarchy()
}

func (b *ComponentBase) SetEnabled(enabled bool) {
	if b.enabled == enabled {
		return
	}

	b.enabled = enabled
	if b.attached {
		b.owner.world.Components.sync(b.self, b.EffectiveEnabled())
	}
}

type componentPtr[T any] interface {
	*T
	Component
}

// AddComponent attaches a new T to n under DefaultComponentID.
func AddComponent[T any, PT componentPtr[T]](n *Node, data any) PT {
	return AddComponentWithID[T, PT](n, DefaultComponentID, data)
}

// AddComponentWithID attaches a new T to n. The component is registered before
// Initialize runs, so Initialize can reach its owner. A duplicate (type, id) is fatal.
func AddComponentWithID[T any, PT componentPtr[T]](n *Node, id ComponentID, data any) PT {
	n.mustAlive("add component")

	c := PT(new(T))
	n.attachComponent(c, id, true)
	if init, ok := any(c).(Initializer); ok {
		init.Initialize(data)
	}

	return c
}

// GetComponent returns the T attached to n under id.
func GetComponent[T any, PT componentPtr[T]](n *Node, id ComponentID) (PT, bool) {
	for _, c := range n.components[reflect.TypeOf((*PT)(nil)).Elem()] {
		if c.componentBase().id == id {
			return c.(PT), true
		}
	}

	return nil, false
}

// FirstComponent returns the first T attached to n, whatever its id.
func FirstComponent[T any, PT componentPtr[T]](n *Node) (PT, bool) {
	if list := n.components[reflect.TypeOf((*PT)(nil)).Elem()]; len(list) > 0 {
		return list[0].(PT), true
	}

	return nil, false
}

// ComponentsOfType returns every T attached to n in insertion order.
func ComponentsOfType[T any, PT componentPtr[T]](n *Node) []PT {
	list := n.components[reflect.TypeOf((*PT)(nil)).Elem()]
	out := make([]PT, 0, len(list))
	for _, c := range list {
		out = append(out, c.(PT))
	}

	return out
}

func HasComponent[T any, PT componentPtr[T]](n *Node, id ComponentID) bool {
	_, ok := GetComponent[T, PT](n, id)
	return ok
}

// RemoveComponent detaches and finalizes the T attached under id. Removing a component
// that is not there is fatal.
func RemoveComponent[T any, PT componentPtr[T]](n *Node, id ComponentID) {
	c, ok := GetComponent[T, PT](n, id)
	if !ok {
		n.world.fatalf("cannot remove %v with id %d from %q: no such component", reflect.TypeOf((*PT)(nil)).Elem(), id, n.name)
	}

	n.detachComponent(c)
}

// RemoveFirstComponent detaches the first T attached to n, if any.
func RemoveFirstComponent[T any, PT componentPtr[T]](n *Node) bool {
	c, ok := FirstComponent[T, PT](n)
	if !ok {
		return false
	}

	n.detachComponent(c)
	return true
}

// RemoveAllComponents detaches every T attached to n and returns how many there were.
func RemoveAllComponents[T any, PT componentPtr[T]](n *Node) int {
	list := ComponentsOfType[T, PT](n)
	for _, c := range list {
		if c.componentBase().attached {
			n.detachComponent(c)
		}
	}

	return len(list)
}

// AsComponent casts c, treating a mismatch as a fatal error.
func AsComponent[T any](c Component) T {
	t, ok := c.(T)
	if !ok {
		var owner *Node
		if c != nil {
			owner = c.componentBase().owner
		}
		if owner == nil {
			panic("arbor: cannot cast a detached component")
		}
		owner.world.fatalf("cannot cast %T to %v", c, reflect.TypeOf((*T)(nil)).Elem())
	}

	return t
}

// DetachComponent removes c from n and finalizes it.
func (n *Node) DetachComponent(c Component) {
	b := c.componentBase()
	if !b.attached || b.owner != n {
		n.world.fatalf("cannot detach %T from %q: not attached to this node", c, n.name)
	}

	n.detachComponent(c)
}

// Components returns every component of n, grouped by type in first insertion order.
func (n *Node) Components() []Component {
	var out []Component
	for _, t := range n.componentTypes {
		out = append(out, n.components[t]...)
	}

	return out
}

func (n *Node) ComponentCount() int {
	count := 0
	for _, list := range n.components {
		count += len(list)
	}

	return count
}

func (n *Node) attachComponent(c Component, id ComponentID, enabled bool) {
	b := c.componentBase()
	if b.attached {
		n.world.fatalf("cannot attach %T to %q: already attached to %q", c, n.name, b.owner.name)
	}

	t := reflect.TypeOf(c)
	for _, existing := range n.components[t] {
		if existing.componentBase().id == id {
			n.world.fatalf("cannot attach %v to %q: id %d is already used", t, n.name, id)
		}
	}

	b.self = c
	b.id = id
	b.owner = n
	b.enabled = enabled
	b.attached = true

	if n.components == nil {
		n.components = make(map[reflect.Type][]Component)
	}
	if _, ok := n.components[t]; !ok {
		n.componentTypes = append(n.componentTypes, t)
	}
	n.components[t] = append(n.components[t], c)

	n.world.Components.register(c, enabled && n.IsEnabledInHierarchy())
}

func (n *Node) detachComponent(c Component) {
	t := reflect.TypeOf(c)
	list := n.components[t]
	if i := slices.Index(list, c); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	if len(list) == 0 {
		delete(n.components, t)
		n.componentTypes = slices.DeleteFunc(n.componentTypes, func(other reflect.Type) bool {
			return other == t
		})
	} else {
		n.components[t] = list
	}

	n.world.Components.unregister(c)
	c.componentBase().attached = false

	if f, ok := c.(Finalizer); ok {
		f.Finalize()
	}
}
