package arbor

import "fmt"

const (
	INTERSECTION_BEGIN EventType = iota
	INTERSECTION_STAY
	INTERSECTION_END
	RAYCAST_HIT
	SCREENCAST_HIT
)

type EventType uint8

func (t EventType) String() string {
	switch t {
	case INTERSECTION_BEGIN:
		return "IntersectionBegin"
	case INTERSECTION_STAY:
		return "IntersectionStay"
	case INTERSECTION_END:
		return "IntersectionEnd"
	case RAYCAST_HIT:
		return "RaycastHit"
	case SCREENCAST_HIT:
		return "ScreencastHit"
	}

	return fmt.Sprintf("EventType(%d)", uint8(t))
}

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Intersection events, one per source collider and partner
type IntersectionBeginEvent struct {
	Info CollisionInfo
}

func (e IntersectionBeginEvent) Type() EventType { return INTERSECTION_BEGIN }

type IntersectionStayEvent struct {
	Info CollisionInfo
}

func (e IntersectionStayEvent) Type() EventType { return INTERSECTION_STAY }

// IntersectionEndEvent carries the last info recorded while the pair overlapped.
type IntersectionEndEvent struct {
	Info CollisionInfo
}

func (e IntersectionEndEvent) Type() EventType { return INTERSECTION_END }

// RaycastHitEvent is emitted for every receiver notified by a ray cast
type RaycastHitEvent struct {
	Info CollisionInfo
}

func (e RaycastHitEvent) Type() EventType { return RAYCAST_HIT }

type ScreencastHitEvent struct {
	Event ScreencastEvent
	Info  CollisionInfo
}

func (e ScreencastHitEvent) Type() EventType { return SCREENCAST_HIT }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers what happened during a step and hands it to the listeners when the step
// is over, after every collider callback already ran.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 256),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// SubscribeAll adds a listener for every event type
func (e *Events) SubscribeAll(listener EventListener) {
	for t := INTERSECTION_BEGIN; t <= SCREENCAST_HIT; t++ {
		e.Subscribe(t, listener)
	}
}

// Pending returns the number of buffered events
func (e *Events) Pending() int {
	return len(e.buffer)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer.
// Events emitted by listeners are delivered by the same flush.
func (e *Events) flush() {
	for i := 0; i < len(e.buffer); i++ {
		event := e.buffer[i]
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	clear(e.buffer)
	e.buffer = e.buffer[:0]
}
