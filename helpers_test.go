package arbor

import (
	"fmt"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/akmonengine/arbor/config"
	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	return newTestWorldWith(t, config.Default())
}

func newTestWorldWith(t *testing.T, cfg config.Config) *World {
	t.Helper()

	w := NewWorld(cfg)
	w.Logger().Logger.SetOutput(io.Discard)
	t.Cleanup(w.Close)

	return w
}

// sphereNode creates a root node at position holding one sphere collider named "body".
func sphereNode(w *World, name string, position mgl64.Vec3, radius float64) (*Node, *Collider) {
	n := NewNode(w, name)
	n.SetLocalTranslation(position)
	c := n.AddCollider("body", volume.NewSphere(mgl64.Vec3{}, radius))

	return n, c
}

func boxNode(w *World, name string, position, halfExtents mgl64.Vec3) (*Node, *Collider) {
	n := NewNode(w, name)
	n.SetLocalTranslation(position)
	c := n.AddCollider("body", volume.NewAABB(volume.BoundsFromCenter(mgl64.Vec3{}, halfExtents)))

	return n, c
}

func expectPanic(t *testing.T, contains string, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("Expected a panic containing %q", contains)
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, contains) {
			t.Fatalf("Expected a panic containing %q, got %q", contains, msg)
		}
	}()

	fn()
}

func vec3Equal(a, b mgl64.Vec3, tolerance float64) bool {
	return math.Abs(a.X()-b.X()) < tolerance &&
		math.Abs(a.Y()-b.Y()) < tolerance &&
		math.Abs(a.Z()-b.Z()) < tolerance
}

func mat4Equal(a, b mgl64.Mat4, tolerance float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) >= tolerance {
			return false
		}
	}
	return true
}

type eventCapture struct {
	events []Event
}

func (ec *eventCapture) capture(event Event) {
	ec.events = append(ec.events, event)
}

func (ec *eventCapture) reset() {
	ec.events = ec.events[:0]
}

func (ec *eventCapture) count() int {
	return len(ec.events)
}

func (ec *eventCapture) countType(eventType EventType) int {
	n := 0
	for _, e := range ec.events {
		if e.Type() == eventType {
			n++
		}
	}
	return n
}

// callbackLog records the partners seen by intersection callbacks, as "begin:B" and so on.
type callbackLog struct {
	entries []string
}

func (l *callbackLog) record(kind string) IntersectionCallback {
	return func(info CollisionInfo) {
		l.entries = append(l.entries, kind+":"+info.Target.Node().Name())
	}
}

func (l *callbackLog) reset() {
	l.entries = nil
}

func (l *callbackLog) String() string {
	return strings.Join(l.entries, ",")
}
