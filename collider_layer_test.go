package arbor

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestColliderLayerMembership(t *testing.T) {
	w := newTestWorld(t)
	_, a := sphereNode(w, "A", mgl64.Vec3{}, 1)
	bn, b := sphereNode(w, "B", mgl64.Vec3{4, 0, 0}, 1)

	layer := NewColliderLayer("enemies")
	if layer.AABB() != nil || layer.Sphere() != nil {
		t.Fatal("Expected no volume for an empty layer")
	}

	if !layer.Add(a) || !layer.Add(b) || layer.Add(a) {
		t.Fatal("Expected each collider to be added once")
	}
	if !layer.Contains(b) || layer.Len() != 2 {
		t.Errorf("Expected 2 members")
	}

	bn.RemoveCollider("body")
	if got := layer.Colliders(); len(got) != 1 || got[0] != a {
		t.Errorf("Expected removed colliders to be skipped, got %d", len(got))
	}

	if !layer.Remove(a) || layer.Remove(a) {
		t.Errorf("Expected a to be removed once")
	}
}

func TestColliderLayerVolumes(t *testing.T) {
	w := newTestWorld(t)
	_, a := sphereNode(w, "A", mgl64.Vec3{}, 1)
	_, b := boxNode(w, "B", mgl64.Vec3{4, 0, 0}, mgl64.Vec3{1, 1, 1})

	layer := NewColliderLayer("props")
	layer.Add(a)
	layer.Add(b)

	bounds, ok := layer.Bounds()
	if !ok {
		t.Fatal("Expected bounds")
	}
	if !vec3Equal(bounds.Min, mgl64.Vec3{-1, -1, -1}, 1e-12) || !vec3Equal(bounds.Max, mgl64.Vec3{5, 1, 1}, 1e-12) {
		t.Errorf("Unexpected bounds %v", bounds)
	}

	sphere := layer.Sphere()
	for _, p := range []mgl64.Vec3{{-1, 0, 0}, {5, 1, 1}, {0, 1, 0}} {
		if sphere.Center().Sub(p).Len() > sphere.Radius()+1e-9 {
			t.Errorf("Expected the layer sphere to contain %v", p)
		}
	}
}

func TestColliderLayerIntersect(t *testing.T) {
	w := newTestWorld(t)
	_, a := sphereNode(w, "A", mgl64.Vec3{}, 1)
	bn, b := sphereNode(w, "B", mgl64.Vec3{1, 0, 0}, 1)
	_, far := sphereNode(w, "far", mgl64.Vec3{40, 0, 0}, 1)
	_, probe := sphereNode(w, "probe", mgl64.Vec3{0.5, 0, 0}, 0.5)

	layer := NewColliderLayer("group")
	layer.Add(a)
	layer.Add(b)
	layer.Add(probe)

	log := &callbackLog{}
	if n := layer.Intersect(probe, log.record("hit")); n != 2 {
		t.Errorf("Expected 2 overlaps, got %d", n)
	}
	if got := log.String(); got != "hit:A,hit:B" {
		t.Errorf("Expected A then B, got %q", got)
	}

	bn.SetEnabled(false)
	if n := layer.Intersect(probe, nil); n != 1 {
		t.Errorf("Expected disabled members to be skipped, got %d", n)
	}
	if n := layer.Intersect(far, nil); n != 0 {
		t.Errorf("Expected no overlap far from the layer, got %d", n)
	}
}

func TestColliderLayerContainsPoint(t *testing.T) {
	w := newTestWorld(t)
	_, a := sphereNode(w, "A", mgl64.Vec3{}, 1)
	_, b := boxNode(w, "B", mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5})

	layer := NewColliderLayer("group")
	layer.Add(a)
	layer.Add(b)

	if got := layer.ContainsPoint(mgl64.Vec3{0.75, 0, 0}); len(got) != 2 {
		t.Errorf("Expected both members, got %d", len(got))
	}
	if got := layer.ContainsPoint(mgl64.Vec3{1.4, 0, 0}); len(got) != 1 || got[0] != b {
		t.Errorf("Expected only the box")
	}
	if got := layer.ContainsPoint(mgl64.Vec3{0, 3, 0}); len(got) != 0 {
		t.Errorf("Expected no member, got %d", len(got))
	}
}
