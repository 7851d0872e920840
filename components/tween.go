package components

import (
	"github.com/akmonengine/arbor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenSettings describe a move of the node's local translation.
// A nil Ease is linear.
type TweenSettings struct {
	To       mgl64.Vec3
	Duration float32
	Ease     ease.TweenFunc
}

// Tween eases its node's local translation towards a target. Once finished it disables
// itself and calls OnDone. Initialize with TweenSettings starts it right away.
type Tween struct {
	arbor.ComponentBase

	OnDone func()

	tweens [3]*gween.Tween
	done   bool
}

func (t *Tween) Initialize(data any) {
	if s, ok := data.(TweenSettings); ok {
		t.Start(s)
	}
}

// Start restarts the tween from the current local translation, and enables it.
func (t *Tween) Start(s TweenSettings) {
	fn := s.Ease
	if fn == nil {
		fn = ease.Linear
	}

	from := t.Owner().LocalTranslation()
	for i := range t.tweens {
		t.tweens[i] = gween.New(float32(from[i]), float32(s.To[i]), s.Duration, fn)
	}
	t.done = false
	t.SetEnabled(true)
}

// Done is true once the target was reached, or when no tween was started.
func (t *Tween) Done() bool {
	return t.done || t.tweens[0] == nil
}

func (t *Tween) Update(dt float64) {
	if t.Done() {
		return
	}

	var position mgl64.Vec3
	finished := true
	for i, tw := range t.tweens {
		value, over := tw.Update(float32(dt))
		position[i] = float64(value)
		finished = finished && over
	}
	t.Owner().SetLocalTranslation(position)

	if finished {
		t.done = true
		t.SetEnabled(false)
		if t.OnDone != nil {
			t.OnDone()
		}
	}
}

// CloneComponent copies the callback only; the clone starts idle.
func (t *Tween) CloneComponent() arbor.Component {
	return &Tween{OnDone: t.OnDone}
}
