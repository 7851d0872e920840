// Package components holds ready-made components for arbor nodes.
package components

import (
	"github.com/akmonengine/arbor"
	"github.com/akmonengine/arbor/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// MoverSettings are the speeds a Mover starts with.
// Speeds are in units per second along the node's own axes, rates in radians per second.
type MoverSettings struct {
	ForwardSpeed float64
	RightSpeed   float64
	UpSpeed      float64
	YawRate      float64
	PitchRate    float64
	RollRate     float64
}

// Mover moves and turns its node at constant speeds every update.
type Mover struct {
	arbor.ComponentBase
	MoverSettings
}

// Initialize accepts a MoverSettings or a *MoverSettings; any other data leaves the mover still.
func (m *Mover) Initialize(data any) {
	switch s := data.(type) {
	case MoverSettings:
		m.MoverSettings = s
	case *MoverSettings:
		if s != nil {
			m.MoverSettings = *s
		}
	}
}

func (m *Mover) Update(dt float64) {
	n := m.Owner()

	delta := n.Forward().Mul(m.ForwardSpeed).
		Add(n.Right().Mul(m.RightSpeed)).
		Add(n.Up().Mul(m.UpSpeed))
	if delta.LenSqr() > 0 {
		n.TranslateWorld(delta.Mul(dt))
	}

	if m.YawRate == 0 && m.PitchRate == 0 && m.RollRate == 0 {
		return
	}
	turn := mgl64.QuatRotate(m.YawRate*dt, geom.AxisUp).
		Mul(mgl64.QuatRotate(m.PitchRate*dt, geom.AxisRight)).
		Mul(mgl64.QuatRotate(m.RollRate*dt, geom.AxisForward))
	n.RotateLocal(turn)
}

// Stop zeroes every speed.
func (m *Mover) Stop() {
	m.MoverSettings = MoverSettings{}
}

func (m *Mover) CloneComponent() arbor.Component {
	return &Mover{MoverSettings: m.MoverSettings}
}
