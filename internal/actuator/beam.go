package actuator

import (
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// BeamState is a read-only snapshot of the beam.
type BeamState struct {
	Mode     lighting.BeamMode `json:"mode"`
	Blinking bool              `json:"blinking"`
	Phase    time.Duration     `json:"phase"`
	Manual   bool              `json:"manual"`
}

// Edge describes a transition into the high half of the blink cycle that
// happened during an Advance.
type Edge struct {
	Rose bool

	// Since is how long before the end of the Advance interval the most
	// recent high transition occurred.
	Since time.Duration
}

// Beam models the headlamp beam selector and its blink phase.
type Beam struct {
	half     time.Duration
	mode     lighting.BeamMode
	blinking bool
	phase    time.Duration
	manual   bool
}

// NewBeam creates a beam on LOW, not blinking.
func NewBeam(cfg lighting.Config) *Beam {
	return &Beam{half: cfg.HalfPeriod(), mode: lighting.BeamLow}
}

// Set holds the beam steady on mode, stopping any blink.
func (b *Beam) Set(mode lighting.BeamMode) {
	b.blinking = false
	b.phase = 0
	b.mode = mode
}

// StartBlinking begins a blink cycle on its high half. It reports true when
// this call started the cycle, which is itself a high transition; a cycle
// already running is left untouched.
func (b *Beam) StartBlinking() bool {
	if b.blinking {
		return false
	}
	b.blinking = true
	b.phase = 0
	b.mode = lighting.BeamHigh
	return true
}

// SetManual marks the beam as driver-held on mode.
func (b *Beam) SetManual(mode lighting.BeamMode) {
	b.Set(mode)
	b.manual = true
}

// ClearManual releases the driver hold. The mode is left as is until the
// next command.
func (b *Beam) ClearManual() {
	b.manual = false
}

// Advance moves the blink phase forward by dt, toggling the mode at every
// half-period boundary crossed.
func (b *Beam) Advance(dt time.Duration) Edge {
	if !b.blinking || b.half <= 0 || dt <= 0 {
		return Edge{}
	}

	b.phase += dt
	n := int64(b.phase / b.half)
	if n == 0 {
		return Edge{}
	}
	b.phase -= time.Duration(n) * b.half

	// Boundaries k = 1..n; entries into HIGH are the odd k when starting LOW
	// and the even k when starting HIGH.
	last := n
	if (b.mode == lighting.BeamLow) != (last%2 == 1) {
		last--
	}
	if n%2 == 1 {
		b.mode = toggle(b.mode)
	}
	if last < 1 {
		return Edge{}
	}
	return Edge{Rose: true, Since: b.phase + time.Duration(n-last)*b.half}
}

// State returns a snapshot of the beam.
func (b *Beam) State() BeamState {
	return BeamState{Mode: b.mode, Blinking: b.blinking, Phase: b.phase, Manual: b.manual}
}

func toggle(m lighting.BeamMode) lighting.BeamMode {
	if m == lighting.BeamHigh {
		return lighting.BeamLow
	}
	return lighting.BeamHigh
}
