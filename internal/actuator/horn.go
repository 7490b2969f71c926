package actuator

import (
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// HornState is a read-only snapshot of the horn.
type HornState struct {
	Active    bool          `json:"active"`
	Remaining time.Duration `json:"remaining"`
	Sustained bool          `json:"sustained"`
}

// Horn models timed horn pulses and the continuous warning tone.
type Horn struct {
	min, max  time.Duration
	remaining time.Duration
	elapsed   time.Duration
	sustained bool
}

// NewHorn creates a silent horn with the configured pulse bounds.
func NewHorn(cfg lighting.Config) *Horn {
	return &Horn{min: cfg.HornPulseMin, max: cfg.HornPulseMax}
}

// Trigger starts a pulse of duration d clamped to the configured bounds and
// returns the clamped duration. A running pulse is restarted.
func (h *Horn) Trigger(d time.Duration) time.Duration {
	return h.TriggerAt(d, 0)
}

// TriggerAt starts a pulse that began `since` ago, so the pulse end lines up
// with a transition that fell inside the last Advance interval.
func (h *Horn) TriggerAt(d, since time.Duration) time.Duration {
	d = min(max(d, h.min), h.max)
	h.elapsed = since
	h.remaining = max(d-since, 0)
	return d
}

// SetSustained switches the continuous tone on or off.
func (h *Horn) SetSustained(on bool) {
	h.sustained = on
}

// Release stops the horn gracefully: the continuous tone ends at once and
// an in-flight pulse is cut to its minimum duration.
func (h *Horn) Release() {
	h.sustained = false
	if h.remaining > 0 {
		h.remaining = min(h.remaining, max(h.min-h.elapsed, 0))
	}
}

// Cancel silences the horn immediately.
func (h *Horn) Cancel() {
	h.sustained = false
	h.remaining = 0
	h.elapsed = 0
}

// Advance counts the running pulse down by dt.
func (h *Horn) Advance(dt time.Duration) {
	if h.remaining <= 0 || dt <= 0 {
		return
	}
	h.elapsed += dt
	h.remaining = max(h.remaining-dt, 0)
}

// State returns a snapshot of the horn.
func (h *Horn) State() HornState {
	return HornState{
		Active:    h.sustained || h.remaining > 0,
		Remaining: h.remaining,
		Sustained: h.sustained,
	}
}
