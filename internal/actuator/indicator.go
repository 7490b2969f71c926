package actuator

import (
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// IndicatorState is a read-only snapshot of the indicator lamps.
type IndicatorState struct {
	Side   lighting.Side `json:"side"`
	Hazard bool          `json:"hazard"`
	Lit    bool          `json:"lit"`
}

// Indicator models the direction indicators and hazard flasher.
//
// The hazard flag takes exclusive control of both lamps. A side held on for
// longer than the auto-cancel window is switched off and stays off until the
// caller stops requesting it.
type Indicator struct {
	period     time.Duration
	autoCancel time.Duration

	side      lighting.Side
	hazard    bool
	cancelled lighting.Side
	onFor     time.Duration
	phase     time.Duration
}

// NewIndicator creates dark indicators.
func NewIndicator(cfg lighting.Config) *Indicator {
	return &Indicator{
		period:     cfg.IndicatorPeriod,
		autoCancel: cfg.IndicatorAutoCancel,
		side:       lighting.SideNone,
		cancelled:  lighting.SideNone,
	}
}

// Command sets the requested side and hazard flag for this tick.
func (i *Indicator) Command(side lighting.Side, hazard bool) {
	wasFlashing := i.flashing()

	if side != i.cancelled {
		i.cancelled = lighting.SideNone
	}
	if side == i.cancelled {
		side = lighting.SideNone
	}
	if hazard {
		side = lighting.SideNone
	}

	if side != i.side {
		i.onFor = 0
	}
	i.side = side
	i.hazard = hazard

	if !i.flashing() || !wasFlashing {
		i.phase = 0
	}
}

// Advance moves the flash phase and the auto-cancel timer forward by dt.
func (i *Indicator) Advance(dt time.Duration) {
	if !i.flashing() || dt <= 0 {
		return
	}
	if i.period > 0 {
		i.phase = (i.phase + dt) % i.period
	}
	if i.side == lighting.SideNone || i.autoCancel <= 0 {
		return
	}
	i.onFor += dt
	if i.onFor >= i.autoCancel {
		i.cancelled = i.side
		i.side = lighting.SideNone
		i.onFor = 0
		i.phase = 0
	}
}

// State returns a snapshot of the indicators.
func (i *Indicator) State() IndicatorState {
	return IndicatorState{
		Side:   i.side,
		Hazard: i.hazard,
		Lit:    i.flashing() && i.phase < i.period/2,
	}
}

func (i *Indicator) flashing() bool {
	return i.hazard || i.side != lighting.SideNone
}
