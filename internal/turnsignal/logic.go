// Package turnsignal decides which indicator the lateral motion of the ego
// calls for, using a per-side hysteresis machine.
//
// A side activates once the motion towards it stays above the activation
// threshold for ActivationDebounce. It stays active while the motion stays
// above the lower deadzone bound and drops out after DeactivationDebounce
// inside the deadzone. Motion above threshold towards the opposite side
// cancels the active side first.
//
// Lateral velocity is always evaluated. Steering angle and yaw rate join in
// when their thresholds are non-zero. Positive values mean leftward.
package turnsignal

import (
	"fmt"
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// ErrUnknownSide is returned when the logic holds a side outside its closed
// set. It wraps lighting.ErrInvariantViolation.
var ErrUnknownSide = fmt.Errorf("turnsignal: unknown side: %w", lighting.ErrInvariantViolation)

// Input is the lateral motion sample for one tick.
type Input struct {
	LateralVelocity float64 // m/s
	SteeringAngle   float64 // degrees
	YawRate         float64 // degrees/s
}

// Logic is the turn-signal hysteresis machine. It is not safe for concurrent use.
type Logic struct {
	cfg        lighting.Config
	active     lighting.Side
	aboveLeft  time.Duration
	aboveRight time.Duration
	deadzone   time.Duration
}

// New creates the logic with no side active.
func New(cfg lighting.Config) *Logic {
	return &Logic{cfg: cfg, active: lighting.SideNone}
}

// Active returns the side currently requested.
func (l *Logic) Active() lighting.Side {
	return l.active
}

// Update advances the machine by dt and returns the requested side.
func (l *Logic) Update(in Input, dt time.Duration) (lighting.Side, error) {
	left := l.exceeds(in, 1, false)
	right := l.exceeds(in, -1, false)

	// Contradictory channels accrue towards neither side.
	switch {
	case left && !right:
		l.aboveLeft += dt
		l.aboveRight = 0
	case right && !left:
		l.aboveRight += dt
		l.aboveLeft = 0
	default:
		l.aboveLeft, l.aboveRight = 0, 0
	}

	towards := func(side lighting.Side) bool {
		return (side == lighting.SideLeft && left) || (side == lighting.SideRight && right)
	}

	switch l.active {
	case lighting.SideNone:
	case lighting.SideLeft, lighting.SideRight:
		dir := 1.0
		if l.active == lighting.SideRight {
			dir = -1
		}
		reversed := towards(l.active.Opposite())
		switch {
		case reversed:
			l.active = lighting.SideNone
			l.deadzone = 0
		case l.exceeds(in, dir, true):
			l.deadzone = 0
		default:
			l.deadzone += dt
			if l.deadzone >= l.cfg.DeactivationDebounce {
				l.active = lighting.SideNone
				l.deadzone = 0
			}
		}
	default:
		return lighting.SideNone, fmt.Errorf("%w: %w", ErrUnknownSide, lighting.ValidateSide(l.active))
	}

	if l.active == lighting.SideNone {
		switch {
		case left && l.aboveLeft >= l.cfg.ActivationDebounce:
			l.active = lighting.SideLeft
		case right && l.aboveRight >= l.cfg.ActivationDebounce:
			l.active = lighting.SideRight
		}
	}
	return l.active, nil
}

// Reset drops the active side and all debounce timers.
func (l *Logic) Reset() {
	l.active = lighting.SideNone
	l.aboveLeft, l.aboveRight, l.deadzone = 0, 0, 0
}

// exceeds reports whether motion in direction dir (+1 left, -1 right) is
// above the activation thresholds, or above the deadzone bounds when hold
// is set.
func (l *Logic) exceeds(in Input, dir float64, hold bool) bool {
	latThr, steerThr, yawThr := l.cfg.LateralVelocityThreshold, l.cfg.SteeringAngleThreshold, l.cfg.YawRateThreshold
	if hold {
		latThr, steerThr, yawThr = l.cfg.LateralVelocityDeadzone, l.cfg.SteeringAngleDeadzone, l.cfg.YawRateDeadzone
	}

	if in.LateralVelocity*dir > latThr {
		return true
	}
	if l.cfg.SteeringAngleThreshold > 0 && in.SteeringAngle*dir > steerThr {
		return true
	}
	if l.cfg.YawRateThreshold > 0 && in.YawRate*dir > yawThr {
		return true
	}
	return false
}
