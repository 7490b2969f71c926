package control

import (
	"fmt"

	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/overtaking"
	"github.com/nerrad567/lightguard-core/internal/safety"
)

// hornAction is the horn command chosen by the precedence rules.
type hornAction int

const (
	// hornRelease ends the warning tone and lets an in-flight pulse finish
	// its minimum duration.
	hornRelease hornAction = iota
	// hornCancel silences the horn at once.
	hornCancel
	// hornSustain holds the continuous warning tone.
	hornSustain
	// hornSequence pulses the horn on every high transition of the blink.
	hornSequence
)

// plan is the beam and horn command for one tick.
type plan struct {
	rule   Rule
	mode   lighting.BeamMode
	blink  bool
	manual bool
	horn   hornAction
}

// situation is everything the precedence rules read.
type situation struct {
	state      failsafe.State
	safety     safety.Status
	manual     *lighting.BeamMode
	overtaking overtaking.Status
	oncoming   bool
	baseline   lighting.BeamMode
}

// resolve applies the fixed precedence, first match wins:
//
//	ERROR > BLOCKING > MANUAL_OVERRIDE > OVERTAKING > BASELINE
//
// Stall does not appear here: it only claims the indicators and leaves the
// beam to the rules below it.
func resolve(s situation) (plan, error) {
	switch s.state {
	case failsafe.StateError:
		return plan{rule: RuleError, mode: lighting.BeamLow, horn: hornCancel}, nil
	case failsafe.StateNormal, failsafe.StateManualOverride:
	default:
		return plan{}, fmt.Errorf("%w: unknown system state %q", lighting.ErrInvariantViolation, s.state)
	}

	if s.safety.Blocking {
		return plan{rule: RuleBlocking, mode: lighting.BeamHigh, horn: hornSustain}, nil
	}

	if s.manual != nil {
		return plan{rule: RuleManual, mode: *s.manual, manual: true, horn: hornRelease}, nil
	}

	switch s.overtaking {
	case overtaking.StatusInProgress:
		if !s.oncoming {
			return plan{rule: RuleOvertaking, mode: lighting.BeamHigh, blink: true, horn: hornSequence}, nil
		}
	case overtaking.StatusNone, overtaking.StatusComplete, overtaking.StatusAborted:
	default:
		return plan{}, fmt.Errorf("%w: unknown overtaking status %q", lighting.ErrInvariantViolation, s.overtaking)
	}

	if err := lighting.ValidateBeamMode(s.baseline); err != nil {
		return plan{}, fmt.Errorf("baseline: %w", err)
	}
	return plan{rule: RuleBaseline, mode: s.baseline, horn: hornRelease}, nil
}

// indicatorCommand returns the side and hazard flag for the indicators.
// Hazard from a stall survives ERROR; turn-signal automation does not, and
// it is also held off while a blocking vehicle is being warned.
func indicatorCommand(state failsafe.State, st safety.Status, side lighting.Side) (lighting.Side, bool) {
	hazard := st.Stall
	if hazard || state == failsafe.StateError || st.Blocking {
		return lighting.SideNone, hazard
	}
	return side, false
}
