package lighting

import (
	"fmt"
	"strings"
)

// BeamMode is the headlamp beam selection.
type BeamMode string

// BeamMode constants.
const (
	BeamLow  BeamMode = "LOW"
	BeamHigh BeamMode = "HIGH"
)

// Side identifies which indicator is lit.
type Side string

// Side constants.
const (
	SideNone  Side = "NONE"
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)

// Opposite returns the other indicator side. SideNone maps to itself.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return SideNone
	}
}

// ParseBeamMode converts a case-insensitive string into a BeamMode.
// Both "HIGH" and "HIGH_BEAM" forms are accepted.
func ParseBeamMode(s string) (BeamMode, error) {
	switch strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(s)), "_BEAM") {
	case "LOW":
		return BeamLow, nil
	case "HIGH":
		return BeamHigh, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBeamMode, s)
	}
}

// ValidateBeamMode checks that m is one of the defined beam modes.
func ValidateBeamMode(m BeamMode) error {
	switch m {
	case BeamLow, BeamHigh:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBeamMode, m)
	}
}

// ValidateSide checks that s is one of the defined sides.
func ValidateSide(s Side) error {
	switch s {
	case SideNone, SideLeft, SideRight:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSide, s)
	}
}
