package lighting

import "errors"

// Domain errors for the lighting package.
var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("lighting: invalid config")

	// ErrInvalidBeamMode is returned when parsing an unknown beam mode.
	ErrInvalidBeamMode = errors.New("lighting: invalid beam mode")

	// ErrInvalidSide is returned when parsing an unknown indicator side.
	ErrInvalidSide = errors.New("lighting: invalid side")

	// ErrInvariantViolation is returned when a component reaches a state
	// that its closed set of variants does not cover.
	ErrInvariantViolation = errors.New("lighting: invariant violation")
)
