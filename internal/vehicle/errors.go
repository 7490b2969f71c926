package vehicle

import "errors"

// Domain errors for the vehicle package.
var (
	// ErrInvalidObservation is returned when an observation carries
	// non-finite coordinates.
	ErrInvalidObservation = errors.New("vehicle: invalid observation")

	// ErrInvalidType is returned when an observation's class is unknown.
	ErrInvalidType = errors.New("vehicle: invalid type")
)
