package cycle

import "errors"

var (
	// ErrInvalidMessage is returned when a bus payload cannot be decoded.
	ErrInvalidMessage = errors.New("cycle: invalid message")

	// ErrAlreadyRunning is returned when Run is called on a runner that
	// has already been started.
	ErrAlreadyRunning = errors.New("cycle: runner already started")
)
