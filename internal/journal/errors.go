package journal

import "errors"

// ErrInvalidEntry is returned when an entry lacks its type or tick data.
var ErrInvalidEntry = errors.New("journal: invalid entry")
