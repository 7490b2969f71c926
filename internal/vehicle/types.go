package vehicle

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Type is the perception classification of another road user.
type Type string

// Type constants.
const (
	TypeAhead    Type = "AHEAD"
	TypeOncoming Type = "ONCOMING"
)

// Observation is one raw, already-classified detection from Perception.
type Observation struct {
	// IDHint is Perception's own identifier; zero means none.
	IDHint   int
	Position r2.Vec
	Velocity r2.Vec
	Type     Type
}

// Validate checks that the observation can be tracked.
func (o Observation) Validate() error {
	switch o.Type {
	case TypeAhead, TypeOncoming:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidType, o.Type)
	}
	if !finite(o.Position) || !finite(o.Velocity) {
		return fmt.Errorf("%w: non-finite coordinates", ErrInvalidObservation)
	}
	return nil
}

// DetectedVehicle is one tracked vehicle as seen in a single tick. A new
// slice of them is produced on every Update; values are never mutated.
type DetectedVehicle struct {
	ID       int     `json:"id"`
	Type     Type    `json:"type"`
	Position r2.Vec  `json:"position"`
	Velocity r2.Vec  `json:"velocity"`
	Distance float64 `json:"distance"`
}

// IsOncoming reports whether the vehicle is classified as oncoming traffic.
func (v DetectedVehicle) IsOncoming() bool {
	return v.Type == TypeOncoming
}

func finite(v r2.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
