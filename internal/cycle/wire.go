package cycle

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// FrameMessage is the perception frame payload on lightguard/perception/frame.
type FrameMessage struct {
	// SampledAt is when the sensors captured the frame. When absent the
	// receive time is used.
	SampledAt time.Time            `json:"sampled_at,omitzero"`
	Vehicles  []ObservationMessage `json:"vehicles"`

	// Rejected counts entries of vehicles that could not be decoded.
	Rejected int `json:"-"`
}

// rawFrame defers decoding of each observation so one malformed entry does
// not cost the whole frame.
type rawFrame struct {
	SampledAt time.Time         `json:"sampled_at,omitzero"`
	Vehicles  []json.RawMessage `json:"vehicles"`
}

// ObservationMessage is one detection in a FrameMessage. Coordinates are
// metres in the ego frame: x lateral (positive left), y longitudinal
// (positive ahead).
type ObservationMessage struct {
	ID   int          `json:"id,omitempty"`
	Type vehicle.Type `json:"type"`
	X    float64      `json:"x"`
	Y    float64      `json:"y"`
	VX   float64      `json:"vx"`
	VY   float64      `json:"vy"`
}

// BeamMessage is the driver request on lightguard/driver/beam. An empty
// mode or "AUTO" releases the override.
type BeamMessage struct {
	Mode string `json:"mode"`
}

// beamMode resolves the requested mode. release is true when the driver
// hands the beam back to automatic control.
func (m BeamMessage) beamMode() (mode lighting.BeamMode, release bool, err error) {
	raw := strings.TrimSpace(m.Mode)
	if raw == "" || strings.EqualFold(raw, "AUTO") {
		return "", true, nil
	}
	mode, err = lighting.ParseBeamMode(raw)
	if err != nil {
		return "", false, fmt.Errorf("%w: beam: %w", ErrInvalidMessage, err)
	}
	return mode, false, nil
}

func (m ObservationMessage) observation() vehicle.Observation {
	return vehicle.Observation{
		IDHint:   m.ID,
		Type:     m.Type,
		Position: r2.Vec{X: m.X, Y: m.Y},
		Velocity: r2.Vec{X: m.VX, Y: m.VY},
	}
}

func decodeFrame(payload []byte) (FrameMessage, error) {
	var raw rawFrame
	if err := json.Unmarshal(payload, &raw); err != nil {
		return FrameMessage{}, fmt.Errorf("%w: frame: %w", ErrInvalidMessage, err)
	}

	msg := FrameMessage{
		SampledAt: raw.SampledAt,
		Vehicles:  make([]ObservationMessage, 0, len(raw.Vehicles)),
	}
	for _, v := range raw.Vehicles {
		var obs ObservationMessage
		if err := json.Unmarshal(v, &obs); err != nil {
			msg.Rejected++
			continue
		}
		msg.Vehicles = append(msg.Vehicles, obs)
	}
	return msg, nil
}

func decodeEgo(payload []byte) (control.EgoState, error) {
	var ego control.EgoState
	if err := json.Unmarshal(payload, &ego); err != nil {
		return control.EgoState{}, fmt.Errorf("%w: ego: %w", ErrInvalidMessage, err)
	}
	return ego, nil
}

func decodeBeam(payload []byte) (BeamMessage, error) {
	var msg BeamMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return BeamMessage{}, fmt.Errorf("%w: beam: %w", ErrInvalidMessage, err)
	}
	return msg, nil
}
