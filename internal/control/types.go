package control

import (
	"time"

	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/overtaking"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// EgoState is the ego vehicle kinematics and engine state for one tick.
// Lateral quantities are positive to the left.
type EgoState struct {
	Speed           float64 `json:"speed"`            // m/s
	LateralVelocity float64 `json:"lateral_velocity"` // m/s
	LateralOffset   float64 `json:"lateral_offset"`   // m from lane centre
	SteeringAngle   float64 `json:"steering_angle"`   // degrees
	YawRate         float64 `json:"yaw_rate"`         // degrees/s
	RPM             float64 `json:"rpm"`
}

// Frame is one perception snapshot.
type Frame struct {
	Observations []vehicle.Observation

	// Rejected counts observations dropped before they could be decoded.
	// They are reported together with the tracker's own discards.
	Rejected int

	// Age is how long ago the frame was sampled.
	Age time.Duration
}

// Input is everything one tick consumes.
type Input struct {
	// Frame is nil when no fresh perception frame arrived this tick.
	Frame *Frame
	Ego   EgoState

	// ManualBeam is the driver-forced beam mode, nil when not overridden.
	ManualBeam *lighting.BeamMode

	// DT is the time elapsed since the previous tick.
	DT time.Duration

	// Overrun is the compute time of the previous tick as measured by the
	// scheduler; zero when not measured.
	Overrun time.Duration
}

// Rule names the precedence rule that decided the beam.
type Rule string

// Rule constants, in precedence order.
const (
	RuleError      Rule = "ERROR"
	RuleBlocking   Rule = "BLOCKING"
	RuleManual     Rule = "MANUAL_OVERRIDE"
	RuleOvertaking Rule = "OVERTAKING"
	RuleBaseline   Rule = "BASELINE"
)

// Output is the actuator command and diagnostics for one tick.
type Output struct {
	Tick uint64 `json:"tick"`

	BeamMode       lighting.BeamMode `json:"beam_mode"`
	BeamBlinking   bool              `json:"beam_blinking"`
	HornActive     bool              `json:"horn_active"`
	HornRemaining  time.Duration     `json:"-"`
	HornRemainingS float64           `json:"horn_remaining_s"`
	TurnSignal     lighting.Side     `json:"turn_signal"`
	Hazard         bool              `json:"hazard"`
	SystemState    failsafe.State    `json:"system_state"`

	Rule       Rule                      `json:"rule"`
	Overtaking overtaking.State          `json:"overtaking"`
	Stall      bool                      `json:"stall"`
	Blocking   bool                      `json:"blocking"`
	BlockingID int                       `json:"blocking_id,omitempty"`
	Vehicles   []vehicle.DetectedVehicle `json:"vehicles"`
	LostTracks []int                     `json:"lost_tracks,omitempty"`

	Faults      []failsafe.Fault      `json:"faults,omitempty"`
	Transitions []failsafe.Transition `json:"transitions,omitempty"`
}
