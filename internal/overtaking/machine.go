package overtaking

import (
	"fmt"
	"math"

	"github.com/nerrad567/lightguard-core/internal/decision"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// Status is the overtaking manoeuvre phase.
type Status string

// Status constants.
const (
	StatusNone       Status = "NONE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusComplete   Status = "COMPLETE"
	StatusAborted    Status = "ABORTED"
)

// Abort and start reasons reported in State.Reason.
const (
	ReasonLaneChange    = "lane change past target"
	ReasonPassed        = "target passed and merged back"
	ReasonOncoming      = "oncoming traffic"
	ReasonTargetLost    = "target lost"
	ReasonMergedEarly   = "merged back without passing"
	ReasonSequenceReset = "sequence reset"
	ReasonCancelled     = "cancelled by system error"
)

// Input is the per-tick view the machine needs.
type Input struct {
	Vehicles []vehicle.DetectedVehicle

	// LateralOffset is the ego offset from lane centre in metres,
	// positive to the left.
	LateralOffset float64
}

// State is the machine output for one tick.
type State struct {
	Status   Status `json:"status"`
	TargetID int    `json:"target_id,omitempty"`

	// Reason is set on the tick the status changed.
	Reason string `json:"reason,omitempty"`
}

// Machine is the overtaking state machine. It is not safe for concurrent use.
type Machine struct {
	cfg        lighting.Config
	status     Status
	targetID   int
	prevOffset float64
	hasPrev    bool
}

// New creates a machine in StatusNone.
func New(cfg lighting.Config) *Machine {
	return &Machine{cfg: cfg, status: StatusNone}
}

// Status returns the current phase.
func (m *Machine) Status() Status {
	return m.status
}

// Update advances the machine by one tick.
//
// Returns:
//   - State: the phase after this tick
//   - error: ErrUnknownStatus if the machine is in an undefined phase
func (m *Machine) Update(in Input) (State, error) {
	offset := math.Abs(in.LateralOffset)
	prev, hasPrev := m.prevOffset, m.hasPrev
	m.prevOffset, m.hasPrev = offset, true

	oncoming := decision.OncomingInRange(in.Vehicles, m.cfg)
	var reason string

	switch m.status {
	case StatusNone:
		crossed := hasPrev && prev <= m.cfg.LaneChangeThreshold && offset > m.cfg.LaneChangeThreshold
		if !crossed || oncoming {
			break
		}
		if target, ok := closestAhead(in.Vehicles); ok {
			m.status = StatusInProgress
			m.targetID = target.ID
			reason = ReasonLaneChange
		}

	case StatusInProgress:
		target, found := find(in.Vehicles, m.targetID)
		merged := offset <= m.cfg.MergeBackTolerance
		switch {
		case oncoming:
			m.status, reason = StatusAborted, ReasonOncoming
		case !found:
			m.status, reason = StatusAborted, ReasonTargetLost
		case merged && target.Position.Y < -m.cfg.CompletionClearance:
			m.status, reason = StatusComplete, ReasonPassed
		case merged:
			m.status, reason = StatusAborted, ReasonMergedEarly
		}

	case StatusComplete, StatusAborted:
		m.status = StatusNone
		m.targetID = 0
		reason = ReasonSequenceReset

	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownStatus, m.status)
	}

	return State{Status: m.status, TargetID: m.targetID, Reason: reason}, nil
}

// Cancel ends any manoeuvre in progress because automation is suspended.
// An IN_PROGRESS manoeuvre reports ABORTED once; every other phase resets
// to NONE.
func (m *Machine) Cancel() State {
	m.hasPrev = false
	m.prevOffset = 0
	if m.status == StatusInProgress {
		m.status = StatusAborted
		return State{Status: m.status, TargetID: m.targetID, Reason: ReasonCancelled}
	}
	if m.status == StatusNone {
		return State{Status: StatusNone}
	}
	m.Reset()
	return State{Status: StatusNone, Reason: ReasonSequenceReset}
}

// Reset returns the machine to StatusNone and forgets the previous offset,
// so a lane change already in effect is not mistaken for a new crossing.
func (m *Machine) Reset() {
	m.status = StatusNone
	m.targetID = 0
	m.prevOffset = 0
	m.hasPrev = false
}

// closestAhead returns the nearest AHEAD vehicle in front of the ego.
func closestAhead(vehicles []vehicle.DetectedVehicle) (vehicle.DetectedVehicle, bool) {
	var best vehicle.DetectedVehicle
	found := false
	for _, v := range vehicles {
		if v.Type != vehicle.TypeAhead || v.Position.Y <= 0 {
			continue
		}
		if !found || v.Distance < best.Distance {
			best, found = v, true
		}
	}
	return best, found
}

func find(vehicles []vehicle.DetectedVehicle, id int) (vehicle.DetectedVehicle, bool) {
	for _, v := range vehicles {
		if v.ID == id {
			return v, true
		}
	}
	return vehicle.DetectedVehicle{}, false
}
