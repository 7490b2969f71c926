package safety

import (
	"math"
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// Input is the per-tick view the monitor needs.
type Input struct {
	Vehicles []vehicle.DetectedVehicle
	Speed    float64 // m/s
	RPM      float64
}

// Status is the monitor output for one tick.
type Status struct {
	Stall bool `json:"stall"`

	Blocking   bool          `json:"blocking"`
	BlockingID int           `json:"blocking_id,omitempty"`
	TTC        time.Duration `json:"ttc,omitempty"`
}

// Monitor owns the stall debounce and latch. It is not safe for concurrent use.
type Monitor struct {
	cfg          lighting.Config
	stallElapsed time.Duration
	stallLatched bool
}

// New creates a monitor with no hazard latched.
func New(cfg lighting.Config) *Monitor {
	return &Monitor{cfg: cfg}
}

// Update evaluates both hazards for one tick.
func (m *Monitor) Update(in Input, dt time.Duration) Status {
	m.updateStall(in.RPM, in.Speed, dt)

	st := Status{Stall: m.stallLatched}
	if v, ttc, ok := m.mostUrgentBlocking(in.Vehicles); ok {
		st.Blocking = true
		st.BlockingID = v.ID
		st.TTC = ttc
	}
	return st
}

// ResetStall clears the stall latch and its debounce timer.
func (m *Monitor) ResetStall() {
	m.stallElapsed = 0
	m.stallLatched = false
}

func (m *Monitor) updateStall(rpm, speed float64, dt time.Duration) {
	if m.stallLatched {
		if rpm > m.cfg.StallRPMThreshold+m.cfg.StallRPMHysteresis {
			m.ResetStall()
		}
		return
	}

	if rpm < m.cfg.StallRPMThreshold && speed > m.cfg.StallSpeedThreshold {
		m.stallElapsed += dt
		if m.stallElapsed >= m.cfg.StallDebounce {
			m.stallLatched = true
		}
		return
	}
	m.stallElapsed = 0
}

// mostUrgentBlocking returns the blocking vehicle with the smallest TTC.
func (m *Monitor) mostUrgentBlocking(vehicles []vehicle.DetectedVehicle) (vehicle.DetectedVehicle, time.Duration, bool) {
	var (
		best    vehicle.DetectedVehicle
		bestTTC float64
		found   bool
	)
	floor := m.cfg.TTCFloor.Seconds()

	for _, v := range vehicles {
		if !v.IsOncoming() || v.Position.Y <= 0 || v.Velocity.Y >= 0 {
			continue
		}
		ttc := v.Position.Y / -v.Velocity.Y
		if ttc > floor {
			continue
		}
		projected := v.Position.X + v.Velocity.X*ttc
		if math.Abs(projected) >= m.cfg.LaneHalfWidth {
			continue
		}
		if !found || ttc < bestTTC {
			best, bestTTC, found = v, ttc, true
		}
	}
	return best, time.Duration(bestTTC * float64(time.Second)), found
}
