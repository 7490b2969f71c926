package overtaking

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

func at(id int, typ vehicle.Type, x, y float64) vehicle.DetectedVehicle {
	pos := r2.Vec{X: x, Y: y}
	return vehicle.DetectedVehicle{ID: id, Type: typ, Position: pos, Distance: r2.Norm(pos)}
}

func ahead(y float64) []vehicle.DetectedVehicle {
	return []vehicle.DetectedVehicle{at(1, vehicle.TypeAhead, 0, y)}
}

func mustUpdate(t *testing.T, m *Machine, in Input) State {
	t.Helper()
	st, err := m.Update(in)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	return st
}

// startOvertake drives a fresh machine into IN_PROGRESS behind a vehicle
// 30m ahead.
func startOvertake(t *testing.T) *Machine {
	t.Helper()
	m := New(lighting.DefaultConfig())
	mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 0})
	mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 1.0})
	st := mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 2.0})
	if st.Status != StatusInProgress {
		t.Fatalf("Status = %q, want IN_PROGRESS", st.Status)
	}
	if st.TargetID != 1 || st.Reason != ReasonLaneChange {
		t.Fatalf("State = %+v, want target 1 with lane change reason", st)
	}
	return m
}

// ─── Start conditions ──────────────────────────────────────────────────

func TestUpdate_StartsOnLaneChangeCrossing(t *testing.T) {
	startOvertake(t)
}

func TestUpdate_LeftAndRightOffsetsBothCount(t *testing.T) {
	m := New(lighting.DefaultConfig())
	mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 0})
	st := mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: -1.8})
	if st.Status != StatusInProgress {
		t.Errorf("Status = %q, want IN_PROGRESS for a rightward pass", st.Status)
	}
}

func TestUpdate_NoStartWithoutCrossing(t *testing.T) {
	m := New(lighting.DefaultConfig())

	// First observation already offset: no previous tick to cross from.
	st := mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 2.0})
	if st.Status != StatusNone {
		t.Errorf("Status = %q, want NONE without a crossing", st.Status)
	}
	st = mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 2.1})
	if st.Status != StatusNone {
		t.Errorf("Status = %q, want NONE while remaining offset", st.Status)
	}
}

func TestUpdate_TargetAcquiredWhileOffsetWaitsForNextCrossing(t *testing.T) {
	m := New(lighting.DefaultConfig())

	mustUpdate(t, m, Input{LateralOffset: 0})
	mustUpdate(t, m, Input{LateralOffset: 2.0})
	for i := 0; i < 3; i++ {
		st := mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 2.0})
		if st.Status != StatusNone {
			t.Fatalf("tick %d: Status = %q, want NONE", i, st.Status)
		}
	}

	mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 0.2})
	st := mustUpdate(t, m, Input{Vehicles: ahead(30), LateralOffset: 1.8})
	if st.Status != StatusInProgress || st.TargetID != 1 {
		t.Errorf("State = %+v, want IN_PROGRESS on target 1", st)
	}
}

func TestUpdate_NoStartWithOncoming(t *testing.T) {
	m := New(lighting.DefaultConfig())
	vs := []vehicle.DetectedVehicle{at(1, vehicle.TypeAhead, 0, 30), at(2, vehicle.TypeOncoming, -3.5, 150)}

	mustUpdate(t, m, Input{Vehicles: vs, LateralOffset: 0})
	st := mustUpdate(t, m, Input{Vehicles: vs, LateralOffset: 2})
	if st.Status != StatusNone {
		t.Errorf("Status = %q, want NONE with oncoming traffic", st.Status)
	}
}

func TestUpdate_NoStartWithoutTargetAhead(t *testing.T) {
	m := New(lighting.DefaultConfig())
	behind := ahead(-10)

	mustUpdate(t, m, Input{Vehicles: behind, LateralOffset: 0})
	st := mustUpdate(t, m, Input{Vehicles: behind, LateralOffset: 2})
	if st.Status != StatusNone {
		t.Errorf("Status = %q, want NONE with no vehicle ahead", st.Status)
	}
}

// ─── Completion and abort ──────────────────────────────────────────────

func TestUpdate_CompletesThenResets(t *testing.T) {
	m := startOvertake(t)

	// Alongside and past the target while still in the overtaking lane.
	for _, y := range []float64{10, 0, -4} {
		if st := mustUpdate(t, m, Input{Vehicles: ahead(y), LateralOffset: 3}); st.Status != StatusInProgress {
			t.Fatalf("y=%v: Status = %q, want IN_PROGRESS", y, st.Status)
		}
	}

	st := mustUpdate(t, m, Input{Vehicles: ahead(-8), LateralOffset: 0.2})
	if st.Status != StatusComplete || st.Reason != ReasonPassed {
		t.Fatalf("State = %+v, want COMPLETE", st)
	}

	st = mustUpdate(t, m, Input{Vehicles: ahead(-9), LateralOffset: 0})
	if st.Status != StatusNone || st.TargetID != 0 {
		t.Errorf("State = %+v, want NONE with no target", st)
	}
}

func TestUpdate_AbortReasons(t *testing.T) {
	tests := []struct {
		name   string
		in     Input
		reason string
	}{
		{
			name: "oncoming appears",
			in: Input{
				Vehicles:      []vehicle.DetectedVehicle{at(1, vehicle.TypeAhead, 0, 20), at(2, vehicle.TypeOncoming, -2, 180)},
				LateralOffset: 3,
			},
			reason: ReasonOncoming,
		},
		{
			name:   "target lost",
			in:     Input{Vehicles: nil, LateralOffset: 3},
			reason: ReasonTargetLost,
		},
		{
			name:   "merged back before passing",
			in:     Input{Vehicles: ahead(15), LateralOffset: 0.1},
			reason: ReasonMergedEarly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := startOvertake(t)
			st := mustUpdate(t, m, tt.in)
			if st.Status != StatusAborted || st.Reason != tt.reason {
				t.Errorf("State = %+v, want ABORTED (%s)", st, tt.reason)
			}
			st = mustUpdate(t, m, tt.in)
			if st.Status != StatusNone {
				t.Errorf("Status = %q on following tick, want NONE", st.Status)
			}
		})
	}
}

func TestUpdate_NoRestartWhileStillOffsetAfterAbort(t *testing.T) {
	m := startOvertake(t)
	vs := []vehicle.DetectedVehicle{at(1, vehicle.TypeAhead, 0, 20), at(2, vehicle.TypeOncoming, -2, 180)}

	mustUpdate(t, m, Input{Vehicles: vs, LateralOffset: 3})
	mustUpdate(t, m, Input{Vehicles: vs, LateralOffset: 3})

	// Oncoming gone, ego still in the passing lane: no fresh crossing.
	st := mustUpdate(t, m, Input{Vehicles: ahead(20), LateralOffset: 3})
	if st.Status != StatusNone {
		t.Errorf("Status = %q, want NONE until a new crossing", st.Status)
	}
}

// ─── Idempotence and invariants ────────────────────────────────────────

func TestUpdate_RepeatedInputIsStable(t *testing.T) {
	m := startOvertake(t)
	in := Input{Vehicles: ahead(25), LateralOffset: 3}

	first := mustUpdate(t, m, in)
	for i := 0; i < 10; i++ {
		if st := mustUpdate(t, m, in); st != first {
			t.Fatalf("iteration %d: State = %+v, want %+v", i, st, first)
		}
	}
}

func TestUpdate_UnknownStatus(t *testing.T) {
	m := New(lighting.DefaultConfig())
	m.status = "SIDEWAYS"

	_, err := m.Update(Input{})
	if !errors.Is(err, ErrUnknownStatus) || !errors.Is(err, lighting.ErrInvariantViolation) {
		t.Errorf("Update() error = %v, want ErrUnknownStatus wrapping ErrInvariantViolation", err)
	}
}

func TestReset(t *testing.T) {
	m := startOvertake(t)
	m.Reset()
	if m.Status() != StatusNone {
		t.Fatalf("Status() = %q after Reset, want NONE", m.Status())
	}
	// Still offset after reset: not a new crossing.
	st := mustUpdate(t, m, Input{Vehicles: ahead(25), LateralOffset: 3})
	if st.Status != StatusNone {
		t.Errorf("Status = %q, want NONE", st.Status)
	}
}

func TestCancel(t *testing.T) {
	m := startOvertake(t)

	st := m.Cancel()
	if st.Status != StatusAborted || st.Reason != ReasonCancelled || st.TargetID != 1 {
		t.Fatalf("Cancel() = %+v, want ABORTED for target 1", st)
	}
	st = m.Cancel()
	if st.Status != StatusNone || st.Reason != ReasonSequenceReset {
		t.Fatalf("second Cancel() = %+v, want NONE", st)
	}
	if st = m.Cancel(); st != (State{Status: StatusNone}) {
		t.Errorf("idle Cancel() = %+v, want bare NONE", st)
	}
}
