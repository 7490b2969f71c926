package influxdb

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/infrastructure/config"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/overtaking"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

var at = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func tagsOf(p *write.Point) map[string]string {
	out := make(map[string]string)
	for _, t := range p.TagList() {
		out[t.Key] = t.Value
	}
	return out
}

func fieldsOf(p *write.Point) map[string]any {
	out := make(map[string]any)
	for _, f := range p.FieldList() {
		out[f.Key] = f.Value
	}
	return out
}

func TestCommandPoint(t *testing.T) {
	out := control.Output{
		Tick:           42,
		BeamMode:       lighting.BeamHigh,
		BeamBlinking:   true,
		HornActive:     true,
		HornRemainingS: 0.25,
		TurnSignal:     lighting.SideLeft,
		SystemState:    failsafe.StateNormal,
		Rule:           control.RuleOvertaking,
		Overtaking:     overtaking.State{Status: overtaking.StatusInProgress},
		Vehicles:       []vehicle.DetectedVehicle{{ID: 1}},
	}

	p := commandPoint("veh-1", out, at)

	if p.Name() != MeasurementCommand || !p.Time().Equal(at) {
		t.Errorf("point = %s at %v", p.Name(), p.Time())
	}
	wantTags := map[string]string{"vehicle_id": "veh-1", "system_state": "NORMAL", "rule": "OVERTAKING"}
	if diff := cmp.Diff(wantTags, tagsOf(p)); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	wantFields := map[string]any{
		"tick":             int64(42),
		"beam_high":        true,
		"beam_blinking":    true,
		"horn_active":      true,
		"horn_remaining_s": 0.25,
		"turn_signal":      "LEFT",
		"hazard":           false,
		"overtaking":       "IN_PROGRESS",
		"stall":            false,
		"blocking":         false,
		"vehicles":         int64(1),
	}
	if diff := cmp.Diff(wantFields, fieldsOf(p)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFaultPoint(t *testing.T) {
	p := faultPoint("veh-1", failsafe.Warning(failsafe.KindInput, 3, "discarded %d observations", 3), at)

	wantTags := map[string]string{"vehicle_id": "veh-1", "kind": "INPUT_FAULT", "severity": "WARNING"}
	if diff := cmp.Diff(wantTags, tagsOf(p)); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	wantFields := map[string]any{"message": "discarded 3 observations", "count": int64(3)}
	if diff := cmp.Diff(wantFields, fieldsOf(p)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestLatencyPoint(t *testing.T) {
	p := latencyPoint("veh-1", 1500*time.Microsecond, at)

	if got := fieldsOf(p)["compute_ms"]; got != 1.5 {
		t.Errorf("compute_ms = %v, want 1.5", got)
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name      string
		batch     int
		flush     int
		wantBatch uint
		wantFlush uint
	}{
		{"configured", 200, 2, 200, 2000},
		{"zero uses defaults", 0, 0, defaultBatchSize, defaultFlushSeconds * millisecondsPerSecond},
		{"negative uses defaults", -5, -1, defaultBatchSize, defaultFlushSeconds * millisecondsPerSecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := clientOptions(config.InfluxDBConfig{BatchSize: tt.batch, FlushInterval: tt.flush})
			if opts.BatchSize() != tt.wantBatch {
				t.Errorf("BatchSize() = %d, want %d", opts.BatchSize(), tt.wantBatch)
			}
			if opts.FlushInterval() != tt.wantFlush {
				t.Errorf("FlushInterval() = %d, want %d", opts.FlushInterval(), tt.wantFlush)
			}
		})
	}
}

func TestDisconnectedClientIsNoop(t *testing.T) {
	c := &Client{}

	c.WriteCommand(control.Output{}, at)
	c.WriteFault(failsafe.Critical(failsafe.KindTiming, "late"), at)
	c.WriteTickLatency(time.Millisecond, at)
	c.WritePoint("x", nil, map[string]any{"v": 1}, at)
	c.Flush()

	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
