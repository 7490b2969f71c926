package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// Measurement names.
const (
	MeasurementCommand = "lighting_command"
	MeasurementFault   = "lighting_fault"
	MeasurementLatency = "cycle_latency"
)

// WriteCommand records the actuator command of one tick.
//
// The write is non-blocking; points are batched and sent asynchronously.
func (c *Client) WriteCommand(out control.Output, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(commandPoint(c.vehicleID, out, at))
}

// WriteFault records a single fault report.
func (c *Client) WriteFault(f failsafe.Fault, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(faultPoint(c.vehicleID, f, at))
}

// WriteTickLatency records how long one tick took to compute.
func (c *Client) WriteTickLatency(d time.Duration, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(latencyPoint(c.vehicleID, d, at))
}

// WritePoint writes a custom point with full control over tags and fields.
// The vehicle_id tag is added when absent.
//
// Example:
//
//	client.WritePoint("bench_run",
//	    map[string]string{"scenario": "A"},
//	    map[string]any{"ticks": 600}, time.Now())
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if !c.IsConnected() {
		return
	}
	withVehicle := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		withVehicle[k] = v
	}
	if _, ok := withVehicle["vehicle_id"]; !ok {
		withVehicle["vehicle_id"] = c.vehicleID
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, withVehicle, fields, at))
}

// commandPoint tags by the low-cardinality decision labels and stores the
// lamp and horn states as fields.
func commandPoint(vehicleID string, out control.Output, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementCommand,
		map[string]string{
			"vehicle_id":   vehicleID,
			"system_state": string(out.SystemState),
			"rule":         string(out.Rule),
		},
		map[string]any{
			"tick":             int64(out.Tick), // #nosec G115 -- tick counts stay far below 2^63
			"beam_high":        out.BeamMode == lighting.BeamHigh,
			"beam_blinking":    out.BeamBlinking,
			"horn_active":      out.HornActive,
			"horn_remaining_s": out.HornRemainingS,
			"turn_signal":      string(out.TurnSignal),
			"hazard":           out.Hazard,
			"overtaking":       string(out.Overtaking.Status),
			"stall":            out.Stall,
			"blocking":         out.Blocking,
			"vehicles":         len(out.Vehicles),
		},
		at,
	)
}

func faultPoint(vehicleID string, f failsafe.Fault, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementFault,
		map[string]string{
			"vehicle_id": vehicleID,
			"kind":       string(f.Kind),
			"severity":   string(f.Severity),
		},
		map[string]any{
			"message": f.Message,
			"count":   f.Count,
		},
		at,
	)
}

func latencyPoint(vehicleID string, d time.Duration, at time.Time) *write.Point {
	return write.NewPoint(
		MeasurementLatency,
		map[string]string{"vehicle_id": vehicleID},
		map[string]any{"compute_ms": float64(d) / float64(time.Millisecond)},
		at,
	)
}
