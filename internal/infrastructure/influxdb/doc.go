// Package influxdb writes LightGuard control-cycle telemetry to InfluxDB v2.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes, and health monitoring.
//
// # Measurements
//
//   - lighting_command: one point per tick (beam, horn, indicators, rule)
//   - lighting_fault: one point per reported fault
//   - cycle_latency: compute time of each tick
//
// Every point is tagged with vehicle_id.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB, cfg.Vehicle.ID)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteCommand(out, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use. Writes never block the
// caller; batch errors are delivered to the SetOnError callback.
package influxdb
