// Package mqtt provides the MQTT bus connection for LightGuard Core.
//
// # Architecture
//
// The broker decouples the core from the perception stack and from the
// actuator driver:
//
//	Perception ──▶ lightguard/perception/frame ──┐
//	Vehicle bus ─▶ lightguard/vehicle/ego ───────┤
//	Driver ──────▶ lightguard/driver/beam ───────┼──▶ LightGuard Core
//	                                             │
//	Actuator driver ◀── lightguard/actuator/command
//	Diagnostics ◀────── lightguard/core/fault/{kind}, lightguard/core/state
//
// The client also maintains a retained online/offline document on
// lightguard/system/status, with a Last Will for unexpected disconnects.
//
// # Security Considerations
//
//   - Enable TLS (mqtt.broker.tls) outside the bench
//   - Broker ACLs must restrict who may publish driver/beam
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishJSON(mqtt.Topics{}.ActuatorCommand(), out, false)
package mqtt
