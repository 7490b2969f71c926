// Package cycle runs the LightGuard control loop against live inputs.
//
// The Runner owns the Controller and is the only caller of Tick:
//
//	MQTT handlers ──▶ Inbox (latest frame, ego, manual beam)
//	                    │
//	 ticker ──▶ Runner.Step ──▶ Controller.Tick
//	                    │
//	                    ├──▶ Publisher  (lightguard/actuator/command)
//	                    ├──▶ Hub        (websocket channel "command")
//	                    ├──▶ Telemetry  (InfluxDB, non-blocking)
//	                    └──▶ journal queue ──▶ writer goroutine ──▶ SQLite
//
// A frame is consumed by exactly one tick. dt comes from the ticker's
// monotonic timestamps, and each Step's own duration is reported to the
// next tick so a slow cycle raises a TIMING_FAULT.
//
// # Usage
//
//	inbox := cycle.NewInbox()
//	mqttClient.Subscribe(mqtt.Topics{}.PerceptionFrame(), 0, inbox.HandleFrame)
//
//	runner := cycle.New(ctrl, inbox, cycle.Options{
//	    VehicleID:    cfg.Vehicle.ID,
//	    Interval:     cfg.TickInterval(),
//	    CommandTopic: mqtt.Topics{}.ActuatorCommand(),
//	    Publisher:    mqttClient,
//	})
//	err := runner.Run(ctx)
package cycle
