// Package control is the per-tick orchestrator of the LightGuard core.
//
// A Controller owns one instance of every component and runs them in a
// fixed order on each call to Tick. Components never see each other; the
// controller reads their outputs and issues commands to the actuator
// models.
//
// Architecture:
//
//	┌───────────────────────────────────────────────────────────────────┐
//	│                     Controller.Tick(Input)                        │
//	│                                                                   │
//	│  1. Fault intake    CheckTiming, FeedMonitor ──▶ failsafe.Manager │
//	│  2. Tracking        vehicle.Tracker.Update                        │
//	│  3. Recovery        Manager.Recover ──▶ reset sub-state           │
//	│  4. Perception use  safety.Monitor, overtaking.Machine,           │
//	│                     turnsignal.Logic, decision.Compute            │
//	│  5. Precedence      resolve(): ERROR > BLOCKING > MANUAL >        │
//	│                     OVERTAKING > BASELINE (stall drives hazard)   │
//	│  6. Actuation       Beam / Horn / Indicator commands + Advance(dt)│
//	│  7. Output          snapshot + faults + transitions               │
//	└───────────────────────────────────────────────────────────────────┘
//
// Tick performs no I/O, spawns no goroutines and never blocks. Its cost is
// linear in the tracked-vehicle count, which is capped by MaxTracks.
//
// # Usage
//
//	ctrl, err := control.New(cfg, log)
//	if err != nil {
//	    return err
//	}
//	out := ctrl.Tick(control.Input{Frame: frame, Ego: ego, DT: dt})
//	publish(out)
package control
