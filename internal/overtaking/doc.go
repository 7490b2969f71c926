// Package overtaking tracks the phase of an overtaking manoeuvre from the
// ego lateral offset and the relative position of the vehicle being passed.
//
// State machine:
//
//	          lane-change crossing, target ahead, no oncoming
//	   NONE ─────────────────────────────────────────────▶ IN_PROGRESS
//	    ▲                                                    │      │
//	    │ next tick          target passed and merged back   │      │ oncoming, target lost,
//	    ├──────────────── COMPLETE ◀─────────────────────────┘      │ or merged back early
//	    │ next tick                                                 │
//	    └──────────────── ABORTED ◀─────────────────────────────────┘
//
// Only the current and previous tick are consulted; the machine keeps the
// previous lateral offset and the target track ID, nothing more.
package overtaking
