// Package vehicle turns per-tick perception observations into a stable,
// classified list of tracked vehicles.
//
// Coordinates are ego-relative: X is lateral (positive to the left) and Y is
// longitudinal (positive ahead). Positions and velocities use the gonum r2
// vector type so distance and gating reduce to r2.Norm / r2.Norm2.
//
// Pipeline per Update:
//
//	observations ──▶ validate ──▶ range filter ──▶ predict tracks
//	                   │                               │
//	              discarded++                          ▼
//	                                      gated greedy association
//	                                                   │
//	                 ┌─────────────────────────────────┼──────────────────┐
//	                 ▼                                 ▼                  ▼
//	          matched: replace              unmatched: coast,      new obs: spawn
//	          position/velocity             drop past timeout      (up to MaxTracks)
//
// The Tracker is owned by a single control loop and is not safe for
// concurrent use.
package vehicle
