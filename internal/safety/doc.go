// Package safety detects the two hazards that override normal beam logic:
// an engine stall while the vehicle is still moving, and an oncoming
// vehicle on a collision course with the ego lane.
//
// Stall detection is debounced and latched:
//
//	rpm < threshold && speed > min ──(sustained ≥ StallDebounce)──▶ latched
//	latched ──(rpm > threshold + StallRPMHysteresis)──▶ cleared
//
// Blocking detection is memoryless. For each oncoming vehicle closing on the
// ego, the time to collision is Y / -Vy and the lateral position at that
// time is X + Vx·TTC. The vehicle is blocking when the projection falls
// inside the ego lane and TTC is at or below the configured floor.
package safety
