// Package decision computes the baseline beam mode from the tracked
// vehicle list. It is a pure function of its inputs and holds no state.
package decision

import (
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// Compute returns the baseline beam mode.
//
// LOW is selected when any oncoming vehicle lies within the detection range
// or when any vehicle is at or inside the safe distance. Otherwise HIGH.
func Compute(vehicles []vehicle.DetectedVehicle, cfg lighting.Config) lighting.BeamMode {
	for _, v := range vehicles {
		if v.IsOncoming() && v.Distance <= cfg.DetectionRange {
			return lighting.BeamLow
		}
		if v.Distance <= cfg.SafeDistance {
			return lighting.BeamLow
		}
	}
	return lighting.BeamHigh
}

// OncomingInRange reports whether any oncoming vehicle lies within the
// detection range.
func OncomingInRange(vehicles []vehicle.DetectedVehicle, cfg lighting.Config) bool {
	for _, v := range vehicles {
		if v.IsOncoming() && v.Distance <= cfg.DetectionRange {
			return true
		}
	}
	return false
}
