package decision

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

func vehicleAt(typ vehicle.Type, x, y float64) vehicle.DetectedVehicle {
	pos := r2.Vec{X: x, Y: y}
	return vehicle.DetectedVehicle{ID: 1, Type: typ, Position: pos, Distance: r2.Norm(pos)}
}

func TestCompute(t *testing.T) {
	cfg := lighting.DefaultConfig()

	tests := []struct {
		name     string
		vehicles []vehicle.DetectedVehicle
		want     lighting.BeamMode
	}{
		{name: "empty road", want: lighting.BeamHigh},
		{name: "oncoming at 80m", vehicles: []vehicle.DetectedVehicle{vehicleAt(vehicle.TypeOncoming, -3.5, 80)}, want: lighting.BeamLow},
		{name: "oncoming at range edge", vehicles: []vehicle.DetectedVehicle{vehicleAt(vehicle.TypeOncoming, 0, 200)}, want: lighting.BeamLow},
		{name: "ahead at 120m", vehicles: []vehicle.DetectedVehicle{vehicleAt(vehicle.TypeAhead, 0, 120)}, want: lighting.BeamHigh},
		{name: "ahead at safe distance", vehicles: []vehicle.DetectedVehicle{vehicleAt(vehicle.TypeAhead, 0, 50)}, want: lighting.BeamLow},
		{name: "ahead inside safe distance", vehicles: []vehicle.DetectedVehicle{vehicleAt(vehicle.TypeAhead, 0, 30)}, want: lighting.BeamLow},
		{
			name: "far ahead then close oncoming",
			vehicles: []vehicle.DetectedVehicle{
				vehicleAt(vehicle.TypeAhead, 0, 150),
				vehicleAt(vehicle.TypeOncoming, -3.5, 190),
			},
			want: lighting.BeamLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.vehicles, cfg); got != tt.want {
				t.Errorf("Compute() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOncomingInRange(t *testing.T) {
	cfg := lighting.DefaultConfig()
	if OncomingInRange([]vehicle.DetectedVehicle{vehicleAt(vehicle.TypeAhead, 0, 20)}, cfg) {
		t.Error("OncomingInRange() = true for ahead-only traffic")
	}
	if !OncomingInRange([]vehicle.DetectedVehicle{vehicleAt(vehicle.TypeOncoming, 0, 20)}, cfg) {
		t.Error("OncomingInRange() = false for oncoming at 20m")
	}
}
