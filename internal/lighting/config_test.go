package lighting

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestConfig_HalfPeriod(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		want time.Duration
	}{
		{name: "2Hz", freq: 2, want: 250 * time.Millisecond},
		{name: "1Hz", freq: 1, want: 500 * time.Millisecond},
		{name: "4Hz", freq: 4, want: 125 * time.Millisecond},
		{name: "zero", freq: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.BlinkingFrequency = tt.freq
			if got := cfg.HalfPeriod(); got != tt.want {
				t.Errorf("HalfPeriod() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_OvertakingHornPulse(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.OvertakingHornPulse(); got != 250*time.Millisecond {
		t.Errorf("OvertakingHornPulse() = %v, want 250ms", got)
	}

	// A faster blink caps the pulse at the half-period.
	cfg.BlinkingFrequency = 2.2
	half := cfg.HalfPeriod()
	if got := cfg.OvertakingHornPulse(); got != half {
		t.Errorf("OvertakingHornPulse() = %v, want half-period %v", got, half)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "zero detection range", modify: func(c *Config) { c.DetectionRange = 0 }},
		{name: "safe beyond range", modify: func(c *Config) { c.SafeDistance = 500 }},
		{name: "no blink frequency", modify: func(c *Config) { c.BlinkingFrequency = 0 }},
		{name: "inverted horn bounds", modify: func(c *Config) { c.HornPulseMax = 100 * time.Millisecond }},
		{name: "horn min beyond half-period", modify: func(c *Config) { c.BlinkingFrequency = 5 }},
		{name: "deadzone above threshold", modify: func(c *Config) { c.LateralVelocityDeadzone = 0.6 }},
		{name: "steering deadzone above threshold", modify: func(c *Config) { c.SteeringAngleDeadzone = 20 }},
		{name: "too many tracks", modify: func(c *Config) { c.MaxTracks = 1000 }},
		{name: "no tracks", modify: func(c *Config) { c.MaxTracks = 0 }},
		{name: "merge tolerance above threshold", modify: func(c *Config) { c.MergeBackTolerance = 2 }},
		{name: "no deadline", modify: func(c *Config) { c.ResponseDeadline = 0 }},
		{name: "zero stale ticks", modify: func(c *Config) { c.StaleFeedTicks = 0 }},
		{name: "zero gating radius", modify: func(c *Config) { c.GatingRadius = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
