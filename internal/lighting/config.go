package lighting

import (
	"fmt"
	"strings"
	"time"
)

// maxTrackCap bounds MaxTracks so that association stays cheap at 100Hz.
const maxTrackCap = 256

// Config is the immutable tuning shared by all control-cycle components.
//
// Distances are metres, speeds metres per second, angles degrees and
// angular rates degrees per second. Every timer is a time.Duration.
type Config struct {
	// Decision
	DetectionRange float64
	SafeDistance   float64

	// Overtaking sequence
	BlinkingFrequency float64 // Hz
	HornPulseMin      time.Duration
	HornPulseMax      time.Duration

	// Turn signal
	LateralVelocityThreshold float64
	LateralVelocityDeadzone  float64
	SteeringAngleThreshold   float64
	SteeringAngleDeadzone    float64
	YawRateThreshold         float64
	YawRateDeadzone          float64
	ActivationDebounce       time.Duration
	DeactivationDebounce     time.Duration

	// Safety monitor
	StallRPMThreshold   float64
	StallRPMHysteresis  float64
	StallSpeedThreshold float64
	StallDebounce       time.Duration
	LaneHalfWidth       float64
	TTCFloor            time.Duration

	// Tracker
	GatingRadius float64
	TrackTimeout time.Duration
	MaxTracks    int

	// Overtaking state machine
	LaneChangeThreshold float64
	MergeBackTolerance  float64
	CompletionClearance float64

	// Indicators
	IndicatorPeriod     time.Duration
	IndicatorAutoCancel time.Duration

	// Fail-safe
	ResponseDeadline       time.Duration
	StaleFeedTicks         int
	InputFaultSustainTicks int
	RecoveryDebounce       time.Duration
}

// DefaultConfig returns the reference tuning.
func DefaultConfig() Config {
	return Config{
		DetectionRange: 200,
		SafeDistance:   50,

		BlinkingFrequency: 2,
		HornPulseMin:      200 * time.Millisecond,
		HornPulseMax:      300 * time.Millisecond,

		LateralVelocityThreshold: 0.5,
		LateralVelocityDeadzone:  0.2,
		SteeringAngleThreshold:   15,
		SteeringAngleDeadzone:    5,
		YawRateThreshold:         5,
		YawRateDeadzone:          2,
		ActivationDebounce:       200 * time.Millisecond,
		DeactivationDebounce:     500 * time.Millisecond,

		StallRPMThreshold:   300,
		StallRPMHysteresis:  200,
		StallSpeedThreshold: 1,
		StallDebounce:       500 * time.Millisecond,
		LaneHalfWidth:       1.5,
		TTCFloor:            3 * time.Second,

		GatingRadius: 5,
		TrackTimeout: 500 * time.Millisecond,
		MaxTracks:    32,

		LaneChangeThreshold: 1.5,
		MergeBackTolerance:  0.5,
		CompletionClearance: 5,

		IndicatorPeriod:     time.Second,
		IndicatorAutoCancel: 30 * time.Second,

		ResponseDeadline:       200 * time.Millisecond,
		StaleFeedTicks:         5,
		InputFaultSustainTicks: 10,
		RecoveryDebounce:       time.Second,
	}
}

// HalfPeriod returns the duration of one blink half-cycle,
// 1/(2*BlinkingFrequency).
func (c Config) HalfPeriod() time.Duration {
	if c.BlinkingFrequency <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / (2 * c.BlinkingFrequency))
}

// OvertakingHornPulse returns the pulse length used during an overtaking
// sequence: the midpoint of the configured bounds, never longer than the
// blink half-period.
func (c Config) OvertakingHornPulse() time.Duration {
	d := c.HornPulseMin + (c.HornPulseMax-c.HornPulseMin)/2
	if half := c.HalfPeriod(); d > half {
		d = half
	}
	return d
}

// Validate checks the configuration for inconsistent or out-of-range values.
//
// Returns:
//   - error: wrapping ErrInvalidConfig with every problem found, or nil
func (c Config) Validate() error { //nolint:gocognit,gocyclo // flat list of independent checks
	var errs []string

	if c.DetectionRange <= 0 {
		errs = append(errs, "detection_range must be positive")
	}
	if c.SafeDistance <= 0 || c.SafeDistance > c.DetectionRange {
		errs = append(errs, "safe_distance must be positive and within detection_range")
	}
	if c.BlinkingFrequency <= 0 {
		errs = append(errs, "blinking_frequency must be positive")
	}
	if c.HornPulseMin <= 0 || c.HornPulseMax < c.HornPulseMin {
		errs = append(errs, "horn pulse bounds must satisfy 0 < min <= max")
	}
	if c.BlinkingFrequency > 0 && c.HornPulseMin > c.HalfPeriod() {
		errs = append(errs, fmt.Sprintf("horn_pulse_min %s exceeds blink half-period %s", c.HornPulseMin, c.HalfPeriod()))
	}

	if c.LateralVelocityThreshold <= 0 {
		errs = append(errs, "lateral_velocity_threshold must be positive")
	}
	if c.LateralVelocityDeadzone < 0 || c.LateralVelocityDeadzone >= c.LateralVelocityThreshold {
		errs = append(errs, "lateral_velocity_deadzone must be in [0, threshold)")
	}
	if c.SteeringAngleThreshold < 0 || c.SteeringAngleDeadzone < 0 ||
		(c.SteeringAngleThreshold > 0 && c.SteeringAngleDeadzone >= c.SteeringAngleThreshold) {
		errs = append(errs, "steering deadzone must be in [0, threshold)")
	}
	if c.YawRateThreshold < 0 || c.YawRateDeadzone < 0 ||
		(c.YawRateThreshold > 0 && c.YawRateDeadzone >= c.YawRateThreshold) {
		errs = append(errs, "yaw rate deadzone must be in [0, threshold)")
	}
	if c.ActivationDebounce < 0 || c.DeactivationDebounce < 0 {
		errs = append(errs, "turn signal debounce windows must not be negative")
	}

	if c.StallRPMThreshold <= 0 || c.StallRPMHysteresis < 0 {
		errs = append(errs, "stall rpm threshold must be positive and hysteresis non-negative")
	}
	if c.StallSpeedThreshold < 0 || c.StallDebounce < 0 {
		errs = append(errs, "stall speed threshold and debounce must not be negative")
	}
	if c.LaneHalfWidth <= 0 || c.TTCFloor <= 0 {
		errs = append(errs, "lane_half_width and ttc_floor must be positive")
	}

	if c.GatingRadius <= 0 || c.TrackTimeout <= 0 {
		errs = append(errs, "gating_radius and track_timeout must be positive")
	}
	if c.MaxTracks < 1 || c.MaxTracks > maxTrackCap {
		errs = append(errs, fmt.Sprintf("max_tracks must be between 1 and %d", maxTrackCap))
	}

	if c.LaneChangeThreshold <= 0 || c.MergeBackTolerance < 0 || c.MergeBackTolerance >= c.LaneChangeThreshold {
		errs = append(errs, "merge_back_tolerance must be in [0, lane_change_threshold)")
	}
	if c.CompletionClearance < 0 {
		errs = append(errs, "completion_clearance must not be negative")
	}

	if c.IndicatorPeriod <= 0 || c.IndicatorAutoCancel < 0 {
		errs = append(errs, "indicator period must be positive and auto-cancel non-negative")
	}

	if c.ResponseDeadline <= 0 {
		errs = append(errs, "response_deadline must be positive")
	}
	if c.StaleFeedTicks < 1 || c.InputFaultSustainTicks < 1 {
		errs = append(errs, "stale_feed_ticks and input_fault_sustain_ticks must be at least 1")
	}
	if c.RecoveryDebounce < 0 {
		errs = append(errs, "recovery_debounce must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}
