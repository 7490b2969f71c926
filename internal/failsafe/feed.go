package failsafe

import (
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// FeedMonitor classifies perception feed health tick by tick.
type FeedMonitor struct {
	cfg         lighting.Config
	staleTicks  int
	faultyTicks int
	healthy     bool
}

// NewFeedMonitor creates a monitor that has not yet seen a frame.
func NewFeedMonitor(cfg lighting.Config) *FeedMonitor {
	return &FeedMonitor{cfg: cfg}
}

// Observe records one tick of feed health and returns the faults it raises.
//
// Parameters:
//   - present: whether a fresh perception frame arrived this tick
//   - discarded: number of malformed observations dropped from the frame
func (f *FeedMonitor) Observe(present bool, discarded int) []Fault {
	var faults []Fault

	if !present {
		f.staleTicks++
		// A gap within the stale limit keeps a clean feed healthy; a feed
		// that was never clean stays unhealthy.
		if f.staleTicks > f.cfg.StaleFeedTicks {
			f.healthy = false
		}
		switch {
		case f.staleTicks == 1:
			faults = append(faults, Warning(KindInput, 0, "perception frame missing"))
		case f.staleTicks == f.cfg.StaleFeedTicks+1:
			faults = append(faults, Critical(KindInput, "perception feed stale for %d ticks", f.staleTicks))
		}
		return faults
	}
	f.staleTicks = 0

	if discarded == 0 {
		f.faultyTicks = 0
		f.healthy = true
		return nil
	}

	f.faultyTicks++
	f.healthy = false
	faults = append(faults, Warning(KindInput, discarded, "discarded %d malformed observations", discarded))
	if f.faultyTicks == f.cfg.InputFaultSustainTicks {
		faults = append(faults, Critical(KindInput, "malformed observations on %d consecutive ticks", f.faultyTicks))
	}
	return faults
}

// Healthy reports whether the feed is within tolerance: the last frame was
// clean and no more than StaleFeedTicks ticks have passed without one.
func (f *FeedMonitor) Healthy() bool {
	return f.healthy
}

// StaleTicks returns the number of consecutive ticks without a frame.
func (f *FeedMonitor) StaleTicks() int {
	return f.staleTicks
}

// CheckTiming reports a critical TIMING_FAULT when the tick interval, the
// frame age or the previous tick's compute time exceeds the response
// deadline.
func CheckTiming(deadline, dt, frameAge, overrun time.Duration) (Fault, bool) {
	switch {
	case dt > deadline:
		return Critical(KindTiming, "tick interval %s exceeds deadline %s", dt, deadline), true
	case frameAge > deadline:
		return Critical(KindTiming, "perception frame age %s exceeds deadline %s", frameAge, deadline), true
	case overrun > deadline:
		return Critical(KindTiming, "tick compute time %s exceeds deadline %s", overrun, deadline), true
	default:
		return Fault{}, false
	}
}
