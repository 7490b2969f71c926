package control

import (
	"fmt"
	"time"

	"github.com/nerrad567/lightguard-core/internal/actuator"
	"github.com/nerrad567/lightguard-core/internal/decision"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/lighting"
	"github.com/nerrad567/lightguard-core/internal/overtaking"
	"github.com/nerrad567/lightguard-core/internal/safety"
	"github.com/nerrad567/lightguard-core/internal/turnsignal"
	"github.com/nerrad567/lightguard-core/internal/vehicle"
)

// Logger is the logging interface used by the control package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Controller runs the control cycle. It is not safe for concurrent use; a
// single scheduler goroutine must own it.
type Controller struct {
	cfg    lighting.Config
	logger Logger

	tracker   *vehicle.Tracker
	overtake  *overtaking.Machine
	safety    *safety.Monitor
	signals   *turnsignal.Logic
	beam      *actuator.Beam
	horn      *actuator.Horn
	indicator *actuator.Indicator
	manager   *failsafe.Manager
	feed      *failsafe.FeedMonitor

	tick       uint64
	lastStatus overtaking.Status
	lastRule   Rule
}

// New creates a Controller with every component in its initial state.
//
// Parameters:
//   - cfg: validated control tuning, read-only from here on
//   - logger: structured logger (nil discards output)
//
// Returns:
//   - *Controller: ready for the first Tick
//   - error: if cfg fails validation
func New(cfg lighting.Config, logger Logger) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	if logger == nil {
		logger = noopLogger{}
	}

	return &Controller{
		cfg:        cfg,
		logger:     logger,
		tracker:    vehicle.NewTracker(cfg),
		overtake:   overtaking.New(cfg),
		safety:     safety.New(cfg),
		signals:    turnsignal.New(cfg),
		beam:       actuator.NewBeam(cfg),
		horn:       actuator.NewHorn(cfg),
		indicator:  actuator.NewIndicator(cfg),
		manager:    failsafe.NewManager(cfg, logger),
		feed:       failsafe.NewFeedMonitor(cfg),
		lastStatus: overtaking.StatusNone,
	}, nil
}

// State returns the current system state.
func (c *Controller) State() failsafe.State {
	return c.manager.State()
}

// Tick runs one control cycle and returns the actuator command.
//
// Faults never surface as errors: they are routed to the fail-safe manager
// and reported in Output.Faults, and the command degrades to the safe
// default when one is critical.
func (c *Controller) Tick(in Input) Output {
	c.tick++
	dt := in.DT
	if dt < 0 {
		c.manager.Report(failsafe.Critical(failsafe.KindTiming, "negative tick interval %s", dt))
		dt = 0
	}

	// 1. Fault intake.
	var observations []vehicle.Observation
	var frameAge time.Duration
	if in.Frame != nil {
		observations = in.Frame.Observations
		frameAge = in.Frame.Age
	}
	if f, late := failsafe.CheckTiming(c.cfg.ResponseDeadline, dt, frameAge, in.Overrun); late {
		c.manager.Report(f)
	}

	// 2. Tracking.
	tracked := c.tracker.Update(observations, dt)
	if tracked.Overflow > 0 {
		c.logger.Warn("observations over track budget dropped", "count", tracked.Overflow, "tracks", c.tracker.Len())
	}
	if len(tracked.Lost) > 0 {
		c.logger.Debug("tracks lost", "ids", tracked.Lost)
	}
	discarded := tracked.Discarded
	if in.Frame != nil {
		discarded += in.Frame.Rejected
	}
	for _, f := range c.feed.Observe(in.Frame != nil, discarded) {
		c.manager.Report(f)
	}

	manual := in.ManualBeam
	if manual != nil {
		if err := lighting.ValidateBeamMode(*manual); err != nil {
			c.manager.Report(failsafe.Warning(failsafe.KindInput, 1, "manual beam ignored: %v", err))
			manual = nil
		}
	}

	// 3. Recovery. Sub-state from before the fault is never resumed.
	if c.manager.Recover(c.feed.Healthy(), dt) {
		c.overtake.Reset()
		c.safety.ResetStall()
		c.signals.Reset()
	}
	c.manager.SetManualOverride(manual != nil)

	// 4. Perception consumers.
	hazards := c.safety.Update(safety.Input{
		Vehicles: tracked.Vehicles,
		Speed:    in.Ego.Speed,
		RPM:      in.Ego.RPM,
	}, dt)

	ot := overtaking.State{Status: overtaking.StatusNone}
	side := lighting.SideNone
	if c.manager.State() != failsafe.StateError {
		var err error
		ot, err = c.overtake.Update(overtaking.Input{
			Vehicles:      tracked.Vehicles,
			LateralOffset: in.Ego.LateralOffset,
		})
		if err != nil {
			c.manager.Report(failsafe.Critical(failsafe.KindInvariant, "%v", err))
		}
		side, err = c.signals.Update(turnsignal.Input{
			LateralVelocity: in.Ego.LateralVelocity,
			SteeringAngle:   in.Ego.SteeringAngle,
			YawRate:         in.Ego.YawRate,
		}, dt)
		if err != nil {
			c.manager.Report(failsafe.Critical(failsafe.KindInvariant, "%v", err))
		}
	}
	if c.manager.State() == failsafe.StateError {
		ot = c.overtake.Cancel()
		c.signals.Reset()
		side = lighting.SideNone
	}
	if ot.Status != c.lastStatus {
		c.logger.Info("overtaking status changed",
			"from", c.lastStatus,
			"to", ot.Status,
			"target", ot.TargetID,
			"reason", ot.Reason,
		)
		c.lastStatus = ot.Status
	}

	// 5. Precedence.
	s := situation{
		state:      c.manager.State(),
		safety:     hazards,
		manual:     manual,
		overtaking: ot.Status,
		oncoming:   decision.OncomingInRange(tracked.Vehicles, c.cfg),
		baseline:   decision.Compute(tracked.Vehicles, c.cfg),
	}
	p, err := resolve(s)
	if err != nil {
		c.manager.Report(failsafe.Critical(failsafe.KindInvariant, "%v", err))
		c.overtake.Cancel()
		c.signals.Reset()
		s.state = c.manager.State()
		p, _ = resolve(s)
	}
	if p.rule != c.lastRule {
		c.logger.Debug("beam rule changed", "from", c.lastRule, "to", p.rule, "mode", p.mode)
		c.lastRule = p.rule
	}

	// 6. Actuation. Time elapsed under the previous command first, then
	// the new command.
	edge := c.beam.Advance(dt)
	c.horn.Advance(dt)
	c.indicator.Advance(dt)
	if edge.Rose && p.horn == hornSequence {
		c.horn.TriggerAt(c.cfg.OvertakingHornPulse(), edge.Since)
	}
	c.apply(p)
	sig, hazard := indicatorCommand(s.state, hazards, side)
	c.indicator.Command(sig, hazard)

	// 7. Output.
	beam := c.beam.State()
	horn := c.horn.State()
	lamps := c.indicator.State()
	faults, transitions := c.manager.TakeEvents()

	return Output{
		Tick:           c.tick,
		BeamMode:       beam.Mode,
		BeamBlinking:   beam.Blinking,
		HornActive:     horn.Active,
		HornRemaining:  horn.Remaining,
		HornRemainingS: horn.Remaining.Seconds(),
		TurnSignal:     lamps.Side,
		Hazard:         lamps.Hazard,
		SystemState:    c.manager.State(),
		Rule:           p.rule,
		Overtaking:     ot,
		Stall:          hazards.Stall,
		Blocking:       hazards.Blocking,
		BlockingID:     hazards.BlockingID,
		Vehicles:       tracked.Vehicles,
		LostTracks:     tracked.Lost,
		Faults:         faults,
		Transitions:    transitions,
	}
}

// apply issues the beam and horn commands of p.
func (c *Controller) apply(p plan) {
	switch {
	case p.blink:
		if c.beam.StartBlinking() && p.horn == hornSequence {
			c.horn.Trigger(c.cfg.OvertakingHornPulse())
		}
	case p.manual:
		c.beam.SetManual(p.mode)
	default:
		c.beam.Set(p.mode)
	}
	if !p.manual {
		c.beam.ClearManual()
	}

	switch p.horn {
	case hornCancel:
		c.horn.Cancel()
	case hornSustain:
		c.horn.SetSustained(true)
	case hornSequence:
		c.horn.SetSustained(false)
	default:
		c.horn.Release()
	}
}
