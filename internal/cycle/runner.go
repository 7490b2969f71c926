package cycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/lightguard-core/internal/control"
	"github.com/nerrad567/lightguard-core/internal/failsafe"
	"github.com/nerrad567/lightguard-core/internal/journal"
)

// Hub channel carrying every tick's Output.
const ChannelCommand = "command"

const journalWriteTimeout = 5 * time.Second

// Logger is the logging interface used by the runner.
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

// Publisher sends the actuator command to the bus.
type Publisher interface {
	PublishJSON(topic string, v any, retained bool) error
}

// Telemetry records per-tick metrics. Implementations must not block.
type Telemetry interface {
	WriteCommand(out control.Output, at time.Time)
	WriteFault(f failsafe.Fault, at time.Time)
	WriteTickLatency(d time.Duration, at time.Time)
}

// Broadcaster pushes live updates to connected diagnostics clients.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// JournalWriter persists faults and transitions.
type JournalWriter interface {
	Create(ctx context.Context, entries ...*journal.Entry) error
}

// Options configures a Runner. Every sink is optional.
type Options struct {
	VehicleID string

	// Interval is the tick period.
	Interval time.Duration

	// JournalBacklog bounds the batches waiting for the journal writer.
	JournalBacklog int

	// CommandTopic is where each Output is published.
	CommandTopic string

	// FaultTopic maps a fault kind to its topic; nil disables fault publishing.
	FaultTopic func(kind string) string

	// StateTopic receives a retained message on every system state transition.
	StateTopic string

	Publisher Publisher
	Telemetry Telemetry
	Hub       Broadcaster
	Journal   JournalWriter
	Logger    Logger

	// Clock measures compute time; defaults to time.Now.
	Clock func() time.Time
}

// Runner drives a Controller at a fixed cadence.
//
// Each tick it assembles the Input from the Inbox, runs the controller,
// and fans the Output out to the bus, telemetry and the live hub. Faults
// and transitions go to the journal through a bounded queue; when the
// queue is full the batch is dropped and counted so the tick never waits
// on the disk.
type Runner struct {
	ctrl  *control.Controller
	inbox *Inbox
	opts  Options

	lastTick time.Time
	compute  time.Duration

	latest   control.Output
	hasTick  bool
	latestMu sync.RWMutex

	journalQ chan []*journal.Entry
	dropped  atomic.Uint64
	started  atomic.Bool
	stopped  atomic.Bool
}

// New creates a runner. The controller must not be ticked by anyone else.
func New(ctrl *control.Controller, inbox *Inbox, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.JournalBacklog <= 0 {
		opts.JournalBacklog = 1
	}
	return &Runner{
		ctrl:     ctrl,
		inbox:    inbox,
		opts:     opts,
		journalQ: make(chan []*journal.Entry, opts.JournalBacklog),
	}
}

// Run ticks until ctx is cancelled, then drains the journal queue. A
// Runner can be run once.
func (r *Runner) Run(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.writeJournal()
	}()

	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	r.opts.Logger.Info("control cycle started", "interval", r.opts.Interval)

	for {
		select {
		case <-ctx.Done():
			r.stopped.Store(true)
			close(r.journalQ)
			wg.Wait()
			r.opts.Logger.Info("control cycle stopped", "journal_dropped", r.dropped.Load())
			return nil
		case now := <-ticker.C:
			r.Step(now)
		}
	}
}

// Step runs one tick at now and returns its Output.
//
// dt is measured from the previous Step; the first Step uses the
// configured interval. The time this Step takes is handed to the next one
// as Input.Overrun.
func (r *Runner) Step(now time.Time) control.Output {
	start := r.opts.Clock()

	dt := r.opts.Interval
	if !r.lastTick.IsZero() {
		dt = now.Sub(r.lastTick)
	}
	r.lastTick = now

	in := r.inbox.take(now)
	in.DT = dt
	in.Overrun = r.compute

	out := r.ctrl.Tick(in)

	r.latestMu.Lock()
	r.latest = out
	r.hasTick = true
	r.latestMu.Unlock()

	r.dispatch(out, now)

	r.compute = r.opts.Clock().Sub(start)
	if r.opts.Telemetry != nil {
		r.opts.Telemetry.WriteTickLatency(r.compute, now)
	}
	return out
}

func (r *Runner) dispatch(out control.Output, now time.Time) {
	if r.opts.Publisher != nil && r.opts.CommandTopic != "" {
		if err := r.opts.Publisher.PublishJSON(r.opts.CommandTopic, out, false); err != nil {
			r.opts.Logger.Warn("publishing actuator command failed", "tick", out.Tick, "error", err)
		}
	}
	r.publishEvents(out)
	if r.opts.Hub != nil {
		r.opts.Hub.Broadcast(ChannelCommand, out)
	}
	if r.opts.Telemetry != nil {
		r.opts.Telemetry.WriteCommand(out, now)
		for _, f := range out.Faults {
			r.opts.Telemetry.WriteFault(f, now)
		}
	}
	r.enqueueJournal(out, now)
}

// StateMessage is the retained payload on the state topic.
type StateMessage struct {
	Tick   uint64         `json:"tick"`
	State  failsafe.State `json:"state"`
	From   failsafe.State `json:"from"`
	Reason string         `json:"reason"`
}

func (r *Runner) publishEvents(out control.Output) {
	if r.opts.Publisher == nil {
		return
	}
	if r.opts.FaultTopic != nil {
		for _, f := range out.Faults {
			if err := r.opts.Publisher.PublishJSON(r.opts.FaultTopic(string(f.Kind)), f, false); err != nil {
				r.opts.Logger.Warn("publishing fault failed", "tick", out.Tick, "kind", f.Kind, "error", err)
			}
		}
	}
	if r.opts.StateTopic != "" {
		for _, tr := range out.Transitions {
			msg := StateMessage{Tick: out.Tick, State: tr.To, From: tr.From, Reason: tr.Reason}
			if err := r.opts.Publisher.PublishJSON(r.opts.StateTopic, msg, true); err != nil {
				r.opts.Logger.Warn("publishing state failed", "tick", out.Tick, "error", err)
			}
		}
	}
}

func (r *Runner) enqueueJournal(out control.Output, now time.Time) {
	if r.opts.Journal == nil || r.stopped.Load() || len(out.Faults)+len(out.Transitions) == 0 {
		return
	}

	batch := make([]*journal.Entry, 0, len(out.Faults)+len(out.Transitions))
	for _, f := range out.Faults {
		e := journal.FromFault(r.opts.VehicleID, out.Tick, f, now)
		batch = append(batch, &e)
	}
	for _, tr := range out.Transitions {
		e := journal.FromTransition(r.opts.VehicleID, out.Tick, tr, now)
		batch = append(batch, &e)
	}

	select {
	case r.journalQ <- batch:
	default:
		n := r.dropped.Add(uint64(len(batch)))
		r.opts.Logger.Warn("journal backlog full, entries dropped", "tick", out.Tick, "dropped_total", n)
	}
}

func (r *Runner) writeJournal() {
	for batch := range r.journalQ {
		if r.opts.Journal == nil {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), journalWriteTimeout)
		if err := r.opts.Journal.Create(ctx, batch...); err != nil {
			r.opts.Logger.Error("writing journal failed", "entries", len(batch), "error", err)
		}
		cancel()
	}
}

// Latest returns the most recent Output, and false before the first tick.
func (r *Runner) Latest() (control.Output, bool) {
	r.latestMu.RLock()
	defer r.latestMu.RUnlock()
	return r.latest, r.hasTick
}

// JournalDropped returns how many journal entries were dropped because the
// writer fell behind.
func (r *Runner) JournalDropped() uint64 {
	return r.dropped.Load()
}
