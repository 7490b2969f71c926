package failsafe

import (
	"time"

	"github.com/nerrad567/lightguard-core/internal/lighting"
)

// Logger is the logging interface used by the failsafe package.
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

// Manager is the sole authority over system State. It is not safe for
// concurrent use; the control loop owns it.
type Manager struct {
	cfg    lighting.Config
	logger Logger

	state    State
	recovery time.Duration
	critical bool // a critical fault was reported since the last TakeEvents

	faults      []Fault
	transitions []Transition
}

// NewManager creates a manager in StateNormal. A nil logger discards output.
func NewManager(cfg lighting.Config, logger Logger) *Manager {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Manager{cfg: cfg, logger: logger, state: StateNormal}
}

// State returns the current system state.
func (m *Manager) State() State {
	return m.state
}

// Report records a fault. A critical fault moves the system to StateError
// immediately.
func (m *Manager) Report(f Fault) {
	m.faults = append(m.faults, f)

	if !f.IsCritical() {
		m.logger.Warn("fault reported",
			"kind", f.Kind,
			"severity", f.Severity,
			"message", f.Message,
			"count", f.Count,
		)
		return
	}

	m.logger.Error("critical fault",
		"kind", f.Kind,
		"message", f.Message,
		"state", m.state,
	)
	m.critical = true
	m.recovery = 0
	m.transition(StateError, string(f.Kind)+": "+f.Message)
}

// SetManualOverride reflects the driver's manual beam request in the
// state. It has no effect while in StateError.
func (m *Manager) SetManualOverride(active bool) {
	switch m.state {
	case StateError:
	case StateNormal:
		if active {
			m.transition(StateManualOverride, "manual beam requested")
		}
	case StateManualOverride:
		if !active {
			m.transition(StateNormal, "manual beam released")
		}
	default:
		m.Report(Critical(KindInvariant, "unknown system state %q", m.state))
	}
}

// Recover advances the recovery debounce. It returns true on the tick the
// system leaves StateError; the caller must then discard any stale
// sub-state before resuming automation.
//
// Parameters:
//   - healthy: whether the perception feed is within tolerance, see FeedMonitor.Healthy
//   - dt: time elapsed since the previous tick
func (m *Manager) Recover(healthy bool, dt time.Duration) bool {
	if m.state != StateError {
		return false
	}
	if m.critical || !healthy {
		m.recovery = 0
		return false
	}

	m.recovery += dt
	if m.recovery < m.cfg.RecoveryDebounce {
		return false
	}
	m.recovery = 0
	m.transition(StateNormal, "input healthy for "+m.cfg.RecoveryDebounce.String())
	return true
}

// TakeEvents returns the faults and transitions recorded since the last
// call and clears them.
func (m *Manager) TakeEvents() ([]Fault, []Transition) {
	faults, transitions := m.faults, m.transitions
	m.faults, m.transitions = nil, nil
	m.critical = false
	return faults, transitions
}

func (m *Manager) transition(to State, reason string) {
	if m.state == to {
		return
	}
	m.logger.Info("system state changed", "from", m.state, "to", to, "reason", reason)
	m.transitions = append(m.transitions, Transition{From: m.state, To: to, Reason: reason})
	m.state = to
}
