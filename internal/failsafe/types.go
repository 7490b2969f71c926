package failsafe

import "fmt"

// State is the system-wide operating state.
type State string

// State constants.
const (
	StateNormal         State = "NORMAL"
	StateError          State = "ERROR"
	StateManualOverride State = "MANUAL_OVERRIDE"
)

// Severity is the fault severity tag.
type Severity string

// Severity constants.
const (
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// Kind is the fault taxonomy.
type Kind string

// Kind constants.
const (
	KindInput     Kind = "INPUT_FAULT"
	KindTiming    Kind = "TIMING_FAULT"
	KindInvariant Kind = "INTERNAL_INVARIANT_VIOLATION"
)

// Fault is one tagged fault report.
type Fault struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Count carries the number of affected items, e.g. discarded observations.
	Count int `json:"count,omitempty"`
}

// Transition records a change of system state.
type Transition struct {
	From   State  `json:"from"`
	To     State  `json:"to"`
	Reason string `json:"reason"`
}

// Warning builds a WARNING fault.
func Warning(kind Kind, count int, format string, args ...any) Fault {
	return Fault{Kind: kind, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Count: count}
}

// Critical builds a CRITICAL fault.
func Critical(kind Kind, format string, args ...any) Fault {
	return Fault{Kind: kind, Severity: SeverityCritical, Message: fmt.Sprintf(format, args...)}
}

// IsCritical reports whether the fault forces the ERROR state. An
// unrecognised severity is treated as critical.
func (f Fault) IsCritical() bool {
	switch f.Severity {
	case SeverityWarning:
		return false
	default:
		return true
	}
}
