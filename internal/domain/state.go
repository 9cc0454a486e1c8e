package domain

import "fmt"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseConnected
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseConnected:
		return "connected"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ConnectionState is owned by one connection attempt. Reason is set only when failed.
type ConnectionState struct {
	Phase  Phase
	Reason error
}

var Idle = ConnectionState{Phase: PhaseIdle}

func Connecting() ConnectionState { return ConnectionState{Phase: PhaseConnecting} }
func Connected() ConnectionState  { return ConnectionState{Phase: PhaseConnected} }
func Failed(reason error) ConnectionState {
	return ConnectionState{Phase: PhaseFailed, Reason: reason}
}

func (s ConnectionState) String() string {
	if s.Phase == PhaseFailed && s.Reason != nil {
		return fmt.Sprintf("failed(%v)", s.Reason)
	}
	return s.Phase.String()
}

// CanTransition enforces forward-only movement inside one attempt.
// Idle is reachable only through an explicit close, which ends the attempt.
func (s ConnectionState) CanTransition(to Phase) bool {
	switch s.Phase {
	case PhaseIdle:
		return to == PhaseConnecting
	case PhaseConnecting:
		return to == PhaseConnected || to == PhaseFailed || to == PhaseIdle
	case PhaseConnected:
		return to == PhaseFailed || to == PhaseIdle
	case PhaseFailed:
		return to == PhaseIdle
	}
	return false
}
