// ABOUTME: Session lifecycle states, session metadata, and state-change events
// ABOUTME: Events are published on an eventbus.Bus[Event] after each transition

package session

import (
	"errors"
	"time"
)

// State is the controller lifecycle position.
type State int

const (
	Idle State = iota
	Opening
	Open
	Closing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Opening:
		return "opening"
	case Open:
		return "open"
	case Closing:
		return "closing"
	default:
		return "unknown"
	}
}

// Info describes the current (or opening) session. Zero when Idle.
type Info struct {
	ID       string
	LineName string
	Rate     int
	OpenedAt time.Time
	// Detail is the driver's endpoint description, e.g. a pty slave path.
	Detail string
}

// Event reports one state transition.
type Event struct {
	From State
	To   State
	Info Info
	// Err is set when the transition was caused by a failure.
	Err error
}

// Error kinds reported by the controller.
var (
	ErrSessionAlreadyActive   = errors.New("session already active")
	ErrNoActiveSession        = errors.New("no session is running")
	ErrLineOpenFailed         = errors.New("line open failed")
	ErrLineWriteFailed        = errors.New("line write failed")
	ErrLineClosedUnexpectedly = errors.New("line closed unexpectedly")
)
