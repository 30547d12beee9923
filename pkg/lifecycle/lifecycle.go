// Package lifecycle enforces the host call order of editor plugins and drives
// plugins through it: construction, caching, use and disposal.
package lifecycle

import "errors"

var (
	// ErrOutOfOrder is returned when a call is not allowed in the plugin's current state.
	ErrOutOfOrder = errors.New("lifecycle: call out of order")
	// ErrInUse is returned by Host.Open for a plugin that is already open.
	ErrInUse = errors.New("lifecycle: plugin already in use")
	// ErrNotOpen is returned by Host.Close and Host.Source for a plugin that is not open.
	ErrNotOpen = errors.New("lifecycle: plugin not open")
)

// State is the lifecycle state of one plugin instance.
type State int

const (
	// StateConstructed - the constructor ran, SetName is next.
	StateConstructed State = iota
	// StateNamed - the plugin has its name and may be installed, configured or started.
	StateNamed
	// StateInUse - between StartUsing and StopUsing; problem calls are allowed.
	StateInUse
	// StateIdle - stopped; the host may cache it or dispose it.
	StateIdle
	// StateDisposed - no further calls are allowed.
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateNamed:
		return "named"
	case StateInUse:
		return "in-use"
	case StateIdle:
		return "idle"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
