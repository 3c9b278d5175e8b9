package gateway

import "fmt"

// State is a connection's position in the session lifecycle.
type State int

const (
	// StateConnecting covers the socket before Hello is sent.
	StateConnecting State = iota
	// StateAwaitingIdentifyOrResume covers the window between Hello and a
	// valid Identify/Resume.
	StateAwaitingIdentifyOrResume
	// StateReady is a live connection with a fresh session.
	StateReady
	// StateResumed is a live connection reattached to an existing session.
	StateResumed
	// StateClosing means the close frame is out and workers are stopping.
	StateClosing
	// StateClosed is terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateAwaitingIdentifyOrResume:
		return "AwaitingIdentifyOrResume"
	case StateReady:
		return "Ready"
	case StateResumed:
		return "Resumed"
	case StateClosing:
		return "Closing"
	case StateClosed:
		return "Closed"
	default:
		return "unknown"
	}
}

// live reports whether dispatches may be sent in this state.
func (s State) live() bool {
	return s == StateReady || s == StateResumed
}

// transitions is the closed set of legal state changes. Anything not listed
// here is a bug, not a protocol condition.
var transitions = map[State][]State{
	StateConnecting:               {StateAwaitingIdentifyOrResume, StateClosing},
	StateAwaitingIdentifyOrResume: {StateReady, StateResumed, StateClosing},
	StateReady:                    {StateClosing},
	StateResumed:                  {StateClosing},
	StateClosing:                  {StateClosed},
	StateClosed:                   {},
}

// canTransition reports whether from→to is in the table.
func canTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the connection to a new state, rejecting anything outside
// the table.
func (c *Connection) transition(to State) error {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if !canTransition(c.state, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.state, to)
	}
	c.state = to
	return nil
}

// State returns the connection's current lifecycle state.
func (c *Connection) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}
