package gateway

import "errors"

// Common errors for the gateway package.
var (
	// ErrConnectionClosed indicates the connection is closed.
	ErrConnectionClosed = errors.New("connection closed")
	// ErrNoSession indicates an operation that needs a session ran before
	// Identify established one.
	ErrNoSession = errors.New("no session established")
	// ErrNotReady indicates a dispatch was attempted outside Ready/Resumed.
	ErrNotReady = errors.New("connection not ready")
	// ErrInvalidTransition indicates a state change outside the transition
	// table.
	ErrInvalidTransition = errors.New("invalid state transition")
)
