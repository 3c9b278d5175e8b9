package script

import (
	"errors"
	"fmt"
)

// Parse failure reasons.
var (
	// ErrUnknownInstruction indicates an unrecognized instruction keyword.
	ErrUnknownInstruction = errors.New("unknown instruction")
	// ErrMissingArgument indicates a required argument was absent.
	ErrMissingArgument = errors.New("missing required argument")
	// ErrExpectedInteger indicates an argument that failed to parse as an integer.
	ErrExpectedInteger = errors.New("expected an integer")
	// ErrExpectedBoolean indicates an argument that failed to parse as a boolean.
	ErrExpectedBoolean = errors.New("expected a boolean")
	// ErrExpectedDuration indicates an argument that failed to parse as a duration.
	ErrExpectedDuration = errors.New("expected a duration")
	// ErrInvalidJSON indicates a dispatch payload that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON payload")
)

// ParseError reports a malformed instruction together with the line it
// appeared on. A script with any parse error does not run at all.
type ParseError struct {
	Line   int
	Reason error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("script line %d: %v", e.Line, e.Reason)
}

// Unwrap exposes the underlying reason for errors.Is checks.
func (e *ParseError) Unwrap() error {
	return e.Reason
}
