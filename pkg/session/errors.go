package session

import "errors"

// Common errors for the session package.
var (
	// ErrNotFound indicates no session exists with the given id.
	ErrNotFound = errors.New("session not found")
	// ErrExpired indicates the session existed but its TTL elapsed.
	ErrExpired = errors.New("session expired")
	// ErrInvalidated indicates the session was explicitly invalidated.
	ErrInvalidated = errors.New("session invalidated")
)
