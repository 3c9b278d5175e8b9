// Package logging provides structured logging configuration for the gateway
// mock.
//
// It wraps log/slog so every component logs through the same handler setup:
// configurable level, text or JSON output, and an optional source attribute.
// Components accept a *slog.Logger in their constructor; tests pass
// logging.Nop().
package logging
