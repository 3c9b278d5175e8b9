package script

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Conn is the capability surface an interpreter drives. The gateway
// connection implements it; tests substitute fakes.
type Conn interface {
	// Dispatch sends a sequence-numbered custom event.
	Dispatch(event string, data json.RawMessage) error
	// InvalidateSession runs the connection's invalidation path.
	InvalidateSession(resumable bool) error
	// RequestHeartbeat sends a server-initiated heartbeat probe.
	RequestHeartbeat() error
}

// Interpreter executes one Script against one connection. Instructions run
// strictly in order; runtime errors are logged and skipped; cancellation is
// observed at every suspension point.
type Interpreter struct {
	script *Script
	conn   Conn
	log    *slog.Logger
}

// NewInterpreter creates an Interpreter for the given connection.
func NewInterpreter(s *Script, conn Conn, log *slog.Logger) *Interpreter {
	return &Interpreter{script: s, conn: conn, log: log}
}

// Run executes the script until it completes or ctx is cancelled. It is
// intended to run on its own goroutine so a sleeping script never blocks the
// connection's message loop or heartbeat monitor.
func (in *Interpreter) Run(ctx context.Context) {
	for _, inst := range in.script.Instructions() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		in.log.Debug("running script instruction", "instruction", inst.String())

		if err := in.exec(ctx, inst); err != nil {
			if ctx.Err() != nil {
				return
			}
			// Per-instruction failures don't terminate the script.
			in.log.Warn("script instruction failed, skipping",
				"instruction", inst.String(), "error", err)
		}
	}
}

func (in *Interpreter) exec(ctx context.Context, inst Instruction) error {
	switch v := inst.(type) {
	case Sleep:
		timer := time.NewTimer(v.Duration)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}

	case InvalidateSession:
		return in.conn.InvalidateSession(v.Resumable)

	case Dispatch:
		return in.conn.Dispatch(v.Event, v.Data)

	case Heartbeat:
		return in.conn.RequestHeartbeat()

	default:
		// Unreachable while the variant set stays closed.
		in.log.Warn("skipping unimplemented script instruction", "instruction", inst.String())
		return nil
	}
}
