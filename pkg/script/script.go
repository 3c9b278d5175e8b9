package script

import (
	"encoding/json"
	"fmt"
	"time"
)

// Instruction is one step of a script. The set is closed on purpose: new
// variants (loops, disconnects) get added here rather than special-cased in
// the interpreter loop.
type Instruction interface {
	fmt.Stringer

	// isInstruction keeps the variant set closed to this package.
	isInstruction()
}

// Sleep suspends the script timeline for a fixed duration. Only the owning
// connection's script is suspended.
type Sleep struct {
	Duration time.Duration
}

func (Sleep) isInstruction() {}

func (s Sleep) String() string {
	return fmt.Sprintf("sleep %s", s.Duration)
}

// InvalidateSession tells the client its session is invalid. With
// Resumable=false the session is also purged server-side, so a later Resume
// fails; with Resumable=true the client is expected to reconnect and resume.
type InvalidateSession struct {
	Resumable bool
}

func (InvalidateSession) isInstruction() {}

func (i InvalidateSession) String() string {
	return fmt.Sprintf("invalidate_session %t", i.Resumable)
}

// Dispatch sends a custom event, sequence-numbered from the owning session.
type Dispatch struct {
	Event string
	Data  json.RawMessage
}

func (Dispatch) isInstruction() {}

func (d Dispatch) String() string {
	return fmt.Sprintf("dispatch %s", d.Event)
}

// Heartbeat sends a server-initiated heartbeat request, probing the client's
// heartbeat-reply handling.
type Heartbeat struct{}

func (Heartbeat) isInstruction() {}

func (Heartbeat) String() string {
	return "heartbeat"
}

// Script is an immutable, ordered instruction sequence. One Script may be
// shared by any number of connections; each gets its own Interpreter.
type Script struct {
	instructions []Instruction
}

// Instructions returns the ordered instruction list.
func (s *Script) Instructions() []Instruction {
	return s.instructions
}

// Len returns the number of instructions.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.instructions)
}
