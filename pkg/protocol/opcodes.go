package protocol

// Opcode identifies the kind of gateway frame carried in an envelope.
type Opcode int

const (
	// OpDispatch delivers a sequence-numbered event to the client (0).
	OpDispatch Opcode = 0
	// OpHeartbeat is a liveness ping, client-sent or server-requested (1).
	OpHeartbeat Opcode = 1
	// OpIdentify starts a new session (2).
	OpIdentify Opcode = 2
	// OpResume reattaches to an existing session (6).
	OpResume Opcode = 6
	// OpReconnect asks the client to disconnect and reconnect (7).
	OpReconnect Opcode = 7
	// OpInvalidSession tells the client its session is gone; d carries a
	// boolean resumable flag (9).
	OpInvalidSession Opcode = 9
	// OpHello is the first server frame, carrying the heartbeat interval (10).
	OpHello Opcode = 10
	// OpHeartbeatAck acknowledges a client heartbeat (11).
	OpHeartbeatAck Opcode = 11
)

// String returns the opcode's protocol name.
func (op Opcode) String() string {
	switch op {
	case OpDispatch:
		return "Dispatch"
	case OpHeartbeat:
		return "Heartbeat"
	case OpIdentify:
		return "Identify"
	case OpResume:
		return "Resume"
	case OpReconnect:
		return "Reconnect"
	case OpInvalidSession:
		return "InvalidSession"
	case OpHello:
		return "Hello"
	case OpHeartbeatAck:
		return "HeartbeatAck"
	default:
		return "unknown"
	}
}

// Known reports whether the opcode is part of the gateway vocabulary the mock
// implements. Unknown opcodes are a protocol violation and close the socket.
func (op Opcode) Known() bool {
	switch op {
	case OpDispatch, OpHeartbeat, OpIdentify, OpResume, OpReconnect,
		OpInvalidSession, OpHello, OpHeartbeatAck:
		return true
	default:
		return false
	}
}

// CloseCode is a WebSocket close status sent when the server terminates a
// connection. Codes in the 4xxx range mirror the real gateway's vocabulary so
// client reconnect logic behaves identically against the mock.
type CloseCode int

const (
	// CloseNormal indicates a clean, uneventful closure (1000).
	CloseNormal CloseCode = 1000
	// CloseServiceRestart is sent alongside a Reconnect request (1012).
	CloseServiceRestart CloseCode = 1012
	// CloseProtocolError indicates a generic protocol violation (4000).
	CloseProtocolError CloseCode = 4000
	// CloseUnknownOpcode indicates an opcode outside the vocabulary (4001).
	CloseUnknownOpcode CloseCode = 4001
	// CloseDecodeError indicates a payload that failed to decode (4002).
	CloseDecodeError CloseCode = 4002
	// CloseAuthenticationFailed indicates a bad token on Identify/Resume (4004).
	CloseAuthenticationFailed CloseCode = 4004
	// CloseSessionTimeout indicates a missed heartbeat or handshake deadline (4009).
	CloseSessionTimeout CloseCode = 4009
	// CloseDisallowedIntents indicates intents the application is not
	// whitelisted for (4014).
	CloseDisallowedIntents CloseCode = 4014
)

// String returns a human-readable description of the close code.
func (c CloseCode) String() string {
	switch c {
	case CloseNormal:
		return "normal closure"
	case CloseServiceRestart:
		return "service restart"
	case CloseProtocolError:
		return "protocol error"
	case CloseUnknownOpcode:
		return "unknown opcode"
	case CloseDecodeError:
		return "decode error"
	case CloseAuthenticationFailed:
		return "authentication failed"
	case CloseSessionTimeout:
		return "session timed out"
	case CloseDisallowedIntents:
		return "disallowed intents"
	default:
		return "unknown"
	}
}
