package protocol

import "errors"

// Common errors for the protocol package.
var (
	// ErrMalformedPayload indicates the envelope was not valid JSON or did
	// not have the expected shape.
	ErrMalformedPayload = errors.New("malformed payload")
	// ErrUnknownOpcode indicates an opcode outside the gateway vocabulary.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrMissingData indicates an opcode that requires a data field arrived
	// without one.
	ErrMissingData = errors.New("missing payload data")
)
