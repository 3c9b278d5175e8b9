// Package protocol implements the gateway wire format: the JSON envelope
// exchanged over the WebSocket, the opcode and close-code vocabularies, and
// typed payload bodies for the opcodes a mock gateway must speak.
//
// Every frame is a single envelope:
//
//	{"op": <int>, "d": <value>, "s": <int|null>, "t": <string|null>}
//
// The sequence number s and event name t are only populated for Dispatch
// (op 0) frames; on every other opcode they are null. Encoding and decoding
// preserve that shape exactly so that real client libraries can be pointed at
// the mock unchanged.
package protocol
