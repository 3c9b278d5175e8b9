package protocol

import (
	"encoding/json"
	"fmt"
	"time"
)

// Payload is the gateway envelope. S and T are pointers so that non-dispatch
// frames serialize them as null, matching the real gateway byte-for-byte.
type Payload struct {
	Op Opcode          `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  *string         `json:"t"`
}

// Encode marshals the payload to wire bytes.
func (p *Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// Decode parses wire bytes into a Payload. It fails with ErrMalformedPayload
// for anything that is not an envelope and ErrUnknownOpcode for opcodes
// outside the vocabulary.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if !p.Op.Known() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOpcode, p.Op)
	}
	return &p, nil
}

// DataInto unmarshals the payload's data field into v.
func (p *Payload) DataInto(v any) error {
	if len(p.D) == 0 || string(p.D) == "null" {
		return ErrMissingData
	}
	if err := json.Unmarshal(p.D, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

// plain builds a payload with null s/t, the shape of every non-dispatch frame.
func plain(op Opcode, d any) *Payload {
	p := &Payload{Op: op}
	if d != nil {
		raw, err := json.Marshal(d)
		if err != nil {
			// All callers pass marshal-safe values; this is unreachable
			// outside programmer error.
			panic(fmt.Sprintf("protocol: marshal %s data: %v", op, err))
		}
		p.D = raw
	} else {
		p.D = json.RawMessage("null")
	}
	return p
}

// HelloData carries the heartbeat interval the client must honor.
type HelloData struct {
	HeartbeatIntervalMS int64 `json:"heartbeat_interval"`
}

// Hello builds the op 10 frame sent immediately after the socket opens.
func Hello(interval time.Duration) *Payload {
	return plain(OpHello, HelloData{HeartbeatIntervalMS: interval.Milliseconds()})
}

// HeartbeatAck builds the op 11 acknowledgment for a client heartbeat.
func HeartbeatAck() *Payload {
	return plain(OpHeartbeatAck, nil)
}

// HeartbeatRequest builds a server-initiated op 1 probe asking the client to
// heartbeat immediately.
func HeartbeatRequest() *Payload {
	return plain(OpHeartbeat, nil)
}

// InvalidSession builds the op 9 frame; resumable tells the client whether a
// Resume with its current session id can still succeed.
func InvalidSession(resumable bool) *Payload {
	return plain(OpInvalidSession, resumable)
}

// Reconnect builds the op 7 frame asking the client to reconnect and resume.
func Reconnect() *Payload {
	return plain(OpReconnect, nil)
}

// Dispatch builds a sequence-numbered op 0 event frame.
func Dispatch(seq int64, event string, data json.RawMessage) *Payload {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return &Payload{Op: OpDispatch, D: data, S: &seq, T: &event}
}

// IdentifyData is the client's op 2 body.
type IdentifyData struct {
	Token      string          `json:"token"`
	Intents    Intents         `json:"intents"`
	Compress   bool            `json:"compress,omitempty"`
	Shard      *[2]int         `json:"shard,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
}

// ResumeData is the client's op 6 body.
type ResumeData struct {
	Token     string `json:"token"`
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
}

// BotUser is the mock bot's user object embedded in Ready.
type BotUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar,omitempty"`
	Bot           bool   `json:"bot"`
	MFAEnabled    bool   `json:"mfa_enabled"`
	Verified      bool   `json:"verified"`
	Flags         int64  `json:"flags,omitempty"`
	PublicFlags   int64  `json:"public_flags,omitempty"`
}

// PartialApplication is the application fragment embedded in Ready.
type PartialApplication struct {
	ID    string           `json:"id"`
	Flags ApplicationFlags `json:"flags"`
}

// UnavailableGuild is a guild stub listed in Ready; the client is expected to
// receive a GUILD_CREATE for each one later.
type UnavailableGuild struct {
	ID          string `json:"id"`
	Unavailable bool   `json:"unavailable"`
}

// ReadyVersion is the gateway version reported in the Ready dispatch.
const ReadyVersion = 6

// ReadyData is the body of the READY dispatch confirming an Identify.
type ReadyData struct {
	V                int                `json:"v"`
	User             BotUser            `json:"user"`
	Guilds           []UnavailableGuild `json:"guilds"`
	SessionID        string             `json:"session_id"`
	ResumeGatewayURL string             `json:"resume_gateway_url"`
	Shard            *[2]int            `json:"shard,omitempty"`
	Application      PartialApplication `json:"application"`
}
