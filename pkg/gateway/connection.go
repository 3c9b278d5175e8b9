package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	ws "github.com/coder/websocket"

	"github.com/gatewaymock/gatewaymock/internal/id"
	"github.com/gatewaymock/gatewaymock/pkg/heartbeat"
	"github.com/gatewaymock/gatewaymock/pkg/protocol"
	"github.com/gatewaymock/gatewaymock/pkg/script"
	"github.com/gatewaymock/gatewaymock/pkg/session"
)

// maxMessageSize bounds inbound frames; gateway payloads are small.
const maxMessageSize = 512 * 1024

// Connection is the actor owning one socket. It runs the session state
// machine on its own goroutine and, once live, supervises the heartbeat
// monitor and script interpreter goroutines for the same connection.
type Connection struct {
	id    string
	conn  *ws.Conn
	opts  *Options
	store *session.Store
	log   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// writeMu serializes the send path shared by the state machine and the
	// interpreter; sequence stamping happens under it so dispatch order and
	// sequence order cannot diverge.
	writeMu   sync.Mutex
	closed    atomic.Bool
	closeCode atomic.Int64 // protocol.CloseCode of the close cause

	stateMu sync.Mutex
	state   State

	sessMu sync.Mutex
	sess   *session.Session

	monitor        *heartbeat.Monitor
	workers        sync.WaitGroup
	handshakeTimer *time.Timer
}

// newConnection wraps an accepted socket.
func newConnection(wsConn *ws.Conn, opts *Options, store *session.Store, log *slog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:     id.Connection(),
		conn:   wsConn,
		opts:   opts,
		store:  store,
		ctx:    ctx,
		cancel: cancel,
		state:  StateConnecting,
	}
	c.log = log.With("connection", c.id)
	return c
}

// ID returns the connection's unique id.
func (c *Connection) ID() string {
	return c.id
}

// Context returns the connection's lifetime context.
func (c *Connection) Context() context.Context {
	return c.ctx
}

// IsClosed reports whether the connection is closed.
func (c *Connection) IsClosed() bool {
	return c.closed.Load()
}

// Session returns the attached session, or nil before Identify/Resume.
func (c *Connection) Session() *session.Session {
	c.sessMu.Lock()
	defer c.sessMu.Unlock()
	return c.sess
}

func (c *Connection) setSession(s *session.Session) {
	c.sessMu.Lock()
	c.sess = s
	c.sessMu.Unlock()
}

// run drives the connection from Connecting to Closed. It blocks until the
// socket is gone and all workers have stopped.
func (c *Connection) run() {
	defer c.teardown()

	if err := c.send(protocol.Hello(c.opts.HeartbeatInterval)); err != nil {
		c.log.Debug("failed to send hello", "error", err)
		_ = c.closeWith(protocol.CloseProtocolError, "hello failed")
		return
	}
	if err := c.transition(StateAwaitingIdentifyOrResume); err != nil {
		return
	}

	// The client must identify or resume before the handshake deadline.
	c.handshakeTimer = time.AfterFunc(c.opts.HandshakeTimeout, func() {
		if !c.State().live() {
			c.log.Info("handshake deadline elapsed")
			_ = c.closeWith(protocol.CloseSessionTimeout, "handshake timed out")
		}
	})

	for {
		_, data, err := c.conn.Read(c.ctx)
		if err != nil {
			return
		}
		c.handleFrame(data)
	}
}

// handleFrame decodes one inbound frame and feeds it to the state machine.
func (c *Connection) handleFrame(data []byte) {
	p, err := protocol.Decode(data)
	if err != nil {
		c.log.Debug("undecodable client frame", "error", err)
		if errors.Is(err, protocol.ErrUnknownOpcode) {
			_ = c.closeWith(protocol.CloseUnknownOpcode, "unknown opcode")
		} else {
			_ = c.closeWith(protocol.CloseDecodeError, "error while decoding payload")
		}
		return
	}

	c.log.Debug("client frame", "op", p.Op.String(), "state", c.State().String())

	switch p.Op {
	case protocol.OpIdentify:
		c.handleIdentify(p)
	case protocol.OpResume:
		c.handleResume(p)
	case protocol.OpHeartbeat:
		c.handleHeartbeat()
	default:
		// Server-to-client opcodes arriving from the client carry no
		// meaning; the real gateway ignores them too.
		c.log.Debug("ignoring client frame", "op", p.Op.String())
	}
}

// handleIdentify validates an Identify and brings the connection to Ready.
func (c *Connection) handleIdentify(p *protocol.Payload) {
	if c.State() != StateAwaitingIdentifyOrResume {
		_ = c.closeWith(protocol.CloseProtocolError, "unexpected identify")
		return
	}

	var ident protocol.IdentifyData
	if err := p.DataInto(&ident); err != nil {
		_ = c.closeWith(protocol.CloseDecodeError, "error while decoding payload")
		return
	}

	if !c.tokenValid(ident.Token) {
		c.log.Info("identify rejected: bad token")
		_ = c.closeWith(protocol.CloseAuthenticationFailed, "authentication failed")
		return
	}
	if !c.opts.Bot.ApplicationFlags.AllowedIntents().Contains(ident.Intents) {
		c.log.Info("identify rejected: disallowed intents", "intents", int64(ident.Intents))
		_ = c.closeWith(protocol.CloseDisallowedIntents, "disallowed intent(s)")
		return
	}
	if ident.Shard != nil && (ident.Shard[0] < 0 || ident.Shard[1] < 1 || ident.Shard[0] >= ident.Shard[1]) {
		_ = c.closeWith(protocol.CloseProtocolError, "invalid shard")
		return
	}

	sess := c.store.Create(ident)
	c.setSession(sess)
	c.stopHandshakeTimer()

	if err := c.transition(StateReady); err != nil {
		c.log.Error("ready transition rejected", "error", err)
		return
	}

	ready := protocol.ReadyData{
		V:                protocol.ReadyVersion,
		User:             c.opts.Bot.User(),
		Guilds:           c.opts.Guilds,
		SessionID:        sess.ID,
		ResumeGatewayURL: c.opts.ExternalURL,
		Shard:            ident.Shard,
		Application:      c.opts.Bot.Application(),
	}
	if err := c.dispatchValue("READY", ready); err != nil {
		c.log.Debug("failed to send ready", "error", err)
		return
	}

	c.log.Info("client identified", "session", sess.ID)
	c.startWorkers()
}

// handleResume reattaches the connection to an existing session, or reports
// Invalid Session per policy.
func (c *Connection) handleResume(p *protocol.Payload) {
	if c.State() != StateAwaitingIdentifyOrResume {
		_ = c.closeWith(protocol.CloseProtocolError, "unexpected resume")
		return
	}

	var resume protocol.ResumeData
	if err := p.DataInto(&resume); err != nil {
		_ = c.closeWith(protocol.CloseDecodeError, "error while decoding payload")
		return
	}

	if !c.tokenValid(resume.Token) {
		c.log.Info("resume rejected: bad token")
		_ = c.closeWith(protocol.CloseAuthenticationFailed, "authentication failed")
		return
	}

	// The fail-resume scenario reports the session invalid but resumable and
	// leaves the socket open: a well-behaved client falls back to Identify.
	if c.opts.Scenarios.FailResume {
		c.log.Info("resume failed by scenario", "session", resume.SessionID)
		_ = c.send(protocol.InvalidSession(true))
		return
	}

	sess, err := c.store.Lookup(resume.SessionID)
	if err != nil {
		c.log.Info("resume rejected", "session", resume.SessionID, "error", err)
		_ = c.send(protocol.InvalidSession(false))
		_ = c.closeWith(protocol.CloseNormal, "")
		return
	}

	c.setSession(sess)
	c.stopHandshakeTimer()

	if err := c.transition(StateResumed); err != nil {
		c.log.Error("resumed transition rejected", "error", err)
		return
	}

	// Dispatches between the client's reported seq and the current counter
	// would replay here. The mock buffers none, so the continuity promise is
	// kept by resuming the counter exactly where it stood.
	if err := c.sendResumed(sess); err != nil {
		c.log.Debug("failed to send resumed", "error", err)
		return
	}

	c.log.Info("client resumed", "session", sess.ID, "seq", sess.Seq())
	c.startWorkers()
}

// handleHeartbeat acknowledges a client heartbeat unless a scenario
// suppresses it.
func (c *Connection) handleHeartbeat() {
	ack := !c.opts.Scenarios.SimulateHeartbeatTimeout
	if m := c.monitor; m != nil {
		ack = m.Beat()
	}
	if sess := c.Session(); sess != nil {
		c.store.Touch(sess.ID)
	}
	if ack {
		_ = c.send(protocol.HeartbeatAck())
	}
}

// tokenValid compares the client token against the configured bot token,
// tolerating the canonical "Bot " prefix.
func (c *Connection) tokenValid(token string) bool {
	return strings.TrimPrefix(token, "Bot ") == c.opts.Bot.Token
}

// startWorkers launches the heartbeat monitor and, if a script is
// configured, the interpreter, as siblings of the message loop.
func (c *Connection) startWorkers() {
	c.monitor = heartbeat.New(heartbeat.Config{
		Interval:        c.opts.HeartbeatInterval,
		SimulateTimeout: c.opts.Scenarios.SimulateHeartbeatTimeout,
		OnTimeout: func() {
			c.log.Info("heartbeat timed out")
			_ = c.closeWith(protocol.CloseSessionTimeout, "session timed out")
		},
	})
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		c.monitor.Run(c.ctx)
	}()

	if c.opts.Script.Len() > 0 {
		interp := script.NewInterpreter(c.opts.Script, c, c.log)
		c.workers.Add(1)
		go func() {
			defer c.workers.Done()
			interp.Run(c.ctx)
		}()
	}
}

// send writes a non-dispatch frame through the serialized send path.
func (c *Connection) send(p *protocol.Payload) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(p)
}

// Dispatch sends a sequence-numbered event. It is the interpreter's send
// capability and refuses to fire outside Ready/Resumed.
func (c *Connection) Dispatch(event string, data json.RawMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if !c.State().live() {
		return ErrNotReady
	}
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}
	return c.writeLocked(protocol.Dispatch(sess.NextSeq(), event, data))
}

// dispatchValue marshals v and dispatches it.
func (c *Connection) dispatchValue(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Dispatch(event, data)
}

// sendResumed emits the RESUMED dispatch. It carries the session's current
// sequence unchanged: resuming itself never consumes a sequence number.
func (c *Connection) sendResumed(sess *session.Session) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeLocked(protocol.Dispatch(sess.Seq(), "RESUMED", nil))
}

// InvalidateSession runs the invalidation path: Invalid Session to the
// client, purge from the store when non-resumable, then a clean close so the
// client reconnects.
func (c *Connection) InvalidateSession(resumable bool) error {
	sess := c.Session()
	if sess == nil {
		return ErrNoSession
	}
	if !resumable {
		c.store.Invalidate(sess.ID, true)
	}
	if err := c.send(protocol.InvalidSession(resumable)); err != nil {
		return err
	}
	return c.closeWith(protocol.CloseNormal, "")
}

// RequestHeartbeat sends a server-initiated heartbeat probe.
func (c *Connection) RequestHeartbeat() error {
	return c.send(protocol.HeartbeatRequest())
}

// RequestReconnect asks the client to reconnect and resume, closing with the
// dedicated reconnect close code.
func (c *Connection) RequestReconnect() error {
	if err := c.send(protocol.Reconnect()); err != nil {
		return err
	}
	return c.closeWith(protocol.CloseServiceRestart, "reconnecting")
}

// writeLocked encodes and writes a frame. Callers hold writeMu.
func (c *Connection) writeLocked(p *protocol.Payload) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	data, err := p.Encode()
	if err != nil {
		return err
	}
	return c.conn.Write(c.ctx, ws.MessageText, data)
}

// closeWith sends the close frame and cancels the connection context. It is
// safe from any goroutine and never blocks on the workers; run's teardown
// waits for those.
func (c *Connection) closeWith(code protocol.CloseCode, reason string) error {
	c.writeMu.Lock()
	if c.closed.Swap(true) {
		c.writeMu.Unlock()
		return ErrConnectionClosed
	}
	c.closeCode.Store(int64(code))
	c.writeMu.Unlock()

	if err := c.transition(StateClosing); err != nil {
		// Already closing through another path.
		c.log.Debug("close transition rejected", "error", err)
	}

	err := c.conn.Close(ws.StatusCode(code), reason)
	c.cancel()
	return err
}

// teardown stops the workers, settles the session per close cause, and moves
// the connection to Closed. Runs exactly once, on the actor goroutine.
func (c *Connection) teardown() {
	if !c.closed.Swap(true) {
		// Socket died without an explicit close (client went away).
		c.closeCode.Store(int64(protocol.CloseNormal))
		if err := c.transition(StateClosing); err == nil {
			c.log.Debug("connection closed by peer")
		}
	}
	c.stopHandshakeTimer()
	c.cancel()

	// Workers must be fully stopped before the session reference is
	// released, so no late write targets a purged session.
	c.workers.Wait()

	if sess := c.Session(); sess != nil && protocol.CloseCode(c.closeCode.Load()) == protocol.CloseSessionTimeout {
		// A timed-out session is no longer resumable; retain it for the TTL
		// window so resumes report invalidated rather than unknown.
		c.store.Invalidate(sess.ID, false)
	}
	c.setSession(nil)

	_ = c.transition(StateClosed)
	_ = c.conn.CloseNow()
	c.log.Debug("connection torn down", "code", c.closeCode.Load())
}

func (c *Connection) stopHandshakeTimer() {
	if c.handshakeTimer != nil {
		c.handshakeTimer.Stop()
	}
}
