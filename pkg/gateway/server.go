package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	ws "github.com/coder/websocket"

	"github.com/gatewaymock/gatewaymock/pkg/config"
	"github.com/gatewaymock/gatewaymock/pkg/logging"
	"github.com/gatewaymock/gatewaymock/pkg/protocol"
	"github.com/gatewaymock/gatewaymock/pkg/script"
	"github.com/gatewaymock/gatewaymock/pkg/session"
)

// Options configures a Server. Everything here is already-validated input;
// the server never re-checks it.
type Options struct {
	// HeartbeatInterval is advertised in Hello and enforced by the monitor.
	HeartbeatInterval time.Duration
	// HandshakeTimeout bounds the wait for Identify/Resume after Hello.
	HandshakeTimeout time.Duration
	// SessionTTL bounds session resumability without activity.
	SessionTTL time.Duration
	// ExternalURL is reported as resume_gateway_url in Ready.
	ExternalURL string
	// Bot is the static identity validated on Identify and echoed in Ready.
	Bot config.Bot
	// Scenarios are the per-connection fault toggles.
	Scenarios config.Scenarios
	// Script is the behavior script shared by all connections; nil or empty
	// means none.
	Script *script.Script
	// Guilds are the stubs listed in every Ready dispatch.
	Guilds []protocol.UnavailableGuild
	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// Server accepts gateway connections and spawns one Connection actor per
// socket. The session store it owns is the only state shared across
// connections.
type Server struct {
	opts  Options
	store *session.Store
	log   *slog.Logger

	mu      sync.Mutex
	conns   map[string]*Connection
	httpSrv *http.Server
}

// NewServer creates a Server from validated options.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = config.DefaultHeartbeatInterval
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = config.DefaultHandshakeTimeout
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = config.DefaultSessionTTL
	}
	if opts.Guilds == nil {
		// Ready serializes guilds as an array even when empty.
		opts.Guilds = []protocol.UnavailableGuild{}
	}
	return &Server{
		opts:  opts,
		store: session.NewStore(opts.SessionTTL),
		log:   opts.Logger,
		conns: make(map[string]*Connection),
	}
}

// Store returns the server's session store.
func (s *Server) Store() *session.Store {
	return s.store
}

// ConnectionCount returns the number of live connection actors.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// ServeHTTP upgrades the request and runs a Connection actor on its own
// goroutine.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := ws.Accept(w, r, &ws.AcceptOptions{
		// Clients under test connect from anywhere.
		InsecureSkipVerify: true,
	})
	if err != nil {
		s.log.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	wsConn.SetReadLimit(maxMessageSize)

	c := newConnection(wsConn, &s.opts, s.store, s.log)
	s.addConnection(c)
	s.log.Info("connection accepted", "connection", c.ID(), "remote", r.RemoteAddr)

	go func() {
		c.run()
		s.removeConnection(c.ID())
		s.log.Info("connection finished", "connection", c.ID())
	}()
}

func (s *Server) addConnection(c *Connection) {
	s.mu.Lock()
	s.conns[c.ID()] = c
	s.mu.Unlock()
}

func (s *Server) removeConnection(id string) {
	s.mu.Lock()
	delete(s.conns, id)
	s.mu.Unlock()
}

// connections returns a snapshot of the live actors.
func (s *Server) connections() []*Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	return conns
}

// ListenAndServe binds addr and serves until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	s.mu.Lock()
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpSrv
	s.mu.Unlock()

	s.log.Info("gateway listening", "addr", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown asks every live client to reconnect, then stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, c := range s.connections() {
		if err := c.RequestReconnect(); err != nil && !errors.Is(err, ErrConnectionClosed) {
			s.log.Debug("reconnect request failed", "connection", c.ID(), "error", err)
		}
	}

	s.mu.Lock()
	srv := s.httpSrv
	s.mu.Unlock()

	defer s.store.Close()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
