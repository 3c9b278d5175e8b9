// Package gateway implements the mock gateway server: the WebSocket accept
// loop, the per-connection session state machine, and the wiring that runs
// the heartbeat monitor and behavior script alongside each connection.
//
// Every accepted socket gets one Connection actor. The actor drives the
// protocol handshake (Hello, then Identify or Resume), and once the
// connection is Ready or Resumed it starts two sibling goroutines: the
// heartbeat monitor enforcing the liveness deadline and the script
// interpreter injecting scripted behavior. All three serialize their output
// through the connection's single send path, so dispatches are delivered and
// sequence-numbered in exactly the order they are issued, whichever side
// issued them.
//
// Closing a connection cancels the monitor and interpreter and waits for
// both before the session-store reference is released, so a late script send
// can never target a purged session.
package gateway
