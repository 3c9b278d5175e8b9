// Package config loads and validates the gateway mock's configuration file.
//
// Configuration covers everything the core consumes as opaque input: the
// listen address, protocol timing (heartbeat interval, handshake timeout,
// session TTL), the static bot identity echoed in Ready, per-connection fault
// scenarios, mock entity counts, and the path of the behavior script.
//
// Files may be YAML or JSON; the format is detected from the file extension
// (.yaml/.yml for YAML, otherwise JSON). Loading applies defaults and then
// validates, so a Config obtained from Load is ready to hand to the server.
package config
