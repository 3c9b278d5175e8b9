// Package script parses and executes the line-oriented behavior scripts that
// drive a connection after its handshake completes.
//
// A script is plain text, one instruction per line; blank lines and lines
// starting with '#' are ignored. The grammar is a stable external contract:
//
//	sleep <duration>           suspend the script (e.g. "sleep 1s", "sleep 250ms")
//	sleep_ms <int>             legacy millisecond spelling
//	sleep_s <int>              legacy second spelling
//	invalidate_session <bool>  emit Invalid Session; false also purges the session
//	dispatch <EVENT> <json>    send a sequence-numbered dispatch
//	heartbeat                  send a server-initiated heartbeat request
//
// Instructions execute strictly in order on their own goroutine. A sleeping
// script suspends only its own connection's timeline; runtime failures are
// logged and skipped so one bad send never kills the rest of the script.
package script
