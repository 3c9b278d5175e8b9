// Package session tracks logical gateway sessions across socket reconnects.
//
// A Session is created on a successful Identify and survives the socket that
// created it: a client reconnecting with a Resume frame reattaches to the same
// record and continues its dispatch sequence. The Store is the only state
// shared between connections; all access goes through its mutex so that an
// invalidate completed on one connection is observed by a lookup started
// afterwards on another.
package session
