package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/gatewaymock/gatewaymock/internal/id"
	"github.com/gatewaymock/gatewaymock/pkg/protocol"
)

// Store is the process-wide registry of sessions. It is safe for concurrent
// use; a lookup started after an invalidate completes always observes it.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a Store whose sessions expire ttl after their last
// activity (or after invalidation, for retained invalid sessions).
func NewStore(ttl time.Duration) *Store {
	return &Store{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create allocates a new session from the client's Identify parameters and
// registers it under a freshly generated id. A generated id colliding with a
// live one means the uniqueness guarantee is broken, which is fatal.
func (st *Store) Create(ident protocol.IdentifyData) *Session {
	now := st.now()
	s := &Session{
		ID:        id.SessionID(),
		CreatedAt: now,
		Shard:     ident.Shard,
		Intents:   ident.Intents,
		Compress:  ident.Compress,
		lastSeen:  now,
		valid:     true,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.sessions[s.ID]; exists {
		panic(fmt.Sprintf("session: generated duplicate id %s", s.ID))
	}
	st.sessions[s.ID] = s
	return s
}

// Lookup returns the session for id if it is still resumable. Expired
// sessions are purged on the way out (lazy sweep); invalidated-but-retained
// sessions report ErrInvalidated until their TTL elapses.
func (st *Store) Lookup(sessionID string) (*Session, error) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if s.expired(now, st.ttl) {
		delete(st.sessions, sessionID)
		return nil, ErrExpired
	}
	if !s.Valid() {
		return nil, ErrInvalidated
	}
	s.touch(now)
	return s, nil
}

// Invalidate marks the session non-resumable. With purge it is removed
// immediately; otherwise it is retained (still reported via ErrInvalidated)
// until the TTL sweep drops it.
func (st *Store) Invalidate(sessionID string, purge bool) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[sessionID]
	if !ok {
		return
	}
	s.invalidate(now)
	if purge {
		delete(st.sessions, sessionID)
	}
}

// Touch records client activity on the session, pushing its expiry out.
func (st *Store) Touch(sessionID string) {
	now := st.now()

	st.mu.RLock()
	s, ok := st.sessions[sessionID]
	st.mu.RUnlock()
	if ok {
		s.touch(now)
	}
}

// Len returns the number of sessions currently registered, including
// invalidated ones awaiting their TTL sweep.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close drops every session. Used on server shutdown; the store remains
// usable afterwards, it just starts empty.
func (st *Store) Close() {
	st.mu.Lock()
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()
}
