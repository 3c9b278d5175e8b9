package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gatewaymock/gatewaymock/pkg/protocol"
)

// Session is the server-side record of one logical client session. It is
// created on Identify and outlives the socket: a Resume on a fresh socket
// reattaches to the same record.
type Session struct {
	// ID is the opaque token handed to the client in Ready. Never reused.
	ID string
	// CreatedAt is the time of the Identify that created the session.
	CreatedAt time.Time

	// Identify parameters, kept verbatim for Resume validation and Ready
	// construction.
	Shard    *[2]int
	Intents  protocol.Intents
	Compress bool

	seq atomic.Int64

	mu            sync.Mutex
	lastSeen      time.Time
	valid         bool
	invalidatedAt time.Time
}

// NextSeq increments the dispatch sequence counter and returns the new value.
// The first dispatch of a fresh session carries sequence 1.
func (s *Session) NextSeq() int64 {
	return s.seq.Add(1)
}

// Seq returns the last assigned sequence number.
func (s *Session) Seq() int64 {
	return s.seq.Load()
}

// Valid reports whether the session may still be resumed.
func (s *Session) Valid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.valid
}

// LastSeen returns the last time the session saw client activity.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) invalidate(now time.Time) {
	s.mu.Lock()
	if s.valid {
		s.valid = false
		s.invalidatedAt = now
	}
	s.mu.Unlock()
}

// expired reports whether the session is past the TTL, measured from last
// activity for live sessions and from invalidation for dead ones.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	since := s.lastSeen
	if !s.valid {
		since = s.invalidatedAt
	}
	return now.Sub(since) > ttl
}
