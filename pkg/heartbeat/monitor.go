// Package heartbeat enforces the gateway's liveness contract for one
// connection: the client must heartbeat at least once per interval, and the
// server acknowledges every beat unless a fault scenario withholds acks.
package heartbeat

import (
	"context"
	"sync/atomic"
	"time"
)

// MaxMissedBeats is how many consecutive missed deadlines close the
// connection. The real gateway tolerates none.
const MaxMissedBeats = 1

// GraceDivisor derives the fixed deadline slack from the interval
// (grace = interval / GraceDivisor). Not client-configurable.
const GraceDivisor = 4

// Config configures a Monitor.
type Config struct {
	// Interval is the heartbeat interval advertised in Hello.
	Interval time.Duration
	// SimulateTimeout withholds acknowledgments and ignores incoming beats
	// so the connection times out even against a well-behaved client.
	SimulateTimeout bool
	// OnTimeout is invoked once, from the monitor goroutine, when the
	// client misses MaxMissedBeats consecutive deadlines.
	OnTimeout func()
}

// Monitor tracks expected versus received heartbeats for one connection.
// Beat is safe to call concurrently with Run.
type Monitor struct {
	interval        time.Duration
	grace           time.Duration
	simulateTimeout bool
	onTimeout       func()

	lastBeat atomic.Int64 // UnixNano of the last counted client beat
	missed   int
}

// New creates a Monitor. Run must be started separately.
func New(cfg Config) *Monitor {
	m := &Monitor{
		interval:        cfg.Interval,
		grace:           cfg.Interval / GraceDivisor,
		simulateTimeout: cfg.SimulateTimeout,
		onTimeout:       cfg.OnTimeout,
	}
	m.lastBeat.Store(time.Now().UnixNano())
	return m
}

// Deadline returns the per-beat deadline (interval + grace).
func (m *Monitor) Deadline() time.Duration {
	return m.interval + m.grace
}

// Beat records a client heartbeat and reports whether it should be
// acknowledged. Under the timeout scenario the beat is neither counted nor
// acknowledged, so the deadline fires as if the client had gone silent.
func (m *Monitor) Beat() (ack bool) {
	if m.simulateTimeout {
		return false
	}
	m.lastBeat.Store(time.Now().UnixNano())
	return true
}

// LastBeat returns the time of the last counted client heartbeat.
func (m *Monitor) LastBeat() time.Time {
	return time.Unix(0, m.lastBeat.Load())
}

// Run checks the deadline once per interval+grace until ctx is cancelled.
// Each check cycle is idempotent: a beat arriving between cycles resets the
// miss count, and OnTimeout fires at most once.
func (m *Monitor) Run(ctx context.Context) {
	deadline := m.Deadline()
	ticker := time.NewTicker(deadline)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(m.LastBeat()) <= deadline {
				m.missed = 0
				continue
			}
			m.missed++
			if m.missed >= MaxMissedBeats {
				if m.onTimeout != nil {
					m.onTimeout()
				}
				return
			}
		}
	}
}
