package heartbeat

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBeatIsAcked(t *testing.T) {
	m := New(Config{Interval: time.Second})
	assert.True(t, m.Beat())
}

func TestSimulateTimeoutSuppressesAcks(t *testing.T) {
	m := New(Config{Interval: time.Second, SimulateTimeout: true})

	before := m.LastBeat()
	assert.False(t, m.Beat())
	assert.Equal(t, before, m.LastBeat(), "suppressed beat must not reset the deadline")
}

func TestTimeoutFiresWhenClientGoesSilent(t *testing.T) {
	var fired atomic.Bool
	m := New(Config{
		Interval:  40 * time.Millisecond,
		OnTimeout: func() { fired.Store(true) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not terminate")
	}
	assert.True(t, fired.Load())
}

func TestRegularBeatsKeepConnectionAlive(t *testing.T) {
	var fired atomic.Bool
	m := New(Config{
		Interval:  50 * time.Millisecond,
		OnTimeout: func() { fired.Store(true) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)

	// Beat well within every deadline for several cycles.
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(300 * time.Millisecond)
loop:
	for {
		select {
		case <-ticker.C:
			m.Beat()
		case <-deadline:
			break loop
		}
	}
	cancel()

	assert.False(t, fired.Load(), "monitor timed out despite regular beats")
}

func TestTimeoutScenarioFiresDespiteBeats(t *testing.T) {
	fired := make(chan struct{})
	m := New(Config{
		Interval:        40 * time.Millisecond,
		SimulateTimeout: true,
		OnTimeout:       func() { close(fired) },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	// A well-behaved client heartbeating constantly.
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Beat()
			}
		}
	}()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout scenario did not fire")
	}
}

func TestCancelStopsMonitor(t *testing.T) {
	m := New(Config{Interval: time.Hour, OnTimeout: func() { t.Error("unexpected timeout") }})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop on cancel")
	}
}

func TestDeadlineIncludesGrace(t *testing.T) {
	m := New(Config{Interval: 40 * time.Second})
	require.Equal(t, 50*time.Second, m.Deadline())
}
