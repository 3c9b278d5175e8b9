package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewaymock/gatewaymock/pkg/protocol"
)

func TestCreateAndLookup(t *testing.T) {
	st := NewStore(time.Minute)

	shard := [2]int{0, 2}
	s := st.Create(protocol.IdentifyData{Intents: 513, Shard: &shard, Compress: true})
	require.Len(t, s.ID, 32)
	assert.True(t, s.Valid())
	assert.Equal(t, int64(0), s.Seq())

	got, err := st.Lookup(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, protocol.Intents(513), got.Intents)
}

func TestLookupUnknown(t *testing.T) {
	st := NewStore(time.Minute)

	_, err := st.Lookup("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSequenceIsMonotonic(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})

	assert.Equal(t, int64(1), s.NextSeq())
	assert.Equal(t, int64(2), s.NextSeq())
	assert.Equal(t, int64(3), s.NextSeq())
	assert.Equal(t, int64(3), s.Seq())
}

func TestInvalidateRetains(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})

	st.Invalidate(s.ID, false)

	_, err := st.Lookup(s.ID)
	assert.ErrorIs(t, err, ErrInvalidated)
	assert.Equal(t, 1, st.Len(), "retained until TTL sweep")
}

func TestInvalidatePurges(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})

	st.Invalidate(s.ID, true)

	_, err := st.Lookup(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, st.Len())
}

func TestLookupSweepsExpired(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})

	// Advance the store clock past the TTL.
	st.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err := st.Lookup(s.ID)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, st.Len(), "expired session purged by lazy sweep")
}

func TestInvalidatedSessionSweptAfterTTL(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})
	st.Invalidate(s.ID, false)

	st.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	_, err := st.Lookup(s.ID)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, 0, st.Len())
}

func TestTouchExtendsTTL(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})

	st.now = func() time.Time { return time.Now().Add(45 * time.Second) }
	st.Touch(s.ID)

	st.now = func() time.Time { return time.Now().Add(90 * time.Second) }
	_, err := st.Lookup(s.ID)
	assert.NoError(t, err, "activity at t+45s keeps the session alive at t+90s")
}

func TestCloseDropsEverything(t *testing.T) {
	st := NewStore(time.Minute)
	st.Create(protocol.IdentifyData{})
	st.Create(protocol.IdentifyData{})
	require.Equal(t, 2, st.Len())

	st.Close()
	assert.Equal(t, 0, st.Len())

	// The store stays usable after Close.
	s := st.Create(protocol.IdentifyData{})
	_, err := st.Lookup(s.ID)
	assert.NoError(t, err)
}

func TestConcurrentCreatesProduceDistinctIDs(t *testing.T) {
	st := NewStore(time.Minute)

	const goroutines = 16
	const perGoroutine = 50

	var mu sync.Mutex
	ids := make(map[string]bool, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				s := st.Create(protocol.IdentifyData{})
				mu.Lock()
				assert.False(t, ids[s.ID], "duplicate session id %s", s.ID)
				ids[s.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, st.Len())
}

func TestInvalidateThenLookupIsLinearizable(t *testing.T) {
	st := NewStore(time.Minute)
	s := st.Create(protocol.IdentifyData{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		st.Invalidate(s.ID, true)
	}()
	wg.Wait()

	// Lookup starts strictly after the invalidate completed.
	_, err := st.Lookup(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
