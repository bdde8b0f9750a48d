package filters

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu    sync.Mutex
	calls []State
}

func (p *recordingPersister) SaveFilterState(sessionID string, state State) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, state)
	return nil
}

func (p *recordingPersister) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func TestToggleAccumulatesAndRemoves(t *testing.T) {
	store := NewStore(nil, time.Second)

	state := store.Toggle("s1", "parties", "APC")
	assert.Equal(t, []string{"APC"}, state.Selections["parties"])

	state = store.Toggle("s1", "parties", "PDP")
	assert.Equal(t, []string{"APC", "PDP"}, state.Selections["parties"])

	// Toggling an existing value removes it.
	state = store.Toggle("s1", "parties", "APC")
	assert.Equal(t, []string{"PDP"}, state.Selections["parties"])

	// Groups are independent.
	state = store.Toggle("s1", "states", "Lagos")
	assert.Equal(t, []string{"PDP"}, state.Selections["parties"])
	assert.Equal(t, []string{"Lagos"}, state.Selections["states"])
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewStore(nil, time.Second)

	store.Toggle("s1", "parties", "APC")
	store.Toggle("s2", "parties", "LP")

	assert.Equal(t, []string{"APC"}, store.Get("s1").Selections["parties"])
	assert.Equal(t, []string{"LP"}, store.Get("s2").Selections["parties"])
}

func TestClearKeepsRecentlyViewed(t *testing.T) {
	store := NewStore(nil, time.Second)

	store.Toggle("s1", "parties", "APC")
	store.MarkViewed("s1", "Peter Obi")

	state := store.Clear("s1")
	assert.Empty(t, state.Selections)
	assert.Equal(t, []string{"Peter Obi"}, state.RecentlyViewed)
}

func TestMarkViewedRing(t *testing.T) {
	store := NewStore(nil, time.Second)

	for i := 0; i < 15; i++ {
		store.MarkViewed("s1", fmt.Sprintf("politician-%d", i))
	}

	state := store.Get("s1")
	require.Len(t, state.RecentlyViewed, maxRecentlyViewed)
	assert.Equal(t, "politician-14", state.RecentlyViewed[0])

	// Re-viewing moves to the front without duplicating.
	state = store.MarkViewed("s1", "politician-10")
	assert.Equal(t, "politician-10", state.RecentlyViewed[0])
	count := 0
	for _, p := range state.RecentlyViewed {
		if p == "politician-10" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestDebouncedPersist(t *testing.T) {
	persister := &recordingPersister{}
	store := NewStore(persister, 30*time.Millisecond)

	// A burst of toggles should collapse into one write.
	store.Toggle("s1", "parties", "APC")
	store.Toggle("s1", "parties", "PDP")
	store.Toggle("s1", "states", "Lagos")

	assert.Equal(t, 0, persister.count(), "no write before the debounce window")

	assert.Eventually(t, func() bool {
		return persister.count() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestFlushWritesImmediately(t *testing.T) {
	persister := &recordingPersister{}
	store := NewStore(persister, time.Hour)

	store.Toggle("s1", "parties", "APC")
	store.Flush("s1")

	require.Equal(t, 1, persister.count())
	assert.Equal(t, []string{"APC"}, persister.calls[0].Selections["parties"])
}

func TestSeedRestoresState(t *testing.T) {
	store := NewStore(nil, time.Second)

	store.Seed("s1", State{
		Selections:     map[string][]string{"parties": {"LP"}},
		RecentlyViewed: []string{"Peter Obi"},
	})

	state := store.Get("s1")
	assert.Equal(t, []string{"LP"}, state.Selections["parties"])
	assert.Equal(t, []string{"Peter Obi"}, state.RecentlyViewed)
}

func TestCloneDoesNotAlias(t *testing.T) {
	store := NewStore(nil, time.Second)
	store.Toggle("s1", "parties", "APC")

	state := store.Get("s1")
	state.Selections["parties"][0] = "mutated"

	assert.Equal(t, []string{"APC"}, store.Get("s1").Selections["parties"])
}
