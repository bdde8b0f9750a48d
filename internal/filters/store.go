package filters

import (
	"log/slog"
	"sync"
	"time"
)

// State is one session's filter selections plus its recently-viewed ring.
type State struct {
	Selections     map[string][]string `json:"selections"`
	RecentlyViewed []string            `json:"recently_viewed"`
}

func newState() *State {
	return &State{Selections: make(map[string][]string)}
}

// Clone returns a deep copy safe to hand to callers.
func (s *State) Clone() State {
	out := State{
		Selections:     make(map[string][]string, len(s.Selections)),
		RecentlyViewed: append([]string(nil), s.RecentlyViewed...),
	}
	for group, values := range s.Selections {
		out.Selections[group] = append([]string(nil), values...)
	}
	return out
}

// Persister writes a session's filter state to durable storage.
type Persister interface {
	SaveFilterState(sessionID string, state State) error
}

const maxRecentlyViewed = 10

// Store keeps per-session filter state in memory and writes it back through
// an injected persister on a debounce timer, so a burst of toggles costs one
// write. There is no package-level instance: callers thread the store
// through explicitly.
type Store struct {
	mu        sync.Mutex
	sessions  map[string]*State
	pending   map[string]*time.Timer
	persister Persister
	debounce  time.Duration
}

// NewStore creates a filter store. persister may be nil (state is then
// memory-only, e.g. in tests).
func NewStore(persister Persister, debounce time.Duration) *Store {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Store{
		sessions:  make(map[string]*State),
		pending:   make(map[string]*time.Timer),
		persister: persister,
		debounce:  debounce,
	}
}

// Seed installs previously persisted state for a session, replacing any
// in-memory state. Used when a session is restored from storage.
func (s *Store) Seed(sessionID string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	restored := newState()
	for group, values := range state.Selections {
		restored.Selections[group] = append([]string(nil), values...)
	}
	restored.RecentlyViewed = append([]string(nil), state.RecentlyViewed...)
	s.sessions[sessionID] = restored
}

// Get returns a copy of a session's current state.
func (s *Store) Get(sessionID string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(sessionID).Clone()
}

// Toggle flips one value in a selection group: absent values accumulate,
// present values are removed. Returns the resulting state.
func (s *Store) Toggle(sessionID, group, value string) State {
	s.mu.Lock()
	state := s.stateLocked(sessionID)

	values := state.Selections[group]
	removed := false
	for i, v := range values {
		if v == value {
			state.Selections[group] = append(values[:i], values[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		state.Selections[group] = append(values, value)
	}

	out := state.Clone()
	s.schedulePersistLocked(sessionID)
	s.mu.Unlock()
	return out
}

// Clear drops every selection for a session, keeping the recently-viewed
// ring intact.
func (s *Store) Clear(sessionID string) State {
	s.mu.Lock()
	state := s.stateLocked(sessionID)
	state.Selections = make(map[string][]string)

	out := state.Clone()
	s.schedulePersistLocked(sessionID)
	s.mu.Unlock()
	return out
}

// MarkViewed pushes a politician onto the front of the recently-viewed
// ring, deduplicating and capping its length.
func (s *Store) MarkViewed(sessionID, politician string) State {
	s.mu.Lock()
	state := s.stateLocked(sessionID)

	ring := make([]string, 0, maxRecentlyViewed)
	ring = append(ring, politician)
	for _, p := range state.RecentlyViewed {
		if p == politician {
			continue
		}
		ring = append(ring, p)
		if len(ring) == maxRecentlyViewed {
			break
		}
	}
	state.RecentlyViewed = ring

	out := state.Clone()
	s.schedulePersistLocked(sessionID)
	s.mu.Unlock()
	return out
}

// Flush forces any pending write-back for a session. Used on shutdown.
func (s *Store) Flush(sessionID string) {
	s.mu.Lock()
	if timer, ok := s.pending[sessionID]; ok {
		timer.Stop()
		delete(s.pending, sessionID)
	}
	state := s.stateLocked(sessionID).Clone()
	s.mu.Unlock()

	s.persist(sessionID, state)
}

// FlushAll forces pending write-backs for every session. Used on shutdown.
func (s *Store) FlushAll() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.Flush(id)
	}
}

func (s *Store) stateLocked(sessionID string) *State {
	state, ok := s.sessions[sessionID]
	if !ok {
		state = newState()
		s.sessions[sessionID] = state
	}
	return state
}

func (s *Store) schedulePersistLocked(sessionID string) {
	if s.persister == nil {
		return
	}
	if timer, ok := s.pending[sessionID]; ok {
		timer.Stop()
	}
	s.pending[sessionID] = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		delete(s.pending, sessionID)
		state := s.stateLocked(sessionID).Clone()
		s.mu.Unlock()

		s.persist(sessionID, state)
	})
}

func (s *Store) persist(sessionID string, state State) {
	if s.persister == nil {
		return
	}
	if err := s.persister.SaveFilterState(sessionID, state); err != nil {
		slog.Warn("Failed to persist filter state", "session_id", sessionID, "error", err)
	}
}
