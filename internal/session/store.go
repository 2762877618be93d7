// Package session holds the one session handle the whole client shares. The
// session is acquired once at startup, threaded through the view tree, and
// invalidated on sign-out; no view re-queries the auth provider on its own.
package session

import (
	"sync"

	"github.com/campuslib/stacks/internal/api"
)

// State is the gate state protected views are rendered against.
type State int

const (
	// StatePending means the startup session lookup is still in flight.
	StatePending State = iota
	// StateUnauthenticated means no session exists; protected views redirect
	// to login.
	StateUnauthenticated
	// StateAuthenticated means a session is held and protected views render.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Store coordinates access to the current session.
type Store struct {
	mu      sync.RWMutex
	state   State
	current *api.Session
}

// NewStore returns a store in the pending state.
func NewStore() *Store {
	return &Store{state: StatePending}
}

// Resolve records the outcome of a session lookup or a sign-in. A nil
// session resolves to unauthenticated.
func (s *Store) Resolve(sess *api.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		s.state = StateUnauthenticated
		s.current = nil
		return
	}
	copied := *sess
	s.state = StateAuthenticated
	s.current = &copied
}

// Invalidate drops the session. Called after the server-side sign-out has
// completed, never before.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
	s.current = nil
}

// State returns the current gate state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Current returns a copy of the held session, nil when unauthenticated or
// pending.
func (s *Store) Current() *api.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	copied := *s.current
	return &copied
}

// User returns the signed-in account when one is held.
func (s *Store) User() (api.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return api.User{}, false
	}
	return s.current.User, true
}
