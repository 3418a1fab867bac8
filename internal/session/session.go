// Package session derives the single authoritative login flag from the
// credential store. The Monitor is the only writer of a Session; route
// guards and views only read it.
package session

import (
	"sync"

	"github.com/ljosc/discuss/internal/domain"
)

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Session is the owned login state passed explicitly to its readers.
type Session struct {
	mu          sync.RWMutex
	state       State
	profile     *domain.Profile
	subscribers map[chan State]struct{}
}

func newSession() *Session {
	return &Session{subscribers: make(map[chan State]struct{})}
}

func (s *Session) IsLoggedIn() bool {
	return s.State() == LoggedIn
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Profile returns the user captured at login, nil when unknown.
func (s *Session) Profile() *domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// Subscribe returns a channel that receives the new state after every
// transition. Slow readers only see the latest state.
func (s *Session) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, ch)
			s.mu.Unlock()
		})
	}
}

// set reports whether the state changed.
func (s *Session) set(state State, profile *domain.Profile) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == LoggedOut {
		profile = nil
	}
	if profile != nil || state == LoggedOut {
		s.profile = profile
	}
	if s.state == state {
		return false
	}
	s.state = state
	for ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- state
	}
	return true
}
