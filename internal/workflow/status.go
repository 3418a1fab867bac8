package workflow

import (
	"sync"
	"time"
)

const DefaultMessageTTL = 2 * time.Second

type Timer interface {
	Stop() bool
}

// Clock schedules the auto-clear of status messages.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

var RealClock Clock = realClock{}

type MessageKind string

const (
	Success MessageKind = "success"
	Failure MessageKind = "failure"
)

type Message struct {
	Kind MessageKind
	Text string
}

// Status shows one transient message at a time. A new message replaces
// the current one and restarts the clear timer; only one timer is live.
type Status struct {
	clock Clock
	ttl   time.Duration

	mu      sync.Mutex
	current *Message
	timer   Timer
	gen     uint64
	closed  bool
}

func NewStatus(ttl time.Duration, clock Clock) *Status {
	if ttl <= 0 {
		ttl = DefaultMessageTTL
	}
	if clock == nil {
		clock = RealClock
	}
	return &Status{clock: clock, ttl: ttl}
}

func (s *Status) Show(kind MessageKind, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.current = &Message{Kind: kind, Text: text}
	s.timer = s.clock.AfterFunc(s.ttl, func() { s.expire(gen) })
}

func (s *Status) expire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// a timer that fired while being replaced must not clear the newer message
	if gen != s.gen {
		return
	}
	s.current = nil
	s.timer = nil
}

func (s *Status) Current() (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Message{}, false
	}
	return *s.current, true
}

// Clear drops the message immediately, like the close button.
func (s *Status) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Close cancels the pending timer when the owning view goes away.
func (s *Status) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

func (s *Status) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	s.current = nil
	s.timer = nil
}
