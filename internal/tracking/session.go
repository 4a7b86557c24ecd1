package tracking

import (
	"log"
	"sync"
)

// SessionState is the hand-gesture session state.
type SessionState int

const (
	NotInSession SessionState = iota
	SessionDetected
	InSession
)

func (s SessionState) String() string {
	switch s {
	case SessionDetected:
		return "detected"
	case InSession:
		return "in-session"
	default:
		return "not-in-session"
	}
}

// Session follows session focus, start and end notifications.
type Session struct {
	NopObserver

	mu       sync.Mutex
	state    SessionState
	focus    string
	progress float64
}

// NewSession creates a Session in the NotInSession state.
func NewSession() *Session {
	return &Session{}
}

// State returns the current state with the focus gesture and its progress
// while a session is being detected.
func (s *Session) State() (SessionState, string, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.focus, s.progress
}

func (s *Session) SessionFocus(focus string, progress float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == InSession {
		return
	}
	log.Printf("Session detected: %s, %.2f", focus, progress)
	s.state = SessionDetected
	s.focus = focus
	s.progress = progress
}

func (s *Session) SessionStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Println("Session started")
	s.state = InSession
	s.progress = 1
}

func (s *Session) SessionEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	log.Println("Session ended")
	s.state = NotInSession
	s.focus = ""
	s.progress = 0
}
