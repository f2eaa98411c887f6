package session

import (
	"sync"

	"github.com/Ayvan/ipk24chat-client/models"
)

type State int

const (
	Default State = iota
	Authenticating
	Joining
	Open
)

func (s State) String() string {
	switch s {
	case Default:
		return "Default"
	case Authenticating:
		return "Authenticating"
	case Joining:
		return "Joining"
	case Open:
		return "Open"
	}
	return "Unknown"
}

// Transition records a state change caused by an inbound message.
type Transition struct {
	From State
	To   State
}

// Authenticated reports whether the transition completed a successful /auth.
func (t Transition) Authenticated() bool {
	return t.From == Authenticating && t.To == Open
}

// Session is the single conversation with the server. It is shared by the
// receive goroutine and the input path, every field is guarded by mu.
type Session struct {
	mu          sync.Mutex
	state       State
	displayName string
	closing     bool
}

func New() *Session {
	return &Session{state: Default}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

func (s *Session) Closing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// beginClosing marks the session as terminating and returns the state it was
// in and the display name to sign a final Err with. It reports false if the
// session was already closing.
func (s *Session) beginClosing() (State, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return s.state, s.displayName, false
	}
	s.closing = true
	return s.state, s.displayName, true
}

func (s *Session) acceptReply(result bool) (Transition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.state
	switch s.state {
	case Authenticating:
		if result {
			s.state = Open
		} else {
			s.state = Default
		}
	case Joining:
		// Both outcomes of a join return to Default.
		s.state = Default
	default:
		return Transition{From: from, To: from}, &ProtocolViolation{Type: models.ReplyType, State: from}
	}

	return Transition{From: from, To: s.state}, nil
}

// acceptMsg checks that a chat message may arrive now. The client is waiting
// for a Reply while Authenticating and nothing else is legal then.
func (s *Session) acceptMsg() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Authenticating {
		return &ProtocolViolation{Type: models.MsgType, State: s.state}
	}
	return nil
}
