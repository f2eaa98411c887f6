package session

import (
	"strings"
	"sync"
	"unicode"

	"github.com/Ayvan/ipk24chat-client/models"
	"github.com/sirupsen/logrus"
)

// Transport is implemented by the stream and datagram drivers.
type Transport interface {
	// Send transmits m without waiting for it to be delivered.
	Send(m models.Message) error
	// Deliver transmits m and returns once it is delivered or given up on.
	Deliver(m models.Message) error
}

// Engine runs the session state machine on top of a Transport: it turns user
// input into outbound messages, reacts to inbound ones and drives the
// termination sequences.
type Engine struct {
	session   *Session
	out       *Printer
	transport Transport

	// answer a peer Bye with our own
	byeOnBye bool

	finishOnce sync.Once
	done       chan struct{}
	exitCode   int
}

type Option func(e *Engine)

// ReplyToBye makes the engine answer an inbound Bye with a Bye before exiting.
func ReplyToBye() Option {
	return func(e *Engine) {
		e.byeOnBye = true
	}
}

func NewEngine(transport Transport, out *Printer, opts ...Option) *Engine {
	e := &Engine{
		session:   New(),
		out:       out,
		transport: transport,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Session() *Session {
	return e.session
}

func (e *Engine) Printer() *Printer {
	return e.out
}

// Done is closed once the session has terminated and its final messages
// have been handed to the transport.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// ExitCode is valid after Done is closed.
func (e *Engine) ExitCode() int {
	<-e.done
	return e.exitCode
}

// Input handles one line typed by the user.
func (e *Engine) Input(line string) {
	out, err := e.session.HandleInput(line)
	if err != nil {
		e.out.Error(err)
		return
	}

	if out.Print != "" {
		e.out.Info(out.Print)
	}

	if out.Message == nil {
		return
	}

	if err := e.transport.Send(out.Message); err != nil {
		e.Fail(err)
	}
}

// Receive applies one well-formed inbound message.
func (e *Engine) Receive(m models.Message) Transition {
	state := e.session.State()
	none := Transition{From: state, To: state}

	if e.session.Closing() {
		logrus.Debugf("Session closing, ignoring inbound %s", m.Type())
		return none
	}

	switch m := m.(type) {
	case *models.Bye:
		logrus.Info("Server closed the session")
		if e.byeOnBye {
			e.finish(0, &models.Bye{})
		} else {
			e.finish(0)
		}
	case *models.Err:
		e.out.PeerError(m.DisplayName, m.Contents)
		e.finish(0, &models.Bye{})
	case *models.Msg:
		if err := e.session.acceptMsg(); err != nil {
			e.Violation(err)
			return none
		}
		e.out.Chat(m.DisplayName, m.Contents)
	case *models.Reply:
		tr, err := e.session.acceptReply(m.Result)
		if err != nil {
			e.Violation(err)
			return none
		}
		e.out.Reply(m.Result, m.Contents)
		logrus.Infof("State %s -> %s", tr.From, tr.To)
		return tr
	default:
		e.Violation(&ProtocolViolation{Type: m.Type(), State: state})
	}

	return none
}

// Violation runs the invalid-message termination sequence: Bye alone from
// Default, otherwise Err followed by Bye, and exit code 1.
func (e *Engine) Violation(cause error) {
	state, displayName, first := e.session.beginClosing()
	if !first {
		return
	}

	logrus.Warnf("Protocol violation in state %s: %s", state, cause)
	e.out.Error(cause)

	if state == Default || models.ValidateDisplayName(displayName) != nil {
		e.finish(1, &models.Bye{})
		return
	}

	e.finish(1, &models.Err{DisplayName: displayName, Contents: diagnostic(cause)}, &models.Bye{})
}

// Leave ends the session from the local side with a Bye.
func (e *Engine) Leave() {
	e.finish(0, &models.Bye{})
}

// Fail ends the session without a goodbye after an unrecoverable transport
// error or an undelivered message.
func (e *Engine) Fail(err error) {
	if e.session.Closing() {
		logrus.Debugf("Ignoring failure while closing: %s", err)
		return
	}
	e.out.Error(err)
	e.finish(1)
}

// finish delivers the final messages and closes Done. It runs at most once
// and never blocks the caller, which may be the receive loop that the
// transport needs for acknowledgments.
func (e *Engine) finish(code int, final ...models.Message) {
	e.session.beginClosing()

	e.finishOnce.Do(func() {
		go func() {
			defer close(e.done)
			for _, m := range final {
				if err := e.transport.Deliver(m); err != nil {
					logrus.Warnf("Failed to deliver final %s: %s", m.Type(), err)
					break
				}
			}
			e.exitCode = code
		}()
	})
}

// diagnostic turns an error into valid Err contents.
func diagnostic(err error) string {
	text := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, models.Sanitize(err.Error()))

	if len(text) > models.MaxContentsLength {
		text = text[:models.MaxContentsLength]
	}
	if strings.TrimSpace(text) == "" {
		text = "invalid message"
	}
	return text
}
