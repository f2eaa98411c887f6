package session

import (
	"fmt"

	"github.com/Ayvan/ipk24chat-client/models"
	"github.com/pkg/errors"
)

// ProtocolViolation is an inbound message kind that is illegal in the current state.
type ProtocolViolation struct {
	Type  models.Type
	State State
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("unexpected %s message in state %s", e.Type, e.State)
}

// Local input errors. The input is dropped and the session is left untouched.
var (
	ErrEmptyInput     = errors.New("input cannot be empty")
	ErrAwaitingReply  = errors.New("cannot process messages or commands while authenticating")
	ErrCannotAuth     = errors.New("cannot authenticate at this moment")
	ErrCannotJoin     = errors.New("cannot join a channel when not connected to the server")
	ErrNotOpen        = errors.New("cannot send a message when not connected to the server")
	ErrClosing        = errors.New("the connection is closing")
	ErrUnknownCommand = errors.New("unknown command, use /help to list supported commands")
)

// UsageError is returned for a known command with bad arguments.
type UsageError struct {
	Usage string
	Err   error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (usage: %s)", e.Err, e.Usage)
	}
	return "usage: " + e.Usage
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// TransportError is a socket or connection failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
