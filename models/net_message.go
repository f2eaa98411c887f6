package models

import (
	"bytes"
	"strings"
)

// Message is one of Confirm, Reply, Auth, Join, Msg, Err or Bye.
// The set is closed, type-switch on the concrete pointer types.
type Message interface {
	Type() Type
	// ID is the sender-assigned message id. The id slot of a Confirm
	// carries the referenced id.
	ID() uint16
	SetID(id uint16)
	Validate() error
	MarshalText() ([]byte, error)
	UnmarshalText(text []byte) error
	MarshalBinary() ([]byte, error)
	UnmarshalBinary(data []byte) error

	isMessage()
}

// New returns an empty message of type t.
func New(t Type) (Message, error) {
	switch t {
	case ConfirmType:
		return &Confirm{}, nil
	case ReplyType:
		return &Reply{}, nil
	case AuthType:
		return &Auth{}, nil
	case JoinType:
		return &Join{}, nil
	case MsgType:
		return &Msg{}, nil
	case ErrType:
		return &Err{}, nil
	case ByeType:
		return &Bye{}, nil
	}
	return nil, formatErrorf(t, "unknown message type")
}

// DecodeBinary decodes one datagram, dispatching on its leading tag.
func DecodeBinary(data []byte) (Message, error) {
	if len(data) == 0 {
		return nil, &FormatError{Reason: "empty datagram"}
	}

	m, err := New(Type(data[0]))
	if err != nil {
		return nil, err
	}

	if err := m.UnmarshalBinary(data); err != nil {
		return nil, err
	}

	return m, nil
}

// PeekHeader reads the tag and id of a datagram without decoding its payload.
func PeekHeader(data []byte) (t Type, id uint16, ok bool) {
	if len(data) < headerLength {
		return 0, 0, false
	}
	return Type(data[0]), uint16(data[1]) | uint16(data[2])<<8, true
}

// DecodeText decodes one line, with or without its terminator, dispatching on
// the leading keyword.
func DecodeText(line []byte) (Message, error) {
	line = trimTerminator(line)

	keyword := line
	if i := bytes.IndexByte(line, ' '); i >= 0 {
		keyword = line[:i]
	}

	var m Message
	switch strings.ToUpper(string(keyword)) {
	case AUTH:
		m = &Auth{}
	case JOIN:
		m = &Join{}
	case MSG:
		m = &Msg{}
	case ERR:
		m = &Err{}
	case REPLY:
		m = &Reply{}
	case BYE:
		m = &Bye{}
	default:
		return nil, &FormatError{Reason: "unknown keyword " + quoteKeyword(keyword)}
	}

	if err := m.UnmarshalText(line); err != nil {
		return nil, err
	}

	return m, nil
}

// EncodeLine returns the text encoding of m followed by the line terminator.
func EncodeLine(m Message) ([]byte, error) {
	text, err := m.MarshalText()
	if err != nil {
		return nil, err
	}
	return append(text, LineTerminator...), nil
}

func trimTerminator(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))
	return bytes.TrimSuffix(line, []byte("\r"))
}

func quoteKeyword(keyword []byte) string {
	if len(keyword) > 16 {
		keyword = keyword[:16]
	}
	return "\"" + Sanitize(string(keyword)) + "\""
}
