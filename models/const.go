package models

import "fmt"

// Type is the one-byte tag that opens every binary message.
type Type uint8

const (
	ConfirmType Type = 0x00
	ReplyType   Type = 0x01
	AuthType    Type = 0x02
	JoinType    Type = 0x03
	MsgType     Type = 0x04
	ErrType     Type = 0xFE
	ByeType     Type = 0xFF
)

// text keywords
const (
	AUTH  = "AUTH"
	JOIN  = "JOIN"
	MSG   = "MSG"
	ERR   = "ERR"
	REPLY = "REPLY"
	BYE   = "BYE"
)

const (
	MaxUsernameLength    = 20
	MaxChannelIDLength   = 20
	MaxSecretLength      = 128
	MaxDisplayNameLength = 20
	MaxContentsLength    = 1400
)

// LineTerminator ends every message in the text encoding.
const LineTerminator = "\r\n"

func (t Type) String() string {
	switch t {
	case ConfirmType:
		return "CONFIRM"
	case ReplyType:
		return REPLY
	case AuthType:
		return AUTH
	case JoinType:
		return JOIN
	case MsgType:
		return MSG
	case ErrType:
		return ERR
	case ByeType:
		return BYE
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", uint8(t))
}
