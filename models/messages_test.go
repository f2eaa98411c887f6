package models

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalText(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"auth", &Auth{Username: "alice", DisplayName: "Alice", Secret: "secret123"}, "AUTH alice AS Alice USING secret123"},
		{"join", &Join{ChannelID: "general", DisplayName: "Alice"}, "JOIN general AS Alice"},
		{"msg", &Msg{DisplayName: "Alice", Contents: "hello"}, "MSG FROM Alice IS hello"},
		{"err", &Err{DisplayName: "Bob", Contents: "bad input"}, "ERR FROM Bob IS bad input"},
		{"reply ok", &Reply{Result: true, Contents: "welcome"}, "REPLY OK IS welcome"},
		{"reply nok", &Reply{Result: false, Contents: "denied"}, "REPLY NOK IS denied"},
		{"bye", &Bye{}, "BYE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.msg.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(text))
		})
	}
}

func TestEncodeLineAppendsTerminator(t *testing.T) {
	line, err := EncodeLine(&Msg{DisplayName: "Alice", Contents: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "MSG FROM Alice IS hello\r\n", string(line))
}

func TestConfirmHasNoTextForm(t *testing.T) {
	_, err := (&Confirm{RefMessageID: 1}).MarshalText()
	assert.True(t, errors.Is(err, ErrNoTextForm))

	err = (&Confirm{}).UnmarshalText([]byte("CONFIRM 1"))
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))
}

func TestDecodeText(t *testing.T) {
	tests := []struct {
		line string
		want Message
	}{
		{"REPLY OK IS welcome\r\n", &Reply{Result: true, Contents: "welcome"}},
		{"reply nok is try again\r", &Reply{Result: false, Contents: "try again"}},
		{"MSG FROM Bob IS hi there", &Msg{DisplayName: "Bob", Contents: "hi there"}},
		{"msg from Bob is IS is fine", &Msg{DisplayName: "Bob", Contents: "IS is fine"}},
		{"ERR FROM Server IS bad input\r\n", &Err{DisplayName: "Server", Contents: "bad input"}},
		{"Bye\r\n", &Bye{}},
		{"JOIN general AS Alice", &Join{ChannelID: "general", DisplayName: "Alice"}},
		{"auth alice as Alice using s3cr-et", &Auth{Username: "alice", DisplayName: "Alice", Secret: "s3cr-et"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m, err := DecodeText([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}
}

func TestDecodeTextErrors(t *testing.T) {
	lines := []string{
		"FOO BAR\r\n",
		"",
		"MSG FROM Bob\r\n",
		"MSG TO Bob IS hi",
		"REPLY MAYBE IS hi",
		"REPLY OK IS ",
		"BYE now",
		"JOIN gen!eral AS Alice",
		"AUTH alice AS Alice USING " + strings.Repeat("s", MaxSecretLength+1),
		"MSG FROM " + strings.Repeat("a", MaxDisplayNameLength+1) + " IS hi",
		"MSG FROM Bob IS " + strings.Repeat("x", MaxContentsLength+1),
		"MSG FROM Bob IS tab\there",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			m, err := DecodeText([]byte(line))
			assert.Nil(t, m)
			var fe *FormatError
			assert.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
		})
	}
}

func TestDecodeTextFieldErrorCarriesValidationError(t *testing.T) {
	_, err := DecodeText([]byte("JOIN gen!eral AS Alice"))
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "channel id", ve.Field)
}

func TestMarshalBinary(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want []byte
	}{
		{"confirm", &Confirm{RefMessageID: 0x0102}, []byte{0x00, 0x02, 0x01}},
		{"bye", &Bye{MessageID: 7}, []byte{0xFF, 0x07, 0x00}},
		{
			"reply",
			&Reply{MessageID: 1, Result: true, RefMessageID: 0x0203, Contents: "ok"},
			[]byte{0x01, 0x01, 0x00, 0x01, 0x03, 0x02, 'o', 'k', 0x00},
		},
		{
			"auth",
			&Auth{MessageID: 1, Username: "a", DisplayName: "A", Secret: "s"},
			[]byte{0x02, 0x01, 0x00, 'a', 0x00, 'A', 0x00, 's', 0x00},
		},
		{
			"join",
			&Join{MessageID: 0x0100, ChannelID: "c", DisplayName: "A"},
			[]byte{0x03, 0x00, 0x01, 'c', 0x00, 'A', 0x00},
		},
		{
			"msg",
			&Msg{MessageID: 2, DisplayName: "Alice", Contents: "hello"},
			[]byte{0x04, 0x02, 0x00, 'A', 'l', 'i', 'c', 'e', 0x00, 'h', 'e', 'l', 'l', 'o', 0x00},
		},
		{
			"err",
			&Err{MessageID: 3, DisplayName: "B", Contents: "x"},
			[]byte{0xFE, 0x03, 0x00, 'B', 0x00, 'x', 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.msg.MarshalBinary()
			require.NoError(t, err)
			assert.Equal(t, tt.want, data)

			decoded, err := DecodeBinary(data)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, decoded)
		})
	}
}

func TestUnmarshalBinaryErrors(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		data []byte
	}{
		{"confirm too short", &Confirm{}, []byte{0x00, 0x01}},
		{"bye wrong tag", &Bye{}, []byte{0x04, 0x01, 0x00}},
		{"bye trailing bytes", &Bye{}, []byte{0xFF, 0x01, 0x00, 0x00}},
		{"msg missing NUL", &Msg{}, []byte{0x04, 0x01, 0x00, 'A', 0x00, 'h', 'i'}},
		{"msg too short", &Msg{}, []byte{0x04, 0x01, 0x00, 0x00}},
		{"err wrong tag", &Err{}, []byte{0x04, 0x01, 0x00, 'A', 0x00, 'h', 0x00}},
		{"reply bad result", &Reply{}, []byte{0x01, 0x01, 0x00, 0x02, 0x01, 0x00, 'o', 0x00}},
		{"reply missing NUL", &Reply{}, []byte{0x01, 0x01, 0x00, 0x01, 0x01, 0x00, 'o', 'k'}},
		{"reply empty contents", &Reply{}, []byte{0x01, 0x01, 0x00, 0x01, 0x01, 0x00, 0x00}},
		{"auth missing secret", &Auth{}, []byte{0x02, 0x01, 0x00, 'a', 0x00, 'A', 0x00, 0x00}},
		{"auth bad username", &Auth{}, []byte{0x02, 0x01, 0x00, 'a', '!', 0x00, 'A', 0x00, 's', 0x00}},
		{"join missing display name NUL", &Join{}, []byte{0x03, 0x01, 0x00, 'c', 0x00, 'A'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.UnmarshalBinary(tt.data)
			var fe *FormatError
			assert.True(t, errors.As(err, &fe), "expected FormatError, got %v", err)
		})
	}
}

func TestDecodeBinaryUnknownTag(t *testing.T) {
	_, err := DecodeBinary([]byte{0x05, 0x01, 0x00})
	var fe *FormatError
	assert.True(t, errors.As(err, &fe))

	_, err = DecodeBinary(nil)
	assert.True(t, errors.As(err, &fe))
}

func TestPeekHeader(t *testing.T) {
	typ, id, ok := PeekHeader([]byte{0x04, 0x34, 0x12, 0xAA})
	require.True(t, ok)
	assert.Equal(t, MsgType, typ)
	assert.Equal(t, uint16(0x1234), id)

	_, _, ok = PeekHeader([]byte{0x04, 0x34})
	assert.False(t, ok)
}

func TestInvalidFieldsProduceNoBytes(t *testing.T) {
	long := func(n int) string { return strings.Repeat("a", n) }

	msgs := []Message{
		&Auth{Username: long(MaxUsernameLength + 1), DisplayName: "A", Secret: "s"},
		&Auth{Username: "al ice", DisplayName: "A", Secret: "s"},
		&Auth{Username: "alice", DisplayName: "A", Secret: long(MaxSecretLength + 1)},
		&Auth{Username: "alice", DisplayName: "A", Secret: "se_cret"},
		&Join{ChannelID: "", DisplayName: "A"},
		&Join{ChannelID: "c.1", DisplayName: "A"},
		&Msg{DisplayName: long(MaxDisplayNameLength + 1), Contents: "x"},
		&Msg{DisplayName: "A B", Contents: "x"},
		&Msg{DisplayName: "A", Contents: long(MaxContentsLength + 1)},
		&Err{DisplayName: "A", Contents: "bell\a"},
		&Reply{Contents: ""},
	}

	for _, m := range msgs {
		text, err := m.MarshalText()
		assert.Nil(t, text)
		var ve *ValidationError
		assert.True(t, errors.As(err, &ve), "%T: expected ValidationError, got %v", m, err)

		data, err := m.MarshalBinary()
		assert.Nil(t, data)
		assert.True(t, errors.As(err, &ve), "%T: expected ValidationError, got %v", m, err)
	}
}

func TestFieldLimitsAreInclusive(t *testing.T) {
	assert.NoError(t, ValidateUsername(strings.Repeat("u", MaxUsernameLength)))
	assert.NoError(t, ValidateChannelID(strings.Repeat("c", MaxChannelIDLength)))
	assert.NoError(t, ValidateSecret(strings.Repeat("s", MaxSecretLength)))
	assert.NoError(t, ValidateDisplayName(strings.Repeat("d", MaxDisplayNameLength)))
	assert.NoError(t, ValidateContents(strings.Repeat("m", MaxContentsLength)))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "caf? ?", Sanitize("café ü"))
	assert.Equal(t, "plain ascii ~", Sanitize("plain ascii ~"))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "MSG", MsgType.String())
	assert.Equal(t, "CONFIRM", ConfirmType.String())
	assert.Equal(t, "UNKNOWN(0x42)", Type(0x42).String())
}
