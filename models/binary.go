package models

import (
	"bytes"
	"encoding/binary"
)

// tag + little-endian id
const headerLength = 3

func appendHeader(t Type, id uint16) []byte {
	data := make([]byte, headerLength, 64)
	data[0] = byte(t)
	binary.LittleEndian.PutUint16(data[1:], id)
	return data
}

func appendUint16(data []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(data, v)
}

// appendString writes s NUL-terminated.
func appendString(data []byte, s string) []byte {
	data = append(data, s...)
	return append(data, 0)
}

// payloadReader walks a datagram after its header has been checked.
type payloadReader struct {
	t    Type
	data []byte
}

// newPayloadReader checks the minimum length and the tag, and returns the id.
func newPayloadReader(data []byte, want Type, minLength int) (*payloadReader, uint16, error) {
	if len(data) < minLength {
		return nil, 0, formatErrorf(want, "datagram too short: %d bytes, need at least %d", len(data), minLength)
	}
	if Type(data[0]) != want {
		return nil, 0, formatErrorf(want, "unexpected type tag 0x%02x", data[0])
	}

	id := binary.LittleEndian.Uint16(data[1:headerLength])

	return &payloadReader{t: want, data: data[headerLength:]}, id, nil
}

func (r *payloadReader) byte(field string) (byte, error) {
	if len(r.data) < 1 {
		return 0, formatErrorf(r.t, "missing %s", field)
	}
	b := r.data[0]
	r.data = r.data[1:]
	return b, nil
}

func (r *payloadReader) uint16(field string) (uint16, error) {
	if len(r.data) < 2 {
		return 0, formatErrorf(r.t, "missing %s", field)
	}
	v := binary.LittleEndian.Uint16(r.data)
	r.data = r.data[2:]
	return v, nil
}

func (r *payloadReader) string(field string) (string, error) {
	nulTerminator := bytes.IndexByte(r.data, 0x0)
	if nulTerminator == -1 {
		return "", formatErrorf(r.t, "missing NUL terminator after %s", field)
	}

	s := string(r.data[:nulTerminator])
	r.data = r.data[nulTerminator+1:]

	return s, nil
}

func (r *payloadReader) end() error {
	if len(r.data) != 0 {
		return formatErrorf(r.t, "%d trailing bytes", len(r.data))
	}
	return nil
}

// invalid wraps a field validation failure found while decoding.
func invalid(t Type, err error) error {
	return &FormatError{Kind: t.String(), Reason: "invalid field", Err: err}
}
