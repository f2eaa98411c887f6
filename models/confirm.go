package models

import "github.com/pkg/errors"

// ErrNoTextForm is returned by the text codec of Confirm, which only exists
// in the binary encoding.
var ErrNoTextForm = errors.New("message has no text encoding")

// Confirm acknowledges a datagram. Its id slot holds the referenced id.
// 0x00
type Confirm struct {
	RefMessageID uint16
}

func (c *Confirm) Type() Type      { return ConfirmType }
func (c *Confirm) ID() uint16      { return c.RefMessageID }
func (c *Confirm) SetID(id uint16) { c.RefMessageID = id }
func (c *Confirm) isMessage()      {}

func (c *Confirm) Validate() error { return nil }

func (c *Confirm) MarshalText() ([]byte, error) {
	return nil, errors.Wrap(ErrNoTextForm, "CONFIRM")
}

func (c *Confirm) UnmarshalText([]byte) error {
	return &FormatError{Kind: ConfirmType.String(), Reason: "no text form", Err: ErrNoTextForm}
}

func (c *Confirm) MarshalBinary() ([]byte, error) {
	return appendHeader(ConfirmType, c.RefMessageID), nil
}

func (c *Confirm) UnmarshalBinary(data []byte) error {
	r, ref, err := newPayloadReader(data, ConfirmType, headerLength)
	if err != nil {
		return err
	}
	if err := r.end(); err != nil {
		return err
	}
	c.RefMessageID = ref
	return nil
}
