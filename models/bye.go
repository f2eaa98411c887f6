package models

// Bye
// 0xFF
type Bye struct {
	MessageID uint16
}

func (b *Bye) Type() Type      { return ByeType }
func (b *Bye) ID() uint16      { return b.MessageID }
func (b *Bye) SetID(id uint16) { b.MessageID = id }
func (b *Bye) isMessage()      {}

func (b *Bye) Validate() error { return nil }

func (b *Bye) MarshalText() ([]byte, error) {
	return []byte(BYE), nil
}

func (b *Bye) UnmarshalText(text []byte) error {
	if _, err := matchLine(ByeType, byePattern, text); err != nil {
		return err
	}
	*b = Bye{}
	return nil
}

func (b *Bye) MarshalBinary() ([]byte, error) {
	return appendHeader(ByeType, b.MessageID), nil
}

func (b *Bye) UnmarshalBinary(data []byte) error {
	r, id, err := newPayloadReader(data, ByeType, headerLength)
	if err != nil {
		return err
	}
	if err := r.end(); err != nil {
		return err
	}
	b.MessageID = id
	return nil
}
