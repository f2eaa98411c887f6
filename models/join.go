package models

import "fmt"

// Join
// 0x03
type Join struct {
	MessageID   uint16
	ChannelID   string // NUL-terminated
	DisplayName string // NUL-terminated
}

func (j *Join) Type() Type      { return JoinType }
func (j *Join) ID() uint16      { return j.MessageID }
func (j *Join) SetID(id uint16) { j.MessageID = id }
func (j *Join) isMessage()      {}

func (j *Join) Validate() error {
	if err := ValidateChannelID(j.ChannelID); err != nil {
		return err
	}
	return ValidateDisplayName(j.DisplayName)
}

func (j *Join) MarshalText() ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("JOIN %s AS %s", j.ChannelID, j.DisplayName)), nil
}

func (j *Join) UnmarshalText(text []byte) error {
	fields, err := matchLine(JoinType, joinPattern, text)
	if err != nil {
		return err
	}

	*j = Join{ChannelID: fields[0], DisplayName: fields[1]}
	if err := j.Validate(); err != nil {
		return invalid(JoinType, err)
	}

	return nil
}

func (j *Join) MarshalBinary() ([]byte, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	data := appendHeader(JoinType, j.MessageID)
	data = appendString(data, j.ChannelID)
	data = appendString(data, j.DisplayName)

	return data, nil
}

func (j *Join) UnmarshalBinary(data []byte) (err error) {
	r, id, err := newPayloadReader(data, JoinType, headerLength+2)
	if err != nil {
		return err
	}

	m := Join{MessageID: id}
	if m.ChannelID, err = r.string("channel id"); err != nil {
		return err
	}
	if m.DisplayName, err = r.string("display name"); err != nil {
		return err
	}
	if err = r.end(); err != nil {
		return err
	}
	if err = m.Validate(); err != nil {
		return invalid(JoinType, err)
	}

	*j = m
	return nil
}
