package models

import "regexp"

// Msg
// 0x04
type Msg struct {
	MessageID   uint16
	DisplayName string // NUL-terminated
	Contents    string // NUL-terminated
}

// Err has the same layout as Msg and is sent when either side gives up.
// 0xFE
type Err struct {
	MessageID   uint16
	DisplayName string // NUL-terminated
	Contents    string // NUL-terminated
}

func (m *Msg) Type() Type      { return MsgType }
func (m *Msg) ID() uint16      { return m.MessageID }
func (m *Msg) SetID(id uint16) { m.MessageID = id }
func (m *Msg) isMessage()      {}

func (m *Msg) Validate() error {
	return validateChat(m.DisplayName, m.Contents)
}

func (m *Msg) MarshalText() ([]byte, error) {
	return marshalChatText(MSG, m.DisplayName, m.Contents)
}

func (m *Msg) UnmarshalText(text []byte) (err error) {
	*m = Msg{}
	m.DisplayName, m.Contents, err = unmarshalChatText(MsgType, msgPattern, text)
	return err
}

func (m *Msg) MarshalBinary() ([]byte, error) {
	return marshalChatBinary(MsgType, m.MessageID, m.DisplayName, m.Contents)
}

func (m *Msg) UnmarshalBinary(data []byte) error {
	id, name, contents, err := unmarshalChatBinary(MsgType, data)
	if err != nil {
		return err
	}
	*m = Msg{MessageID: id, DisplayName: name, Contents: contents}
	return nil
}

func (e *Err) Type() Type      { return ErrType }
func (e *Err) ID() uint16      { return e.MessageID }
func (e *Err) SetID(id uint16) { e.MessageID = id }
func (e *Err) isMessage()      {}

func (e *Err) Validate() error {
	return validateChat(e.DisplayName, e.Contents)
}

func (e *Err) MarshalText() ([]byte, error) {
	return marshalChatText(ERR, e.DisplayName, e.Contents)
}

func (e *Err) UnmarshalText(text []byte) (err error) {
	*e = Err{}
	e.DisplayName, e.Contents, err = unmarshalChatText(ErrType, errPattern, text)
	return err
}

func (e *Err) MarshalBinary() ([]byte, error) {
	return marshalChatBinary(ErrType, e.MessageID, e.DisplayName, e.Contents)
}

func (e *Err) UnmarshalBinary(data []byte) error {
	id, name, contents, err := unmarshalChatBinary(ErrType, data)
	if err != nil {
		return err
	}
	*e = Err{MessageID: id, DisplayName: name, Contents: contents}
	return nil
}

func validateChat(displayName, contents string) error {
	if err := ValidateDisplayName(displayName); err != nil {
		return err
	}
	return ValidateContents(contents)
}

func marshalChatText(keyword, displayName, contents string) ([]byte, error) {
	if err := validateChat(displayName, contents); err != nil {
		return nil, err
	}
	return []byte(keyword + " FROM " + displayName + " IS " + contents), nil
}

func unmarshalChatText(t Type, pattern *regexp.Regexp, text []byte) (string, string, error) {
	fields, err := matchLine(t, pattern, text)
	if err != nil {
		return "", "", err
	}
	if err := validateChat(fields[0], fields[1]); err != nil {
		return "", "", invalid(t, err)
	}
	return fields[0], fields[1], nil
}

func marshalChatBinary(t Type, id uint16, displayName, contents string) ([]byte, error) {
	if err := validateChat(displayName, contents); err != nil {
		return nil, err
	}

	data := appendHeader(t, id)
	data = appendString(data, displayName)
	data = appendString(data, contents)

	return data, nil
}

func unmarshalChatBinary(t Type, data []byte) (id uint16, displayName, contents string, err error) {
	r, id, err := newPayloadReader(data, t, headerLength+2)
	if err != nil {
		return 0, "", "", err
	}
	if displayName, err = r.string("display name"); err != nil {
		return 0, "", "", err
	}
	if contents, err = r.string("message contents"); err != nil {
		return 0, "", "", err
	}
	if err = r.end(); err != nil {
		return 0, "", "", err
	}
	if err = validateChat(displayName, contents); err != nil {
		return 0, "", "", invalid(t, err)
	}
	return id, displayName, contents, nil
}
