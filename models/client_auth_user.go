package models

import "fmt"

// Auth
// 0x02
type Auth struct {
	MessageID   uint16
	Username    string // NUL-terminated
	DisplayName string // NUL-terminated
	Secret      string // NUL-terminated
}

func (a *Auth) Type() Type      { return AuthType }
func (a *Auth) ID() uint16      { return a.MessageID }
func (a *Auth) SetID(id uint16) { a.MessageID = id }
func (a *Auth) isMessage()      {}

func (a *Auth) Validate() error {
	if err := ValidateUsername(a.Username); err != nil {
		return err
	}
	if err := ValidateDisplayName(a.DisplayName); err != nil {
		return err
	}
	return ValidateSecret(a.Secret)
}

func (a *Auth) MarshalText() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("AUTH %s AS %s USING %s", a.Username, a.DisplayName, a.Secret)), nil
}

func (a *Auth) UnmarshalText(text []byte) error {
	fields, err := matchLine(AuthType, authPattern, text)
	if err != nil {
		return err
	}

	*a = Auth{Username: fields[0], DisplayName: fields[1], Secret: fields[2]}
	if err := a.Validate(); err != nil {
		return invalid(AuthType, err)
	}

	return nil
}

func (a *Auth) MarshalBinary() ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	data := appendHeader(AuthType, a.MessageID)
	data = appendString(data, a.Username)
	data = appendString(data, a.DisplayName)
	data = appendString(data, a.Secret)

	return data, nil
}

func (a *Auth) UnmarshalBinary(data []byte) (err error) {
	r, id, err := newPayloadReader(data, AuthType, headerLength+3)
	if err != nil {
		return err
	}

	m := Auth{MessageID: id}
	if m.Username, err = r.string("username"); err != nil {
		return err
	}
	if m.DisplayName, err = r.string("display name"); err != nil {
		return err
	}
	if m.Secret, err = r.string("secret"); err != nil {
		return err
	}
	if err = r.end(); err != nil {
		return err
	}
	if err = m.Validate(); err != nil {
		return invalid(AuthType, err)
	}

	*a = m
	return nil
}
