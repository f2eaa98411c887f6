package models

import "strings"

// Reply answers an Auth or a Join.
// 0x01
type Reply struct {
	MessageID    uint16
	Result       bool
	RefMessageID uint16
	Contents     string // NUL-terminated
}

func (r *Reply) Type() Type      { return ReplyType }
func (r *Reply) ID() uint16      { return r.MessageID }
func (r *Reply) SetID(id uint16) { r.MessageID = id }
func (r *Reply) isMessage()      {}

func (r *Reply) Validate() error {
	return ValidateContents(r.Contents)
}

func (r *Reply) MarshalText() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	result := "NOK"
	if r.Result {
		result = "OK"
	}

	return []byte("REPLY " + result + " IS " + r.Contents), nil
}

func (r *Reply) UnmarshalText(text []byte) error {
	fields, err := matchLine(ReplyType, replyPattern, text)
	if err != nil {
		return err
	}

	*r = Reply{Result: strings.EqualFold(fields[0], "OK"), Contents: fields[1]}
	if err := r.Validate(); err != nil {
		return invalid(ReplyType, err)
	}

	return nil
}

func (r *Reply) MarshalBinary() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var flag byte
	if r.Result {
		flag = 1
	}

	data := appendHeader(ReplyType, r.MessageID)
	data = append(data, flag)
	data = appendUint16(data, r.RefMessageID)
	data = appendString(data, r.Contents)

	return data, nil
}

func (r *Reply) UnmarshalBinary(data []byte) error {
	pr, id, err := newPayloadReader(data, ReplyType, headerLength+1+2+1)
	if err != nil {
		return err
	}

	flag, err := pr.byte("result")
	if err != nil {
		return err
	}
	if flag > 1 {
		return formatErrorf(ReplyType, "result must be 0 or 1, got %d", flag)
	}

	m := Reply{MessageID: id, Result: flag == 1}
	if m.RefMessageID, err = pr.uint16("ref message id"); err != nil {
		return err
	}
	if m.Contents, err = pr.string("message contents"); err != nil {
		return err
	}
	if err = pr.end(); err != nil {
		return err
	}
	if err = m.Validate(); err != nil {
		return invalid(ReplyType, err)
	}

	*r = m
	return nil
}
