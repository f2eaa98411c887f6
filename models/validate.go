package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sanitize replaces every character above ASCII 127 with '?'.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return '?'
		}
		return r
	}, s)
}

func ValidateUsername(s string) error {
	return checkIdentifier("username", s, MaxUsernameLength)
}

func ValidateChannelID(s string) error {
	return checkIdentifier("channel id", s, MaxChannelIDLength)
}

func ValidateSecret(s string) error {
	return checkIdentifier("secret", s, MaxSecretLength)
}

// ValidateDisplayName accepts 1-20 printable characters without spaces,
// a space would split the name in the text encoding.
func ValidateDisplayName(s string) error {
	if err := checkLength("display name", s, MaxDisplayNameLength); err != nil {
		return err
	}
	for _, r := range s {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return &ValidationError{Field: "display name", Value: s, Reason: "must contain only printable characters without spaces"}
		}
	}
	return nil
}

func ValidateContents(s string) error {
	if err := checkLength("message contents", s, MaxContentsLength); err != nil {
		return err
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "message contents", Value: s, Reason: "must contain only printable characters"}
		}
	}
	return nil
}

func checkIdentifier(field, s string, max int) error {
	if err := checkLength(field, s, max); err != nil {
		return err
	}
	for i := 0; i < len(s); i++ {
		if !isIdentifierByte(s[i]) {
			return &ValidationError{Field: field, Value: s, Reason: "must contain only characters [A-Za-z0-9-]"}
		}
	}
	return nil
}

func checkLength(field, s string, max int) error {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return &ValidationError{Field: field, Value: s, Reason: "must not be empty"}
	}
	if n > max {
		return &ValidationError{Field: field, Value: s, Reason: "too long"}
	}
	return nil
}

func isIdentifierByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}
