package models

import "fmt"

// ValidationError is returned when a field breaks its charset or length rule.
// Nothing is serialized while a ValidationError is pending.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// FormatError is returned when bytes or a text line do not match the expected grammar.
// Kind names the message type being decoded, empty when it is not known yet.
type FormatError struct {
	Kind   string
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	prefix := "malformed message"
	if e.Kind != "" {
		prefix = "malformed " + e.Kind + " message"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErrorf(t Type, format string, args ...interface{}) *FormatError {
	return &FormatError{Kind: t.String(), Reason: fmt.Sprintf(format, args...)}
}
