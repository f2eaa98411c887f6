package models

import (
	"testing"

	"pgregory.net/rapid"
)

var (
	identifierGen  = rapid.StringMatching(`[A-Za-z0-9-]{1,20}`)
	secretGen      = rapid.StringMatching(`[A-Za-z0-9-]{1,128}`)
	displayNameGen = rapid.StringMatching(`[!-~]{1,20}`)
	contentsGen    = rapid.StringMatching(`[ -~]{1,300}`)
)

// drawMessage draws a valid message of any kind that has both encodings.
func drawMessage(t *rapid.T) Message {
	id := rapid.Uint16().Draw(t, "id")

	switch rapid.IntRange(0, 5).Draw(t, "kind") {
	case 0:
		return &Auth{MessageID: id, Username: identifierGen.Draw(t, "username"), DisplayName: displayNameGen.Draw(t, "displayName"), Secret: secretGen.Draw(t, "secret")}
	case 1:
		return &Join{MessageID: id, ChannelID: identifierGen.Draw(t, "channelID"), DisplayName: displayNameGen.Draw(t, "displayName")}
	case 2:
		return &Msg{MessageID: id, DisplayName: displayNameGen.Draw(t, "displayName"), Contents: contentsGen.Draw(t, "contents")}
	case 3:
		return &Err{MessageID: id, DisplayName: displayNameGen.Draw(t, "displayName"), Contents: contentsGen.Draw(t, "contents")}
	case 4:
		return &Reply{MessageID: id, Result: rapid.Bool().Draw(t, "result"), RefMessageID: rapid.Uint16().Draw(t, "ref"), Contents: contentsGen.Draw(t, "contents")}
	default:
		return &Bye{MessageID: id}
	}
}

// TestBinaryRoundTrip tests that any valid message survives the binary encoding
func TestBinaryRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := drawMessage(t)

		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		decoded, err := DecodeBinary(data)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}

		data2, err := decoded.MarshalBinary()
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		if string(data) != string(data2) {
			t.Fatalf("round trip mismatch: %v != %v", data, data2)
		}
	})
}

// TestTextRoundTrip tests that any valid message survives the text encoding.
// Ids and reply references are not part of the text form.
func TestTextRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		original := drawMessage(t)
		original.SetID(0)
		if r, ok := original.(*Reply); ok {
			r.RefMessageID = 0
		}

		line, err := EncodeLine(original)
		if err != nil {
			t.Fatalf("encode failed: %v", err)
		}

		decoded, err := DecodeText(line)
		if err != nil {
			t.Fatalf("decode failed for %q: %v", line, err)
		}

		text1, _ := original.MarshalText()
		text2, err := decoded.MarshalText()
		if err != nil {
			t.Fatalf("re-encode failed: %v", err)
		}
		if string(text1) != string(text2) {
			t.Fatalf("round trip mismatch: %q != %q", text1, text2)
		}
		if decoded.Type() != original.Type() {
			t.Fatalf("type mismatch: got %s, want %s", decoded.Type(), original.Type())
		}
	})
}

// TestConfirmRoundTrip tests that any referenced id survives
func TestConfirmRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ref := rapid.Uint16().Draw(t, "ref")

		data, _ := (&Confirm{RefMessageID: ref}).MarshalBinary()

		decoded, err := DecodeBinary(data)
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if c, ok := decoded.(*Confirm); !ok || c.RefMessageID != ref {
			t.Fatalf("confirm mismatch: %#v", decoded)
		}
	})
}

// TestOversizedContentsRejected tests that no bytes are produced past the limit
func TestOversizedContentsRejected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(MaxContentsLength+1, MaxContentsLength+200).Draw(t, "n")
		contents := rapid.StringOfN(rapid.RuneFrom([]rune("abc xyz")), n, n, -1).Draw(t, "contents")

		m := &Msg{DisplayName: "Alice", Contents: contents}
		if data, err := m.MarshalBinary(); err == nil || data != nil {
			t.Fatalf("expected validation failure for %d chars", n)
		}
		if text, err := m.MarshalText(); err == nil || text != nil {
			t.Fatalf("expected validation failure for %d chars", n)
		}
	})
}
