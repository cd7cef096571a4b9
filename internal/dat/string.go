package dat

import (
	"encoding/binary"
	"errors"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

var (
	ErrUnresolved  = errors.New("dat: unresolved text handle")
	ErrInvalidText = errors.New("dat: invalid UTF-16 text")
)

// String is a text handle: a reference to UTF-16LE bytes in a table's
// variable section. The zero value is unresolved and fails to decode.
type String struct {
	raw      []byte
	resolved bool
}

// NewString builds a resolved handle backed by text. Used by tests and by
// code that needs to compare against literal values.
func NewString(text string) String {
	units := utf16.Encode([]rune(text))
	raw := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(raw[i*2:], u)
	}
	return String{raw: raw, resolved: true}
}

// Decode converts the handle to usable text. It fails on unresolved handles,
// odd-length payloads, and unpaired surrogates. Decoded text is normalized
// to NFC so downstream filename derivation is stable.
func (s String) Decode() (string, error) {
	if !s.resolved {
		return "", ErrUnresolved
	}
	if len(s.raw)%2 != 0 {
		return "", ErrInvalidText
	}
	units := make([]uint16, len(s.raw)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(s.raw[i*2:])
	}
	runes := utf16.Decode(units)
	for _, r := range runes {
		if r == 0xFFFD {
			return "", ErrInvalidText
		}
	}
	return norm.NFC.String(string(runes)), nil
}

// HasPrefix reports whether the handle decodes and starts with prefix.
// Undecodable handles match nothing.
func (s String) HasPrefix(prefix string) bool {
	text, err := s.Decode()
	if err != nil {
		return false
	}
	return len(text) >= len(prefix) && text[:len(prefix)] == prefix
}

// String implements fmt.Stringer for diagnostics only; undecodable handles
// render as a placeholder instead of failing.
func (s String) String() string {
	text, err := s.Decode()
	if err != nil {
		return "<invalid text>"
	}
	return text
}
