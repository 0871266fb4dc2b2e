// Package codec centralizes the text encodings used for status documents and
// configuration dumps.
//
// The binary status wire format is hand-framed in package status; codecs here
// only cover the human-readable renderings. Codec names are stable so that
// archived documents can record which codec produced them.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Indenter is implemented by codecs that can produce an indented rendering.
type Indenter interface {
	MarshalIndent(v any, prefix, indent string) ([]byte, error)
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Indent renders v with two-space indentation using c, falling back to the
// default codec when c cannot indent.
func Indent(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	ind, ok := c.(Indenter)
	if !ok {
		ind, ok = Default.(Indenter)
		if !ok {
			return nil, fmt.Errorf("codec %s cannot indent", c.Name())
		}
	}
	return ind.MarshalIndent(v, "", "  ")
}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
