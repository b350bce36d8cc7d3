// Package format writes parsed box definitions as pseudocode text, JSON or
// YAML.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/boxdef/bmff/parser"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *parser.Class) error
}

// Names lists the formats accepted by New.
var Names = []string{"text", "json", "yaml"}

// New returns the encoder for the named format.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "text", "box":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml", "yml":
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}
