package format

import (
	"bytes"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/boxdef/bmff/parser"
)

type YAMLEncoder struct {
	w     io.Writer
	class *parser.Class
	count int
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

// Encode writes class as a YAML document. Documents after the first are
// preceded by a "---" separator.
func (e *YAMLEncoder) Encode(class *parser.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if e.count > 0 {
		if _, err := io.WriteString(e.w, "---\n"); err != nil {
			return err
		}
	}
	e.count++
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(e.class)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
