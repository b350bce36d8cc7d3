package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/boxdef/bmff/parser"
)

type JSONEncoder struct {
	w     io.Writer
	class *parser.Class
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

// Encode writes class as one indented JSON object followed by a newline,
// so several classes form a JSON stream.
func (e *JSONEncoder) Encode(class *parser.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	return json.MarshalIndent(NewDocument(e.class), "", "  ")
}
