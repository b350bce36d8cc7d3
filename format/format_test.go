package format

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/boxdef/bmff/parser"
	"github.com/dhamidi/boxdef/bmff/registry"
)

var astOpts = cmp.Options{
	cmpopts.IgnoreTypes(parser.Span{}),
	cmpopts.EquateEmpty(),
}

const movieHeader = `aligned(8) class MovieHeaderBox extends FullBox("mvhd", version, 0) {
	if (version == 1) {
		unsigned int(64) creation_time;
	} else {
		unsigned int(32) creation_time;
	}
	for (i = 0; i < 2; i++) {
		bit(1) flag;
	}
	unsigned int(8)[16] usertype = extended_type; # optional; rust_type: Uuid
}
`

func mustParse(t *testing.T, src string) *parser.Class {
	t.Helper()
	c, _, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, src)
	}
	return c
}

func TestTextEncoder(t *testing.T) {
	want := `aligned(8) class MovieHeaderBox extends FullBox("mvhd", version, 0) {
	if (version == 1) {
		unsigned int(64) creation_time;
	} else {
		unsigned int(32) creation_time;
	}
	for (i = 0; i < 2; i++) {
		bit(1) flag;
	}
	unsigned int(8) usertype[16] = extended_type; # optional; rust_type: Uuid
}
`
	var buf bytes.Buffer
	if err := NewTextEncoder(&buf).Encode(mustParse(t, movieHeader)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTextEncoderShapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "empty body",
			src:  "abstract class A {}",
			want: "abstract class A {\n}\n",
		},
		{
			name: "params and pass-through",
			src:  "class B(unsigned int(32) handler_type, codingname) extends SampleEntry(format = codingname, handler_type) { }",
			want: "class B(unsigned int(32) handler_type, codingname) extends SampleEntry(format = codingname, handler_type) {\n}\n",
		},
		{
			name: "unbounded loop and else if",
			src: `class C {
				for (int i = 1; ; i++) { string name; }
				if (a & 1) { SampleEntry(); } else if (b) { Box(x, 4) box; }
			}`,
			want: "class C {\n" +
				"\tfor (i = 1; ; i++) {\n\t\tstring name;\n\t}\n" +
				"\tif (a & 1) {\n\t\tSampleEntry;\n\t} else if (b) {\n\t\tBox(x, 4) box;\n\t}\n" +
				"}\n",
		},
		{
			name: "arrays and defaults",
			src:  "class D { const unsigned int(32)[2] reserved = 0; unsigned int(32) brands[]; bit(8) data[(size - 8) / 2]; template int(16) volume = { 1, 0 }; }",
			want: "class D {\n" +
				"\tconst unsigned int(32) reserved[2] = 0;\n" +
				"\tunsigned int(32) brands[];\n" +
				"\tbit(8) data[(size - 8) / 2];\n" +
				"\ttemplate int(16) volume;\n" +
				"}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := mustParse(t, tt.src)
			var buf bytes.Buffer
			if err := NewTextEncoder(&buf).Encode(original); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(original, mustParse(t, buf.String()), astOpts); diff != "" {
				t.Errorf("reparse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTextRoundTripCorpus(t *testing.T) {
	src, err := os.ReadFile("../testdata/isobmff.box")
	if err != nil {
		t.Fatal(err)
	}
	res, err := registry.Load(context.Background(), "isobmff.box", src, registry.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}

	var all bytes.Buffer
	enc := NewTextEncoder(&all)
	for _, c := range res.Classes {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewTextEncoder(&buf).Encode(c); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(c, mustParse(t, buf.String()), astOpts); diff != "" {
				t.Errorf("reparse mismatch (-want +got):\n%s", diff)
			}
		})
		if err := enc.Encode(c); err != nil {
			t.Fatal(err)
		}
	}

	// Printing is idempotent over the whole file.
	again, err := registry.Load(context.Background(), "printed.box", all.Bytes(), registry.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Classes) != len(res.Classes) || len(again.Diagnostics) != 0 {
		t.Fatalf("reprinted file: %d classes, %d diagnostics", len(again.Classes), len(again.Diagnostics))
	}
	var second bytes.Buffer
	enc = NewTextEncoder(&second)
	for _, c := range again.Classes {
		if err := enc.Encode(c); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff(all.String(), second.String()); diff != "" {
		t.Errorf("second print differs (-first +second):\n%s", diff)
	}
}

func TestJSONEncoder(t *testing.T) {
	c := mustParse(t, movieHeader)
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(c); err != nil {
		t.Fatal(err)
	}

	var got Document
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(NewDocument(c), &got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}

	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	body := raw["body"].([]any)
	kinds := make([]string, len(body))
	for i, stmt := range body {
		kinds[i] = stmt.(map[string]any)["kind"].(string)
	}
	if diff := cmp.Diff([]string{"if", "for", "field"}, kinds); diff != "" {
		t.Errorf("statement kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestDocument(t *testing.T) {
	doc := NewDocument(mustParse(t, movieHeader))
	if doc.Kind != "class" || doc.Aligned == nil || *doc.Aligned != 8 {
		t.Errorf("header: got %+v", doc)
	}

	ext := doc.Extends
	wantArgs := []ExtendsArg{
		{Value: &Expr{Kind: "string", Str: ptr("mvhd"), Raw: `"mvhd"`}},
		{Name: "version"},
		{Value: &Expr{Kind: "int", Int: ptr[uint64](0), Raw: "0"}},
	}
	if diff := cmp.Diff(wantArgs, ext.Args); diff != "" {
		t.Errorf("extends args mismatch (-want +got):\n%s", diff)
	}

	loop := doc.Body[1].For
	if loop.Op != "<" || *loop.Limit.Int != 2 {
		t.Errorf("loop: got %+v", loop)
	}

	want := &Field{
		Name:     "usertype",
		Type:     "optional unsigned int",
		Base:     "unsigned-int",
		Width:    8,
		Native:   "Uuid",
		Optional: true,
		Array:    &Array{Len: &Expr{Kind: "int", Int: ptr[uint64](16), Raw: "16"}},
		Default:  &Expr{Kind: "var", Name: "extended_type"},
		Line:     10,
	}
	if diff := cmp.Diff(want, doc.Body[2].Field); diff != "" {
		t.Errorf("field mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLEncoder(t *testing.T) {
	a := mustParse(t, "class A { bit(1) flag; }")
	b := mustParse(t, movieHeader)

	var buf bytes.Buffer
	enc := NewYAMLEncoder(&buf)
	for _, c := range []*parser.Class{a, b} {
		if err := enc.Encode(c); err != nil {
			t.Fatal(err)
		}
	}
	out := buf.String()
	if !strings.HasPrefix(out, "kind: class\nname: A\n") {
		t.Errorf("unexpected start of output:\n%s", out)
	}
	if strings.Count(out, "---\n") != 1 {
		t.Errorf("want one document separator:\n%s", out)
	}

	dec := yaml.NewDecoder(strings.NewReader(out))
	for _, c := range []*parser.Class{a, b} {
		var got Document
		if err := dec.Decode(&got); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(NewDocument(c), &got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("%s: document mismatch (-want +got):\n%s", c.Name(), diff)
		}
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names {
		if _, err := New(name, &bytes.Buffer{}); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := New("xml", &bytes.Buffer{}); err == nil {
		t.Error("want an error for an unknown format")
	}
}

func ptr[T any](v T) *T {
	return &v
}
