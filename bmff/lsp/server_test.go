package lsp

import (
	"context"
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/boxdef/bmff/parser"
	"github.com/dhamidi/boxdef/bmff/registry"
)

func TestDiagnostics(t *testing.T) {
	src := `class A extends Base() {
	unsigned int(8)[3] m = { 1, 2, 3 };
}
class B { bit(99) y; }
`
	ws := registry.NewWorkspace(t.TempDir(), registry.Options{})
	if err := ws.UpdateFile(context.Background(), "a.box", []byte(src)); err != nil {
		t.Fatal(err)
	}

	got := Diagnostics(ws, "a.box")
	tests := []struct {
		severity protocol.DiagnosticSeverity
		line     protocol.UInteger
		message  string
	}{
		{protocol.DiagnosticSeverityError, 3, "class B: unsupported bit(99)"},
		{protocol.DiagnosticSeverityWarning, 1, "ignoring default { ... } block"},
		{protocol.DiagnosticSeverityInformation, 0, "unresolved base class Base"},
	}
	if len(got) != len(tests) {
		t.Fatalf("got %d diagnostics, want %d: %+v", len(got), len(tests), got)
	}
	for i, tt := range tests {
		d := got[i]
		if *d.Severity != tt.severity {
			t.Errorf("%d: got severity %v, want %v", i, *d.Severity, tt.severity)
		}
		if d.Range.Start.Line != tt.line {
			t.Errorf("%d: got line %d, want %d", i, d.Range.Start.Line, tt.line)
		}
		if !strings.Contains(d.Message, tt.message) {
			t.Errorf("%d: got message %q, want %q", i, d.Message, tt.message)
		}
		if d.Source == nil || *d.Source != lsName {
			t.Errorf("%d: missing source", i)
		}
	}

	if got := Diagnostics(ws, "a.box", "Base"); len(got) != 2 {
		t.Errorf("known base should not be reported, got %+v", got)
	}
}

func TestDiagnosticsLoadError(t *testing.T) {
	ws := registry.NewWorkspace(t.TempDir(), registry.Options{})
	if err := ws.UpdateFile(context.Background(), "bad.box", []byte("class A {\n  @\n}")); err != nil {
		t.Fatal(err)
	}
	got := Diagnostics(ws, "bad.box")
	if len(got) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(got))
	}
	if got[0].Range.Start.Line != 1 || got[0].Range.Start.Character != 2 {
		t.Errorf("got range %+v, want line 1 character 2", got[0].Range)
	}
	if strings.Contains(got[0].Message, "bad.box") {
		t.Errorf("message should not repeat the position: %q", got[0].Message)
	}

	if got := Diagnostics(ws, "missing.box"); got == nil || len(got) != 0 {
		t.Errorf("unknown file: got %v, want an empty non-nil slice", got)
	}
}

func TestToRange(t *testing.T) {
	tests := []struct {
		name string
		span parser.Span
		want protocol.Range
	}{
		{
			name: "span",
			span: parser.Span{
				Start: parser.Position{Line: 2, Column: 7},
				End:   parser.Position{Line: 2, Column: 9},
			},
			want: protocol.Range{
				Start: protocol.Position{Line: 1, Character: 6},
				End:   protocol.Position{Line: 1, Character: 8},
			},
		},
		{
			name: "start only",
			span: parser.Span{Start: parser.Position{Line: 3, Column: 1}},
			want: protocol.Range{
				Start: protocol.Position{Line: 2, Character: 0},
				End:   protocol.Position{Line: 2, Character: 0},
			},
		},
		{
			name: "zero",
			want: protocol.Range{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := toRange(tt.span); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestURIToPath(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///home/user/boxes/moov.box", "/home/user/boxes/moov.box"},
		{"file:///tmp/a%20b.box", "/tmp/a b.box"},
		{"relative.box", "relative.box"},
	}
	for _, tt := range tests {
		got, err := uriToPath(tt.uri)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("uriToPath(%q) = %q, want %q", tt.uri, got, tt.want)
		}
	}
}
