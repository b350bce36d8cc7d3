// Package lsp serves parse diagnostics for box definition files over the
// language server protocol.
package lsp

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/boxdef/bmff/parser"
	"github.com/dhamidi/boxdef/bmff/registry"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "boxdef"

var log = commonlog.GetLogger("boxdef.lsp")

type Server struct {
	workspace *registry.Workspace
	handler   protocol.Handler
	server    *server.Server
	version   string
	opts      registry.Options
	// known are class names treated as defined when linking.
	known []string

	mu sync.Mutex
	// open maps the path of every open document to its URI.
	open map[string]protocol.DocumentUri
}

func NewServer(version string, opts registry.Options, known ...string) *Server {
	ls := &Server{
		version: version,
		opts:    opts,
		known:   known,
		open:    make(map[string]protocol.DocumentUri),
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *Server) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.workspace = registry.NewWorkspace(rootDir, ls.opts)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *Server) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.workspace.ScanAll(context.Background()); err != nil {
		log.Warningf("scan %s: %v", ls.workspace.RootDir(), err)
	}
	log.Infof("workspace %s: %d classes", ls.workspace.RootDir(), ls.workspace.Registry().Len())
	return nil
}

func (ls *Server) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *Server) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	ls.open[path] = params.TextDocument.URI
	ls.mu.Unlock()

	log.Debugf("open %s", path)
	return ls.update(ctx, path, []byte(params.TextDocument.Text))
}

func (ls *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			return ls.update(ctx, path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	delete(ls.open, path)
	ls.mu.Unlock()

	log.Debugf("close %s", path)
	// The buffer may hold unsaved text; fall back to what is on disk.
	if err := ls.workspace.ScanFile(context.Background(), path); err != nil {
		ls.workspace.RemoveFile(path)
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	ls.publishAll(ctx)
	return nil
}

func (ls *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		return ls.update(ctx, path, []byte(*params.Text))
	}
	if err := ls.workspace.ScanFile(context.Background(), path); err != nil {
		log.Warningf("scan %s: %v", path, err)
		return nil
	}
	ls.publishAll(ctx)
	return nil
}

func (ls *Server) update(ctx *glsp.Context, path string, content []byte) error {
	if err := ls.workspace.UpdateFile(context.Background(), path, content); err != nil {
		return err
	}
	ls.publishAll(ctx)
	return nil
}

// publishAll republishes every open document, since a change in one file
// can define or duplicate a class used in another.
func (ls *Server) publishAll(ctx *glsp.Context) {
	ls.mu.Lock()
	open := make(map[string]protocol.DocumentUri, len(ls.open))
	for path, uri := range ls.open {
		open[path] = uri
	}
	ls.mu.Unlock()

	for path, uri := range open {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: Diagnostics(ls.workspace, path, ls.known...),
		})
	}
}

// Diagnostics converts everything the workspace knows about path into
// protocol diagnostics: load and definition errors, soft warnings of the
// parser and unresolved class references.
func Diagnostics(w *registry.Workspace, path string, known ...string) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	f := w.GetFile(path)
	if f == nil {
		return out
	}
	if f.LoadErr != nil {
		var perr *parser.Error
		span := parser.Span{}
		if errors.As(f.LoadErr, &perr) {
			span = perr.Span
		}
		out = append(out, newDiagnostic(span, protocol.DiagnosticSeverityError, errorMessage(f.LoadErr)))
		return out
	}
	for _, derr := range w.Errors(path) {
		out = append(out, newDiagnostic(derr.Span, protocol.DiagnosticSeverityError, errorMessage(derr)))
	}
	for _, d := range f.Result.Diagnostics {
		out = append(out, newDiagnostic(d.Span, severity(d.Severity), d.Message))
	}
	for _, u := range w.Unresolved(path, known...) {
		out = append(out, newDiagnostic(u.Span, protocol.DiagnosticSeverityInformation, u.Message()))
	}
	return out
}

func newDiagnostic(span parser.Span, sev protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	source := lsName
	return protocol.Diagnostic{
		Range:    toRange(span),
		Severity: &sev,
		Source:   &source,
		Message:  message,
	}
}

// errorMessage drops the position prefix of a parse error; the range
// already carries it.
func errorMessage(err error) string {
	var perr *parser.Error
	if !errors.As(err, &perr) {
		return err.Error()
	}
	var derr *registry.DefinitionError
	if errors.As(err, &derr) && derr.Name != "" {
		return "class " + derr.Name + ": " + perr.Message
	}
	return perr.Message
}

func severity(s parser.Severity) protocol.DiagnosticSeverity {
	switch s {
	case parser.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case parser.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}

// toRange converts a span with 1-based lines and columns to a protocol
// range, which is 0-based. The zero span maps to the start of the file.
func toRange(span parser.Span) protocol.Range {
	end := span.End
	if end.Line == 0 {
		end = span.Start
	}
	return protocol.Range{
		Start: toPosition(span.Start),
		End:   toPosition(end),
	}
}

func toPosition(pos parser.Position) protocol.Position {
	var p protocol.Position
	if pos.Line > 0 {
		p.Line = protocol.UInteger(pos.Line - 1)
	}
	if pos.Column > 0 {
		p.Character = protocol.UInteger(pos.Column - 1)
	}
	return p
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
