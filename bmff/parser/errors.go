package parser

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal parse error.
type ErrorKind int

const (
	// SyntaxError indicates an expected token or construct was not found.
	SyntaxError ErrorKind = iota + 1

	// UnsupportedWidthError indicates a sized type whose literal width has
	// no native representation.
	UnsupportedWidthError

	// TypeError indicates a literal-only position received some other
	// expression.
	TypeError

	// UnsupportedOperatorError indicates a loop bound compared with an
	// operator other than < or <=.
	UnsupportedOperatorError
)

var errorKindNames = map[ErrorKind]string{
	SyntaxError:              "syntax error",
	UnsupportedWidthError:    "unsupported width",
	TypeError:                "type error",
	UnsupportedOperatorError: "unsupported operator",
}

func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return "error"
}

// Error is the single fatal error produced while parsing a class
// definition.
type Error struct {
	Kind    ErrorKind
	Span    Span
	Message string
}

func (e *Error) Error() string {
	if e.Span.Start.Line == 0 {
		return e.Message
	}
	return e.Span.Start.String() + ": " + e.Message
}

func newError(kind ErrorKind, span Span, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Span:    span,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err, or an error it wraps, is a parse error of
// the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind == kind
	}
	return false
}

type Severity int

const (
	SeverityWarning Severity = iota + 1
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return "unknown"
}

// Diagnostic is a non-fatal condition noticed while parsing. Parsing
// continues after a diagnostic is recorded.
type Diagnostic struct {
	Severity Severity
	Span     Span
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span.Start, d.Severity, d.Message)
}
