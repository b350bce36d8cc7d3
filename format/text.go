package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/boxdef/bmff/parser"
)

// TextEncoder prints classes back as definition pseudocode. Parsing the
// output yields the same tree, spans aside. Bookkeeping declarations and
// ignored default blocks are not kept by the parser and so are not
// printed.
type TextEncoder struct {
	w         io.Writer
	class     *parser.Class
	count     int
	indentStr string
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w, indentStr: "\t"}
}

// Encode writes class, separated from the previous one by a blank line.
func (e *TextEncoder) Encode(class *parser.Class) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	if e.count > 0 {
		if _, err := io.WriteString(e.w, "\n"); err != nil {
			return err
		}
	}
	e.count++
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText() ([]byte, error) {
	p := &textPrinter{indentStr: e.indentStr}
	p.printClass(e.class)
	return []byte(p.sb.String()), nil
}

type textPrinter struct {
	sb        strings.Builder
	indent    int
	indentStr string
}

func (p *textPrinter) write(s string) {
	p.sb.WriteString(s)
}

func (p *textPrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.sb.WriteString(p.indentStr)
	}
}

func (p *textPrinter) printClass(c *parser.Class) {
	h := c.Header
	if h.Aligned != nil {
		fmt.Fprintf(&p.sb, "aligned(%d) ", h.Aligned.Value)
	}
	if h.Abstract {
		p.write("abstract ")
	}
	p.write("class ")
	p.write(h.Name)
	if len(h.Params) > 0 {
		p.write("(")
		for i, param := range h.Params {
			if i > 0 {
				p.write(", ")
			}
			p.printDecl(param, true)
		}
		p.write(")")
	}
	if ext := h.Extends; ext != nil {
		p.write(" extends ")
		p.write(ext.Class)
		p.write("(")
		for i, arg := range ext.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printExtendsArg(arg)
		}
		p.write(")")
	}
	p.write(" ")
	p.printBlock(c.Body.Stmts)
	p.write("\n")
}

func (p *textPrinter) printExtendsArg(arg parser.ExtendsArg) {
	switch {
	case arg.IsPositional():
		p.write(parser.FormatExpr(arg.Value))
	case arg.IsPassThrough():
		p.write(arg.Name)
	default:
		p.write(arg.Name)
		p.write(" = ")
		p.write(parser.FormatExpr(arg.Value))
	}
}

// printBlock writes a brace block starting at the current position and
// leaves the output just after the closing brace.
func (p *textPrinter) printBlock(stmts []parser.Stmt) {
	p.write("{\n")
	p.indent++
	for _, stmt := range stmts {
		p.printStmt(stmt)
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *textPrinter) printStmt(stmt parser.Stmt) {
	p.writeIndent()
	switch s := stmt.(type) {
	case *parser.VarDecl:
		p.printDecl(s, false)
		p.write(";")
		p.printAnnotation(s)
	case *parser.If:
		p.printIf(s)
	case *parser.For:
		p.printFor(s)
	}
	p.write("\n")
}

// printDecl writes a declaration without its terminator. Header
// parameters cannot carry annotations, so inParams keeps the optional
// modifier in front of the type instead. So does a nameless declaration
// whose name was taken from the modified type.
func (p *textPrinter) printDecl(d *parser.VarDecl, inParams bool) {
	typ := d.ISOType
	keep := inParams || (d.Anonymous && strings.HasPrefix(d.Name, "optional "))
	if d.Optional && !keep {
		typ = strings.TrimPrefix(typ, "optional ")
	}
	p.write(typ)
	if d.Kind.Sized() {
		fmt.Fprintf(&p.sb, "(%d)", d.Width)
	}
	if len(d.ClassArgs) > 0 {
		p.write("(")
		for i, arg := range d.ClassArgs {
			if i > 0 {
				p.write(", ")
			}
			p.write(parser.FormatExpr(arg))
		}
		p.write(")")
	}
	if d.Anonymous {
		p.printArray(d.Array)
		return
	}
	p.write(" ")
	p.write(d.Name)
	p.printArray(d.Array)
	if d.Default != nil {
		p.write(" = ")
		p.write(parser.FormatExpr(d.Default))
	}
}

func (p *textPrinter) printArray(a *parser.Array) {
	if a == nil {
		return
	}
	if a.ToEnd {
		p.write("[]")
		return
	}
	p.write("[")
	p.write(parser.FormatExpr(a.Len))
	p.write("]")
}

func (p *textPrinter) printAnnotation(d *parser.VarDecl) {
	var clauses []string
	if d.Optional {
		clauses = append(clauses, "optional")
	}
	if d.NativeName != defaultNativeName(d) {
		clauses = append(clauses, "rust_type: "+d.NativeName)
	}
	if len(clauses) > 0 {
		p.write(" # ")
		p.write(strings.Join(clauses, "; "))
	}
}

// defaultNativeName is the native type name a declaration gets without a
// type annotation.
func defaultNativeName(d *parser.VarDecl) string {
	switch {
	case d.Kind.Sized():
		return d.Native.String()
	case d.Kind == parser.BasePrimitive:
		return "string"
	}
	return d.TypeName
}

func (p *textPrinter) printIf(s *parser.If) {
	p.write("if (")
	p.write(parser.FormatExpr(s.Cond))
	p.write(") ")
	p.printBlock(s.Then)
	for _, ei := range s.ElseIf {
		p.write(" else if (")
		p.write(parser.FormatExpr(ei.Cond))
		p.write(") ")
		p.printBlock(ei.Body)
	}
	if len(s.Else) > 0 {
		p.write(" else ")
		p.printBlock(s.Else)
	}
}

func (p *textPrinter) printFor(s *parser.For) {
	fmt.Fprintf(&p.sb, "for (%s = %d; ", s.Var, s.Start)
	if !s.Unbounded() {
		fmt.Fprintf(&p.sb, "%s %s %s", s.Var, s.Op, parser.FormatExpr(s.Limit))
	}
	fmt.Fprintf(&p.sb, "; %s++) ", s.Var)
	p.printBlock(s.Body)
}
