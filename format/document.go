package format

import (
	"github.com/dhamidi/boxdef/bmff/parser"
)

// Document is the tagged-union form of a class shared by the JSON and YAML
// encoders. Every statement and expression carries a kind discriminator.
type Document struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Name     string   `json:"name" yaml:"name"`
	Aligned  *uint32  `json:"aligned,omitempty" yaml:"aligned,omitempty"`
	Abstract bool     `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Params   []Field  `json:"params,omitempty" yaml:"params,omitempty"`
	Extends  *Extends `json:"extends,omitempty" yaml:"extends,omitempty"`
	Body     []Stmt   `json:"body" yaml:"body"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
}

type Extends struct {
	Class string       `json:"class" yaml:"class"`
	Args  []ExtendsArg `json:"args" yaml:"args"`
}

// ExtendsArg has only Value when positional and only Name when it passes
// a parameter through.
type ExtendsArg struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	Value *Expr  `json:"value,omitempty" yaml:"value,omitempty"`
}

// Stmt has exactly one of Field, If and For set, as named by Kind.
type Stmt struct {
	Kind  string `json:"kind" yaml:"kind"`
	Field *Field `json:"field,omitempty" yaml:"field,omitempty"`
	If    *If    `json:"if,omitempty" yaml:"if,omitempty"`
	For   *For   `json:"for,omitempty" yaml:"for,omitempty"`
}

type Field struct {
	Name      string  `json:"name" yaml:"name"`
	Anonymous bool    `json:"anonymous,omitempty" yaml:"anonymous,omitempty"`
	Type      string  `json:"type" yaml:"type"`
	Base      string  `json:"base" yaml:"base"`
	Class     string  `json:"class,omitempty" yaml:"class,omitempty"`
	Width     uint32  `json:"width,omitempty" yaml:"width,omitempty"`
	Native    string  `json:"native,omitempty" yaml:"native,omitempty"`
	Optional  bool    `json:"optional,omitempty" yaml:"optional,omitempty"`
	Const     bool    `json:"const,omitempty" yaml:"const,omitempty"`
	Template  bool    `json:"template,omitempty" yaml:"template,omitempty"`
	Args      []*Expr `json:"args,omitempty" yaml:"args,omitempty"`
	Array     *Array  `json:"array,omitempty" yaml:"array,omitempty"`
	Default   *Expr   `json:"default,omitempty" yaml:"default,omitempty"`
	Line      int     `json:"line,omitempty" yaml:"line,omitempty"`
}

type Array struct {
	ToEnd bool  `json:"toEnd,omitempty" yaml:"toEnd,omitempty"`
	Len   *Expr `json:"len,omitempty" yaml:"len,omitempty"`
}

type If struct {
	Cond   *Expr    `json:"cond" yaml:"cond"`
	Then   []Stmt   `json:"then" yaml:"then"`
	ElseIf []ElseIf `json:"elseIf,omitempty" yaml:"elseIf,omitempty"`
	Else   []Stmt   `json:"else,omitempty" yaml:"else,omitempty"`
}

type ElseIf struct {
	Cond *Expr  `json:"cond" yaml:"cond"`
	Body []Stmt `json:"body" yaml:"body"`
}

type For struct {
	Var   string `json:"var" yaml:"var"`
	Start uint64 `json:"start" yaml:"start"`
	Op    string `json:"op,omitempty" yaml:"op,omitempty"`
	Limit *Expr  `json:"limit,omitempty" yaml:"limit,omitempty"`
	Body  []Stmt `json:"body" yaml:"body"`
}

// Expr kinds are "string", "int", "paren", "var" and "binary".
type Expr struct {
	Kind  string  `json:"kind" yaml:"kind"`
	Str   *string `json:"string,omitempty" yaml:"string,omitempty"`
	Int   *uint64 `json:"int,omitempty" yaml:"int,omitempty"`
	Raw   string  `json:"raw,omitempty" yaml:"raw,omitempty"`
	Name  string  `json:"name,omitempty" yaml:"name,omitempty"`
	Op    string  `json:"op,omitempty" yaml:"op,omitempty"`
	X     *Expr   `json:"x,omitempty" yaml:"x,omitempty"`
	Left  *Expr   `json:"left,omitempty" yaml:"left,omitempty"`
	Right *Expr   `json:"right,omitempty" yaml:"right,omitempty"`
}

// NewDocument converts c to its document form.
func NewDocument(c *parser.Class) *Document {
	h := c.Header
	doc := &Document{
		Kind:     "class",
		Name:     h.Name,
		Abstract: h.Abstract,
		Body:     buildStmts(c.Body.Stmts),
		Line:     h.NameSpan.Start.Line,
	}
	if h.Aligned != nil {
		v := h.Aligned.Value
		doc.Aligned = &v
	}
	for _, p := range h.Params {
		doc.Params = append(doc.Params, buildField(p))
	}
	if h.Extends != nil {
		ext := &Extends{Class: h.Extends.Class, Args: []ExtendsArg{}}
		for _, arg := range h.Extends.Args {
			ext.Args = append(ext.Args, ExtendsArg{Name: arg.Name, Value: buildExpr(arg.Value)})
		}
		doc.Extends = ext
	}
	return doc
}

func buildStmts(stmts []parser.Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *parser.VarDecl:
			f := buildField(s)
			out = append(out, Stmt{Kind: "field", Field: &f})
		case *parser.If:
			out = append(out, Stmt{Kind: "if", If: buildIf(s)})
		case *parser.For:
			out = append(out, Stmt{Kind: "for", For: buildFor(s)})
		}
	}
	return out
}

func buildField(d *parser.VarDecl) Field {
	f := Field{
		Name:      d.Name,
		Anonymous: d.Anonymous,
		Type:      d.ISOType,
		Base:      d.Kind.String(),
		Width:     d.Width,
		Native:    d.NativeName,
		Optional:  d.Optional,
		Const:     d.Const,
		Template:  d.Template,
		Default:   buildExpr(d.Default),
		Line:      d.NameSpan.Start.Line,
	}
	if d.Kind == parser.BaseClassRef {
		f.Class = d.TypeName
	}
	for _, arg := range d.ClassArgs {
		f.Args = append(f.Args, buildExpr(arg))
	}
	if d.Array != nil {
		f.Array = &Array{ToEnd: d.Array.ToEnd, Len: buildExpr(d.Array.Len)}
	}
	return f
}

func buildIf(s *parser.If) *If {
	out := &If{
		Cond: buildExpr(s.Cond),
		Then: buildStmts(s.Then),
	}
	for _, ei := range s.ElseIf {
		out.ElseIf = append(out.ElseIf, ElseIf{Cond: buildExpr(ei.Cond), Body: buildStmts(ei.Body)})
	}
	if len(s.Else) > 0 {
		out.Else = buildStmts(s.Else)
	}
	return out
}

func buildFor(s *parser.For) *For {
	out := &For{
		Var:   s.Var,
		Start: s.Start,
		Body:  buildStmts(s.Body),
	}
	if !s.Unbounded() {
		out.Op = s.Op.String()
		out.Limit = buildExpr(s.Limit)
	}
	return out
}

func buildExpr(e parser.Expr) *Expr {
	switch x := e.(type) {
	case *parser.StringLit:
		v := x.Value
		return &Expr{Kind: "string", Str: &v, Raw: x.Raw}
	case *parser.IntLit:
		v := x.Value
		return &Expr{Kind: "int", Int: &v, Raw: x.Raw}
	case *parser.Variable:
		return &Expr{Kind: "var", Name: x.Name}
	case *parser.Paren:
		return &Expr{Kind: "paren", X: buildExpr(x.X)}
	case *parser.Binary:
		return &Expr{Kind: "binary", Op: x.Op.String(), Left: buildExpr(x.Left), Right: buildExpr(x.Right)}
	}
	return nil
}
