package parser

// Class is one complete box definition.
type Class struct {
	Header ClassHeader
	Body   ClassBody
}

func (c *Class) Name() string {
	return c.Header.Name
}

type ClassHeader struct {
	// Aligned is nil when no aligned(n) prefix was given.
	Aligned  *Aligned
	Abstract bool
	Name     string
	NameSpan Span
	Params   []*VarDecl
	Extends  *Extends
}

// Aligned is a byte alignment constraint on the start of the box.
type Aligned struct {
	Value uint32
	Loc   Span
}

// Extends is the inheritance edge of a class: the base class name and the
// arguments handed to its constructor. It is resolved by a later linking
// pass, never by the parser.
type Extends struct {
	Class string
	Args  []ExtendsArg
	Loc   Span
}

// ExtendsArg is one argument of an extends clause. A positional literal
// has only Value; a pass-through of a header parameter has only Name; a
// named argument has both.
type ExtendsArg struct {
	Name  string
	Value Expr
	Loc   Span
}

func (a ExtendsArg) IsPositional() bool  { return a.Name == "" }
func (a ExtendsArg) IsPassThrough() bool { return a.Name != "" && a.Value == nil }

type ClassBody struct {
	Stmts []Stmt
	Loc   Span
}

// Stmt is one of *VarDecl, *If or *For.
type Stmt interface {
	Span() Span
	stmtNode()
}

// BaseKind is the base type of a field declaration.
type BaseKind int

const (
	BaseSignedInt BaseKind = iota + 1
	BaseUnsignedInt
	BaseBit
	BaseClassRef
	BasePrimitive
)

var baseKindNames = map[BaseKind]string{
	BaseSignedInt:   "signed-int",
	BaseUnsignedInt: "unsigned-int",
	BaseBit:         "bit",
	BaseClassRef:    "class",
	BasePrimitive:   "primitive",
}

func (k BaseKind) String() string {
	if name, ok := baseKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Sized reports whether declarations of this kind carry a bit width.
func (k BaseKind) Sized() bool {
	return k == BaseSignedInt || k == BaseUnsignedInt || k == BaseBit
}

// NativeType is the scalar a sized field is stored in.
type NativeType int

const (
	NativeNone NativeType = iota
	NativeInt8
	NativeInt16
	NativeInt32
	NativeInt64
	NativeUint8
	NativeUint16
	NativeUint32
	NativeUint64
	NativeBool
	// NativeFlags is the 24-bit flags field of a full box.
	NativeFlags
)

var nativeTypeNames = map[NativeType]string{
	NativeNone:   "",
	NativeInt8:   "int8",
	NativeInt16:  "int16",
	NativeInt32:  "int32",
	NativeInt64:  "int64",
	NativeUint8:  "uint8",
	NativeUint16: "uint16",
	NativeUint32: "uint32",
	NativeUint64: "uint64",
	NativeBool:   "bool",
	NativeFlags:  "Flags",
}

func (t NativeType) String() string {
	return nativeTypeNames[t]
}

// VarDecl is a field declaration, or a constructor parameter in a class
// header.
type VarDecl struct {
	Optional bool
	Template bool
	Const    bool

	// ISOType is the declared type as written, with modifiers, for
	// diagnostics: "const unsigned int".
	ISOType string

	Kind BaseKind
	// TypeName is the referenced class for BaseClassRef and the keyword
	// for BasePrimitive.
	TypeName string
	// ClassArgs are the constructor arguments of an embedded class
	// instance, not resolved here.
	ClassArgs []Expr

	// Width is the literal bit width of sized kinds and 0 otherwise.
	Width  uint32
	Native NativeType
	// NativeName is the host type name of the field. It starts out as
	// Native.String() (or TypeName for unsized kinds) and can be
	// overridden by an annotation.
	NativeName string

	Array *Array

	Name      string
	NameSpan  Span
	Anonymous bool

	Default Expr

	Loc Span
}

func (d *VarDecl) Span() Span { return d.Loc }
func (*VarDecl) stmtNode()    {}

// GoName returns Name escaped so it is usable as a Go identifier.
func (d *VarDecl) GoName() string {
	return EscapeName(d.Name)
}

// Array is the array suffix of a declaration.
type Array struct {
	// ToEnd marks an empty bracket pair: read until the end of the
	// enclosing container.
	ToEnd bool
	// Len is the element count; nil when ToEnd is set.
	Len Expr
	Loc Span
}

// Count returns the array length when it is an integer literal.
func (a *Array) Count() (uint64, bool) {
	if a == nil || a.ToEnd {
		return 0, false
	}
	lit, ok := a.Len.(*IntLit)
	if !ok {
		return 0, false
	}
	return lit.Value, true
}

// If is a full if / else if / else chain.
type If struct {
	Cond   Expr
	Then   []Stmt
	ElseIf []*ElseIf
	// Else is empty, not nil-checked, when the chain has no else branch.
	Else []Stmt
	Loc  Span
}

func (s *If) Span() Span { return s.Loc }
func (*If) stmtNode()    {}

type ElseIf struct {
	Cond Expr
	Body []Stmt
	Loc  Span
}

// For is the bounded loop: for (v = Start; [v Op Limit]; v++) { Body }.
type For struct {
	Var   string
	Start uint64
	// Op is OpLT or OpLE, or zero when the loop runs to the end of the
	// enclosing container.
	Op    BinOp
	Limit Expr
	Body  []Stmt
	Loc   Span
}

func (s *For) Span() Span { return s.Loc }
func (*For) stmtNode()    {}

// Unbounded reports whether the loop has no condition.
func (s *For) Unbounded() bool {
	return s.Limit == nil
}

// Expr is one of *StringLit, *IntLit, *Paren, *Variable or *Binary.
type Expr interface {
	Span() Span
	exprNode()
}

type StringLit struct {
	Value string
	// Raw is the literal as written, quotes included.
	Raw string
	Loc Span
}

type IntLit struct {
	Value uint64
	// Raw is the literal as written: "0x0100".
	Raw string
	Loc Span
}

// Paren preserves explicit grouping.
type Paren struct {
	X   Expr
	Loc Span
}

type Variable struct {
	Name string
	Loc  Span
}

// Binary is always right-recursive: a - b - c is Binary{a, -, Binary{b, -, c}}.
type Binary struct {
	Left  Expr
	Op    BinOp
	Right Expr
	Loc   Span
}

func (e *StringLit) Span() Span { return e.Loc }
func (e *IntLit) Span() Span    { return e.Loc }
func (e *Paren) Span() Span     { return e.Loc }
func (e *Variable) Span() Span  { return e.Loc }
func (e *Binary) Span() Span    { return e.Loc }

func (*StringLit) exprNode() {}
func (*IntLit) exprNode()    {}
func (*Paren) exprNode()     {}
func (*Variable) exprNode()  {}
func (*Binary) exprNode()    {}

// BinOp is a binary operator of the expression grammar.
type BinOp int

const (
	OpAdd BinOp = iota + 1
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpLE
	OpLT
	OpGE
	OpGT
	OpEQ
	OpNE
	OpShl
	OpShr
	// OpBitAnd is the single & used by flag tests like (flags & 1).
	OpBitAnd
)

var binOpTokens = map[TokenKind]BinOp{
	TokenPlus:   OpAdd,
	TokenMinus:  OpSub,
	TokenStar:   OpMul,
	TokenSlash:  OpDiv,
	TokenAnd:    OpAnd,
	TokenOr:     OpOr,
	TokenLE:     OpLE,
	TokenLT:     OpLT,
	TokenGE:     OpGE,
	TokenGT:     OpGT,
	TokenEQ:     OpEQ,
	TokenNE:     OpNE,
	TokenShl:    OpShl,
	TokenShr:    OpShr,
	TokenBitAnd: OpBitAnd,
}

var binOpKinds = func() map[BinOp]TokenKind {
	m := make(map[BinOp]TokenKind, len(binOpTokens))
	for kind, op := range binOpTokens {
		m[op] = kind
	}
	return m
}()

// TokenKind returns the token the operator is written with.
func (op BinOp) TokenKind() TokenKind {
	return binOpKinds[op]
}

func (op BinOp) String() string {
	if kind, ok := binOpKinds[op]; ok {
		return kind.String()
	}
	return "?"
}
