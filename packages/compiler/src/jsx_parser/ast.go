package jsx_parser

import (
	"bfc-go/packages/compiler/src/util"
)

// Node is implemented by every AST node produced by the parser
type Node interface {
	SourceSpan() *util.ParseSourceSpan
}

// Expression is implemented by every expression node
type Expression interface {
	Node
	isExpression()
}

// Statement is implemented by every statement node
type Statement interface {
	Node
	isStatement()
}

// Raw returns the verbatim source text covered by a node's span
func Raw(n Node) string {
	span := n.SourceSpan()
	if span == nil {
		return ""
	}
	return span.String()
}

// ---------------------------------------------------------------------------
// Expressions

// Ident represents an identifier reference
type Ident struct {
	Name string
	span *util.ParseSourceSpan
}

// NewIdent creates a new Ident
func NewIdent(name string, span *util.ParseSourceSpan) *Ident {
	return &Ident{Name: name, span: span}
}

func (n *Ident) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Ident) isExpression()                     {}

// StringLit represents a single- or double-quoted string literal
type StringLit struct {
	Value string
	span  *util.ParseSourceSpan
}

// NewStringLit creates a new StringLit
func NewStringLit(value string, span *util.ParseSourceSpan) *StringLit {
	return &StringLit{Value: value, span: span}
}

func (n *StringLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *StringLit) isExpression()                     {}

// NumberLit represents a numeric literal, preserved as written
type NumberLit struct {
	Raw  string
	span *util.ParseSourceSpan
}

// NewNumberLit creates a new NumberLit
func NewNumberLit(raw string, span *util.ParseSourceSpan) *NumberLit {
	return &NumberLit{Raw: raw, span: span}
}

func (n *NumberLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *NumberLit) isExpression()                     {}

// BoolLit represents true or false
type BoolLit struct {
	Value bool
	span  *util.ParseSourceSpan
}

func (n *BoolLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *BoolLit) isExpression()                     {}

// NullLit represents null or undefined
type NullLit struct {
	Undefined bool
	span      *util.ParseSourceSpan
}

func (n *NullLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *NullLit) isExpression()                     {}

// TemplateLit represents a backtick template literal. Quasis always has
// exactly one more element than Exprs.
type TemplateLit struct {
	Quasis []string
	Exprs  []Expression
	span   *util.ParseSourceSpan
}

func (n *TemplateLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *TemplateLit) isExpression()                     {}

// RegexLit represents a regular expression literal
type RegexLit struct {
	Pattern string
	Flags   string
	span    *util.ParseSourceSpan
}

func (n *RegexLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *RegexLit) isExpression()                     {}

// ArrayLit represents an array literal
type ArrayLit struct {
	Elements []Expression
	span     *util.ParseSourceSpan
}

func (n *ArrayLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *ArrayLit) isExpression()                     {}

// ObjectProp represents one property inside an object literal
type ObjectProp struct {
	Key       string
	Value     Expression
	Shorthand bool
	Computed  bool
	Spread    bool
	span      *util.ParseSourceSpan
}

func (n *ObjectProp) SourceSpan() *util.ParseSourceSpan { return n.span }

// ObjectLit represents an object literal
type ObjectLit struct {
	Props []*ObjectProp
	span  *util.ParseSourceSpan
}

func (n *ObjectLit) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *ObjectLit) isExpression()                     {}

// SpreadElement represents `...expr` in call arguments or array literals
type SpreadElement struct {
	Arg  Expression
	span *util.ParseSourceSpan
}

func (n *SpreadElement) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *SpreadElement) isExpression()                     {}

// Member represents property access, computed or not
type Member struct {
	Object   Expression
	Property string
	Computed bool
	Index    Expression
	Optional bool
	span     *util.ParseSourceSpan
}

func (n *Member) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Member) isExpression()                     {}

// Call represents a call expression
type Call struct {
	Callee   Expression
	Args     []Expression
	Optional bool
	span     *util.ParseSourceSpan
}

// NewCall creates a new Call
func NewCall(callee Expression, args []Expression, span *util.ParseSourceSpan) *Call {
	return &Call{Callee: callee, Args: args, span: span}
}

func (n *Call) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Call) isExpression()                     {}

// New represents a `new` expression
type New struct {
	Callee Expression
	Args   []Expression
	span   *util.ParseSourceSpan
}

func (n *New) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *New) isExpression()                     {}

// Unary represents a prefix or postfix unary expression
type Unary struct {
	Op     string
	Arg    Expression
	Prefix bool
	span   *util.ParseSourceSpan
}

func (n *Unary) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Unary) isExpression()                     {}

// Binary represents a binary or logical expression
type Binary struct {
	Op    string
	Left  Expression
	Right Expression
	span  *util.ParseSourceSpan
}

func (n *Binary) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Binary) isExpression()                     {}

// Assign represents an assignment expression
type Assign struct {
	Op     string
	Target Expression
	Value  Expression
	span   *util.ParseSourceSpan
}

func (n *Assign) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Assign) isExpression()                     {}

// Cond represents a ternary conditional expression
type Cond struct {
	Test Expression
	Cons Expression
	Alt  Expression
	span *util.ParseSourceSpan
}

func (n *Cond) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Cond) isExpression()                     {}

// Arrow represents an arrow function. Body is either an Expression or a
// *BlockStmt.
type Arrow struct {
	Params []*Param
	Body   Node
	span   *util.ParseSourceSpan
}

func (n *Arrow) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Arrow) isExpression()                     {}

// Paren represents a parenthesized expression
type Paren struct {
	Expr Expression
	span *util.ParseSourceSpan
}

func (n *Paren) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *Paren) isExpression()                     {}

// ---------------------------------------------------------------------------
// JSX

// JSXAttr represents one attribute on a JSX element
type JSXAttr struct {
	Name   string
	Value  Node // nil, *StringLit or *JSXExpr
	Spread bool
	Expr   Expression // spread expression when Spread is set
	span   *util.ParseSourceSpan
}

func (n *JSXAttr) SourceSpan() *util.ParseSourceSpan { return n.span }

// JSXElement represents a JSX element or component invocation
type JSXElement struct {
	Tag         string
	IsComponent bool
	Attrs       []*JSXAttr
	Children    []Node
	SelfClosing bool
	span        *util.ParseSourceSpan
}

// NewJSXElement creates a new JSXElement
func NewJSXElement(tag string, attrs []*JSXAttr, children []Node, selfClosing bool, span *util.ParseSourceSpan) *JSXElement {
	return &JSXElement{
		Tag:         tag,
		IsComponent: len(tag) > 0 && tag[0] >= 'A' && tag[0] <= 'Z',
		Attrs:       attrs,
		Children:    children,
		SelfClosing: selfClosing,
		span:        span,
	}
}

func (n *JSXElement) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *JSXElement) isExpression()                     {}

// JSXFragment represents `<>...</>`
type JSXFragment struct {
	Children []Node
	span     *util.ParseSourceSpan
}

func (n *JSXFragment) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *JSXFragment) isExpression()                     {}

// JSXExpr represents `{expr}` inside JSX children or attribute values
type JSXExpr struct {
	Expr Expression
	span *util.ParseSourceSpan
}

func (n *JSXExpr) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *JSXExpr) isExpression()                     {}

// JSXText represents a literal text run between JSX tags
type JSXText struct {
	Value string
	span  *util.ParseSourceSpan
}

func (n *JSXText) SourceSpan() *util.ParseSourceSpan { return n.span }

// ---------------------------------------------------------------------------
// Patterns and parameters

// ArrayPattern represents array destructuring, e.g. `[count, setCount]`
type ArrayPattern struct {
	Elements []*Ident
	span     *util.ParseSourceSpan
}

func (n *ArrayPattern) SourceSpan() *util.ParseSourceSpan { return n.span }

// PatternProp represents one entry of an object destructuring pattern
type PatternProp struct {
	Key     string
	Alias   string
	Default Expression
	Rest    bool
	span    *util.ParseSourceSpan
}

func (n *PatternProp) SourceSpan() *util.ParseSourceSpan { return n.span }

// ObjectPattern represents object destructuring, e.g. `{ label, on = false }`
type ObjectPattern struct {
	Props []*PatternProp
	span  *util.ParseSourceSpan
}

func (n *ObjectPattern) SourceSpan() *util.ParseSourceSpan { return n.span }

// Param represents one function parameter
type Param struct {
	Pattern  Node // *Ident, *ObjectPattern or *ArrayPattern
	TypeAnn  *TypeNode
	Default  Expression
	Optional bool
	span     *util.ParseSourceSpan
}

func (n *Param) SourceSpan() *util.ParseSourceSpan { return n.span }

// ---------------------------------------------------------------------------
// Types (structural only, enough for prop shapes)

// TypeMember represents one member of an object type literal or interface
type TypeMember struct {
	Name     string
	Type     string
	Optional bool
	span     *util.ParseSourceSpan
}

func (n *TypeMember) SourceSpan() *util.ParseSourceSpan { return n.span }

// TypeNode represents a type annotation. Either Ref names a
// type/interface, or Members holds an inline object type literal;
// anything else is kept verbatim in Raw.
type TypeNode struct {
	Ref     string
	Members []*TypeMember
	Raw     string
	span    *util.ParseSourceSpan
}

func (n *TypeNode) SourceSpan() *util.ParseSourceSpan { return n.span }

// ---------------------------------------------------------------------------
// Statements

// BlockStmt represents `{ ... }`
type BlockStmt struct {
	Stmts []Statement
	span  *util.ParseSourceSpan
}

func (n *BlockStmt) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *BlockStmt) isStatement()                      {}

// VarDeclarator represents one declarator of a var declaration
type VarDeclarator struct {
	Pattern Node // *Ident, *ArrayPattern or *ObjectPattern
	TypeAnn *TypeNode
	Init    Expression
	span    *util.ParseSourceSpan
}

func (n *VarDeclarator) SourceSpan() *util.ParseSourceSpan { return n.span }

// VarDecl represents a const/let/var declaration statement
type VarDecl struct {
	Kind     string
	Decls    []*VarDeclarator
	exported bool
	span     *util.ParseSourceSpan
}

func (n *VarDecl) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *VarDecl) isStatement()                      {}

// FuncDecl represents a function declaration
type FuncDecl struct {
	Name     string
	Params   []*Param
	Body     *BlockStmt
	Exported bool
	Default  bool
	span     *util.ParseSourceSpan
}

func (n *FuncDecl) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *FuncDecl) isStatement()                      {}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Arg  Expression
	span *util.ParseSourceSpan
}

func (n *ReturnStmt) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *ReturnStmt) isStatement()                      {}

// ExprStmt represents an expression statement
type ExprStmt struct {
	Expr Expression
	span *util.ParseSourceSpan
}

func (n *ExprStmt) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *ExprStmt) isStatement()                      {}

// DirectiveStmt represents a string directive statement such as "use client"
type DirectiveStmt struct {
	Value string
	span  *util.ParseSourceSpan
}

func (n *DirectiveStmt) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *DirectiveStmt) isStatement()                      {}

// IfStmt represents an if statement
type IfStmt struct {
	Test Expression
	Cons Statement
	Alt  Statement // nil, *IfStmt or *BlockStmt
	span *util.ParseSourceSpan
}

func (n *IfStmt) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *IfStmt) isStatement()                      {}

// ImportSpec represents one imported name
type ImportSpec struct {
	Name    string
	Alias   string
	Default bool
}

// ImportDecl represents an import declaration
type ImportDecl struct {
	Specifiers []*ImportSpec
	Source     string
	TypeOnly   bool
	span       *util.ParseSourceSpan
}

func (n *ImportDecl) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *ImportDecl) isStatement()                      {}

// InterfaceDecl represents an interface declaration
type InterfaceDecl struct {
	Name     string
	Extends  []string
	Members  []*TypeMember
	Exported bool
	span     *util.ParseSourceSpan
}

func (n *InterfaceDecl) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *InterfaceDecl) isStatement()                      {}

// TypeAliasDecl represents a type alias declaration. Members is set only
// when the aliased type is an object type literal (possibly intersected
// with named bases listed in Extends).
type TypeAliasDecl struct {
	Name     string
	Extends  []string
	Members  []*TypeMember
	Raw      string
	Exported bool
	span     *util.ParseSourceSpan
}

func (n *TypeAliasDecl) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *TypeAliasDecl) isStatement()                      {}

// RawStmt represents a statement the parser tokenized but does not model.
// Its verbatim source is carried through to client codegen untouched.
type RawStmt struct {
	Text string
	span *util.ParseSourceSpan
}

func (n *RawStmt) SourceSpan() *util.ParseSourceSpan { return n.span }
func (n *RawStmt) isStatement()                      {}

// ---------------------------------------------------------------------------
// File level

// PropShape describes one entry of a component's prop signature
type PropShape struct {
	Name         string
	Type         string
	Optional     bool
	DefaultValue string
	// Opaque marks a pass-through field standing in for an unresolvable
	// external base type.
	Opaque bool
}

// SourceComponent represents one exported component function found in a
// source file. Immutable once built.
type SourceComponent struct {
	Name              string
	IsClientComponent bool
	PropsShape        []*PropShape
	Func              *FuncDecl
}

// SourceFile represents a fully parsed source file
type SourceFile struct {
	File       *util.ParseSourceFile
	Statements []Statement
	Components []*SourceComponent
	// Helpers holds non-component top-level functions, keyed by name,
	// referenced for literal inlining.
	Helpers map[string]*FuncDecl
	// Interfaces and TypeAliases hold local type declarations used to
	// resolve prop shapes.
	Interfaces  map[string]*InterfaceDecl
	TypeAliases map[string]*TypeAliasDecl
	Imports     []*ImportDecl
	// UseClient is set when the file opens with a "use client" directive.
	UseClient bool
	Errors    []*util.ParseError
}

// ImportedNames returns every name this file imports, mapped to its module
// source, used to refuse resolving external type bases.
func (f *SourceFile) ImportedNames() map[string]string {
	names := map[string]string{}
	for _, imp := range f.Imports {
		for _, spec := range imp.Specifiers {
			name := spec.Name
			if spec.Alias != "" {
				name = spec.Alias
			}
			names[name] = imp.Source
		}
	}
	return names
}
