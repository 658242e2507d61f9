package jsx_parser

import (
	"fmt"
	"strings"

	"bfc-go/packages/compiler/src/util"
)

// binding powers for the expression grammar, lowest first
const (
	bpLowest = iota
	bpAssign
	bpCond
	bpNullish
	bpOr
	bpAnd
	bpBitOr
	bpBitXor
	bpBitAnd
	bpEquality
	bpRelational
	bpShift
	bpAdditive
	bpMultiplicative
	bpExponent
	bpUnary
	bpPostfix
)

var binaryPowers = map[string]int{
	"??": bpNullish,
	"||": bpOr,
	"&&": bpAnd,
	"|":  bpBitOr,
	"^":  bpBitXor,
	"&":  bpBitAnd,
	"==": bpEquality, "!=": bpEquality, "===": bpEquality, "!==": bpEquality,
	"<": bpRelational, ">": bpRelational, "<=": bpRelational, ">=": bpRelational,
	"<<": bpShift, ">>": bpShift, ">>>": bpShift,
	"+": bpAdditive, "-": bpAdditive,
	"*": bpMultiplicative, "/": bpMultiplicative, "%": bpMultiplicative,
	"**": bpExponent,
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"**=": true, "&&=": true, "||=": true, "??=": true, "&=": true,
	"|=": true, "^=": true,
}

// parseAbort unwinds the parser on a fatal syntax error
type parseAbort struct{}

// Parser parses one JSX+TS source file
type Parser struct {
	lexer  *Lexer
	file   *util.ParseSourceFile
	tok    Token
	errors []*util.ParseError
}

// NewParser creates a new Parser over the given source file
func NewParser(file *util.ParseSourceFile) *Parser {
	return &Parser{lexer: NewLexer(file), file: file}
}

// ParseFile parses source text into a SourceFile. Syntax errors are fatal
// for the file and reported on the result; the returned value is never nil.
func ParseFile(content, url string) *SourceFile {
	file := util.NewParseSourceFile(content, url)
	p := NewParser(file)
	result := &SourceFile{
		File:        file,
		Helpers:     map[string]*FuncDecl{},
		Interfaces:  map[string]*InterfaceDecl{},
		TypeAliases: map[string]*TypeAliasDecl{},
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(parseAbort); !ok {
					panic(r)
				}
			}
		}()
		p.next()
		for p.tok.Type != TokenTypeEOF {
			stmt := p.parseStatement()
			if stmt != nil {
				result.Statements = append(result.Statements, stmt)
			}
		}
	}()

	result.Errors = append(result.Errors, p.lexer.Errors()...)
	result.Errors = append(result.Errors, p.errors...)
	collectFileStructure(result)
	return result
}

// collectFileStructure indexes declarations and detects the "use client"
// directive and component functions.
func collectFileStructure(f *SourceFile) {
	for i, stmt := range f.Statements {
		switch s := stmt.(type) {
		case *DirectiveStmt:
			if s.Value != "use client" {
				continue
			}
			if i == 0 {
				f.UseClient = true
			} else {
				f.Errors = append(f.Errors, util.NewParseWarning(s.SourceSpan(), "BF2001",
					`"use client" directive must be the first statement; treated as absent`))
			}
		case *ImportDecl:
			f.Imports = append(f.Imports, s)
		case *InterfaceDecl:
			f.Interfaces[s.Name] = s
		case *TypeAliasDecl:
			f.TypeAliases[s.Name] = s
		case *FuncDecl:
			if s.Exported && isComponentFunc(s) {
				f.Components = append(f.Components, &SourceComponent{
					Name:              s.Name,
					IsClientComponent: f.UseClient,
					Func:              s,
				})
			} else {
				f.Helpers[s.Name] = s
			}
		case *VarDecl:
			if fn, name, exported := arrowComponent(s); fn != nil {
				if exported && isComponentFunc(fn) {
					f.Components = append(f.Components, &SourceComponent{
						Name:              name,
						IsClientComponent: f.UseClient,
						Func:              fn,
					})
				} else {
					f.Helpers[name] = fn
				}
			}
		}
	}
	for _, c := range f.Components {
		shape, errs := ExtractProps(f, c.Func)
		c.PropsShape = shape
		f.Errors = append(f.Errors, errs...)
	}
}

// isComponentFunc reports whether a function is a component: capitalized
// name and a JSX-producing return somewhere in its body.
func isComponentFunc(fn *FuncDecl) bool {
	if fn.Name == "" || !(fn.Name[0] >= 'A' && fn.Name[0] <= 'Z') {
		return false
	}
	return returnsJSX(fn.Body)
}

func returnsJSX(block *BlockStmt) bool {
	if block == nil {
		return false
	}
	for _, stmt := range block.Stmts {
		switch s := stmt.(type) {
		case *ReturnStmt:
			if isJSXExpr(s.Arg) {
				return true
			}
		case *IfStmt:
			if cons, ok := s.Cons.(*BlockStmt); ok && returnsJSX(cons) {
				return true
			}
			if alt, ok := s.Alt.(*BlockStmt); ok && returnsJSX(alt) {
				return true
			}
			if alt, ok := s.Alt.(*IfStmt); ok && returnsJSX(&BlockStmt{Stmts: []Statement{alt}}) {
				return true
			}
		}
	}
	return false
}

func isJSXExpr(e Expression) bool {
	switch v := e.(type) {
	case *JSXElement, *JSXFragment:
		return true
	case *Paren:
		return isJSXExpr(v.Expr)
	}
	return false
}

// arrowComponent unwraps `export const Name = (...) => ...` declarations
// into a synthetic FuncDecl.
func arrowComponent(decl *VarDecl) (*FuncDecl, string, bool) {
	if len(decl.Decls) != 1 {
		return nil, "", false
	}
	d := decl.Decls[0]
	name, ok := d.Pattern.(*Ident)
	if !ok {
		return nil, "", false
	}
	arrow, ok := d.Init.(*Arrow)
	if !ok {
		return nil, "", false
	}
	body, ok := arrow.Body.(*BlockStmt)
	if !ok {
		if expr, isExpr := arrow.Body.(Expression); isExpr {
			body = &BlockStmt{
				Stmts: []Statement{&ReturnStmt{Arg: expr, span: expr.SourceSpan()}},
				span:  arrow.SourceSpan(),
			}
		} else {
			return nil, "", false
		}
	}
	fn := &FuncDecl{
		Name:     name.Name,
		Params:   arrow.Params,
		Body:     body,
		Exported: decl.exported,
		span:     decl.SourceSpan(),
	}
	return fn, name.Name, decl.exported
}

// ---------------------------------------------------------------------------
// token handling

func (p *Parser) next() {
	p.tok = p.lexer.Next()
}

// nextJSXText switches the lexer into raw text mode for JSX children
func (p *Parser) nextJSXText() {
	p.tok = p.lexer.NextJSXText()
}

// nextTag lexes the token following `<` at a JSX tag boundary, where a
// slash opens a closing tag rather than a regex literal
func (p *Parser) nextTag() {
	p.tok = p.lexer.NextNoRegex()
}

type checkpoint struct {
	mark    Mark
	tok     Token
	errsLen int
}

func (p *Parser) checkpoint() checkpoint {
	return checkpoint{mark: p.lexer.Mark(), tok: p.tok, errsLen: len(p.errors)}
}

func (p *Parser) restore(c checkpoint) {
	p.lexer.ResetTo(c.mark)
	p.tok = c.tok
	p.errors = p.errors[:c.errsLen]
}

func (p *Parser) fatal(code, msg string) {
	p.errors = append(p.errors, util.NewParseError(p.tok.Span, code, msg))
	panic(parseAbort{})
}

func (p *Parser) expect(punct string) Token {
	if !p.tok.Is(punct) {
		p.fatal("BF1010", fmt.Sprintf("expected %q but found %q", punct, p.tok.Text))
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *Parser) expectIdent() Token {
	if p.tok.Type != TokenTypeIdent {
		p.fatal("BF1011", fmt.Sprintf("expected identifier but found %q", p.tok.Text))
	}
	tok := p.tok
	p.next()
	return tok
}

func (p *Parser) accept(punct string) bool {
	if p.tok.Is(punct) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) acceptIdent(name string) bool {
	if p.tok.IsIdent(name) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) spanFrom(start *util.ParseLocation) *util.ParseSourceSpan {
	end := p.tok.Span.Start
	return util.NewParseSourceSpan(start, end, nil, nil)
}

func (p *Parser) startLoc() *util.ParseLocation {
	return p.tok.Span.Start
}

// ---------------------------------------------------------------------------
// statements

func (p *Parser) parseStatement() Statement {
	start := p.startLoc()
	switch {
	case p.tok.IsIdent("import"):
		return p.parseImport()
	case p.tok.IsIdent("export"):
		return p.parseExport()
	case p.tok.IsIdent("function"):
		return p.parseFunction(false, false)
	case p.tok.IsIdent("const") || p.tok.IsIdent("let") || p.tok.IsIdent("var"):
		return p.parseVarDecl(false)
	case p.tok.IsIdent("return"):
		return p.parseReturn()
	case p.tok.IsIdent("if"):
		return p.parseIf()
	case p.tok.IsIdent("interface"):
		return p.parseInterface(false)
	case p.tok.IsIdent("type"):
		if stmt := p.tryParseTypeAlias(false); stmt != nil {
			return stmt
		}
	case p.tok.IsIdent("for") || p.tok.IsIdent("while") || p.tok.IsIdent("do") ||
		p.tok.IsIdent("switch") || p.tok.IsIdent("try") || p.tok.IsIdent("throw"):
		return p.parseRawStmt()
	case p.tok.Is("{"):
		return p.parseBlock()
	case p.tok.Is(";"):
		p.next()
		return nil
	case p.tok.Type == TokenTypeString:
		value := p.tok.Text
		p.next()
		p.accept(";")
		return &DirectiveStmt{Value: value, span: p.spanFrom(start)}
	}
	expr := p.parseExpression()
	p.accept(";")
	return &ExprStmt{Expr: expr, span: p.spanFrom(start)}
}

func (p *Parser) parseExport() Statement {
	p.next() // export
	isDefault := p.acceptIdent("default")
	switch {
	case p.tok.IsIdent("function"):
		return p.parseFunction(true, isDefault)
	case p.tok.IsIdent("const") || p.tok.IsIdent("let") || p.tok.IsIdent("var"):
		decl := p.parseVarDecl(true)
		return decl
	case p.tok.IsIdent("interface"):
		return p.parseInterface(true)
	case p.tok.IsIdent("type"):
		if stmt := p.tryParseTypeAlias(true); stmt != nil {
			return stmt
		}
		p.fatal("BF1012", "malformed type alias")
	case isDefault:
		// export default <expr>
		start := p.startLoc()
		expr := p.parseExpression()
		p.accept(";")
		return &ExprStmt{Expr: expr, span: p.spanFrom(start)}
	}
	p.fatal("BF1013", fmt.Sprintf("unsupported export form at %q", p.tok.Text))
	return nil
}

func (p *Parser) parseImport() Statement {
	start := p.startLoc()
	p.next() // import
	decl := &ImportDecl{}
	if p.acceptIdent("type") {
		decl.TypeOnly = true
	}
	if p.tok.Type == TokenTypeString {
		// bare side-effect import
		decl.Source = p.tok.Text
		p.next()
	} else {
		if p.tok.Type == TokenTypeIdent && !p.tok.Is("{") {
			decl.Specifiers = append(decl.Specifiers, &ImportSpec{Name: p.tok.Text, Default: true})
			p.next()
			p.accept(",")
		}
		if p.accept("{") {
			for !p.tok.Is("}") && p.tok.Type != TokenTypeEOF {
				spec := &ImportSpec{Name: p.expectIdent().Text}
				if p.acceptIdent("as") {
					spec.Alias = p.expectIdent().Text
				}
				decl.Specifiers = append(decl.Specifiers, spec)
				if !p.accept(",") {
					break
				}
			}
			p.expect("}")
		}
		if !p.acceptIdent("from") {
			p.fatal("BF1014", "expected \"from\" in import declaration")
		}
		if p.tok.Type != TokenTypeString {
			p.fatal("BF1014", "expected module specifier string")
		}
		decl.Source = p.tok.Text
		p.next()
	}
	p.accept(";")
	decl.span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseFunction(exported, isDefault bool) Statement {
	start := p.startLoc()
	p.next() // function
	name := ""
	if p.tok.Type == TokenTypeIdent {
		name = p.tok.Text
		p.next()
	}
	params := p.parseParams()
	if p.accept(":") {
		p.scanTypeRaw()
	}
	body := p.parseBlock()
	return &FuncDecl{
		Name:     name,
		Params:   params,
		Body:     body,
		Exported: exported,
		Default:  isDefault,
		span:     p.spanFrom(start),
	}
}

func (p *Parser) parseParams() []*Param {
	p.expect("(")
	var params []*Param
	for !p.tok.Is(")") && p.tok.Type != TokenTypeEOF {
		params = append(params, p.parseParam())
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return params
}

func (p *Parser) parseParam() *Param {
	start := p.startLoc()
	param := &Param{}
	switch {
	case p.tok.Is("{"):
		param.Pattern = p.parseObjectPattern()
	case p.tok.Is("["):
		param.Pattern = p.parseArrayPattern()
	default:
		name := p.expectIdent()
		param.Pattern = NewIdent(name.Text, name.Span)
	}
	if p.accept("?") {
		param.Optional = true
	}
	if p.accept(":") {
		param.TypeAnn = p.parseTypeAnn()
	}
	if p.accept("=") {
		param.Default = p.parseAssignExpr()
	}
	param.span = p.spanFrom(start)
	return param
}

func (p *Parser) parseObjectPattern() *ObjectPattern {
	start := p.startLoc()
	p.expect("{")
	pattern := &ObjectPattern{}
	for !p.tok.Is("}") && p.tok.Type != TokenTypeEOF {
		propStart := p.startLoc()
		prop := &PatternProp{}
		if p.accept("...") {
			prop.Rest = true
			prop.Key = p.expectIdent().Text
		} else {
			prop.Key = p.expectIdent().Text
			if p.accept(":") {
				prop.Alias = p.expectIdent().Text
			}
			if p.accept("=") {
				prop.Default = p.parseAssignExpr()
			}
		}
		prop.span = p.spanFrom(propStart)
		pattern.Props = append(pattern.Props, prop)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	pattern.span = p.spanFrom(start)
	return pattern
}

func (p *Parser) parseArrayPattern() *ArrayPattern {
	start := p.startLoc()
	p.expect("[")
	pattern := &ArrayPattern{}
	for !p.tok.Is("]") && p.tok.Type != TokenTypeEOF {
		name := p.expectIdent()
		pattern.Elements = append(pattern.Elements, NewIdent(name.Text, name.Span))
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	pattern.span = p.spanFrom(start)
	return pattern
}

func (p *Parser) parseVarDecl(exported bool) *VarDecl {
	start := p.startLoc()
	kind := p.tok.Text
	p.next()
	decl := &VarDecl{Kind: kind, exported: exported}
	for {
		dStart := p.startLoc()
		d := &VarDeclarator{}
		switch {
		case p.tok.Is("["):
			d.Pattern = p.parseArrayPattern()
		case p.tok.Is("{"):
			d.Pattern = p.parseObjectPattern()
		default:
			name := p.expectIdent()
			d.Pattern = NewIdent(name.Text, name.Span)
		}
		if p.accept(":") {
			d.TypeAnn = p.parseTypeAnn()
		}
		if p.accept("=") {
			d.Init = p.parseAssignExpr()
		}
		d.span = p.spanFrom(dStart)
		decl.Decls = append(decl.Decls, d)
		if !p.accept(",") {
			break
		}
	}
	p.accept(";")
	decl.span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseReturn() Statement {
	start := p.startLoc()
	p.next() // return
	stmt := &ReturnStmt{}
	if !p.tok.Is(";") && !p.tok.Is("}") && p.tok.Type != TokenTypeEOF {
		stmt.Arg = p.parseExpression()
	}
	p.accept(";")
	stmt.span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseIf() Statement {
	start := p.startLoc()
	p.next() // if
	p.expect("(")
	test := p.parseExpression()
	p.expect(")")
	stmt := &IfStmt{Test: test}
	stmt.Cons = p.parseStatement()
	if p.acceptIdent("else") {
		stmt.Alt = p.parseStatement()
	}
	stmt.span = p.spanFrom(start)
	return stmt
}

func (p *Parser) parseBlock() *BlockStmt {
	start := p.startLoc()
	p.expect("{")
	block := &BlockStmt{}
	for !p.tok.Is("}") && p.tok.Type != TokenTypeEOF {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
		}
	}
	p.expect("}")
	block.span = p.spanFrom(start)
	return block
}

// parseRawStmt consumes a statement form the compiler does not model
// (loops, switch, try) as balanced raw text. The text survives verbatim
// into client codegen.
func (p *Parser) parseRawStmt() Statement {
	start := p.startLoc()
	depth := 0
	for p.tok.Type != TokenTypeEOF {
		switch {
		case p.tok.Is("{") || p.tok.Is("(") || p.tok.Is("["):
			depth++
		case p.tok.Is(")") || p.tok.Is("]"):
			depth--
		case p.tok.Is("}"):
			depth--
			if depth == 0 {
				p.next()
				// `} else`, `} catch`, `} while`, `} finally` continue the
				// same statement
				if p.tok.IsIdent("else") || p.tok.IsIdent("catch") ||
					p.tok.IsIdent("finally") || p.tok.IsIdent("while") {
					continue
				}
				span := p.spanFrom(start)
				return &RawStmt{Text: span.String(), span: span}
			}
		case p.tok.Is(";") && depth == 0:
			p.next()
			span := p.spanFrom(start)
			return &RawStmt{Text: span.String(), span: span}
		}
		p.next()
	}
	span := p.spanFrom(start)
	return &RawStmt{Text: span.String(), span: span}
}

func (p *Parser) parseInterface(exported bool) Statement {
	start := p.startLoc()
	p.next() // interface
	decl := &InterfaceDecl{Name: p.expectIdent().Text, Exported: exported}
	if p.acceptIdent("extends") {
		for {
			decl.Extends = append(decl.Extends, p.expectIdent().Text)
			p.skipGenericArgs()
			if !p.accept(",") {
				break
			}
		}
	}
	decl.Members = p.parseTypeMembers()
	decl.span = p.spanFrom(start)
	return decl
}

// tryParseTypeAlias parses `type Name = ...`; returns nil when the `type`
// identifier is actually an expression.
func (p *Parser) tryParseTypeAlias(exported bool) Statement {
	c := p.checkpoint()
	start := p.startLoc()
	p.next() // type
	if p.tok.Type != TokenTypeIdent {
		p.restore(c)
		return nil
	}
	name := p.tok.Text
	p.next()
	if !p.accept("=") {
		p.restore(c)
		return nil
	}
	decl := &TypeAliasDecl{Name: name, Exported: exported}
	for {
		switch {
		case p.tok.Is("{"):
			decl.Members = append(decl.Members, p.parseTypeMembers()...)
		case p.tok.Type == TokenTypeIdent:
			decl.Extends = append(decl.Extends, p.tok.Text)
			p.next()
			p.skipGenericArgs()
		default:
			decl.Raw = p.scanTypeRaw()
		}
		if !p.accept("&") {
			break
		}
	}
	p.accept(";")
	decl.span = p.spanFrom(start)
	return decl
}

func (p *Parser) parseTypeMembers() []*TypeMember {
	p.expect("{")
	var members []*TypeMember
	for !p.tok.Is("}") && p.tok.Type != TokenTypeEOF {
		start := p.startLoc()
		m := &TypeMember{Name: p.expectIdent().Text}
		if p.accept("?") {
			m.Optional = true
		}
		p.expect(":")
		m.Type = p.scanTypeRaw()
		m.span = p.spanFrom(start)
		members = append(members, m)
		for p.accept(";") || p.accept(",") {
		}
	}
	p.expect("}")
	return members
}

// parseTypeAnn parses a type annotation in a position terminated by `,`,
// `)`, `=`, `;` or `}` at depth zero.
func (p *Parser) parseTypeAnn() *TypeNode {
	start := p.startLoc()
	if p.tok.Is("{") {
		members := p.parseTypeMembers()
		return &TypeNode{Members: members, span: p.spanFrom(start)}
	}
	if p.tok.Type == TokenTypeIdent {
		c := p.checkpoint()
		name := p.tok.Text
		p.next()
		p.skipGenericArgs()
		if p.tok.Is(",") || p.tok.Is(")") || p.tok.Is("=") || p.tok.Is(";") || p.tok.Is("}") {
			span := p.spanFrom(start)
			return &TypeNode{Ref: name, Raw: span.String(), span: span}
		}
		p.restore(c)
	}
	raw := p.scanTypeRaw()
	return &TypeNode{Raw: raw, span: p.spanFrom(start)}
}

// scanTypeRaw consumes tokens of a type expression as raw text
func (p *Parser) scanTypeRaw() string {
	start := p.startLoc()
	depth := 0
	for p.tok.Type != TokenTypeEOF {
		switch {
		case p.tok.Is("{") || p.tok.Is("(") || p.tok.Is("[") || p.tok.Is("<"):
			depth++
		case p.tok.Is("}") || p.tok.Is(")") || p.tok.Is("]") || p.tok.Is(">"):
			if depth == 0 {
				return strings.TrimSpace(p.spanFrom(start).String())
			}
			depth--
		case depth == 0 && (p.tok.Is(",") || p.tok.Is("=") || p.tok.Is(";") || p.tok.Is("=>")):
			return strings.TrimSpace(p.spanFrom(start).String())
		}
		p.next()
	}
	return strings.TrimSpace(p.spanFrom(start).String())
}

// skipGenericArgs skips `<...>` after a type name, if present
func (p *Parser) skipGenericArgs() {
	if !p.tok.Is("<") {
		return
	}
	depth := 0
	for p.tok.Type != TokenTypeEOF {
		if p.tok.Is("<") {
			depth++
		} else if p.tok.Is(">") {
			depth--
			if depth == 0 {
				p.next()
				return
			}
		}
		p.next()
	}
}
