package jsx_parser

import (
	"fmt"
	"strings"

	"bfc-go/packages/compiler/src/util"
)

// parseExpression parses a full expression
func (p *Parser) parseExpression() Expression {
	return p.parseAssignExpr()
}

func (p *Parser) parseAssignExpr() Expression {
	start := p.startLoc()

	// single-identifier arrow: `x => ...`
	if p.tok.Type == TokenTypeIdent && !reservedWords[p.tok.Text] {
		c := p.checkpoint()
		name := p.tok
		p.next()
		if p.tok.Is("=>") {
			param := &Param{Pattern: NewIdent(name.Text, name.Span), span: name.Span}
			return p.parseArrowBody([]*Param{param}, start)
		}
		p.restore(c)
	}

	// parenthesized arrow: `(a, b = 1) => ...`
	if p.tok.Is("(") {
		c := p.checkpoint()
		params, ok := p.tryParseArrowHead()
		if ok {
			return p.parseArrowBody(params, start)
		}
		p.restore(c)
	}

	expr := p.parseCond()
	if p.tok.Type == TokenTypePunct && assignOps[p.tok.Text] {
		op := p.tok.Text
		p.next()
		value := p.parseAssignExpr()
		return &Assign{Op: op, Target: expr, Value: value, span: p.spanFrom(start)}
	}
	return expr
}

// tryParseArrowHead speculatively parses `( params )` and reports whether
// an `=>` follows.
func (p *Parser) tryParseArrowHead() (params []*Param, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, isAbort := r.(parseAbort); isAbort {
				params, ok = nil, false
				return
			}
			panic(r)
		}
	}()
	params = p.parseParams()
	if p.accept(":") {
		p.scanTypeRaw()
	}
	if !p.tok.Is("=>") {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseArrowBody(params []*Param, start *util.ParseLocation) Expression {
	p.expect("=>")
	arrow := &Arrow{Params: params}
	if p.tok.Is("{") {
		arrow.Body = p.parseBlock()
	} else {
		arrow.Body = p.parseAssignExpr()
	}
	arrow.span = p.spanFrom(start)
	return arrow
}

func (p *Parser) parseCond() Expression {
	start := p.startLoc()
	test := p.parseBinary(bpLowest)
	if !p.tok.Is("?") {
		return test
	}
	p.next()
	cons := p.parseAssignExpr()
	p.expect(":")
	alt := p.parseAssignExpr()
	return &Cond{Test: test, Cons: cons, Alt: alt, span: p.spanFrom(start)}
}

func (p *Parser) parseBinary(minBp int) Expression {
	start := p.startLoc()
	left := p.parseUnary()
	for {
		if p.tok.Type != TokenTypePunct {
			return left
		}
		bp, isBinary := binaryPowers[p.tok.Text]
		if !isBinary || bp <= minBp {
			return left
		}
		op := p.tok.Text
		p.next()
		// `**` is right-associative
		rightBp := bp
		if op == "**" {
			rightBp = bp - 1
		}
		right := p.parseBinary(rightBp)
		left = &Binary{Op: op, Left: left, Right: right, span: p.spanFrom(start)}
	}
}

func (p *Parser) parseUnary() Expression {
	start := p.startLoc()
	if p.tok.Is("!") || p.tok.Is("~") || p.tok.Is("+") || p.tok.Is("-") ||
		p.tok.Is("++") || p.tok.Is("--") {
		op := p.tok.Text
		p.next()
		arg := p.parseUnary()
		return &Unary{Op: op, Arg: arg, Prefix: true, span: p.spanFrom(start)}
	}
	if p.tok.IsIdent("typeof") || p.tok.IsIdent("void") || p.tok.IsIdent("delete") ||
		p.tok.IsIdent("await") {
		op := p.tok.Text
		p.next()
		arg := p.parseUnary()
		return &Unary{Op: op, Arg: arg, Prefix: true, span: p.spanFrom(start)}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() Expression {
	start := p.startLoc()
	expr := p.parseCallMember()
	if p.tok.Is("++") || p.tok.Is("--") {
		op := p.tok.Text
		p.next()
		return &Unary{Op: op, Arg: expr, Prefix: false, span: p.spanFrom(start)}
	}
	return expr
}

func (p *Parser) parseCallMember() Expression {
	start := p.startLoc()
	var expr Expression
	if p.tok.IsIdent("new") {
		p.next()
		callee := p.parseCallMember()
		n := &New{Callee: callee}
		if call, isCall := callee.(*Call); isCall {
			n.Callee = call.Callee
			n.Args = call.Args
		}
		n.span = p.spanFrom(start)
		return n
	}
	expr = p.parsePrimary()
	for {
		switch {
		case p.tok.Is("."):
			p.next()
			name := p.expectIdent()
			expr = &Member{Object: expr, Property: name.Text, span: p.spanFrom(start)}
		case p.tok.Is("?."):
			p.next()
			if p.tok.Is("(") {
				args := p.parseArgs()
				expr = &Call{Callee: expr, Args: args, Optional: true, span: p.spanFrom(start)}
				continue
			}
			name := p.expectIdent()
			expr = &Member{Object: expr, Property: name.Text, Optional: true, span: p.spanFrom(start)}
		case p.tok.Is("["):
			p.next()
			index := p.parseExpression()
			p.expect("]")
			expr = &Member{Object: expr, Computed: true, Index: index, span: p.spanFrom(start)}
		case p.tok.Is("("):
			args := p.parseArgs()
			expr = NewCall(expr, args, p.spanFrom(start))
		default:
			return expr
		}
	}
}

func (p *Parser) parseArgs() []Expression {
	p.expect("(")
	var args []Expression
	for !p.tok.Is(")") && p.tok.Type != TokenTypeEOF {
		if p.tok.Is("...") {
			start := p.startLoc()
			p.next()
			arg := p.parseAssignExpr()
			args = append(args, &SpreadElement{Arg: arg, span: p.spanFrom(start)})
		} else {
			args = append(args, p.parseAssignExpr())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect(")")
	return args
}

func (p *Parser) parsePrimary() Expression {
	start := p.startLoc()
	tok := p.tok
	switch tok.Type {
	case TokenTypeNumber:
		p.next()
		return NewNumberLit(tok.Text, tok.Span)
	case TokenTypeString:
		p.next()
		return NewStringLit(tok.Text, tok.Span)
	case TokenTypeTemplate:
		p.next()
		return p.buildTemplate(tok)
	case TokenTypeRegex:
		p.next()
		return &RegexLit{Pattern: tok.Text, Flags: tok.Flags, span: tok.Span}
	case TokenTypeIdent:
		switch tok.Text {
		case "true", "false":
			p.next()
			return &BoolLit{Value: tok.Text == "true", span: tok.Span}
		case "null":
			p.next()
			return &NullLit{span: tok.Span}
		case "undefined":
			p.next()
			return &NullLit{Undefined: true, span: tok.Span}
		}
		p.next()
		return NewIdent(tok.Text, tok.Span)
	}
	switch {
	case tok.Is("("):
		p.next()
		inner := p.parseExpression()
		p.expect(")")
		return &Paren{Expr: inner, span: p.spanFrom(start)}
	case tok.Is("["):
		return p.parseArrayLit()
	case tok.Is("{"):
		return p.parseObjectLit()
	case tok.Is("<"):
		return p.parseJSXElement()
	}
	p.fatal("BF1015", fmt.Sprintf("unexpected token %q in expression", tok.Text))
	return nil
}

func (p *Parser) buildTemplate(tok Token) Expression {
	lit := &TemplateLit{span: tok.Span}
	for _, part := range tok.Parts {
		if part.Literal {
			lit.Quasis = append(lit.Quasis, part.Text)
		} else {
			lit.Exprs = append(lit.Exprs, p.parseSubExpr(part.Offset, part.Text))
		}
	}
	if len(lit.Quasis) == len(lit.Exprs) {
		lit.Quasis = append(lit.Quasis, "")
	}
	return lit
}

// parseSubExpr parses an expression embedded at a known offset of the same
// file, used for template literal interpolations.
func (p *Parser) parseSubExpr(offset int, text string) Expression {
	sub := NewParser(p.file)
	sub.lexer.pos = offset
	prefix := p.file.Content[:offset]
	sub.lexer.line = strings.Count(prefix, "\n")
	if idx := strings.LastIndex(prefix, "\n"); idx >= 0 {
		sub.lexer.col = offset - idx - 1
	} else {
		sub.lexer.col = offset
	}

	var expr Expression
	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(parseAbort); !ok {
					panic(r)
				}
			}
		}()
		sub.next()
		expr = sub.parseExpression()
	}()
	p.errors = append(p.errors, sub.errors...)
	if expr == nil {
		span := util.NewParseSourceSpan(
			util.NewParseLocation(p.file, offset, sub.lexer.line, sub.lexer.col),
			util.NewParseLocation(p.file, offset+len(text), sub.lexer.line, sub.lexer.col),
			nil, nil)
		expr = NewIdent(strings.TrimSpace(text), span)
	}
	return expr
}

func (p *Parser) parseArrayLit() Expression {
	start := p.startLoc()
	p.expect("[")
	lit := &ArrayLit{}
	for !p.tok.Is("]") && p.tok.Type != TokenTypeEOF {
		if p.tok.Is("...") {
			sStart := p.startLoc()
			p.next()
			arg := p.parseAssignExpr()
			lit.Elements = append(lit.Elements, &SpreadElement{Arg: arg, span: p.spanFrom(sStart)})
		} else {
			lit.Elements = append(lit.Elements, p.parseAssignExpr())
		}
		if !p.accept(",") {
			break
		}
	}
	p.expect("]")
	lit.span = p.spanFrom(start)
	return lit
}

func (p *Parser) parseObjectLit() Expression {
	start := p.startLoc()
	p.expect("{")
	lit := &ObjectLit{}
	for !p.tok.Is("}") && p.tok.Type != TokenTypeEOF {
		propStart := p.startLoc()
		prop := &ObjectProp{}
		switch {
		case p.tok.Is("..."):
			p.next()
			prop.Spread = true
			prop.Value = p.parseAssignExpr()
		case p.tok.Is("["):
			p.next()
			keyExpr := p.parseAssignExpr()
			p.expect("]")
			prop.Computed = true
			prop.Key = Raw(keyExpr)
			p.expect(":")
			prop.Value = p.parseAssignExpr()
		case p.tok.Type == TokenTypeString:
			prop.Key = p.tok.Text
			p.next()
			p.expect(":")
			prop.Value = p.parseAssignExpr()
		default:
			key := p.expectIdent()
			prop.Key = key.Text
			if p.accept(":") {
				prop.Value = p.parseAssignExpr()
			} else {
				prop.Shorthand = true
				prop.Value = NewIdent(key.Text, key.Span)
			}
		}
		prop.span = p.spanFrom(propStart)
		lit.Props = append(lit.Props, prop)
		if !p.accept(",") {
			break
		}
	}
	p.expect("}")
	lit.span = p.spanFrom(start)
	return lit
}

// ---------------------------------------------------------------------------
// JSX

// parseJSXElement parses a JSX element or fragment in expression position.
// On return the token after the closing `>` has been consumed in script
// mode.
func (p *Parser) parseJSXElement() Expression {
	start := p.startLoc()
	p.expect("<")
	node := p.parseJSXTag(start)
	p.next()
	return node
}

// parseJSXTag parses from the tag name (or `>` for a fragment) through the
// element's closing `>`. On return the current token IS the closing `>`;
// the caller advances with the lexing mode its own context requires.
func (p *Parser) parseJSXTag(start *util.ParseLocation) Expression {
	if p.tok.Is(">") {
		children := p.parseJSXChildren("")
		return &JSXFragment{Children: children, span: p.spanFrom(start)}
	}

	tag := p.parseJSXName()
	var attrs []*JSXAttr
	for !p.tok.Is("/") && !p.tok.Is(">") && p.tok.Type != TokenTypeEOF {
		attrs = append(attrs, p.parseJSXAttr())
	}
	if p.accept("/") {
		if !p.tok.Is(">") {
			p.fatal("BF1016", "expected \">\" to close self-closing tag")
		}
		span := util.NewParseSourceSpan(start, p.tok.Span.End, nil, nil)
		return NewJSXElement(tag, attrs, nil, true, span)
	}
	if !p.tok.Is(">") {
		p.fatal("BF1016", fmt.Sprintf("expected \">\" but found %q", p.tok.Text))
	}
	children := p.parseJSXChildren(tag)
	span := util.NewParseSourceSpan(start, p.tok.Span.End, nil, nil)
	return NewJSXElement(tag, attrs, children, false, span)
}

// parseJSXName parses a tag or attribute name, allowing dashes
func (p *Parser) parseJSXName() string {
	name := p.expectIdent().Text
	for p.tok.Is("-") {
		p.next()
		name += "-" + p.expectIdent().Text
	}
	return name
}

func (p *Parser) parseJSXAttr() *JSXAttr {
	start := p.startLoc()
	if p.tok.Is("{") {
		p.next()
		p.expect("...")
		expr := p.parseAssignExpr()
		p.expect("}")
		return &JSXAttr{Spread: true, Expr: expr, span: p.spanFrom(start)}
	}
	attr := &JSXAttr{Name: p.parseJSXName()}
	if p.accept("=") {
		switch {
		case p.tok.Type == TokenTypeString:
			attr.Value = NewStringLit(p.tok.Text, p.tok.Span)
			p.next()
		case p.tok.Is("{"):
			vStart := p.startLoc()
			p.next()
			expr := p.parseExpression()
			p.expect("}")
			attr.Value = &JSXExpr{Expr: expr, span: p.spanFrom(vStart)}
		default:
			p.fatal("BF1017", "expected string or expression as JSX attribute value")
		}
	}
	attr.span = p.spanFrom(start)
	return attr
}

// parseJSXChildren parses element children. The current token is the open
// tag's `>`; on return it is the closing tag's `>`.
func (p *Parser) parseJSXChildren(tag string) []Node {
	var children []Node
	p.nextJSXText()
	for {
		if p.tok.Type == TokenTypeJSXText {
			if text := jsxTrimText(p.tok.Text); text != "" {
				children = append(children, &JSXText{Value: text, span: p.tok.Span})
			}
			p.next()
			continue
		}
		switch {
		case p.tok.Type == TokenTypeEOF:
			p.fatal("BF1018", fmt.Sprintf("unexpected end of file inside <%s>", tag))
		case p.tok.Is("{"):
			exprStart := p.startLoc()
			p.next()
			if p.tok.Is("}") {
				// empty or comment-only container
				p.nextJSXText()
				continue
			}
			expr := p.parseExpression()
			if !p.tok.Is("}") {
				p.fatal("BF1019", "expected \"}\" to close JSX expression")
			}
			children = append(children, &JSXExpr{Expr: expr, span: p.spanFrom(exprStart)})
			p.nextJSXText()
		case p.tok.Is("<"):
			childStart := p.startLoc()
			p.nextTag()
			if p.accept("/") {
				// closing tag: `</name>` or `</>`
				if !p.tok.Is(">") {
					name := p.parseJSXName()
					if name != tag {
						p.fatal("BF1020", fmt.Sprintf("mismatched closing tag </%s>, expected </%s>", name, tag))
					}
				} else if tag != "" {
					p.fatal("BF1020", fmt.Sprintf("unexpected fragment close, expected </%s>", tag))
				}
				if !p.tok.Is(">") {
					p.fatal("BF1016", "expected \">\" in closing tag")
				}
				return children
			}
			child := p.parseJSXTag(childStart)
			children = append(children, child)
			p.nextJSXText()
		default:
			p.fatal("BF1021", fmt.Sprintf("unexpected token %q in JSX children", p.tok.Text))
		}
	}
}

// jsxTrimText applies JSX whitespace rules to a raw text run: runs that
// are whitespace-only are dropped, newline-adjacent indentation collapses,
// and interior whitespace is preserved.
func jsxTrimText(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return s
	}
	var kept []string
	for i, line := range lines {
		if i > 0 {
			line = strings.TrimLeft(line, " \t")
		}
		if i < len(lines)-1 {
			line = strings.TrimRight(line, " \t")
		}
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}
