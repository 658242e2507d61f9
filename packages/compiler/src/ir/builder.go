package ir

import (
	"strings"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/util"
)

// Builder converts an analyzed component's JSX tree into IR
type Builder struct {
	analysis *analyzer.Analysis
	errors   []*util.ParseError
	// invocation instance counters, one per child component type
	instanceCounts map[string]int
	invocations    []*ComponentInvocation
}

// Build converts the analyzed component into IR and assigns slot ids
func Build(a *analyzer.Analysis) (*Component, []*util.ParseError) {
	b := &Builder{analysis: a, instanceCounts: map[string]int{}}

	var root Node
	if a.RootIf != nil {
		root = b.buildRootIf(a.RootIf)
	} else if a.Root != nil {
		root = b.buildChild(unwrapParen(a.Root))
	} else {
		b.errors = append(b.errors, util.NewParseError(a.Component.Func.SourceSpan(), "BF3001",
			"component "+a.Component.Name+" never returns JSX"))
		root = &Fragment{}
	}

	c := &Component{
		Name:        a.Component.Name,
		IsClient:    a.Component.IsClientComponent,
		Root:        root,
		Analysis:    a,
		Invocations: b.invocations,
	}
	AssignSlots(c)
	return c, b.errors
}

func unwrapParen(e jsx_parser.Expression) jsx_parser.Expression {
	for {
		paren, ok := e.(*jsx_parser.Paren)
		if !ok {
			return e
		}
		e = paren.Expr
	}
}

// buildRootIf represents a component whose root is itself conditional:
// different if branches return different top-level trees.
func (b *Builder) buildRootIf(stmt *jsx_parser.IfStmt) Node {
	cond := &Conditional{
		Binding: b.analysis.NewBinding(analyzer.BindingKindCond, "", stmt.Test),
		Then:    b.buildBranchStmt(stmt.Cons),
	}
	if stmt.Alt != nil {
		switch alt := stmt.Alt.(type) {
		case *jsx_parser.IfStmt:
			cond.Else = b.buildRootIf(alt)
		default:
			cond.Else = b.buildBranchStmt(stmt.Alt)
		}
	}
	return cond
}

func (b *Builder) buildBranchStmt(stmt jsx_parser.Statement) Node {
	block, ok := stmt.(*jsx_parser.BlockStmt)
	if !ok {
		if ret, isRet := stmt.(*jsx_parser.ReturnStmt); isRet && ret.Arg != nil {
			return b.buildChild(unwrapParen(ret.Arg))
		}
		return &Fragment{}
	}
	for _, s := range block.Stmts {
		if ret, isRet := s.(*jsx_parser.ReturnStmt); isRet && ret.Arg != nil {
			return b.buildChild(unwrapParen(ret.Arg))
		}
	}
	return &Fragment{}
}

func (b *Builder) buildChild(node jsx_parser.Node) Node {
	switch n := node.(type) {
	case *jsx_parser.JSXElement:
		if n.IsComponent {
			return b.buildComponentInvocation(n)
		}
		return b.buildElement(n)
	case *jsx_parser.JSXFragment:
		frag := &Fragment{}
		for _, c := range n.Children {
			frag.Children = append(frag.Children, b.buildChild(c))
		}
		return frag
	case *jsx_parser.JSXText:
		return &Text{Literal: n.Value}
	case *jsx_parser.JSXExpr:
		return b.buildExprChild(n.Expr)
	case jsx_parser.Expression:
		return b.buildExprChild(n)
	}
	return &Fragment{}
}

func (b *Builder) buildElement(el *jsx_parser.JSXElement) Node {
	out := &Element{Tag: el.Tag, SlotID: -1}
	for _, attr := range el.Attrs {
		b.buildAttr(out, attr)
	}
	for _, child := range el.Children {
		out.Children = append(out.Children, b.buildChild(child))
	}
	return out
}

func (b *Builder) buildAttr(out *Element, attr *jsx_parser.JSXAttr) {
	a := b.analysis
	if attr.Spread {
		// spread props on plain elements cannot be split statically;
		// conservative: bind the whole object reactively
		out.ReactiveAttrs = append(out.ReactiveAttrs,
			a.NewBinding(analyzer.BindingKindAttr, "", attr.Expr))
		return
	}
	name := normalizeAttrName(attr.Name)
	if isEventAttr(attr.Name) {
		if expr, ok := attr.Value.(*jsx_parser.JSXExpr); ok {
			binding := a.NewBinding(analyzer.BindingKindEvent, eventName(attr.Name), expr.Expr)
			out.Events = append(out.Events, binding)
		}
		return
	}
	switch value := attr.Value.(type) {
	case nil:
		out.StaticAttrs = append(out.StaticAttrs, &StaticAttr{Name: name, Bare: true})
	case *jsx_parser.StringLit:
		out.StaticAttrs = append(out.StaticAttrs, &StaticAttr{Name: name, Value: value.Value})
	case *jsx_parser.JSXExpr:
		if a.IsReactive(value.Expr) {
			binding := a.NewBinding(analyzer.BindingKindAttr, name, value.Expr)
			out.ReactiveAttrs = append(out.ReactiveAttrs, binding)
			return
		}
		if lit, ok := literalText(value.Expr); ok {
			out.StaticAttrs = append(out.StaticAttrs, &StaticAttr{Name: name, Value: lit})
			return
		}
		a.CheckUnresolved(value.Expr)
		out.StaticAttrs = append(out.StaticAttrs, &StaticAttr{Name: name, Expr: value.Expr})
	}
}

func (b *Builder) buildExprChild(expr jsx_parser.Expression) Node {
	a := b.analysis
	expr = unwrapParen(expr)

	// `cond ? <a/> : <b/>` and `cond && <a/>` become Conditional nodes
	// when a branch holds JSX
	switch n := expr.(type) {
	case *jsx_parser.Cond:
		if containsJSX(n.Cons) || containsJSX(n.Alt) {
			return &Conditional{
				Binding: a.NewBinding(analyzer.BindingKindCond, "", n.Test),
				Then:    b.buildChild(unwrapParen(n.Cons)),
				Else:    b.buildChild(unwrapParen(n.Alt)),
			}
		}
	case *jsx_parser.Binary:
		if n.Op == "&&" && containsJSX(n.Right) {
			return &Conditional{
				Binding: a.NewBinding(analyzer.BindingKindCond, "", n.Left),
				Then:    b.buildChild(unwrapParen(n.Right)),
			}
		}
	case *jsx_parser.Call:
		if list := b.tryBuildList(n); list != nil {
			return list
		}
	case *jsx_parser.JSXElement, *jsx_parser.JSXFragment:
		return b.buildChild(expr)
	}

	if a.IsReactive(expr) {
		return &Text{Binding: a.NewBinding(analyzer.BindingKindText, "", expr)}
	}
	if lit, ok := literalText(expr); ok {
		return &Text{Literal: lit}
	}
	// static but computed: renders once, no marker
	a.CheckUnresolved(expr)
	binding := a.NewBinding(analyzer.BindingKindText, "", expr)
	binding.DependsOn = nil
	return &Text{Binding: binding}
}

// tryBuildList recognizes `iterable.map((item, i) => <jsx key={...}/>)`
func (b *Builder) tryBuildList(call *jsx_parser.Call) Node {
	member, ok := call.Callee.(*jsx_parser.Member)
	if !ok || member.Computed || member.Property != "map" || len(call.Args) != 1 {
		return nil
	}
	arrow, ok := call.Args[0].(*jsx_parser.Arrow)
	if !ok || !containsJSX(arrow.Body) {
		return nil
	}

	list := &List{
		Binding: b.analysis.NewBinding(analyzer.BindingKindList, "", member.Object),
	}
	if len(arrow.Params) > 0 {
		if ident, isIdent := arrow.Params[0].Pattern.(*jsx_parser.Ident); isIdent {
			list.ItemParam = ident.Name
		}
	}
	if len(arrow.Params) > 1 {
		if ident, isIdent := arrow.Params[1].Pattern.(*jsx_parser.Ident); isIdent {
			list.IndexParam = ident.Name
		}
	}

	var itemExpr jsx_parser.Expression
	switch body := arrow.Body.(type) {
	case *jsx_parser.BlockStmt:
		for _, stmt := range body.Stmts {
			if ret, isRet := stmt.(*jsx_parser.ReturnStmt); isRet {
				itemExpr = unwrapParen(ret.Arg)
			}
		}
	case jsx_parser.Expression:
		itemExpr = unwrapParen(body)
	}
	if itemExpr == nil {
		return nil
	}

	// the key attribute is compiler metadata, stripped from the item tree
	if el, isEl := itemExpr.(*jsx_parser.JSXElement); isEl {
		kept := el.Attrs[:0]
		for _, attr := range el.Attrs {
			if attr.Name == "key" {
				if v, isExpr := attr.Value.(*jsx_parser.JSXExpr); isExpr {
					list.KeyExpr = v.Expr
				}
				continue
			}
			kept = append(kept, attr)
		}
		el.Attrs = kept
	}
	if list.KeyExpr == nil {
		b.errors = append(b.errors, util.NewParseWarning(call.SourceSpan(), "BF3002",
			"keyed list without an explicit key expression; falling back to the iteration index"))
	}
	restore := b.analysis.ShadowLocals(list.ItemParam, list.IndexParam)
	list.Item = b.buildChild(itemExpr)
	restore()
	return list
}

func (b *Builder) buildComponentInvocation(el *jsx_parser.JSXElement) Node {
	a := b.analysis
	inv := &ComponentInvocation{Name: el.Tag, Index: b.instanceCounts[el.Tag]}
	b.instanceCounts[el.Tag]++
	for _, attr := range el.Attrs {
		if attr.Spread {
			inv.Props = append(inv.Props, &PropArg{
				Name:    "...",
				Binding: a.NewBinding(analyzer.BindingKindAttr, "...", attr.Expr),
			})
			continue
		}
		arg := &PropArg{Name: attr.Name}
		switch value := attr.Value.(type) {
		case nil:
			// a value-less prop means `true` in JSX
			arg.Binding = a.NewBinding(analyzer.BindingKindAttr, attr.Name, &jsx_parser.BoolLit{Value: true})
		case *jsx_parser.StringLit:
			arg.Binding = a.NewBinding(analyzer.BindingKindAttr, attr.Name, value)
		case *jsx_parser.JSXExpr:
			arg.Binding = a.NewBinding(analyzer.BindingKindAttr, attr.Name, value.Expr)
		}
		inv.Props = append(inv.Props, arg)
	}
	for _, child := range el.Children {
		inv.Children = append(inv.Children, b.buildChild(child))
	}
	b.invocations = append(b.invocations, inv)
	return inv
}

func containsJSX(node jsx_parser.Node) bool {
	found := false
	jsx_parser.Walk(node, func(n jsx_parser.Node) bool {
		switch n.(type) {
		case *jsx_parser.JSXElement, *jsx_parser.JSXFragment:
			found = true
			return false
		}
		return true
	})
	return found
}

// literalText resolves an expression that is a plain literal
func literalText(expr jsx_parser.Expression) (string, bool) {
	switch n := expr.(type) {
	case *jsx_parser.StringLit:
		return n.Value, true
	case *jsx_parser.NumberLit:
		return n.Raw, true
	case *jsx_parser.BoolLit:
		if n.Value {
			return "true", true
		}
		return "false", true
	case *jsx_parser.TemplateLit:
		if len(n.Exprs) == 0 && len(n.Quasis) == 1 {
			return n.Quasis[0], true
		}
	}
	return "", false
}

// normalizeAttrName maps JSX attribute spellings to HTML ones
func normalizeAttrName(name string) string {
	switch name {
	case "className":
		return "class"
	case "htmlFor":
		return "for"
	}
	if name != strings.ToLower(name) && !strings.Contains(name, "-") {
		return util.CamelCaseToDashCase(name)
	}
	return name
}

func isEventAttr(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on") &&
		name[2] >= 'A' && name[2] <= 'Z'
}

func eventName(attrName string) string {
	return strings.ToLower(attrName[2:])
}
