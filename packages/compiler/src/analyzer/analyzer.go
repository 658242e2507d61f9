// Package analyzer classifies every expression of a component as static or
// reactive. The test is syntactic: an expression is reactive iff it
// contains a call to a tracked getter (signal getter, memo getter, or a
// local alias of one) or a reference to a prop. True dataflow analysis is
// deliberately out of scope; a getter stored in a closure captured outside
// the component body escapes tracking. The analysis is conservative: props
// are always treated as reactive, and unresolved identifiers default to
// static with a warning.
package analyzer

import (
	"fmt"
	"sort"

	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/util"
)

// BindingKind classifies a point of reactivity
type BindingKind int

const (
	BindingKindText BindingKind = iota
	BindingKindAttr
	BindingKindEvent
	BindingKindCond
	BindingKindList
)

func (k BindingKind) String() string {
	switch k {
	case BindingKindText:
		return "text"
	case BindingKindAttr:
		return "attr"
	case BindingKindEvent:
		return "event"
	case BindingKindCond:
		return "cond"
	case BindingKindList:
		return "list"
	}
	return "unknown"
}

// Binding is a single point of reactivity. SlotID is assigned later by the
// slot assignment pass; the expression is preserved verbatim for codegen.
type Binding struct {
	Kind      BindingKind
	SlotID    int
	DependsOn []string
	Expr      jsx_parser.Expression
	Raw       string
	// Name carries the attribute or event name for attr/event bindings.
	Name string
	// InRow marks a binding inside a keyed list item. Its expression may
	// reference the iteration parameters, so it binds per materialized
	// row rather than once at scope init.
	InRow bool
}

// SignalDecl is one `const [x, setX] = createSignal(init)` declaration
type SignalDecl struct {
	Getter string
	Setter string
	Init   jsx_parser.Expression
	Span   *util.ParseSourceSpan
}

// MemoDecl is one `const m = createMemo(() => expr)` declaration
type MemoDecl struct {
	Name string
	Fn   *jsx_parser.Arrow
	Span *util.ParseSourceSpan
}

type trackKind int

const (
	trackSignal trackKind = iota
	trackMemo
	trackProp
	trackSetter
)

// Analysis is the reactivity classification of one component
type Analysis struct {
	Component *jsx_parser.SourceComponent
	Signals   []*SignalDecl
	Memos     []*MemoDecl
	// Props holds every prop name in declaration order.
	Props []string
	// Body holds the component body statements that are neither signal nor
	// memo declarations nor the return; client codegen re-emits them.
	Body []jsx_parser.Statement
	// Root is the returned JSX tree.
	Root jsx_parser.Expression
	// RootIf is set instead of Root when the component returns different
	// trees from if/else branches.
	RootIf *jsx_parser.IfStmt
	// Warnings collects analysis diagnostics; never fatal.
	Warnings []*util.ParseError

	tracked map[string]trackKind
	// aliases maps a local name to the canonical getter it stands for.
	aliases map[string]string
	// locals holds every name visible in the component body.
	locals map[string]bool
}

// Analyze classifies a component's body
func Analyze(file *jsx_parser.SourceFile, component *jsx_parser.SourceComponent) *Analysis {
	a := &Analysis{
		Component: component,
		tracked:   map[string]trackKind{},
		aliases:   map[string]string{},
	}
	for _, shape := range component.PropsShape {
		if shape.Opaque {
			continue
		}
		a.Props = append(a.Props, shape.Name)
		a.tracked[shape.Name] = trackProp
	}
	// aliased destructured props track under their alias
	if len(component.Func.Params) > 0 {
		if pattern, ok := component.Func.Params[0].Pattern.(*jsx_parser.ObjectPattern); ok {
			for _, prop := range pattern.Props {
				if prop.Alias != "" {
					a.tracked[prop.Alias] = trackProp
					a.aliases[prop.Alias] = prop.Key
				}
			}
		}
	}

	for _, stmt := range component.Func.Body.Stmts {
		a.collectStmt(stmt)
	}
	a.collectLocals(file)
	return a
}

// knownGlobals are browser/ECMAScript names never reported as unresolved
var knownGlobals = map[string]bool{
	"console": true, "window": true, "document": true, "Math": true,
	"JSON": true, "Object": true, "Array": true, "String": true,
	"Number": true, "Boolean": true, "Date": true, "Promise": true,
	"fetch": true, "setTimeout": true, "setInterval": true,
	"clearTimeout": true, "clearInterval": true, "parseInt": true,
	"parseFloat": true, "isNaN": true, "Error": true, "Map": true,
	"Set": true, "localStorage": true, "navigator": true, "event": true,
	"createSignal": true, "createMemo": true, "createEffect": true,
}

// collectLocals gathers every name visible in the component body so
// unresolved references can be flagged.
func (a *Analysis) collectLocals(file *jsx_parser.SourceFile) {
	a.locals = map[string]bool{}
	for name := range file.Helpers {
		a.locals[name] = true
	}
	for name := range file.ImportedNames() {
		a.locals[name] = true
	}
	for _, c := range file.Components {
		a.locals[c.Name] = true
	}
	if name := a.propsParamName(); name != "" {
		a.locals[name] = true
	}
	for _, stmt := range a.Component.Func.Body.Stmts {
		if decl, ok := stmt.(*jsx_parser.VarDecl); ok {
			for _, d := range decl.Decls {
				shadowPattern(d.Pattern, a.locals)
			}
		}
	}
}

// CheckUnresolved flags identifiers an expression references that are not
// visible in the component scope. The expression still compiles, treated
// as static.
func (a *Analysis) CheckUnresolved(expr jsx_parser.Expression) {
	shadowed := map[string]bool{}
	a.checkUnresolved(expr, shadowed)
}

func (a *Analysis) checkUnresolved(node jsx_parser.Node, shadowed map[string]bool) {
	switch n := node.(type) {
	case *jsx_parser.Ident:
		name := n.Name
		if shadowed[name] || knownGlobals[name] || a.locals[name] {
			return
		}
		if _, tracked := a.tracked[name]; tracked {
			return
		}
		a.WarnUnresolved(n, name)
		return
	case *jsx_parser.Member:
		a.checkUnresolved(n.Object, shadowed)
		if n.Computed {
			a.checkUnresolved(n.Index, shadowed)
		}
		return
	case *jsx_parser.ObjectLit:
		for _, prop := range n.Props {
			a.checkUnresolved(prop.Value, shadowed)
		}
		return
	case *jsx_parser.Arrow:
		inner := copyShadow(shadowed)
		for _, param := range n.Params {
			shadowParam(param, inner)
		}
		a.checkUnresolved(n.Body, inner)
		return
	case *jsx_parser.BlockStmt:
		inner := copyShadow(shadowed)
		for _, stmt := range n.Stmts {
			if decl, ok := stmt.(*jsx_parser.VarDecl); ok {
				for _, d := range decl.Decls {
					if d.Init != nil {
						a.checkUnresolved(d.Init, inner)
					}
					shadowPattern(d.Pattern, inner)
				}
				continue
			}
			a.checkUnresolved(stmt, inner)
		}
		return
	}
	jsx_parser.Walk(node, func(child jsx_parser.Node) bool {
		if child == node {
			return true
		}
		a.checkUnresolved(child, shadowed)
		return false
	})
}

func (a *Analysis) collectStmt(stmt jsx_parser.Statement) {
	switch s := stmt.(type) {
	case *jsx_parser.VarDecl:
		consumed := true
		for _, d := range s.Decls {
			if !a.collectDecl(d) {
				consumed = false
			}
		}
		if !consumed {
			a.Body = append(a.Body, stmt)
		}
	case *jsx_parser.ReturnStmt:
		if a.Root == nil && a.RootIf == nil {
			a.Root = s.Arg
		}
	case *jsx_parser.IfStmt:
		if a.Root == nil && a.RootIf == nil && ifReturnsJSX(s) {
			a.RootIf = s
			return
		}
		a.Body = append(a.Body, stmt)
	case *jsx_parser.DirectiveStmt:
		// directives never survive into emitted code
	default:
		a.Body = append(a.Body, stmt)
	}
}

func ifReturnsJSX(s *jsx_parser.IfStmt) bool {
	returns := false
	jsx_parser.Walk(s, func(n jsx_parser.Node) bool {
		switch n.(type) {
		case *jsx_parser.JSXElement, *jsx_parser.JSXFragment:
			returns = true
			return false
		}
		return true
	})
	return returns
}

// collectDecl reports whether the declarator was consumed as a signal,
// memo, or alias declaration.
func (a *Analysis) collectDecl(d *jsx_parser.VarDeclarator) bool {
	// const [x, setX] = createSignal(init)
	if pattern, ok := d.Pattern.(*jsx_parser.ArrayPattern); ok {
		if call := asCall(d.Init, "createSignal"); call != nil && len(pattern.Elements) == 2 {
			sig := &SignalDecl{
				Getter: pattern.Elements[0].Name,
				Setter: pattern.Elements[1].Name,
				Span:   d.SourceSpan(),
			}
			if len(call.Args) > 0 {
				sig.Init = call.Args[0]
			}
			a.Signals = append(a.Signals, sig)
			a.tracked[sig.Getter] = trackSignal
			a.tracked[sig.Setter] = trackSetter
			return true
		}
	}
	if name, ok := d.Pattern.(*jsx_parser.Ident); ok {
		// const m = createMemo(() => ...)
		if call := asCall(d.Init, "createMemo"); call != nil && len(call.Args) == 1 {
			if arrow, isArrow := call.Args[0].(*jsx_parser.Arrow); isArrow {
				a.Memos = append(a.Memos, &MemoDecl{Name: name.Name, Fn: arrow, Span: d.SourceSpan()})
				a.tracked[name.Name] = trackMemo
				return true
			}
		}
		// const g = count  — local alias of a tracked getter
		if ref, isIdent := d.Init.(*jsx_parser.Ident); isIdent {
			if kind, tracked := a.tracked[ref.Name]; tracked && kind != trackSetter {
				a.tracked[name.Name] = kind
				a.aliases[name.Name] = a.canonical(ref.Name)
				return true
			}
		}
	}
	return false
}

func asCall(e jsx_parser.Expression, callee string) *jsx_parser.Call {
	call, ok := e.(*jsx_parser.Call)
	if !ok {
		return nil
	}
	if ident, ok := call.Callee.(*jsx_parser.Ident); ok && ident.Name == callee {
		return call
	}
	return nil
}

func (a *Analysis) canonical(name string) string {
	if target, ok := a.aliases[name]; ok {
		return target
	}
	return name
}

// Aliases returns the local alias to canonical getter mapping.
func (a *Analysis) Aliases() map[string]string {
	out := make(map[string]string, len(a.aliases))
	for alias, target := range a.aliases {
		out[alias] = target
	}
	return out
}

// ShadowLocals marks names as in scope for unresolved-identifier checks
// and returns a func restoring the previous state. Iteration callbacks
// introduce names the component body never declares.
func (a *Analysis) ShadowLocals(names ...string) func() {
	prev := map[string]bool{}
	for _, name := range names {
		if name == "" {
			continue
		}
		prev[name] = a.locals[name]
		a.locals[name] = true
	}
	return func() {
		for name, was := range prev {
			if !was {
				delete(a.locals, name)
			}
		}
	}
}

// IsGetter reports whether name is a signal or memo getter (or alias)
func (a *Analysis) IsGetter(name string) bool {
	kind, ok := a.tracked[name]
	return ok && (kind == trackSignal || kind == trackMemo)
}

// IsProp reports whether name refers to a prop
func (a *Analysis) IsProp(name string) bool {
	kind, ok := a.tracked[name]
	return ok && kind == trackProp
}

// IsSetter reports whether name is a signal setter
func (a *Analysis) IsSetter(name string) bool {
	kind, ok := a.tracked[name]
	return ok && kind == trackSetter
}

// PropKey returns the canonical prop name for a (possibly aliased) prop
func (a *Analysis) PropKey(name string) string {
	return a.canonical(name)
}

// SignalFor returns the signal declaration owning a getter name
func (a *Analysis) SignalFor(name string) *SignalDecl {
	name = a.canonical(name)
	for _, sig := range a.Signals {
		if sig.Getter == name {
			return sig
		}
	}
	return nil
}

// MemoFor returns the memo declaration for a getter name
func (a *Analysis) MemoFor(name string) *MemoDecl {
	name = a.canonical(name)
	for _, m := range a.Memos {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// IsReactive reports whether an expression can change after initial
// render: it syntactically contains a tracked getter call or a prop
// reference.
func (a *Analysis) IsReactive(expr jsx_parser.Expression) bool {
	return len(a.Deps(expr)) > 0
}

// Deps returns the sorted set of signal/memo/prop names an expression
// depends on.
func (a *Analysis) Deps(expr jsx_parser.Expression) []string {
	set := map[string]bool{}
	a.collectDeps(expr, set, map[string]bool{})
	deps := make([]string, 0, len(set))
	for name := range set {
		deps = append(deps, name)
	}
	sort.Strings(deps)
	return deps
}

func (a *Analysis) collectDeps(node jsx_parser.Node, set map[string]bool, shadowed map[string]bool) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *jsx_parser.Call:
		if ident, ok := n.Callee.(*jsx_parser.Ident); ok && !shadowed[ident.Name] {
			if a.IsGetter(ident.Name) {
				set[a.canonical(ident.Name)] = true
			}
		}
		a.collectDeps(n.Callee, set, shadowed)
		for _, arg := range n.Args {
			a.collectDeps(arg, set, shadowed)
		}
		return
	case *jsx_parser.Ident:
		if shadowed[n.Name] {
			return
		}
		if a.IsProp(n.Name) {
			set[a.canonical(n.Name)] = true
		}
		return
	case *jsx_parser.Member:
		// props.x access when the props param is not destructured
		if obj, ok := n.Object.(*jsx_parser.Ident); ok && obj.Name == a.propsParamName() && !n.Computed {
			set[n.Property] = true
			return
		}
	case *jsx_parser.Arrow:
		inner := copyShadow(shadowed)
		for _, param := range n.Params {
			shadowParam(param, inner)
		}
		a.collectDeps(n.Body, set, inner)
		return
	case *jsx_parser.BlockStmt:
		inner := copyShadow(shadowed)
		for _, stmt := range n.Stmts {
			if decl, ok := stmt.(*jsx_parser.VarDecl); ok {
				for _, d := range decl.Decls {
					if d.Init != nil {
						a.collectDeps(d.Init, set, inner)
					}
					shadowPattern(d.Pattern, inner)
				}
				continue
			}
			a.collectDeps(stmt, set, inner)
		}
		return
	}
	jsx_parser.Walk(node, func(child jsx_parser.Node) bool {
		if child == node {
			return true
		}
		a.collectDeps(child, set, shadowed)
		return false
	})
}

// PropsParam returns the props parameter name when the component takes
// its props as a plain identifier, or "" when destructured or absent.
func (a *Analysis) PropsParam() string { return a.propsParamName() }

func (a *Analysis) propsParamName() string {
	if len(a.Component.Func.Params) == 0 {
		return ""
	}
	if ident, ok := a.Component.Func.Params[0].Pattern.(*jsx_parser.Ident); ok {
		return ident.Name
	}
	return ""
}

func copyShadow(shadowed map[string]bool) map[string]bool {
	inner := make(map[string]bool, len(shadowed))
	for k := range shadowed {
		inner[k] = true
	}
	return inner
}

func shadowParam(param *jsx_parser.Param, shadowed map[string]bool) {
	shadowPattern(param.Pattern, shadowed)
}

func shadowPattern(pattern jsx_parser.Node, shadowed map[string]bool) {
	switch p := pattern.(type) {
	case *jsx_parser.Ident:
		shadowed[p.Name] = true
	case *jsx_parser.ArrayPattern:
		for _, el := range p.Elements {
			shadowed[el.Name] = true
		}
	case *jsx_parser.ObjectPattern:
		for _, prop := range p.Props {
			name := prop.Key
			if prop.Alias != "" {
				name = prop.Alias
			}
			shadowed[name] = true
		}
	}
}

// NewBinding creates a classified binding for an expression
func (a *Analysis) NewBinding(kind BindingKind, name string, expr jsx_parser.Expression) *Binding {
	b := &Binding{
		Kind:      kind,
		SlotID:    -1,
		Name:      name,
		DependsOn: a.Deps(expr),
		Expr:      expr,
		Raw:       jsx_parser.Raw(expr),
	}
	a.CheckUnresolved(expr)
	return b
}

// WarnUnresolved records the best-effort fallback for an expression that
// references an identifier the analyzer cannot see.
func (a *Analysis) WarnUnresolved(expr jsx_parser.Expression, name string) {
	a.Warnings = append(a.Warnings, util.NewParseWarning(expr.SourceSpan(), "BF2004",
		fmt.Sprintf("identifier %q is not resolvable in this component scope; expression treated as static", name)))
}
