package output

import (
	"fmt"
	"sort"
	"strings"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
)

// ClientEmitter produces the per-component hydration module. Each module
// exports init<Name>(instanceIndex, parentScope, props): the function
// locates its scope marker under parentScope, wires signals, memos,
// effects and listeners on first call, and on later calls (a parent
// effect re-passing reactive props) refreshes props without remounting.
type ClientEmitter struct{}

// FileExt is the artifact extension
func (e *ClientEmitter) FileExt() string { return ".client.js" }

// EmitModule renders the hydration module source for a client component.
// Server-only components return "" and produce no module.
func (e *ClientEmitter) EmitModule(c *Component) (string, error) {
	if !c.IsClient {
		return "", nil
	}
	w := &clientWriter{component: c, ctx: NewEmitterVisitorContext(0)}
	w.printer = clientPrinter(c.Analysis)
	return w.emit()
}

// clientPrinter renders expressions for the hydration module. Tracked
// getter calls stay as written; bare prop references resolve to the
// local prop getter emitted at the top of init.
func clientPrinter(a *analyzer.Analysis) *analyzer.Printer {
	return &analyzer.Printer{
		Analysis: a,
		PropRef: func(name string) string {
			return name + "()"
		},
	}
}

type clientWriter struct {
	component *Component
	printer   *analyzer.Printer
	ctx       *EmitterVisitorContext
	locals    []string
}

func (w *clientWriter) print(expr jsx_parser.Expression) string {
	return w.printer.PrintWithLocals(expr, w.locals)
}

func (w *clientWriter) emit() (string, error) {
	c := w.component
	ctx := w.ctx
	initName := "init" + c.Name

	ctx.Println("// Generated by bfc. Do not edit.")
	ctx.Println(`import * as bf from "./__barefoot__.js";`)
	seen := map[string]bool{}
	for _, inv := range c.Invocations {
		if !seen[inv.Name] {
			seen[inv.Name] = true
			ctx.Println(fmt.Sprintf("import { init%s } from %q;", inv.Name, "./"+inv.Name+".client.js"))
		}
	}
	ctx.Println("")
	ctx.Println(fmt.Sprintf("export function %s(instanceIndex, parentScope, props = {}) {", initName))
	ctx.IncIndent()
	ctx.Println(fmt.Sprintf("const scope = bf.findScope(parentScope, %q, instanceIndex);", c.Name))
	ctx.Println("if (!scope) return;")
	ctx.Println("if (bf.mounted(scope)) {")
	ctx.IncIndent()
	ctx.Println("bf.refresh(scope, props);")
	ctx.Println("return;")
	ctx.DecIndent()
	ctx.Println("}")
	ctx.Println("const ctx = bf.context(scope, props);")

	w.emitProps()
	w.emitSignals()
	w.emitMemos()
	w.emitAliases()
	w.emitBody()
	w.emitEffects()
	w.emitStructural(c.Root)
	w.emitListeners(c.Root)
	w.emitChildren()

	ctx.DecIndent()
	ctx.Println("}")
	ctx.Println("")
	ctx.Println(fmt.Sprintf("bf.register(%q, %s);", c.Name, initName))
	return ctx.ToSource(), nil
}

// emitProps declares prop access. Destructured props become local getter
// functions reading the live ctx.props, so a refreshed prop value flows
// into every expression that mentions it. A plain props parameter is
// aliased to ctx.props directly.
func (w *clientWriter) emitProps() {
	c := w.component
	ctx := w.ctx
	if name := c.Analysis.PropsParam(); name != "" {
		ctx.Println(fmt.Sprintf("const %s = ctx.props;", name))
		return
	}
	for _, prop := range c.Analysis.Component.PropsShape {
		if prop.DefaultValue != "" {
			ctx.Println(fmt.Sprintf("const %s = () => %q in ctx.props ? ctx.props.%s : (%s);",
				prop.Name, prop.Name, prop.Name, prop.DefaultValue))
			continue
		}
		ctx.Println(fmt.Sprintf("const %s = () => ctx.props.%s;", prop.Name, prop.Name))
	}
}

// emitSignals seeds each signal from the same-named prop when the server
// passed one, falling back to the declared initial value.
func (w *clientWriter) emitSignals() {
	ctx := w.ctx
	for _, sig := range w.component.Analysis.Signals {
		init := "undefined"
		if sig.Init != nil {
			init = w.print(sig.Init)
		}
		ctx.Println(fmt.Sprintf("const [%s, %s] = bf.createSignal(ctx, %q in ctx.props ? ctx.props.%s : (%s));",
			sig.Getter, sig.Setter, sig.Getter, sig.Getter, init))
	}
}

func (w *clientWriter) emitMemos() {
	ctx := w.ctx
	for _, memo := range w.component.Analysis.Memos {
		ctx.Println(fmt.Sprintf("const %s = bf.createMemo(ctx, %s);", memo.Name, w.print(memo.Fn)))
	}
}

// emitAliases re-declares getter aliases the analyzer folded away, in
// sorted order for deterministic output.
func (w *clientWriter) emitAliases() {
	ctx := w.ctx
	aliases := w.component.Analysis.Aliases()
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	for _, alias := range names {
		ctx.Println(fmt.Sprintf("const %s = %s;", alias, aliases[alias]))
	}
}

// emitBody re-emits the component's own statements. User createEffect
// calls are rebound to the scope's reactive context.
func (w *clientWriter) emitBody() {
	ctx := w.ctx
	for _, stmt := range w.component.Analysis.Body {
		if call := effectCall(stmt); call != nil && len(call.Args) == 1 {
			ctx.Println(fmt.Sprintf("bf.createEffect(ctx, %s);", w.print(call.Args[0])))
			continue
		}
		if text := w.printer.PrintStmt(stmt); text != "" {
			ctx.Println(text)
		}
	}
}

func effectCall(stmt jsx_parser.Statement) *jsx_parser.Call {
	exprStmt, ok := stmt.(*jsx_parser.ExprStmt)
	if !ok {
		return nil
	}
	call, ok := exprStmt.Expr.(*jsx_parser.Call)
	if !ok {
		return nil
	}
	if ident, ok := call.Callee.(*jsx_parser.Ident); ok && ident.Name == "createEffect" {
		return call
	}
	return nil
}

// emitEffects groups text and attribute bindings that share an identical
// dependency set into one effect, in slot order, so a single signal write
// touches the DOM once per group.
func (w *clientWriter) emitEffects() {
	ctx := w.ctx
	type group struct {
		key      string
		bindings []*analyzer.Binding
	}
	var order []string
	groups := map[string]*group{}
	for _, b := range w.component.Bindings {
		if b.Kind != analyzer.BindingKindText && b.Kind != analyzer.BindingKindAttr {
			continue
		}
		if len(b.DependsOn) == 0 || b.InRow {
			continue
		}
		key := strings.Join(b.DependsOn, ",")
		g, ok := groups[key]
		if !ok {
			g = &group{key: key}
			groups[key] = g
			order = append(order, key)
		}
		g.bindings = append(g.bindings, b)
	}
	for _, key := range order {
		g := groups[key]
		ctx.Println("bf.createEffect(ctx, () => {")
		ctx.IncIndent()
		for _, b := range g.bindings {
			switch {
			case b.Kind == analyzer.BindingKindText:
				ctx.Println(fmt.Sprintf("bf.setText(scope, %d, %s);", b.SlotID, w.print(b.Expr)))
			case b.Name == "":
				ctx.Println(fmt.Sprintf("bf.spreadAttrs(scope, %d, %s);", b.SlotID, w.print(b.Expr)))
			default:
				ctx.Println(fmt.Sprintf("bf.setAttr(scope, %d, %q, %s);", b.SlotID, b.Name, w.print(b.Expr)))
			}
		}
		ctx.DecIndent()
		ctx.Println("});")
	}
}

// emitStructural walks the tree for conditionals and lists; each gets one
// binding call that owns its anchor.
func (w *clientWriter) emitStructural(node ir.Node) {
	ctx := w.ctx
	switch n := node.(type) {
	case *ir.Element:
		for _, c := range n.Children {
			w.emitStructural(c)
		}
	case *ir.Fragment:
		for _, c := range n.Children {
			w.emitStructural(c)
		}
	case *ir.Conditional:
		thenHTML := w.branchLiteral(n.Then)
		elseHTML := "``"
		if n.Else != nil {
			elseHTML = w.branchLiteral(n.Else)
		}
		ctx.Println(fmt.Sprintf("bf.bindCond(ctx, %d, () => %s, () => %s, () => %s);",
			n.Binding.SlotID, w.print(n.Binding.Expr), thenHTML, elseHTML))
		w.emitStructural(n.Then)
		if n.Else != nil {
			w.emitStructural(n.Else)
		}
	case *ir.List:
		params := n.ItemParam
		if n.IndexParam != "" {
			params += ", " + n.IndexParam
		}
		w.locals = append(w.locals, n.ItemParam, n.IndexParam)
		key := "String(" + n.IndexParam + ")"
		if n.KeyExpr != nil {
			key = "String(" + w.printer.PrintWithLocals(n.KeyExpr, w.locals) + ")"
		}
		itemHTML := w.branchLiteral(n.Item)
		interior := rowInterior(n.Item)
		if len(interior) == 0 {
			ctx.Println(fmt.Sprintf("bf.bindList(ctx, %d, () => %s, (%s) => ({ key: %s, html: %s }));",
				n.Binding.SlotID, w.print(n.Binding.Expr), params, key, itemHTML))
		} else {
			ctx.Println(fmt.Sprintf("bf.bindList(ctx, %d, () => %s, (%s) => ({",
				n.Binding.SlotID, w.print(n.Binding.Expr), params))
			ctx.IncIndent()
			ctx.Println(fmt.Sprintf("key: %s,", key))
			ctx.Println(fmt.Sprintf("html: %s,", itemHTML))
			ctx.Println("attach: (row) => {")
			ctx.IncIndent()
			for _, b := range interior {
				switch {
				case b.Kind == analyzer.BindingKindText:
					ctx.Println(fmt.Sprintf("row.effect((root) => bf.setText(root, %d, %s));", b.SlotID, w.print(b.Expr)))
				case b.Kind == analyzer.BindingKindEvent:
					ctx.Println(fmt.Sprintf("row.listen(%d, %q, %s);", b.SlotID, b.Name, w.print(b.Expr)))
				case b.Name == "":
					ctx.Println(fmt.Sprintf("row.effect((root) => bf.spreadAttrs(root, %d, %s));", b.SlotID, w.print(b.Expr)))
				default:
					ctx.Println(fmt.Sprintf("row.effect((root) => bf.setAttr(root, %d, %q, %s));", b.SlotID, b.Name, w.print(b.Expr)))
				}
			}
			ctx.DecIndent()
			ctx.Println("},")
			ctx.DecIndent()
			ctx.Println("}));")
		}
		w.emitStructural(n.Item)
		w.locals = w.locals[:len(w.locals)-2]
	}
}

// rowInterior collects the slotted bindings directly inside a list item
// subtree, in slot order. Nested conditionals and lists own their
// regions and are excluded.
func rowInterior(node ir.Node) []*analyzer.Binding {
	var out []*analyzer.Binding
	switch n := node.(type) {
	case *ir.Element:
		for _, b := range n.ReactiveAttrs {
			if len(b.DependsOn) > 0 {
				out = append(out, b)
			}
		}
		out = append(out, n.Events...)
		for _, c := range n.Children {
			out = append(out, rowInterior(c)...)
		}
	case *ir.Fragment:
		for _, c := range n.Children {
			out = append(out, rowInterior(c)...)
		}
	case *ir.Text:
		if n.Binding != nil && len(n.Binding.DependsOn) > 0 {
			out = append(out, n.Binding)
		}
	}
	return out
}

// emitListeners attaches event handlers; listeners live outside effects
// since handler identity never depends on signal values. The runtime
// records each binding so a materialized branch re-attaches it. List
// interiors are skipped: their handlers close over the iteration
// parameters and attach per row.
func (w *clientWriter) emitListeners(node ir.Node) {
	ctx := w.ctx
	switch n := node.(type) {
	case *ir.Element:
		for _, ev := range n.Events {
			ctx.Println(fmt.Sprintf("bf.listen(ctx, %d, %q, %s);", ev.SlotID, ev.Name, w.print(ev.Expr)))
		}
		for _, c := range n.Children {
			w.emitListeners(c)
		}
	case *ir.Fragment:
		for _, c := range n.Children {
			w.emitListeners(c)
		}
	case *ir.Conditional:
		w.emitListeners(n.Then)
		if n.Else != nil {
			w.emitListeners(n.Else)
		}
	}
}

// emitChildren initializes child component instances through mountChild,
// which records the thunk so a region swap can re-mount children that
// reappear. Reactive props run the thunk inside an effect, so a signal
// write in the parent re-invokes init, which refreshes the child's props
// in place.
func (w *clientWriter) emitChildren() {
	ctx := w.ctx
	for _, inv := range w.component.Invocations {
		propsLit := w.invocationProps(inv)
		reactive := false
		for _, prop := range inv.Props {
			if len(prop.Binding.DependsOn) > 0 {
				reactive = true
				break
			}
		}
		ctx.Println(fmt.Sprintf("bf.mountChild(ctx, %t, () => init%s(%d, scope, %s));",
			reactive, inv.Name, inv.Index, propsLit))
	}
}

func (w *clientWriter) invocationProps(inv *ir.ComponentInvocation) string {
	if len(inv.Props) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(inv.Props))
	for _, prop := range inv.Props {
		if prop.Name == "..." {
			parts = append(parts, "..."+w.print(prop.Binding.Expr))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", prop.Name, w.print(prop.Binding.Expr)))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// branchLiteral renders a subtree as a JS template literal of HTML,
// including slot attributes and markers so nested bindings reattach after
// a branch or list row is materialized.
func (w *clientWriter) branchLiteral(node ir.Node) string {
	var sb strings.Builder
	sb.WriteByte('`')
	w.writeHTML(&sb, node)
	sb.WriteByte('`')
	return sb.String()
}

func (w *clientWriter) writeHTML(sb *strings.Builder, node ir.Node) {
	switch n := node.(type) {
	case *ir.Element:
		sb.WriteString("<" + n.Tag)
		for _, attr := range n.StaticAttrs {
			switch {
			case attr.Bare:
				sb.WriteString(" " + attr.Name)
			case attr.Expr != nil:
				fmt.Fprintf(sb, ` %s="${%s}"`, attr.Name, w.print(attr.Expr))
			default:
				fmt.Fprintf(sb, ` %s="%s"`, attr.Name, escapeBacktick(escapeHTMLAttr(attr.Value)))
			}
		}
		for _, b := range n.ReactiveAttrs {
			if b.Name == "" {
				continue
			}
			fmt.Fprintf(sb, ` %s="${%s}"`, b.Name, w.print(b.Expr))
		}
		if n.SlotID >= 0 {
			fmt.Fprintf(sb, ` %s="%s"`, SlotAttr, SlotValue(n.SlotID))
		}
		sb.WriteString(">")
		if IsVoidElement(n.Tag) {
			return
		}
		for _, c := range n.Children {
			w.writeHTML(sb, c)
		}
		sb.WriteString("</" + n.Tag + ">")
	case *ir.Text:
		if n.Binding == nil {
			sb.WriteString(escapeBacktick(escapeHTMLText(n.Literal)))
			return
		}
		if n.Binding.SlotID >= 0 {
			sb.WriteString(TextOpen(n.Binding.SlotID))
			sb.WriteString("${" + w.print(n.Binding.Expr) + "}")
			sb.WriteString(TextClose(n.Binding.SlotID))
			return
		}
		sb.WriteString("${" + w.print(n.Binding.Expr) + "}")
	case *ir.Conditional:
		sb.WriteString(Anchor(n.Binding.SlotID))
	case *ir.List:
		sb.WriteString(Anchor(n.Binding.SlotID))
	case *ir.Fragment:
		for _, c := range n.Children {
			w.writeHTML(sb, c)
		}
	case *ir.ComponentInvocation:
		// child markup inside a dynamic branch is mounted by the child's
		// own init once the branch is in the document
	}
}

func escapeBacktick(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", "\\${")
}
