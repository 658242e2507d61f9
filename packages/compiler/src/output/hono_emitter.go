package output

import (
	"fmt"
	"strings"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
)

// HonoEmitter renders the IR as a TSX module for the Hono JSX backend.
// Comment markers cannot be written literally in JSX, so the emitted
// module calls the adapter's marker helpers (bfText, bfTextEnd, bfAnchor,
// bfScope) which return raw HTML comments at render time.
type HonoEmitter struct{}

// Adapter names the backend
func (e *HonoEmitter) Adapter() string { return "hono" }

// FileExt is the artifact extension
func (e *HonoEmitter) FileExt() string { return ".template.tsx" }

// EmitTemplate renders the marked template source
func (e *HonoEmitter) EmitTemplate(c *Component) (string, error) {
	w := &honoWriter{
		component: c,
		printer: serverPrinter(c.Analysis, func(name string) string {
			return "props." + c.Analysis.PropKey(name)
		}),
		ctx: NewEmitterVisitorContext(0),
	}
	return w.emit()
}

type honoWriter struct {
	component *Component
	printer   *analyzer.Printer
	ctx       *EmitterVisitorContext
	locals    []string
}

func (w *honoWriter) emit() (string, error) {
	c := w.component
	ctx := w.ctx
	ctx.Println("// Generated by bfc. Do not edit.")
	if c.IsClient {
		ctx.Println(`import { bfScope, bfText, bfTextEnd, bfAnchor } from "@barefoot/hono";`)
	}
	children := map[string]bool{}
	for _, inv := range c.Invocations {
		if !children[inv.Name] {
			children[inv.Name] = true
			ctx.Println(fmt.Sprintf("import { %s } from %q;", inv.Name, "./"+inv.Name+".template"))
		}
	}
	ctx.Println("")
	ctx.Println(fmt.Sprintf("export function %s(props: %s) {", c.Name, propsType(c)))
	ctx.IncIndent()
	// body locals are visible to the template; effects are client-only
	for _, stmt := range c.Analysis.Body {
		if effectCall(stmt) != nil {
			continue
		}
		if text := w.printer.PrintStmt(stmt); text != "" {
			ctx.Println(text)
		}
	}
	ctx.Println("return (")
	ctx.IncIndent()
	w.emitNode(c.Root, true)
	if !ctx.LineIsEmpty() {
		ctx.Println("")
	}
	ctx.DecIndent()
	ctx.Println(");")
	ctx.DecIndent()
	ctx.Println("}")
	return ctx.ToSource(), nil
}

// propsType renders the component's prop shape as an inline TS type
func propsType(c *Component) string {
	shape := c.Analysis.Component.PropsShape
	if len(shape) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(shape))
	for _, prop := range shape {
		opt := ""
		if prop.Optional || prop.DefaultValue != "" {
			opt = "?"
		}
		typ := prop.Type
		if typ == "" {
			typ = "any"
		}
		parts = append(parts, fmt.Sprintf("%s%s: %s", prop.Name, opt, typ))
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (w *honoWriter) print(b *analyzer.Binding) string {
	return w.printer.PrintWithLocals(b.Expr, w.locals)
}

// emitNode renders one IR node. atRoot adds the scope marker; a non-element
// root is wrapped so the scope attribute has a host.
func (w *honoWriter) emitNode(node ir.Node, atRoot bool) {
	ctx := w.ctx
	if atRoot {
		el, isElement := node.(*ir.Element)
		if !w.component.IsClient {
			// server-only components carry no markers at all
			if isElement {
				w.emitElement(el, "")
				return
			}
			w.emitNode(node, false)
			return
		}
		if isElement {
			w.emitElement(el, fmt.Sprintf(` %s={bfScope(%q)}`, ScopeAttr, w.component.Name))
			return
		}
		ctx.Println(fmt.Sprintf(`<div style="display:contents" %s={bfScope(%q)}>`, ScopeAttr, w.component.Name))
		ctx.IncIndent()
		w.emitNode(node, false)
		ctx.DecIndent()
		ctx.Println("</div>")
		return
	}

	switch n := node.(type) {
	case *ir.Element:
		w.emitElement(n, "")
	case *ir.Text:
		w.emitText(n)
	case *ir.Conditional:
		w.emitConditional(n)
	case *ir.List:
		w.emitList(n)
	case *ir.ComponentInvocation:
		w.emitInvocation(n)
	case *ir.Fragment:
		ctx.Println("<>")
		ctx.IncIndent()
		for _, c := range n.Children {
			w.emitNode(c, false)
		}
		ctx.DecIndent()
		ctx.Println("</>")
	}
}

func (w *honoWriter) emitElement(el *ir.Element, extraAttrs string) {
	ctx := w.ctx
	var sb strings.Builder
	sb.WriteString("<" + el.Tag + extraAttrs)
	for _, attr := range el.StaticAttrs {
		switch {
		case attr.Bare:
			sb.WriteString(" " + attr.Name)
		case attr.Expr != nil:
			sb.WriteString(fmt.Sprintf(" %s={%s}", attr.Name, w.printer.PrintWithLocals(attr.Expr, w.locals)))
		default:
			sb.WriteString(fmt.Sprintf(" %s=%q", attr.Name, attr.Value))
		}
	}
	for _, b := range el.ReactiveAttrs {
		if b.Name == "" {
			// attribute spread
			sb.WriteString(fmt.Sprintf(" {...%s}", w.print(b)))
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s={%s}", b.Name, w.print(b)))
	}
	if w.component.IsClient && el.SlotID >= 0 {
		sb.WriteString(fmt.Sprintf(" %s=%q", SlotAttr, SlotValue(el.SlotID)))
	}
	if len(el.Children) == 0 {
		sb.WriteString(" />")
		ctx.Println(sb.String())
		return
	}
	sb.WriteString(">")
	ctx.Println(sb.String())
	ctx.IncIndent()
	for _, c := range el.Children {
		w.emitNode(c, false)
	}
	ctx.DecIndent()
	ctx.Println("</" + el.Tag + ">")
}

func (w *honoWriter) emitText(t *ir.Text) {
	ctx := w.ctx
	if t.Binding == nil {
		ctx.Println(escapeHTMLText(t.Literal))
		return
	}
	expr := w.print(t.Binding)
	if w.component.IsClient && t.Binding.SlotID >= 0 {
		id := t.Binding.SlotID
		ctx.Println(fmt.Sprintf("{bfText(%d)}{%s}{bfTextEnd(%d)}", id, expr, id))
		return
	}
	ctx.Println("{" + expr + "}")
}

func (w *honoWriter) emitConditional(n *ir.Conditional) {
	ctx := w.ctx
	if w.component.IsClient {
		ctx.Println(fmt.Sprintf("{bfAnchor(%d)}", n.Binding.SlotID))
	}
	ctx.Println("{" + w.print(n.Binding) + " ? (")
	ctx.IncIndent()
	w.emitNode(n.Then, false)
	ctx.DecIndent()
	ctx.Println(") : (")
	ctx.IncIndent()
	if n.Else != nil {
		w.emitNode(n.Else, false)
	} else {
		ctx.Println("null")
	}
	ctx.DecIndent()
	ctx.Println(")}")
}

func (w *honoWriter) emitList(n *ir.List) {
	ctx := w.ctx
	if w.component.IsClient {
		ctx.Println(fmt.Sprintf("{bfAnchor(%d)}", n.Binding.SlotID))
	}
	params := n.ItemParam
	if n.IndexParam != "" {
		params += ", " + n.IndexParam
	}
	ctx.Println(fmt.Sprintf("{%s.map((%s) => (", w.print(n.Binding), params))
	ctx.IncIndent()
	w.locals = append(w.locals, n.ItemParam, n.IndexParam)
	w.emitListItem(n)
	w.locals = w.locals[:len(w.locals)-2]
	ctx.DecIndent()
	ctx.Println("))}")
}

// emitListItem renders the item subtree, stamping the key marker on the
// item's root element so reconciliation can match server-rendered rows
func (w *honoWriter) emitListItem(n *ir.List) {
	el, isElement := n.Item.(*ir.Element)
	if !isElement || n.KeyExpr == nil || !w.component.IsClient {
		w.emitNode(n.Item, false)
		return
	}
	key := w.printer.PrintWithLocals(n.KeyExpr, w.locals)
	w.emitElement(el, fmt.Sprintf(" %s={String(%s)}", KeyAttr, key))
}

func (w *honoWriter) emitInvocation(n *ir.ComponentInvocation) {
	ctx := w.ctx
	var sb strings.Builder
	sb.WriteString("<" + n.Name)
	for _, prop := range n.Props {
		if prop.Name == "..." {
			sb.WriteString(fmt.Sprintf(" {...%s}", w.print(prop.Binding)))
			continue
		}
		sb.WriteString(fmt.Sprintf(" %s={%s}", prop.Name, w.print(prop.Binding)))
	}
	if len(n.Children) == 0 {
		sb.WriteString(" />")
		ctx.Println(sb.String())
		return
	}
	sb.WriteString(">")
	ctx.Println(sb.String())
	ctx.IncIndent()
	for _, c := range n.Children {
		w.emitNode(c, false)
	}
	ctx.DecIndent()
	ctx.Println("</" + n.Name + ">")
}
