package output

import (
	"fmt"
	"strings"

	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
)

// GoTemplateEmitter renders the IR as a Go html/template source file.
//
// html/template strips literal HTML comments while parsing, so marker
// comments go through registered helper functions (bfText, bfTextEnd,
// bfAnchor, bfScope) that return template.HTML at render time, the same
// contract the Hono adapter uses.
//
// Go templates cannot evaluate arbitrary JS expressions. Bindings that
// reduce to a prop reference become pipelines ({{.name}}, {{if .flag}},
// {{range .items}}); signal getters reduce to their literal initial value
// when one exists. Anything else renders empty between its markers and
// hydration fills it on the client.
type GoTemplateEmitter struct{}

// Adapter names the backend
func (e *GoTemplateEmitter) Adapter() string { return "gotemplate" }

// FileExt is the artifact extension
func (e *GoTemplateEmitter) FileExt() string { return ".template.tmpl" }

// EmitTemplate renders the marked template source
func (e *GoTemplateEmitter) EmitTemplate(c *Component) (string, error) {
	w := &gotmplWriter{component: c, ctx: NewEmitterVisitorContext(0)}
	ctx := w.ctx
	ctx.Println(fmt.Sprintf("{{- /* Generated by bfc: component %s */ -}}", c.Name))
	ctx.Println(fmt.Sprintf("{{define %q}}", c.Name))
	ctx.IncIndent()
	w.emitNode(c.Root, true)
	if !ctx.LineIsEmpty() {
		ctx.Println("")
	}
	ctx.DecIndent()
	ctx.Println("{{end}}")
	return ctx.ToSource(), nil
}

type gotmplWriter struct {
	component *Component
	ctx       *EmitterVisitorContext
	// rangeDepth > 0 while inside {{range}}, where the item is dot
	rangeDepth int
	rangeItem  string
}

// pipeline translates an expression into a template pipeline. ok is false
// when the expression has no Go-template rendering; callers then emit the
// empty placeholder and leave the value to hydration.
func (w *gotmplWriter) pipeline(expr jsx_parser.Expression) (string, bool) {
	a := w.component.Analysis
	switch e := expr.(type) {
	case *jsx_parser.StringLit:
		return fmt.Sprintf("%q", e.Value), true
	case *jsx_parser.NumberLit:
		return e.Raw, true
	case *jsx_parser.BoolLit:
		if e.Value {
			return "true", true
		}
		return "false", true
	case *jsx_parser.Paren:
		return w.pipeline(e.Expr)
	case *jsx_parser.Ident:
		if w.rangeDepth > 0 && e.Name == w.rangeItem {
			return ".", true
		}
		if a.IsProp(e.Name) {
			return "." + a.PropKey(e.Name), true
		}
		return "", false
	case *jsx_parser.Member:
		if e.Computed {
			return "", false
		}
		base, ok := w.pipeline(e.Object)
		if !ok {
			return "", false
		}
		if base == "." {
			return "." + e.Property, true
		}
		return base + "." + e.Property, true
	case *jsx_parser.Call:
		// a tracked getter renders its initial value when it is a literal
		callee, isIdent := e.Callee.(*jsx_parser.Ident)
		if !isIdent || len(e.Args) != 0 {
			return "", false
		}
		if sig := a.SignalFor(callee.Name); sig != nil && sig.Init != nil {
			return w.pipeline(sig.Init)
		}
		return "", false
	}
	return "", false
}

func (w *gotmplWriter) emitNode(node ir.Node, atRoot bool) {
	ctx := w.ctx
	if atRoot {
		el, isElement := node.(*ir.Element)
		if !w.component.IsClient {
			w.emitNode(node, false)
			return
		}
		if isElement {
			w.emitElement(el, fmt.Sprintf(` %s="{{bfScope %q}}"`, ScopeAttr, w.component.Name))
			return
		}
		ctx.Println(fmt.Sprintf(`<div style="display:contents" %s="{{bfScope %q}}">`, ScopeAttr, w.component.Name))
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
		for _, c := range n.Children {
			w.emitNode(c, false)
		}
	}
}

func (w *gotmplWriter) emitElement(el *ir.Element, extraAttrs string) {
	ctx := w.ctx
	var sb strings.Builder
	sb.WriteString("<" + el.Tag + extraAttrs)
	for _, attr := range el.StaticAttrs {
		switch {
		case attr.Bare:
			sb.WriteString(" " + attr.Name)
		case attr.Expr != nil:
			if pipe, ok := w.pipeline(attr.Expr); ok {
				sb.WriteString(fmt.Sprintf(` %s="{{%s}}"`, attr.Name, pipe))
			} else {
				sb.WriteString(fmt.Sprintf(` %s=""`, attr.Name))
			}
		default:
			sb.WriteString(fmt.Sprintf(" %s=%q", attr.Name, escapeHTMLAttr(attr.Value)))
		}
	}
	for _, b := range el.ReactiveAttrs {
		if b.Name == "" {
			// attribute spreads have no server rendering here; hydration
			// applies them
			continue
		}
		if pipe, ok := w.pipeline(b.Expr); ok {
			sb.WriteString(fmt.Sprintf(` %s="{{%s}}"`, b.Name, pipe))
		} else {
			sb.WriteString(fmt.Sprintf(` %s=""`, b.Name))
		}
	}
	if w.component.IsClient && el.SlotID >= 0 {
		sb.WriteString(fmt.Sprintf(" %s=%q", SlotAttr, SlotValue(el.SlotID)))
	}
	if IsVoidElement(el.Tag) {
		sb.WriteString(">")
		ctx.Println(sb.String())
		return
	}
	if len(el.Children) == 0 {
		sb.WriteString(fmt.Sprintf("></%s>", el.Tag))
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

func (w *gotmplWriter) emitText(t *ir.Text) {
	ctx := w.ctx
	if t.Binding == nil {
		ctx.Println(escapeHTMLText(t.Literal))
		return
	}
	pipe, ok := w.pipeline(t.Binding.Expr)
	if !ok {
		pipe = `""`
	}
	if w.component.IsClient && t.Binding.SlotID >= 0 {
		id := t.Binding.SlotID
		ctx.Println(fmt.Sprintf("{{bfText %d}}{{%s}}{{bfTextEnd %d}}", id, pipe, id))
		return
	}
	ctx.Println(fmt.Sprintf("{{%s}}", pipe))
}

func (w *gotmplWriter) emitConditional(n *ir.Conditional) {
	ctx := w.ctx
	if w.component.IsClient {
		ctx.Println(fmt.Sprintf("{{bfAnchor %d}}", n.Binding.SlotID))
	}
	pipe, ok := w.pipeline(n.Binding.Expr)
	if !ok {
		// undecidable on the server: render nothing, hydration mounts
		// the live branch at the anchor
		return
	}
	ctx.Println(fmt.Sprintf("{{if %s}}", pipe))
	ctx.IncIndent()
	w.emitNode(n.Then, false)
	ctx.DecIndent()
	if n.Else != nil {
		ctx.Println("{{else}}")
		ctx.IncIndent()
		w.emitNode(n.Else, false)
		ctx.DecIndent()
	}
	ctx.Println("{{end}}")
}

func (w *gotmplWriter) emitList(n *ir.List) {
	ctx := w.ctx
	if w.component.IsClient {
		ctx.Println(fmt.Sprintf("{{bfAnchor %d}}", n.Binding.SlotID))
	}
	pipe, ok := w.pipeline(n.Binding.Expr)
	if !ok {
		return
	}
	ctx.Println(fmt.Sprintf("{{range %s}}", pipe))
	ctx.IncIndent()
	prevDepth, prevItem := w.rangeDepth, w.rangeItem
	w.rangeDepth++
	w.rangeItem = n.ItemParam
	w.emitListItem(n)
	w.rangeDepth, w.rangeItem = prevDepth, prevItem
	ctx.DecIndent()
	ctx.Println("{{end}}")
}

func (w *gotmplWriter) emitListItem(n *ir.List) {
	el, isElement := n.Item.(*ir.Element)
	if !isElement || n.KeyExpr == nil || !w.component.IsClient {
		w.emitNode(n.Item, false)
		return
	}
	key, ok := w.pipeline(n.KeyExpr)
	if !ok {
		w.emitElement(el, "")
		return
	}
	w.emitElement(el, fmt.Sprintf(` %s="{{%s}}"`, KeyAttr, key))
}

func (w *gotmplWriter) emitInvocation(n *ir.ComponentInvocation) {
	ctx := w.ctx
	// child templates receive a dict built by the bfProps helper from
	// name/value pairs
	var args strings.Builder
	for _, prop := range n.Props {
		if prop.Name == "..." {
			continue
		}
		pipe, ok := w.pipeline(prop.Binding.Expr)
		if !ok {
			pipe = `""`
		}
		fmt.Fprintf(&args, " %q (%s)", prop.Name, pipe)
	}
	ctx.Println(fmt.Sprintf("{{template %q (bfProps%s)}}", n.Name, args.String()))
}
