package runtime

import (
	"fmt"
	"sort"
	"strings"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/output"
)

// Renderer produces the marked server HTML a template backend would emit,
// by interpreting the IR against initial values. Hydration and the
// end-to-end tests start from its output.
type Renderer struct {
	reg    *Registry
	suffix int
}

// NewRenderer creates a renderer resolving child components through reg.
func NewRenderer(reg *Registry) *Renderer {
	return &Renderer{reg: reg}
}

// Render renders one component instance with the given props.
func (r *Renderer) Render(c *ir.Component, props map[string]interface{}) string {
	var sb strings.Builder
	r.renderComponent(&sb, c, props)
	return sb.String()
}

// initialEnv builds the static environment of one render: props bound
// directly, signal getters returning their seeded initial value, memo
// getters evaluating their body, aliases resolved.
func initialEnv(a *analyzer.Analysis, props map[string]interface{}) *Env {
	env := NewEnv()
	if name := a.PropsParam(); name != "" {
		env.Define(name, props)
	} else {
		for _, prop := range a.Component.PropsShape {
			value, ok := props[prop.Name]
			if !ok && prop.DefaultValue != "" {
				value = evalRawExpr(prop.DefaultValue, env)
			}
			env.Define(prop.Name, value)
		}
	}
	for _, sig := range a.Signals {
		seed, seeded := props[sig.Getter]
		if !seeded && sig.Init != nil {
			seed = Eval(sig.Init, env)
		}
		value := seed
		env.Define(sig.Getter, Func(func([]interface{}) interface{} { return value }))
		env.Define(sig.Setter, Func(func([]interface{}) interface{} { return nil }))
	}
	for _, memo := range a.Memos {
		fn := memo.Fn
		memoEnv := env
		env.Define(memo.Name, Func(func([]interface{}) interface{} {
			return closure(fn, memoEnv)(nil)
		}))
	}
	for alias, target := range a.Aliases() {
		if v, ok := env.Lookup(target); ok {
			env.Define(alias, v)
		}
	}
	env.Define("createEffect", Func(func([]interface{}) interface{} { return nil }))
	ExecStmts(a.Body, env)
	return env
}

// evalRawExpr parses and evaluates a detached expression snippet, used for
// prop default values which the shape keeps as source text.
func evalRawExpr(src string, env *Env) interface{} {
	file := jsx_parser.ParseFile("export function X(){return ("+src+");}", "default-value")
	fn := file.Helpers["X"]
	if fn == nil && len(file.Components) > 0 {
		fn = file.Components[0].Func
	}
	if fn == nil || fn.Body == nil {
		return nil
	}
	for _, stmt := range fn.Body.Stmts {
		if ret, ok := stmt.(*jsx_parser.ReturnStmt); ok && ret.Arg != nil {
			return Eval(ret.Arg, env)
		}
	}
	return nil
}

func (r *Renderer) renderComponent(sb *strings.Builder, c *ir.Component, props map[string]interface{}) {
	env := initialEnv(c.Analysis, props)
	r.suffix++
	scopeValue := fmt.Sprintf("%s_%d", c.Name, r.suffix)
	if !c.IsClient {
		r.renderNode(sb, c, c.Root, env, false)
		return
	}
	if el, ok := c.Root.(*ir.Element); ok {
		r.renderElement(sb, c, el, env, true, fmt.Sprintf(` %s="%s"`, output.ScopeAttr, scopeValue))
		return
	}
	fmt.Fprintf(sb, `<div style="display:contents" %s="%s">`, output.ScopeAttr, scopeValue)
	r.renderNode(sb, c, c.Root, env, true)
	sb.WriteString("</div>")
}

func (r *Renderer) renderNode(sb *strings.Builder, c *ir.Component, node ir.Node, env *Env, client bool) {
	switch n := node.(type) {
	case *ir.Element:
		r.renderElement(sb, c, n, env, client, "")
	case *ir.Text:
		r.renderText(sb, n, env, client)
	case *ir.Conditional:
		if client {
			sb.WriteString(output.Anchor(n.Binding.SlotID))
		}
		if truthy(Eval(n.Binding.Expr, env)) {
			r.renderNode(sb, c, n.Then, env, client)
		} else if n.Else != nil {
			r.renderNode(sb, c, n.Else, env, client)
		}
	case *ir.List:
		r.renderList(sb, c, n, env, client)
	case *ir.ComponentInvocation:
		r.renderInvocation(sb, n, env)
	case *ir.Fragment:
		for _, child := range n.Children {
			r.renderNode(sb, c, child, env, client)
		}
	}
}

func (r *Renderer) renderElement(sb *strings.Builder, c *ir.Component, el *ir.Element, env *Env, client bool, extra string) {
	sb.WriteString("<" + el.Tag + extra)
	for _, a := range el.StaticAttrs {
		switch {
		case a.Bare:
			sb.WriteString(" " + a.Name)
		case a.Expr != nil:
			fmt.Fprintf(sb, ` %s="%s"`, a.Name, escapeAttr(FormatValue(Eval(a.Expr, env))))
		default:
			fmt.Fprintf(sb, ` %s="%s"`, a.Name, escapeAttr(a.Value))
		}
	}
	for _, b := range el.ReactiveAttrs {
		if b.Name == "" {
			if obj, ok := Eval(b.Expr, env).(map[string]interface{}); ok {
				names := make([]string, 0, len(obj))
				for name := range obj {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(sb, ` %s="%s"`, name, escapeAttr(FormatValue(obj[name])))
				}
			}
			continue
		}
		fmt.Fprintf(sb, ` %s="%s"`, b.Name, escapeAttr(FormatValue(Eval(b.Expr, env))))
	}
	if client && el.SlotID >= 0 {
		fmt.Fprintf(sb, ` %s="%s"`, output.SlotAttr, output.SlotValue(el.SlotID))
	}
	sb.WriteString(">")
	if output.IsVoidElement(el.Tag) {
		return
	}
	for _, child := range el.Children {
		r.renderNode(sb, c, child, env, client)
	}
	sb.WriteString("</" + el.Tag + ">")
}

func (r *Renderer) renderText(sb *strings.Builder, t *ir.Text, env *Env, client bool) {
	if t.Binding == nil {
		sb.WriteString(escapeText(t.Literal))
		return
	}
	value := escapeText(FormatValue(Eval(t.Binding.Expr, env)))
	if client && t.Binding.SlotID >= 0 {
		sb.WriteString(output.TextOpen(t.Binding.SlotID))
		sb.WriteString(value)
		sb.WriteString(output.TextClose(t.Binding.SlotID))
		return
	}
	sb.WriteString(value)
}

func (r *Renderer) renderList(sb *strings.Builder, c *ir.Component, list *ir.List, env *Env, client bool) {
	if client {
		sb.WriteString(output.Anchor(list.Binding.SlotID))
	}
	items, _ := Eval(list.Binding.Expr, env).([]interface{})
	for i, item := range items {
		itemEnv := env.Child()
		if list.ItemParam != "" {
			itemEnv.Define(list.ItemParam, item)
		}
		if list.IndexParam != "" {
			itemEnv.Define(list.IndexParam, float64(i))
		}
		el, isEl := list.Item.(*ir.Element)
		if isEl && client {
			key := FormatValue(float64(i))
			if list.KeyExpr != nil {
				key = FormatValue(Eval(list.KeyExpr, itemEnv))
			}
			r.renderElement(sb, c, el, itemEnv, client, fmt.Sprintf(` %s="%s"`, output.KeyAttr, escapeAttr(key)))
			continue
		}
		r.renderNode(sb, c, list.Item, itemEnv, client)
	}
}

func (r *Renderer) renderInvocation(sb *strings.Builder, inv *ir.ComponentInvocation, env *Env) {
	child, ok := r.reg.Lookup(inv.Name)
	if !ok {
		return
	}
	props := map[string]interface{}{}
	for _, prop := range inv.Props {
		if prop.Name == "..." {
			if obj, isObj := Eval(prop.Binding.Expr, env).(map[string]interface{}); isObj {
				for k, v := range obj {
					props[k] = v
				}
			}
			continue
		}
		props[prop.Name] = Eval(prop.Binding.Expr, env)
	}
	r.renderComponent(sb, child, props)
}

func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}

func escapeAttr(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	return strings.ReplaceAll(s, `"`, "&quot;")
}
