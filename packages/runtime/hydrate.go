package runtime

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/net/html"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
)

// ErrScopeNotFound reports a missing scope marker: the document was not
// rendered with this component, or the instance index is out of range.
var ErrScopeNotFound = errors.New("scope marker not found")

// Hydrate attaches a component to its server-rendered markup under root:
// it locates the scope element, seeds signals, wires effects to slots and
// markers, binds event listeners and mounts child components. The
// returned scope drives interaction via Dispatch and Set.
func Hydrate(root *html.Node, c *ir.Component, props map[string]interface{}, reg *Registry) (scope *Scope, err error) {
	defer recoverCycle(&err)
	return hydrateScope(root, c, 0, props, reg, nil)
}

func hydrateScope(root *html.Node, c *ir.Component, instanceIndex int, props map[string]interface{}, reg *Registry, parent *Scope) (*Scope, error) {
	el := findScopeElement(root, c.Name, instanceIndex)
	if el == nil {
		return nil, fmt.Errorf("%w: %s instance %d", ErrScopeNotFound, c.Name, instanceIndex)
	}
	s := newScope(c, el, props, reg, parent)
	s.env = liveEnv(s)
	bindSlots(s)
	bindListeners(s)
	if err := mountChildren(s); err != nil {
		return nil, err
	}
	return s, nil
}

// liveEnv builds the reactive environment of a mounted scope.
func liveEnv(s *Scope) *Env {
	a := s.Component.Analysis
	env := NewEnv()

	if name := a.PropsParam(); name != "" {
		env.Define(name, s.props)
	} else {
		for _, prop := range a.Component.PropsShape {
			prop := prop
			env.Define(prop.Name, lazyValue{get: func() interface{} {
				if v, ok := s.props[prop.Name]; ok {
					return v
				}
				if prop.DefaultValue != "" {
					return evalRawExpr(prop.DefaultValue, env)
				}
				return nil
			}})
		}
	}

	for _, decl := range a.Signals {
		seed, seeded := s.props[decl.Getter]
		if !seeded && decl.Init != nil {
			seed = Eval(decl.Init, env)
		}
		sig := newSignal(s.g, seed)
		s.signals[decl.Getter] = sig
		env.Define(decl.Getter, Func(func([]interface{}) interface{} { return sig.Get() }))
		env.Define(decl.Setter, Func(func(args []interface{}) interface{} {
			if len(args) == 0 {
				return nil
			}
			if updater, ok := args[0].(Func); ok {
				sig.Update(func(cur interface{}) interface{} {
					return updater([]interface{}{cur})
				})
				return sig.Peek()
			}
			sig.Set(args[0])
			return sig.Peek()
		}))
	}

	for _, memo := range a.Memos {
		cached := newSignal(s.g, nil)
		fn := closure(memo.Fn, env)
		s.effect(func() { cached.Set(fn(nil)) })
		env.Define(memo.Name, Func(func([]interface{}) interface{} { return cached.Get() }))
	}

	for alias, target := range a.Aliases() {
		if v, ok := env.Lookup(target); ok {
			env.Define(alias, v)
		}
	}

	env.Define("createEffect", Func(func(args []interface{}) interface{} {
		if len(args) > 0 {
			if fn, ok := args[0].(Func); ok {
				s.effect(func() {
					if ret, isFn := fn(nil).(Func); isFn {
						s.g.onCleanup(func() { ret(nil) })
					}
				})
			}
		}
		return nil
	}))

	ExecStmts(a.Body, env)
	return env
}

// bindSlots wires one effect per slotted binding. DOM targets are located
// inside the effect, so content recreated by a branch swap rebinds on the
// next run. Bindings inside list rows are bound per row by bindList, not
// here.
func bindSlots(s *Scope) {
	c := s.Component
	for _, b := range c.Bindings {
		b := b
		if b.InRow {
			continue
		}
		switch b.Kind {
		case analyzer.BindingKindText:
			s.effect(func() {
				value := FormatValue(Eval(b.Expr, s.env))
				if open, close := textMarkers(s.Element, b.SlotID); open != nil {
					replaceBetween(open, close, value)
				}
			})
		case analyzer.BindingKindAttr:
			if b.Name == "" {
				s.effect(func() { applySpread(s, b) })
				continue
			}
			s.effect(func() {
				el := findSlot(s.Element, b.SlotID)
				if el == nil {
					return
				}
				applyAttr(el, b.Name, Eval(b.Expr, s.env))
			})
		}
	}
	bindRegions(s, c.Root, s.env)
}

func applySpread(s *Scope, b *analyzer.Binding) {
	el := findSlot(s.Element, b.SlotID)
	if el == nil {
		return
	}
	if obj, ok := Eval(b.Expr, s.env).(map[string]interface{}); ok {
		for name, v := range obj {
			applyAttr(el, name, v)
		}
	}
}

func applyAttr(el *html.Node, name string, v interface{}) {
	switch t := v.(type) {
	case nil:
		removeAttr(el, name)
	case bool:
		if t {
			setAttr(el, name, "")
		} else {
			removeAttr(el, name)
		}
	default:
		setAttr(el, name, FormatValue(v))
	}
}

// bindRegions walks the IR for conditionals and lists and installs their
// region-swapping effects.
func bindRegions(s *Scope, node ir.Node, env *Env) {
	switch n := node.(type) {
	case *ir.Element:
		for _, child := range n.Children {
			bindRegions(s, child, env)
		}
	case *ir.Fragment:
		for _, child := range n.Children {
			bindRegions(s, child, env)
		}
	case *ir.Conditional:
		bindCond(s, n, env)
		bindRegions(s, n.Then, env)
		if n.Else != nil {
			bindRegions(s, n.Else, env)
		}
	case *ir.List:
		bindList(s, n, env)
	}
}

func bindCond(s *Scope, cond *ir.Conditional, env *Env) {
	anchor := anchorComment(s.Element, cond.Binding.SlotID)
	if anchor == nil {
		return
	}
	current := ""
	first := true
	s.effect(func() {
		branch := "else"
		if truthy(Eval(cond.Binding.Expr, env)) {
			branch = "then"
		}
		if branch == current {
			return
		}
		current = branch
		if first {
			// the server already rendered the live branch
			first = false
			return
		}
		var node ir.Node
		if branch == "then" {
			node = cond.Then
		} else {
			node = cond.Else
		}
		swapRegion(anchor, renderRegion(s, node, env))
	})
}

func bindList(s *Scope, list *ir.List, env *Env) {
	anchor := anchorComment(s.Element, list.Binding.SlotID)
	if anchor == nil {
		return
	}
	interior := rowBindings(list.Item)
	rows := serverRows(anchor)
	s.effect(func() {
		items, _ := Eval(list.Binding.Expr, env).([]interface{})
		desired := make([]rowSpec, 0, len(items))
		for i, item := range items {
			item := item
			index := float64(i)
			keyEnv := env.Child()
			if list.ItemParam != "" {
				keyEnv.Define(list.ItemParam, item)
			}
			if list.IndexParam != "" {
				keyEnv.Define(list.IndexParam, index)
			}
			key := FormatValue(index)
			if list.KeyExpr != nil {
				key = FormatValue(Eval(list.KeyExpr, keyEnv))
			}
			desired = append(desired, rowSpec{
				key: key,
				build: func() *row {
					r := &row{item: item, index: index}
					rEnv := rowEnv(list, env, r)
					r.nodes = renderRegion(s, list.Item, rEnv)
					bindRow(s, r, interior, rEnv)
					return r
				},
				adopt: func(r *row) {
					changed := !reflect.DeepEqual(r.item, item) || r.index != index
					r.item, r.index = item, index
					if !r.bound {
						// server-rendered row seen for the first time
						bindRow(s, r, interior, rowEnv(list, env, r))
						return
					}
					if changed {
						for _, e := range r.effects {
							e.run()
						}
					}
				},
			})
		}
		rows = reconcileRows(anchor, rows, desired)
	})
}

// rowEnv extends env with the iteration parameters, reading through the
// row so a surviving row sees the current item after a reconcile.
func rowEnv(list *ir.List, env *Env, r *row) *Env {
	e := env.Child()
	if list.ItemParam != "" {
		e.Define(list.ItemParam, lazyValue{get: func() interface{} { return r.item }})
	}
	if list.IndexParam != "" {
		e.Define(list.IndexParam, lazyValue{get: func() interface{} { return r.index }})
	}
	return e
}

// rowBindings collects the slotted bindings directly inside a list item
// subtree. Nested conditionals and lists manage their own regions.
func rowBindings(node ir.Node) []*analyzer.Binding {
	var out []*analyzer.Binding
	switch n := node.(type) {
	case *ir.Element:
		out = append(out, n.ReactiveAttrs...)
		out = append(out, n.Events...)
		for _, c := range n.Children {
			out = append(out, rowBindings(c)...)
		}
	case *ir.Fragment:
		for _, c := range n.Children {
			out = append(out, rowBindings(c)...)
		}
	case *ir.Text:
		if n.Binding != nil && len(n.Binding.DependsOn) > 0 {
			out = append(out, n.Binding)
		}
	}
	return out
}

// bindRow wires a row's interior bindings against its own nodes. Effects
// are owned by the row so a removed key tears them down; listeners stay
// in the scope table but go dead with the row.
func bindRow(s *Scope, r *row, bindings []*analyzer.Binding, env *Env) {
	r.bound = true
	for _, b := range bindings {
		b := b
		switch b.Kind {
		case analyzer.BindingKindText:
			r.effects = append(r.effects, s.effect(func() {
				value := FormatValue(Eval(b.Expr, env))
				for _, n := range r.nodes {
					if open, close := textMarkers(n, b.SlotID); open != nil {
						replaceBetween(open, close, value)
						break
					}
				}
			}))
		case analyzer.BindingKindAttr:
			r.effects = append(r.effects, s.effect(func() {
				v := Eval(b.Expr, env)
				for _, n := range r.nodes {
					if el := findSlot(n, b.SlotID); el != nil {
						if b.Name == "" {
							if obj, ok := v.(map[string]interface{}); ok {
								for name, pv := range obj {
									applyAttr(el, name, pv)
								}
							}
						} else {
							applyAttr(el, b.Name, v)
						}
						break
					}
				}
			}))
		case analyzer.BindingKindEvent:
			handler, ok := Eval(b.Expr, env).(Func)
			if !ok {
				continue
			}
			key := listenerKey{b.SlotID, b.Name}
			s.listeners[key] = append(s.listeners[key], Func(func(args []interface{}) interface{} {
				if r.disposed {
					return nil
				}
				return handler(args)
			}))
		}
	}
}

// renderRegion materializes an IR subtree as DOM nodes using the live
// environment's current values.
func renderRegion(s *Scope, node ir.Node, env *Env) []*html.Node {
	if node == nil {
		return nil
	}
	var sb strings.Builder
	r := NewRenderer(s.reg)
	r.renderNode(&sb, s.Component, node, env, true)
	return parseFragment(sb.String())
}

func bindListeners(s *Scope) {
	for _, b := range s.Component.Bindings {
		if b.Kind != analyzer.BindingKindEvent || b.InRow {
			continue
		}
		handler, ok := Eval(b.Expr, s.env).(Func)
		if !ok {
			continue
		}
		key := listenerKey{b.SlotID, b.Name}
		s.listeners[key] = append(s.listeners[key], handler)
	}
}

// mountChildren hydrates child component invocations. Reactive props put
// the mount inside an effect, so a parent signal write refreshes the
// child in place instead of remounting it.
func mountChildren(s *Scope) error {
	var mountErr error
	for _, inv := range s.Component.Invocations {
		inv := inv
		childIR, ok := s.reg.Lookup(inv.Name)
		if !ok {
			continue
		}
		mount := func() {
			props := evalInvocationProps(inv, s.env)
			key := childKey{inv.Name, inv.Index}
			if existing := s.children[key]; existing != nil {
				existing.refresh(props)
				return
			}
			child, err := hydrateScope(s.Element, childIR, inv.Index, props, s.reg, s)
			if err != nil {
				if mountErr == nil {
					mountErr = err
				}
				return
			}
			s.children[key] = child
		}
		if invocationReactive(inv) {
			s.effect(mount)
		} else {
			mount()
		}
		if mountErr != nil {
			return mountErr
		}
	}
	return nil
}

func invocationReactive(inv *ir.ComponentInvocation) bool {
	for _, prop := range inv.Props {
		if len(prop.Binding.DependsOn) > 0 {
			return true
		}
	}
	return false
}

func evalInvocationProps(inv *ir.ComponentInvocation, env *Env) map[string]interface{} {
	props := map[string]interface{}{}
	for _, prop := range inv.Props {
		if prop.Name == "..." {
			if obj, ok := Eval(prop.Binding.Expr, env).(map[string]interface{}); ok {
				for k, v := range obj {
					props[k] = v
				}
			}
			continue
		}
		props[prop.Name] = Eval(prop.Binding.Expr, env)
	}
	return props
}
