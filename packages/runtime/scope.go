package runtime

import (
	"fmt"

	"golang.org/x/net/html"

	"bfc-go/packages/compiler/src/ir"
)

// Scope is one mounted component instance: its DOM subtree, reactive
// state and event listeners. Child scopes share the root's dependency
// graph so a parent effect re-invoking a child tracks correctly.
type Scope struct {
	Component *ir.Component
	Element   *html.Node

	g         *graph
	env       *Env
	props     map[string]interface{}
	effects   []*Effect
	signals   map[string]*Signal
	listeners map[listenerKey][]Func
	children  map[childKey]*Scope
	parent    *Scope
	reg       *Registry
}

type listenerKey struct {
	slot  int
	event string
}

type childKey struct {
	name  string
	index int
}

func newScope(c *ir.Component, el *html.Node, props map[string]interface{}, reg *Registry, parent *Scope) *Scope {
	g := &graph{ran: map[*Effect]bool{}}
	if parent != nil {
		g = parent.g
	}
	copied := map[string]interface{}{}
	for k, v := range props {
		copied[k] = v
	}
	return &Scope{
		Component: c,
		Element:   el,
		g:         g,
		props:     copied,
		signals:   map[string]*Signal{},
		listeners: map[listenerKey][]Func{},
		children:  map[childKey]*Scope{},
		parent:    parent,
		reg:       reg,
	}
}

func (s *Scope) effect(fn func()) *Effect {
	e := newEffect(s.g, fn)
	s.effects = append(s.effects, e)
	return e
}

// Signal returns a declared signal by getter name, for assertions and
// programmatic writes in tests.
func (s *Scope) Signal(getter string) *Signal {
	return s.signals[getter]
}

// Child returns a mounted child scope.
func (s *Scope) Child(name string, index int) *Scope {
	return s.children[childKey{name, index}]
}

// Dispatch fires an event on the slot's bound listeners, mirroring a DOM
// event on the marked element. A cyclic effect cascade surfaces as
// ErrCycle.
func (s *Scope) Dispatch(slotID int, event string, args ...interface{}) (err error) {
	defer recoverCycle(&err)
	key := listenerKey{slotID, event}
	if len(s.listeners[key]) == 0 {
		return fmt.Errorf("no %q listener on slot %d of %s", event, slotID, s.Component.Name)
	}
	for _, fn := range s.listeners[key] {
		fn(args)
	}
	return nil
}

// Refresh merges new props into the live prop set and re-runs every
// effect, the host-side mirror of a parent effect re-invoking init.
func (s *Scope) Refresh(props map[string]interface{}) (err error) {
	defer recoverCycle(&err)
	s.refresh(props)
	return nil
}

func (s *Scope) refresh(props map[string]interface{}) {
	for k, v := range props {
		s.props[k] = v
	}
	for _, e := range s.effects {
		e.run()
	}
}

// Dispose unmounts the scope: children first, then every effect with its
// pending cleanup, then the listener table. The DOM subtree is left for
// the caller to detach.
func (s *Scope) Dispose() {
	for _, child := range s.children {
		child.Dispose()
	}
	s.children = map[childKey]*Scope{}
	for _, e := range s.effects {
		e.dispose()
	}
	s.effects = nil
	s.listeners = map[listenerKey][]Func{}
}

// Set writes a signal by getter name with the cycle guard applied, for
// driving updates from tests without going through an event.
func (s *Scope) Set(getter string, value interface{}) (err error) {
	defer recoverCycle(&err)
	sig := s.signals[getter]
	if sig == nil {
		return fmt.Errorf("no signal %q in %s", getter, s.Component.Name)
	}
	sig.Set(value)
	return nil
}
