// Package ir defines the backend-agnostic tree both emitters consume.
// The template emitter and the client emitter read the same IR, which is
// what guarantees they agree on structure and slot numbering without
// communicating.
package ir

import (
	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/jsx_parser"
)

// Node is one IR tree node
type Node interface {
	Visit(v Visitor) interface{}
}

// Visitor dispatches over IR node kinds
type Visitor interface {
	VisitElement(n *Element) interface{}
	VisitText(n *Text) interface{}
	VisitConditional(n *Conditional) interface{}
	VisitList(n *List) interface{}
	VisitComponent(n *ComponentInvocation) interface{}
	VisitFragment(n *Fragment) interface{}
}

// StaticAttr is an attribute whose value never changes after render.
// Value holds a literal; Expr is set instead when the value is a static
// expression resolved at render time.
type StaticAttr struct {
	Name  string
	Value string
	Expr  jsx_parser.Expression
	// Bare marks a value-less attribute such as `disabled`.
	Bare bool
}

// Element is one DOM element. SlotID is -1 unless the element carries
// reactive attributes or event handlers, in which case the emitted markup
// gets a `data-bf="slot_<N>"` marker.
type Element struct {
	Tag           string
	StaticAttrs   []*StaticAttr
	ReactiveAttrs []*analyzer.Binding
	Events        []*analyzer.Binding
	SlotID        int
	Children      []Node
}

// Visit visits the node with a visitor
func (n *Element) Visit(v Visitor) interface{} { return v.VisitElement(n) }

// Text is a text position: a literal when Binding is nil, otherwise an
// interpolated expression. A binding with dependencies receives a slot and
// paired comment markers; a dependency-free binding renders once with no
// marker.
type Text struct {
	Literal string
	Binding *analyzer.Binding
}

// Visit visits the node with a visitor
func (n *Text) Visit(v Visitor) interface{} { return v.VisitText(n) }

// Conditional is a branch point. It may appear at the component root, in
// which case the scope's root element identity can change at runtime and
// the client swaps the whole DOM node on a branch switch.
type Conditional struct {
	Binding *analyzer.Binding
	Then    Node
	Else    Node
}

// Visit visits the node with a visitor
func (n *Conditional) Visit(v Visitor) interface{} { return v.VisitConditional(n) }

// List is a keyed list produced by an iterable expression. Item is the
// per-item subtree; ItemParam/IndexParam are the iteration callback's
// parameter names, in scope inside Item and KeyExpr.
type List struct {
	Binding    *analyzer.Binding
	KeyExpr    jsx_parser.Expression
	ItemParam  string
	IndexParam string
	Item       Node
}

// Visit visits the node with a visitor
func (n *List) Visit(v Visitor) interface{} { return v.VisitList(n) }

// PropArg is one prop passed to a child component
type PropArg struct {
	Name    string
	Binding *analyzer.Binding
}

// ComponentInvocation mounts a child component. Index is the instance
// index of this component type within the parent scope, counted in
// document order, so sibling instances of the same type stay
// distinguishable during hydration.
type ComponentInvocation struct {
	Name     string
	Props    []*PropArg
	Children []Node
	Index    int
}

// Visit visits the node with a visitor
func (n *ComponentInvocation) Visit(v Visitor) interface{} { return v.VisitComponent(n) }

// Fragment groups siblings without a wrapping element
type Fragment struct {
	Children []Node
}

// Visit visits the node with a visitor
func (n *Fragment) Visit(v Visitor) interface{} { return v.VisitFragment(n) }

// Component is the fully built IR for one component
type Component struct {
	Name     string
	IsClient bool
	Root     Node
	Analysis *analyzer.Analysis
	// Bindings lists every slotted binding in slot order.
	Bindings []*analyzer.Binding
	// Invocations lists child component mounts in document order.
	Invocations []*ComponentInvocation
	// SlotCount is one past the highest assigned slot id.
	SlotCount int
}
