package ir

import "bfc-go/packages/compiler/src/analyzer"

// AssignSlots numbers every reactive position of a component in strict
// pre-order, depth-first, left-to-right. Running the pass twice on the
// same IR yields identical numbering; both emitters rely on that.
//
// Slotted positions, in encounter order per node:
//   - an element carrying reactive attributes or event handlers gets one
//     slot shared by those bindings (the marker is a single attribute on
//     the element)
//   - a reactive text interpolation gets its own slot (comment-pair
//     marker)
//   - a conditional branch point gets a slot (anchor comment)
//   - a list-producing expression gets a slot (anchor comment)
//
// Static subtrees and dependency-free bindings receive no slot. Child
// component invocations reset nothing; slot ids are scoped per emitted
// component, not globally.
func AssignSlots(c *Component) {
	s := &slotAssigner{component: c}
	s.visit(c.Root)
	c.SlotCount = s.next
}

type slotAssigner struct {
	component *Component
	next      int
	listDepth int
}

func (s *slotAssigner) assign() int {
	id := s.next
	s.next++
	return id
}

func (s *slotAssigner) record(b *analyzer.Binding) {
	b.InRow = s.listDepth > 0
	s.component.Bindings = append(s.component.Bindings, b)
}

func (s *slotAssigner) visit(node Node) {
	switch n := node.(type) {
	case *Element:
		if len(n.ReactiveAttrs) > 0 || len(n.Events) > 0 {
			id := s.assign()
			n.SlotID = id
			for _, b := range n.ReactiveAttrs {
				b.SlotID = id
				s.record(b)
			}
			for _, b := range n.Events {
				b.SlotID = id
				s.record(b)
			}
		}
		for _, c := range n.Children {
			s.visit(c)
		}
	case *Text:
		if n.Binding != nil && len(n.Binding.DependsOn) > 0 {
			n.Binding.SlotID = s.assign()
			s.record(n.Binding)
		}
	case *Conditional:
		n.Binding.SlotID = s.assign()
		s.record(n.Binding)
		if n.Then != nil {
			s.visit(n.Then)
		}
		if n.Else != nil {
			s.visit(n.Else)
		}
	case *List:
		n.Binding.SlotID = s.assign()
		s.record(n.Binding)
		s.listDepth++
		s.visit(n.Item)
		s.listDepth--
	case *ComponentInvocation:
		for _, c := range n.Children {
			s.visit(c)
		}
	case *Fragment:
		for _, c := range n.Children {
			s.visit(c)
		}
	}
}
