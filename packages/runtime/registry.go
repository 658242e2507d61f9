package runtime

import "bfc-go/packages/compiler/src/ir"

// Registry resolves component names to their compiled IR, the host-side
// equivalent of the browser runtime's init-function registry. Hydration
// uses it to mount child components recursively.
type Registry struct {
	components map[string]*ir.Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: map[string]*ir.Component{}}
}

// Register adds or replaces a component.
func (r *Registry) Register(c *ir.Component) {
	r.components[c.Name] = c
}

// Lookup resolves a component by name.
func (r *Registry) Lookup(name string) (*ir.Component, bool) {
	c, ok := r.components[name]
	return c, ok
}
