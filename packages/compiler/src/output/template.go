package output

import (
	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
)

// TemplateEmitter renders a component's IR into one backend's marked
// template. Backends differ in literal syntax but must keep marker
// placement identical relative to the IR.
type TemplateEmitter interface {
	// Adapter names the backend, e.g. "hono" or "gotemplate".
	Adapter() string
	// FileExt is the artifact file extension including the dot.
	FileExt() string
	// EmitTemplate renders the marked template source.
	EmitTemplate(c *Component) (string, error)
}

// Component aliases the IR component for emitter signatures
type Component = ir.Component

// NewTemplateEmitter returns the emitter for a server adapter name
func NewTemplateEmitter(adapter string) TemplateEmitter {
	switch adapter {
	case "gotemplate":
		return &GoTemplateEmitter{}
	default:
		return &HonoEmitter{}
	}
}

// serverPrinter renders expressions for template emission: tracked signal
// getter calls resolve to their initial-value expression, memo calls to
// their body, and prop references to the backend's prop access form. The
// result is the value the server renders before hydration attaches
// reactivity.
func serverPrinter(a *analyzer.Analysis, propRef func(string) string) *analyzer.Printer {
	var pr *analyzer.Printer
	pr = &analyzer.Printer{
		Analysis: a,
		PropRef:  propRef,
		GetterCall: func(name string) (string, bool) {
			if sig := a.SignalFor(name); sig != nil {
				if sig.Init == nil {
					return "undefined", true
				}
				return pr.Print(sig.Init), true
			}
			if memo := a.MemoFor(name); memo != nil {
				if body, ok := memo.Fn.Body.(jsx_parser.Expression); ok {
					return "(" + pr.Print(body) + ")", true
				}
				return "undefined", true
			}
			return "", false
		},
	}
	return pr
}
