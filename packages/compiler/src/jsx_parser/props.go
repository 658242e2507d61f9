package jsx_parser

import (
	"fmt"

	"bfc-go/packages/compiler/src/util"
)

// ExtractProps resolves a component function's prop shape from its first
// parameter. Named type references are resolved against the file's local
// interface and type alias declarations, following `extends` chains
// transitively. Bases imported from other modules are refused and surface
// as opaque pass-through fields.
func ExtractProps(file *SourceFile, fn *FuncDecl) ([]*PropShape, []*util.ParseError) {
	if len(fn.Params) == 0 {
		return nil, nil
	}
	param := fn.Params[0]
	var errs []*util.ParseError
	var shapes []*PropShape

	if param.TypeAnn != nil {
		shapes, errs = resolveTypeShape(file, param.TypeAnn, fn)
	}

	// merge destructuring defaults, and synthesize shapes for
	// pattern-only props when no annotation exists
	if pattern, ok := param.Pattern.(*ObjectPattern); ok {
		for _, prop := range pattern.Props {
			if prop.Rest {
				continue
			}
			shape := findShape(shapes, prop.Key)
			if shape == nil {
				shape = &PropShape{Name: prop.Key, Type: "any"}
				shapes = append(shapes, shape)
			}
			if prop.Default != nil {
				shape.DefaultValue = Raw(prop.Default)
				shape.Optional = true
			}
		}
	}
	return shapes, errs
}

func findShape(shapes []*PropShape, name string) *PropShape {
	for _, s := range shapes {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func resolveTypeShape(file *SourceFile, ann *TypeNode, fn *FuncDecl) ([]*PropShape, []*util.ParseError) {
	if len(ann.Members) > 0 {
		return membersToShapes(ann.Members), nil
	}
	if ann.Ref != "" {
		r := &typeResolver{file: file, imported: file.ImportedNames(), seen: map[string]bool{}}
		shapes := r.resolve(ann.Ref, ann.SourceSpan())
		return shapes, r.errs
	}
	if ann.Raw != "" {
		return nil, []*util.ParseError{util.NewParseWarning(ann.SourceSpan(), "BF2002",
			fmt.Sprintf("cannot extract a prop shape from type %q of component %s; props treated as opaque", ann.Raw, fn.Name))}
	}
	return nil, nil
}

func membersToShapes(members []*TypeMember) []*PropShape {
	shapes := make([]*PropShape, 0, len(members))
	for _, m := range members {
		shapes = append(shapes, &PropShape{
			Name:     m.Name,
			Type:     m.Type,
			Optional: m.Optional,
		})
	}
	return shapes
}

// typeResolver walks interface/alias extends chains within one file
type typeResolver struct {
	file     *SourceFile
	imported map[string]string
	seen     map[string]bool
	errs     []*util.ParseError
}

func (r *typeResolver) resolve(name string, span *util.ParseSourceSpan) []*PropShape {
	if r.seen[name] {
		return nil
	}
	r.seen[name] = true

	if source, isImported := r.imported[name]; isImported {
		// external base types are pass-through, never resolved
		r.errs = append(r.errs, util.NewParseWarning(span, "BF2003",
			fmt.Sprintf("type %q is imported from %q and is not resolved; kept as opaque pass-through", name, source)))
		return []*PropShape{{Name: name, Type: name, Opaque: true}}
	}

	var bases []string
	var own []*PropShape
	switch {
	case r.file.Interfaces[name] != nil:
		decl := r.file.Interfaces[name]
		bases = decl.Extends
		own = membersToShapes(decl.Members)
	case r.file.TypeAliases[name] != nil:
		decl := r.file.TypeAliases[name]
		bases = decl.Extends
		own = membersToShapes(decl.Members)
	default:
		r.errs = append(r.errs, util.NewParseWarning(span, "BF2003",
			fmt.Sprintf("type %q is not declared in this file; kept as opaque pass-through", name)))
		return []*PropShape{{Name: name, Type: name, Opaque: true}}
	}

	// base members first, own members override by name
	var shapes []*PropShape
	for _, base := range bases {
		shapes = mergeShapes(shapes, r.resolve(base, span))
	}
	return mergeShapes(shapes, own)
}

func mergeShapes(into, from []*PropShape) []*PropShape {
	for _, s := range from {
		if existing := findShape(into, s.Name); existing != nil {
			existing.Type = s.Type
			existing.Optional = s.Optional
			continue
		}
		into = append(into, s)
	}
	return into
}
