package analyzer

import (
	"fmt"
	"strings"

	"bfc-go/packages/compiler/src/jsx_parser"
)

// Printer renders an expression back to script text, substituting tracked
// getter calls and prop references per the target artifact. The shorthand
// property rewrite is mandatory here: once a getter invocation is
// substituted into a shorthand key, `{ variant }` would read as a method
// definition, so every affected shorthand is expanded to explicit
// `key: value` form. Already-explicit properties are never rewritten twice.
type Printer struct {
	Analysis *Analysis
	// GetterCall substitutes a tracked getter invocation. Returning false
	// keeps the call spelled as written.
	GetterCall func(name string) (string, bool)
	// PropRef substitutes a bare prop reference; required.
	PropRef func(name string) string
}

// Print renders one expression
func (pr *Printer) Print(expr jsx_parser.Expression) string {
	return pr.print(expr, map[string]bool{})
}

// PrintWithLocals renders an expression with the given names shadowed,
// used inside list iteration callbacks where the item and index parameters
// hide any outer tracked name.
func (pr *Printer) PrintWithLocals(expr jsx_parser.Expression, locals []string) string {
	shadowed := map[string]bool{}
	for _, name := range locals {
		if name != "" {
			shadowed[name] = true
		}
	}
	return pr.print(expr, shadowed)
}

func (pr *Printer) print(node jsx_parser.Node, shadowed map[string]bool) string {
	a := pr.Analysis
	switch n := node.(type) {
	case *jsx_parser.Ident:
		if !shadowed[n.Name] {
			if a.IsProp(n.Name) {
				return pr.PropRef(n.Name)
			}
		}
		return n.Name
	case *jsx_parser.StringLit:
		return quoteJS(n.Value)
	case *jsx_parser.NumberLit:
		return n.Raw
	case *jsx_parser.BoolLit:
		if n.Value {
			return "true"
		}
		return "false"
	case *jsx_parser.NullLit:
		if n.Undefined {
			return "undefined"
		}
		return "null"
	case *jsx_parser.TemplateLit:
		var sb strings.Builder
		sb.WriteByte('`')
		for i, quasi := range n.Quasis {
			sb.WriteString(escapeTemplate(quasi))
			if i < len(n.Exprs) {
				sb.WriteString("${")
				sb.WriteString(pr.print(n.Exprs[i], shadowed))
				sb.WriteString("}")
			}
		}
		sb.WriteByte('`')
		return sb.String()
	case *jsx_parser.RegexLit:
		return "/" + n.Pattern + "/" + n.Flags
	case *jsx_parser.ArrayLit:
		parts := make([]string, len(n.Elements))
		for i, el := range n.Elements {
			parts[i] = pr.print(el, shadowed)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *jsx_parser.ObjectLit:
		return pr.printObject(n, shadowed)
	case *jsx_parser.SpreadElement:
		return "..." + pr.print(n.Arg, shadowed)
	case *jsx_parser.Member:
		obj := pr.printCalleeSide(n.Object, shadowed)
		op := "."
		if n.Optional {
			op = "?."
		}
		if n.Computed {
			return obj + "[" + pr.print(n.Index, shadowed) + "]"
		}
		return obj + op + n.Property
	case *jsx_parser.Call:
		if ident, ok := n.Callee.(*jsx_parser.Ident); ok && !shadowed[ident.Name] && a.IsGetter(ident.Name) {
			if pr.GetterCall != nil {
				if sub, replaced := pr.GetterCall(ident.Name); replaced {
					return sub
				}
			}
		}
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			args[i] = pr.print(arg, shadowed)
		}
		callee := pr.printCalleeSide(n.Callee, shadowed)
		op := ""
		if n.Optional {
			op = "?."
		}
		return callee + op + "(" + strings.Join(args, ", ") + ")"
	case *jsx_parser.New:
		args := make([]string, len(n.Args))
		for i, arg := range n.Args {
			args[i] = pr.print(arg, shadowed)
		}
		return "new " + pr.printCalleeSide(n.Callee, shadowed) + "(" + strings.Join(args, ", ") + ")"
	case *jsx_parser.Unary:
		if n.Prefix {
			op := n.Op
			if isWordOp(op) {
				op += " "
			}
			return op + pr.print(n.Arg, shadowed)
		}
		return pr.print(n.Arg, shadowed) + n.Op
	case *jsx_parser.Binary:
		return pr.print(n.Left, shadowed) + " " + n.Op + " " + pr.print(n.Right, shadowed)
	case *jsx_parser.Assign:
		return pr.print(n.Target, shadowed) + " " + n.Op + " " + pr.print(n.Value, shadowed)
	case *jsx_parser.Cond:
		return pr.print(n.Test, shadowed) + " ? " + pr.print(n.Cons, shadowed) + " : " + pr.print(n.Alt, shadowed)
	case *jsx_parser.Arrow:
		inner := copyShadow(shadowed)
		params := make([]string, len(n.Params))
		for i, param := range n.Params {
			params[i] = pr.printParam(param, inner)
		}
		head := "(" + strings.Join(params, ", ") + ")"
		if body, ok := n.Body.(*jsx_parser.BlockStmt); ok {
			return head + " => " + pr.printBlock(body, inner)
		}
		return head + " => " + pr.print(n.Body, inner)
	case *jsx_parser.Paren:
		return "(" + pr.print(n.Expr, shadowed) + ")"
	}
	// nodes with no printed form (JSX reaches codegen through the IR, not
	// through this printer) fall back to their verbatim source
	return jsx_parser.Raw(node)
}

// printCalleeSide prints the object/callee position, keeping parens
func (pr *Printer) printCalleeSide(e jsx_parser.Expression, shadowed map[string]bool) string {
	switch e.(type) {
	case *jsx_parser.Arrow, *jsx_parser.Binary, *jsx_parser.Cond, *jsx_parser.Assign:
		return "(" + pr.print(e, shadowed) + ")"
	}
	return pr.print(e, shadowed)
}

func (pr *Printer) printObject(n *jsx_parser.ObjectLit, shadowed map[string]bool) string {
	parts := make([]string, 0, len(n.Props))
	for _, prop := range n.Props {
		switch {
		case prop.Spread:
			parts = append(parts, "..."+pr.print(prop.Value, shadowed))
		case prop.Computed:
			parts = append(parts, "["+prop.Key+"]: "+pr.print(prop.Value, shadowed))
		case prop.Shorthand:
			value := pr.print(prop.Value, shadowed)
			if value == prop.Key {
				parts = append(parts, prop.Key)
			} else {
				// mandatory rewrite: `{ variant }` with a substituted getter
				// must become `{ variant: variant() }`
				parts = append(parts, prop.Key+": "+value)
			}
		default:
			parts = append(parts, quoteKeyIfNeeded(prop.Key)+": "+pr.print(prop.Value, shadowed))
		}
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func (pr *Printer) printParam(param *jsx_parser.Param, shadowed map[string]bool) string {
	shadowParam(param, shadowed)
	var sb strings.Builder
	switch pattern := param.Pattern.(type) {
	case *jsx_parser.Ident:
		sb.WriteString(pattern.Name)
	default:
		sb.WriteString(jsx_parser.Raw(param.Pattern))
	}
	if param.Default != nil {
		sb.WriteString(" = ")
		sb.WriteString(pr.print(param.Default, shadowed))
	}
	return sb.String()
}

// PrintStmt renders a body statement for client codegen
func (pr *Printer) PrintStmt(stmt jsx_parser.Statement) string {
	return pr.printStmt(stmt, map[string]bool{})
}

func (pr *Printer) printStmt(stmt jsx_parser.Statement, shadowed map[string]bool) string {
	switch s := stmt.(type) {
	case *jsx_parser.VarDecl:
		parts := make([]string, len(s.Decls))
		for i, d := range s.Decls {
			var sb strings.Builder
			sb.WriteString(jsx_parser.Raw(d.Pattern))
			if d.Init != nil {
				sb.WriteString(" = ")
				sb.WriteString(pr.print(d.Init, shadowed))
			}
			parts[i] = sb.String()
		}
		decl := s.Kind + " " + strings.Join(parts, ", ") + ";"
		for _, d := range s.Decls {
			shadowPattern(d.Pattern, shadowed)
		}
		return decl
	case *jsx_parser.ExprStmt:
		return pr.print(s.Expr, shadowed) + ";"
	case *jsx_parser.ReturnStmt:
		if s.Arg == nil {
			return "return;"
		}
		return "return " + pr.print(s.Arg, shadowed) + ";"
	case *jsx_parser.IfStmt:
		out := "if (" + pr.print(s.Test, shadowed) + ") " + pr.printNestedStmt(s.Cons, shadowed)
		if s.Alt != nil {
			out += " else " + pr.printNestedStmt(s.Alt, shadowed)
		}
		return out
	case *jsx_parser.BlockStmt:
		return pr.printBlock(s, copyShadow(shadowed))
	case *jsx_parser.RawStmt:
		return s.Text
	case *jsx_parser.DirectiveStmt:
		return ""
	}
	return jsx_parser.Raw(stmt)
}

func (pr *Printer) printNestedStmt(stmt jsx_parser.Statement, shadowed map[string]bool) string {
	if block, ok := stmt.(*jsx_parser.BlockStmt); ok {
		return pr.printBlock(block, copyShadow(shadowed))
	}
	return "{ " + pr.printStmt(stmt, shadowed) + " }"
}

func (pr *Printer) printBlock(block *jsx_parser.BlockStmt, shadowed map[string]bool) string {
	if len(block.Stmts) == 0 {
		return "{}"
	}
	parts := make([]string, 0, len(block.Stmts))
	for _, stmt := range block.Stmts {
		if text := pr.printStmt(stmt, shadowed); text != "" {
			parts = append(parts, text)
		}
	}
	return "{ " + strings.Join(parts, " ") + " }"
}

func isWordOp(op string) bool {
	switch op {
	case "typeof", "void", "delete", "await":
		return true
	}
	return false
}

func quoteJS(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func escapeTemplate(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "`", "\\`")
	return strings.ReplaceAll(s, "${", `\${`)
}

func quoteKeyIfNeeded(key string) string {
	for i := 0; i < len(key); i++ {
		ch := key[i]
		isWord := ch == '_' || ch == '$' ||
			(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') ||
			(i > 0 && ch >= '0' && ch <= '9')
		if !isWord {
			return fmt.Sprintf("%q", key)
		}
	}
	return key
}
