package jsx_parser

// Walk calls fn for node and every expression nested inside it, in source
// order. fn returning false prunes the subtree. Arrow bodies are walked
// including block statements, since handler expressions nest freely.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	switch n := node.(type) {
	case *TemplateLit:
		for _, e := range n.Exprs {
			Walk(e, fn)
		}
	case *ArrayLit:
		for _, e := range n.Elements {
			Walk(e, fn)
		}
	case *ObjectLit:
		for _, prop := range n.Props {
			Walk(prop.Value, fn)
		}
	case *SpreadElement:
		Walk(n.Arg, fn)
	case *Member:
		Walk(n.Object, fn)
		if n.Computed {
			Walk(n.Index, fn)
		}
	case *Call:
		Walk(n.Callee, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *New:
		Walk(n.Callee, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}
	case *Unary:
		Walk(n.Arg, fn)
	case *Binary:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *Assign:
		Walk(n.Target, fn)
		Walk(n.Value, fn)
	case *Cond:
		Walk(n.Test, fn)
		Walk(n.Cons, fn)
		Walk(n.Alt, fn)
	case *Arrow:
		Walk(n.Body, fn)
	case *Paren:
		Walk(n.Expr, fn)
	case *JSXElement:
		for _, attr := range n.Attrs {
			if attr.Spread {
				Walk(attr.Expr, fn)
			} else if attr.Value != nil {
				Walk(attr.Value, fn)
			}
		}
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *JSXFragment:
		for _, c := range n.Children {
			Walk(c, fn)
		}
	case *JSXExpr:
		Walk(n.Expr, fn)
	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}
	case *VarDecl:
		for _, d := range n.Decls {
			if d.Init != nil {
				Walk(d.Init, fn)
			}
		}
	case *FuncDecl:
		Walk(n.Body, fn)
	case *ReturnStmt:
		if n.Arg != nil {
			Walk(n.Arg, fn)
		}
	case *ExprStmt:
		Walk(n.Expr, fn)
	case *IfStmt:
		Walk(n.Test, fn)
		Walk(n.Cons, fn)
		if n.Alt != nil {
			Walk(n.Alt, fn)
		}
	}
}
