package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"bfc-go/packages/compiler/src/jsx_parser"
)

// Func is a callable value: arrow closures, signal getters/setters and
// built-in helpers all share this shape.
type Func func(args []interface{}) interface{}

// lazyValue resolves at read time. Prop bindings use it so a refreshed
// prop value is observed by every expression that mentions the name.
type lazyValue struct {
	get func() interface{}
}

// Env is a lexical scope chain mapping names to values.
type Env struct {
	vars   map[string]interface{}
	parent *Env
}

// NewEnv creates a root environment.
func NewEnv() *Env {
	return &Env{vars: map[string]interface{}{}}
}

// Child creates a nested scope.
func (e *Env) Child() *Env {
	return &Env{vars: map[string]interface{}{}, parent: e}
}

// Define binds name in this scope.
func (e *Env) Define(name string, value interface{}) {
	e.vars[name] = value
}

// Lookup resolves name through the chain.
func (e *Env) Lookup(name string) (interface{}, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *Env) assign(name string, value interface{}) {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.vars[name]; ok {
			env.vars[name] = value
			return
		}
	}
	e.vars[name] = value
}

// Eval evaluates an expression. Unresolvable constructs yield nil rather
// than failing; the compiler has already warned about them.
func Eval(expr jsx_parser.Expression, env *Env) interface{} {
	switch n := expr.(type) {
	case *jsx_parser.Ident:
		v, _ := env.Lookup(n.Name)
		if lz, ok := v.(lazyValue); ok {
			return lz.get()
		}
		return v
	case *jsx_parser.StringLit:
		return n.Value
	case *jsx_parser.NumberLit:
		f, err := strconv.ParseFloat(n.Raw, 64)
		if err != nil {
			return float64(0)
		}
		return f
	case *jsx_parser.BoolLit:
		return n.Value
	case *jsx_parser.NullLit:
		return nil
	case *jsx_parser.TemplateLit:
		var sb strings.Builder
		for i, quasi := range n.Quasis {
			sb.WriteString(quasi)
			if i < len(n.Exprs) {
				sb.WriteString(FormatValue(Eval(n.Exprs[i], env)))
			}
		}
		return sb.String()
	case *jsx_parser.ArrayLit:
		out := make([]interface{}, 0, len(n.Elements))
		for _, el := range n.Elements {
			if spread, ok := el.(*jsx_parser.SpreadElement); ok {
				if items, ok := Eval(spread.Arg, env).([]interface{}); ok {
					out = append(out, items...)
				}
				continue
			}
			out = append(out, Eval(el, env))
		}
		return out
	case *jsx_parser.ObjectLit:
		out := map[string]interface{}{}
		for _, prop := range n.Props {
			if prop.Spread {
				if src, ok := Eval(prop.Value, env).(map[string]interface{}); ok {
					for k, v := range src {
						out[k] = v
					}
				}
				continue
			}
			key := prop.Key
			if prop.Computed {
				key = FormatValue(Eval(&jsx_parser.Ident{Name: prop.Key}, env))
			}
			out[key] = Eval(prop.Value, env)
		}
		return out
	case *jsx_parser.Member:
		obj := Eval(n.Object, env)
		if n.Optional && obj == nil {
			return nil
		}
		if n.Computed {
			return member(obj, FormatValue(Eval(n.Index, env)))
		}
		return member(obj, n.Property)
	case *jsx_parser.Call:
		return evalCall(n, env)
	case *jsx_parser.Unary:
		return evalUnary(n, env)
	case *jsx_parser.Binary:
		return evalBinary(n, env)
	case *jsx_parser.Assign:
		return evalAssign(n, env)
	case *jsx_parser.Cond:
		if truthy(Eval(n.Test, env)) {
			return Eval(n.Cons, env)
		}
		return Eval(n.Alt, env)
	case *jsx_parser.Arrow:
		return closure(n, env)
	case *jsx_parser.Paren:
		return Eval(n.Expr, env)
	}
	return nil
}

// ExecStmts runs component body statements: variable declarations,
// expression statements and if statements. Control-flow constructs kept
// verbatim by the parser are skipped.
func ExecStmts(stmts []jsx_parser.Statement, env *Env) {
	for _, stmt := range stmts {
		execStmt(stmt, env)
	}
}

func execStmt(stmt jsx_parser.Statement, env *Env) {
	switch s := stmt.(type) {
	case *jsx_parser.VarDecl:
		for _, d := range s.Decls {
			var value interface{}
			if d.Init != nil {
				value = Eval(d.Init, env)
			}
			bindPattern(d.Pattern, value, env)
		}
	case *jsx_parser.ExprStmt:
		Eval(s.Expr, env)
	case *jsx_parser.IfStmt:
		if truthy(Eval(s.Test, env)) {
			execStmt(s.Cons, env)
		} else if s.Alt != nil {
			execStmt(s.Alt, env)
		}
	case *jsx_parser.BlockStmt:
		inner := env.Child()
		for _, nested := range s.Stmts {
			execStmt(nested, inner)
		}
	}
}

func bindPattern(pattern jsx_parser.Node, value interface{}, env *Env) {
	switch p := pattern.(type) {
	case *jsx_parser.Ident:
		env.Define(p.Name, value)
	case *jsx_parser.ArrayPattern:
		items, _ := value.([]interface{})
		for i, el := range p.Elements {
			if i < len(items) {
				env.Define(el.Name, items[i])
			} else {
				env.Define(el.Name, nil)
			}
		}
	case *jsx_parser.ObjectPattern:
		obj, _ := value.(map[string]interface{})
		for _, prop := range p.Props {
			name := prop.Key
			if prop.Alias != "" {
				name = prop.Alias
			}
			v, ok := obj[prop.Key]
			if !ok && prop.Default != nil {
				v = Eval(prop.Default, env)
			}
			env.Define(name, v)
		}
	}
}

func closure(arrow *jsx_parser.Arrow, env *Env) Func {
	return func(args []interface{}) interface{} {
		inner := env.Child()
		for i, param := range arrow.Params {
			var value interface{}
			if i < len(args) {
				value = args[i]
			} else if param.Default != nil {
				value = Eval(param.Default, inner)
			}
			bindPattern(param.Pattern, value, inner)
		}
		switch body := arrow.Body.(type) {
		case *jsx_parser.BlockStmt:
			blockEnv := inner.Child()
			for _, stmt := range body.Stmts {
				if ret, ok := stmt.(*jsx_parser.ReturnStmt); ok {
					if ret.Arg == nil {
						return nil
					}
					return Eval(ret.Arg, blockEnv)
				}
				execStmt(stmt, blockEnv)
			}
			return nil
		case jsx_parser.Expression:
			return Eval(body, inner)
		}
		return nil
	}
}

func evalCall(call *jsx_parser.Call, env *Env) interface{} {
	args := make([]interface{}, 0, len(call.Args))
	for _, arg := range call.Args {
		if spread, ok := arg.(*jsx_parser.SpreadElement); ok {
			if items, ok := Eval(spread.Arg, env).([]interface{}); ok {
				args = append(args, items...)
			}
			continue
		}
		args = append(args, Eval(arg, env))
	}
	// array method calls used in expressions
	if m, ok := call.Callee.(*jsx_parser.Member); ok && !m.Computed {
		obj := Eval(m.Object, env)
		if m.Optional && obj == nil {
			return nil
		}
		if items, isSlice := obj.([]interface{}); isSlice {
			if result, handled := arrayMethod(items, m.Property, args); handled {
				return result
			}
		}
		if s, isString := obj.(string); isString {
			if result, handled := stringMethod(s, m.Property, args); handled {
				return result
			}
		}
		if fn, isFunc := member(obj, m.Property).(Func); isFunc {
			return fn(args)
		}
		return nil
	}
	callee := Eval(call.Callee, env)
	if call.Optional && callee == nil {
		return nil
	}
	if fn, ok := callee.(Func); ok {
		return fn(args)
	}
	return nil
}

func arrayMethod(items []interface{}, name string, args []interface{}) (interface{}, bool) {
	switch name {
	case "map":
		fn, ok := args[0].(Func)
		if !ok {
			return nil, true
		}
		out := make([]interface{}, len(items))
		for i, item := range items {
			out[i] = fn([]interface{}{item, float64(i)})
		}
		return out, true
	case "filter":
		fn, ok := args[0].(Func)
		if !ok {
			return nil, true
		}
		var out []interface{}
		for i, item := range items {
			if truthy(fn([]interface{}{item, float64(i)})) {
				out = append(out, item)
			}
		}
		return out, true
	case "includes":
		for _, item := range items {
			if looseEqual(item, args[0]) {
				return true, true
			}
		}
		return false, true
	case "join":
		sep := ","
		if len(args) > 0 {
			sep = FormatValue(args[0])
		}
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = FormatValue(item)
		}
		return strings.Join(parts, sep), true
	case "concat":
		out := append([]interface{}{}, items...)
		for _, arg := range args {
			if more, ok := arg.([]interface{}); ok {
				out = append(out, more...)
			} else {
				out = append(out, arg)
			}
		}
		return out, true
	case "slice":
		start, end := 0, len(items)
		if len(args) > 0 {
			start = sliceIndex(args[0], len(items))
		}
		if len(args) > 1 {
			end = sliceIndex(args[1], len(items))
		}
		if start > end {
			start = end
		}
		return append([]interface{}{}, items[start:end]...), true
	}
	return nil, false
}

func sliceIndex(v interface{}, length int) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	i := int(f)
	if i < 0 {
		i += length
	}
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}

func stringMethod(s, name string, args []interface{}) (interface{}, bool) {
	switch name {
	case "toUpperCase":
		return strings.ToUpper(s), true
	case "toLowerCase":
		return strings.ToLower(s), true
	case "trim":
		return strings.TrimSpace(s), true
	case "includes":
		if len(args) == 1 {
			return strings.Contains(s, FormatValue(args[0])), true
		}
		return false, true
	}
	return nil, false
}

func evalUnary(n *jsx_parser.Unary, env *Env) interface{} {
	v := Eval(n.Arg, env)
	switch n.Op {
	case "!":
		return !truthy(v)
	case "-":
		return -toNumber(v)
	case "+":
		return toNumber(v)
	case "typeof":
		return typeName(v)
	case "void":
		return nil
	}
	return nil
}

func evalBinary(n *jsx_parser.Binary, env *Env) interface{} {
	switch n.Op {
	case "&&":
		left := Eval(n.Left, env)
		if !truthy(left) {
			return left
		}
		return Eval(n.Right, env)
	case "||":
		left := Eval(n.Left, env)
		if truthy(left) {
			return left
		}
		return Eval(n.Right, env)
	case "??":
		left := Eval(n.Left, env)
		if left != nil {
			return left
		}
		return Eval(n.Right, env)
	}

	left := Eval(n.Left, env)
	right := Eval(n.Right, env)
	switch n.Op {
	case "+":
		if ls, ok := left.(string); ok {
			return ls + FormatValue(right)
		}
		if rs, ok := right.(string); ok {
			return FormatValue(left) + rs
		}
		return toNumber(left) + toNumber(right)
	case "-":
		return toNumber(left) - toNumber(right)
	case "*":
		return toNumber(left) * toNumber(right)
	case "/":
		return toNumber(left) / toNumber(right)
	case "%":
		return math.Mod(toNumber(left), toNumber(right))
	case "**":
		return math.Pow(toNumber(left), toNumber(right))
	case "==", "===":
		return looseEqual(left, right)
	case "!=", "!==":
		return !looseEqual(left, right)
	case "<":
		return compare(left, right) < 0
	case "<=":
		return compare(left, right) <= 0
	case ">":
		return compare(left, right) > 0
	case ">=":
		return compare(left, right) >= 0
	}
	return nil
}

func evalAssign(n *jsx_parser.Assign, env *Env) interface{} {
	value := Eval(n.Value, env)
	if n.Op != "=" {
		op := strings.TrimSuffix(n.Op, "=")
		current := Eval(n.Target, env)
		value = evalBinary(&jsx_parser.Binary{Op: op, Left: literalOf(current), Right: literalOf(value)}, env)
	}
	if ident, ok := n.Target.(*jsx_parser.Ident); ok {
		env.assign(ident.Name, value)
	}
	return value
}

// literalOf wraps an evaluated value so evalBinary can reuse its operator
// table for compound assignment.
func literalOf(v interface{}) jsx_parser.Expression {
	switch t := v.(type) {
	case string:
		return &jsx_parser.StringLit{Value: t}
	case bool:
		return &jsx_parser.BoolLit{Value: t}
	case float64:
		return &jsx_parser.NumberLit{Raw: strconv.FormatFloat(t, 'g', -1, 64)}
	}
	return &jsx_parser.NullLit{}
}

func member(obj interface{}, name string) interface{} {
	switch o := obj.(type) {
	case map[string]interface{}:
		return o[name]
	case []interface{}:
		if name == "length" {
			return float64(len(o))
		}
		if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(o) {
			return o[i]
		}
	case string:
		if name == "length" {
			return float64(len(o))
		}
	}
	return nil
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	}
	return true
}

func toNumber(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	case nil:
		return 0
	}
	return math.NaN()
}

func looseEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch at := a.(type) {
	case float64:
		if bt, ok := b.(float64); ok {
			return at == bt
		}
	case string:
		if bt, ok := b.(string); ok {
			return at == bt
		}
	case bool:
		if bt, ok := b.(bool); ok {
			return at == bt
		}
	}
	return false
}

func compare(a, b interface{}) int {
	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs)
		}
	}
	an, bn := toNumber(a), toNumber(b)
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return 0
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case Func:
		return "function"
	}
	return "object"
}

// FormatValue renders a value the way JS string coercion would.
func FormatValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'g', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
