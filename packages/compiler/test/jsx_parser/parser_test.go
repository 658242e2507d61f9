package jsx_parser_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/util"
)

func errorCodes(errs []*util.ParseError) []string {
	var codes []string
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	return codes
}

func TestParseFile(t *testing.T) {
	t.Run("should collect exported capitalized functions returning JSX as components", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Counter() {
	return <div>hi</div>;
}
function helper() { return 1; }
export function lowercase() { return <div />; }
`, "counter.tsx")
		var names []string
		for _, c := range file.Components {
			names = append(names, c.Name)
		}
		if diff := cmp.Diff([]string{"Counter"}, names); diff != "" {
			t.Errorf("component names mismatch (-want +got):\n%s", diff)
		}
		if _, ok := file.Helpers["helper"]; !ok {
			t.Errorf("expected helper() to be collected as a helper")
		}
	})

	t.Run("should collect exported arrow components", func(t *testing.T) {
		file := jsx_parser.ParseFile(`export const Badge = () => <span>ok</span>;`, "badge.tsx")
		if len(file.Components) != 1 || file.Components[0].Name != "Badge" {
			t.Fatalf("expected Badge component, got %+v", file.Components)
		}
	})

	t.Run("should mark components client when the file starts with use client", func(t *testing.T) {
		file := jsx_parser.ParseFile(`"use client";
export function App() { return <div />; }
`, "app.tsx")
		if !file.UseClient {
			t.Error("expected UseClient to be set")
		}
		if !file.Components[0].IsClientComponent {
			t.Error("expected component to be marked client")
		}
	})

	t.Run("should warn on a misplaced use client directive", func(t *testing.T) {
		file := jsx_parser.ParseFile(`import { x } from "./x";
"use client";
export function App() { return <div />; }
`, "app.tsx")
		if file.UseClient {
			t.Error("misplaced directive must be treated as absent")
		}
		codes := errorCodes(file.Errors)
		if diff := cmp.Diff([]string{"BF2001"}, codes); diff != "" {
			t.Errorf("error codes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should parse a JSX tree with attributes and expression children", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Card() {
	return <div class="card" onClick={handle}>{title()}</div>;
}
`, "card.tsx")
		ret := componentRoot(t, file)
		el, ok := ret.(*jsx_parser.JSXElement)
		if !ok {
			t.Fatalf("expected JSXElement root, got %T", ret)
		}
		if el.Tag != "div" || el.IsComponent {
			t.Errorf("unexpected element: tag=%q isComponent=%v", el.Tag, el.IsComponent)
		}
		if len(el.Attrs) != 2 {
			t.Fatalf("expected 2 attributes, got %d", len(el.Attrs))
		}
		if el.Attrs[0].Name != "class" || el.Attrs[1].Name != "onClick" {
			t.Errorf("unexpected attr names: %q, %q", el.Attrs[0].Name, el.Attrs[1].Name)
		}
		if len(el.Children) != 1 {
			t.Fatalf("expected 1 child, got %d", len(el.Children))
		}
		if _, ok := el.Children[0].(*jsx_parser.JSXExpr); !ok {
			t.Errorf("expected JSXExpr child, got %T", el.Children[0])
		}
	})

	t.Run("should lex closing tags as tags, not regex literals", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Page() {
	const half = total() / 2;
	return <section><p>hi</p><em>{half}</em></section>;
}
`, "page.tsx")
		if len(file.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", file.Errors)
		}
		root := componentRoot(t, file).(*jsx_parser.JSXElement)
		if len(root.Children) != 2 {
			t.Fatalf("expected 2 children, got %d", len(root.Children))
		}
		p := root.Children[0].(*jsx_parser.JSXElement)
		if p.Tag != "p" || len(p.Children) != 1 {
			t.Errorf("unexpected first child: tag=%q children=%d", p.Tag, len(p.Children))
		}
	})

	t.Run("should treat capitalized tags as component invocations", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function App() {
	return <main><Header title="hi" /></main>;
}
`, "app.tsx")
		root := componentRoot(t, file).(*jsx_parser.JSXElement)
		header := root.Children[0].(*jsx_parser.JSXElement)
		if !header.IsComponent || header.Tag != "Header" {
			t.Errorf("expected Header component element, got tag=%q isComponent=%v", header.Tag, header.IsComponent)
		}
	})

	t.Run("should report mismatched closing tags", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Broken() {
	return <div>text</span>;
}
`, "broken.tsx")
		codes := errorCodes(file.Errors)
		found := false
		for _, code := range codes {
			if code == "BF1020" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected BF1020 in %v", codes)
		}
	})

	t.Run("should parse fragments", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Pair() {
	return <><b>a</b><i>b</i></>;
}
`, "pair.tsx")
		if _, ok := componentRoot(t, file).(*jsx_parser.JSXFragment); !ok {
			t.Errorf("expected JSXFragment root")
		}
	})

	t.Run("should keep unsupported statements as raw text", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Loop() {
	for (let i = 0; i < 3; i++) { work(i); }
	return <div />;
}
`, "loop.tsx")
		if len(file.Errors) != 0 {
			t.Fatalf("unexpected errors: %v", file.Errors)
		}
		fn := file.Components[0].Func
		raw, ok := fn.Body.Stmts[0].(*jsx_parser.RawStmt)
		if !ok {
			t.Fatalf("expected RawStmt, got %T", fn.Body.Stmts[0])
		}
		if raw.Text == "" {
			t.Error("raw statement lost its source text")
		}
	})
}

func TestExtractProps(t *testing.T) {
	t.Run("should read an inline type literal", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Badge(props: { label: string; count?: number }) {
	return <span>{props.label}</span>;
}
`, "badge.tsx")
		shape := file.Components[0].PropsShape
		if len(shape) != 2 {
			t.Fatalf("expected 2 props, got %d", len(shape))
		}
		if shape[0].Name != "label" || shape[0].Optional {
			t.Errorf("unexpected prop[0]: %+v", shape[0])
		}
		if shape[1].Name != "count" || !shape[1].Optional {
			t.Errorf("unexpected prop[1]: %+v", shape[1])
		}
	})

	t.Run("should resolve interface extends chains", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
interface Base { id: string }
interface Props extends Base { title: string }
export function Row(props: Props) {
	return <li>{props.title}</li>;
}
`, "row.tsx")
		shape := file.Components[0].PropsShape
		var names []string
		for _, p := range shape {
			names = append(names, p.Name)
		}
		if diff := cmp.Diff([]string{"id", "title"}, names); diff != "" {
			t.Errorf("prop names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should record destructured defaults as optional", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
export function Greet({ name = "world" }: { name?: string }) {
	return <p>{name}</p>;
}
`, "greet.tsx")
		shape := file.Components[0].PropsShape
		if len(shape) != 1 || !shape[0].Optional || shape[0].DefaultValue != `"world"` {
			t.Errorf("unexpected shape: %+v", shape[0])
		}
	})

	t.Run("should warn on an unresolvable base type", func(t *testing.T) {
		file := jsx_parser.ParseFile(`
import { External } from "./external";
export function Panel(props: External) {
	return <div />;
}
`, "panel.tsx")
		codes := errorCodes(file.Errors)
		found := false
		for _, code := range codes {
			if code == "BF2003" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected BF2003 in %v", codes)
		}
	})
}

// componentRoot returns the expression of the first component's return
// statement.
func componentRoot(t *testing.T, file *jsx_parser.SourceFile) jsx_parser.Expression {
	t.Helper()
	if len(file.Components) == 0 {
		t.Fatalf("no components parsed; errors: %v", file.Errors)
	}
	for _, stmt := range file.Components[0].Func.Body.Stmts {
		if ret, ok := stmt.(*jsx_parser.ReturnStmt); ok {
			expr := ret.Arg
			for {
				if paren, ok := expr.(*jsx_parser.Paren); ok {
					expr = paren.Expr
					continue
				}
				return expr
			}
		}
	}
	t.Fatal("component has no return statement")
	return nil
}
