package analyzer_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/jsx_parser"
)

func analyze(t *testing.T, src string) *analyzer.Analysis {
	t.Helper()
	file := jsx_parser.ParseFile(src, "test.tsx")
	if len(file.Components) == 0 {
		t.Fatalf("no components parsed; errors: %v", file.Errors)
	}
	return analyzer.Analyze(file, file.Components[0])
}

func TestAnalyze(t *testing.T) {
	t.Run("should recognize createSignal declarations", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Counter() {
	const [count, setCount] = createSignal(0);
	return <div>{count()}</div>;
}
`)
		if len(a.Signals) != 1 {
			t.Fatalf("expected 1 signal, got %d", len(a.Signals))
		}
		sig := a.Signals[0]
		if sig.Getter != "count" || sig.Setter != "setCount" {
			t.Errorf("unexpected signal: %+v", sig)
		}
		if !a.IsGetter("count") {
			t.Error("count must be a tracked getter")
		}
		if !a.IsSetter("setCount") {
			t.Error("setCount must be a tracked setter")
		}
	})

	t.Run("should recognize createMemo declarations", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Price() {
	const [qty, setQty] = createSignal(1);
	const total = createMemo(() => qty() * 3);
	return <div>{total()}</div>;
}
`)
		if len(a.Memos) != 1 || a.Memos[0].Name != "total" {
			t.Fatalf("unexpected memos: %+v", a.Memos)
		}
		if !a.IsGetter("total") {
			t.Error("total must be a tracked getter")
		}
	})

	t.Run("should resolve local getter aliases", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Alias() {
	const [count, setCount] = createSignal(0);
	const c = count;
	return <div>{c()}</div>;
}
`)
		if !a.IsGetter("c") {
			t.Error("alias c must be a tracked getter")
		}
		if a.SignalFor("c") == nil {
			t.Error("alias c must resolve to the count signal")
		}
	})

	t.Run("should return sorted dependency sets", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Multi() {
	const [b, setB] = createSignal(0);
	const [a, setA] = createSignal(0);
	return <div>{b() + a()}</div>;
}
`)
		root := a.Root.(*jsx_parser.JSXElement)
		expr := root.Children[0].(*jsx_parser.JSXExpr).Expr
		if diff := cmp.Diff([]string{"a", "b"}, a.Deps(expr)); diff != "" {
			t.Errorf("deps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should treat props as reactive", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Badge({ label }: { label: string }) {
	return <span>{label}</span>;
}
`)
		root := a.Root.(*jsx_parser.JSXElement)
		expr := root.Children[0].(*jsx_parser.JSXExpr).Expr
		if !a.IsReactive(expr) {
			t.Error("a prop reference must be reactive")
		}
		if diff := cmp.Diff([]string{"label"}, a.Deps(expr)); diff != "" {
			t.Errorf("deps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should track member access on an undestructured props param", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Card(props: { title: string }) {
	return <h1>{props.title}</h1>;
}
`)
		root := a.Root.(*jsx_parser.JSXElement)
		expr := root.Children[0].(*jsx_parser.JSXExpr).Expr
		if !a.IsReactive(expr) {
			t.Error("props.title must be reactive")
		}
	})

	t.Run("should not leak shadowed names into dependencies", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Rows({ items }: { items: string[] }) {
	return <ul>{items.map((item) => <li key={item}>{item}</li>)}</ul>;
}
`)
		root := a.Root.(*jsx_parser.JSXElement)
		expr := root.Children[0].(*jsx_parser.JSXExpr).Expr
		if diff := cmp.Diff([]string{"items"}, a.Deps(expr)); diff != "" {
			t.Errorf("deps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should warn on unresolved identifiers and treat them as static", func(t *testing.T) {
		a := analyze(t, `"use client";
export function Loose() {
	return <div>{mystery}</div>;
}
`)
		root := a.Root.(*jsx_parser.JSXElement)
		expr := root.Children[0].(*jsx_parser.JSXExpr).Expr
		if a.IsReactive(expr) {
			t.Error("an unresolved identifier must not be reactive")
		}
		a.CheckUnresolved(expr)
		found := false
		for _, w := range a.Warnings {
			if w.Code == "BF2004" {
				found = true
			}
		}
		if !found {
			t.Errorf("expected BF2004 warning, got %v", a.Warnings)
		}
	})

	t.Run("should keep plain statements in the body", func(t *testing.T) {
		a := analyze(t, `"use client";
export function WithBody() {
	const [n, setN] = createSignal(0);
	const limit = 10;
	createEffect(() => { report(n()); });
	return <div>{n()}</div>;
}
`)
		if len(a.Body) != 2 {
			t.Fatalf("expected 2 body statements, got %d", len(a.Body))
		}
	})
}

func TestPrinter(t *testing.T) {
	printed := func(t *testing.T, src string) string {
		t.Helper()
		a := analyze(t, src)
		root := a.Root.(*jsx_parser.JSXElement)
		expr := root.Children[0].(*jsx_parser.JSXExpr).Expr
		pr := &analyzer.Printer{
			Analysis: a,
			PropRef:  func(name string) string { return name + "()" },
		}
		return pr.Print(expr)
	}

	t.Run("should expand shorthand properties whose value gains a call", func(t *testing.T) {
		result := printed(t, `"use client";
export function Send({ a, b }: { a: string; b: string }) {
	return <div>{submit({ a, b })}</div>;
}
`)
		expected := `submit({ a: a(), b: b() })`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("printed expression mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should leave untouched shorthand properties alone", func(t *testing.T) {
		result := printed(t, `"use client";
export function Send() {
	const x = 1;
	return <div>{submit({ x })}</div>;
}
`)
		expected := `submit({ x })`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("printed expression mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should never rewrite an already explicit property twice", func(t *testing.T) {
		result := printed(t, `"use client";
export function Send({ a }: { a: string }) {
	return <div>{submit({ a: a })}</div>;
}
`)
		expected := `submit({ a: a() })`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("printed expression mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should respect arrow parameter shadowing", func(t *testing.T) {
		result := printed(t, `"use client";
export function Shadow({ a }: { a: string }) {
	return <div>{items.map((a) => a)}</div>;
}
`)
		expected := `items.map((a) => a)`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("printed expression mismatch (-want +got):\n%s", diff)
		}
	})
}
