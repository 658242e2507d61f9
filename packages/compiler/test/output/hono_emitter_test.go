package output_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/output"
	"bfc-go/packages/compiler/src/util"
)

func buildComponent(t *testing.T, src string) *output.Component {
	t.Helper()
	file := jsx_parser.ParseFile(src, "test.tsx")
	if len(file.Components) == 0 {
		t.Fatalf("no components parsed; errors: %v", file.Errors)
	}
	a := analyzer.Analyze(file, file.Components[0])
	c, errs := ir.Build(a)
	for _, e := range errs {
		if e.Level == util.ParseErrorLevelError {
			t.Fatalf("ir build failed: %v", e)
		}
	}
	return c
}

const counterSrc = `"use client";
export function Counter({ label }: { label: string }) {
	const [count, setCount] = createSignal(0);
	return (
		<div class="counter">
			<span>{count()}</span>
			<button onClick={() => setCount(count() + 1)}>{label}</button>
		</div>
	);
}
`

func TestHonoEmitter(t *testing.T) {
	emitter := &output.HonoEmitter{}

	t.Run("should emit markers and fold signal reads to their initial values", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, counterSrc))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import { bfScope, bfText, bfTextEnd, bfAnchor } from "@barefoot/hono";
export function Counter(props: { label: string }) {
  return (
    <div data-bf-scope={bfScope("Counter")} class="counter">
      <span>
        {bfText(0)}{0}{bfTextEnd(0)}
      </span>
      <button data-bf="slot_1">
        {bfText(2)}{props.label}{bfTextEnd(2)}
      </button>
    </div>
  );
}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should emit no markers for a server-only component", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `
export function Footer() {
	return <footer><p>fine print</p></footer>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
export function Footer(props: {}) {
  return (
    <footer>
      <p>
        fine print
      </p>
    </footer>
  );
}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should anchor conditionals and render both branches", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Gate() {
	const [open, setOpen] = createSignal(false);
	return (
		<section>
			<button onClick={() => setOpen(!open())}>toggle</button>
			{open() ? <p>shown</p> : <p>hidden</p>}
		</section>
	);
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import { bfScope, bfText, bfTextEnd, bfAnchor } from "@barefoot/hono";
export function Gate(props: {}) {
  return (
    <section data-bf-scope={bfScope("Gate")}>
      <button data-bf="slot_0">
        toggle
      </button>
      {bfAnchor(1)}
      {false ? (
        <p>
          shown
        </p>
      ) : (
        <p>
          hidden
        </p>
      )}
    </section>
  );
}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should stamp keys on list items", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Todo({ items }: { items: any[] }) {
	return <ul>{items.map((item) => <li key={item.id}>{item.label}</li>)}</ul>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import { bfScope, bfText, bfTextEnd, bfAnchor } from "@barefoot/hono";
export function Todo(props: { items: any[] }) {
  return (
    <ul data-bf-scope={bfScope("Todo")}>
      {bfAnchor(0)}
      {props.items.map((item) => (
        <li data-bf-key={String(item.id)}>
          {item.label}
        </li>
      ))}
    </ul>
  );
}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should wrap a non-element root to host the scope marker", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Pair() {
	const [n, setN] = createSignal(1);
	return <><b>{n()}</b><button onClick={() => setN(n() + 1)}>+</button></>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import { bfScope, bfText, bfTextEnd, bfAnchor } from "@barefoot/hono";
export function Pair(props: {}) {
  return (
    <div style="display:contents" data-bf-scope={bfScope("Pair")}>
      <>
        <b>
          {bfText(0)}{1}{bfTextEnd(0)}
        </b>
        <button data-bf="slot_1">
          +
        </button>
      </>
    </div>
  );
}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should import and render child component templates", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Page({ user }: { user: string }) {
	return <main><Header title={user} /><Header title="again" /></main>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import { bfScope, bfText, bfTextEnd, bfAnchor } from "@barefoot/hono";
import { Header } from "./Header.template";
export function Page(props: { user: string }) {
  return (
    <main data-bf-scope={bfScope("Page")}>
      <Header title={props.user} />
      <Header title={"again"} />
    </main>
  );
}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should emit the same bytes on repeated runs", func(t *testing.T) {
		first, err := emitter.EmitTemplate(buildComponent(t, counterSrc))
		if err != nil {
			t.Fatal(err)
		}
		second, err := emitter.EmitTemplate(buildComponent(t, counterSrc))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("emission not deterministic (-want +got):\n%s", diff)
		}
	})
}
