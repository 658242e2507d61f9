package ir_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/analyzer"
	"bfc-go/packages/compiler/src/ir"
	"bfc-go/packages/compiler/src/jsx_parser"
	"bfc-go/packages/compiler/src/util"
)

func build(t *testing.T, src string) (*ir.Component, []*util.ParseError) {
	t.Helper()
	file := jsx_parser.ParseFile(src, "test.tsx")
	if len(file.Components) == 0 {
		t.Fatalf("no components parsed; errors: %v", file.Errors)
	}
	a := analyzer.Analyze(file, file.Components[0])
	return ir.Build(a)
}

func TestBuild(t *testing.T) {
	t.Run("should share one slot between reactive attrs and events on an element", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Btn() {
	const [on, setOn] = createSignal(false);
	return <button class={on() ? "on" : "off"} onClick={() => setOn(!on())}>go</button>;
}
`)
		root := c.Root.(*ir.Element)
		if root.SlotID != 0 {
			t.Errorf("element slot = %d, want 0", root.SlotID)
		}
		if len(root.ReactiveAttrs) != 1 || root.ReactiveAttrs[0].SlotID != 0 {
			t.Errorf("reactive attr must share the element slot: %+v", root.ReactiveAttrs)
		}
		if len(root.Events) != 1 || root.Events[0].SlotID != 0 {
			t.Errorf("event must share the element slot: %+v", root.Events)
		}
		if c.SlotCount != 1 {
			t.Errorf("slot count = %d, want 1", c.SlotCount)
		}
	})

	t.Run("should assign slots in document pre-order", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Mixed() {
	const [n, setN] = createSignal(0);
	return (
		<div>
			<button onClick={() => setN(n() + 1)}>+</button>
			<span>{n()}</span>
			{n() > 3 && <b>big</b>}
		</div>
	);
}
`)
		var kinds []analyzer.BindingKind
		var slots []int
		for _, b := range c.Bindings {
			kinds = append(kinds, b.Kind)
			slots = append(slots, b.SlotID)
		}
		wantKinds := []analyzer.BindingKind{
			analyzer.BindingKindEvent,
			analyzer.BindingKindText,
			analyzer.BindingKindCond,
		}
		if diff := cmp.Diff(wantKinds, kinds); diff != "" {
			t.Errorf("binding kinds mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{0, 1, 2}, slots); diff != "" {
			t.Errorf("slot order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should assign the same slots for repeated builds", func(t *testing.T) {
		src := `"use client";
export function Stable() {
	const [a, setA] = createSignal(0);
	const [b, setB] = createSignal(0);
	return <div><i>{a()}</i><u>{b()}</u><em title={a() + "!"}>x</em></div>;
}
`
		first, _ := build(t, src)
		second, _ := build(t, src)
		var firstSlots, secondSlots []int
		for _, b := range first.Bindings {
			firstSlots = append(firstSlots, b.SlotID)
		}
		for _, b := range second.Bindings {
			secondSlots = append(secondSlots, b.SlotID)
		}
		if diff := cmp.Diff(firstSlots, secondSlots); diff != "" {
			t.Errorf("slot assignment not deterministic (-want +got):\n%s", diff)
		}
	})

	t.Run("should build conditionals from ternaries with JSX branches", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Gate({ open }: { open: boolean }) {
	return <div>{open ? <b>in</b> : <i>out</i>}</div>;
}
`)
		root := c.Root.(*ir.Element)
		cond, ok := root.Children[0].(*ir.Conditional)
		if !ok {
			t.Fatalf("expected Conditional child, got %T", root.Children[0])
		}
		if cond.Else == nil {
			t.Error("ternary must keep its else branch")
		}
	})

	t.Run("should build then-only conditionals from logical and", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Maybe({ show }: { show: boolean }) {
	return <div>{show && <p>yes</p>}</div>;
}
`)
		root := c.Root.(*ir.Element)
		cond, ok := root.Children[0].(*ir.Conditional)
		if !ok {
			t.Fatalf("expected Conditional child, got %T", root.Children[0])
		}
		if cond.Else != nil {
			t.Error("logical-and conditional has no else branch")
		}
	})

	t.Run("should recognize keyed lists and strip the key attribute", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Rows({ items }: { items: { id: string; name: string }[] }) {
	return <ul>{items.map((item) => <li key={item.id}>{item.name}</li>)}</ul>;
}
`)
		root := c.Root.(*ir.Element)
		list, ok := root.Children[0].(*ir.List)
		if !ok {
			t.Fatalf("expected List child, got %T", root.Children[0])
		}
		if list.KeyExpr == nil {
			t.Fatal("key expression must be extracted")
		}
		if list.ItemParam != "item" {
			t.Errorf("item param = %q, want item", list.ItemParam)
		}
		item := list.Item.(*ir.Element)
		for _, a := range item.StaticAttrs {
			if a.Name == "key" {
				t.Error("key attribute must be stripped from the item tree")
			}
		}
	})

	t.Run("should warn when a list has no key", func(t *testing.T) {
		_, errs := build(t, `"use client";
export function Rows({ items }: { items: string[] }) {
	return <ul>{items.map((item) => <li>{item}</li>)}</ul>;
}
`)
		codes := []string{}
		for _, e := range errs {
			codes = append(codes, e.Code)
		}
		if diff := cmp.Diff([]string{"BF3002"}, codes); diff != "" {
			t.Errorf("error codes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should number sibling invocations of the same component", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Board() {
	return <div><Card title="a" /><Card title="b" /><Note /></div>;
}
`)
		if len(c.Invocations) != 3 {
			t.Fatalf("expected 3 invocations, got %d", len(c.Invocations))
		}
		indexes := []int{c.Invocations[0].Index, c.Invocations[1].Index, c.Invocations[2].Index}
		if diff := cmp.Diff([]int{0, 1, 0}, indexes); diff != "" {
			t.Errorf("instance indexes mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should normalize className and camelCase attribute names", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Svgish() {
	return <rect className="box" strokeWidth="2" />;
}
`)
		root := c.Root.(*ir.Element)
		names := []string{root.StaticAttrs[0].Name, root.StaticAttrs[1].Name}
		if diff := cmp.Diff([]string{"class", "stroke-width"}, names); diff != "" {
			t.Errorf("attr names mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should error on a component that never returns JSX", func(t *testing.T) {
		file := jsx_parser.ParseFile(`"use client";
export function Nothing() {
	return <div />;
}
`, "x.tsx")
		a := analyzer.Analyze(file, file.Components[0])
		a.Root = nil
		_, errs := ir.Build(a)
		if len(errs) != 1 || errs[0].Code != "BF3001" {
			t.Errorf("expected BF3001, got %v", errs)
		}
	})

	t.Run("should build a root conditional from if branches", func(t *testing.T) {
		c, _ := build(t, `"use client";
export function Switcher({ on }: { on: boolean }) {
	if (on) {
		return <b>on</b>;
	}
	return <i>off</i>;
}
`)
		if _, ok := c.Root.(*ir.Conditional); !ok {
			t.Errorf("expected Conditional root, got %T", c.Root)
		}
	})
}
