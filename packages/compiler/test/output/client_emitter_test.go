package output_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/output"
)

func TestClientEmitter(t *testing.T) {
	emitter := &output.ClientEmitter{}

	t.Run("should emit an init function with prop getters, seeded signals and grouped effects", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, counterSrc))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import * as bf from "./__barefoot__.js";
export function initCounter(instanceIndex, parentScope, props = {}) {
  const scope = bf.findScope(parentScope, "Counter", instanceIndex);
  if (!scope) return;
  if (bf.mounted(scope)) {
    bf.refresh(scope, props);
    return;
  }
  const ctx = bf.context(scope, props);
  const label = () => ctx.props.label;
  const [count, setCount] = bf.createSignal(ctx, "count" in ctx.props ? ctx.props.count : (0));
  bf.createEffect(ctx, () => {
    bf.setText(scope, 0, count());
  });
  bf.createEffect(ctx, () => {
    bf.setText(scope, 2, label());
  });
  bf.listen(ctx, 1, "click", () => setCount(count() + 1));
}
bf.register("Counter", initCounter);
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("module mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should emit nothing for a server-only component", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, `
export function Footer() {
	return <footer>fine print</footer>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		if result != "" {
			t.Errorf("expected empty module, got:\n%s", result)
		}
	})

	t.Run("should bind conditionals with branch templates", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, `"use client";
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
import * as bf from "./__barefoot__.js";
export function initGate(instanceIndex, parentScope, props = {}) {
  const scope = bf.findScope(parentScope, "Gate", instanceIndex);
  if (!scope) return;
  if (bf.mounted(scope)) {
    bf.refresh(scope, props);
    return;
  }
  const ctx = bf.context(scope, props);
  const [open, setOpen] = bf.createSignal(ctx, "open" in ctx.props ? ctx.props.open : (false));
  bf.bindCond(ctx, 1, () => open(), () => ` + "`<p>shown</p>`" + `, () => ` + "`<p>hidden</p>`" + `);
  bf.listen(ctx, 0, "click", () => setOpen(!open()));
}
bf.register("Gate", initGate);
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("module mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should bind keyed lists with row specs", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, `"use client";
export function Todo({ items }: { items: any[] }) {
	return <ul>{items.map((item) => <li key={item.id}>{item.label}</li>)}</ul>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import * as bf from "./__barefoot__.js";
export function initTodo(instanceIndex, parentScope, props = {}) {
  const scope = bf.findScope(parentScope, "Todo", instanceIndex);
  if (!scope) return;
  if (bf.mounted(scope)) {
    bf.refresh(scope, props);
    return;
  }
  const ctx = bf.context(scope, props);
  const items = () => ctx.props.items;
  bf.bindList(ctx, 0, () => items(), (item) => ({ key: String(item.id), html: ` + "`<li>${item.label}</li>`" + ` }));
}
bf.register("Todo", initTodo);
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("module mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should bind row interiors per row, not at init scope", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, `"use client";
export function Scores({ items }: { items: any[] }) {
	const [bonus, setBonus] = createSignal(0);
	return <ul>{items.map((item) => <li key={item.id}><span>{item.label + bonus()}</span><button onClick={() => setBonus(bonus() + 1)}>+</button></li>)}</ul>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import * as bf from "./__barefoot__.js";
export function initScores(instanceIndex, parentScope, props = {}) {
  const scope = bf.findScope(parentScope, "Scores", instanceIndex);
  if (!scope) return;
  if (bf.mounted(scope)) {
    bf.refresh(scope, props);
    return;
  }
  const ctx = bf.context(scope, props);
  const items = () => ctx.props.items;
  const [bonus, setBonus] = bf.createSignal(ctx, "bonus" in ctx.props ? ctx.props.bonus : (0));
  bf.bindList(ctx, 0, () => items(), (item) => ({
    key: String(item.id),
    html: ` + "`" + `<li><span><!--bf:1-->${item.label + bonus()}<!--/bf:1--></span><button data-bf="slot_2">+</button></li>` + "`" + `,
    attach: (row) => {
      row.effect((root) => bf.setText(root, 1, item.label + bonus()));
      row.listen(2, "click", () => setBonus(bonus() + 1));
    },
  }));
}
bf.register("Scores", initScores);
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("module mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should re-init reactive children inside an effect", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, `"use client";
export function Dash() {
	const [user, setUser] = createSignal("ann");
	return <div><Badge name={user()} /><button onClick={() => setUser("bo")}>switch</button></div>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import * as bf from "./__barefoot__.js";
import { initBadge } from "./Badge.client.js";
export function initDash(instanceIndex, parentScope, props = {}) {
  const scope = bf.findScope(parentScope, "Dash", instanceIndex);
  if (!scope) return;
  if (bf.mounted(scope)) {
    bf.refresh(scope, props);
    return;
  }
  const ctx = bf.context(scope, props);
  const [user, setUser] = bf.createSignal(ctx, "user" in ctx.props ? ctx.props.user : ("ann"));
  bf.listen(ctx, 0, "click", () => setUser("bo"));
  bf.mountChild(ctx, true, () => initBadge(0, scope, { name: user() }));
}
bf.register("Dash", initDash);
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("module mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should carry memos, aliases and user effects into the module", func(t *testing.T) {
		result, err := emitter.EmitModule(buildComponent(t, `"use client";
export function Stats() {
	const [n, setN] = createSignal(2);
	const double = createMemo(() => n() * 2);
	const d = double;
	createEffect(() => console.log(d()));
	return <p onClick={() => setN(n() + 1)}>{double()}</p>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `// Generated by bfc. Do not edit.
import * as bf from "./__barefoot__.js";
export function initStats(instanceIndex, parentScope, props = {}) {
  const scope = bf.findScope(parentScope, "Stats", instanceIndex);
  if (!scope) return;
  if (bf.mounted(scope)) {
    bf.refresh(scope, props);
    return;
  }
  const ctx = bf.context(scope, props);
  const [n, setN] = bf.createSignal(ctx, "n" in ctx.props ? ctx.props.n : (2));
  const double = bf.createMemo(ctx, () => n() * 2);
  const d = double;
  bf.createEffect(ctx, () => console.log(d()));
  bf.createEffect(ctx, () => {
    bf.setText(scope, 1, double());
  });
  bf.listen(ctx, 0, "click", () => setN(n() + 1));
}
bf.register("Stats", initStats);
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("module mismatch (-want +got):\n%s", diff)
		}
	})
}
