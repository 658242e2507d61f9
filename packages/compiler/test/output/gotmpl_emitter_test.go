package output_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/output"
)

func TestGoTemplateEmitter(t *testing.T) {
	emitter := &output.GoTemplateEmitter{}

	t.Run("should emit marker helper calls and initial values", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, counterSrc))
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{- /* Generated by bfc: component Counter */ -}}
{{define "Counter"}}
  <div data-bf-scope="{{bfScope "Counter"}}" class="counter">
    <span>
      {{bfText 0}}{{0}}{{bfTextEnd 0}}
    </span>
    <button data-bf="slot_1">
      {{bfText 2}}{{.label}}{{bfTextEnd 2}}
    </button>
  </div>
{{end}}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should render empty placeholders for expressions templates cannot evaluate", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Doubler() {
	const [n, setN] = createSignal(3);
	return <p onClick={() => setN(n() + 1)}>{n() * 2}</p>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{- /* Generated by bfc: component Doubler */ -}}
{{define "Doubler"}}
  <p data-bf-scope="{{bfScope "Doubler"}}" data-bf="slot_0">
    {{bfText 1}}{{""}}{{bfTextEnd 1}}
  </p>
{{end}}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should translate prop conditionals to if actions", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Banner({ show }: { show: boolean }) {
	return <div>{show ? <b>on</b> : <i>off</i>}</div>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{- /* Generated by bfc: component Banner */ -}}
{{define "Banner"}}
  <div data-bf-scope="{{bfScope "Banner"}}">
    {{bfAnchor 0}}
    {{if .show}}
      <b>
        on
      </b>
    {{else}}
      <i>
        off
      </i>
    {{end}}
  </div>
{{end}}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should translate keyed lists to range actions over the item dot", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Todo({ items }: { items: any[] }) {
	return <ul>{items.map((item) => <li key={item.id}>{item.label}</li>)}</ul>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{- /* Generated by bfc: component Todo */ -}}
{{define "Todo"}}
  <ul data-bf-scope="{{bfScope "Todo"}}">
    {{bfAnchor 0}}
    {{range .items}}
      <li data-bf-key="{{.id}}">
        {{.label}}
      </li>
    {{end}}
  </ul>
{{end}}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should invoke child templates through the props helper", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `"use client";
export function Page({ user }: { user: string }) {
	return <main><Header title={user} /></main>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{- /* Generated by bfc: component Page */ -}}
{{define "Page"}}
  <main data-bf-scope="{{bfScope "Page"}}">
    {{template "Header" (bfProps "title" (.user))}}
  </main>
{{end}}
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
		expected := `{{- /* Generated by bfc: component Footer */ -}}
{{define "Footer"}}
  <footer>
    <p>
      fine print
    </p>
  </footer>
{{end}}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should not close void elements", func(t *testing.T) {
		result, err := emitter.EmitTemplate(buildComponent(t, `export function Avatar({ src }: { src: string }) {
	return <div><img src={src} /><hr /></div>;
}
`))
		if err != nil {
			t.Fatal(err)
		}
		expected := `{{- /* Generated by bfc: component Avatar */ -}}
{{define "Avatar"}}
  <div>
    <img src="{{.src}}">
    <hr>
  </div>
{{end}}
`
		if diff := cmp.Diff(expected, result); diff != "" {
			t.Errorf("template mismatch (-want +got):\n%s", diff)
		}
	})
}
