package output_test

import (
	"regexp"
	"sort"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bfc-go/packages/compiler/src/output"
)

// Both server templates and the client module must agree on slot ids per
// marker kind, or hydration resolves against nodes the server never wrote.
var (
	serverTextRe   = regexp.MustCompile(`bfText[ (](\d+)`)
	serverAnchorRe = regexp.MustCompile(`bfAnchor[ (](\d+)`)
	slotAttrRe     = regexp.MustCompile(`data-bf="slot_(\d+)"`)

	clientTextRes = []*regexp.Regexp{
		regexp.MustCompile(`bf\.setText\(\w+, (\d+)`),
		regexp.MustCompile(`<!--bf:(\d+)-->`),
	}
	clientAnchorRes = []*regexp.Regexp{
		regexp.MustCompile(`bf\.bindCond\(ctx, (\d+)`),
		regexp.MustCompile(`bf\.bindList\(ctx, (\d+)`),
		regexp.MustCompile(`<!--bf-(\d+)-->`),
	}
	clientSlotRes = []*regexp.Regexp{
		slotAttrRe,
		regexp.MustCompile(`bf\.setAttr\(\w+, (\d+)`),
		regexp.MustCompile(`bf\.spreadAttrs\(\w+, (\d+)`),
		regexp.MustCompile(`bf\.listen\(ctx, (\d+)`),
		regexp.MustCompile(`row\.listen\((\d+)`),
	}
)

func markerIDs(t *testing.T, src string, res ...*regexp.Regexp) []int {
	t.Helper()
	seen := map[int]bool{}
	for _, re := range res {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				t.Fatalf("bad slot id %q: %v", m[1], err)
			}
			seen[n] = true
		}
	}
	ids := make([]int, 0, len(seen))
	for n := range seen {
		ids = append(ids, n)
	}
	sort.Ints(ids)
	return ids
}

func markerSets(t *testing.T, src string) map[string][]int {
	t.Helper()
	return map[string][]int{
		"text":   markerIDs(t, src, serverTextRe),
		"anchor": markerIDs(t, src, serverAnchorRe),
		"slot":   markerIDs(t, src, slotAttrRe),
	}
}

func clientMarkerSets(t *testing.T, src string) map[string][]int {
	t.Helper()
	return map[string][]int{
		"text":   markerIDs(t, src, clientTextRes...),
		"anchor": markerIDs(t, src, clientAnchorRes...),
		"slot":   markerIDs(t, src, clientSlotRes...),
	}
}

func TestMarkerParity(t *testing.T) {
	sources := map[string]string{
		"signals and conditional": `"use client";
export function Panel() {
	const [count, setCount] = createSignal(0);
	const [open, setOpen] = createSignal(true);
	return (
		<section>
			<button onClick={() => setCount(count() + 1)}>{count()}</button>
			{open() ? <strong>on</strong> : <em>off</em>}
			<a title={"seen " + count()}>history</a>
		</section>
	);
}`,
		"keyed list with row bindings": `"use client";
export function Board({ items }: { items: any[] }) {
	const [bonus, setBonus] = createSignal(0);
	return (
		<ul>
			{items.map((item) => (
				<li key={item.id}>
					<span>{item.label + bonus()}</span>
					<button onClick={() => setBonus(bonus() + 1)}>+</button>
				</li>
			))}
		</ul>
	);
}`,
	}

	hono := &output.HonoEmitter{}
	gotmpl := &output.GoTemplateEmitter{}
	client := &output.ClientEmitter{}

	for name, src := range sources {
		t.Run("should emit matching marker ids across backends for "+name, func(t *testing.T) {
			component := buildComponent(t, src)
			honoTpl, err := hono.EmitTemplate(component)
			if err != nil {
				t.Fatal(err)
			}
			goTpl, err := gotmpl.EmitTemplate(component)
			if err != nil {
				t.Fatal(err)
			}
			module, err := client.EmitModule(component)
			if err != nil {
				t.Fatal(err)
			}

			want := markerSets(t, honoTpl)
			if diff := cmp.Diff(want, markerSets(t, goTpl)); diff != "" {
				t.Errorf("server template markers mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want, clientMarkerSets(t, module)); diff != "" {
				t.Errorf("client module markers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
